package api

import (
	"context"
	"fmt"

	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/session"
)

type authorizeResponse struct {
	AuthURL string `json:"auth_url"`
}

type codeRequest struct {
	Code string `json:"code"`
}

// CallbackResult is the backend's response to a successful code exchange
// on the account-attach flow.
type CallbackResult struct {
	Message      string `json:"message"`
	EmailAddress string `json:"email_address,omitempty"`
	AccountID    int64  `json:"account_id,omitempty"`
}

// AuthorizeURL asks the backend for the provider's authorization URL.
// The provider name is the backend path segment ("gmail", "outlook").
func (c *Client) AuthorizeURL(ctx context.Context, provider string) (string, error) {
	var resp authorizeResponse
	path := fmt.Sprintf("/oauth/%s/authorize/", provider)
	if err := c.get(ctx, path, &resp); err != nil {
		return "", err
	}
	if resp.AuthURL == "" {
		return "", fmt.Errorf("backend returned no authorization URL for %s", provider)
	}
	return resp.AuthURL, nil
}

// ExchangeCode completes the account-attach flow by posting the
// authorization code to the provider's callback endpoint.
func (c *Client) ExchangeCode(
	ctx context.Context,
	provider string,
	code string,
) (*CallbackResult, error) {
	var result CallbackResult
	path := fmt.Sprintf("/oauth/%s/callback/", provider)
	if err := c.post(ctx, path, codeRequest{Code: code}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SocialAuthorizeURL fetches the authorization URL for a login-via-
// provider flow. Unlike AuthorizeURL this needs no session: the user
// is not logged in yet.
func (c *Client) SocialAuthorizeURL(ctx context.Context, provider string) (string, error) {
	var resp authorizeResponse
	path := fmt.Sprintf("/social-auth/%s/authorize/", provider)
	if err := c.getAnon(ctx, path, &resp); err != nil {
		return "", err
	}
	if resp.AuthURL == "" {
		return "", fmt.Errorf("backend returned no authorization URL for %s", provider)
	}
	return resp.AuthURL, nil
}

type socialLoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Created bool   `json:"created"`
}

// SocialLogin completes a login-via-provider flow: the code is traded
// for a token pair, which is persisted. Returns whether the backend
// created a new user. This endpoint is unauthenticated.
func (c *Client) SocialLogin(
	ctx context.Context,
	provider string,
	code string,
) (created bool, err error) {
	var resp socialLoginResponse
	path := fmt.Sprintf("/social-auth/%s/callback/", provider)
	if err := c.postAnon(ctx, path, codeRequest{Code: code}, &resp); err != nil {
		return false, err
	}

	if err := c.sessions.Save(session.Tokens{
		Access:  resp.Access,
		Refresh: resp.Refresh,
	}); err != nil {
		return false, fmt.Errorf("persisting session: %w", err)
	}

	return resp.Created, nil
}

// Accounts lists the user's connected provider accounts.
func (c *Client) Accounts(ctx context.Context) ([]model.LinkedAccount, error) {
	var accounts []model.LinkedAccount
	if err := c.get(ctx, "/accounts/", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// SyncResult is the backend's response to a sync trigger.
type SyncResult struct {
	Message     string `json:"message"`
	EmailsAdded int    `json:"emails_added,omitempty"`
}

// SyncAccount asks the backend to pull new mail for one account.
func (c *Client) SyncAccount(ctx context.Context, accountID int64) (*SyncResult, error) {
	var result SyncResult
	if err := c.post(ctx, idPath("/oauth/sync/", accountID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DisconnectAccount detaches a connected account.
func (c *Client) DisconnectAccount(ctx context.Context, accountID int64) error {
	return c.delete(ctx, idPath("/oauth/disconnect/", accountID), nil)
}
