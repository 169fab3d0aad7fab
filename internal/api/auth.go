package api

import (
	"context"
	"fmt"

	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair and persists it. The
// session is saved before Login returns, so callers may navigate to
// authenticated views as soon as it succeeds.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp tokenResponse
	err := c.postAnon(ctx, "/auth/login/", loginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return err
	}

	if err := c.sessions.Save(session.Tokens{
		Access:  resp.Access,
		Refresh: resp.Refresh,
	}); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	return nil
}

// Register creates an account and then logs in with the new
// credentials, mirroring the backend's register-then-login flow.
func (c *Client) Register(
	ctx context.Context,
	username, email, password, passwordConfirm string,
) error {
	err := c.postAnon(ctx, "/auth/register/", registerRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		PasswordConfirm: passwordConfirm,
	}, nil)
	if err != nil {
		return err
	}

	return c.Login(ctx, username, password)
}

// Logout clears the stored session. The backend keeps no client state
// to tear down.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// refreshAccess trades the refresh token for a new access token and
// persists it. Returns the new access token.
func (c *Client) refreshAccess(ctx context.Context) (string, error) {
	refresh, err := c.sessions.Refresh()
	if err != nil {
		return "", err
	}

	var resp tokenResponse
	err = c.postAnon(ctx, "/auth/refresh/", refreshRequest{Refresh: refresh}, &resp)
	if err != nil {
		return "", fmt.Errorf("refreshing access token: %w", err)
	}
	if resp.Access == "" {
		return "", fmt.Errorf("refreshing access token: empty token in response")
	}

	if err := c.sessions.SetAccess(resp.Access); err != nil {
		return "", err
	}

	return resp.Access, nil
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, "/auth/me/", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe patches profile fields (first_name, last_name, email, ...).
func (c *Client) UpdateMe(
	ctx context.Context,
	fields map[string]interface{},
) (*model.User, error) {
	var user model.User
	if err := c.patch(ctx, "/auth/me/", fields, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type profilePictureRequest struct {
	ProfilePicture string `json:"profile_picture"`
}

// SetProfilePicture uploads a base64-encoded image as the profile picture.
func (c *Client) SetProfilePicture(ctx context.Context, base64Image string) error {
	return c.post(ctx, "/auth/profile-picture/", profilePictureRequest{
		ProfilePicture: base64Image,
	}, nil)
}

// RemoveProfilePicture deletes the stored profile picture.
func (c *Client) RemoveProfilePicture(ctx context.Context) error {
	return c.delete(ctx, "/auth/profile-picture/", nil)
}
