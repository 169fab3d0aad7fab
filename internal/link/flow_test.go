package link_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/maildeck/internal/link"
	"github.com/nhle/maildeck/internal/session"
	"github.com/nhle/maildeck/tests/testutil"
)

func TestProviderErrorSkipsExchange(t *testing.T) {
	backend := testutil.NewBackend(t)
	client, _ := testutil.NewClient(t, backend)
	flow := link.NewFlow(client, link.Gmail, link.ModeAttach, zerolog.Nop())

	result := flow.HandleCallback(context.Background(), link.Callback{
		Provider:      link.Gmail,
		ProviderError: "access_denied",
	})

	assert.Equal(t, link.StateFailed, result.State)
	assert.Equal(t, "Authorization failed: access_denied", result.Message)
	assert.Equal(t, link.FailureRedirectDelay, result.RedirectAfter)

	// No exchange POST may be issued when the provider reported an error.
	assert.Empty(t, backend.Recorded())
}

func TestMissingCodeSkipsExchange(t *testing.T) {
	backend := testutil.NewBackend(t)
	client, _ := testutil.NewClient(t, backend)
	flow := link.NewFlow(client, link.Outlook, link.ModeAttach, zerolog.Nop())

	result := flow.HandleCallback(context.Background(), link.Callback{
		Provider: link.Outlook,
		State:    "whatever",
	})

	assert.Equal(t, link.StateFailed, result.State)
	assert.Equal(t, "No authorization code received", result.Message)
	assert.Empty(t, backend.Recorded())
}

func TestValidCodeExchangesExactlyOnce(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/oauth/gmail/callback/", http.StatusOK, map[string]string{
		"message": "Gmail account connected successfully!",
	})
	client, sessions := testutil.NewClient(t, backend)
	require.NoError(t, sessions.Save(session.Tokens{Access: "acc", Refresh: "ref"}))

	flow := link.NewFlow(client, link.Gmail, link.ModeAttach, zerolog.Nop())

	result := flow.HandleCallback(context.Background(), link.Callback{
		Provider: link.Gmail,
		Code:     "ABC123",
	})

	assert.Equal(t, link.StateLinked, result.State)
	assert.Equal(t, "Gmail account connected successfully!", result.Message)
	assert.Equal(t, link.SuccessRedirectDelay, result.RedirectAfter)

	// Exactly one exchange POST, to the provider-matching endpoint.
	requests := backend.Recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].Method)
	assert.Equal(t, "/oauth/gmail/callback/", requests[0].Path)
	assert.Equal(t, "ABC123", requests[0].Body["code"])
}

func TestProviderMismatchFails(t *testing.T) {
	backend := testutil.NewBackend(t)
	client, sessions := testutil.NewClient(t, backend)
	require.NoError(t, sessions.Save(session.Tokens{Access: "acc", Refresh: "ref"}))

	flow := link.NewFlow(client, link.Gmail, link.ModeAttach, zerolog.Nop())

	result := flow.HandleCallback(context.Background(), link.Callback{
		Provider: link.Outlook,
		Code:     "ABC123",
	})

	assert.Equal(t, link.StateFailed, result.State)
	assert.Empty(t, backend.Recorded())
}

func TestStateEchoVerified(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/oauth/outlook/authorize/", http.StatusOK, map[string]string{
		"auth_url": "https://login.example.com/authorize?client_id=x&state=expected-state",
	})
	client, sessions := testutil.NewClient(t, backend)
	require.NoError(t, sessions.Save(session.Tokens{Access: "acc", Refresh: "ref"}))

	flow := link.NewFlow(client, link.Outlook, link.ModeAttach, zerolog.Nop())

	authURL, err := flow.Begin(context.Background())
	require.NoError(t, err)
	assert.Contains(t, authURL, "state=expected-state")
	assert.Equal(t, link.StateAwaitingProvider, flow.State())

	result := flow.HandleCallback(context.Background(), link.Callback{
		Provider: link.Outlook,
		Code:     "ABC123",
		State:    "tampered",
	})

	assert.Equal(t, link.StateFailed, result.State)

	// Only the authorize request went out; the tampered echo blocked
	// the exchange.
	requests := backend.Recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "/oauth/outlook/authorize/", requests[0].Path)
}

func TestExchangeFailureSurfacesBackendError(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/oauth/gmail/callback/", http.StatusBadRequest, map[string]string{
		"error": "Invalid authorization code",
	})
	client, sessions := testutil.NewClient(t, backend)
	require.NoError(t, sessions.Save(session.Tokens{Access: "acc", Refresh: "ref"}))

	flow := link.NewFlow(client, link.Gmail, link.ModeAttach, zerolog.Nop())

	result := flow.HandleCallback(context.Background(), link.Callback{
		Provider: link.Gmail,
		Code:     "BAD",
	})

	assert.Equal(t, link.StateFailed, result.State)
	assert.Equal(t, "Invalid authorization code", result.Message)
	assert.Equal(t, link.FailureRedirectDelay, result.RedirectAfter)
}

func TestSocialLoginFlowStoresSession(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/social-auth/gmail/authorize/", http.StatusOK, map[string]string{
		"auth_url": "https://accounts.example.com/o/oauth2/auth?state=s1",
	})
	backend.Handle(http.MethodPost, "/social-auth/gmail/callback/", http.StatusOK, map[string]interface{}{
		"access":  "acc",
		"refresh": "ref",
		"created": false,
	})
	client, sessions := testutil.NewClient(t, backend)

	flow := link.NewFlow(client, link.Gmail, link.ModeSocialLogin, zerolog.Nop())

	_, err := flow.Begin(context.Background())
	require.NoError(t, err)

	result := flow.HandleCallback(context.Background(), link.Callback{
		Provider: link.Gmail,
		Code:     "CODE-9",
		State:    "s1",
	})

	assert.Equal(t, link.StateLinked, result.State)
	assert.False(t, result.Created)
	assert.True(t, sessions.Authenticated())
}
