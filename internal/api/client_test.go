package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/session"
	"github.com/nhle/maildeck/tests/testutil"
)

func TestLoginPersistsBothTokens(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/auth/login/", http.StatusOK, map[string]string{
		"access":  "acc-token",
		"refresh": "ref-token",
	})
	client, sessions := testutil.NewClient(t, backend)

	err := client.Login(context.Background(), "bob", "hunter2")
	require.NoError(t, err)

	access, err := sessions.Access()
	require.NoError(t, err)
	assert.Equal(t, "acc-token", access)

	refresh, err := sessions.Refresh()
	require.NoError(t, err)
	assert.Equal(t, "ref-token", refresh)
}

func TestLoginInvalidCredentials(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/auth/login/", http.StatusUnauthorized, map[string]string{
		"detail": "Invalid credentials",
	})
	client, sessions := testutil.NewClient(t, backend)

	err := client.Login(context.Background(), "bob", "wrong")
	require.Error(t, err)

	// The backend's detail field is surfaced verbatim.
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.True(t, api.IsUnauthorized(err))
	assert.False(t, sessions.Authenticated())

	// Unauthenticated endpoints never trigger a silent refresh.
	requests := backend.Recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "/auth/login/", requests[0].Path)
}

func TestAuthenticatedCallWithoutSession(t *testing.T) {
	backend := testutil.NewBackend(t)
	client, _ := testutil.NewClient(t, backend)

	_, err := client.Emails(context.Background(), api.EmailFilter{})
	assert.ErrorIs(t, err, session.ErrNoSession)

	// The call must fail before reaching the network.
	assert.Empty(t, backend.Recorded())
}

func TestBearerHeaderAttached(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/accounts/", http.StatusOK, []map[string]interface{}{})
	client, sessions := testutil.NewClient(t, backend)
	require.NoError(t, sessions.Save(session.Tokens{Access: "acc", Refresh: "ref"}))

	_, err := client.Accounts(context.Background())
	require.NoError(t, err)

	requests := backend.Recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "Bearer acc", requests[0].Auth)
}

func TestSilentRefreshOn401(t *testing.T) {
	backend := testutil.NewBackend(t)
	client, sessions := testutil.NewClient(t, backend)
	require.NoError(t, sessions.Save(session.Tokens{Access: "stale", Refresh: "ref"}))

	backend.HandleFunc(http.MethodGet, "/emails/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"token expired"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	backend.Handle(http.MethodPost, "/auth/refresh/", http.StatusOK, map[string]string{
		"access": "fresh",
	})

	_, err := client.Emails(context.Background(), api.EmailFilter{})
	require.NoError(t, err)

	// 401 → refresh → retried original request, exactly once each.
	requests := backend.Recorded()
	require.Len(t, requests, 3)
	assert.Equal(t, "/emails/", requests[0].Path)
	assert.Equal(t, "/auth/refresh/", requests[1].Path)
	assert.Equal(t, "ref", requests[1].Body["refresh"])
	assert.Equal(t, "/emails/", requests[2].Path)
	assert.Equal(t, "Bearer fresh", requests[2].Auth)

	// The refreshed access token is persisted.
	access, err := sessions.Access()
	require.NoError(t, err)
	assert.Equal(t, "fresh", access)
}

func TestRefreshFailureClearsSession(t *testing.T) {
	backend := testutil.NewBackend(t)
	client, sessions := testutil.NewClient(t, backend)
	require.NoError(t, sessions.Save(session.Tokens{Access: "stale", Refresh: "dead"}))

	backend.Handle(http.MethodGet, "/emails/", http.StatusUnauthorized, map[string]string{
		"detail": "token expired",
	})
	backend.Handle(http.MethodPost, "/auth/refresh/", http.StatusUnauthorized, map[string]string{
		"detail": "refresh token expired",
	})

	_, err := client.Emails(context.Background(), api.EmailFilter{})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.False(t, sessions.Authenticated())
}

func TestErrorFieldFallback(t *testing.T) {
	backend := testutil.NewBackend(t)
	client, sessions := testutil.NewClient(t, backend)
	require.NoError(t, sessions.Save(session.Tokens{Access: "acc", Refresh: "ref"}))

	// The OAuth views report failures under "error" instead of "detail".
	backend.Handle(http.MethodGet, "/oauth/gmail/authorize/", http.StatusBadRequest, map[string]string{
		"error": "Gmail OAuth not configured",
	})

	_, err := client.AuthorizeURL(context.Background(), "gmail")
	require.Error(t, err)
	assert.Equal(t, "Gmail OAuth not configured", err.Error())
}

func TestRegisterAutoLogin(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/auth/register/", http.StatusCreated, map[string]string{
		"message": "registered",
	})
	backend.Handle(http.MethodPost, "/auth/login/", http.StatusOK, map[string]string{
		"access":  "acc",
		"refresh": "ref",
	})
	client, sessions := testutil.NewClient(t, backend)

	err := client.Register(context.Background(), "alice", "a@example.com", "pw", "pw")
	require.NoError(t, err)
	assert.True(t, sessions.Authenticated())

	requests := backend.Recorded()
	require.Len(t, requests, 2)
	assert.Equal(t, "/auth/register/", requests[0].Path)
	assert.Equal(t, "pw", requests[0].Body["password_confirm"])
	assert.Equal(t, "/auth/login/", requests[1].Path)
}

func TestSocialLoginPersistsTokens(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/social-auth/gmail/callback/", http.StatusOK, map[string]interface{}{
		"access":  "acc",
		"refresh": "ref",
		"created": true,
	})
	client, sessions := testutil.NewClient(t, backend)

	created, err := client.SocialLogin(context.Background(), "gmail", "CODE-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, sessions.Authenticated())

	requests := backend.Recorded()
	require.Len(t, requests, 1)
	assert.Empty(t, requests[0].Auth)
	assert.Equal(t, "CODE-1", requests[0].Body["code"])
}

func TestProfilePictureUploadAndRemove(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/auth/profile-picture/", http.StatusOK, map[string]string{
		"message": "Profile picture updated",
	})
	backend.Handle(http.MethodDelete, "/auth/profile-picture/", http.StatusOK, map[string]string{
		"message": "Profile picture removed",
	})
	client, sessions := testutil.NewClient(t, backend)
	require.NoError(t, sessions.Save(session.Tokens{Access: "acc", Refresh: "ref"}))

	dataURL := "data:image/png;base64,aGVsbG8="
	require.NoError(t, client.SetProfilePicture(context.Background(), dataURL))
	require.NoError(t, client.RemoveProfilePicture(context.Background()))

	requests := backend.Recorded()
	require.Len(t, requests, 2)
	assert.Equal(t, http.MethodPost, requests[0].Method)
	assert.Equal(t, dataURL, requests[0].Body["profile_picture"])
	assert.Equal(t, http.MethodDelete, requests[1].Method)
	assert.Equal(t, "Bearer acc", requests[1].Auth)
}

func TestSyncAndDisconnectPaths(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/oauth/sync/7/", http.StatusOK, map[string]interface{}{
		"message":      "Synced",
		"emails_added": 3,
	})
	backend.Handle(http.MethodDelete, "/oauth/disconnect/7/", http.StatusOK, map[string]string{
		"message": "Disconnected",
	})
	client, sessions := testutil.NewClient(t, backend)
	require.NoError(t, sessions.Save(session.Tokens{Access: "acc", Refresh: "ref"}))

	result, err := client.SyncAccount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, result.EmailsAdded)

	require.NoError(t, client.DisconnectAccount(context.Background(), 7))
}
