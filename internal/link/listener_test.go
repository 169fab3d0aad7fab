package link_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/maildeck/internal/link"
)

func startServer(t *testing.T) *link.CallbackServer {
	t.Helper()

	srv := link.NewCallbackServer("127.0.0.1:0", zerolog.Nop())
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func TestCallbackDeliveredByPath(t *testing.T) {
	srv := startServer(t)

	resp, err := http.Get(
		"http://" + srv.Addr() + "/callback/gmail?code=ABC123&state=s1",
	)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case cb := <-srv.Results():
		assert.Equal(t, link.Gmail, cb.Provider)
		assert.Equal(t, "ABC123", cb.Code)
		assert.Equal(t, "s1", cb.State)
		assert.Empty(t, cb.ProviderError)
	case <-time.After(2 * time.Second):
		t.Fatal("no callback delivered")
	}
}

func TestCallbackCarriesProviderError(t *testing.T) {
	srv := startServer(t)

	resp, err := http.Get(
		"http://" + srv.Addr() + "/callback/outlook?error=access_denied",
	)
	require.NoError(t, err)
	resp.Body.Close()

	select {
	case cb := <-srv.Results():
		assert.Equal(t, link.Outlook, cb.Provider)
		assert.Equal(t, "access_denied", cb.ProviderError)
		assert.Empty(t, cb.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("no callback delivered")
	}
}

func TestUnknownProviderIs404(t *testing.T) {
	srv := startServer(t)

	resp, err := http.Get("http://" + srv.Addr() + "/callback/yahoo?code=x")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
