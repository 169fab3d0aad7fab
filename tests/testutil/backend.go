// Package testutil provides shared helpers for package tests: an
// in-memory session store, a recording fake backend, and an in-memory
// cache store.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/session"
)

// RecordedRequest captures one request served by the fake backend.
type RecordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]interface{}
}

// Backend is a recording fake of the aggregation backend. Responses
// are looked up from a per-"METHOD path" handler table; unknown routes
// return 404.
type Backend struct {
	mu       sync.Mutex
	requests []RecordedRequest
	handlers map[string]http.HandlerFunc
	server   *httptest.Server
}

// NewBackend starts a fake backend that shuts down with the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{handlers: make(map[string]http.HandlerFunc)}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		handler := b.handlers[r.Method+" "+r.URL.Path]
		b.mu.Unlock()

		if handler == nil {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(b.server.Close)

	return b
}

// URL returns the backend's base URL.
func (b *Backend) URL() string {
	return b.server.URL
}

// Handle registers a static JSON response for "METHOD path".
func (b *Backend) Handle(method, path string, status int, payload interface{}) {
	b.HandleFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if payload != nil {
			_ = json.NewEncoder(w).Encode(payload)
		}
	})
}

// HandleFunc registers a custom handler for "METHOD path".
func (b *Backend) HandleFunc(method, path string, fn http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[method+" "+path] = fn
}

// Recorded returns a copy of every request served so far.
func (b *Backend) Recorded() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// NewSessionStore returns a session store backed by an in-memory keyring.
func NewSessionStore() *session.Store {
	return session.NewStore(keyring.NewArrayKeyring(nil))
}

// NewClient returns an api.Client pointed at the fake backend with a
// fresh in-memory session store.
func NewClient(t *testing.T, b *Backend) (*api.Client, *session.Store) {
	t.Helper()

	sessions := NewSessionStore()
	client := api.NewClient(b.URL(), sessions, 5*time.Second, zerolog.Nop())
	return client, sessions
}
