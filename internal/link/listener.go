package link

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Callback is the query payload of one provider redirect received on
// the loopback listener.
type Callback struct {
	Provider      Provider
	Code          string
	State         string
	ProviderError string
}

// CallbackServer is the native equivalent of the SPA's callback route:
// a loopback HTTP listener with one route per provider. The provider is
// identified by the path the redirect lands on.
type CallbackServer struct {
	addr    string
	ln      net.Listener
	srv     *http.Server
	results chan Callback
	log     zerolog.Logger
}

// NewCallbackServer creates a callback listener bound to addr
// (e.g., 127.0.0.1:8765).
func NewCallbackServer(addr string, log zerolog.Logger) *CallbackServer {
	return &CallbackServer{
		addr:    addr,
		results: make(chan Callback, 4),
		log:     log,
	}
}

// Start binds the listener and begins serving in the background.
func (s *CallbackServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("binding callback listener on %s: %w", s.addr, err)
	}
	s.ln = ln

	r := chi.NewRouter()
	r.Get("/callback/{provider}", s.handleCallback)

	s.srv = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("callback listener stopped")
		}
	}()

	return nil
}

// Addr returns the bound listener address, valid after Start.
func (s *CallbackServer) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

// Results delivers one Callback per provider redirect received.
func (s *CallbackServer) Results() <-chan Callback {
	return s.results
}

// Shutdown stops the listener.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	provider, err := ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	cb := Callback{
		Provider:      provider,
		Code:          q.Get("code"),
		State:         q.Get("state"),
		ProviderError: q.Get("error"),
	}

	select {
	case s.results <- cb:
	default:
		// A stale redirect with no flow waiting; drop it.
		s.log.Warn().
			Str("provider", provider.String()).
			Msg("dropping callback: no flow waiting")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w,
		"<html><body><p>%s authorization received. "+
			"You can return to the terminal.</p></body></html>",
		provider.DisplayName(),
	)
}
