// Package api is the HTTP client for the maildeck aggregation backend.
// Every call sends and receives JSON; authenticated calls attach the
// bearer access token from the session store and fail fast with
// session.ErrNoSession when no token is present.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/maildeck/internal/session"
)

// Error is a non-2xx response from the backend. Detail carries the
// backend's own error/detail field verbatim so the UI can show it
// unchanged.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized
}

// errorBody matches the shapes the backend uses for error payloads.
// Django REST framework uses "detail"; the OAuth and AI views use
// "error"; a few success-ish failures use "message".
type errorBody struct {
	Detail  string `json:"detail"`
	Err     string `json:"error"`
	Message string `json:"message"`
}

func (b errorBody) text() string {
	switch {
	case b.Detail != "":
		return b.Detail
	case b.Err != "":
		return b.Err
	default:
		return b.Message
	}
}

// Client talks to the aggregation backend. It is safe for concurrent
// use by the UI event loop and the background poller.
type Client struct {
	baseURL    string
	sessions   *session.Store
	httpClient *http.Client
	maxRetries int
	log        zerolog.Logger
}

// NewClient creates a backend client. baseURL is the API root
// (e.g., http://127.0.0.1:8000/api).
func NewClient(
	baseURL string,
	sessions *session.Store,
	timeout time.Duration,
	log zerolog.Logger,
) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		sessions: sessions,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: 3,
		log:        log,
	}
}

// Sessions exposes the session store so views can check login state.
func (c *Client) Sessions() *session.Store {
	return c.sessions
}

// get performs an authenticated GET request.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result, true)
}

// post performs an authenticated POST request.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result, true)
}

// patch performs an authenticated PATCH request.
func (c *Client) patch(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, result, true)
}

// delete performs an authenticated DELETE request.
func (c *Client) delete(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, result, true)
}

// postAnon performs an unauthenticated POST request (login, register,
// social login callback).
func (c *Client) postAnon(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result, false)
}

// getAnon performs an unauthenticated GET request.
func (c *Client) getAnon(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result, false)
}

// do is the core HTTP method. It handles bearer auth, a single silent
// token refresh on 401, rate limiting with backoff on 429, and JSON
// (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
	authed bool,
) error {
	var token string
	if authed {
		var err error
		token, err = c.sessions.Access()
		if err != nil {
			// Fail before touching the network.
			return err
		}
	}

	refreshed := false
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		status, respBody, err := c.roundTrip(ctx, method, path, body, token)
		if err != nil {
			return err
		}

		if status == http.StatusTooManyRequests {
			wait := backoffDuration(attempt)
			lastErr = &Error{StatusCode: status, Detail: "rate limited"}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		if status == http.StatusUnauthorized && authed && !refreshed {
			// One silent refresh, then a single retry of the
			// original request. A second 401 is terminal.
			newAccess, refreshErr := c.refreshAccess(ctx)
			if refreshErr != nil {
				_ = c.sessions.Clear()
				c.log.Warn().Err(refreshErr).Msg("token refresh failed; session cleared")
				return &Error{
					StatusCode: status,
					Detail:     "session expired, please log in again",
				}
			}
			token = newAccess
			refreshed = true
			continue
		}

		if status < 200 || status >= 300 {
			var eb errorBody
			detail := ""
			if json.Unmarshal(respBody, &eb) == nil {
				detail = eb.text()
			}
			c.log.Debug().
				Int("status", status).
				Str("method", method).
				Str("path", path).
				Msg("backend error response")
			return &Error{StatusCode: status, Detail: detail}
		}

		// No content to parse (e.g. 204).
		if result == nil || status == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from %s %s: %w",
				method, path, err,
			)
		}

		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// roundTrip executes one HTTP exchange and returns the status and body.
// Transport-level failures come back wrapped so callers can show a
// generic message.
func (c *Client) roundTrip(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	token string,
) (int, []byte, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", readErr)
	}

	return resp.StatusCode, respBody, nil
}

// backoffDuration computes the retry wait: 1s, 2s, 4s, capped at 30s.
func backoffDuration(attempt int) time.Duration {
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}

// idPath builds a path segment for a numeric resource id.
func idPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10) + "/"
}
