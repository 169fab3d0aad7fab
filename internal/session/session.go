// Package session persists the backend-issued bearer token pair in the
// system keyring. Tokens are opaque: nothing here decodes or validates
// them, and a stored access token is assumed usable until the backend
// rejects it.
package session

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
)

// ErrNoSession is returned when no access token is stored. Callers must
// check for it before issuing authenticated requests so that a missing
// session fails without touching the network.
var ErrNoSession = errors.New("no session: please log in first")

// Tokens is the bearer token pair issued by the backend.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Store reads and writes the token pair. It holds no in-memory copy;
// every read goes to the keyring so concurrent views observe the same
// session.
type Store struct {
	ring keyring.Keyring
}

// NewStore creates a session store on top of the given keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Save persists both tokens. Both writes must succeed; a partial
// session is cleared rather than left behind.
func (s *Store) Save(t Tokens) error {
	if t.Access == "" || t.Refresh == "" {
		return fmt.Errorf("saving session: empty token in pair")
	}

	if err := s.ring.Set(keyring.Item{
		Key:  accessTokenKey,
		Data: []byte(t.Access),
	}); err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}

	if err := s.ring.Set(keyring.Item{
		Key:  refreshTokenKey,
		Data: []byte(t.Refresh),
	}); err != nil {
		_ = s.ring.Remove(accessTokenKey)
		return fmt.Errorf("saving refresh token: %w", err)
	}

	return nil
}

// Access returns the stored access token, or ErrNoSession when absent.
func (s *Store) Access() (string, error) {
	item, err := s.ring.Get(accessTokenKey)
	if err != nil {
		return "", ErrNoSession
	}
	if len(item.Data) == 0 {
		return "", ErrNoSession
	}
	return string(item.Data), nil
}

// Refresh returns the stored refresh token, or ErrNoSession when absent.
func (s *Store) Refresh() (string, error) {
	item, err := s.ring.Get(refreshTokenKey)
	if err != nil {
		return "", ErrNoSession
	}
	if len(item.Data) == 0 {
		return "", ErrNoSession
	}
	return string(item.Data), nil
}

// SetAccess replaces only the access token, keeping the refresh token.
// Used after a silent refresh.
func (s *Store) SetAccess(access string) error {
	if access == "" {
		return fmt.Errorf("saving session: empty access token")
	}
	if err := s.ring.Set(keyring.Item{
		Key:  accessTokenKey,
		Data: []byte(access),
	}); err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}
	return nil
}

// Authenticated reports whether an access token is present.
func (s *Store) Authenticated() bool {
	_, err := s.Access()
	return err == nil
}

// Clear removes both tokens. Removing an absent token is not an error.
func (s *Store) Clear() error {
	errAccess := s.ring.Remove(accessTokenKey)
	errRefresh := s.ring.Remove(refreshTokenKey)

	if errAccess != nil && !errors.Is(errAccess, keyring.ErrKeyNotFound) {
		return fmt.Errorf("clearing access token: %w", errAccess)
	}
	if errRefresh != nil && !errors.Is(errRefresh, keyring.ErrKeyNotFound) {
		return fmt.Errorf("clearing refresh token: %w", errRefresh)
	}
	return nil
}
