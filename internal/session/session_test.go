package session_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/maildeck/internal/session"
)

func newStore() *session.Store {
	return session.NewStore(keyring.NewArrayKeyring(nil))
}

func TestSaveThenRead(t *testing.T) {
	s := newStore()

	err := s.Save(session.Tokens{Access: "acc-1", Refresh: "ref-1"})
	require.NoError(t, err)

	access, err := s.Access()
	require.NoError(t, err)
	assert.Equal(t, "acc-1", access)

	refresh, err := s.Refresh()
	require.NoError(t, err)
	assert.Equal(t, "ref-1", refresh)
	assert.True(t, s.Authenticated())
}

func TestSaveRejectsPartialPair(t *testing.T) {
	s := newStore()

	assert.Error(t, s.Save(session.Tokens{Access: "acc-only"}))
	assert.Error(t, s.Save(session.Tokens{Refresh: "ref-only"}))
	assert.False(t, s.Authenticated())
}

func TestAccessWithoutSession(t *testing.T) {
	s := newStore()

	_, err := s.Access()
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.False(t, s.Authenticated())
}

func TestSetAccessKeepsRefresh(t *testing.T) {
	s := newStore()
	require.NoError(t, s.Save(session.Tokens{Access: "old", Refresh: "ref-1"}))

	require.NoError(t, s.SetAccess("new"))

	access, err := s.Access()
	require.NoError(t, err)
	assert.Equal(t, "new", access)

	refresh, err := s.Refresh()
	require.NoError(t, err)
	assert.Equal(t, "ref-1", refresh)
}

func TestClear(t *testing.T) {
	s := newStore()
	require.NoError(t, s.Save(session.Tokens{Access: "a", Refresh: "r"}))

	require.NoError(t, s.Clear())

	_, err := s.Access()
	assert.ErrorIs(t, err, session.ErrNoSession)
	_, err = s.Refresh()
	assert.ErrorIs(t, err, session.ErrNoSession)

	// Clearing an already-empty session is fine.
	assert.NoError(t, s.Clear())
}
