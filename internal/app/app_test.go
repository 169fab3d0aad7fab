package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/maildeck/internal/mailbox"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/store"
	"github.com/nhle/maildeck/tests/testutil"
)

func newTestModel(t *testing.T) (Model, store.Store) {
	t.Helper()

	backend := testutil.NewBackend(t)
	client, _ := testutil.NewClient(t, backend)
	st := testutil.NewTestStore(t)

	cfg := &model.AppConfig{
		Server: model.ServerConfig{BaseURL: backend.URL(), TimeoutSec: 5},
		OAuth:  model.OAuthConfig{ListenAddr: "127.0.0.1:0"},
		Sync:   model.SyncConfig{PollIntervalSec: 120},
	}

	m := New(Deps{Config: cfg, Client: client, Store: st, Log: zerolog.Nop()})
	return m, st
}

func TestLoadCacheIncludesAccounts(t *testing.T) {
	m, st := newTestModel(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertEmails(ctx, []model.EmailMessage{
		{ID: 1, Sender: "a@example.com", Subject: "cached", Folder: model.FolderInbox},
	}))
	require.NoError(t, st.ReplaceAccounts(ctx, []model.LinkedAccount{
		{ID: 7, EmailAddress: "a@gmail.com", Provider: "gmail",
			Status: model.AccountStatusActive, IsActive: true, CreatedAt: time.Now().UTC()},
	}))

	msg, ok := m.loadCache()().(cacheLoadedMsg)
	require.True(t, ok)

	// Both the folders and the accounts view get offline data.
	require.Len(t, msg.emails, 1)
	require.Len(t, msg.accounts, 1)
	assert.Equal(t, "a@gmail.com", msg.accounts[0].EmailAddress)
}

func TestPersistCacheWritesSnapshotAtomically(t *testing.T) {
	m, st := newTestModel(t)
	ctx := context.Background()

	// Pre-seed a stale row that the snapshot should displace.
	require.NoError(t, st.UpsertEmails(ctx, []model.EmailMessage{
		{ID: 99, Sender: "stale@example.com", Subject: "stale", Folder: model.FolderInbox},
	}))

	m.mailbox.Load(mailbox.DemoMessages(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	require.True(t, m.mailbox.Archive(2))

	msg := m.persistCache()()
	assert.Nil(t, msg)

	cached, err := st.GetEmails(ctx, store.EmailFilter{})
	require.NoError(t, err)
	require.Len(t, cached, len(m.mailbox.Snapshot()))

	byID := make(map[int64]model.EmailMessage, len(cached))
	for _, e := range cached {
		byID[e.ID] = e
	}
	_, staleKept := byID[99]
	assert.False(t, staleKept)
	assert.Equal(t, model.FolderArchive, byID[2].Folder)
}
