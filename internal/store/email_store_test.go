package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/store"
	"github.com/nhle/maildeck/tests/testutil"
)

func sampleEmail(id int64, subject string) model.EmailMessage {
	return model.EmailMessage{
		ID:         id,
		Sender:     "alice@example.com",
		Recipient:  "me@example.com",
		Subject:    subject,
		Body:       "body of " + subject,
		Priority:   model.PriorityNormal,
		Folder:     model.FolderInbox,
		ReceivedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
		FetchedAt:  time.Now().UTC(),
	}
}

func folderPtr(f model.Folder) *model.Folder { return &f }

func TestUpsertAndGetEmails(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	err := s.UpsertEmails(ctx, []model.EmailMessage{
		sampleEmail(1, "first"),
		sampleEmail(2, "second"),
	})
	require.NoError(t, err)

	emails, err := s.GetEmails(ctx, store.EmailFilter{
		SortBy:   "received_at",
		SortDesc: true,
	})
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, "second", emails[0].Subject)

	// Upserting the same id replaces the row instead of duplicating it.
	updated := sampleEmail(1, "first (edited)")
	require.NoError(t, s.UpsertEmails(ctx, []model.EmailMessage{updated}))

	emails, err = s.GetEmails(ctx, store.EmailFilter{})
	require.NoError(t, err)
	assert.Len(t, emails, 2)
}

func TestFolderFilterAndMove(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertEmails(ctx, []model.EmailMessage{
		sampleEmail(1, "keep"),
		sampleEmail(2, "archive me"),
	}))

	require.NoError(t, s.SetEmailFolder(ctx, 2, model.FolderArchive))

	inbox, err := s.GetEmails(ctx, store.EmailFilter{Folder: folderPtr(model.FolderInbox)})
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, int64(1), inbox[0].ID)

	archived, err := s.GetEmails(ctx, store.EmailFilter{Folder: folderPtr(model.FolderArchive)})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, int64(2), archived[0].ID)
}

func TestSetEmailFlags(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertEmails(ctx, []model.EmailMessage{sampleEmail(1, "flag me")}))
	require.NoError(t, s.SetEmailFlags(ctx, 1, true, true))

	emails, err := s.GetEmails(ctx, store.EmailFilter{})
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.True(t, emails[0].IsRead)
	assert.True(t, emails[0].IsStarred)
}

func TestDeleteAndClearFolder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertEmails(ctx, []model.EmailMessage{
		sampleEmail(1, "a"),
		sampleEmail(2, "b"),
		sampleEmail(3, "c"),
	}))
	require.NoError(t, s.SetEmailFolder(ctx, 2, model.FolderTrash))
	require.NoError(t, s.SetEmailFolder(ctx, 3, model.FolderTrash))

	require.NoError(t, s.DeleteEmail(ctx, 1))
	require.NoError(t, s.ClearFolder(ctx, model.FolderTrash))

	emails, err := s.GetEmails(ctx, store.EmailFilter{})
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestReplaceEmailsSnapshot(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertEmails(ctx, []model.EmailMessage{
		sampleEmail(1, "stale"),
		sampleEmail(2, "kept"),
	}))

	kept := sampleEmail(2, "kept")
	kept.Folder = model.FolderArchive
	kept.IsStarred = true
	fresh := sampleEmail(3, "fresh")

	require.NoError(t, s.ReplaceEmails(ctx, []model.EmailMessage{kept, fresh}))

	emails, err := s.GetEmails(ctx, store.EmailFilter{SortBy: "received_at"})
	require.NoError(t, err)
	require.Len(t, emails, 2)

	// The stale row is gone; the snapshot's folder and star state win.
	assert.Equal(t, int64(2), emails[0].ID)
	assert.Equal(t, model.FolderArchive, emails[0].Folder)
	assert.True(t, emails[0].IsStarred)
	assert.Equal(t, int64(3), emails[1].ID)
}

func TestQuerySearch(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	invoice := sampleEmail(1, "Invoice overdue")
	newsletter := sampleEmail(2, "Weekly digest")
	require.NoError(t, s.UpsertEmails(ctx, []model.EmailMessage{invoice, newsletter}))

	q := "invoice"
	emails, err := s.GetEmails(ctx, store.EmailFilter{Query: &q})
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, int64(1), emails[0].ID)
}

func TestReplaceAccounts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.ReplaceAccounts(ctx, []model.LinkedAccount{
		{ID: 1, EmailAddress: "a@gmail.com", Provider: "gmail", Status: model.AccountStatusActive, IsActive: true, CreatedAt: now},
		{ID: 2, EmailAddress: "b@outlook.com", Provider: "outlook", Status: model.AccountStatusError, CreatedAt: now},
	}))

	// A second replace drops rows missing from the new list.
	require.NoError(t, s.ReplaceAccounts(ctx, []model.LinkedAccount{
		{ID: 2, EmailAddress: "b@outlook.com", Provider: "outlook", Status: model.AccountStatusActive, IsActive: true, CreatedAt: now},
	}))

	accounts, err := s.GetAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "b@outlook.com", accounts[0].EmailAddress)
	assert.Equal(t, model.AccountStatusActive, accounts[0].Status)
}
