package mailbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/maildeck/internal/model"
)

// countingPusher records MarkRead calls and optionally fails them.
type countingPusher struct {
	calls []int64
	err   error
}

func (p *countingPusher) MarkRead(_ context.Context, emailID int64) error {
	p.calls = append(p.calls, emailID)
	return p.err
}

func loadedManager(pusher ReadPusher) *Manager {
	m := NewManager(pusher, zerolog.Nop())
	m.Load(DemoMessages(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	return m
}

// foldersContaining returns every folder an id appears in.
func foldersContaining(m *Manager, id int64) []model.Folder {
	var out []model.Folder
	for _, e := range m.Inbox() {
		if e.ID == id {
			out = append(out, model.FolderInbox)
		}
	}
	for _, e := range m.Archived() {
		if e.ID == id {
			out = append(out, model.FolderArchive)
		}
	}
	for _, e := range m.Trashed() {
		if e.ID == id {
			out = append(out, model.FolderTrash)
		}
	}
	return out
}

func TestArchiveMovesFromInbox(t *testing.T) {
	m := loadedManager(nil)

	require.True(t, m.Archive(2))
	assert.Equal(t, []model.Folder{model.FolderArchive}, foldersContaining(m, 2))
}

func TestArchiveIsIdempotent(t *testing.T) {
	m := loadedManager(nil)

	require.True(t, m.Archive(2))

	// The id is no longer in the inbox, so a second archive finds
	// nothing to move.
	assert.False(t, m.Archive(2))
	assert.Equal(t, []model.Folder{model.FolderArchive}, foldersContaining(m, 2))
}

func TestDisjointnessAcrossMoves(t *testing.T) {
	m := loadedManager(nil)

	require.True(t, m.Archive(2))
	require.True(t, m.Trash(2))
	require.True(t, m.Restore(2))
	require.True(t, m.Trash(2))

	ids := []int64{1, 2, 3, 4, 5}
	for _, id := range ids {
		folders := foldersContaining(m, id)
		assert.LessOrEqual(t, len(folders), 1, "id %d present in %v", id, folders)
	}
}

func TestTrashFromArchiveAndRestore(t *testing.T) {
	m := loadedManager(nil)

	// id 5 starts in the archive.
	require.True(t, m.Trash(5))
	assert.Equal(t, []model.Folder{model.FolderTrash}, foldersContaining(m, 5))

	require.True(t, m.Restore(5))
	assert.Equal(t, []model.Folder{model.FolderInbox}, foldersContaining(m, 5))
}

func TestPurgeAndEmptyTrash(t *testing.T) {
	m := loadedManager(nil)

	require.True(t, m.Trash(2))
	require.True(t, m.Trash(3))

	require.True(t, m.Purge(2))
	assert.Empty(t, foldersContaining(m, 2))
	assert.False(t, m.Purge(2))

	assert.Equal(t, 1, m.EmptyTrash())
	assert.Empty(t, foldersContaining(m, 3))

	_, _, trashed := m.Counts()
	assert.Zero(t, trashed)
}

func TestToggleStarRoundTrip(t *testing.T) {
	pusher := &countingPusher{}
	m := loadedManager(pusher)

	before, _, ok := m.Get(2)
	require.True(t, ok)

	starred, ok := m.ToggleStar(2)
	require.True(t, ok)
	assert.Equal(t, !before.IsStarred, starred)

	starred, ok = m.ToggleStar(2)
	require.True(t, ok)
	assert.Equal(t, before.IsStarred, starred)

	// Starring is local only: no backend traffic beyond read-state.
	assert.Empty(t, pusher.calls)
}

func TestMarkReadPushesOnce(t *testing.T) {
	pusher := &countingPusher{}
	m := loadedManager(pusher)

	require.True(t, m.MarkRead(context.Background(), 2))
	assert.False(t, m.MarkRead(context.Background(), 2))

	// Only the unread→read transition reaches the backend.
	assert.Equal(t, []int64{2}, pusher.calls)
}

func TestMarkReadSwallowsPushFailure(t *testing.T) {
	pusher := &countingPusher{err: errors.New("backend down")}
	m := loadedManager(pusher)

	require.True(t, m.MarkRead(context.Background(), 3))

	// Local state wins even though the push failed.
	e, _, ok := m.Get(3)
	require.True(t, ok)
	assert.True(t, e.IsRead)
}

func TestLoadPartitionsByFolder(t *testing.T) {
	m := loadedManager(nil)

	inbox, archived, trashed := m.Counts()
	assert.Equal(t, 4, inbox)
	assert.Equal(t, 1, archived)
	assert.Zero(t, trashed)
}

func TestMergeKeepsLocalState(t *testing.T) {
	m := loadedManager(nil)

	require.True(t, m.Archive(2))
	_, ok := m.ToggleStar(3)
	require.True(t, ok)

	// A refresh delivers the same ids again, all claiming the inbox,
	// plus one genuinely new message.
	refreshed := DemoMessages(time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC))
	for i := range refreshed {
		refreshed[i].Folder = model.FolderInbox
		refreshed[i].IsStarred = false
	}
	refreshed = append(refreshed, model.EmailMessage{
		ID: 99, Sender: "new@example.com", Subject: "fresh",
	})

	assert.Equal(t, 1, m.Merge(refreshed))

	// The local move and star survive the merge.
	assert.Equal(t, []model.Folder{model.FolderArchive}, foldersContaining(m, 2))
	e, _, ok := m.Get(3)
	require.True(t, ok)
	assert.True(t, e.IsStarred)

	// The new message lands in the inbox.
	assert.Equal(t, []model.Folder{model.FolderInbox}, foldersContaining(m, 99))
}

func TestMergeSnapshotRoundTrip(t *testing.T) {
	m := loadedManager(nil)
	require.True(t, m.Trash(4))

	snapshot := m.Snapshot()

	m2 := NewManager(nil, zerolog.Nop())
	m2.Load(snapshot)

	assert.Equal(t, []model.Folder{model.FolderTrash}, foldersContaining(m2, 4))
	i1, a1, t1 := m.Counts()
	i2, a2, t2 := m2.Counts()
	assert.Equal(t, []int{i1, a1, t1}, []int{i2, a2, t2})
}

func TestLoadDropsDuplicateIDs(t *testing.T) {
	m := NewManager(nil, zerolog.Nop())
	m.Load([]model.EmailMessage{
		{ID: 1, Subject: "first", Folder: model.FolderInbox},
		{ID: 1, Subject: "dup", Folder: model.FolderArchive},
	})

	assert.Equal(t, []model.Folder{model.FolderInbox}, foldersContaining(m, 1))
}
