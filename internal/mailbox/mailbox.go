// Package mailbox manages the client-side inbox/archive/trash lists.
// Operations are in-memory list splices; a backend write is attempted
// opportunistically for read-state only, and its failure never blocks
// or reverts the local change. An email id is present in at most one
// folder at any time.
package mailbox

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nhle/maildeck/internal/model"
)

// ReadPusher pushes read-state changes to the backend. *api.Client
// satisfies it.
type ReadPusher interface {
	MarkRead(ctx context.Context, emailID int64) error
}

// Manager holds the three disjoint ordered folders.
type Manager struct {
	mu      sync.Mutex
	folders map[model.Folder][]model.EmailMessage
	pusher  ReadPusher
	log     zerolog.Logger
}

// NewManager creates an empty manager. pusher may be nil, in which
// case read-state changes stay local.
func NewManager(pusher ReadPusher, log zerolog.Logger) *Manager {
	return &Manager{
		folders: map[model.Folder][]model.EmailMessage{
			model.FolderInbox:   nil,
			model.FolderArchive: nil,
			model.FolderTrash:   nil,
		},
		pusher: pusher,
		log:    log,
	}
}

// Load replaces all folder contents, partitioning messages by their
// Folder field (unset means inbox). Duplicated ids keep the first
// occurrence so the disjointness invariant holds even on bad input.
func (m *Manager) Load(emails []model.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.folders = map[model.Folder][]model.EmailMessage{
		model.FolderInbox:   nil,
		model.FolderArchive: nil,
		model.FolderTrash:   nil,
	}

	seen := make(map[int64]bool, len(emails))
	for _, e := range emails {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true

		folder := e.Folder
		if _, ok := m.folders[folder]; !ok {
			folder = model.FolderInbox
		}
		e.Folder = folder
		m.folders[folder] = append(m.folders[folder], e)
	}
}

// Merge adds messages whose ids are not yet present in any folder and
// returns how many were added. Existing messages are left untouched,
// so local moves and star state survive a backend refresh.
func (m *Manager) Merge(emails []model.EmailMessage) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[int64]bool)
	for _, list := range m.folders {
		for _, e := range list {
			seen[e.ID] = true
		}
	}

	added := 0
	for _, e := range emails {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true

		folder := e.Folder
		if _, ok := m.folders[folder]; !ok {
			folder = model.FolderInbox
		}
		e.Folder = folder
		m.folders[folder] = append(m.folders[folder], e)
		added++
	}
	return added
}

// Inbox returns a copy of the inbox list.
func (m *Manager) Inbox() []model.EmailMessage { return m.copyOf(model.FolderInbox) }

// Archived returns a copy of the archive list.
func (m *Manager) Archived() []model.EmailMessage { return m.copyOf(model.FolderArchive) }

// Trashed returns a copy of the trash list.
func (m *Manager) Trashed() []model.EmailMessage { return m.copyOf(model.FolderTrash) }

func (m *Manager) copyOf(folder model.Folder) []model.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.EmailMessage, len(m.folders[folder]))
	copy(out, m.folders[folder])
	return out
}

// Get returns a message by id and the folder holding it.
func (m *Manager) Get(emailID int64) (model.EmailMessage, model.Folder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for folder, list := range m.folders {
		for _, e := range list {
			if e.ID == emailID {
				return e, folder, true
			}
		}
	}
	return model.EmailMessage{}, "", false
}

// move splices a message from one folder to the end of another.
// Returns false when the id is not in the source folder, which makes
// repeated moves no-ops.
func (m *Manager) move(emailID int64, from, to model.Folder) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.folders[from]
	for i, e := range list {
		if e.ID != emailID {
			continue
		}
		m.folders[from] = append(list[:i:i], list[i+1:]...)
		e.Folder = to
		m.folders[to] = append(m.folders[to], e)
		return true
	}
	return false
}

// Archive moves a message from the inbox to the archive. Archiving an
// id that is not in the inbox is a no-op.
func (m *Manager) Archive(emailID int64) bool {
	return m.move(emailID, model.FolderInbox, model.FolderArchive)
}

// Trash moves a message from the inbox or archive to the trash.
func (m *Manager) Trash(emailID int64) bool {
	if m.move(emailID, model.FolderInbox, model.FolderTrash) {
		return true
	}
	return m.move(emailID, model.FolderArchive, model.FolderTrash)
}

// Restore moves a message from the trash back to the inbox.
func (m *Manager) Restore(emailID int64) bool {
	return m.move(emailID, model.FolderTrash, model.FolderInbox)
}

// Purge permanently removes a message from the trash.
func (m *Manager) Purge(emailID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.folders[model.FolderTrash]
	for i, e := range list {
		if e.ID == emailID {
			m.folders[model.FolderTrash] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// EmptyTrash removes every message from the trash.
func (m *Manager) EmptyTrash() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.folders[model.FolderTrash])
	m.folders[model.FolderTrash] = nil
	return n
}

// ToggleStar flips the starred flag wherever the message lives and
// returns the new value. No backend call is made; star state rides
// along with the next full refresh.
func (m *Manager) ToggleStar(emailID int64) (starred bool, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for folder, list := range m.folders {
		for i, e := range list {
			if e.ID == emailID {
				list[i].IsStarred = !e.IsStarred
				m.folders[folder] = list
				return list[i].IsStarred, true
			}
		}
	}
	return false, false
}

// MarkRead flags a message as read. The backend write is attempted
// only on an actual unread→read transition, and only once: a failure
// is logged and swallowed, keeping the local state authoritative.
func (m *Manager) MarkRead(ctx context.Context, emailID int64) bool {
	m.mu.Lock()
	changed := false
	for folder, list := range m.folders {
		for i, e := range list {
			if e.ID == emailID {
				if !e.IsRead {
					list[i].IsRead = true
					m.folders[folder] = list
					changed = true
				}
				break
			}
		}
	}
	m.mu.Unlock()

	if changed && m.pusher != nil {
		if err := m.pusher.MarkRead(ctx, emailID); err != nil {
			m.log.Warn().
				Err(err).
				Int64("email", emailID).
				Msg("mark-read push failed; keeping local state")
		}
	}
	return changed
}

// Counts returns the number of messages per folder.
func (m *Manager) Counts() (inbox, archived, trashed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.folders[model.FolderInbox]),
		len(m.folders[model.FolderArchive]),
		len(m.folders[model.FolderTrash])
}

// Snapshot returns every message across all folders, with Folder set.
// Used to persist the current state into the local cache.
func (m *Manager) Snapshot() []model.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.EmailMessage
	for _, folder := range []model.Folder{
		model.FolderInbox, model.FolderArchive, model.FolderTrash,
	} {
		out = append(out, m.folders[folder]...)
	}
	return out
}
