package store

import (
	"context"

	"github.com/nhle/maildeck/internal/model"
)

// EmailFilter narrows GetEmails queries. Nil pointer fields are not
// applied.
type EmailFilter struct {
	Folder    *model.Folder
	IsRead    *bool
	IsStarred *bool
	Priority  *string
	Query     *string
	SortBy    string
	SortDesc  bool
	Limit     int
	Offset    int
}

// Store is the local cache of backend state. The backend is the
// authoritative source; this cache exists so the UI stays usable when
// the backend is unreachable, and is invalidated by replacing rows on
// every successful fetch.
type Store interface {
	// UpsertEmails inserts or replaces a batch of cached messages.
	UpsertEmails(ctx context.Context, emails []model.EmailMessage) error

	// ReplaceEmails atomically replaces the cache with a full snapshot.
	ReplaceEmails(ctx context.Context, emails []model.EmailMessage) error

	// GetEmails retrieves cached messages matching the filter.
	GetEmails(ctx context.Context, filter EmailFilter) ([]model.EmailMessage, error)

	// SetEmailFolder moves a cached message between folders.
	SetEmailFolder(ctx context.Context, emailID int64, folder model.Folder) error

	// SetEmailFlags updates the read/starred flags of a cached message.
	SetEmailFlags(ctx context.Context, emailID int64, isRead, isStarred bool) error

	// DeleteEmail removes a cached message permanently.
	DeleteEmail(ctx context.Context, emailID int64) error

	// ClearFolder removes every cached message in a folder.
	ClearFolder(ctx context.Context, folder model.Folder) error

	// ReplaceAccounts replaces the cached connected-account list.
	ReplaceAccounts(ctx context.Context, accounts []model.LinkedAccount) error

	// GetAccounts retrieves the cached connected-account list.
	GetAccounts(ctx context.Context) ([]model.LinkedAccount, error)

	// Close releases the underlying database.
	Close() error
}
