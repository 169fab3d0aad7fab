package model

import "time"

// Account status values used by the backend.
const (
	AccountStatusActive       = "active"
	AccountStatusSyncing      = "syncing"
	AccountStatusError        = "error"
	AccountStatusDisconnected = "disconnected"
)

// LinkedAccount is a provider mailbox (Gmail, Outlook, ...) attached to
// the authenticated user via OAuth. Ownership is enforced server-side.
type LinkedAccount struct {
	ID           int64      `json:"id" db:"id"`
	EmailAddress string     `json:"email_address" db:"email_address"`
	Provider     string     `json:"provider" db:"provider"`
	Status       string     `json:"status" db:"status"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty" db:"last_synced_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
