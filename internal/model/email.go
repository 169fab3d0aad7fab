package model

import "time"

// Folder identifies which mailbox list a message currently lives in.
// A message id is present in exactly one folder at any time.
type Folder string

const (
	FolderInbox   Folder = "inbox"
	FolderArchive Folder = "archive"
	FolderTrash   Folder = "trash"
)

// Priority values used by the backend.
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// EmailMessage is a single aggregated email as served by the backend.
type EmailMessage struct {
	// ID is the backend's identifier for this message.
	ID int64 `json:"id" db:"id"`

	// Sender is the From address.
	Sender string `json:"sender" db:"sender"`

	// Recipient is the primary To address.
	Recipient string `json:"recipient" db:"recipient"`

	// CC holds comma-separated carbon-copy recipients.
	CC string `json:"cc,omitempty" db:"cc"`

	// Subject is the message subject line.
	Subject string `json:"subject" db:"subject"`

	// Body is the full plain-text body.
	Body string `json:"body" db:"body"`

	// Preview is a short excerpt of the body for list rendering.
	Preview string `json:"preview,omitempty" db:"preview"`

	// Priority is one of the Priority* constants.
	Priority string `json:"priority" db:"priority"`

	IsRead    bool `json:"is_read" db:"is_read"`
	IsStarred bool `json:"is_starred" db:"is_starred"`

	// Folder is maintained client-side from the backend's
	// is_archived/is_trashed flags.
	Folder Folder `json:"-" db:"folder"`

	// ReceivedAt is when the message arrived at the provider.
	ReceivedAt time.Time `json:"received_at" db:"received_at"`

	// FetchedAt is when this message was last retrieved from the backend.
	FetchedAt time.Time `json:"-" db:"fetched_at"`
}

// PreviewText returns the preview excerpt, deriving one from the body
// when the backend did not supply it.
func (e EmailMessage) PreviewText() string {
	if e.Preview != "" {
		return e.Preview
	}
	const max = 120
	if len(e.Body) <= max {
		return e.Body
	}
	return e.Body[:max] + "…"
}

// OutgoingEmail is the payload for sending a message.
type OutgoingEmail struct {
	Recipient string `json:"recipient"`
	CC        string `json:"cc,omitempty"`
	BCC       string `json:"bcc,omitempty"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}
