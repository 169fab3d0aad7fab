package mailbox

import (
	"time"

	"github.com/nhle/maildeck/internal/model"
)

// DemoMessages returns the synthetic inbox shown when the backend is
// unreachable and the local cache is empty, so the UI stays usable
// offline.
func DemoMessages(now time.Time) []model.EmailMessage {
	return []model.EmailMessage{
		{
			ID:         1,
			Sender:     "welcome@maildeck.app",
			Subject:    "Welcome to maildeck",
			Body:       "Connect a Gmail or Outlook account to start aggregating your mail in one place.",
			Priority:   model.PriorityNormal,
			Folder:     model.FolderInbox,
			ReceivedAt: now.Add(-10 * time.Minute),
		},
		{
			ID:         2,
			Sender:     "sarah.chen@example.com",
			Subject:    "Quarterly planning meeting moved to Thursday",
			Body:       "Heads up, the planning session is now Thursday 10:00. Agenda attached in the follow-up.",
			Priority:   model.PriorityNormal,
			Folder:     model.FolderInbox,
			ReceivedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:         3,
			Sender:     "billing@hostingprovider.com",
			Subject:    "URGENT: invoice overdue",
			Body:       "Your invoice #4521 is 14 days overdue. Immediate payment is required to avoid suspension.",
			Priority:   model.PriorityHigh,
			Folder:     model.FolderInbox,
			ReceivedAt: now.Add(-5 * time.Hour),
		},
		{
			ID:         4,
			Sender:     "newsletter@devweekly.io",
			Subject:    "Dev Weekly #312",
			Body:       "This week: profiling tips, a new SQLite release, and more.",
			Priority:   model.PriorityLow,
			IsRead:     true,
			Folder:     model.FolderInbox,
			ReceivedAt: now.Add(-26 * time.Hour),
		},
		{
			ID:         5,
			Sender:     "noreply@github.com",
			Subject:    "[repo] PR #87 approved",
			Body:       "Your pull request was approved and is ready to merge.",
			Priority:   model.PriorityNormal,
			IsRead:     true,
			IsStarred:  true,
			Folder:     model.FolderArchive,
			ReceivedAt: now.Add(-49 * time.Hour),
		},
	}
}
