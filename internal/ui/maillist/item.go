package maillist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/theme"
)

// EmailItem wraps a model.EmailMessage so it can be used in a bubbles/list.
type EmailItem struct {
	Email model.EmailMessage
}

// FilterValue returns the string used for fuzzy filtering.
func (i EmailItem) FilterValue() string {
	return i.Email.Subject + " " + i.Email.Sender
}

// ItemDelegate implements list.ItemDelegate for rendering message rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single message row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ei, ok := item.(EmailItem)
	if !ok {
		return
	}

	e := ei.Email
	isSelected := index == m.Index()

	readMark := " "
	if !e.IsRead {
		readMark = "●"
	}

	starMark := " "
	if e.IsStarred {
		starMark = theme.StarStyle.Render("★")
	}

	priBadge := theme.PriorityStyle(e.Priority).Render(priorityLabel(e.Priority))

	sender := truncate(e.Sender, 24)
	subject := e.Subject
	if subject == "" {
		subject = "(no subject)"
	}

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(e.ReceivedAt))

	line := fmt.Sprintf(
		"%s %s %s %-24s %s  %s",
		readMark, starMark, priBadge, sender, subject, timeStr,
	)

	if !e.IsRead {
		line = theme.UnreadStyle.Render(line)
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}

// priorityLabel returns a short badge for the given priority.
func priorityLabel(p string) string {
	switch p {
	case model.PriorityHigh:
		return "HI"
	case model.PriorityLow:
		return "LO"
	default:
		return "--"
	}
}
