// Package reader implements the single-message reading view.
package reader

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/maildeck/internal/keys"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// ActionMsg signals the parent to execute an action on the open message.
type ActionMsg struct {
	Action  string
	EmailID int64
}

// Actions emitted by the reader.
const (
	ActionArchive   = "archive"
	ActionTrash     = "trash"
	ActionStar      = "star"
	ActionReply     = "reply"
	ActionSummarize = "summarize"
	ActionExport    = "export"
)

// Model is the message reading view component.
type Model struct {
	email    *model.EmailMessage
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a reader view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the reader view.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetEmail loads a message into the view.
func (m *Model) SetEmail(e model.EmailMessage) {
	m.email = &e
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Update handles messages for the reader view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(keyMsg, m.keys.Archive):
			return m, m.action(ActionArchive)

		case key.Matches(keyMsg, m.keys.Trash):
			return m, m.action(ActionTrash)

		case key.Matches(keyMsg, m.keys.Star):
			return m, m.action(ActionStar)

		case key.Matches(keyMsg, m.keys.Compose):
			return m, m.action(ActionReply)

		case key.Matches(keyMsg, m.keys.AI):
			return m, m.action(ActionSummarize)

		case keyMsg.String() == "x":
			return m, m.action(ActionExport)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(name string) tea.Cmd {
	if m.email == nil {
		return nil
	}
	id := m.email.ID
	return func() tea.Msg {
		return ActionMsg{Action: name, EmailID: id}
	}
}

// View renders the reader view.
func (m Model) View() string {
	if m.email == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No message selected")
	}

	hints := theme.HelpStyle.Render(
		"e archive | d trash | s star | c reply | a summarize | x export | esc back",
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), hints)
}

// renderContent builds the full message content for the viewport.
func (m Model) renderContent() string {
	e := m.email

	var b strings.Builder

	subjectStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	b.WriteString(subjectStyle.Render(e.Subject))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("From: "))
	b.WriteString(e.Sender)
	b.WriteString("\n")
	if e.Recipient != "" {
		b.WriteString(labelStyle.Render("To:   "))
		b.WriteString(e.Recipient)
		b.WriteString("\n")
	}
	if e.CC != "" {
		b.WriteString(labelStyle.Render("Cc:   "))
		b.WriteString(e.CC)
		b.WriteString("\n")
	}
	if !e.ReceivedAt.IsZero() {
		b.WriteString(labelStyle.Render("Date: "))
		b.WriteString(e.ReceivedAt.Format("Mon, 2 Jan 2006 15:04"))
		b.WriteString("\n")
	}

	badges := []string{
		theme.PriorityStyle(e.Priority).Render(strings.ToUpper(e.Priority)),
	}
	if e.IsStarred {
		badges = append(badges, theme.StarStyle.Render("★ starred"))
	}
	b.WriteString(fmt.Sprintf("\n%s\n", strings.Join(badges, "  ")))

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorBorder).
		Render(strings.Repeat("─", max(m.width-4, 10)))
	b.WriteString("\n")
	b.WriteString(separator)
	b.WriteString("\n\n")

	b.WriteString(e.Body)

	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// SetSize updates the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.email != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
