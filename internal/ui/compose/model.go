// Package compose implements the outgoing-message editor.
package compose

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/theme"
)

// DoneMsg signals that the compose view is finished. Sent reports
// whether a message went out.
type DoneMsg struct {
	Sent bool
	Err  error
}

// sendResultMsg carries the outcome of the send call.
type sendResultMsg struct {
	err error
}

// Model is the compose view component.
type Model struct {
	client  *api.Client
	form    *huh.Form
	sending bool

	// Form field values (huh binds to these)
	formTo      string
	formCC      string
	formSubject string
	formBody    string

	width, height int
}

// New creates an empty compose model.
func New(client *api.Client, width, height int) Model {
	m := Model{
		client: client,
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

// NewReply creates a compose model pre-filled as a reply. The body is
// typically an AI-drafted reply the user can edit before sending.
func NewReply(client *api.Client, original model.EmailMessage, body string, width, height int) Model {
	m := Model{
		client:      client,
		formTo:      original.Sender,
		formSubject: replySubject(original.Subject),
		formBody:    body,
		width:       width,
		height:      height,
	}
	m.form = m.buildForm()
	return m
}

func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// Init starts the compose form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("To").
				Placeholder("recipient@example.com").
				Value(&m.formTo).
				Validate(validateRecipient),
			huh.NewInput().
				Title("Cc").
				Value(&m.formCC),
			huh.NewInput().
				Title("Subject").
				Value(&m.formSubject).
				Validate(validateRequired("Subject")),
			huh.NewText().
				Title("Body").
				Value(&m.formBody).
				Lines(10),
		),
	).WithWidth(m.formWidth())
}

// Update handles messages for the compose view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sendResultMsg:
		m.sending = false
		return m, func() tea.Msg {
			return DoneMsg{Sent: msg.err == nil, Err: msg.err}
		}
	}

	if m.sending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.sending = true
		return m, m.send()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return DoneMsg{Sent: false} }
	}

	return m, cmd
}

func (m Model) send() tea.Cmd {
	client := m.client
	out := model.OutgoingEmail{
		Recipient: m.formTo,
		CC:        m.formCC,
		Subject:   m.formSubject,
		Body:      m.formBody,
	}
	return func() tea.Msg {
		err := client.SendEmail(context.Background(), out)
		return sendResultMsg{err: err}
	}
}

// View renders the compose view.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render("Compose"))
	b.WriteString("\n\n")

	if m.sending {
		b.WriteString("Sending...")
	} else {
		b.WriteString(m.form.View())
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateRecipient(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("Recipient is required")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
