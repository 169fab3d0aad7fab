// Package aipanel implements the mail-analysis side panel: summaries,
// priority detection, and tone-selectable draft replies.
package aipanel

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	aiservice "github.com/nhle/maildeck/internal/ai"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/theme"
)

// CloseMsg signals the parent to close the AI panel.
type CloseMsg struct{}

// UseReplyMsg asks the app to open the compose view pre-filled with
// the generated reply.
type UseReplyMsg struct {
	Email model.EmailMessage
	Body  string
}

// chunkMsg carries a streaming response chunk from the assist service.
type chunkMsg struct {
	chunk aiservice.StreamChunk
	ok    bool
}

// priorityMsg carries a priority detection result.
type priorityMsg struct {
	priority string
	err      error
}

// Mode represents the current state of the AI panel.
type Mode int

const (
	ModeMenu Mode = iota
	ModeToneSelect
	ModeStreaming
	ModeResult
)

// operation identifies what the panel last ran.
type operation int

const (
	opNone operation = iota
	opSummarize
	opReply
	opPriority
)

// Model is the AI panel view component.
type Model struct {
	assist *aiservice.Assist
	email  model.EmailMessage

	mode    Mode
	op      operation
	result  string
	errMsg  string
	stream  <-chan aiservice.StreamChunk
	cancel  context.CancelFunc
	spinner spinner.Model

	menuForm *huh.Form
	toneForm *huh.Form

	menuChoice string
	toneChoice string

	viewport      viewport.Model
	width, height int
}

// New creates an AI panel for the given message.
func New(assist *aiservice.Assist, email model.EmailMessage, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vpHeight := height - 10
	if vpHeight < 4 {
		vpHeight = 4
	}
	vp := viewport.New(width-4, vpHeight)

	m := Model{
		assist:   assist,
		email:    email,
		mode:     ModeMenu,
		spinner:  sp,
		viewport: vp,
		width:    width,
		height:   height,
	}
	m.menuForm = m.buildMenuForm()
	return m
}

// Init starts the menu form.
func (m Model) Init() tea.Cmd {
	return m.menuForm.Init()
}

func (m *Model) buildMenuForm() *huh.Form {
	m.menuChoice = ""
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("AI Assist").
				Description(truncate(m.email.Subject, 60)).
				Options(
					huh.NewOption("Summarize", "summarize"),
					huh.NewOption("Draft a reply", "reply"),
					huh.NewOption("Detect priority", "priority"),
					huh.NewOption("Close", "close"),
				).
				Value(&m.menuChoice),
		),
	).WithWidth(m.formWidth())
}

func (m *Model) buildToneForm() *huh.Form {
	m.toneChoice = aiservice.ToneProfessional
	options := make([]huh.Option[string], 0, len(aiservice.Tones))
	for _, tone := range aiservice.Tones {
		label := strings.ToUpper(tone[:1]) + tone[1:]
		options = append(options, huh.NewOption(label, tone))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Reply tone").
				Options(options...).
				Value(&m.toneChoice),
		),
	).WithWidth(m.formWidth())
}

// Update handles messages for the AI panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chunkMsg:
		return m.handleChunk(msg)

	case priorityMsg:
		m.mode = ModeResult
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.result = fmt.Sprintf("Detected priority: %s", msg.priority)
		}
		m.viewport.SetContent(m.renderResult())
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeStreaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	switch m.mode {
	case ModeMenu:
		return m.updateMenuForm(msg)
	case ModeToneSelect:
		return m.updateToneForm(msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeMenu:
		return m.updateMenuForm(msg)

	case ModeToneSelect:
		return m.updateToneForm(msg)

	case ModeStreaming:
		if msg.String() == "esc" {
			if m.cancel != nil {
				m.cancel()
			}
			m.mode = ModeMenu
			m.menuForm = m.buildMenuForm()
			return m, m.menuForm.Init()
		}
		return m, nil

	case ModeResult:
		switch msg.String() {
		case "esc":
			m.mode = ModeMenu
			m.errMsg = ""
			m.result = ""
			m.menuForm = m.buildMenuForm()
			return m, m.menuForm.Init()
		case "enter":
			if m.op == opReply && m.errMsg == "" && m.result != "" {
				email, body := m.email, m.result
				return m, func() tea.Msg {
					return UseReplyMsg{Email: email, Body: body}
				}
			}
			m.mode = ModeMenu
			m.menuForm = m.buildMenuForm()
			return m, m.menuForm.Init()
		}

		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMenuForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.menuForm == nil {
		return m, nil
	}

	mdl, cmd := m.menuForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.menuForm = f
	}

	if m.menuForm.State == huh.StateCompleted {
		switch m.menuChoice {
		case "summarize":
			return m.startSummarize()
		case "reply":
			m.mode = ModeToneSelect
			m.toneForm = m.buildToneForm()
			return m, m.toneForm.Init()
		case "priority":
			return m.startPriority()
		default:
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}
	if m.menuForm.State == huh.StateAborted {
		return m, func() tea.Msg { return CloseMsg{} }
	}

	return m, cmd
}

func (m Model) updateToneForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.toneForm == nil {
		return m, nil
	}

	mdl, cmd := m.toneForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.toneForm = f
	}

	if m.toneForm.State == huh.StateCompleted {
		return m.startReply(m.toneChoice)
	}
	if m.toneForm.State == huh.StateAborted {
		m.mode = ModeMenu
		m.menuForm = m.buildMenuForm()
		return m, m.menuForm.Init()
	}

	return m, cmd
}

// --- Operations ---

func (m Model) startSummarize() (Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.stream = m.assist.Summarize(ctx, m.email)
	m.mode = ModeStreaming
	m.op = opSummarize
	m.result = ""
	m.errMsg = ""
	return m, tea.Batch(m.spinner.Tick, m.waitForChunk())
}

func (m Model) startReply(tone string) (Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.stream = m.assist.GenerateReply(ctx, m.email, tone)
	m.mode = ModeStreaming
	m.op = opReply
	m.result = ""
	m.errMsg = ""
	return m, tea.Batch(m.spinner.Tick, m.waitForChunk())
}

func (m Model) startPriority() (Model, tea.Cmd) {
	assist, email := m.assist, m.email
	m.mode = ModeStreaming
	m.op = opPriority
	m.result = ""
	m.errMsg = ""
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		priority, err := assist.DetectPriority(context.Background(), email)
		return priorityMsg{priority: priority, err: err}
	})
}

// waitForChunk returns a command that blocks on the stream channel.
func (m Model) waitForChunk() tea.Cmd {
	stream := m.stream
	return func() tea.Msg {
		chunk, ok := <-stream
		return chunkMsg{chunk: chunk, ok: ok}
	}
}

func (m Model) handleChunk(msg chunkMsg) (Model, tea.Cmd) {
	if !msg.ok {
		// Channel closed; whatever accumulated is the result.
		m.mode = ModeResult
		m.viewport.SetContent(m.renderResult())
		return m, nil
	}

	if msg.chunk.Err != nil {
		m.errMsg = msg.chunk.Err.Error()
	} else {
		m.result += msg.chunk.Text
	}

	if msg.chunk.Done {
		m.mode = ModeResult
		m.viewport.SetContent(m.renderResult())
		m.viewport.GotoTop()
		return m, nil
	}

	return m, m.waitForChunk()
}

// --- View ---

// View renders the AI panel.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render("AI Assist"))
	b.WriteString("\n\n")

	switch m.mode {
	case ModeMenu:
		if m.menuForm != nil {
			b.WriteString(m.menuForm.View())
		}
	case ModeToneSelect:
		if m.toneForm != nil {
			b.WriteString(m.toneForm.View())
		}
	case ModeStreaming:
		b.WriteString(m.spinner.View())
		b.WriteString(" Thinking...")
		b.WriteString("\n\n")
		b.WriteString(theme.HelpStyle.Render("esc cancel"))
	case ModeResult:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		if m.op == opReply && m.errMsg == "" {
			b.WriteString(theme.HelpStyle.Render("enter use as reply | esc back"))
		} else {
			b.WriteString(theme.HelpStyle.Render("enter/esc back"))
		}
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(b.String())
}

func (m Model) renderResult() string {
	if m.errMsg != "" {
		errStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)
		return errStyle.Render("Request failed") + "\n\n" + m.errMsg
	}
	return m.result
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 4
	vpHeight := height - 10
	if vpHeight < 4 {
		vpHeight = 4
	}
	m.viewport.Height = vpHeight
}
