// Package linkstatus renders the account-linking handshake progress:
// waiting for the provider, exchanging the code, and the timed
// success/failure screens.
package linkstatus

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/maildeck/internal/link"
	"github.com/nhle/maildeck/internal/theme"
)

// RedirectMsg signals that the outcome screen has been shown long
// enough and the app should return to the previous view.
type RedirectMsg struct {
	Result link.Result
}

// Model is the linking-progress view component.
type Model struct {
	provider link.Provider
	state    link.State
	authURL  string
	result   *link.Result
	spinner  spinner.Model

	width, height int
}

// New creates a linking-progress model for the given provider.
func New(provider link.Provider, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		provider: provider,
		state:    link.StateRequestingAuthURL,
		spinner:  sp,
		width:    width,
		height:   height,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetAwaiting records that the browser has been opened with authURL.
func (m *Model) SetAwaiting(authURL string) {
	m.state = link.StateAwaitingProvider
	m.authURL = authURL
}

// SetExchanging records that the callback arrived and the code
// exchange is in flight.
func (m *Model) SetExchanging() {
	m.state = link.StateExchangingCode
}

// SetResult records the terminal outcome and returns the command that
// fires the redirect after the outcome's display delay.
func (m *Model) SetResult(result link.Result) tea.Cmd {
	m.state = result.State
	m.result = &result

	return tea.Tick(result.RedirectAfter, func(time.Time) tea.Msg {
		return RedirectMsg{Result: result}
	})
}

// Update handles messages for the linking view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}
	return m, nil
}

// View renders the linking progress screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render("Connect " + m.provider.DisplayName()))
	b.WriteString("\n\n")

	switch m.state {
	case link.StateRequestingAuthURL:
		b.WriteString(m.spinner.View())
		b.WriteString(" Requesting authorization URL...")

	case link.StateAwaitingProvider:
		b.WriteString(m.spinner.View())
		b.WriteString(" Waiting for you to approve access in the browser.\n\n")
		if m.authURL != "" {
			b.WriteString(theme.HelpStyle.Render("If no browser opened, visit:"))
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().
				Foreground(theme.ColorBlue).
				Render(m.authURL))
		}

	case link.StateExchangingCode:
		b.WriteString(m.spinner.View())
		b.WriteString(" Completing authentication...")

	case link.StateLinked:
		okStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen)
		b.WriteString(okStyle.Render("✓ " + m.resultMessage()))
		b.WriteString("\n\n")
		b.WriteString(theme.HelpStyle.Render("Returning..."))

	case link.StateFailed:
		errStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)
		b.WriteString(errStyle.Render("✗ " + m.resultMessage()))
		b.WriteString("\n\n")
		b.WriteString(theme.HelpStyle.Render("Returning..."))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("esc cancel"))

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(b.String())
}

func (m Model) resultMessage() string {
	if m.result == nil {
		return ""
	}
	return m.result.Message
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
