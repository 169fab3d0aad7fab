// Package accounts implements the linked-account manager screen.
package accounts

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/maildeck/internal/keys"
	"github.com/nhle/maildeck/internal/link"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/theme"
)

// Mode represents the current state of the accounts view.
type Mode int

const (
	ModeList           Mode = iota // List linked accounts
	ModeSelectProvider             // Choose a provider to connect
	ModeConfirmRemove              // Confirm account disconnect
)

// DoneMsg signals the accounts view should close.
type DoneMsg struct{}

// ConnectRequestMsg asks the app to start the account-linking handshake.
type ConnectRequestMsg struct {
	Provider link.Provider
}

// SyncRequestMsg asks the app to trigger a backend sync for one account.
type SyncRequestMsg struct {
	AccountID int64
}

// DisconnectRequestMsg asks the app to disconnect an account.
type DisconnectRequestMsg struct {
	AccountID int64
}

// Model is the accounts manager view component.
type Model struct {
	mode        Mode
	accounts    []model.LinkedAccount
	selectedIdx int
	keys        *keys.KeyMap

	providerSelect *huh.Form
	confirmRemove  *huh.Form

	selectedProvider string
	removeConfirm    bool

	statusMsg     string
	width, height int
}

// New creates an accounts view model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:   ModeList,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command for the accounts view.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetAccounts replaces the displayed account list.
func (m *Model) SetAccounts(accounts []model.LinkedAccount) {
	m.accounts = accounts
	if m.selectedIdx >= len(accounts) && len(accounts) > 0 {
		m.selectedIdx = len(accounts) - 1
	}
}

// SetStatus shows a transient status line.
func (m *Model) SetStatus(msg string) {
	m.statusMsg = msg
}

// Update handles messages for the accounts view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.mode == ModeList {
		return m.handleListKeys(keyMsg)
	}

	switch m.mode {
	case ModeSelectProvider:
		return m.updateProviderSelect(msg)
	case ModeConfirmRemove:
		return m.updateConfirmRemove(msg)
	}
	return m, nil
}

// handleListKeys processes key events in the account list mode.
func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case msg.String() == "a":
		m.selectedProvider = ""
		m.providerSelect = m.buildProviderSelectForm()
		m.mode = ModeSelectProvider
		return m, m.providerSelect.Init()

	case msg.String() == "s":
		if len(m.accounts) == 0 {
			return m, nil
		}
		account := m.accounts[m.selectedIdx]
		m.statusMsg = fmt.Sprintf("Syncing %s...", account.EmailAddress)
		return m, func() tea.Msg {
			return SyncRequestMsg{AccountID: account.ID}
		}

	case msg.String() == "d":
		if len(m.accounts) == 0 {
			return m, nil
		}
		m.removeConfirm = false
		m.confirmRemove = m.buildConfirmRemoveForm()
		m.mode = ModeConfirmRemove
		return m, m.confirmRemove.Init()

	case key.Matches(msg, m.keys.Down):
		if len(m.accounts) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.accounts)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.accounts) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.accounts) - 1
			}
		}
		return m, nil
	}

	return m, nil
}

// --- Provider selection ---

func (m *Model) buildProviderSelectForm() *huh.Form {
	options := make([]huh.Option[string], 0, len(link.Providers))
	for _, p := range link.Providers {
		options = append(options, huh.NewOption(p.DisplayName(), p.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Connect account").
				Description("Choose the mail provider to link").
				Options(options...).
				Value(&m.selectedProvider),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateProviderSelect(msg tea.Msg) (Model, tea.Cmd) {
	if m.providerSelect == nil {
		return m, nil
	}

	mdl, cmd := m.providerSelect.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.providerSelect = f
	}

	if m.providerSelect.State == huh.StateCompleted {
		provider, err := link.ParseProvider(m.selectedProvider)
		m.mode = ModeList
		if err != nil {
			m.statusMsg = err.Error()
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Opening %s authorization...", provider.DisplayName())
		return m, func() tea.Msg {
			return ConnectRequestMsg{Provider: provider}
		}
	}
	if m.providerSelect.State == huh.StateAborted {
		m.mode = ModeList
		return m, nil
	}

	return m, cmd
}

// --- Disconnect confirmation ---

func (m *Model) buildConfirmRemoveForm() *huh.Form {
	address := ""
	if m.selectedIdx < len(m.accounts) {
		address = m.accounts[m.selectedIdx].EmailAddress
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Disconnect %s?", address)).
				Description("Mail already fetched from this account stays in your folders.").
				Affirmative("Yes, disconnect").
				Negative("Cancel").
				Value(&m.removeConfirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateConfirmRemove(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmRemove == nil {
		return m, nil
	}

	mdl, cmd := m.confirmRemove.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmRemove = f
	}

	if m.confirmRemove.State == huh.StateCompleted {
		m.mode = ModeList
		if m.removeConfirm && m.selectedIdx < len(m.accounts) {
			account := m.accounts[m.selectedIdx]
			return m, func() tea.Msg {
				return DisconnectRequestMsg{AccountID: account.ID}
			}
		}
		return m, nil
	}
	if m.confirmRemove.State == huh.StateAborted {
		m.mode = ModeList
		return m, nil
	}

	return m, cmd
}

// --- View ---

// View renders the accounts manager.
func (m Model) View() string {
	switch m.mode {
	case ModeSelectProvider:
		return m.viewForm(m.providerSelect)
	case ModeConfirmRemove:
		return m.viewForm(m.confirmRemove)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	b.WriteString(titleStyle.Render("Linked Accounts"))
	b.WriteString("\n\n")

	if len(m.accounts) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true)
		b.WriteString(emptyStyle.Render(
			"No accounts linked.\nPress 'a' to connect Gmail or Outlook.",
		))
	} else {
		for i, account := range m.accounts {
			b.WriteString(m.renderAccountItem(i, account))
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		statusStyle := lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true)
		b.WriteString(statusStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(
		"a connect | s sync | d disconnect | esc back",
	))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) renderAccountItem(idx int, account model.LinkedAccount) string {
	providerBadge := theme.ProviderStyle(account.Provider).
		Render(strings.ToUpper(account.Provider))

	statusBadge := theme.AccountStatusStyle(account.Status).Render(account.Status)

	lastSync := "never synced"
	if account.LastSyncedAt != nil {
		lastSync = "synced " + account.LastSyncedAt.Format("Jan 2 15:04")
	}
	lastSyncStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(lastSync)

	line := fmt.Sprintf("%s  %s  %s  %s",
		providerBadge, account.EmailAddress, statusBadge, lastSyncStr,
	)

	if idx == m.selectedIdx {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(f.View())
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
