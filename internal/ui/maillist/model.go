// Package maillist implements the folder-tabbed message list.
package maillist

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/maildeck/internal/keys"
	"github.com/nhle/maildeck/internal/mailbox"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/theme"
)

// OpenEmailMsg is sent when the user opens a message.
type OpenEmailMsg struct {
	EmailID int64
}

// FolderChangedMsg is sent when the active folder switches.
type FolderChangedMsg struct {
	Folder model.Folder
}

// folders in tab order.
var folderOrder = []model.Folder{
	model.FolderInbox,
	model.FolderArchive,
	model.FolderTrash,
}

// Model is the message list view component.
type Model struct {
	list        list.Model
	mailbox     *mailbox.Manager
	keys        *keys.KeyMap
	folder      model.Folder
	searchMode  bool
	searchQuery string
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a message list model.
func New(mb *mailbox.Manager, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Inbox"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search mail..."
	si.Prompt = "/ "
	si.Width = width - 4

	m := Model{
		list:        l,
		mailbox:     mb,
		keys:        k,
		folder:      model.FolderInbox,
		searchInput: si,
		width:       width,
		height:      height,
	}
	m.Reload()
	return m
}

// Init returns no command; the app loads data via the poller.
func (m Model) Init() tea.Cmd {
	return nil
}

// Folder returns the active folder.
func (m Model) Folder() model.Folder {
	return m.folder
}

// FolderIndex returns the tab index of the active folder.
func (m Model) FolderIndex() int {
	for i, f := range folderOrder {
		if f == m.folder {
			return i
		}
	}
	return 0
}

// Searching reports whether the search input owns the keyboard.
func (m Model) Searching() bool {
	return m.searchMode
}

// Selected returns the currently highlighted message, if any.
func (m Model) Selected() (model.EmailMessage, bool) {
	item, ok := m.list.SelectedItem().(EmailItem)
	if !ok {
		return model.EmailMessage{}, false
	}
	return item.Email, true
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(keyMsg)
		}
		return m.handleNormalKeys(keyMsg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchQuery = m.searchInput.Value()
		m.Reload()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.searchQuery = ""
		m.Reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		email, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return OpenEmailMsg{EmailID: email.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.FolderInbox):
		return m.switchFolder(model.FolderInbox)

	case key.Matches(msg, m.keys.FolderArchive):
		return m.switchFolder(model.FolderArchive)

	case key.Matches(msg, m.keys.FolderTrash):
		return m.switchFolder(model.FolderTrash)

	case key.Matches(msg, m.keys.Archive):
		if email, ok := m.Selected(); ok && m.folder == model.FolderInbox {
			m.mailbox.Archive(email.ID)
			m.Reload()
		}
		return m, nil

	case key.Matches(msg, m.keys.Trash):
		if email, ok := m.Selected(); ok {
			if m.folder == model.FolderTrash {
				m.mailbox.Purge(email.ID)
			} else {
				m.mailbox.Trash(email.ID)
			}
			m.Reload()
		}
		return m, nil

	case key.Matches(msg, m.keys.Restore):
		if email, ok := m.Selected(); ok && m.folder == model.FolderTrash {
			m.mailbox.Restore(email.ID)
			m.Reload()
		}
		return m, nil

	case key.Matches(msg, m.keys.Star):
		if email, ok := m.Selected(); ok {
			m.mailbox.ToggleStar(email.ID)
			m.Reload()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// switchFolder changes the active folder and reloads the list.
func (m Model) switchFolder(f model.Folder) (Model, tea.Cmd) {
	if m.folder == f {
		return m, nil
	}
	m.folder = f
	m.Reload()
	return m, func() tea.Msg {
		return FolderChangedMsg{Folder: f}
	}
}

// Reload refreshes the list items from the mailbox.
func (m *Model) Reload() {
	var emails []model.EmailMessage
	switch m.folder {
	case model.FolderArchive:
		emails = m.mailbox.Archived()
	case model.FolderTrash:
		emails = m.mailbox.Trashed()
	default:
		emails = m.mailbox.Inbox()
	}

	if m.searchQuery != "" {
		q := strings.ToLower(m.searchQuery)
		filtered := emails[:0:0]
		for _, e := range emails {
			haystack := strings.ToLower(e.Subject + " " + e.Sender + " " + e.Body)
			if strings.Contains(haystack, q) {
				filtered = append(filtered, e)
			}
		}
		emails = filtered
	}

	items := make([]list.Item, len(emails))
	for i, e := range emails {
		items[i] = EmailItem{Email: e}
	}
	m.list.SetItems(items)
	m.list.Title = folderTitle(m.folder)
}

// View renders the message list.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when the folder is empty.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.searchQuery != "" {
		return style.Render("No matching messages.\nPress esc to clear the search.")
	}

	switch m.folder {
	case model.FolderArchive:
		return style.Render("Nothing archived yet.")
	case model.FolderTrash:
		return style.Render("Trash is empty.")
	default:
		return style.Render(
			"No mail yet.\n\nPress 'm' to connect an account, or 'r' to refresh.",
		)
	}
}

// TabLabels returns the folder tab labels with message counts.
func (m Model) TabLabels() []string {
	inbox, archived, trashed := m.mailbox.Counts()
	return []string{
		folderTitle(model.FolderInbox) + countSuffix(inbox),
		folderTitle(model.FolderArchive) + countSuffix(archived),
		folderTitle(model.FolderTrash) + countSuffix(trashed),
	}
}

func countSuffix(n int) string {
	if n == 0 {
		return ""
	}
	return " (" + strconv.Itoa(n) + ")"
}

func folderTitle(f model.Folder) string {
	switch f {
	case model.FolderArchive:
		return "Archive"
	case model.FolderTrash:
		return "Trash"
	default:
		return "Inbox"
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
