// Package app wires the views, the background poller, and the
// account-linking handshake into the root Bubble Tea model.
package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	aiservice "github.com/nhle/maildeck/internal/ai"
	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/keys"
	"github.com/nhle/maildeck/internal/link"
	"github.com/nhle/maildeck/internal/mailbox"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/store"
	appsync "github.com/nhle/maildeck/internal/sync"
	"github.com/nhle/maildeck/internal/theme"
	"github.com/nhle/maildeck/internal/ui"
	accountsview "github.com/nhle/maildeck/internal/ui/accounts"
	"github.com/nhle/maildeck/internal/ui/aipanel"
	"github.com/nhle/maildeck/internal/ui/compose"
	helpview "github.com/nhle/maildeck/internal/ui/help"
	"github.com/nhle/maildeck/internal/ui/linkstatus"
	"github.com/nhle/maildeck/internal/ui/login"
	"github.com/nhle/maildeck/internal/ui/maillist"
	"github.com/nhle/maildeck/internal/ui/reader"
	"github.com/nhle/maildeck/internal/ui/settings"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewMail
	ViewReader
	ViewCompose
	ViewAccounts
	ViewLinking
	ViewSettings
	ViewAI
	ViewHelp
)

// Deps bundles the shared services the root model is built from.
type Deps struct {
	Config *model.AppConfig
	Client *api.Client
	Store  store.Store
	Log    zerolog.Logger
}

// Model is the root Bubble Tea model that manages view routing, the
// background poller, and the linking handshake.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool

	cfg       *model.AppConfig
	client    *api.Client
	store     store.Store
	mailbox   *mailbox.Manager
	poller    *appsync.Poller
	assist    *aiservice.Assist
	scheduler *theme.Scheduler
	callbacks *link.CallbackServer
	flow      *link.Flow
	keys      *keys.KeyMap
	log       zerolog.Logger

	loginView    login.Model
	mailView     maillist.Model
	readerView   reader.Model
	composeView  compose.Model
	accountsView accountsview.Model
	linkView     linkstatus.Model
	settingsView settings.Model
	aiView       aipanel.Model
	helpView     helpview.Model

	statusMsg string
}

// New creates the root application model.
func New(deps Deps) Model {
	k := keys.DefaultKeyMap()
	mb := mailbox.NewManager(deps.Client, deps.Log)

	interval := secondsToDuration(deps.Config.Sync.PollIntervalSec)
	poller := appsync.New(deps.Client, deps.Store, interval, deps.Log)

	schedMode := theme.ModeAuto
	if deps.Config.Display.ThemeMode == "manual" {
		schedMode = theme.ModeManual
	}
	scheduler := theme.NewScheduler(schedMode, deps.Config.Display.DarkMode, nil)

	m := Model{
		currentView:  ViewLogin,
		cfg:          deps.Config,
		client:       deps.Client,
		store:        deps.Store,
		mailbox:      mb,
		poller:       poller,
		assist:       aiservice.New(deps.Client, deps.Log),
		scheduler:    scheduler,
		callbacks:    link.NewCallbackServer(deps.Config.OAuth.ListenAddr, deps.Log),
		keys:         k,
		log:          deps.Log,
		loginView:    login.New(deps.Client, 80, 24),
		mailView:     maillist.New(mb, k, 80, 24),
		readerView:   reader.New(k, 80, 24),
		accountsView: accountsview.New(k, 80, 24),
		settingsView: settings.New(deps.Client, 80, 24),
		helpView:     helpview.New(k, 80, 24),
	}

	if deps.Client.Sessions().Authenticated() {
		m.currentView = ViewMail
	}

	return m
}

// Init starts the theme scheduler, the callback listener, the cache
// load, and, when a session exists, the background poller.
func (m Model) Init() tea.Cmd {
	theme.Apply(m.scheduler.IsDark())

	cmds := []tea.Cmd{
		m.scheduler.TickCmd(),
		m.loadCache(),
		m.startCallbackServer(),
	}

	if m.currentView == ViewMail {
		cmds = append(cmds, m.startPoller())
	} else {
		cmds = append(cmds, m.loginView.Init())
	}

	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.loginView.SetSize(contentWidth, contentHeight)
		m.mailView.SetSize(contentWidth, contentHeight)
		m.readerView.SetSize(contentWidth, contentHeight)
		m.composeView.SetSize(contentWidth, contentHeight)
		m.accountsView.SetSize(contentWidth, contentHeight)
		m.linkView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		m.aiView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		return m.updateActiveView(msg)

	case theme.TickMsg:
		theme.Apply(m.scheduler.IsDark())
		return m, m.scheduler.TickCmd()

	case cacheLoadedMsg:
		if len(msg.emails) == 0 {
			// No cache yet; seed the folders with demo data until the
			// first sync lands.
			m.mailbox.Load(mailbox.DemoMessages(time.Now()))
		} else {
			m.mailbox.Load(msg.emails)
		}
		if len(msg.accounts) > 0 {
			m.accountsView.SetAccounts(msg.accounts)
		}
		m.mailView.Reload()
		return m, nil

	case appsync.SyncResultMsg:
		return m.handleSyncResult(msg)

	case appsync.AccountSyncMsg:
		if msg.Error != nil {
			m.accountsView.SetStatus(fmt.Sprintf("Sync failed: %v", msg.Error))
		} else {
			status := msg.Message
			if msg.EmailsAdded > 0 {
				status = fmt.Sprintf("%s (%d new)", status, msg.EmailsAdded)
			}
			m.accountsView.SetStatus(status)
		}
		return m, nil

	case login.AuthenticatedMsg:
		m.currentView = ViewMail
		m.statusMsg = ""
		return m, m.startPoller()

	case maillist.OpenEmailMsg:
		email, _, ok := m.mailbox.Get(msg.EmailID)
		if !ok {
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewReader
		m.readerView.SetEmail(email)
		return m, tea.Batch(m.markRead(msg.EmailID), m.persistCache())

	case maillist.FolderChangedMsg:
		return m, nil

	case reader.BackMsg:
		m.currentView = ViewMail
		m.mailView.Reload()
		return m, nil

	case reader.ActionMsg:
		return m.handleReaderAction(msg)

	case compose.DoneMsg:
		m.currentView = ViewMail
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Send failed: %v", msg.Err)
		} else if msg.Sent {
			m.statusMsg = "Message sent"
		}
		return m, nil

	case accountsview.DoneMsg:
		m.currentView = ViewMail
		return m, nil

	case accountsview.ConnectRequestMsg:
		return m.startLinkFlow(msg.Provider, link.ModeAttach)

	case accountsview.SyncRequestMsg:
		return m, m.poller.SyncAccount(msg.AccountID)

	case accountsview.DisconnectRequestMsg:
		return m, m.disconnectAccount(msg.AccountID)

	case accountDisconnectedMsg:
		if msg.err != nil {
			m.accountsView.SetStatus(fmt.Sprintf("Disconnect failed: %v", msg.err))
			return m, nil
		}
		m.accountsView.SetStatus("Account disconnected")
		return m, m.poller.Refresh()

	case authURLMsg:
		return m.handleAuthURL(msg)

	case callbackMsg:
		return m.handleCallback(msg)

	case linkResultMsg:
		cmd := m.linkView.SetResult(msg.result)
		return m, cmd

	case linkstatus.RedirectMsg:
		return m.handleLinkRedirect(msg.Result)

	case settings.DoneMsg:
		m.currentView = ViewMail
		return m, nil

	case settings.ThemePrefChangedMsg:
		if msg.Preference == "manual" {
			m.scheduler.SetManual(msg.DarkMode)
		} else {
			m.scheduler.EnableAuto()
		}
		theme.Apply(m.scheduler.IsDark())
		return m, nil

	case aipanel.CloseMsg:
		m.currentView = ViewReader
		return m, nil

	case aipanel.UseReplyMsg:
		m.composeView = compose.NewReply(
			m.client, msg.Email, msg.Body,
			m.layout.ContentWidth(), m.layout.ContentHeight(),
		)
		m.currentView = ViewCompose
		return m, m.composeView.Init()

	case emlExportedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.statusMsg = "Exported to " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work regardless of the focused
// view. Returns handled=false when the key should fall through.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	// The search input owns every printable key.
	if m.currentView == ViewMail && m.mailView.Searching() && msg.String() != "ctrl+c" {
		return false, m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return true, m, m.shutdown()

	case "q":
		if m.currentView == ViewMail {
			return true, m, m.shutdown()
		}

	case "?":
		// Forms own the keyboard on these screens.
		if m.currentView == ViewLogin || m.currentView == ViewCompose ||
			m.currentView == ViewSettings || m.currentView == ViewAI {
			break
		}
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case "esc":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		if m.currentView == ViewLinking {
			// Abandon the handshake; a late redirect is dropped as stale.
			m.flow = nil
			m.currentView = m.previousView
			return true, m, nil
		}

	case "c":
		if m.currentView == ViewMail {
			m.previousView = m.currentView
			m.composeView = compose.New(
				m.client, m.layout.ContentWidth(), m.layout.ContentHeight(),
			)
			m.currentView = ViewCompose
			return true, m, m.composeView.Init()
		}

	case "m":
		if m.currentView == ViewMail {
			m.previousView = m.currentView
			m.currentView = ViewAccounts
			return true, m, m.poller.Refresh()
		}

	case ",":
		if m.currentView == ViewMail {
			m.previousView = m.currentView
			m.settingsView = settings.New(
				m.client, m.layout.ContentWidth(), m.layout.ContentHeight(),
			)
			m.currentView = ViewSettings
			return true, m, m.settingsView.Init()
		}

	case "r":
		if m.currentView == ViewMail {
			return true, m, m.poller.Refresh()
		}

	case "ctrl+g":
		if m.currentView == ViewLogin {
			mdl, cmd := m.startLinkFlow(link.Gmail, link.ModeSocialLogin)
			return true, mdl, cmd
		}

	case "ctrl+o":
		if m.currentView == ViewLogin {
			mdl, cmd := m.startLinkFlow(link.Outlook, link.ModeSocialLogin)
			return true, mdl, cmd
		}
	}

	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewMail:
		m.mailView, cmd = m.mailView.Update(msg)
	case ViewReader:
		m.readerView, cmd = m.readerView.Update(msg)
	case ViewCompose:
		m.composeView, cmd = m.composeView.Update(msg)
	case ViewAccounts:
		m.accountsView, cmd = m.accountsView.Update(msg)
	case ViewLinking:
		m.linkView, cmd = m.linkView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewAI:
		m.aiView, cmd = m.aiView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	// Full-screen views render without the mail frame.
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewLinking:
		return m.linkView.View()
	}

	header := m.layout.RenderHeader("Maildeck", m.poller.StatusLine())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	var tabBar string
	if m.currentView == ViewMail {
		tabBar = m.layout.RenderTabBar(m.mailView.TabLabels(), m.mailView.FolderIndex())
	}

	return m.layout.RenderWithFrame(header, tabBar, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewMail:
		return m.mailView.View()
	case ViewReader:
		return m.readerView.View()
	case ViewCompose:
		return m.composeView.View()
	case ViewAccounts:
		return m.accountsView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewAI:
		return m.aiView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMsg != "" && m.currentView == ViewMail {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewReader:
		return "e archive | d trash | s star | c reply | a summarize | esc back"
	case ViewCompose:
		return "enter submit | esc cancel"
	case ViewAccounts:
		return "a connect | s sync | d disconnect | esc back"
	case ViewSettings:
		return "enter select | esc back"
	case ViewAI:
		return "enter select | esc close"
	case ViewHelp:
		return "? close help | esc back"
	default:
		return "q quit | ? help | / search | c compose | m accounts | , settings | r refresh"
	}
}
