package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/maildeck/internal/link"
	"github.com/nhle/maildeck/internal/mailbox"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/store"
	appsync "github.com/nhle/maildeck/internal/sync"
	"github.com/nhle/maildeck/internal/ui/aipanel"
	"github.com/nhle/maildeck/internal/ui/compose"
	"github.com/nhle/maildeck/internal/ui/linkstatus"
	"github.com/nhle/maildeck/internal/ui/login"
	"github.com/nhle/maildeck/internal/ui/reader"
)

// cmdTimeout bounds the one-shot backend calls issued from commands.
const cmdTimeout = 15 * time.Second

type cacheLoadedMsg struct {
	emails   []model.EmailMessage
	accounts []model.LinkedAccount
	err      error
}

type accountDisconnectedMsg struct {
	accountID int64
	err       error
}

type authURLMsg struct {
	provider link.Provider
	mode     link.Mode
	url      string
	err      error
}

type callbackMsg struct {
	callback link.Callback
}

type linkResultMsg struct {
	result link.Result
}

type emlExportedMsg struct {
	path string
	err  error
}

func secondsToDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}

// loadCache reads the cached messages and accounts so the folders and
// the accounts view render before the first sync pass lands.
func (m Model) loadCache() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()

		emails, err := m.store.GetEmails(ctx, store.EmailFilter{Limit: 1000})

		accounts, accErr := m.store.GetAccounts(ctx)
		if accErr != nil {
			m.log.Warn().Err(accErr).Msg("loading cached accounts failed")
		}

		return cacheLoadedMsg{emails: emails, accounts: accounts, err: err}
	}
}

// persistCache replaces the cached folders with the current mailbox
// snapshot, so local moves and stars survive a restart.
func (m Model) persistCache() tea.Cmd {
	snapshot := m.mailbox.Snapshot()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()

		if err := m.store.ReplaceEmails(ctx, snapshot); err != nil {
			m.log.Warn().Err(err).Msg("persisting mailbox snapshot failed")
		}
		return nil
	}
}

// startCallbackServer binds the loopback listener and begins waiting
// for provider redirects.
func (m Model) startCallbackServer() tea.Cmd {
	if err := m.callbacks.Start(); err != nil {
		m.log.Error().Err(err).Msg("callback listener failed to start; account linking disabled")
		return nil
	}
	return m.waitForCallback()
}

// waitForCallback delivers the next provider redirect to Update.
func (m Model) waitForCallback() tea.Cmd {
	return func() tea.Msg {
		cb, ok := <-m.callbacks.Results()
		if !ok {
			return nil
		}
		return callbackMsg{callback: cb}
	}
}

func (m Model) startPoller() tea.Cmd {
	return m.poller.Start()
}

// markRead flags a message as read locally and pushes the change in the
// background. A push failure is already swallowed by the mailbox.
func (m Model) markRead(emailID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		m.mailbox.MarkRead(ctx, emailID)
		return nil
	}
}

func (m Model) disconnectAccount(accountID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		err := m.client.DisconnectAccount(ctx, accountID)
		return accountDisconnectedMsg{accountID: accountID, err: err}
	}
}

func (m Model) exportEmail(email model.EmailMessage) tea.Cmd {
	return func() tea.Msg {
		home, err := os.UserHomeDir()
		if err != nil {
			return emlExportedMsg{err: err}
		}
		dir := filepath.Join(home, "maildeck-exports")
		path, err := mailbox.ExportEML(email, dir)
		return emlExportedMsg{path: path, err: err}
	}
}

// handleSyncResult folds a polling pass into the mailbox and views.
func (m Model) handleSyncResult(msg appsync.SyncResultMsg) (tea.Model, tea.Cmd) {
	if msg.AuthError != nil {
		m.poller.Stop()
		// The stop channel is single-use, so a fresh poller is built
		// for the next session.
		m.poller = appsync.New(
			m.client, m.store,
			secondsToDuration(m.cfg.Sync.PollIntervalSec), m.log,
		)
		_ = m.client.Sessions().Clear()
		m.currentView = ViewLogin
		m.loginView = login.New(m.client, m.layout.ContentWidth(), m.layout.ContentHeight())
		m.statusMsg = msg.AuthError.Message
		return m, m.loginView.Init()
	}

	if msg.Error != nil {
		// StatusLine already surfaces the error; keep listening.
		return m, m.poller.WaitForNextResult()
	}

	added := m.mailbox.Merge(msg.Emails)
	if added > 0 {
		m.statusMsg = fmt.Sprintf("%d new message(s)", added)
	}
	if msg.Accounts != nil {
		m.accountsView.SetAccounts(msg.Accounts)
	}
	m.mailView.Reload()

	return m, tea.Batch(m.persistCache(), m.poller.WaitForNextResult())
}

// handleReaderAction executes a message action requested from the
// reading view.
func (m Model) handleReaderAction(msg reader.ActionMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case reader.ActionArchive:
		if m.mailbox.Archive(msg.EmailID) {
			m.statusMsg = "Archived"
		}
		m.currentView = ViewMail
		m.mailView.Reload()
		return m, m.persistCache()

	case reader.ActionTrash:
		if m.mailbox.Trash(msg.EmailID) {
			m.statusMsg = "Moved to trash"
		}
		m.currentView = ViewMail
		m.mailView.Reload()
		return m, m.persistCache()

	case reader.ActionStar:
		m.mailbox.ToggleStar(msg.EmailID)
		if email, _, ok := m.mailbox.Get(msg.EmailID); ok {
			m.readerView.SetEmail(email)
		}
		return m, m.persistCache()

	case reader.ActionReply:
		email, _, ok := m.mailbox.Get(msg.EmailID)
		if !ok {
			return m, nil
		}
		m.previousView = m.currentView
		m.composeView = compose.NewReply(
			m.client, email, "",
			m.layout.ContentWidth(), m.layout.ContentHeight(),
		)
		m.currentView = ViewCompose
		return m, m.composeView.Init()

	case reader.ActionSummarize:
		email, _, ok := m.mailbox.Get(msg.EmailID)
		if !ok {
			return m, nil
		}
		m.aiView = aipanel.New(
			m.assist, email,
			m.layout.ContentWidth(), m.layout.ContentHeight(),
		)
		m.currentView = ViewAI
		return m, m.aiView.Init()

	case reader.ActionExport:
		email, _, ok := m.mailbox.Get(msg.EmailID)
		if !ok {
			return m, nil
		}
		return m, m.exportEmail(email)
	}

	return m, nil
}

// startLinkFlow begins the provider handshake and switches to the
// linking view.
func (m Model) startLinkFlow(provider link.Provider, mode link.Mode) (tea.Model, tea.Cmd) {
	m.flow = link.NewFlow(m.client, provider, mode, m.log)
	m.previousView = m.currentView
	m.currentView = ViewLinking
	m.linkView = linkstatus.New(provider, m.layout.ContentWidth(), m.layout.ContentHeight())

	flow := m.flow
	begin := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		url, err := flow.Begin(ctx)
		return authURLMsg{provider: provider, mode: mode, url: url, err: err}
	}

	return m, tea.Batch(m.linkView.Init(), begin)
}

// handleAuthURL either hands the authorization URL to the browser or
// fails the handshake on the spot.
func (m Model) handleAuthURL(msg authURLMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		result := link.Result{
			Provider:      msg.provider,
			Mode:          msg.mode,
			State:         link.StateFailed,
			Message:       msg.err.Error(),
			RedirectAfter: link.FailureRedirectDelay,
		}
		return m, m.linkView.SetResult(result)
	}

	m.linkView.SetAwaiting(msg.url)
	return m, openBrowser(msg.url)
}

// handleCallback finishes the handshake once the provider redirect
// lands on the loopback listener.
func (m Model) handleCallback(msg callbackMsg) (tea.Model, tea.Cmd) {
	if m.flow == nil || m.currentView != ViewLinking {
		// A redirect from an abandoned handshake.
		m.log.Warn().
			Str("provider", msg.callback.Provider.String()).
			Msg("dropping stale provider redirect")
		return m, m.waitForCallback()
	}

	m.linkView.SetExchanging()

	flow := m.flow
	cb := msg.callback
	exchange := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		return linkResultMsg{result: flow.HandleCallback(ctx, cb)}
	}

	return m, tea.Batch(exchange, m.waitForCallback())
}

// handleLinkRedirect leaves the linking view after the outcome has been
// displayed for its redirect delay.
func (m Model) handleLinkRedirect(result link.Result) (tea.Model, tea.Cmd) {
	m.flow = nil

	if result.State != link.StateLinked {
		m.currentView = m.previousView
		return m, nil
	}

	if result.Mode == link.ModeSocialLogin {
		m.currentView = ViewMail
		if result.Created {
			m.statusMsg = "Welcome! Your account was created."
		}
		return m, m.startPoller()
	}

	m.currentView = ViewAccounts
	m.accountsView.SetStatus(result.Message)
	return m, m.poller.Refresh()
}

// shutdown stops background work and quits.
func (m Model) shutdown() tea.Cmd {
	m.poller.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.callbacks.Shutdown(ctx); err != nil {
		m.log.Warn().Err(err).Msg("callback listener shutdown failed")
	}

	return tea.Quit
}
