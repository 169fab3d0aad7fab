package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/store"
)

// SyncState represents the current state of the background sync.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the state of the backend polling loop.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a polling pass completes.
type SyncResultMsg struct {
	Emails        []model.EmailMessage
	Accounts      []model.LinkedAccount
	Error         error
	AuthError     *AuthErrorMsg
	NewEmailCount int
}

// AuthErrorMsg is a tea.Msg sent when the backend rejects our session.
type AuthErrorMsg struct {
	Message string
}

// AccountSyncMsg is a tea.Msg sent when an on-demand account sync finishes.
type AccountSyncMsg struct {
	AccountID   int64
	Message     string
	EmailsAdded int
	Error       error
}

// fetchTimeout is the maximum time allowed for a single polling pass.
const fetchTimeout = 30 * time.Second

// Poller periodically fetches emails and linked accounts from the
// backend and mirrors them into the local cache.
type Poller struct {
	client   *api.Client
	store    store.Store
	interval time.Duration
	log      zerolog.Logger

	status    SyncStatus
	resultCh  chan tea.Msg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller. A non-positive interval falls back to two minutes.
func New(client *api.Client, s store.Store, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	return &Poller{
		client:    client,
		store:     s,
		interval:  interval,
		log:       log,
		resultCh:  make(chan tea.Msg, 16),
		triggerCh: make(chan struct{}, 16),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine and subscribes to results. The
// returned command waits on the result channel and delivers messages to
// the Bubble Tea runtime.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate polling pass.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// Channel full; a pass is already queued
	}
	return nil
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SyncAccount asks the backend to pull fresh mail for one linked
// account, then queues a polling pass to pick up the results.
func (p *Poller) SyncAccount(accountID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		result, err := p.client.SyncAccount(ctx, accountID)
		if err != nil {
			return AccountSyncMsg{AccountID: accountID, Error: err}
		}

		p.Refresh()

		return AccountSyncMsg{
			AccountID:   accountID,
			Message:     result.Message,
			EmailsAdded: result.EmailsAdded,
		}
	}
}

// loop runs the polling loop until Stop is called.
func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial fetch immediately
	p.fetchAndCache()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.fetchAndCache()
		case <-p.triggerCh:
			p.fetchAndCache()
		}
	}
}

// fetchAndCache performs a single polling pass: fetch emails and
// accounts, mirror them into the store, and report the result.
func (p *Poller) fetchAndCache() {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	emails, err := p.client.Emails(ctx, api.EmailFilter{})
	if err != nil {
		p.setStatus(SyncError, err)

		if api.IsUnauthorized(err) {
			p.sendResult(SyncResultMsg{
				Error: err,
				AuthError: &AuthErrorMsg{
					Message: "Session expired. Please log in again.",
				},
			})
			return
		}

		p.sendResult(SyncResultMsg{Error: err})
		return
	}

	accounts, err := p.client.Accounts(ctx)
	if err != nil {
		// Emails arrived; account data is secondary, so report and
		// keep the pass alive.
		p.log.Warn().Err(err).Msg("account fetch failed during sync pass")
		accounts = nil
	}

	newCount := p.countNew(ctx, emails)

	// Fetched emails are not cached here: the app merges them into the
	// mailbox first, so locally moved messages keep their folder, and
	// persists the merged snapshot itself.
	if len(accounts) > 0 {
		if cacheErr := p.store.ReplaceAccounts(ctx, accounts); cacheErr != nil {
			p.log.Warn().Err(cacheErr).Msg("caching accounts failed")
		}
	}

	p.setStatus(SyncIdle, nil)
	p.sendResult(SyncResultMsg{
		Emails:        emails,
		Accounts:      accounts,
		NewEmailCount: newCount,
	})
}

// countNew reports how many of the fetched emails are not yet cached.
func (p *Poller) countNew(ctx context.Context, emails []model.EmailMessage) int {
	if len(emails) == 0 {
		return 0
	}

	existing, err := p.store.GetEmails(ctx, store.EmailFilter{Limit: 1000})
	if err != nil {
		return 0
	}

	existingIDs := make(map[int64]bool, len(existing))
	for _, e := range existing {
		existingIDs[e.ID] = true
	}

	count := 0
	for _, e := range emails {
		if !existingIDs[e.ID] {
			count++
		}
	}
	return count
}

// setStatus updates the poller status.
func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a message on the result channel without blocking.
func (p *Poller) sendResult(msg tea.Msg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync
// result. Call this after processing a SyncResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}

// StatusLine renders a one-line summary for the status bar.
func (p *Poller) StatusLine() string {
	status := p.Status()

	switch status.State {
	case SyncRunning:
		return "syncing..."
	case SyncError:
		return fmt.Sprintf("sync error: %v", status.Error)
	default:
		if status.LastSync.IsZero() {
			return "not synced yet"
		}
		return fmt.Sprintf("synced %s", status.LastSync.Format("15:04:05"))
	}
}
