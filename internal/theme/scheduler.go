package theme

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Mode selects how the dark/light decision is made.
type Mode string

const (
	// ModeAuto derives dark mode from the time of day.
	ModeAuto Mode = "auto"

	// ModeManual uses the user's explicit choice.
	ModeManual Mode = "manual"
)

// CheckInterval is how often auto mode re-evaluates the time of day.
const CheckInterval = time.Minute

// TickMsg asks the app to re-apply the scheduler's current decision.
type TickMsg struct{}

// IsNight reports whether t falls in the dark-mode window,
// 19:00 through 07:00.
func IsNight(t time.Time) bool {
	hour := t.Hour()
	return hour >= 19 || hour < 7
}

// Scheduler decides whether the UI should render dark. The clock is
// injected so the time-of-day switch is testable.
type Scheduler struct {
	mu         sync.Mutex
	mode       Mode
	manualDark bool
	now        func() time.Time
}

// NewScheduler creates a scheduler. A nil clock uses time.Now.
func NewScheduler(mode Mode, manualDark bool, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if mode != ModeManual {
		mode = ModeAuto
	}
	return &Scheduler{mode: mode, manualDark: manualDark, now: now}
}

// Mode returns the current mode.
func (s *Scheduler) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// IsDark returns the current dark/light decision.
func (s *Scheduler) IsDark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeManual {
		return s.manualDark
	}
	return IsNight(s.now())
}

// Toggle flips the effective value and switches to manual mode, the
// same way a manual toggle in the original UI disabled auto switching.
// Returns the new dark value.
func (s *Scheduler) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.manualDark
	if s.mode == ModeAuto {
		current = IsNight(s.now())
	}
	s.mode = ModeManual
	s.manualDark = !current
	return s.manualDark
}

// SetManual switches to manual mode with an explicit dark value.
func (s *Scheduler) SetManual(dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeManual
	s.manualDark = dark
}

// EnableAuto returns the scheduler to time-of-day switching.
func (s *Scheduler) EnableAuto() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeAuto
}

// TickCmd schedules the next re-evaluation. The returned command is
// dropped on program exit, which is all the cancellation a cosmetic
// timer needs.
func (s *Scheduler) TickCmd() tea.Cmd {
	return tea.Tick(CheckInterval, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}
