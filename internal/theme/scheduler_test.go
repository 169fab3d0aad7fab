package theme

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 1, hour, 30, 0, 0, time.UTC)
	}
}

func TestIsNightWindow(t *testing.T) {
	cases := []struct {
		hour int
		want bool
	}{
		{0, true},
		{6, true},
		{7, false},
		{12, false},
		{18, false},
		{19, true},
		{23, true},
	}

	for _, tc := range cases {
		got := IsNight(time.Date(2025, 6, 1, tc.hour, 0, 0, 0, time.UTC))
		assert.Equal(t, tc.want, got, "hour %d", tc.hour)
	}
}

func TestAutoModeFollowsClock(t *testing.T) {
	s := NewScheduler(ModeAuto, false, fixedClock(21))
	assert.True(t, s.IsDark())

	s = NewScheduler(ModeAuto, false, fixedClock(10))
	assert.False(t, s.IsDark())
}

func TestManualModeIgnoresClock(t *testing.T) {
	s := NewScheduler(ModeManual, true, fixedClock(12))
	assert.True(t, s.IsDark())

	s = NewScheduler(ModeManual, false, fixedClock(22))
	assert.False(t, s.IsDark())
}

func TestToggleDisablesAuto(t *testing.T) {
	// Night time, auto mode: currently dark.
	s := NewScheduler(ModeAuto, false, fixedClock(22))
	assert.True(t, s.IsDark())

	dark := s.Toggle()
	assert.False(t, dark)
	assert.Equal(t, ModeManual, s.Mode())

	// Still light regardless of the clock.
	assert.False(t, s.IsDark())
}

func TestEnableAutoResumesClock(t *testing.T) {
	s := NewScheduler(ModeManual, false, fixedClock(22))
	assert.False(t, s.IsDark())

	s.EnableAuto()
	assert.Equal(t, ModeAuto, s.Mode())
	assert.True(t, s.IsDark())
}
