package control

import (
	"time"

	"boiler_controller/internal/clock"
)

const (
	CoalFeedingNominal  = 10 * time.Minute
	CoalFeedingFailsafe = 30 * time.Minute
)

// CoalFeeding holds the fan off while the operator loads fuel.
type CoalFeeding struct {
	since clock.Mark
}

// Start reports false when feeding is already active.
func (f *CoalFeeding) Start(now clock.Millis) bool {
	if f.since.IsSet() {
		return false
	}
	f.since = clock.MarkAt(now)
	return true
}

// Stop reports false when feeding was not active.
func (f *CoalFeeding) Stop() bool {
	if !f.since.IsSet() {
		return false
	}
	f.since = clock.Mark{}
	return true
}

func (f *CoalFeeding) Active() bool { return f.since.IsSet() }

// Expired reports whether the failsafe limit has passed.
func (f *CoalFeeding) Expired(now clock.Millis) bool {
	return f.since.Reached(now, CoalFeedingFailsafe)
}

// Remaining is measured against the nominal feeding time.
func (f *CoalFeeding) Remaining(now clock.Millis) time.Duration {
	if !f.since.IsSet() {
		return 0
	}
	left := CoalFeedingNominal - f.since.Since(now)
	if left < 0 {
		return 0
	}
	return left
}
