package control

import (
	"time"

	"boiler_controller/internal/clock"
)

const ManualTimeout = 2 * time.Minute

type manualFlag struct {
	active bool
	value  bool
	since  clock.Mark
}

// Arbiter decides between automatic and manual control per actuator and
// holds the system enable switch.
type Arbiter struct {
	flags   [2]manualFlag
	enabled bool
}

func NewArbiter() *Arbiter {
	return &Arbiter{enabled: true}
}

// SetManual takes an actuator out of automatic control. Every call restarts
// the timeout.
func (a *Arbiter) SetManual(act Actuator, on bool, now clock.Millis) {
	a.flags[act] = manualFlag{active: true, value: on, since: clock.MarkAt(now)}
}

func (a *Arbiter) ClearManual(act Actuator) {
	a.flags[act] = manualFlag{}
}

// Expire clears flags with no command for ManualTimeout and returns them.
func (a *Arbiter) Expire(now clock.Millis) []Actuator {
	var out []Actuator
	for i := range a.flags {
		f := &a.flags[i]
		if f.active && f.since.Reached(now, ManualTimeout) {
			*f = manualFlag{}
			out = append(out, Actuator(i))
		}
	}
	return out
}

// Manual returns the manual value and whether the flag is set.
func (a *Arbiter) Manual(act Actuator) (bool, bool) {
	f := a.flags[act]
	return f.value, f.active
}

// Remaining returns the time until the manual flag expires.
func (a *Arbiter) Remaining(act Actuator, now clock.Millis) time.Duration {
	f := a.flags[act]
	if !f.active {
		return 0
	}
	left := ManualTimeout - f.since.Since(now)
	if left < 0 {
		return 0
	}
	return left
}

// Resolve returns the output of act: off while the system is disabled, the
// manual value while a flag is set, and auto() otherwise. auto is only called
// when the actuator is under automatic control.
func (a *Arbiter) Resolve(act Actuator, auto func() bool) bool {
	if !a.enabled {
		return false
	}
	if f := a.flags[act]; f.active {
		return f.value
	}
	return auto()
}

func (a *Arbiter) Enabled() bool { return a.enabled }

// SetEnabled flips the kill switch. Disabling drops all manual flags.
func (a *Arbiter) SetEnabled(on bool) {
	a.enabled = on
	if !on {
		a.flags = [2]manualFlag{}
	}
}
