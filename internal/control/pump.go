package control

import (
	"time"

	"boiler_controller/internal/clock"
)

const (
	StagnationInterval = 30 * time.Minute
	StagnationRun      = 2 * time.Minute

	minOutdoorValid = -50.0
	maxOutdoorValid = 150.0
)

// PumpInput is what the pump policy sees each cycle.
type PumpInput struct {
	Now          clock.Millis
	Outdoor      float64
	OutdoorValid bool
	Supply       float64
	SupplyValid  bool
	Fan          bool
	MinTemp      float64
}

// PumpPolicy is the circulation pump policy with anti-stagnation runs.
type PumpPolicy struct {
	lastRun     clock.Mark
	forcedSince clock.Mark
}

// Policy returns whether the pump should run from the readings alone. The
// pump keeps circulating whenever frost is possible or the supply reading
// cannot be trusted.
func (in PumpInput) Policy() bool {
	outdoorOK := in.OutdoorValid && in.Outdoor > minOutdoorValid && in.Outdoor < maxOutdoorValid
	if !outdoorOK || in.Outdoor < 0 {
		return true
	}
	if !in.SupplyValid {
		return true
	}
	return in.Fan || in.Supply >= in.MinTemp
}

// Step returns the desired pump output and whether it is an anti-stagnation
// run. A forced run always completes its full duration.
func (p *PumpPolicy) Step(in PumpInput) (run, forced bool) {
	if p.forcedSince.IsSet() {
		if !p.forcedSince.Reached(in.Now, StagnationRun) {
			return true, true
		}
		p.forcedSince = clock.Mark{}
		p.lastRun = clock.MarkAt(in.Now)
	}
	if in.Policy() {
		return true, false
	}
	if !p.lastRun.IsSet() {
		p.lastRun = clock.MarkAt(in.Now)
	}
	if p.lastRun.Reached(in.Now, StagnationInterval) {
		p.forcedSince = clock.MarkAt(in.Now)
		return true, true
	}
	return false, false
}

// Observe records the actual output so manual runs also reset the idle timer.
func (p *PumpPolicy) Observe(now clock.Millis, running bool) {
	if running {
		p.lastRun = clock.MarkAt(now)
	}
}

// IdleFor returns how long the pump has been idle.
func (p *PumpPolicy) IdleFor(now clock.Millis) time.Duration { return p.lastRun.Since(now) }

func (p *PumpPolicy) Reset() { *p = PumpPolicy{} }
