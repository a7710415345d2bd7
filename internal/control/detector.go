package control

import (
	"time"

	"boiler_controller/internal/clock"
	"boiler_controller/internal/sensor"
)

const (
	ExtinguishRunTime = 60 * time.Minute
	ExtinguishDrop    = 5.0

	IgnitionRise        = 2.0
	IgnitionColdStart   = 30.0
	IgnitionTimeoutCold = 20 * time.Minute
	IgnitionTimeoutWarm = 10 * time.Minute
)

// IgnitionResult is the outcome of one ignition check.
type IgnitionResult int

const (
	IgnitionIdle IgnitionResult = iota
	IgnitionPending
	IgnitionSucceeded
	IgnitionFailed
)

// Detector tracks boiler extinguishment while the fan runs and validates
// ignition attempts. The two never run at the same time.
type Detector struct {
	fanStart     clock.Mark
	maxTemp      float64
	extinguished bool

	igniting      bool
	ignitionStart clock.Mark
	ignitionTemp  float64
}

func (d *Detector) Extinguished() bool { return d.extinguished }
func (d *Detector) Igniting() bool     { return d.igniting }

// FanStarted and FanStopped reset the extinguishment context on every fan
// edge so the run time always counts from the latest start.
func (d *Detector) FanStarted() { d.fanStart = clock.Mark{} }
func (d *Detector) FanStopped() { d.fanStart = clock.Mark{} }

// FanRunTime returns how long the fan has been observed running.
func (d *Detector) FanRunTime(now clock.Millis) time.Duration { return d.fanStart.Since(now) }

// MaxTemp returns the highest supply temperature since the fan started.
func (d *Detector) MaxTemp() float64 { return d.maxTemp }

// CheckExtinguished is called every cycle while the fan is on. It reports
// true once, on the cycle extinguishment is detected.
func (d *Detector) CheckExtinguished(now clock.Millis, supply float64, trend sensor.Trend) bool {
	if d.igniting || d.extinguished {
		return false
	}
	if !d.fanStart.IsSet() {
		d.fanStart = clock.MarkAt(now)
		d.maxTemp = supply
		return false
	}
	if supply > d.maxTemp {
		d.maxTemp = supply
	}
	if d.fanStart.Reached(now, ExtinguishRunTime) && trend == sensor.Falling &&
		d.maxTemp-supply >= ExtinguishDrop {
		d.extinguished = true
		d.fanStart = clock.Mark{}
		return true
	}
	return false
}

// StartIgnition begins an ignition attempt from a faulted state.
func (d *Detector) StartIgnition(now clock.Millis, supply float64, state State) error {
	if !state.Faulted() {
		return ErrIgnitionUnavailable
	}
	d.extinguished = false
	d.igniting = true
	d.ignitionStart = clock.MarkAt(now)
	d.ignitionTemp = supply
	d.fanStart = clock.Mark{}
	d.maxTemp = 0
	return nil
}

// IgnitionTimeout is the time allowed for a rise from the given start
// temperature. A cold boiler gets longer.
func IgnitionTimeout(startTemp float64) time.Duration {
	if startTemp >= IgnitionColdStart {
		return IgnitionTimeoutWarm
	}
	return IgnitionTimeoutCold
}

// CheckIgnition validates an attempt in progress.
func (d *Detector) CheckIgnition(now clock.Millis, supply float64) IgnitionResult {
	if !d.igniting {
		return IgnitionIdle
	}
	if supply-d.ignitionTemp >= IgnitionRise {
		d.igniting = false
		d.ignitionStart = clock.Mark{}
		d.fanStart = clock.Mark{}
		d.maxTemp = 0
		return IgnitionSucceeded
	}
	if d.ignitionStart.Reached(now, IgnitionTimeout(d.ignitionTemp)) {
		d.igniting = false
		d.ignitionStart = clock.Mark{}
		d.extinguished = true
		return IgnitionFailed
	}
	return IgnitionPending
}

// IgnitionElapsed returns the time spent in the current attempt.
func (d *Detector) IgnitionElapsed(now clock.Millis) time.Duration {
	return d.ignitionStart.Since(now)
}

// IgnitionStartTemp returns the supply temperature the attempt started from.
func (d *Detector) IgnitionStartTemp() float64 { return d.ignitionTemp }

// Clear returns the detector to its initial state.
func (d *Detector) Clear() {
	*d = Detector{}
}
