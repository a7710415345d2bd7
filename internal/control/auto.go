package control

import (
	"math"
	"time"

	"boiler_controller/internal/clock"
	"boiler_controller/internal/sensor"
)

const (
	ToggleMinInterval = 10 * time.Second
	ToggleMinDelta    = 0.3

	coalCheckInterval = time.Minute
	coalBurnedAfter   = 10 * time.Minute
)

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

// AutoInput is what the setpoint controller sees each cycle.
type AutoInput struct {
	Now          clock.Millis
	Supply       float64
	SupplyValid  bool
	Trend        sensor.Trend
	Fan          bool
	State        State
	Extinguished bool
}

// AutoDecision is the desired fan output and the resulting state.
type AutoDecision struct {
	Fan   bool
	State State
}

// Auto is the setpoint and hysteresis fan controller.
type Auto struct {
	params AutoParams

	lastToggle     clock.Mark
	lastToggleTemp float64
	lastToggleOn   bool
	heatingStart   clock.Mark
	coalCheck      clock.Mark
	fallingSince   clock.Mark

	// HighTemp is set while supply sits between MaxTemp and OverheatTemp.
	HighTemp bool
}

func NewAuto(p AutoParams) *Auto {
	return &Auto{params: p}
}

func (a *Auto) Params() AutoParams { return a.params }

// SetParams replaces the parameters. A setpoint change restarts the
// anti-chatter gate from the current supply temperature.
func (a *Auto) SetParams(p AutoParams, supply float64) {
	changed := p.Setpoint != a.params.Setpoint
	a.params = p
	if changed {
		a.ResetToggle(supply)
	}
}

// ResetToggle makes the next toggle a first toggle.
func (a *Auto) ResetToggle(supply float64) {
	a.lastToggle = clock.Mark{}
	a.lastToggleTemp = supply
}

// MarkHeating starts the heating timer, used when heating begins outside the
// controller's own toggle (ignition success, restored running fan).
func (a *Auto) MarkHeating(now clock.Millis) {
	a.heatingStart = clock.MarkAt(now)
	a.coalCheck = clock.Mark{}
	a.fallingSince = clock.Mark{}
}

// HeatingSince returns when the current heating period began.
func (a *Auto) HeatingSince() clock.Mark { return a.heatingStart }

// Reset drops every timer.
func (a *Auto) Reset() {
	a.lastToggle = clock.Mark{}
	a.lastToggleTemp = 0
	a.lastToggleOn = false
	a.heatingStart = clock.Mark{}
	a.coalCheck = clock.Mark{}
	a.fallingSince = clock.Mark{}
	a.HighTemp = false
}

// ClearHeating forgets the heating start without touching the toggle gate.
func (a *Auto) ClearHeating() {
	a.heatingStart = clock.Mark{}
	a.coalCheck = clock.Mark{}
	a.fallingSince = clock.Mark{}
}

// gateOpen applies the anti-chatter limits between opposite toggles. When
// something else switched the fan since, repeating the last toggle is free.
func (a *Auto) gateOpen(now clock.Millis, supply float64, on bool) bool {
	if !a.lastToggle.IsSet() || on == a.lastToggleOn {
		return true
	}
	return a.lastToggle.Reached(now, ToggleMinInterval) &&
		math.Abs(supply-a.lastToggleTemp) >= ToggleMinDelta
}

func (a *Auto) toggle(now clock.Millis, supply float64, on bool) {
	a.lastToggle = clock.MarkAt(now)
	a.lastToggleTemp = supply
	a.lastToggleOn = on
}

// Step evaluates one control cycle. Without a positive supply reading the
// current output and state are held.
func (a *Auto) Step(in AutoInput) AutoDecision {
	d := AutoDecision{Fan: in.Fan, State: in.State}
	s := in.Supply
	if !in.SupplyValid || s <= 0 {
		return d
	}
	p := a.params

	a.HighTemp = s >= p.MaxTemp && s < p.OverheatTemp

	if s >= p.OverheatTemp {
		if d.Fan {
			a.ClearHeating()
		}
		return AutoDecision{Fan: false, State: StateOverheat}
	}
	if d.State == StateOverheat {
		d.State = StateIdle
	}

	switch {
	case !d.Fan && s < p.Setpoint-p.Hysteresis && a.gateOpen(in.Now, s, true) && !in.Extinguished:
		d.Fan = true
		d.State = StateHeating
		a.toggle(in.Now, s, true)
		a.MarkHeating(in.Now)
	case d.Fan && s >= p.Setpoint+p.Hysteresis && a.gateOpen(in.Now, s, false):
		d.Fan = false
		d.State = StateIdle
		a.toggle(in.Now, s, false)
		a.ClearHeating()
	}

	if !d.Fan {
		a.coalCheck = clock.Mark{}
		a.fallingSince = clock.Mark{}
		return d
	}

	if d.State == StateHeating && a.heatingStart.Reached(in.Now, minutes(p.HeatingTimeout)) &&
		s < p.Setpoint-p.Tolerance {
		d.State = StateHeatingTimeout
	}

	if d.State == StateHeating || d.State == StateHeatingTimeout {
		if !a.coalCheck.IsSet() || a.coalCheck.Reached(in.Now, coalCheckInterval) {
			a.coalCheck = clock.MarkAt(in.Now)
			if in.Trend == sensor.Falling {
				if !a.fallingSince.IsSet() {
					a.fallingSince = clock.MarkAt(in.Now)
				} else if a.fallingSince.Reached(in.Now, coalBurnedAfter) {
					d.State = StateCoalBurned
				}
			} else {
				a.fallingSince = clock.Mark{}
			}
		}
	}
	return d
}
