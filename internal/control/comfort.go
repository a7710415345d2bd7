package control

import (
	"math"

	"boiler_controller/internal/clock"
)

const (
	waitBandOn         = 63.0
	coolingReadyMin    = 60.0
	overcooledBelow    = 55.0
	homeRiseForComfort = 0.5
	homeRiseMinimum    = 0.3
	homeTooCold        = 23.0
	maintainBelowDelta = 3.0
	maintainAboveDelta = 7.0
	targetChangeEps    = 0.1
)

// ComfortInput is what the home-temperature controller sees each cycle.
type ComfortInput struct {
	Now           clock.Millis
	Supply        float64
	SupplyValid   bool
	Home          float64
	HomeAvailable bool
	Fan           bool
	Extinguished  bool
}

// ComfortDecision carries the desired fan output. FallbackToAuto asks the
// owner to switch the mode to Auto.
type ComfortDecision struct {
	Fan            bool
	FallbackToAuto bool
}

// Comfort drives the boiler toward a target home temperature.
type Comfort struct {
	params      ComfortParams
	state       ComfortState
	stateStart  clock.Mark
	homeAtStart float64
	lastCheck   clock.Mark
}

func NewComfort(p ComfortParams) *Comfort {
	return &Comfort{params: p}
}

func (c *Comfort) Params() ComfortParams     { return c.params }
func (c *Comfort) SetParams(p ComfortParams) { c.params = p }
func (c *Comfort) State() ComfortState       { return c.state }

// StateSince returns when the current sub-state was entered.
func (c *Comfort) StateSince() clock.Mark { return c.stateStart }

// Reset returns to Wait.
func (c *Comfort) Reset(now clock.Millis, home float64) {
	c.enter(ComfortWait, now, home)
}

// TargetChanged restarts the sub-machine when the target moved noticeably.
func (c *Comfort) TargetChanged(old, target, home float64, now clock.Millis) {
	if math.Abs(target-old) <= targetChangeEps {
		return
	}
	if home >= target {
		c.enter(ComfortMaintain, now, home)
	} else {
		c.enter(ComfortWait, now, home)
	}
}

func (c *Comfort) enter(s ComfortState, now clock.Millis, home float64) {
	c.state = s
	c.stateStart = clock.MarkAt(now)
	c.homeAtStart = home
	c.lastCheck = clock.MarkAt(now)
}

// band switches on below lo, off at or above hi and holds in between.
func band(fan bool, supply, lo, hi float64) bool {
	switch {
	case supply < lo:
		return true
	case supply >= hi:
		return false
	}
	return fan
}

// Step evaluates one control cycle.
func (c *Comfort) Step(in ComfortInput) ComfortDecision {
	if !in.HomeAvailable {
		c.Reset(in.Now, in.Home)
		return ComfortDecision{Fan: in.Fan, FallbackToAuto: true}
	}
	if !in.SupplyValid {
		return ComfortDecision{Fan: in.Fan}
	}

	p := c.params
	s, home, now := in.Supply, in.Home, in.Now
	mid := p.midBand()
	allowed := !in.Extinguished

	if s >= p.WarningTemp {
		if c.state != ComfortOverheat {
			c.enter(ComfortOverheat, now, home)
		}
		return ComfortDecision{Fan: false}
	}
	fan := in.Fan
	if c.state == ComfortOverheat {
		c.enter(ComfortWait, now, home)
		fan = false
	}

	switch c.state {
	case ComfortWait:
		fan = false
		if home < p.TargetHomeTemp-p.HysteresisOn {
			c.enter(ComfortHeating1, now, home)
			fan = s < mid && allowed
		}

	case ComfortHeating1:
		if s < mid {
			fan = allowed
		} else {
			fan = false
			c.enter(ComfortWaitCooling, now, home)
		}

	case ComfortWaitCooling:
		fan = band(fan, s, waitBandOn, p.WaitTemp) && allowed
		if c.stateStart.Reached(now, minutes(p.WaitCoolingTime)) {
			switch {
			case s >= coolingReadyMin && s <= p.WaitTemp:
				c.enter(ComfortWaitHeating, now, home)
			case s < overcooledBelow:
				c.enter(ComfortHeating1, now, home)
				fan = s < mid && allowed
			}
		}

	case ComfortWaitHeating:
		fan = band(fan, s, waitBandOn, p.WaitTemp) && allowed
		if c.stateStart.Reached(now, minutes(p.WaitAfterHeating1)) {
			if home-c.homeAtStart >= homeRiseForComfort || home >= p.CatchUpTemp {
				c.enter(ComfortComfort, now, home)
			} else {
				c.enter(ComfortHeating2, now, home)
				fan = s < p.MaxBoilerTemp && allowed
			}
		}

	case ComfortHeating2:
		if s >= p.MaxBoilerTemp {
			fan = false
			c.enter(ComfortWaitHeating, now, home)
		} else {
			fan = allowed
		}

	case ComfortComfort:
		if home >= p.TargetHomeTemp {
			c.enter(ComfortMaintain, now, home)
			fan = false
			break
		}
		fan = band(fan, s, mid-p.HysteresisBoiler, mid+p.HysteresisBoiler) && allowed
		if c.lastCheck.Reached(now, minutes(p.InertiaCheckInterval)) {
			c.lastCheck = clock.MarkAt(now)
			switch {
			case home < homeTooCold:
				c.enter(ComfortHeating1, now, home)
				fan = s < mid && allowed
			case c.stateStart.Reached(now, minutes(p.WaitAfterReduction)) &&
				home-c.homeAtStart < homeRiseMinimum:
				c.enter(ComfortHeating2, now, home)
				fan = s < p.MaxBoilerTemp && allowed
			}
		}

	case ComfortMaintain:
		switch {
		case home >= p.TargetHomeTemp+p.HysteresisOff:
			fan = false
		case home < p.TargetHomeTemp-p.HysteresisOn:
			c.enter(ComfortHeating1, now, home)
			fan = s < mid && allowed
		default:
			fan = c.maintain(fan, s, home) && allowed
		}
	}
	return ComfortDecision{Fan: fan}
}

// maintain holds the boiler a little above its minimum, lower while the home
// is still below target.
func (c *Comfort) maintain(fan bool, supply, home float64) bool {
	p := c.params
	t := p.MinBoilerTemp + maintainAboveDelta
	if home < p.TargetHomeTemp {
		t = p.MinBoilerTemp + maintainBelowDelta
	}
	return band(fan, supply, t-p.HysteresisBoiler, t+p.HysteresisBoiler)
}
