package control

import (
	"fmt"
	"math"
	"time"

	"boiler_controller/internal/clock"
	"boiler_controller/internal/sensor"
)

const (
	HomeTimeout      = 5 * time.Minute
	SetpointStep     = 0.5
	maxNudgeSteps    = 3
	homeStartupGrace = HomeTimeout
)

// Options tune optional behaviour of the core.
type Options struct {
	// AutoIgnition starts one ignition attempt right after extinguishment.
	AutoIgnition bool
}

// Outputs are the actuator levels decided by a cycle.
type Outputs struct {
	Fan  bool
	Pump bool
}

// TickResult reports a cycle's outputs and any sensor boundary error.
type TickResult struct {
	Outputs
	SensorErr error
}

// Core owns every piece of control state. All methods must be called from a
// single goroutine.
type Core struct {
	opts     Options
	sensors  *sensor.Pipeline
	mode     Mode
	state    State
	auto     *Auto
	comfort  *Comfort
	detector Detector
	pump     PumpPolicy
	arbiter  *Arbiter
	feeding  CoalFeeding
	stats    FanStats
	journal  Journal

	fan        bool
	pumpOn     bool
	pumpForced bool

	homeOnline bool
	homeGrace  clock.Mark

	ignitionPending bool
	ignitionUsed    bool
}

// NewCore builds a core in Auto mode with default parameters.
func NewCore(sensors *sensor.Pipeline, opts Options) *Core {
	return &Core{
		opts:       opts,
		sensors:    sensors,
		auto:       NewAuto(DefaultAutoParams()),
		comfort:    NewComfort(DefaultComfortParams()),
		arbiter:    NewArbiter(),
		homeOnline: true,
	}
}

func (c *Core) supply() (float64, bool) {
	r := c.sensors.Reading(sensor.Supply)
	return r.Value, r.Valid
}

func (c *Core) supplyValue() float64 {
	v, _ := c.supply()
	return v
}

func (c *Core) record(typ EventType, now clock.Millis, format string, args ...any) {
	c.journal.Record(typ, now, c.supplyValue(), format, args...)
}

// HomeAvailable reports whether the home temperature can drive Comfort mode.
func (c *Core) HomeAvailable(now clock.Millis) bool {
	if !c.homeOnline {
		return false
	}
	r := c.sensors.Reading(sensor.Home)
	return r.Valid && !r.At.Reached(now, HomeTimeout)
}

// Tick runs one control cycle and returns the actuator outputs.
func (c *Core) Tick(now clock.Millis) TickResult {
	var res TickResult

	rep := c.sensors.Step(now)
	res.SensorErr = rep.Err
	for _, r := range rep.Frozen {
		c.record(EventSensorFrozen, now, "%s sensor frozen, power-cycling the bus", r)
	}

	c.arbiter.Expire(now)

	if !c.arbiter.Enabled() {
		c.fan, c.pumpOn, c.pumpForced = false, false, false
		res.Outputs = Outputs{}
		return res
	}

	if c.feeding.Active() && c.feeding.Expired(now) {
		c.feeding.Stop()
		c.record(EventCoalFeedingStopped, now, "coal feeding stopped by failsafe after %s", CoalFeedingFailsafe)
	}

	if c.ignitionPending {
		c.ignitionPending = false
		if err := c.startIgnition(now); err == nil {
			c.ignitionUsed = true
		}
	}

	prevFan := c.fan
	c.checkIgnition(now)

	// coal feeding holds the fan off even against a manual command
	fan := false
	if !c.feeding.Active() {
		fan = c.arbiter.Resolve(Fan, func() bool { return c.autoFan(now, prevFan) })
	}

	switch {
	case fan && !prevFan:
		c.detector.FanStarted()
	case !fan && prevFan:
		c.detector.FanStopped()
	}
	c.stats.Observe(now, fan, fan && !prevFan)
	c.fan = fan

	c.pumpOn, c.pumpForced = c.pumpStep(now)
	c.pump.Observe(now, c.pumpOn)

	res.Outputs = Outputs{Fan: c.fan, Pump: c.pumpOn}
	return res
}

func (c *Core) checkIgnition(now clock.Millis) {
	if !c.detector.Igniting() {
		return
	}
	supply, ok := c.supply()
	if !ok {
		// no rise can be confirmed, only the timeout applies
		supply = c.detector.IgnitionStartTemp()
	}
	switch c.detector.CheckIgnition(now, supply) {
	case IgnitionSucceeded:
		c.ignitionUsed = false
		c.state = StateHeating
		c.auto.MarkHeating(now)
		c.record(EventIgnitionSuccess, now, "ignition succeeded, supply %.1f", supply)
	case IgnitionFailed:
		c.state = StateIgnitionFailed
		c.fan = false
		c.record(EventIgnitionFailed, now, "no temperature rise after %s", IgnitionTimeout(c.detector.IgnitionStartTemp()))
	}
}

// autoFan is the fan decision while no manual flag is set: an ignition
// attempt keeps it on, otherwise the active mode controller decides.
func (c *Core) autoFan(now clock.Millis, prevFan bool) bool {
	if c.detector.Igniting() {
		c.state = StateIgnitionInProgress
		return true
	}
	return c.modeStep(now, prevFan)
}

// modeStep runs the active mode controller and the extinguishment check.
func (c *Core) modeStep(now clock.Millis, prevFan bool) bool {
	if c.state.Faulted() {
		return false
	}
	supply, supplyOK := c.supply()
	trend := c.sensors.Trend(sensor.Supply)

	var fan bool
	if c.mode == ModeComfort && c.useComfort(now) {
		home := c.sensors.Reading(sensor.Home)
		dec := c.comfort.Step(ComfortInput{
			Now:           now,
			Supply:        supply,
			SupplyValid:   supplyOK,
			Home:          home.Value,
			HomeAvailable: c.HomeAvailable(now),
			Fan:           prevFan,
			Extinguished:  c.detector.Extinguished(),
		})
		if dec.FallbackToAuto {
			c.fallbackToAuto(now, "home temperature unavailable")
			fan = c.autoStep(now, prevFan, supply, supplyOK, trend)
		} else {
			fan = dec.Fan
			c.setState(now, c.comfortState(fan))
		}
	} else {
		fan = c.autoStep(now, prevFan, supply, supplyOK, trend)
	}

	if fan && prevFan && supplyOK && c.detector.CheckExtinguished(now, supply, trend) {
		fan = false
		c.state = StateBoilerExtinguished
		c.record(EventBoilerExtinguished, now, "supply fell %.1f below its maximum %.1f",
			c.detector.MaxTemp()-supply, c.detector.MaxTemp())
		if c.mode == ModeComfort {
			c.fallbackToAuto(now, "boiler extinguished")
		}
		if c.opts.AutoIgnition && !c.ignitionUsed {
			c.ignitionPending = true
		}
	}
	return fan
}

// useComfort is false during the startup grace period before the first home
// reading arrives; Auto keeps the boiler safe meanwhile.
func (c *Core) useComfort(now clock.Millis) bool {
	if c.HomeAvailable(now) {
		c.homeGrace = clock.Mark{}
		return true
	}
	return !c.homeGrace.IsSet() || c.homeGrace.Reached(now, homeStartupGrace)
}

func (c *Core) autoStep(now clock.Millis, prevFan bool, supply float64, ok bool, trend sensor.Trend) bool {
	dec := c.auto.Step(AutoInput{
		Now:          now,
		Supply:       supply,
		SupplyValid:  ok,
		Trend:        trend,
		Fan:          prevFan,
		State:        c.state,
		Extinguished: c.detector.Extinguished(),
	})
	c.setState(now, dec.State)
	return dec.Fan
}

func (c *Core) comfortState(fan bool) State {
	switch {
	case c.comfort.State() == ComfortOverheat:
		return StateOverheat
	case fan:
		return StateHeating
	}
	return StateIdle
}

// setState records the transitions operators need to know about.
func (c *Core) setState(now clock.Millis, s State) {
	if s == c.state {
		return
	}
	switch s {
	case StateOverheat:
		c.record(EventOverheat, now, "supply %.1f reached the overheat limit", c.supplyValue())
	case StateHeatingTimeout:
		c.record(EventHeatingTimeout, now, "setpoint not reached after %.0f min", c.auto.Params().HeatingTimeout)
	case StateCoalBurned:
		c.record(EventCoalBurned, now, "supply falling for %s with the fan on", coalBurnedAfter)
	}
	c.state = s
}

func (c *Core) fallbackToAuto(now clock.Millis, reason string) {
	home := c.sensors.Reading(sensor.Home).Value
	c.comfort.Reset(now, home)
	c.mode = ModeAuto
	c.homeGrace = clock.Mark{}
	c.record(EventComfortFallback, now, "switched to auto mode: %s", reason)
}

func (c *Core) pumpStep(now clock.Millis) (run, forced bool) {
	run = c.arbiter.Resolve(Pump, func() bool {
		supply, supplyOK := c.supply()
		out := c.sensors.Reading(sensor.Outside)
		var on bool
		on, forced = c.pump.Step(PumpInput{
			Now:          now,
			Outdoor:      out.Value,
			OutdoorValid: out.Valid,
			Supply:       supply,
			SupplyValid:  supplyOK,
			Fan:          c.fan,
			MinTemp:      c.auto.Params().MinTemp,
		})
		return on
	})
	return run, forced
}

// SetMode switches between Auto and Comfort. Comfort needs a live home
// temperature.
func (c *Core) SetMode(m Mode, now clock.Millis) error {
	if m == c.mode {
		return nil
	}
	if m == ModeComfort && !c.HomeAvailable(now) {
		return ErrHomeSensorOffline
	}
	c.mode = m
	c.comfort.Reset(now, c.sensors.Reading(sensor.Home).Value)
	c.auto.ClearHeating()
	if !c.state.Faulted() && c.state != StateIgnitionInProgress {
		if c.fan {
			c.state = StateHeating
		} else {
			c.state = StateIdle
		}
	}
	c.record(EventModeChanged, now, "mode set to %s", m)
	return nil
}

func (c *Core) Mode() Mode { return c.mode }

// SetAutoParams validates and replaces the Auto parameters.
func (c *Core) SetAutoParams(p AutoParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.auto.SetParams(p, c.supplyValue())
	return nil
}

func (c *Core) AutoParams() AutoParams { return c.auto.Params() }

// SetSetpoint changes only the setpoint.
func (c *Core) SetSetpoint(v float64) error {
	p := c.auto.Params()
	p.Setpoint = v
	return c.SetAutoParams(p)
}

// NudgeSetpoint moves the setpoint by whole encoder steps, at most three per
// call, clamped to the allowed range.
func (c *Core) NudgeSetpoint(steps int) (float64, error) {
	if steps > maxNudgeSteps {
		steps = maxNudgeSteps
	} else if steps < -maxNudgeSteps {
		steps = -maxNudgeSteps
	}
	v := c.auto.Params().Setpoint + float64(steps)*SetpointStep
	v = math.Max(MinSetpoint, math.Min(MaxSetpoint, v))
	if err := c.SetSetpoint(v); err != nil {
		return 0, err
	}
	return v, nil
}

// SetComfortParams validates and replaces the Comfort parameters. A target
// change while Comfort is active restarts the sub-machine.
func (c *Core) SetComfortParams(p ComfortParams, now clock.Millis) error {
	if err := p.Validate(); err != nil {
		return err
	}
	old := c.comfort.Params().TargetHomeTemp
	c.comfort.SetParams(p)
	if c.mode == ModeComfort {
		c.comfort.TargetChanged(old, p.TargetHomeTemp, c.sensors.Reading(sensor.Home).Value, now)
	}
	return nil
}

func (c *Core) ComfortParams() ComfortParams { return c.comfort.Params() }

// SetManual puts an actuator under manual control.
func (c *Core) SetManual(a Actuator, on bool, now clock.Millis) error {
	if !c.arbiter.Enabled() {
		return ErrSystemDisabled
	}
	c.arbiter.SetManual(a, on, now)
	return nil
}

// ReleaseManual returns an actuator to automatic control.
func (c *Core) ReleaseManual(a Actuator) {
	c.arbiter.ClearManual(a)
}

// SetSystemEnabled flips the kill switch. Disabling drops every timer and
// context so enabling starts from scratch.
func (c *Core) SetSystemEnabled(on bool, now clock.Millis) {
	if on == c.arbiter.Enabled() {
		return
	}
	c.arbiter.SetEnabled(on)
	if on {
		c.record(EventSystemEnabled, now, "system enabled")
		return
	}
	c.fan, c.pumpOn, c.pumpForced = false, false, false
	c.auto.Reset()
	c.detector.Clear()
	c.comfort.Reset(now, c.sensors.Reading(sensor.Home).Value)
	c.feeding.Stop()
	c.pump.Reset()
	c.ignitionPending = false
	c.ignitionUsed = false
	c.state = StateIdle
	c.record(EventSystemDisabled, now, "system disabled, outputs off")
}

func (c *Core) SystemEnabled() bool { return c.arbiter.Enabled() }

// StartIgnition begins an operator-requested ignition attempt.
func (c *Core) StartIgnition(now clock.Millis) error {
	if !c.arbiter.Enabled() {
		return ErrSystemDisabled
	}
	if err := c.startIgnition(now); err != nil {
		return err
	}
	c.ignitionUsed = false
	return nil
}

func (c *Core) startIgnition(now clock.Millis) error {
	supply := c.supplyValue()
	if err := c.detector.StartIgnition(now, supply, c.state); err != nil {
		return err
	}
	c.ignitionPending = false
	c.state = StateIgnitionInProgress
	if c.feeding.Stop() {
		c.record(EventCoalFeedingStopped, now, "coal feeding stopped for ignition")
	}
	c.record(EventIgnitionStarted, now, "ignition started at %.1f, timeout %s", supply, IgnitionTimeout(supply))
	return nil
}

// ResetFaults acknowledges an extinguished boiler or failed ignition.
func (c *Core) ResetFaults(now clock.Millis) {
	if !c.state.Faulted() {
		return
	}
	c.detector.Clear()
	c.auto.ClearHeating()
	c.ignitionPending = false
	c.ignitionUsed = false
	c.state = StateIdle
	c.record(EventFaultsReset, now, "faults acknowledged")
}

// StartCoalFeeding holds the fan off while fuel is loaded.
func (c *Core) StartCoalFeeding(now clock.Millis) error {
	if !c.arbiter.Enabled() {
		return ErrSystemDisabled
	}
	if c.feeding.Start(now) {
		c.record(EventCoalFeedingStarted, now, "coal feeding started")
	}
	return nil
}

func (c *Core) StopCoalFeeding(now clock.Millis) {
	if c.feeding.Stop() {
		c.record(EventCoalFeedingStopped, now, "coal feeding stopped")
	}
}

// ResetSensors power-cycles the probe bus.
func (c *Core) ResetSensors(now clock.Millis) error {
	if err := c.sensors.RequestPowerCycle(now); err != nil {
		return fmt.Errorf("reset sensors: %w", err)
	}
	c.record(EventSensorsReset, now, "sensor power cycled on request")
	return nil
}

// RemapSensor moves a role to another probe address.
func (c *Core) RemapSensor(r sensor.Role, addr string, now clock.Millis) error {
	if !r.OnBus() {
		return fmt.Errorf("remap %s: %w", r, ErrUnknownRole)
	}
	return c.sensors.Remap(r, addr, now)
}

func (c *Core) SensorMapping() map[sensor.Role]string { return c.sensors.Mapping() }

// SetHomeTemperature accepts a home reading from the network.
func (c *Core) SetHomeTemperature(v float64, now clock.Millis) error {
	if err := c.sensors.Offer(sensor.Home, v, now); err != nil {
		return &RangeError{Field: "home_temperature", Value: v, Min: -50, Max: 50}
	}
	return nil
}

// SetHomeOnline records the home sensor's connection status.
func (c *Core) SetHomeOnline(online bool) {
	c.homeOnline = online
	if !online {
		c.sensors.Invalidate(sensor.Home)
	}
}

// DrainEvents returns journal entries recorded since the last drain.
func (c *Core) DrainEvents() []Event { return c.journal.Drain() }

// RecentEvents returns the kept journal oldest first.
func (c *Core) RecentEvents() []Event { return c.journal.Recent() }
