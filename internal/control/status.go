package control

import (
	"time"

	"boiler_controller/internal/clock"
	"boiler_controller/internal/sensor"
)

// Status is a pull-only snapshot for reporting surfaces.
type Status struct {
	Mode          Mode
	State         State
	ComfortState  ComfortState
	SystemEnabled bool

	Fan           bool
	Pump          bool
	PumpForced    bool
	PumpIdle      time.Duration // time since the pump last ran, zero while running
	FanManual     bool
	PumpManual    bool
	FanManualTTL  time.Duration
	PumpManualTTL time.Duration

	Extinguished     bool
	Igniting         bool
	IgnitionElapsed  time.Duration
	IgnitionTimeout  time.Duration
	HighTemp         bool
	HeatingFor       time.Duration
	CoalFeeding      bool
	CoalFeedingLeft  time.Duration
	FanRunTime       time.Duration
	HomeAvailable    bool
	SensorPowerCycle bool

	Readings map[sensor.Role]sensor.Reading
	Trends   map[sensor.Role]sensor.Trend
	Mapping  map[sensor.Role]string

	Auto    AutoParams
	Comfort ComfortParams
	Stats   FanStats
}

// Status snapshots the core.
func (c *Core) Status(now clock.Millis) Status {
	st := Status{
		Mode:          c.mode,
		State:         c.state,
		ComfortState:  c.comfort.State(),
		SystemEnabled: c.arbiter.Enabled(),

		Fan:           c.fan,
		Pump:          c.pumpOn,
		PumpForced:    c.pumpForced,
		FanManualTTL:  c.arbiter.Remaining(Fan, now),
		PumpManualTTL: c.arbiter.Remaining(Pump, now),

		Extinguished:     c.detector.Extinguished(),
		Igniting:         c.detector.Igniting(),
		HighTemp:         c.auto.HighTemp,
		HeatingFor:       c.auto.HeatingSince().Since(now),
		CoalFeeding:      c.feeding.Active(),
		CoalFeedingLeft:  c.feeding.Remaining(now),
		FanRunTime:       c.detector.FanRunTime(now),
		HomeAvailable:    c.HomeAvailable(now),
		SensorPowerCycle: c.sensors.PowerCycling(),

		Readings: make(map[sensor.Role]sensor.Reading, len(sensor.AllRoles)),
		Trends:   make(map[sensor.Role]sensor.Trend, len(sensor.AllRoles)),
		Mapping:  c.sensors.Mapping(),

		Auto:    c.auto.Params(),
		Comfort: c.comfort.Params(),
		Stats:   c.stats.Snapshot(),
	}
	if !c.pumpOn {
		st.PumpIdle = c.pump.IdleFor(now)
	}
	_, st.FanManual = c.arbiter.Manual(Fan)
	_, st.PumpManual = c.arbiter.Manual(Pump)
	if st.Igniting {
		st.IgnitionElapsed = c.detector.IgnitionElapsed(now)
		st.IgnitionTimeout = IgnitionTimeout(c.detector.IgnitionStartTemp())
	}
	for _, r := range sensor.AllRoles {
		st.Readings[r] = c.sensors.Reading(r)
		st.Trends[r] = c.sensors.Trend(r)
	}
	return st
}

// Persisted is the part of the core that survives a restart.
type Persisted struct {
	Mode          Mode                   `json:"mode"`
	Auto          AutoParams             `json:"auto"`
	Comfort       ComfortParams          `json:"comfort"`
	Mapping       map[sensor.Role]string `json:"mapping,omitempty"`
	SystemEnabled bool                   `json:"system_enabled"`
	State         State                  `json:"state"`
	Fan           bool                   `json:"fan"`
	Pump          bool                   `json:"pump"`
	FanMinutes    uint64                 `json:"fan_minutes"`
	FanCycles     uint64                 `json:"fan_cycles"`
}

// Persisted returns the current restorable state.
func (c *Core) Persisted() Persisted {
	return Persisted{
		Mode:          c.mode,
		Auto:          c.auto.Params(),
		Comfort:       c.comfort.Params(),
		Mapping:       c.sensors.Mapping(),
		SystemEnabled: c.arbiter.Enabled(),
		State:         c.state,
		Fan:           c.fan,
		Pump:          c.pumpOn,
		FanMinutes:    c.stats.TotalMinutes,
		FanCycles:     c.stats.TotalCycles,
	}
}

// Restore applies a persisted snapshot at startup. Invalid parameters fall
// back to defaults. Ignition and coal feeding are never resumed, and faults
// restore as Idle. A fan that was running restarts its timers now.
func (c *Core) Restore(p Persisted, now clock.Millis) {
	if p.Auto.Validate() == nil {
		c.auto = NewAuto(p.Auto)
	} else {
		c.auto = NewAuto(DefaultAutoParams())
	}
	if p.Comfort.Validate() == nil {
		c.comfort = NewComfort(p.Comfort)
	} else {
		c.comfort = NewComfort(DefaultComfortParams())
	}
	for r, addr := range p.Mapping {
		if r.OnBus() && addr != "" {
			_ = c.sensors.Remap(r, addr, now)
		}
	}

	c.mode = p.Mode
	c.comfort.Reset(now, 0)
	if c.mode == ModeComfort {
		c.homeGrace = clock.MarkAt(now)
	}

	c.detector.Clear()
	c.feeding.Stop()
	c.ignitionPending = false
	c.stats.TotalMinutes = p.FanMinutes
	c.stats.TotalCycles = p.FanCycles

	c.arbiter.SetEnabled(p.SystemEnabled)
	c.state = StateIdle
	c.fan, c.pumpOn = false, false
	if !p.SystemEnabled {
		return
	}
	switch p.State {
	case StateOverheat, StateHeatingTimeout, StateCoalBurned:
		c.state = p.State
	}
	if p.Fan {
		c.fan = true
		c.state = StateHeating
		c.auto.MarkHeating(now)
	}
	c.pumpOn = p.Pump
	if c.pumpOn {
		c.pump.Observe(now, true)
	}
}
