package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boiler_controller/internal/clock"
	"boiler_controller/internal/sensor"
)

var coreMapping = map[sensor.Role]string{
	sensor.Supply:  "28-0000000000a1",
	sensor.Return:  "28-0000000000a2",
	sensor.Boiler:  "28-0000000000a3",
	sensor.Outside: "28-0000000000a4",
}

type harness struct {
	t    *testing.T
	bus  *sensor.FakeBus
	clk  *clock.Fake
	core *Core
	out  Outputs
}

func newHarness(t *testing.T, supply float64, opts Options) *harness {
	t.Helper()
	bus := sensor.NewFakeBus()
	bus.Set(coreMapping[sensor.Supply], supply)
	bus.Set(coreMapping[sensor.Return], supply-10)
	bus.Set(coreMapping[sensor.Boiler], supply+2)
	bus.Set(coreMapping[sensor.Outside], 5)
	h := &harness{
		t:    t,
		bus:  bus,
		clk:  clock.NewFake(1000),
		core: NewCore(sensor.NewPipeline(bus, coreMapping), opts),
	}
	h.run(2 * time.Second)
	return h
}

func (h *harness) now() clock.Millis { return h.clk.Now() }

func (h *harness) setSupply(v float64) { h.bus.Set(coreMapping[sensor.Supply], v) }

// run ticks once per second for d.
func (h *harness) run(d time.Duration) {
	for i := time.Duration(0); i < d; i += time.Second {
		h.out = h.core.Tick(h.clk.Advance(time.Second)).Outputs
	}
}

// runProfile ticks once per second, feeding supply from f(elapsed), and stops
// early when stop returns true.
func (h *harness) runProfile(d time.Duration, f func(time.Duration) float64, stop func() bool) time.Duration {
	for el := time.Duration(0); el < d; el += time.Second {
		h.setSupply(f(el))
		h.out = h.core.Tick(h.clk.Advance(time.Second)).Outputs
		if stop != nil && stop() {
			return el
		}
	}
	return d
}

func (h *harness) events() []EventType {
	var out []EventType
	for _, e := range h.core.RecentEvents() {
		out = append(out, e.Type)
	}
	return out
}

func (h *harness) status() Status { return h.core.Status(h.now()) }

func hotParams() AutoParams {
	p := DefaultAutoParams()
	p.Setpoint = 80
	p.MaxTemp = 85
	p.OverheatTemp = 90
	return p
}

// burnOut rises to 70, holds, then falls at one degree per minute to floor.
func burnOut(floor float64) func(time.Duration) float64 {
	return burnOutFrom(50, floor)
}

// burnOutFrom climbs linearly from start to 70 over 20 minutes, holds, then
// falls at one degree per minute to floor.
func burnOutFrom(start, floor float64) func(time.Duration) float64 {
	return func(el time.Duration) float64 {
		m := el.Minutes()
		switch {
		case m < 20:
			return start + (70-start)*m/20
		case m < 55:
			return 70
		}
		v := 70 - (m - 55)
		if v < floor {
			return floor
		}
		return v
	}
}

func TestCore_SettlesWithReadings(t *testing.T) {
	h := newHarness(t, 40, Options{})
	st := h.status()
	assert.True(t, st.Readings[sensor.Supply].Valid)
	assert.Equal(t, 40.0, st.Readings[sensor.Supply].Value)
	assert.True(t, h.out.Fan, "40 is below the default setpoint band")
	assert.True(t, h.out.Pump)
	assert.Equal(t, StateHeating, st.State)
}

func TestCore_ManualOverrideTimeout(t *testing.T) {
	h := newHarness(t, 65, Options{})
	require.False(t, h.out.Fan)

	require.NoError(t, h.core.SetManual(Fan, true, h.now()))
	h.run(119 * time.Second)
	assert.True(t, h.out.Fan, "manual flag still active")
	assert.True(t, h.status().FanManual)

	h.run(2 * time.Second)
	assert.False(t, h.out.Fan, "automatic policy resumes after 2 min 1 s")
	assert.False(t, h.status().FanManual)
}

func TestCore_ReleaseManual(t *testing.T) {
	h := newHarness(t, 65, Options{})
	require.NoError(t, h.core.SetManual(Pump, false, h.now()))
	h.run(time.Second)
	assert.False(t, h.out.Pump)
	h.core.ReleaseManual(Pump)
	h.run(time.Second)
	assert.True(t, h.out.Pump, "supply above min temp runs the pump")
}

func TestCore_SystemDisable(t *testing.T) {
	h := newHarness(t, 40, Options{})
	require.True(t, h.out.Fan)
	require.NoError(t, h.core.SetManual(Pump, true, h.now()))

	h.core.SetSystemEnabled(false, h.now())
	h.run(time.Second)
	assert.Equal(t, Outputs{}, h.out)
	assert.ErrorIs(t, h.core.SetManual(Fan, true, h.now()), ErrSystemDisabled)
	assert.ErrorIs(t, h.core.StartCoalFeeding(h.now()), ErrSystemDisabled)
	assert.ErrorIs(t, h.core.StartIgnition(h.now()), ErrSystemDisabled)
	assert.False(t, h.status().PumpManual, "manual flags are bypassed and dropped")

	h.core.SetSystemEnabled(true, h.now())
	h.run(time.Second)
	assert.True(t, h.out.Fan)
	assert.Contains(t, h.events(), EventSystemDisabled)
	assert.Contains(t, h.events(), EventSystemEnabled)
}

func TestCore_Extinguishment(t *testing.T) {
	h := newHarness(t, 50, Options{})
	require.NoError(t, h.core.SetAutoParams(hotParams()))

	stopAt := h.runProfile(75*time.Minute, burnOut(64), func() bool {
		return h.status().State == StateBoilerExtinguished
	})
	require.Less(t, stopAt, 75*time.Minute, "extinguishment never detected")
	assert.GreaterOrEqual(t, stopAt, 60*time.Minute)
	assert.False(t, h.out.Fan)
	assert.True(t, h.status().Extinguished)
	assert.Contains(t, h.events(), EventBoilerExtinguished)

	h.runProfile(5*time.Minute, func(time.Duration) float64 { return 40 }, nil)
	assert.False(t, h.out.Fan, "no automatic restart without ignition")
	assert.Equal(t, StateBoilerExtinguished, h.status().State)
}

func TestCore_SmallDropIsNotExtinguishment(t *testing.T) {
	h := newHarness(t, 50, Options{})
	require.NoError(t, h.core.SetAutoParams(hotParams()))

	h.runProfile(75*time.Minute, burnOut(67), nil)
	assert.True(t, h.out.Fan)
	assert.NotEqual(t, StateBoilerExtinguished, h.status().State)
	assert.NotContains(t, h.events(), EventBoilerExtinguished)
}

func TestCore_AutoIgnitionAfterExtinguishment(t *testing.T) {
	h := newHarness(t, 50, Options{AutoIgnition: true})
	require.NoError(t, h.core.SetAutoParams(hotParams()))

	h.runProfile(75*time.Minute, burnOut(64), func() bool {
		return h.status().State == StateBoilerExtinguished
	})
	h.run(time.Second)
	st := h.status()
	assert.Equal(t, StateIgnitionInProgress, st.State)
	assert.True(t, st.Igniting)
	assert.True(t, h.out.Fan)
	assert.Contains(t, h.events(), EventIgnitionStarted)
}

func countEvents(events []EventType, typ EventType) int {
	n := 0
	for _, e := range events {
		if e == typ {
			n++
		}
	}
	return n
}

func TestCore_AutoIgnitionAfterEverySuccessfulRelight(t *testing.T) {
	h := newHarness(t, 50, Options{AutoIgnition: true})
	require.NoError(t, h.core.SetAutoParams(hotParams()))

	extinguished := func() bool { return h.status().State == StateBoilerExtinguished }

	h.runProfile(75*time.Minute, burnOut(64), extinguished)
	require.True(t, extinguished())
	h.run(time.Second)
	require.Equal(t, StateIgnitionInProgress, h.status().State)

	start := h.status().Readings[sensor.Supply].Value
	h.runProfile(5*time.Minute, func(el time.Duration) float64 {
		return start + el.Minutes()
	}, func() bool { return h.status().State != StateIgnitionInProgress })
	require.Equal(t, StateHeating, h.status().State)

	relit := h.status().Readings[sensor.Supply].Value
	h.runProfile(75*time.Minute, burnOutFrom(relit, 60), extinguished)
	require.True(t, extinguished(), "second burn-out should be detected")
	h.run(time.Second)

	st := h.status()
	assert.Equal(t, StateIgnitionInProgress, st.State, "a successful relight re-arms automatic ignition")
	assert.True(t, st.Igniting)
	assert.True(t, h.out.Fan)
	assert.Equal(t, 2, countEvents(h.events(), EventIgnitionStarted))
}

func TestCore_AutoIgnitionWaitsForOperatorAfterFailure(t *testing.T) {
	h := newHarness(t, 50, Options{AutoIgnition: true})
	require.NoError(t, h.core.SetAutoParams(hotParams()))

	h.runProfile(75*time.Minute, burnOut(64), func() bool {
		return h.status().State == StateBoilerExtinguished
	})
	h.run(IgnitionTimeoutWarm + 2*time.Second)
	require.Equal(t, StateIgnitionFailed, h.status().State)

	h.run(time.Minute)
	assert.Equal(t, StateIgnitionFailed, h.status().State)
	assert.False(t, h.out.Fan)
	assert.Equal(t, 1, countEvents(h.events(), EventIgnitionStarted), "no second automatic attempt")
}

func TestCore_PumpIdleReported(t *testing.T) {
	h := newHarness(t, 40, Options{})
	require.True(t, h.out.Pump)
	assert.Zero(t, h.status().PumpIdle, "a running pump is not idle")

	// hold the fan off so the cold supply leaves the pump without a reason to run
	require.NoError(t, h.core.SetManual(Fan, false, h.now()))
	h.run(90 * time.Second)
	require.NoError(t, h.core.SetManual(Fan, false, h.now()))
	h.run(90 * time.Second)

	assert.False(t, h.out.Pump)
	idle := h.status().PumpIdle
	assert.GreaterOrEqual(t, idle, 2*time.Minute)
	assert.LessOrEqual(t, idle, 3*time.Minute)
}

func faultCore(h *harness) {
	h.core.state = StateBoilerExtinguished
	h.core.detector.extinguished = true
}

func TestCore_IgnitionSuccess(t *testing.T) {
	h := newHarness(t, 20, Options{})
	faultCore(h)
	h.run(time.Second)
	require.False(t, h.out.Fan)

	require.NoError(t, h.core.StartIgnition(h.now()))
	h.run(time.Second)
	assert.True(t, h.out.Fan)
	assert.Equal(t, StateIgnitionInProgress, h.status().State)

	h.runProfile(5*time.Minute, func(el time.Duration) float64 {
		return 20 + 3*el.Minutes()/5
	}, func() bool { return h.status().State != StateIgnitionInProgress })

	st := h.status()
	assert.Equal(t, StateHeating, st.State)
	assert.False(t, st.Igniting)
	assert.False(t, st.Extinguished)
	assert.True(t, h.out.Fan)
	assert.Contains(t, h.events(), EventIgnitionSuccess)
}

func TestCore_IgnitionFailure(t *testing.T) {
	h := newHarness(t, 20, Options{})
	assert.ErrorIs(t, h.core.StartIgnition(h.now()), ErrIgnitionUnavailable)

	faultCore(h)
	require.NoError(t, h.core.StartIgnition(h.now()))
	h.run(10 * time.Minute)
	assert.Equal(t, StateIgnitionInProgress, h.status().State, "a cold start gets 20 minutes")
	assert.True(t, h.out.Fan)

	h.run(10*time.Minute + time.Second)
	st := h.status()
	assert.Equal(t, StateIgnitionFailed, st.State)
	assert.True(t, st.Extinguished)
	assert.False(t, h.out.Fan)
	assert.Contains(t, h.events(), EventIgnitionFailed)

	h.run(time.Minute)
	assert.False(t, h.out.Fan, "failure waits for the operator")

	h.core.ResetFaults(h.now())
	h.run(time.Second)
	assert.True(t, h.out.Fan)
	assert.Equal(t, StateHeating, h.status().State)
}

func TestCore_ComfortModeAndFallback(t *testing.T) {
	h := newHarness(t, 40, Options{})
	assert.ErrorIs(t, h.core.SetMode(ModeComfort, h.now()), ErrHomeSensorOffline)

	require.NoError(t, h.core.SetHomeTemperature(20, h.now()))
	require.NoError(t, h.core.SetMode(ModeComfort, h.now()))
	h.run(time.Second)
	st := h.status()
	assert.Equal(t, ModeComfort, st.Mode)
	assert.Equal(t, ComfortHeating1, st.ComfortState)
	assert.True(t, h.out.Fan)

	h.core.SetHomeOnline(false)
	h.run(time.Second)
	assert.Equal(t, ModeAuto, h.core.Mode())
	assert.Contains(t, h.events(), EventComfortFallback)
	assert.Contains(t, h.events(), EventModeChanged)
}

func TestCore_ComfortFallbackOnStaleHome(t *testing.T) {
	h := newHarness(t, 40, Options{})
	require.NoError(t, h.core.SetHomeTemperature(20, h.now()))
	require.NoError(t, h.core.SetMode(ModeComfort, h.now()))

	h.run(4 * time.Minute)
	assert.Equal(t, ModeComfort, h.core.Mode())
	h.run(61 * time.Second)
	assert.Equal(t, ModeAuto, h.core.Mode())
}

func TestCore_ComfortTargetChange(t *testing.T) {
	h := newHarness(t, 40, Options{})
	require.NoError(t, h.core.SetHomeTemperature(23, h.now()))
	require.NoError(t, h.core.SetMode(ModeComfort, h.now()))
	h.run(time.Second)
	require.Equal(t, ComfortHeating1, h.status().ComfortState)

	p := h.core.ComfortParams()
	p.TargetHomeTemp = 22
	require.NoError(t, h.core.SetComfortParams(p, h.now()))
	assert.Equal(t, ComfortMaintain, h.status().ComfortState)

	p.TargetHomeTemp = 40
	var re *RangeError
	assert.ErrorAs(t, h.core.SetComfortParams(p, h.now()), &re)
	assert.Equal(t, 22.0, h.core.ComfortParams().TargetHomeTemp, "rejected values keep the old parameters")
}

func TestCore_CoalFeeding(t *testing.T) {
	h := newHarness(t, 40, Options{})
	require.True(t, h.out.Fan)

	require.NoError(t, h.core.StartCoalFeeding(h.now()))
	h.run(time.Second)
	assert.False(t, h.out.Fan)
	assert.True(t, h.status().CoalFeeding)

	h.run(30 * time.Minute)
	assert.False(t, h.status().CoalFeeding, "failsafe stops feeding")
	assert.True(t, h.out.Fan)
	assert.Contains(t, h.events(), EventCoalFeedingStarted)
	assert.Contains(t, h.events(), EventCoalFeedingStopped)
}

func TestCore_SensorFreezeJournaled(t *testing.T) {
	h := newHarness(t, 40, Options{})
	h.bus.Disconnect(coreMapping[sensor.Boiler])
	h.run(65 * time.Second)
	assert.Contains(t, h.events(), EventSensorFrozen)
	assert.True(t, h.status().Readings[sensor.Boiler].Frozen)
}

func TestCore_NudgeSetpoint(t *testing.T) {
	h := newHarness(t, 40, Options{})
	v, err := h.core.NudgeSetpoint(5)
	require.NoError(t, err)
	assert.Equal(t, 61.5, v, "at most three steps per call")

	require.NoError(t, h.core.SetSetpoint(79.5))
	v, err = h.core.NudgeSetpoint(3)
	require.NoError(t, err)
	assert.Equal(t, 80.0, v)

	assert.ErrorIs(t, h.core.SetSetpoint(81), ErrOutOfRange)
}

func TestCore_Restore(t *testing.T) {
	t.Run("faults_restore_idle", func(t *testing.T) {
		h := newHarness(t, 65, Options{})
		h.core.Restore(Persisted{
			Mode:          ModeAuto,
			Auto:          DefaultAutoParams(),
			Comfort:       DefaultComfortParams(),
			SystemEnabled: true,
			State:         StateBoilerExtinguished,
		}, h.now())
		st := h.status()
		assert.Equal(t, StateIdle, st.State)
		assert.False(t, st.Extinguished)
		assert.False(t, st.Igniting)
	})
	t.Run("running_fan_reports_heating", func(t *testing.T) {
		h := newHarness(t, 55, Options{})
		p := Persisted{
			Mode:          ModeAuto,
			Auto:          DefaultAutoParams(),
			Comfort:       DefaultComfortParams(),
			SystemEnabled: true,
			State:         StateIgnitionInProgress,
			Fan:           true,
			FanMinutes:    120,
			Mapping:       map[sensor.Role]string{sensor.Return: "28-0000000000b2"},
		}
		p.Auto.Setpoint = 70
		p.Comfort.HysteresisOn = 99
		h.core.Restore(p, h.now())

		st := h.status()
		assert.Equal(t, StateHeating, st.State)
		assert.True(t, st.Fan)
		assert.Equal(t, 70.0, st.Auto.Setpoint)
		assert.Equal(t, DefaultComfortParams(), st.Comfort, "invalid parameters fall back to defaults")
		assert.Equal(t, uint64(120), st.Stats.TotalMinutes)
		assert.Equal(t, "28-0000000000b2", st.Mapping[sensor.Return])
	})
	t.Run("comfort_waits_for_home", func(t *testing.T) {
		h := newHarness(t, 40, Options{})
		h.core.Restore(Persisted{
			Mode:          ModeComfort,
			Auto:          DefaultAutoParams(),
			Comfort:       DefaultComfortParams(),
			SystemEnabled: true,
		}, h.now())
		h.run(time.Minute)
		assert.Equal(t, ModeComfort, h.core.Mode(), "grace period before the first home reading")
		assert.True(t, h.out.Fan, "auto keeps heating meanwhile")

		require.NoError(t, h.core.SetHomeTemperature(20, h.now()))
		h.run(time.Second)
		assert.Equal(t, ComfortHeating1, h.status().ComfortState)
	})
	t.Run("disabled", func(t *testing.T) {
		h := newHarness(t, 40, Options{})
		h.core.Restore(Persisted{Auto: DefaultAutoParams(), Comfort: DefaultComfortParams(), Fan: true}, h.now())
		h.run(time.Second)
		assert.False(t, h.core.SystemEnabled())
		assert.Equal(t, Outputs{}, h.out)
	})
}

func TestCore_PersistedRoundTripsState(t *testing.T) {
	h := newHarness(t, 40, Options{})
	require.NoError(t, h.core.SetSetpoint(65))
	p := h.core.Persisted()
	assert.Equal(t, 65.0, p.Auto.Setpoint)
	assert.True(t, p.Fan)
	assert.True(t, p.SystemEnabled)
	assert.Equal(t, coreMapping, p.Mapping)
}

func TestCore_ResetSensors(t *testing.T) {
	h := newHarness(t, 40, Options{})
	require.NoError(t, h.core.ResetSensors(h.now()))
	assert.True(t, h.status().SensorPowerCycle)
	h.run(4 * time.Second)
	assert.False(t, h.status().SensorPowerCycle)
	assert.Contains(t, h.events(), EventSensorsReset)

	assert.ErrorIs(t, h.core.RemapSensor(sensor.Home, "x", h.now()), ErrUnknownRole)
	require.NoError(t, h.core.RemapSensor(sensor.Boiler, "28-0000000000c3", h.now()))
	assert.Equal(t, "28-0000000000c3", h.core.SensorMapping()[sensor.Boiler])
}

func TestCore_DrainEvents(t *testing.T) {
	h := newHarness(t, 40, Options{})
	require.NoError(t, h.core.StartCoalFeeding(h.now()))
	h.core.StopCoalFeeding(h.now())
	events := h.core.DrainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventCoalFeedingStarted, events[0].Type)
	assert.Equal(t, 40.0, events[0].Supply)
	assert.Empty(t, h.core.DrainEvents())
}
