package service

import (
	"context"
	"time"

	bc "boiler_controller"
	"boiler_controller/internal/control"
	"boiler_controller/internal/sensor"
)

// Warning codes reported in BoilerState.Warnings.
const (
	WarnHighTemp          = "HIGH_TEMP"
	WarnExtinguished      = "BOILER_EXTINGUISHED"
	WarnIgnitionFailed    = "IGNITION_FAILED"
	WarnHomeSensorOffline = "HOME_SENSOR_OFFLINE"
	WarnSensorFrozen      = "SENSOR_FROZEN"
	WarnSensorPowerCycle  = "SENSOR_POWER_CYCLE"
	WarnSystemDisabled    = "SYSTEM_DISABLED"
)

// StateSource yields the latest controller snapshot.
type StateSource interface {
	State() bc.BoilerState
}

type MonitoringService struct {
	src StateSource
}

func NewMonitoringService(src StateSource) *MonitoringService {
	return &MonitoringService{src: src}
}

// GetState returns the snapshot taken after the latest control cycle.
// Before the first cycle it is a baseline with defaults.
func (s *MonitoringService) GetState(ctx context.Context) (bc.BoilerState, error) {
	if err := ctx.Err(); err != nil {
		return bc.BoilerState{}, err
	}
	st := s.src.State()
	if st.UpdatedAt.IsZero() {
		return baselineState(), nil
	}
	return st, nil
}

func baselineState() bc.BoilerState {
	return bc.BoilerState{
		Mode:           control.ModeAuto.String(),
		State:          control.StateIdle.String(),
		SystemEnabled:  true,
		Setpoint:       control.DefaultAutoParams().Setpoint,
		TargetHomeTemp: control.DefaultComfortParams().TargetHomeTemp,
		Temperatures:   map[string]bc.Temperature{},
		Mapping:        map[string]string{},
		UpdatedAt:      time.Now().UTC(),
	}
}

func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

// buildState converts a core status into the reporting DTO.
func buildState(s control.Status, at time.Time) bc.BoilerState {
	st := bc.BoilerState{
		Mode:          s.Mode.String(),
		State:         s.State.String(),
		SystemEnabled: s.SystemEnabled,

		Fan:        s.Fan,
		Pump:       s.Pump,
		PumpForced: s.PumpForced,
		FanManual:  s.FanManual,
		PumpManual: s.PumpManual,

		Setpoint:       s.Auto.Setpoint,
		TargetHomeTemp: s.Comfort.TargetHomeTemp,

		Temperatures: make(map[string]bc.Temperature, len(sensor.AllRoles)),
		Mapping:      make(map[string]string, len(s.Mapping)),

		CoalFeedingLeftSeconds: seconds(s.CoalFeedingLeft),
		FanManualSeconds:       seconds(s.FanManualTTL),
		PumpManualSeconds:      seconds(s.PumpManualTTL),
		FanRunSeconds:          seconds(s.FanRunTime),
		PumpIdleSeconds:        seconds(s.PumpIdle),

		FanMinutesTotal: s.Stats.TotalMinutes,
		FanMinutesToday: s.Stats.DailyMinutes,
		FanCyclesTotal:  s.Stats.TotalCycles,
		FanCyclesToday:  s.Stats.DailyCycles,

		UpdatedAt: at.UTC(),
	}
	if s.Mode == control.ModeComfort {
		st.ComfortState = s.ComfortState.String()
	}
	if s.Igniting {
		st.IgnitionRemainingSeconds = seconds(s.IgnitionTimeout - s.IgnitionElapsed)
	}

	frozen := false
	for _, r := range sensor.AllRoles {
		rd := s.Readings[r]
		st.Temperatures[r.String()] = bc.Temperature{
			Value:  rd.Value,
			Valid:  rd.Valid,
			Frozen: rd.Frozen,
			Trend:  s.Trends[r].String(),
		}
		frozen = frozen || rd.Frozen
	}
	for r, addr := range s.Mapping {
		st.Mapping[r.String()] = addr
	}

	if !s.SystemEnabled {
		st.Warnings = append(st.Warnings, WarnSystemDisabled)
	}
	if s.HighTemp {
		st.Warnings = append(st.Warnings, WarnHighTemp)
	}
	switch s.State {
	case control.StateBoilerExtinguished:
		st.Warnings = append(st.Warnings, WarnExtinguished)
	case control.StateIgnitionFailed:
		st.Warnings = append(st.Warnings, WarnIgnitionFailed)
	}
	if !s.HomeAvailable {
		st.Warnings = append(st.Warnings, WarnHomeSensorOffline)
	}
	if frozen {
		st.Warnings = append(st.Warnings, WarnSensorFrozen)
	}
	if s.SensorPowerCycle {
		st.Warnings = append(st.Warnings, WarnSensorPowerCycle)
	}
	return st
}
