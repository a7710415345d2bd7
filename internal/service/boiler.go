package service

import (
	"context"
	"errors"
	"fmt"

	"boiler_controller/internal/clock"
	"boiler_controller/internal/control"
	"boiler_controller/internal/encoder"
	"boiler_controller/internal/logger"
	"boiler_controller/internal/sensor"
)

var errEmptyMapping = errors.New("sensor mapping is empty")

// SetpointSink announces setpoint changes made on the device itself.
type SetpointSink interface {
	PublishSetpoint(v float64) error
}

// BoilerService translates operator, network and encoder commands into core
// calls executed on the control loop.
type BoilerService struct {
	ctrl     *Controller
	setpoint SetpointSink
	log      *logger.Logger
}

func NewBoilerService(ctrl *Controller) *BoilerService {
	return &BoilerService{ctrl: ctrl, log: ctrl.log}
}

// SetSetpointSink attaches the publisher used after encoder rotations.
func (s *BoilerService) SetSetpointSink(sink SetpointSink) { s.setpoint = sink }

func (s *BoilerService) do(ctx context.Context, fn func(core *control.Core, now clock.Millis) error) error {
	return s.ctrl.Do(ctx, fn)
}

func (s *BoilerService) SetMode(ctx context.Context, mode string) error {
	m, err := control.ParseMode(mode)
	if err != nil {
		return err
	}
	return s.do(ctx, func(core *control.Core, now clock.Millis) error {
		return core.SetMode(m, now)
	})
}

func (s *BoilerService) AutoSettings(ctx context.Context) (control.AutoParams, error) {
	return query(ctx, s.ctrl, func(core *control.Core, _ clock.Millis) (control.AutoParams, error) {
		return core.AutoParams(), nil
	})
}

func (s *BoilerService) UpdateAutoSettings(ctx context.Context, p control.AutoParams) error {
	return s.do(ctx, func(core *control.Core, _ clock.Millis) error {
		return core.SetAutoParams(p)
	})
}

func (s *BoilerService) ComfortSettings(ctx context.Context) (control.ComfortParams, error) {
	return query(ctx, s.ctrl, func(core *control.Core, _ clock.Millis) (control.ComfortParams, error) {
		return core.ComfortParams(), nil
	})
}

func (s *BoilerService) UpdateComfortSettings(ctx context.Context, p control.ComfortParams) error {
	return s.do(ctx, func(core *control.Core, now clock.Millis) error {
		return core.SetComfortParams(p, now)
	})
}

// SetControl applies or releases a manual override.
func (s *BoilerService) SetControl(ctx context.Context, p ControlParams) error {
	a, err := control.ParseActuator(p.Device)
	if err != nil {
		return err
	}
	return s.do(ctx, func(core *control.Core, now clock.Millis) error {
		if !p.Manual {
			core.ReleaseManual(a)
			return nil
		}
		return core.SetManual(a, p.State, now)
	})
}

func (s *BoilerService) SetSystemEnabled(ctx context.Context, enabled bool) error {
	return s.do(ctx, func(core *control.Core, now clock.Millis) error {
		core.SetSystemEnabled(enabled, now)
		return nil
	})
}

func (s *BoilerService) StartIgnition(ctx context.Context) error {
	return s.do(ctx, func(core *control.Core, now clock.Millis) error {
		return core.StartIgnition(now)
	})
}

func (s *BoilerService) ResetFaults(ctx context.Context) error {
	return s.do(ctx, func(core *control.Core, now clock.Millis) error {
		core.ResetFaults(now)
		return nil
	})
}

func (s *BoilerService) ResetSensors(ctx context.Context) error {
	return s.do(ctx, func(core *control.Core, now clock.Millis) error {
		return core.ResetSensors(now)
	})
}

// RemapSensors moves each named role to a new probe address. Roles are
// validated before anything changes.
func (s *BoilerService) RemapSensors(ctx context.Context, mapping map[string]string) error {
	if len(mapping) == 0 {
		return errEmptyMapping
	}
	roles := make(map[sensor.Role]string, len(mapping))
	for name, addr := range mapping {
		r, err := sensor.ParseRole(name)
		if err != nil {
			return err
		}
		if !r.OnBus() {
			return fmt.Errorf("remap %s: %w", r, control.ErrUnknownRole)
		}
		roles[r] = addr
	}
	return s.do(ctx, func(core *control.Core, now clock.Millis) error {
		for r, addr := range roles {
			if err := core.RemapSensor(r, addr, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoilerService) SetCoalFeeding(ctx context.Context, active bool) error {
	return s.do(ctx, func(core *control.Core, now clock.Millis) error {
		if active {
			return core.StartCoalFeeding(now)
		}
		core.StopCoalFeeding(now)
		return nil
	})
}

func (s *BoilerService) SetSetpoint(ctx context.Context, v float64) error {
	return s.do(ctx, func(core *control.Core, _ clock.Millis) error {
		return core.SetSetpoint(v)
	})
}

func (s *BoilerService) SetHomeTemperature(ctx context.Context, v float64) error {
	return s.do(ctx, func(core *control.Core, now clock.Millis) error {
		return core.SetHomeTemperature(v, now)
	})
}

func (s *BoilerService) SetHomeOnline(ctx context.Context, online bool) error {
	return s.do(ctx, func(core *control.Core, _ clock.Millis) error {
		core.SetHomeOnline(online)
		return nil
	})
}

// HandleEncoder maps a local input event to a command. A rotation moves the
// setpoint one step; a short press restarts a dead fire or toggles coal
// feeding; a long press starts ignition.
func (s *BoilerService) HandleEncoder(ctx context.Context, ev encoder.Event) error {
	switch ev {
	case encoder.RotateCW, encoder.RotateCCW:
		steps := 1
		if ev == encoder.RotateCCW {
			steps = -1
		}
		v, err := query(ctx, s.ctrl, func(core *control.Core, _ clock.Millis) (float64, error) {
			return core.NudgeSetpoint(steps)
		})
		if err != nil {
			return err
		}
		if s.setpoint != nil {
			if err := s.setpoint.PublishSetpoint(v); err != nil {
				s.log.Warnw("setpoint_publish_failed", "setpoint", v, "error", err)
			}
		}
		return nil
	case encoder.ShortPress:
		return s.do(ctx, func(core *control.Core, now clock.Millis) error {
			st := core.Status(now)
			switch {
			case st.State.Faulted():
				return core.StartIgnition(now)
			case st.CoalFeeding:
				core.StopCoalFeeding(now)
				return nil
			}
			return core.StartCoalFeeding(now)
		})
	case encoder.LongPress:
		return s.StartIgnition(ctx)
	}
	return fmt.Errorf("unknown encoder event %d", int(ev))
}

// RunEncoder consumes events until the channel closes or ctx is canceled.
func (s *BoilerService) RunEncoder(ctx context.Context, events <-chan encoder.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.HandleEncoder(ctx, ev); err != nil {
				s.log.Warnw("encoder_command_rejected", "event", ev.String(), "error", err)
			}
		}
	}
}
