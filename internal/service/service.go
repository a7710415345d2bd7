package service

import (
	"context"
	"time"

	bc "boiler_controller"
	"boiler_controller/internal/control"
	"boiler_controller/internal/encoder"
	"boiler_controller/internal/logger"
	"boiler_controller/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
	RegistrationOpen(ctx context.Context) (bool, error)
}

// Boiler exposes operator commands. Every call is applied on the control
// loop and returns its verdict.
type Boiler interface {
	SetMode(ctx context.Context, mode string) error
	AutoSettings(ctx context.Context) (control.AutoParams, error)
	UpdateAutoSettings(ctx context.Context, p control.AutoParams) error
	ComfortSettings(ctx context.Context) (control.ComfortParams, error)
	UpdateComfortSettings(ctx context.Context, p control.ComfortParams) error
	SetControl(ctx context.Context, p ControlParams) error
	SetSystemEnabled(ctx context.Context, enabled bool) error
	StartIgnition(ctx context.Context) error
	ResetFaults(ctx context.Context) error
	ResetSensors(ctx context.Context) error
	RemapSensors(ctx context.Context, mapping map[string]string) error
	SetCoalFeeding(ctx context.Context, active bool) error
}

// Device takes commands from the broker and the front panel encoder.
type Device interface {
	SetSetpoint(ctx context.Context, v float64) error
	SetHomeTemperature(ctx context.Context, v float64) error
	SetHomeOnline(ctx context.Context, online bool) error
	SetSetpointSink(sink SetpointSink)
	RunEncoder(ctx context.Context, events <-chan encoder.Event)
}

// Monitoring exposes the latest controller snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (bc.BoilerState, error)
}

// EventLog exposes the persisted journal with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]bc.BoilerEvent, error)
}

// Retention keeps the journal bounded.
type Retention interface {
	RunRetention(ctx context.Context, keep, interval time.Duration, log *logger.Logger)
}

// Loop runs the control cycle until ctx is canceled.
type Loop interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Boiler
	Device
	Monitoring
	EventLog
	Retention
	Loop
	Authorization
}

// AuthConfig carries the token settings.
type AuthConfig struct {
	SigningKey []byte
	TokenTTL   time.Duration
}

// NewService wires the repositories and the control loop owner into the
// services used by the handlers.
func NewService(repos *repository.Repository, ctrl *Controller, auth AuthConfig) *Service {
	boiler := NewBoilerService(ctrl)
	events := NewEventLogService(repos.EventRepo)
	return &Service{
		Boiler:        boiler,
		Device:        boiler,
		Monitoring:    NewMonitoringService(ctrl),
		EventLog:      events,
		Retention:     events,
		Loop:          ctrl,
		Authorization: NewAuthService(repos.Auth, auth.SigningKey, auth.TokenTTL),
	}
}

// ControlParams is a manual actuator command. Manual=false hands the device
// back to automatic control and ignores State.
type ControlParams struct {
	Device string
	State  bool
	Manual bool
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "OVERHEAT", "BOILER_EXTINGUISHED", ...
}
