package boiler_controller

import "time"

// Temperature is a single probe reading as reported to clients.
type Temperature struct {
	Value  float64 `json:"value"`
	Valid  bool    `json:"valid"`
	Frozen bool    `json:"frozen,omitempty"`
	Trend  string  `json:"trend"` // rising | falling | stable
}

// BoilerState is the current snapshot of the controller.
type BoilerState struct {
	Mode          string `json:"mode"`                    // auto | comfort
	State         string `json:"state"`                   // IDLE | HEATING | ...
	ComfortState  string `json:"comfort_state,omitempty"` // only in comfort mode
	SystemEnabled bool   `json:"system_enabled"`

	Fan        bool `json:"fan"`
	Pump       bool `json:"pump"`
	PumpForced bool `json:"pump_forced,omitempty"`
	FanManual  bool `json:"fan_manual"`
	PumpManual bool `json:"pump_manual"`

	Setpoint       float64 `json:"setpoint"`         // °C
	TargetHomeTemp float64 `json:"target_home_temp"` // °C

	Temperatures map[string]Temperature `json:"temperatures"`
	Mapping      map[string]string      `json:"mapping"`

	Warnings []string `json:"warnings,omitempty"` // e.g. ["HIGH_TEMP", "HOME_SENSOR_OFFLINE"]

	IgnitionRemainingSeconds int `json:"ignition_remaining_seconds,omitempty"`
	CoalFeedingLeftSeconds   int `json:"coal_feeding_left_seconds,omitempty"`
	FanManualSeconds         int `json:"fan_manual_seconds,omitempty"`
	PumpManualSeconds        int `json:"pump_manual_seconds,omitempty"`
	FanRunSeconds            int `json:"fan_run_seconds,omitempty"`
	PumpIdleSeconds          int `json:"pump_idle_seconds,omitempty"`

	FanMinutesTotal uint64 `json:"fan_minutes_total"`
	FanMinutesToday uint64 `json:"fan_minutes_today"`
	FanCyclesTotal  uint64 `json:"fan_cycles_total"`
	FanCyclesToday  uint64 `json:"fan_cycles_today"`

	UpdatedAt time.Time `json:"updated_at"`
}

// BoilerEvent is a single journal entry.
type BoilerEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // OVERHEAT | BOILER_EXTINGUISHED | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
}
