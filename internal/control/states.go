// Package control holds the boiler control core: the Auto and Comfort state
// machines, the ignition and extinguishment detector, pump policy and manual
// override arbitration, all owned by a single Core driven from one goroutine.
package control

import (
	"fmt"
	"strings"
)

// Mode selects the fan control strategy.
type Mode int

const (
	ModeAuto Mode = iota
	ModeComfort
)

func (m Mode) String() string {
	if m == ModeComfort {
		return "comfort"
	}
	return "auto"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return ModeAuto, nil
	case "comfort":
		return ModeComfort, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// State is the top-level control state reported for both modes.
type State int

const (
	StateIdle State = iota
	StateHeating
	StateOverheat
	StateHeatingTimeout
	StateCoalBurned
	StateBoilerExtinguished
	StateIgnitionInProgress
	StateIgnitionFailed
)

var stateNames = [...]string{
	StateIdle:               "IDLE",
	StateHeating:            "HEATING",
	StateOverheat:           "OVERHEAT",
	StateHeatingTimeout:     "HEATING_TIMEOUT",
	StateCoalBurned:         "COAL_BURNED",
	StateBoilerExtinguished: "BOILER_EXTINGUISHED",
	StateIgnitionInProgress: "IGNITION_IN_PROGRESS",
	StateIgnitionFailed:     "IGNITION_FAILED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("STATE(%d)", int(s))
	}
	return stateNames[s]
}

func ParseState(s string) (State, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range stateNames {
		if name == s {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown control state %q", s)
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Faulted reports whether the state waits for operator action.
func (s State) Faulted() bool {
	return s == StateBoilerExtinguished || s == StateIgnitionFailed
}

// ComfortState is the Comfort mode sub-state.
type ComfortState int

const (
	ComfortWait ComfortState = iota
	ComfortHeating1
	ComfortWaitCooling
	ComfortWaitHeating
	ComfortHeating2
	ComfortComfort
	ComfortMaintain
	ComfortOverheat
)

var comfortNames = [...]string{
	ComfortWait:        "WAIT",
	ComfortHeating1:    "HEATING_1",
	ComfortWaitCooling: "WAIT_COOLING",
	ComfortWaitHeating: "WAIT_HEATING",
	ComfortHeating2:    "HEATING_2",
	ComfortComfort:     "COMFORT",
	ComfortMaintain:    "MAINTAIN",
	ComfortOverheat:    "OVERHEAT",
}

func (c ComfortState) String() string {
	if c < 0 || int(c) >= len(comfortNames) {
		return fmt.Sprintf("COMFORT_STATE(%d)", int(c))
	}
	return comfortNames[c]
}

func ParseComfortState(s string) (ComfortState, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range comfortNames {
		if name == s {
			return ComfortState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown comfort state %q", s)
}

func (c ComfortState) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ComfortState) UnmarshalText(b []byte) error {
	v, err := ParseComfortState(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Actuator names one of the two driven outputs.
type Actuator int

const (
	Fan Actuator = iota
	Pump
)

func (a Actuator) String() string {
	if a == Pump {
		return "pump"
	}
	return "fan"
}

func ParseActuator(s string) (Actuator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fan":
		return Fan, nil
	case "pump":
		return Pump, nil
	}
	return 0, fmt.Errorf("unknown actuator %q", s)
}

func (a Actuator) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Actuator) UnmarshalText(b []byte) error {
	v, err := ParseActuator(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// EventType classifies journal entries.
type EventType string

const (
	EventBoilerExtinguished EventType = "BOILER_EXTINGUISHED"
	EventIgnitionStarted    EventType = "IGNITION_STARTED"
	EventIgnitionSuccess    EventType = "IGNITION_SUCCESS"
	EventIgnitionFailed     EventType = "IGNITION_FAILED"
	EventOverheat           EventType = "OVERHEAT"
	EventSensorFrozen       EventType = "SENSOR_FROZEN"
	EventCoalBurned         EventType = "COAL_BURNED"
	EventHeatingTimeout     EventType = "HEATING_TIMEOUT"
	EventModeChanged        EventType = "MODE_CHANGED"
	EventCoalFeedingStarted EventType = "COAL_FEEDING_STARTED"
	EventCoalFeedingStopped EventType = "COAL_FEEDING_STOPPED"
	EventSystemEnabled      EventType = "SYSTEM_ENABLED"
	EventSystemDisabled     EventType = "SYSTEM_DISABLED"
	EventSensorsReset       EventType = "SENSORS_RESET"
	EventComfortFallback    EventType = "COMFORT_FALLBACK"
	EventFaultsReset        EventType = "FAULTS_RESET"
)

// EventTypes lists every journal event type.
var EventTypes = []EventType{
	EventBoilerExtinguished, EventIgnitionStarted, EventIgnitionSuccess, EventIgnitionFailed,
	EventOverheat, EventSensorFrozen, EventCoalBurned, EventHeatingTimeout, EventModeChanged,
	EventCoalFeedingStarted, EventCoalFeedingStopped, EventSystemEnabled, EventSystemDisabled,
	EventSensorsReset, EventComfortFallback, EventFaultsReset,
}

// ValidEventType reports whether s names a known event type.
func ValidEventType(s string) bool {
	for _, t := range EventTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

