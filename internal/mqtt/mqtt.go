// Package mqtt publishes controller telemetry and accepts remote commands.
package mqtt

import (
	"context"
	"encoding/json"
	"strconv"

	bc "boiler_controller"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"

	DefaultPrefix = "boiler"
)

// Topics is the topic layout below a prefix plus the external home sensor.
type Topics struct {
	Prefix          string
	HomeTemperature string
	HomeStatus      string
}

func NewTopics(prefix, homeTemperature, homeStatus string) Topics {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Topics{Prefix: prefix, HomeTemperature: homeTemperature, HomeStatus: homeStatus}
}

func (t Topics) State() string             { return t.Prefix + "/state" }
func (t Topics) Status() string            { return t.Prefix + "/status" }
func (t Topics) Setpoint() string          { return t.Prefix + "/setpoint" }
func (t Topics) Event(typ string) string   { return t.Prefix + "/event/" + typ }
func (t Topics) Simple(name string) string { return t.Prefix + "/simple/" + name }
func (t Topics) SetpointSet() string       { return t.Prefix + "/setpoint/set" }
func (t Topics) IgnitionStart() string     { return t.Prefix + "/ignition/start" }
func (t Topics) SensorsReset() string      { return t.Prefix + "/sensors/reset" }

// Subscriptions returns every topic the controller listens on.
func (t Topics) Subscriptions() []string {
	subs := []string{t.SetpointSet(), t.IgnitionStart(), t.SensorsReset()}
	if t.HomeTemperature != "" {
		subs = append(subs, t.HomeTemperature)
	}
	if t.HomeStatus != "" {
		subs = append(subs, t.HomeStatus)
	}
	return subs
}

// Publisher sends messages to the broker.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	IsConnected() bool
	Close() error
}

// Intake receives remote commands. Implementations apply them on the
// control loop and return its verdict.
type Intake interface {
	SetSetpoint(ctx context.Context, v float64) error
	SetHomeTemperature(ctx context.Context, v float64) error
	SetHomeOnline(ctx context.Context, online bool) error
	StartIgnition(ctx context.Context) error
	ResetSensors(ctx context.Context) error
}

// Simple topic names.
const (
	SimpleSupply         = "temp"
	SimpleReturn         = "returnTemp"
	SimpleBoiler         = "boilerTemp"
	SimpleOutside        = "outdoorTemp"
	SimpleHome           = "homeTemp"
	SimpleEnabled        = "enabled"
	SimpleSetpoint       = "setpoint"
	SimpleWorkMode       = "workMode"
	SimpleTargetHomeTemp = "targetHomeTemp"
)

var simpleRoles = map[string]string{
	"supply":  SimpleSupply,
	"return":  SimpleReturn,
	"boiler":  SimpleBoiler,
	"outside": SimpleOutside,
	"home":    SimpleHome,
}

// FormatSimple renders the flat per-value topics. Invalid temperatures are
// left out so subscribers keep the last good value.
func FormatSimple(st bc.BoilerState) map[string]string {
	out := make(map[string]string, len(simpleRoles)+4)
	for role, name := range simpleRoles {
		t, ok := st.Temperatures[role]
		if !ok || !t.Valid {
			continue
		}
		out[name] = formatTemp(t.Value)
	}
	out[SimpleEnabled] = "0"
	if st.SystemEnabled {
		out[SimpleEnabled] = "1"
	}
	out[SimpleSetpoint] = formatTemp(st.Setpoint)
	out[SimpleWorkMode] = "0"
	if st.Mode == "comfort" {
		out[SimpleWorkMode] = "1"
	}
	out[SimpleTargetHomeTemp] = formatTemp(st.TargetHomeTemp)
	return out
}

// FormatState renders the full state document.
func FormatState(st bc.BoilerState) ([]byte, error) {
	return json.Marshal(st)
}

// FormatEvent renders a journal entry.
func FormatEvent(ev bc.BoilerEvent) ([]byte, error) {
	return json.Marshal(ev)
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
