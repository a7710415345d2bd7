package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"boiler_controller/internal/sensor"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "port: \"9090\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Control.Tick != time.Second {
		t.Errorf("tick = %s", cfg.Control.Tick)
	}
	if cfg.MQTT.StateInterval != 10*time.Second || cfg.MQTT.Prefix != "boiler" {
		t.Errorf("unexpected mqtt defaults: %+v", cfg.MQTT)
	}
	if cfg.DB.EventRetention != 90*24*time.Hour {
		t.Errorf("event retention = %s", cfg.DB.EventRetention)
	}
	if !cfg.GPIO.Fan.ActiveLow || cfg.GPIO.Chip != "gpiochip0" {
		t.Errorf("unexpected gpio defaults: %+v", cfg.GPIO)
	}
}

func TestLoadFile(t *testing.T) {
	p := writeConfig(t, `
control:
  tick: 500ms
  auto_ignition: true
sensors:
  mapping:
    supply: 28-000001
    return: " 28-000002 "
mqtt:
  enabled: true
  prefix: kotel
  state_interval: 5s
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Control.Tick != 500*time.Millisecond || !cfg.Control.AutoIgnition {
		t.Errorf("unexpected control: %+v", cfg.Control)
	}
	if cfg.MQTT.Prefix != "kotel" || cfg.MQTT.StateInterval != 5*time.Second {
		t.Errorf("unexpected mqtt: %+v", cfg.MQTT)
	}

	m, err := cfg.RoleMapping()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m[sensor.Supply] != "28-000001" || m[sensor.Return] != "28-000002" {
		t.Errorf("unexpected mapping: %v", m)
	}
	if _, ok := m[sensor.Boiler]; ok {
		t.Error("unassigned roles should be left out")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BOILER_PORT", "7070")
	t.Setenv("BOILER_MQTT_PREFIX", "from-env")
	t.Setenv("BOILER_SENSORS_MAPPING_OUTSIDE", "28-0000aa")

	cfg, err := Load(writeConfig(t, "port: \"9090\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7070" || cfg.MQTT.Prefix != "from-env" {
		t.Errorf("environment should win: port=%q prefix=%q", cfg.Port, cfg.MQTT.Prefix)
	}
	m, _ := cfg.RoleMapping()
	if m[sensor.Outside] != "28-0000aa" {
		t.Errorf("mapping from env = %v", m)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero tick", "control:\n  tick: 0s\n"},
		{"unknown role", "sensors:\n  mapping:\n    chimney: 28-01\n"},
		{"home is not a probe", "sensors:\n  mapping:\n    home: 28-01\n"},
		{"unknown log format", "log:\n  format: xml\n"},
		{"mqtt without broker", "mqtt:\n  enabled: true\n  broker: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("an explicit path that does not exist should fail")
	}
}
