// Package config loads the controller settings from configs/config.yml and
// BOILER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"boiler_controller/internal/sensor"
)

const envPrefix = "BOILER"

type Config struct {
	Port    string        `mapstructure:"port"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Control ControlConfig `mapstructure:"control"`
	Sensors SensorsConfig `mapstructure:"sensors"`
	GPIO    GPIOConfig    `mapstructure:"gpio"`
	Encoder EncoderConfig `mapstructure:"encoder"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type DBConfig struct {
	Path           string        `mapstructure:"path"`
	EventRetention time.Duration `mapstructure:"event_retention"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type ControlConfig struct {
	Tick         time.Duration `mapstructure:"tick"`
	AutoIgnition bool          `mapstructure:"auto_ignition"`
}

type SensorsConfig struct {
	W1Path  string            `mapstructure:"w1_path"`
	Mapping map[string]string `mapstructure:"mapping"`
}

type PinConfig struct {
	Line      int  `mapstructure:"line"`
	ActiveLow bool `mapstructure:"active_low"`
}

type GPIOConfig struct {
	Enabled     bool      `mapstructure:"enabled"`
	Chip        string    `mapstructure:"chip"`
	Fan         PinConfig `mapstructure:"fan"`
	Pump        PinConfig `mapstructure:"pump"`
	SensorPower PinConfig `mapstructure:"sensor_power"`
}

type EncoderConfig struct {
	Enabled bool `mapstructure:"enabled"`
	CLK     int  `mapstructure:"clk"`
	DT      int  `mapstructure:"dt"`
	SW      int  `mapstructure:"sw"`
}

type MQTTConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	Broker               string        `mapstructure:"broker"`
	ClientID             string        `mapstructure:"client_id"`
	Prefix               string        `mapstructure:"prefix"`
	Username             string        `mapstructure:"username"`
	Password             string        `mapstructure:"password"`
	HomeTemperatureTopic string        `mapstructure:"home_temperature_topic"`
	HomeStatusTopic      string        `mapstructure:"home_status_topic"`
	StateInterval        time.Duration `mapstructure:"state_interval"`
	SimpleInterval       time.Duration `mapstructure:"simple_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.path", "boiler.db")
	v.SetDefault("db.event_retention", 90*24*time.Hour)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("control.tick", time.Second)
	v.SetDefault("control.auto_ignition", false)

	v.SetDefault("sensors.w1_path", "/sys/bus/w1/devices")
	for _, r := range sensor.BusRoles {
		v.SetDefault("sensors.mapping."+r.String(), "")
	}

	v.SetDefault("gpio.enabled", true)
	v.SetDefault("gpio.chip", "gpiochip0")
	v.SetDefault("gpio.fan.line", 17)
	v.SetDefault("gpio.fan.active_low", true)
	v.SetDefault("gpio.pump.line", 27)
	v.SetDefault("gpio.pump.active_low", true)
	v.SetDefault("gpio.sensor_power.line", 22)
	v.SetDefault("gpio.sensor_power.active_low", false)

	v.SetDefault("encoder.enabled", false)
	v.SetDefault("encoder.clk", 5)
	v.SetDefault("encoder.dt", 6)
	v.SetDefault("encoder.sw", 13)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "boiler-controller")
	v.SetDefault("mqtt.prefix", "boiler")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.home_temperature_topic", "home/esp01/temperature")
	v.SetDefault("mqtt.home_status_topic", "home/esp01/status")
	v.SetDefault("mqtt.state_interval", 10*time.Second)
	v.SetDefault("mqtt.simple_interval", 30*time.Second)
}

// Load reads path, or configs/config.yml when path is empty. A missing
// default file is not an error; defaults and environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the controller cannot run with.
func (c *Config) Validate() error {
	if c.Control.Tick <= 0 {
		return fmt.Errorf("control.tick must be positive, got %s", c.Control.Tick)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if _, err := c.RoleMapping(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required when mqtt is enabled")
	}
	return nil
}

// RoleMapping converts sensors.mapping into probe addresses per role.
// Unassigned roles are left out.
func (c *Config) RoleMapping() (map[sensor.Role]string, error) {
	out := make(map[sensor.Role]string, len(c.Sensors.Mapping))
	for name, addr := range c.Sensors.Mapping {
		r, err := sensor.ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("sensors.mapping: %w", err)
		}
		if !r.OnBus() {
			return nil, fmt.Errorf("sensors.mapping: %s is not a probe role", name)
		}
		if addr = strings.TrimSpace(addr); addr != "" {
			out[r] = addr
		}
	}
	return out, nil
}
