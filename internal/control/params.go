package control

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrOutOfRange          = errors.New("value out of range")
	ErrIgnitionUnavailable = errors.New("ignition is only possible after extinguishment or a failed ignition")
	ErrHomeSensorOffline   = errors.New("home temperature sensor is unavailable")
	ErrSystemDisabled      = errors.New("system is disabled")
	ErrUnknownRole         = errors.New("unknown sensor role")
)

// RangeError names the rejected field and its allowed range.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %.2f outside %.2f..%.2f", e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

func checkRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return &RangeError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}

// AutoParams configure the setpoint controller. Times are minutes.
type AutoParams struct {
	Setpoint       float64 `json:"setpoint"`
	MinTemp        float64 `json:"min_temp"`
	MaxTemp        float64 `json:"max_temp"`
	Hysteresis     float64 `json:"hysteresis"`
	InertiaTemp    float64 `json:"inertia_temp"`
	InertiaTime    float64 `json:"inertia_time"`
	OverheatTemp   float64 `json:"overheat_temp"`
	HeatingTimeout float64 `json:"heating_timeout"`
	Tolerance      float64 `json:"tolerance"`
}

func DefaultAutoParams() AutoParams {
	return AutoParams{
		Setpoint:       60,
		MinTemp:        45,
		MaxTemp:        75,
		Hysteresis:     2,
		InertiaTemp:    55,
		InertiaTime:    10,
		OverheatTemp:   77,
		HeatingTimeout: 30,
		Tolerance:      5,
	}
}

const (
	MinSetpoint = 40.0
	MaxSetpoint = 80.0
)

func (p AutoParams) Validate() error {
	checks := []error{
		checkRange("setpoint", p.Setpoint, MinSetpoint, MaxSetpoint),
		checkRange("min_temp", p.MinTemp, 30, 60),
		checkRange("max_temp", p.MaxTemp, 60, 90),
		checkRange("hysteresis", p.Hysteresis, 0.5, 10),
		checkRange("inertia_temp", p.InertiaTemp, 40, 70),
		checkRange("inertia_time", p.InertiaTime, 1, 60),
		checkRange("overheat_temp", p.OverheatTemp, 70, 90),
		checkRange("heating_timeout", p.HeatingTimeout, 10, 120),
		checkRange("tolerance", p.Tolerance, 1, 20),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if p.MinTemp >= p.MaxTemp {
		return &RangeError{Field: "min_temp", Value: p.MinTemp, Min: 30, Max: p.MaxTemp}
	}
	return nil
}

// ComfortParams configure the home-temperature controller. Times are minutes.
type ComfortParams struct {
	TargetHomeTemp       float64 `json:"target_home_temp"`
	MinBoilerTemp        float64 `json:"min_boiler_temp"`
	MaxBoilerTemp        float64 `json:"max_boiler_temp"`
	WaitTemp             float64 `json:"wait_temp"`
	CatchUpTemp          float64 `json:"catch_up_temp"`
	WaitCoolingTime      float64 `json:"wait_cooling_time"`
	WaitAfterHeating1    float64 `json:"wait_after_heating1"`
	WaitAfterReduction   float64 `json:"wait_after_reduction"`
	InertiaCheckInterval float64 `json:"inertia_check_interval"`
	HysteresisOn         float64 `json:"hysteresis_on"`
	HysteresisOff        float64 `json:"hysteresis_off"`
	HysteresisBoiler     float64 `json:"hysteresis_boiler"`
	WarningTemp          float64 `json:"warning_temp"`
}

func DefaultComfortParams() ComfortParams {
	return ComfortParams{
		TargetHomeTemp:       24,
		MinBoilerTemp:        45,
		MaxBoilerTemp:        75,
		WaitTemp:             65,
		CatchUpTemp:          23.5,
		WaitCoolingTime:      10,
		WaitAfterHeating1:    20,
		WaitAfterReduction:   25,
		InertiaCheckInterval: 5,
		HysteresisOn:         0.5,
		HysteresisOff:        0.3,
		HysteresisBoiler:     2,
		WarningTemp:          85,
	}
}

func (p ComfortParams) Validate() error {
	checks := []error{
		checkRange("target_home_temp", p.TargetHomeTemp, 20, 28),
		checkRange("min_boiler_temp", p.MinBoilerTemp, 40, 80),
		checkRange("max_boiler_temp", p.MaxBoilerTemp, 40, 80),
		checkRange("wait_temp", p.WaitTemp, 50, 80),
		checkRange("catch_up_temp", p.CatchUpTemp, 20, 28),
		checkRange("wait_cooling_time", p.WaitCoolingTime, 5, 30),
		checkRange("wait_after_heating1", p.WaitAfterHeating1, 10, 60),
		checkRange("wait_after_reduction", p.WaitAfterReduction, 10, 60),
		checkRange("inertia_check_interval", p.InertiaCheckInterval, 1, 15),
		checkRange("hysteresis_on", p.HysteresisOn, 0.1, 2),
		checkRange("hysteresis_off", p.HysteresisOff, 0.1, 2),
		checkRange("hysteresis_boiler", p.HysteresisBoiler, 0.5, 5),
		checkRange("warning_temp", p.WarningTemp, 80, 90),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if p.MinBoilerTemp >= p.MaxBoilerTemp {
		return &RangeError{Field: "min_boiler_temp", Value: p.MinBoilerTemp, Min: 40, Max: p.MaxBoilerTemp}
	}
	return nil
}

// midBand is the boiler temperature the Comfort controller aims for.
func (p ComfortParams) midBand() float64 {
	return (p.MinBoilerTemp + p.MaxBoilerTemp) / 2
}
