// Package hardware drives the relay outputs and reads the 1-Wire probe bus.
// The real relay implementation uses the Linux GPIO character device.
package hardware

// Relays switches the fan, the circulation pump and the probe supply.
type Relays interface {
	SetFan(on bool) error
	SetPump(on bool) error
	SetSensorPower(on bool) error

	// Close switches every output off and releases the lines.
	Close() error
}

// Line is a GPIO offset on the configured chip.
type Line struct {
	Offset    int
	ActiveLow bool
}

// RelayPins describes where the relays are wired.
type RelayPins struct {
	Chip        string
	Fan         Line
	Pump        Line
	SensorPower Line
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}
