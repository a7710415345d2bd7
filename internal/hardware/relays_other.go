//go:build !linux

package hardware

import "errors"

// GPIORelays is not available on non-Linux platforms.
type GPIORelays struct{}

// NewGPIORelays returns an error on non-Linux platforms.
func NewGPIORelays(RelayPins) (*GPIORelays, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

func (r *GPIORelays) SetFan(bool) error         { return errors.New("gpio: not supported") }
func (r *GPIORelays) SetPump(bool) error        { return errors.New("gpio: not supported") }
func (r *GPIORelays) SetSensorPower(bool) error { return errors.New("gpio: not supported") }
func (r *GPIORelays) Close() error              { return nil }
