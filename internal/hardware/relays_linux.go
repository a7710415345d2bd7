//go:build linux

package hardware

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// GPIORelays drives relay modules through the GPIO character device.
type GPIORelays struct {
	mu    sync.Mutex
	chip  *gpiocdev.Chip
	fan   *gpiocdev.Line
	pump  *gpiocdev.Line
	power *gpiocdev.Line
}

// NewGPIORelays requests the three output lines. Fan and pump start off,
// the probe supply starts on.
func NewGPIORelays(pins RelayPins) (*GPIORelays, error) {
	chip, err := gpiocdev.NewChip(pins.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", pins.Chip, err)
	}
	r := &GPIORelays{chip: chip}

	if r.fan, err = requestOutput(chip, pins.Fan, false); err != nil {
		r.Close()
		return nil, fmt.Errorf("request fan line %d: %w", pins.Fan.Offset, err)
	}
	if r.pump, err = requestOutput(chip, pins.Pump, false); err != nil {
		r.Close()
		return nil, fmt.Errorf("request pump line %d: %w", pins.Pump.Offset, err)
	}
	if r.power, err = requestOutput(chip, pins.SensorPower, true); err != nil {
		r.Close()
		return nil, fmt.Errorf("request sensor power line %d: %w", pins.SensorPower.Offset, err)
	}
	return r, nil
}

func requestOutput(chip *gpiocdev.Chip, l Line, on bool) (*gpiocdev.Line, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(level(on))}
	if l.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	return chip.RequestLine(l.Offset, opts...)
}

func (r *GPIORelays) set(line *gpiocdev.Line, name string, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if line == nil {
		return fmt.Errorf("%s line not requested", name)
	}
	if err := line.SetValue(level(on)); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

func (r *GPIORelays) SetFan(on bool) error         { return r.set(r.fan, "fan", on) }
func (r *GPIORelays) SetPump(on bool) error        { return r.set(r.pump, "pump", on) }
func (r *GPIORelays) SetSensorPower(on bool) error { return r.set(r.power, "sensor power", on) }

// Close drives fan and pump off before releasing the lines.
func (r *GPIORelays) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, l := range []*gpiocdev.Line{r.fan, r.pump, r.power} {
		if l == nil {
			continue
		}
		if l != r.power {
			if err := l.SetValue(0); err != nil {
				errs = append(errs, fmt.Errorf("switch off line %d: %w", l.Offset(), err))
			}
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", l.Offset(), err))
		}
	}
	r.fan, r.pump, r.power = nil, nil, nil
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
