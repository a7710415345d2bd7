package hardware

import "sync"

// FakeRelays records output changes for tests and dry runs.
type FakeRelays struct {
	mu          sync.Mutex
	fan         bool
	pump        bool
	sensorPower bool
	log         []string
	closed      bool

	// SetError, if set, is returned by every setter.
	SetError error
}

func NewFakeRelays() *FakeRelays {
	return &FakeRelays{sensorPower: true}
}

func (f *FakeRelays) set(dst *bool, name string, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	if *dst != on {
		state := "off"
		if on {
			state = "on"
		}
		f.log = append(f.log, name+"="+state)
	}
	*dst = on
	return nil
}

func (f *FakeRelays) SetFan(on bool) error         { return f.set(&f.fan, "fan", on) }
func (f *FakeRelays) SetPump(on bool) error        { return f.set(&f.pump, "pump", on) }
func (f *FakeRelays) SetSensorPower(on bool) error { return f.set(&f.sensorPower, "power", on) }

func (f *FakeRelays) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fan, f.pump = false, false
	f.closed = true
	return nil
}

// State returns the current fan, pump and probe supply outputs.
func (f *FakeRelays) State() (fan, pump, power bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fan, f.pump, f.sensorPower
}

// Log returns every output change as "name=on|off".
func (f *FakeRelays) Log() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

func (f *FakeRelays) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
