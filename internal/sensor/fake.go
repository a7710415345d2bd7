package sensor

import "sync"

// FakeBus is a scripted probe bus for tests and dry runs.
type FakeBus struct {
	mu       sync.Mutex
	values   map[string]float64
	missing  map[string]bool
	powered  bool
	requests int
	powerLog []bool

	// RequestError, if set, is returned by RequestConversion.
	RequestError error
}

// NewFakeBus returns a powered bus with no probes.
func NewFakeBus() *FakeBus {
	return &FakeBus{
		values:  make(map[string]float64),
		missing: make(map[string]bool),
		powered: true,
	}
}

// Set scripts the value returned for addr.
func (f *FakeBus) Set(addr string, v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[addr] = v
	delete(f.missing, addr)
}

// Disconnect makes addr read as absent.
func (f *FakeBus) Disconnect(addr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[addr] = true
}

func (f *FakeBus) RequestConversion(addrs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RequestError != nil {
		return f.RequestError
	}
	f.requests++
	return nil
}

func (f *FakeBus) ReadValue(addr string) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.powered || f.missing[addr] {
		return 0, false
	}
	v, ok := f.values[addr]
	return v, ok
}

func (f *FakeBus) SetPower(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.powered = on
	f.powerLog = append(f.powerLog, on)
	return nil
}

// Requests returns how many conversions were requested.
func (f *FakeBus) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// PowerLog returns every SetPower call in order.
func (f *FakeBus) PowerLog() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.powerLog...)
}
