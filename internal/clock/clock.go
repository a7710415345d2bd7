// Package clock provides the millisecond timebase shared by the control core.
//
// Millis is a 32-bit counter that wraps roughly every 49.7 days. All elapsed
// time arithmetic goes through Sub, which relies on unsigned subtraction and
// therefore stays correct across a wrap.
package clock

import (
	"sync"
	"time"
)

// Millis is a point on the wrapping millisecond counter.
type Millis uint32

// Sub returns the time elapsed from earlier to m.
func (m Millis) Sub(earlier Millis) time.Duration {
	return time.Duration(m-earlier) * time.Millisecond
}

// Add returns m advanced by d, wrapping as the counter does.
func (m Millis) Add(d time.Duration) Millis {
	return m + Millis(uint32(d/time.Millisecond))
}

// Clock yields the current counter value.
type Clock interface {
	Now() Millis
}

// System derives the counter from the process monotonic clock.
type System struct {
	start time.Time
}

// NewSystem returns a clock whose counter starts at zero now.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// Now truncates the monotonic elapsed time to 32 bits.
func (s *System) Now() Millis {
	return Millis(uint32(time.Since(s.start) / time.Millisecond))
}

// Mark is an optional timestamp. The zero value is unset, so a counter value
// of zero never doubles as "not started".
type Mark struct {
	at  Millis
	set bool
}

// MarkAt returns a mark set to m.
func MarkAt(m Millis) Mark {
	return Mark{at: m, set: true}
}

// IsSet reports whether the mark holds a timestamp.
func (k Mark) IsSet() bool { return k.set }

// At returns the stored timestamp; meaningless when unset.
func (k Mark) At() Millis { return k.at }

// Since returns the time elapsed since the mark, or zero when unset.
func (k Mark) Since(now Millis) time.Duration {
	if !k.set {
		return 0
	}
	return now.Sub(k.at)
}

// Reached reports whether the mark is set and at least d has elapsed.
func (k Mark) Reached(now Millis, d time.Duration) bool {
	return k.set && now.Sub(k.at) >= d
}

// Fake is a manually advanced clock for tests and simulations.
type Fake struct {
	mu  sync.Mutex
	now Millis
}

// NewFake returns a fake clock positioned at start.
func NewFake(start Millis) *Fake {
	return &Fake{now: start}
}

// Now returns the current fake counter.
func (f *Fake) Now() Millis {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake clock forward and returns the new value.
func (f *Fake) Advance(d time.Duration) Millis {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}

// Set positions the fake clock at m.
func (f *Fake) Set(m Millis) {
	f.mu.Lock()
	f.now = m
	f.mu.Unlock()
}
