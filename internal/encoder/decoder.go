// Package encoder turns the rotary encoder and its push button into events.
package encoder

import (
	"sync"
	"time"
)

// Event is a decoded encoder gesture.
type Event int

const (
	RotateCW Event = iota + 1
	RotateCCW
	ShortPress
	LongPress
)

func (e Event) String() string {
	switch e {
	case RotateCW:
		return "rotate_cw"
	case RotateCCW:
		return "rotate_ccw"
	case ShortPress:
		return "short_press"
	case LongPress:
		return "long_press"
	}
	return "unknown"
}

const (
	MinPress       = 30 * time.Millisecond
	PressGap       = 200 * time.Millisecond
	LongPressAfter = 3 * time.Second

	transitionsPerStep = 4
)

// cw[s] is the next clk<<1|dt state when turning clockwise:
// 00 -> 10 -> 11 -> 01 -> 00.
var cw = [4]uint8{0: 2, 2: 3, 3: 1, 1: 0}

// Quadrature decodes Gray-code transitions of the clk/dt pair. Transitions
// that skip a state are dropped.
type Quadrature struct {
	state uint8
	acc   int
}

// Reset sets the resting level without producing an event.
func (q *Quadrature) Reset(clk, dt bool) {
	q.state = pack(clk, dt)
	q.acc = 0
}

// Update feeds the current levels and reports a completed step.
func (q *Quadrature) Update(clk, dt bool) (Event, bool) {
	next := pack(clk, dt)
	switch {
	case next == q.state:
		return 0, false
	case cw[q.state] == next:
		q.acc++
	case cw[next] == q.state:
		q.acc--
	default:
		q.state = next
		return 0, false
	}
	q.state = next

	switch {
	case q.acc >= transitionsPerStep:
		q.acc = 0
		return RotateCW, true
	case q.acc <= -transitionsPerStep:
		q.acc = 0
		return RotateCCW, true
	}
	return 0, false
}

func pack(clk, dt bool) uint8 {
	var s uint8
	if clk {
		s |= 2
	}
	if dt {
		s |= 1
	}
	return s
}

// Button classifies press durations. Times are offsets from any fixed origin.
type Button struct {
	pressed    bool
	pressedAt  time.Duration
	released   bool
	releasedAt time.Duration
	longFired  bool
}

// Update feeds a level change of the button.
func (b *Button) Update(pressed bool, at time.Duration) (Event, bool) {
	if pressed == b.pressed {
		return 0, false
	}
	if pressed {
		if b.released && at-b.releasedAt < PressGap {
			return 0, false
		}
		b.pressed = true
		b.pressedAt = at
		b.longFired = false
		return 0, false
	}

	b.pressed = false
	b.released = true
	b.releasedAt = at
	held := at - b.pressedAt
	switch {
	case held < MinPress, b.longFired:
		return 0, false
	case held >= LongPressAfter:
		return LongPress, true
	}
	return ShortPress, true
}

// Poll reports a long press while the button is still held.
func (b *Button) Poll(at time.Duration) (Event, bool) {
	if b.pressed && !b.longFired && at-b.pressedAt >= LongPressAfter {
		b.longFired = true
		return LongPress, true
	}
	return 0, false
}

// Input names an encoder line.
type Input int

const (
	CLK Input = iota
	DT
	SW
)

// Decoder combines the quadrature and button state of one encoder. It is
// safe to feed from the line event goroutine and a poller concurrently.
type Decoder struct {
	mu     sync.Mutex
	clk    bool
	dt     bool
	quad   Quadrature
	button Button
}

// NewDecoder starts from the idle levels of a pulled-up encoder.
func NewDecoder() *Decoder {
	d := &Decoder{clk: true, dt: true}
	d.quad.Reset(true, true)
	return d
}

// Edge feeds a raw line level. The button is active low.
func (d *Decoder) Edge(in Input, level bool, at time.Duration) (Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch in {
	case CLK:
		d.clk = level
	case DT:
		d.dt = level
	case SW:
		return d.button.Update(!level, at)
	default:
		return 0, false
	}
	return d.quad.Update(d.clk, d.dt)
}

func (d *Decoder) Poll(at time.Duration) (Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.button.Poll(at)
}
