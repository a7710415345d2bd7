package encoder

import (
	"testing"
	"time"
)

type levels struct{ clk, dt bool }

// one detent clockwise from the pulled-up rest position
var cwDetent = []levels{{false, true}, {false, false}, {true, false}, {true, true}}

func reversed(in []levels) []levels {
	out := make([]levels, 0, len(in))
	for i := len(in) - 2; i >= 0; i-- {
		out = append(out, in[i])
	}
	return append(out, levels{true, true})
}

func feed(q *Quadrature, seq []levels) []Event {
	var out []Event
	for _, l := range seq {
		if e, ok := q.Update(l.clk, l.dt); ok {
			out = append(out, e)
		}
	}
	return out
}

func TestQuadratureDirection(t *testing.T) {
	tests := []struct {
		name string
		seq  []levels
		want []Event
	}{
		{"clockwise", cwDetent, []Event{RotateCW}},
		{"counter-clockwise", reversed(cwDetent), []Event{RotateCCW}},
		{"two clockwise", append(append([]levels{}, cwDetent...), cwDetent...), []Event{RotateCW, RotateCW}},
		{"half step and back", []levels{{false, true}, {false, false}, {false, true}, {true, true}}, nil},
		{"skipped state ignored", []levels{{false, false}, {true, true}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quadrature
			q.Reset(true, true)
			got := feed(&q, tt.seq)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("event %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestQuadratureRepeatedLevel(t *testing.T) {
	var q Quadrature
	q.Reset(true, true)
	for i := 0; i < 3; i++ {
		if _, ok := q.Update(true, true); ok {
			t.Fatal("unchanged levels must not produce events")
		}
	}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestButtonClassification(t *testing.T) {
	tests := []struct {
		name    string
		press   time.Duration
		release time.Duration
		want    Event
		ok      bool
	}{
		{"bounce", ms(0), ms(10), 0, false},
		{"short", ms(0), ms(120), ShortPress, true},
		{"just under long", ms(0), ms(2999), ShortPress, true},
		{"long", ms(0), ms(3000), LongPress, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Button
			if _, ok := b.Update(true, tt.press); ok {
				t.Fatal("press alone must not produce an event")
			}
			e, ok := b.Update(false, tt.release)
			if ok != tt.ok || e != tt.want {
				t.Fatalf("got (%v, %v), want (%v, %v)", e, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestButtonPressGap(t *testing.T) {
	var b Button
	b.Update(true, ms(0))
	if e, ok := b.Update(false, ms(100)); !ok || e != ShortPress {
		t.Fatalf("first press: got (%v, %v)", e, ok)
	}

	b.Update(true, ms(250))
	if _, ok := b.Update(false, ms(350)); ok {
		t.Fatal("press 150 ms after release should be ignored")
	}

	b.Update(true, ms(600))
	if e, ok := b.Update(false, ms(700)); !ok || e != ShortPress {
		t.Fatalf("press after the gap: got (%v, %v)", e, ok)
	}
}

func TestButtonLongPressWhileHeld(t *testing.T) {
	var b Button
	b.Update(true, ms(0))

	if _, ok := b.Poll(ms(2900)); ok {
		t.Fatal("long press reported too early")
	}
	if e, ok := b.Poll(ms(3000)); !ok || e != LongPress {
		t.Fatalf("got (%v, %v), want long press", e, ok)
	}
	if _, ok := b.Poll(ms(4000)); ok {
		t.Fatal("long press must be reported once")
	}
	if _, ok := b.Update(false, ms(5000)); ok {
		t.Fatal("release after a reported long press must be silent")
	}
}

func TestDecoderEdges(t *testing.T) {
	d := NewDecoder()
	var got []Event
	at := ms(0)
	for _, l := range cwDetent {
		at += ms(2)
		if e, ok := d.Edge(CLK, l.clk, at); ok {
			got = append(got, e)
		}
		if e, ok := d.Edge(DT, l.dt, at); ok {
			got = append(got, e)
		}
	}
	if len(got) != 1 || got[0] != RotateCW {
		t.Fatalf("got %v, want [rotate_cw]", got)
	}

	// active low button
	d.Edge(SW, false, ms(1000))
	if e, ok := d.Edge(SW, true, ms(1100)); !ok || e != ShortPress {
		t.Fatalf("got (%v, %v), want short press", e, ok)
	}
}

func TestEventString(t *testing.T) {
	if RotateCCW.String() != "rotate_ccw" || LongPress.String() != "long_press" || Event(0).String() != "unknown" {
		t.Error("unexpected event names")
	}
}
