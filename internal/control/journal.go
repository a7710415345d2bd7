package control

import (
	"fmt"

	"boiler_controller/internal/clock"
)

const JournalSize = 30

// Event is a journal entry. At is the controller counter; wall time is
// attached by whoever drains the journal.
type Event struct {
	Type    EventType
	At      clock.Millis
	Message string
	Supply  float64
}

// Journal keeps the most recent events and remembers which were not yet
// drained.
type Journal struct {
	entries   [JournalSize]Event
	next      int
	count     int
	undrained int
}

func (j *Journal) Record(typ EventType, now clock.Millis, supply float64, format string, args ...any) {
	j.entries[j.next] = Event{Type: typ, At: now, Supply: supply, Message: fmt.Sprintf(format, args...)}
	j.next = (j.next + 1) % JournalSize
	if j.count < JournalSize {
		j.count++
	}
	if j.undrained < JournalSize {
		j.undrained++
	}
}

func (j *Journal) last(n int) []Event {
	out := make([]Event, 0, n)
	for i := n; i > 0; i-- {
		out = append(out, j.entries[(j.next-i+JournalSize)%JournalSize])
	}
	return out
}

// Recent returns every kept event oldest first.
func (j *Journal) Recent() []Event { return j.last(j.count) }

// Drain returns the events recorded since the previous drain, oldest first.
// Events overwritten before a drain are lost.
func (j *Journal) Drain() []Event {
	if j.undrained == 0 {
		return nil
	}
	out := j.last(j.undrained)
	j.undrained = 0
	return out
}

func (j *Journal) Len() int { return j.count }
