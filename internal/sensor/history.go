package sensor

import (
	"math"

	"boiler_controller/internal/clock"
)

const (
	HistorySize    = 20
	TrendSamples   = 10
	TrendDeadband  = 0.01
	MinPlausible   = -50.0
	MaxPlausible   = 150.0
	NoiseThreshold = 5.0

	// consecutive agreeing rejections that confirm a real step
	rebaselineAfter = 3
)

// Trend is the direction of recent readings.
type Trend int

const (
	Falling Trend = -1
	Stable  Trend = 0
	Rising  Trend = 1
)

func (t Trend) String() string {
	switch t {
	case Falling:
		return "falling"
	case Rising:
		return "rising"
	default:
		return "stable"
	}
}

func (t Trend) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// History is a bounded ring of accepted readings for one role.
type History struct {
	values     [HistorySize]float64
	index      int // next write slot
	count      int
	lastUpdate clock.Mark
	valid      bool
	noise      float64

	rejected     int
	lastRejected float64
}

// NewHistory returns an empty history. The return line is electrically
// noisier, so it tolerates twice the step change.
func NewHistory(role Role) *History {
	noise := NoiseThreshold
	if role == Return {
		noise *= 2
	}
	return &History{noise: noise}
}

// Add appends v unless it is implausible or a step larger than the noise
// threshold from the previous stored sample. A rejected sample leaves the ring
// untouched and clears the valid flag. Once rebaselineAfter consecutive
// readings agree on the same step it is taken as real and appended; the older
// samples stay, so the trend keeps counting across the step.
func (h *History) Add(v float64, now clock.Millis) bool {
	if math.IsNaN(v) || v < MinPlausible || v > MaxPlausible {
		h.valid = false
		return false
	}

	if h.count > 0 {
		last := h.values[(h.index-1+HistorySize)%HistorySize]
		if math.Abs(v-last) > h.noise {
			h.valid = false
			if h.rejected > 0 && math.Abs(v-h.lastRejected) <= h.noise {
				h.rejected++
			} else {
				h.rejected = 1
			}
			h.lastRejected = v
			if h.rejected < rebaselineAfter {
				return false
			}
		}
	}

	h.rejected = 0
	h.values[h.index] = v
	h.index = (h.index + 1) % HistorySize
	if h.count < HistorySize {
		h.count++
	}
	h.lastUpdate = clock.MarkAt(now)
	h.valid = true
	return true
}

// Trend compares the averages of the older and newer halves of the last
// TrendSamples readings. Fewer samples than that always read as Stable.
func (h *History) Trend() Trend {
	if h.count < TrendSamples {
		return Stable
	}
	half := TrendSamples / 2
	var older, newer float64
	for i := 0; i < TrendSamples; i++ {
		v := h.values[(h.index-TrendSamples+i+HistorySize)%HistorySize]
		if i < half {
			older += v
		} else {
			newer += v
		}
	}
	diff := newer/float64(TrendSamples-half) - older/float64(half)
	switch {
	case diff > TrendDeadband:
		return Rising
	case diff < -TrendDeadband:
		return Falling
	default:
		return Stable
	}
}

// Last returns the most recent stored sample.
func (h *History) Last() (float64, bool) {
	if h.count == 0 {
		return 0, false
	}
	return h.values[(h.index-1+HistorySize)%HistorySize], true
}

func (h *History) Count() int             { return h.count }
func (h *History) Valid() bool            { return h.valid }
func (h *History) LastUpdate() clock.Mark { return h.lastUpdate }

// Reset empties the history.
func (h *History) Reset() {
	h.clear()
	h.lastUpdate = clock.Mark{}
	h.rejected = 0
}

func (h *History) clear() {
	h.values = [HistorySize]float64{}
	h.index = 0
	h.count = 0
	h.valid = false
}
