package control

import (
	"time"

	"boiler_controller/internal/clock"
)

const statsDay = 24 * time.Hour

// FanStats counts fan work time at minute granularity and on-cycles.
type FanStats struct {
	TotalMinutes uint64 `json:"total_minutes"`
	DailyMinutes uint64 `json:"daily_minutes"`
	TotalCycles  uint64 `json:"total_cycles"`
	DailyCycles  uint64 `json:"daily_cycles"`

	lastMinute clock.Mark
	dayStart   clock.Mark
}

// Observe is called every cycle with the fan output and whether it just
// switched on.
func (s *FanStats) Observe(now clock.Millis, fan, started bool) {
	if !s.dayStart.IsSet() {
		s.dayStart = clock.MarkAt(now)
	}
	if s.dayStart.Reached(now, statsDay) {
		s.DailyMinutes = 0
		s.DailyCycles = 0
		s.dayStart = clock.MarkAt(now)
	}
	if started {
		s.TotalCycles++
		s.DailyCycles++
	}
	if !s.lastMinute.IsSet() {
		s.lastMinute = clock.MarkAt(now)
		return
	}
	if s.lastMinute.Reached(now, time.Minute) {
		s.lastMinute = clock.MarkAt(now)
		if fan {
			s.TotalMinutes++
			s.DailyMinutes++
		}
	}
}

// Snapshot returns the counters without the timers.
func (s *FanStats) Snapshot() FanStats {
	return FanStats{
		TotalMinutes: s.TotalMinutes,
		DailyMinutes: s.DailyMinutes,
		TotalCycles:  s.TotalCycles,
		DailyCycles:  s.DailyCycles,
	}
}
