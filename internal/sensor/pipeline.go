package sensor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"boiler_controller/internal/clock"
)

const (
	ConversionDelay = 800 * time.Millisecond
	CycleInterval   = 3 * time.Second
	FreezeTimeout   = 60 * time.Second
	PowerSettle     = 3 * time.Second

	// probe hardware range; the bus reports -127 for a disconnected device
	minProbe = -55.0
	maxProbe = 125.0

	sentinelBand = 0.1
	lowSentinel  = 0.0
	highSentinel = 85.0
	minHomeInput = -50.0
	maxHomeInput = 50.0
)

var (
	ErrConversionPending = errors.New("temperature conversion still in progress")
	ErrNoConversion      = errors.New("no temperature conversion requested")
	ErrPowerCycling      = errors.New("sensor power cycle in progress")
	ErrNotBusRole        = errors.New("role is not served by the probe bus")
)

// Bus is the physical probe boundary. RequestConversion must return without
// waiting for the conversion to finish.
type Bus interface {
	RequestConversion(addrs []string) error
	ReadValue(addr string) (float64, bool)
	SetPower(on bool) error
}

// Reading is the latest accepted value of a role.
type Reading struct {
	Value  float64    `json:"value"`
	Valid  bool       `json:"valid"`
	Frozen bool       `json:"frozen"`
	At     clock.Mark `json:"-"`
}

// Report describes what a pipeline step did.
type Report struct {
	Collected     bool
	Frozen        []Role
	PowerCycled   bool
	PowerRestored bool
	Err           error
}

// Pipeline owns the only write path into sensor state.
type Pipeline struct {
	bus       Bus
	mapping   map[Role]string
	histories map[Role]*History
	readings  map[Role]Reading
	lastValid map[Role]clock.Mark

	pending   bool
	requested clock.Mark
	lastBegin clock.Mark
	powerOff  clock.Mark
}

// NewPipeline builds a pipeline for the given role to address mapping.
func NewPipeline(bus Bus, mapping map[Role]string) *Pipeline {
	p := &Pipeline{
		bus:       bus,
		mapping:   make(map[Role]string),
		histories: make(map[Role]*History, len(AllRoles)),
		readings:  make(map[Role]Reading, len(AllRoles)),
		lastValid: make(map[Role]clock.Mark),
	}
	for _, r := range AllRoles {
		p.histories[r] = NewHistory(r)
	}
	for r, addr := range mapping {
		if r.OnBus() && addr != "" {
			p.mapping[r] = addr
		}
	}
	return p
}

// BeginCycle requests a conversion from every mapped probe.
func (p *Pipeline) BeginCycle(now clock.Millis) error {
	if p.powerOff.IsSet() {
		return ErrPowerCycling
	}
	addrs := make([]string, 0, len(p.mapping))
	for _, r := range BusRoles {
		addr, ok := p.mapping[r]
		if !ok {
			continue
		}
		addrs = append(addrs, addr)
		if !p.lastValid[r].IsSet() {
			p.lastValid[r] = clock.MarkAt(now)
		}
	}
	p.lastBegin = clock.MarkAt(now)
	if len(addrs) == 0 {
		return nil
	}
	if err := p.bus.RequestConversion(addrs); err != nil {
		return fmt.Errorf("request conversion: %w", err)
	}
	p.pending = true
	p.requested = clock.MarkAt(now)
	return nil
}

// Collect reads every mapped probe once the conversion delay has passed.
func (p *Pipeline) Collect(now clock.Millis) error {
	if !p.pending {
		return ErrNoConversion
	}
	if !p.requested.Reached(now, ConversionDelay) {
		return ErrConversionPending
	}
	p.pending = false
	for _, r := range BusRoles {
		addr, ok := p.mapping[r]
		if !ok {
			continue
		}
		v, ok := p.bus.ReadValue(addr)
		if !ok || !acceptable(r, v) {
			continue
		}
		p.accept(r, v, now)
	}
	return nil
}

// Step drives the two-phase cycle, freeze detection and power-cycle settle.
// It never blocks.
func (p *Pipeline) Step(now clock.Millis) Report {
	var rep Report

	if p.powerOff.IsSet() {
		if !p.powerOff.Reached(now, PowerSettle) {
			return rep
		}
		if err := p.bus.SetPower(true); err != nil {
			rep.Err = fmt.Errorf("restore sensor power: %w", err)
			return rep
		}
		p.powerOff = clock.Mark{}
		rep.PowerRestored = true
	}

	switch {
	case p.pending && p.requested.Reached(now, ConversionDelay):
		if err := p.Collect(now); err == nil {
			rep.Collected = true
		}
	case !p.pending && (!p.lastBegin.IsSet() || p.lastBegin.Reached(now, CycleInterval)):
		if err := p.BeginCycle(now); err != nil {
			rep.Err = err
		}
	}

	if frozen := p.checkFreeze(now); len(frozen) > 0 {
		rep.Frozen = frozen
		if err := p.powerCycle(now); err != nil {
			rep.Err = err
		} else {
			rep.PowerCycled = true
		}
	}
	return rep
}

// RequestPowerCycle switches sensor power off; Step restores it after the
// settle delay. Repeated requests during a cycle are no-ops.
func (p *Pipeline) RequestPowerCycle(now clock.Millis) error {
	if p.powerOff.IsSet() {
		return nil
	}
	return p.powerCycle(now)
}

// PowerCycling reports whether sensor power is currently off.
func (p *Pipeline) PowerCycling() bool { return p.powerOff.IsSet() }

// Offer feeds an externally supplied value for a role, such as the home
// temperature received over the network.
func (p *Pipeline) Offer(r Role, v float64, now clock.Millis) error {
	if r != Home {
		return fmt.Errorf("offer %s: %w", r, ErrNotBusRole)
	}
	if math.IsNaN(v) || v < minHomeInput || v > maxHomeInput {
		return fmt.Errorf("home temperature %.1f outside %.0f..%.0f", v, minHomeInput, maxHomeInput)
	}
	p.accept(r, v, now)
	return nil
}

// Invalidate marks a role's reading as unavailable without touching history.
func (p *Pipeline) Invalidate(r Role) {
	rd := p.readings[r]
	rd.Valid = false
	p.readings[r] = rd
}

// Remap assigns a new probe address to a bus role and forgets everything
// learned from the previous probe.
func (p *Pipeline) Remap(r Role, addr string, now clock.Millis) error {
	if !r.OnBus() {
		return fmt.Errorf("remap %s: %w", r, ErrNotBusRole)
	}
	if addr == "" {
		delete(p.mapping, r)
		delete(p.lastValid, r)
	} else {
		p.mapping[r] = addr
		p.lastValid[r] = clock.MarkAt(now)
	}
	p.histories[r].Reset()
	p.readings[r] = Reading{}
	return nil
}

// Mapping returns a copy of the role to address mapping.
func (p *Pipeline) Mapping() map[Role]string {
	out := make(map[Role]string, len(p.mapping))
	for r, a := range p.mapping {
		out[r] = a
	}
	return out
}

// Reading returns the latest reading of a role.
func (p *Pipeline) Reading(r Role) Reading { return p.readings[r] }

// Trend returns the trend of a role's history.
func (p *Pipeline) Trend(r Role) Trend { return p.histories[r].Trend() }

// History exposes a role's history for reporting.
func (p *Pipeline) History(r Role) *History { return p.histories[r] }

// Reset clears freeze timers and pending conversions, keeping histories.
func (p *Pipeline) Reset() {
	p.pending = false
	p.requested = clock.Mark{}
	p.lastBegin = clock.Mark{}
	p.lastValid = make(map[Role]clock.Mark)
}

func (p *Pipeline) accept(r Role, v float64, now clock.Millis) {
	p.lastValid[r] = clock.MarkAt(now)
	p.readings[r] = Reading{Value: v, Valid: true, At: clock.MarkAt(now)}
	p.histories[r].Add(v, now)
}

func (p *Pipeline) checkFreeze(now clock.Millis) []Role {
	if p.powerOff.IsSet() {
		return nil
	}
	var frozen []Role
	for _, r := range BusRoles {
		if _, ok := p.mapping[r]; !ok {
			continue
		}
		if p.lastValid[r].Reached(now, FreezeTimeout) {
			frozen = append(frozen, r)
			rd := p.readings[r]
			rd.Valid = false
			rd.Frozen = true
			p.readings[r] = rd
		}
	}
	return frozen
}

func (p *Pipeline) powerCycle(now clock.Millis) error {
	p.pending = false
	p.lastValid = make(map[Role]clock.Mark)
	p.powerOff = clock.MarkAt(now)
	if err := p.bus.SetPower(false); err != nil {
		return fmt.Errorf("cut sensor power: %w", err)
	}
	return nil
}

// acceptable applies the probe range and the stuck-value sentinels. Zero is
// a real winter reading outdoors, so only the upper sentinel applies there.
func acceptable(r Role, v float64) bool {
	if math.IsNaN(v) || v < minProbe || v > maxProbe {
		return false
	}
	if math.Abs(v-highSentinel) <= sentinelBand {
		return false
	}
	if r != Outside && math.Abs(v-lowSentinel) <= sentinelBand {
		return false
	}
	return true
}
