package service

import (
	"context"
	"math"
	"time"

	"boiler_controller/internal/sensor"
)

// ----------- Plant model constants -----------
const (
	AmbientC          = 18.0 // boiler room temperature °C
	OutdoorC          = 5.0  // constant outdoor temperature °C
	MaxPlantC         = 95.0 // water never gets hotter in the model
	FireRiseCPerSec   = 0.05 // supply rise with the fan on
	FireDecayCPerSec  = 0.01 // supply cooling with the fan off
	PumpLossCPerSec   = 0.01 // extra loss while the pump moves heat to the house
	ReturnDropPumped  = 12.0 // return below supply while circulating
	ReturnDropStill   = 4.0  // return below supply without circulation
	BoilerDropC       = 1.5  // boiler body below supply
	probeResolutionC  = 0.0625
	simulatedAddrBase = "28-sim"
)

// RelayState reports the actuator outputs driving the model.
type RelayState interface {
	State() (fan, pump, power bool)
}

// SimulatorService stands in for the boiler when no hardware is attached:
// it turns relay outputs into probe readings on a fake bus.
type SimulatorService struct {
	bus     *sensor.FakeBus
	relays  RelayState
	mapping map[sensor.Role]string

	supply float64
}

// SimulatedMapping assigns a fake probe address to every bus role.
func SimulatedMapping() map[sensor.Role]string {
	m := make(map[sensor.Role]string, len(sensor.BusRoles))
	for _, r := range sensor.BusRoles {
		m[r] = simulatedAddrBase + r.String()
	}
	return m
}

// NewSimulatorService returns a cold plant publishing on bus.
func NewSimulatorService(bus *sensor.FakeBus, relays RelayState, mapping map[sensor.Role]string) *SimulatorService {
	s := &SimulatorService{
		bus:     bus,
		relays:  relays,
		mapping: mapping,
		supply:  AmbientC,
	}
	s.publish(false)
	return s
}

// Run advances the model at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.advance(now.Sub(last).Seconds())
			last = now
		}
	}
}

// Supply returns the modelled supply temperature.
func (s *SimulatorService) Supply() float64 { return s.supply }

// advance moves the model by elapsed seconds.
func (s *SimulatorService) advance(elapsed float64) {
	if elapsed <= 0 {
		return
	}
	fan, pump, _ := s.relays.State()
	if fan {
		s.supply = math.Min(s.supply+FireRiseCPerSec*elapsed, MaxPlantC)
	} else {
		s.supply = coolToward(s.supply, AmbientC, FireDecayCPerSec*elapsed)
	}
	if pump {
		s.supply = coolToward(s.supply, AmbientC, PumpLossCPerSec*elapsed)
	}
	s.publish(pump)
}

func (s *SimulatorService) publish(pump bool) {
	drop := ReturnDropStill
	if pump {
		drop = ReturnDropPumped
	}
	values := map[sensor.Role]float64{
		sensor.Supply:  s.supply,
		sensor.Return:  math.Max(s.supply-drop, AmbientC),
		sensor.Boiler:  math.Max(s.supply-BoilerDropC, AmbientC),
		sensor.Outside: OutdoorC,
	}
	for r, v := range values {
		if addr, ok := s.mapping[r]; ok {
			s.bus.Set(addr, quantize(v))
		}
	}
}

// helpers
func coolToward(v, floor, by float64) float64 {
	return math.Max(v-by, floor)
}

func quantize(v float64) float64 {
	return math.Round(v/probeResolutionC) * probeResolutionC
}
