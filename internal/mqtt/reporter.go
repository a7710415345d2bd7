package mqtt

import (
	"context"
	"fmt"
	"sort"
	"time"

	bc "boiler_controller"
	"boiler_controller/internal/logger"
)

const (
	DefaultStateInterval  = 10 * time.Second
	DefaultSimpleInterval = 30 * time.Second
)

// StateSource provides the snapshot to publish.
type StateSource interface {
	State() bc.BoilerState
}

// Reporter publishes the periodic state documents and journal events.
type Reporter struct {
	pub    Publisher
	topics Topics
	src    StateSource
	log    *logger.Logger

	stateEvery  time.Duration
	simpleEvery time.Duration
}

func NewReporter(pub Publisher, topics Topics, src StateSource, log *logger.Logger, stateEvery, simpleEvery time.Duration) *Reporter {
	if stateEvery <= 0 {
		stateEvery = DefaultStateInterval
	}
	if simpleEvery <= 0 {
		simpleEvery = DefaultSimpleInterval
	}
	return &Reporter{
		pub:         pub,
		topics:      topics,
		src:         src,
		log:         log,
		stateEvery:  stateEvery,
		simpleEvery: simpleEvery,
	}
}

// Run publishes until ctx is cancelled. Nothing is queued while the broker
// is unreachable.
func (r *Reporter) Run(ctx context.Context) {
	stateTicker := time.NewTicker(r.stateEvery)
	defer stateTicker.Stop()
	simpleTicker := time.NewTicker(r.simpleEvery)
	defer simpleTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stateTicker.C:
			if !r.pub.IsConnected() {
				continue
			}
			if err := r.PublishState(r.src.State()); err != nil {
				r.log.Warnw("mqtt_publish_failed", "topic", r.topics.State(), "err", err)
			}
		case <-simpleTicker.C:
			if !r.pub.IsConnected() {
				continue
			}
			if err := r.PublishSimple(r.src.State()); err != nil {
				r.log.Warnw("mqtt_publish_failed", "topic", r.topics.Simple("*"), "err", err)
			}
		}
	}
}

func (r *Reporter) PublishState(st bc.BoilerState) error {
	payload, err := FormatState(st)
	if err != nil {
		return fmt.Errorf("format state: %w", err)
	}
	return r.pub.Publish(r.topics.State(), 0, false, payload)
}

// PublishSimple publishes every simple topic and returns the first failure.
func (r *Reporter) PublishSimple(st bc.BoilerState) error {
	values := FormatSimple(st)
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var first error
	for _, name := range names {
		if err := r.pub.Publish(r.topics.Simple(name), 0, false, []byte(values[name])); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PublishEvent sends a journal entry on its per-type topic.
func (r *Reporter) PublishEvent(ev bc.BoilerEvent) error {
	if !r.pub.IsConnected() {
		return nil
	}
	payload, err := FormatEvent(ev)
	if err != nil {
		return fmt.Errorf("format event: %w", err)
	}
	return r.pub.Publish(r.topics.Event(ev.Type), 1, false, payload)
}

// PublishSetpoint announces a setpoint change made on the device.
func (r *Reporter) PublishSetpoint(v float64) error {
	if !r.pub.IsConnected() {
		return nil
	}
	return r.pub.Publish(r.topics.Setpoint(), 0, false, []byte(formatTemp(v)))
}
