package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	bc "boiler_controller"
	"boiler_controller/internal/clock"
	"boiler_controller/internal/control"
	"boiler_controller/internal/hardware"
	"boiler_controller/internal/logger"
	"boiler_controller/internal/metrics"
	"boiler_controller/internal/repository"
)

// ErrLoopStopped is returned for commands submitted after the loop exited.
var ErrLoopStopped = errors.New("control loop is not running")

const (
	commandBuffer = 16
	storeTimeout  = 2 * time.Second
)

// EventSink receives every journal entry after it is stored.
type EventSink interface {
	PublishEvent(ev bc.BoilerEvent) error
}

type command struct {
	fn   func(core *control.Core, now clock.Millis) error
	done chan error
}

// Controller owns the control core. Only the Run goroutine touches it;
// everyone else submits commands or reads the published snapshot.
type Controller struct {
	core    *control.Core
	clock   clock.Clock
	relays  hardware.Relays
	store   repository.SettingsRepo
	events  repository.EventRepo
	metrics *metrics.Metrics
	log     *logger.Logger
	wall    func() time.Time

	sink EventSink

	cmds    chan command
	stopped chan struct{}
	once    sync.Once

	mu   sync.RWMutex
	snap bc.BoilerState

	// loop-owned
	outputs    control.Outputs
	applied    bool
	persisted  control.Persisted
	saveFailed bool
	sensorErr  string
	lastState  string
}

// ControllerDeps are the collaborators of a Controller. Metrics may be nil.
type ControllerDeps struct {
	Core     *control.Core
	Clock    clock.Clock
	Relays   hardware.Relays
	Settings repository.SettingsRepo
	Events   repository.EventRepo
	Metrics  *metrics.Metrics
	Log      *logger.Logger
}

func NewController(d ControllerDeps) *Controller {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		core:    d.Core,
		clock:   d.Clock,
		relays:  d.Relays,
		store:   d.Settings,
		events:  d.Events,
		metrics: d.Metrics,
		log:     log,
		wall:    time.Now,
		cmds:    make(chan command, commandBuffer),
		stopped: make(chan struct{}),
	}
}

// SetEventSink attaches a publisher for journal entries. Call before Run.
func (c *Controller) SetEventSink(s EventSink) { c.sink = s }

// State returns the snapshot taken after the latest cycle or command.
func (c *Controller) State() bc.BoilerState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Do runs fn on the control loop and waits for its result.
func (c *Controller) Do(ctx context.Context, fn func(core *control.Core, now clock.Millis) error) error {
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case c.cmds <- cmd:
	case <-c.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-c.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// query runs fn on the control loop and returns its value. The value travels
// over its own buffered channel, so a caller that gives up on ctx never
// shares memory with a command the loop runs later.
func query[T any](ctx context.Context, c *Controller, fn func(core *control.Core, now clock.Millis) (T, error)) (T, error) {
	out := make(chan T, 1)
	err := c.Do(ctx, func(core *control.Core, now clock.Millis) error {
		v, err := fn(core, now)
		out <- v
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return <-out, nil
}

// Run restores the persisted settings and then ticks the core until ctx is
// canceled. The final state is saved on the way out.
func (c *Controller) Run(ctx context.Context, tick time.Duration) {
	defer c.once.Do(func() { close(c.stopped) })

	c.restore(ctx)
	c.step(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			c.save(context.Background())
			c.log.Infow("control_loop_stopped")
			return
		case cmd := <-c.cmds:
			now := c.clock.Now()
			err := cmd.fn(c.core, now)
			c.afterChange(ctx, now)
			cmd.done <- err
		case <-t.C:
			c.step(ctx)
		}
	}
}

func (c *Controller) restore(ctx context.Context) {
	now := c.clock.Now()
	if c.store == nil {
		c.refresh(now)
		return
	}
	lctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	p, found, err := c.store.Load(lctx)
	switch {
	case err != nil:
		c.log.Warnw("settings_load_failed", "error", err)
	case !found:
		c.log.Infow("settings_defaults")
	default:
		c.core.Restore(p, now)
		c.log.Infow("settings_restored", "mode", p.Mode.String(), "state", p.State.String(), "system_enabled", p.SystemEnabled)
	}
	c.persisted = c.core.Persisted()
	c.refresh(now)
}

func (c *Controller) step(ctx context.Context) {
	now := c.clock.Now()
	res := c.core.Tick(now)

	switch {
	case res.SensorErr != nil && res.SensorErr.Error() != c.sensorErr:
		c.sensorErr = res.SensorErr.Error()
		c.log.Warnw("sensor_cycle_failed", "error", res.SensorErr)
	case res.SensorErr == nil && c.sensorErr != "":
		c.sensorErr = ""
		c.log.Infow("sensor_cycle_recovered")
	}

	c.apply(res.Outputs)
	c.afterChange(ctx, now)
}

func (c *Controller) apply(out control.Outputs) {
	if c.relays == nil || (c.applied && out == c.outputs) {
		return
	}
	if err := c.relays.SetFan(out.Fan); err != nil {
		c.log.Errorw("relay_set_failed", "device", "fan", "on", out.Fan, "error", err)
		return
	}
	if err := c.relays.SetPump(out.Pump); err != nil {
		c.log.Errorw("relay_set_failed", "device", "pump", "on", out.Pump, "error", err)
		return
	}
	if c.applied {
		c.log.Infow("actuators_changed", "fan", out.Fan, "pump", out.Pump)
	}
	c.outputs, c.applied = out, true
}

// afterChange journals new events, saves changed settings and republishes
// the snapshot.
func (c *Controller) afterChange(ctx context.Context, now clock.Millis) {
	c.drainEvents(ctx, now)
	c.save(ctx)
	st := c.refresh(now)
	if st.State != c.lastState {
		if c.lastState != "" {
			c.log.Infow("control_state_changed", "from", c.lastState, "to", st.State)
		}
		c.lastState = st.State
	}
}

func (c *Controller) drainEvents(ctx context.Context, now clock.Millis) {
	wall := c.wall()
	for _, e := range c.core.DrainEvents() {
		ev := bc.BoilerEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  wall.Add(-now.Sub(e.At)).UTC(),
			Type:        string(e.Type),
			Description: e.Message,
			Metadata:    map[string]any{"supply": e.Supply},
		}
		c.log.Infow("boiler_event", "type", ev.Type, "message", ev.Description, "supply", e.Supply)
		c.metrics.EventRecorded(ev.Type)

		if c.events != nil {
			actx, cancel := context.WithTimeout(ctx, storeTimeout)
			if err := c.events.Append(actx, ev); err != nil {
				c.log.Errorw("event_store_failed", "type", ev.Type, "error", err)
			}
			cancel()
		}
		if c.sink != nil {
			if err := c.sink.PublishEvent(ev); err != nil {
				c.log.Warnw("event_publish_failed", "type", ev.Type, "error", err)
			}
		}
	}
}

// save writes the restorable state when it changed. A failed save is
// retried on the next cycle.
func (c *Controller) save(ctx context.Context) {
	if c.store == nil {
		return
	}
	p := c.core.Persisted()
	if reflect.DeepEqual(p, c.persisted) {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := c.store.Save(sctx, p); err != nil {
		if !c.saveFailed {
			c.log.Errorw("settings_save_failed", "error", err)
		}
		c.saveFailed = true
		return
	}
	if c.saveFailed {
		c.log.Infow("settings_save_recovered")
	}
	c.saveFailed = false
	c.persisted = p
}

func (c *Controller) refresh(now clock.Millis) bc.BoilerState {
	st := buildState(c.core.Status(now), c.wall())
	c.mu.Lock()
	c.snap = st
	c.mu.Unlock()
	c.metrics.Observe(st)
	return st
}
