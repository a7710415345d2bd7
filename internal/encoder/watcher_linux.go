//go:build linux

package encoder

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const (
	pollInterval = 100 * time.Millisecond
	eventBuffer  = 16
)

// Watcher reports encoder events from GPIO edge interrupts.
type Watcher struct {
	chip    *gpiocdev.Chip
	lines   *gpiocdev.Lines
	button  *gpiocdev.Line
	pins    Pins
	decoder *Decoder
	start   time.Time
	events  chan Event

	stop     chan struct{}
	wg       sync.WaitGroup
	closeOne sync.Once
}

// NewWatcher requests the encoder lines with pull-ups and edge detection.
func NewWatcher(pins Pins) (*Watcher, error) {
	chip, err := gpiocdev.NewChip(pins.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", pins.Chip, err)
	}
	w := &Watcher{
		chip:    chip,
		pins:    pins,
		decoder: NewDecoder(),
		start:   time.Now(),
		events:  make(chan Event, eventBuffer),
		stop:    make(chan struct{}),
	}

	w.lines, err = chip.RequestLines([]int{pins.CLK, pins.DT},
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(w.handle),
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request encoder lines %d,%d: %w", pins.CLK, pins.DT, err)
	}
	w.button, err = chip.RequestLine(pins.SW,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(w.handle),
	)
	if err != nil {
		w.lines.Close()
		chip.Close()
		return nil, fmt.Errorf("request encoder button %d: %w", pins.SW, err)
	}

	w.wg.Add(1)
	go w.poll()
	return w, nil
}

// Events delivers decoded gestures. Events are dropped while the channel is full.
func (w *Watcher) Events() <-chan Event { return w.events }

func (w *Watcher) handle(evt gpiocdev.LineEvent) {
	var in Input
	switch evt.Offset {
	case w.pins.CLK:
		in = CLK
	case w.pins.DT:
		in = DT
	case w.pins.SW:
		in = SW
	default:
		return
	}
	level := evt.Type == gpiocdev.LineEventRisingEdge
	if e, ok := w.decoder.Edge(in, level, time.Since(w.start)); ok {
		w.emit(e)
	}
}

func (w *Watcher) poll() {
	defer w.wg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			if e, ok := w.decoder.Poll(time.Since(w.start)); ok {
				w.emit(e)
			}
		}
	}
}

func (w *Watcher) emit(e Event) {
	select {
	case w.events <- e:
	default:
	}
}

// Close releases the lines and stops the poller.
func (w *Watcher) Close() error {
	var errs []error
	w.closeOne.Do(func() {
		close(w.stop)
		w.wg.Wait()
		if err := w.button.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button line: %w", err))
		}
		if err := w.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close encoder lines: %w", err))
		}
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	})
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
