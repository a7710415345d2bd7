//go:build !linux

package encoder

import "errors"

// Watcher is not available on non-Linux platforms.
type Watcher struct{}

// NewWatcher returns an error on non-Linux platforms.
func NewWatcher(Pins) (*Watcher, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

func (w *Watcher) Events() <-chan Event { return nil }
func (w *Watcher) Close() error         { return nil }
