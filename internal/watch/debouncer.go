package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces a burst of triggers into one callback invocation
// that fires after interval of quiet. It is used by backends that cannot
// observe write-close directly and only see individual writes.
type Debouncer struct {
	interval time.Duration
	callback func(path string)

	mu       sync.Mutex
	timer    *time.Timer
	lastPath string
	stopped  bool
}

// NewDebouncer creates a debouncer. A non-positive interval disables
// coalescing: Trigger invokes callback synchronously.
func NewDebouncer(interval time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
	}
}

// Trigger records an event for path and restarts the quiet period.
// Triggers after Stop are ignored.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.interval <= 0 {
		d.mu.Unlock()
		d.fire(path)

		return
	}

	d.lastPath = path

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		p, stopped := d.lastPath, d.stopped
		d.mu.Unlock()

		if !stopped {
			d.fire(p)
		}
	})
	d.mu.Unlock()
}

func (d *Debouncer) fire(path string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("debouncer callback panicked", slog.Any("error", r))
		}
	}()

	d.callback(path)
}

// Stop cancels any pending callback and disables the debouncer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
