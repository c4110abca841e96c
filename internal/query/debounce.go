package query

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a typed search term is applied.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer delays a callback until calls stop arriving for a fixed duration.
// Every scheduled call carries a generation; a later Debounce, Immediate or
// Cancel makes earlier generations stale, and callbacks can check Current
// under their own lock to drop a timer that fired before it was stopped.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
	gen      uint64
}

// NewDebouncer creates a new debouncer with the specified duration
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
	}
}

// Debounce runs fn with its generation after the debounce duration has
// elapsed without any new calls. Rapid successive calls reset the timer.
func (d *Debouncer) Debounce(fn func(gen uint64)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	gen := d.nextLocked()
	d.timer = time.AfterFunc(d.duration, func() { fn(gen) })
}

// Cancel cancels any pending debounced call and makes its generation stale.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextLocked()
	d.timer = nil
}

// Immediate cancels any pending call and runs fn now with a fresh generation.
func (d *Debouncer) Immediate(fn func(gen uint64)) {
	d.mu.Lock()
	gen := d.nextLocked()
	d.timer = nil
	d.mu.Unlock()

	fn(gen)
}

// Current reports whether gen is the latest generation.
func (d *Debouncer) Current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}

// Duration returns the quiet period.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}

func (d *Debouncer) nextLocked() uint64 {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	return d.gen
}
