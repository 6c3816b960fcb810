package engine

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of edits into a single recalculation.
//
// Every Trigger, Flush or Stop bumps a generation counter. A pending
// callback only runs if its generation is still current when the timer
// fires, so only the latest edit is ever acted upon.
type Debouncer struct {
	wait time.Duration

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
}

// NewDebouncer returns a Debouncer delaying callbacks by wait.
func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Trigger schedules fn after the wait, superseding any pending callback.
// fn runs on the timer goroutine.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	gen := d.generation
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() {
		if d.isCurrent(gen) {
			fn()
		}
	})
}

// Flush cancels any pending callback and runs fn immediately on the
// caller's goroutine. Used when a field is confirmed.
func (d *Debouncer) Flush(fn func()) {
	d.cancel()
	fn()
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.cancel()
}

// Generation returns the current generation counter.
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation
}

func (d *Debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) isCurrent(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation == gen
}
