// Package debounce provides a cancellable deferred scheduler. The contract is
// "schedule; if rescheduled before firing, the prior schedule is void" - the
// latest scheduled function is the only one that may eventually run, and a
// reschedule also cancels the context of a previously fired invocation so
// late results can be discarded (last-write-wins).
package debounce

import (
	"context"
	"sync"
	"time"
)

// Debouncer coalesces bursts of Schedule calls into a single invocation.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	cancel context.CancelFunc
}

// New creates a Debouncer with the given delay.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule voids any pending schedule, cancels the context of any in-flight
// invocation, and arranges for fn to run after the delay. fn receives a
// context that is cancelled by the next Schedule or by Stop; fn must check it
// before applying its result.
func (d *Debouncer) Schedule(fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		fn(ctx)
	})
}

// Stop voids any pending schedule and cancels any in-flight invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
