// Package capture implements the station-side capture workflow: a
// step-gated state machine that walks an operator from sub-program
// selection through person lookup, photo capture, and submission to the
// registration backend.
//
// This file provides the Debouncer used to coalesce search keystrokes.
package capture

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls into a single trailing invocation.
// Each Schedule cancels the previously pending one, so only the last call
// in a burst fires after the delay.
//
// Every Schedule also advances a generation counter. Callers that launch
// asynchronous work from the fired function should capture the returned
// generation and check Latest before applying results, so responses that
// were overtaken by a newer keystroke are discarded.
//
// Debouncer is safe for concurrent use.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer returns a Debouncer with the given trailing delay.
// A non-positive delay fires on (approximately) the next tick.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule arranges for fn to run after the delay, cancelling any
// previously scheduled function. It returns the generation assigned to
// this call; fn receives the same value.
//
// fn runs on a timer goroutine only if no newer Schedule call has
// superseded it by firing time.
func (d *Debouncer) Schedule(fn func(gen uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	g := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		if d.Latest(g) {
			fn(g)
		}
	})
	return g
}

// Latest reports whether gen is still the most recent generation, i.e. no
// newer Schedule call has happened since it was issued.
func (d *Debouncer) Latest(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}

// Cancel stops any pending invocation and invalidates all outstanding
// generations. It does not wait for an already-running fn to return.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
