package view

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultSearchDebounce is the quiet period before search input is applied.
const DefaultSearchDebounce = 300 * time.Millisecond

// Debouncer forwards the last value pushed once no new value arrived for the
// delay, and only when it differs from the previously forwarded value.
type Debouncer struct {
	clock clockwork.Clock
	delay time.Duration
	emit  func(string)

	mu      sync.Mutex
	timer   clockwork.Timer
	gen     uint64
	last    string
	stopped bool
}

// NewDebouncer creates a Debouncer; the previously forwarded value starts as "".
func NewDebouncer(clock clockwork.Clock, delay time.Duration, emit func(string)) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{clock: clock, delay: delay, emit: emit}
}

// Push records v and restarts the quiet period.
func (d *Debouncer) Push(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.cancelLocked()
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen, v) })
}

// Flush drops any pending value and forwards v immediately, subject to the
// same distinct check.
func (d *Debouncer) Flush(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancelLocked()
	d.forwardLocked(v)
}

// Stop cancels any pending value; later calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) fire(gen uint64, v string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// superseded by a later Push, Flush or Stop
	if d.stopped || gen != d.gen {
		return
	}
	d.timer = nil
	d.forwardLocked(v)
}

func (d *Debouncer) cancelLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// forwardLocked runs emit under d.mu so forwarded values keep their order.
func (d *Debouncer) forwardLocked(v string) {
	if v == d.last {
		return
	}
	d.last = v
	d.emit(v)
}
