package view

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Options tunes a controller; the zero value is usable.
type Options struct {
	Clock          clockwork.Clock // drives the search debounce
	SearchDebounce time.Duration   // zero selects DefaultSearchDebounce
	Logger         *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) debounce() time.Duration {
	if o.SearchDebounce <= 0 {
		return DefaultSearchDebounce
	}
	return o.SearchDebounce
}

// loader tracks the fetch lifecycle shared by both controllers. All fields
// are guarded by the owning controller's mutex.
type loader struct {
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	loading bool
	seq     uint64        // tag of the latest load; older results are stale
	settled chan struct{} // closed when the latest load finishes
	version uint64        // bumped on every state transition
}

// activate binds the controller lifetime to parent.
func (l *loader) activate(parent context.Context) {
	if l.cancel != nil {
		l.cancel()
	}
	l.ctx, l.cancel = context.WithCancel(parent)
}

// begin marks a new load and returns its tag.
func (l *loader) begin() uint64 {
	l.seq++
	l.loading = true
	if l.settled == nil {
		l.settled = make(chan struct{})
	}
	return l.seq
}

// current reports whether a result tagged seq may still be applied.
func (l *loader) current(seq uint64) bool {
	return !l.closed && seq == l.seq
}

// finish clears loading and wakes waiters. Calling it twice is harmless.
func (l *loader) finish() {
	l.loading = false
	if l.settled != nil {
		close(l.settled)
		l.settled = nil
	}
}

func (l *loader) close() bool {
	if l.closed {
		return false
	}
	l.closed = true
	if l.cancel != nil {
		l.cancel()
	}
	if l.settled != nil {
		close(l.settled)
		l.settled = nil
	}
	return true
}

// waitChan returns the channel to wait on, or nil when nothing is pending.
func (l *loader) waitChan() <-chan struct{} {
	if l.closed || !l.loading {
		return nil
	}
	return l.settled
}

func (l *loader) next() uint64 {
	l.version++
	return l.version
}
