package live

import "sync"

// outbox queues events for the write pump. Consecutive state events are
// coalesced so a slow client only ever receives the latest state.
type outbox struct {
	mu     sync.Mutex
	queue  []*Event
	state  *Event
	notify chan struct{}
	limit  int
}

func newOutbox(limit int) *outbox {
	return &outbox{notify: make(chan struct{}, 1), limit: limit}
}

// push queues evt; it reports false when the queue is full and evt was dropped.
func (o *outbox) push(evt *Event) bool {
	o.mu.Lock()
	if len(o.queue) >= o.limit {
		o.mu.Unlock()
		return false
	}
	// a pending state keeps its place ahead of evt
	if o.state != nil {
		o.queue = append(o.queue, o.state)
		o.state = nil
	}
	o.queue = append(o.queue, evt)
	o.mu.Unlock()

	o.wake()
	return true
}

// pushState replaces any state event not yet written.
func (o *outbox) pushState(evt *Event) {
	o.mu.Lock()
	o.state = evt
	o.mu.Unlock()

	o.wake()
}

func (o *outbox) wake() {
	select {
	case o.notify <- struct{}{}:
	default:
	}
}

// drain returns everything pending in write order.
func (o *outbox) drain() []*Event {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := o.queue
	o.queue = nil
	if o.state != nil {
		out = append(out, o.state)
		o.state = nil
	}
	return out
}
