package view

import "sync"

// publisher delivers state snapshots to subscribers in version order.
type publisher[S any] struct {
	mu        sync.Mutex
	nextID    int
	subs      map[int]func(S)
	delivered uint64
}

func (p *publisher[S]) subscribe(fn func(S)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subs == nil {
		p.subs = make(map[int]func(S))
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// publish delivers s unless a newer version was already delivered.
func (p *publisher[S]) publish(version uint64, s S) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if version <= p.delivered {
		return
	}
	p.delivered = version

	for _, fn := range p.subs {
		fn(s)
	}
}
