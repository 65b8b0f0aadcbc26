package identity

import "sync"

// bus fans auth events out to subscribers. Delivery is synchronous so
// subscribers observe events in the order the provider produced them.
type bus struct {
	mu   sync.Mutex
	subs map[int]func(Event)
	next int
}

func newBus() *bus {
	return &bus{subs: make(map[int]func(Event))}
}

func (b *bus) subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *bus) emit(evt Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}
