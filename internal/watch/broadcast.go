package watch

import "sync"

// Listener receives the "./"-prefixed relative path of a changed file.
type Listener func(path string)

// Broadcaster fans change notifications out to a set of listeners.
type Broadcaster struct {
	mu        sync.RWMutex
	next      uint64
	listeners map[uint64]Listener
}

// NewBroadcaster returns a Broadcaster with no listeners.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[uint64]Listener)}
}

// Add registers l and returns a func that removes it. Calling the returned
// func more than once is harmless.
func (b *Broadcaster) Add(l Listener) (remove func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = l
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Notify calls every listener with path.
func (b *Broadcaster) Notify(path string) {
	b.mu.RLock()
	ls := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		ls = append(ls, l)
	}
	b.mu.RUnlock()

	for _, l := range ls {
		l(path)
	}
}

// Len returns the number of registered listeners.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
