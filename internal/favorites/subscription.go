package favorites

import (
	"sync"

	"github.com/five82/gifbox/internal/gif"
)

// Subscription is a live feed of favorites lists.
//
// C is closed when the subscription ends. Err reports why: nil after Close or
// a closed store, the watcher error when the store invalidated it.
type Subscription struct {
	store *Store
	ch    chan []gif.Item

	mu     sync.Mutex
	closed bool
	err    error
}

func newSubscription(store *Store) *Subscription {
	return &Subscription{
		store: store,
		ch:    make(chan []gif.Item, 1),
	}
}

// C returns the channel of favorites lists.
func (s *Subscription) C() <-chan []gif.Item {
	return s.ch
}

// Err returns the reason the subscription ended, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.store.remove(s)
	s.finish(nil)
}

// deliver replaces any undelivered list with items.
func (s *Subscription) deliver(items []gif.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- items
}

func (s *Subscription) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.ch)
}
