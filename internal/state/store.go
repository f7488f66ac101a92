package state

import (
	"sync"
	"time"

	"github.com/five82/gifbox/internal/gif"
)

// Status is the load state of the result list.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Mode identifies where the result list came from.
type Mode int

const (
	ModeTrending Mode = iota
	ModeSearch
)

func (m Mode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "trending"
}

// Snapshot is one immutable view state. It is replaced wholesale on every
// change; callers receive copies and may not share slices with the Store.
type Snapshot struct {
	Status      Status
	PageLoading bool
	Mode        Mode
	Query       string // last successful search query
	Results     []gif.Item
	Favorites   []gif.Item
	HasMore     bool
	Err         error // failure of the most recent fetch, nil on success
	Version     uint64
	UpdatedAt   time.Time

	// ConsecutiveFailures counts fetches that failed in a row; any
	// successful fetch resets it.
	ConsecutiveFailures int
}

// offlineThreshold is the number of consecutive failures before the source
// is reported offline.
const offlineThreshold = 2

// Failed reports whether the most recent fetch failed.
func (s Snapshot) Failed() bool {
	return s.Err != nil
}

// IsOffline reports whether enough fetches failed in a row to treat the GIF
// source as unreachable.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= offlineThreshold
}

// Store holds the latest snapshot and fans it out to watchers.
// A new watcher immediately receives the current snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	watchers map[*Watcher]struct{}
	closed   bool
}

// Publish replaces the stored snapshot and notifies watchers. Version and
// UpdatedAt are assigned by the Store.
func (s *Store) Publish(snap Snapshot) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.snapshot.clone()
	}
	snap = snap.clone()
	snap.Version = s.snapshot.Version + 1
	snap.UpdatedAt = time.Now()
	s.snapshot = snap
	for w := range s.watchers {
		w.deliver(snap.clone())
	}
	return snap.clone()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.clone()
}

// Watch registers a watcher primed with the current snapshot. On a closed
// Store the watcher's channel is already closed.
func (s *Store) Watch() *Watcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := &Watcher{store: s, ch: make(chan Snapshot, 1)}
	if s.closed {
		w.finish()
		return w
	}
	if s.watchers == nil {
		s.watchers = make(map[*Watcher]struct{})
	}
	s.watchers[w] = struct{}{}
	w.deliver(s.snapshot.clone())
	return w
}

// Close ends every watcher. Later Publish calls are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for w := range s.watchers {
		w.finish()
	}
	clear(s.watchers)
}

func (s *Store) unwatch(w *Watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watchers, w)
}

// Watcher receives snapshots from a Store. Only the newest undelivered
// snapshot is kept, so a slow reader never blocks the writer.
type Watcher struct {
	store *Store
	ch    chan Snapshot

	mu     sync.Mutex
	closed bool
}

// C returns the snapshot channel. It is closed when the watcher or its Store
// is closed.
func (w *Watcher) C() <-chan Snapshot {
	return w.ch
}

// Close stops delivery. It is safe to call more than once.
func (w *Watcher) Close() {
	w.store.unwatch(w)
	w.finish()
}

func (w *Watcher) deliver(snap Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case <-w.ch:
	default:
	}
	w.ch <- snap
}

func (w *Watcher) finish() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.ch)
}

func (s Snapshot) clone() Snapshot {
	dup := s
	dup.Results = gif.Clone(s.Results)
	dup.Favorites = gif.Clone(s.Favorites)
	return dup
}
