// Package favorites persists user-marked GIFs in a TOML file and publishes
// the current favorites list to subscribers.
//
// Every change made through Set, and every external change to the file picked
// up by Watch, is pushed to all open subscriptions. A subscription always
// starts with the current list, and a slow subscriber only ever sees the
// newest list.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/five82/gifbox/internal/gif"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("favorites store closed")

const defaultDebounce = 100 * time.Millisecond

// Options configure a Store.
type Options struct {
	Logger   zerolog.Logger
	Debounce time.Duration    // delay before reloading after a file event; zero uses 100ms
	Now      func() time.Time // clock for added_at; nil uses time.Now
}

// Store is a file-backed favorites list.
type Store struct {
	path     string
	log      zerolog.Logger
	debounce time.Duration
	now      func() time.Time

	mu      sync.Mutex
	records []record
	writes  uint64 // bumped by every Set that writes the file
	subs    map[*Subscription]struct{}
	closed  bool
	reload  *time.Timer
}

type record struct {
	ID         string    `toml:"id"`
	Title      string    `toml:"title"`
	URL        string    `toml:"url"`
	PreviewURL string    `toml:"preview_url,omitempty"`
	Width      int       `toml:"width,omitempty"`
	Height     int       `toml:"height,omitempty"`
	Size       int64     `toml:"size,omitempty"`
	Rating     string    `toml:"rating,omitempty"`
	Username   string    `toml:"username,omitempty"`
	AddedAt    time.Time `toml:"added_at"`
}

type fileFormat struct {
	Favorites []record `toml:"favorite"`
}

// Open loads the favorites file at path. A missing file yields an empty store.
func Open(path string, opts Options) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("favorites path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve favorites path: %w", err)
	}
	s := &Store{
		path:     abs,
		log:      opts.Logger,
		debounce: opts.Debounce,
		now:      opts.Now,
		subs:     make(map[*Subscription]struct{}),
	}
	if s.debounce <= 0 {
		s.debounce = defaultDebounce
	}
	if s.now == nil {
		s.now = time.Now
	}
	records, err := readFile(abs)
	if err != nil {
		return nil, err
	}
	s.records = records
	return s, nil
}

// Path returns the absolute path of the favorites file.
func (s *Store) Path() string {
	return s.path
}

// List returns the current favorites in the order they were added.
func (s *Store) List() []gif.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return itemsOf(s.records)
}

// Set persists item. A favorite item is added (or its payload refreshed in
// place); a non-favorite item is removed. Subscribers are notified when the
// list changed.
func (s *Store) Set(ctx context.Context, item gif.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("favorite item has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	idx := -1
	for i, r := range s.records {
		if r.ID == item.ID {
			idx = i
			break
		}
	}

	next := make([]record, 0, len(s.records)+1)
	switch {
	case item.Favorite && idx >= 0:
		next = append(next, s.records...)
		next[idx] = toRecord(item, s.records[idx].AddedAt)
	case item.Favorite:
		next = append(next, s.records...)
		next = append(next, toRecord(item, s.now().UTC()))
	case idx >= 0:
		next = append(next, s.records[:idx]...)
		next = append(next, s.records[idx+1:]...)
	default:
		return nil
	}

	if err := writeFile(s.path, next); err != nil {
		return err
	}
	s.writes++
	changed := !gif.Equal(itemsOf(s.records), itemsOf(next))
	s.records = next
	s.log.Debug().Str("id", item.ID).Bool("favorite", item.Favorite).Int("count", len(next)).Msg("favorites updated")
	if changed {
		s.broadcastLocked()
	}
	return nil
}

// Subscribe opens a subscription that immediately receives the current list.
func (s *Store) Subscribe() (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	sub := newSubscription(s)
	s.subs[sub] = struct{}{}
	sub.deliver(itemsOf(s.records))
	return sub, nil
}

// Watch follows external changes to the favorites file until ctx is
// cancelled. Watcher errors invalidate every open subscription with that
// error, since changes may have been missed; subscribers are expected to
// resubscribe.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create favorites watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create favorites dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	s.log.Debug().Str("dir", dir).Msg("watching favorites")

	for {
		select {
		case <-ctx.Done():
			s.stopReload()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			s.scheduleReload()

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(werr).Msg("favorites watcher error")
			s.reloadFromDisk()
			s.failSubscriptions(fmt.Errorf("favorites watcher: %w", werr))
		}
	}
}

// Close closes every open subscription. Further Set and Subscribe calls fail
// with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.reload != nil {
		s.reload.Stop()
	}
	for sub := range s.subs {
		sub.finish(nil)
	}
	clear(s.subs)
	return nil
}

func (s *Store) scheduleReload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.reload != nil {
		s.reload.Stop()
	}
	s.reload = time.AfterFunc(s.debounce, s.reloadFromDisk)
}

func (s *Store) stopReload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reload != nil {
		s.reload.Stop()
	}
}

func (s *Store) reloadFromDisk() {
	s.mu.Lock()
	writes := s.writes
	s.mu.Unlock()

	records, err := readFile(s.path)
	if err != nil {
		// Another writer may be mid-update; the next event retries.
		s.log.Warn().Err(err).Str("path", s.path).Msg("reload favorites failed")
		return
	}
	s.applyDisk(writes, records)
}

// applyDisk installs records read from disk. A read that started before a
// Set committed is discarded; that Set's own file event schedules a fresh
// reload.
func (s *Store) applyDisk(writes uint64, records []record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.writes != writes {
		s.log.Debug().Str("path", s.path).Msg("discarding favorites read older than last write")
		return
	}
	if gif.Equal(itemsOf(s.records), itemsOf(records)) {
		return
	}
	s.records = records
	s.log.Info().Int("count", len(records)).Msg("favorites changed on disk")
	s.broadcastLocked()
}

func (s *Store) failSubscriptions(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		sub.finish(err)
	}
	clear(s.subs)
}

func (s *Store) remove(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, sub)
}

func (s *Store) broadcastLocked() {
	items := itemsOf(s.records)
	for sub := range s.subs {
		sub.deliver(gif.Clone(items))
	}
}

func itemsOf(records []record) []gif.Item {
	items := make([]gif.Item, 0, len(records))
	for _, r := range records {
		items = append(items, gif.Item{
			ID:         r.ID,
			Title:      r.Title,
			URL:        r.URL,
			PreviewURL: r.PreviewURL,
			Width:      r.Width,
			Height:     r.Height,
			Size:       r.Size,
			Rating:     r.Rating,
			Username:   r.Username,
			Favorite:   true,
		})
	}
	return items
}

func toRecord(item gif.Item, addedAt time.Time) record {
	return record{
		ID:         item.ID,
		Title:      item.Title,
		URL:        item.URL,
		PreviewURL: item.PreviewURL,
		Width:      item.Width,
		Height:     item.Height,
		Size:       item.Size,
		Rating:     item.Rating,
		Username:   item.Username,
		AddedAt:    addedAt,
	}
}

func readFile(path string) ([]record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	var f fileFormat
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse favorites: %w", err)
	}
	out := f.Favorites[:0]
	seen := make(map[string]struct{}, len(f.Favorites))
	for _, r := range f.Favorites {
		if strings.TrimSpace(r.ID) == "" {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

// writeFile replaces the favorites file atomically (temp file + rename).
func writeFile(path string, records []record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create favorites dir: %w", err)
	}
	data, err := toml.Marshal(fileFormat{Favorites: records})
	if err != nil {
		return fmt.Errorf("marshal favorites: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace favorites: %w", err)
	}
	return nil
}
