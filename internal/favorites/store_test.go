package favorites

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/gifbox/internal/gif"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "favorites.toml")
	s, err := Open(path, Options{
		Debounce: 10 * time.Millisecond,
		Now:      func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func receive(t *testing.T, sub *Subscription) []gif.Item {
	t.Helper()
	select {
	case items, ok := <-sub.C():
		if !ok {
			t.Fatalf("subscription closed unexpectedly (err=%v)", sub.Err())
		}
		return items
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for favorites emission")
		return nil
	}
}

func ids(items []gif.Item) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.ID
	}
	return strings.Join(parts, ",")
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s := openTemp(t)
	if got := s.List(); len(got) != 0 {
		t.Fatalf("List = %#v, want empty", got)
	}
	if _, err := os.Stat(s.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Open should not create the file, stat err = %v", err)
	}
}

func TestOpen_EmptyPathFails(t *testing.T) {
	if _, err := Open("  ", Options{}); err == nil {
		t.Fatalf("Open returned nil error for empty path")
	}
}

func TestOpen_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.toml")
	if err := os.WriteFile(path, []byte("[[favorite]\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Open(path, Options{})
	if err == nil || !strings.Contains(err.Error(), "parse favorites") {
		t.Fatalf("Open error = %v, want parse favorites error", err)
	}
}

func TestSet_AddsUpdatesRemovesAndPersists(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.Set(ctx, gif.Item{ID: "a", Title: "A", Favorite: true}); err != nil {
		t.Fatalf("Set a: %v", err)
	}
	if err := s.Set(ctx, gif.Item{ID: "b", Title: "B", Favorite: true}); err != nil {
		t.Fatalf("Set b: %v", err)
	}
	if err := s.Set(ctx, gif.Item{ID: "a", Title: "A renamed", Favorite: true}); err != nil {
		t.Fatalf("Set a again: %v", err)
	}

	got := s.List()
	if ids(got) != "a,b" {
		t.Fatalf("List ids = %q, want a,b (insertion order kept on update)", ids(got))
	}
	if got[0].Title != "A renamed" || !got[0].Favorite {
		t.Fatalf("List[0] = %+v, want refreshed favorite payload", got[0])
	}

	reopened, err := Open(s.Path(), Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if ids(reopened.List()) != "a,b" {
		t.Fatalf("reopened ids = %q, want a,b", ids(reopened.List()))
	}

	if err := s.Set(ctx, gif.Item{ID: "a"}); err != nil {
		t.Fatalf("Set a unfavorite: %v", err)
	}
	if ids(s.List()) != "b" {
		t.Fatalf("List ids after removal = %q, want b", ids(s.List()))
	}
	if err := s.Set(ctx, gif.Item{ID: "zzz"}); err != nil {
		t.Fatalf("removing an unknown id should be a no-op, got %v", err)
	}
}

func TestSet_RejectsMissingIDAndCancelledContext(t *testing.T) {
	s := openTemp(t)
	if err := s.Set(context.Background(), gif.Item{Favorite: true}); err == nil {
		t.Fatalf("Set without id returned nil error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Set(ctx, gif.Item{ID: "a", Favorite: true}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Set with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestSubscribe_EmitsCurrentThenChanges(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	if err := s.Set(ctx, gif.Item{ID: "a", Favorite: true}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	sub, err := s.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	if got := receive(t, sub); ids(got) != "a" {
		t.Fatalf("initial emission = %q, want a", ids(got))
	}

	if err := s.Set(ctx, gif.Item{ID: "b", Favorite: true}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got := receive(t, sub)
	if ids(got) != "a,b" {
		t.Fatalf("emission = %q, want a,b", ids(got))
	}
	for _, item := range got {
		if !item.Favorite {
			t.Fatalf("emitted item %q not marked favorite", item.ID)
		}
	}
}

func TestReload_DiscardsReadOlderThanSet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	if err := s.Set(ctx, gif.Item{ID: "a", Favorite: true}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	sub, err := s.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()
	receive(t, sub)

	// A reload reads the file, then a Set commits before the reload locks.
	s.mu.Lock()
	writes := s.writes
	s.mu.Unlock()
	stale, err := readFile(s.path)
	if err != nil {
		t.Fatalf("readFile: %v", err)
	}
	if err := s.Set(ctx, gif.Item{ID: "b", Favorite: true}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := receive(t, sub); ids(got) != "a,b" {
		t.Fatalf("emission = %q, want a,b", ids(got))
	}

	s.applyDisk(writes, stale)
	if got := ids(s.List()); got != "a,b" {
		t.Fatalf("List after stale reload = %q, want a,b", got)
	}
	select {
	case items := <-sub.C():
		t.Fatalf("stale reload broadcast %q", ids(items))
	default:
	}

	// A reload that saw the latest write still applies external edits.
	s.mu.Lock()
	writes = s.writes
	s.mu.Unlock()
	s.applyDisk(writes, stale)
	if got := receive(t, sub); ids(got) != "a" {
		t.Fatalf("emission after current reload = %q, want a", ids(got))
	}
}

func TestSubscribe_CoalescesToLatest(t *testing.T) {
	s := openTemp(t)
	sub, err := s.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, gif.Item{ID: id, Favorite: true}); err != nil {
			t.Fatalf("Set %s: %v", id, err)
		}
	}
	if got := receive(t, sub); ids(got) != "a,b,c" {
		t.Fatalf("emission = %q, want only the latest list a,b,c", ids(got))
	}
	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected extra emission %q", ids(extra))
	default:
	}
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	s := openTemp(t)
	sub, err := s.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	receive(t, sub)
	sub.Close()
	sub.Close()
	if _, ok := <-sub.C(); ok {
		t.Fatalf("channel still open after Close")
	}
	if sub.Err() != nil {
		t.Fatalf("Err after Close = %v, want nil", sub.Err())
	}
	if err := s.Set(context.Background(), gif.Item{ID: "a", Favorite: true}); err != nil {
		t.Fatalf("Set after subscription close: %v", err)
	}
}

func TestStoreClose_EndsSubscriptions(t *testing.T) {
	s := openTemp(t)
	sub, err := s.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	receive(t, sub)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-sub.C(); ok {
		t.Fatalf("subscription channel open after store Close")
	}
	if _, err := s.Subscribe(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Subscribe after Close = %v, want ErrClosed", err)
	}
	if err := s.Set(context.Background(), gif.Item{ID: "a", Favorite: true}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Set after Close = %v, want ErrClosed", err)
	}
}

func TestFailSubscriptions_ReportsError(t *testing.T) {
	s := openTemp(t)
	sub, err := s.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	receive(t, sub)

	boom := errors.New("overflow")
	s.failSubscriptions(boom)
	if _, ok := <-sub.C(); ok {
		t.Fatalf("subscription channel open after failure")
	}
	if !errors.Is(sub.Err(), boom) {
		t.Fatalf("Err = %v, want %v", sub.Err(), boom)
	}

	again, err := s.Subscribe()
	if err != nil {
		t.Fatalf("resubscribe after failure: %v", err)
	}
	defer again.Close()
	receive(t, again)
}

func TestWatch_PicksUpExternalChanges(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	sub, err := s.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()
	receive(t, sub)

	// Give the watcher a moment to register the directory.
	time.Sleep(50 * time.Millisecond)

	other, err := Open(s.Path(), Options{})
	if err != nil {
		t.Fatalf("Open second store: %v", err)
	}
	if err := other.Set(context.Background(), gif.Item{ID: "ext", Title: "External", Favorite: true}); err != nil {
		t.Fatalf("external Set: %v", err)
	}

	got := receive(t, sub)
	if ids(got) != "ext" {
		t.Fatalf("emission after external write = %q, want ext", ids(got))
	}
	if ids(s.List()) != "ext" {
		t.Fatalf("List after external write = %q, want ext", ids(s.List()))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned %v, want nil on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Watch did not return after cancel")
	}
}

func TestReadFile_SkipsBlankAndDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.toml")
	content := `
[[favorite]]
id = "a"
title = "first"

[[favorite]]
id = ""
title = "blank"

[[favorite]]
id = "a"
title = "dup"

[[favorite]]
id = "b"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	records, err := readFile(path)
	if err != nil {
		t.Fatalf("readFile: %v", err)
	}
	if len(records) != 2 || records[0].Title != "first" || records[1].ID != "b" {
		t.Fatalf("records = %#v, want a(first), b", records)
	}
}
