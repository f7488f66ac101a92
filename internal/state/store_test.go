package state

import (
	"errors"
	"testing"
	"time"

	"github.com/five82/gifbox/internal/gif"
)

func TestStore_PublishAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Publish(Snapshot{Status: StatusReady, Results: []gif.Item{{ID: "a"}, {ID: "b"}}})

	snap := s.Snapshot()
	if snap.Status != StatusReady || len(snap.Results) != 2 {
		t.Fatalf("snapshot = %#v, want ready with 2 results", snap)
	}
	if snap.Version != 1 {
		t.Fatalf("Version = %d, want 1", snap.Version)
	}
	if snap.UpdatedAt.Before(before) {
		t.Fatalf("UpdatedAt = %v, want >= %v", snap.UpdatedAt, before)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Results[0].ID = "mutated"
	if got := s.Snapshot().Results[0].ID; got != "a" {
		t.Fatalf("Snapshot should clone results; got id %q want a", got)
	}
}

func TestStore_PublishAssignsVersion(t *testing.T) {
	var s Store

	s.Publish(Snapshot{Version: 99})
	got := s.Publish(Snapshot{})
	if got.Version != 2 {
		t.Fatalf("Version = %d, want 2", got.Version)
	}
}

func TestStore_PublishDoesNotAliasInput(t *testing.T) {
	var s Store

	results := []gif.Item{{ID: "a"}}
	s.Publish(Snapshot{Results: results})
	results[0].ID = "changed"

	if got := s.Snapshot().Results[0].ID; got != "a" {
		t.Fatalf("stored results aliased caller slice; got %q", got)
	}
}

func TestSnapshot_Offline(t *testing.T) {
	tests := []struct {
		failures int
		want     bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{5, true},
	}
	for _, tt := range tests {
		snap := Snapshot{ConsecutiveFailures: tt.failures}
		if got := snap.IsOffline(); got != tt.want {
			t.Errorf("IsOffline() with %d failures = %v, want %v", tt.failures, got, tt.want)
		}
	}

	if (Snapshot{}).Failed() {
		t.Error("Failed() = true for zero snapshot")
	}
	if !(Snapshot{Err: errors.New("boom")}).Failed() {
		t.Error("Failed() = false with error set")
	}
}

func TestWatcher_PrimedWithCurrentSnapshot(t *testing.T) {
	var s Store
	s.Publish(Snapshot{Query: "cats"})

	w := s.Watch()
	defer w.Close()

	select {
	case snap := <-w.C():
		if snap.Query != "cats" {
			t.Fatalf("primed snapshot query = %q, want cats", snap.Query)
		}
	default:
		t.Fatal("watcher was not primed")
	}
}

func TestWatcher_CoalescesToNewest(t *testing.T) {
	var s Store
	w := s.Watch()
	defer w.Close()

	s.Publish(Snapshot{Query: "one"})
	s.Publish(Snapshot{Query: "two"})
	s.Publish(Snapshot{Query: "three"})

	snap := <-w.C()
	if snap.Query != "three" {
		t.Fatalf("query = %q, want three", snap.Query)
	}
	select {
	case extra := <-w.C():
		t.Fatalf("unexpected extra snapshot %#v", extra)
	default:
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	var s Store
	w := s.Watch()
	w.Close()
	w.Close()

	<-w.C() // drain primed value if any
	if _, ok := <-w.C(); ok {
		t.Fatal("channel should be closed")
	}

	// Publishing after the watcher closed must not panic.
	s.Publish(Snapshot{})
}

func TestStore_CloseEndsWatchers(t *testing.T) {
	var s Store
	w := s.Watch()
	s.Close()

	for range w.C() {
	}

	s.Publish(Snapshot{Query: "ignored"})
	if got := s.Snapshot().Query; got != "" {
		t.Fatalf("Publish after Close changed snapshot; query = %q", got)
	}

	late := s.Watch()
	if _, ok := <-late.C(); ok {
		t.Fatal("watcher on closed store should be closed")
	}
}
