// Package state owns the presentation state of the GIF browser.
//
// # Overview
//
// A Coordinator turns user intents (load trending, search, load more,
// refresh, toggle favorite) into Repository calls and publishes the outcome
// as immutable Snapshot values through a Store. The UI never touches the
// Repository directly; it renders whatever the latest Snapshot says.
//
// # Architecture
//
//	UI intents                  Coordinator                     Store
//	┌──────────────┐   post   ┌───────────────────┐  Publish  ┌──────────┐
//	│ LoadTrending │─────────→│ mailbox           │──────────→│ Snapshot │
//	│ Search       │          │   ↓               │           │   ↓      │
//	│ LoadMore     │          │ run loop (single  │           │ Watcher  │──→ UI
//	│ Refresh      │          │ writer goroutine) │           └──────────┘
//	└──────────────┘          │   ↑         ↑     │
//	                          │ fetch    favorites│
//	                          │ goroutines  pump  │
//	                          └───────────────────┘
//
// Every state change happens on the run loop. Fetches and the favorites
// subscription run in their own goroutines and report back through the
// mailbox, so no lock guards the coordinator's working state.
//
// # Generations
//
// Each LoadTrending, Search or Refresh starts a new generation. Responses
// carry the generation they were issued under and are discarded when it is
// no longer current, so the most recently issued request always wins. A
// LoadMore belongs to the generation it was issued in and is dropped the
// same way.
//
// # Favorites
//
// The Repository's favorites stream is the single source of truth for
// favorite flags. Result lists are re-flagged on every emission, and fetched
// pages are flagged against the last emission once one has arrived. When the
// stream ends with an error the ResubscribePolicy decides whether to reopen
// it after an exponential delay (2s doubling, capped at 30s) or give up.
//
// # Errors
//
// A failed fetch still ends in StatusReady with empty results; the cause is
// kept in Snapshot.Err and ConsecutiveFailures counts failures in a row.
// SetFavorite failures are only logged.
//
// # Watchers
//
// A Watcher is primed with the current Snapshot and afterwards holds at most
// one pending value. A slow reader skips intermediate snapshots but always
// sees the newest one.
package state
