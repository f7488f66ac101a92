// Package app is the composition root for gifbox.
//
// # Overview
//
// Run wires configuration, logging, the favorites store, the Giphy client,
// the repository, the state coordinator and the UI, then blocks until the
// UI exits. Nothing here holds domain logic.
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load() + Validate()   file, env, flags
//	       ├─────> logging.New()                JSON log file (or stderr)
//	       ├─────> favorites.Open() + Watch()   TOML favorites, fsnotify
//	       ├─────> giphy.NewClient()            HTTP/2 client
//	       ├─────> repository.New()             client + favorites
//	       ├─────> state.New()                  coordinator, initial load
//	       ├─────> StartRefresher()             optional periodic refresh
//	       └─────> ui.Run()                     TUI (blocks)
//
// # Initial Load
//
// The coordinator loads trending GIFs on creation. When Options.Query is set
// the initial load is skipped and a search for the query is issued instead.
//
// # Shutdown
//
// Deferred calls run in reverse order: the run context is cancelled (stopping
// the refresher and the favorites watcher), the coordinator is closed, the
// favorites store releases its subscriptions, and the log file is closed.
//
// # Error Handling
//
// Configuration, logging, favorites and client setup failures are returned
// from Run. Failures after startup (fetches, watcher errors) are logged and
// surfaced through snapshots instead.
package app
