// Package ui provides the terminal interface for gifbox.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It never fetches anything itself: every
// action goes through a Controller (the state coordinator), and every change
// comes back as a state.Snapshot delivered by a state.Watcher. The model
// re-arms waitForSnapshot after each delivery, so rendering always reflects
// the newest snapshot and never blocks the coordinator.
//
// # Package Structure
//
//   - app.go: Model, Update loop, key dispatch and the Run entry point
//   - header.go: status bar, command bar and search bar
//   - results.go: result and favorites lists with the detail pane
//   - logs.go: tail of the gifbox log file with follow mode
//   - help.go: keyboard shortcut overlay built from the key map
//   - theme.go, style_helpers.go: colors and background-safe rendering
//
// # Views
//
//   - Results: trending or search results, paged in on demand
//   - Favorites: the favorites list as last emitted by the store
//   - Logs: formatted tail of the log file, refreshed while following
//
// # Key Bindings
//
//   - /: Search (enter submits, esc cancels; a blank query shows trending)
//   - t: Trending
//   - r: Refresh the current list
//   - m, or j past the last row: Load more results
//   - f or enter: Toggle favorite on the selected GIF
//   - F / l / Tab: Favorites view / Logs view / cycle views
//   - Space: Toggle log follow mode
//   - T: Cycle theme (saved to prefs)
//   - h or ?: Help
//   - e or Ctrl+C: Exit
package ui
