package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the width below which the header drops details.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth switches the list pane to 30% of the width.
	LayoutExtraWideWidth = 160
)

// Log view limits.
const (
	// LogTailLines is how many lines of the log file the logs view shows.
	LogTailLines = 500

	// LogRefreshInterval is the minimum time between log file reads.
	LogRefreshInterval = 2 * time.Second
)

// chromeHeight is the header plus the command bar.
const chromeHeight = 2
