package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/gifbox/internal/state"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	content := m.buildStatusContent(styles, bg)

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(content)
}

// buildStatusContent builds the status bar content string.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < LayoutCompactWidth
	snap := m.snapshot

	var parts []string
	parts = append(parts, bg.Render("gifbox", styles.Logo))

	label := statusLabel(snap)
	badge := styles.StatusStyle(label).Render(strings.ToUpper(label))
	if snap.Status == state.StatusLoading || snap.PageLoading {
		badge = bg.Render(m.spinner.View(), styles.InfoText) + bg.Space() + badge
	}
	parts = append(parts, badge)

	source := "Trending"
	if snap.Mode == state.ModeSearch {
		maxQuery := 30
		if compact {
			maxQuery = 14
		}
		source = "Search: " + truncate(snap.Query, maxQuery)
	}
	parts = append(parts, bg.Render(source, styles.AccentText))

	countLabel := "Results:"
	favLabel := "Favorites:"
	if compact {
		countLabel = "R:"
		favLabel = "F:"
	}
	count := fmt.Sprintf("%d", len(snap.Results))
	if snap.HasMore {
		count += "+"
	}
	parts = append(parts,
		bg.Render(countLabel, styles.MutedText)+bg.Space()+bg.Render(count, styles.Text),
		bg.Render(favLabel, styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", len(snap.Favorites)), styles.StarText),
	)

	if timeStr := m.formatTimestamp(); timeStr != "" && !compact {
		parts = append(parts, bg.Render(timeStr, styles.MutedText))
	}

	if snap.Err != nil {
		maxErr := 80
		if compact {
			maxErr = 40
		}
		errText := truncate(snap.Err.Error(), maxErr)
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(errText, styles.DangerText))
	}

	return bg.Join(parts, "  ")
}

// statusLabel maps a snapshot onto the header badge.
func statusLabel(snap state.Snapshot) string {
	switch {
	case snap.Status == state.StatusLoading:
		return "loading"
	case snap.PageLoading:
		return "paging"
	case snap.IsOffline():
		return "offline"
	case snap.Failed():
		return "failed"
	default:
		return "ready"
	}
}

// formatTimestamp formats the last update time with relative indicator.
func (m Model) formatTimestamp() string {
	if m.lastUpdated.IsZero() {
		return ""
	}

	since := time.Since(m.lastUpdated)
	timeStr := m.lastUpdated.Format("15:04:05")

	switch {
	case since < time.Minute:
		timeStr += " (now)"
	case since < time.Hour:
		timeStr += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		timeStr += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return timeStr
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		commands = []cmd{
			{"Space", ternary(m.logState.follow, "Pause", "Follow")},
			{"j/k", "Scroll"},
			{"F", "Favorites"},
			{"esc", "Results"},
			{"?", "More"},
		}
	case ViewFavorites:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"f", "Unfavorite"},
			{"/", "Search"},
			{"l", "Logs"},
			{"esc", "Results"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"/", "Search"},
			{"t", "Trending"},
			{"f", "Favorite"},
			{"m", "More"},
			{"r", "Refresh"},
			{"F", "Favorites"},
			{"l", "Logs"},
			{"?", "Help"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// renderSearchBar replaces the command bar while a query is being typed.
func (m Model) renderSearchBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	hint := bg.Render("enter", styles.AccentText) + bg.Sep(":") + bg.Render("Search", styles.MutedText) +
		bg.Spaces(2) +
		bg.Render("esc", styles.AccentText) + bg.Sep(":") + bg.Render("Cancel", styles.MutedText)

	return styles.Header.Width(m.width).Render(m.searchInput.View() + bg.Spaces(2) + hint)
}
