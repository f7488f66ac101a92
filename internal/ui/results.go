package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/gifbox/internal/gif"
	"github.com/five82/gifbox/internal/state"
)

// renderResults renders the result list with split layout (list + detail).
func (m Model) renderResults() string {
	title := "Trending"
	if m.snapshot.Mode == state.ModeSearch {
		title = fmt.Sprintf("Search %q", truncate(m.snapshot.Query, 30))
	}
	if n := len(m.snapshot.Results); n > 0 {
		title = fmt.Sprintf("%s (%d%s)", title, n, ternary(m.snapshot.HasMore, "+", ""))
	}

	empty := "No GIFs"
	switch {
	case m.snapshot.Status == state.StatusLoading:
		empty = "Loading..."
	case m.snapshot.Err != nil:
		empty = "Could not load GIFs. Press r to retry."
	}
	return m.renderSplit(title, m.snapshot.Results, m.resultsRow, empty)
}

// renderFavorites renders the favorites list with the same layout.
func (m Model) renderFavorites() string {
	title := fmt.Sprintf("Favorites (%d)", len(m.snapshot.Favorites))
	return m.renderSplit(title, m.snapshot.Favorites, m.favoritesRow, "No favorites yet. Press f on a GIF.")
}

func (m Model) renderSplit(title string, items []gif.Item, selected int, empty string) string {
	styles := m.theme.Styles()
	contentHeight := m.height - chromeHeight

	if len(items) == 0 {
		msg := styles.MutedText.Render(empty)
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, msg)
	}

	// Extra wide: 30% list, 70% detail. Default: 40% / 60%.
	listWidth := m.width * 40 / 100
	if m.width >= LayoutExtraWideWidth {
		listWidth = m.width * 30 / 100
	}
	detailWidth := m.width - listWidth

	listContent := m.renderList(items, selected, listWidth-2, contentHeight-2, m.theme.FocusBg)
	listPane := m.renderTitledBox(title, listContent, listWidth, contentHeight, true)

	var detailContent string
	if selected >= 0 && selected < len(items) {
		detailContent = m.renderDetail(items[selected], detailWidth-4, m.theme.SurfaceAlt)
	}
	detailPane := m.renderTitledBox("Details", detailContent, detailWidth, contentHeight, false)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// listHeight is the number of rows visible in a list pane.
func (m Model) listHeight() int {
	return max(m.height-chromeHeight-2, 1)
}

// listWindow returns the first visible row so that selected stays on screen.
func listWindow(selected, count, height int) int {
	if height <= 0 || count <= height {
		return 0
	}
	start := selected - height/2
	start = max(start, 0)
	start = min(start, count-height)
	return start
}

// renderList renders items as styled rows.
func (m Model) renderList(items []gif.Item, selected, width, height int, bgColor string) string {
	start := listWindow(selected, len(items), height)
	end := min(start+height, len(items))

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		rowBg := bgColor
		if i == selected {
			rowBg = m.theme.SelectionBg
		}
		content := m.formatRow(items[i], width, rowBg, i == selected)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			Render(content))
	}

	if end == len(items) && m.snapshot.PageLoading && len(lines) < height {
		styles := m.theme.Styles()
		bg := NewBgStyle(bgColor)
		lines = append(lines, bg.Render(m.spinner.View()+" loading more", styles.MutedText))
	}
	return strings.Join(lines, "\n")
}

// formatRow formats one GIF row: "★ Title · rating".
// Selected rows use SelectionText for every part to keep contrast.
func (m Model) formatRow(item gif.Item, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	marker := ternary(item.Favorite, "★", "·")
	rating := strings.ToUpper(item.Rating)
	titleWidth := max(width-len(rating)-6, 8)

	var markerStyle, titleStyle, ratingStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		markerStyle, titleStyle, ratingStyle = selText, selText, selText
	} else {
		styles := m.theme.Styles()
		markerStyle = styles.FaintText
		if item.Favorite {
			markerStyle = styles.StarText
		}
		titleStyle = styles.Text
		ratingStyle = styles.MutedText
	}

	row := bg.Render(marker, markerStyle) + bg.Space() +
		bg.Render(truncate(item.DisplayTitle(), titleWidth), titleStyle)
	if rating != "" {
		row += bg.Render(" · ", ratingStyle) + bg.Render(rating, ratingStyle)
	}
	return row
}

// renderDetail renders the metadata of one GIF.
func (m Model) renderDetail(item gif.Item, width int, bgColor string) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(bgColor)

	labelWidth := 10
	valueWidth := max(width-labelWidth-1, 10)
	row := func(label, value string, style lipgloss.Style) string {
		if value == "" {
			value = "-"
		}
		return bg.Render(padRight(label, labelWidth), styles.MutedText) + bg.Space() +
			bg.Render(value, style)
	}

	lines := []string{
		bg.Render(truncate(item.DisplayTitle(), width), styles.Text.Bold(true)),
		"",
		row("ID", item.ID, styles.Text),
		row("Favorite", ternary(item.Favorite, "★ yes", "no"), pickStyle(item.Favorite, styles.StarText, styles.MutedText)),
		row("Rating", strings.ToUpper(item.Rating), styles.Text),
		row("User", item.Username, styles.Text),
	}
	if item.Width > 0 && item.Height > 0 {
		lines = append(lines, row("Size", fmt.Sprintf("%dx%d  %s", item.Width, item.Height, humanBytes(item.Size)), styles.Text))
	}
	lines = append(lines,
		"",
		row("URL", truncateMiddle(item.URL, valueWidth), styles.InfoText),
		row("Preview", truncateMiddle(item.PreviewURL, valueWidth), styles.InfoText),
	)
	return strings.Join(lines, "\n")
}

func pickStyle(cond bool, a, b lipgloss.Style) lipgloss.Style {
	if cond {
		return a
	}
	return b
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐. Focused boxes use BorderFocus and FocusBg.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	padded := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		padded = append(padded,
			bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(padded, "\n") + "\n" + bottomBorder
}
