package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/gifbox/internal/logtail"
)

// logState holds all log-related state.
type logState struct {
	lines       []string
	follow      bool
	lastRefresh time.Time
}

type logLinesMsg struct {
	lines []string
}

type logErrorMsg struct {
	err error
}

// refreshLogs returns a command that reads the log file tail, or nil when
// the last read is too recent or there is no file to read.
func (m *Model) refreshLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	if !m.logState.lastRefresh.IsZero() && time.Since(m.logState.lastRefresh) < LogRefreshInterval {
		return nil
	}
	m.logState.lastRefresh = time.Now()

	path := m.logPath
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logErrorMsg{err: err}
		}
		return logLinesMsg{lines: logtail.FormatLines(lines)}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.lines = msg.lines
	m.updateLogViewport()
}

// updateLogViewport sizes the viewport and refreshes its content.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	// Box height is m.height minus chrome and the status line; the inner
	// area loses two more rows to borders.
	width := max(m.width-4, 1)
	height := max(m.height-chromeHeight-3, 1)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())

	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	if m.logPath == "" {
		return styles.MutedText.Render("Logging to stderr; no log file to show")
	}
	if len(m.logState.lines) == 0 {
		return styles.MutedText.Render("No log entries yet")
	}

	out := make([]string, len(m.logState.lines))
	for i, line := range m.logState.lines {
		out[i] = levelStyle(line, styles).Render(line)
	}
	return strings.Join(out, "\n")
}

// levelStyle colors a formatted console line by its level tag.
func levelStyle(line string, styles Styles) lipgloss.Style {
	switch {
	case strings.Contains(line, " ERR ") || strings.Contains(line, " FTL "):
		return styles.DangerText
	case strings.Contains(line, " WRN "):
		return styles.WarningText
	case strings.Contains(line, " DBG "):
		return styles.FaintText
	default:
		return styles.Text
	}
}

// handleLogsKey processes scrolling and follow mode in the logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			m.logState.lastRefresh = time.Time{}
			return m, m.refreshLogs()
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.logViewport.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logViewport.LineUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfViewDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfViewUp()
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	default:
		return m, nil
	}
	// Manual scrolling pauses follow mode.
	if !m.logViewport.AtBottom() {
		m.logState.follow = false
	}
	return m, nil
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	contentHeight := m.height - chromeHeight - 1

	title := "Log"
	if m.logPath != "" {
		title = "Log " + truncateMiddle(m.logPath, max(m.width/2, 10))
	}
	box := m.renderTitledBox(title, m.logViewport.View(), m.width, contentHeight, true)

	mode := bg.Render("PAUSED", styles.WarningText.Bold(true))
	if m.logState.follow {
		mode = bg.Render("FOLLOWING", styles.SuccessText)
	}
	status := mode + bg.Spaces(2) +
		bg.Render(fmt.Sprintf("%d lines", len(m.logState.lines)), styles.MutedText) + bg.Spaces(2) +
		bg.Render(fmt.Sprintf("%3.0f%%", m.logViewport.ScrollPercent()*100), styles.FaintText)

	return box + "\n" + bg.FillLine(status, m.width)
}
