package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/gifbox/internal/gif"
	"github.com/five82/gifbox/internal/prefs"
	"github.com/five82/gifbox/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewResults View = iota
	ViewFavorites
	ViewLogs
)

// Controller is the coordinator surface the UI drives.
type Controller interface {
	LoadTrending()
	Search(query string)
	LoadMore()
	Refresh()
	SetFavorite(item gif.Item)
	Watch() *state.Watcher
}

// Options configures the UI.
type Options struct {
	Controller Controller
	Logger     zerolog.Logger
	LogPath    string // empty hides the logs view content
	ThemeName  string
	PrefsPath  string
	LastQuery  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctrl      Controller
	watcher   *state.Watcher
	log       zerolog.Logger
	logPath   string
	prefsPath string
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	spinner     spinner.Model

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Selection
	resultsRow   int
	favoritesRow int

	// Search input
	searching   bool
	searchInput textinput.Model
	lastQuery   string

	// Logs
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Placeholder = "Search GIFs..."
	ti.CharLimit = 50
	ti.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		ctrl:        opts.Controller,
		log:         opts.Logger,
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewResults,
		spinner:     sp,
		searchInput: ti,
		lastQuery:   strings.TrimSpace(opts.LastQuery),
		logState:    logState{follow: true},
	}
	if m.ctrl != nil {
		m.watcher = m.ctrl.Watch()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		m.spinner.Tick,
		tickCmd(LogRefreshInterval),
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForSnapshot(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, waitForSnapshot(m.watcher)

	case watcherClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(LogRefreshInterval)}
		if m.currentView == ViewLogs && m.logState.follow {
			if cmd := m.refreshLogs(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case logErrorMsg:
		m.log.Debug().Err(msg.err).Str("path", m.logPath).Msg("read log file failed")
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.lastUpdated = snap.UpdatedAt
	m.resultsRow = clampRow(m.resultsRow, len(snap.Results))
	m.favoritesRow = clampRow(m.favoritesRow, len(snap.Favorites))
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchInput(msg)
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.currentView = (m.currentView + 1) % 3
		return m, m.enterView()

	case key.Matches(msg, m.keys.ShiftTab):
		m.currentView = (m.currentView + 2) % 3
		return m, m.enterView()

	case key.Matches(msg, m.keys.ViewFavorites):
		m.currentView = ViewFavorites
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		return m, m.enterView()

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewResults
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.startSearch()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Trending):
		m.currentView = ViewResults
		m.resultsRow = 0
		m.ctrl.LoadTrending()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.ctrl.Refresh()
		return m, nil

	case key.Matches(msg, m.keys.LoadMore):
		m.ctrl.LoadMore()
		return m, nil
	}

	switch m.currentView {
	case ViewResults, ViewFavorites:
		return m.handleListKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// handleListKey processes navigation and favorite toggling in list views.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.currentItems()
	row := m.currentRow()
	count := len(items)

	switch {
	case key.Matches(msg, m.keys.ToggleFavorite):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		item.Favorite = !item.Favorite
		m.ctrl.SetFavorite(item)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if row < count-1 {
			row++
		} else if m.currentView == ViewResults && m.canLoadMore() {
			// Moving past the last row pages in more results.
			m.ctrl.LoadMore()
		}
	case key.Matches(msg, m.keys.Up):
		if row > 0 {
			row--
		}
	case key.Matches(msg, m.keys.Top):
		row = 0
	case key.Matches(msg, m.keys.Bottom):
		row = max(count-1, 0)
	case key.Matches(msg, m.keys.HalfPageDown):
		row = clampRow(row+m.listHeight()/2, count)
	case key.Matches(msg, m.keys.HalfPageUp):
		row = clampRow(row-m.listHeight()/2, count)
	}

	m.setCurrentRow(row)
	return m, nil
}

func (m Model) canLoadMore() bool {
	return m.snapshot.Status == state.StatusReady && m.snapshot.HasMore && !m.snapshot.PageLoading
}

func (m *Model) startSearch() {
	m.searching = true
	m.searchInput.SetValue(m.lastQuery)
	m.searchInput.CursorEnd()
	m.searchInput.Focus()
}

// handleSearchInput handles keyboard input while the search box is open.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := strings.TrimSpace(m.searchInput.Value())
		m.searching = false
		m.searchInput.Blur()
		m.currentView = ViewResults
		m.resultsRow = 0
		if query == "" {
			m.ctrl.LoadTrending()
		} else {
			m.ctrl.Search(query)
		}
		m.lastQuery = query
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.searchInput.Blur()
		return m, nil

	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) enterView() tea.Cmd {
	if m.currentView != ViewLogs {
		return nil
	}
	m.logState.lastRefresh = time.Time{}
	return m.refreshLogs()
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, LastQuery: m.lastQuery}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn().Err(err).Str("path", m.prefsPath).Msg("save prefs failed")
	}
}

func (m Model) currentItems() []gif.Item {
	if m.currentView == ViewFavorites {
		return m.snapshot.Favorites
	}
	return m.snapshot.Results
}

func (m Model) currentRow() int {
	if m.currentView == ViewFavorites {
		return m.favoritesRow
	}
	return m.resultsRow
}

func (m *Model) setCurrentRow(row int) {
	if m.currentView == ViewFavorites {
		m.favoritesRow = row
		return
	}
	m.resultsRow = row
}

// selectedItem returns the highlighted item in the current list view.
func (m Model) selectedItem() (gif.Item, bool) {
	items := m.currentItems()
	row := m.currentRow()
	if row < 0 || row >= len(items) {
		return gif.Item{}, false
	}
	return items[row], true
}

func clampRow(row, count int) int {
	if count == 0 || row < 0 {
		return 0
	}
	if row >= count {
		return count - 1
	}
	return row
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.renderSearchBar())
	} else {
		b.WriteString(m.renderCommandBar())
	}
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewFavorites:
		return m.renderFavorites()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderResults()
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type watcherClosedMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForSnapshot blocks until the watcher delivers the next snapshot.
func waitForSnapshot(w *state.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-w.C()
		if !ok {
			return watcherClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	defer func() {
		if m.watcher != nil {
			m.watcher.Close()
		}
	}()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
