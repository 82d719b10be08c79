package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/epiwatch/internal/logtail"
	"github.com/five82/epiwatch/internal/prefs"
	"github.com/five82/epiwatch/internal/view"
)

// Controller is the state the UI drives. *view.Controller satisfies it.
type Controller interface {
	Load(ctx context.Context) error
	SetQuery(text string)
	OpenDetail(id string) error
	CloseDetail()
	Snapshot() view.Snapshot
}

// Screen is the active top-level screen.
type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
	ScreenActivity
)

const searchPlaceholder = "Search by age or status..."

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller Controller
	Logger     *slog.Logger
	Source     string // endpoint shown in the detail screen
	LogPath    string // activity log file
	ThemeName  string
	PrefsPath  string // empty uses ~/.config/epiwatch/prefs.toml
	Tick       time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	ctrl      Controller
	logger    *slog.Logger
	source    string
	logPath   string
	prefsPath string
	tick      time.Duration
	keys      keyMap

	theme  Theme
	screen Screen
	prev   Screen
	width  int
	height int
	ready  bool

	snapshot view.Snapshot
	loading  bool
	cursor   int
	notice   string

	searching bool
	search    textinput.Model

	activity        viewport.Model
	activityEntries []logtail.Entry
	activityErr     error

	showHelp bool
}

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}

	search := textinput.New()
	search.Placeholder = searchPlaceholder
	search.Prompt = "/ "
	search.CharLimit = 64

	m := Model{
		ctx:       ctx,
		ctrl:      opts.Controller,
		logger:    logger,
		source:    opts.Source,
		logPath:   opts.LogPath,
		prefsPath: opts.PrefsPath,
		tick:      tick,
		keys:      defaultKeyMap(),
		theme:     GetTheme(themeName),
		screen:    ScreenList,
		search:    search,
		activity:  viewport.New(0, 0),
	}
	if m.ctrl != nil {
		m.snapshot = m.ctrl.Snapshot()
		// Init starts the first load.
		m.loading = true
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), tickCmd(m.tick))
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
		m.resizeActivity()
		return m, nil

	case loadedMsg:
		m.loading = false
		m.refresh()
		if msg.err != nil {
			m.notice = "press r to retry"
		}
		return m, nil

	case activityMsg:
		m.activityEntries = msg.entries
		m.activityErr = msg.err
		m.updateActivityViewport()
		return m, nil

	case tickMsg:
		m.refresh()
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if m.screen == ScreenActivity {
			cmds = append(cmds, m.readActivityCmd())
		}
		return m, tea.Batch(cmds...)
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

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.screen {
	case ScreenDetail:
		return m.renderDetail()
	case ScreenActivity:
		return m.renderActivity()
	default:
		return m.renderList()
	}
}

// contentHeight is the space left below the header and command bar.
func (m Model) contentHeight() int {
	h := m.height - 2
	if h < 3 {
		h = 3
	}
	return h
}

// refresh pulls a fresh snapshot and keeps the cursor and screen consistent
// with it.
func (m *Model) refresh() {
	if m.ctrl == nil {
		return
	}
	m.snapshot = m.ctrl.Snapshot()
	m.cursor = clamp(m.cursor, 0, len(m.snapshot.Visible)-1)
	if m.screen == ScreenDetail && !m.snapshot.HasSelection {
		m.screen = ScreenList
		m.notice = "record no longer available"
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			return m, nil
		}
		m.notice = ""
		cmd := m.loadCmd()
		return m, cmd
	case key.Matches(msg, m.keys.Activity) && m.screen != ScreenActivity:
		m.prev = m.screen
		m.screen = ScreenActivity
		return m, m.readActivityCmd()
	}

	switch m.screen {
	case ScreenDetail:
		return m.handleDetailKey(msg)
	case ScreenActivity:
		return m.handleActivityKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Cancel):
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.applyQuery(after)
	}
	return m, cmd
}

// applyQuery pushes the query to the controller and resets the cursor.
func (m *Model) applyQuery(q string) {
	if m.ctrl == nil {
		return
	}
	m.ctrl.SetQuery(q)
	m.cursor = 0
	m.refresh()
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
		m.logger.Warn("save theme preference failed", "theme", m.theme.Name, "error", err)
		m.notice = "theme not saved"
		return
	}
	m.notice = ""
}

// Messages

type tickMsg time.Time

type loadedMsg struct{ err error }

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadCmd runs one controller load off the update loop.
func (m *Model) loadCmd() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	m.loading = true
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: ctrl.Load(ctx)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx is
// cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
		opts.Context = ctx
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
