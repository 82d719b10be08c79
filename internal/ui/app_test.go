package ui

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/epiwatch/internal/datagov"
	"github.com/five82/epiwatch/internal/prefs"
	"github.com/five82/epiwatch/internal/surveillance"
	"github.com/five82/epiwatch/internal/view"
)

type stubLoader struct {
	records []surveillance.Record
	err     error
}

func (s *stubLoader) Load(context.Context) ([]surveillance.Record, error) {
	return s.records, s.err
}

func fixtureRecords() []surveillance.Record {
	return []surveillance.Record{
		{ID: "1", AgeGroup: "Age 0 - 9", ClinicalStatus: "Active", Count: 5, EpiYear: 2023, EpiWeek: 10},
		{ID: "2", AgeGroup: "Age 50+", ClinicalStatus: "Hospitalised", Count: 2, EpiYear: 2023, EpiWeek: 10},
		{ID: "3", AgeGroup: "Age 20 - 29", ClinicalStatus: "Active", Count: 9, EpiYear: 2023, EpiWeek: 11},
		{ID: "4", AgeGroup: "Age 60+", ClinicalStatus: "ICU", Count: 1, EpiYear: 2023, EpiWeek: 11},
	}
}

func newTestModel(t *testing.T, loader *stubLoader) (Model, *view.Controller) {
	t.Helper()
	ctrl := view.New(loader, view.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	m := New(Options{
		Controller: ctrl,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
		Source:     "https://data.gov.sg/api/action/datastore_search",
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m = runLoad(t, m)
	return m, ctrl
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return model
}

func runLoad(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.loadCmd()
	require.NotNil(t, cmd)
	msg := cmd()
	loaded, ok := msg.(loadedMsg)
	require.True(t, ok, "load command returned %T", msg)
	return update(t, m, loaded)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, keyMsg(k))
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func visibleIDs(m Model) []string {
	out := make([]string, 0, len(m.snapshot.Visible))
	for _, r := range m.snapshot.Visible {
		out = append(out, r.ID)
	}
	return out
}

func TestModel_LoadPopulatesList(t *testing.T) {
	m, _ := newTestModel(t, &stubLoader{records: fixtureRecords()})

	assert.False(t, m.loading)
	assert.Equal(t, []string{"1", "2", "3", "4"}, visibleIDs(m))

	out := m.View()
	assert.Contains(t, out, "Active (Age 0 - 9)")
	assert.Contains(t, out, "Cases: 5")
	assert.Contains(t, out, "4 records")
}

func TestModel_RowsFitOneLine(t *testing.T) {
	m, _ := newTestModel(t, &stubLoader{records: fixtureRecords()})
	rec := surveillance.Record{
		ID: "9", AgeGroup: "Age 20 - 29", ClinicalStatus: "Requires Oxygen Supplementation",
		Count: 12345, EpiYear: 2023, EpiWeek: 52,
	}

	for _, w := range []int{80, 100, 120, 160} {
		m = update(t, m, tea.WindowSizeMsg{Width: w, Height: 30})
		for _, selected := range []bool{false, true} {
			row := m.formatRow(rec, w-2, selected)
			assert.Equal(t, 1, lipgloss.Height(row), "width %d selected=%v", w, selected)
			assert.Equal(t, w-2, lipgloss.Width(row), "width %d selected=%v", w, selected)
			assert.Contains(t, row, "Cases: 12345")
		}
	}
}

func TestModel_ListShowsOneRecordPerLine(t *testing.T) {
	m, _ := newTestModel(t, &stubLoader{records: fixtureRecords()})
	var rows []string
	for _, line := range strings.Split(m.View(), "\n") {
		if strings.Contains(line, "Cases:") {
			rows = append(rows, line)
		}
	}
	require.Len(t, rows, 4)
	assert.Contains(t, rows[0], "Active (Age 0 - 9)")
	assert.Contains(t, rows[0], "Cases: 5")
	assert.Contains(t, rows[3], "ICU (Age 60+)")
	assert.Contains(t, rows[3], "Cases: 1")
}

func TestModel_ReloadIgnoredDuringFirstLoad(t *testing.T) {
	ctrl := view.New(&stubLoader{records: fixtureRecords()},
		view.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	m := New(Options{Controller: ctrl, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.True(t, m.loading)

	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	next, cmd := m.Update(keyMsg("r"))
	assert.Nil(t, cmd)
	assert.True(t, next.(Model).loading)

	m = update(t, next.(Model), loadedMsg{err: ctrl.Load(context.Background())})
	assert.False(t, m.loading)
	_, cmd = m.Update(keyMsg("r"))
	assert.NotNil(t, cmd)
}

func TestModel_SearchFiltersLive(t *testing.T) {
	m, ctrl := newTestModel(t, &stubLoader{records: fixtureRecords()})

	m = press(t, m, "/")
	require.True(t, m.searching)

	m = press(t, m, "h", "o", "s", "p")
	assert.Equal(t, "hosp", ctrl.Snapshot().Query)
	assert.Equal(t, []string{"2"}, visibleIDs(m))
	assert.Contains(t, m.View(), "hosp")

	m = press(t, m, "enter")
	assert.False(t, m.searching)
	assert.Equal(t, "hosp", m.snapshot.Query)

	m = press(t, m, "esc")
	assert.Equal(t, "", m.snapshot.Query)
	assert.Len(t, m.snapshot.Visible, 4)
}

func TestModel_SearchCapturesGlobalKeys(t *testing.T) {
	m, _ := newTestModel(t, &stubLoader{records: fixtureRecords()})

	m = press(t, m, "/")
	next, cmd := m.Update(keyMsg("e"))
	m = next.(Model)
	if cmd != nil {
		_, quit := cmd().(tea.QuitMsg)
		assert.False(t, quit, "typing e in the search box must not quit")
	}
	assert.Equal(t, "e", m.snapshot.Query)
	assert.False(t, m.showHelp)
}

func TestModel_SearchWithNoMatches(t *testing.T) {
	m, _ := newTestModel(t, &stubLoader{records: fixtureRecords()})

	m = press(t, m, "/", "z", "z", "z", "enter")
	assert.Empty(t, m.snapshot.Visible)
	assert.Contains(t, m.View(), "No records match")

	m = press(t, m, "enter")
	assert.Equal(t, ScreenList, m.screen, "enter on an empty list does nothing")
}

func TestModel_CursorNavigation(t *testing.T) {
	m, _ := newTestModel(t, &stubLoader{records: fixtureRecords()})

	m = press(t, m, "k")
	assert.Equal(t, 0, m.cursor)
	m = press(t, m, "j", "j")
	assert.Equal(t, 2, m.cursor)
	m = press(t, m, "G")
	assert.Equal(t, 3, m.cursor)
	m = press(t, m, "j")
	assert.Equal(t, 3, m.cursor)
	m = press(t, m, "g")
	assert.Equal(t, 0, m.cursor)
	m = press(t, m, "ctrl+d")
	assert.Equal(t, 3, m.cursor)
}

func TestModel_OpenAndCloseDetail(t *testing.T) {
	m, ctrl := newTestModel(t, &stubLoader{records: fixtureRecords()})

	m = press(t, m, "j", "enter")
	require.Equal(t, ScreenDetail, m.screen)
	snap := ctrl.Snapshot()
	require.True(t, snap.HasSelection)
	assert.Equal(t, "2", snap.Selected.ID)

	out := m.View()
	assert.Contains(t, out, "Hospitalised (Age 50+)")
	assert.Contains(t, out, "Epidemic Year")
	assert.Contains(t, out, "2023")
	assert.Contains(t, out, "Epidemic Week")
	assert.Contains(t, out, "Case Count")

	for _, back := range []string{"esc", "backspace", "q"} {
		m = press(t, m, "enter")
		require.Equal(t, ScreenDetail, m.screen)
		m = press(t, m, back)
		assert.Equal(t, ScreenList, m.screen, "key %q", back)
		assert.False(t, ctrl.Snapshot().HasSelection, "key %q", back)
	}
}

func TestModel_FailedLoadShowsDegradedList(t *testing.T) {
	loader := &stubLoader{err: &datagov.FetchError{URL: "u", StatusCode: 503}}
	m, ctrl := newTestModel(t, loader)

	assert.Equal(t, view.StatusFailed, ctrl.Snapshot().Status)
	out := m.View()
	assert.Contains(t, out, "Could not load records")
	assert.Contains(t, out, "HTTP 503")

	m = press(t, m, "/", "a", "c", "t", "enter")
	assert.Empty(t, m.snapshot.Visible)

	loader.err = nil
	loader.records = fixtureRecords()
	m = runLoad(t, m)
	assert.Equal(t, []string{"1", "3"}, visibleIDs(m), "query survives a reload")
}

func TestModel_ReloadDropsVanishedSelection(t *testing.T) {
	loader := &stubLoader{records: fixtureRecords()}
	m, _ := newTestModel(t, loader)

	m = press(t, m, "G", "enter")
	require.Equal(t, ScreenDetail, m.screen)

	loader.records = fixtureRecords()[:2]
	m = runLoad(t, m)
	assert.Equal(t, ScreenList, m.screen)
	assert.Equal(t, 1, m.cursor)
	assert.NotEmpty(t, m.notice)
}

func TestModel_CycleThemePersists(t *testing.T) {
	m, _ := newTestModel(t, &stubLoader{records: fixtureRecords()})
	require.Equal(t, "Nightfox", m.theme.Name)

	m = press(t, m, "T")
	assert.Equal(t, "Kanagawa", m.theme.Name)

	saved, err := prefs.Load(m.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "Kanagawa", saved.Theme)
}

func TestModel_HelpOverlay(t *testing.T) {
	m, _ := newTestModel(t, &stubLoader{records: fixtureRecords()})

	m = press(t, m, "?")
	require.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m = press(t, m, "j")
	assert.False(t, m.showHelp)
	assert.Equal(t, 0, m.cursor, "the closing key is swallowed")
}

func TestModel_QuitKeys(t *testing.T) {
	m, _ := newTestModel(t, &stubLoader{records: fixtureRecords()})
	for _, k := range []string{"e", "ctrl+c"} {
		_, cmd := m.Update(keyMsg(k))
		require.NotNil(t, cmd, "key %q", k)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, "key %q should quit", k)
	}
}

func TestModel_ActivityScreen(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "epiwatch.log")
	content := strings.Join([]string{
		`time=2024-03-01T08:30:00.000+08:00 level=INFO msg="records fetched" status=200 records=4`,
		`time=2024-03-01T08:31:00.000+08:00 level=WARN msg="record fetch failed" error="timeout"`,
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0o644))

	m, _ := newTestModel(t, &stubLoader{records: fixtureRecords()})
	m.logPath = logPath

	next, cmd := m.Update(keyMsg("l"))
	m = next.(Model)
	require.Equal(t, ScreenActivity, m.screen)
	require.NotNil(t, cmd)

	m = update(t, m, cmd())
	require.Len(t, m.activityEntries, 2)
	out := m.View()
	assert.Contains(t, out, "records fetched")
	assert.Contains(t, out, "WARN")

	m = press(t, m, "esc")
	assert.Equal(t, ScreenList, m.screen)
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := New(Options{})
	assert.Equal(t, "Loading...", m.View())
	assert.Nil(t, m.loadCmd())
}
