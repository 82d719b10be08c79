package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/epiwatch/internal/surveillance"
	"github.com/five82/epiwatch/internal/view"
)

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.snapshot.Query)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.ClearQuery):
		if m.snapshot.Query != "" {
			m.search.SetValue("")
			m.applyQuery("")
		}
		return m, nil
	case key.Matches(msg, m.keys.Open):
		m.openSelected()
		return m, nil
	}

	count := len(m.snapshot.Visible)
	if count == 0 {
		return m, nil
	}
	half := m.listRows() / 2
	if half < 1 {
		half = 1
	}
	switch {
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.cursor += half
	case key.Matches(msg, m.keys.HalfPageUp):
		m.cursor -= half
	}
	m.cursor = clamp(m.cursor, 0, count-1)
	return m, nil
}

// openSelected opens the record under the cursor. A record that vanished
// between snapshots leaves the list in place with a hint.
func (m *Model) openSelected() {
	rec, ok := m.cursorRecord()
	if !ok || m.ctrl == nil {
		return
	}
	if err := m.ctrl.OpenDetail(rec.ID); err != nil {
		m.logger.Debug("open detail failed", "id", rec.ID, "error", err)
		m.notice = fmt.Sprintf("record %s is no longer available", rec.ID)
		m.refresh()
		return
	}
	m.notice = ""
	m.refresh()
	m.screen = ScreenDetail
}

func (m Model) cursorRecord() (surveillance.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Visible) {
		return surveillance.Record{}, false
	}
	return m.snapshot.Visible[m.cursor], true
}

// listRows is the number of record rows that fit in the list box.
func (m Model) listRows() int {
	rows := m.contentHeight() - 2
	if m.showSearchBar() {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) showSearchBar() bool {
	return m.searching || m.snapshot.Query != ""
}

func (m Model) renderList() string {
	height := m.contentHeight()
	var b strings.Builder
	if m.showSearchBar() {
		b.WriteString(m.renderSearchBar())
		b.WriteString("\n")
		height--
	}

	focused := !m.searching
	title := m.listTitle()
	b.WriteString(m.renderTitledBox(title, m.renderListBody(), m.width, height, focused))
	return b.String()
}

func (m Model) listTitle() string {
	snap := m.snapshot
	if snap.Query == "" {
		return fmt.Sprintf("Health Data (%d)", len(snap.Visible))
	}
	return fmt.Sprintf("Health Data (%d of %d)", len(snap.Visible), snap.Total)
}

func (m Model) renderSearchBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	if m.searching {
		return bg.FillLine(m.search.View(), m.width)
	}
	line := bg.Render("/", styles.AccentText) + bg.Space() +
		bg.Render(m.snapshot.Query, styles.Text) + bg.Spaces(2) +
		bg.Render("esc clears", styles.FaintText)
	return bg.FillLine(line, m.width)
}

func (m Model) renderListBody() string {
	snap := m.snapshot
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)

	if len(snap.Visible) == 0 {
		return m.renderEmptyList(snap, styles)
	}

	rows := m.listRows()
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := start + rows
	if end > len(snap.Visible) {
		end = len(snap.Visible)
	}

	width := m.width - 2
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.formatRow(snap.Visible[i], width, i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEmptyList(snap view.Snapshot, styles Styles) string {
	switch {
	case snap.Total == 0 && (snap.Status == view.StatusIdle || snap.Status == view.StatusLoading):
		return styles.MutedText.Render(" Loading records…")
	case snap.Total == 0 && snap.Status == view.StatusFailed:
		msg := " Could not load records"
		if snap.LastError != nil {
			msg += "\n " + truncate(snap.LastError.Error(), m.width-4)
		}
		return styles.DangerText.Render(msg)
	case snap.Total == 0:
		return styles.MutedText.Render(" No records published")
	default:
		return styles.MutedText.Render(fmt.Sprintf(" No records match %q", snap.Query))
	}
}

// formatRow renders "<status> (<age>)  Cases: <count>" with a status marker.
func (m Model) formatRow(rec surveillance.Record, width int, selected bool) string {
	bgColor := m.theme.FocusBg
	if selected {
		bgColor = m.theme.SelectionBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles().WithBackground(bgColor)

	marker := bg.Render("●", lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(rec.ClinicalStatus))))
	cases := fmt.Sprintf("Cases: %d", rec.Count)
	week := ""
	if m.width >= LayoutWideWidth {
		week = rec.EpiLabel()
	}

	// " ● " before the title and two spaces after each of title and week.
	overhead := 5
	if week != "" {
		overhead += lipgloss.Width(week) + 2
	}
	titleWidth := max(width-lipgloss.Width(cases)-overhead, 1)
	title := truncate(rec.Title(), titleWidth)

	textStyle := styles.Text
	if selected {
		textStyle = styles.Selected.Bold(true)
	}
	line := bg.Space() + marker + bg.Space() +
		bg.Render(padRight(title, titleWidth), textStyle) + bg.Spaces(2)
	if week != "" {
		line += bg.Render(week, styles.FaintText) + bg.Spaces(2)
	}
	line += bg.Render(cases, styles.MutedText)
	return bg.FillLine(line, width)
}
