package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/epiwatch/internal/logtail"
)

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = m.prev
		if m.screen == ScreenDetail && !m.snapshot.HasSelection {
			m.screen = ScreenList
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.activity.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.activity.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.activity, cmd = m.activity.Update(msg)
	return m, cmd
}

// readActivityCmd tails the log file off the update loop.
func (m Model) readActivityCmd() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return activityMsg{}
		}
		lines, err := logtail.Read(path, ActivityLineLimit)
		if err != nil {
			return activityMsg{err: err}
		}
		entries := make([]logtail.Entry, 0, len(lines))
		for _, line := range lines {
			entries = append(entries, logtail.Parse(line))
		}
		return activityMsg{entries: entries}
	}
}

func (m *Model) resizeActivity() {
	m.activity.Width = maxInt(m.width-2, 1)
	m.activity.Height = maxInt(m.contentHeight()-2, 1)
	m.updateActivityViewport()
}

// updateActivityViewport re-renders the entries, staying pinned to the
// bottom when the view was already there.
func (m *Model) updateActivityViewport() {
	atBottom := m.activity.AtBottom() || m.activity.TotalLineCount() == 0
	m.activity.SetContent(m.formatActivity())
	if atBottom {
		m.activity.GotoBottom()
	}
}

func (m Model) formatActivity() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	if m.activityErr != nil {
		return styles.DangerText.Render(" " + m.activityErr.Error())
	}
	if len(m.activityEntries) == 0 {
		if m.logPath == "" {
			return styles.MutedText.Render(" Logging is not configured")
		}
		return styles.MutedText.Render(" No activity yet")
	}

	bg := NewBgStyle(m.theme.FocusBg)
	lines := make([]string, 0, len(m.activityEntries))
	for _, e := range m.activityEntries {
		lines = append(lines, m.formatEntry(e, styles, bg))
	}
	return strings.Join(lines, "\n")
}

func (m Model) formatEntry(e logtail.Entry, styles Styles, bg BgStyle) string {
	if !e.Structured() {
		return bg.Space() + bg.Render(e.Raw, styles.Text)
	}

	parts := make([]string, 0, 3+len(e.Attrs))
	if !e.Time.IsZero() {
		parts = append(parts, bg.Render(e.Time.Format("15:04:05"), styles.FaintText))
	}
	parts = append(parts, bg.Render(padRight(e.Level, 5), m.levelStyle(e.Level, styles)))
	parts = append(parts, bg.Render(e.Message, styles.Text))
	for _, a := range e.Attrs {
		parts = append(parts,
			bg.Render(a.Key, styles.AccentText)+bg.Sep("=")+bg.Render(truncate(a.Value, 60), styles.MutedText))
	}
	return bg.Space() + bg.Join(parts, " ")
}

func (m Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "ERROR":
		return styles.DangerText
	case "WARN":
		return styles.WarningText.Bold(true)
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.SuccessText
	}
}

func (m Model) renderActivity() string {
	title := "Activity"
	if m.logPath != "" {
		title += " · " + truncateMiddle(m.logPath, maxInt(m.width/2, 10))
	}
	return m.renderTitledBox(title, m.activity.View(), m.width, m.contentHeight(), true)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
