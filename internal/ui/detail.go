package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.closeDetail()
	}
	return m, nil
}

func (m *Model) closeDetail() {
	if m.ctrl != nil {
		m.ctrl.CloseDetail()
	}
	m.screen = ScreenList
	m.refresh()
}

func (m Model) renderDetail() string {
	rec := m.snapshot.Selected
	if !m.snapshot.HasSelection {
		return m.renderTitledBox("Details", "", m.width, m.contentHeight(), true)
	}

	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)
	labelWidth := 16

	field := func(label, value string) string {
		return bg.Space() + bg.Render(padRight(label, labelWidth), styles.MutedText) + bg.Render(value, styles.Text)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(bg.Space())
	b.WriteString(styles.StatusStyle(rec.ClinicalStatus).Render(rec.ClinicalStatus))
	b.WriteString(bg.Space())
	b.WriteString(bg.Render(truncate(rec.Title(), m.width-8-len(rec.ClinicalStatus)), styles.Text.Bold(true)))
	b.WriteString("\n\n")
	b.WriteString(field("Epidemic Year", fmt.Sprintf("%d", rec.EpiYear)))
	b.WriteString("\n")
	b.WriteString(field("Epidemic Week", fmt.Sprintf("%d", rec.EpiWeek)))
	b.WriteString("\n")
	b.WriteString(field("Case Count", fmt.Sprintf("%d", rec.Count)))
	b.WriteString("\n\n")
	b.WriteString(field("Age Group", rec.AgeGroup))
	b.WriteString("\n")
	b.WriteString(field("Week", rec.EpiLabel()))
	b.WriteString("\n")
	b.WriteString(field("Record", rec.ID))
	if m.source != "" {
		b.WriteString("\n")
		b.WriteString(field("Source", truncateMiddle(m.source, m.width-labelWidth-6)))
	}

	return m.renderTitledBox("Details", b.String(), m.width, m.contentHeight(), true)
}
