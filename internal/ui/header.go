package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/five82/epiwatch/internal/datagov"
	"github.com/five82/epiwatch/internal/view"
)

// renderHeader renders the status bar: app name, load state, counts, query
// and last load time.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	snap := m.snapshot
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("epiwatch", styles.Logo)}

	switch {
	case m.loading || snap.Status == view.StatusLoading || snap.Status == view.StatusIdle:
		parts = append(parts, bg.Render("Loading…", styles.WarningText.Bold(true)))
	case snap.Status == view.StatusFailed:
		parts = append(parts, bg.Render(describeLoadError(snap.LastError), styles.DangerText))
	default:
		parts = append(parts, bg.Render(
			fmt.Sprintf("%d %s", snap.Total, pluralize(snap.Total, "record", "records")),
			styles.SuccessText))
	}

	if snap.Total > 0 || snap.Query != "" {
		parts = append(parts,
			bg.Render("showing", styles.FaintText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d/%d", len(snap.Visible), snap.Total), styles.Text))
	}
	if snap.Query != "" && !compact {
		parts = append(parts,
			bg.Render("query", styles.FaintText)+bg.Space()+
				bg.Render(fmt.Sprintf("%q", truncate(snap.Query, 24)), styles.AccentText))
	}
	if !snap.LoadedAt.IsZero() && !compact {
		parts = append(parts,
			bg.Render("loaded", styles.FaintText)+bg.Space()+
				bg.Render(snap.LoadedAt.Format("15:04:05"), styles.MutedText))
	}
	if m.notice != "" {
		parts = append(parts, bg.Render(m.notice, styles.WarningText))
	}

	return styles.Header.Width(m.width).MaxWidth(m.width).Render(bg.Join(parts, "  "))
}

// describeLoadError turns loader failures into a short header label.
func describeLoadError(err error) string {
	if err == nil {
		return "Load failed"
	}
	var fetchErr *datagov.FetchError
	var malformedErr *datagov.MalformedResponseError
	switch {
	case errors.As(err, &fetchErr) && fetchErr.StatusCode != 0:
		return fmt.Sprintf("Load failed: HTTP %d", fetchErr.StatusCode)
	case errors.As(err, &fetchErr):
		return "Load failed: network unavailable"
	case errors.As(err, &malformedErr):
		return "Load failed: unexpected response"
	default:
		return "Load failed"
	}
}

// renderCommandBar renders the key hints for the active screen.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.searching:
		commands = []cmd{
			{"enter", "Keep"},
			{"esc", "Done"},
		}
	case m.screen == ScreenDetail:
		commands = []cmd{
			{"esc", "Back"},
			{"r", "Reload"},
			{"l", "Activity"},
			{"?", "More"},
		}
	case m.screen == ScreenActivity:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"esc", "Back"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"/", "Search"},
			{"enter", "Details"},
			{"j/k", "Navigate"},
			{"r", "Reload"},
			{"l", "Activity"},
			{"?", "More"},
		}
		if m.snapshot.Query != "" {
			commands = append(commands[:1], append([]cmd{{"esc", "Clear"}}, commands[1:]...)...)
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}
