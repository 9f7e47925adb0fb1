package tui

import (
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/tweenflow/internal/engine"
	"github.com/Mr-Dark-debug/tweenflow/pkg/timeutil"
)

// renderJournal renders the most recent writes and diagnostics, newest
// at the bottom. Scrolling moves the window back in time.
func renderJournal(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneJournal {
		titleStyle = panelTitleStyle
	}

	title := titleStyle.Render("Journal")
	entries := m.feed.Entries()

	if len(entries) == 0 {
		return title + "\n" + journalTickStyle.Render("No writes yet.")
	}

	title += dimStyle.Render(fmt.Sprintf("  %d entries", len(entries)))

	contentHeight := height - 1
	end := len(entries) - m.journalScroll
	start := maxInt(end-contentHeight, 0)

	var lines []string
	for _, e := range entries[start:end] {
		ts := journalTickStyle.Render(fmt.Sprintf("t%-5d", e.Tick()))

		switch {
		case e.Write != nil:
			w := e.Write
			line := fmt.Sprintf("~ %s.%s %s → %s", w.Target, w.Property, w.Old, w.New)
			if w.Source == engine.SourceTimeline {
				pos := journalTickStyle.Render(timeutil.FormatPosition(w.Position))
				lines = append(lines, ts+" "+pos+" "+writeTimelineStyle.Render(truncate(line, width-20)))
			} else {
				lines = append(lines, ts+" "+writeTaskStyle.Render(truncate("+"+line[1:], width-8)))
			}

		case e.Diag != nil:
			line := fmt.Sprintf("! %s: %s", e.Diag.Kind, e.Diag.Message())
			lines = append(lines, ts+" "+diagStyle.Render(truncate(line, width-8)))
		}
	}

	return title + "\n" + strings.Join(lines, "\n")
}

// renderJournalPanel wraps the journal in a styled panel.
func renderJournalPanel(m *Model, width, height int) string {
	content := renderJournal(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneJournal {
		style = panelActiveStyle
	}

	return style.Width(width).Height(height).Render(content)
}
