package tui

import (
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/tweenflow/pkg/timeutil"
	"github.com/charmbracelet/lipgloss"
)

// renderHeader produces the top bar:
//
//	TWEENFLOW  |  demo  |  ▶ 0:00.400 / 0:02.000  |  tick 12  |  4 timelines
func renderHeader(m *Model) string {
	brand := headerBrandStyle.Render("TWEENFLOW")
	sep := headerSepStyle.Render(" │ ")

	state := headerPausedStyle.Render("‖")
	if m.playing {
		state = headerPlayingStyle.Render("▶")
	}

	parts := []string{
		brand,
		sep,
		headerMetaStyle.Render(m.scene.Name),
		sep,
		state + " " + headerMetaStyle.Render(fmt.Sprintf("%s / %s",
			timeutil.FormatPosition(m.Position()), timeutil.FormatPosition(m.duration))),
		sep,
		headerMetaStyle.Render(fmt.Sprintf("tick %d", m.rt.CurrentTick())),
		sep,
		headerMetaStyle.Render(fmt.Sprintf("%d timelines  %d bindings",
			m.rt.Timelines().Len(), len(m.rt.Bindings()))),
	}

	content := strings.Join(parts, "")

	return headerBarStyle.Width(m.width).Render(content)
}

// renderFooter produces the bottom status bar with keyboard hints.
func renderFooter(m *Model) string {
	var left string
	if m.err != nil {
		left = statusErrStyle.Render(m.statusMsg)
	} else if m.statusMsg != "" {
		left = statusStyle.Render(m.statusMsg)
	}

	var hints []hint
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, hint{h.Key, h.Desc})
	}
	right := renderHints(hints)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(colorBgSurface).
		Width(m.width).
		Render(bar)
}

type hint struct {
	key  string
	desc string
}

func renderHints(hints []hint) string {
	var parts []string
	for _, h := range hints {
		parts = append(parts,
			hintKeyStyle.Render(h.key)+" "+hintDescStyle.Render(h.desc))
	}
	return strings.Join(parts, hintDescStyle.Render("  "))
}
