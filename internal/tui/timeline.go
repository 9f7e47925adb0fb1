package tui

import (
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/timeline"
	"github.com/Mr-Dark-debug/tweenflow/pkg/timeutil"
)

// renderTimeline renders one lane per timeline: its keyframe intervals
// over the loop length and a playhead at the owning flow state's
// position. Child flow states may run at a different speed, so
// playheads need not line up.
func renderTimeline(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneTimeline {
		titleStyle = panelTitleStyle
	}

	tls := m.rt.Timelines().Timelines()
	title := titleStyle.Render("Timeline") + dimStyle.Render(
		fmt.Sprintf("  %d lanes  %s", len(tls), timeutil.FormatPosition(m.duration)))

	if len(tls) == 0 {
		return title + "\n\n" + emptyStateStyle.Render("No keyframes in this scene.")
	}

	const nameWidth = 12
	trackWidth := width - nameWidth - 1
	if trackWidth < 4 || m.duration <= 0 {
		return title
	}

	var lines []string
	lines = append(lines, title)

	contentHeight := height - 1
	for i, tl := range tls {
		if i >= contentHeight {
			lines = append(lines, dimStyle.Render(fmt.Sprintf(" +%d more", len(tls)-i)))
			break
		}
		name := fmt.Sprintf("%-*s", nameWidth, truncate(laneName(tl), nameWidth))
		lines = append(lines, dimStyle.Render(name)+" "+renderLane(tl, trackWidth, m.duration))
	}

	return strings.Join(lines, "\n")
}

func laneName(tl *timeline.Timeline) string {
	if s, ok := tl.Target().(fmt.Stringer); ok {
		return s.String()
	}
	return "?"
}

// renderLane draws one track. Column c covers position
// c/(width-1) * length.
func renderLane(tl *timeline.Timeline, width int, length float64) string {
	playhead := -1
	if owner, ok := tl.Owner().(flow.Scope); ok {
		pos := clampFloat(owner.TimelinePosition(), 0, length)
		playhead = int(pos/length*float64(width-1) + 0.5)
	}

	kfs := tl.Keyframes()
	var b strings.Builder
	for c := 0; c < width; c++ {
		if c == playhead {
			b.WriteString(lanePlayheadStyle.Render("│"))
			continue
		}
		t := float64(c) / float64(width-1) * length
		inside := false
		for i := range kfs {
			if kfs[i].Contains(t) {
				inside = true
				break
			}
		}
		if inside {
			b.WriteString(laneKeyframeStyle.Render("█"))
		} else {
			b.WriteString(laneEmptyStyle.Render("·"))
		}
	}
	return b.String()
}

// renderTimelinePanel wraps the lanes in a styled panel.
func renderTimelinePanel(m *Model, width, height int) string {
	content := renderTimeline(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneTimeline {
		style = panelActiveStyle
	}

	return style.Width(width).Height(height).Render(content)
}
