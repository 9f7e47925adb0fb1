package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Mr-Dark-debug/tweenflow/pkg/jsonutil"
	"github.com/charmbracelet/lipgloss"
)

// renderInspector renders the widget tree and the selected widget's
// live properties (right side).
func renderInspector(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneInspector {
		titleStyle = panelTitleStyle
	}
	title := titleStyle.Render("Inspector")

	if len(m.tree) == 0 {
		return title + "\n\n" + emptyStateStyle.Render("Scene has no widgets.")
	}

	var lines []string
	lines = append(lines, title)

	// ── Widget tree ──

	treeHeight := maxInt(height/3, 3)
	start := 0
	if m.selected >= treeHeight {
		start = m.selected - treeHeight + 1
	}
	end := minInt(start+treeHeight, len(m.tree))

	for i := start; i < end; i++ {
		node := m.tree[i]
		indent := strings.Repeat("  ", node.depth)
		connector := treeBranchStyle.Render("├─")
		if i == len(m.tree)-1 || m.tree[i+1].depth <= node.depth {
			connector = treeBranchStyle.Render("└─")
		}
		name := truncate(node.obj.Name(), width-node.depth*2-14)

		if i == m.selected {
			lines = append(lines, widgetSelectedStyle.Width(width).Render(
				fmt.Sprintf("%s├─ %s %s", indent, node.obj.Kind(), name)))
		} else {
			lines = append(lines, fmt.Sprintf("%s%s %s %s",
				indent, connector, kindTag(node.obj.Kind()), widgetNormalStyle.Render(name)))
		}
	}

	// ── Properties ──

	obj := m.tree[m.selected].obj
	lines = append(lines, "")
	lines = append(lines, detailSectionStyle.Render("Properties"))

	snap := obj.Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		if k != "kind" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, detailRow(k, truncate(formatValue(snap[k]), width-len(k)-2)))
	}

	// ── Runtime ──

	st := m.rt.Stats()
	lines = append(lines, "")
	lines = append(lines, detailSectionStyle.Render("Runtime"))
	lines = append(lines, detailRow("Ticks", fmt.Sprintf("%d", st.Ticks)))
	lines = append(lines, detailRow("Forwarded", fmt.Sprintf("%d", st.Forwarded)))
	lines = append(lines, detailRow("Rejected", fmt.Sprintf("%d", st.Rejected)))
	lines = append(lines, detailRow("Failed", fmt.Sprintf("%d", st.Failed+st.Stale)))

	total := int(st.TimelineWrites + st.TaskWrites)
	if total > 0 {
		barWidth := minInt(width-16, 40)
		if barWidth > 4 {
			lines = append(lines, renderUsageBar("Timeline", int(st.TimelineWrites), total, barWidth, colorYellow))
			lines = append(lines, renderUsageBar("Tasks", int(st.TaskWrites), total, barWidth, colorGreen))
		}
	}

	// Truncate to available height
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

// renderInspectorPanel wraps the inspector in a styled panel.
func renderInspectorPanel(m *Model, width, height int) string {
	content := renderInspector(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneInspector {
		style = panelActiveStyle
	}

	return style.Width(width).Height(height).Render(content)
}

// ── helpers ──

func detailRow(label, value string) string {
	return detailLabelStyle.Render(label) + "  " + detailValueStyle.Render(value)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case map[string]any, []string:
		return jsonutil.MustMarshal(x)
	}
	return fmt.Sprint(v)
}

func renderUsageBar(label string, count, total, barWidth int, color lipgloss.Color) string {
	if total == 0 {
		return ""
	}
	pct := count * 100 / total
	filled := barWidth * count / total
	if filled < 1 && count > 0 {
		filled = 1
	}
	empty := barWidth - filled

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", empty))

	return fmt.Sprintf("%-8s %s %d%%", label, bar, pct)
}
