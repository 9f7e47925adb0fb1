package tui

import (
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
	"github.com/charmbracelet/lipgloss"
)

// ────────────────────────────────────────────────────────────
// Widget tree construction
// ────────────────────────────────────────────────────────────

// widgetNode represents a widget in the tree view with its depth level.
type widgetNode struct {
	obj   *widget.Object
	depth int
}

// buildWidgetTree constructs a flat depth-ordered list from parent
// relationships. Roots keep their order in objs.
func buildWidgetTree(objs []*widget.Object) []widgetNode {
	if len(objs) == 0 {
		return nil
	}

	var result []widgetNode
	var walk func(o *widget.Object, depth int)
	walk = func(o *widget.Object, depth int) {
		result = append(result, widgetNode{obj: o, depth: depth})
		for _, child := range o.Children() {
			walk(child, depth+1)
		}
	}

	for _, o := range objs {
		if o.Parent() == nil {
			walk(o, 0)
		}
	}
	return result
}

// ────────────────────────────────────────────────────────────
// Widget kind rendering
// ────────────────────────────────────────────────────────────

// kindTag returns a short colored label for a widget kind.
func kindTag(k widget.Kind) string {
	return kindStyle(k).Render(string(k))
}

// kindStyle returns the style for a widget kind.
func kindStyle(k widget.Kind) lipgloss.Style {
	switch k {
	case widget.KindLabel, widget.KindTextarea, widget.KindButton:
		return kindTextStyle
	case widget.KindSlider, widget.KindBar, widget.KindArc, widget.KindSpinbox,
		widget.KindMeter, widget.KindLED:
		return kindValueStyle
	case widget.KindCheckbox, widget.KindSwitch, widget.KindDropdown, widget.KindRoller:
		return kindToggleStyle
	case widget.KindTabView, widget.KindTab:
		return kindContainerStyle
	default:
		return kindPlainStyle
	}
}

// ────────────────────────────────────────────────────────────
// String helpers
// ────────────────────────────────────────────────────────────

// truncate cuts a string to maxLen and appends "..." if truncated.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// clamp restricts val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func clampFloat(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if hi > lo && val > hi {
		return hi
	}
	return val
}

// max returns the larger of a and b.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// min returns the smaller of a and b.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
