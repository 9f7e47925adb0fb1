package tui

import (
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
	"github.com/charmbracelet/lipgloss"
)

// ────────────────────────────────────────────────────────────
// Character canvas
// ────────────────────────────────────────────────────────────

type cellStyle uint8

const (
	cellEmpty cellStyle = iota
	cellBox
	cellDim
	cellFaint
	cellSelected
)

var cellStyles = [...]lipgloss.Style{
	cellEmpty:    lipgloss.NewStyle(),
	cellBox:      stageBoxStyle,
	cellDim:      stageDimStyle,
	cellFaint:    stageFaintStyle,
	cellSelected: stageSelectedStyle,
}

type cell struct {
	r     rune
	style cellStyle
}

// canvas is a fixed grid of styled runes. Drawing outside the grid is
// clipped.
type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: maxInt(w, 0), h: maxInt(h, 0)}
	c.cells = make([]cell, c.w*c.h)
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, st cellStyle) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y*c.w+x] = cell{r: r, style: st}
}

func (c *canvas) text(x, y int, s string, st cellStyle) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, st)
	}
}

// box draws a rounded rectangle with label inside. Boxes too small for
// a border collapse to the label alone.
func (c *canvas) box(x, y, w, h int, label string, st cellStyle) {
	if w < 2 || h < 2 {
		c.text(x, y, label, st)
		return
	}
	for i := 1; i < w-1; i++ {
		c.set(x+i, y, '─', st)
		c.set(x+i, y+h-1, '─', st)
	}
	for j := 1; j < h-1; j++ {
		c.set(x, y+j, '│', st)
		c.set(x+w-1, y+j, '│', st)
	}
	c.set(x, y, '╭', st)
	c.set(x+w-1, y, '╮', st)
	c.set(x, y+h-1, '╰', st)
	c.set(x+w-1, y+h-1, '╯', st)

	labelY := y + h/2
	if h == 2 {
		labelY = y
	}
	c.text(x+1, labelY, truncate(label, w-2), st)
}

// render groups runs of equally styled cells so each row needs only a
// few Render calls.
func (c *canvas) render() string {
	rows := make([]string, c.h)
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		b.Reset()
		row := c.cells[y*c.w : (y+1)*c.w]
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].style == row[start].style {
				continue
			}
			var run strings.Builder
			for _, cl := range row[start:x] {
				run.WriteRune(cl.r)
			}
			if row[start].style == cellEmpty {
				b.WriteString(run.String())
			} else {
				b.WriteString(cellStyles[row[start].style].Render(run.String()))
			}
			start = x
		}
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}

// ────────────────────────────────────────────────────────────
// Stage
// ────────────────────────────────────────────────────────────

// stageRect is a widget's drawn geometry in stage units.
type stageRect struct {
	x, y, w, h float64
}

func geometry(o *widget.Object) stageRect {
	scale := float64(o.StyleProp(widget.PropScale)) / 256
	return stageRect{
		x: float64(o.StyleProp(widget.PropX)),
		y: float64(o.StyleProp(widget.PropY)),
		w: float64(o.StyleProp(widget.PropWidth)) * scale,
		h: float64(o.StyleProp(widget.PropHeight)) * scale,
	}
}

func opacityStyle(o *widget.Object) (cellStyle, bool) {
	op := o.StyleProp(widget.PropOpacity)
	switch {
	case op <= 0:
		return 0, false
	case op < 51:
		return cellFaint, true
	case op < 170:
		return cellDim, true
	default:
		return cellBox, true
	}
}

// renderStage draws every visible widget at its current geometry,
// scaled down when the scene is larger than the pane.
func renderStage(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneStage {
		titleStyle = panelTitleStyle
	}
	title := titleStyle.Render("Stage")

	if len(m.tree) == 0 {
		return title + "\n\n" + emptyStateStyle.Render("Scene has no widgets.")
	}

	canvasH := height - 1
	extX, extY := 1.0, 1.0
	for _, n := range m.tree {
		r := geometry(n.obj)
		extX = max(extX, r.x+r.w)
		extY = max(extY, r.y+r.h)
	}
	scale := 1.0
	if extX > float64(width) {
		scale = min(scale, float64(width)/extX)
	}
	if extY > float64(canvasH) {
		scale = min(scale, float64(canvasH)/extY)
	}
	if scale < 1 {
		title += dimStyle.Render(fmt.Sprintf("  %.0f%%", scale*100))
	}

	c := newCanvas(width, canvasH)
	for i, n := range m.tree {
		o := n.obj
		if o.HasFlag(widget.FlagHidden) || o.Kind() == widget.KindTab {
			continue
		}
		st, visible := opacityStyle(o)
		if !visible {
			continue
		}
		if i == m.selected {
			st = cellSelected
		}
		r := geometry(o)
		c.box(int(r.x*scale), int(r.y*scale),
			int(r.w*scale+0.5), int(r.h*scale+0.5), stageLabel(o), st)
	}

	return title + "\n" + c.render()
}

// stageLabel is the text drawn inside a widget box.
func stageLabel(o *widget.Object) string {
	switch o.Kind() {
	case widget.KindLabel, widget.KindTextarea, widget.KindButton:
		if o.Text() != "" {
			return o.Text()
		}
	case widget.KindSlider, widget.KindBar, widget.KindArc, widget.KindSpinbox:
		return fmt.Sprintf("%s %d", o.Name(), o.Value())
	case widget.KindCheckbox, widget.KindSwitch:
		if o.HasState(widget.StateChecked) {
			return "[x] " + o.Name()
		}
		return "[ ] " + o.Name()
	}
	return o.Name()
}

// renderStagePanel wraps the stage in a styled panel.
func renderStagePanel(m *Model, width, height int) string {
	content := renderStage(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneStage {
		style = panelActiveStyle
	}

	return style.Width(width).Height(height).Render(content)
}
