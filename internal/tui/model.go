package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/tweenflow/internal/engine"
	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/scene"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
	"github.com/Mr-Dark-debug/tweenflow/pkg/timeutil"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ────────────────────────────────────────────────────────────
// Pane focuses
// ────────────────────────────────────────────────────────────

// Pane represents which UI pane currently has keyboard focus.
type Pane int

const (
	PaneStage Pane = iota
	PaneInspector
	PaneTimeline
	PaneJournal

	paneCount = 4
)

const (
	scrubStep = 0.1 // seconds per ←/→
	varStep   = 5   // integer step for +/-
)

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Options configures the player.
type Options struct {
	// Feed must be the Observer of the scene's runtime.
	Feed *Feed
	// Load rebuilds the scene into a Reset runtime for the reset key.
	// Nil disables reloading; reset then only rewinds.
	Load func(rt *engine.Runtime) (*scene.Scene, error)
	FPS  int
	// Duration is the loop length in seconds; zero means the end of
	// the last keyframe.
	Duration float64
	Loop     bool
}

// Model is the root BubbleTea model for the player.
// State is organized by concern; rendering is delegated
// to component functions in separate files.
type Model struct {
	opts  Options
	keys  keyMap
	frame time.Duration

	// Data
	scene      *scene.Scene
	rt         *engine.Runtime
	feed       *Feed
	tree       []widgetNode
	duration   float64
	lastReport engine.TickReport

	// UI state
	playing       bool
	activePane    Pane
	selected      int
	journalScroll int
	width         int
	height        int

	// Status
	statusMsg string
	err       error
}

// NewModel creates a player for a built scene.
func NewModel(s *scene.Scene, opts Options) Model {
	if opts.Feed == nil {
		opts.Feed = NewFeed(nil, 0)
	}
	m := Model{
		opts:    opts,
		keys:    newKeyMap(),
		frame:   timeutil.FrameInterval(opts.FPS),
		feed:    opts.Feed,
		playing: true,
	}
	m.setScene(s)
	m.statusMsg = fmt.Sprintf("Playing %s", s.Name)
	return m
}

func (m *Model) setScene(s *scene.Scene) {
	m.scene = s
	m.rt = s.Runtime()
	m.tree = buildWidgetTree(s.Widgets())
	m.duration = m.opts.Duration
	if m.duration <= 0 {
		m.duration = s.Duration()
	}
	m.selected = clamp(m.selected, 0, maxInt(len(m.tree)-1, 0))
}

// Scene returns the scene being played.
func (m Model) Scene() *scene.Scene { return m.scene }

// Position returns the root flow state's timeline position.
func (m Model) Position() float64 { return m.scene.Root.TimelinePosition() }

// Playing reports whether the frame loop advances playback.
func (m Model) Playing() bool { return m.playing }

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

type frameMsg time.Time

// ────────────────────────────────────────────────────────────
// Init
// ────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return m.nextFrame()
}

func (m Model) nextFrame() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		if m.playing {
			m.step(m.frame.Seconds())
		}
		return m, m.nextFrame()
	}

	return m, nil
}

// step advances playback by dt seconds and runs one engine tick.
func (m *Model) step(dt float64) {
	length := 0.0
	if m.opts.Loop {
		length = m.duration
	}
	m.scene.Root.Advance(dt, length)

	if !m.opts.Loop && m.duration > 0 && m.Position() >= m.duration {
		m.playing = false
		m.statusMsg = "End of timeline"
	}
	m.lastReport = m.rt.Tick(m.scene.Root)
}

// handleKey routes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {

	// ── Global ──

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pane):
		m.activePane = (m.activePane + 1) % paneCount
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		m.playing = !m.playing
		if m.playing {
			m.statusMsg = "Playing"
		} else {
			m.statusMsg = "Paused"
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.scrub(-scrubStep)
		return m, nil

	case key.Matches(msg, m.keys.Fwd):
		m.scrub(scrubStep)
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.reset()
		return m, nil

	case key.Matches(msg, m.keys.Inc):
		m.nudgeVar(varStep)
		return m, nil

	case key.Matches(msg, m.keys.Dec):
		m.nudgeVar(-varStep)
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		m.userEdit()
		return m, nil
	}

	// ── Pane-specific ──

	switch m.activePane {
	case PaneInspector, PaneStage:
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.tree)-1 {
				m.selected++
			}
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		}

	case PaneJournal:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.journalScroll < len(m.feed.Entries())-1 {
				m.journalScroll++
			}
		case key.Matches(msg, m.keys.Down):
			if m.journalScroll > 0 {
				m.journalScroll--
			}
		}
	}

	return m, nil
}

// scrub moves every flow state to the same position and evaluates all
// timelines there without running update tasks.
func (m *Model) scrub(delta float64) {
	pos := clampFloat(m.Position()+delta, 0, m.duration)
	m.scene.Seek(pos)
	m.statusMsg = "Scrubbed to " + timeutil.FormatPosition(pos)
}

func (m *Model) reset() {
	m.feed.Clear()
	m.journalScroll = 0
	if m.opts.Load == nil {
		m.rt.ResetTimelines()
		m.scene.Seek(0)
		m.statusMsg = "Rewound"
		return
	}

	m.rt.Reset()
	s, err := m.opts.Load(m.rt)
	if err != nil {
		m.err = err
		m.statusMsg = fmt.Sprintf("Error: %v", err)
		return
	}
	m.err = nil
	m.setScene(s)
	m.statusMsg = fmt.Sprintf("Reloaded %s", s.Name)
}

// nudgeVar changes the first flow variable of the scene. The next tick
// pushes it to every widget bound to it.
func (m *Model) nudgeVar(delta int32) {
	vars := m.scene.Vars()
	if len(vars) == 0 {
		m.statusMsg = "Scene has no flow variables"
		return
	}
	src := vars[0]
	st, ok := src.State.(*flow.State)
	if !ok {
		return
	}
	v, _ := st.Get(src.Component, src.Property)
	switch x := v.(type) {
	case int32:
		st.Set(src.Component, src.Property, x+delta)
	case bool:
		st.Set(src.Component, src.Property, !x)
	default:
		m.statusMsg = fmt.Sprintf("%s is not numeric", src)
		return
	}
	nv, _ := st.Get(src.Component, src.Property)
	m.statusMsg = fmt.Sprintf("%s = %v", src, nv)
}

// userEdit changes the selected widget the way a user would. Widgets
// with a forwarder push the change into the flow.
func (m *Model) userEdit() {
	if len(m.tree) == 0 {
		return
	}
	obj := m.tree[m.selected].obj
	desc := simulateEdit(obj)
	if desc == "" {
		m.statusMsg = fmt.Sprintf("%s (%s) is not editable", obj.Name(), obj.Kind())
		return
	}
	m.statusMsg = fmt.Sprintf("Edited %s: %s", obj.Name(), desc)
}

func simulateEdit(o *widget.Object) string {
	switch o.Kind() {
	case widget.KindSlider, widget.KindBar, widget.KindArc:
		step := maxInt(int(o.Max()-o.Min())/10, 1)
		v := o.Value() + int32(step)
		if v > o.Max() {
			v = o.Min()
		}
		o.SetValue(v, false)
		return fmt.Sprintf("value %d", o.Value())
	case widget.KindSpinbox:
		v := o.Value() + o.Step()
		if v > o.Max() {
			v = o.Min()
		}
		o.SetValue(v, false)
		return fmt.Sprintf("value %d", o.Value())
	case widget.KindCheckbox, widget.KindSwitch:
		if o.HasState(widget.StateChecked) {
			o.ClearState(widget.StateChecked)
			return "unchecked"
		}
		o.AddState(widget.StateChecked)
		return "checked"
	case widget.KindDropdown, widget.KindRoller:
		n := strings.Count(o.Options(), "\n") + 1
		o.SetSelected((o.Selected() + 1) % n)
		return fmt.Sprintf("selected %d", o.Selected())
	case widget.KindTextarea:
		o.SetText(o.Text() + "!")
		return fmt.Sprintf("text %q", o.Text())
	}
	return ""
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := renderHeader(&m)
	footer := renderFooter(&m)

	bodyHeight := m.height - 2 // header + footer

	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderMainLayout(bodyHeight), footer)
}

// renderMainLayout assembles the four-pane player view.
func (m Model) renderMainLayout(totalHeight int) string {
	// Responsive: collapse to single pane on narrow terminals
	if m.width < 60 {
		return m.renderCompactLayout(totalHeight)
	}

	// Split proportions
	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth
	topHeight := totalHeight * 60 / 100
	bottomHeight := totalHeight - topHeight

	stage := renderStagePanel(&m, leftWidth, topHeight)
	inspector := renderInspectorPanel(&m, rightWidth, topHeight)
	lanes := renderTimelinePanel(&m, leftWidth, bottomHeight)
	journal := renderJournalPanel(&m, rightWidth, bottomHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, stage, inspector)
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top, lanes, journal)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow)
}

// renderCompactLayout is used when the terminal is narrow (< 60 cols).
// Only the focused pane is shown.
func (m Model) renderCompactLayout(totalHeight int) string {
	switch m.activePane {
	case PaneInspector:
		return renderInspectorPanel(&m, m.width, totalHeight)
	case PaneTimeline:
		return renderTimelinePanel(&m, m.width, totalHeight)
	case PaneJournal:
		return renderJournalPanel(&m, m.width, totalHeight)
	default:
		return renderStagePanel(&m, m.width, totalHeight)
	}
}
