package tui

import (
	"strings"
	"testing"

	"github.com/Mr-Dark-debug/tweenflow/internal/engine"
	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/scene"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"

	tea "github.com/charmbracelet/bubbletea"
)

const playerScene = `
name = "player"

[[flow]]
name = "main"
  [[flow.var]]
  component = 0
  property = 0
  value = 40

[[widget]]
name = "box"
width = 10
height = 3

[[widget]]
name = "s"
kind = "slider"
y = 5
width = 20
height = 1

[[keyframe]]
widget = "box"
start = 0.0
end = 1.0
x = 30

[[binding]]
kind = "slider-value"
widget = "s"
component = 0
property = 0

[[event]]
kind = "slider-value"
widget = "s"
component = 0
property = 0
`

func loadPlayerScene(rt *engine.Runtime) (*scene.Scene, error) {
	f, err := scene.Parse(playerScene)
	if err != nil {
		return nil, err
	}
	return scene.Build(f, rt)
}

func newPlayer(t *testing.T, loop bool) (Model, *flow.StateEvaluator) {
	t.Helper()
	feed := NewFeed(nil, 50)
	ev := flow.NewEvaluator()
	rt := engine.New(engine.Config{Evaluator: ev, Assigner: ev, Observer: feed})
	s, err := loadPlayerScene(rt)
	if err != nil {
		t.Fatalf("loading scene: %v", err)
	}
	m := NewModel(s, Options{Feed: feed, Load: loadPlayerScene, FPS: 10, Loop: loop})
	return m, ev
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mustWidget(t *testing.T, m Model, name string) *widget.Object {
	t.Helper()
	w, ok := m.Scene().Widget(name)
	if !ok {
		t.Fatalf("widget %q not found", name)
	}
	return w
}

func TestFrameAdvancesAndTicks(t *testing.T) {
	m, _ := newPlayer(t, true)

	for i := 0; i < 5; i++ {
		m = send(m, frameMsg{})
	}
	if got := m.Position(); got < 0.49 || got > 0.51 {
		t.Errorf("expected position 0.5 after 5 frames at 10 fps, got %v", got)
	}
	if got := mustWidget(t, m, "box").StyleProp(widget.PropX); got != 15 {
		t.Errorf("expected box.x=15, got %d", got)
	}
	if got := mustWidget(t, m, "s").Value(); got != 40 {
		t.Errorf("expected slider bound to 40, got %d", got)
	}
	if len(m.feed.Entries()) == 0 {
		t.Error("expected journal entries")
	}
}

func TestPauseStopsPlayback(t *testing.T) {
	m, _ := newPlayer(t, true)
	m = send(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.Playing() {
		t.Fatal("expected paused after space")
	}
	m = send(m, frameMsg{})
	if m.Position() != 0 || m.rt.CurrentTick() != 0 {
		t.Errorf("paused player should not tick, position=%v tick=%d", m.Position(), m.rt.CurrentTick())
	}
}

func TestNoLoopStopsAtEnd(t *testing.T) {
	m, _ := newPlayer(t, false)
	for i := 0; i < 12; i++ {
		m = send(m, frameMsg{})
	}
	if m.Playing() {
		t.Error("expected playback to stop at the end of the timeline")
	}
	if got := mustWidget(t, m, "box").StyleProp(widget.PropX); got != 30 {
		t.Errorf("expected box.x=30 past the end, got %d", got)
	}
}

func TestScrubUsesSharedPosition(t *testing.T) {
	m, _ := newPlayer(t, true)
	m = send(m, tea.KeyMsg{Type: tea.KeyRight})
	m = send(m, tea.KeyMsg{Type: tea.KeyRight})
	if got := mustWidget(t, m, "box").StyleProp(widget.PropX); got != 6 {
		t.Errorf("expected box.x=6 at 0.2, got %d", got)
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Position() != 0 {
		t.Errorf("expected scrub clamped at 0, got %v", m.Position())
	}
}

func TestNudgeVarReachesWidgetOnNextTick(t *testing.T) {
	m, _ := newPlayer(t, true)
	m = send(m, runes("+"))
	m = send(m, frameMsg{})
	if got := mustWidget(t, m, "s").Value(); got != 45 {
		t.Errorf("expected slider 45 after +, got %d", got)
	}
	m = send(m, runes("-"))
	m = send(m, runes("-"))
	m = send(m, frameMsg{})
	if got := mustWidget(t, m, "s").Value(); got != 35 {
		t.Errorf("expected slider 35 after two -, got %d", got)
	}
}

func TestUserEditForwardedToFlow(t *testing.T) {
	m, ev := newPlayer(t, true)
	m = send(m, frameMsg{})

	m = send(m, runes("j")) // select the slider
	m = send(m, runes("u"))
	v, _ := m.Scene().Root.Get(0, 0)
	if v != int32(50) {
		t.Errorf("expected edit forwarded as 50, got %#v", v)
	}
	if ev.Assignments() != 1 {
		t.Errorf("expected exactly one assignment, got %d", ev.Assignments())
	}

	m = send(m, frameMsg{})
	if ev.Assignments() != 1 {
		t.Errorf("binding replay must not echo back to the flow, got %d assignments", ev.Assignments())
	}
}

func TestResetRebuildsScene(t *testing.T) {
	m, _ := newPlayer(t, true)
	old := mustWidget(t, m, "box")
	for i := 0; i < 3; i++ {
		m = send(m, frameMsg{})
	}
	m = send(m, runes("r"))

	if mustWidget(t, m, "box") == old {
		t.Error("expected a freshly built widget tree")
	}
	if m.rt.CurrentTick() != 0 || len(m.feed.Entries()) != 0 {
		t.Errorf("expected runtime and journal cleared, tick=%d entries=%d",
			m.rt.CurrentTick(), len(m.feed.Entries()))
	}
	if m.rt.Timelines().Len() != 1 || len(m.rt.Bindings()) != 1 {
		t.Error("expected keyframes and bindings re-registered")
	}
}

func TestViewRendersPanes(t *testing.T) {
	m, _ := newPlayer(t, true)
	m = send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = send(m, frameMsg{})

	view := m.View()
	for _, want := range []string{"TWEENFLOW", "Stage", "Inspector", "Timeline", "Journal", "box"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = send(m, tea.WindowSizeMsg{Width: 50, Height: 20})
	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if !strings.Contains(m.View(), "Inspector") {
		t.Error("compact layout should show the focused pane")
	}
}

func TestFeedKeepsLimit(t *testing.T) {
	f := NewFeed(nil, 3)
	for i := 0; i < 5; i++ {
		f.OnWrites([]engine.Write{{Tick: uint64(i)}})
	}
	got := f.Entries()
	if len(got) != 3 || got[0].Tick() != 2 || got[2].Tick() != 4 {
		t.Errorf("unexpected entries %+v", got)
	}
}
