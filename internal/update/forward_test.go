package update

import (
	"testing"

	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
)

func TestGuardStates(t *testing.T) {
	var g Guard
	a, b := widget.New("a", widget.KindSlider), widget.New("b", widget.KindSlider)

	if g.State() != Idle || g.Suppresses(a) {
		t.Fatal("new guard should be idle")
	}
	g.Begin(a)
	if g.State() != TaskActive {
		t.Errorf("expected TASK_ACTIVE, got %s", g.State())
	}
	if !g.Suppresses(a) {
		t.Error("expected events from the active target to be suppressed")
	}
	if g.Suppresses(b) {
		t.Error("events from other targets must pass")
	}
	g.End()
	if _, active := g.Active(); active || g.Suppresses(a) {
		t.Error("guard should be idle after End")
	}
}

func TestEchoSuppressed(t *testing.T) {
	st := flow.NewState("main")
	src := flow.Source{State: st}
	st.Set(0, 0, int32(40))
	slider := widget.New("s", widget.KindSlider)

	ev := flow.NewEvaluator()
	g := &Guard{}
	fwd := &Forwarder{Guard: g, Assigner: ev}
	if err := fwd.Attach(KindSliderValue, slider, src); err != nil {
		t.Fatal(err)
	}

	q := NewQueue()
	q.Enqueue(mustTask(t, KindSliderValue, slider, src, Params{}))
	if rep := q.Replay(ev, g); rep.Applied != 1 {
		t.Fatalf("expected write, got %+v", rep)
	}
	if ev.Assignments() != 0 {
		t.Errorf("echo of a task write was assigned back %d times", ev.Assignments())
	}

	slider.SetValue(70, false)
	if ev.Assignments() != 1 {
		t.Fatalf("expected user edit to be forwarded, got %d assignments", ev.Assignments())
	}
	if v, _ := st.Get(0, 0); v != int32(70) {
		t.Errorf("expected flow value 70, got %v", v)
	}
}

func TestForwardOtherTargetDuringReplay(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, int32(10))
	a := widget.New("a", widget.KindSlider)
	b := widget.New("b", widget.KindSlider)

	ev := flow.NewEvaluator()
	g := &Guard{}
	fwd := &Forwarder{Guard: g, Assigner: ev}
	if err := fwd.Attach(KindSliderValue, b, flow.Source{State: st, Property: 1}); err != nil {
		t.Fatal(err)
	}
	// b mirrors a from inside a's change handler.
	a.AddEventHandler(func(e widget.Event) { b.SetValue(a.Value(), false) })

	q := NewQueue()
	q.Enqueue(mustTask(t, KindSliderValue, a, flow.Source{State: st, Property: 0}, Params{}))
	q.Replay(ev, g)

	if v, _ := st.Get(0, 1); v != int32(10) {
		t.Errorf("expected change on another target to be forwarded, got %v", v)
	}
}

func TestForwardSeparatorOnlyInsideDigits(t *testing.T) {
	st := flow.NewState("main")
	src := flow.Source{State: st}
	spin := widget.New("sb", widget.KindSpinbox)

	ev := flow.NewEvaluator()
	fwd := &Forwarder{Guard: &Guard{}, Assigner: ev}
	if err := fwd.Attach(KindSpinboxSeparator, spin, src); err != nil {
		t.Fatal(err)
	}

	spin.SetDigitFormat(5, 0)
	if ev.Assignments() != 0 {
		t.Error("separator 0 must not be forwarded")
	}
	spin.SetDigitFormat(5, 3)
	if v, _ := st.Get(0, 0); v != int32(3) {
		t.Errorf("expected separator 3 forwarded, got %v", v)
	}
}

func TestForwardCheckedAndText(t *testing.T) {
	st := flow.NewState("main")
	ev := flow.NewEvaluator()
	fwd := &Forwarder{Guard: &Guard{}, Assigner: ev}

	cb := widget.New("cb", widget.KindCheckbox)
	ta := widget.New("ta", widget.KindTextarea)
	if err := fwd.Attach(KindCheckedState, cb, flow.Source{State: st, Property: 0}); err != nil {
		t.Fatal(err)
	}
	if err := fwd.Attach(KindTextareaText, ta, flow.Source{State: st, Property: 1}); err != nil {
		t.Fatal(err)
	}

	cb.AddState(widget.StateChecked)
	ta.SetText("typed")

	if v, _ := st.Get(0, 0); v != true {
		t.Errorf("expected checked=true, got %v", v)
	}
	if v, _ := st.Get(0, 1); v != "typed" {
		t.Errorf("expected text forwarded, got %v", v)
	}
}

func TestForwardErrorsReported(t *testing.T) {
	ev := flow.NewEvaluator()
	var got []error
	fwd := &Forwarder{Guard: &Guard{}, Assigner: ev, OnError: func(_ Kind, err error) { got = append(got, err) }}

	slider := widget.New("s", widget.KindSlider)
	if err := fwd.Attach(KindSliderValue, slider, flow.Source{State: nil}); err != nil {
		t.Fatal(err)
	}
	slider.SetValue(5, false)
	if len(got) != 1 {
		t.Errorf("expected one assignment error, got %v", got)
	}
}

func TestHandlerRejectsUnforwardedKind(t *testing.T) {
	fwd := &Forwarder{Guard: &Guard{}, Assigner: flow.NewEvaluator()}
	if _, err := fwd.Handler(KindLabelText, flow.Source{}); err == nil {
		t.Error("labels are display-only and must not get a forwarder")
	}
}
