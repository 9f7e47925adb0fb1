package update

import (
	"errors"
	"testing"

	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
)

func mustTask(t *testing.T, kind Kind, target any, src flow.Source, p Params) Task {
	t.Helper()
	task, err := New(kind, target, src, p)
	if err != nil {
		t.Fatalf("New(%s): %v", kind, err)
	}
	return task
}

func replayOne(t *testing.T, task Task) Report {
	t.Helper()
	q := NewQueue()
	q.Enqueue(task)
	return q.Replay(flow.NewEvaluator(), &Guard{})
}

func TestDiffSuppressesEqualValues(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, "hello")
	label := widget.New("title", widget.KindLabel)
	label.SetText("hello")
	label.ResetWrites()

	rep := replayOne(t, mustTask(t, KindLabelText, label, flow.Source{State: st}, Params{}))
	if rep.Unchanged != 1 || rep.Applied != 0 {
		t.Errorf("expected 1 unchanged, got %+v", rep)
	}
	if label.Writes() != 0 {
		t.Errorf("expected no setter calls, got %d", label.Writes())
	}
}

func TestReplayWritesAndClears(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, "first")
	st.Set(0, 1, "second")
	label := widget.New("title", widget.KindLabel)

	q := NewQueue()
	q.Enqueue(mustTask(t, KindLabelText, label, flow.Source{State: st, Property: 0}, Params{}))
	q.Enqueue(mustTask(t, KindLabelText, label, flow.Source{State: st, Property: 1}, Params{}))

	rep := q.Replay(flow.NewEvaluator(), &Guard{})
	if rep.Applied != 2 {
		t.Fatalf("expected 2 applied, got %+v", rep)
	}
	if label.Text() != "second" {
		t.Errorf("expected last enqueued value to win, got %q", label.Text())
	}
	if rep.Writes[0].New != "first" || rep.Writes[1].Old != "first" {
		t.Errorf("writes out of order: %+v", rep.Writes)
	}
	if q.Len() != 0 {
		t.Errorf("expected queue to be empty after replay, got %d", q.Len())
	}
}

func TestEvalFailureDoesNotAbortReplay(t *testing.T) {
	st := flow.NewState("main")
	st.Fail(0, 0, "division by zero")
	st.Set(0, 1, int32(42))
	slider := widget.New("s", widget.KindSlider)

	q := NewQueue()
	q.Enqueue(mustTask(t, KindSliderValue, slider, flow.Source{State: st, Property: 0}, Params{}))
	q.Enqueue(mustTask(t, KindArcValue, slider, flow.Source{State: st, Property: 1}, Params{}))

	rep := q.Replay(flow.NewEvaluator(), &Guard{})
	if rep.Failed != 1 || rep.Applied != 1 {
		t.Fatalf("expected 1 failed and 1 applied, got %+v", rep)
	}
	d := rep.Diagnostics[0]
	if !errors.Is(d, ErrEval) {
		t.Errorf("expected ErrEval, got %v", d.Err)
	}
	var ee *flow.EvalError
	if !errors.As(d.Err, &ee) || ee.Message != "division by zero" {
		t.Errorf("expected evaluator diagnostic, got %v", d.Err)
	}
	if slider.Value() != 42 {
		t.Errorf("expected value 42, got %d", slider.Value())
	}
}

func TestStaleTarget(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, "x")

	rep := replayOne(t, mustTask(t, KindLabelText, "not a widget", flow.Source{State: st}, Params{}))
	if rep.Stale != 1 {
		t.Fatalf("expected stale outcome, got %+v", rep)
	}
	if !errors.Is(rep.Diagnostics[0].Err, ErrStaleTarget) {
		t.Errorf("expected ErrStaleTarget, got %v", rep.Diagnostics[0].Err)
	}
}

func TestRangeBoundsRejected(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, int32(150))
	st.Set(0, 1, int32(-10))
	spin := widget.New("sb", widget.KindSpinbox)
	arc := widget.New("arc", widget.KindArc)

	q := NewQueue()
	q.Enqueue(mustTask(t, KindSpinboxMin, spin, flow.Source{State: st, Property: 0}, Params{}))
	q.Enqueue(mustTask(t, KindArcRangeMax, arc, flow.Source{State: st, Property: 1}, Params{}))

	rep := q.Replay(flow.NewEvaluator(), &Guard{})
	if rep.Rejected != 2 {
		t.Fatalf("expected 2 rejected, got %+v", rep)
	}
	for _, d := range rep.Diagnostics {
		if !errors.Is(d.Err, ErrConstraint) {
			t.Errorf("expected ErrConstraint, got %v", d.Err)
		}
	}
	if spin.Min() != 0 || spin.Max() != 100 || arc.Min() != 0 || arc.Max() != 100 {
		t.Errorf("range changed: spinbox [%d,%d] arc [%d,%d]", spin.Min(), spin.Max(), arc.Min(), arc.Max())
	}
}

func TestRangeBoundsAccepted(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, int32(10))
	st.Set(0, 1, int32(50))
	arc := widget.New("arc", widget.KindArc)

	q := NewQueue()
	q.Enqueue(mustTask(t, KindArcRangeMin, arc, flow.Source{State: st, Property: 0}, Params{}))
	q.Enqueue(mustTask(t, KindArcRangeMax, arc, flow.Source{State: st, Property: 1}, Params{}))

	rep := q.Replay(flow.NewEvaluator(), &Guard{})
	if rep.Applied != 2 {
		t.Fatalf("expected 2 applied, got %+v", rep)
	}
	if arc.Min() != 10 || arc.Max() != 50 {
		t.Errorf("expected range [10,50], got [%d,%d]", arc.Min(), arc.Max())
	}
}

func TestSpinboxValueOutsideRangeSkipped(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, int32(500))
	spin := widget.New("sb", widget.KindSpinbox)

	rep := replayOne(t, mustTask(t, KindSpinboxValue, spin, flow.Source{State: st}, Params{}))
	if rep.Rejected != 1 || spin.Value() != 0 {
		t.Errorf("expected rejection and unchanged value, got %+v value=%d", rep, spin.Value())
	}
}

func TestSpinboxDigitFormat(t *testing.T) {
	st := flow.NewState("main")
	src := flow.Source{State: st}
	spin := widget.New("sb", widget.KindSpinbox)

	st.Set(0, 0, int32(5))
	if rep := replayOne(t, mustTask(t, KindSpinboxSeparator, spin, src, Params{})); rep.Rejected != 1 {
		t.Errorf("separator at digit count should be rejected, got %+v", rep)
	}

	st.Set(0, 0, int32(2))
	if rep := replayOne(t, mustTask(t, KindSpinboxSeparator, spin, src, Params{})); rep.Applied != 1 {
		t.Fatalf("expected separator write, got %+v", rep)
	}
	if spin.SeparatorPos() != 2 {
		t.Errorf("expected separator 2, got %d", spin.SeparatorPos())
	}

	if rep := replayOne(t, mustTask(t, KindSpinboxDigitCount, spin, src, Params{})); rep.Rejected != 1 {
		t.Errorf("digit count equal to separator should be rejected, got %+v", rep)
	}

	st.Set(0, 0, int32(0))
	if rep := replayOne(t, mustTask(t, KindSpinboxDigitCount, spin, src, Params{})); rep.Rejected != 1 {
		t.Errorf("zero digits should be rejected, got %+v", rep)
	}

	st.Set(0, 0, int32(8))
	if rep := replayOne(t, mustTask(t, KindSpinboxDigitCount, spin, src, Params{})); rep.Applied != 1 {
		t.Errorf("expected digit count write, got %+v", rep)
	}
	if spin.DigitCount() != 8 || spin.SeparatorPos() != 2 {
		t.Errorf("expected 8 digits with separator 2, got %d/%d", spin.DigitCount(), spin.SeparatorPos())
	}
}

func TestLEDBrightnessClamped(t *testing.T) {
	st := flow.NewState("main")
	src := flow.Source{State: st}
	led := widget.New("led", widget.KindLED)

	st.Set(0, 0, int32(400))
	if rep := replayOne(t, mustTask(t, KindLEDBrightness, led, src, Params{})); rep.Unchanged != 1 {
		t.Errorf("clamped 255 equals current brightness, got %+v", rep)
	}

	st.Set(0, 0, int32(-20))
	replayOne(t, mustTask(t, KindLEDBrightness, led, src, Params{}))
	if led.Brightness() != 0 {
		t.Errorf("expected brightness 0, got %d", led.Brightness())
	}
}

func TestLEDColor(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, int32(0x12FF8800))
	led := widget.New("led", widget.KindLED)

	rep := replayOne(t, mustTask(t, KindLEDColor, led, flow.Source{State: st}, Params{}))
	if rep.Applied != 1 || led.Color() != 0xFF8800 {
		t.Errorf("expected color 0xFF8800, got %#x (%+v)", led.Color(), rep)
	}
}

func TestTabNameResolvesTabView(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, "Home")
	tv := widget.New("tabs", widget.KindTabView)
	page := tv.AddTab("One")

	rep := replayOne(t, mustTask(t, KindTabName, page, flow.Source{State: st}, Params{Tab: 0}))
	if rep.Applied != 1 {
		t.Fatalf("expected tab rename, got %+v", rep)
	}
	if name, _ := tv.TabName(0); name != "Home" {
		t.Errorf("expected tab name Home, got %q", name)
	}

	content := widget.New("content", widget.KindObj)
	tv.AddChild(content)
	nested := widget.New("nested", widget.KindTab)
	content.AddChild(nested)
	st.Set(0, 0, "Start")
	if rep := replayOne(t, mustTask(t, KindTabName, nested, flow.Source{State: st}, Params{Tab: 0})); rep.Applied != 1 {
		t.Fatalf("expected rename through grandparent, got %+v", rep)
	}

	orphan := widget.New("orphan", widget.KindTab)
	if rep := replayOne(t, mustTask(t, KindTabName, orphan, flow.Source{State: st}, Params{Tab: 0})); rep.Stale != 1 {
		t.Errorf("expected stale outcome for a page without tab view, got %+v", rep)
	}
}

func TestMeterIndicatorValue(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, int32(30))
	meter := widget.New("m", widget.KindMeter)
	needle := meter.AddIndicator("needle")

	rep := replayOne(t, mustTask(t, KindMeterIndicatorValue, meter, flow.Source{State: st}, Params{Indicator: needle}))
	if rep.Applied != 1 || needle.Start() != 30 || needle.End() != 30 {
		t.Errorf("expected needle at 30, got %d/%d (%+v)", needle.Start(), needle.End(), rep)
	}

	if _, err := New(KindMeterIndicatorEndValue, meter, flow.Source{State: st}, Params{}); err == nil {
		t.Error("expected error for meter task without indicator")
	}
}

func TestRollerModeChangeApplies(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, []string{"a", "b"})
	roller := widget.New("r", widget.KindRoller)
	roller.SetRollerOptions("a\nb", widget.RollerNormal)

	rep := replayOne(t, mustTask(t, KindRollerOptions, roller, flow.Source{State: st}, Params{Mode: widget.RollerInfinite}))
	if rep.Applied != 1 || roller.RollerMode() != widget.RollerInfinite {
		t.Errorf("expected mode change to apply, got %+v", rep)
	}
}

func TestBooleanStatesAndFlags(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, true)
	st.Set(0, 1, false)
	cb := widget.New("cb", widget.KindCheckbox)

	q := NewQueue()
	q.Enqueue(mustTask(t, KindCheckedState, cb, flow.Source{State: st, Property: 0}, Params{}))
	q.Enqueue(mustTask(t, KindHiddenFlag, cb, flow.Source{State: st, Property: 0}, Params{}))
	q.Enqueue(mustTask(t, KindClickableFlag, cb, flow.Source{State: st, Property: 1}, Params{}))
	q.Enqueue(mustTask(t, KindDisabledState, cb, flow.Source{State: st, Property: 1}, Params{}))

	rep := q.Replay(flow.NewEvaluator(), &Guard{})
	if rep.Applied != 3 || rep.Unchanged != 1 {
		t.Fatalf("expected 3 applied and 1 unchanged, got %+v", rep)
	}
	if !cb.HasState(widget.StateChecked) || !cb.HasFlag(widget.FlagHidden) || cb.HasFlag(widget.FlagClickable) {
		t.Errorf("unexpected state: checked=%v hidden=%v clickable=%v",
			cb.HasState(widget.StateChecked), cb.HasFlag(widget.FlagHidden), cb.HasFlag(widget.FlagClickable))
	}
}

func TestParseKind(t *testing.T) {
	for k := KindLabelText; k <= KindSpinboxSeparator; k++ {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("bogus"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestReplayWithoutEvaluatorFails(t *testing.T) {
	st := flow.NewState("main")
	st.Set(0, 0, "x")
	label := widget.New("title", widget.KindLabel)

	q := NewQueue()
	q.Enqueue(mustTask(t, KindLabelText, label, flow.Source{State: st}, Params{}))
	q.Enqueue(mustTask(t, KindSliderValue, widget.New("s", widget.KindSlider), flow.Source{State: st}, Params{}))

	g := &Guard{}
	rep := q.Replay(nil, g)
	if rep.Failed != 2 || rep.Applied != 0 {
		t.Fatalf("expected 2 failed, got %+v", rep)
	}
	if !errors.Is(rep.Diagnostics[0].Err, ErrEval) {
		t.Errorf("expected ErrEval, got %v", rep.Diagnostics[0].Err)
	}
	if g.State() != Idle {
		t.Errorf("guard should stay idle, got %s", g.State())
	}
	if label.Writes() != 0 {
		t.Errorf("expected no setter calls, got %d", label.Writes())
	}
}
