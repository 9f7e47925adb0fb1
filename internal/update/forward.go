package update

import (
	"fmt"

	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
)

// Forwarder turns widget change events into flow-side assignments.
// Events raised by the target the guard marks active are dropped.
type Forwarder struct {
	Guard    *Guard
	Assigner flow.Assigner
	// OnError receives assignment failures. Nil discards them.
	OnError func(kind Kind, err error)
}

// Forwards reports whether user edits of kind can be written back.
func Forwards(kind Kind) bool {
	switch kind {
	case KindTextareaText, KindCheckedState,
		KindDropdownSelected, KindRollerSelected,
		KindSliderValue, KindSliderValueLeft,
		KindBarValue, KindBarValueStart, KindArcValue,
		KindSpinboxValue, KindSpinboxStep, KindSpinboxMin, KindSpinboxMax,
		KindSpinboxDigitCount, KindSpinboxSeparator:
		return true
	}
	return false
}

// Attach registers a change handler on target that assigns edits of
// kind to src.
func (f *Forwarder) Attach(kind Kind, target widget.EventSource, src flow.Source) error {
	h, err := f.Handler(kind, src)
	if err != nil {
		return err
	}
	target.AddEventHandler(h)
	return nil
}

// Handler builds the change handler for kind.
func (f *Forwarder) Handler(kind Kind, src flow.Source) (widget.EventHandler, error) {
	if !Forwards(kind) {
		return nil, fmt.Errorf("%s is not forwarded to the flow", kind)
	}
	return func(e widget.Event) {
		if e.Code != widget.EventValueChanged {
			return
		}
		if f.Guard != nil && f.Guard.Suppresses(e.Target) {
			return
		}
		if err := f.forward(kind, e.Target, src); err != nil && f.OnError != nil {
			f.OnError(kind, err)
		}
	}, nil
}

func (f *Forwarder) forward(kind Kind, target any, src flow.Source) error {
	switch kind {
	case KindTextareaText:
		w, ok := target.(widget.Texter)
		if !ok {
			return stale(target, "textarea")
		}
		return f.Assigner.AssignString(src, w.Text())

	case KindCheckedState:
		w, ok := target.(widget.Stateful)
		if !ok {
			return stale(target, "stateful object")
		}
		return f.Assigner.AssignBoolean(src, w.HasState(widget.StateChecked))

	case KindDropdownSelected, KindRollerSelected:
		w, ok := target.(widget.Selector)
		if !ok {
			return stale(target, "selector")
		}
		return f.Assigner.AssignInteger(src, int32(w.Selected()))

	case KindSliderValue, KindBarValue, KindArcValue, KindSpinboxValue:
		w, ok := target.(widget.Valued)
		if !ok {
			return stale(target, "valued widget")
		}
		return f.Assigner.AssignInteger(src, w.Value())

	case KindSliderValueLeft, KindBarValueStart:
		w, ok := target.(widget.StartValued)
		if !ok {
			return stale(target, "range widget")
		}
		return f.Assigner.AssignInteger(src, w.StartValue())

	case KindSpinboxStep:
		w, ok := target.(widget.Stepped)
		if !ok {
			return stale(target, "spinbox")
		}
		return f.Assigner.AssignInteger(src, w.Step())

	case KindSpinboxMin, KindSpinboxMax:
		w, ok := target.(widget.Ranged)
		if !ok {
			return stale(target, "spinbox")
		}
		if kind == KindSpinboxMin {
			return f.Assigner.AssignInteger(src, w.Min())
		}
		return f.Assigner.AssignInteger(src, w.Max())

	case KindSpinboxDigitCount:
		w, ok := target.(widget.DigitFormatted)
		if !ok {
			return stale(target, "spinbox")
		}
		return f.Assigner.AssignInteger(src, int32(w.DigitCount()))

	case KindSpinboxSeparator:
		w, ok := target.(widget.DigitFormatted)
		if !ok {
			return stale(target, "spinbox")
		}
		// Only a separator inside the digit run is meaningful.
		if v := w.SeparatorPos(); v > 0 && v <= w.DigitCount()-1 {
			return f.Assigner.AssignInteger(src, int32(v))
		}
		return nil
	}
	return nil
}
