// Package update keeps widget properties in sync with flow-side values.
//
// Every tick the engine replays a FIFO queue of update tasks: each task
// pulls a fresh value from the flow evaluator, compares it with what the
// widget currently shows, and writes only on a real difference. Writing
// a value raises change events on the widget; the Guard lets the
// forwarders in this package recognise and drop those echoes.
package update

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
)

var (
	// ErrEval is wrapped around evaluator failures.
	ErrEval = errors.New("evaluation failed")
	// ErrStaleTarget is returned when the target lacks the capability
	// the task needs, or no longer resolves.
	ErrStaleTarget = errors.New("stale target")
	// ErrConstraint is returned when a fresh value would violate a
	// widget range invariant and the write was rejected.
	ErrConstraint = errors.New("constraint violated")
)

// Kind identifies the synchronized property of a task.
type Kind int

const (
	KindLabelText Kind = iota + 1
	KindTextareaText
	KindDropdownOptions
	KindDropdownSelected
	KindRollerOptions
	KindRollerSelected
	KindSliderValue
	KindSliderValueLeft
	KindArcRangeMin
	KindArcRangeMax
	KindArcValue
	KindBarValue
	KindBarValueStart
	KindCheckedState
	KindDisabledState
	KindHiddenFlag
	KindClickableFlag
	KindMeterIndicatorValue
	KindMeterIndicatorStartValue
	KindMeterIndicatorEndValue
	KindTabName
	KindLEDColor
	KindLEDBrightness
	KindSpinboxValue
	KindSpinboxStep
	KindSpinboxMin
	KindSpinboxMax
	KindSpinboxDigitCount
	KindSpinboxSeparator
)

var kindNames = map[Kind]string{
	KindLabelText:                "label-text",
	KindTextareaText:             "textarea-text",
	KindDropdownOptions:          "dropdown-options",
	KindDropdownSelected:         "dropdown-selected",
	KindRollerOptions:            "roller-options",
	KindRollerSelected:           "roller-selected",
	KindSliderValue:              "slider-value",
	KindSliderValueLeft:          "slider-value-left",
	KindArcRangeMin:              "arc-range-min",
	KindArcRangeMax:              "arc-range-max",
	KindArcValue:                 "arc-value",
	KindBarValue:                 "bar-value",
	KindBarValueStart:            "bar-value-start",
	KindCheckedState:             "checked-state",
	KindDisabledState:            "disabled-state",
	KindHiddenFlag:               "hidden-flag",
	KindClickableFlag:            "clickable-flag",
	KindMeterIndicatorValue:      "meter-indicator-value",
	KindMeterIndicatorStartValue: "meter-indicator-start-value",
	KindMeterIndicatorEndValue:   "meter-indicator-end-value",
	KindTabName:                  "tab-name",
	KindLEDColor:                 "led-color",
	KindLEDBrightness:            "led-brightness",
	KindSpinboxValue:             "spinbox-value",
	KindSpinboxStep:              "spinbox-step",
	KindSpinboxMin:               "spinbox-min",
	KindSpinboxMax:               "spinbox-max",
	KindSpinboxDigitCount:        "spinbox-digit-count",
	KindSpinboxSeparator:         "spinbox-separator",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kebab-case kind name.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown update task kind %q", s)
}

// Write records one widget property change made by a task. Values are
// rendered as text so every kind shares one record shape.
type Write struct {
	Kind     Kind
	Target   any
	Property string
	Old      string
	New      string
}

// Task is one registered synchronization. The concrete types in this
// package are the only implementations.
type Task interface {
	Kind() Kind
	Target() any
	Source() flow.Source
	apply(ev flow.Evaluator) (*Write, error)
}

// Params carries the kind-specific fields accepted by New.
type Params struct {
	// Animate requests an animated value change (slider, bar).
	Animate bool
	// Indicator is the meter sub-target.
	Indicator *widget.Indicator
	// Tab is the tab index for KindTabName.
	Tab int
	// Mode is the roller mode for KindRollerOptions.
	Mode widget.RollerMode
}

// New builds the task variant for kind.
func New(kind Kind, target any, src flow.Source, p Params) (Task, error) {
	b := base{obj: target, src: src}
	switch kind {
	case KindLabelText:
		return &LabelText{b}, nil
	case KindTextareaText:
		return &TextareaText{b}, nil
	case KindDropdownOptions:
		return &DropdownOptions{b}, nil
	case KindDropdownSelected:
		return &DropdownSelected{b}, nil
	case KindRollerOptions:
		return &RollerOptions{base: b, Mode: p.Mode}, nil
	case KindRollerSelected:
		return &RollerSelected{b}, nil
	case KindSliderValue:
		return &SliderValue{base: b, Animate: p.Animate}, nil
	case KindSliderValueLeft:
		return &SliderValueLeft{base: b, Animate: p.Animate}, nil
	case KindArcRangeMin:
		return &ArcRangeMin{b}, nil
	case KindArcRangeMax:
		return &ArcRangeMax{b}, nil
	case KindArcValue:
		return &ArcValue{b}, nil
	case KindBarValue:
		return &BarValue{base: b, Animate: p.Animate}, nil
	case KindBarValueStart:
		return &BarValueStart{base: b, Animate: p.Animate}, nil
	case KindCheckedState:
		return &CheckedState{b}, nil
	case KindDisabledState:
		return &DisabledState{b}, nil
	case KindHiddenFlag:
		return &HiddenFlag{b}, nil
	case KindClickableFlag:
		return &ClickableFlag{b}, nil
	case KindMeterIndicatorValue, KindMeterIndicatorStartValue, KindMeterIndicatorEndValue:
		if p.Indicator == nil {
			return nil, fmt.Errorf("%s task needs an indicator", kind)
		}
		switch kind {
		case KindMeterIndicatorValue:
			return &MeterIndicatorValue{base: b, Indicator: p.Indicator}, nil
		case KindMeterIndicatorStartValue:
			return &MeterIndicatorStartValue{base: b, Indicator: p.Indicator}, nil
		default:
			return &MeterIndicatorEndValue{base: b, Indicator: p.Indicator}, nil
		}
	case KindTabName:
		if p.Tab < 0 {
			return nil, fmt.Errorf("tab index %d out of range", p.Tab)
		}
		return &TabName{base: b, Tab: p.Tab}, nil
	case KindLEDColor:
		return &LEDColor{b}, nil
	case KindLEDBrightness:
		return &LEDBrightness{b}, nil
	case KindSpinboxValue:
		return &SpinboxValue{b}, nil
	case KindSpinboxStep:
		return &SpinboxStep{b}, nil
	case KindSpinboxMin:
		return &SpinboxMin{b}, nil
	case KindSpinboxMax:
		return &SpinboxMax{b}, nil
	case KindSpinboxDigitCount:
		return &SpinboxDigitCount{b}, nil
	case KindSpinboxSeparator:
		return &SpinboxSeparator{b}, nil
	}
	return nil, fmt.Errorf("unknown update task kind %d", int(kind))
}

type base struct {
	obj any
	src flow.Source
}

func (b base) Target() any         { return b.obj }
func (b base) Source() flow.Source { return b.src }

// ────────────────────────────────────────────────────────────────
// Evaluation helpers
// ────────────────────────────────────────────────────────────────

func evalInt(ev flow.Evaluator, src flow.Source, what string) (int32, error) {
	v, err := ev.EvalInteger(src)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrEval, what, err)
	}
	return v, nil
}

func evalText(ev flow.Evaluator, src flow.Source, what string) (string, error) {
	v, err := ev.EvalText(src)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrEval, what, err)
	}
	return v, nil
}

func evalBool(ev flow.Evaluator, src flow.Source, what string) (bool, error) {
	v, err := ev.EvalBoolean(src)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrEval, what, err)
	}
	return v, nil
}

func evalJoined(ev flow.Evaluator, src flow.Source, what string) (string, error) {
	v, err := ev.EvalStringArrayJoined(src, "\n")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrEval, what, err)
	}
	return v, nil
}

func stale(target any, capability string) error {
	return fmt.Errorf("%w: %v is not a %s", ErrStaleTarget, target, capability)
}

func rejected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConstraint, fmt.Sprintf(format, args...))
}

// set writes next through apply when it differs from cur.
func set[T comparable](kind Kind, target any, prop string, cur, next T, apply func(T)) *Write {
	if cur == next {
		return nil
	}
	apply(next)
	return &Write{
		Kind:     kind,
		Target:   target,
		Property: prop,
		Old:      fmt.Sprint(cur),
		New:      fmt.Sprint(next),
	}
}
