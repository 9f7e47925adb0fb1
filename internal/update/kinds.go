package update

import (
	"fmt"

	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
)

// ────────────────────────────────────────────────────────────────
// Text
// ────────────────────────────────────────────────────────────────

// LabelText syncs the text of a label.
type LabelText struct{ base }

func (*LabelText) Kind() Kind { return KindLabelText }

func (t *LabelText) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalText(ev, t.src, "text in label widget")
	if err != nil {
		return nil, err
	}
	w, ok := t.obj.(widget.Texter)
	if !ok {
		return nil, stale(t.obj, "label")
	}
	return set(KindLabelText, t.obj, "text", w.Text(), next, w.SetText), nil
}

// TextareaText syncs the text of a text area.
type TextareaText struct{ base }

func (*TextareaText) Kind() Kind { return KindTextareaText }

func (t *TextareaText) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalText(ev, t.src, "text in textarea widget")
	if err != nil {
		return nil, err
	}
	w, ok := t.obj.(widget.Texter)
	if !ok {
		return nil, stale(t.obj, "textarea")
	}
	return set(KindTextareaText, t.obj, "text", w.Text(), next, w.SetText), nil
}

// TabName syncs the title of one tab. The target is the tab page; its
// tab view is found at the parent, or the grandparent when the page
// sits inside a content container.
type TabName struct {
	base
	Tab int
}

func (*TabName) Kind() Kind { return KindTabName }

func (t *TabName) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalText(ev, t.src, "tab name")
	if err != nil {
		return nil, err
	}
	tv := tabViewOf(t.obj)
	if tv == nil {
		return nil, stale(t.obj, "tab page")
	}
	cur, ok := tv.TabName(t.Tab)
	if !ok {
		return nil, stale(t.obj, fmt.Sprintf("tab view with tab %d", t.Tab))
	}
	prop := fmt.Sprintf("tab[%d]", t.Tab)
	return set(KindTabName, t.obj, prop, cur, next, func(s string) { tv.RenameTab(t.Tab, s) }), nil
}

func tabViewOf(obj any) widget.TabView {
	n, ok := obj.(widget.Node)
	if !ok {
		return nil
	}
	parent := n.ParentNode()
	if parent == nil {
		return nil
	}
	if tv, ok := parent.(widget.TabView); ok && isTabView(tv) {
		return tv
	}
	grand := parent.ParentNode()
	if grand == nil {
		return nil
	}
	if tv, ok := grand.(widget.TabView); ok && isTabView(tv) {
		return tv
	}
	return nil
}

// isTabView filters handles that implement TabView structurally but are
// not tab views, such as the in-memory Object of another kind.
func isTabView(tv widget.TabView) bool {
	if o, ok := tv.(*widget.Object); ok {
		return o.Kind() == widget.KindTabView
	}
	return true
}

// ────────────────────────────────────────────────────────────────
// Options and selection
// ────────────────────────────────────────────────────────────────

// DropdownOptions syncs the option list of a dropdown.
type DropdownOptions struct{ base }

func (*DropdownOptions) Kind() Kind { return KindDropdownOptions }

func (t *DropdownOptions) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalJoined(ev, t.src, "options in dropdown widget")
	if err != nil {
		return nil, err
	}
	w, ok := t.obj.(widget.Optioner)
	if !ok {
		return nil, stale(t.obj, "dropdown")
	}
	return set(KindDropdownOptions, t.obj, "options", w.Options(), next, w.SetOptions), nil
}

// DropdownSelected syncs the selected index of a dropdown.
type DropdownSelected struct{ base }

func (*DropdownSelected) Kind() Kind { return KindDropdownSelected }

func (t *DropdownSelected) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalInt(ev, t.src, "selected in dropdown widget")
	if err != nil {
		return nil, err
	}
	w, ok := t.obj.(widget.Selector)
	if !ok {
		return nil, stale(t.obj, "dropdown")
	}
	return set(KindDropdownSelected, t.obj, "selected", w.Selected(), int(next), w.SetSelected), nil
}

// RollerOptions syncs the option list and mode of a roller.
type RollerOptions struct {
	base
	Mode widget.RollerMode
}

func (*RollerOptions) Kind() Kind { return KindRollerOptions }

func (t *RollerOptions) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalJoined(ev, t.src, "options in roller widget")
	if err != nil {
		return nil, err
	}
	w, ok := t.obj.(widget.Roller)
	if !ok {
		return nil, stale(t.obj, "roller")
	}
	cur := w.RollerOptions()
	if cur == next && w.RollerMode() == t.Mode {
		return nil, nil
	}
	w.SetRollerOptions(next, t.Mode)
	return &Write{Kind: KindRollerOptions, Target: t.obj, Property: "options", Old: cur, New: next}, nil
}

// RollerSelected syncs the selected index of a roller.
type RollerSelected struct{ base }

func (*RollerSelected) Kind() Kind { return KindRollerSelected }

func (t *RollerSelected) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalInt(ev, t.src, "selected in roller widget")
	if err != nil {
		return nil, err
	}
	w, ok := t.obj.(widget.Selector)
	if !ok {
		return nil, stale(t.obj, "roller")
	}
	return set(KindRollerSelected, t.obj, "selected", w.Selected(), int(next), w.SetSelected), nil
}

// ────────────────────────────────────────────────────────────────
// Values
// ────────────────────────────────────────────────────────────────

// SliderValue syncs the value of a slider.
type SliderValue struct {
	base
	Animate bool
}

func (*SliderValue) Kind() Kind { return KindSliderValue }

func (t *SliderValue) apply(ev flow.Evaluator) (*Write, error) {
	return applyValue(ev, t.base, KindSliderValue, "value in slider widget", t.Animate)
}

// SliderValueLeft syncs the left value of a range slider.
type SliderValueLeft struct {
	base
	Animate bool
}

func (*SliderValueLeft) Kind() Kind { return KindSliderValueLeft }

func (t *SliderValueLeft) apply(ev flow.Evaluator) (*Write, error) {
	return applyStartValue(ev, t.base, KindSliderValueLeft, "value left in slider widget", t.Animate)
}

// BarValue syncs the value of a bar.
type BarValue struct {
	base
	Animate bool
}

func (*BarValue) Kind() Kind { return KindBarValue }

func (t *BarValue) apply(ev flow.Evaluator) (*Write, error) {
	return applyValue(ev, t.base, KindBarValue, "value in bar widget", t.Animate)
}

// BarValueStart syncs the start value of a range bar.
type BarValueStart struct {
	base
	Animate bool
}

func (*BarValueStart) Kind() Kind { return KindBarValueStart }

func (t *BarValueStart) apply(ev flow.Evaluator) (*Write, error) {
	return applyStartValue(ev, t.base, KindBarValueStart, "value start in bar widget", t.Animate)
}

// ArcValue syncs the value of an arc.
type ArcValue struct{ base }

func (*ArcValue) Kind() Kind { return KindArcValue }

func (t *ArcValue) apply(ev flow.Evaluator) (*Write, error) {
	return applyValue(ev, t.base, KindArcValue, "value in arc widget", false)
}

func applyValue(ev flow.Evaluator, b base, kind Kind, what string, animate bool) (*Write, error) {
	next, err := evalInt(ev, b.src, what)
	if err != nil {
		return nil, err
	}
	w, ok := b.obj.(widget.Valued)
	if !ok {
		return nil, stale(b.obj, "valued widget")
	}
	return set(kind, b.obj, "value", w.Value(), next, func(v int32) { w.SetValue(v, animate) }), nil
}

func applyStartValue(ev flow.Evaluator, b base, kind Kind, what string, animate bool) (*Write, error) {
	next, err := evalInt(ev, b.src, what)
	if err != nil {
		return nil, err
	}
	w, ok := b.obj.(widget.StartValued)
	if !ok {
		return nil, stale(b.obj, "range widget")
	}
	return set(kind, b.obj, "start_value", w.StartValue(), next, func(v int32) { w.SetStartValue(v, animate) }), nil
}

// ────────────────────────────────────────────────────────────────
// Ranges
// ────────────────────────────────────────────────────────────────

// ArcRangeMin syncs the lower bound of an arc.
type ArcRangeMin struct{ base }

func (*ArcRangeMin) Kind() Kind { return KindArcRangeMin }

func (t *ArcRangeMin) apply(ev flow.Evaluator) (*Write, error) {
	return applyMin(ev, t.base, KindArcRangeMin, "range min in arc widget")
}

// ArcRangeMax syncs the upper bound of an arc.
type ArcRangeMax struct{ base }

func (*ArcRangeMax) Kind() Kind { return KindArcRangeMax }

func (t *ArcRangeMax) apply(ev flow.Evaluator) (*Write, error) {
	return applyMax(ev, t.base, KindArcRangeMax, "range max in arc widget")
}

// SpinboxMin syncs the lower bound of a spinbox.
type SpinboxMin struct{ base }

func (*SpinboxMin) Kind() Kind { return KindSpinboxMin }

func (t *SpinboxMin) apply(ev flow.Evaluator) (*Write, error) {
	return applyMin(ev, t.base, KindSpinboxMin, "min in spinbox widget")
}

// SpinboxMax syncs the upper bound of a spinbox.
type SpinboxMax struct{ base }

func (*SpinboxMax) Kind() Kind { return KindSpinboxMax }

func (t *SpinboxMax) apply(ev flow.Evaluator) (*Write, error) {
	return applyMax(ev, t.base, KindSpinboxMax, "max in spinbox widget")
}

// applyMin writes a new lower bound only while it stays strictly below
// the current upper bound.
func applyMin(ev flow.Evaluator, b base, kind Kind, what string) (*Write, error) {
	next, err := evalInt(ev, b.src, what)
	if err != nil {
		return nil, err
	}
	w, ok := b.obj.(widget.Ranged)
	if !ok {
		return nil, stale(b.obj, "ranged widget")
	}
	cur, hi := w.Min(), w.Max()
	if next == cur {
		return nil, nil
	}
	if next >= hi {
		return nil, rejected("min %d must be below max %d", next, hi)
	}
	return set(kind, b.obj, "min", cur, next, func(v int32) { w.SetRange(v, hi) }), nil
}

// applyMax writes a new upper bound only while it stays strictly above
// the current lower bound.
func applyMax(ev flow.Evaluator, b base, kind Kind, what string) (*Write, error) {
	next, err := evalInt(ev, b.src, what)
	if err != nil {
		return nil, err
	}
	w, ok := b.obj.(widget.Ranged)
	if !ok {
		return nil, stale(b.obj, "ranged widget")
	}
	lo, cur := w.Min(), w.Max()
	if next == cur {
		return nil, nil
	}
	if next <= lo {
		return nil, rejected("max %d must be above min %d", next, lo)
	}
	return set(kind, b.obj, "max", cur, next, func(v int32) { w.SetRange(lo, v) }), nil
}

// ────────────────────────────────────────────────────────────────
// States and flags
// ────────────────────────────────────────────────────────────────

// CheckedState syncs the checked state bit.
type CheckedState struct{ base }

func (*CheckedState) Kind() Kind { return KindCheckedState }

func (t *CheckedState) apply(ev flow.Evaluator) (*Write, error) {
	return applyState(ev, t.base, KindCheckedState, "checked state", widget.StateChecked)
}

// DisabledState syncs the disabled state bit.
type DisabledState struct{ base }

func (*DisabledState) Kind() Kind { return KindDisabledState }

func (t *DisabledState) apply(ev flow.Evaluator) (*Write, error) {
	return applyState(ev, t.base, KindDisabledState, "disabled state", widget.StateDisabled)
}

// HiddenFlag syncs the hidden flag.
type HiddenFlag struct{ base }

func (*HiddenFlag) Kind() Kind { return KindHiddenFlag }

func (t *HiddenFlag) apply(ev flow.Evaluator) (*Write, error) {
	return applyFlag(ev, t.base, KindHiddenFlag, "hidden flag", widget.FlagHidden)
}

// ClickableFlag syncs the clickable flag.
type ClickableFlag struct{ base }

func (*ClickableFlag) Kind() Kind { return KindClickableFlag }

func (t *ClickableFlag) apply(ev flow.Evaluator) (*Write, error) {
	return applyFlag(ev, t.base, KindClickableFlag, "clickable flag", widget.FlagClickable)
}

func applyState(ev flow.Evaluator, b base, kind Kind, what string, s widget.State) (*Write, error) {
	next, err := evalBool(ev, b.src, what)
	if err != nil {
		return nil, err
	}
	w, ok := b.obj.(widget.Stateful)
	if !ok {
		return nil, stale(b.obj, "stateful object")
	}
	return set(kind, b.obj, kind.String(), w.HasState(s), next, func(on bool) {
		if on {
			w.AddState(s)
		} else {
			w.ClearState(s)
		}
	}), nil
}

func applyFlag(ev flow.Evaluator, b base, kind Kind, what string, f widget.Flag) (*Write, error) {
	next, err := evalBool(ev, b.src, what)
	if err != nil {
		return nil, err
	}
	w, ok := b.obj.(widget.Flagged)
	if !ok {
		return nil, stale(b.obj, "flagged object")
	}
	return set(kind, b.obj, kind.String(), w.HasFlag(f), next, func(on bool) {
		if on {
			w.AddFlag(f)
		} else {
			w.ClearFlag(f)
		}
	}), nil
}

// ────────────────────────────────────────────────────────────────
// Meter indicators
// ────────────────────────────────────────────────────────────────

// MeterIndicatorValue moves a needle indicator. The current value is
// read from the indicator start.
type MeterIndicatorValue struct {
	base
	Indicator *widget.Indicator
}

func (*MeterIndicatorValue) Kind() Kind { return KindMeterIndicatorValue }

func (t *MeterIndicatorValue) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalInt(ev, t.src, "indicator value in meter widget")
	if err != nil {
		return nil, err
	}
	m, ok := t.obj.(widget.IndicatorHost)
	if !ok {
		return nil, stale(t.obj, "meter")
	}
	prop := t.Indicator.Name() + ".value"
	return set(KindMeterIndicatorValue, t.obj, prop, t.Indicator.Start(), next, func(v int32) {
		m.SetIndicatorValue(t.Indicator, v)
	}), nil
}

// MeterIndicatorStartValue syncs the start of an arc or scale-line
// indicator.
type MeterIndicatorStartValue struct {
	base
	Indicator *widget.Indicator
}

func (*MeterIndicatorStartValue) Kind() Kind { return KindMeterIndicatorStartValue }

func (t *MeterIndicatorStartValue) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalInt(ev, t.src, "indicator start value in meter widget")
	if err != nil {
		return nil, err
	}
	m, ok := t.obj.(widget.IndicatorHost)
	if !ok {
		return nil, stale(t.obj, "meter")
	}
	prop := t.Indicator.Name() + ".start"
	return set(KindMeterIndicatorStartValue, t.obj, prop, t.Indicator.Start(), next, func(v int32) {
		m.SetIndicatorStartValue(t.Indicator, v)
	}), nil
}

// MeterIndicatorEndValue syncs the end of an arc or scale-line
// indicator.
type MeterIndicatorEndValue struct {
	base
	Indicator *widget.Indicator
}

func (*MeterIndicatorEndValue) Kind() Kind { return KindMeterIndicatorEndValue }

func (t *MeterIndicatorEndValue) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalInt(ev, t.src, "indicator end value in meter widget")
	if err != nil {
		return nil, err
	}
	m, ok := t.obj.(widget.IndicatorHost)
	if !ok {
		return nil, stale(t.obj, "meter")
	}
	prop := t.Indicator.Name() + ".end"
	return set(KindMeterIndicatorEndValue, t.obj, prop, t.Indicator.End(), next, func(v int32) {
		m.SetIndicatorEndValue(t.Indicator, v)
	}), nil
}

// ────────────────────────────────────────────────────────────────
// LED
// ────────────────────────────────────────────────────────────────

// LEDColor syncs the color of an LED as 0xRRGGBB.
type LEDColor struct{ base }

func (*LEDColor) Kind() Kind { return KindLEDColor }

func (t *LEDColor) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalInt(ev, t.src, "color in led widget")
	if err != nil {
		return nil, err
	}
	w, ok := t.obj.(widget.LED)
	if !ok {
		return nil, stale(t.obj, "led")
	}
	return set(KindLEDColor, t.obj, "color", w.Color(), uint32(next)&0xFFFFFF, w.SetColor), nil
}

// LEDBrightness syncs the brightness of an LED. Values are clamped to
// 0..255 before comparison.
type LEDBrightness struct{ base }

func (*LEDBrightness) Kind() Kind { return KindLEDBrightness }

func (t *LEDBrightness) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalInt(ev, t.src, "brightness in led widget")
	if err != nil {
		return nil, err
	}
	w, ok := t.obj.(widget.LED)
	if !ok {
		return nil, stale(t.obj, "led")
	}
	next = max(0, min(255, next))
	return set(KindLEDBrightness, t.obj, "brightness", w.Brightness(), uint8(next), w.SetBrightness), nil
}

// ────────────────────────────────────────────────────────────────
// Spinbox
// ────────────────────────────────────────────────────────────────

// SpinboxValue syncs the value of a spinbox. Values outside the
// current range are skipped.
type SpinboxValue struct{ base }

func (*SpinboxValue) Kind() Kind { return KindSpinboxValue }

func (t *SpinboxValue) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalInt(ev, t.src, "value in spinbox widget")
	if err != nil {
		return nil, err
	}
	v, ok := t.obj.(widget.Valued)
	r, ok2 := t.obj.(widget.Ranged)
	if !ok || !ok2 {
		return nil, stale(t.obj, "spinbox")
	}
	cur := v.Value()
	if next == cur {
		return nil, nil
	}
	if next < r.Min() || next > r.Max() {
		return nil, rejected("value %d outside [%d, %d]", next, r.Min(), r.Max())
	}
	return set(KindSpinboxValue, t.obj, "value", cur, next, func(n int32) { v.SetValue(n, false) }), nil
}

// SpinboxStep syncs the step of a spinbox.
type SpinboxStep struct{ base }

func (*SpinboxStep) Kind() Kind { return KindSpinboxStep }

func (t *SpinboxStep) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalInt(ev, t.src, "step in spinbox widget")
	if err != nil {
		return nil, err
	}
	w, ok := t.obj.(widget.Stepped)
	if !ok {
		return nil, stale(t.obj, "spinbox")
	}
	return set(KindSpinboxStep, t.obj, "step", w.Step(), next, w.SetStep), nil
}

// SpinboxDigitCount syncs the digit count of a spinbox. A count below
// one, or one that would not leave room for the current separator, is
// rejected.
type SpinboxDigitCount struct{ base }

func (*SpinboxDigitCount) Kind() Kind { return KindSpinboxDigitCount }

func (t *SpinboxDigitCount) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalInt(ev, t.src, "digit count in spinbox widget")
	if err != nil {
		return nil, err
	}
	w, ok := t.obj.(widget.DigitFormatted)
	if !ok {
		return nil, stale(t.obj, "spinbox")
	}
	cur, sep := w.DigitCount(), w.SeparatorPos()
	n := int(next)
	if n == cur {
		return nil, nil
	}
	if n < 1 {
		return nil, rejected("digit count %d must be at least 1", n)
	}
	if sep != 0 && sep >= n {
		return nil, rejected("digit count %d leaves no room for separator at %d", n, sep)
	}
	return set(KindSpinboxDigitCount, t.obj, "digits", cur, n, func(d int) { w.SetDigitFormat(d, sep) }), nil
}

// SpinboxSeparator syncs the decimal separator position of a spinbox.
// Zero disables the separator; positions at or past the digit count are
// rejected.
type SpinboxSeparator struct{ base }

func (*SpinboxSeparator) Kind() Kind { return KindSpinboxSeparator }

func (t *SpinboxSeparator) apply(ev flow.Evaluator) (*Write, error) {
	next, err := evalInt(ev, t.src, "separator position in spinbox widget")
	if err != nil {
		return nil, err
	}
	w, ok := t.obj.(widget.DigitFormatted)
	if !ok {
		return nil, stale(t.obj, "spinbox")
	}
	digits, cur := w.DigitCount(), w.SeparatorPos()
	n := int(next)
	if n == cur {
		return nil, nil
	}
	if n < 0 || n >= digits {
		return nil, rejected("separator position %d outside [0, %d)", n, digits)
	}
	return set(KindSpinboxSeparator, t.obj, "separator", cur, n, func(s int) { w.SetDigitFormat(digits, s) }), nil
}
