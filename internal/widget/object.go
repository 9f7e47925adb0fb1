package widget

import (
	"fmt"
	"strings"
)

// Kind is the widget type of an in-memory Object.
type Kind string

const (
	KindObj      Kind = "obj"
	KindLabel    Kind = "label"
	KindButton   Kind = "button"
	KindTextarea Kind = "textarea"
	KindDropdown Kind = "dropdown"
	KindRoller   Kind = "roller"
	KindSlider   Kind = "slider"
	KindArc      Kind = "arc"
	KindBar      Kind = "bar"
	KindCheckbox Kind = "checkbox"
	KindSwitch   Kind = "switch"
	KindMeter    Kind = "meter"
	KindTabView  Kind = "tabview"
	KindTab      Kind = "tab"
	KindLED      Kind = "led"
	KindSpinbox  Kind = "spinbox"
)

var kinds = []Kind{
	KindObj, KindLabel, KindButton, KindTextarea, KindDropdown, KindRoller,
	KindSlider, KindArc, KindBar, KindCheckbox, KindSwitch, KindMeter,
	KindTabView, KindTab, KindLED, KindSpinbox,
}

// ParseKind resolves a widget kind name.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindObj, nil
	}
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown widget kind %q", s)
}

// Indicator is one needle or arc of a meter.
type Indicator struct {
	name  string
	start int32
	end   int32
}

// Name returns the indicator name.
func (i *Indicator) Name() string { return i.name }

// Start returns the indicator start value.
func (i *Indicator) Start() int32 { return i.start }

// End returns the indicator end value.
func (i *Indicator) End() int32 { return i.end }

// Object is an in-memory widget. It implements every contract in this
// package and, like a real toolkit, raises EventValueChanged
// synchronously from its value setters. Every setter call is counted so
// callers can assert on write traffic.
type Object struct {
	name     string
	kind     Kind
	parent   *Object
	children []*Object

	style [propCount]int32

	text       string
	options    string
	rollerMode RollerMode
	selected   int

	value int32
	start int32
	min   int32
	max   int32
	step  int32

	digits    int
	separator int

	states State
	flags  Flag

	color      uint32
	brightness uint8

	tabs       []string
	indicators []*Indicator

	handlers []EventHandler
	writes   int
}

// New creates a detached object with toolkit defaults: fully opaque,
// 1x scale, range 0..100, five spinbox digits, clickable.
func New(name string, kind Kind) *Object {
	o := &Object{
		name:       name,
		kind:       kind,
		max:        100,
		step:       1,
		digits:     5,
		flags:      FlagClickable,
		brightness: 255,
	}
	o.style[PropOpacity] = 255
	o.style[PropScale] = 256
	return o
}

// Name returns the object name.
func (o *Object) Name() string { return o.name }

// Kind returns the widget kind.
func (o *Object) Kind() Kind { return o.kind }

// String implements fmt.Stringer; journals use it to name targets.
func (o *Object) String() string { return o.name }

// Parent returns the parent object or nil.
func (o *Object) Parent() *Object { return o.parent }

// Children returns the child objects in creation order.
func (o *Object) Children() []*Object { return o.children }

// AddChild appends child and sets its parent.
func (o *Object) AddChild(child *Object) {
	child.parent = o
	o.children = append(o.children, child)
}

// ParentNode implements Node.
func (o *Object) ParentNode() Node {
	if o.parent == nil {
		return nil
	}
	return o.parent
}

// Writes returns how many setter calls the object has received.
func (o *Object) Writes() int { return o.writes }

// ResetWrites zeroes the setter counter.
func (o *Object) ResetWrites() { o.writes = 0 }

// AddEventHandler implements EventSource.
func (o *Object) AddEventHandler(h EventHandler) {
	o.handlers = append(o.handlers, h)
}

// Emit delivers an event to every handler synchronously.
func (o *Object) Emit(code EventCode) {
	for _, h := range o.handlers {
		h(Event{Code: code, Target: o})
	}
}

func (o *Object) changed() {
	o.Emit(EventValueChanged)
}

// StyleProp implements Animatable.
func (o *Object) StyleProp(p Prop) int32 {
	if p < 0 || p >= propCount {
		return 0
	}
	return o.style[p]
}

// SetStyleProp implements Animatable.
func (o *Object) SetStyleProp(p Prop, v int32) {
	if p < 0 || p >= propCount {
		return
	}
	o.writes++
	o.style[p] = v
}

func (o *Object) Text() string { return o.text }

func (o *Object) SetText(s string) {
	o.writes++
	o.text = s
	if o.kind == KindTextarea {
		o.changed()
	}
}

func (o *Object) Options() string { return o.options }

func (o *Object) SetOptions(s string) {
	o.writes++
	o.options = s
	o.selected = 0
}

func (o *Object) RollerOptions() string  { return o.options }
func (o *Object) RollerMode() RollerMode { return o.rollerMode }

func (o *Object) SetRollerOptions(s string, mode RollerMode) {
	o.writes++
	o.options = s
	o.rollerMode = mode
	o.selected = 0
}

func (o *Object) Selected() int { return o.selected }

func (o *Object) SetSelected(i int) {
	o.writes++
	o.selected = i
	o.changed()
}

func (o *Object) Value() int32 { return o.value }

// SetValue clamps v into the current range like a toolkit slider.
func (o *Object) SetValue(v int32, animate bool) {
	o.writes++
	o.value = clamp32(v, o.min, o.max)
	o.changed()
}

func (o *Object) StartValue() int32 { return o.start }

func (o *Object) SetStartValue(v int32, animate bool) {
	o.writes++
	o.start = clamp32(v, o.min, o.max)
	o.changed()
}

func (o *Object) Min() int32 { return o.min }
func (o *Object) Max() int32 { return o.max }

func (o *Object) SetRange(min, max int32) {
	o.writes++
	o.min, o.max = min, max
	o.value = clamp32(o.value, min, max)
	o.start = clamp32(o.start, min, max)
	o.changed()
}

func (o *Object) Step() int32 { return o.step }

func (o *Object) SetStep(step int32) {
	o.writes++
	o.step = step
	o.changed()
}

func (o *Object) DigitCount() int   { return o.digits }
func (o *Object) SeparatorPos() int { return o.separator }

func (o *Object) SetDigitFormat(digits, separator int) {
	o.writes++
	o.digits, o.separator = digits, separator
	o.changed()
}

func (o *Object) HasState(s State) bool { return o.states&s != 0 }

func (o *Object) AddState(s State) {
	o.writes++
	o.states |= s
	if s&StateChecked != 0 {
		o.changed()
	}
}

func (o *Object) ClearState(s State) {
	o.writes++
	o.states &^= s
	if s&StateChecked != 0 {
		o.changed()
	}
}

func (o *Object) HasFlag(f Flag) bool { return o.flags&f != 0 }

func (o *Object) AddFlag(f Flag) {
	o.writes++
	o.flags |= f
}

func (o *Object) ClearFlag(f Flag) {
	o.writes++
	o.flags &^= f
}

// AddIndicator attaches a new meter indicator.
func (o *Object) AddIndicator(name string) *Indicator {
	ind := &Indicator{name: name}
	o.indicators = append(o.indicators, ind)
	return ind
}

// Indicators returns the meter indicators.
func (o *Object) Indicators() []*Indicator { return o.indicators }

// Indicator returns the indicator with the given name.
func (o *Object) Indicator(name string) (*Indicator, bool) {
	for _, ind := range o.indicators {
		if ind.name == name {
			return ind, true
		}
	}
	return nil, false
}

// SetIndicatorValue moves a needle: start and end both follow v.
func (o *Object) SetIndicatorValue(ind *Indicator, v int32) {
	o.writes++
	ind.start, ind.end = v, v
}

func (o *Object) SetIndicatorStartValue(ind *Indicator, v int32) {
	o.writes++
	ind.start = v
}

func (o *Object) SetIndicatorEndValue(ind *Indicator, v int32) {
	o.writes++
	ind.end = v
}

// AddTab appends a tab page to a tab view and returns the page.
func (o *Object) AddTab(name string) *Object {
	o.tabs = append(o.tabs, name)
	page := New(fmt.Sprintf("%s/%s", o.name, name), KindTab)
	o.AddChild(page)
	return page
}

func (o *Object) TabName(i int) (string, bool) {
	if o.kind != KindTabView || i < 0 || i >= len(o.tabs) {
		return "", false
	}
	return o.tabs[i], true
}

func (o *Object) RenameTab(i int, name string) {
	if i < 0 || i >= len(o.tabs) {
		return
	}
	o.writes++
	o.tabs[i] = name
}

func (o *Object) Color() uint32     { return o.color }
func (o *Object) Brightness() uint8 { return o.brightness }

func (o *Object) SetColor(c uint32) {
	o.writes++
	o.color = c & 0xFFFFFF
}

func (o *Object) SetBrightness(b uint8) {
	o.writes++
	o.brightness = b
}

// Snapshot returns the observable state of the object keyed by
// property name, suitable for JSON output.
func (o *Object) Snapshot() map[string]any {
	s := map[string]any{
		"kind": string(o.kind),
	}
	for _, p := range Props {
		s[p.String()] = o.style[p]
	}
	switch o.kind {
	case KindLabel, KindTextarea, KindButton:
		s["text"] = o.text
	case KindDropdown, KindRoller:
		s["options"] = o.options
		s["selected"] = o.selected
	case KindSlider, KindBar, KindArc:
		s["value"] = o.value
		s["start_value"] = o.start
		s["min"] = o.min
		s["max"] = o.max
	case KindSpinbox:
		s["value"] = o.value
		s["min"] = o.min
		s["max"] = o.max
		s["step"] = o.step
		s["digits"] = o.digits
		s["separator"] = o.separator
	case KindLED:
		s["color"] = fmt.Sprintf("#%06x", o.color)
		s["brightness"] = o.brightness
	case KindTabView:
		s["tabs"] = append([]string(nil), o.tabs...)
	case KindMeter:
		inds := make(map[string]any, len(o.indicators))
		for _, ind := range o.indicators {
			inds[ind.name] = []int32{ind.start, ind.end}
		}
		s["indicators"] = inds
	}
	s["checked"] = o.HasState(StateChecked)
	s["disabled"] = o.HasState(StateDisabled)
	s["hidden"] = o.HasFlag(FlagHidden)
	return s
}

func clamp32(v, lo, hi int32) int32 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
