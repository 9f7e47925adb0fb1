// Package widget defines the narrow contracts through which the engine
// reads and writes UI objects, plus an in-memory widget tree that
// implements all of them.
//
// The engine never owns a widget. It holds handles (interface values
// whose dynamic types are pointers) and compares them by identity.
// Each contract is small so that a binding to a real toolkit only needs
// to implement the capabilities its widgets actually have; a handle that
// lacks the capability a task needs is treated as a stale target.
package widget

// Prop is an animatable style property.
type Prop int

const (
	PropX Prop = iota
	PropY
	PropWidth
	PropHeight
	PropOpacity
	PropScale
	PropRotate

	propCount
)

// Props lists every animatable property in mask order.
var Props = [...]Prop{PropX, PropY, PropWidth, PropHeight, PropOpacity, PropScale, PropRotate}

var propNames = [...]string{"x", "y", "width", "height", "opacity", "scale", "rotate"}

func (p Prop) String() string {
	if p < 0 || p >= propCount {
		return "prop?"
	}
	return propNames[p]
}

// Animatable exposes the local style properties a timeline drives.
// Opacity is on a 0-255 scale; scale uses 256 as 1x.
type Animatable interface {
	StyleProp(p Prop) int32
	SetStyleProp(p Prop, v int32)
}

// Texter is implemented by labels and text areas.
type Texter interface {
	Text() string
	SetText(s string)
}

// Optioner is implemented by dropdowns. Options are newline separated.
type Optioner interface {
	Options() string
	SetOptions(s string)
}

// RollerMode selects how a roller presents its option list.
type RollerMode int

const (
	RollerNormal RollerMode = iota
	RollerInfinite
)

// Roller is implemented by rollers. RollerOptions reports a single
// period of the option list even in infinite mode.
type Roller interface {
	RollerOptions() string
	RollerMode() RollerMode
	SetRollerOptions(s string, mode RollerMode)
}

// Selector is implemented by dropdowns and rollers.
type Selector interface {
	Selected() int
	SetSelected(i int)
}

// Valued is implemented by sliders, bars, arcs and spinboxes.
type Valued interface {
	Value() int32
	SetValue(v int32, animate bool)
}

// StartValued is implemented by range sliders (left value) and range
// bars (start value).
type StartValued interface {
	StartValue() int32
	SetStartValue(v int32, animate bool)
}

// Ranged is implemented by arcs and spinboxes.
type Ranged interface {
	Min() int32
	Max() int32
	SetRange(min, max int32)
}

// Stepped is implemented by spinboxes.
type Stepped interface {
	Step() int32
	SetStep(step int32)
}

// DigitFormatted is implemented by spinboxes. A separator position of 0
// means no decimal separator.
type DigitFormatted interface {
	DigitCount() int
	SeparatorPos() int
	SetDigitFormat(digits, separator int)
}

// State is an object state bit.
type State uint16

const (
	StateChecked State = 1 << iota
	StateDisabled
)

// Stateful is implemented by every object.
type Stateful interface {
	HasState(s State) bool
	AddState(s State)
	ClearState(s State)
}

// Flag is an object flag bit.
type Flag uint16

const (
	FlagHidden Flag = 1 << iota
	FlagClickable
)

// Flagged is implemented by every object.
type Flagged interface {
	HasFlag(f Flag) bool
	AddFlag(f Flag)
	ClearFlag(f Flag)
}

// IndicatorHost is implemented by meters. The indicator is the
// sub-target of a meter task.
type IndicatorHost interface {
	SetIndicatorValue(ind *Indicator, v int32)
	SetIndicatorStartValue(ind *Indicator, v int32)
	SetIndicatorEndValue(ind *Indicator, v int32)
}

// Node gives access to the parent of an object.
type Node interface {
	ParentNode() Node
}

// TabView is implemented by tab views.
type TabView interface {
	TabName(i int) (string, bool)
	RenameTab(i int, name string)
}

// LED is implemented by LEDs. Color is 0xRRGGBB.
type LED interface {
	Color() uint32
	SetColor(c uint32)
	Brightness() uint8
	SetBrightness(b uint8)
}

// EventCode identifies a UI event.
type EventCode int

const (
	EventValueChanged EventCode = iota + 1
	EventClicked
)

// Event is delivered synchronously to handlers.
type Event struct {
	Code   EventCode
	Target any
}

// EventHandler receives UI events.
type EventHandler func(e Event)

// EventSource is implemented by objects that emit events.
type EventSource interface {
	AddEventHandler(h EventHandler)
}
