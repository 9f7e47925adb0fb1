// Package flow defines the evaluator-side contracts the engine consumes
// and an in-memory flow state tree that implements them.
//
// The engine does not compute values. For every synchronized property it
// asks an Evaluator for a fresh value addressed by a Source, and for
// every UI-originated change it hands the new value to an Assigner.
// Either side may fail with a diagnostic; a failure never aborts a tick.
package flow

import "fmt"

// Source addresses one property of one component in a flow state.
// State is opaque to the engine and only interpreted by the evaluator.
type Source struct {
	State     any
	Component int
	Property  int
}

func (s Source) String() string {
	name := "?"
	if n, ok := s.State.(fmt.Stringer); ok {
		name = n.String()
	}
	return fmt.Sprintf("%s[%d].%d", name, s.Component, s.Property)
}

// Evaluator produces fresh property values.
type Evaluator interface {
	EvalInteger(src Source) (int32, error)
	EvalText(src Source) (string, error)
	EvalBoolean(src Source) (bool, error)
	EvalStringArrayJoined(src Source, sep string) (string, error)
}

// Assigner writes values back into flow-side properties.
type Assigner interface {
	AssignInteger(src Source, v int32) error
	AssignString(src Source, v string) error
	AssignBoolean(src Source, v bool) error
}

// Scope is a flow state that owns timelines and plays them at its own
// position. Children are visited after their parent.
type Scope interface {
	TimelinePosition() float64
	ChildScopes() []Scope
}

// EvalError is the diagnostic returned by an evaluator or assigner.
type EvalError struct {
	Src     Source
	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Src, e.Message)
}
