package flow

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type key struct {
	component int
	property  int
}

// State is an in-memory flow state: a table of component property
// values, a timeline position and child states (user widgets).
type State struct {
	name     string
	parent   *State
	children []*State

	position float64
	speed    float64

	values   map[key]any
	failures map[key]string
}

// NewState creates a detached state that advances at speed 1.
func NewState(name string) *State {
	return &State{
		name:     name,
		speed:    1,
		values:   make(map[key]any),
		failures: make(map[key]string),
	}
}

func (s *State) String() string { return s.name }

// Name returns the state name.
func (s *State) Name() string { return s.name }

// Parent returns the parent state or nil.
func (s *State) Parent() *State { return s.parent }

// AddChild attaches child below s.
func (s *State) AddChild(child *State) {
	child.parent = s
	s.children = append(s.children, child)
}

// Children returns the child states in attach order.
func (s *State) Children() []*State { return s.children }

// ChildScopes implements Scope.
func (s *State) ChildScopes() []Scope {
	out := make([]Scope, len(s.children))
	for i, c := range s.children {
		out[i] = c
	}
	return out
}

// TimelinePosition implements Scope.
func (s *State) TimelinePosition() float64 { return s.position }

// SetTimelinePosition moves the state's playhead.
func (s *State) SetTimelinePosition(p float64) { s.position = p }

// Speed returns the playback speed multiplier.
func (s *State) Speed() float64 { return s.speed }

// SetSpeed sets the playback speed multiplier.
func (s *State) SetSpeed(v float64) { s.speed = v }

// Advance moves the playhead of s and all descendants by dt scaled by
// each state's speed. When length is positive positions wrap into
// [0, length).
func (s *State) Advance(dt, length float64) {
	s.position += dt * s.speed
	if length > 0 {
		s.position = math.Mod(s.position, length)
		if s.position < 0 {
			s.position += length
		}
	}
	for _, c := range s.children {
		c.Advance(dt, length)
	}
}

// Set stores a property value. Supported types are int32, int, int64,
// float64, bool, string and []string.
func (s *State) Set(component, property int, v any) {
	k := key{component, property}
	s.values[k] = v
	delete(s.failures, k)
}

// Get returns a stored property value.
func (s *State) Get(component, property int) (any, bool) {
	v, ok := s.values[key{component, property}]
	return v, ok
}

// Fail makes subsequent evaluations of the property fail with msg.
func (s *State) Fail(component, property int, msg string) {
	s.failures[key{component, property}] = msg
}

// StateEvaluator evaluates and assigns properties of in-memory States. It
// counts assignments so callers can detect feedback loops.
type StateEvaluator struct {
	assignments int
}

// NewEvaluator returns an evaluator for States.
func NewEvaluator() *StateEvaluator { return &StateEvaluator{} }

// Assignments returns how many assignments succeeded.
func (e *StateEvaluator) Assignments() int { return e.assignments }

func (e *StateEvaluator) lookup(src Source) (any, error) {
	st, ok := src.State.(*State)
	if !ok || st == nil {
		return nil, &EvalError{Src: src, Message: "unknown flow state"}
	}
	k := key{src.Component, src.Property}
	if msg, failed := st.failures[k]; failed {
		return nil, &EvalError{Src: src, Message: msg}
	}
	v, ok := st.values[k]
	if !ok {
		return nil, &EvalError{Src: src, Message: "property has no value"}
	}
	return v, nil
}

// EvalInteger implements flow.Evaluator.
func (e *StateEvaluator) EvalInteger(src Source) (int32, error) {
	v, err := e.lookup(src)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case int32:
		return x, nil
	case int:
		return narrow(src, int64(x))
	case int64:
		return narrow(src, x)
	case float64:
		if math.IsNaN(x) || x < math.MinInt32 || x > math.MaxInt32 {
			return 0, &EvalError{Src: src, Message: fmt.Sprintf("%v is out of integer range", x)}
		}
		return int32(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		n, perr := strconv.ParseInt(strings.TrimSpace(x), 0, 32)
		if perr != nil {
			return 0, &EvalError{Src: src, Message: fmt.Sprintf("cannot convert %q to integer", x)}
		}
		return int32(n), nil
	}
	return 0, &EvalError{Src: src, Message: fmt.Sprintf("cannot convert %T to integer", v)}
}

func narrow(src Source, n int64) (int32, error) {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, &EvalError{Src: src, Message: fmt.Sprintf("%d is out of integer range", n)}
	}
	return int32(n), nil
}

// EvalText implements flow.Evaluator.
func (e *StateEvaluator) EvalText(src Source) (string, error) {
	v, err := e.lookup(src)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case []string:
		return strings.Join(x, ", "), nil
	case nil:
		return "", nil
	}
	return fmt.Sprint(v), nil
}

// EvalBoolean implements flow.Evaluator.
func (e *StateEvaluator) EvalBoolean(src Source) (bool, error) {
	v, err := e.lookup(src)
	if err != nil {
		return false, err
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case int32:
		return x != 0, nil
	case int:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case string:
		return x != "", nil
	}
	return false, &EvalError{Src: src, Message: fmt.Sprintf("cannot convert %T to boolean", v)}
}

// EvalStringArrayJoined implements flow.Evaluator.
func (e *StateEvaluator) EvalStringArrayJoined(src Source, sep string) (string, error) {
	v, err := e.lookup(src)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case []string:
		return strings.Join(x, sep), nil
	case string:
		return x, nil
	}
	return "", &EvalError{Src: src, Message: fmt.Sprintf("cannot convert %T to string array", v)}
}

func (e *StateEvaluator) assign(src Source, v any) error {
	st, ok := src.State.(*State)
	if !ok || st == nil {
		return &EvalError{Src: src, Message: "unknown flow state"}
	}
	st.values[key{src.Component, src.Property}] = v
	e.assignments++
	return nil
}

// AssignInteger implements flow.Assigner.
func (e *StateEvaluator) AssignInteger(src Source, v int32) error { return e.assign(src, v) }

// AssignString implements flow.Assigner.
func (e *StateEvaluator) AssignString(src Source, v string) error { return e.assign(src, v) }

// AssignBoolean implements flow.Assigner.
func (e *StateEvaluator) AssignBoolean(src Source, v bool) error { return e.assign(src, v) }
