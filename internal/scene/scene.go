// Package scene loads TOML scene files and builds them into a runtime.
//
// A scene declares flow states with their component property values,
// a widget tree, keyframes, persistent update-task bindings (flow → UI)
// and change-event forwarders (UI → flow). Parents must be declared
// before their children. References are resolved by name and every
// unknown name is a load error.
package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Mr-Dark-debug/tweenflow/internal/easing"
	"github.com/Mr-Dark-debug/tweenflow/internal/engine"
	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/timeline"
	"github.com/Mr-Dark-debug/tweenflow/internal/update"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
)

// File is the decoded form of a scene file.
type File struct {
	Name     string        `toml:"name"`
	Flow     []FlowDef     `toml:"flow"`
	Widget   []WidgetDef   `toml:"widget"`
	Keyframe []KeyframeDef `toml:"keyframe"`
	Binding  []BindingDef  `toml:"binding"`
	Event    []EventDef    `toml:"event"`
}

// FlowDef declares a flow state. The first one is the root.
type FlowDef struct {
	Name   string   `toml:"name"`
	Parent string   `toml:"parent"`
	Speed  *float64 `toml:"speed"`
	Var    []VarDef `toml:"var"`
}

// VarDef seeds one component property. Type is "int", "text", "bool"
// or "strings"; empty infers it from the TOML value.
type VarDef struct {
	Component int    `toml:"component"`
	Property  int    `toml:"property"`
	Type      string `toml:"type"`
	Value     any    `toml:"value"`
}

// WidgetDef declares one widget.
type WidgetDef struct {
	Name       string   `toml:"name"`
	Kind       string   `toml:"kind"`
	Parent     string   `toml:"parent"`
	Index      *int     `toml:"index"`
	X          int32    `toml:"x"`
	Y          int32    `toml:"y"`
	Width      int32    `toml:"width"`
	Height     int32    `toml:"height"`
	Opacity    *int32   `toml:"opacity"`
	Text       string   `toml:"text"`
	Options    []string `toml:"options"`
	Value      *int32   `toml:"value"`
	Min        *int32   `toml:"min"`
	Max        *int32   `toml:"max"`
	Tabs       []string `toml:"tabs"`
	Indicators []string `toml:"indicators"`
}

// KeyframeDef declares one keyframe. Unset properties are not driven.
// Opacity targets are normalized to [0,1].
type KeyframeDef struct {
	Widget string  `toml:"widget"`
	Flow   string  `toml:"flow"`
	Start  float64 `toml:"start"`
	End    float64 `toml:"end"`

	X       *float64 `toml:"x"`
	Y       *float64 `toml:"y"`
	Width   *float64 `toml:"width"`
	Height  *float64 `toml:"height"`
	Opacity *float64 `toml:"opacity"`
	Scale   *float64 `toml:"scale"`
	Rotate  *float64 `toml:"rotate"`

	XEasing       string `toml:"x_easing"`
	YEasing       string `toml:"y_easing"`
	WidthEasing   string `toml:"width_easing"`
	HeightEasing  string `toml:"height_easing"`
	OpacityEasing string `toml:"opacity_easing"`
	ScaleEasing   string `toml:"scale_easing"`
	RotateEasing  string `toml:"rotate_easing"`

	CP1 []float64 `toml:"cp1"`
	CP2 []float64 `toml:"cp2"`
}

// BindingDef declares a persistent update task. Param is the tab index
// for tab-name, the roller mode for roller-options (1 = infinite) and
// the animate flag for slider and bar values (non-zero animates).
type BindingDef struct {
	Kind      string `toml:"kind"`
	Widget    string `toml:"widget"`
	Flow      string `toml:"flow"`
	Component int    `toml:"component"`
	Property  int    `toml:"property"`
	Param     int    `toml:"param"`
	Indicator string `toml:"indicator"`
}

// EventDef declares a change-event forwarder.
type EventDef struct {
	Kind      string `toml:"kind"`
	Widget    string `toml:"widget"`
	Flow      string `toml:"flow"`
	Component int    `toml:"component"`
	Property  int    `toml:"property"`
}

// Parse decodes a scene from TOML text.
func Parse(data string) (*File, error) {
	var f File
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("scene: parse: %w", err)
	}
	return &f, nil
}

// Load decodes a scene file.
func Load(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &f, nil
}

// Scene is a built scene: the flow state tree and the widget tree
// registered into one runtime.
type Scene struct {
	Name string
	Root *flow.State

	states      []*flow.State
	stateByName map[string]*flow.State
	vars        []flow.Source
	widgets     []*widget.Object
	widgetByKey map[string]*widget.Object
	runtime     *engine.Runtime
}

// Build creates the states and widgets of f and registers its
// keyframes, bindings and forwarders into rt. rt should be fresh or
// Reset.
func Build(f *File, rt *engine.Runtime) (*Scene, error) {
	if len(f.Flow) == 0 {
		return nil, fmt.Errorf("scene: no flow states declared")
	}
	s := &Scene{
		Name:        f.Name,
		stateByName: make(map[string]*flow.State),
		widgetByKey: make(map[string]*widget.Object),
		runtime:     rt,
	}

	for i, def := range f.Flow {
		if err := s.addState(i, def); err != nil {
			return nil, err
		}
	}
	s.Root = s.states[0]

	for i, def := range f.Widget {
		if err := s.addWidget(i, def); err != nil {
			return nil, err
		}
	}

	for i, def := range f.Keyframe {
		if err := s.addKeyframe(i, def); err != nil {
			return nil, err
		}
	}

	for i, def := range f.Binding {
		if err := s.addBinding(i, def); err != nil {
			return nil, err
		}
	}

	for i, def := range f.Event {
		if err := s.addEvent(i, def); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Open loads and builds a scene file.
func Open(path string, rt *engine.Runtime) (*Scene, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Build(f, rt)
}

func (s *Scene) addState(i int, def FlowDef) error {
	if def.Name == "" {
		return fmt.Errorf("scene: flow %d: missing name", i+1)
	}
	if _, dup := s.stateByName[def.Name]; dup {
		return fmt.Errorf("scene: flow %d: duplicate name %q", i+1, def.Name)
	}

	st := flow.NewState(def.Name)
	if def.Speed != nil {
		st.SetSpeed(*def.Speed)
	}
	if i > 0 {
		parent := s.states[0]
		if def.Parent != "" {
			p, ok := s.stateByName[def.Parent]
			if !ok {
				return fmt.Errorf("scene: flow %d: unknown parent %q", i+1, def.Parent)
			}
			parent = p
		}
		parent.AddChild(st)
	}

	for j, v := range def.Var {
		val, err := convertVar(v)
		if err != nil {
			return fmt.Errorf("scene: flow %d: var %d: %w", i+1, j+1, err)
		}
		st.Set(v.Component, v.Property, val)
		s.vars = append(s.vars, flow.Source{State: st, Component: v.Component, Property: v.Property})
	}

	s.states = append(s.states, st)
	s.stateByName[def.Name] = st
	return nil
}

func convertVar(v VarDef) (any, error) {
	typ := strings.ToLower(v.Type)
	if typ == "" {
		switch v.Value.(type) {
		case int64:
			typ = "int"
		case bool:
			typ = "bool"
		case []interface{}:
			typ = "strings"
		default:
			typ = "text"
		}
	}

	switch typ {
	case "int":
		switch x := v.Value.(type) {
		case int64:
			return int32(x), nil
		case float64:
			return int32(x), nil
		}
	case "bool":
		if b, ok := v.Value.(bool); ok {
			return b, nil
		}
	case "text":
		if str, ok := v.Value.(string); ok {
			return str, nil
		}
		return fmt.Sprint(v.Value), nil
	case "strings":
		items, ok := v.Value.([]interface{})
		if !ok {
			break
		}
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = fmt.Sprint(it)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown type %q", v.Type)
	}
	return nil, fmt.Errorf("value %v is not of type %s", v.Value, typ)
}

func (s *Scene) addWidget(i int, def WidgetDef) error {
	if def.Name == "" {
		return fmt.Errorf("scene: widget %d: missing name", i+1)
	}
	if _, dup := s.widgetByKey[def.Name]; dup {
		return fmt.Errorf("scene: widget %d: duplicate name %q", i+1, def.Name)
	}
	kind, err := widget.ParseKind(def.Kind)
	if err != nil {
		return fmt.Errorf("scene: widget %d: %w", i+1, err)
	}

	obj := widget.New(def.Name, kind)
	if def.Parent != "" {
		parent, ok := s.widgetByKey[def.Parent]
		if !ok {
			return fmt.Errorf("scene: widget %d: unknown parent %q", i+1, def.Parent)
		}
		parent.AddChild(obj)
	}

	obj.SetStyleProp(widget.PropX, def.X)
	obj.SetStyleProp(widget.PropY, def.Y)
	obj.SetStyleProp(widget.PropWidth, def.Width)
	obj.SetStyleProp(widget.PropHeight, def.Height)
	if def.Opacity != nil {
		obj.SetStyleProp(widget.PropOpacity, *def.Opacity)
	}
	if def.Text != "" {
		obj.SetText(def.Text)
	}
	if len(def.Options) > 0 {
		opts := strings.Join(def.Options, "\n")
		if kind == widget.KindRoller {
			obj.SetRollerOptions(opts, widget.RollerNormal)
		} else {
			obj.SetOptions(opts)
		}
	}
	if def.Min != nil || def.Max != nil {
		lo, hi := obj.Min(), obj.Max()
		if def.Min != nil {
			lo = *def.Min
		}
		if def.Max != nil {
			hi = *def.Max
		}
		obj.SetRange(lo, hi)
	}
	if def.Value != nil {
		obj.SetValue(*def.Value, false)
	}
	for _, name := range def.Indicators {
		obj.AddIndicator(name)
	}

	s.register(obj)
	if len(def.Tabs) > 0 {
		if kind != widget.KindTabView {
			return fmt.Errorf("scene: widget %d: tabs on %s widget %q", i+1, kind, def.Name)
		}
		for _, name := range def.Tabs {
			s.register(obj.AddTab(name))
		}
	}
	if def.Index != nil {
		s.runtime.SetObjectIndex(*def.Index, obj)
	}
	obj.ResetWrites()
	return nil
}

func (s *Scene) register(obj *widget.Object) {
	s.widgets = append(s.widgets, obj)
	s.widgetByKey[obj.Name()] = obj
}

type propDef struct {
	prop   widget.Prop
	value  *float64
	easing string
}

func (def *KeyframeDef) props() []propDef {
	return []propDef{
		{widget.PropX, def.X, def.XEasing},
		{widget.PropY, def.Y, def.YEasing},
		{widget.PropWidth, def.Width, def.WidthEasing},
		{widget.PropHeight, def.Height, def.HeightEasing},
		{widget.PropOpacity, def.Opacity, def.OpacityEasing},
		{widget.PropScale, def.Scale, def.ScaleEasing},
		{widget.PropRotate, def.Rotate, def.RotateEasing},
	}
}

func (s *Scene) addKeyframe(i int, def KeyframeDef) error {
	obj, ok := s.widgetByKey[def.Widget]
	if !ok {
		return fmt.Errorf("scene: keyframe %d: unknown widget %q", i+1, def.Widget)
	}
	owner, err := s.lookupState(def.Flow)
	if err != nil {
		return fmt.Errorf("scene: keyframe %d: %w", i+1, err)
	}
	if def.End < def.Start {
		return fmt.Errorf("scene: keyframe %d: end %.3f before start %.3f", i+1, def.End, def.Start)
	}

	kf := timeline.NewKeyframe(def.Start, def.End)
	for _, p := range def.props() {
		if p.value == nil {
			if p.easing != "" {
				return fmt.Errorf("scene: keyframe %d: %s easing without a %s value", i+1, p.prop, p.prop)
			}
			continue
		}
		id, err := easing.Parse(p.easing)
		if err != nil {
			return fmt.Errorf("scene: keyframe %d: %w", i+1, err)
		}
		kf = kf.With(p.prop, *p.value, id)
	}

	if def.CP1 == nil && def.CP2 != nil {
		return fmt.Errorf("scene: keyframe %d: cp2 without cp1", i+1)
	}
	if def.CP1 != nil {
		cp1, err := point(def.CP1)
		if err != nil {
			return fmt.Errorf("scene: keyframe %d: cp1: %w", i+1, err)
		}
		var cp2 *timeline.Point
		if def.CP2 != nil {
			p, err := point(def.CP2)
			if err != nil {
				return fmt.Errorf("scene: keyframe %d: cp2: %w", i+1, err)
			}
			cp2 = &p
		}
		kf = kf.WithControlPoints(cp1, cp2)
	}

	s.runtime.RegisterKeyframe(obj, owner, kf)
	return nil
}

func point(xy []float64) (timeline.Point, error) {
	if len(xy) != 2 {
		return timeline.Point{}, fmt.Errorf("want [x, y], got %d values", len(xy))
	}
	return timeline.Point{X: xy[0], Y: xy[1]}, nil
}

func (s *Scene) lookupState(name string) (*flow.State, error) {
	if name == "" {
		return s.Root, nil
	}
	st, ok := s.stateByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown flow %q", name)
	}
	return st, nil
}

func (s *Scene) addBinding(i int, def BindingDef) error {
	kind, err := update.ParseKind(def.Kind)
	if err != nil {
		return fmt.Errorf("scene: binding %d: %w", i+1, err)
	}
	obj, ok := s.widgetByKey[def.Widget]
	if !ok {
		return fmt.Errorf("scene: binding %d: unknown widget %q", i+1, def.Widget)
	}
	st, err := s.lookupState(def.Flow)
	if err != nil {
		return fmt.Errorf("scene: binding %d: %w", i+1, err)
	}

	p := update.Params{
		Animate: def.Param != 0,
		Tab:     def.Param,
		Mode:    widget.RollerMode(def.Param),
	}
	if def.Indicator != "" {
		ind, ok := obj.Indicator(def.Indicator)
		if !ok {
			return fmt.Errorf("scene: binding %d: unknown indicator %q on %q", i+1, def.Indicator, def.Widget)
		}
		p.Indicator = ind
	}

	src := flow.Source{State: st, Component: def.Component, Property: def.Property}
	task, err := update.New(kind, obj, src, p)
	if err != nil {
		return fmt.Errorf("scene: binding %d: %w", i+1, err)
	}
	s.runtime.Bind(task)
	return nil
}

func (s *Scene) addEvent(i int, def EventDef) error {
	kind, err := update.ParseKind(def.Kind)
	if err != nil {
		return fmt.Errorf("scene: event %d: %w", i+1, err)
	}
	obj, ok := s.widgetByKey[def.Widget]
	if !ok {
		return fmt.Errorf("scene: event %d: unknown widget %q", i+1, def.Widget)
	}
	st, err := s.lookupState(def.Flow)
	if err != nil {
		return fmt.Errorf("scene: event %d: %w", i+1, err)
	}
	src := flow.Source{State: st, Component: def.Component, Property: def.Property}
	if err := s.runtime.Forward(kind, obj, src); err != nil {
		return fmt.Errorf("scene: event %d: %w", i+1, err)
	}
	return nil
}

// Runtime returns the runtime the scene was built into.
func (s *Scene) Runtime() *engine.Runtime { return s.runtime }

// States returns the flow states in declaration order.
func (s *Scene) States() []*flow.State { return s.states }

// State returns the flow state with the given name.
func (s *Scene) State(name string) (*flow.State, bool) {
	st, ok := s.stateByName[name]
	return st, ok
}

// Vars returns the seeded flow properties in declaration order.
func (s *Scene) Vars() []flow.Source { return s.vars }

// Widgets returns every widget, tab pages included, in creation order.
func (s *Scene) Widgets() []*widget.Object { return s.widgets }

// Widget returns the widget with the given name. Tab pages are named
// "tabview/page".
func (s *Scene) Widget(name string) (*widget.Object, bool) {
	obj, ok := s.widgetByKey[name]
	return obj, ok
}

// Duration returns the end of the last keyframe.
func (s *Scene) Duration() float64 { return s.runtime.Timelines().End() }

// Snapshot returns every widget's observable state keyed by name.
func (s *Scene) Snapshot() map[string]any {
	out := make(map[string]any, len(s.widgets))
	for _, w := range s.widgets {
		out[w.Name()] = w.Snapshot()
	}
	return out
}

// Seek moves every flow state to position and evaluates all timelines
// there.
func (s *Scene) Seek(position float64) []timeline.Write {
	for _, st := range s.states {
		st.SetTimelinePosition(position)
	}
	return s.runtime.AdvanceTimelines(position)
}
