package widget

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindObj, false},
		{"Slider", KindSlider, false},
		{" spinbox ", KindSpinbox, false},
		{"tabview", KindTabView, false},
		{"window", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewObjectDefaults(t *testing.T) {
	o := New("s", KindSlider)
	if o.StyleProp(PropOpacity) != 255 {
		t.Errorf("opacity = %d, want 255", o.StyleProp(PropOpacity))
	}
	if o.StyleProp(PropScale) != 256 {
		t.Errorf("scale = %d, want 256", o.StyleProp(PropScale))
	}
	if o.Min() != 0 || o.Max() != 100 {
		t.Errorf("range = %d..%d, want 0..100", o.Min(), o.Max())
	}
	if !o.HasFlag(FlagClickable) {
		t.Error("new objects should be clickable")
	}
	if o.Writes() != 0 {
		t.Errorf("writes = %d, want 0", o.Writes())
	}
}

func TestSetValueClampsAndEmits(t *testing.T) {
	o := New("s", KindSlider)
	var events int
	o.AddEventHandler(func(e Event) {
		if e.Code != EventValueChanged {
			t.Errorf("unexpected event code %d", e.Code)
		}
		if e.Target != o {
			t.Error("event target should be the object")
		}
		events++
	})

	o.SetValue(150, false)
	if o.Value() != 100 {
		t.Errorf("value = %d, want clamp to 100", o.Value())
	}
	o.SetRange(0, 50)
	if o.Value() != 50 {
		t.Errorf("value = %d after narrowing range, want 50", o.Value())
	}
	if events != 2 {
		t.Errorf("events = %d, want 2", events)
	}
	if o.Writes() != 2 {
		t.Errorf("writes = %d, want 2", o.Writes())
	}
}

func TestLabelTextDoesNotEmit(t *testing.T) {
	label := New("l", KindLabel)
	area := New("t", KindTextarea)

	var fired []string
	label.AddEventHandler(func(Event) { fired = append(fired, "label") })
	area.AddEventHandler(func(Event) { fired = append(fired, "area") })

	label.SetText("a")
	area.SetText("b")

	if len(fired) != 1 || fired[0] != "area" {
		t.Errorf("fired = %v, want only the textarea", fired)
	}
}

func TestCheckedStateEmitsOnlyForChecked(t *testing.T) {
	o := New("c", KindCheckbox)
	var events int
	o.AddEventHandler(func(Event) { events++ })

	o.AddState(StateDisabled)
	o.AddState(StateChecked)
	o.ClearState(StateChecked)

	if events != 2 {
		t.Errorf("events = %d, want 2", events)
	}
	if !o.HasState(StateDisabled) || o.HasState(StateChecked) {
		t.Error("state bits out of sync")
	}
}

func TestSetOptionsResetsSelection(t *testing.T) {
	o := New("d", KindDropdown)
	o.SetOptions("a\nb\nc")
	o.SetSelected(2)
	o.SetOptions("x\ny")
	if o.Selected() != 0 {
		t.Errorf("selected = %d, want 0 after new options", o.Selected())
	}
}

func TestTabsAndIndicators(t *testing.T) {
	tv := New("tv", KindTabView)
	page := tv.AddTab("One")
	tv.AddTab("Two")

	if page.Name() != "tv/One" || page.Parent() != tv {
		t.Errorf("page = %s with parent %v", page.Name(), page.Parent())
	}
	tv.RenameTab(1, "Second")
	if name, ok := tv.TabName(1); !ok || name != "Second" {
		t.Errorf("TabName(1) = %q, %v", name, ok)
	}
	if _, ok := tv.TabName(2); ok {
		t.Error("TabName out of range should fail")
	}

	m := New("m", KindMeter)
	needle := m.AddIndicator("needle")
	m.SetIndicatorValue(needle, 42)
	if needle.Start() != 42 || needle.End() != 42 {
		t.Errorf("needle = %d..%d, want 42..42", needle.Start(), needle.End())
	}
	if got, ok := m.Indicator("needle"); !ok || got != needle {
		t.Error("Indicator lookup failed")
	}
}

func TestLEDColorMasked(t *testing.T) {
	o := New("led", KindLED)
	o.SetColor(0xFF123456)
	if o.Color() != 0x123456 {
		t.Errorf("color = %#x, want 0x123456", o.Color())
	}
	if got := o.Snapshot()["color"]; got != "#123456" {
		t.Errorf("snapshot color = %v", got)
	}
}

func TestSnapshotIncludesStyleAndKindFields(t *testing.T) {
	o := New("sp", KindSpinbox)
	o.SetStyleProp(PropX, 12)
	o.SetStyleProp(Prop(99), 1)

	s := o.Snapshot()
	if s["kind"] != "spinbox" {
		t.Errorf("kind = %v", s["kind"])
	}
	if s["x"] != int32(12) {
		t.Errorf("x = %v, want 12", s["x"])
	}
	for _, k := range []string{"value", "min", "max", "step", "digits", "separator", "hidden"} {
		if _, ok := s[k]; !ok {
			t.Errorf("snapshot missing %q", k)
		}
	}
	if o.Writes() != 1 {
		t.Errorf("writes = %d, out-of-range prop should not count", o.Writes())
	}
}
