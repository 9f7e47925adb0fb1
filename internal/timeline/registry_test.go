package timeline

import (
	"testing"

	"github.com/Mr-Dark-debug/tweenflow/internal/easing"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
)

func TestRegisterAppendsToExistingTimeline(t *testing.T) {
	r := NewRegistry()
	target := newFakeTarget()

	first := r.Register(target, "main", NewKeyframe(0, 1).With(widget.PropX, 1, easing.Linear))
	second := r.Register(target, "other", NewKeyframe(1, 2).With(widget.PropX, 2, easing.Linear))

	if first != second {
		t.Fatal("expected the same timeline for the same target")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 timeline, got %d", r.Len())
	}
	if n := len(first.Keyframes()); n != 2 {
		t.Errorf("expected 2 keyframes, got %d", n)
	}
	if first.Owner() != "main" {
		t.Errorf("owner should be fixed by the first keyframe, got %v", first.Owner())
	}
}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry()
	target := newFakeTarget()
	r.Register(target, nil, NewKeyframe(0, 1).With(widget.PropX, 1, easing.Linear))

	r.Reset()
	if r.Len() != 0 {
		t.Errorf("expected empty registry after reset, got %d", r.Len())
	}
	if _, ok := r.Lookup(target); ok {
		t.Error("lookup should fail after reset")
	}
	if len(target.sets) != 0 {
		t.Error("reset must not touch targets")
	}
}

func TestAdvanceOwned(t *testing.T) {
	r := NewRegistry()
	a, b := newFakeTarget(), newFakeTarget()
	r.Register(a, "page", NewKeyframe(0, 1).With(widget.PropX, 10, easing.Linear))
	r.Register(b, "user-widget", NewKeyframe(0, 1).With(widget.PropX, 10, easing.Linear))

	writes := r.AdvanceOwned("page", 1)
	if len(writes) != 1 || writes[0].Target != a {
		t.Fatalf("expected a single write on the page-owned target, got %v", writes)
	}
	if len(b.sets) != 0 {
		t.Error("timeline owned by another state was evaluated")
	}

	all := r.AdvanceAll(0.5)
	if len(all) != 2 {
		t.Errorf("expected both timelines to write, got %d writes", len(all))
	}
}

func TestRegistryEnd(t *testing.T) {
	r := NewRegistry()
	r.Register(newFakeTarget(), nil, NewKeyframe(0, 1.5))
	r.Register(newFakeTarget(), nil, NewKeyframe(1, 4))
	if got := r.End(); got != 4 {
		t.Errorf("expected end=4, got %v", got)
	}
}
