package easing

import (
	"math"
	"testing"
)

func TestBoundaries(t *testing.T) {
	for i := 0; i < Count; i++ {
		id := ID(i)
		f := Get(id)
		if got := f(0); got != 0 {
			t.Errorf("%s(0) = %v, want exactly 0", id, got)
		}
		if got := f(1); got != 1 {
			t.Errorf("%s(1) = %v, want exactly 1", id, got)
		}
	}
}

func TestDeterministic(t *testing.T) {
	samples := []float64{0.1, 0.25, 0.5, 0.75, 0.9}
	for i := 0; i < Count; i++ {
		for _, s := range samples {
			a := Apply(ID(i), s)
			b := Apply(ID(i), s)
			if math.Float64bits(a) != math.Float64bits(b) {
				t.Errorf("%s(%v) not deterministic: %v vs %v", ID(i), s, a, b)
			}
		}
	}
}

func TestKnownValues(t *testing.T) {
	tests := []struct {
		id   ID
		t    float64
		want float64
	}{
		{Linear, 0.3, 0.3},
		{InQuad, 0.5, 0.25},
		{OutQuad, 0.5, 0.75},
		{InOutQuad, 0.25, 0.125},
		{InCubic, 0.5, 0.125},
		{InOutCubic, 0.5, 0.5},
		{InQuart, 0.5, 0.0625},
		{InQuint, 0.5, 0.03125},
		{InOutSine, 0.5, 0.5},
		{InOutExpo, 0.5, 0.5},
		{InOutCirc, 0.5, 0.5},
		{InOutBounce, 0.5, 0.5},
	}
	for _, tc := range tests {
		got := Apply(tc.id, tc.t)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s(%v) = %v, want %v", tc.id, tc.t, got, tc.want)
		}
	}
}

func TestOvershootCurves(t *testing.T) {
	if v := Apply(InBack, 0.2); v >= 0 {
		t.Errorf("in-back should undershoot below 0 early, got %v", v)
	}
	if v := Apply(OutBack, 0.8); v <= 1 {
		t.Errorf("out-back should overshoot above 1 late, got %v", v)
	}
	if v := Apply(OutElastic, 0.15); v <= 1 {
		t.Errorf("out-elastic should overshoot early, got %v", v)
	}
}

func TestUnknownIDFallsBackToLinear(t *testing.T) {
	if got := Apply(ID(200), 0.4); got != 0.4 {
		t.Errorf("unknown id: got %v, want 0.4", got)
	}
	if got := ID(200).String(); got != "easing(200)" {
		t.Errorf("unexpected name %q", got)
	}
}

func TestParse(t *testing.T) {
	for i := 0; i < Count; i++ {
		id, err := Parse(ID(i).String())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", ID(i).String(), err)
		}
		if id != ID(i) {
			t.Errorf("Parse(%q) = %d, want %d", ID(i).String(), id, i)
		}
	}
	if id, err := Parse(""); err != nil || id != Linear {
		t.Errorf("Parse(\"\") = %v, %v; want linear", id, err)
	}
	if _, err := Parse("sideways"); err == nil {
		t.Error("expected error for unknown name")
	}
}
