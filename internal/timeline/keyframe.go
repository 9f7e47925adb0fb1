// Package timeline owns keyframed property animation for widgets.
//
// A Registry holds one Timeline per target handle. A Timeline holds its
// keyframes in insertion order, a lazily captured baseline snapshot of
// the target's style properties, and the last position it was evaluated
// at. Evaluating a timeline at a position writes only the properties a
// visited keyframe touched; evaluating twice at the same position writes
// nothing the second time.
package timeline

import (
	"github.com/Mr-Dark-debug/tweenflow/internal/easing"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
)

// Mask selects the properties a keyframe drives, plus the control-point
// flags that switch X/Y from linear to Bezier blending.
type Mask uint32

const (
	MaskX Mask = 1 << iota
	MaskY
	MaskWidth
	MaskHeight
	MaskOpacity
	MaskScale
	MaskRotate
	MaskCP1
	MaskCP2
)

// MaskOf returns the mask bit for p.
func MaskOf(p widget.Prop) Mask { return Mask(1) << uint(p) }

// Has reports whether every bit of m2 is set.
func (m Mask) Has(m2 Mask) bool { return m&m2 == m2 }

// Point is a Bezier control point in target coordinates.
type Point struct {
	X, Y float64
}

// Keyframe is one interval of a timeline. Values are per-property
// targets indexed by widget.Prop; Opacity is normalized to [0,1].
//
// With MaskCP2 set, X and Y blend along a cubic Bezier through CP1 and
// CP2; with only MaskCP1 set, along a quadratic Bezier through CP1.
// Control-point flags have no effect on an axis whose own bit is clear.
type Keyframe struct {
	Start   float64
	End     float64
	Enabled Mask
	Values  [len(widget.Props)]float64
	Easing  [len(widget.Props)]easing.ID
	CP1     Point
	CP2     Point
}

// NewKeyframe returns an empty keyframe over [start, end].
func NewKeyframe(start, end float64) Keyframe {
	return Keyframe{Start: start, End: end}
}

// With enables p with target value v and easing curve e.
func (k Keyframe) With(p widget.Prop, v float64, e easing.ID) Keyframe {
	k.Enabled |= MaskOf(p)
	k.Values[p] = v
	k.Easing[p] = e
	return k
}

// WithControlPoints sets one or two Bezier control points. Passing a
// nil cp2 selects quadratic blending.
func (k Keyframe) WithControlPoints(cp1 Point, cp2 *Point) Keyframe {
	k.Enabled |= MaskCP1
	k.CP1 = cp1
	if cp2 != nil {
		k.Enabled |= MaskCP2
		k.CP2 = *cp2
	}
	return k
}

// Contains reports whether position lies in [Start, End].
func (k *Keyframe) Contains(position float64) bool {
	return position >= k.Start && position <= k.End
}

// progress returns the normalized position within the keyframe; a
// degenerate interval counts as complete.
func (k *Keyframe) progress(position float64) float64 {
	if k.Start == k.End {
		return 1
	}
	return (position - k.Start) / (k.End - k.Start)
}
