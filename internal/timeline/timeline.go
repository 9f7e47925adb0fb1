package timeline

import (
	"math"

	"github.com/Mr-Dark-debug/tweenflow/internal/easing"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
)

const numProps = len(widget.Props)

// Write records one style property write performed by Evaluate.
type Write struct {
	Target widget.Animatable
	Prop   widget.Prop
	Old    int32
	New    int32
}

// Timeline animates the style properties of one target.
type Timeline struct {
	target    widget.Animatable
	owner     any
	keyframes []Keyframe

	baseline    [numProps]float64
	initialized bool

	lastPosition float64
	evaluated    bool
}

// Target returns the animated handle.
func (tl *Timeline) Target() widget.Animatable { return tl.target }

// Owner returns the flow state that registered the first keyframe.
func (tl *Timeline) Owner() any { return tl.owner }

// Keyframes returns the keyframes in insertion order.
func (tl *Timeline) Keyframes() []Keyframe { return tl.keyframes }

// Initialized reports whether the baseline has been captured.
func (tl *Timeline) Initialized() bool { return tl.initialized }

// Baseline returns the captured baseline. Opacity is normalized.
func (tl *Timeline) Baseline() [numProps]float64 { return tl.baseline }

// LastPosition returns the last evaluated position and whether any
// evaluation has happened.
func (tl *Timeline) LastPosition() (float64, bool) { return tl.lastPosition, tl.evaluated }

// End returns the largest keyframe end, or 0 for an empty timeline.
func (tl *Timeline) End() float64 {
	var end float64
	for i := range tl.keyframes {
		if tl.keyframes[i].End > end {
			end = tl.keyframes[i].End
		}
	}
	return end
}

func (tl *Timeline) captureBaseline() {
	for _, p := range widget.Props {
		v := float64(tl.target.StyleProp(p))
		if p == widget.PropOpacity {
			v /= 255
		}
		tl.baseline[p] = v
	}
	tl.initialized = true
}

// Evaluate moves the timeline to position and writes the resulting
// property values to the target. It returns the writes performed.
//
// Keyframes that lie entirely before position permanently shift the
// running values to their targets; the first keyframe containing
// position blends from those values and ends the walk. Keyframes that
// start after position are skipped.
func (tl *Timeline) Evaluate(position float64) []Write {
	if tl.target == nil {
		return nil
	}
	if !tl.initialized {
		tl.captureBaseline()
	}
	if tl.evaluated && position == tl.lastPosition {
		return nil
	}
	tl.lastPosition = position
	tl.evaluated = true

	cur := tl.baseline
	var touched [numProps]bool

	for i := range tl.keyframes {
		kf := &tl.keyframes[i]

		if position < kf.Start {
			continue
		}

		if kf.Contains(position) {
			t := kf.progress(position)
			for _, p := range widget.Props {
				if kf.Enabled&MaskOf(p) == 0 {
					continue
				}
				e := easing.Apply(kf.Easing[p], t)
				switch p {
				case widget.PropX:
					cur[p] = blendAxis(kf, cur[p], kf.CP1.X, kf.CP2.X, kf.Values[p], e)
				case widget.PropY:
					cur[p] = blendAxis(kf, cur[p], kf.CP1.Y, kf.CP2.Y, kf.Values[p], e)
				default:
					cur[p] += e * (kf.Values[p] - cur[p])
				}
				touched[p] = true
			}
			break
		}

		for _, p := range widget.Props {
			if kf.Enabled&MaskOf(p) != 0 {
				cur[p] = kf.Values[p]
				touched[p] = true
			}
		}
	}

	var writes []Write
	for _, p := range widget.Props {
		if !touched[p] {
			continue
		}
		v := cur[p]
		if p == widget.PropOpacity {
			v *= 255
		}
		w := Write{Target: tl.target, Prop: p, Old: tl.target.StyleProp(p), New: int32(math.Round(v))}
		tl.target.SetStyleProp(p, w.New)
		writes = append(writes, w)
	}
	return writes
}

// blendAxis interpolates one coordinate from p0 to p3 at eased
// progress t, through the keyframe's control points when set.
func blendAxis(kf *Keyframe, p0, c1, c2, p3, t float64) float64 {
	u := 1 - t
	switch {
	case kf.Enabled&MaskCP2 != 0:
		return u*u*u*p0 + 3*u*u*t*c1 + 3*u*t*t*c2 + t*t*t*p3
	case kf.Enabled&MaskCP1 != 0:
		return u*u*p0 + 2*u*t*c1 + t*t*p3
	default:
		return u*p0 + t*p3
	}
}
