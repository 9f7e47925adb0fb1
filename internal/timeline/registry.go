package timeline

import "github.com/Mr-Dark-debug/tweenflow/internal/widget"

// Registry owns the timelines of a screen. Handles are compared by
// identity, so they must be comparable values (typically pointers).
type Registry struct {
	timelines []*Timeline
	index     map[widget.Animatable]*Timeline
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[widget.Animatable]*Timeline)}
}

// Register appends kf to the timeline of target, creating the timeline
// on first use. The owner of a timeline is fixed by its first keyframe.
func (r *Registry) Register(target widget.Animatable, owner any, kf Keyframe) *Timeline {
	if tl, ok := r.index[target]; ok {
		tl.keyframes = append(tl.keyframes, kf)
		return tl
	}
	tl := &Timeline{
		target:    target,
		owner:     owner,
		keyframes: []Keyframe{kf},
	}
	r.timelines = append(r.timelines, tl)
	r.index[target] = tl
	return tl
}

// Lookup returns the timeline of target.
func (r *Registry) Lookup(target widget.Animatable) (*Timeline, bool) {
	tl, ok := r.index[target]
	return tl, ok
}

// Timelines returns all timelines in creation order.
func (r *Registry) Timelines() []*Timeline { return r.timelines }

// Len returns the number of timelines.
func (r *Registry) Len() int { return len(r.timelines) }

// End returns the largest keyframe end over all timelines.
func (r *Registry) End() float64 {
	var end float64
	for _, tl := range r.timelines {
		if e := tl.End(); e > end {
			end = e
		}
	}
	return end
}

// Reset discards every timeline. Targets are not touched.
func (r *Registry) Reset() {
	r.timelines = nil
	r.index = make(map[widget.Animatable]*Timeline)
}

// AdvanceAll evaluates every timeline at one shared position.
func (r *Registry) AdvanceAll(position float64) []Write {
	var writes []Write
	for _, tl := range r.timelines {
		writes = append(writes, tl.Evaluate(position)...)
	}
	return writes
}

// AdvanceOwned evaluates the timelines registered by owner.
func (r *Registry) AdvanceOwned(owner any, position float64) []Write {
	var writes []Write
	for _, tl := range r.timelines {
		if tl.owner == owner {
			writes = append(writes, tl.Evaluate(position)...)
		}
	}
	return writes
}
