// Package engine is the host-facing runtime of tweenflow. It owns the
// timeline registry, the update task queue and the echo-suppression
// guard for one program, and exposes the tick entry point a host calls
// once per frame.
//
// Architecture:
//
//	Host frame → Tick(root) → timelines per flow state → bindings → Replay → Observer
//
// The runtime is single-threaded. Every call, including widget change
// events raised synchronously while tasks apply, runs on the host's
// goroutine.
package engine

import (
	"fmt"
	"io"
	"log"

	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/timeline"
	"github.com/Mr-Dark-debug/tweenflow/internal/update"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
)

// Write sources.
const (
	SourceTimeline = "timeline"
	SourceTask     = "task"
)

// Write is one widget property change in observer form.
type Write struct {
	Tick     uint64  `json:"tick"`
	Position float64 `json:"position"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Property string  `json:"property"`
	Old      string  `json:"old"`
	New      string  `json:"new"`
}

// Observer receives what every tick did. Calls happen on the tick
// goroutine and must not re-enter the runtime.
type Observer interface {
	OnWrites(writes []Write)
	OnDiagnostics(diags []update.Diagnostic)
	OnTick(tick uint64, report TickReport)
}

// Stats tracks lifetime counters.
type Stats struct {
	Ticks          uint64 `json:"ticks"`
	TimelineWrites int64  `json:"timeline_writes"`
	TaskWrites     int64  `json:"task_writes"`
	Rejected       int64  `json:"rejected"`
	Failed         int64  `json:"failed"`
	Stale          int64  `json:"stale"`
	Forwarded      int64  `json:"forwarded"`
}

// Config holds the collaborators of a Runtime.
type Config struct {
	// Evaluator supplies fresh values for update tasks.
	Evaluator flow.Evaluator
	// Assigner receives UI-originated edits. Nil disables forwarding.
	Assigner flow.Assigner
	// Observer is optional.
	Observer Observer
	// Logger defaults to a discarding logger.
	Logger *log.Logger
	// OnScreenChanged is called by ReplaceScreen with 1-based screen
	// numbers; from is 0 before the first screen.
	OnScreenChanged func(from, to int)
}

// ScreenLoad holds the parameters of a screen transition.
type ScreenLoad struct {
	Anim  int     `json:"anim"`
	Speed float64 `json:"speed"`
	Delay float64 `json:"delay"`
}

// TickReport summarizes one Tick.
type TickReport struct {
	Tick           uint64
	TimelineWrites []timeline.Write
	Update         update.Report
}

// Runtime is the explicit owner of all per-program engine state.
type Runtime struct {
	cfg    Config
	logger *log.Logger

	timelines *timeline.Registry
	queue     *update.Queue
	guard     *update.Guard
	forwarder *update.Forwarder
	bindings  []update.Task

	objects map[int]any
	screen  int
	load    ScreenLoad

	tick     uint64
	position float64
	stats    Stats
}

// New creates a runtime in its initial state.
func New(cfg Config) *Runtime {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	r := &Runtime{
		cfg:       cfg,
		logger:    logger,
		timelines: timeline.NewRegistry(),
		queue:     update.NewQueue(),
		guard:     &update.Guard{},
		objects:   make(map[int]any),
		screen:    -1,
	}
	if cfg.Assigner != nil {
		r.forwarder = &update.Forwarder{
			Guard:    r.guard,
			Assigner: r.assigner(),
			OnError:  r.forwardFailed,
		}
	}
	return r
}

// Reset returns the runtime to its initial state: timelines, pending
// tasks, bindings, the object index and the current screen are dropped.
// Widgets are never touched.
func (r *Runtime) Reset() {
	r.timelines.Reset()
	r.queue.Clear()
	r.guard.End()
	r.bindings = nil
	r.objects = make(map[int]any)
	r.screen = -1
	r.load = ScreenLoad{}
	r.tick = 0
	r.position = 0
	r.stats = Stats{}
}

// Stats returns the lifetime counters.
func (r *Runtime) Stats() Stats { return r.stats }

// Guard exposes the echo-suppression guard.
func (r *Runtime) Guard() *update.Guard { return r.guard }

// Timelines exposes the timeline registry.
func (r *Runtime) Timelines() *timeline.Registry { return r.timelines }

// Queue exposes the pending update tasks.
func (r *Runtime) Queue() *update.Queue { return r.queue }

// CurrentTick returns the number of completed ticks.
func (r *Runtime) CurrentTick() uint64 { return r.tick }

// ============================================================
// Timelines
// ============================================================

// RegisterKeyframe appends kf to the timeline of target. owner is the
// flow state that plays the timeline during Tick.
func (r *Runtime) RegisterKeyframe(target widget.Animatable, owner flow.Scope, kf timeline.Keyframe) *timeline.Timeline {
	var o any
	if owner != nil {
		o = owner
	}
	return r.timelines.Register(target, o, kf)
}

// AdvanceTimelines evaluates every timeline at one shared position.
func (r *Runtime) AdvanceTimelines(position float64) []timeline.Write {
	r.position = position
	writes := r.timelines.AdvanceAll(position)
	r.emitTimelineWrites(writes, position)
	return writes
}

// ResetTimelines discards every timeline.
func (r *Runtime) ResetTimelines() { r.timelines.Reset() }

// advanceScope evaluates the timelines owned by s at its own position,
// then recurses into its children.
func (r *Runtime) advanceScope(s flow.Scope) []timeline.Write {
	pos := s.TimelinePosition()
	writes := r.timelines.AdvanceOwned(s, pos)
	r.emitTimelineWrites(writes, pos)
	for _, c := range s.ChildScopes() {
		writes = append(writes, r.advanceScope(c)...)
	}
	return writes
}

func (r *Runtime) emitTimelineWrites(writes []timeline.Write, position float64) {
	if len(writes) == 0 {
		return
	}
	r.stats.TimelineWrites += int64(len(writes))
	if r.cfg.Observer == nil {
		return
	}
	out := make([]Write, len(writes))
	for i, w := range writes {
		out[i] = Write{
			Tick:     r.tick,
			Position: position,
			Source:   SourceTimeline,
			Target:   targetName(w.Target),
			Property: w.Prop.String(),
			Old:      fmt.Sprint(w.Old),
			New:      fmt.Sprint(w.New),
		}
	}
	r.cfg.Observer.OnWrites(out)
}

// ============================================================
// Update tasks
// ============================================================

// EnqueueUpdateTask builds a task of kind and appends it to the queue.
func (r *Runtime) EnqueueUpdateTask(kind update.Kind, target any, src flow.Source, p update.Params) error {
	t, err := update.New(kind, target, src, p)
	if err != nil {
		return err
	}
	r.queue.Enqueue(t)
	return nil
}

// Enqueue appends an already built task.
func (r *Runtime) Enqueue(t update.Task) { r.queue.Enqueue(t) }

// Bind registers a task that is enqueued again at the start of every
// Tick, so the property stays in sync for the life of the screen.
func (r *Runtime) Bind(t update.Task) { r.bindings = append(r.bindings, t) }

// Bindings returns the persistent bindings.
func (r *Runtime) Bindings() []update.Task { return r.bindings }

// ReplayUpdateTasks applies and clears the pending tasks.
func (r *Runtime) ReplayUpdateTasks() update.Report {
	rep := r.queue.Replay(r.cfg.Evaluator, r.guard)

	r.stats.TaskWrites += int64(rep.Applied)
	r.stats.Rejected += int64(rep.Rejected)
	r.stats.Failed += int64(rep.Failed)
	r.stats.Stale += int64(rep.Stale)

	for i := range rep.Diagnostics {
		d := &rep.Diagnostics[i]
		d.Tick = r.tick
		if d.Outcome == update.Rejected {
			r.logger.Printf("[INFO] %s on %s skipped: %v", d.Kind, targetName(d.Target), d.Err)
			continue
		}
		r.logger.Printf("[WARN] %s on %s: %v", d.Kind, targetName(d.Target), d.Err)
	}

	if r.cfg.Observer != nil {
		if len(rep.Writes) > 0 {
			out := make([]Write, len(rep.Writes))
			for i, w := range rep.Writes {
				out[i] = Write{
					Tick:     r.tick,
					Position: r.position,
					Source:   SourceTask,
					Target:   targetName(w.Target),
					Property: w.Property,
					Old:      w.Old,
					New:      w.New,
				}
			}
			r.cfg.Observer.OnWrites(out)
		}
		if len(rep.Diagnostics) > 0 {
			r.cfg.Observer.OnDiagnostics(rep.Diagnostics)
		}
	}
	return rep
}

// Tick runs one frame: every flow state in the tree rooted at root
// plays its own timelines at its own position, persistent bindings are
// enqueued, and the queue is replayed. A nil root skips timelines.
func (r *Runtime) Tick(root flow.Scope) TickReport {
	r.tick++
	var rep TickReport
	rep.Tick = r.tick

	if root != nil {
		r.position = root.TimelinePosition()
		rep.TimelineWrites = r.advanceScope(root)
	}
	for _, t := range r.bindings {
		r.queue.Enqueue(t)
	}
	rep.Update = r.ReplayUpdateTasks()

	r.stats.Ticks = r.tick
	if r.cfg.Observer != nil {
		r.cfg.Observer.OnTick(r.tick, rep)
	}
	return rep
}

// ============================================================
// Change-event forwarding
// ============================================================

// Forward attaches a change handler to target that assigns user edits
// of kind to src. It fails when the runtime has no assigner.
func (r *Runtime) Forward(kind update.Kind, target widget.EventSource, src flow.Source) error {
	if r.forwarder == nil {
		return fmt.Errorf("engine: no assigner configured for %s forwarding", kind)
	}
	return r.forwarder.Attach(kind, target, src)
}

func (r *Runtime) forwardFailed(kind update.Kind, err error) {
	r.logger.Printf("[WARN] forward %s: %v", kind, err)
	d := update.Diagnostic{Tick: r.tick, Kind: kind, Outcome: update.Classify(err), Err: err}
	if r.cfg.Observer != nil {
		r.cfg.Observer.OnDiagnostics([]update.Diagnostic{d})
	}
}

type countingAssigner struct {
	next  flow.Assigner
	stats *Stats
}

func (r *Runtime) assigner() flow.Assigner {
	return &countingAssigner{next: r.cfg.Assigner, stats: &r.stats}
}

func (c *countingAssigner) AssignInteger(src flow.Source, v int32) error {
	return c.count(c.next.AssignInteger(src, v))
}

func (c *countingAssigner) AssignString(src flow.Source, v string) error {
	return c.count(c.next.AssignString(src, v))
}

func (c *countingAssigner) AssignBoolean(src flow.Source, v bool) error {
	return c.count(c.next.AssignBoolean(src, v))
}

func (c *countingAssigner) count(err error) error {
	if err == nil {
		c.stats.Forwarded++
	}
	return err
}

// ============================================================
// Object index and screens
// ============================================================

// SetObjectIndex maps an evaluator object index to a widget handle.
// The first registration for an index wins.
func (r *Runtime) SetObjectIndex(index int, obj any) {
	if _, ok := r.objects[index]; ok {
		return
	}
	r.objects[index] = obj
}

// ObjectByIndex resolves an evaluator object index.
func (r *Runtime) ObjectByIndex(index int) (any, bool) {
	obj, ok := r.objects[index]
	return obj, ok
}

// ReplaceScreen records a transition to the 0-based screenID with the
// given load parameters.
func (r *Runtime) ReplaceScreen(screenID int, load ScreenLoad) {
	from := r.screen
	r.screen = screenID
	r.load = load
	if r.cfg.OnScreenChanged != nil {
		r.cfg.OnScreenChanged(from+1, screenID+1)
	}
}

// CurrentScreen returns the 0-based current screen, or -1.
func (r *Runtime) CurrentScreen() int { return r.screen }

// LastScreenLoad returns the parameters of the last transition.
func (r *Runtime) LastScreenLoad() ScreenLoad { return r.load }

func targetName(t any) string {
	if t == nil {
		return "<nil>"
	}
	if s, ok := t.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", t)
}
