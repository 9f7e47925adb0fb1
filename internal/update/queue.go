package update

import (
	"errors"
	"fmt"

	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
)

// Outcome classifies what replaying one task did.
type Outcome int

const (
	Applied Outcome = iota
	Unchanged
	Rejected
	Failed
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Unchanged:
		return "unchanged"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	case Stale:
		return "stale"
	}
	return "outcome?"
}

// Classify maps a task error to its outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Applied
	case errors.Is(err, ErrConstraint):
		return Rejected
	case errors.Is(err, ErrStaleTarget):
		return Stale
	default:
		return Failed
	}
}

// Diagnostic describes a task that did not apply.
type Diagnostic struct {
	// Tick is stamped by the engine; Replay leaves it zero.
	Tick    uint64
	Kind    Kind
	Target  any
	Source  flow.Source
	Outcome Outcome
	Err     error
}

func (d Diagnostic) Error() string { return d.Kind.String() + ": " + d.Err.Error() }

func (d Diagnostic) Unwrap() error { return d.Err }

// Message returns the underlying diagnostic text.
func (d Diagnostic) Message() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

// Report summarizes one replay.
type Report struct {
	Applied     int
	Unchanged   int
	Rejected    int
	Failed      int
	Stale       int
	Writes      []Write
	Diagnostics []Diagnostic
}

// Total returns the number of tasks replayed.
func (r *Report) Total() int {
	return r.Applied + r.Unchanged + r.Rejected + r.Failed + r.Stale
}

// Queue is the FIFO of update tasks registered for the current tick.
type Queue struct {
	tasks []Task
}

// NewQueue returns an empty queue.
func NewQueue() *Queue { return &Queue{} }

// Enqueue appends t. Duplicates are allowed and each one is replayed.
func (q *Queue) Enqueue(t Task) {
	q.tasks = append(q.tasks, t)
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int { return len(q.tasks) }

// Tasks returns the pending tasks in enqueue order.
func (q *Queue) Tasks() []Task { return q.tasks }

// Clear drops every pending task.
func (q *Queue) Clear() { q.tasks = nil }

// Replay applies every pending task in enqueue order and then empties
// the queue. Tasks enqueued while replaying are kept for the next
// replay.
//
// For the extent of each apply call the guard marks the task's target
// as active so that change events raised by the write are recognised
// as echoes. A task that fails, is rejected, or targets a stale handle
// is recorded in the report and does not stop the replay.
func (q *Queue) Replay(ev flow.Evaluator, g *Guard) Report {
	tasks := q.tasks
	q.tasks = nil

	var rep Report
	for _, t := range tasks {
		w, err := applyGuarded(t, ev, g)

		if err != nil {
			out := Classify(err)
			switch out {
			case Rejected:
				rep.Rejected++
			case Stale:
				rep.Stale++
			default:
				rep.Failed++
			}
			rep.Diagnostics = append(rep.Diagnostics, Diagnostic{
				Kind:    t.Kind(),
				Target:  t.Target(),
				Source:  t.Source(),
				Outcome: out,
				Err:     err,
			})
			continue
		}
		if w == nil {
			rep.Unchanged++
			continue
		}
		rep.Applied++
		rep.Writes = append(rep.Writes, *w)
	}
	return rep
}

var errNoEvaluator = fmt.Errorf("%w: no evaluator configured", ErrEval)

func applyGuarded(t Task, ev flow.Evaluator, g *Guard) (*Write, error) {
	if ev == nil {
		return nil, errNoEvaluator
	}
	g.Begin(t.Target())
	defer g.End()
	return t.apply(ev)
}
