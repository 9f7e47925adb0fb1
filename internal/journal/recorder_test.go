package journal

import (
	"errors"
	"testing"

	"github.com/Mr-Dark-debug/tweenflow/internal/database"
	"github.com/Mr-Dark-debug/tweenflow/internal/easing"
	"github.com/Mr-Dark-debug/tweenflow/internal/engine"
	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/timeline"
	"github.com/Mr-Dark-debug/tweenflow/internal/update"
	"github.com/Mr-Dark-debug/tweenflow/internal/widget"
)

func newStore(t *testing.T) *database.DBService {
	t.Helper()
	svc, err := database.NewDBService(":memory:")
	if err != nil {
		t.Fatalf("NewDBService failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestRecorderJournalsEngineRun(t *testing.T) {
	store := newStore(t)
	rec, err := NewRecorder(store, Config{Scene: "demo", BatchSize: 4})
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	ev := flow.NewEvaluator()
	rt := engine.New(engine.Config{Evaluator: ev, Assigner: ev, Observer: rec})
	root := flow.NewState("main")
	root.Set(0, 0, "ready")
	root.Fail(0, 1, "no value yet")

	box := widget.New("box", widget.KindObj)
	label := widget.New("label", widget.KindLabel)
	rt.RegisterKeyframe(box, root, timeline.NewKeyframe(0, 1).With(widget.PropX, 10, easing.Linear))
	for prop, kind := range map[int]update.Kind{0: update.KindLabelText, 1: update.KindHiddenFlag} {
		task, err := update.New(kind, label, flow.Source{State: root, Property: prop}, update.Params{})
		if err != nil {
			t.Fatal(err)
		}
		rt.Bind(task)
	}

	for i := 0; i < 5; i++ {
		root.SetTimelinePosition(float64(i) * 0.25)
		rt.Tick(root)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	stats, err := store.GetSessionStats(rec.SessionID())
	if err != nil {
		t.Fatalf("GetSessionStats failed: %v", err)
	}
	// 5 x positions (0, .25, .5, .75, 1) and one label text write.
	if stats.TimelineWrites != 5 || stats.TaskWrites != 1 {
		t.Errorf("unexpected write counts %+v", stats)
	}
	if stats.Diagnostics != 5 {
		t.Errorf("expected one diagnostic per tick, got %d", stats.Diagnostics)
	}

	history, err := store.GetPropertyHistory(rec.SessionID(), "box", "x")
	if err != nil {
		t.Fatalf("GetPropertyHistory failed: %v", err)
	}
	if len(history) != 5 || *history[4].NewValue != "10" {
		t.Errorf("unexpected x history %+v", history)
	}

	sessions, err := store.QuerySessions(database.SessionFilter{})
	if err != nil {
		t.Fatalf("QuerySessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Status != StatusCompleted || sessions[0].EndedAt == nil {
		t.Errorf("expected one completed session, got %+v", sessions)
	}
}

func TestRecorderBatches(t *testing.T) {
	store := newStore(t)
	rec, err := NewRecorder(store, Config{Scene: "batch", BatchSize: 3})
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	rec.OnWrites([]engine.Write{{Tick: 1, Source: engine.SourceTask, Target: "a", Property: "text"}})
	rec.OnWrites([]engine.Write{{Tick: 1, Source: engine.SourceTask, Target: "b", Property: "text"}})
	if rec.Pending() != 2 || rec.Metrics().BatchesCommitted != 0 {
		t.Fatalf("expected 2 buffered records, got %d", rec.Pending())
	}
	rec.OnWrites([]engine.Write{{Tick: 2, Source: engine.SourceTask, Target: "c", Property: "text"}})
	if rec.Pending() != 0 || rec.Metrics().WritesRecorded != 3 {
		t.Errorf("expected flush at batch size, got pending=%d metrics=%+v", rec.Pending(), rec.Metrics())
	}
}

type failingStore struct {
	*database.DBService
}

func (failingStore) BatchInsertWrites([]*database.WriteRecord) error {
	return errors.New("disk full")
}

func TestRecorderStoreErrorsCounted(t *testing.T) {
	store := failingStore{newStore(t)}
	rec, err := NewRecorder(store, Config{Scene: "broken", BatchSize: 1})
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	rec.OnWrites([]engine.Write{{Tick: 1, Source: engine.SourceTimeline, Target: "a", Property: "x"}})
	if rec.Metrics().ErrorCount != 1 {
		t.Errorf("expected 1 error, got %+v", rec.Metrics())
	}
	if rec.Pending() != 0 {
		t.Errorf("failed batch should be dropped, got %d pending", rec.Pending())
	}
}

func TestRecorderIgnoresAfterClose(t *testing.T) {
	store := newStore(t)
	rec, err := NewRecorder(store, Config{Scene: "closed"})
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	rec.OnWrites([]engine.Write{{Tick: 1, Source: engine.SourceTask, Target: "a", Property: "text"}})
	if rec.Pending() != 0 {
		t.Error("expected writes after Close to be ignored")
	}
	if err := rec.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}
