// Package journal records what the engine does into the write journal.
//
// A Recorder is an engine.Observer. It buffers writes and diagnostics
// in memory and flushes them to the store in one transaction per kind
// whenever the buffer reaches the batch size, on Flush, and on Close.
// Store failures are logged and counted; they never reach the tick.
package journal

import (
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/Mr-Dark-debug/tweenflow/internal/database"
	"github.com/Mr-Dark-debug/tweenflow/internal/engine"
	"github.com/Mr-Dark-debug/tweenflow/internal/update"
	"github.com/Mr-Dark-debug/tweenflow/pkg/timeutil"
)

// Session statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
)

// Config holds recorder settings.
type Config struct {
	Scene     string
	BatchSize int
	Metadata  map[string]string
	Logger    *log.Logger
}

// DefaultBatchSize is used when Config.BatchSize is not positive.
const DefaultBatchSize = 256

// Metrics tracks recorder throughput and error rates.
type Metrics struct {
	WritesRecorded      int64 `json:"writes_recorded"`
	DiagnosticsRecorded int64 `json:"diagnostics_recorded"`
	BatchesCommitted    int64 `json:"batches_committed"`
	ErrorCount          int64 `json:"error_count"`
}

// Recorder journals one session.
type Recorder struct {
	store     database.Store
	cfg       Config
	logger    *log.Logger
	sessionID string
	startedAt int64

	writes  []*database.WriteRecord
	diags   []*database.DiagnosticRecord
	metrics Metrics
	closed  bool
}

var _ engine.Observer = (*Recorder)(nil)

// NewRecorder starts a session in store.
func NewRecorder(store database.Store, cfg Config) (*Recorder, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	r := &Recorder{
		store:     store,
		cfg:       cfg,
		logger:    logger,
		sessionID: uuid.NewString(),
		startedAt: timeutil.NowNano(),
	}
	err := store.InsertSession(&database.Session{
		SessionID: r.sessionID,
		Scene:     cfg.Scene,
		StartedAt: r.startedAt,
		Status:    StatusRunning,
		Metadata:  cfg.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("starting journal session: %w", err)
	}
	logger.Printf("[INFO] Journal session %s started for scene %q", r.sessionID, cfg.Scene)
	return r, nil
}

// SessionID returns the id of the recorded session.
func (r *Recorder) SessionID() string { return r.sessionID }

// Metrics returns the current counters.
func (r *Recorder) Metrics() Metrics { return r.metrics }

// Pending returns the number of buffered records.
func (r *Recorder) Pending() int { return len(r.writes) + len(r.diags) }

// OnWrites implements engine.Observer.
func (r *Recorder) OnWrites(writes []engine.Write) {
	if r.closed {
		return
	}
	now := timeutil.NowNano()
	for _, w := range writes {
		old, nw := w.Old, w.New
		r.writes = append(r.writes, &database.WriteRecord{
			WriteID:    uuid.NewString(),
			SessionID:  r.sessionID,
			Tick:       int64(w.Tick),
			Position:   w.Position,
			Source:     w.Source,
			Target:     w.Target,
			Property:   w.Property,
			OldValue:   &old,
			NewValue:   &nw,
			RecordedAt: now,
		})
	}
	r.maybeFlush()
}

// OnDiagnostics implements engine.Observer.
func (r *Recorder) OnDiagnostics(diags []update.Diagnostic) {
	if r.closed {
		return
	}
	now := timeutil.NowNano()
	for _, d := range diags {
		r.diags = append(r.diags, &database.DiagnosticRecord{
			DiagID:     uuid.NewString(),
			SessionID:  r.sessionID,
			Tick:       int64(d.Tick),
			Kind:       d.Kind.String(),
			Outcome:    d.Outcome.String(),
			Target:     targetName(d.Target),
			Message:    d.Message(),
			RecordedAt: now,
		})
	}
	r.maybeFlush()
}

// OnTick implements engine.Observer.
func (r *Recorder) OnTick(uint64, engine.TickReport) {}

func (r *Recorder) maybeFlush() {
	if r.Pending() >= r.cfg.BatchSize {
		if err := r.Flush(); err != nil {
			r.logger.Printf("[WARN] Journal flush failed: %v", err)
		}
	}
}

// Flush writes every buffered record. Records of a failed batch are
// dropped so a broken store cannot grow the buffer without bound.
func (r *Recorder) Flush() error {
	var firstErr error

	if len(r.writes) > 0 {
		if err := r.store.BatchInsertWrites(r.writes); err != nil {
			r.metrics.ErrorCount++
			firstErr = fmt.Errorf("flushing %d writes: %w", len(r.writes), err)
		} else {
			r.metrics.WritesRecorded += int64(len(r.writes))
			r.metrics.BatchesCommitted++
		}
		r.writes = r.writes[:0]
	}

	if len(r.diags) > 0 {
		if err := r.store.BatchInsertDiagnostics(r.diags); err != nil {
			r.metrics.ErrorCount++
			if firstErr == nil {
				firstErr = fmt.Errorf("flushing %d diagnostics: %w", len(r.diags), err)
			}
		} else {
			r.metrics.DiagnosticsRecorded += int64(len(r.diags))
			r.metrics.BatchesCommitted++
		}
		r.diags = r.diags[:0]
	}

	return firstErr
}

// Close flushes and marks the session completed. The store is not
// closed.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	flushErr := r.Flush()
	r.closed = true

	end := timeutil.NowNano()
	err := r.store.InsertSession(&database.Session{
		SessionID: r.sessionID,
		Scene:     r.cfg.Scene,
		StartedAt: r.startedAt,
		EndedAt:   &end,
		Status:    StatusCompleted,
	})
	if err != nil {
		return fmt.Errorf("completing journal session: %w", err)
	}
	r.logger.Printf("[INFO] Journal session %s completed: %d writes, %d diagnostics",
		r.sessionID, r.metrics.WritesRecorded, r.metrics.DiagnosticsRecorded)
	return flushErr
}

func targetName(t any) string {
	if t == nil {
		return "<nil>"
	}
	if s, ok := t.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", t)
}
