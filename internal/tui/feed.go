package tui

import (
	"github.com/Mr-Dark-debug/tweenflow/internal/engine"
	"github.com/Mr-Dark-debug/tweenflow/internal/update"
)

// Entry is one line of the journal pane: a write or a diagnostic.
type Entry struct {
	Write *engine.Write
	Diag  *update.Diagnostic
}

// Tick returns the tick the entry belongs to.
func (e Entry) Tick() uint64 {
	if e.Write != nil {
		return e.Write.Tick
	}
	if e.Diag != nil {
		return e.Diag.Tick
	}
	return 0
}

// Feed is an engine.Observer that keeps the most recent entries for
// display and passes every call on to an optional next observer, such
// as a journal recorder.
type Feed struct {
	next    engine.Observer
	limit   int
	entries []Entry
}

var _ engine.Observer = (*Feed)(nil)

// NewFeed keeps up to limit entries. next may be nil.
func NewFeed(next engine.Observer, limit int) *Feed {
	if limit <= 0 {
		limit = 200
	}
	return &Feed{next: next, limit: limit}
}

// OnWrites implements engine.Observer.
func (f *Feed) OnWrites(writes []engine.Write) {
	for i := range writes {
		w := writes[i]
		f.push(Entry{Write: &w})
	}
	if f.next != nil {
		f.next.OnWrites(writes)
	}
}

// OnDiagnostics implements engine.Observer.
func (f *Feed) OnDiagnostics(diags []update.Diagnostic) {
	for i := range diags {
		d := diags[i]
		f.push(Entry{Diag: &d})
	}
	if f.next != nil {
		f.next.OnDiagnostics(diags)
	}
}

// OnTick implements engine.Observer.
func (f *Feed) OnTick(tick uint64, report engine.TickReport) {
	if f.next != nil {
		f.next.OnTick(tick, report)
	}
}

func (f *Feed) push(e Entry) {
	f.entries = append(f.entries, e)
	if over := len(f.entries) - f.limit; over > 0 {
		f.entries = append(f.entries[:0], f.entries[over:]...)
	}
}

// Entries returns the kept entries, oldest first.
func (f *Feed) Entries() []Entry { return f.entries }

// Clear drops every kept entry.
func (f *Feed) Clear() { f.entries = nil }
