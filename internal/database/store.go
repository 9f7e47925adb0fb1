// Package database provides the storage layer for the tweenflow write
// journal.
//
// It implements the Store interface using SQLite with WAL mode and
// indexes tuned for per-tick, per-property lookups. The DBService struct
// is the primary entry point for all database operations.
package database

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store defines the interface for journal persistence.
type Store interface {
	// InsertSession persists a session, updating end time, status and
	// metadata when it already exists.
	InsertSession(session *Session) error

	// BatchInsertWrites inserts multiple writes in a single transaction.
	BatchInsertWrites(writes []*WriteRecord) error
	// BatchInsertDiagnostics inserts multiple diagnostics in a single transaction.
	BatchInsertDiagnostics(diags []*DiagnosticRecord) error

	// QuerySessions returns sessions matching the filter, most recent first.
	QuerySessions(filter SessionFilter) ([]*Session, error)
	// QueryWrites returns the writes of a session ordered by tick.
	QueryWrites(sessionID string, filter WriteFilter) ([]*WriteRecord, error)
	// QueryDiagnostics returns the diagnostics of a session ordered by tick.
	QueryDiagnostics(sessionID string, limit int) ([]*DiagnosticRecord, error)
	// GetPropertyHistory returns every write of one target property.
	GetPropertyHistory(sessionID, target, property string) ([]*WriteRecord, error)
	// GetSessionStats returns aggregated statistics for a session.
	GetSessionStats(sessionID string) (*SessionStats, error)

	// Close gracefully shuts down the database connection.
	Close() error
}

// ============================================================
// Domain Models
// ============================================================

// Session is one run of a scene.
type Session struct {
	SessionID string            `json:"session_id"`
	Scene     string            `json:"scene"`
	StartedAt int64             `json:"started_at"`
	EndedAt   *int64            `json:"ended_at,omitempty"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// WriteRecord is one widget property write.
type WriteRecord struct {
	WriteID    string  `json:"write_id"`
	SessionID  string  `json:"session_id"`
	Tick       int64   `json:"tick"`
	Position   float64 `json:"position"`
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Property   string  `json:"property"`
	OldValue   *string `json:"old_value,omitempty"`
	NewValue   *string `json:"new_value,omitempty"`
	RecordedAt int64   `json:"recorded_at"`
}

// DiagnosticRecord is one task that did not apply.
type DiagnosticRecord struct {
	DiagID     string `json:"diag_id"`
	SessionID  string `json:"session_id"`
	Tick       int64  `json:"tick"`
	Kind       string `json:"kind"`
	Outcome    string `json:"outcome"`
	Target     string `json:"target"`
	Message    string `json:"message"`
	RecordedAt int64  `json:"recorded_at"`
}

// SessionFilter defines query parameters for session listing.
type SessionFilter struct {
	Scene  *string `json:"scene,omitempty"`
	Status *string `json:"status,omitempty"`
	Since  *int64  `json:"since,omitempty"` // Unix nanoseconds
	Until  *int64  `json:"until,omitempty"` // Unix nanoseconds
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// WriteFilter narrows a write query.
type WriteFilter struct {
	Source   *string `json:"source,omitempty"`
	Target   *string `json:"target,omitempty"`
	Property *string `json:"property,omitempty"`
	FromTick *int64  `json:"from_tick,omitempty"`
	ToTick   *int64  `json:"to_tick,omitempty"`
	Limit    int     `json:"limit"`
}

// SessionStats holds aggregated statistics for a single session.
type SessionStats struct {
	SessionID      string `json:"session_id"`
	Ticks          int64  `json:"ticks"`
	TotalWrites    int    `json:"total_writes"`
	TimelineWrites int    `json:"timeline_writes"`
	TaskWrites     int    `json:"task_writes"`
	Targets        int    `json:"targets"`
	Properties     int    `json:"properties"`
	Diagnostics    int    `json:"diagnostics"`
	Rejected       int    `json:"rejected"`
}

// ============================================================
// DBService Implementation
// ============================================================

// DBService implements the Store interface using SQLite.
// It manages the connection, prepared statements, and ensures
// thread-safe access through a read-write mutex.
type DBService struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	stmtInsertSession    *sql.Stmt
	stmtInsertWrite      *sql.Stmt
	stmtInsertDiagnostic *sql.Stmt
}

// NewDBService creates a new database service, initializes the schema,
// and prepares frequently-used statements.
//
// Use ":memory:" for in-memory databases (useful for testing).
func NewDBService(path string) (*DBService, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_cache_size=-64000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:   db,
		path: path,
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := svc.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}

	return svc, nil
}

// Path returns the database location.
func (s *DBService) Path() string { return s.path }

func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

func (s *DBService) prepareStatements() error {
	var err error

	s.stmtInsertSession, err = s.db.Prepare(`
		INSERT INTO sessions (session_id, scene, started_at, ended_at, status, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			ended_at = COALESCE(excluded.ended_at, sessions.ended_at),
			status = excluded.status,
			metadata = COALESCE(excluded.metadata, sessions.metadata)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertSession: %w", err)
	}

	s.stmtInsertWrite, err = s.db.Prepare(`
		INSERT INTO writes (write_id, session_id, tick, position, source, target, property,
			old_value, new_value, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertWrite: %w", err)
	}

	s.stmtInsertDiagnostic, err = s.db.Prepare(`
		INSERT INTO diagnostics (diag_id, session_id, tick, kind, outcome, target, message, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertDiagnostic: %w", err)
	}

	return nil
}

// InsertSession persists a session record. If a session with the same
// ID already exists, it updates ended_at, status, and metadata.
func (s *DBService) InsertSession(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var metadataJSON *string
	if session.Metadata != nil {
		b, err := json.Marshal(session.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling session metadata: %w", err)
		}
		str := string(b)
		metadataJSON = &str
	}

	_, err := s.stmtInsertSession.Exec(
		session.SessionID, session.Scene, session.StartedAt, session.EndedAt,
		session.Status, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", session.SessionID, err)
	}
	return nil
}

// BatchInsertWrites inserts multiple writes within a single transaction.
func (s *DBService) BatchInsertWrites(writes []*WriteRecord) error {
	if len(writes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch write transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt := tx.Stmt(s.stmtInsertWrite)
	for _, w := range writes {
		recorded := w.RecordedAt
		if recorded == 0 {
			recorded = time.Now().UnixNano()
		}
		_, err := stmt.Exec(
			w.WriteID, w.SessionID, w.Tick, w.Position, w.Source,
			w.Target, w.Property, w.OldValue, w.NewValue, recorded,
		)
		if err != nil {
			return fmt.Errorf("batch inserting write %s: %w", w.WriteID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch write transaction: %w", err)
	}
	return nil
}

// BatchInsertDiagnostics inserts multiple diagnostics within a single
// transaction.
func (s *DBService) BatchInsertDiagnostics(diags []*DiagnosticRecord) error {
	if len(diags) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch diagnostic transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := tx.Stmt(s.stmtInsertDiagnostic)
	for _, d := range diags {
		recorded := d.RecordedAt
		if recorded == 0 {
			recorded = time.Now().UnixNano()
		}
		_, err := stmt.Exec(
			d.DiagID, d.SessionID, d.Tick, d.Kind, d.Outcome,
			d.Target, d.Message, recorded,
		)
		if err != nil {
			return fmt.Errorf("batch inserting diagnostic %s: %w", d.DiagID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch diagnostic transaction: %w", err)
	}
	return nil
}

// QuerySessions returns sessions matching the given filter criteria.
// Results are ordered by started_at descending (most recent first).
func (s *DBService) QuerySessions(filter SessionFilter) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT session_id, scene, started_at, ended_at, status, metadata FROM sessions WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Scene != nil {
		query += ` AND scene = ?`
		args = append(args, *filter.Scene)
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	if filter.Since != nil {
		query += ` AND started_at >= ?`
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		query += ` AND started_at <= ?`
		args = append(args, *filter.Until)
	}

	query += ` ORDER BY started_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else {
		query += ` LIMIT 100`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var metadataStr *string
		if err := rows.Scan(&sess.SessionID, &sess.Scene, &sess.StartedAt, &sess.EndedAt, &sess.Status, &metadataStr); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		if metadataStr != nil {
			sess.Metadata = make(map[string]string)
			if err := json.Unmarshal([]byte(*metadataStr), &sess.Metadata); err != nil {
				// Non-fatal: metadata is supplementary
				sess.Metadata = map[string]string{"_raw": *metadataStr}
			}
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// QueryWrites returns the writes of a session ordered by tick, then by
// insertion order within a tick.
func (s *DBService) QueryWrites(sessionID string, filter WriteFilter) ([]*WriteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT write_id, session_id, tick, position, source, target, property,
			old_value, new_value, recorded_at
		FROM writes
		WHERE session_id = ?`
	args := []interface{}{sessionID}

	if filter.Source != nil {
		query += ` AND source = ?`
		args = append(args, *filter.Source)
	}
	if filter.Target != nil {
		query += ` AND target = ?`
		args = append(args, *filter.Target)
	}
	if filter.Property != nil {
		query += ` AND property = ?`
		args = append(args, *filter.Property)
	}
	if filter.FromTick != nil {
		query += ` AND tick >= ?`
		args = append(args, *filter.FromTick)
	}
	if filter.ToTick != nil {
		query += ` AND tick <= ?`
		args = append(args, *filter.ToTick)
	}

	query += ` ORDER BY tick ASC, rowid ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying writes for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	return scanWrites(rows)
}

// QueryDiagnostics returns the diagnostics of a session ordered by tick.
func (s *DBService) QueryDiagnostics(sessionID string, limit int) ([]*DiagnosticRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT diag_id, session_id, tick, kind, outcome, target, message, recorded_at
		FROM diagnostics
		WHERE session_id = ?
		ORDER BY tick ASC, rowid ASC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying diagnostics for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var diags []*DiagnosticRecord
	for rows.Next() {
		d := &DiagnosticRecord{}
		if err := rows.Scan(&d.DiagID, &d.SessionID, &d.Tick, &d.Kind, &d.Outcome,
			&d.Target, &d.Message, &d.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning diagnostic row: %w", err)
		}
		diags = append(diags, d)
	}
	return diags, rows.Err()
}

// GetPropertyHistory returns the full write history of one property of
// one target. This answers "when did this widget start moving?"
func (s *DBService) GetPropertyHistory(sessionID, target, property string) ([]*WriteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT write_id, session_id, tick, position, source, target, property,
			old_value, new_value, recorded_at
		FROM writes
		WHERE session_id = ? AND target = ? AND property = ?
		ORDER BY tick ASC, rowid ASC
	`, sessionID, target, property)
	if err != nil {
		return nil, fmt.Errorf("querying history of %s.%s: %w", target, property, err)
	}
	defer rows.Close()

	return scanWrites(rows)
}

// GetSessionStats returns aggregated statistics for a session.
func (s *DBService) GetSessionStats(sessionID string) (*SessionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &SessionStats{SessionID: sessionID}

	err := s.db.QueryRow(`
		SELECT
			COUNT(*) as total_writes,
			COALESCE(SUM(CASE WHEN source = 'timeline' THEN 1 ELSE 0 END), 0) as timeline_writes,
			COALESCE(SUM(CASE WHEN source = 'task' THEN 1 ELSE 0 END), 0) as task_writes,
			COUNT(DISTINCT target) as targets,
			COUNT(DISTINCT target || '.' || property) as properties,
			COALESCE(MAX(tick), 0) as ticks
		FROM writes
		WHERE session_id = ?
	`, sessionID).Scan(
		&stats.TotalWrites, &stats.TimelineWrites, &stats.TaskWrites,
		&stats.Targets, &stats.Properties, &stats.Ticks,
	)
	if err != nil {
		return nil, fmt.Errorf("querying session stats for %s: %w", sessionID, err)
	}

	var maxDiagTick int64
	err = s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = 'rejected' THEN 1 ELSE 0 END), 0),
			COALESCE(MAX(tick), 0)
		FROM diagnostics
		WHERE session_id = ?
	`, sessionID).Scan(&stats.Diagnostics, &stats.Rejected, &maxDiagTick)
	if err != nil {
		return nil, fmt.Errorf("counting diagnostics for session %s: %w", sessionID, err)
	}
	if maxDiagTick > stats.Ticks {
		stats.Ticks = maxDiagTick
	}

	return stats, nil
}

// Close gracefully shuts down the database, closing all prepared statements
// and the underlying connection pool.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmts := []*sql.Stmt{s.stmtInsertSession, s.stmtInsertWrite, s.stmtInsertDiagnostic}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}

	return s.db.Close()
}

// ============================================================
// Scan Helpers
// ============================================================

func scanWrites(rows *sql.Rows) ([]*WriteRecord, error) {
	var writes []*WriteRecord
	for rows.Next() {
		w := &WriteRecord{}
		if err := rows.Scan(
			&w.WriteID, &w.SessionID, &w.Tick, &w.Position, &w.Source,
			&w.Target, &w.Property, &w.OldValue, &w.NewValue, &w.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning write row: %w", err)
		}
		writes = append(writes, w)
	}
	return writes, rows.Err()
}
