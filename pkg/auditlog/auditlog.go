// Package auditlog persists reconciliation outcomes to a SQLite event log so
// repair history survives process restarts and can be inspected after the
// fact. The Writer appends; the Reader opens the database read-only so
// queries never block a repair in progress.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SchemaDDL creates the events table. Safe to apply repeatedly.
const SchemaDDL = `
CREATE TABLE IF NOT EXISTS events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	project       TEXT NOT NULL,
	action        TEXT NOT NULL,
	snapshot_id   TEXT NOT NULL DEFAULT '',
	files_carried INTEGER NOT NULL DEFAULT 0,
	state         TEXT NOT NULL,
	error         TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_events_project ON events(project, created_at);
`

// Entry is one row of the event log.
type Entry struct {
	ID           int64
	Project      string
	Action       string
	SnapshotID   string
	FilesCarried int
	State        string
	Error        string
	CreatedAt    time.Time
}

// Writer appends reconciliation events.
type Writer struct {
	db *sql.DB
}

// NewWriter wraps an open database handle and ensures the schema exists.
func NewWriter(db *sql.DB) (*Writer, error) {
	if _, err := db.ExecContext(context.Background(), SchemaDDL); err != nil {
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}
	return &Writer{db: db}, nil
}

// Append inserts one event row.
func (w *Writer) Append(ctx context.Context, e Entry) error {
	_, err := w.db.ExecContext(ctx,
		`INSERT INTO events (project, action, snapshot_id, files_carried, state, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Project, e.Action, e.SnapshotID, e.FilesCarried, e.State, e.Error,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// QueryOpts filters event queries.
type QueryOpts struct {
	Project string // restrict to one project; empty means all
	Limit   int    // 0 = no limit
}

// Reader provides read-only access to the event log.
type Reader struct {
	db *sql.DB
}

// NewReader opens the audit database read-only with WAL so queries do not
// block a writer. The database must already exist.
func NewReader(dbPath string) (*Reader, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("audit database not found: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}
	return &Reader{db: db}, nil
}

// Close releases the database connection. Safe to call multiple times.
func (r *Reader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Recent returns events newest first, filtered by opts.
func (r *Reader) Recent(ctx context.Context, opts QueryOpts) ([]Entry, error) {
	var conds []string
	var args []any
	if opts.Project != "" {
		conds = append(conds, "project = ?")
		args = append(args, opts.Project)
	}

	query := "SELECT id, project, action, snapshot_id, files_carried, state, error, created_at FROM events"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Project, &e.Action, &e.SnapshotID,
			&e.FilesCarried, &e.State, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
