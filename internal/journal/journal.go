// Package journal keeps a local append-only record of operator activity:
// logins, uploads, ballot submissions, round sign-offs. It is an audit
// trail for the humans running the client, not workflow state; the
// server remains the single source of truth and the journal is never
// read back into the dashboard.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS activity (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	at       TEXT NOT NULL,
	actor    TEXT NOT NULL,
	event    TEXT NOT NULL,
	detail   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS activity_at ON activity(at);
`

// Journal is an append-only activity log backed by a local sqlite file.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database under dir.
func Open(dir string) (*Journal, error) {
	path := filepath.Join(dir, "activity.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// A single writer is plenty; the driver serializes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record appends one activity row. Failures are returned, not fatal:
// callers log and move on, the workflow never blocks on the journal.
func (j *Journal) Record(ctx context.Context, actor, event, detail string) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO activity (at, actor, event, detail) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), actor, event, detail)
	if err != nil {
		return fmt.Errorf("journal %s: %w", event, err)
	}
	return nil
}

// Entry is one recorded activity row.
type Entry struct {
	At     time.Time
	Actor  string
	Event  string
	Detail string
}

// Tail returns the most recent n entries, newest first.
func (j *Journal) Tail(ctx context.Context, n int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT at, actor, event, detail FROM activity ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&at, &e.Actor, &e.Event, &e.Detail); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
