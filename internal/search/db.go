package search

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const defaultDBName = "schedwise.db"

const schema = `
CREATE TABLE IF NOT EXISTS events_all (
	event_id   TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	start_at   TEXT NOT NULL,
	embedding  BLOB,
	indexed_at TEXT NOT NULL,
	PRIMARY KEY (owner_id, event_id)
);

CREATE TABLE IF NOT EXISTS events_training (
	event_id   TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	start_at   TEXT NOT NULL,
	embedding  BLOB,
	indexed_at TEXT NOT NULL,
	PRIMARY KEY (owner_id, event_id)
);

CREATE TABLE IF NOT EXISTS reminders (
	owner_id       TEXT NOT NULL,
	event_id       TEXT NOT NULL,
	method         TEXT NOT NULL,
	minutes_before INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS reminders_event ON reminders(owner_id, event_id);

CREATE TABLE IF NOT EXISTS time_preferences (
	owner_id    TEXT NOT NULL,
	label       TEXT NOT NULL,
	iso_weekday INTEGER NOT NULL,
	start_hour  INTEGER NOT NULL,
	end_hour    INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);
`

// DefaultPath returns the database location under dir, creating the
// directory if needed.
func DefaultPath(dir string) string {
	return filepath.Join(dir, defaultDBName)
}

// Open opens (creating if necessary) the SQLite database at path and
// applies the schema.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return conn, nil
}

// OpenInMemory opens a private in-memory database, used in tests.
func OpenInMemory() (*sql.DB, error) {
	conn, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		return nil, err
	}
	// A single connection keeps the shared-cache memory db alive.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
