package notestore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// schemaSQL is the subset of the Joplin schema this package reads.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id           TEXT PRIMARY KEY,
	parent_id    TEXT NOT NULL DEFAULT '',
	title        TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL DEFAULT '',
	created_time INT NOT NULL DEFAULT 0,
	updated_time INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS resources (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL DEFAULT '',
	mime           TEXT NOT NULL,
	filename       TEXT NOT NULL DEFAULT '',
	file_extension TEXT NOT NULL DEFAULT '',
	size           INT NOT NULL DEFAULT -1,
	created_time   INT NOT NULL DEFAULT 0,
	updated_time   INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS note_resources (
	id             INTEGER PRIMARY KEY,
	note_id        TEXT NOT NULL,
	resource_id    TEXT NOT NULL,
	is_associated  INT NOT NULL,
	last_seen_time INT NOT NULL
);

CREATE INDEX IF NOT EXISTS note_resources_note_id ON note_resources(note_id);
`

// DB wraps a sql.DB with Joplin table queries.
type DB struct {
	conn *sql.DB
}

// Open opens an existing Joplin database read-only.
func Open(path string) (*DB, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("notestore: resolve db path: %w", err)
	}
	return open("file:"+uriEscaper.Replace(abs)+"?mode=ro&_busy_timeout=5000", false)
}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// Create opens (or creates) a writable database and applies the schema.
// It is used for fixtures and scratch profiles, never for a live profile.
func Create(path string) (*DB, error) {
	return open(path+"?_journal_mode=WAL&_busy_timeout=5000", true)
}

func open(dsn string, applySchema bool) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("notestore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: ping: %w", err)
	}
	if applySchema {
		if _, err := conn.Exec(schemaSQL); err != nil {
			conn.Close()
			return nil, fmt.Errorf("notestore: apply schema: %w", err)
		}
	}
	return &DB{conn: conn}, nil
}

// Ping checks that the database is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
