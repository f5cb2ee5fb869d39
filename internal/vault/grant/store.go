// Package grant persists the vault directory grant between sessions
// and restores it into a usable root capability on startup.
package grant

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// One fixed key: the store holds at most a single grant record.
const (
	recordKey     = "vault-root"
	schemaVersion = 1
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS grants (
	key            TEXT PRIMARY KEY,
	path           TEXT NOT NULL,
	display        TEXT NOT NULL DEFAULT '',
	schema_version INTEGER NOT NULL,
	saved_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Record is the persisted grant.
type Record struct {
	Path    string
	Display string
	SavedAt time.Time
}

// Store is the SQLite-backed grant store.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the grant database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("grant: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("grant: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("grant: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Save stores the grant, replacing any previous record.
func (s *Store) Save(rec Record) error {
	_, err := s.conn.Exec(`
		INSERT INTO grants (key, path, display, schema_version, saved_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			path = excluded.path,
			display = excluded.display,
			schema_version = excluded.schema_version,
			saved_at = CURRENT_TIMESTAMP
	`, recordKey, rec.Path, rec.Display, schemaVersion)
	if err != nil {
		return fmt.Errorf("grant: save: %w", err)
	}
	return nil
}

// Load returns the stored grant. The second return is false when no
// record exists; records written by an unknown schema version are
// treated as absent.
func (s *Store) Load() (Record, bool, error) {
	var rec Record
	var version int
	err := s.conn.QueryRow(`
		SELECT path, display, schema_version, saved_at FROM grants WHERE key = ?
	`, recordKey).Scan(&rec.Path, &rec.Display, &version, &rec.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("grant: load: %w", err)
	}
	if version != schemaVersion {
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Clear removes the stored grant. Clearing an empty store is not an
// error.
func (s *Store) Clear() error {
	if _, err := s.conn.Exec(`DELETE FROM grants WHERE key = ?`, recordKey); err != nil {
		return fmt.Errorf("grant: clear: %w", err)
	}
	return nil
}
