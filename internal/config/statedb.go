package config

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// StateDB wraps the SQLite database holding occtl runtime state: the focused
// session, webhook URLs and the relay token. Multiple processes can safely
// read/write via WAL mode + busy timeout (the relay and CLI run concurrently).
type StateDB struct {
	db *sql.DB
}

// OpenStateDB creates or opens the state database at dbPath.
func OpenStateDB(dbPath string) (*StateDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("statedb: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("statedb: open: %w", err)
	}

	// WAL mode: allows concurrent readers while writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: wal mode: %w", err)
	}

	// Busy timeout: wait up to 5s if another process holds a lock
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: busy timeout: %w", err)
	}

	s := &StateDB{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close checkpoints WAL and closes the database.
func (s *StateDB) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// migrate creates tables if they don't exist.
func (s *StateDB) migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS state (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("statedb: create state: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("statedb: create metadata: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("statedb: set schema version: %w", err)
	}

	return tx.Commit()
}

// Get returns the value for a state key. Returns "" if not found.
func (s *StateDB) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Set stores a state key-value pair and touches the change timestamp.
func (s *StateDB) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO state (key, value) VALUES (?, ?)",
		key, value,
	)
	if err != nil {
		return err
	}
	return s.Touch()
}

// Touch updates a metadata timestamp that other processes can poll to detect changes.
func (s *StateDB) Touch() error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES ('last_modified', ?)",
		fmt.Sprintf("%d", time.Now().UnixNano()),
	)
	return err
}

// LastModified returns the last_modified timestamp from metadata, 0 if unset.
func (s *StateDB) LastModified() (int64, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = 'last_modified'").Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var ts int64
	_, err = fmt.Sscanf(value, "%d", &ts)
	return ts, err
}
