// ABOUTME: SQLite-backed state store using the pure-Go modernc driver.
// ABOUTME: Keeps one key/value table with a versioned schema and per-call transactions.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// stateSchemaVersion is the latest schema version supported by the migrator.
const stateSchemaVersion = 1

// SQLiteStateStore persists state in a single SQLite database file.
type SQLiteStateStore struct {
	db *sql.DB
}

// NewSQLiteStateStore opens (creating if needed) the database at path and migrates it.
func NewSQLiteStateStore(path string) (*SQLiteStateStore, error) {
	if path == "" {
		return nil, fmt.Errorf("open state db: path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("open state db: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY between them.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open state db: busy_timeout: %w", err)
	}
	if err := migrateState(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStateStore{db: db}, nil
}

func migrateState(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`)
	if err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	err = db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current)
	if err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= stateSchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate: create state table: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?);`, stateSchemaVersion); err != nil {
		return fmt.Errorf("migrate: record version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}
	return nil
}

// Get returns the stored values for keys.
func (s *SQLiteStateStore) Get(keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := `SELECT key, value FROM state WHERE key IN (` + placeholders(len(keys)) + `)`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get state: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("get state: scan: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get state: rows: %w", err)
	}
	return out, nil
}

// Set upserts all values in one transaction.
func (s *SQLiteStateStore) Set(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("set state: begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for key, value := range values {
		_, err := tx.Exec(`INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now)
		if err != nil {
			return fmt.Errorf("set state: upsert %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set state: commit: %w", err)
	}
	return nil
}

// Remove deletes keys in one statement.
func (s *SQLiteStateStore) Remove(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	if _, err := s.db.Exec(`DELETE FROM state WHERE key IN (`+placeholders(len(keys))+`)`, args...); err != nil {
		return fmt.Errorf("remove state: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteStateStore) Close() error {
	return s.db.Close()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
