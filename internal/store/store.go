// Package store persists the artifacts a QA run produces (scan results,
// manual tallies and tally exports) so reconciliation can run once all of
// them are in.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ballotqa/internal/logging"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed output log.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open creates or opens the output database at path.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store.Open")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("Opened output store at %s", path)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scan_results (
		id TEXT PRIMARY KEY,
		accepted INTEGER NOT NULL,
		mark_pattern TEXT NOT NULL,
		votes_json TEXT NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scan_results_recorded ON scan_results(recorded_at);

	CREATE TABLE IF NOT EXISTS manual_tallies (
		id TEXT PRIMARY KEY,
		tallies_json TEXT NOT NULL,
		recorded_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tally_exports (
		id TEXT PRIMARY KEY,
		source TEXT,
		content TEXT NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tally_exports_recorded ON tally_exports(recorded_at);
	`
	_, err := s.db.Exec(schema)
	return err
}
