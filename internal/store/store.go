// Package store persists creative components, adsets, and combinations
// in SQLite. A single write connection with WAL keeps the concurrency
// story simple; callers above the store serialize heavy writes anyway.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"adforge/internal/logging"
)

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes the SQLite database at the given path, creating the
// schema and applying any pending column migrations.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store.Open")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logging.StoreDebug("failed to enable foreign_keys: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.applyMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("store opened at %s", path)
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// initialize creates the schema if it does not exist.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS adsets (
		id              TEXT PRIMARY KEY,
		campaign_id     TEXT NOT NULL DEFAULT '',
		name            TEXT NOT NULL DEFAULT '',
		age_min         INTEGER NOT NULL DEFAULT 0,
		age_max         INTEGER NOT NULL DEFAULT 0,
		interests       TEXT NOT NULL DEFAULT '[]',
		locations       TEXT NOT NULL DEFAULT '[]',
		awareness       TEXT NOT NULL DEFAULT '',
		destination_url TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS assets (
		id     TEXT PRIMARY KEY,
		type   TEXT NOT NULL,
		url    TEXT NOT NULL DEFAULT '',
		label  TEXT NOT NULL DEFAULT '',
		themes TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS copy_items (
		id        TEXT PRIMARY KEY,
		kind      TEXT NOT NULL,
		text      TEXT NOT NULL,
		awareness TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS combinations (
		id              TEXT PRIMARY KEY,
		adset_id        TEXT NOT NULL,
		asset_ids       TEXT NOT NULL,
		headline_id     TEXT NOT NULL,
		body_id         TEXT NOT NULL,
		description_id  TEXT NOT NULL DEFAULT '',
		cta_type        TEXT NOT NULL,
		url             TEXT NOT NULL DEFAULT '',
		score_hook      REAL NOT NULL DEFAULT 0,
		score_alignment REAL NOT NULL DEFAULT 0,
		score_fit       REAL NOT NULL DEFAULT 0,
		score_clarity   REAL NOT NULL DEFAULT 0,
		score_match     REAL NOT NULL DEFAULT 0,
		overall_score   INTEGER NOT NULL DEFAULT 0,
		predicted_ctr   REAL NOT NULL DEFAULT 0,
		deployed        INTEGER NOT NULL DEFAULT 0,
		created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_combinations_adset ON combinations(adset_id);
	CREATE INDEX IF NOT EXISTS idx_copy_items_kind ON copy_items(kind);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
