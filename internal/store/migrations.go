package store

import (
	"fmt"

	"adforge/internal/logging"
)

// Migration defines a column addition for databases created before the
// column existed.
type Migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations lists all column migrations to apply. These handle
// databases where tables exist but are missing newer columns.
var pendingMigrations = []Migration{
	// Awareness stage tagging came after the first copy_items schema.
	{"copy_items", "awareness", "TEXT NOT NULL DEFAULT ''"},
	// Deployment tracking was added once publishing landed.
	{"combinations", "deployed", "INTEGER NOT NULL DEFAULT 0"},
	// Destination URL override per combination.
	{"combinations", "url", "TEXT NOT NULL DEFAULT ''"},
}

// applyMigrations adds any missing columns.
func (s *Store) applyMigrations() error {
	for _, m := range pendingMigrations {
		exists, err := s.columnExists(m.Table, m.Column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %s.%s failed: %w", m.Table, m.Column, err)
		}
		logging.Store("migrated: added %s.%s", m.Table, m.Column)
	}
	return nil
}

// columnExists checks sqlite table_info for the column.
func (s *Store) columnExists(table, column string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("table_info(%s): %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notNull, pk int
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
