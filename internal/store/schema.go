package store

import (
	"context"
	"fmt"
)

// schemaStatements create the two persistent tables. band_requests uses
// AUTOINCREMENT so request ids stay strictly increasing for the lifetime of
// the store even after deletions; the id is the correlation token between a
// candidate notification and the later claim.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS musicians (
        telegram_id INTEGER PRIMARY KEY,
        instrument TEXT NOT NULL,
        experience INTEGER NOT NULL DEFAULT 0,
        genres TEXT,
        location_text TEXT,
        about TEXT
    )`,
	`CREATE TABLE IF NOT EXISTS band_requests (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        band_id INTEGER NOT NULL,
        instrument TEXT NOT NULL,
        genre TEXT,
        description TEXT,
        location_text TEXT,
        min_experience INTEGER NOT NULL DEFAULT 0,
        accepted_by INTEGER,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_band_requests_band_id ON band_requests(band_id)`,
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
