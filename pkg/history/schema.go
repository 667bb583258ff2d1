package history

import (
	"database/sql"
	"fmt"
)

// SetupSchema initializes the history tables in the provided database. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaRuns = `
CREATE TABLE IF NOT EXISTS generation_runs (
    run_id       INTEGER PRIMARY KEY,
    created_at   DATETIME NOT NULL,
    corpus       TEXT NOT NULL,
    seed_phrase  TEXT NOT NULL,
    seed_word    TEXT NOT NULL,
    requested    INTEGER NOT NULL,
    output       TEXT NOT NULL DEFAULT '',
    failure      TEXT NOT NULL DEFAULT ''
);
`
		schemaSeeds = `
CREATE TABLE IF NOT EXISTS seed_stats (
    seed_word    TEXT PRIMARY KEY,
    total_runs   INTEGER NOT NULL DEFAULT 1,
    failed_runs  INTEGER NOT NULL DEFAULT 0,
    first_seen   DATETIME NOT NULL,
    last_seen    DATETIME NOT NULL
);
`
		indexRuns = `CREATE INDEX IF NOT EXISTS idx_generation_runs_created ON generation_runs (created_at);`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaRuns); err != nil {
		return fmt.Errorf("could not create runs schema: %w", err)
	}

	if _, err = tx.Exec(schemaSeeds); err != nil {
		return fmt.Errorf("could not create seed stats schema: %w", err)
	}

	if _, err = tx.Exec(indexRuns); err != nil {
		return fmt.Errorf("could not create runs index: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}
