package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/CTAG07/bigram/pkg/history"
)

// openHistory opens the run history database with the driver selected at
// build time, creates its schema and returns a ready Recorder. The caller
// closes both.
func openHistory(dataSource string, logger *slog.Logger) (*sql.DB, *history.Recorder, error) {
	db, err := sql.Open(sqliteDriver, dataSource)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	if err = history.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup history schema: %w", err)
	}

	recorder, err := history.NewRecorder(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to prepare history statements: %w", err)
	}
	recorder.SetLogger(logger)

	return db, recorder, nil
}
