package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Run is a single recorded generation request.
type Run struct {
	ID         int64
	CreatedAt  time.Time
	Corpus     string // Path or name of the corpus the model was trained on.
	SeedPhrase string // The full phrase the user typed.
	SeedWord   string // The word generation actually started from.
	Requested  int    // Number of words asked for.
	Output     string // The rendered result, empty when the run failed.
	Failure    string // Error message, empty on success.
}

// Failed reports whether the run ended in an error.
func (r Run) Failed() bool {
	return r.Failure != ""
}

// SeedStats holds the counters kept for one seed word.
type SeedStats struct {
	SeedWord   string
	TotalRuns  int
	FailedRuns int
	FirstSeen  time.Time
	LastSeen   time.Time
}

// Summary provides a high-level overview of all recorded runs.
type Summary struct {
	TotalRuns      int64
	FailedRuns     int64
	UniqueSeeds    int64
	WordsGenerated int64 // Sum of requested counts over successful runs.
}

// Recorder writes and queries generation runs. It holds prepared statements
// and must be closed when no longer needed.
type Recorder struct {
	db             *sql.DB
	stmtInsertRun  *sql.Stmt
	stmtUpsertSeed *sql.Stmt
	stmtRecent     *sql.Stmt
	stmtTopSeeds   *sql.Stmt
	stmtSummary    *sql.Stmt
	now            func() time.Time
	logger         *slog.Logger
}

// NewRecorder prepares all statements against db, whose schema must already
// have been created with SetupSchema.
func NewRecorder(db *sql.DB) (*Recorder, error) {
	stmtInsertRun, err := db.Prepare(`INSERT INTO generation_runs (created_at, corpus, seed_phrase, seed_word, requested, output, failure) VALUES (?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtUpsertSeed, err := db.Prepare(`
		INSERT INTO seed_stats (seed_word, failed_runs, first_seen, last_seen) VALUES (?, ?, ?, ?)
		ON CONFLICT(seed_word) DO UPDATE SET
			total_runs = total_runs + 1,
			failed_runs = failed_runs + excluded.failed_runs,
			last_seen = excluded.last_seen;
	`)
	if err != nil {
		return nil, err
	}

	stmtRecent, err := db.Prepare(`SELECT run_id, created_at, corpus, seed_phrase, seed_word, requested, output, failure FROM generation_runs ORDER BY run_id DESC LIMIT ?;`)
	if err != nil {
		return nil, err
	}

	stmtTopSeeds, err := db.Prepare(`SELECT seed_word, total_runs, failed_runs, first_seen, last_seen FROM seed_stats ORDER BY total_runs DESC, seed_word ASC LIMIT ?;`)
	if err != nil {
		return nil, err
	}

	stmtSummary, err := db.Prepare(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN failure != '' THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT seed_word),
			COALESCE(SUM(CASE WHEN failure = '' THEN requested ELSE 0 END), 0)
		FROM generation_runs;
	`)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		db:             db,
		stmtInsertRun:  stmtInsertRun,
		stmtUpsertSeed: stmtUpsertSeed,
		stmtRecent:     stmtRecent,
		stmtTopSeeds:   stmtTopSeeds,
		stmtSummary:    stmtSummary,
		now:            time.Now,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared statements held by the Recorder.
func (r *Recorder) Close() {
	_ = r.stmtInsertRun.Close()
	_ = r.stmtUpsertSeed.Close()
	_ = r.stmtRecent.Close()
	_ = r.stmtTopSeeds.Close()
	_ = r.stmtSummary.Close()
}

// SetLogger sets the logger for the Recorder. By default, all logs are discarded.
func (r *Recorder) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Record stores run and updates the counters of its seed word in a single
// transaction. A zero CreatedAt is replaced with the current time. It returns
// the new run's ID.
func (r *Recorder) Record(ctx context.Context, run Run) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = r.now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	res, err := tx.StmtContext(ctx, r.stmtInsertRun).ExecContext(ctx,
		run.CreatedAt, run.Corpus, run.SeedPhrase, run.SeedWord, run.Requested, run.Output, run.Failure)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	var failed int
	if run.Failed() {
		failed = 1
	}
	if _, err = tx.StmtContext(ctx, r.stmtUpsertSeed).ExecContext(ctx, run.SeedWord, failed, run.CreatedAt, run.CreatedAt); err != nil {
		return 0, fmt.Errorf("failed to upsert seed stats for '%s': %w", run.SeedWord, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	r.logger.DebugContext(ctx, "Generation run recorded",
		slog.Int64("run_id", id),
		slog.String("seed_word", run.SeedWord),
		slog.Int("requested", run.Requested),
		slog.Bool("failed", run.Failed()),
	)

	return id, nil
}

// Recent returns up to limit runs, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.stmtRecent.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var runs []Run
	for rows.Next() {
		var run Run
		if err = rows.Scan(&run.ID, &run.CreatedAt, &run.Corpus, &run.SeedPhrase, &run.SeedWord, &run.Requested, &run.Output, &run.Failure); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// TopSeeds returns up to limit seed words ordered by how often they were used.
func (r *Recorder) TopSeeds(ctx context.Context, limit int) ([]SeedStats, error) {
	rows, err := r.stmtTopSeeds.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var seeds []SeedStats
	for rows.Next() {
		var s SeedStats
		if err = rows.Scan(&s.SeedWord, &s.TotalRuns, &s.FailedRuns, &s.FirstSeen, &s.LastSeen); err != nil {
			return nil, err
		}
		seeds = append(seeds, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return seeds, nil
}

// Summary returns aggregate counters over every recorded run.
func (r *Recorder) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	err := r.stmtSummary.QueryRowContext(ctx).Scan(&s.TotalRuns, &s.FailedRuns, &s.UniqueSeeds, &s.WordsGenerated)
	if err != nil {
		return Summary{}, err
	}
	return s, nil
}
