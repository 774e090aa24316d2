package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"stravagpx/internal/export"
	"stravagpx/internal/logging"
	"stravagpx/internal/strava"
)

// Run journals one export run. It implements export.Observer.
type Run struct {
	journal *Journal
	id      string
	logger  *slog.Logger

	mu  sync.Mutex
	seq int
}

// BeginRun records the start of a run.
func (j *Journal) BeginRun(ctx context.Context, filter strava.SportType) (*Run, error) {
	id := uuid.NewString()
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, sport_filter) VALUES (?, ?, ?)",
		id, formatTime(j.now()), string(filter))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Run{
		journal: j,
		id:      id,
		logger:  j.logger.With(logging.String(logging.FieldRunID, id)),
	}, nil
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Observe stores one outcome. Journal failures are logged and do not affect
// the export.
func (r *Run) Observe(ctx context.Context, outcome export.Outcome) {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	errText := ""
	if outcome.Err != nil {
		errText = outcome.Err.Error()
	}
	_, err := r.journal.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, seq, activity_id, name, sport_type, status, path, error, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.id, seq, outcome.Activity.ID, outcome.Activity.Name, string(outcome.Activity.SportType),
		string(outcome.Status), outcome.Path, errText, formatTime(r.journal.now()))
	if err != nil {
		logging.WarnWithContext(r.logger, "failed to journal outcome", "history_write_failed",
			logging.Int64(logging.FieldActivityID, outcome.Activity.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history is incomplete; the ledger is unaffected"))
	}
}

// Finish stores the run totals and the terminal error, if any.
func (r *Run) Finish(ctx context.Context, report export.Report, runErr error) error {
	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}
	_, err := r.journal.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, seen = ?, exported = ?, already_exported = ?, filtered = ?, failed = ?, error = ?
		 WHERE id = ?`,
		formatTime(r.journal.now()), report.Seen, report.Exported, report.AlreadyExported,
		report.Filtered, report.Failed, errText, r.id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", r.id, err)
	}
	return nil
}

// RunSummary is one journaled run.
type RunSummary struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	SportFilter string
	Report      export.Report
	Error       string
}

// Finished reports whether the run recorded its totals.
func (s RunSummary) Finished() bool { return !s.FinishedAt.IsZero() }

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, sport_filter, seen, exported, already_exported, filtered, failed, error
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			summary  RunSummary
			started  sql.NullString
			finished sql.NullString
		)
		if err := rows.Scan(&summary.ID, &started, &finished, &summary.SportFilter,
			&summary.Report.Seen, &summary.Report.Exported, &summary.Report.AlreadyExported,
			&summary.Report.Filtered, &summary.Report.Failed, &summary.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		summary.StartedAt = parseTime(started)
		summary.FinishedAt = parseTime(finished)
		runs = append(runs, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// OutcomeRecord is one journaled activity outcome.
type OutcomeRecord struct {
	ActivityID int64
	Name       string
	SportType  string
	Status     export.Status
	Path       string
	Error      string
	RecordedAt time.Time
}

// Outcomes returns the outcomes of one run in processing order.
func (j *Journal) Outcomes(ctx context.Context, runID string) ([]OutcomeRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT activity_id, name, sport_type, status, path, error, recorded_at
		 FROM outcomes WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var records []OutcomeRecord
	for rows.Next() {
		var (
			record   OutcomeRecord
			status   string
			recorded sql.NullString
		)
		if err := rows.Scan(&record.ActivityID, &record.Name, &record.SportType, &status,
			&record.Path, &record.Error, &recorded); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		record.Status = export.Status(status)
		record.RecordedAt = parseTime(recorded)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return records, nil
}
