package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rocksoup/mbtheme/internal/domain"
	"github.com/rocksoup/mbtheme/internal/ports"
)

const resultsTable = "enrichment_results"

const schema = `CREATE TABLE IF NOT EXISTS enrichment_results (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	recorded_at INTEGER NOT NULL,
	outcome     TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	year        TEXT NOT NULL DEFAULT '',
	poster_url  TEXT NOT NULL DEFAULT '',
	post_url    TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL DEFAULT '',
	dry_run     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_enrichment_results_recorded_at ON enrichment_results (recorded_at);`

var resultColumns = []string{
	"id", "run_id", "recorded_at", "outcome", "reason", "title",
	"year", "poster_url", "post_url", "message", "dry_run",
}

// SQLiteLedger keeps enrichment results in a local sqlite file.
type SQLiteLedger struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

var _ ports.ResultLedger = (*SQLiteLedger)(nil)

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteLedger{db: db, now: time.Now, newID: uuid.NewString}, nil
}

// Record inserts one result under runID.
func (l *SQLiteLedger) Record(ctx context.Context, runID string, result domain.EnrichmentResult) error {
	query, args, err := sq.Insert(resultsTable).
		Columns(resultColumns...).
		Values(
			l.newID(),
			runID,
			l.now().UTC().UnixNano(),
			string(result.Outcome),
			string(result.Reason),
			result.Title,
			result.Year,
			result.PosterURL,
			result.PostURL,
			result.Message,
			result.DryRun,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *SQLiteLedger) Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	builder := sq.Select(resultColumns...).
		From(resultsTable).
		OrderBy("recorded_at DESC", "rowid DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	entries := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		var (
			entry      domain.LedgerEntry
			recordedAt int64
			outcome    string
			reason     string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.RunID,
			&recordedAt,
			&outcome,
			&reason,
			&entry.Result.Title,
			&entry.Result.Year,
			&entry.Result.PosterURL,
			&entry.Result.PostURL,
			&entry.Result.Message,
			&entry.Result.DryRun,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan result: %w", err)
		}
		entry.RecordedAt = time.Unix(0, recordedAt).UTC()
		entry.Result.Outcome = domain.Outcome(outcome)
		entry.Result.Reason = domain.SkipReason(reason)
		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return entries, nil
}

// Close releases the database handle.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
