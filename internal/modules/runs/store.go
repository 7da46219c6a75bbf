// Package runs persists forecast run history: one summary row per run for
// listings plus the full response payload as a msgpack blob in a side
// table, so list queries never load payloads.
package runs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/salescast/internal/database"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultListLimit caps run listings when the caller does not specify one.
const DefaultListLimit = 50

// Run is the stored summary of one forecast run.
type Run struct {
	ID              string     `json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	Model           string     `json:"model"`
	Clients         int        `json:"clients"`
	SeriesTotal     int        `json:"series_total"`
	SeriesFailed    int        `json:"series_failed"`
	HistoricalTotal float64    `json:"historical_total"`
	ForecastTotal   float64    `json:"forecast_total"`
	GrowthPct       float64    `json:"growth_pct"`
	ElapsedMs       int64      `json:"elapsed_ms"`
	Archived        bool       `json:"archived"`
	ArchivedAt      *time.Time `json:"archived_at,omitempty"`
}

// Store handles run history database operations.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a new run history store.
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("repository", "runs").Logger(),
	}
}

// Init creates the schema when it does not exist yet.
func (s *Store) Init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			model TEXT NOT NULL,
			clients INTEGER NOT NULL,
			series_total INTEGER NOT NULL,
			series_failed INTEGER NOT NULL,
			historical_total REAL NOT NULL,
			forecast_total REAL NOT NULL,
			growth_pct REAL NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			archived INTEGER NOT NULL DEFAULT 0,
			archived_at INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
		CREATE TABLE IF NOT EXISTS run_payloads (
			run_id TEXT PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs schema: %w", err)
	}
	return nil
}

// Save stores a run summary together with its msgpack-encoded payload,
// atomically.
func (s *Store) Save(ctx context.Context, run Run, payload interface{}) error {
	blob, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode run payload: %w", err)
	}

	err = database.WithTransaction(s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, created_at, model, clients, series_total, series_failed,
				historical_total, forecast_total, growth_pct, elapsed_ms, archived)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		`, run.ID, run.CreatedAt.Unix(), run.Model, run.Clients, run.SeriesTotal, run.SeriesFailed,
			run.HistoricalTotal, run.ForecastTotal, run.GrowthPct, run.ElapsedMs)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_payloads (run_id, payload) VALUES (?, ?)
		`, run.ID, blob)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	s.log.Debug().Str("run_id", run.ID).Int("payload_bytes", len(blob)).Msg("Run saved")
	return nil
}

// List returns run summaries, newest first. A non-positive limit selects
// DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, model, clients, series_total, series_failed,
			historical_total, forecast_total, growth_pct, elapsed_ms, archived, archived_at
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListUnarchivedOlderThan returns runs created before the cutoff that have
// not been uploaded yet, oldest first. Used by the archive sweep.
func (s *Store) ListUnarchivedOlderThan(ctx context.Context, cutoff time.Time) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, model, clients, series_total, series_failed,
			historical_total, forecast_total, growth_pct, elapsed_ms, archived, archived_at
		FROM runs
		WHERE archived = 0 AND created_at < ?
		ORDER BY created_at, id
	`, cutoff.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to list unarchived runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run summary, or nil when the id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, model, clients, series_total, series_failed,
			historical_total, forecast_total, growth_pct, elapsed_ms, archived, archived_at
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &run, nil
}

// GetPayload returns the stored payload blob for a run, or nil when the
// run is unknown.
func (s *Store) GetPayload(ctx context.Context, id string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM run_payloads WHERE run_id = ?`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payload for run %s: %w", id, err)
	}
	return blob, nil
}

// Delete removes a run and its payload. Returns false when the id was
// unknown.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM run_payloads WHERE run_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		found = affected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	return found, nil
}

// MarkArchived records that a run's payload has been uploaded.
func (s *Store) MarkArchived(ctx context.Context, id string, when time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET archived = 1, archived_at = ? WHERE id = ?`, when.Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to mark run %s archived: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// DeleteOlderThan removes runs created before the cutoff and returns how
// many were deleted. Used by the retention job.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM run_payloads
			WHERE run_id IN (SELECT id FROM runs WHERE created_at < ?)
		`, cutoff.Unix()); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff.Unix())
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired runs: %w", err)
	}
	return deleted, nil
}

// Count returns the number of stored runs.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

// DecodePayload unpacks a stored payload blob into v.
func DecodePayload(blob []byte, v interface{}) error {
	if err := msgpack.Unmarshal(blob, v); err != nil {
		return fmt.Errorf("failed to decode run payload: %w", err)
	}
	return nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var createdAt int64
	var archived int
	var archivedAt sql.NullInt64

	err := row.Scan(&run.ID, &createdAt, &run.Model, &run.Clients, &run.SeriesTotal,
		&run.SeriesFailed, &run.HistoricalTotal, &run.ForecastTotal, &run.GrowthPct,
		&run.ElapsedMs, &archived, &archivedAt)
	if err != nil {
		return Run{}, err
	}

	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	run.Archived = archived != 0
	if archivedAt.Valid {
		t := time.Unix(archivedAt.Int64, 0).UTC()
		run.ArchivedAt = &t
	}
	return run, nil
}
