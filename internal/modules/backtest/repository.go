package backtest

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockpulse/ranker/internal/domain"
)

const resultColumns = "id, snapshot_id, philosophy, horizon_months, status, validated_at, fetched_count, total_count, benchmark_return, benchmark_source, document"

// Repository persists validation results in SQLite. Results are
// append-only, one per (snapshot, horizon).
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a backtest results repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "backtest").Logger(),
	}
}

// Save stores a result. Returns ErrConflict if the (snapshot, horizon)
// pair has already been validated.
func (r *Repository) Save(result *Result) error {
	doc, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRow(
		"SELECT id FROM backtest_results WHERE snapshot_id = ? AND horizon_months = ?",
		result.SnapshotID, result.HorizonMonths).Scan(&existing)
	if err == nil {
		return fmt.Errorf("validation for %s at %d months: %w", result.SnapshotID, result.HorizonMonths, domain.ErrConflict)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check for existing result: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO backtest_results ("+resultColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		result.ID,
		result.SnapshotID,
		result.Philosophy,
		result.HorizonMonths,
		string(result.Status),
		result.ValidatedAt.UTC().Format(time.RFC3339),
		result.FetchedCount,
		result.TotalCount,
		result.BenchmarkReturn,
		result.BenchmarkSource,
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}

	r.log.Info().
		Str("snapshot_id", result.SnapshotID).
		Int("horizon_months", result.HorizonMonths).
		Str("status", string(result.Status)).
		Msg("Validation result saved")
	return nil
}

// Find returns the stored result for a (snapshot, horizon) pair, or
// ErrNotFound if it has not been validated yet.
func (r *Repository) Find(snapshotID string, horizonMonths int) (*Result, error) {
	var doc string
	err := r.db.QueryRow(
		"SELECT document FROM backtest_results WHERE snapshot_id = ? AND horizon_months = ?",
		snapshotID, horizonMonths).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("validation for %s at %d months: %w", snapshotID, horizonMonths, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	return decodeResult(doc)
}

// List returns all stored results, newest first.
func (r *Repository) List() ([]*Result, error) {
	rows, err := r.db.Query("SELECT document FROM backtest_results ORDER BY validated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		result, err := decodeResult(doc)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func decodeResult(doc string) (*Result, error) {
	var result Result
	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}
