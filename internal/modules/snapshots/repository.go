package snapshots

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockpulse/ranker/internal/domain"
	"github.com/stockpulse/ranker/internal/modules/ranking"
)

const snapshotColumns = "snapshot_id, philosophy, created_at, company_count, document"

// SnapshotMeta is the listing view of a stored snapshot.
type SnapshotMeta struct {
	SnapshotID   string    `json:"snapshot_id"`
	Philosophy   string    `json:"philosophy"`
	CreatedAt    time.Time `json:"created_at"`
	CompanyCount int       `json:"company_count"`
}

// Repository persists ranking snapshots in SQLite. Snapshots are
// append-only; a duplicate id is a conflict, never an overwrite.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a snapshot repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Persist stores a snapshot atomically and returns its id.
// Returns ErrConflict if the id already exists.
func (r *Repository) Persist(snapshot *ranking.RankingSnapshot) (string, error) {
	doc, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRow("SELECT snapshot_id FROM ranking_snapshots WHERE snapshot_id = ?", snapshot.SnapshotID).Scan(&existing)
	if err == nil {
		return "", fmt.Errorf("snapshot %s: %w", snapshot.SnapshotID, domain.ErrConflict)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to check for existing snapshot: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO ranking_snapshots ("+snapshotColumns+") VALUES (?, ?, ?, ?, ?)",
		snapshot.SnapshotID,
		snapshot.Philosophy,
		snapshot.Timestamp.UTC().Format(time.RFC3339),
		len(snapshot.Entries),
		string(doc),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}

	r.log.Info().
		Str("snapshot_id", snapshot.SnapshotID).
		Str("philosophy", snapshot.Philosophy).
		Int("companies", len(snapshot.Entries)).
		Int("excluded", len(snapshot.Excluded)).
		Msg("Snapshot persisted")
	return snapshot.SnapshotID, nil
}

// Get loads one snapshot by id. Returns ErrNotFound if absent.
func (r *Repository) Get(snapshotID string) (*ranking.RankingSnapshot, error) {
	var doc string
	err := r.db.QueryRow("SELECT document FROM ranking_snapshots WHERE snapshot_id = ?", snapshotID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", snapshotID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snapshot ranking.RankingSnapshot
	if err := json.Unmarshal([]byte(doc), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", snapshotID, err)
	}
	return &snapshot, nil
}

// GetDocument returns the raw persisted JSON document for a snapshot.
func (r *Repository) GetDocument(snapshotID string) ([]byte, error) {
	var doc string
	err := r.db.QueryRow("SELECT document FROM ranking_snapshots WHERE snapshot_id = ?", snapshotID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", snapshotID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return []byte(doc), nil
}

// List returns metadata for all snapshots, newest first.
func (r *Repository) List() ([]SnapshotMeta, error) {
	rows, err := r.db.Query(
		"SELECT snapshot_id, philosophy, created_at, company_count FROM ranking_snapshots ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	return scanMetaRows(rows)
}

// ListEligibleForValidation returns snapshots whose age meets or exceeds
// the horizon: now − created_at ≥ horizonMonths.
func (r *Repository) ListEligibleForValidation(now time.Time, horizonMonths int) ([]SnapshotMeta, error) {
	cutoff := now.UTC().AddDate(0, -horizonMonths, 0)

	rows, err := r.db.Query(
		"SELECT snapshot_id, philosophy, created_at, company_count FROM ranking_snapshots WHERE created_at <= ? ORDER BY created_at ASC",
		cutoff.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible snapshots: %w", err)
	}
	defer rows.Close()

	return scanMetaRows(rows)
}

func scanMetaRows(rows *sql.Rows) ([]SnapshotMeta, error) {
	var metas []SnapshotMeta
	for rows.Next() {
		var m SnapshotMeta
		var createdAt string
		if err := rows.Scan(&m.SnapshotID, &m.Philosophy, &createdAt, &m.CompanyCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse snapshot timestamp %q: %w", createdAt, err)
		}
		m.CreatedAt = ts
		metas = append(metas, m)
	}
	return metas, rows.Err()
}
