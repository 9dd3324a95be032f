package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stockpulse/ranker/internal/domain"
	"github.com/stockpulse/ranker/internal/modules/ranking"
	"github.com/stockpulse/ranker/internal/modules/snapshots"
	"github.com/stockpulse/ranker/pkg/formulas"
)

// SnapshotSource is the read-only view of the snapshot store the
// validator needs.
type SnapshotSource interface {
	Get(snapshotID string) (*ranking.RankingSnapshot, error)
	ListEligibleForValidation(now time.Time, horizonMonths int) ([]snapshots.SnapshotMeta, error)
}

// Validator ages snapshots, fetches realized returns and computes
// validation statistics against a benchmark.
type Validator struct {
	store           SnapshotSource
	results         *Repository
	pool            *FetchPool
	benchmarkSymbol string
	now             func() time.Time
	log             zerolog.Logger
}

// NewValidator creates a validator.
func NewValidator(store SnapshotSource, results *Repository, pool *FetchPool, benchmarkSymbol string, log zerolog.Logger) *Validator {
	return &Validator{
		store:           store,
		results:         results,
		pool:            pool,
		benchmarkSymbol: benchmarkSymbol,
		now:             time.Now,
		log:             log.With().Str("component", "validator").Logger(),
	}
}

// Validate runs a backtest for one snapshot at the given horizon over its
// top-N entries. Re-validating an already-validated (snapshot, horizon)
// pair returns the stored result. A snapshot younger than the horizon
// returns ErrNotEligible with no side effects.
func (v *Validator) Validate(ctx context.Context, snapshotID string, horizonMonths, topN int) (*Result, error) {
	if existing, err := v.results.Find(snapshotID, horizonMonths); err == nil {
		v.log.Info().Str("snapshot_id", snapshotID).Msg("Already validated, returning stored result")
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	snapshot, err := v.store.Get(snapshotID)
	if err != nil {
		return nil, err
	}

	windowStart := snapshot.Timestamp
	windowEnd := windowStart.AddDate(0, horizonMonths, 0)
	now := v.now()
	if now.Before(windowEnd) {
		return nil, fmt.Errorf("snapshot %s is %s old, horizon is %d months: %w",
			snapshotID, now.Sub(windowStart).Round(time.Hour), horizonMonths, domain.ErrNotEligible)
	}

	entries := snapshot.Entries
	if len(entries) > topN {
		entries = entries[:topN]
	}
	tickers := make([]string, len(entries))
	for i, e := range entries {
		tickers[i] = e.Ticker
	}

	v.log.Info().
		Str("snapshot_id", snapshotID).
		Int("horizon_months", horizonMonths).
		Int("tickers", len(tickers)).
		Msg("Fetching realized returns")

	perCompany := v.pool.FetchAll(ctx, tickers, windowStart, windowEnd)
	for i := range perCompany {
		perCompany[i].Rank = entries[i].Rank
	}

	var fetched []float64
	for _, c := range perCompany {
		if c.Return != nil {
			fetched = append(fetched, *c.Return)
		}
	}

	benchmark, benchmarkSource := v.benchmarkReturn(ctx, windowStart, windowEnd, fetched)

	result := &Result{
		ID:              uuid.New().String(),
		SnapshotID:      snapshotID,
		Philosophy:      snapshot.Philosophy,
		HorizonMonths:   horizonMonths,
		WindowStart:     windowStart,
		WindowEnd:       windowEnd,
		Status:          StatusCompleted,
		PerCompany:      perCompany,
		BenchmarkReturn: benchmark,
		BenchmarkSource: benchmarkSource,
		FetchedCount:    len(fetched),
		TotalCount:      len(perCompany),
		ValidatedAt:     now.UTC(),
	}
	if len(fetched) < len(perCompany) {
		result.Status = StatusPartiallyCompleted
	}

	// Statistics cover the successfully fetched subset only
	if len(fetched) > 0 {
		wins, hits := 0, 0
		for _, ret := range fetched {
			if ret > 0 {
				wins++
			}
			if ret > benchmark {
				hits++
			}
		}
		result.WinRate = float64(wins) / float64(len(fetched))
		result.HitRate = float64(hits) / float64(len(fetched))
		result.Alpha = formulas.Mean(fetched) - benchmark
		result.Sharpe = formulas.CohortSharpe(fetched)
		result.MaxDrawdownApprox = formulas.Min(fetched)
	}

	if err := v.results.Save(result); err != nil {
		// Lost a race with a concurrent validation of the same pair
		if errors.Is(err, domain.ErrConflict) {
			return v.results.Find(snapshotID, horizonMonths)
		}
		return nil, err
	}
	return result, nil
}

// ValidateAllEligible validates every snapshot old enough for the horizon.
// Zero eligible snapshots is a normal outcome, not an error.
func (v *Validator) ValidateAllEligible(ctx context.Context, horizonMonths, topN int) ([]*Result, error) {
	eligible, err := v.store.ListEligibleForValidation(v.now(), horizonMonths)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		v.log.Info().Int("horizon_months", horizonMonths).Msg("No snapshots eligible for validation")
		return nil, nil
	}

	results := make([]*Result, 0, len(eligible))
	for _, meta := range eligible {
		result, err := v.Validate(ctx, meta.SnapshotID, horizonMonths, topN)
		if err != nil {
			v.log.Error().Err(err).Str("snapshot_id", meta.SnapshotID).Msg("Validation failed")
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// StatusFor reports where a snapshot sits in the validation lifecycle.
func (v *Validator) StatusFor(meta snapshots.SnapshotMeta, horizonMonths int) Status {
	if result, err := v.results.Find(meta.SnapshotID, horizonMonths); err == nil {
		return result.Status
	}
	if v.now().Before(meta.CreatedAt.AddDate(0, horizonMonths, 0)) {
		return StatusPending
	}
	return StatusEligible
}

// benchmarkReturn fetches the index return for the window, falling back to
// the cohort median when the index is unavailable.
func (v *Validator) benchmarkReturn(ctx context.Context, start, end time.Time, cohort []float64) (float64, string) {
	callCtx, cancel := context.WithTimeout(ctx, v.pool.timeout)
	defer cancel()

	value, err := v.pool.fetcher.FetchReturn(callCtx, v.benchmarkSymbol, start, end)
	if err == nil {
		return value, BenchmarkSourceIndex
	}
	v.log.Warn().Err(err).Str("symbol", v.benchmarkSymbol).Msg("Benchmark fetch failed, using cohort median")
	if len(cohort) == 0 {
		return 0, BenchmarkSourceCohortMedian
	}
	return formulas.Median(cohort), BenchmarkSourceCohortMedian
}
