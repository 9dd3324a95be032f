package backtest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpulse/ranker/internal/database"
	"github.com/stockpulse/ranker/internal/domain"
	"github.com/stockpulse/ranker/internal/modules/ranking"
	"github.com/stockpulse/ranker/internal/modules/snapshots"
)

// stubFetcher serves canned returns; tickers absent from the map are
// treated as unavailable.
type stubFetcher struct {
	returns map[string]float64
}

func (s *stubFetcher) FetchReturn(_ context.Context, ticker string, _, _ time.Time) (float64, error) {
	if v, ok := s.returns[ticker]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("ticker %s: %w", ticker, domain.ErrNotAvailable)
}

type fixture struct {
	snapshots *snapshots.Repository
	results   *Repository
	validator *Validator
}

func newFixture(t *testing.T, fetcher ReturnFetcher, now time.Time) *fixture {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	snapRepo := snapshots.NewRepository(db.Conn(), zerolog.Nop())
	resultRepo := NewRepository(db.Conn(), zerolog.Nop())
	pool := NewFetchPool(fetcher, 4, time.Second, zerolog.Nop())
	v := NewValidator(snapRepo, resultRepo, pool, "^NSEI", zerolog.Nop())
	v.now = func() time.Time { return now }

	return &fixture{snapshots: snapRepo, results: resultRepo, validator: v}
}

func storeSnapshot(t *testing.T, repo *snapshots.Repository, ts time.Time, philosophy string, tickers ...string) string {
	t.Helper()
	snap := &ranking.RankingSnapshot{
		SnapshotID: ranking.SnapshotID(ts, philosophy),
		Timestamp:  ts.UTC(),
		Philosophy: philosophy,
	}
	for i, ticker := range tickers {
		snap.Entries = append(snap.Entries, ranking.ScoreBreakdown{
			Ticker:     ticker,
			FinalScore: float64(100 - i),
			Rank:       i + 1,
		})
	}
	id, err := repo.Persist(snap)
	require.NoError(t, err)
	return id
}

func TestValidateComputesStatistics(t *testing.T) {
	now := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	ts := time.Date(2025, 5, 5, 19, 43, 32, 0, time.UTC)

	fetcher := &stubFetcher{returns: map[string]float64{
		"AAA":   12.0,
		"BBB":   8.0,
		"CCC":   -4.0,
		"^NSEI": 5.0,
	}}
	f := newFixture(t, fetcher, now)
	id := storeSnapshot(t, f.snapshots, ts, "buffett", "AAA", "BBB", "CCC")

	result, err := f.validator.Validate(context.Background(), id, 6, 10)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 3, result.FetchedCount)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, BenchmarkSourceIndex, result.BenchmarkSource)
	assert.Equal(t, 5.0, result.BenchmarkReturn)

	// wins: AAA, BBB; hits (>5%): AAA, BBB
	assert.InDelta(t, 2.0/3.0, result.WinRate, 1e-9)
	assert.InDelta(t, 2.0/3.0, result.HitRate, 1e-9)
	// mean return (12+8-4)/3 minus benchmark 5
	assert.InDelta(t, 16.0/3.0-5.0, result.Alpha, 1e-9)
	assert.Equal(t, -4.0, result.MaxDrawdownApprox)
	require.NotNil(t, result.Sharpe)
}

func TestValidatePartialCoverage(t *testing.T) {
	now := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	ts := now.AddDate(0, -7, 0)

	// DELISTED is not fetchable; stats must divide by fetched count
	fetcher := &stubFetcher{returns: map[string]float64{
		"AAA":   10.0,
		"BBB":   2.0,
		"^NSEI": 4.0,
	}}
	f := newFixture(t, fetcher, now)
	id := storeSnapshot(t, f.snapshots, ts, "value", "AAA", "DELISTED", "BBB")

	result, err := f.validator.Validate(context.Background(), id, 6, 10)
	require.NoError(t, err)

	assert.Equal(t, StatusPartiallyCompleted, result.Status)
	assert.Equal(t, 2, result.FetchedCount)
	assert.Equal(t, 3, result.TotalCount)
	// hit rate over fetched subset: only AAA beats 4%
	assert.InDelta(t, 0.5, result.HitRate, 1e-9)
	assert.InDelta(t, 1.0, result.WinRate, 1e-9)

	require.Len(t, result.PerCompany, 3)
	assert.True(t, result.PerCompany[1].Missing)
	assert.Nil(t, result.PerCompany[1].Return)
	assert.Equal(t, 2, result.PerCompany[1].Rank)
}

func TestValidateNotEligible(t *testing.T) {
	now := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	ts := now.AddDate(0, -2, 0)

	f := newFixture(t, &stubFetcher{}, now)
	id := storeSnapshot(t, f.snapshots, ts, "buffett", "AAA")

	_, err := f.validator.Validate(context.Background(), id, 6, 10)
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	// No result was written
	_, err = f.results.Find(id, 6)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestValidateIdempotent(t *testing.T) {
	now := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	ts := now.AddDate(0, -7, 0)

	fetcher := &stubFetcher{returns: map[string]float64{"AAA": 10.0, "^NSEI": 4.0}}
	f := newFixture(t, fetcher, now)
	id := storeSnapshot(t, f.snapshots, ts, "buffett", "AAA")

	first, err := f.validator.Validate(context.Background(), id, 6, 10)
	require.NoError(t, err)

	// Second run returns the stored result, same run id
	second, err := f.validator.Validate(context.Background(), id, 6, 10)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Alpha, second.Alpha)
}

func TestValidateTopNOnly(t *testing.T) {
	now := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	ts := now.AddDate(0, -7, 0)

	fetcher := &stubFetcher{returns: map[string]float64{
		"AAA": 1, "BBB": 2, "CCC": 3, "DDD": 4, "^NSEI": 0,
	}}
	f := newFixture(t, fetcher, now)
	id := storeSnapshot(t, f.snapshots, ts, "growth", "AAA", "BBB", "CCC", "DDD")

	result, err := f.validator.Validate(context.Background(), id, 6, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)
	require.Len(t, result.PerCompany, 2)
	assert.Equal(t, "AAA", result.PerCompany[0].Ticker)
	assert.Equal(t, "BBB", result.PerCompany[1].Ticker)
}

func TestBenchmarkFallbackToCohortMedian(t *testing.T) {
	now := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	ts := now.AddDate(0, -7, 0)

	// Index symbol absent: benchmark falls back to the median return
	fetcher := &stubFetcher{returns: map[string]float64{
		"AAA": 10.0, "BBB": 6.0, "CCC": 2.0,
	}}
	f := newFixture(t, fetcher, now)
	id := storeSnapshot(t, f.snapshots, ts, "quality", "AAA", "BBB", "CCC")

	result, err := f.validator.Validate(context.Background(), id, 6, 10)
	require.NoError(t, err)
	assert.Equal(t, BenchmarkSourceCohortMedian, result.BenchmarkSource)
	assert.InDelta(t, 6.0, result.BenchmarkReturn, 1e-9)
	// alpha = mean(6) - median(6)
	assert.InDelta(t, 0.0, result.Alpha, 1e-9)
}

func TestSharpeNilWithSingleSample(t *testing.T) {
	now := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	ts := now.AddDate(0, -7, 0)

	fetcher := &stubFetcher{returns: map[string]float64{"AAA": 10.0, "^NSEI": 4.0}}
	f := newFixture(t, fetcher, now)
	id := storeSnapshot(t, f.snapshots, ts, "buffett", "AAA")

	result, err := f.validator.Validate(context.Background(), id, 6, 10)
	require.NoError(t, err)
	assert.Nil(t, result.Sharpe)
}

func TestSharpeNilWithZeroSpread(t *testing.T) {
	now := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	ts := now.AddDate(0, -7, 0)

	fetcher := &stubFetcher{returns: map[string]float64{"AAA": 5.0, "BBB": 5.0, "^NSEI": 4.0}}
	f := newFixture(t, fetcher, now)
	id := storeSnapshot(t, f.snapshots, ts, "buffett", "AAA", "BBB")

	result, err := f.validator.Validate(context.Background(), id, 6, 10)
	require.NoError(t, err)
	assert.Nil(t, result.Sharpe)
}

func TestValidateAllEligibleNoneIsNormal(t *testing.T) {
	now := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)

	f := newFixture(t, &stubFetcher{}, now)
	storeSnapshot(t, f.snapshots, now.AddDate(0, -2, 0), "buffett", "AAA")

	results, err := f.validator.ValidateAllEligible(context.Background(), 6, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestValidateAllEligible(t *testing.T) {
	now := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)

	fetcher := &stubFetcher{returns: map[string]float64{"AAA": 10.0, "BBB": 3.0, "^NSEI": 4.0}}
	f := newFixture(t, fetcher, now)
	storeSnapshot(t, f.snapshots, now.AddDate(0, -7, 0), "buffett", "AAA")
	storeSnapshot(t, f.snapshots, now.AddDate(0, -8, 0), "value", "BBB")
	storeSnapshot(t, f.snapshots, now.AddDate(0, -1, 0), "growth", "AAA")

	results, err := f.validator.ValidateAllEligible(context.Background(), 6, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestStatusLifecycle(t *testing.T) {
	now := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)

	fetcher := &stubFetcher{returns: map[string]float64{"AAA": 10.0, "^NSEI": 4.0}}
	f := newFixture(t, fetcher, now)

	youngID := storeSnapshot(t, f.snapshots, now.AddDate(0, -2, 0), "buffett", "AAA")
	oldID := storeSnapshot(t, f.snapshots, now.AddDate(0, -7, 0), "value", "AAA")

	metas, err := f.snapshots.List()
	require.NoError(t, err)
	byID := make(map[string]snapshots.SnapshotMeta)
	for _, m := range metas {
		byID[m.SnapshotID] = m
	}

	assert.Equal(t, StatusPending, f.validator.StatusFor(byID[youngID], 6))
	assert.Equal(t, StatusEligible, f.validator.StatusFor(byID[oldID], 6))

	_, err = f.validator.Validate(context.Background(), oldID, 6, 10)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, f.validator.StatusFor(byID[oldID], 6))
}
