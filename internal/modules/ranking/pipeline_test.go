package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpulse/ranker/internal/domain"
)

var rankTime = time.Date(2025, 5, 5, 19, 43, 32, 0, time.UTC)

func buffett(t *testing.T) *PhilosophyProfile {
	t.Helper()
	p, err := GetProfile("buffett")
	require.NoError(t, err)
	return p
}

func TestScenarioStrongCompounder(t *testing.T) {
	// High-quality record: no penalties, no disqualification, Core tier
	rec := domain.FundamentalRecord{
		Name:   "Strong Co",
		Ticker: "STRONG",
		Metrics: map[domain.MetricKey]*float64{
			domain.MetricROE:        fptr(34.1),
			domain.MetricROCE:       fptr(30.9),
			domain.MetricPERatio:    fptr(11.9),
			domain.MetricDebtEquity: fptr(0.06),
			domain.MetricFCF:        fptr(1411),
		},
	}

	snap, err := NewPipeline().Rank([]domain.FundamentalRecord{rec}, buffett(t), rankTime)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 1)
	assert.Empty(t, snap.Excluded)

	entry := snap.Entries[0]
	assert.Empty(t, entry.Penalties)
	assert.Equal(t, domain.TierCore, entry.Tier)
	assert.Equal(t, 1, entry.Rank)
	assert.Greater(t, entry.FinalScore, 70.0)
}

func TestScenarioWeakReturnsDespiteCash(t *testing.T) {
	// Low ROE and ROCE both penalized multiplicatively; big FCF cannot
	// reach Core
	rec := domain.FundamentalRecord{
		Name:   "Cash Cow",
		Ticker: "CASH",
		Metrics: map[domain.MetricKey]*float64{
			domain.MetricROE:        fptr(8.2),
			domain.MetricROCE:       fptr(9.9),
			domain.MetricPERatio:    fptr(6.7),
			domain.MetricDebtEquity: fptr(0.76),
			domain.MetricFCF:        fptr(5584),
		},
	}

	snap, err := NewPipeline().Rank([]domain.FundamentalRecord{rec}, buffett(t), rankTime)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 1)

	entry := snap.Entries[0]
	assert.ElementsMatch(t, []string{PenaltyLowROE, PenaltyLowROCE}, penaltyCodes(entry.Penalties))
	assert.InDelta(t, entry.RawComposite*0.8*0.9, entry.FinalScore, 0.02)
	assert.NotEqual(t, domain.TierCore, entry.Tier)
}

func TestRankOrderingAndDenseRanks(t *testing.T) {
	records := []domain.FundamentalRecord{
		weakRecord("WEAK"),
		strongRecord("STRONG"),
		mediumRecord("MED"),
	}

	snap, err := NewPipeline().Rank(records, buffett(t), rankTime)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 3)

	for i := 1; i < len(snap.Entries); i++ {
		assert.GreaterOrEqual(t, snap.Entries[i-1].FinalScore, snap.Entries[i].FinalScore)
	}
	for i, entry := range snap.Entries {
		assert.Equal(t, i+1, entry.Rank)
	}
	assert.Equal(t, "STRONG", snap.Entries[0].Ticker)
}

func TestTieBreakROEThenTicker(t *testing.T) {
	// Identical metrics except ROE differences resolve by ROE desc;
	// fully identical records resolve by ticker asc
	a := strongRecord("BBB")
	b := strongRecord("AAA")
	c := strongRecord("CCC")
	higher := 35.0
	c.Metrics[domain.MetricROE] = &higher

	snap, err := NewPipeline().Rank([]domain.FundamentalRecord{a, b, c}, buffett(t), rankTime)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 3)

	assert.Equal(t, "CCC", snap.Entries[0].Ticker)
	assert.Equal(t, "AAA", snap.Entries[1].Ticker)
	assert.Equal(t, "BBB", snap.Entries[2].Ticker)
}

func TestRankDeterministic(t *testing.T) {
	records := []domain.FundamentalRecord{
		strongRecord("AAA"),
		mediumRecord("BBB"),
		weakRecord("CCC"),
	}
	p := buffett(t)

	first, err := NewPipeline().Rank(records, p, rankTime)
	require.NoError(t, err)
	second, err := NewPipeline().Rank(records, p, rankTime)
	require.NoError(t, err)

	require.Equal(t, len(first.Entries), len(second.Entries))
	for i := range first.Entries {
		assert.Equal(t, first.Entries[i].Ticker, second.Entries[i].Ticker)
		assert.Equal(t, first.Entries[i].FinalScore, second.Entries[i].FinalScore)
		assert.Equal(t, first.Entries[i].Rank, second.Entries[i].Rank)
	}
	assert.Equal(t, first.SnapshotID, second.SnapshotID)
}

func TestDisqualificationPrecedence(t *testing.T) {
	// Would score very well, but negative ROE is a hard exclusion
	rec := strongRecord("TRAP")
	negROE := -2.0
	rec.Metrics[domain.MetricROE] = &negROE

	snap, err := NewPipeline().Rank([]domain.FundamentalRecord{rec, strongRecord("OK")}, buffett(t), rankTime)
	require.NoError(t, err)

	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "OK", snap.Entries[0].Ticker)
	require.Len(t, snap.Excluded, 1)
	assert.Equal(t, "TRAP", snap.Excluded[0].Ticker)
	assert.True(t, snap.Excluded[0].Disqualified)
	assert.Equal(t, DisqualifyUnprofitable, snap.Excluded[0].DisqualificationCode)
}

func TestMonotonicityInROE(t *testing.T) {
	p := buffett(t)
	pipeline := NewPipeline()

	prev := 200.0
	for _, roe := range []float64{25, 14, 11.5, 9, 7, -1} {
		rec := strongRecord("MONO")
		rec.Metrics[domain.MetricROE] = &roe

		snap, err := pipeline.Rank([]domain.FundamentalRecord{rec}, p, rankTime)
		require.NoError(t, err)

		score := 0.0
		if len(snap.Entries) > 0 {
			score = snap.Entries[0].FinalScore
		}
		assert.LessOrEqual(t, score, prev, "roe=%.1f", roe)
		prev = score
	}
}

func TestDuplicateTickerRejected(t *testing.T) {
	_, err := NewPipeline().Rank([]domain.FundamentalRecord{
		strongRecord("DUP"),
		weakRecord("DUP"),
	}, buffett(t), rankTime)
	assert.True(t, domain.IsConfigError(err))
}

func TestSnapshotIDDeterministic(t *testing.T) {
	ts := time.Date(2025, 5, 5, 19, 43, 32, 0, time.UTC)
	assert.Equal(t, "20250505_194332_buffett", SnapshotID(ts, "buffett"))
}

func strongRecord(ticker string) domain.FundamentalRecord {
	return domain.FundamentalRecord{
		Name:   ticker + " Ltd",
		Ticker: ticker,
		Metrics: map[domain.MetricKey]*float64{
			domain.MetricROE:        fptr(30),
			domain.MetricROCE:       fptr(28),
			domain.MetricPERatio:    fptr(14),
			domain.MetricDebtEquity: fptr(0.2),
			domain.MetricFCF:        fptr(1200),
		},
	}
}

func mediumRecord(ticker string) domain.FundamentalRecord {
	return domain.FundamentalRecord{
		Name:   ticker + " Ltd",
		Ticker: ticker,
		Metrics: map[domain.MetricKey]*float64{
			domain.MetricROE:        fptr(16),
			domain.MetricROCE:       fptr(15),
			domain.MetricPERatio:    fptr(30),
			domain.MetricDebtEquity: fptr(0.9),
			domain.MetricFCF:        fptr(250),
		},
	}
}

func weakRecord(ticker string) domain.FundamentalRecord {
	return domain.FundamentalRecord{
		Name:   ticker + " Ltd",
		Ticker: ticker,
		Metrics: map[domain.MetricKey]*float64{
			domain.MetricROE:        fptr(9),
			domain.MetricROCE:       fptr(10),
			domain.MetricPERatio:    fptr(45),
			domain.MetricDebtEquity: fptr(1.4),
			domain.MetricFCF:        fptr(60),
		},
	}
}
