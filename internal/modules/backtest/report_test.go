package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultWith(snapshotID, philosophy string, alpha, hitRate float64, status Status) *Result {
	sharpe := 1.1
	return &Result{
		ID:         snapshotID + "-run",
		SnapshotID: snapshotID,
		Philosophy: philosophy,
		Status:     status,
		Alpha:      alpha,
		HitRate:    hitRate,
		WinRate:    0.7,
		Sharpe:     &sharpe,
	}
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil)
	assert.Equal(t, 0, report.TotalValidations)
	assert.Empty(t, report.ByPhilosophy)
	assert.Empty(t, report.BestSnapshot)
}

func TestBuildReportAggregates(t *testing.T) {
	results := []*Result{
		resultWith("s1", "buffett", 4.0, 0.8, StatusCompleted),
		resultWith("s2", "buffett", 2.0, 0.6, StatusPartiallyCompleted),
		resultWith("s3", "value", -1.0, 0.4, StatusCompleted),
	}

	report := BuildReport(results)
	assert.Equal(t, 3, report.TotalValidations)
	assert.Equal(t, 2, report.FullyCovered)
	assert.InDelta(t, 5.0/3.0, report.AvgAlpha, 1e-9)
	assert.Equal(t, "s1", report.BestSnapshot)
	assert.Equal(t, "s3", report.WorstSnapshot)

	require.Len(t, report.ByPhilosophy, 2)
	// Groups are sorted by philosophy name
	buffett := report.ByPhilosophy[0]
	assert.Equal(t, "buffett", buffett.Philosophy)
	assert.Equal(t, 2, buffett.Validations)
	assert.InDelta(t, 3.0, buffett.AvgAlpha, 1e-9)
	require.NotNil(t, buffett.AlphaConsistency)

	value := report.ByPhilosophy[1]
	assert.Equal(t, "value", value.Philosophy)
	assert.Nil(t, value.AlphaConsistency)
}

func TestBuildReportSharpeAveragesSkipNil(t *testing.T) {
	withSharpe := resultWith("s1", "growth", 1.0, 0.5, StatusCompleted)
	withoutSharpe := resultWith("s2", "growth", 2.0, 0.5, StatusCompleted)
	withoutSharpe.Sharpe = nil

	report := BuildReport([]*Result{withSharpe, withoutSharpe})
	require.Len(t, report.ByPhilosophy, 1)
	require.NotNil(t, report.ByPhilosophy[0].AvgSharpe)
	assert.InDelta(t, 1.1, *report.ByPhilosophy[0].AvgSharpe, 1e-9)
}
