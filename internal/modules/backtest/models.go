package backtest

import "time"

// Status tracks a snapshot's progress through validation.
// Transitions only move forward: Pending → Eligible → Fetching →
// Completed | PartiallyCompleted.
type Status string

const (
	StatusPending            Status = "pending"
	StatusEligible           Status = "eligible"
	StatusFetching           Status = "fetching"
	StatusCompleted          Status = "completed"
	StatusPartiallyCompleted Status = "partially_completed"
)

// CompanyReturn is one ticker's outcome in a validation window.
type CompanyReturn struct {
	Ticker  string   `json:"ticker"`
	Rank    int      `json:"rank"`
	Return  *float64 `json:"return,omitempty"`
	Missing bool     `json:"missing,omitempty"`
}

// Result is the outcome of validating one snapshot at one horizon.
// Results are append-only; re-validation returns the stored result.
type Result struct {
	ID                string          `json:"id"`
	SnapshotID        string          `json:"snapshot_id"`
	Philosophy        string          `json:"philosophy"`
	HorizonMonths     int             `json:"horizon_months"`
	WindowStart       time.Time       `json:"window_start"`
	WindowEnd         time.Time       `json:"window_end"`
	Status            Status          `json:"status"`
	PerCompany        []CompanyReturn `json:"per_company"`
	BenchmarkReturn   float64         `json:"benchmark_return"`
	BenchmarkSource   string          `json:"benchmark_source"`
	HitRate           float64         `json:"hit_rate"`
	WinRate           float64         `json:"win_rate"`
	Alpha             float64         `json:"alpha"`
	Sharpe            *float64        `json:"sharpe"`
	MaxDrawdownApprox float64         `json:"max_drawdown_approx"`
	FetchedCount      int             `json:"fetched_count"`
	TotalCount        int             `json:"total_count"`
	ValidatedAt       time.Time       `json:"validated_at"`
}

// Benchmark sources.
const (
	BenchmarkSourceIndex        = "index"
	BenchmarkSourceCohortMedian = "cohort_median"
)
