package backtest

import (
	"sort"

	"github.com/stockpulse/ranker/pkg/formulas"
)

// PhilosophyPerformance aggregates validation outcomes for one philosophy.
type PhilosophyPerformance struct {
	Philosophy       string   `json:"philosophy"`
	Validations      int      `json:"validations"`
	AvgAlpha         float64  `json:"avg_alpha"`
	AlphaConsistency *float64 `json:"alpha_consistency"` // stdev of alpha across validations
	AvgHitRate       float64  `json:"avg_hit_rate"`
	AvgWinRate       float64  `json:"avg_win_rate"`
	AvgSharpe        *float64 `json:"avg_sharpe"`
}

// Report summarizes all stored validation results.
type Report struct {
	TotalValidations int                     `json:"total_validations"`
	FullyCovered     int                     `json:"fully_covered"`
	AvgAlpha         float64                 `json:"avg_alpha"`
	AvgHitRate       float64                 `json:"avg_hit_rate"`
	ByPhilosophy     []PhilosophyPerformance `json:"by_philosophy"`
	BestSnapshot     string                  `json:"best_snapshot,omitempty"`
	WorstSnapshot    string                  `json:"worst_snapshot,omitempty"`
}

// BuildReport aggregates stored results into a performance report.
func BuildReport(results []*Result) *Report {
	report := &Report{TotalValidations: len(results)}
	if len(results) == 0 {
		return report
	}

	var alphas, hitRates []float64
	byPhilosophy := make(map[string][]*Result)
	best, worst := results[0], results[0]

	for _, r := range results {
		alphas = append(alphas, r.Alpha)
		hitRates = append(hitRates, r.HitRate)
		byPhilosophy[r.Philosophy] = append(byPhilosophy[r.Philosophy], r)
		if r.Status == StatusCompleted {
			report.FullyCovered++
		}
		if r.Alpha > best.Alpha {
			best = r
		}
		if r.Alpha < worst.Alpha {
			worst = r
		}
	}

	report.AvgAlpha = formulas.Mean(alphas)
	report.AvgHitRate = formulas.Mean(hitRates)
	report.BestSnapshot = best.SnapshotID
	report.WorstSnapshot = worst.SnapshotID

	names := make([]string, 0, len(byPhilosophy))
	for name := range byPhilosophy {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		group := byPhilosophy[name]
		perf := PhilosophyPerformance{
			Philosophy:  name,
			Validations: len(group),
		}

		var groupAlphas, groupHitRates, groupWinRates, groupSharpes []float64
		for _, r := range group {
			groupAlphas = append(groupAlphas, r.Alpha)
			groupHitRates = append(groupHitRates, r.HitRate)
			groupWinRates = append(groupWinRates, r.WinRate)
			if r.Sharpe != nil {
				groupSharpes = append(groupSharpes, *r.Sharpe)
			}
		}
		perf.AvgAlpha = formulas.Mean(groupAlphas)
		perf.AvgHitRate = formulas.Mean(groupHitRates)
		perf.AvgWinRate = formulas.Mean(groupWinRates)
		if len(groupSharpes) > 0 {
			avg := formulas.Mean(groupSharpes)
			perf.AvgSharpe = &avg
		}
		if len(groupAlphas) >= 2 {
			sd := formulas.StdDev(groupAlphas)
			perf.AlphaConsistency = &sd
		}

		report.ByPhilosophy = append(report.ByPhilosophy, perf)
	}
	return report
}
