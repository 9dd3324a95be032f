package ranking

import "github.com/stockpulse/ranker/internal/domain"

// Penalty codes. Each names the threshold rule that fired.
const (
	PenaltyVeryLowROE       = "very_low_roe"
	PenaltyLowROE           = "low_roe"
	PenaltyModerateROE      = "moderate_roe"
	PenaltyLowROCE          = "low_roce"
	PenaltyModerateROCE     = "moderate_roce"
	PenaltyNegativeFCF      = "negative_fcf"
	PenaltyLowFCFRelative   = "low_fcf_relative"
	PenaltyModeratePE       = "moderate_pe"
	PenaltyHighPE           = "high_pe"
	PenaltyExtremePE        = "extreme_pe"
	PenaltyHighDebt         = "high_debt"
	PenaltyModerateDebt     = "moderate_debt"
	PenaltyMultipleRedFlags = "multiple_red_flags"
)

// AppliedPenalty records one triggered reduction.
type AppliedPenalty struct {
	Code      string  `json:"code"`
	Magnitude float64 `json:"magnitude"`
}

// PenaltyEngine evaluates quality thresholds against raw metric values.
// A rule whose metric is missing does not fire.
type PenaltyEngine struct{}

// NewPenaltyEngine creates a penalty engine.
func NewPenaltyEngine() *PenaltyEngine {
	return &PenaltyEngine{}
}

// Apply composes all triggered penalties multiplicatively:
// final = composite × Π(1 − magnitude). Multiplicative composition keeps
// the result non-negative and independent of evaluation order.
func (e *PenaltyEngine) Apply(rec domain.FundamentalRecord, composite float64) (float64, []AppliedPenalty) {
	penalties := e.evaluate(rec)

	final := composite
	for _, p := range penalties {
		final *= 1 - p.Magnitude
	}
	return final, penalties
}

func (e *PenaltyEngine) evaluate(rec domain.FundamentalRecord) []AppliedPenalty {
	var penalties []AppliedPenalty
	add := func(code string, magnitude float64) {
		penalties = append(penalties, AppliedPenalty{Code: code, Magnitude: magnitude})
	}

	if roe, ok := rec.Metric(domain.MetricROE); ok {
		switch {
		case roe < 8:
			add(PenaltyVeryLowROE, 0.30)
		case roe < 10:
			add(PenaltyLowROE, 0.20)
		case roe < 12:
			add(PenaltyModerateROE, 0.10)
		}
	}

	if roce, ok := rec.Metric(domain.MetricROCE); ok {
		switch {
		case roce < 12:
			add(PenaltyLowROCE, 0.10)
		case roce < 15:
			add(PenaltyModerateROCE, 0.05)
		}
	}

	fcf, hasFCF := rec.Metric(domain.MetricFCF)
	mcap, hasMcap := rec.Metric(domain.MetricMarketCap)
	if hasFCF {
		if fcf < 0 {
			add(PenaltyNegativeFCF, 0.40)
		} else if hasMcap && fcf < 100 && fcf > 0 && mcap > 1000 {
			add(PenaltyLowFCFRelative, 0.10)
		}
	}

	if pe, ok := rec.Metric(domain.MetricPERatio); ok {
		switch {
		case pe > 100:
			add(PenaltyExtremePE, 0.25)
		case pe > 50:
			add(PenaltyHighPE, 0.15)
		case pe > 25:
			add(PenaltyModeratePE, 0.05)
		}
	}

	if de, ok := rec.Metric(domain.MetricDebtEquity); ok {
		switch {
		case de > 1.5:
			add(PenaltyHighDebt, 0.20)
		case de > 1.0:
			add(PenaltyModerateDebt, 0.10)
		}
	}

	if flags := e.countRedFlags(rec); flags >= 2 {
		add(PenaltyMultipleRedFlags, 0.10*float64(flags))
	}

	return penalties
}

// countRedFlags counts independent warning signals. Two or more firing
// together trigger the compound penalty on top of the named ones.
func (e *PenaltyEngine) countRedFlags(rec domain.FundamentalRecord) int {
	flags := 0

	if roe, ok := rec.Metric(domain.MetricROE); ok && roe < 10 {
		flags++
	}
	if growth, ok := rec.Metric(domain.MetricProfitGrowth3Y); ok && growth < 0 {
		flags++
	}
	fcf, hasFCF := rec.Metric(domain.MetricFCF)
	mcap, hasMcap := rec.Metric(domain.MetricMarketCap)
	if hasFCF && hasMcap && fcf > 0 && fcf < 100 && mcap > 1000 {
		flags++
	}
	if de, ok := rec.Metric(domain.MetricDebtEquity); ok && de > 1.0 {
		flags++
	}
	return flags
}
