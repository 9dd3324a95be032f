package ranking

import "github.com/stockpulse/ranker/internal/domain"

// Disqualification reason codes.
const (
	DisqualifyMassiveCashBurn  = "massive_cash_burn"
	DisqualifySpeculativePE    = "speculative_valuation"
	DisqualifyDistress         = "leveraged_cash_burn"
	DisqualifyUnprofitable     = "negative_roe"
	DisqualifyMinimalCashYield = "minimal_cash_generation"
)

// DisqualificationFilter applies hard exclusion rules. A disqualified
// company never enters the ranked list, regardless of composite score.
type DisqualificationFilter struct{}

// NewDisqualificationFilter creates a disqualification filter.
func NewDisqualificationFilter() *DisqualificationFilter {
	return &DisqualificationFilter{}
}

// Check evaluates the hard rules top-down; the first match wins.
// Rules whose metrics are missing do not fire.
func (f *DisqualificationFilter) Check(rec domain.FundamentalRecord) (bool, string) {
	fcf, hasFCF := rec.Metric(domain.MetricFCF)
	pe, hasPE := rec.Metric(domain.MetricPERatio)
	de, hasDE := rec.Metric(domain.MetricDebtEquity)
	roe, hasROE := rec.Metric(domain.MetricROE)
	mcap, hasMcap := rec.Metric(domain.MetricMarketCap)

	if hasFCF && fcf < -500 {
		return true, DisqualifyMassiveCashBurn
	}
	if hasPE && pe > 100 {
		return true, DisqualifySpeculativePE
	}
	if hasFCF && hasDE && fcf < -100 && de > 2 {
		return true, DisqualifyDistress
	}
	if hasROE && roe < 0 {
		return true, DisqualifyUnprofitable
	}
	if hasFCF && hasMcap && fcf > 0 && fcf < 10 && mcap > 1000 {
		// FCF yield below 0.5% of market cap on a large company
		if fcf/mcap*100 < 0.5 {
			return true, DisqualifyMinimalCashYield
		}
	}
	return false, ""
}
