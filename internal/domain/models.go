package domain

import "fmt"

// MetricKey identifies a fundamental metric in the closed metric set.
// All scoring configuration (profiles, normalizer bounds, penalty rules)
// references metrics through this enumeration so unknown keys are caught
// at construction time, not during a scoring run.
type MetricKey string

const (
	MetricROE            MetricKey = "roe"               // Return on equity, percent
	MetricROCE           MetricKey = "roce"              // Return on capital employed, percent
	MetricPERatio        MetricKey = "pe_ratio"          // Price-to-earnings multiple
	MetricDebtEquity     MetricKey = "debt_equity"       // Debt-to-equity ratio
	MetricFCF            MetricKey = "fcf"               // Free cash flow, currency crores
	MetricOPM            MetricKey = "opm"               // Operating profit margin, percent
	MetricProfitGrowth3Y MetricKey = "profit_growth_3yr" // 3-year profit CAGR, percent
	MetricSalesGrowth5Y  MetricKey = "sales_growth_5yr"  // 5-year sales CAGR, percent
	MetricMarketCap      MetricKey = "market_cap"        // Market capitalization, currency crores
	MetricEPS            MetricKey = "eps"               // Earnings per share
	MetricDividendYield  MetricKey = "dividend_yield"    // Dividend yield, percent
)

// AllMetricKeys returns the full metric enumeration in declaration order.
func AllMetricKeys() []MetricKey {
	return []MetricKey{
		MetricROE,
		MetricROCE,
		MetricPERatio,
		MetricDebtEquity,
		MetricFCF,
		MetricOPM,
		MetricProfitGrowth3Y,
		MetricSalesGrowth5Y,
		MetricMarketCap,
		MetricEPS,
		MetricDividendYield,
	}
}

// Valid reports whether the key belongs to the closed metric set.
func (k MetricKey) Valid() bool {
	for _, known := range AllMetricKeys() {
		if k == known {
			return true
		}
	}
	return false
}

// FundamentalRecord is one company's raw fundamentals as delivered by the
// upstream parsing collaborator. A nil metric pointer means the value was
// missing from the source data. Records are treated as immutable once they
// enter the ranking pipeline.
type FundamentalRecord struct {
	Name    string                 `json:"name"`
	Ticker  string                 `json:"ticker"`
	Sector  string                 `json:"sector"`
	Metrics map[MetricKey]*float64 `json:"metrics"`
}

// Metric returns the raw value for a key and whether it is present.
func (r *FundamentalRecord) Metric(key MetricKey) (float64, bool) {
	v, ok := r.Metrics[key]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Tier is the ordinal investability classification. Lower values are better;
// TierAvoid is the catch-all for everything that fails the quality gates.
type Tier int

const (
	TierCore Tier = iota + 1
	TierQuality
	TierSpecialized
	TierAvoid
)

// MarshalJSON encodes the tier as its display name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes a tier from its display name.
func (t *Tier) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"CORE"`:
		*t = TierCore
	case `"QUALITY"`:
		*t = TierQuality
	case `"SPECIALIZED"`:
		*t = TierSpecialized
	case `"AVOID"`:
		*t = TierAvoid
	default:
		return fmt.Errorf("unknown tier %s", data)
	}
	return nil
}

// String returns the display name of the tier.
func (t Tier) String() string {
	switch t {
	case TierCore:
		return "CORE"
	case TierQuality:
		return "QUALITY"
	case TierSpecialized:
		return "SPECIALIZED"
	case TierAvoid:
		return "AVOID"
	default:
		return "UNKNOWN"
	}
}
