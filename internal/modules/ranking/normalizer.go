package ranking

import (
	"math"

	"github.com/stockpulse/ranker/internal/domain"
)

// neutralScore is used when a metric value is missing, keeping profile
// weights valid without renormalization.
const neutralScore = 50.0

// metricBounds defines the linear scaling range for one metric.
type metricBounds struct {
	Floor         float64
	Ceiling       float64
	LowerIsBetter bool
}

// normalizerBounds are fixed configuration, not dataset min/max, so scores
// stay comparable across runs.
var normalizerBounds = map[domain.MetricKey]metricBounds{
	domain.MetricROE:            {Floor: 0, Ceiling: 30},
	domain.MetricROCE:           {Floor: 0, Ceiling: 30},
	domain.MetricPERatio:        {Floor: 5, Ceiling: 60, LowerIsBetter: true},
	domain.MetricDebtEquity:     {Floor: 0, Ceiling: 2, LowerIsBetter: true},
	domain.MetricFCF:            {Floor: -500, Ceiling: 2000},
	domain.MetricOPM:            {Floor: 0, Ceiling: 30},
	domain.MetricProfitGrowth3Y: {Floor: -20, Ceiling: 40},
	domain.MetricSalesGrowth5Y:  {Floor: -10, Ceiling: 30},
	domain.MetricMarketCap:      {Floor: 0, Ceiling: 100000},
	domain.MetricEPS:            {Floor: 0, Ceiling: 100},
	domain.MetricDividendYield:  {Floor: 0, Ceiling: 6},
}

// Normalizer maps raw metric values onto a bounded [0,100] scale.
type Normalizer struct {
	bounds map[domain.MetricKey]metricBounds
}

// NewNormalizer creates a normalizer with the standard per-metric bounds.
func NewNormalizer() *Normalizer {
	return &Normalizer{bounds: normalizerBounds}
}

// Normalize scales a raw value linearly between the metric's floor and
// ceiling, clamped to [0,100]. Lower-is-better metrics are inverted.
// A nil value yields the neutral fallback of 50.
func (n *Normalizer) Normalize(key domain.MetricKey, raw *float64) float64 {
	if raw == nil {
		return neutralScore
	}
	b, ok := n.bounds[key]
	if !ok {
		return neutralScore
	}

	span := b.Ceiling - b.Floor
	if span <= 0 {
		return neutralScore
	}

	scaled := (*raw - b.Floor) / span * 100
	scaled = math.Max(0, math.Min(100, scaled))
	if b.LowerIsBetter {
		scaled = 100 - scaled
	}
	return scaled
}

// NormalizeRecord computes normalized scores for every metric present in
// the profile, falling back to neutral for missing values.
func (n *Normalizer) NormalizeRecord(rec domain.FundamentalRecord, profile *PhilosophyProfile) map[domain.MetricKey]float64 {
	out := make(map[domain.MetricKey]float64, len(profile.Weights))
	for key := range profile.Weights {
		out[key] = n.Normalize(key, rec.Metrics[key])
	}
	return out
}
