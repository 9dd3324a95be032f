package ranking

import "github.com/stockpulse/ranker/internal/domain"

// Tier score floors. Raw-metric gates apply on top, so a high score with a
// deficient metric still falls through to a lower tier.
const (
	coreScoreFloor        = 70.0
	qualityScoreFloor     = 55.0
	specializedScoreFloor = 40.0
)

// TierClassifier maps a final score plus raw metrics to an investment tier.
type TierClassifier struct{}

// NewTierClassifier creates a tier classifier.
func NewTierClassifier() *TierClassifier {
	return &TierClassifier{}
}

// Classify evaluates tiers top-down; the first whose gates all pass wins.
// A missing raw metric fails any gate that needs it. Avoid is the catch-all.
func (c *TierClassifier) Classify(finalScore float64, rec domain.FundamentalRecord) domain.Tier {
	roe, hasROE := rec.Metric(domain.MetricROE)
	roce, hasROCE := rec.Metric(domain.MetricROCE)
	pe, hasPE := rec.Metric(domain.MetricPERatio)
	fcf, hasFCF := rec.Metric(domain.MetricFCF)
	de, hasDE := rec.Metric(domain.MetricDebtEquity)
	growth, hasGrowth := rec.Metric(domain.MetricProfitGrowth3Y)

	if finalScore >= coreScoreFloor &&
		hasROE && roe > 20 &&
		hasROCE && roce > 20 &&
		hasPE && pe < 25 &&
		hasFCF && fcf > 500 &&
		hasDE && de < 0.5 {
		return domain.TierCore
	}

	if finalScore >= qualityScoreFloor &&
		hasROE && roe > 15 &&
		hasROCE && roce > 15 &&
		hasPE && pe < 35 &&
		hasFCF && fcf > 100 &&
		hasDE && de < 1.0 {
		return domain.TierQuality
	}

	if finalScore >= specializedScoreFloor &&
		hasDE && de < 1.5 &&
		((hasROE && roe > 12) || (hasFCF && fcf > 1000 && hasGrowth && growth > 0)) {
		return domain.TierSpecialized
	}

	return domain.TierAvoid
}
