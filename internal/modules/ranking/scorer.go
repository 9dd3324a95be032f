package ranking

import "github.com/stockpulse/ranker/internal/domain"

// CompositeScorer produces the weighted-sum composite score from
// normalized metrics and a philosophy profile.
type CompositeScorer struct {
	normalizer *Normalizer
}

// NewCompositeScorer creates a scorer over the given normalizer.
func NewCompositeScorer(normalizer *Normalizer) *CompositeScorer {
	return &CompositeScorer{normalizer: normalizer}
}

// Score returns the raw composite in [0,100] plus the normalized metric
// values that produced it. Missing metrics contribute through the
// normalizer's neutral fallback rather than being dropped, so the
// profile's relative weighting is preserved.
func (s *CompositeScorer) Score(rec domain.FundamentalRecord, profile *PhilosophyProfile) (float64, map[domain.MetricKey]float64) {
	normalized := s.normalizer.NormalizeRecord(rec, profile)

	composite := 0.0
	for key, weight := range profile.Weights {
		composite += normalized[key] * weight
	}
	return composite, normalized
}
