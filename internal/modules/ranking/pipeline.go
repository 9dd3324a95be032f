package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/stockpulse/ranker/internal/domain"
)

// ScoreBreakdown is the full audit trail for one company in one run.
// It is constructed once and never mutated; re-scoring produces a new one.
type ScoreBreakdown struct {
	Ticker               string                        `json:"ticker"`
	Name                 string                        `json:"name"`
	Sector               string                        `json:"sector"`
	RawMetrics           map[domain.MetricKey]*float64 `json:"raw_metrics"`
	NormalizedMetrics    map[domain.MetricKey]float64  `json:"normalized_metrics,omitempty"`
	RawComposite         float64                       `json:"raw_composite"`
	Penalties            []AppliedPenalty              `json:"penalties,omitempty"`
	SectorAdjustmentPct  float64                       `json:"sector_adjustment_pct"`
	FinalScore           float64                       `json:"final_score"`
	Tier                 domain.Tier                   `json:"tier,omitempty"`
	Rank                 int                           `json:"rank,omitempty"`
	Disqualified         bool                          `json:"disqualified,omitempty"`
	DisqualificationCode string                        `json:"disqualification_reason,omitempty"`
}

// RankingSnapshot is the immutable output of one pipeline run.
type RankingSnapshot struct {
	SnapshotID string           `json:"snapshot_id"`
	Timestamp  time.Time        `json:"timestamp"`
	Philosophy string           `json:"philosophy"`
	Entries    []ScoreBreakdown `json:"companies"`
	Excluded   []ScoreBreakdown `json:"excluded,omitempty"`
}

// SnapshotID derives the deterministic snapshot identifier from a
// timestamp and philosophy name.
func SnapshotID(ts time.Time, philosophy string) string {
	return ts.UTC().Format("20060102_150405") + "_" + philosophy
}

// Pipeline orchestrates normalization, scoring, penalties,
// disqualification, sector adjustment, tiering and ranking.
type Pipeline struct {
	scorer     *CompositeScorer
	penalties  *PenaltyEngine
	filter     *DisqualificationFilter
	sectors    *SectorAdjuster
	classifier *TierClassifier
}

// NewPipeline wires the standard pipeline components.
func NewPipeline() *Pipeline {
	return &Pipeline{
		scorer:     NewCompositeScorer(NewNormalizer()),
		penalties:  NewPenaltyEngine(),
		filter:     NewDisqualificationFilter(),
		sectors:    NewSectorAdjuster(),
		classifier: NewTierClassifier(),
	}
}

// Rank scores every record under the profile and produces a snapshot:
// disqualified records go to Excluded, the rest are sorted by final score
// descending (ties: raw ROE descending, then ticker ascending) and given
// dense ranks starting at 1. Identical inputs always produce identical
// ordering and scores.
func (p *Pipeline) Rank(records []domain.FundamentalRecord, profile *PhilosophyProfile, now time.Time) (*RankingSnapshot, error) {
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.Ticker == "" {
			return nil, domain.NewConfigError("records", "record %q has no ticker", rec.Name)
		}
		if seen[rec.Ticker] {
			return nil, domain.NewConfigError("records", "duplicate ticker %q", rec.Ticker)
		}
		seen[rec.Ticker] = true
	}

	var entries, excluded []ScoreBreakdown
	for _, rec := range records {
		if disqualified, reason := p.filter.Check(rec); disqualified {
			excluded = append(excluded, ScoreBreakdown{
				Ticker:               rec.Ticker,
				Name:                 rec.Name,
				Sector:               rec.Sector,
				RawMetrics:           rec.Metrics,
				Disqualified:         true,
				DisqualificationCode: reason,
			})
			continue
		}
		entries = append(entries, p.scoreRecord(rec, profile))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].FinalScore != entries[j].FinalScore {
			return entries[i].FinalScore > entries[j].FinalScore
		}
		roeI := rawOrNegInf(entries[i].RawMetrics[domain.MetricROE])
		roeJ := rawOrNegInf(entries[j].RawMetrics[domain.MetricROE])
		if roeI != roeJ {
			return roeI > roeJ
		}
		return entries[i].Ticker < entries[j].Ticker
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return &RankingSnapshot{
		SnapshotID: SnapshotID(now, profile.Name),
		Timestamp:  now.UTC(),
		Philosophy: profile.Name,
		Entries:    entries,
		Excluded:   excluded,
	}, nil
}

func (p *Pipeline) scoreRecord(rec domain.FundamentalRecord, profile *PhilosophyProfile) ScoreBreakdown {
	composite, normalized := p.scorer.Score(rec, profile)
	penalized, applied := p.penalties.Apply(rec, composite)
	adjusted, adjustmentPct := p.sectors.Adjust(rec.Sector, rec, penalized)
	tier := p.classifier.Classify(adjusted, rec)

	return ScoreBreakdown{
		Ticker:              rec.Ticker,
		Name:                rec.Name,
		Sector:              rec.Sector,
		RawMetrics:          rec.Metrics,
		NormalizedMetrics:   normalized,
		RawComposite:        round2(composite),
		Penalties:           applied,
		SectorAdjustmentPct: adjustmentPct,
		FinalScore:          round2(adjusted),
		Tier:                tier,
	}
}

func rawOrNegInf(v *float64) float64 {
	if v == nil {
		return math.Inf(-1)
	}
	return *v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
