package ranking

import (
	"math"
	"sort"

	"github.com/stockpulse/ranker/internal/domain"
)

// weightSumTolerance is the allowed deviation of a profile's weight sum from 1.0.
const weightSumTolerance = 1e-6

// PhilosophyProfile is a named, validated weight vector over the metric set.
// Profiles are read-only after construction; scoring never mutates them.
type PhilosophyProfile struct {
	Name    string                       `json:"name"`
	Weights map[domain.MetricKey]float64 `json:"weights"`
}

// NewPhilosophyProfile validates and constructs a weight profile.
// Weights must be non-negative, reference known metric keys only,
// and sum to 1.0 within tolerance.
func NewPhilosophyProfile(name string, weights map[domain.MetricKey]float64) (*PhilosophyProfile, error) {
	if name == "" {
		return nil, domain.NewConfigError("name", "philosophy name must not be empty")
	}
	if len(weights) == 0 {
		return nil, domain.NewConfigError("weights", "philosophy %q has no weights", name)
	}

	sum := 0.0
	for key, w := range weights {
		if !key.Valid() {
			return nil, domain.NewConfigError("weights", "philosophy %q references unknown metric %q", name, key)
		}
		if w < 0 {
			return nil, domain.NewConfigError("weights", "philosophy %q has negative weight %.4f for %q", name, w, key)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, domain.NewConfigError("weights", "philosophy %q weights sum to %.6f, expected 1.0", name, sum)
	}

	copied := make(map[domain.MetricKey]float64, len(weights))
	for k, v := range weights {
		copied[k] = v
	}
	return &PhilosophyProfile{Name: name, Weights: copied}, nil
}

// mustProfile panics on invalid built-in definitions. Only used for the
// package-level constants below, which are covered by tests.
func mustProfile(name string, weights map[domain.MetricKey]float64) *PhilosophyProfile {
	p, err := NewPhilosophyProfile(name, weights)
	if err != nil {
		panic(err)
	}
	return p
}

var builtinProfiles = map[string]*PhilosophyProfile{
	"buffett": mustProfile("buffett", map[domain.MetricKey]float64{
		domain.MetricFCF:            0.28,
		domain.MetricROE:            0.20,
		domain.MetricROCE:           0.16,
		domain.MetricDebtEquity:     0.14,
		domain.MetricOPM:            0.10,
		domain.MetricPERatio:        0.08,
		domain.MetricProfitGrowth3Y: 0.03,
		domain.MetricSalesGrowth5Y:  0.01,
	}),
	"lynch": mustProfile("lynch", map[domain.MetricKey]float64{
		domain.MetricProfitGrowth3Y: 0.28,
		domain.MetricSalesGrowth5Y:  0.12,
		domain.MetricROE:            0.14,
		domain.MetricFCF:            0.12,
		domain.MetricROCE:           0.08,
		domain.MetricDebtEquity:     0.08,
		domain.MetricPERatio:        0.10,
		domain.MetricEPS:            0.08,
	}),
	"growth": mustProfile("growth", map[domain.MetricKey]float64{
		domain.MetricProfitGrowth3Y: 0.25,
		domain.MetricSalesGrowth5Y:  0.20,
		domain.MetricROCE:           0.15,
		domain.MetricROE:            0.12,
		domain.MetricFCF:            0.12,
		domain.MetricOPM:            0.08,
		domain.MetricEPS:            0.08,
	}),
	"value": mustProfile("value", map[domain.MetricKey]float64{
		domain.MetricPERatio:        0.28,
		domain.MetricDebtEquity:     0.20,
		domain.MetricFCF:            0.18,
		domain.MetricROE:            0.14,
		domain.MetricROCE:           0.12,
		domain.MetricDividendYield:  0.05,
		domain.MetricProfitGrowth3Y: 0.03,
	}),
	"dividend": mustProfile("dividend", map[domain.MetricKey]float64{
		domain.MetricDividendYield: 0.28,
		domain.MetricFCF:           0.25,
		domain.MetricROE:           0.15,
		domain.MetricDebtEquity:    0.15,
		domain.MetricROCE:          0.10,
		domain.MetricOPM:           0.07,
	}),
	"quality": mustProfile("quality", map[domain.MetricKey]float64{
		domain.MetricFCF:            0.30,
		domain.MetricROE:            0.18,
		domain.MetricROCE:           0.15,
		domain.MetricPERatio:        0.15,
		domain.MetricDebtEquity:     0.12,
		domain.MetricOPM:            0.08,
		domain.MetricProfitGrowth3Y: 0.02,
	}),
	"balanced": mustProfile("balanced", map[domain.MetricKey]float64{
		domain.MetricROE:            0.14,
		domain.MetricROCE:           0.12,
		domain.MetricPERatio:        0.12,
		domain.MetricDebtEquity:     0.12,
		domain.MetricFCF:            0.14,
		domain.MetricOPM:            0.10,
		domain.MetricProfitGrowth3Y: 0.10,
		domain.MetricSalesGrowth5Y:  0.08,
		domain.MetricDividendYield:  0.04,
		domain.MetricEPS:            0.04,
	}),
}

// GetProfile returns a built-in philosophy by name.
func GetProfile(name string) (*PhilosophyProfile, error) {
	if p, ok := builtinProfiles[name]; ok {
		return p, nil
	}
	return nil, domain.NewConfigError("philosophy", "unknown philosophy %q", name)
}

// ProfileNames returns the built-in philosophy names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuiltinProfiles returns all built-in profiles keyed by name.
func BuiltinProfiles() map[string]*PhilosophyProfile {
	return builtinProfiles
}
