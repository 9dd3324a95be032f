package ranking

import (
	"math"
	"strings"

	"github.com/stockpulse/ranker/internal/domain"
)

// maxSectorAdjustment caps the total sector-relative correction.
const maxSectorAdjustment = 0.15

// SectorBenchmark holds the norms a sector is judged against.
type SectorBenchmark struct {
	ROEThreshold  float64
	DebtNorm      float64
	OPMNorm       float64
	PenaltyFactor float64 // dampens how hard sector context counts against a company
	FCFMultiplier float64 // relative importance of cash generation in the sector
}

var sectorBenchmarks = map[string]SectorBenchmark{
	"it":            {ROEThreshold: 20, DebtNorm: 0.3, OPMNorm: 22, PenaltyFactor: 1.0, FCFMultiplier: 1.2},
	"banking":       {ROEThreshold: 14, DebtNorm: 1.2, OPMNorm: 30, PenaltyFactor: 0.7, FCFMultiplier: 0.6},
	"pharma":        {ROEThreshold: 16, DebtNorm: 0.5, OPMNorm: 20, PenaltyFactor: 1.0, FCFMultiplier: 1.1},
	"manufacturing": {ROEThreshold: 14, DebtNorm: 0.8, OPMNorm: 14, PenaltyFactor: 0.9, FCFMultiplier: 1.0},
	"telecom":       {ROEThreshold: 10, DebtNorm: 1.5, OPMNorm: 18, PenaltyFactor: 0.8, FCFMultiplier: 0.9},
	"realestate":    {ROEThreshold: 10, DebtNorm: 1.2, OPMNorm: 25, PenaltyFactor: 0.8, FCFMultiplier: 0.8},
	"fmcg":          {ROEThreshold: 25, DebtNorm: 0.4, OPMNorm: 18, PenaltyFactor: 1.1, FCFMultiplier: 1.2},
	"auto":          {ROEThreshold: 15, DebtNorm: 0.7, OPMNorm: 12, PenaltyFactor: 0.9, FCFMultiplier: 1.0},
	"energy":        {ROEThreshold: 12, DebtNorm: 1.0, OPMNorm: 15, PenaltyFactor: 0.8, FCFMultiplier: 0.9},
	"healthcare":    {ROEThreshold: 15, DebtNorm: 0.6, OPMNorm: 18, PenaltyFactor: 1.0, FCFMultiplier: 1.1},
}

// defaultBenchmark is a wide, neutral profile for unknown sectors.
// Its multipliers are chosen so no adjustment component fires.
var defaultBenchmark = SectorBenchmark{
	ROEThreshold:  0,
	DebtNorm:      1.0,
	OPMNorm:       0,
	PenaltyFactor: 1.0,
	FCFMultiplier: 1.0,
}

// SectorAdjuster applies a bounded sector-relative correction to the
// penalized score.
type SectorAdjuster struct{}

// NewSectorAdjuster creates a sector adjuster.
func NewSectorAdjuster() *SectorAdjuster {
	return &SectorAdjuster{}
}

// Benchmark resolves the sector's benchmark, falling back to the neutral
// default for sectors without a configured profile.
func (a *SectorAdjuster) Benchmark(sector string) SectorBenchmark {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(sector), " ", ""))
	if b, ok := sectorBenchmarks[key]; ok {
		return b
	}
	return defaultBenchmark
}

// Adjust returns the adjusted score and the applied adjustment percentage,
// clamped to ±15%. The correction is proportional to how far the record
// sits from the sector's norms.
func (a *SectorAdjuster) Adjust(sector string, rec domain.FundamentalRecord, penalizedScore float64) (float64, float64) {
	b := a.Benchmark(sector)
	pct := 0.0

	if roe, ok := rec.Metric(domain.MetricROE); ok && b.ROEThreshold > 0 {
		if roe > b.ROEThreshold {
			pct += math.Min((roe-b.ROEThreshold)/b.ROEThreshold*0.10, maxSectorAdjustment)
		} else if roe < 0.7*b.ROEThreshold {
			pct -= math.Min((0.7*b.ROEThreshold-roe)/b.ROEThreshold*0.10, maxSectorAdjustment)
		}
	}

	if fcf, ok := rec.Metric(domain.MetricFCF); ok && fcf > 0 {
		pct += (b.FCFMultiplier - 1) * 0.05
	}

	if de, ok := rec.Metric(domain.MetricDebtEquity); ok && b.DebtNorm > 0 {
		if de > 1.5*b.DebtNorm {
			pct -= 0.05
		}
	}

	if opm, ok := rec.Metric(domain.MetricOPM); ok && b.OPMNorm > 0 {
		if opm > 1.2*b.OPMNorm {
			pct += 0.05
		} else if opm < 0.6*b.OPMNorm {
			pct -= 0.05
		}
	}

	// Sectors with structurally different norms (e.g. leveraged banking
	// balance sheets) have their downside dampened.
	if pct < 0 {
		pct *= b.PenaltyFactor
	}

	pct = math.Max(-maxSectorAdjustment, math.Min(maxSectorAdjustment, pct))
	return penalizedScore * (1 + pct), pct
}
