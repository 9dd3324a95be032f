package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockpulse/ranker/internal/domain"
)

func fptr(v float64) *float64 {
	return &v
}

func TestNormalizeBounds(t *testing.T) {
	n := NewNormalizer()

	// Every output stays in [0,100] even for extreme inputs
	extremes := []float64{-1e9, -500, -0.01, 0, 14.99, 100, 5000, 1e9}
	for _, key := range domain.AllMetricKeys() {
		for _, v := range extremes {
			got := n.Normalize(key, fptr(v))
			assert.GreaterOrEqual(t, got, 0.0, "metric %s value %v", key, v)
			assert.LessOrEqual(t, got, 100.0, "metric %s value %v", key, v)
		}
	}
}

func TestNormalizeLinearScaling(t *testing.T) {
	n := NewNormalizer()

	// ROE scales 0-30
	assert.Equal(t, 0.0, n.Normalize(domain.MetricROE, fptr(0)))
	assert.Equal(t, 50.0, n.Normalize(domain.MetricROE, fptr(15)))
	assert.Equal(t, 100.0, n.Normalize(domain.MetricROE, fptr(30)))
	assert.Equal(t, 100.0, n.Normalize(domain.MetricROE, fptr(45)))

	// Lower-is-better metrics invert
	assert.Equal(t, 100.0, n.Normalize(domain.MetricPERatio, fptr(5)))
	assert.Equal(t, 0.0, n.Normalize(domain.MetricPERatio, fptr(60)))
	assert.Equal(t, 100.0, n.Normalize(domain.MetricDebtEquity, fptr(0)))
	assert.Equal(t, 0.0, n.Normalize(domain.MetricDebtEquity, fptr(2)))
}

func TestNormalizeMissingValueFallback(t *testing.T) {
	n := NewNormalizer()
	assert.Equal(t, neutralScore, n.Normalize(domain.MetricROE, nil))
	assert.Equal(t, neutralScore, n.Normalize(domain.MetricFCF, nil))
}

func TestNormalizeDeterministic(t *testing.T) {
	n := NewNormalizer()
	first := n.Normalize(domain.MetricFCF, fptr(1411))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, n.Normalize(domain.MetricFCF, fptr(1411)))
	}
}
