package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpulse/ranker/internal/domain"
)

func TestBuiltinProfilesValid(t *testing.T) {
	expected := []string{"balanced", "buffett", "dividend", "growth", "lynch", "quality", "value"}
	assert.Equal(t, expected, ProfileNames())

	for name, p := range BuiltinProfiles() {
		sum := 0.0
		for key, w := range p.Weights {
			assert.True(t, key.Valid(), "profile %s key %s", name, key)
			assert.GreaterOrEqual(t, w, 0.0)
			sum += w
		}
		assert.InDelta(t, 1.0, sum, weightSumTolerance, "profile %s", name)
	}
}

func TestNewPhilosophyProfileValidation(t *testing.T) {
	// Valid custom profile
	p, err := NewPhilosophyProfile("custom", map[domain.MetricKey]float64{
		domain.MetricROE: 0.6,
		domain.MetricFCF: 0.4,
	})
	require.NoError(t, err)
	assert.Equal(t, "custom", p.Name)

	// Weights not summing to 1.0
	_, err = NewPhilosophyProfile("bad_sum", map[domain.MetricKey]float64{
		domain.MetricROE: 0.6,
		domain.MetricFCF: 0.5,
	})
	assert.True(t, domain.IsConfigError(err))

	// Unknown metric key
	_, err = NewPhilosophyProfile("bad_key", map[domain.MetricKey]float64{
		domain.MetricKey("momentum"): 1.0,
	})
	assert.True(t, domain.IsConfigError(err))

	// Negative weight
	_, err = NewPhilosophyProfile("negative", map[domain.MetricKey]float64{
		domain.MetricROE: 1.2,
		domain.MetricFCF: -0.2,
	})
	assert.True(t, domain.IsConfigError(err))

	// Empty weights
	_, err = NewPhilosophyProfile("empty", nil)
	assert.True(t, domain.IsConfigError(err))
}

func TestGetProfile(t *testing.T) {
	p, err := GetProfile("buffett")
	require.NoError(t, err)
	assert.Equal(t, "buffett", p.Name)

	_, err = GetProfile("momentum")
	assert.True(t, domain.IsConfigError(err))
}

func TestProfileWeightsAreCopied(t *testing.T) {
	weights := map[domain.MetricKey]float64{
		domain.MetricROE: 0.5,
		domain.MetricFCF: 0.5,
	}
	p, err := NewPhilosophyProfile("copy_check", weights)
	require.NoError(t, err)

	weights[domain.MetricROE] = 0.9
	assert.Equal(t, 0.5, p.Weights[domain.MetricROE])
}
