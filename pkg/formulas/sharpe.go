package formulas

// CohortSharpe calculates a simple cross-sectional Sharpe ratio for a cohort
// of realized returns: mean divided by population standard deviation.
//
// Returns nil when the ratio is undefined: fewer than 2 samples, or zero
// dispersion. Callers report nil as "not computable", never as an error.
func CohortSharpe(returns []float64) *float64 {
	if len(returns) < 2 {
		return nil
	}

	stdDev := PopStdDev(returns)
	if stdDev == 0 {
		return nil
	}

	sharpe := Mean(returns) / stdDev
	return &sharpe
}
