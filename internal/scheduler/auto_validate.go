package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockpulse/ranker/internal/modules/backtest"
)

// AutoValidateJob validates every snapshot that has aged past the horizon.
type AutoValidateJob struct {
	validator     *backtest.Validator
	horizonMonths int
	topN          int
	timeout       time.Duration
	log           zerolog.Logger
}

// NewAutoValidateJob creates the auto-validation job.
func NewAutoValidateJob(validator *backtest.Validator, horizonMonths, topN int, log zerolog.Logger) *AutoValidateJob {
	return &AutoValidateJob{
		validator:     validator,
		horizonMonths: horizonMonths,
		topN:          topN,
		timeout:       30 * time.Minute,
		log:           log.With().Str("job", "auto_validate").Logger(),
	}
}

// Name returns the job name
func (j *AutoValidateJob) Name() string {
	return "auto_validate"
}

// Run validates all eligible snapshots. Zero eligible snapshots is a
// normal outcome.
func (j *AutoValidateJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	results, err := j.validator.ValidateAllEligible(ctx, j.horizonMonths, j.topN)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		j.log.Info().Msg("No eligible snapshots to validate")
		return nil
	}

	for _, result := range results {
		j.log.Info().
			Str("snapshot_id", result.SnapshotID).
			Str("status", string(result.Status)).
			Int("fetched", result.FetchedCount).
			Int("total", result.TotalCount).
			Float64("alpha", result.Alpha).
			Msg("Snapshot validated")
	}
	return nil
}
