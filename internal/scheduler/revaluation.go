package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayside/portfolio-valuer/internal/services"
)

// RevaluationJob recomputes the valuation history for the configured account.
// Scheduled nightly after market close so each new trading day gets a cached
// value without waiting for the first API request.
type RevaluationJob struct {
	portfolio *services.PortfolioService
	accountID string
	timeout   time.Duration
	log       zerolog.Logger
}

// NewRevaluationJob creates a new revaluation job
func NewRevaluationJob(portfolio *services.PortfolioService, accountID string, log zerolog.Logger) *RevaluationJob {
	return &RevaluationJob{
		portfolio: portfolio,
		accountID: accountID,
		timeout:   10 * time.Minute,
		log:       log.With().Str("job", "revaluation").Logger(),
	}
}

// Name returns the job name
func (j *RevaluationJob) Name() string {
	return "revaluation"
}

// Run executes the revaluation
func (j *RevaluationJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	history, err := j.portfolio.ValueHistory(ctx, j.accountID)
	if err != nil {
		return fmt.Errorf("failed to revalue account %s: %w", j.accountID, err)
	}

	j.log.Info().
		Str("account_id", j.accountID).
		Int("dates", len(history)).
		Dur("duration", time.Since(start)).
		Msg("Revaluation completed")

	return nil
}
