package worker

// overdue_cron.go
// Daily scheduler that flips pending receivables past their due date to
// overdue. Runs at 03:00 to avoid the business day.

import (
	"context"
	"time"

	cron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// OverdueSweeper is the slice of the receivable service the scheduler needs.
// Declared here so the worker package never depends on the service package,
// which already depends on this one for receipt dispatch.
type OverdueSweeper interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// StartOverdueScheduler registers the daily overdue sweep and starts the cron.
// The returned cron is stopped by the caller on shutdown.
func StartOverdueScheduler(ctx context.Context, receivables OverdueSweeper) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("0 3 * * *", func() {
		sweepCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		rows, err := receivables.MarkOverdue(sweepCtx)
		if err != nil {
			log.Error().Err(err).Msg("overdue_cron: sweep failed")
			return
		}
		log.Info().Int64("rows", rows).Msg("overdue_cron: receivables marked overdue")
	})
	if err != nil {
		log.Error().Err(err).Msg("overdue_cron: failed to register job")
		return c
	}

	c.Start()
	log.Info().Msg("overdue_cron: scheduler started (daily at 03:00)")
	return c
}
