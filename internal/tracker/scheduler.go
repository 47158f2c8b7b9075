package tracker

import (
	"context"
	"time"

	"github.com/IamRajen/PriceTracker/logger"
)

// RunPeriodically executes tracking passes at a fixed interval until the
// context is cancelled, starting with an immediate pass. Runs never
// overlap within one process; each pass blocks the next tick.
func RunPeriodically(ctx context.Context, t *Tracker, interval time.Duration) {
	log := logger.ForTracker()
	log.Info().Dur("interval", interval).Msg("Scheduler started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := t.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Tracking run failed")
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Scheduler stopping")
			return
		case <-ticker.C:
			if err := t.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Tracking run failed")
			}
		}
	}
}
