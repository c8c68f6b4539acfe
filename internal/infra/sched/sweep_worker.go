package sched

import (
	"context"
	"time"

	"paperlearn/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// SweepWorker periodically deletes rate-limit windows older than the
// retention horizon. Counters deny purely on their own window row, so
// the sweep only reclaims space and never affects correctness.
type SweepWorker struct {
	interval  time.Duration
	retention time.Duration
	rates     repository.RateLimitRepository
	log       *zerolog.Logger
}

func NewSweepWorker(interval, retention time.Duration, rates repository.RateLimitRepository, logger *zerolog.Logger) *SweepWorker {
	sweepLog := logger.With().Str("component", "SweepWorker").Logger()
	return &SweepWorker{
		interval:  interval,
		retention: retention,
		rates:     rates,
		log:       &sweepLog,
	}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting rate-limit sweep worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping rate-limit sweep worker")
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-w.retention)
			n, err := w.rates.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				w.log.Error().Err(err).Msg("rate-limit sweep error")
			}
			if n > 0 {
				w.log.Info().Int64("count", n).Msg("stale rate-limit windows removed")
			}
		}
	}
}
