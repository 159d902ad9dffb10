package score

import (
	"context"
	"log"

	"pyramid-bot/pkg/retrylimit"
)

// Retrying decorates a Store so that transient write failures are retried a
// bounded number of times. The last error is always returned to the caller.
type Retrying struct {
	Store
	cfg retrylimit.Config
	lim *retrylimit.AdaptiveLimiter
}

// WithRetry wraps s. attempts <= 0 uses the retrylimit default.
func WithRetry(s Store, attempts int) *Retrying {
	cfg := retrylimit.DefaultConfig()
	if attempts > 0 {
		cfg.MaxAttempts = attempts
	}
	cfg.Retryable = IsTransient
	cfg.OnRetry = func(attempt int, err error) {
		log.Printf("[WARN] score write attempt %d failed: %v", attempt, err)
	}
	return &Retrying{
		Store: s,
		cfg:   cfg,
		lim:   retrylimit.NewAdaptiveLimiter(200, 10, 500, 10, 0.5),
	}
}

// RecordOutcome retries the wrapped write while it fails transiently.
func (r *Retrying) RecordOutcome(ctx context.Context, user string, outcome Outcome, stolen bool, size int) (Record, error) {
	var rec Record
	err := retrylimit.Do(ctx, r.cfg, r.lim, func() error {
		var err error
		rec, err = r.Store.RecordOutcome(ctx, user, outcome, stolen, size)
		return err
	})
	return rec, err
}
