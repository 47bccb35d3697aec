package source

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitesmith/internal/content"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/retry"
)

// Retrying re-runs a source's fetch under a backoff policy.
type Retrying struct {
	Source
	policy retry.Policy
	logger *slog.Logger
}

func withRetry(src Source, p retry.Policy, logger *slog.Logger) Source {
	if p.MaxRetries <= 0 {
		return src
	}
	return &Retrying{Source: src, policy: p, logger: logger}
}

func (r *Retrying) Fetch(ctx context.Context) ([]content.Record, error) {
	var recs []content.Record
	var partial error
	err := retry.Do(ctx, r.policy, func(ctx context.Context) error {
		var err error
		recs, err = r.Source.Fetch(ctx)
		if _, ok := Skipped(err); ok {
			partial, err = err, nil
		}
		return err
	}, func(attempt int, delay time.Duration, err error) {
		r.logger.Warn("Source fetch failed, retrying",
			logfields.Source(r.Name()),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			logfields.Error(err))
	})
	if err != nil {
		return nil, err
	}
	return recs, partial
}
