package site

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitesmith/internal/content"
	derrors "git.home.luguber.info/inful/sitesmith/internal/errors"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/source"
)

type fetchResult struct {
	records []content.Record
	err     error
}

// fetch runs every source concurrently and concatenates their records in
// source order once all have finished. Elements a source dropped are
// reported per item and never fail the source.
func (r *Run) fetch(ctx context.Context, report *Report) ([]content.Record, error) {
	results := make([]fetchResult, len(r.sources))
	var wg sync.WaitGroup
	wg.Add(len(r.sources))
	for i, src := range r.sources {
		go func() {
			defer wg.Done()
			start := time.Now()
			recs, err := src.Fetch(ctx)
			_, partial := source.Skipped(err)
			r.recorder.ObserveSourceFetch(src.Name(), time.Since(start), len(recs), err == nil || partial)
			results[i] = fetchResult{records: recs, err: err}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, derrors.BuildFailed(StageFetch, err)
	}

	var out []content.Record
	for i, res := range results {
		name := r.sources[i].Name()
		if skipped, ok := source.Skipped(res.err); ok {
			for _, it := range skipped {
				r.logger.Warn("Skipping invalid item", logfields.Source(name), logfields.Item(it.Index), slog.String("reason", it.Reason))
				report.SkippedItems = append(report.SkippedItems, ItemFailure{
					Source: name,
					Index:  it.Index,
					Err:    derrors.ItemSkipped(name, it.Index, it.Reason),
				})
			}
			res.err = nil
		}
		if res.err != nil {
			if !r.cfg.Build.ContinueOnError {
				return nil, derrors.SourceFailed(name, res.err)
			}
			r.logger.Warn("Skipping failed source", logfields.Source(name), logfields.Error(res.err))
			report.SkippedSources = append(report.SkippedSources, SourceFailure{
				Source: name,
				Err:    derrors.SourceSkipped(name, res.err),
			})
			continue
		}
		r.logger.Debug("Fetched source", logfields.Source(name), logfields.Count(len(res.records)))
		out = append(out, res.records...)
	}
	report.Items = len(out)
	return out, nil
}
