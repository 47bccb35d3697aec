// Package site sequences one generation run: fetch records, assign slugs,
// index taxonomies, plan pages, then render and write them.
//
// Everything that mutates shared state (slug registries, taxonomy terms)
// runs single-threaded before rendering starts. Rendering and writing then
// fan out over a bounded worker pool with no shared mutable state besides
// the report.
package site

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	"git.home.luguber.info/inful/sitesmith/internal/content"
	derrors "git.home.luguber.info/inful/sitesmith/internal/errors"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/metrics"
	"git.home.luguber.info/inful/sitesmith/internal/route"
	"git.home.luguber.info/inful/sitesmith/internal/source"
	"git.home.luguber.info/inful/sitesmith/internal/storage"
	"git.home.luguber.info/inful/sitesmith/internal/templates"
	"git.home.luguber.info/inful/sitesmith/internal/theme"
)

// Stage names used in logs and metrics.
const (
	StageValidate = "validate"
	StageFetch    = "fetch"
	StageAssign   = "assign"
	StagePlan     = "plan"
	StageRender   = "render"
	StageFeeds    = "feeds"
	StageStatic   = "static"
)

// Options carries optional collaborators of a run.
type Options struct {
	Logger   *slog.Logger
	Recorder metrics.Recorder
	// Now stamps feeds; time.Now when nil.
	Now func() time.Time
}

// Run is one generation run. A Run is used once.
type Run struct {
	ID string

	cfg      *config.Config
	theme    theme.Theme
	sources  []source.Source
	writer   storage.Writer
	resolver *route.Resolver
	engine   *templates.Engine
	logger   *slog.Logger
	recorder metrics.Recorder
	now      func() time.Time
}

// NewRun prepares a run with its own ID, slug registries and template cache.
func NewRun(cfg *config.Config, th theme.Theme, sources []source.Source, w storage.Writer, opts Options) *Run {
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(logfields.RunID(id))
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Run{
		ID:       id,
		cfg:      cfg,
		theme:    th,
		sources:  sources,
		writer:   w,
		resolver: cfg.Resolver(),
		engine:   templates.NewEngine(logger),
		logger:   logger,
		recorder: rec,
		now:      now,
	}
}

// Generate executes the run. Configuration and strict-mode source failures
// abort before any page is written; per-page failures are collected in the
// report while sibling pages continue.
func (r *Run) Generate(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: r.ID}
	defer func() {
		report.Duration = time.Since(start)
		r.recorder.ObserveRunDuration(report.Duration)
	}()

	fail := func(err error) (*Report, error) {
		if ctx.Err() != nil {
			r.recorder.IncRunOutcome(metrics.ResultCanceled)
		} else {
			r.recorder.IncRunOutcome(metrics.ResultFailed)
		}
		return report, err
	}

	if err := r.stage(ctx, StageValidate, func() error { return r.validate() }); err != nil {
		return fail(err)
	}

	var records []content.Record
	if err := r.stage(ctx, StageFetch, func() error {
		var err error
		records, err = r.fetch(ctx, report)
		return err
	}); err != nil {
		return fail(err)
	}

	var p *plan
	if err := r.stage(ctx, StageAssign, func() error {
		p = r.assign(records)
		return nil
	}); err != nil {
		return fail(err)
	}

	if err := r.stage(ctx, StagePlan, func() error {
		r.planPages(p, report)
		return nil
	}); err != nil {
		return fail(err)
	}

	if err := r.stage(ctx, StageRender, func() error {
		r.renderAll(ctx, p, report)
		return nil
	}); err != nil {
		return fail(err)
	}

	if r.cfg.Build.Feeds {
		if err := r.stage(ctx, StageFeeds, func() error {
			r.writeFeeds(ctx, p, report)
			return nil
		}); err != nil {
			return fail(err)
		}
	}

	if err := r.stage(ctx, StageStatic, func() error {
		r.copyStatic(report)
		return nil
	}); err != nil {
		return fail(err)
	}

	outcome := metrics.ResultSuccess
	if report.Failed() {
		outcome = metrics.ResultWarning
	}
	r.recorder.IncRunOutcome(outcome)
	r.logger.Info("Site generated",
		logfields.Count(report.Written),
		slog.Int("pages", report.Pages),
		slog.Int("failures", len(report.Failures)),
		logfields.DurationMS(ms(time.Since(start))))
	return report, nil
}

// stage runs fn after checking for cancellation and records its duration.
func (r *Run) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return derrors.BuildFailed(name, err)
	}
	start := time.Now()
	err := fn()
	d := time.Since(start)
	r.recorder.ObserveStageDuration(name, d)
	if err != nil {
		r.logger.Error("Stage failed", logfields.Stage(name), logfields.Error(err))
		return err
	}
	r.logger.Debug("Stage complete", logfields.Stage(name), logfields.DurationMS(ms(d)))
	return nil
}

func (r *Run) validate() error {
	if err := config.Validate(r.cfg); err != nil {
		return err
	}
	if missing := theme.Missing(r.theme); len(missing) > 0 {
		return derrors.TemplateMissing(missing[0]).WithContext("missing", missing)
	}
	return nil
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
