package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	derrors "git.home.luguber.info/inful/sitesmith/internal/errors"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/metrics"
	"git.home.luguber.info/inful/sitesmith/internal/site"
	"git.home.luguber.info/inful/sitesmith/internal/source"
	"git.home.luguber.info/inful/sitesmith/internal/storage"
	"git.home.luguber.info/inful/sitesmith/internal/theme"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output   string `short:"o" help:"Output directory (overrides output.directory)"`
	DryRun   bool   `name:"dry-run" help:"Render everything but write nothing"`
	Clean    bool   `help:"Remove the output directory before writing"`
	CacheDir string `name:"cache-dir" help:"Directory for git source clones (defaults to a temporary directory)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Clean {
		cfg.Output.Clean = true
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := Generate(ctx, cfg, GenerateOptions{DryRun: b.DryRun, CacheDir: b.CacheDir, Logger: g.logger()})
	if err != nil {
		return err
	}
	PrintReport(report, b.DryRun)
	return ReportError(report)
}

// GenerateOptions tune one generation.
type GenerateOptions struct {
	DryRun   bool
	CacheDir string
	Logger   *slog.Logger
	Recorder metrics.Recorder
	// Writer replaces the configured output writer when set.
	Writer storage.Writer
}

// Generate loads the theme and sources named by cfg and runs one generation.
func Generate(ctx context.Context, cfg *config.Config, opts GenerateOptions) (*site.Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	th, err := theme.LoadDir(cfg.Theme.Dir)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryTheme, derrors.SeverityFatal, "failed to load theme").
			WithContext("path", cfg.Theme.Dir)
	}

	sources := make([]source.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		src, err := source.New(sc, source.Options{
			Logger:   logger,
			CacheDir: opts.CacheDir,
			Retry:    cfg.RetryPolicy(),
		})
		if err != nil {
			return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "invalid source").
				WithContext("source", sc.Name)
		}
		sources = append(sources, src)
	}

	w, err := outputWriter(cfg, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("Generating site",
		logfields.Path(cfg.Output.Directory),
		slog.Int("sources", len(sources)),
		slog.Bool("dry_run", opts.DryRun))
	return site.NewRun(cfg, th, sources, w, site.Options{Logger: logger, Recorder: opts.Recorder}).Generate(ctx)
}

func outputWriter(cfg *config.Config, opts GenerateOptions) (storage.Writer, error) {
	if opts.Writer != nil {
		return opts.Writer, nil
	}
	if opts.DryRun {
		return storage.NewMemoryWriter(), nil
	}
	fw, err := storage.NewFSWriter(cfg.Output.Directory)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryStorage, derrors.SeverityFatal, "invalid output directory").
			WithContext("path", cfg.Output.Directory)
	}
	if cfg.Output.Clean {
		if err := fw.Clean(); err != nil {
			return nil, derrors.Wrap(err, derrors.CategoryStorage, derrors.SeverityFatal, "failed to clean output directory").
				WithContext("path", fw.Root())
		}
	}
	return fw, nil
}

// PrintReport writes a short human summary to stdout.
func PrintReport(r *site.Report, dryRun bool) {
	verb := "wrote"
	if dryRun {
		verb = "rendered"
	}
	fmt.Fprintf(os.Stdout, "%s %d of %d pages from %d items in %s\n", verb, r.Written, r.Pages, r.Items, r.Duration.Round(time.Millisecond))
	for _, f := range r.Failures {
		fmt.Fprintf(os.Stdout, "  failed: %s: %v\n", f.Path, f.Err)
	}
	for _, s := range r.SkippedSources {
		fmt.Fprintf(os.Stdout, "  skipped source: %s: %v\n", s.Source, s.Err)
	}
	for _, it := range r.SkippedItems {
		fmt.Fprintf(os.Stdout, "  skipped item: %s[%d]: %v\n", it.Source, it.Index, it.Err)
	}
	for _, feed := range r.Feeds {
		fmt.Fprintf(os.Stdout, "  feed: %s\n", feed)
	}
}

// ReportError turns per-page failures into a non-fatal build error so the
// process exits non-zero.
func ReportError(r *site.Report) error {
	if len(r.Failures) == 0 {
		return nil
	}
	return derrors.New(derrors.CategoryBuild, derrors.SeverityError, "some pages could not be written").
		WithContext("failures", len(r.Failures))
}
