package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/metrics"
	"git.home.luguber.info/inful/sitesmith/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Output  string `short:"o" help:"Output directory (overrides output.directory)"`
	Temp    bool   `help:"Write into a temporary directory removed on exit"`
	Port    int    `short:"p" help:"Port to listen on (overrides serve.port)"`
	Refresh string `help:"Rebuild on this interval, e.g. 10m (overrides serve.refresh)"`
	NoWatch bool   `name:"no-watch" help:"Do not rebuild on file changes"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	logger := g.logger()
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}
	if s.Refresh != "" {
		cfg.Serve.Refresh = s.Refresh
	}

	tempOut := ""
	if s.Output != "" {
		cfg.Output.Directory = s.Output
	}
	if s.Temp {
		tmp, err := os.MkdirTemp("", "sitesmith-serve-*")
		if err != nil {
			return fmt.Errorf("create temp output: %w", err)
		}
		cfg.Output.Directory = tmp
		tempOut = tmp
	}
	cfg.Output.Clean = true

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	srv := &preview.Server{Dir: cfg.Output.Directory, Status: &preview.Status{}, Logger: logger}
	if cfg.Serve.Metrics {
		reg := prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewPrometheusRecorder(reg)
		srv.Metrics = metrics.HTTPHandler(reg)
	}

	rebuild := func(ctx context.Context) error {
		report, err := Generate(ctx, cfg, GenerateOptions{Logger: logger, Recorder: recorder})
		if err != nil {
			return err
		}
		return ReportError(report)
	}

	// Initial build; failures are served through /healthz until a rebuild succeeds.
	if err := rebuild(ctx); err != nil {
		logger.Error("Initial build failed", logfields.Error(err))
		srv.Status.SetError(err)
	} else {
		srv.Status.SetSuccess()
	}

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Serve.Port)); err != nil {
		return err
	}

	rebuilder := preview.NewRebuilder(rebuild, config.Duration(cfg.Serve.Debounce), srv.Status, logger)
	go rebuilder.Run(ctx)

	if !s.NoWatch {
		w, err := preview.NewWatcher(watchRoots(cfg), []string{cfg.Output.Directory}, rebuilder.Trigger, logger)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
		go w.Run(ctx)
	}

	if interval := config.Duration(cfg.Serve.Refresh); interval > 0 {
		sched, err := preview.NewScheduler(logger)
		if err != nil {
			return err
		}
		if _, err := sched.Every("refresh", interval, rebuilder.Trigger); err != nil {
			return err
		}
		sched.Start()
		defer func() { _ = sched.Stop() }()
	}

	<-ctx.Done()
	logger.Info("Shutting down preview server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	if tempOut != "" {
		if err := os.RemoveAll(tempOut); err != nil {
			logger.Warn("Failed to remove temp output", logfields.Path(tempOut), logfields.Error(err))
		}
	}
	return nil
}

// watchRoots lists the local directories whose changes trigger a rebuild:
// the theme plus the directories of file and markdown sources.
func watchRoots(cfg *config.Config) []string {
	roots := []string{cfg.Theme.Dir}
	for _, sc := range cfg.Sources {
		switch sc.Type {
		case config.SourceMarkdown:
			roots = append(roots, sc.Path)
		case config.SourceFile:
			roots = append(roots, filepath.Dir(sc.Path))
		}
	}
	return roots
}
