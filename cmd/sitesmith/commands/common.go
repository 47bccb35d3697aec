package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// Global is shared state handed to every command.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command line.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitesmith.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Generate the site once"`
	Serve ServeCmd `cmd:"" help:"Generate, serve and regenerate on change"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration, theme and content"`
	Slug  SlugCmd  `cmd:"" help:"Print the slugs labels would be assigned"`
}

// AfterApply runs after flag parsing; it sets up logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}
