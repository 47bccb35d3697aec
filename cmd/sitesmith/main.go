package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitesmith/cmd/sitesmith/commands"
	derrors "git.home.luguber.info/inful/sitesmith/internal/errors"
	"git.home.luguber.info/inful/sitesmith/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("sitesmith"),
		kong.Description("Generate a static site from structured content and a theme."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if err := parser.Run(&commands.Global{Logger: slog.Default()}, cli); err != nil {
		adapter := derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
		os.Exit(adapter.HandleError(err))
	}
}
