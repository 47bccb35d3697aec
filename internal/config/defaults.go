package config

import (
	"strings"

	"git.home.luguber.info/inful/sitesmith/internal/route"
)

// Default values applied for omitted fields.
const (
	DefaultTitle     = "Untitled Site"
	DefaultThemeDir  = "./theme"
	DefaultOutputDir = "./public"
	DefaultWorkers   = 4
	DefaultFeedLimit = 20
	DefaultPort      = 1313
	DefaultDebounce  = "300ms"
)

// ApplyDefaults fills omitted fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = DefaultTitle
	}
	if cfg.Theme.Dir == "" {
		cfg.Theme.Dir = DefaultThemeDir
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	if cfg.Routing.URLStyle == "" {
		cfg.Routing.URLStyle = string(route.StyleFlat)
	}
	cfg.Routing.URLStyle = strings.ToLower(strings.TrimSpace(cfg.Routing.URLStyle))
	if cfg.Routing.FilenamePattern == "" {
		cfg.Routing.FilenamePattern = route.DefaultFilenamePattern
	}
	if cfg.Routing.BasePath == "" {
		cfg.Routing.BasePath = "/"
	}
	if cfg.Taxonomy.Duplicates == "" {
		cfg.Taxonomy.Duplicates = "keep"
	}
	if cfg.Build.Workers <= 0 {
		cfg.Build.Workers = DefaultWorkers
	}
	if cfg.Build.FeedLimit <= 0 {
		cfg.Build.FeedLimit = DefaultFeedLimit
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = DefaultPort
	}
	if cfg.Serve.Debounce == "" {
		cfg.Serve.Debounce = DefaultDebounce
	}
	for i := range cfg.Sources {
		s := &cfg.Sources[i]
		if t := NormalizeSourceType(string(s.Type)); t != "" {
			s.Type = t
		}
		if s.Type == SourceGit && s.Branch == "" {
			s.Branch = "main"
		}
	}
}
