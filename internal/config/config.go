package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/sitesmith/internal/errors"
)

// CurrentVersion is the configuration format version written by Init.
const CurrentVersion = "1.0"

// Config is the sitesmith configuration file.
type Config struct {
	Version    string           `yaml:"version"`
	Site       SiteConfig       `yaml:"site"`
	Theme      ThemeConfig      `yaml:"theme"`
	Sources    []SourceConfig   `yaml:"sources"`
	Output     OutputConfig     `yaml:"output"`
	Routing    RoutingConfig    `yaml:"routing"`
	Listing    ListingConfig    `yaml:"listing"`
	Pagination PaginationConfig `yaml:"pagination"`
	Taxonomy   TaxonomyConfig   `yaml:"taxonomy"`
	Build      BuildConfig      `yaml:"build"`
	Serve      ServeConfig      `yaml:"serve"`
}

// SiteConfig holds site-wide values exposed to every template as "site".
type SiteConfig struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description,omitempty"`
	Author      string         `yaml:"author,omitempty"`
	BaseURL     string         `yaml:"base_url,omitempty"`
	Params      map[string]any `yaml:"params,omitempty"`
}

// ThemeConfig points at a theme directory holding <name>.html templates
// and an optional static/ tree.
type ThemeConfig struct {
	Dir string `yaml:"dir"`
}

// SourceConfig configures one content source.
type SourceConfig struct {
	Name string     `yaml:"name"`
	Type SourceType `yaml:"type"`
	// Path is a file (file) or directory (markdown), or a sub-path inside the
	// cloned repository (git).
	Path    string `yaml:"path,omitempty"`
	URL     string `yaml:"url,omitempty"`
	Branch  string `yaml:"branch,omitempty"`
	Token   string `yaml:"token,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// OutputConfig controls where pages are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
}

// RoutingConfig selects the URL layout.
type RoutingConfig struct {
	URLStyle        string `yaml:"url_style"`
	FilenamePattern string `yaml:"filename_pattern"`
	// BasePath prefixes generated links, e.g. "/blog/".
	BasePath string `yaml:"base_path"`
	// ItemsDir nests item pages under one directory segment.
	ItemsDir string `yaml:"items_dir,omitempty"`
}

// ListingConfig places the main item listing.
type ListingConfig struct {
	// Path is a slash-separated route; empty means the site root.
	Path string `yaml:"path,omitempty"`
}

// PaginationConfig controls listing page sizes.
type PaginationConfig struct {
	// ItemsPerPage of 0 disables pagination.
	ItemsPerPage int  `yaml:"items_per_page"`
	EmitEmpty    bool `yaml:"emit_empty"`
}

// TaxonomyConfig names the item attributes grouped into terms.
type TaxonomyConfig struct {
	Names      []string `yaml:"names"`
	Duplicates string   `yaml:"duplicates,omitempty"`
}

// BuildConfig tunes a generation run.
type BuildConfig struct {
	Workers         int  `yaml:"workers"`
	ContinueOnError bool `yaml:"continue_on_error"`
	Feeds           bool `yaml:"feeds"`
	FeedLimit       int  `yaml:"feed_limit,omitempty"`
	// Retry applies to remote (http, git) sources.
	Retry RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig configures backoff for transient source failures.
type RetryConfig struct {
	Backoff    string `yaml:"backoff,omitempty"` // fixed|linear|exponential
	Initial    string `yaml:"initial,omitempty"`
	Max        string `yaml:"max,omitempty"`
	MaxRetries int    `yaml:"max_retries"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Port     int    `yaml:"port"`
	Debounce string `yaml:"debounce,omitempty"`
	// Refresh rebuilds periodically, for remote sources. Empty disables it.
	Refresh string `yaml:"refresh,omitempty"`
	Metrics bool   `yaml:"metrics"`
}

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	if loaded := loadEnvFiles(); len(loaded) > 0 {
		slog.Debug("Loaded environment files", slog.Any("files", loaded))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.ConfigNotFound(path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration bytes, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "failed to unmarshal config")
	}
	if cfg.Version != "" && cfg.Version != CurrentVersion {
		return nil, derrors.ValidationFailed("version", fmt.Sprintf("unsupported configuration version %s (expected %s)", cfg.Version, CurrentVersion))
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	example := Config{
		Version: CurrentVersion,
		Site: SiteConfig{
			Title:       "My Arcade",
			Description: "Games worth a quarter",
			Author:      "Site Owner",
			BaseURL:     "https://example.com",
		},
		Theme: ThemeConfig{Dir: "./theme"},
		Sources: []SourceConfig{
			{Name: "games", Type: SourceFile, Path: "data/games.yaml"},
			{Name: "posts", Type: SourceMarkdown, Path: "content/posts"},
		},
		Output:     OutputConfig{Directory: "./public", Clean: true},
		Routing:    RoutingConfig{URLStyle: "clean", FilenamePattern: "page-{page}", BasePath: "/"},
		Pagination: PaginationConfig{ItemsPerPage: 10},
		Taxonomy:   TaxonomyConfig{Names: []string{"genres", "tags"}, Duplicates: "keep"},
		Build: BuildConfig{
			Workers:   4,
			Feeds:     true,
			FeedLimit: 20,
			Retry:     RetryConfig{Backoff: "linear", Initial: "1s", Max: "30s", MaxRetries: 2},
		},
		Serve:      ServeConfig{Port: 1313, Debounce: "300ms", Metrics: true},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
