package config

import (
	"fmt"
	"strings"
	"time"

	derrors "git.home.luguber.info/inful/sitesmith/internal/errors"
	"git.home.luguber.info/inful/sitesmith/internal/retry"
	"git.home.luguber.info/inful/sitesmith/internal/route"
	"git.home.luguber.info/inful/sitesmith/internal/slug"
	"git.home.luguber.info/inful/sitesmith/internal/taxonomy"
)

// Validate checks cfg and returns the first defect as a fatal error.
func Validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateSources,
		validateRouting,
		validatePagination,
		validateTaxonomy,
		validateDurations,
		validateRetry,
	} {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateSources(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return derrors.ConfigRequired("sources")
	}
	names := make(map[string]bool, len(cfg.Sources))
	for i, s := range cfg.Sources {
		field := fmt.Sprintf("sources[%d]", i)
		if s.Name == "" {
			return derrors.ConfigRequired(field + ".name")
		}
		if names[s.Name] {
			return derrors.ValidationFailed(field+".name", "duplicate source name: "+s.Name)
		}
		names[s.Name] = true

		switch s.Type {
		case SourceFile, SourceMarkdown:
			if s.Path == "" {
				return derrors.ConfigRequired(field + ".path")
			}
		case SourceHTTP, SourceGit:
			if s.URL == "" {
				return derrors.ConfigRequired(field + ".url")
			}
		default:
			return derrors.ValidationFailed(field+".type", fmt.Sprintf("unknown source type %q", s.Type))
		}
	}
	return nil
}

func validateRouting(cfg *Config) error {
	if _, err := route.ParseStyle(cfg.Routing.URLStyle); err != nil {
		return derrors.ValidationFailed("routing.url_style", err.Error())
	}
	if err := route.ValidatePattern(cfg.Routing.FilenamePattern); err != nil {
		return derrors.ValidationFailed("routing.filename_pattern", err.Error())
	}
	if strings.Contains(cfg.Routing.ItemsDir, "..") {
		return derrors.ValidationFailed("routing.items_dir", "must not contain ..")
	}
	if strings.Contains(cfg.Listing.Path, "..") {
		return derrors.ValidationFailed("listing.path", "must not contain ..")
	}
	return nil
}

func validatePagination(cfg *Config) error {
	if cfg.Pagination.ItemsPerPage < 0 {
		return derrors.ValidationFailed("pagination.items_per_page", "must be >= 1, or 0 to disable pagination")
	}
	return nil
}

func validateTaxonomy(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Taxonomy.Names))
	for i, name := range cfg.Taxonomy.Names {
		if strings.TrimSpace(name) == "" {
			return derrors.ValidationFailed(fmt.Sprintf("taxonomy.names[%d]", i), "taxonomy name cannot be empty")
		}
		key := slug.Normalize(name)
		if seen[key] {
			return derrors.ValidationFailed("taxonomy.names", fmt.Sprintf("duplicate taxonomy name: %s (slug %q)", name, key))
		}
		seen[key] = true
	}
	if _, err := taxonomy.ParseDuplicates(cfg.Taxonomy.Duplicates); err != nil {
		return derrors.ValidationFailed("taxonomy.duplicates", err.Error())
	}
	return nil
}

func validateDurations(cfg *Config) error {
	durations := map[string]string{
		"serve.debounce":      cfg.Serve.Debounce,
		"serve.refresh":       cfg.Serve.Refresh,
		"build.retry.initial": cfg.Build.Retry.Initial,
		"build.retry.max":     cfg.Build.Retry.Max,
	}
	for i, s := range cfg.Sources {
		durations[fmt.Sprintf("sources[%d].timeout", i)] = s.Timeout
	}
	for field, v := range durations {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			return derrors.ValidationFailed(field, fmt.Sprintf("invalid duration %q", v))
		}
	}
	return nil
}

func validateRetry(cfg *Config) error {
	if _, err := retry.ParseMode(cfg.Build.Retry.Backoff); err != nil {
		return derrors.ValidationFailed("build.retry.backoff", err.Error())
	}
	if cfg.Build.Retry.MaxRetries < 0 {
		return derrors.ValidationFailed("build.retry.max_retries", "cannot be negative")
	}
	return nil
}

// RetryPolicy returns the backoff policy for remote sources.
func (c *Config) RetryPolicy() retry.Policy {
	r := c.Build.Retry
	mode, _ := retry.ParseMode(r.Backoff)
	return retry.NewPolicy(mode, Duration(r.Initial), Duration(r.Max), r.MaxRetries)
}

// Style returns the configured URL style.
func (c *Config) Style() route.Style {
	s, _ := route.ParseStyle(c.Routing.URLStyle)
	return s
}

// Resolver returns the path resolver for the configured routing.
func (c *Config) Resolver() *route.Resolver {
	return route.NewResolver(c.Style(), c.Routing.FilenamePattern, c.Routing.BasePath)
}

// DuplicatePolicy returns the configured taxonomy duplicate policy.
func (c *Config) DuplicatePolicy() taxonomy.Duplicates {
	d, _ := taxonomy.ParseDuplicates(c.Taxonomy.Duplicates)
	return d
}

// ListingSegments splits listing.path into route segments.
func (c *Config) ListingSegments() []string {
	return splitSegments(c.Listing.Path)
}

// ItemSegments returns the route prefix of item pages.
func (c *Config) ItemSegments() []string {
	return splitSegments(c.Routing.ItemsDir)
}

func splitSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Duration parses a validated duration field; empty yields zero.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
