// Package source fetches content records from files, Markdown
// directories, HTTP endpoints and git repositories.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	"git.home.luguber.info/inful/sitesmith/internal/content"
	"git.home.luguber.info/inful/sitesmith/internal/retry"
)

// Source yields an ordered list of records. Fetch may block on I/O and must
// honour ctx. A Fetch that drops single elements returns the kept records
// with an *ItemsSkippedError.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]content.Record, error)
}

// Format is the encoding of a structured data document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor guesses the document format from a file name or URL path.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// itemsKey wraps records in mapping-shaped documents.
const itemsKey = "items"

// Decode parses a document holding either a top-level sequence of mappings
// or a mapping with an "items" sequence. Elements that are not mappings are
// dropped and reported through an *ItemsSkippedError returned with the
// remaining records.
func Decode(data []byte, format Format) ([]content.Record, error) {
	var doc any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	if doc == nil {
		return nil, nil
	}

	if m, ok := content.Mapping(doc); ok {
		inner, has := m[itemsKey]
		if !has {
			return nil, fmt.Errorf("decode %s: mapping document has no %q field", format, itemsKey)
		}
		doc = inner
	}
	seq, ok := content.Sequence(doc)
	if !ok {
		return nil, fmt.Errorf("decode %s: expected a sequence of items", format)
	}
	out := make([]content.Record, 0, len(seq))
	var skipped []SkippedItem
	for i, el := range seq {
		m, ok := content.Mapping(el)
		if !ok {
			skipped = append(skipped, SkippedItem{Index: i, Reason: fmt.Sprintf("%s item is not a mapping", format)})
			continue
		}
		out = append(out, content.Record(normalize(m).(map[string]any)))
	}
	if len(skipped) > 0 {
		return out, &ItemsSkippedError{Items: skipped}
	}
	return out, nil
}

// normalize converts yaml's map[any]any nodes to map[string]any so lookups
// see one mapping shape.
func normalize(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, val := range vv {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		m, _ := content.Mapping(vv)
		return normalize(m)
	case []any:
		out := make([]any, len(vv))
		for i, el := range vv {
			out[i] = normalize(el)
		}
		return out
	}
	return v
}

// Options are shared by all adapters built by New.
type Options struct {
	Logger   *slog.Logger
	CacheDir string
	// Retry applies to remote sources; the zero value tries once.
	Retry retry.Policy
}

// New builds the adapter for one configured source.
func New(cfg config.SourceConfig, opts Options) (Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var timeout time.Duration
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("source %s: invalid timeout: %w", cfg.Name, err)
		}
		timeout = d
	}

	switch cfg.Type {
	case config.SourceFile:
		return NewFileSource(cfg.Name, cfg.Path), nil
	case config.SourceMarkdown:
		return NewMarkdownSource(cfg.Name, cfg.Path, logger), nil
	case config.SourceHTTP:
		return withRetry(NewHTTPSource(cfg.Name, cfg.URL, cfg.Token, NewHTTPClient(timeout)), opts.Retry, logger), nil
	case config.SourceGit:
		return withRetry(&GitSource{
			name:    cfg.Name,
			url:     cfg.URL,
			branch:  cfg.Branch,
			token:   cfg.Token,
			subPath: cfg.Path,
			depth:   1,
			workDir: opts.CacheDir,
			logger:  logger,
		}, opts.Retry, logger), nil
	}
	return nil, fmt.Errorf("source %s: unsupported type %q", cfg.Name, cfg.Type)
}
