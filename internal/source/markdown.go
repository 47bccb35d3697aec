package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitesmith/internal/content"
	"git.home.luguber.info/inful/sitesmith/internal/frontmatter"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/markdown"
)

// Fields added to records read from Markdown files.
const (
	FieldContent = "content"
	FieldSummary = "summary"
	FieldSource  = "source_path"
	FieldDraft   = "draft"
)

// MarkdownSource reads every .md file below a directory, in lexical path
// order. Front matter fields become record fields; the body is rendered to
// HTML under "content".
type MarkdownSource struct {
	name   string
	dir    string
	logger *slog.Logger
}

// NewMarkdownSource returns a source over dir.
func NewMarkdownSource(name, dir string, logger *slog.Logger) *MarkdownSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarkdownSource{name: name, dir: dir, logger: logger}
}

func (s *MarkdownSource) Name() string { return s.name }

func (s *MarkdownSource) Fetch(ctx context.Context) ([]content.Record, error) {
	var out []content.Record
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != s.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}
		rec, err := s.readFile(p)
		if err != nil {
			return err
		}
		if content.Truthy(rec[FieldDraft]) {
			s.logger.Debug("Skipping draft", logfields.Source(s.name), logfields.Path(p))
			return nil
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read markdown directory %s: %w", s.dir, err)
	}
	return out, nil
}

func (s *MarkdownSource) readFile(p string) (content.Record, error) {
	// #nosec G304 -- p comes from walking the configured content directory.
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	res, err := markdown.Render(doc.Body, markdown.Options{Unsafe: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	rel, err := filepath.Rel(s.dir, p)
	if err != nil {
		rel = filepath.Base(p)
	}
	rel = filepath.ToSlash(rel)

	rec := content.Record(normalize(doc.Fields).(map[string]any))
	rec[FieldContent] = res.HTML
	rec[FieldSource] = rel
	if _, ok := rec[FieldSummary]; !ok && res.Summary != "" {
		rec[FieldSummary] = res.Summary
	}
	if rec.Title() == "" {
		rec[content.FieldTitle] = fallbackTitle(res.Title, rel)
	}
	return rec, nil
}

// fallbackTitle prefers the first heading, then a title-cased file name.
func fallbackTitle(heading, rel string) string {
	if heading != "" {
		return heading
	}
	base := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(base)
}
