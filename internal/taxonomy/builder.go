package taxonomy

import (
	"log/slog"

	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/paginate"
	"git.home.luguber.info/inful/sitesmith/internal/route"
	"git.home.luguber.info/inful/sitesmith/internal/templates"
)

// Optional theme templates driving taxonomy output.
const (
	TemplateTaxonomy = "taxonomy"
	TemplateTerms    = "terms"
)

// Context keys of taxonomy pages.
const (
	KeyTaxonomy   = "taxonomy"
	KeyTerm       = "term"
	KeyTerms      = "terms"
	KeyItems      = "items"
	KeyPagination = "pagination"
)

// TemplateSet supplies template text by name.
type TemplateSet interface {
	Template(name string) (string, bool)
}

// Page is a planned taxonomy page awaiting rendering.
type Page struct {
	Template string
	Route    route.Route
	Path     string
	URL      string
	Context  map[string]any
}

// Builder plans term pages and terms-index pages.
type Builder struct {
	Resolver  *route.Resolver
	PerPage   int
	Paginate  paginate.Options
	Templates TemplateSet
	Logger    *slog.Logger
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

// Enabled reports whether the theme carries both taxonomy templates.
func (b *Builder) Enabled() bool {
	if b.Templates == nil {
		return false
	}
	_, hasTax := b.Templates.Template(TemplateTaxonomy)
	_, hasTerms := b.Templates.Template(TemplateTerms)
	return hasTax && hasTerms
}

// Pages plans, for every taxonomy, the paginated pages of each term under
// route [taxonomy, term] and one terms page under [taxonomy]. Taxonomies
// without terms produce nothing. It returns nil when the theme lacks a
// taxonomy template.
func (b *Builder) Pages(taxes []*Taxonomy) []Page {
	if len(taxes) == 0 {
		return nil
	}
	if !b.Enabled() {
		b.logger().Info("Theme has no taxonomy templates, skipping taxonomy pages",
			logfields.Template(TemplateTaxonomy+","+TemplateTerms))
		return nil
	}
	var out []Page
	for _, tx := range taxes {
		if len(tx.Terms) == 0 {
			b.logger().Debug("Taxonomy has no terms", logfields.Taxonomy(tx.Name))
			continue
		}
		out = append(out, b.taxonomyPages(tx)...)
	}
	return out
}

func (b *Builder) taxonomyPages(tx *Taxonomy) []Page {
	res := b.Resolver
	indexRoute := route.Route{Kind: route.KindTermList, Segments: []string{tx.Slug}, Page: 1}
	taxCtx := map[string]any{
		"name": tx.Name,
		"slug": tx.Slug,
		"url":  res.URL(indexRoute),
	}

	var out []Page
	summaries := make([]any, 0, len(tx.Terms))
	for _, t := range tx.Terms {
		base := route.Route{Kind: route.KindTerm, Segments: []string{tx.Slug, t.Slug}}
		termCtx := map[string]any{
			"name":  t.Name,
			"slug":  t.Slug,
			"url":   res.URL(base.WithPage(1)),
			"count": t.Count(),
		}
		summaries = append(summaries, termCtx)

		items := make([]any, len(t.Items))
		for i, it := range t.Items {
			items[i] = it
		}
		pages := paginate.Plan(items, b.PerPage, base, res, b.Paginate)
		for i, p := range pages {
			pctx := paginate.Context(pages, i)
			out = append(out, Page{
				Template: TemplateTaxonomy,
				Route:    p.Route,
				Path:     p.Path,
				URL:      p.URL,
				Context: map[string]any{
					KeyTaxonomy:   taxCtx,
					KeyTerm:       termCtx,
					KeyItems:      pctx[paginate.KeyItems],
					KeyPagination: pctx,
				},
			})
		}
		b.logger().Debug("Planned term pages", logfields.Taxonomy(tx.Name), logfields.Term(t.Slug), logfields.Count(len(pages)))
	}

	out = append(out, Page{
		Template: TemplateTerms,
		Route:    indexRoute,
		Path:     res.Path(indexRoute),
		URL:      res.URL(indexRoute),
		Context: map[string]any{
			KeyTaxonomy: taxCtx,
			KeyTerms:    summaries,
			KeyItems:    summaries,
		},
	})
	return out
}

// Render renders p with its template from the builder's template set. The
// context is extended with extra fields without overriding page keys.
func (b *Builder) Render(e *templates.Engine, p Page, extra map[string]any) string {
	text, ok := b.Templates.Template(p.Template)
	if !ok {
		return ""
	}
	ctx := make(map[string]any, len(p.Context)+len(extra))
	for k, v := range extra {
		ctx[k] = v
	}
	for k, v := range p.Context {
		ctx[k] = v
	}
	return e.Render(p.Template, text, ctx)
}
