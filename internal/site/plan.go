package site

import (
	"git.home.luguber.info/inful/sitesmith/internal/content"
	derrors "git.home.luguber.info/inful/sitesmith/internal/errors"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/paginate"
	"git.home.luguber.info/inful/sitesmith/internal/route"
	"git.home.luguber.info/inful/sitesmith/internal/slug"
	"git.home.luguber.info/inful/sitesmith/internal/taxonomy"
	"git.home.luguber.info/inful/sitesmith/internal/theme"
)

// Context keys shared by every page.
const (
	KeySite    = "site"
	KeyItems   = "items"
	KeyTerms   = "terms"
	KeyPager   = "pager"
	KeyContent = "content"
	KeyPage    = "page"
)

// page is one planned output page.
type page struct {
	route    route.Route
	path     string
	url      string
	title    string
	template string
	ctx      map[string]any
	// pagination is rendered into the pager fragment when set.
	pagination map[string]any
	// tax is set for pages planned by the taxonomy builder.
	tax *taxonomy.Page
}

// plan is the frozen result of the single-threaded stages.
type plan struct {
	items   []content.Record
	taxes   []*taxonomy.Taxonomy
	listing []paginate.Page
	builder *taxonomy.Builder
	pages   []page
}

// assign claims item slugs in encounter order, attaches slug and url, and
// indexes taxonomies over the assigned records. Slugs that would land on a
// listing page's output path get a suffix instead.
func (r *Run) assign(records []content.Record) *plan {
	reg := slug.NewRegistry()
	reg.Reserve("index")
	for _, name := range r.cfg.Taxonomy.Names {
		reg.Reserve(slug.Normalize(name))
	}
	itemDir := r.cfg.ItemSegments()
	if listing := r.cfg.ListingSegments(); len(itemDir) == 0 && len(listing) > 0 {
		reg.Reserve(listing[0])
	}
	itemRoute := func(s string) route.Route {
		return route.Route{Kind: route.KindSingle, Segments: append(append([]string{}, itemDir...), s), Page: 1}
	}
	listing := route.Route{Kind: route.KindList, Segments: r.cfg.ListingSegments()}
	reg.Reject(func(candidate string) bool {
		p := r.resolver.Path(itemRoute(candidate))
		if r.cfg.Pagination.ItemsPerPage > 0 {
			return r.resolver.IsPagePath(listing, p)
		}
		return p == r.resolver.Path(listing)
	})

	items := make([]content.Record, len(records))
	for i, rec := range records {
		s := slug.Assign(rec.Label(), reg)
		rt := itemRoute(s)
		items[i] = rec.With(map[string]any{
			content.FieldSlug: s,
			content.FieldURL:  r.resolver.URL(rt),
		})
		r.logger.Debug("Assigned slug", logfields.Item(i), logfields.Slug(s))
	}

	taxes := taxonomy.Index(items, r.cfg.Taxonomy.Names, taxonomy.Options{
		Duplicates: r.cfg.DuplicatePolicy(),
		Logger:     r.logger,
	})
	return &plan{items: items, taxes: taxes}
}

// planPages lays out single, listing and taxonomy pages. A page whose path
// was already claimed is recorded as a failure and dropped.
func (r *Run) planPages(p *plan, report *Report) {
	siteCtx := r.siteContext()
	claimed := make(map[string]route.Route)
	add := func(pg page) {
		if prev, taken := claimed[pg.path]; taken {
			r.logger.Warn("Output path collision", logfields.Path(pg.path), logfields.Page(pg.route.Page))
			report.addFailure(PageFailure{
				Path:  pg.path,
				Route: pg.route,
				Err:   derrors.WriteFailed(pg.path, ErrPathCollision).WithContext("claimed_by", prev.String()),
			})
			return
		}
		claimed[pg.path] = pg.route
		p.pages = append(p.pages, pg)
	}

	itemDir := r.cfg.ItemSegments()
	for _, item := range p.items {
		rt := route.Route{
			Kind:     route.KindSingle,
			Segments: append(append([]string{}, itemDir...), content.Text(item[content.FieldSlug])),
			Page:     1,
		}
		add(page{
			route:    rt,
			path:     r.resolver.Path(rt),
			url:      r.resolver.URL(rt),
			title:    item.Title(),
			template: theme.Single,
			ctx: item.With(map[string]any{
				KeySite:  siteCtx,
				KeyTerms: r.termLinks(p.taxes, item),
			}),
		})
	}

	listItems := make([]any, len(p.items))
	for i, it := range p.items {
		listItems[i] = it
	}
	base := route.Route{Kind: route.KindList, Segments: r.cfg.ListingSegments()}
	p.listing = paginate.Plan(listItems, r.cfg.Pagination.ItemsPerPage, base, r.resolver,
		paginate.Options{EmitEmpty: r.cfg.Pagination.EmitEmpty})
	if len(p.listing) == 0 {
		r.logger.Info("No items, skipping listing pages")
	}
	for i, lp := range p.listing {
		pctx := paginate.Context(p.listing, i)
		add(page{
			route:    lp.Route,
			path:     lp.Path,
			url:      lp.URL,
			title:    r.cfg.Site.Title,
			template: theme.List,
			ctx: map[string]any{
				KeySite:                siteCtx,
				KeyItems:               pctx[paginate.KeyItems],
				taxonomy.KeyPagination: pctx,
			},
			pagination: pctx,
		})
	}

	p.builder = &taxonomy.Builder{
		Resolver:  r.resolver,
		PerPage:   r.cfg.Pagination.ItemsPerPage,
		Paginate:  paginate.Options{EmitEmpty: r.cfg.Pagination.EmitEmpty},
		Templates: r.theme,
		Logger:    r.logger,
	}
	for _, tp := range p.builder.Pages(p.taxes) {
		pg := page{
			route:    tp.Route,
			path:     tp.Path,
			url:      tp.URL,
			template: tp.Template,
			tax:      &tp,
		}
		if pctx, ok := tp.Context[taxonomy.KeyPagination].(map[string]any); ok {
			pg.pagination = pctx
		}
		if term, ok := tp.Context[taxonomy.KeyTerm].(map[string]any); ok {
			pg.title = content.Text(term["name"])
		} else if tx, ok := tp.Context[taxonomy.KeyTaxonomy].(map[string]any); ok {
			pg.title = content.Text(tx["name"])
		}
		add(pg)
	}
	report.Pages = len(p.pages) + len(report.Failures)
}

// termLinks lists, per taxonomy, the terms an item references.
func (r *Run) termLinks(taxes []*taxonomy.Taxonomy, item content.Record) map[string]any {
	out := make(map[string]any, len(taxes))
	for _, tx := range taxes {
		var links []any
		for _, name := range tx.Names(item) {
			t, ok := tx.TermFor(name)
			if !ok {
				continue
			}
			rt := route.Route{Kind: route.KindTerm, Segments: []string{tx.Slug, t.Slug}, Page: 1}
			links = append(links, map[string]any{
				"name": t.Name,
				"slug": t.Slug,
				"url":  r.resolver.URL(rt),
			})
		}
		out[tx.Name] = links
	}
	return out
}

// siteContext is the site block exposed to every template.
func (r *Run) siteContext() map[string]any {
	s := r.cfg.Site
	params := make(map[string]any, len(s.Params))
	for k, v := range s.Params {
		params[k] = v
	}
	return map[string]any{
		"title":       s.Title,
		"description": s.Description,
		"author":      s.Author,
		"base_url":    s.BaseURL,
		"params":      params,
		"url":         r.resolver.URL(route.Route{Kind: route.KindList, Segments: r.cfg.ListingSegments()}),
	}
}
