package site

import (
	"context"
	"errors"
	"path"
	"strings"

	"git.home.luguber.info/inful/sitesmith/internal/content"
	derrors "git.home.luguber.info/inful/sitesmith/internal/errors"
	"git.home.luguber.info/inful/sitesmith/internal/feed"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/route"
	"git.home.luguber.info/inful/sitesmith/internal/taxonomy"
)

// FeedFile is the file name of the main listing feed.
const FeedFile = "feed.xml"

// writeFeeds writes the main feed beside the listing and one feed per term
// at <taxonomy>/<term>.xml.
func (r *Run) writeFeeds(ctx context.Context, p *plan, report *Report) {
	listing := path.Join(append(r.cfg.ListingSegments(), FeedFile)...)
	r.writeFeed(ctx, report, listing, r.cfg.Site.Title, r.absolute(r.resolver.URL(route.Route{Kind: route.KindList, Segments: r.cfg.ListingSegments()})), p.items, p.taxes)

	for _, tx := range p.taxes {
		for _, t := range tx.Terms {
			rt := route.Route{Kind: route.KindTerm, Segments: []string{tx.Slug, t.Slug}, Page: 1}
			title := r.cfg.Site.Title + ": " + t.Name
			r.writeFeed(ctx, report, path.Join(tx.Slug, t.Slug+".xml"), title, r.absolute(r.resolver.URL(rt)), t.Items, p.taxes)
		}
	}
}

func (r *Run) writeFeed(ctx context.Context, report *Report, relPath, title, link string, items []content.Record, taxes []*taxonomy.Taxonomy) {
	if len(items) == 0 {
		return
	}
	limit := r.cfg.Build.FeedLimit
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	now := r.now()
	entries := make([]feed.Entry, 0, len(items))
	for _, it := range items {
		var categories []string
		for _, tx := range taxes {
			categories = append(categories, tx.Names(it)...)
		}
		entries = append(entries, feed.EntryFor(it, r.absolute(content.Text(it[content.FieldURL])), now, categories))
	}
	data, err := feed.Generate(feed.Feed{
		Title:   title,
		Link:    link,
		Updated: feed.Latest(entries, now),
		Author:  feed.Author{Name: r.cfg.Site.Author, URI: r.cfg.Site.BaseURL},
		Entries: entries,
	})
	if err != nil {
		if errors.Is(err, feed.ErrEmptyFeed) {
			return
		}
		r.logger.Warn("Feed generation failed", logfields.Path(relPath), logfields.Error(err))
		report.addFailure(PageFailure{Path: relPath, Err: derrors.BuildFailed(StageFeeds, err)})
		return
	}
	if err := r.writer.Write(ctx, relPath, data); err != nil {
		r.logger.Error("Feed write failed", logfields.Path(relPath), logfields.Error(err))
		report.addFailure(PageFailure{Path: relPath, Err: derrors.WriteFailed(relPath, err)})
		return
	}
	report.Feeds = append(report.Feeds, relPath)
}

// absolute prefixes a site-relative link with the configured base URL.
func (r *Run) absolute(link string) string {
	base := strings.TrimSuffix(r.cfg.Site.BaseURL, "/")
	if base == "" || strings.Contains(link, "://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return base + link
}

// staticCopier is implemented by themes with a static asset directory.
type staticCopier interface {
	CopyStatic(outDir string) (bool, error)
}

// rooted is implemented by writers backed by a directory.
type rooted interface {
	Root() string
}

func (r *Run) copyStatic(report *Report) {
	sc, ok := r.theme.(staticCopier)
	if !ok {
		return
	}
	w, ok := r.writer.(rooted)
	if !ok {
		r.logger.Debug("Writer has no root, skipping static assets")
		return
	}
	copied, err := sc.CopyStatic(w.Root())
	if err != nil {
		r.logger.Warn("Static asset copy failed", logfields.Path(w.Root()), logfields.Error(err))
		report.addFailure(PageFailure{Path: "static", Err: derrors.WriteFailed(w.Root(), err)})
		return
	}
	report.StaticCopied = copied
}
