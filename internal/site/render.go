package site

import (
	"context"
	"sync"

	derrors "git.home.luguber.info/inful/sitesmith/internal/errors"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/metrics"
	"git.home.luguber.info/inful/sitesmith/internal/taxonomy"
	"git.home.luguber.info/inful/sitesmith/internal/theme"
)

// renderAll renders and writes pages on a bounded pool. Rendering is pure;
// only the writer and the report are shared between workers.
func (r *Run) renderAll(ctx context.Context, p *plan, report *Report) {
	pages := p.pages
	concurrency := r.cfg.Build.Workers
	if concurrency > len(pages) {
		concurrency = len(pages)
	}
	if concurrency < 1 {
		concurrency = 1
	}
	r.recorder.SetWorkers(concurrency)

	tasks := make(chan page)
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for pg := range tasks {
			select {
			case <-ctx.Done():
				r.recorder.IncPageResult(string(pg.route.Kind), metrics.ResultCanceled)
				continue
			default:
			}
			out := r.renderPage(p.builder, pg)
			if ctx.Err() != nil {
				r.recorder.IncPageResult(string(pg.route.Kind), metrics.ResultCanceled)
				continue
			}
			if err := r.writer.Write(ctx, pg.path, []byte(out)); err != nil {
				r.logger.Error("Page write failed", logfields.Path(pg.path), logfields.Error(err))
				report.addFailure(PageFailure{Path: pg.path, Route: pg.route, Err: derrors.WriteFailed(pg.path, err)})
				r.recorder.IncPageResult(string(pg.route.Kind), metrics.ResultFailed)
				continue
			}
			report.addWritten()
			r.recorder.IncPageResult(string(pg.route.Kind), metrics.ResultSuccess)
		}
	}
	wg.Add(concurrency)
	for range concurrency {
		go worker()
	}
	for _, pg := range pages {
		select {
		case <-ctx.Done():
			close(tasks)
			wg.Wait()
			return
		default:
		}
		tasks <- pg
	}
	close(tasks)
	wg.Wait()
}

// renderPage renders a page body and wraps it in the base template.
func (r *Run) renderPage(builder *taxonomy.Builder, pg page) string {
	siteCtx := r.siteContext()
	pager := ""
	if pg.pagination != nil {
		pager = r.renderTemplate(theme.Pagination, withSite(pg.pagination, siteCtx))
	}

	var body string
	if pg.tax != nil {
		body = builder.Render(r.engine, *pg.tax, map[string]any{KeySite: siteCtx, KeyPager: pager})
	} else {
		ctx := make(map[string]any, len(pg.ctx)+1)
		for k, v := range pg.ctx {
			ctx[k] = v
		}
		if pg.pagination != nil {
			ctx[KeyPager] = pager
		}
		body = r.renderTemplate(pg.template, ctx)
	}

	return r.renderTemplate(theme.Base, map[string]any{
		KeySite:    siteCtx,
		KeyContent: body,
		KeyPage: map[string]any{
			"title": pg.title,
			"url":   pg.url,
			"path":  pg.path,
			"kind":  string(pg.route.Kind),
		},
	})
}

func (r *Run) renderTemplate(name string, ctx map[string]any) string {
	text, ok := r.theme.Template(name)
	if !ok {
		return ""
	}
	return r.engine.Render(name, text, ctx)
}

func withSite(ctx map[string]any, site map[string]any) map[string]any {
	out := make(map[string]any, len(ctx)+1)
	for k, v := range ctx {
		out[k] = v
	}
	out[KeySite] = site
	return out
}
