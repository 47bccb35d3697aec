// Package paginate splits an ordered item list into numbered pages and
// attaches the navigation context templates use to link between them.
package paginate

import (
	"git.home.luguber.info/inful/sitesmith/internal/route"
)

// Keys of the pagination context.
const (
	KeyCurrentPage = "currentPage"
	KeyTotalPages  = "totalPages"
	KeyItems       = "items"
	KeyHasPrevious = "hasPrevious"
	KeyHasNext     = "hasNext"
	KeyPreviousURL = "previousUrl"
	KeyNextURL     = "nextUrl"
	KeyPages       = "pages"
)

// Options tune planning.
type Options struct {
	// EmitEmpty produces a single empty first page for an empty list.
	EmitEmpty bool
}

// Page is one planned page of a listing.
type Page struct {
	Route  route.Route
	Path   string
	URL    string
	Number int
	Total  int
	Items  []any
}

// HasPrevious reports whether a page precedes p.
func (p Page) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows p.
func (p Page) HasNext() bool { return p.Number < p.Total }

// TotalPages returns ceil(n/perPage). A non-positive perPage means a single
// page; zero items mean zero pages.
func TotalPages(n, perPage int) int {
	if n <= 0 {
		return 0
	}
	if perPage <= 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// Plan splits items into pages of perPage under base. Page k holds
// items[(k-1)*perPage : min(k*perPage, n)]; paths and links come from res.
func Plan(items []any, perPage int, base route.Route, res *route.Resolver, opts Options) []Page {
	total := TotalPages(len(items), perPage)
	if total == 0 {
		if !opts.EmitEmpty {
			return nil
		}
		total = 1
	}
	size := perPage
	if size <= 0 {
		size = len(items)
	}

	pages := make([]Page, total)
	for k := 1; k <= total; k++ {
		lo := min((k-1)*size, len(items))
		hi := min(k*size, len(items))
		r := base.WithPage(k)
		pages[k-1] = Page{
			Route:  r,
			Path:   res.Path(r),
			URL:    res.URL(r),
			Number: k,
			Total:  total,
			Items:  items[lo:hi:hi],
		}
	}
	return pages
}

// Context builds the pagination context for pages[i]. The returned map is
// fresh on every call.
func Context(pages []Page, i int) map[string]any {
	p := pages[i]
	prev, next := "", ""
	if p.HasPrevious() {
		prev = pages[i-1].URL
	}
	if p.HasNext() {
		next = pages[i+1].URL
	}
	links := make([]any, len(pages))
	for j, other := range pages {
		links[j] = map[string]any{
			"number":  other.Number,
			"url":     other.URL,
			"current": j == i,
		}
	}
	items := make([]any, len(p.Items))
	copy(items, p.Items)
	return map[string]any{
		KeyCurrentPage: p.Number,
		KeyTotalPages:  p.Total,
		KeyItems:       items,
		KeyHasPrevious: p.HasPrevious(),
		KeyHasNext:     p.HasNext(),
		KeyPreviousURL: prev,
		KeyNextURL:     next,
		KeyPages:       links,
	}
}
