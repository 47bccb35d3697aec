// Package route maps logical page routes to physical output paths and to
// the links that point at them.
//
// Page 1 of any route always resolves to the route's index form; later pages
// resolve to an explicit page-numbered form built from the filename pattern.
// Link generation depends on that asymmetry, so it is kept exact here and
// nowhere else. The resolver computes strings only and never touches storage.
package route

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Style selects the output layout.
type Style string

const (
	// StyleFlat writes one .html file per route: "a/b.html", "a/b-page-2.html".
	StyleFlat Style = "flat"
	// StyleClean writes a directory per route: "a/b/index.html", "a/b/page-2/index.html".
	StyleClean Style = "clean"
)

// PageToken is the placeholder replaced by the page number in a filename pattern.
const PageToken = "{page}"

// DefaultFilenamePattern names pages two and up.
const DefaultFilenamePattern = "page-" + PageToken

const indexFile = "index.html"

// Kind classifies a route for logging and template selection.
type Kind string

const (
	KindSingle   Kind = "single"
	KindList     Kind = "list"
	KindTerm     Kind = "taxonomy"
	KindTermList Kind = "terms"
)

// Route is the environment-independent position of a page in the site.
type Route struct {
	Kind     Kind
	Segments []string
	// Page is 1-based; zero is treated as 1.
	Page int
}

// WithPage returns a copy of r addressing page n.
func (r Route) WithPage(n int) Route {
	segs := make([]string, len(r.Segments))
	copy(segs, r.Segments)
	return Route{Kind: r.Kind, Segments: segs, Page: n}
}

func (r Route) String() string {
	return fmt.Sprintf("%s:/%s#%d", r.Kind, strings.Join(r.Segments, "/"), r.page())
}

func (r Route) page() int {
	if r.Page < 1 {
		return 1
	}
	return r.Page
}

// ParseStyle validates a configured style name.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleFlat, "":
		return StyleFlat, nil
	case StyleClean:
		return StyleClean, nil
	}
	return "", fmt.Errorf("unknown url style %q (want flat or clean)", s)
}

// ValidatePattern checks that pattern contains exactly one page token and no path separators.
func ValidatePattern(pattern string) error {
	if n := strings.Count(pattern, PageToken); n != 1 {
		return fmt.Errorf("filename pattern %q must contain %s exactly once", pattern, PageToken)
	}
	if strings.ContainsAny(pattern, `/\`) {
		return fmt.Errorf("filename pattern %q must not contain path separators", pattern)
	}
	return nil
}

// Resolver turns routes into output paths and links.
type Resolver struct {
	Style   Style
	Pattern string
	// BasePath prefixes every link, e.g. "/" or "/blog/".
	BasePath string
}

// NewResolver returns a resolver with defaults applied for empty fields.
func NewResolver(style Style, pattern, basePath string) *Resolver {
	if style == "" {
		style = StyleFlat
	}
	if pattern == "" {
		pattern = DefaultFilenamePattern
	}
	return &Resolver{Style: style, Pattern: pattern, BasePath: normalizeBase(basePath)}
}

// Path returns the physical output path of r relative to the output root,
// using forward slashes.
func (res *Resolver) Path(r Route) string {
	page := r.page()
	if page > 1 {
		return res.layout(r.Segments, res.pageName(page))
	}
	return res.layout(r.Segments, "")
}

// IsPagePath reports whether p is the output path of base or of one of its
// later pages.
func (res *Resolver) IsPagePath(base Route, p string) bool {
	if p == res.layout(base.Segments, "") {
		return true
	}
	prefix, suffix, ok := strings.Cut(res.layout(base.Segments, res.pattern()), PageToken)
	if !ok || len(p) <= len(prefix)+len(suffix) || !strings.HasPrefix(p, prefix) || !strings.HasSuffix(p, suffix) {
		return false
	}
	digits := p[len(prefix) : len(p)-len(suffix)]
	n, err := strconv.Atoi(digits)
	return err == nil && n > 1 && strconv.Itoa(n) == digits
}

// layout places a route's segments, and pageName when set, in the output tree.
func (res *Resolver) layout(segments []string, pageName string) string {
	segs := cleanSegments(segments)

	if res.style() == StyleClean {
		parts := append([]string{}, segs...)
		if pageName != "" {
			parts = append(parts, pageName)
		}
		parts = append(parts, indexFile)
		return path.Join(parts...)
	}

	if len(segs) == 0 {
		if pageName != "" {
			return pageName + ".html"
		}
		return indexFile
	}
	last := segs[len(segs)-1]
	if pageName != "" {
		last += "-" + pageName
	}
	return path.Join(append(segs[:len(segs)-1:len(segs)-1], last+".html")...)
}

// URL returns the link pointing at r. Clean links are directory URLs with a
// trailing slash and no index file.
func (res *Resolver) URL(r Route) string {
	base := res.BasePath
	if base == "" {
		base = "/"
	}
	if res.style() == StyleClean {
		p := strings.TrimSuffix(res.Path(r), indexFile)
		return base + p
	}
	return base + res.Path(r)
}

func (res *Resolver) style() Style {
	if res.Style == "" {
		return StyleFlat
	}
	return res.Style
}

func (res *Resolver) pattern() string {
	if res.Pattern == "" {
		return DefaultFilenamePattern
	}
	return res.Pattern
}

func (res *Resolver) pageName(n int) string {
	return strings.Replace(res.pattern(), PageToken, strconv.Itoa(n), 1)
}

func cleanSegments(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.Trim(s, "/")
		if s == "" || s == "." || s == ".." {
			continue
		}
		out = append(out, s)
	}
	return out
}

func normalizeBase(b string) string {
	b = strings.TrimSpace(b)
	if b == "" {
		return "/"
	}
	if !strings.HasSuffix(b, "/") {
		b += "/"
	}
	return b
}
