// Package taxonomy groups items into terms along named classification axes
// such as tags or genres, and plans the term and terms-index pages.
package taxonomy

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitesmith/internal/content"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/slug"
)

// Duplicates selects what happens when an item names the same term twice
// in a row within one attribute.
type Duplicates string

const (
	// DuplicatesKeep appends the item once per reference.
	DuplicatesKeep Duplicates = "keep"
	// DuplicatesCollapse skips a reference when the item is already the
	// term's most recently appended item.
	DuplicatesCollapse Duplicates = "collapse"
)

// ParseDuplicates validates a configured policy name. Empty means keep.
func ParseDuplicates(s string) (Duplicates, error) {
	switch Duplicates(s) {
	case "", DuplicatesKeep:
		return DuplicatesKeep, nil
	case DuplicatesCollapse:
		return DuplicatesCollapse, nil
	}
	return "", fmt.Errorf("unknown duplicates policy %q (want keep or collapse)", s)
}

// Options tune indexing.
type Options struct {
	Duplicates Duplicates
	Logger     *slog.Logger
}

// Term is one value of a taxonomy with the items that reference it.
type Term struct {
	Name  string
	Slug  string
	Items []content.Record

	last int // encounter index of the most recently appended item
}

// Count returns the number of item references held by the term.
func (t *Term) Count() int { return len(t.Items) }

// Taxonomy holds the terms of one axis in first-seen order.
type Taxonomy struct {
	Name  string
	Slug  string
	Terms []*Term

	byKey  map[string]*Term
	bySlug map[string]*Term
	reg    *slug.Registry
}

func newTaxonomy(name string) *Taxonomy {
	return &Taxonomy{
		Name:   name,
		Slug:   slug.Normalize(name),
		byKey:  make(map[string]*Term),
		bySlug: make(map[string]*Term),
		reg:    slug.NewRegistry(),
	}
}

// Lookup returns the term with the given slug.
func (tx *Taxonomy) Lookup(s string) (*Term, bool) {
	t, ok := tx.bySlug[s]
	return t, ok
}

// TermFor returns the term a display name refers to.
func (tx *Taxonomy) TermFor(name string) (*Term, bool) {
	t, ok := tx.byKey[slug.Key(name)]
	return t, ok
}

// Names returns the term display names an item references under tx, in
// attribute order, skipping invalid entries.
func (tx *Taxonomy) Names(item content.Record) []string {
	entries, ok := content.Sequence(item[tx.Name])
	if !ok {
		return nil
	}
	var out []string
	for _, entry := range entries {
		if name := termName(entry); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// term returns the term named name, creating it and claiming its slug on
// first sight.
func (tx *Taxonomy) term(name string) *Term {
	key := slug.Key(name)
	if t, ok := tx.byKey[key]; ok {
		return t
	}
	t := &Term{Name: name, Slug: slug.Assign(name, tx.reg), last: -1}
	tx.byKey[key] = t
	tx.bySlug[t.Slug] = t
	tx.Terms = append(tx.Terms, t)
	return t
}

// Index groups items by each named taxonomy attribute. Items are visited in
// order, so term order and each term's item order are first-seen order.
// Every taxonomy gets its own slug registry. Index must run single-threaded.
func Index(items []content.Record, names []string, opts Options) []*Taxonomy {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]*Taxonomy, 0, len(names))
	for _, name := range names {
		tx := newTaxonomy(name)
		for i, item := range items {
			tx.add(i, item, opts.Duplicates, logger)
		}
		logger.Debug("Indexed taxonomy", logfields.Taxonomy(name), logfields.Count(len(tx.Terms)))
		out = append(out, tx)
	}
	return out
}

func (tx *Taxonomy) add(index int, item content.Record, dup Duplicates, logger *slog.Logger) {
	raw, ok := item[tx.Name]
	if !ok {
		logger.Debug("Item has no taxonomy attribute", logfields.Taxonomy(tx.Name), logfields.Item(index))
		return
	}
	entries, ok := content.Sequence(raw)
	if !ok {
		logger.Warn("Taxonomy attribute is not a sequence", logfields.Taxonomy(tx.Name), logfields.Item(index))
		return
	}
	for _, entry := range entries {
		name := termName(entry)
		if name == "" {
			logger.Warn("Skipping invalid taxonomy entry", logfields.Taxonomy(tx.Name), logfields.Item(index))
			continue
		}
		t := tx.term(name)
		if dup == DuplicatesCollapse && t.last == index {
			continue
		}
		t.Items = append(t.Items, item)
		t.last = index
	}
}

// termName returns the display name of a term reference: the entry itself
// when it is a label, its name field when it is a mapping.
func termName(entry any) string {
	if m, ok := content.Mapping(entry); ok {
		return content.Text(m[content.FieldName])
	}
	return content.Text(entry)
}

// Find returns the taxonomy named name.
func Find(taxes []*Taxonomy, name string) (*Taxonomy, bool) {
	for _, tx := range taxes {
		if tx.Name == name {
			return tx, true
		}
	}
	return nil, false
}
