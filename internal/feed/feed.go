// Package feed builds Atom feeds for listings and taxonomy terms.
package feed

import (
	"errors"
	"strings"
	"time"

	atom "github.com/thomas11/atomgenerator"

	"git.home.luguber.info/inful/sitesmith/internal/content"
)

// Record fields read when building entries.
const (
	FieldDate        = "date"
	FieldSummary     = "summary"
	FieldDescription = "description"
	FieldContent     = "content"
)

// Author identifies the feed author.
type Author struct {
	Name string
	URI  string
}

// Entry is one feed entry.
type Entry struct {
	Title      string
	Link       string
	Summary    string
	Content    string
	Published  time.Time
	Categories []string
}

// Feed describes an Atom document.
type Feed struct {
	Title   string
	Link    string
	Updated time.Time
	Author  Author
	Entries []Entry
}

// ErrEmptyFeed is returned for a feed without entries.
var ErrEmptyFeed = errors.New("feed has no entries")

// Generate renders f as Atom XML.
func Generate(f Feed) ([]byte, error) {
	if len(f.Entries) == 0 {
		return nil, ErrEmptyFeed
	}
	doc := atom.Feed{
		Title:   f.Title,
		Link:    f.Link,
		PubDate: f.Updated,
	}
	if f.Author.Name != "" {
		doc.AddAuthor(atom.Author{Name: f.Author.Name, Uri: f.Author.URI})
	}
	for _, e := range f.Entries {
		entry := &atom.Entry{
			Title:       e.Title,
			Description: e.Summary,
			Link:        e.Link,
			PubDate:     e.Published,
			Content:     e.Content,
		}
		for _, c := range e.Categories {
			entry.AddCategory(atom.Category{Term: c})
		}
		doc.AddEntry(entry)
	}
	if errs := doc.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return doc.GenXml()
}

// EntryFor builds the entry of an item. Items without a parsable date are
// stamped with fallback.
func EntryFor(item content.Record, link string, fallback time.Time, categories []string) Entry {
	title := item.Title()
	if title == "" {
		title = item.Label()
	}
	summary := content.Text(item[FieldSummary])
	if summary == "" {
		summary = content.Text(item[FieldDescription])
	}
	if summary == "" {
		summary = title
	}
	published, ok := Date(item[FieldDate])
	if !ok {
		published = fallback
	}
	return Entry{
		Title:      title,
		Link:       link,
		Summary:    summary,
		Content:    content.Text(item[FieldContent]),
		Published:  published,
		Categories: categories,
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"}

// Date interprets a record value as a timestamp.
func Date(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, !d.IsZero()
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Latest returns the newest published time among entries, or fallback.
func Latest(entries []Entry, fallback time.Time) time.Time {
	var latest time.Time
	for _, e := range entries {
		if e.Published.After(latest) {
			latest = e.Published
		}
	}
	if latest.IsZero() {
		return fallback
	}
	return latest
}
