package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeySource     = "source"
	KeyTemplate   = "template"
	KeyTaxonomy   = "taxonomy"
	KeyTerm       = "term"
	KeyItem       = "item"
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyPage       = "page"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Source(name string) slog.Attr     { return slog.String(KeySource, name) }
func Template(name string) slog.Attr   { return slog.String(KeyTemplate, name) }
func Taxonomy(name string) slog.Attr   { return slog.String(KeyTaxonomy, name) }
func Term(name string) slog.Attr       { return slog.String(KeyTerm, name) }
func Item(index int) slog.Attr         { return slog.Int(KeyItem, index) }
func Slug(s string) slog.Attr          { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Page(n int) slog.Attr             { return slog.Int(KeyPage, n) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
