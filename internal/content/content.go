// Package content defines the record model shared by sources, planners and
// the template renderer, plus a safe dotted-path lookup over it.
//
// Records are open-ended field mappings decoded from JSON, YAML or front
// matter. Lookup never panics and never uses reflection: it narrows through
// the concrete shapes those decoders produce and reports "absent" as soon as
// a segment cannot be followed.
package content

import (
	"strconv"
	"strings"
)

// Record is one content item: field name to value.
type Record map[string]any

// Well-known record fields.
const (
	FieldSlug  = "slug"
	FieldURL   = "url"
	FieldID    = "id"
	FieldTitle = "title"
	FieldName  = "name"
)

// Label returns the text an item's slug is derived from: an explicit slug,
// then id, title and name. Empty when none is present.
func (r Record) Label() string {
	for _, key := range []string{FieldSlug, FieldID, FieldTitle, FieldName} {
		v, ok := r[key]
		if !ok {
			continue
		}
		if _, isMap := Mapping(v); isMap {
			continue
		}
		if s := strings.TrimSpace(Format(v)); s != "" {
			return s
		}
	}
	return ""
}

// Title returns the display title, falling back to name.
func (r Record) Title() string {
	if s := Text(r[FieldTitle]); s != "" {
		return s
	}
	return Text(r[FieldName])
}

// With returns a shallow copy of r with the given fields set. r is not modified.
func (r Record) With(fields map[string]any) Record {
	out := make(Record, len(r)+len(fields))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Lookup resolves a dotted path such as "author.name" or "items.0.title"
// against value. ok is false when any segment is missing.
func Lookup(value any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	cur := value
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, false
		}
		next, ok := Field(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Field narrows value by a single segment: a key for mappings, a
// non-negative index for sequences.
func Field(value any, key string) (any, bool) {
	switch v := value.(type) {
	case Record:
		out, ok := v[key]
		return out, ok
	case map[string]any:
		out, ok := v[key]
		return out, ok
	case map[string]string:
		out, ok := v[key]
		return out, ok
	case map[any]any:
		out, ok := v[key]
		return out, ok
	}
	if seq, ok := Sequence(value); ok {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(seq) {
			return nil, false
		}
		return seq[idx], true
	}
	return nil, false
}

// Sequence reports whether value is an ordered sequence and returns its
// elements as []any.
func Sequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []Record:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	}
	return nil, false
}

// Mapping reports whether value is a field mapping and returns it as a
// map[string]any view. The returned map must not be modified.
func Mapping(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case Record:
		return v, true
	case map[string]any:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, s := range v {
			if ks, ok := k.(string); ok {
				out[ks] = s
			}
		}
		return out, true
	}
	return nil, false
}

// Text returns value as a trimmed string when it is a string, empty otherwise.
func Text(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
