// Package slug derives URL-safe, length-bounded identifiers from
// human-readable labels and keeps them unique within a Registry.
//
// A slug is at most MaxLen and at least MinLen runes long and contains only
// lowercase letters, digits, combining marks, underscores and single
// hyphens. Accents on Latin, Greek and Cyrillic letters are folded to the
// base letter before filtering; marks of other scripts, such as Devanagari
// vowel signs, are kept with their letter.
package slug

import (
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	MinLen   = 2
	MaxLen   = 30
	Fallback = "untitled"
	padRune  = '0'
)

// Key returns the normalized form of label without the fallback or length
// bounds. Two labels with the same Key name the same thing.
func Key(label string) string {
	folded := fold(strings.ToLower(label))

	var b strings.Builder
	b.Grow(len(folded))
	hyphen := false
	emit := func(r rune) {
		if r == '-' {
			hyphen = true
			return
		}
		if hyphen && b.Len() > 0 {
			b.WriteByte('-')
		}
		hyphen = false
		b.WriteRune(r)
	}
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			emit('-')
		case r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			emit(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Normalize returns the bounded slug candidate for label before any
// uniqueness suffix is applied.
func Normalize(label string) string {
	s := Key(label)
	if s == "" {
		s = Fallback
	}
	r := []rune(s)
	for len(r) < MinLen {
		r = append(r, padRune)
	}
	return truncate(string(r), MaxLen)
}

// Assign derives the slug for label and claims it in reg, appending the
// smallest free "-N" (N >= 2) on collision. The result never exceeds MaxLen.
func Assign(label string, reg *Registry) string {
	return reg.claim(Normalize(label))
}

// truncate cuts s to at most n runes and drops a trailing hyphen left by the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimRight(string(r[:n]), "-")
}

// fold strips nonspacing marks that follow a Latin, Greek or Cyrillic letter.
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	strip := false
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			if !strip {
				b.WriteRune(r)
			}
			continue
		}
		strip = unicode.In(r, unicode.Latin, unicode.Greek, unicode.Cyrillic)
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// Registry records the slugs already handed out in one scope. A Registry
// belongs to a single generation run; it is safe for concurrent use but
// assignment order determines which label wins the unsuffixed slug, so
// callers assign in encounter order.
type Registry struct {
	mu     sync.Mutex
	used   map[string]struct{}
	reject func(string) bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{used: make(map[string]struct{})}
}

// Reserve marks names as taken without returning them to anyone.
func (r *Registry) Reserve(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		r.used[n] = struct{}{}
	}
}

// Reject installs a predicate consulted for every candidate. A rejected
// candidate is treated as taken and never handed out.
func (r *Registry) Reject(fn func(candidate string) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reject = fn
}

// Has reports whether s has been assigned or reserved.
func (r *Registry) Has(s string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.used[s]
	return ok
}

// Len returns the number of claimed slugs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.used)
}

func (r *Registry) claim(base string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.taken(base) {
		r.used[base] = struct{}{}
		return base
	}
	for n := 2; ; n++ {
		suffix := "-" + strconv.Itoa(n)
		candidate := truncate(base, MaxLen-len(suffix)) + suffix
		if !r.taken(candidate) {
			r.used[candidate] = struct{}{}
			return candidate
		}
	}
}

func (r *Registry) taken(s string) bool {
	if _, ok := r.used[s]; ok {
		return true
	}
	return r.reject != nil && r.reject(s)
}
