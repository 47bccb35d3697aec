package slug

import (
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestAssignProperties checks the length bounds and uniqueness guarantees for arbitrary labels.
func TestAssignProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("slug length stays within bounds", prop.ForAll(
		func(label string) bool {
			n := utf8.RuneCountInString(Assign(label, NewRegistry()))
			return n >= MinLen && n <= MaxLen
		},
		gen.AnyString(),
	))

	properties.Property("assign never returns a slug already in the registry", prop.ForAll(
		func(labels []string) bool {
			reg := NewRegistry()
			for _, l := range labels {
				if reg.Has(Normalize(l)) {
					before := reg.Len()
					s := Assign(l, reg)
					if s == Normalize(l) || reg.Len() != before+1 {
						return false
					}
					continue
				}
				Assign(l, reg)
			}
			return reg.Len() == len(labels)
		},
		gen.SliceOf(gen.OneConstOf("a", "A", "cats", "Cats!", "x", "", "hello world", "Hello   World")),
	))

	properties.Property("slug alphabet is restricted", prop.ForAll(
		func(label string) bool {
			for _, r := range Assign(label, NewRegistry()) {
				if r == '-' || r == '_' {
					continue
				}
				if r >= 'A' && r <= 'Z' {
					return false
				}
				if r == ' ' || r == '!' || r == '/' || r == '.' {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
