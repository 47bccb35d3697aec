package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitesmith/internal/content"
)

func titles(items []content.Record) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title()
	}
	return out
}

func TestIndex_GroupsInFirstSeenOrder(t *testing.T) {
	items := []content.Record{
		{"title": "Galaga", "genres": []any{"action", "retro"}},
		{"title": "Tetris", "genres": []any{"retro"}},
	}
	taxes := Index(items, []string{"genres"}, Options{})
	require.Len(t, taxes, 1)
	genres := taxes[0]
	assert.Equal(t, "genres", genres.Slug)
	require.Len(t, genres.Terms, 2)

	assert.Equal(t, "action", genres.Terms[0].Slug)
	assert.Equal(t, []string{"Galaga"}, titles(genres.Terms[0].Items))
	assert.Equal(t, "retro", genres.Terms[1].Slug)
	assert.Equal(t, []string{"Galaga", "Tetris"}, titles(genres.Terms[1].Items))

	retro, ok := genres.Lookup("retro")
	require.True(t, ok)
	assert.Equal(t, 2, retro.Count())
}

func TestIndex_StructuredAndInvalidEntries(t *testing.T) {
	items := []content.Record{
		{"title": "A", "tags": []any{map[string]any{"name": "Go Lang"}, 42, map[string]any{"label": "x"}, "  "}},
		{"title": "B", "tags": "not a list"},
		{"title": "C"},
		{"title": "D", "tags": []string{"go lang"}},
	}
	taxes := Index(items, []string{"tags"}, Options{})
	tags := taxes[0]
	require.Len(t, tags.Terms, 1)
	assert.Equal(t, "Go Lang", tags.Terms[0].Name)
	assert.Equal(t, "go-lang", tags.Terms[0].Slug)
	assert.Equal(t, []string{"A", "D"}, titles(tags.Terms[0].Items))
}

func TestIndex_DuplicatePolicy(t *testing.T) {
	items := []content.Record{
		{"title": "A", "tags": []any{"x", "x"}},
		{"title": "B", "tags": []any{"x"}},
	}

	kept := Index(items, []string{"tags"}, Options{})
	assert.Equal(t, []string{"A", "A", "B"}, titles(kept[0].Terms[0].Items))

	collapsed := Index(items, []string{"tags"}, Options{Duplicates: DuplicatesCollapse})
	assert.Equal(t, []string{"A", "B"}, titles(collapsed[0].Terms[0].Items))
}

func TestIndex_TaxonomiesHaveSeparateRegistries(t *testing.T) {
	items := []content.Record{
		{"title": "A", "tags": []any{"retro"}, "genres": []any{"retro"}},
	}
	taxes := Index(items, []string{"tags", "genres"}, Options{})
	require.Len(t, taxes, 2)
	assert.Equal(t, "retro", taxes[0].Terms[0].Slug)
	assert.Equal(t, "retro", taxes[1].Terms[0].Slug)

	g, ok := Find(taxes, "genres")
	require.True(t, ok)
	assert.Same(t, taxes[1], g)
	_, ok = Find(taxes, "missing")
	assert.False(t, ok)
}

func TestIndex_DistinctNamesWithCollidingSlugs(t *testing.T) {
	long := "an extremely long term name that overflows"
	items := []content.Record{
		{"title": "A", "tags": []any{long, long + " again"}},
	}
	taxes := Index(items, []string{"tags"}, Options{})
	terms := taxes[0].Terms
	require.Len(t, terms, 2)
	assert.NotEqual(t, terms[0].Slug, terms[1].Slug)
	assert.LessOrEqual(t, len(terms[1].Slug), 30)
}

func TestParseDuplicates(t *testing.T) {
	d, err := ParseDuplicates("")
	require.NoError(t, err)
	assert.Equal(t, DuplicatesKeep, d)
	d, err = ParseDuplicates("collapse")
	require.NoError(t, err)
	assert.Equal(t, DuplicatesCollapse, d)
	_, err = ParseDuplicates("dedupe")
	assert.Error(t, err)
}

func TestTaxonomy_TermForAndNames(t *testing.T) {
	item := content.Record{"title": "A", "tags": []any{"Go Lang", map[string]any{"name": "CLI"}, 3}}
	taxes := Index([]content.Record{item}, []string{"tags"}, Options{})
	tags := taxes[0]

	assert.Equal(t, []string{"Go Lang", "CLI"}, tags.Names(item))
	term, ok := tags.TermFor("go  lang")
	require.True(t, ok)
	assert.Equal(t, "go-lang", term.Slug)
	_, ok = tags.TermFor("rust")
	assert.False(t, ok)
	assert.Nil(t, tags.Names(content.Record{}))
}
