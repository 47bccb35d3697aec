package paginate

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitesmith/internal/route"
)

func numbered(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = map[string]any{"n": i}
	}
	return out
}

func TestPlan_SplitsIntoPages(t *testing.T) {
	res := route.NewResolver(route.StyleFlat, "", "/")
	pages := Plan(numbered(25), 10, route.Route{Kind: route.KindList}, res, Options{})

	require.Len(t, pages, 3)
	sizes := []int{len(pages[0].Items), len(pages[1].Items), len(pages[2].Items)}
	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.Equal(t, "index.html", pages[0].Path)
	assert.Equal(t, "page-2.html", pages[1].Path)
	assert.Equal(t, "page-3.html", pages[2].Path)
	for _, p := range pages {
		assert.Equal(t, 3, p.Total)
	}
}

func TestPlan_EmptyList(t *testing.T) {
	res := route.NewResolver(route.StyleFlat, "", "/")
	assert.Empty(t, Plan(nil, 10, route.Route{Kind: route.KindList}, res, Options{}))

	pages := Plan(nil, 10, route.Route{Kind: route.KindList}, res, Options{EmitEmpty: true})
	require.Len(t, pages, 1)
	ctx := Context(pages, 0)
	assert.Equal(t, 1, ctx[KeyCurrentPage])
	assert.Equal(t, 1, ctx[KeyTotalPages])
	assert.Equal(t, []any{}, ctx[KeyItems])
	assert.Equal(t, false, ctx[KeyHasNext])
}

func TestPlan_DisabledPagination(t *testing.T) {
	res := route.NewResolver(route.StyleClean, "", "/")
	pages := Plan(numbered(7), 0, route.Route{Kind: route.KindList, Segments: []string{"games"}}, res, Options{})
	require.Len(t, pages, 1)
	assert.Len(t, pages[0].Items, 7)
	assert.Equal(t, "games/index.html", pages[0].Path)
}

func TestContext_Navigation(t *testing.T) {
	res := route.NewResolver(route.StyleClean, "", "/")
	pages := Plan(numbered(5), 2, route.Route{Kind: route.KindTerm, Segments: []string{"genres", "retro"}}, res, Options{})
	require.Len(t, pages, 3)

	first := Context(pages, 0)
	assert.Equal(t, false, first[KeyHasPrevious])
	assert.Equal(t, true, first[KeyHasNext])
	assert.Equal(t, "", first[KeyPreviousURL])
	assert.Equal(t, "/genres/retro/page-2/", first[KeyNextURL])

	middle := Context(pages, 1)
	assert.Equal(t, "/genres/retro/", middle[KeyPreviousURL])
	assert.Equal(t, "/genres/retro/page-3/", middle[KeyNextURL])

	last := Context(pages, 2)
	assert.Equal(t, true, last[KeyHasPrevious])
	assert.Equal(t, false, last[KeyHasNext])
	assert.Equal(t, "", last[KeyNextURL])

	links, ok := last[KeyPages].([]any)
	require.True(t, ok)
	require.Len(t, links, 3)
	assert.Equal(t, map[string]any{"number": 3, "url": "/genres/retro/page-3/", "current": true}, links[2])
	assert.Equal(t, false, links[0].(map[string]any)["current"])
}

func TestContext_ItemsAreCopied(t *testing.T) {
	res := route.NewResolver(route.StyleFlat, "", "/")
	items := numbered(3)
	pages := Plan(items, 2, route.Route{Kind: route.KindList}, res, Options{})
	ctx := Context(pages, 0)
	ctx[KeyItems].([]any)[0] = "changed"
	assert.Equal(t, map[string]any{"n": 0}, items[0])
}

func TestPlan_PartitionProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	res := route.NewResolver(route.StyleFlat, "", "/")

	properties.Property("pages partition the items in order", prop.ForAll(
		func(n, perPage int) bool {
			items := numbered(n)
			pages := Plan(items, perPage, route.Route{Kind: route.KindList}, res, Options{})
			if len(pages) != TotalPages(n, perPage) {
				return false
			}
			seen := 0
			for k, p := range pages {
				if p.Number != k+1 || p.Total != len(pages) {
					return false
				}
				for _, it := range p.Items {
					if it.(map[string]any)["n"] != seen {
						return false
					}
					seen++
				}
				if perPage > 0 && len(p.Items) > perPage {
					return false
				}
			}
			return seen == n
		},
		gen.IntRange(0, 120),
		gen.IntRange(-2, 15),
	))

	properties.TestingRun(t)
}
