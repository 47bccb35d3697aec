package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitesmith/internal/content"
	"git.home.luguber.info/inful/sitesmith/internal/route"
	"git.home.luguber.info/inful/sitesmith/internal/templates"
)

type mapSet map[string]string

func (m mapSet) Template(name string) (string, bool) {
	s, ok := m[name]
	return s, ok
}

func sampleIndex() []*Taxonomy {
	items := []content.Record{
		{"title": "Galaga", "genres": []any{"action", "retro"}},
		{"title": "Tetris", "genres": []any{"retro"}},
		{"title": "Pong", "genres": []any{"retro"}},
	}
	return Index(items, []string{"genres"}, Options{})
}

func TestBuilder_PlansTermAndTermsPages(t *testing.T) {
	b := &Builder{
		Resolver:  route.NewResolver(route.StyleClean, "", "/"),
		PerPage:   2,
		Templates: mapSet{TemplateTaxonomy: "t", TemplateTerms: "ts"},
	}
	pages := b.Pages(sampleIndex())

	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = p.Path
	}
	assert.Equal(t, []string{
		"genres/action/index.html",
		"genres/retro/index.html",
		"genres/retro/page-2/index.html",
		"genres/index.html",
	}, paths)

	terms := pages[3]
	assert.Equal(t, TemplateTerms, terms.Template)
	summaries := terms.Context[KeyTerms].([]any)
	require.Len(t, summaries, 2)
	assert.Equal(t, map[string]any{"name": "retro", "slug": "retro", "url": "/genres/retro/", "count": 3}, summaries[1])

	retro2 := pages[2]
	assert.Equal(t, TemplateTaxonomy, retro2.Template)
	assert.Len(t, retro2.Context[KeyItems], 1)
	pctx := retro2.Context[KeyPagination].(map[string]any)
	assert.Equal(t, "/genres/retro/", pctx["previousUrl"])
}

func TestBuilder_SkipsWithoutTemplates(t *testing.T) {
	b := &Builder{
		Resolver:  route.NewResolver(route.StyleFlat, "", "/"),
		PerPage:   10,
		Templates: mapSet{TemplateTaxonomy: "t"},
	}
	assert.False(t, b.Enabled())
	assert.Nil(t, b.Pages(sampleIndex()))
}

func TestBuilder_Render(t *testing.T) {
	set := mapSet{
		TemplateTaxonomy: "{{site.title}}/{{term.name}}:{{#each items}}{{title}};{{/each}}",
		TemplateTerms:    "{{#each terms}}{{name}}({{count}}){{#unless @last}} {{/unless}}{{/each}}",
	}
	b := &Builder{
		Resolver:  route.NewResolver(route.StyleFlat, "", "/"),
		Templates: set,
	}
	pages := b.Pages(sampleIndex())
	require.Len(t, pages, 3)

	e := templates.NewEngine(nil)
	extra := map[string]any{"site": map[string]any{"title": "Arcade"}, "term": "shadowed"}
	assert.Equal(t, "Arcade/action:Galaga;", b.Render(e, pages[0], extra))
	assert.Equal(t, "Arcade/retro:Galaga;Tetris;Pong;", b.Render(e, pages[1], extra))
	assert.Equal(t, "action(1) retro(3)", b.Render(e, pages[2], extra))
	assert.Equal(t, "genres/retro.html", pages[1].Path)
	assert.Equal(t, "genres.html", pages[2].Path)
}

func TestBuilder_SkipsTaxonomyWithoutTerms(t *testing.T) {
	b := &Builder{
		Resolver:  route.NewResolver(route.StyleFlat, "", "/"),
		Templates: mapSet{TemplateTaxonomy: "t", TemplateTerms: "ts"},
	}
	taxes := Index([]content.Record{{"title": "Galaga"}}, []string{"genres"}, Options{})
	assert.Empty(t, b.Pages(taxes))
}
