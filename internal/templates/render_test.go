package templates

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_EachWithIndex(t *testing.T) {
	ctx := map[string]any{
		"items": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
		},
	}
	got := Render("{{#each items}}{{name}}-{{@index}};{{/each}}", ctx)
	assert.Equal(t, "a-0;b-1;", got)
}

func TestRender_IfOnSequences(t *testing.T) {
	tpl := "{{#if tags}}yes{{/if}}"
	assert.Equal(t, "", Render(tpl, map[string]any{"tags": []any{}}))
	assert.Equal(t, "", Render(tpl, map[string]any{"tags": []string{}}))
	assert.Equal(t, "yes", Render(tpl, map[string]any{"tags": []any{"x"}}))
	assert.Equal(t, "", Render(tpl, map[string]any{}))
}

func TestRender_Unless(t *testing.T) {
	tpl := "{{#unless draft}}published{{/unless}}"
	assert.Equal(t, "published", Render(tpl, map[string]any{}))
	assert.Equal(t, "published", Render(tpl, map[string]any{"draft": false}))
	assert.Equal(t, "published", Render(tpl, map[string]any{"draft": 0}))
	assert.Equal(t, "", Render(tpl, map[string]any{"draft": true}))
	assert.Equal(t, "", Render(tpl, map[string]any{"draft": "yes"}))
}

func TestRender_Substitution(t *testing.T) {
	ctx := map[string]any{
		"site":  map[string]any{"title": "Arcade", "year": 1987},
		"price": 9.5,
		"tags":  []any{"a", "b"},
	}
	assert.Equal(t, "Arcade (1987) 9.5 a,b", Render("{{site.title}} ({{ site.year }}) {{price}} {{tags}}", ctx))
	assert.Equal(t, "[]", Render("[{{site.missing.deeper}}]", ctx))
	assert.Equal(t, "[]", Render("[{{site}}]", ctx))
}

func TestRender_IterationScopeIsIsolated(t *testing.T) {
	ctx := map[string]any{
		"title": "outer",
		"site":  map[string]any{"title": "Arcade"},
		"items": []any{map[string]any{"name": "a"}},
	}
	assert.Equal(t, "[]", Render("{{#each items}}[{{title}}]{{/each}}", ctx))
	assert.Equal(t, "Arcade", Render("{{#each items}}{{@root.site.title}}{{/each}}", ctx))
}

func TestRender_NestedBlocksResolveAgainstIteration(t *testing.T) {
	ctx := map[string]any{
		"items": []any{"ignored at top level"},
		"groups": []any{
			map[string]any{"label": "G1", "items": []any{map[string]any{"name": "x"}, map[string]any{"name": "y"}}},
			map[string]any{"label": "G2", "items": []any{}},
		},
	}
	tpl := "{{#each groups}}{{label}}:{{#if items}}{{#each items}}{{name}}{{#unless @last}},{{/unless}}{{/each}}{{/if}}{{#unless items}}none{{/unless}};{{/each}}"
	assert.Equal(t, "G1:x,y;G2:none;", Render(tpl, ctx))
}

func TestRender_FirstLastAndThis(t *testing.T) {
	ctx := map[string]any{"tags": []string{"a", "b", "c"}}
	tpl := "{{#each tags}}{{#if @first}}<{{/if}}{{this}}{{#if @last}}>{{/if}}{{/each}}"
	assert.Equal(t, "<abc>", Render(tpl, ctx))
	assert.Equal(t, "a|b|c|", Render("{{#each tags}}{{.}}|{{/each}}", ctx))
}

func TestRender_ThisPathIntoElement(t *testing.T) {
	ctx := map[string]any{"items": []any{map[string]any{"meta": map[string]any{"n": 1}}}}
	assert.Equal(t, "1", Render("{{#each items}}{{this.meta.n}}{{/each}}", ctx))
}

func TestRender_EachOverNonSequence(t *testing.T) {
	tree := Parse("a{{#each name}}x{{/each}}b")
	out, warnings := tree.Execute(map[string]any{"name": "scalar"})
	assert.Equal(t, "ab", out)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "non-sequence")

	out, warnings = tree.Execute(map[string]any{})
	assert.Equal(t, "ab", out)
	assert.Empty(t, warnings)
}

func TestRender_MalformedTagsDegrade(t *testing.T) {
	cases := []struct {
		name string
		tpl  string
		want string
	}{
		{"space in path", "a{{foo bar}}b", "ab"},
		{"empty tag", "a{{}}b", "ab"},
		{"double dot", "a{{x..y}}b", "ab"},
		{"stray closer", "a{{/each}}b", "ab"},
		{"mismatched closer", "{{#if x}}a{{/each}}b{{/if}}", "ab"},
		{"unknown block", "a{{#with x}}b", "ab"},
		{"unclosed opener", "a{{#if missing}}b", "ab"},
		{"broken unless", "a{{#unless p q}}b{{/unless}}c", "ac"},
		{"unterminated tag", "a {{x", "a {{x"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tree := Parse(c.tpl)
			out, _ := tree.Execute(map[string]any{"x": true})
			assert.Equal(t, c.want, out)
			if c.name != "unterminated tag" {
				assert.NotEmpty(t, tree.Warnings())
			}
		})
	}
}

func TestRender_IsIdempotent(t *testing.T) {
	ctx := map[string]any{"items": []any{map[string]any{"n": 1}, map[string]any{"n": 2}}}
	tpl := "{{#each items}}{{n}}{{#if @first}}!{{/if}}{{/each}}"
	first := Render(tpl, ctx)
	second := Render(tpl, ctx)
	assert.Equal(t, first, second)
	assert.Equal(t, "1!2", first)
}

func TestRender_NoCodeEvaluation(t *testing.T) {
	ctx := map[string]any{"name": "${process.exit()}"}
	assert.Equal(t, "${process.exit()} {{", Render("{{name}} {{", ctx))
	assert.Equal(t, "", Render("{{constructor.constructor}}", ctx))
}

func TestEngine_CachesByName(t *testing.T) {
	e := NewEngine(nil)
	a := e.Compile("list", "{{x}}")
	b := e.Compile("list", "{{x}}")
	assert.Same(t, a, b)
	c := e.Compile("list", "{{y}}")
	assert.NotSame(t, a, c)
	assert.Equal(t, 1, e.Cached())
}

func TestEngine_LogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(slog.New(slog.NewTextHandler(&buf, nil)))

	out := e.Render("single", "{{#each title}}x{{/each}}{{/if}}", map[string]any{"title": "T"})
	assert.Equal(t, "", out)
	logs := buf.String()
	assert.Contains(t, logs, "template=single")
	assert.Contains(t, logs, "Template syntax problem")
	assert.Contains(t, logs, "Template render problem")
}
