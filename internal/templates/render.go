package templates

import (
	"strings"

	"git.home.luguber.info/inful/sitesmith/internal/content"
)

// Reserved keys available inside {{#each}} bodies.
const (
	KeyThis  = "this"
	KeyIndex = "@index"
	KeyFirst = "@first"
	KeyLast  = "@last"
	KeyRoot  = "@root"
)

// Render parses and executes text against ctx, discarding warnings.
func Render(text string, ctx any) string {
	out, _ := Parse(text).Execute(ctx)
	return out
}

// Execute renders the tree against ctx. It is pure: the same tree and
// context always produce the same output.
func (t *Tree) Execute(ctx any) (string, []Warning) {
	ex := &executor{root: ctx}
	ex.warnings = append(ex.warnings, t.warnings...)
	var b strings.Builder
	ex.walk(&b, t.nodes, ctx)
	return b.String(), ex.warnings
}

type executor struct {
	root     any
	warnings []Warning
}

func (ex *executor) walk(b *strings.Builder, nodes []node, scope any) {
	for i := range nodes {
		n := &nodes[i]
		switch n.kind {
		case nodeText:
			b.WriteString(n.text)
		case nodeValue:
			if v, ok := ex.resolve(scope, n.path); ok {
				b.WriteString(content.Format(v))
			}
		case nodeIf, nodeUnless:
			if n.broken {
				continue
			}
			v, _ := ex.resolve(scope, n.path)
			if content.Truthy(v) == (n.kind == nodeIf) {
				ex.walk(b, n.body, scope)
			}
		case nodeEach:
			if n.broken {
				continue
			}
			ex.each(b, n, scope)
		}
	}
}

func (ex *executor) each(b *strings.Builder, n *node, scope any) {
	v, ok := ex.resolve(scope, n.path)
	if !ok {
		return
	}
	seq, isSeq := content.Sequence(v)
	if !isSeq {
		if v != nil {
			ex.warnings = append(ex.warnings, Warning{Pos: n.pos, Message: "{{#each " + n.path + "}} over a non-sequence value"})
		}
		return
	}
	last := len(seq) - 1
	for i, el := range seq {
		ex.walk(b, n.body, iterationScope(el, i, last, ex.root))
	}
}

// iterationScope merges an element's own fields with the reserved loop keys.
func iterationScope(el any, index, last int, root any) map[string]any {
	fields, _ := content.Mapping(el)
	scope := make(map[string]any, len(fields)+5)
	for k, v := range fields {
		scope[k] = v
	}
	scope[KeyThis] = el
	scope[KeyIndex] = index
	scope[KeyFirst] = index == 0
	scope[KeyLast] = index == last
	scope[KeyRoot] = root
	return scope
}

// resolve looks path up in scope. "." and "this" name the scope value
// itself; a leading "@root" always escapes to the top-level context.
func (ex *executor) resolve(scope any, path string) (any, bool) {
	head, rest, hasRest := strings.Cut(path, ".")
	switch {
	case path == ".":
		return thisValue(scope), true
	case head == KeyRoot:
		if !hasRest {
			return ex.root, true
		}
		return content.Lookup(ex.root, rest)
	case head == KeyThis:
		if !hasRest {
			return thisValue(scope), true
		}
		return content.Lookup(thisValue(scope), rest)
	}
	return content.Lookup(scope, path)
}

func thisValue(scope any) any {
	if m, ok := scope.(map[string]any); ok {
		if v, has := m[KeyThis]; has {
			return v
		}
	}
	return scope
}
