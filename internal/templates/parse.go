package templates

import (
	"fmt"
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeValue
	nodeEach
	nodeIf
	nodeUnless
)

var blockKeywords = map[string]nodeKind{
	"each":   nodeEach,
	"if":     nodeIf,
	"unless": nodeUnless,
}

func (k nodeKind) String() string {
	switch k {
	case nodeText:
		return "text"
	case nodeValue:
		return "value"
	case nodeEach:
		return "each"
	case nodeIf:
		return "if"
	case nodeUnless:
		return "unless"
	}
	return "unknown"
}

type node struct {
	kind nodeKind
	text string // literal text for nodeText
	path string // field path for value and block nodes
	pos  int    // byte offset of the tag in the source
	body []node
	// broken blocks had a malformed path and render as empty text.
	broken bool
}

// Warning describes a non-fatal problem found while parsing or rendering.
type Warning struct {
	Pos     int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("offset %d: %s", w.Pos, w.Message)
}

// Tree is a parsed template. Trees are immutable and safe to execute concurrently.
type Tree struct {
	nodes    []node
	warnings []Warning
}

// Warnings returns the problems found while parsing.
func (t *Tree) Warnings() []Warning {
	out := make([]Warning, len(t.warnings))
	copy(out, t.warnings)
	return out
}

type frame struct {
	kind   nodeKind
	path   string
	pos    int
	broken bool
	nodes  []node
}

// Parse builds a Tree from template text. It never fails; malformed tags
// are recorded as warnings and degrade to empty output.
func Parse(text string) *Tree {
	t := &Tree{}
	stack := []*frame{{kind: nodeText}}
	top := func() *frame { return stack[len(stack)-1] }
	emit := func(n node) { f := top(); f.nodes = append(f.nodes, n) }

	pos := 0
	for pos < len(text) {
		start := strings.Index(text[pos:], openDelim)
		if start < 0 {
			emit(node{kind: nodeText, text: text[pos:], pos: pos})
			break
		}
		start += pos
		if start > pos {
			emit(node{kind: nodeText, text: text[pos:start], pos: pos})
		}
		end := strings.Index(text[start+len(openDelim):], closeDelim)
		if end < 0 {
			// An unterminated tag is plain text.
			emit(node{kind: nodeText, text: text[start:], pos: start})
			break
		}
		end += start + len(openDelim)
		tag := strings.TrimSpace(text[start+len(openDelim) : end])
		pos = end + len(closeDelim)

		switch {
		case strings.HasPrefix(tag, "#"):
			keyword, path := splitTag(tag[1:])
			kind, ok := blockKeywords[keyword]
			if !ok {
				t.warn(start, "unknown block %q", "#"+keyword)
				continue
			}
			broken := !validPath(path)
			if broken {
				t.warn(start, "malformed path %q in {{#%s}}", path, keyword)
			}
			stack = append(stack, &frame{kind: kind, path: path, pos: start, broken: broken})
		case strings.HasPrefix(tag, "/"):
			keyword := strings.TrimSpace(tag[1:])
			kind, ok := blockKeywords[keyword]
			if !ok || len(stack) == 1 || top().kind != kind {
				t.warn(start, "unexpected {{/%s}}", keyword)
				continue
			}
			f := top()
			stack = stack[:len(stack)-1]
			emit(node{kind: f.kind, path: f.path, pos: f.pos, body: f.nodes, broken: f.broken})
		default:
			if !validPath(tag) {
				t.warn(start, "malformed path %q", tag)
				continue
			}
			emit(node{kind: nodeValue, path: tag, pos: start})
		}
	}

	// Unclosed blocks contribute their body as plain content.
	for len(stack) > 1 {
		f := top()
		stack = stack[:len(stack)-1]
		t.warn(f.pos, "unclosed {{#%s %s}}", f.kind, f.path)
		parent := top()
		parent.nodes = append(parent.nodes, f.nodes...)
	}
	t.nodes = stack[0].nodes
	return t
}

func (t *Tree) warn(pos int, format string, args ...any) {
	t.warnings = append(t.warnings, Warning{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func splitTag(s string) (keyword, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t\r\n")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

// validPath accepts "." and dotted segments made of anything but whitespace
// and braces.
func validPath(p string) bool {
	if p == "." {
		return true
	}
	if p == "" || strings.ContainsAny(p, " \t\r\n{}") {
		return false
	}
	for _, seg := range strings.Split(p, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}
