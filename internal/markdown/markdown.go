// Package markdown renders Markdown bodies to HTML and extracts the
// title and summary a listing needs.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Options tune rendering.
type Options struct {
	// Unsafe passes raw HTML in the source through to the output.
	Unsafe bool
}

// Result is a rendered document.
type Result struct {
	HTML string
	// Title is the text of the first level-1 heading, if any.
	Title string
	// Summary is the plain text of the first paragraph.
	Summary string
}

func newMarkdown(opts Options) goldmark.Markdown {
	rendererOpts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	return goldmark.New(rendererOpts...)
}

// Render converts body (front matter already removed) to HTML.
func Render(body []byte, opts Options) (Result, error) {
	md := newMarkdown(opts)
	root := md.Parser().Parse(text.NewReader(body))

	var res Result
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			if node.Level == 1 && res.Title == "" {
				res.Title = plainText(node, body)
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.Paragraph:
			if res.Summary == "" {
				res.Summary = plainText(node, body)
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, body, root); err != nil {
		return Result{}, fmt.Errorf("render markdown: %w", err)
	}
	res.HTML = buf.String()
	return res, nil
}

// plainText concatenates the text segments below n.
func plainText(n gmast.Node, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
