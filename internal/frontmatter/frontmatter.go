// Package frontmatter splits Markdown documents into YAML front matter
// fields and body, and composes them back for scaffolding.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMissingClosingDelimiter reports a document that opens front matter but never closes it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Document is a parsed Markdown file.
type Document struct {
	Fields map[string]any
	Body   []byte
	// HadFrontmatter is false when the file did not start with a delimiter.
	HadFrontmatter bool
}

// Parse splits content and decodes its front matter. A document without
// front matter yields empty Fields and the whole input as Body.
func Parse(content []byte) (Document, error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return Document{}, err
	}
	fields, err := decode(raw)
	if err != nil {
		return Document{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	return Document{Fields: fields, Body: body, HadFrontmatter: had}, nil
}

// Split separates raw front matter (without delimiters) from the body.
// LF and CRLF line endings are both accepted.
func Split(content []byte) (frontmatter, body []byte, had bool, err error) {
	nl := newline(content)
	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}
	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + delimiter + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter at end of file has no trailing newline.
		if bytes.HasSuffix(content, []byte(nl+delimiter)) {
			end := len(content) - len(delimiter)
			return content[start:end], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

func decode(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func newline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
