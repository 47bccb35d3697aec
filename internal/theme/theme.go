// Package theme loads the named template texts a site is rendered with and
// copies the theme's static assets into the output.
package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/copy"
)

// Template names.
const (
	Base       = "base"
	Single     = "single"
	List       = "list"
	Pagination = "pagination"
	Taxonomy   = "taxonomy"
	Terms      = "terms"
)

// Required lists the templates every theme must provide.
var Required = []string{Base, Single, List, Pagination}

// StaticDir is the theme subdirectory copied verbatim into the output.
const StaticDir = "static"

const templateExt = ".html"

// Theme supplies template text by name.
type Theme interface {
	Template(name string) (string, bool)
}

// Missing returns the required templates t lacks, in declaration order.
func Missing(t Theme) []string {
	var out []string
	for _, name := range Required {
		if _, ok := t.Template(name); !ok {
			out = append(out, name)
		}
	}
	return out
}

// MapTheme is an in-memory theme.
type MapTheme map[string]string

func (m MapTheme) Template(name string) (string, bool) {
	s, ok := m[name]
	return s, ok
}

// DirTheme is a theme loaded from <dir>/<name>.html files.
type DirTheme struct {
	dir       string
	templates map[string]string
}

// LoadDir reads every top-level .html file in dir.
func LoadDir(dir string) (*DirTheme, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read theme directory: %w", err)
	}
	t := &DirTheme{dir: dir, templates: make(map[string]string)}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), templateExt) {
			continue
		}
		// #nosec G304 -- file names come from listing the theme directory.
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", e.Name(), err)
		}
		t.templates[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = string(data)
	}
	return t, nil
}

func (t *DirTheme) Template(name string) (string, bool) {
	s, ok := t.templates[name]
	return s, ok
}

// Dir returns the theme directory.
func (t *DirTheme) Dir() string { return t.dir }

// Names returns the loaded template names, sorted.
func (t *DirTheme) Names() []string {
	out := make([]string, 0, len(t.templates))
	for name := range t.templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CopyStatic copies <dir>/static into outDir, keeping the tree shape.
// A theme without static assets copies nothing.
func (t *DirTheme) CopyStatic(outDir string) (bool, error) {
	src := filepath.Join(t.dir, StaticDir)
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat static directory: %w", err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("theme static path %s is not a directory", src)
	}
	opts := copy.Options{
		Skip: func(_ os.FileInfo, src, _ string) (bool, error) {
			return strings.HasPrefix(filepath.Base(src), "."), nil
		},
	}
	if err := copy.Copy(src, outDir, opts); err != nil {
		return false, fmt.Errorf("copy static files: %w", err)
	}
	return true, nil
}
