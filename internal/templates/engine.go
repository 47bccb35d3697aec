package templates

import (
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/sitesmith/internal/logfields"
)

// Engine renders named templates and caches their parsed trees. An Engine
// belongs to one generation run; it is safe for concurrent use.
type Engine struct {
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]cachedTree
}

type cachedTree struct {
	text string
	tree *Tree
}

// NewEngine returns an Engine logging warnings to logger (slog.Default when nil).
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, cache: make(map[string]cachedTree)}
}

// Compile returns the parsed tree for name, reparsing when text changed
// since the last call.
func (e *Engine) Compile(name, text string) *Tree {
	e.mu.RLock()
	c, ok := e.cache[name]
	e.mu.RUnlock()
	if ok && c.text == text {
		return c.tree
	}

	tree := Parse(text)
	for _, w := range tree.warnings {
		e.logger.Warn("Template syntax problem", logfields.Template(name), slog.Int("offset", w.Pos), slog.String("problem", w.Message))
	}

	e.mu.Lock()
	e.cache[name] = cachedTree{text: text, tree: tree}
	e.mu.Unlock()
	return tree
}

// Render executes the named template against ctx. Runtime warnings are
// logged; syntax warnings are logged once, at compile time.
func (e *Engine) Render(name, text string, ctx any) string {
	tree := e.Compile(name, text)
	out, warnings := tree.Execute(ctx)
	for _, w := range warnings[len(tree.warnings):] {
		e.logger.Warn("Template render problem", logfields.Template(name), slog.Int("offset", w.Pos), slog.String("problem", w.Message))
	}
	return out
}

// Cached reports how many templates are cached.
func (e *Engine) Cached() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
