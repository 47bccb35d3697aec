package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryWriter keeps written pages in memory. It backs dry runs and tests.
type MemoryWriter struct {
	mu     sync.RWMutex
	files  map[string][]byte
	failOn map[string]error
	writes int
}

// NewMemoryWriter creates an empty in-memory writer.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{
		files:  make(map[string][]byte),
		failOn: make(map[string]error),
	}
}

// FailOn makes writes to relPath return err.
func (m *MemoryWriter) FailOn(relPath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[relPath] = err
}

// Write stores a copy of data under relPath.
func (m *MemoryWriter) Write(ctx context.Context, relPath string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := CleanPath(relPath)
	if err != nil {
		return fmt.Errorf("%w: %q", err, relPath)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if err := m.failOn[clean]; err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[clean] = buf
	return nil
}

// Get returns the content stored at relPath.
func (m *MemoryWriter) Get(relPath string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.files[relPath]
	return string(b), ok
}

// Paths returns all stored paths in sorted order.
func (m *MemoryWriter) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Writes reports how many Write calls were made, including failed ones.
func (m *MemoryWriter) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
