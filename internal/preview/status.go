package preview

import "sync"

// Status tracks the outcome of the latest build.
type Status struct {
	mu           sync.RWMutex
	lastError    error
	hasGoodBuild bool
}

func (s *Status) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
}

func (s *Status) SetSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = nil
	s.hasGoodBuild = true
}

// Get returns the last build error and whether any build has succeeded.
func (s *Status) Get() (lastErr error, hasGoodBuild bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError, s.hasGoodBuild
}
