package site

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitesmith/internal/route"
)

// ErrPathCollision marks a page whose output path was already claimed by an
// earlier page in the same run.
var ErrPathCollision = errors.New("output path already claimed")

// PageFailure is a page that could not be produced.
type PageFailure struct {
	Path  string
	Route route.Route
	Err   error
}

func (f PageFailure) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.Path, f.Route, f.Err)
}

// SourceFailure is a source skipped in best-effort mode.
type SourceFailure struct {
	Source string
	Err    error
}

// ItemFailure is a single source element left out of the run.
type ItemFailure struct {
	Source string
	Index  int
	Err    error
}

// Report summarizes a run.
type Report struct {
	RunID string
	// Pages counts planned pages; Written counts successful writes.
	Pages          int
	Written        int
	Items          int
	Failures       []PageFailure
	SkippedSources []SourceFailure
	SkippedItems   []ItemFailure
	Feeds          []string
	StaticCopied   bool
	Duration       time.Duration

	mu sync.Mutex
}

func (r *Report) addFailure(f PageFailure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, f)
}

func (r *Report) addWritten() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Written++
}

// Failed reports whether any page, source or item failed.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0 || len(r.SkippedSources) > 0 || len(r.SkippedItems) > 0
}
