package preview

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitesmith/internal/logfields"
)

// DefaultDebounce is the quiet window applied when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc regenerates the site.
type RebuildFunc func(ctx context.Context) error

// Rebuilder serializes rebuild requests. A request arriving while a rebuild
// runs is remembered and served by exactly one follow-up rebuild.
type Rebuilder struct {
	fn       RebuildFunc
	debounce time.Duration
	status   *Status
	logger   *slog.Logger

	requests chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewRebuilder returns a rebuilder that runs fn at most once per quiet window.
func NewRebuilder(fn RebuildFunc, debounce time.Duration, status *Status, logger *slog.Logger) *Rebuilder {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	if status == nil {
		status = &Status{}
	}
	return &Rebuilder{
		fn:       fn,
		debounce: debounce,
		status:   status,
		logger:   logger,
		requests: make(chan struct{}, 1),
	}
}

// Trigger asks for a rebuild after the quiet window. Repeated triggers
// within the window restart it.
func (r *Rebuilder) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.request)
}

// request enqueues a rebuild immediately; a queued request absorbs others.
func (r *Rebuilder) request() {
	select {
	case r.requests <- struct{}{}:
	default:
	}
}

// Run processes rebuild requests until ctx is done.
func (r *Rebuilder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			if r.timer != nil {
				r.timer.Stop()
			}
			r.mu.Unlock()
			return
		case <-r.requests:
			r.rebuild(ctx)
		}
	}
}

func (r *Rebuilder) rebuild(ctx context.Context) {
	start := time.Now()
	r.logger.Info("Change detected; rebuilding site")
	if err := r.fn(ctx); err != nil {
		r.logger.Warn("Rebuild failed", logfields.Error(err))
		r.status.SetError(err)
		return
	}
	r.status.SetSuccess()
	r.logger.Info("Rebuild complete", logfields.DurationMS(float64(time.Since(start))/float64(time.Millisecond)))
}

// Watcher turns filesystem changes under a set of roots into rebuild triggers.
type Watcher struct {
	fs      *fsnotify.Watcher
	exclude []string
	trigger func()
	logger  *slog.Logger
}

// NewWatcher watches every directory below roots except those below
// exclude. Missing roots are skipped.
func NewWatcher(roots, exclude []string, trigger func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{fs: fw, trigger: trigger, logger: logger}
	for _, ex := range exclude {
		if abs, err := filepath.Abs(ex); err == nil {
			w.exclude = append(w.exclude, abs)
		}
	}
	for _, root := range roots {
		if st, statErr := os.Stat(root); statErr != nil || !st.IsDir() {
			logger.Debug("Skipping watch root", logfields.Path(root))
			continue
		}
		w.addRecursive(root)
	}
	return w, nil
}

// Watched returns the directories currently watched.
func (w *Watcher) Watched() []string { return w.fs.WatchList() }

// Close stops watching.
func (w *Watcher) Close() error { return w.fs.Close() }

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) || w.excluded(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addRecursive(ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.trigger()
}

func (w *Watcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") || w.excluded(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

func (w *Watcher) excluded(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, ex := range w.exclude {
		if abs == ex || strings.HasPrefix(abs, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// shouldIgnoreEvent reports editor temp files, hidden files and OS litter.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
