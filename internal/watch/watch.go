// Package watch implements the optional watch-mode path: an fsnotify
// subscription over the scan root, debounced and coalesced before
// triggering an incremental semantic-index refresh. Scoped down from the
// teacher's FileWatcher/DebouncedRebuilder pair to this system's
// single-callback incremental-refresh contract (spec §4.5).
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce matches the teacher's watch-debounce default.
const DefaultDebounce = 300 * time.Millisecond

var ignoredDirs = []string{".git", "node_modules", ".mantic", "dist", "build", "vendor"}

// Watcher monitors root for filesystem changes and calls onChange, once
// per debounce window, with the set of repository-relative paths that
// changed since the last call.
type Watcher struct {
	root      string
	debounce  time.Duration
	fsw       *fsnotify.Watcher
	onChange  func(paths []string)

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
}

// New creates a Watcher rooted at root. Callers must call Start to begin
// receiving events and Close to release the underlying fsnotify watcher.
func New(root string, debounce time.Duration, onChange func(paths []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		fsw:      fsw,
		onChange: onChange,
		pending:  make(map[string]bool),
	}, nil
}

// Start walks root adding watches on every non-ignored directory, then
// begins processing events until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addDirs(w.root); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				w.handleEvent(ev)
			case <-w.fsw.Errors:
				// Transient fsnotify errors don't stop the watcher; the
				// next successful event still triggers a refresh.
			}
		}
	}()

	return nil
}

// Close releases the underlying fsnotify watcher and stops any pending
// debounce timer.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) addDirs(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable subtree: skip, don't abort the whole walk
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && isIgnoredDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if shouldIgnore(ev.Name) {
		return
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		rel = ev.Name
	}
	rel = filepath.ToSlash(rel)

	w.mu.Lock()
	w.pending[rel] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if len(paths) > 0 && w.onChange != nil {
		w.onChange(paths)
	}
}

func isIgnoredDir(path string) bool {
	base := filepath.Base(path)
	for _, dir := range ignoredDirs {
		if base == dir {
			return true
		}
	}
	return false
}

func shouldIgnore(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, dir := range ignoredDirs {
		if strings.Contains(slashed, "/"+dir+"/") {
			return true
		}
	}
	return false
}
