// Package watch reports changes to files under a set of paths.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is the minimum time between two reports for one file.
// Editors often write a file several times per save.
const DebounceInterval = 50 * time.Millisecond

// ErrStopped is returned by Watch after Stop.
var ErrStopped = errors.New("watcher stopped")

// ignoredDirs are never descended into.
//
//nolint:gochecknoglobals // Read-only lookup table.
var ignoredDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	".svn":          true,
	".venv":         true,
	"venv":          true,
	"__pycache__":   true,
	".mypy_cache":   true,
	".pytest_cache": true,
	".tox":          true,
	"node_modules":  true,
	"site-packages": true,
}

// Watcher watches directory trees with fsnotify.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}

	mu      sync.Mutex
	stopped bool
	seen    map[string]time.Time
	subs    []subscription
}

type subscription struct {
	accept   func(path string) bool
	onChange func(path string)
}

// New creates a watcher. Call Stop to release it.
func New() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fw:   fw,
		done: make(chan struct{}),
		seen: make(map[string]time.Time),
	}
	go w.loop()
	return w, nil
}

// Watch monitors path and calls onChange with the absolute path of every
// file that is written, created, removed or renamed. A directory is watched
// recursively, including directories created later. A single file is
// watched through its parent directory.
//
// onChange runs on the watcher's goroutine and must not block for long.
func (w *Watcher) Watch(path string, onChange func(path string)) error {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return ErrStopped
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat watch path: %w", err)
	}

	var accept func(string) bool
	if info.IsDir() {
		prefix := abs + string(filepath.Separator)
		accept = func(name string) bool { return strings.HasPrefix(name, prefix) }
		if err := w.addTree(abs); err != nil {
			return err
		}
	} else {
		if err := w.fw.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
		}
		accept = func(name string) bool { return name == abs }
	}

	w.mu.Lock()
	w.subs = append(w.subs, subscription{accept: accept, onChange: onChange})
	w.mu.Unlock()
	return nil
}

// Stop ends monitoring and releases all resources. It is safe to call more
// than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)

	if err := w.fw.Close(); err != nil {
		return fmt.Errorf("close fsnotify watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped rather than failing the walk.
			return nil //nolint:nilerr // intentional
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(event)

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			// fsnotify keeps delivering after an error.

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !ignoredDirs[info.Name()] {
				_ = w.addTree(path)
			}
			return
		}
	}

	if ignoredPath(path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	w.mu.Lock()
	var targets []func(string)
	for _, sub := range w.subs {
		if sub.accept(path) {
			targets = append(targets, sub.onChange)
		}
	}
	w.mu.Unlock()

	if len(targets) == 0 || !w.due(path, time.Now()) {
		return
	}
	for _, onChange := range targets {
		onChange(path)
	}
}

// due reports whether path may be reported at now, and records it.
func (w *Watcher) due(path string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.seen[path]; ok && now.Sub(last) < DebounceInterval {
		return false
	}
	w.seen[path] = now
	return true
}

func ignoredPath(path string) bool {
	for _, part := range strings.Split(filepath.Dir(path), string(filepath.Separator)) {
		if ignoredDirs[part] {
			return true
		}
	}

	base := filepath.Base(path)
	// Editor swap and backup files.
	return strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".pyc") || base == ".DS_Store"
}
