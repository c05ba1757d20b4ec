package compiler

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zarpay/praxis-cli/manifest"
)

// defaultDebounce is how long the watcher waits for more changes
// before recompiling.
const defaultDebounce = 500 * time.Millisecond

// watchExtensions are the file types whose changes trigger a
// recompile.
var watchExtensions = map[string]bool{
	".md":   true,
	".html": true,
	".htm":  true,
}

// Watcher recompiles all roles when a watched file under the project
// root changes. Change detection is content-hash based so a
// touch-without-change never recompiles; every flush with real
// changes triggers one full batch so cross-role references stay
// consistent.
type Watcher struct {
	compiler *Compiler
	root     string
	debounce time.Duration
	metrics  *Metrics
	logger   *slog.Logger
	excludes map[string]bool

	watcher *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]struct{}

	hashMu sync.RWMutex
	hashes map[string]string
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the debounce delay.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithMetrics publishes compile-run metrics from the watch loop.
func WithMetrics(m *Metrics) WatchOption {
	return func(w *Watcher) {
		w.metrics = m
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithExcludeDirs adds directory names the watcher skips, on top of
// the defaults (.git, node_modules, vendor, hidden directories).
// Output directories belong here so writes never feed back into the
// watch loop.
func WithExcludeDirs(names ...string) WatchOption {
	return func(w *Watcher) {
		for _, name := range names {
			if name != "" {
				w.excludes[name] = true
			}
		}
	}
}

// NewWatcher creates a watcher over the tree rooted at root, driving
// the given compiler.
func NewWatcher(c *Compiler, root string, opts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		compiler: c,
		root:     root,
		debounce: defaultDebounce,
		logger:   slog.Default(),
		excludes: map[string]bool{
			".git":         true,
			"node_modules": true,
			"vendor":       true,
		},
		watcher: fsw,
		pending: make(map[string]struct{}),
		hashes:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run compiles once, then watches until ctx is cancelled. Compile
// runs stay serialized: they happen only from this loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}
	w.snapshotHashes()

	w.runCompile()

	w.logger.Info("watching for changes",
		"root", w.root,
		"debounce", w.debounce)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// skipDir reports whether a directory is excluded from watching.
func (w *Watcher) skipDir(path string) bool {
	base := filepath.Base(path)
	if w.excludes[base] {
		return true
	}
	return strings.HasPrefix(base, ".") && base != "." && path != w.root
}

// addWatchesRecursive adds watches to all non-excluded directories.
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// snapshotHashes records the current content hash of every watched
// file so startup events and touches without changes never recompile.
func (w *Watcher) snapshotHashes() {
	_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if w.skipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !watchExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if content, err := os.ReadFile(path); err == nil {
			w.setHash(path, manifest.ContentHash(content))
		}
		return nil
	})
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

func (w *Watcher) getHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

func (w *Watcher) dropHash(path string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	delete(w.hashes, path)
}

// handleFSEvent accumulates a change for the next flush.
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if !watchExtensions[strings.ToLower(filepath.Ext(path))] {
		// New directories need their own watch.
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() && !w.skipDir(path) {
				if err := w.watcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
		}
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = struct{}{}
	w.pendingMu.Unlock()

	w.logger.Debug("change detected", "path", path, "op", event.Op.String())
}

// flushPending recompiles when any accumulated change altered file
// content.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toCheck := w.pending
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	changed := false
	for path := range toCheck {
		content, err := os.ReadFile(path)
		if err != nil {
			// Deleted or unreadable counts as a change.
			w.dropHash(path)
			changed = true
			continue
		}

		newHash := manifest.ContentHash(content)
		if oldHash, ok := w.getHash(path); ok && oldHash == newHash {
			continue
		}
		w.setHash(path, newHash)
		changed = true
	}

	if changed {
		w.runCompile()
	}
}

// runCompile executes one full batch and records metrics.
func (w *Watcher) runCompile() {
	started := time.Now()
	compiled, err := w.compiler.CompileAll()
	elapsed := time.Since(started)

	if w.metrics != nil {
		w.metrics.observeRun(compiled, err, elapsed)
	}

	if err != nil {
		w.logger.Error("compile run failed", "error", err)
		return
	}
	w.logger.Info("compile run complete",
		"compiled", compiled,
		"diagnostics", len(w.compiler.Diags()),
		"duration", elapsed)
}
