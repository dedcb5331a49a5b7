package parser

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ConaryLabs/mira/internal/mlog"
)

// debounceWindow batches rapid successive writes (editors often emit
// several events per save) before triggering a reparse, grounded on the
// teacher's internal/core/mangle_watcher.go debounce pattern.
const debounceWindow = 300 * time.Millisecond

// Watcher drives the indexer from live filesystem change notifications,
// component B's incremental entry point.
type Watcher struct {
	indexer   *Indexer
	projectID int64
	root      string

	fsw *fsnotify.Watcher

	mu       sync.Mutex
	pending  map[string]time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher creates a watcher rooted at root; call Start to begin
// watching.
func NewWatcher(indexer *Indexer, projectID int64, root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		indexer:   indexer,
		projectID: projectID,
		root:      root,
		fsw:       fsw,
		pending:   map[string]time.Time{},
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start adds root (recursively, directory by directory) to the watch
// set and begins the event loop in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	if err := addRecursive(w.fsw, w.root); err != nil {
		return err
	}
	go w.run(ctx)
	return nil
}

// Stop halts the event loop and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	_ = w.fsw.Close()
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return walkDirs(root, func(dir string) error {
		return fsw.Add(dir)
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(debounceWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.record(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			mlog.Get(mlog.CategoryParser).Warn("watcher error: %v", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) record(ev fsnotify.Event) {
	if !w.indexer.Supported(ev.Name) {
		return
	}
	w.mu.Lock()
	w.pending[ev.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	now := time.Now()
	w.mu.Lock()
	var ready []string
	for path, t := range w.pending {
		if now.Sub(t) >= debounceWindow {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		if err := w.indexer.IndexFile(ctx, w.projectID, path); err != nil {
			mlog.Get(mlog.CategoryParser).Warn("incremental index failed for %s: %v", path, err)
		}
	}
}

// walkDirs calls fn for root and every subdirectory under it, skipping
// the same noise directories the full walker skips.
func walkDirs(root string, fn func(dir string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if SkipDir(d.Name()) && path != root {
			return filepath.SkipDir
		}
		return fn(path)
	})
}
