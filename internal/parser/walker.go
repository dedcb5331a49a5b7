package parser

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/ConaryLabs/mira/internal/mlog"
)

// FullWalk indexes every supported file under root, then removes any
// previously-indexed file that no longer exists on disk. This is
// component B's second entry point (spec §4.B: "full project walk from
// a user-triggered action"), as opposed to the incremental watcher.
// onFile, if non-nil, is called after each file is visited (indexed or
// skipped) so a caller can drive a progress bar; it is never called
// for directories.
func (ix *Indexer) FullWalk(ctx context.Context, projectID int64, root string, onFile func(path string)) (indexed int, removed int, err error) {
	seen := map[string]bool{}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries rather than aborting the walk
		}
		if d.IsDir() {
			if SkipDir(d.Name()) && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !ix.Supported(path) {
			return nil
		}
		seen[canonicalPath(path)] = true
		if err := ix.IndexFile(ctx, projectID, path); err != nil {
			mlog.Get(mlog.CategoryParser).Warn("index failed for %s: %v", path, err)
			if onFile != nil {
				onFile(path)
			}
			return nil
		}
		indexed++
		if onFile != nil {
			onFile(path)
		}
		return nil
	})
	if walkErr != nil {
		return indexed, removed, walkErr
	}

	existing, err := ix.store.ListFiles(ctx, projectID)
	if err != nil {
		return indexed, removed, err
	}
	for _, f := range existing {
		if !seen[f.Path] {
			if err := ix.store.DeleteFile(ctx, projectID, f.Path); err != nil {
				return indexed, removed, err
			}
			removed++
		}
	}
	return indexed, removed, nil
}
