package parser

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ConaryLabs/mira/internal/codestore"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// Indexer parses a file with the right CodeParser and persists its
// symbols, call edges, imports, and chunks to the code store. It is the
// shared core behind both of component B's entry points: incremental
// file-change handling (watcher.go) and full project walk (walker.go).
type Indexer struct {
	store    *codestore.Store
	registry *Registry
	budget   int
}

func NewIndexer(store *codestore.Store, registry *Registry) *Indexer {
	return &Indexer{store: store, registry: registry, budget: DefaultChunkBudget}
}

// windowsSep matches runs of backslashes. canonicalPath below only
// normalizes separators; it does not escape LIKE wildcards (mainstore's
// escapeLike does that for its own fact queries).
var windowsSep = regexp.MustCompile(`\\+`)

// canonicalPath normalizes path separators to forward slashes without
// altering case, since file-path matching is case-sensitive per spec.
func canonicalPath(path string) string {
	return windowsSep.ReplaceAllString(filepath.ToSlash(path), "/")
}

// IndexFile parses path's current on-disk contents and replaces its
// symbols/calls/imports/chunks in the store. Unsupported extensions are
// skipped (not an error) so the full walker can pass every file through
// uniformly.
func (ix *Indexer) IndexFile(ctx context.Context, projectID int64, path string) error {
	p := ix.registry.ForPath(path)
	if p == nil {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ix.removeFile(ctx, projectID, path)
		}
		return err
	}

	canon := canonicalPath(path)
	fp := fingerprint(content)
	existing, err := ix.store.FileFingerprint(ctx, projectID, canon)
	if err != nil {
		return err
	}
	if existing == fp {
		return nil // unchanged, skip reparsing
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	fileID, err := ix.store.UpsertFile(ctx, projectID, canon, p.Language(), info.Size(), info.ModTime().Unix(), fp)
	if err != nil {
		return err
	}

	parsed, err := ParseFile(p, content)
	if err != nil {
		mlog.Get(mlog.CategoryParser).Warn("parse failed for %s: %v", canon, err)
		return nil
	}

	symIDs, err := ix.store.ReplaceSymbolsForFile(ctx, projectID, fileID, parsed.Symbols)
	if err != nil {
		return err
	}
	refs := make([]SymbolRef, len(parsed.Symbols))
	for i, sym := range parsed.Symbols {
		refs[i] = SymbolRef{ID: symIDs[i], StartLine: sym.StartLine, EndLine: sym.EndLine}
	}

	edges := make([]codestore.CallEdge, 0, len(parsed.Calls))
	for _, call := range parsed.Calls {
		var callerID *int64
		for _, ref := range refs {
			if call.CallerLine >= ref.StartLine && call.CallerLine <= ref.EndLine {
				id := ref.ID
				callerID = &id
				break
			}
		}
		edges = append(edges, codestore.CallEdge{CallerSymbolID: callerID, CalleeName: call.CalleeName, CallLine: call.CallLine})
	}
	if err := ix.store.ReplaceCallEdgesForFile(ctx, projectID, fileID, edges); err != nil {
		return err
	}
	if err := ix.store.ReplaceImportsForFile(ctx, projectID, fileID, parsed.Imports); err != nil {
		return err
	}

	budget := ix.budget
	chunks := BuildChunks(string(content), refs, p.Language(), budget)
	if _, err := ix.store.ReplaceChunksForFile(ctx, projectID, fileID, chunks); err != nil {
		return err
	}

	mlog.Get(mlog.CategoryParser).Debug("indexed %s: %d symbols, %d calls, %d imports, %d chunks",
		canon, len(parsed.Symbols), len(edges), len(parsed.Imports), len(chunks))
	return nil
}

func (ix *Indexer) removeFile(ctx context.Context, projectID int64, path string) error {
	return ix.store.DeleteFile(ctx, projectID, canonicalPath(path))
}

func fingerprint(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}

// Supported reports whether path's extension is indexable.
func (ix *Indexer) Supported(path string) bool {
	return ix.registry.Supported(path)
}

// SkipDir reports whether dir should be excluded from a full project
// walk. Mirrors common ecosystem ignore conventions rather than reading
// .gitignore, since the pack's teacher walker does the same
// (vendor/node_modules/.git are the universal noise directories).
func SkipDir(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor", ".nerd", "dist", "build", "__pycache__", ".venv":
		return true
	}
	return strings.HasPrefix(name, ".")
}
