package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/ConaryLabs/mira/internal/codestore"
)

// FuzzySearcher runs fuzzy (approximate substring/subsequence) matches
// over a project's file paths and symbol names, grounded on the
// teacher's sparse-retriever design (keyword cache with TTL + oldest
// eviction) but backed by sahilm/fuzzy's in-process matcher instead of
// shelling out to ripgrep, since Mira already holds the corpus in
// SQLite rather than walking the filesystem per query.
type FuzzySearcher struct {
	store *codestore.Store
	cache *fuzzyIndexCache
	// timeout bounds one query's matching work; semaphore caps how many
	// fuzzy queries run at once, per spec §4.D ("fuzzy subsearch capped
	// by a 500ms timeout and a semaphore(1)").
	timeout   time.Duration
	semaphore chan struct{}
}

func NewFuzzySearcher(store *codestore.Store, timeout time.Duration, cacheSize int) *FuzzySearcher {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &FuzzySearcher{
		store:     store,
		cache:     newFuzzyIndexCache(cacheSize, 5*time.Minute),
		timeout:   timeout,
		semaphore: make(chan struct{}, 1),
	}
}

// Search returns up to limit fuzzy-matched chunk ids with normalized
// scores, for one project's corpus.
func (f *FuzzySearcher) Search(ctx context.Context, projectID int64, query string, limit int) (map[int64]float64, error) {
	select {
	case f.semaphore <- struct{}{}:
		defer func() { <-f.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	corpus, err := f.corpusFor(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fuzzy corpus: %w", err)
	}
	if len(corpus) == 0 {
		return nil, nil
	}

	texts := make([]string, len(corpus))
	for i, c := range corpus {
		texts[i] = c.Text
	}

	matches := fuzzy.Find(query, texts)
	out := make(map[int64]float64, limit)
	for i, m := range matches {
		if i >= limit {
			break
		}
		chunkID := corpus[m.Index].ChunkID
		score := normalizeFuzzyScore(m.Score)
		if existing, ok := out[chunkID]; !ok || score > existing {
			out[chunkID] = score
		}
	}
	return out, nil
}

func (f *FuzzySearcher) corpusFor(ctx context.Context, projectID int64) ([]fuzzyCandidate, error) {
	if cached, ok := f.cache.get(projectID); ok {
		return cached, nil
	}

	rows, err := f.store.FuzzyCandidates(ctx, projectID)
	if err != nil {
		return nil, err
	}

	corpus := make([]fuzzyCandidate, 0, len(rows))
	for _, r := range rows {
		text := r.FilePath
		if r.SymbolName != "" {
			text = r.SymbolName + " " + text
		}
		corpus = append(corpus, fuzzyCandidate{Text: text, ChunkID: r.ChunkID})
	}
	f.cache.set(projectID, corpus)
	return corpus, nil
}

// Invalidate drops a project's cached corpus so stale file paths don't
// linger in fuzzy results. Nothing in the indexing path calls it; a
// cached corpus otherwise lives until the cache evicts it.
func (f *FuzzySearcher) Invalidate(projectID int64) {
	f.cache.mu.Lock()
	delete(f.cache.entries, projectID)
	f.cache.mu.Unlock()
}
