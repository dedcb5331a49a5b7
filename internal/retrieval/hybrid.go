package retrieval

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ConaryLabs/mira/internal/codestore"
	"github.com/ConaryLabs/mira/internal/config"
	"github.com/ConaryLabs/mira/internal/embedding"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// subsearchLimit bounds how many candidates each subsearch contributes
// before fusion; fusion then re-ranks and the caller applies its own
// final limit.
const subsearchLimit = 50

// CodeRetriever runs the hybrid code search: semantic, keyword, and
// fuzzy subsearches concurrently (errgroup, mirroring the teacher's
// campaign/intelligence_gatherer.go fan-out), fused by the spec's
// composite score, with ghost-prediction suppression applied before
// the final rank.
type CodeRetriever struct {
	store    *codestore.Store
	embedder embedding.Embedder
	fuzzy    *FuzzySearcher
	scoring  config.ScoringConfig
}

func NewCodeRetriever(store *codestore.Store, embedder embedding.Embedder, fuzzy *FuzzySearcher, scoring config.ScoringConfig) *CodeRetriever {
	return &CodeRetriever{store: store, embedder: embedder, fuzzy: fuzzy, scoring: scoring}
}

// Search runs the hybrid search and returns up to limit fused,
// ghost-filtered, score-sorted hits for a project.
func (r *CodeRetriever) Search(ctx context.Context, projectID int64, query string, limit int) ([]Scored[codestore.Chunk], error) {
	var semantic map[int64]float64
	var keyword map[int64]float64
	var fuzzyHits map[int64]float64

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if r.embedder == nil {
			return nil
		}
		vec, err := r.embedder.Embed(egCtx, query, embedding.ForChunkQuery())
		if err != nil {
			mlog.Get(mlog.CategoryRetrieval).Warn("semantic subsearch embed failed: %v", err)
			return nil
		}
		hits, err := r.store.SemanticSearch(egCtx, projectID, vec, subsearchLimit)
		if err != nil {
			mlog.Get(mlog.CategoryRetrieval).Warn("semantic subsearch failed: %v", err)
			return nil
		}
		m := make(map[int64]float64, len(hits))
		for _, h := range hits {
			m[h.ChunkID] = normalizeDistance(h.Distance)
		}
		semantic = m
		return nil
	})

	eg.Go(func() error {
		hits, err := r.store.KeywordSearch(egCtx, projectID, query, subsearchLimit)
		if err != nil {
			mlog.Get(mlog.CategoryRetrieval).Warn("keyword subsearch failed: %v", err)
			return nil
		}
		m := make(map[int64]float64, len(hits))
		for _, h := range hits {
			m[h.ChunkID] = normalizeRank(h.Rank)
		}
		keyword = m
		return nil
	})

	eg.Go(func() error {
		if r.fuzzy == nil {
			return nil
		}
		m, err := r.fuzzy.Search(egCtx, projectID, query, subsearchLimit)
		if err != nil {
			mlog.Get(mlog.CategoryRetrieval).Warn("fuzzy subsearch failed: %v", err)
			return nil
		}
		fuzzyHits = m
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[int64]map[SourceKind]float64)
	mergeInto := func(kind SourceKind, m map[int64]float64) {
		for id, score := range m {
			if merged[id] == nil {
				merged[id] = make(map[SourceKind]float64)
			}
			merged[id][kind] = score
		}
	}
	mergeInto(SourceSemantic, semantic)
	mergeInto(SourceKeyword, keyword)
	mergeInto(SourceFuzzy, fuzzyHits)

	if len(merged) == 0 {
		return nil, nil
	}

	filtered, err := suppressGhosts(ctx, r.store, ghostCandidateSet(merged))
	if err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(filtered))
	for id := range filtered {
		ids = append(ids, id)
	}
	chunks, err := r.store.ChunksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	chunkByID := make(map[int64]codestore.Chunk, len(chunks))
	for _, c := range chunks {
		chunkByID[c.ID] = c
	}

	now := time.Now()
	out := make([]Scored[codestore.Chunk], 0, len(chunks))
	for id, chunk := range chunkByID {
		modTime, err := r.store.ChunkFileModTime(ctx, id)
		if err != nil {
			modTime = 0
		}
		hit := CodeHit{
			ChunkID:   id,
			ProjectID: projectID,
			Sources:   merged[id],
			ModTime:   modTime,
		}
		score := ScoreCodeHit(r.scoring, hit, projectID, now)
		out = append(out, Scored[codestore.Chunk]{Item: chunk, Score: score})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ghostCandidateSet projects the merged per-source map down to the id
// set suppressGhosts needs to check; the score value is unused by
// that filter and is overwritten with the real composite score after.
func ghostCandidateSet(merged map[int64]map[SourceKind]float64) map[int64]float64 {
	out := make(map[int64]float64, len(merged))
	for id := range merged {
		out[id] = 1
	}
	return out
}
