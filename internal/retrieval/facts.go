package retrieval

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ConaryLabs/mira/internal/config"
	"github.com/ConaryLabs/mira/internal/embedding"
	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// FactRetriever runs the hybrid search over memory facts: a semantic
// subsearch (in-Go cosine scoring, see mainstore.SemanticSearchFacts)
// fanned out alongside the LIKE-based keyword subsearch, fused with
// the same composite score as code search.
type FactRetriever struct {
	store    *mainstore.Store
	embedder embedding.Embedder
	scoring  config.ScoringConfig
}

func NewFactRetriever(store *mainstore.Store, embedder embedding.Embedder, scoring config.ScoringConfig) *FactRetriever {
	return &FactRetriever{store: store, embedder: embedder, scoring: scoring}
}

// Search returns up to limit fused fact hits for a project. When
// allowCrossProject is true, facts from other projects are included
// but down-weighted via ScoringConfig.CrossProjectScore.
func (r *FactRetriever) Search(ctx context.Context, projectID int64, query string, allowCrossProject bool, limit int) ([]Scored[mainstore.Fact], error) {
	var semantic map[int64]float64
	var keyword map[int64]float64

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if r.embedder == nil {
			return nil
		}
		vec, err := r.embedder.Embed(egCtx, query, embedding.ForFactQuery())
		if err != nil {
			mlog.Get(mlog.CategoryRetrieval).Warn("fact semantic subsearch embed failed: %v", err)
			return nil
		}
		hits, err := r.store.SemanticSearchFacts(egCtx, projectID, vec, allowCrossProject, subsearchLimit)
		if err != nil {
			mlog.Get(mlog.CategoryRetrieval).Warn("fact semantic subsearch failed: %v", err)
			return nil
		}
		m := make(map[int64]float64, len(hits))
		for _, h := range hits {
			m[h.FactID] = normalizeDistance(h.Distance)
		}
		semantic = m
		return nil
	})

	eg.Go(func() error {
		facts, err := r.store.FactKeywordSearch(egCtx, projectID, query, allowCrossProject, subsearchLimit)
		if err != nil {
			mlog.Get(mlog.CategoryRetrieval).Warn("fact keyword subsearch failed: %v", err)
			return nil
		}
		m := make(map[int64]float64, len(facts))
		for _, f := range facts {
			m[f.ID] = 0.6 // LIKE matches are boolean; fixed mid-strength score
		}
		keyword = m
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	ids := map[int64]map[SourceKind]float64{}
	for id, s := range semantic {
		if ids[id] == nil {
			ids[id] = map[SourceKind]float64{}
		}
		ids[id][SourceSemantic] = s
	}
	for id, s := range keyword {
		if ids[id] == nil {
			ids[id] = map[SourceKind]float64{}
		}
		ids[id][SourceKeyword] = s
	}
	if len(ids) == 0 {
		return nil, nil
	}

	all, err := r.store.RecallableFacts(ctx, projectID, allowCrossProject)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]mainstore.Fact, len(all))
	for _, f := range all {
		byID[f.ID] = f
	}

	now := time.Now()
	out := make([]Scored[mainstore.Fact], 0, len(ids))
	for id, sources := range ids {
		fact, ok := byID[id]
		if !ok {
			continue // fact status changed to non-recallable between subsearch and hydration
		}
		hit := FactHit{
			FactID:    id,
			ProjectID: fact.ProjectID,
			Salience:  fact.Salience,
			Sources:   sources,
			UpdatedAt: fact.UpdatedAt.Unix(),
		}
		score := ScoreFactHit(r.scoring, hit, projectID, now)
		out = append(out, Scored[mainstore.Fact]{Item: fact, Score: score})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
