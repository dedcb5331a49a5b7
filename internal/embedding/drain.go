package embedding

import (
	"context"
	"fmt"

	"github.com/ConaryLabs/mira/internal/codestore"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// drainBatchSize caps how many queue rows one fast-lane cycle claims,
// keeping a single cycle's provider fan-out within the batcher's
// concurrency bound.
const drainBatchSize = maxBatchSize * maxConcurrentBatches

// Drainer pulls pending chunks off the shared embedding queue, embeds
// them, and writes the resulting vectors back, detecting and repairing
// a provider/dimension change along the way. This is the fast lane's
// embedding half (component C feeding component G's scheduler).
type Drainer struct {
	store    *codestore.Store
	embedder Embedder
	batcher  *Batcher
}

func NewDrainer(store *codestore.Store, embedder Embedder) *Drainer {
	return &Drainer{store: store, embedder: embedder, batcher: NewBatcher(embedder)}
}

// DrainResult summarizes one cycle for the supervisor's heartbeat log.
type DrainResult struct {
	Claimed int
	Done    int
	Failed  int
	Dead    int
	Pending int
	Rebuilt bool
}

// RunCycle claims and processes one batch of pending embeddings. The
// claim (DrainBatch) is not scoped by project; projectID scopes only the
// dimension rebuild and the Dead/Pending counts. It first checks whether the stored vector dimension matches
// the active embedder; if it doesn't (a provider switch happened),
// it rebuilds the vector table before draining so the mismatch never
// reaches SetChunkEmbedding.
func (d *Drainer) RunCycle(ctx context.Context, projectID int64) (DrainResult, error) {
	var result DrainResult

	storedDim, err := d.store.ChunkEmbeddingDimension(ctx)
	if err != nil {
		return result, err
	}
	if storedDim != 0 && storedDim != d.embedder.Dimensions() {
		mlog.Get(mlog.CategoryEmbedding).Warn("embedding dimension changed %d -> %d, rebuilding vec_code", storedDim, d.embedder.Dimensions())
		if _, err := d.store.RebuildForDimensionChange(ctx, projectID); err != nil {
			return result, fmt.Errorf("rebuild for dimension change: %w", err)
		}
		result.Rebuilt = true
	}

	pending, err := d.store.DrainBatch(ctx, drainBatchSize)
	if err != nil {
		return result, err
	}
	result.Claimed = len(pending)
	if len(pending) == 0 {
		return result, nil
	}

	ids := make([]int64, 0, len(pending))
	for _, p := range pending {
		if p.Kind == "chunk" {
			ids = append(ids, p.RefID)
		}
	}
	chunks, err := d.store.ChunksByIDs(ctx, ids)
	if err != nil {
		return result, err
	}
	byID := make(map[int64]codestore.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	texts := make([]string, len(pending))
	for i, p := range pending {
		if c, ok := byID[p.RefID]; ok {
			texts[i] = c.Content
		}
	}

	vecs, batchErr := d.batcher.EmbedAll(ctx, texts, ForChunkIndex())
	if batchErr != nil {
		for _, p := range pending {
			if err := d.store.MarkEmbedFailed(ctx, p.ID, batchErr.Error()); err != nil {
				mlog.Get(mlog.CategoryEmbedding).Warn("mark embed failed: %v", err)
			}
		}
		result.Failed = len(pending)
		return result, nil
	}

	for i, p := range pending {
		if vecs[i] == nil {
			if err := d.store.MarkEmbedFailed(ctx, p.ID, "chunk not found"); err != nil {
				mlog.Get(mlog.CategoryEmbedding).Warn("mark embed failed: %v", err)
			}
			result.Failed++
			continue
		}
		if err := d.store.SetChunkEmbedding(ctx, p.RefID, vecs[i]); err != nil {
			if markErr := d.store.MarkEmbedFailed(ctx, p.ID, err.Error()); markErr != nil {
				mlog.Get(mlog.CategoryEmbedding).Warn("mark embed failed: %v", markErr)
			}
			result.Failed++
			continue
		}
		if err := d.store.MarkEmbedDone(ctx, p.ID); err != nil {
			mlog.Get(mlog.CategoryEmbedding).Warn("mark embed done: %v", err)
			continue
		}
		result.Done++
	}

	dead, err := d.store.CountPendingByStatus(ctx, projectID, codestore.EmbedDead)
	if err == nil {
		result.Dead = dead
	}
	stillPending, err := d.store.CountPendingByStatus(ctx, projectID, codestore.EmbedPending)
	if err == nil {
		result.Pending = stillPending
	}
	return result, nil
}
