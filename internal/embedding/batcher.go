package embedding

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Batch-fan-out limits per spec §4.C: up to maxBatchSize texts per
// provider call, at most maxConcurrentBatches calls in flight at once.
const (
	maxBatchSize        = 32
	maxConcurrentBatches = 4
)

// BatchResult carries the outcome of embedding one sub-batch, indexed
// by its position in the original input so callers can reassemble
// results in order even though sub-batches complete out of order.
type BatchResult struct {
	Offset int
	Vecs   [][]float32
	Err    error
}

// Batcher fans a large EmbedBatch request out across bounded
// concurrent provider calls, grounded on the teacher's
// campaign/intelligence_gatherer.go errgroup-with-SetLimit fan-out
// pattern.
type Batcher struct {
	embedder Embedder
}

func NewBatcher(embedder Embedder) *Batcher {
	return &Batcher{embedder: embedder}
}

// EmbedAll splits texts into sub-batches of at most maxBatchSize,
// embeds up to maxConcurrentBatches of them concurrently, and
// reassembles the results in input order. A failure in one sub-batch
// does not cancel the others already in flight, but the first error
// is returned once all sub-batches have settled.
func (b *Batcher) EmbedAll(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	type subBatch struct {
		offset int
		texts  []string
	}
	var batches []subBatch
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, subBatch{offset: start, texts: texts[start:end]})
	}

	results := make([][]float32, len(texts))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentBatches)

	var mu sync.Mutex
	var firstErr error
	recordErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, sb := range batches {
		sb := sb
		eg.Go(func() error {
			vecs, err := b.embedder.EmbedBatch(egCtx, sb.texts, task)
			if err != nil {
				recordErr(err)
				return nil // isolate this sub-batch's failure from the others
			}
			for i, v := range vecs {
				results[sb.offset+i] = v
			}
			return nil
		})
	}
	_ = eg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
