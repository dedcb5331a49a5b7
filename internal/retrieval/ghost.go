package retrieval

import (
	"context"
	"os"

	"github.com/ConaryLabs/mira/internal/codestore"
)

// suppressGhosts drops chunk ids whose backing file no longer exists
// on disk, per spec §4.D: a file deleted moments ago can still have a
// live chunk row until the watcher's debounce window fires the
// deletion, and the result must never surface a prediction sourced
// from a file that isn't there right now.
func suppressGhosts(ctx context.Context, store *codestore.Store, hits map[int64]float64) (map[int64]float64, error) {
	if len(hits) == 0 {
		return hits, nil
	}
	out := make(map[int64]float64, len(hits))
	for chunkID, score := range hits {
		path, err := store.ChunkFilePath(ctx, chunkID)
		if err != nil {
			continue // chunk already gone (race with a concurrent delete)
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		out[chunkID] = score
	}
	return out, nil
}
