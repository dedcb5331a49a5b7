package codestore

import (
	"context"

	"github.com/ConaryLabs/mira/internal/dbutil"
)

// SetChunkEmbedding stores (or replaces) a chunk's embedding.
func (s *Store) SetChunkEmbedding(ctx context.Context, chunkID int64, vector []float32) error {
	_, err := s.pool.DB.ExecContext(ctx,
		`INSERT INTO vec_code(ref_id, embedding, dimension) VALUES (?, ?, ?)
		 ON CONFLICT(ref_id) DO UPDATE SET embedding = excluded.embedding, dimension = excluded.dimension`,
		chunkID, dbutil.EncodeVector(vector), len(vector))
	return err
}

// ChunkEmbeddingDimension returns the dimension recorded for any one
// row of vec_code, or 0 if the table is empty. Used to detect whether
// the configured embedding dimension has drifted from what's stored.
func (s *Store) ChunkEmbeddingDimension(ctx context.Context) (int, error) {
	var dim int
	err := s.pool.DB.QueryRowContext(ctx, `SELECT dimension FROM vec_code LIMIT 1`).Scan(&dim)
	if err != nil {
		return 0, nil // empty table, not an error
	}
	return dim, nil
}

// RebuildForDimensionChange truncates vec_code (its rows are all of the
// old dimension and meaningless once the provider or dimension
// changes), then re-enqueues every active chunk for fresh embedding.
func (s *Store) RebuildForDimensionChange(ctx context.Context, projectID int64) (int64, error) {
	if err := dbutil.RebuildVectorTable(s.pool.DB, "vec_code"); err != nil {
		return 0, err
	}
	return s.EnqueueAllActiveChunks(ctx, projectID)
}

// CodeSemanticHit is one nearest-neighbor result.
type CodeSemanticHit struct {
	ChunkID  int64
	Distance float64
}

// SemanticSearch returns the limit nearest chunks to query by cosine
// distance, scoped to project via a join against chunks.project_id.
// vector_distance_cos is registered once per process by
// dbutil.RegisterModerncVecFunctions (called from Store.Open).
func (s *Store) SemanticSearch(ctx context.Context, projectID int64, query []float32, limit int) ([]CodeSemanticHit, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT v.ref_id, vector_distance_cos(v.embedding, ?) AS dist
		 FROM vec_code v JOIN chunks c ON c.id = v.ref_id
		 WHERE c.project_id = ? AND c.status = ?
		 ORDER BY dist ASC LIMIT ?`,
		dbutil.EncodeVector(query), projectID, ChunkActive, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CodeSemanticHit
	for rows.Next() {
		var h CodeSemanticHit
		if err := rows.Scan(&h.ChunkID, &h.Distance); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
