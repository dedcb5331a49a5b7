package codestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetChunkEmbedding_UpsertsOnConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 1, "main.go", "go", 10, 100, "v1")
	require.NoError(t, err)
	ids, err := s.ReplaceChunksForFile(ctx, 1, fileID, []Chunk{{StartLine: 1, EndLine: 1, Content: "x", Language: "go"}})
	require.NoError(t, err)
	chunkID := ids[0]

	require.NoError(t, s.SetChunkEmbedding(ctx, chunkID, []float32{1, 0, 0}))
	require.NoError(t, s.SetChunkEmbedding(ctx, chunkID, []float32{0, 1, 0, 0}))

	dim, err := s.ChunkEmbeddingDimension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, dim)
}

func TestChunkEmbeddingDimension_EmptyTableIsZero(t *testing.T) {
	s := openTestStore(t)
	dim, err := s.ChunkEmbeddingDimension(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, dim)
}

func TestSemanticSearch_OrdersByDistance(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 1, "main.go", "go", 10, 100, "v1")
	require.NoError(t, err)
	ids, err := s.ReplaceChunksForFile(ctx, 1, fileID, []Chunk{
		{StartLine: 1, EndLine: 1, Content: "near", Language: "go"},
		{StartLine: 2, EndLine: 2, Content: "far", Language: "go"},
	})
	require.NoError(t, err)

	require.NoError(t, s.SetChunkEmbedding(ctx, ids[0], []float32{1, 0, 0}))
	require.NoError(t, s.SetChunkEmbedding(ctx, ids[1], []float32{0, 1, 0}))

	hits, err := s.SemanticSearch(ctx, 1, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, ids[0], hits[0].ChunkID)
}

func TestRebuildForDimensionChange_ReenqueuesActiveChunks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 1, "main.go", "go", 10, 100, "v1")
	require.NoError(t, err)
	ids, err := s.ReplaceChunksForFile(ctx, 1, fileID, []Chunk{{StartLine: 1, EndLine: 1, Content: "x", Language: "go"}})
	require.NoError(t, err)
	require.NoError(t, s.SetChunkEmbedding(ctx, ids[0], []float32{1, 0, 0}))
	require.NoError(t, s.MarkEmbedDone(ctx, ids[0]))

	n, err := s.RebuildForDimensionChange(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	dim, err := s.ChunkEmbeddingDimension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, dim, "the rebuilt table must be empty of stale-dimension rows")
}
