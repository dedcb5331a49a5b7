package codestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceChunksForFile_ReparseDropsStaleChunks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 1, "main.go", "go", 10, 100, "v1")
	require.NoError(t, err)

	firstIDs, err := s.ReplaceChunksForFile(ctx, 1, fileID, []Chunk{
		{StartLine: 1, EndLine: 5, Content: "func a() {}", Language: "go"},
		{StartLine: 6, EndLine: 10, Content: "func b() {}", Language: "go"},
	})
	require.NoError(t, err)
	require.Len(t, firstIDs, 2)

	secondIDs, err := s.ReplaceChunksForFile(ctx, 1, fileID, []Chunk{
		{StartLine: 1, EndLine: 8, Content: "func ab() {}", Language: "go"},
	})
	require.NoError(t, err)
	require.Len(t, secondIDs, 1)

	n, err := s.CountActiveChunks(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "reparse must replace, not accumulate, a file's chunks")

	chunks, err := s.ChunksByIDs(ctx, append(firstIDs, secondIDs...))
	require.NoError(t, err)
	assert.Len(t, chunks, 1, "old chunk ids must no longer resolve")
}

func TestKeywordSearch_FindsIndexedContent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 1, "main.go", "go", 10, 100, "v1")
	require.NoError(t, err)
	_, err = s.ReplaceChunksForFile(ctx, 1, fileID, []Chunk{
		{StartLine: 1, EndLine: 5, Content: "func computeChecksum() uint32", Language: "go"},
	})
	require.NoError(t, err)

	hits, err := s.KeywordSearch(ctx, 1, "computeChecksum", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestKeywordSearch_ScopedToProjectAndActiveStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 2, "other.go", "go", 10, 100, "v1")
	require.NoError(t, err)
	_, err = s.ReplaceChunksForFile(ctx, 2, fileID, []Chunk{
		{StartLine: 1, EndLine: 5, Content: "func computeChecksum() uint32", Language: "go"},
	})
	require.NoError(t, err)

	hits, err := s.KeywordSearch(ctx, 1, "computeChecksum", 10)
	require.NoError(t, err)
	assert.Empty(t, hits, "a hit from another project must not leak across scopes")
}

func TestChunkFilePath(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 1, "main.go", "go", 10, 100, "v1")
	require.NoError(t, err)
	ids, err := s.ReplaceChunksForFile(ctx, 1, fileID, []Chunk{
		{StartLine: 1, EndLine: 5, Content: "package main", Language: "go"},
	})
	require.NoError(t, err)

	path, err := s.ChunkFilePath(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "main.go", path)
}

func TestFuzzyCandidates_OnlyActiveChunks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 1, "main.go", "go", 10, 100, "v1")
	require.NoError(t, err)
	_, err = s.ReplaceChunksForFile(ctx, 1, fileID, []Chunk{
		{StartLine: 1, EndLine: 5, Content: "package main", Language: "go"},
	})
	require.NoError(t, err)

	candidates, err := s.FuzzyCandidates(ctx, 1)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "main.go", candidates[0].FilePath)
}
