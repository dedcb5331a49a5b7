package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/ConaryLabs/mira/internal/codestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDrainer(t *testing.T, embedder Embedder) (*Drainer, *codestore.Store) {
	t.Helper()
	store, err := codestore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewDrainer(store, embedder), store
}

func seedPendingChunk(t *testing.T, store *codestore.Store, projectID int64, content string) int64 {
	t.Helper()
	ctx := context.Background()
	fileID, err := store.UpsertFile(ctx, projectID, content+".go", "go", 10, 100, "h-"+content)
	require.NoError(t, err)
	ids, err := store.ReplaceChunksForFile(ctx, projectID, fileID, []codestore.Chunk{
		{StartLine: 1, EndLine: 5, Content: content, Language: "go"},
	})
	require.NoError(t, err)
	return ids[0]
}

func TestRunCycle_EmbedsPendingChunks(t *testing.T) {
	embedder := &fakeEmbedder{name: "fake"}
	d, store := openTestDrainer(t, embedder)
	ctx := context.Background()

	seedPendingChunk(t, store, 1, "package main")

	result, err := d.RunCycle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Claimed)
	assert.Equal(t, 1, result.Done)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Pending)
}

func TestRunCycle_NoPendingIsNoop(t *testing.T) {
	embedder := &fakeEmbedder{name: "fake"}
	d, _ := openTestDrainer(t, embedder)

	result, err := d.RunCycle(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Claimed)
}

func TestRunCycle_ProviderFailureMarksFailed(t *testing.T) {
	embedder := &fakeEmbedder{name: "fake", err: errors.New("provider down")}
	d, store := openTestDrainer(t, embedder)
	ctx := context.Background()

	seedPendingChunk(t, store, 1, "package main")

	result, err := d.RunCycle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Claimed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Done)
}

func TestRunCycle_DimensionChangeRebuildsAndReenqueues(t *testing.T) {
	embedder := &fakeEmbedder{name: "fake"}
	d, store := openTestDrainer(t, embedder)
	ctx := context.Background()

	chunkID := seedPendingChunk(t, store, 1, "package main")

	result, err := d.RunCycle(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, result.Done)

	require.NoError(t, store.SetChunkEmbedding(ctx, chunkID, []float32{1, 2, 3}))

	wider := &fakeEmbedder{name: "fake-wide"}
	wider.dims = 8
	d2 := NewDrainer(store, wider)

	result, err = d2.RunCycle(ctx, 1)
	require.NoError(t, err)
	assert.True(t, result.Rebuilt, "a dimension change must trigger a vec_code rebuild")
	assert.Equal(t, 1, result.Claimed, "the rebuild must re-enqueue the active chunk")
}
