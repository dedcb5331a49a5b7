package toolsurface

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConaryLabs/mira/internal/config"
	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/memory"
	"github.com/ConaryLabs/mira/internal/retrieval"
)

func newTestMemoryRegistry(t *testing.T) (*Registry, *mainstore.Store) {
	t.Helper()
	store, err := mainstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine := memory.NewEngine(store)
	facts := retrieval.NewFactRetriever(store, nil, config.Default().Scoring)

	r := NewRegistry(nil)
	require.NoError(t, RegisterMemoryActions(r, engine, facts))
	return r, store
}

func TestMemoryActions_StoreThenRecall(t *testing.T) {
	r, _ := newTestMemoryRegistry(t)
	ctx := context.Background()

	params, _ := json.Marshal(map[string]any{
		"session_id": "sess-1", "project_id": 1, "key": "pref_editor", "content": "user prefers vim",
	})
	result, err := r.Invoke(ctx, "memory", "store", params)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "pref_editor")

	recallParams, _ := json.Marshal(map[string]any{"project_id": 1, "query": "vim"})
	recallResult, err := r.Invoke(ctx, "memory", "recall", recallParams)
	require.NoError(t, err)
	assert.NotEmpty(t, recallResult.Text)
}

func TestMemoryActions_StoreRejectsInvalidParams(t *testing.T) {
	r, _ := newTestMemoryRegistry(t)
	_, err := r.Invoke(context.Background(), "memory", "store", json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestMemoryActions_ForgetArchivesFact(t *testing.T) {
	r, store := newTestMemoryRegistry(t)
	ctx := context.Background()

	id, err := store.InsertConfirmedFact(ctx, 1, "pref_editor", "user prefers vim", "preference", "explicit", "[]")
	require.NoError(t, err)

	params, _ := json.Marshal(map[string]any{"fact_id": id})
	result, err := r.Invoke(ctx, "memory", "forget", params)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "archived")
}
