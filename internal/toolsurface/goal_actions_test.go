package toolsurface

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConaryLabs/mira/internal/mainstore"
)

func newTestGoalRegistry(t *testing.T) *Registry {
	t.Helper()
	store, err := mainstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	r := NewRegistry(nil)
	require.NoError(t, RegisterGoalActions(r, store))
	return r
}

func TestGoalActions_CreateThenList(t *testing.T) {
	r := newTestGoalRegistry(t)
	ctx := context.Background()

	params, _ := json.Marshal(map[string]any{
		"project_id": 1,
		"goals": []map[string]any{
			{"title": "Ship v1", "description": "first release", "priority": 1},
		},
	})
	result, err := r.Invoke(ctx, "goal", "create", params)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "created 1 goals")

	listParams, _ := json.Marshal(map[string]any{"project_id": 1})
	listResult, err := r.Invoke(ctx, "goal", "list", listParams)
	require.NoError(t, err)
	assert.Contains(t, listResult.Text, "1 goals")
}

func TestGoalActions_CreateRejectsInvalidParams(t *testing.T) {
	r := newTestGoalRegistry(t)
	_, err := r.Invoke(context.Background(), "goal", "create", json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestGoalActions_ListEmptyProject(t *testing.T) {
	r := newTestGoalRegistry(t)
	params, _ := json.Marshal(map[string]any{"project_id": 99})
	result, err := r.Invoke(context.Background(), "goal", "list", params)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "0 goals")
}
