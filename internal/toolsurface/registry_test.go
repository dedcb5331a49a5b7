package toolsurface

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	taskID string
	err    error
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, tool, action string, params json.RawMessage) (string, error) {
	return f.taskID, f.err
}

func echoAction(tool, name string) *Action {
	return &Action{
		Tool: tool, Name: name,
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			return Result{Text: "ok", Data: json.RawMessage(params)}, nil
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(echoAction("memory", "store")))

	a := r.Get("memory", "store")
	require.NotNil(t, a)
	assert.Equal(t, "memory", a.Tool)
}

func TestRegistry_RegisterRejectsDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(echoAction("memory", "store")))

	err := r.Register(echoAction("memory", "store"))
	assert.Error(t, err)
}

func TestRegistry_RegisterRejectsInvalidAction(t *testing.T) {
	r := NewRegistry(nil)
	err := r.Register(&Action{Tool: "memory"})
	assert.Error(t, err, "an action with no Name or Execute must fail validation")
}

func TestRegistry_InvokeUnknownAction(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Invoke(context.Background(), "memory", "missing", nil)
	assert.Error(t, err)
}

func TestRegistry_InvokeExecutesInline(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(echoAction("memory", "store")))

	result, err := r.Invoke(context.Background(), "memory", "store", json.RawMessage(`{"k":"v"}`))
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
}

func TestRegistry_InvokeLongRunningEnqueues(t *testing.T) {
	enqueuer := &fakeEnqueuer{taskID: "task-123"}
	r := NewRegistry(enqueuer)
	require.NoError(t, r.Register(&Action{
		Tool: "index", Name: "full", LongRunning: true,
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			t.Fatal("a long-running action's Execute must not run inline")
			return Result{}, nil
		},
	}))

	result, err := r.Invoke(context.Background(), "index", "full", nil)
	require.NoError(t, err)
	assert.Equal(t, "task-123", result.TaskID)
}

func TestRegistry_InvokeLongRunningWithoutEnqueuerErrors(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&Action{
		Tool: "index", Name: "full", LongRunning: true,
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			return Result{}, nil
		},
	}))

	_, err := r.Invoke(context.Background(), "index", "full", nil)
	assert.Error(t, err)
}

func TestRegistry_TruncatesOversizedResponse(t *testing.T) {
	r := NewRegistry(nil)
	big := make([]byte, maxResponseBytes+100)
	for i := range big {
		big[i] = 'a'
	}
	require.NoError(t, r.Register(&Action{
		Tool: "code", Name: "search",
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			return Result{Text: "found", Data: string(big)}, nil
		},
	}))

	result, err := r.Invoke(context.Background(), "code", "search", nil)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
}
