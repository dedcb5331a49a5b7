package mainstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordToolTrace_AndRecentToolTraces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordToolTrace(ctx, 1, "sess-1", "memory", "store", 12, true))
	require.NoError(t, s.RecordToolTrace(ctx, 1, "sess-1", "code", "search", 34, false))

	traces, err := s.RecentToolTraces(ctx, "sess-1", 10)
	require.NoError(t, err)
	require.Len(t, traces, 2)
	assert.Equal(t, "code", traces[0].Tool, "most recent trace must come first")
	assert.False(t, traces[0].Success)
	assert.Equal(t, "memory", traces[1].Tool)
	assert.True(t, traces[1].Success)
}

func TestRecentToolTraces_ScopedToSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordToolTrace(ctx, 1, "sess-1", "memory", "store", 1, true))
	require.NoError(t, s.RecordToolTrace(ctx, 1, "sess-2", "memory", "store", 1, true))

	traces, err := s.RecentToolTraces(ctx, "sess-1", 10)
	require.NoError(t, err)
	require.Len(t, traces, 1)
}

func TestRecentToolTraces_RespectsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordToolTrace(ctx, 1, "sess-1", "memory", "store", int64(i), true))
	}

	traces, err := s.RecentToolTraces(ctx, "sess-1", 2)
	require.NoError(t, err)
	assert.Len(t, traces, 2)
}
