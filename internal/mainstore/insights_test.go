package mainstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertInsight_RefreshesExpiryOnConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	id1, err := s.UpsertInsight(ctx, 1, "insight_tool_chain", "key-1", "first", now.Add(time.Hour))
	require.NoError(t, err)

	id2, err := s.UpsertInsight(ctx, 1, "insight_tool_chain", "key-1", "second", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	insights, err := s.ActiveInsights(ctx, 1, now)
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, "second", insights[0].Content)
}

func TestActiveInsights_ExcludesExpiredAndDismissed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := s.UpsertInsight(ctx, 1, "insight_tool_chain", "expired", "stale", now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = s.UpsertInsight(ctx, 1, "insight_tool_chain", "live", "fresh", now.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.DismissInsight(ctx, 1, "insight_tool_chain", "live"))

	_, err = s.UpsertInsight(ctx, 1, "insight_tool_chain", "visible", "visible", now.Add(time.Hour))
	require.NoError(t, err)

	insights, err := s.ActiveInsights(ctx, 1, now)
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, "visible", insights[0].DedupKey)
}

func TestDismissInsight_NotFoundErrors(t *testing.T) {
	s := openTestStore(t)
	err := s.DismissInsight(context.Background(), 1, "insight_tool_chain", "missing")
	assert.Error(t, err)
}

func TestInsertObservation_AndActiveObservations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.InsertObservation(ctx, 1, "note", "expired", now.Add(-time.Minute)))
	require.NoError(t, s.InsertObservation(ctx, 1, "note", "current", now.Add(time.Hour)))

	obs, err := s.ActiveObservations(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"current"}, obs)
}
