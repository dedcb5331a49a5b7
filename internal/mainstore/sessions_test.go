package mainstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSession_RejectsInvalidID(t *testing.T) {
	s := openTestStore(t)
	err := s.StartSession(context.Background(), "../evil", 1)
	assert.Error(t, err)
}

func TestStartSession_IdempotentOnConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.StartSession(ctx, "sess-1", 1))
	require.NoError(t, s.StartSession(ctx, "sess-1", 1))
}

func TestTouchSession_AccumulatesFilesAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.StartSession(ctx, "sess-1", 1))

	require.NoError(t, s.TouchSession(ctx, "sess-1", "a.go"))
	require.NoError(t, s.TouchSession(ctx, "sess-1", "b.go"))
	require.NoError(t, s.TouchSession(ctx, "sess-1", "a.go")) // duplicate, should not grow the list

	sessions, err := s.ActiveSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 3, sessions[0].ToolCallCount)
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, sessions[0].FilesTouched)
}

func TestTouchSession_UnknownSessionErrors(t *testing.T) {
	s := openTestStore(t)
	err := s.TouchSession(context.Background(), "missing", "a.go")
	assert.Error(t, err)
}

func TestCloseSession_OnlyTransitionsActiveSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.StartSession(ctx, "sess-1", 1))
	require.NoError(t, s.CloseSession(ctx, "sess-1", "completed", "done"))

	active, err := s.ActiveSessions(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestStaleSessions_OnlyReturnsSessionsPastCutoff(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.StartSession(ctx, "sess-1", 1))

	fresh, err := s.StaleSessions(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, fresh, "a session started moments ago must not be stale yet")

	stale, err := s.StaleSessions(ctx, time.Now().Add(StaleAfter+time.Minute))
	require.NoError(t, err)
	assert.Len(t, stale, 1)
}

func TestMaxSequencePosition_ZeroWhenNoEvents(t *testing.T) {
	s := openTestStore(t)
	max, err := s.MaxSequencePosition(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0, max)
}
