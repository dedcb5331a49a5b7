package mainstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkCreateGoals_CapsAtMax(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	projectID, err := s.EnsureProject(ctx, "/home/dev/widget")
	require.NoError(t, err)

	inputs := make([]NewGoalInput, MaxBulkGoals+1)
	for i := range inputs {
		inputs[i] = NewGoalInput{Title: "goal"}
	}

	_, err = s.BulkCreateGoals(ctx, projectID, inputs)
	assert.Error(t, err)
}

func TestBulkCreateGoals_WithMilestones(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	projectID, err := s.EnsureProject(ctx, "/home/dev/widget")
	require.NoError(t, err)

	ids, err := s.BulkCreateGoals(ctx, projectID, []NewGoalInput{
		{Title: "ship v1", Priority: 5, Milestones: []string{"design", "build", "release"}},
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	goals, err := s.ListGoals(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	require.Len(t, goals[0].Milestones, 3)
	assert.Equal(t, "design", goals[0].Milestones[0].Title)
	assert.Equal(t, 1, goals[0].Milestones[0].Sequence)
}

func TestListGoals_OrderedByPriorityDescending(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	projectID, err := s.EnsureProject(ctx, "/home/dev/widget")
	require.NoError(t, err)

	_, err = s.BulkCreateGoals(ctx, projectID, []NewGoalInput{
		{Title: "low", Priority: 1},
		{Title: "high", Priority: 9},
		{Title: "mid", Priority: 5},
	})
	require.NoError(t, err)

	goals, err := s.ListGoals(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, "high", goals[0].Title)
	assert.Equal(t, "mid", goals[1].Title)
	assert.Equal(t, "low", goals[2].Title)
}

func TestListGoals_ScopedToProject(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p1, err := s.EnsureProject(ctx, "/home/dev/one")
	require.NoError(t, err)
	p2, err := s.EnsureProject(ctx, "/home/dev/two")
	require.NoError(t, err)

	_, err = s.BulkCreateGoals(ctx, p1, []NewGoalInput{{Title: "p1 goal"}})
	require.NoError(t, err)
	_, err = s.BulkCreateGoals(ctx, p2, []NewGoalInput{{Title: "p2 goal"}})
	require.NoError(t, err)

	goals, err := s.ListGoals(ctx, p1)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "p1 goal", goals[0].Title)
}
