package codestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceCallEdgesForFile_ReplacesNotAccumulates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 1, "main.go", "go", 10, 100, "v1")
	require.NoError(t, err)

	require.NoError(t, s.ReplaceCallEdgesForFile(ctx, 1, fileID, []CallEdge{{CalleeName: "foo", CallLine: 5}}))
	require.NoError(t, s.ReplaceCallEdgesForFile(ctx, 1, fileID, []CallEdge{{CalleeName: "bar", CallLine: 9}}))

	edges, err := s.CallersOf(ctx, 1, "foo")
	require.NoError(t, err)
	assert.Empty(t, edges)

	edges, err = s.CallersOf(ctx, 1, "bar")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, 9, edges[0].CallLine)
}

func TestReplaceCallEdgesForFile_NilCallerSymbolID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 1, "main.go", "go", 10, 100, "v1")
	require.NoError(t, err)

	require.NoError(t, s.ReplaceCallEdgesForFile(ctx, 1, fileID, []CallEdge{{CalleeName: "init_call", CallLine: 1}}))

	edges, err := s.CallersOf(ctx, 1, "init_call")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Nil(t, edges[0].CallerSymbolID)
}
