package codestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceImportsForFile_ReplacesNotAccumulates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 1, "main.go", "go", 10, 100, "v1")
	require.NoError(t, err)

	require.NoError(t, s.ReplaceImportsForFile(ctx, 1, fileID, []Import{{ImportPath: "fmt"}}))
	require.NoError(t, s.ReplaceImportsForFile(ctx, 1, fileID, []Import{{ImportPath: "os"}}))

	importers, err := s.ImportersOf(ctx, 1, "fmt")
	require.NoError(t, err)
	assert.Empty(t, importers)

	importers, err = s.ImportersOf(ctx, 1, "os")
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, importers)
}

func TestImportersOf_DistinctAcrossMultipleFiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.UpsertFile(ctx, 1, "a.go", "go", 10, 100, "v1")
	require.NoError(t, err)
	b, err := s.UpsertFile(ctx, 1, "b.go", "go", 10, 100, "v1")
	require.NoError(t, err)

	require.NoError(t, s.ReplaceImportsForFile(ctx, 1, a, []Import{{ImportPath: "context"}}))
	require.NoError(t, s.ReplaceImportsForFile(ctx, 1, b, []Import{{ImportPath: "context"}}))

	importers, err := s.ImportersOf(ctx, 1, "context")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, importers)
}
