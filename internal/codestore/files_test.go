package codestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertFile_RefreshesOnConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.UpsertFile(ctx, 1, "main.go", "go", 100, 1000, "abc")
	require.NoError(t, err)

	id2, err := s.UpsertFile(ctx, 1, "main.go", "go", 150, 2000, "def")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	fp, err := s.FileFingerprint(ctx, 1, "main.go")
	require.NoError(t, err)
	assert.Equal(t, "def", fp)
}

func TestFileFingerprint_MissingReturnsEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fp, err := s.FileFingerprint(ctx, 1, "missing.go")
	require.NoError(t, err)
	assert.Equal(t, "", fp)
}

func TestFileExists(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	exists, err := s.FileExists(ctx, 1, "main.go")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.UpsertFile(ctx, 1, "main.go", "go", 100, 1000, "abc")
	require.NoError(t, err)

	exists, err = s.FileExists(ctx, 1, "main.go")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteFile_CascadesChunks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fileID, err := s.UpsertFile(ctx, 1, "main.go", "go", 100, 1000, "abc")
	require.NoError(t, err)

	_, err = s.ReplaceChunksForFile(ctx, 1, fileID, []Chunk{
		{StartLine: 1, EndLine: 10, Content: "package main", Language: "go"},
	})
	require.NoError(t, err)

	n, err := s.CountActiveChunks(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.DeleteFile(ctx, 1, "main.go"))

	n, err = s.CountActiveChunks(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "deleting a file must cascade its chunks")
}

func TestListFiles_ScopedToProject(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertFile(ctx, 1, "a.go", "go", 10, 100, "h1")
	require.NoError(t, err)
	_, err = s.UpsertFile(ctx, 2, "b.go", "go", 10, 100, "h2")
	require.NoError(t, err)

	files, err := s.ListFiles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.go", files[0].Path)
}
