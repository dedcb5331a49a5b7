package mainstore

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

func TestEnsureProject_CreatesAndReuses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.EnsureProject(ctx, "/home/dev/widget")
	require.NoError(t, err)
	assert.NotZero(t, id1)

	id2, err := s.EnsureProject(ctx, "/home/dev/widget")
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "re-opening the same path must reuse the project row")

	id3, err := s.EnsureProject(ctx, "/home/dev/widget/")
	require.NoError(t, err)
	assert.Equal(t, id1, id3, "trailing slash must canonicalize to the same project")
}

func TestEnsureProject_RejectsSystemDirs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, dir := range []string{"/", "/etc", "/usr", "/root"} {
		_, err := s.EnsureProject(ctx, dir)
		assert.Error(t, err, "expected %s to be rejected as a project root", dir)
	}
}

func TestListProjectIDs_OrderedByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []int64
	for _, p := range []string{"/home/dev/a", "/home/dev/b", "/home/dev/c"} {
		id, err := s.EnsureProject(ctx, p)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	got, err := s.ListProjectIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids, got)
}

func TestProjectPath_NotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.ProjectPath(ctx, 9999)
	assert.Error(t, err)
}
