package mainstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertEntity_CreatesAndReturnsSameID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.UpsertEntity(ctx, 1, "file", "internal/foo.go", "foo.go")
	require.NoError(t, err)

	id2, err := s.UpsertEntity(ctx, 1, "file", "internal/foo.go", "foo.go")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestUpsertEntity_EmptyDisplayNameDoesNotBlankExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertEntity(ctx, 1, "file", "internal/foo.go", "foo.go")
	require.NoError(t, err)

	_, err = s.UpsertEntity(ctx, 1, "file", "internal/foo.go", "")
	require.NoError(t, err)

	e, err := s.GetEntity(ctx, 1, "file", "internal/foo.go")
	require.NoError(t, err)
	assert.Equal(t, "foo.go", e.DisplayName, "a blank-name upsert must not erase a known display name")
}

func TestGetEntity_NotFoundErrors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.GetEntity(ctx, 1, "file", "missing")
	assert.Error(t, err)
}
