package mainstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertDocumentation_UpdatesOnConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertDocumentation(ctx, 1, "README.md", "Readme", "first summary"))
	require.NoError(t, s.UpsertDocumentation(ctx, 1, "README.md", "Readme", "second summary"))

	docs, err := s.ListDocumentation(ctx, 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "second summary", docs[0].Summary)
}

func TestListDocumentation_OrderedByPathAndScoped(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertDocumentation(ctx, 1, "b.md", "B", "b"))
	require.NoError(t, s.UpsertDocumentation(ctx, 1, "a.md", "A", "a"))
	require.NoError(t, s.UpsertDocumentation(ctx, 2, "c.md", "C", "c"))

	docs, err := s.ListDocumentation(ctx, 1)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.md", docs[0].Path)
	assert.Equal(t, "b.md", docs[1].Path)
}
