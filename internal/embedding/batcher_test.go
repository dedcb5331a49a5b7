package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatcher_EmbedAll_ReassemblesInOrder(t *testing.T) {
	b := NewBatcher(&fakeEmbedder{name: "fake"})

	texts := make([]string, maxBatchSize*2+5)
	for i := range texts {
		texts[i] = "text"
	}

	vecs, err := b.EmbedAll(context.Background(), texts, TaskDocumentRetrieval)
	require.NoError(t, err)
	require.Len(t, vecs, len(texts))
	for _, v := range vecs {
		assert.Equal(t, []float32{1, 2, 3}, v)
	}
}

func TestBatcher_EmbedAll_EmptyInputIsNoop(t *testing.T) {
	b := NewBatcher(&fakeEmbedder{name: "fake"})
	vecs, err := b.EmbedAll(context.Background(), nil, TaskDocumentRetrieval)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestBatcher_EmbedAll_PropagatesFirstError(t *testing.T) {
	b := NewBatcher(&fakeEmbedder{name: "fake", err: errors.New("provider down")})

	texts := []string{"a", "b"}
	_, err := b.EmbedAll(context.Background(), texts, TaskDocumentRetrieval)
	assert.Error(t, err)
}
