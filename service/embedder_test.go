package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEmbedderDeterministic(t *testing.T) {
	ctx := context.Background()
	embedder := NewLocalEmbedder(64)

	first, err := embedder.EmbedQuery(ctx, "paraben caution warning restriction")
	require.NoError(t, err)
	second, err := embedder.EmbedQuery(ctx, "paraben caution warning restriction")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLocalEmbedderUnitNorm(t *testing.T) {
	embedder := NewLocalEmbedder(64)
	vec, err := embedder.EmbedQuery(context.Background(), "maximum concentration limit")
	require.NoError(t, err)
	require.Len(t, vec, 64)

	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestLocalEmbedderDistinguishesTexts(t *testing.T) {
	ctx := context.Background()
	embedder := NewLocalEmbedder(64)

	a, err := embedder.EmbedQuery(ctx, "paraben prohibited concentration")
	require.NoError(t, err)
	b, err := embedder.EmbedQuery(ctx, "glycerin moisturizing humectant")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalEmbedderBatchMatchesSingle(t *testing.T) {
	ctx := context.Background()
	embedder := NewLocalEmbedder(64)
	texts := []string{"first caution text", "second warning text"}

	batch, err := embedder.EmbedDocuments(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	for i, text := range texts {
		single, err := embedder.EmbedQuery(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}
