package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulens/standards-rag/types"
)

func testChunk(source string, index int, content string) types.Chunk {
	return types.Chunk{
		Content:      content,
		Source:       source,
		ChunkIndex:   index,
		DocumentType: "Regulatory_Standard",
	}
}

func TestLocalIndexOpenOrCreateIdempotent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	assert.False(t, Exists(dir))

	first, err := OpenOrCreateLocalIndex(dir)
	require.NoError(t, err)
	count, err := first.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, first.InsertBatch(ctx,
		[]types.Chunk{testChunk("a.pdf", 0, "caution text")},
		[][]float32{{1, 0}},
	))
	assert.True(t, Exists(dir))

	second, err := OpenOrCreateLocalIndex(dir)
	require.NoError(t, err)
	count, err = second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLocalIndexSearchOrdersByCosineSimilarity(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	idx, err := OpenOrCreateLocalIndex(dir)
	require.NoError(t, err)

	chunks := []types.Chunk{
		testChunk("a.pdf", 0, "exact match"),
		testChunk("a.pdf", 1, "orthogonal"),
		testChunk("b.pdf", 0, "close match"),
	}
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		{0.9, 0.1},
	}
	require.NoError(t, idx.InsertBatch(ctx, chunks, vectors))

	results, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact match", results[0].Chunk.Content)
	assert.Equal(t, "close match", results[1].Chunk.Content)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestLocalIndexSearchZeroLimitReturnsAll(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	idx, err := OpenOrCreateLocalIndex(dir)
	require.NoError(t, err)

	require.NoError(t, idx.InsertBatch(ctx,
		[]types.Chunk{testChunk("a.pdf", 0, "one"), testChunk("a.pdf", 1, "two")},
		[][]float32{{1, 0}, {0, 1}},
	))

	results, err := idx.Search(ctx, []float32{1, 1}, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestLocalIndexDeleteBySource(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	idx, err := OpenOrCreateLocalIndex(dir)
	require.NoError(t, err)

	require.NoError(t, idx.InsertBatch(ctx,
		[]types.Chunk{
			testChunk("keep.pdf", 0, "kept"),
			testChunk("drop.pdf", 0, "dropped"),
			testChunk("drop.pdf", 1, "also dropped"),
		},
		[][]float32{{1, 0}, {0, 1}, {0.5, 0.5}},
	))

	require.NoError(t, idx.DeleteBySource(ctx, "drop.pdf"))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Deletion persists across reopen.
	reopened, err := OpenOrCreateLocalIndex(dir)
	require.NoError(t, err)
	results, err := reopened.Search(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "keep.pdf", results[0].Chunk.Source)
}

func TestLocalIndexInsertBatchLengthMismatch(t *testing.T) {
	idx, err := OpenOrCreateLocalIndex(t.TempDir())
	require.NoError(t, err)

	err = idx.InsertBatch(context.Background(),
		[]types.Chunk{testChunk("a.pdf", 0, "one"), testChunk("a.pdf", 1, "two")},
		[][]float32{{1, 0}},
	)
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Equal(t, float32(0), CosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Equal(t, float32(0), CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}
