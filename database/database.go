package database

import (
	"context"
	"fmt"

	"github.com/regulens/standards-rag/config"
	"github.com/regulens/standards-rag/types"
)

// VectorIndex is a persistent embedding store supporting incremental
// batch insertion and similarity search. Entries are never updated in
// place; re-embedding a document goes through DeleteBySource followed
// by fresh inserts.
type VectorIndex interface {
	// InsertBatch appends chunks with their embeddings. The batch is
	// committed as a whole; earlier committed batches are never rolled
	// back by a later failure.
	InsertBatch(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error

	// Search returns the limit nearest chunks to the query embedding,
	// most similar first, including their stored vectors.
	Search(ctx context.Context, queryEmbedding []float32, limit int) ([]types.ScoredChunk, error)

	// DeleteBySource removes every chunk belonging to one source document.
	DeleteBySource(ctx context.Context, source string) error

	// Count reports the number of stored chunks.
	Count(ctx context.Context) (int, error)
}

// NewVectorIndex opens the backend selected by the configuration.
func NewVectorIndex(cfg *config.Config) (VectorIndex, error) {
	switch cfg.Index.Backend {
	case "", "local":
		return OpenOrCreateLocalIndex(cfg.IndexDir)
	case "weaviate":
		return NewWeaviateStore(cfg.WeaviateStoreConfig)
	default:
		return nil, fmt.Errorf("unknown index backend: %s", cfg.Index.Backend)
	}
}
