package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/regulens/standards-rag/config"
	"github.com/regulens/standards-rag/types"
)

const BATCH_SIZE = 50

var (
	CHUNK_CLASS        = "StandardChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "documentType", DataType: []string{"text"}},
		},
		// Vectors are supplied by the configured embedder, never by a
		// server-side vectorizer module.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
)

// WeaviateStore backs the vector index with a Weaviate instance.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(cfg config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	clientCfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		clientCfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
	}
	client, err := weaviate.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	// Create the chunk class if it doesn't exist, so opening is idempotent.
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create %s class: %v", CHUNK_CLASS, err)
		}
	}
	return &WeaviateStore{client: client}, nil
}

func (s *WeaviateStore) InsertBatch(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunks and embeddings length mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class: CHUNK_CLASS,
				Properties: map[string]interface{}{
					"content":      chunks[j].Content,
					"source":       chunks[j].Source,
					"chunkIndex":   chunks[j].ChunkIndex,
					"documentType": chunks[j].DocumentType,
				},
				Vector: embeddings[j],
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
	}
	return nil
}

func (s *WeaviateStore) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]types.ScoredChunk, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "chunkIndex"},
		{Name: "documentType"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "vector"}}},
	}
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(queryEmbedding)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var scored []types.ScoredChunk
	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			sc := types.ScoredChunk{
				Chunk: types.Chunk{
					Content:      stringValue(obj["content"]),
					Source:       stringValue(obj["source"]),
					ChunkIndex:   intValue(obj["chunkIndex"]),
					DocumentType: stringValue(obj["documentType"]),
				},
			}
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				if distance, ok := additional["distance"].(float64); ok {
					// Weaviate reports cosine distance; callers rank by similarity.
					sc.Score = 1 - float32(distance)
				}
				sc.Vector = parseVector(additional["vector"])
			}
			scored = append(scored, sc)
		}
	}
	return scored, nil
}

func (s *WeaviateStore) DeleteBySource(ctx context.Context, source string) error {
	where := filters.Where().
		WithPath([]string{"source"}).
		WithOperator(filters.Equal).
		WithValueString(source)

	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(CHUNK_CLASS).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %v", source, err)
	}
	return nil
}

func (s *WeaviateStore) Count(ctx context.Context) (int, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(CHUNK_CLASS).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if result.Errors != nil {
		return 0, fmt.Errorf("count failed: %v", result.Errors[0].Message)
	}
	if data, ok := result.Data["Aggregate"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok && len(data) > 0 {
		if meta, ok := data[0].(map[string]interface{})["meta"].(map[string]interface{}); ok {
			if count, ok := meta["count"].(float64); ok {
				return int(count), nil
			}
		}
	}
	return 0, nil
}

// Helper functions

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func intValue(v interface{}) int {
	f, _ := v.(float64)
	return int(f)
}

func parseVector(v interface{}) []float32 {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	vec := make([]float32, len(arr))
	for i, item := range arr {
		f, _ := item.(float64)
		vec[i] = float32(f)
	}
	return vec
}
