package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/regulens/standards-rag/config"
)

// Embedder turns text into fixed-length vectors. The concrete model is a
// configuration detail; the pipeline only depends on this capability.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// NewEmbedder constructs the provider selected by the configuration.
func NewEmbedder(cfg config.EmbedderConfig) (Embedder, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIEmbedder(cfg)
	case "gemini":
		return NewGeminiEmbedder(cfg)
	case "local":
		return NewLocalEmbedder(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedder provider: %s", cfg.Provider)
	}
}

// LocalEmbedder hashes word tokens into a fixed-size projection. It needs
// no network or model files, embeds identical text identically, and gives
// overlapping texts overlapping vectors, which is enough for offline
// operation, development and tests.
type LocalEmbedder struct {
	dim int
}

func NewLocalEmbedder(dimension int) *LocalEmbedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &LocalEmbedder{dim: dimension}
}

func (e *LocalEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(e.dim)] += 1
	}
	l2Normalize(vec)
	return vec, nil
}

func (e *LocalEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// l2Normalize scales a vector to unit length in place.
func l2Normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
