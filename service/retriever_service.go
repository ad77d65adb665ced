package service

import (
	"context"
	"fmt"

	"github.com/regulens/standards-rag/config"
	"github.com/regulens/standards-rag/database"
	"github.com/regulens/standards-rag/types"
)

// Retriever wraps a vector index with diversity-aware top-K search. It is
// stateless and cheap to construct per call from a shared index handle.
type Retriever struct {
	index    database.VectorIndex
	embedder Embedder
	topK     int
	fetchK   int
	lambda   float32
}

func NewRetriever(index database.VectorIndex, embedder Embedder, cfg config.RetrievalConfig) *Retriever {
	return &Retriever{
		index:    index,
		embedder: embedder,
		topK:     cfg.TopK,
		fetchK:   cfg.FetchK,
		lambda:   cfg.Lambda,
	}
}

// Retrieve fetches fetchK nearest neighbors and re-ranks them down to
// topK with maximal marginal relevance, so near-duplicate passages from
// one document do not crowd out distinct ones.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]types.Chunk, error) {
	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	candidates, err := r.index.Search(ctx, queryVec, r.fetchK)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	selected := maximalMarginalRelevance(candidates, r.topK, r.lambda)

	chunks := make([]types.Chunk, len(selected))
	for i, idx := range selected {
		chunks[i] = candidates[idx].Chunk
	}
	return chunks, nil
}

// maximalMarginalRelevance iteratively picks the candidate maximizing
// lambda*relevance - (1-lambda)*redundancy against the already picked
// set. Ties resolve to the earlier candidate, keeping ranking
// deterministic for a fixed index.
func maximalMarginalRelevance(candidates []types.ScoredChunk, k int, lambda float32) []int {
	if k > len(candidates) {
		k = len(candidates)
	}
	selected := make([]int, 0, k)
	picked := make([]bool, len(candidates))

	for len(selected) < k {
		best := -1
		var bestScore float32
		for i := range candidates {
			if picked[i] {
				continue
			}
			var redundancy float32
			for _, j := range selected {
				if sim := database.CosineSimilarity(candidates[i].Vector, candidates[j].Vector); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*candidates[i].Score - (1-lambda)*redundancy
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best == -1 {
			break
		}
		picked[best] = true
		selected = append(selected, best)
	}
	return selected
}
