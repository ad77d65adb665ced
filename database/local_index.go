package database

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/regulens/standards-rag/types"
)

const localIndexFile = "chunks.gob"

// LocalIndex is a file-backed flat vector index using brute-force cosine
// similarity. The whole index is held in memory and rewritten to disk on
// every mutation; corpus sizes are bounded by the document set, so this
// stays cheap enough in practice.
type LocalIndex struct {
	mu      sync.RWMutex
	path    string
	chunks  []types.Chunk
	vectors [][]float32
}

type localIndexData struct {
	Chunks  []types.Chunk
	Vectors [][]float32
}

// OpenOrCreateLocalIndex opens the persisted index under dir, creating
// an empty one when none exists. Calling it twice with no intervening
// writes yields identical contents.
func OpenOrCreateLocalIndex(dir string) (*LocalIndex, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	idx := &LocalIndex{path: filepath.Join(dir, localIndexFile)}

	file, err := os.Open(idx.path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer file.Close()

	var data localIndexData
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode index file: %w", err)
	}
	idx.chunks = data.Chunks
	idx.vectors = data.Vectors
	return idx, nil
}

// Exists reports whether a persisted index is already present under dir.
func Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, localIndexFile))
	return err == nil && info.Size() > 0
}

func (idx *LocalIndex) InsertBatch(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunks and embeddings length mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.chunks = append(idx.chunks, chunks...)
	idx.vectors = append(idx.vectors, embeddings...)
	if err := idx.persist(); err != nil {
		// Roll the in-memory state back so a failed write cannot leave
		// memory and disk disagreeing.
		idx.chunks = idx.chunks[:len(idx.chunks)-len(chunks)]
		idx.vectors = idx.vectors[:len(idx.vectors)-len(embeddings)]
		return err
	}
	return nil
}

func (idx *LocalIndex) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]types.ScoredChunk, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]types.ScoredChunk, 0, len(idx.chunks))
	for i := range idx.chunks {
		results = append(results, types.ScoredChunk{
			Chunk:  idx.chunks[i],
			Vector: idx.vectors[i],
			Score:  CosineSimilarity(queryEmbedding, idx.vectors[i]),
		})
	}
	// Stable sort keeps insertion order among equal scores, which makes
	// repeated searches over an unchanged index deterministic.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (idx *LocalIndex) DeleteBySource(ctx context.Context, source string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	kept := idx.chunks[:0]
	keptVecs := idx.vectors[:0]
	for i := range idx.chunks {
		if idx.chunks[i].Source != source {
			kept = append(kept, idx.chunks[i])
			keptVecs = append(keptVecs, idx.vectors[i])
		}
	}
	idx.chunks = kept
	idx.vectors = keptVecs
	return idx.persist()
}

func (idx *LocalIndex) Count(ctx context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks), nil
}

// persist rewrites the index file. Written to a temp file first so an
// interrupted write cannot corrupt the previous index.
func (idx *LocalIndex) persist() error {
	tmp := idx.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	data := localIndexData{Chunks: idx.chunks, Vectors: idx.vectors}
	if err := gob.NewEncoder(file).Encode(&data); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close index file: %w", err)
	}
	return os.Rename(tmp, idx.path)
}

// CosineSimilarity computes the cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
