package types

import (
	"errors"
	"fmt"
)

// Chunk is a bounded passage of text extracted from one source document.
// Chunks are immutable once inserted into the vector index.
type Chunk struct {
	Content      string `json:"content"`
	Source       string `json:"source"`
	ChunkIndex   int    `json:"chunk_index"`
	DocumentType string `json:"document_type"`
}

// Key identifies a chunk for dedup purposes.
func (c Chunk) Key() string {
	return fmt.Sprintf("%s_%d", c.Source, c.ChunkIndex)
}

// ScoredChunk is a chunk returned from a similarity search together with
// its stored embedding and relevance score.
type ScoredChunk struct {
	Chunk  Chunk     `json:"chunk"`
	Vector []float32 `json:"-"`
	Score  float32   `json:"score"`
}

// SourceDocument is a file-backed unit of regulatory text discovered by
// the source scanner. ModifiedAt is the fingerprint used to detect edits.
type SourceDocument struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	ModifiedAt int64  `json:"modified_at"`
}

// ScanReport classifies the corpus relative to the embed manifest.
// The three sets are disjoint.
type ScanReport struct {
	New       []SourceDocument `json:"new"`
	Modified  []SourceDocument `json:"modified"`
	Unchanged []SourceDocument `json:"unchanged"`
}

// Pending returns the documents that need (re-)embedding, new first.
func (r ScanReport) Pending() []SourceDocument {
	pending := make([]SourceDocument, 0, len(r.New)+len(r.Modified))
	pending = append(pending, r.New...)
	pending = append(pending, r.Modified...)
	return pending
}

// Per-document outcomes of one indexing pass.
const (
	DocIndexed = "indexed"
	DocSkipped = "skipped"
	DocFailed  = "failed"
)

// DocumentResult records what happened to a single source document
// during an indexing pass.
type DocumentResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Chunks int    `json:"chunks"`
}

// IndexingSummary aggregates the per-stage results of one indexing pass
// so callers and the health check can inspect what was skipped or failed
// without any stage ever aborting the pass.
type IndexingSummary struct {
	New         int              `json:"new"`
	Modified    int              `json:"modified"`
	Unchanged   int              `json:"unchanged"`
	Documents   []DocumentResult `json:"documents,omitempty"`
	BatchErrors []string         `json:"batch_errors,omitempty"`
	CompletedAt int64            `json:"completed_at"`
}

// IndexedChunks returns the number of chunks inserted during the pass.
func (s IndexingSummary) IndexedChunks() int {
	total := 0
	for _, d := range s.Documents {
		if d.Status == DocIndexed {
			total += d.Chunks
		}
	}
	return total
}

var (
	// ErrNoCorpus is returned when the corpus directory holds no eligible
	// documents and no index exists yet. It is the only hard failure the
	// subsystem surfaces to callers.
	ErrNoCorpus = errors.New("no source documents found and no existing index")

	// ErrIndexUnavailable marks retrieval attempted before the vector
	// index could be initialized.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
