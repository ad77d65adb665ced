package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/regulens/standards-rag/config"
	"github.com/regulens/standards-rag/database"
	"github.com/regulens/standards-rag/types"
)

// ProgressFunc receives per-document progress while an indexing pass runs.
type ProgressFunc func(types.IndexingProgress)

// IndexingService owns the process-wide vector index handle. The first
// caller triggers open-or-create plus one incremental indexing pass;
// later callers reuse the cached handle until Invalidate. Initialization
// mutates persisted storage, so racing first callers are serialized by
// the mutex.
type IndexingService struct {
	cfg      *config.Config
	embedder Embedder
	manifest *ManifestService
	scanner  *ScannerService
	extract  *ExtractService
	chunker  *ChunkService

	mu          sync.Mutex
	index       database.VectorIndex
	lastSummary *types.IndexingSummary
}

func NewIndexingService(cfg *config.Config, embedder Embedder) *IndexingService {
	return &IndexingService{
		cfg:      cfg,
		embedder: embedder,
		manifest: NewManifestService(cfg.IndexDir),
		scanner:  NewScannerService(cfg.CorpusDir),
		extract:  NewExtractService(),
		chunker:  NewChunkService(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap),
	}
}

// Index returns the shared index handle, initializing it on first use.
func (s *IndexingService) Index(ctx context.Context) (database.VectorIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		return s.index, nil
	}
	return s.initialize(ctx, nil)
}

// Reindex drops the cached handle and runs a fresh incremental pass,
// streaming per-document progress when a callback is provided.
func (s *IndexingService) Reindex(ctx context.Context, progress ProgressFunc) (*types.IndexingSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = nil
	if _, err := s.initialize(ctx, progress); err != nil {
		return nil, err
	}
	return s.lastSummary, nil
}

// Invalidate clears the cached handle so the next caller re-scans the
// corpus, e.g. after an operator drops new documents into it.
func (s *IndexingService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = nil
}

// LastSummary returns the result of the most recent indexing pass, or
// nil when none has run yet.
func (s *IndexingService) LastSummary() *types.IndexingSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSummary
}

// initialize opens the index and embeds whatever the scanner reports as
// new or modified. Must be called with the mutex held.
func (s *IndexingService) initialize(ctx context.Context, progress ProgressFunc) (database.VectorIndex, error) {
	manifest := s.manifest.Load()
	report, err := s.scanner.Scan(manifest)
	if err != nil {
		return nil, err
	}

	index, err := database.NewVectorIndex(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIndexUnavailable, err)
	}

	total := len(report.New) + len(report.Modified) + len(report.Unchanged)
	if total == 0 {
		count, err := index.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrIndexUnavailable, err)
		}
		if count == 0 {
			return nil, types.ErrNoCorpus
		}
		// Empty corpus but a populated index: trust the index as-is.
	}

	summary := &types.IndexingSummary{
		New:       len(report.New),
		Modified:  len(report.Modified),
		Unchanged: len(report.Unchanged),
	}
	pending := report.Pending()
	for i, doc := range pending {
		if progress != nil {
			progress(types.IndexingProgress{
				Status:    "processing",
				Message:   fmt.Sprintf("Indexing %s", doc.Name),
				Document:  doc.Name,
				Processed: i,
				Total:     len(pending),
			})
		}
		result := s.indexDocument(ctx, index, manifest, doc, summary)
		summary.Documents = append(summary.Documents, result)
	}

	summary.CompletedAt = time.Now().Unix()
	log.Printf("Indexing pass complete: %d new, %d modified, %d unchanged, %d chunks inserted",
		summary.New, summary.Modified, summary.Unchanged, summary.IndexedChunks())

	s.index = index
	s.lastSummary = summary
	return index, nil
}

// indexDocument extracts, chunks, embeds and inserts one document. Any
// failure is recorded on the result instead of aborting the pass; the
// manifest entry is written only after every batch committed, so failed
// documents are retried on the next scan.
func (s *IndexingService) indexDocument(
	ctx context.Context,
	index database.VectorIndex,
	manifest map[string]int64,
	doc types.SourceDocument,
	summary *types.IndexingSummary,
) types.DocumentResult {
	fingerprint, hasManifestEntry := manifest[doc.Name]
	wasModified := hasManifestEntry && fingerprint != doc.ModifiedAt

	text := s.extract.ExtractText(doc)
	if text == "" {
		return types.DocumentResult{Name: doc.Name, Status: types.DocSkipped, Reason: "empty or unreadable"}
	}

	chunks := s.chunker.ChunksFor(text, doc.Name, s.cfg.Index.DocumentType)
	if len(chunks) == 0 {
		return types.DocumentResult{Name: doc.Name, Status: types.DocSkipped, Reason: "no chunks produced"}
	}

	// Delete-then-reinsert keeps a modified document's stale chunks from
	// lingering next to the fresh ones. Also run for documents whose
	// previous pass failed mid-way, so retries never duplicate chunks.
	if wasModified || !hasManifestEntry {
		if err := index.DeleteBySource(ctx, doc.Name); err != nil {
			log.Printf("Warning: failed to delete stale chunks for %s: %v", doc.Name, err)
			return types.DocumentResult{Name: doc.Name, Status: types.DocFailed, Reason: err.Error()}
		}
	}

	batchSize := s.cfg.Index.BatchSize
	inserted := 0
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}
		embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			reason := fmt.Sprintf("embedding batch %d-%d: %v", start, end, err)
			log.Printf("Warning: %s (%s)", reason, doc.Name)
			summary.BatchErrors = append(summary.BatchErrors, fmt.Sprintf("%s: %s", doc.Name, reason))
			return types.DocumentResult{Name: doc.Name, Status: types.DocFailed, Reason: reason, Chunks: inserted}
		}
		if err := index.InsertBatch(ctx, batch, embeddings); err != nil {
			reason := fmt.Sprintf("inserting batch %d-%d: %v", start, end, err)
			log.Printf("Warning: %s (%s)", reason, doc.Name)
			summary.BatchErrors = append(summary.BatchErrors, fmt.Sprintf("%s: %s", doc.Name, reason))
			return types.DocumentResult{Name: doc.Name, Status: types.DocFailed, Reason: reason, Chunks: inserted}
		}
		inserted += len(batch)
	}

	manifest[doc.Name] = doc.ModifiedAt
	if err := s.manifest.Save(manifest); err != nil {
		log.Printf("Warning: failed to save manifest after %s: %v", doc.Name, err)
	}
	return types.DocumentResult{Name: doc.Name, Status: types.DocIndexed, Chunks: inserted}
}
