package service

import (
	"context"
	"fmt"

	"github.com/regulens/standards-rag/config"
	"github.com/regulens/standards-rag/types"
)

// Canned query exercising the retrieval chain end to end.
const healthTestQuery = "ingredient caution warning restriction limit"

// HealthService runs an end-to-end self-test of the retrieval chain for
// operators. It never returns an error; every failure lands in the
// status record.
type HealthService struct {
	indexing *IndexingService
	embedder Embedder
	scanner  *ScannerService
	cfg      *config.Config
}

func NewHealthService(indexing *IndexingService, embedder Embedder, cfg *config.Config) *HealthService {
	return &HealthService{
		indexing: indexing,
		embedder: embedder,
		scanner:  NewScannerService(cfg.CorpusDir),
		cfg:      cfg,
	}
}

func (s *HealthService) Check(ctx context.Context) types.HealthStatus {
	status := types.HealthStatus{Status: "healthy"}

	docs, err := s.scanner.ListDocuments()
	if err != nil {
		return unhealthy(status, fmt.Sprintf("corpus scan failed: %v", err))
	}
	status.SourcesFound = len(docs)

	index, err := s.indexing.Index(ctx)
	if err != nil {
		return unhealthy(status, fmt.Sprintf("index initialization failed: %v", err))
	}
	status.IndexInitialized = true
	status.LastIndexing = s.indexing.LastSummary()

	retriever := NewRetriever(index, s.embedder, s.cfg.Retrieval)
	status.RetrieverCreated = true

	results, err := retriever.Retrieve(ctx, healthTestQuery)
	if err != nil {
		return unhealthy(status, fmt.Sprintf("test query failed: %v", err))
	}
	status.TestQueryResults = len(results)

	return status
}

func unhealthy(status types.HealthStatus, message string) types.HealthStatus {
	status.Status = "unhealthy"
	status.Error = message
	return status
}
