package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulens/standards-rag/config"
)

func newTestHealthService(t *testing.T, cfg *config.Config) *HealthService {
	t.Helper()
	embedder, err := NewEmbedder(cfg.Embedder)
	require.NoError(t, err)
	indexing := NewIndexingService(cfg, embedder)
	return NewHealthService(indexing, embedder, cfg)
}

func TestHealthCheckHealthy(t *testing.T) {
	cfg := testConfig(t)
	mtime := time.Now().Add(-time.Hour)
	writeCorpusDoc(t, cfg, "standard-a.txt", "Paraben is prohibited above the maximum concentration.", mtime)

	svc := newTestHealthService(t, cfg)
	status := svc.Check(context.Background())

	assert.Equal(t, "healthy", status.Status)
	assert.Empty(t, status.Error)
	assert.Equal(t, 1, status.SourcesFound)
	assert.True(t, status.IndexInitialized)
	assert.True(t, status.RetrieverCreated)
	assert.Greater(t, status.TestQueryResults, 0)
	require.NotNil(t, status.LastIndexing)
	assert.Equal(t, 1, status.LastIndexing.New)
}

func TestHealthCheckEmptyCorpus(t *testing.T) {
	cfg := testConfig(t)

	svc := newTestHealthService(t, cfg)
	status := svc.Check(context.Background())

	assert.Equal(t, "unhealthy", status.Status)
	assert.NotEmpty(t, status.Error)
	assert.Equal(t, 0, status.SourcesFound)
	assert.False(t, status.IndexInitialized)
	assert.False(t, status.RetrieverCreated)
}

func TestHealthCheckNeverPanicsOnRepeatedCalls(t *testing.T) {
	cfg := testConfig(t)
	mtime := time.Now().Add(-time.Hour)
	writeCorpusDoc(t, cfg, "standard-a.txt", "Paraben is prohibited above the maximum concentration.", mtime)

	svc := newTestHealthService(t, cfg)
	first := svc.Check(context.Background())
	second := svc.Check(context.Background())

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.SourcesFound, second.SourcesFound)
}
