package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulens/standards-rag/config"
	"github.com/regulens/standards-rag/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.CorpusDir = filepath.Join(base, "corpus")
	cfg.IndexDir = filepath.Join(base, "index")
	cfg.Embedder = config.EmbedderConfig{Provider: "local", Dimension: 64}
	cfg.Index.Backend = "local"
	require.NoError(t, os.MkdirAll(cfg.CorpusDir, 0755))
	return cfg
}

func newTestIndexingService(t *testing.T, cfg *config.Config) *IndexingService {
	t.Helper()
	embedder, err := NewEmbedder(cfg.Embedder)
	require.NoError(t, err)
	return NewIndexingService(cfg, embedder)
}

func writeCorpusDoc(t *testing.T, cfg *config.Config, name, content string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(cfg.CorpusDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestIndexingFreshPass(t *testing.T) {
	cfg := testConfig(t)
	mtime := time.Now().Add(-time.Hour)
	writeCorpusDoc(t, cfg, "standard-a.txt", "Paraben is prohibited above the maximum concentration.", mtime)
	writeCorpusDoc(t, cfg, "standard-b.txt", "Fragrance allergens require a warning label.", mtime)

	svc := newTestIndexingService(t, cfg)
	index, err := svc.Index(context.Background())
	require.NoError(t, err)
	require.NotNil(t, index)

	summary := svc.LastSummary()
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.New)
	assert.Equal(t, 0, summary.Modified)
	assert.Equal(t, 0, summary.Unchanged)
	assert.Greater(t, summary.IndexedChunks(), 0)
	assert.Empty(t, summary.BatchErrors)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.IndexedChunks(), count)
}

func TestIndexingSecondPassInsertsNothing(t *testing.T) {
	cfg := testConfig(t)
	mtime := time.Now().Add(-time.Hour)
	writeCorpusDoc(t, cfg, "standard-a.txt", "Paraben is prohibited above the maximum concentration.", mtime)
	writeCorpusDoc(t, cfg, "standard-b.txt", "Fragrance allergens require a warning label.", mtime)

	first := newTestIndexingService(t, cfg)
	_, err := first.Index(context.Background())
	require.NoError(t, err)
	firstCount := first.LastSummary().IndexedChunks()

	// A fresh process over the same corpus and index directory.
	second := newTestIndexingService(t, cfg)
	index, err := second.Index(context.Background())
	require.NoError(t, err)

	summary := second.LastSummary()
	require.NotNil(t, summary)
	assert.Equal(t, 0, summary.New)
	assert.Equal(t, 0, summary.Modified)
	assert.Equal(t, 2, summary.Unchanged)
	assert.Equal(t, 0, summary.IndexedChunks())

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, firstCount, count)
}

func TestIndexingReembedsOnlyModifiedDocument(t *testing.T) {
	cfg := testConfig(t)
	mtime := time.Now().Add(-2 * time.Hour)
	writeCorpusDoc(t, cfg, "standard-a.txt", "Paraben is prohibited above the maximum concentration.", mtime)
	writeCorpusDoc(t, cfg, "standard-b.txt", "Old fragrance warning text.", mtime)

	first := newTestIndexingService(t, cfg)
	_, err := first.Index(context.Background())
	require.NoError(t, err)

	writeCorpusDoc(t, cfg, "standard-b.txt", "New fragrance restriction text.", mtime.Add(time.Hour))

	second := newTestIndexingService(t, cfg)
	index, err := second.Index(context.Background())
	require.NoError(t, err)

	summary := second.LastSummary()
	require.NotNil(t, summary)
	assert.Equal(t, 0, summary.New)
	assert.Equal(t, 1, summary.Modified)
	assert.Equal(t, 1, summary.Unchanged)
	require.Len(t, summary.Documents, 1)
	assert.Equal(t, "standard-b.txt", summary.Documents[0].Name)
	assert.Equal(t, types.DocIndexed, summary.Documents[0].Status)

	// Stale chunks of the modified document are gone.
	embedder, err := NewEmbedder(cfg.Embedder)
	require.NoError(t, err)
	queryVec, err := embedder.EmbedQuery(context.Background(), "fragrance")
	require.NoError(t, err)
	results, err := index.Search(context.Background(), queryVec, 0)
	require.NoError(t, err)
	for _, result := range results {
		if result.Chunk.Source == "standard-b.txt" {
			assert.NotContains(t, result.Chunk.Content, "Old fragrance")
		}
	}
}

func TestIndexingEmptyCorpusFails(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestIndexingService(t, cfg)

	_, err := svc.Index(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNoCorpus)
}

func TestIndexingEmptyCorpusWithExistingIndex(t *testing.T) {
	cfg := testConfig(t)
	mtime := time.Now().Add(-time.Hour)
	writeCorpusDoc(t, cfg, "standard-a.txt", "Paraben is prohibited above the maximum concentration.", mtime)

	first := newTestIndexingService(t, cfg)
	_, err := first.Index(context.Background())
	require.NoError(t, err)

	// Corpus disappears but the persisted index remains usable.
	require.NoError(t, os.Remove(filepath.Join(cfg.CorpusDir, "standard-a.txt")))

	second := newTestIndexingService(t, cfg)
	index, err := second.Index(context.Background())
	require.NoError(t, err)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}

func TestIndexingSkipsEmptyDocument(t *testing.T) {
	cfg := testConfig(t)
	mtime := time.Now().Add(-time.Hour)
	writeCorpusDoc(t, cfg, "empty.txt", "   \n  ", mtime)
	writeCorpusDoc(t, cfg, "standard-a.txt", "Paraben is prohibited above the maximum concentration.", mtime)

	svc := newTestIndexingService(t, cfg)
	_, err := svc.Index(context.Background())
	require.NoError(t, err)

	summary := svc.LastSummary()
	require.NotNil(t, summary)
	require.Len(t, summary.Documents, 2)

	byName := make(map[string]types.DocumentResult)
	for _, doc := range summary.Documents {
		byName[doc.Name] = doc
	}
	assert.Equal(t, types.DocSkipped, byName["empty.txt"].Status)
	assert.Equal(t, types.DocIndexed, byName["standard-a.txt"].Status)

	// Skipped documents get no manifest entry, so they are re-examined
	// on the next pass.
	manifest := NewManifestService(cfg.IndexDir).Load()
	_, ok := manifest["empty.txt"]
	assert.False(t, ok)
	_, ok = manifest["standard-a.txt"]
	assert.True(t, ok)
}

// brokenEmbedder fails every document embedding, simulating a remote
// provider outage mid-pass.
type brokenEmbedder struct {
	inner Embedder
}

func (e *brokenEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.inner.EmbedQuery(ctx, text)
}

func (e *brokenEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedding provider unavailable")
}

func TestIndexingFailedBatchRetriedNextPass(t *testing.T) {
	cfg := testConfig(t)
	mtime := time.Now().Add(-time.Hour)
	writeCorpusDoc(t, cfg, "standard-a.txt", "Paraben is prohibited above the maximum concentration.", mtime)

	broken := NewIndexingService(cfg, &brokenEmbedder{inner: NewLocalEmbedder(64)})
	index, err := broken.Index(context.Background())
	require.NoError(t, err)

	summary := broken.LastSummary()
	require.NotNil(t, summary)
	require.Len(t, summary.Documents, 1)
	assert.Equal(t, types.DocFailed, summary.Documents[0].Status)
	assert.NotEmpty(t, summary.BatchErrors)
	assert.Equal(t, 0, summary.IndexedChunks())

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// A failed document gets no manifest entry, so a later pass with a
	// working embedder re-embeds it from scratch without duplicates.
	manifest := NewManifestService(cfg.IndexDir).Load()
	_, ok := manifest["standard-a.txt"]
	assert.False(t, ok)

	recovered := newTestIndexingService(t, cfg)
	index, err = recovered.Index(context.Background())
	require.NoError(t, err)

	summary = recovered.LastSummary()
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.New)
	require.Len(t, summary.Documents, 1)
	assert.Equal(t, types.DocIndexed, summary.Documents[0].Status)

	count, err = index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.IndexedChunks(), count)
}

func TestReindexStreamsProgress(t *testing.T) {
	cfg := testConfig(t)
	mtime := time.Now().Add(-time.Hour)
	writeCorpusDoc(t, cfg, "standard-a.txt", "Paraben is prohibited above the maximum concentration.", mtime)
	writeCorpusDoc(t, cfg, "standard-b.txt", "Fragrance allergens require a warning label.", mtime)

	svc := newTestIndexingService(t, cfg)

	var seen []string
	summary, err := svc.Reindex(context.Background(), func(p types.IndexingProgress) {
		seen = append(seen, p.Document)
		assert.Equal(t, 2, p.Total)
		assert.True(t, strings.HasPrefix(p.Message, "Indexing "))
	})
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, []string{"standard-a.txt", "standard-b.txt"}, seen)
}

func TestInvalidatePicksUpNewDocuments(t *testing.T) {
	cfg := testConfig(t)
	mtime := time.Now().Add(-time.Hour)
	writeCorpusDoc(t, cfg, "standard-a.txt", "Paraben is prohibited above the maximum concentration.", mtime)

	svc := newTestIndexingService(t, cfg)
	_, err := svc.Index(context.Background())
	require.NoError(t, err)

	writeCorpusDoc(t, cfg, "standard-b.txt", "Fragrance allergens require a warning label.", mtime)

	// Without invalidation the cached handle is reused as-is.
	_, err = svc.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, svc.LastSummary().New)

	svc.Invalidate()
	_, err = svc.Index(context.Background())
	require.NoError(t, err)
	summary := svc.LastSummary()
	assert.Equal(t, 1, summary.New)
	assert.Equal(t, 1, summary.Unchanged)
}
