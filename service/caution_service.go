package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/regulens/standards-rag/config"
	"github.com/regulens/standards-rag/types"
)

const (
	noCautionsMessage  = "No specific regulatory cautions found for the provided ingredients."
	unavailableMessage = "Caution retrieval temporarily unavailable. Proceeding without caution data."
)

// CautionService retrieves regulatory caution statements for named
// ingredients from the indexed standards corpus. Every failure below the
// whole-call level degrades to "no cautions" instead of propagating.
type CautionService struct {
	indexing   *IndexingService
	embedder   Embedder
	retrieval  config.RetrievalConfig
	extraction config.ExtractionConfig
}

func NewCautionService(indexing *IndexingService, embedder Embedder, cfg *config.Config) *CautionService {
	return &CautionService{
		indexing:   indexing,
		embedder:   embedder,
		retrieval:  cfg.Retrieval,
		extraction: cfg.Extraction,
	}
}

// CautionsFor returns the deduplicated caution statements found for each
// ingredient. Ingredients with no matching statements are absent from the
// mapping. An unavailable retriever yields an empty mapping, never an
// error: downstream report generation proceeds without caution data.
func (s *CautionService) CautionsFor(ctx context.Context, ingredientNames []string) map[string][]string {
	cautionsMap := make(map[string][]string)

	retriever, err := s.retriever(ctx)
	if err != nil {
		log.Printf("Warning: retriever not available: %v", err)
		return cautionsMap
	}

	for _, ingredient := range ingredientNames {
		cautions, err := s.cautionsForIngredient(ctx, retriever, ingredient)
		if err != nil {
			log.Printf("Warning: error retrieving cautions for %s: %v", ingredient, err)
			continue
		}
		if len(cautions) > 0 {
			cautionsMap[ingredient] = cautions
		}
	}
	return cautionsMap
}

// CautionsAsText renders the mapping as a human-readable itemized block.
// It never fails: an internal error produces a fixed fallback sentence.
func (s *CautionService) CautionsAsText(ctx context.Context, ingredientNames []string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: caution rendering failed: %v", r)
			text = unavailableMessage
		}
	}()

	cautionsMap := s.CautionsFor(ctx, ingredientNames)
	if len(cautionsMap) == 0 {
		return noCautionsMessage
	}

	lines := []string{
		"Regulatory Standard Cautions:",
		strings.Repeat("=", 50),
	}
	// Iterate the request order so rendering is deterministic.
	for _, ingredient := range ingredientNames {
		cautions, ok := cautionsMap[ingredient]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("\n%s:", ingredient))
		for i, caution := range cautions {
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, caution))
		}
	}
	return strings.Join(lines, "\n")
}

// retriever builds a fresh retriever from the cached index handle.
// Construction is cheap; the expensive part is the guarded first
// initialization inside the indexing service.
func (s *CautionService) retriever(ctx context.Context) (*Retriever, error) {
	index, err := s.indexing.Index(ctx)
	if err != nil {
		return nil, err
	}
	return NewRetriever(index, s.embedder, s.retrieval), nil
}

// cautionsForIngredient runs the query variants for one ingredient,
// merges the hits and extracts its caution statements.
func (s *CautionService) cautionsForIngredient(ctx context.Context, retriever *Retriever, ingredient string) ([]string, error) {
	var candidates []types.Chunk
	seen := make(map[string]bool)
	failures := 0

	for _, template := range s.extraction.QueryTemplates {
		query := ingredient + " " + template
		chunks, err := retriever.Retrieve(ctx, query)
		if err != nil {
			// One failed variant does not abort the ingredient.
			log.Printf("Warning: query %q failed: %v", query, err)
			failures++
			continue
		}
		for _, chunk := range chunks {
			if !seen[chunk.Key()] {
				seen[chunk.Key()] = true
				candidates = append(candidates, chunk)
			}
		}
	}
	if failures == len(s.extraction.QueryTemplates) {
		return nil, fmt.Errorf("all %d query variants failed", failures)
	}

	var statements []string
	for _, chunk := range candidates {
		if !s.containsKeyword(strings.ToLower(chunk.Content)) {
			continue
		}
		statements = append(statements, s.extractStatements(chunk.Content, ingredient)...)
	}
	return dedupeStatements(statements), nil
}

// extractStatements pulls candidate caution statements out of one chunk
// at three granularities: sentences, lines, and paragraphs (long
// paragraphs falling back to their sentences). A statement is kept only
// if it names the ingredient and contains a caution keyword.
func (s *CautionService) extractStatements(content, ingredient string) []string {
	var kept []string

	for _, sentence := range strings.Split(content, ".") {
		if s.keepStatement(sentence, ingredient) {
			kept = append(kept, strings.TrimSpace(sentence))
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if s.keepStatement(line, ingredient) {
			kept = append(kept, strings.TrimSpace(line))
		}
	}

	for _, paragraph := range strings.Split(content, "\n\n") {
		if !s.keepStatement(paragraph, ingredient) {
			continue
		}
		trimmed := strings.TrimSpace(paragraph)
		if len(trimmed) < s.extraction.MaxParagraphLen {
			kept = append(kept, trimmed)
			continue
		}
		for _, sentence := range strings.Split(trimmed, ".") {
			if s.keepStatement(sentence, ingredient) {
				kept = append(kept, strings.TrimSpace(sentence))
			}
		}
	}
	return kept
}

func (s *CautionService) keepStatement(statement, ingredient string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(statement))
	if trimmed == "" {
		return false
	}
	return strings.Contains(trimmed, strings.ToLower(ingredient)) && s.containsKeyword(trimmed)
}

func (s *CautionService) containsKeyword(lower string) bool {
	for _, keyword := range s.extraction.CautionKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// dedupeStatements removes duplicates by lower-cased, trimmed form while
// preserving the first-seen casing and order.
func dedupeStatements(statements []string) []string {
	var unique []string
	seen := make(map[string]bool)
	for _, statement := range statements {
		normalized := strings.ToLower(strings.TrimSpace(statement))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		unique = append(unique, strings.TrimSpace(statement))
	}
	return unique
}
