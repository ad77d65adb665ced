package service

import (
	"strings"

	"github.com/regulens/standards-rag/types"
)

// Separator hierarchy: paragraph breaks first, then line breaks, then
// sentence terminators, then spaces. The empty separator is the hard
// fixed-size fallback for text with no usable boundary.
var chunkSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// ChunkService splits extracted text into bounded, overlapping passages.
type ChunkService struct {
	chunkSize    int
	chunkOverlap int
}

func NewChunkService(chunkSize, chunkOverlap int) *ChunkService {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &ChunkService{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Split produces the ordered passages for one document's text.
func (s *ChunkService) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.split(text, chunkSeparators)
}

// ChunksFor splits text and wraps each passage with its source metadata.
// Chunk indexes are 0-based and monotonic within the source.
func (s *ChunkService) ChunksFor(text, source, documentType string) []types.Chunk {
	passages := s.Split(text)
	chunks := make([]types.Chunk, 0, len(passages))
	for i, passage := range passages {
		chunks = append(chunks, types.Chunk{
			Content:      passage,
			Source:       source,
			ChunkIndex:   i,
			DocumentType: documentType,
		})
	}
	return chunks
}

func (s *ChunkService) split(text string, separators []string) []string {
	// Pick the first separator that actually occurs in the text.
	separator := separators[len(separators)-1]
	var remaining []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			separator = candidate
			remaining = separators[i+1:]
			break
		}
	}

	var pieces []string
	if separator == "" {
		return s.hardSplit(text)
	}
	for _, piece := range strings.SplitAfter(text, separator) {
		if strings.TrimSpace(piece) != "" {
			pieces = append(pieces, piece)
		}
	}

	var chunks []string
	var fitting []string
	for _, piece := range pieces {
		if len(piece) <= s.chunkSize {
			fitting = append(fitting, piece)
			continue
		}
		// A piece that still exceeds the chunk size falls through to the
		// next separator level.
		chunks = append(chunks, s.merge(fitting)...)
		fitting = nil
		chunks = append(chunks, s.split(piece, remaining)...)
	}
	return append(chunks, s.merge(fitting)...)
}

// merge combines consecutive pieces into chunks bounded by chunkSize,
// carrying trailing pieces up to chunkOverlap into the next chunk so a
// statement straddling a split point is not lost.
func (s *ChunkService) merge(pieces []string) []string {
	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if merged := strings.TrimSpace(strings.Join(current, "")); merged != "" {
			chunks = append(chunks, merged)
		}
	}

	for _, piece := range pieces {
		if currentLen+len(piece) > s.chunkSize && currentLen > 0 {
			flush()
			// Drop leading pieces until the retained tail fits the overlap
			// budget and leaves room for the incoming piece.
			for currentLen > s.chunkOverlap ||
				(currentLen+len(piece) > s.chunkSize && currentLen > 0) {
				currentLen -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		currentLen += len(piece)
	}
	if currentLen > 0 {
		flush()
	}
	return chunks
}

// hardSplit cuts text into fixed-size overlapping windows. Operates on
// runes so multi-byte characters are never split.
func (s *ChunkService) hardSplit(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []string{strings.TrimSpace(text)}
	}
	stride := s.chunkSize - s.chunkOverlap
	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
