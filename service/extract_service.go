package service

import (
	"bytes"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/regulens/standards-rag/types"
)

// ExtractService turns a raw source document into plain text. Extraction
// never fails hard: a document that cannot be decoded yields an empty
// string, is skipped by the chunking stage and is retried on the next
// indexing pass because its manifest entry is never written.
type ExtractService struct{}

func NewExtractService() *ExtractService {
	return &ExtractService{}
}

// ExtractText returns the document's plain text, per-page text
// concatenated in document order for PDFs.
func (s *ExtractService) ExtractText(doc types.SourceDocument) string {
	var text string
	var err error
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".pdf":
		text, err = extractPDFText(doc.Path)
	default:
		text, err = readTextFile(doc.Path)
	}
	if err != nil {
		log.Printf("Warning: failed to extract text from %s: %v", doc.Name, err)
		return ""
	}
	return text
}

// extractPDFText shells out to pdftotext, which emits page text in
// document order on stdout.
func extractPDFText(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-enc", "UTF-8", "-nopgbrk", path, "-")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return cleanText(out.String()), nil
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return cleanText(string(data)), nil
}

func cleanText(text string) string {
	replacements := map[string]string{
		"\u0000": "",   // Null character
		"\ufffd": "",   // Unicode replacement character
		"\u001b": "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}
	return strings.TrimSpace(cleaned)
}
