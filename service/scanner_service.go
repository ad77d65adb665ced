package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/regulens/standards-rag/types"
	"github.com/regulens/standards-rag/utils"
)

// ScannerService lists candidate corpus documents and classifies each one
// against the embed manifest.
type ScannerService struct {
	corpusDir string
}

func NewScannerService(corpusDir string) *ScannerService {
	return &ScannerService{corpusDir: corpusDir}
}

// ListDocuments returns the eligible documents in the corpus directory,
// sorted by name so repeated scans of an unchanged filesystem classify
// identically. A missing corpus directory yields an empty list.
func (s *ScannerService) ListDocuments() ([]types.SourceDocument, error) {
	entries, err := os.ReadDir(s.corpusDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var docs []types.SourceDocument
	for _, entry := range entries {
		if entry.IsDir() || !utils.IsEligibleDocument(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		docs = append(docs, types.SourceDocument{
			Name:       entry.Name(),
			Path:       filepath.Join(s.corpusDir, entry.Name()),
			ModifiedAt: info.ModTime().Unix(),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Scan classifies the corpus into new, modified and unchanged documents
// relative to the manifest. The three sets are disjoint.
func (s *ScannerService) Scan(manifest map[string]int64) (types.ScanReport, error) {
	docs, err := s.ListDocuments()
	if err != nil {
		return types.ScanReport{}, err
	}

	var report types.ScanReport
	for _, doc := range docs {
		fingerprint, ok := manifest[doc.Name]
		switch {
		case !ok:
			report.New = append(report.New, doc)
		case fingerprint != doc.ModifiedAt:
			report.Modified = append(report.Modified, doc)
		default:
			report.Unchanged = append(report.Unchanged, doc)
		}
	}
	return report, nil
}
