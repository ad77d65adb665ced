package service

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// ManifestService persists which source documents have been embedded and
// the fingerprint observed when they were. A manifest entry exists for a
// document exactly when chunks from it reside in the vector index.
type ManifestService struct {
	path string
}

func NewManifestService(indexDir string) *ManifestService {
	return &ManifestService{path: filepath.Join(indexDir, "manifest.json")}
}

// Load returns the manifest mapping. A missing or unreadable manifest is
// treated as "nothing indexed yet" and yields an empty mapping.
func (s *ManifestService) Load() map[string]int64 {
	manifest := make(map[string]int64)
	data, err := os.ReadFile(s.path)
	if err != nil {
		return manifest
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Printf("Warning: manifest %s is unreadable, treating as empty: %v", s.path, err)
		return make(map[string]int64)
	}
	return manifest
}

// Save replaces the manifest in a single write so an interrupted save
// cannot leave a partially written file behind.
func (s *ManifestService) Save(manifest map[string]int64) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return os.Rename(tmp, s.path)
}
