package utils

import (
	"path/filepath"
	"strings"
)

// Document extensions the indexing pipeline knows how to extract.
var eligibleExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// IsEligibleDocument reports whether a corpus file can be indexed.
func IsEligibleDocument(name string) bool {
	return eligibleExtensions[strings.ToLower(filepath.Ext(name))]
}
