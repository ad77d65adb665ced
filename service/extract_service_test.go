package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulens/standards-rag/types"
)

func TestExtractTextFromPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("Line one.\r\nLine two.\f"), 0644))

	extract := NewExtractService()
	text := extract.ExtractText(types.SourceDocument{Name: "doc.txt", Path: path})
	assert.Equal(t, "Line one.\nLine two.", text)
}

func TestExtractTextMissingFileYieldsEmpty(t *testing.T) {
	extract := NewExtractService()
	text := extract.ExtractText(types.SourceDocument{
		Name: "gone.txt",
		Path: filepath.Join(t.TempDir(), "gone.txt"),
	})
	assert.Equal(t, "", text)
}

func TestCleanTextStripsControlCharacters(t *testing.T) {
	assert.Equal(t, "ab", cleanText("a\x00b"))
	assert.Equal(t, "ab", cleanText("a�b"))
	assert.Equal(t, "ab", cleanText("a\x1bb"))
	assert.Equal(t, "a\nb", cleanText("a\fb"))
	assert.Equal(t, "ab", cleanText("  a\rb \n"))
}
