package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEligibleDocument(t *testing.T) {
	assert.True(t, IsEligibleDocument("standard.pdf"))
	assert.True(t, IsEligibleDocument("STANDARD.PDF"))
	assert.True(t, IsEligibleDocument("notes.txt"))
	assert.True(t, IsEligibleDocument("guide.md"))
	assert.False(t, IsEligibleDocument("archive.zip"))
	assert.False(t, IsEligibleDocument("binary"))
	assert.False(t, IsEligibleDocument(".hidden"))
}
