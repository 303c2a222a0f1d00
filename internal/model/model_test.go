package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "alice smith", NormalizeName("Alice SMITH"))
	assert.Equal(t, "élodie", NormalizeName("ÉLODIE"))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestImportID(t *testing.T) {
	t.Run("stable for the same row", func(t *testing.T) {
		assert.Equal(t, ImportID("Alice", "a.pdf"), ImportID("Alice", "a.pdf"))
	})

	t.Run("ignores case of both fields", func(t *testing.T) {
		assert.Equal(t, ImportID("Alice", "a.pdf"), ImportID("ALICE", "A.PDF"))
	})

	t.Run("differs by name and by file", func(t *testing.T) {
		assert.NotEqual(t, ImportID("Alice", "a.pdf"), ImportID("Bob", "a.pdf"))
		assert.NotEqual(t, ImportID("Alice", "a.pdf"), ImportID("Alice", "b.pdf"))
	})

	t.Run("field boundary is unambiguous", func(t *testing.T) {
		assert.NotEqual(t, ImportID("ab", "c.pdf"), ImportID("a", "bc.pdf"))
	})
}
