package determinism

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIsStable(t *testing.T) {
	g := NewIDGenerator("quote")

	a := g.Generate("implementation-2025", "12", "25000")
	b := g.Generate("implementation-2025", "12", "25000")
	assert.Equal(t, a, b)
	assert.Len(t, string(a), 16)
}

func TestGenerateSeparatesParts(t *testing.T) {
	g := NewIDGenerator("quote")
	assert.NotEqual(t, g.Generate("ab", "c"), g.Generate("a", "bc"))
}

func TestGenerateNamespaces(t *testing.T) {
	assert.NotEqual(t,
		NewIDGenerator("quote").Generate("x"),
		NewIDGenerator("submission").Generate("x"))
}

func TestGeneratef(t *testing.T) {
	g := NewIDGenerator("quote")
	assert.Equal(t, g.Generate("12", "true", "advanced"), g.Generatef(12, true, "advanced"))
}
