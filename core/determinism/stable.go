// Package determinism - Stable identifiers
// Identifiers derived here depend only on their inputs, so the same
// calculation always carries the same ID across runs and processes.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// StableID is a hash-based identifier that's deterministic
type StableID string

// IDGenerator generates stable IDs within a namespace
type IDGenerator struct {
	namespace string
}

// NewIDGenerator creates an ID generator with a namespace
func NewIDGenerator(namespace string) *IDGenerator {
	return &IDGenerator{namespace: namespace}
}

// Generate creates a stable ID from inputs
func (g *IDGenerator) Generate(parts ...string) StableID {
	h := sha256.New()
	h.Write([]byte(g.namespace))
	h.Write([]byte{0})
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return StableID(hex.EncodeToString(h.Sum(nil))[:16])
}

// Generatef creates a stable ID from formatted values
func (g *IDGenerator) Generatef(values ...interface{}) StableID {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return g.Generate(parts...)
}
