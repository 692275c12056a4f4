// Package idgen provides identifier generators for accounts and history records.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Provider generates unique identifiers.
type Provider interface {
	// NewID returns a new unique identifier.
	NewID() string
}

// UUIDProvider generates random (v4) UUID strings.
type UUIDProvider struct{}

// NewID returns a new random UUID.
func (UUIDProvider) NewID() string {
	return uuid.NewString()
}

// Sequence generates deterministic ids ("<prefix>-1", "<prefix>-2", ...).
// Used in tests and fixtures.
type Sequence struct {
	prefix string
	n      atomic.Int64
}

// NewSequence creates a sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next id in the sequence.
func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.n.Add(1))
}

// IsUUID reports whether s is a syntactically valid UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
