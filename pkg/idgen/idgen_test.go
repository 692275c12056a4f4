package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDProvider_Unique(t *testing.T) {
	p := UUIDProvider{}
	a, b := p.NewID(), p.NewID()

	assert.NotEqual(t, a, b)
	assert.True(t, IsUUID(a))
	assert.False(t, IsUUID("janedoe"))
}

func TestSequence(t *testing.T) {
	s := NewSequence("rec")

	assert.Equal(t, "rec-1", s.NewID())
	assert.Equal(t, "rec-2", s.NewID())
}
