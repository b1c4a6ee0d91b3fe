package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewShortCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewShortCode()
		assert.Len(t, code, 8)
		assert.Equal(t, strings.ToUpper(code), code)
		assert.NotContains(t, code, "-")
		seen[code] = true
	}
	// 100 draws from a UUID-derived space should not collide
	assert.Len(t, seen, 100)
}

func TestNewReference(t *testing.T) {
	ref := NewReference()
	assert.Len(t, ref, 36)
	assert.NotEqual(t, ref, NewReference())
}
