package bitfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDSource(t *testing.T) {
	var src Source = UUIDSource{}

	a, b := src.Generate(), src.Generate()
	assert.Regexp(t, `^[0-9a-f]{32}$`, a)
	assert.NotEqual(t, a, b)
}

func TestStatic(t *testing.T) {
	var src Source = Static("abc123")

	assert.Equal(t, "abc123", src.Generate())
	assert.Equal(t, "abc123", src.Generate())
}
