// Package bitfield generates the per-text discriminators that tag stored
// tokens.
package bitfield

import (
	"strings"

	"github.com/google/uuid"
)

// Source produces fresh bitfields. A bitfield must match \w+.
type Source interface {
	Generate() string
}

// UUIDSource returns random v4 UUIDs with the dashes removed.
type UUIDSource struct{}

// Generate returns 32 lowercase hex characters.
func (UUIDSource) Generate() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Static always returns the same bitfield.
type Static string

// Generate returns s.
func (s Static) Generate() string { return string(s) }
