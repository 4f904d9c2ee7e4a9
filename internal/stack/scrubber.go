package stack

import "github.com/dedene/tungsten-cli/internal/token"

// ScrubberName is the registry name of the scrubber stack.
const ScrubberName = "scrubber"

// Scrubber removes any token of the current bitfield still present at
// display time, so placeholder syntax never reaches a reader. Load it last.
// Storage and edit are no-ops.
type Scrubber struct {
	Base
}

// NewScrubber returns a scrubber stack.
func NewScrubber() *Scrubber {
	return &Scrubber{Base: newBase(ScrubberName, nil)}
}

// ParseForStorage does nothing.
func (s *Scrubber) ParseForStorage(_, _ string) []Substitution { return nil }

// ParseForEdit does nothing.
func (s *Scrubber) ParseForEdit(_, _ string) []Substitution { return nil }

// ParseForDisplay erases leftover tokens tagged with bitfield.
func (s *Scrubber) ParseForDisplay(text, bitfield string) []Substitution {
	if bitfield == "" {
		return nil
	}

	var subs []Substitution

	for _, m := range token.Scan(text) {
		raw := m.Raw(text)

		tok, ok := token.Decode(raw)
		if !ok || tok.Bitfield != bitfield {
			continue
		}

		subs = append(subs, Substitution{Offset: m.Start, Search: raw})
	}

	return subs
}
