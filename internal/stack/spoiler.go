package stack

import (
	"encoding/hex"
	"html"
	"math/rand/v2"
	"regexp"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/dedene/tungsten-cli/internal/token"
)

// SpoilerName is the registry name of the spoiler stack.
const SpoilerName = "spoiler"

const (
	kindSpoilerStart = "uniquestart"
	kindSpoilerEnd   = "uniqueend"
	spoilerID        = `[a-f0-9]{5}-[0-9]+`
)

// Spoiler wraps text between a start trigger and its mirror image
// ("~~@ hidden @~~") in a uniquely identified div. Both halves of a stored
// spoiler carry the same bitfield and identifier; a pair that disagrees on
// either is left alone.
//
// Options: prefix (string, default "~~@"). The end trigger is the prefix
// reversed.
type Spoiler struct {
	Base

	storageRe *regexp.Regexp
	rand      func() uint32
}

// NewSpoiler returns a spoiler stack with default options and attributes.
func NewSpoiler() *Spoiler {
	s := &Spoiler{
		Base: newBase(SpoilerName, map[string]any{
			"prefix": "~~@",
		}),
		rand: rand.Uint32,
	}
	s.SetAttribute("div", "class", "tungsten-uniqueid")
	s.compile()

	return s
}

// SetOption sets an option and recompiles the storage pattern.
func (s *Spoiler) SetOption(key string, value any) error {
	if err := s.Base.SetOption(key, value); err != nil {
		return err
	}

	s.compile()

	return nil
}

// SetRandSource replaces the random source used for identifiers.
func (s *Spoiler) SetRandSource(fn func() uint32) {
	s.rand = fn
}

func (s *Spoiler) compile() {
	start, end := s.triggers()
	s.storageRe = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(start) + `(.+?)` + regexp.QuoteMeta(end))
}

func (s *Spoiler) triggers() (string, string) {
	start := s.optString("prefix")

	return start, reverse(start)
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}

	return string(r)
}

// identifier derives a page-unique id from the bitfield and a random value.
func (s *Spoiler) identifier(bitfield string) string {
	n := strconv.FormatUint(uint64(s.rand()), 10)
	sum := blake3.Sum256([]byte(bitfield + n))

	return hex.EncodeToString(sum[:])[:5] + "-" + n
}

// ParseForStorage replaces each trigger pair with start and end tokens,
// keeping the body in place for later stacks.
func (s *Spoiler) ParseForStorage(text, bitfield string) []Substitution {
	if s.optString("prefix") == "" {
		return nil
	}

	return collect(s.storageRe, text, 0, func(m []string) (string, bool) {
		id := s.identifier(bitfield)

		return token.Encode(bitfield, kindSpoilerStart, id) + m[1] + token.Encode(bitfield, kindSpoilerEnd, id), true
	})
}

// ParseForEdit restores the triggers around the body.
func (s *Spoiler) ParseForEdit(text, bitfield string) []Substitution {
	start, end := s.triggers()
	start, end = html.EscapeString(start), html.EscapeString(end)

	return s.pairs(text, bitfield, func(_, body string) string {
		return start + body + end
	})
}

// ParseForDisplay wraps the body in a div.
func (s *Spoiler) ParseForDisplay(text, bitfield string) []Substitution {
	attrs := s.renderAttributes("div")

	return s.pairs(text, bitfield, func(id, body string) string {
		return `<div id="tungsten-id_` + id + `"` + attrs + `>` + body + `</div>`
	})
}

func (s *Spoiler) pairs(text, bitfield string, render func(id, body string) string) []Substitution {
	if bitfield == "" {
		return nil
	}

	re := token.Pair(bitfield, kindSpoilerStart, kindSpoilerEnd, spoilerID)

	return collectTokens(re, text, bitfield, func(m []string) (string, bool) {
		if m[4] != bitfield || m[2] != m[5] {
			return "", false
		}

		return render(m[2], m[3]), true
	})
}
