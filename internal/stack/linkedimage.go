package stack

import (
	"html"
	"regexp"

	"github.com/dedene/tungsten-cli/internal/token"
)

// LinkedImageName is the registry name of the linked image stack.
const LinkedImageName = "linkedimage"

const (
	kindLinkedImage   = "linkedimage"
	linkedImagePrefix = "!"
)

var (
	linkedImageRe      = regexp.MustCompile(regexp.QuoteMeta(linkedImagePrefix) + `(` + imageURL + `)`)
	linkedImageTokenRe = token.Pattern(kindLinkedImage, token.Base64)
)

// LinkedImage is Image with a fixed "!" prefix whose output is wrapped in a
// link to the full-size picture. It has no options.
type LinkedImage struct {
	Base
}

// NewLinkedImage returns a linked image stack with default attributes.
func NewLinkedImage() *LinkedImage {
	s := &LinkedImage{Base: newBase(LinkedImageName, nil)}
	s.SetAttribute("a", "class", "tungsten_link_img")
	s.SetAttribute("img", "alt", "user-supplied image")
	s.SetAttribute("img", "class", "tungsten_img")

	return s
}

// ParseForStorage replaces each "!url" with a linked image token.
func (s *LinkedImage) ParseForStorage(text, bitfield string) []Substitution {
	return collectURLs(linkedImageRe, text, bitfield, kindLinkedImage)
}

// ParseForEdit restores "!url".
func (s *LinkedImage) ParseForEdit(text, bitfield string) []Substitution {
	return collectTokens(linkedImageTokenRe, text, bitfield, func(m []string) (string, bool) {
		u, ok := decodeURL(m[3])
		if !ok {
			return "", false
		}

		return linkedImagePrefix + html.EscapeString(u), true
	})
}

// ParseForDisplay renders an img element inside an anchor to the same URL.
func (s *LinkedImage) ParseForDisplay(text, bitfield string) []Substitution {
	aAttrs := s.renderAttributes("a")
	imgAttrs := s.renderAttributes("img")

	return collectTokens(linkedImageTokenRe, text, bitfield, func(m []string) (string, bool) {
		u, ok := decodeURL(m[3])
		if !ok {
			return "", false
		}

		u = html.EscapeString(u)

		return `<a href="` + u + `"` + aAttrs + `><img src="` + u + `"` + imgAttrs + ` /></a>`, true
	})
}
