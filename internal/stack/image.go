package stack

import (
	"html"
	"regexp"

	"github.com/dedene/tungsten-cli/internal/token"
)

// ImageName is the registry name of the image stack.
const ImageName = "image"

const kindImage = "image"

var imageTokenRe = token.Pattern(kindImage, token.Base64)

// Image turns prefixed image URLs ("!http://host/pic.png") into inline
// images.
//
// Options: prefix (string, default "!").
type Image struct {
	Base

	storageRe *regexp.Regexp
}

// NewImage returns an image stack with default options and attributes.
func NewImage() *Image {
	s := &Image{Base: newBase(ImageName, map[string]any{
		"prefix": "!",
	})}
	s.SetAttribute("img", "alt", "user-supplied image")
	s.SetAttribute("img", "class", "tungsten_img")
	s.compile()

	return s
}

// SetOption sets an option and recompiles the storage pattern.
func (s *Image) SetOption(key string, value any) error {
	if err := s.Base.SetOption(key, value); err != nil {
		return err
	}

	s.compile()

	return nil
}

func (s *Image) compile() {
	s.storageRe = regexp.MustCompile(regexp.QuoteMeta(s.optString("prefix")) + `(` + imageURL + `)`)
}

// ParseForStorage replaces each prefixed image URL with an image token.
func (s *Image) ParseForStorage(text, bitfield string) []Substitution {
	return collectURLs(s.storageRe, text, bitfield, kindImage)
}

// ParseForEdit restores the prefixed URL.
func (s *Image) ParseForEdit(text, bitfield string) []Substitution {
	prefix := html.EscapeString(s.optString("prefix"))

	return collectTokens(imageTokenRe, text, bitfield, func(m []string) (string, bool) {
		u, ok := decodeURL(m[3])
		if !ok {
			return "", false
		}

		return prefix + html.EscapeString(u), true
	})
}

// ParseForDisplay renders an img element.
func (s *Image) ParseForDisplay(text, bitfield string) []Substitution {
	attrs := s.renderAttributes("img")

	return collectTokens(imageTokenRe, text, bitfield, func(m []string) (string, bool) {
		u, ok := decodeURL(m[3])
		if !ok {
			return "", false
		}

		return `<img src="` + html.EscapeString(u) + `"` + attrs + ` />`, true
	})
}
