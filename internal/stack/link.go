package stack

import (
	"html"
	"regexp"
	"strings"

	"github.com/dedene/tungsten-cli/internal/token"
)

// LinkName is the registry name of the link stack.
const LinkName = "link"

const kindLink = "link"

var (
	linkRe      = regexp.MustCompile(linkURL)
	linkTokenRe = token.Pattern(kindLink, token.Base64)
)

// Link turns bare http(s) URLs into anchors. A URL directly preceded by the
// embed prefix is left for the image stacks.
//
// Options: prefix (string, default "!").
type Link struct {
	Base
}

// NewLink returns a link stack with default options and attributes.
func NewLink() *Link {
	s := &Link{Base: newBase(LinkName, map[string]any{
		"prefix": "!",
	})}
	s.SetAttribute("a", "title", "user-supplied link")
	s.SetAttribute("a", "class", "tungsten_link")

	return s
}

// ParseForStorage replaces each bare URL with a link token.
func (s *Link) ParseForStorage(text, bitfield string) []Substitution {
	prefix := s.optString("prefix")

	var subs []Substitution

	for _, loc := range linkRe.FindAllStringIndex(text, -1) {
		if prefix != "" && strings.HasSuffix(text[:loc[0]], prefix) {
			continue
		}

		u := text[loc[0]:trimTokenEdge(text, loc[1])]
		subs = append(subs, Substitution{
			Offset:  loc[0],
			Search:  u,
			Replace: token.EncodeURL(bitfield, kindLink, u),
		})
	}

	return subs
}

// ParseForEdit restores the URL text.
func (s *Link) ParseForEdit(text, bitfield string) []Substitution {
	return collectTokens(linkTokenRe, text, bitfield, func(m []string) (string, bool) {
		u, ok := decodeURL(m[3])
		if !ok {
			return "", false
		}

		return html.EscapeString(u), true
	})
}

// ParseForDisplay renders an anchor whose text is the URL.
func (s *Link) ParseForDisplay(text, bitfield string) []Substitution {
	attrs := s.renderAttributes("a")

	return collectTokens(linkTokenRe, text, bitfield, func(m []string) (string, bool) {
		u, ok := decodeURL(m[3])
		if !ok {
			return "", false
		}

		u = html.EscapeString(u)

		return `<a href="` + u + `"` + attrs + `>` + u + `</a>`, true
	})
}
