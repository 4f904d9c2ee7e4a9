package stack

import (
	"regexp"
	"strings"

	"github.com/dedene/tungsten-cli/internal/token"
)

// URL building blocks shared by the URL-recognizing stacks. They describe
// what the stacks will tokenize, not what a valid URL is.
const (
	urlScheme  = `https?://`
	urlLabel   = `[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?`
	urlHost    = urlLabel + `(?:\.` + urlLabel + `)+`
	urlPort    = `(?::[0-9]{1,5})?`
	urlSegment = `[\w\-+~%]+`
	// A path never ends in a dot so trailing sentence punctuation stays out.
	urlPath     = `(?:/(?:` + urlSegment + `(?:\.` + urlSegment + `)*)?)*`
	urlQuery    = `(?:\?[\w\-+~%&=]*(?:[.;][\w\-+~%&=]+)*)?`
	urlFragment = `(?:#[\w\-+=~%]*)?`

	// linkURL is any http(s) URL with an optional path.
	linkURL = urlScheme + urlHost + urlPort + urlPath + urlQuery + urlFragment

	// imageURL requires a final path segment with a file extension.
	imageURL = urlScheme + urlHost + urlPort +
		`(?:/` + urlSegment + `(?:\.` + urlSegment + `)*)*` +
		`/` + urlSegment + `(?:\.` + urlSegment + `)*\.\w{2,}` +
		urlQuery + urlFragment
)

// decodeURL decodes a URL payload and accepts it only if it still looks
// like something the storage patterns could have produced.
func decodeURL(payload string) (string, bool) {
	u, ok := token.DecodeURL(payload)
	if !ok {
		return "", false
	}

	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return "", false
	}

	return u, true
}

// trimTokenEdge drops a trailing "~" from a URL match when it is the first
// byte of a token that follows the URL directly.
func trimTokenEdge(text string, end int) int {
	if end > 0 && end < len(text) && text[end-1] == '~' && text[end] == '{' {
		return end - 1
	}

	return end
}

// collectURLs tokenizes every match of re. Submatch 1 must be the URL and
// must run to the end of the match.
func collectURLs(re *regexp.Regexp, text, bitfield, kind string) []Substitution {
	var subs []Substitution

	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		end := trimTokenEdge(text, loc[1])
		subs = append(subs, Substitution{
			Offset:  loc[0],
			Search:  text[loc[0]:end],
			Replace: token.EncodeURL(bitfield, kind, text[loc[2]:end]),
		})
	}

	return subs
}
