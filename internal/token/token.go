// Package token implements the placeholder grammar shared by every stack.
//
// A token has the form
//
//	~{tungsten::<bitfield>::<kind>::<payload>}~
//
// The bitfield and kind use the word alphabet. The payload alphabet depends
// on the kind: base64 for URL-bearing kinds, word/hyphen for identifiers.
// None of the alphabets contain HTML-significant characters, so tokens pass
// through HTML escaping unchanged.
package token

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// Form is the token layout, for help and version output.
const Form = "~{tungsten::<bitfield>::<kind>::<payload>}~"

const (
	tokenOpen  = "~{tungsten::"
	tokenClose = "}~"
	tokenSep   = "::"
)

// Payload alphabets for Pattern.
const (
	// Word matches bitfields, kinds and plain word payloads.
	Word = `\w+`
	// Base64 matches padded standard base64.
	Base64 = `(?:[A-Za-z0-9+/]{4})*(?:[A-Za-z0-9+/]{2}==|[A-Za-z0-9+/]{3}=)?`
	// Identifier matches word characters and hyphens.
	Identifier = `[\w\-]+`
)

var (
	wordRe    = regexp.MustCompile(`^\w+$`)
	payloadRe = regexp.MustCompile(`^[\w\-+/=]*$`)
	scanRe    = regexp.MustCompile(`~\{tungsten::(\w+)::(\w+)(?:::([\w\-+/=]*))?\}~`)
)

// Token is a decoded placeholder.
type Token struct {
	Bitfield string
	Kind     string
	Payload  string
}

// String encodes the token.
func (t Token) String() string {
	return Encode(t.Bitfield, t.Kind, t.Payload)
}

// Encode builds the token string. The payload is written verbatim; callers
// must keep it inside the payload alphabet.
func Encode(bitfield, kind, payload string) string {
	var sb strings.Builder

	sb.Grow(len(tokenOpen) + len(bitfield) + len(kind) + len(payload) + 2*len(tokenSep) + len(tokenClose))
	sb.WriteString(tokenOpen)
	sb.WriteString(bitfield)
	sb.WriteString(tokenSep)
	sb.WriteString(kind)
	sb.WriteString(tokenSep)
	sb.WriteString(payload)
	sb.WriteString(tokenClose)

	return sb.String()
}

// EncodeURL builds a token whose payload is the base64 form of rawURL.
func EncodeURL(bitfield, kind, rawURL string) string {
	return Encode(bitfield, kind, base64.StdEncoding.EncodeToString([]byte(rawURL)))
}

// Decode parses candidate strictly. It reports false for anything that is
// not exactly one well-formed token. As with Scan, a token without a
// payload section decodes with an empty payload.
func Decode(candidate string) (Token, bool) {
	if !strings.HasPrefix(candidate, tokenOpen) || !strings.HasSuffix(candidate, tokenClose) {
		return Token{}, false
	}

	body := candidate[len(tokenOpen) : len(candidate)-len(tokenClose)]

	parts := strings.Split(body, tokenSep)
	switch len(parts) {
	case 2:
		parts = append(parts, "")
	case 3:
	default:
		return Token{}, false
	}

	if !wordRe.MatchString(parts[0]) || !wordRe.MatchString(parts[1]) || !payloadRe.MatchString(parts[2]) {
		return Token{}, false
	}

	return Token{Bitfield: parts[0], Kind: parts[1], Payload: parts[2]}, true
}

// DecodeURL reverses the payload encoding used by EncodeURL.
func DecodeURL(payload string) (string, bool) {
	raw, err := base64.StdEncoding.Strict().DecodeString(payload)
	if err != nil {
		return "", false
	}

	return string(raw), true
}

// Pattern compiles a matcher for tokens of the given kind expression and
// payload alphabet. Submatch 1 is the bitfield, 2 the kind, 3 the payload.
// The bitfield is not part of the pattern; callers compare it themselves so
// foreign tokens are seen and skipped rather than silently missed.
func Pattern(kind, payload string) *regexp.Regexp {
	return regexp.MustCompile(`~\{tungsten::(` + Word + `)::(` + kind + `)::(` + payload + `)\}~`)
}

// Match is a token found by Scan.
type Match struct {
	Token
	Start int
	End   int
}

// Raw returns the matched token text from the scanned buffer.
func (m Match) Raw(text string) string {
	return text[m.Start:m.End]
}

// Scan returns every grammar-shaped token in text, in order. Tokens without
// a payload section are reported with an empty payload.
func Scan(text string) []Match {
	idx := scanRe.FindAllStringSubmatchIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(idx))
	for _, loc := range idx {
		m := Match{
			Token: Token{
				Bitfield: text[loc[2]:loc[3]],
				Kind:     text[loc[4]:loc[5]],
			},
			Start: loc[0],
			End:   loc[1],
		}
		if loc[6] >= 0 {
			m.Payload = text[loc[6]:loc[7]]
		}

		matches = append(matches, m)
	}

	return matches
}

// Pair compiles a matcher for a start token, a body, and an end token, both
// tagged with bitfield. Submatches: 1 start bitfield, 2 start payload, 3 body,
// 4 end bitfield, 5 end payload. The body match is lazy and may span lines.
// Anchoring both halves to bitfield keeps a foreign start or end token from
// opening or closing a match around a real pair.
func Pair(bitfield, startKind, endKind, payload string) *regexp.Regexp {
	bf := regexp.QuoteMeta(bitfield)

	return regexp.MustCompile(`(?s)~\{tungsten::(` + bf + `)::` + startKind + `::(` + payload + `)\}~` +
		`(.*?)` +
		`~\{tungsten::(` + bf + `)::` + endKind + `::(` + payload + `)\}~`)
}
