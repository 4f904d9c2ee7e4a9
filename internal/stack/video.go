package stack

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/dedene/tungsten-cli/internal/token"
)

// Registry names of the video stacks.
const (
	VideoName       = "video"
	SimpleVideoName = "simplevideo"
)

const (
	kindVideo   = "video"
	kindVideoHD = "videohd"
)

var (
	// Submatch 1 is the video id, 2 the trailing query parameters.
	videoRe      = regexp.MustCompile(`https?://(?:(?:www\.|m\.)?youtube\.com/watch\?v=|youtu\.be/)([\w\-]+)((?:[?&][\w\-]+=[\w\-]*(?:\.[\w\-]+)*)*)`)
	videoTokenRe = token.Pattern(kindVideoHD+"|"+kindVideo, token.Identifier)
)

// Video turns YouTube links into embedded players. An "hd=1" query
// parameter selects the HD size unless the hd option is off.
//
// Options: width, height, hd_width, hd_height (int), hd (bool).
type Video struct {
	Base
}

// NewVideo returns a video stack that honors the HD flag.
func NewVideo() *Video {
	s := &Video{Base: newBase(VideoName, map[string]any{
		"width":     640,
		"height":    390,
		"hd_width":  853,
		"hd_height": 510,
		"hd":        true,
	})}
	s.SetAttribute("iframe", "class", "tungsten_youtube")
	s.SetAttribute("iframe", "frameborder", "0")
	s.SetAttribute("iframe", "allowfullscreen", "allowfullscreen")

	return s
}

// NewSimpleVideo returns a video stack that embeds every video at one
// smaller size and ignores the HD flag.
func NewSimpleVideo() *Video {
	s := NewVideo()
	s.name = SimpleVideoName
	s.options["width"] = 480
	s.options["height"] = 303
	s.options["hd"] = false

	return s
}

// ParseForStorage replaces each recognized video URL with a video token.
func (s *Video) ParseForStorage(text, bitfield string) []Substitution {
	hdEnabled := s.optBool("hd")

	return collect(videoRe, text, 0, func(m []string) (string, bool) {
		kind := kindVideo
		if hdEnabled && hasHDParam(m[2]) {
			kind = kindVideoHD
		}

		return token.Encode(bitfield, kind, m[1]), true
	})
}

func hasHDParam(params string) bool {
	for _, p := range strings.FieldsFunc(params, func(r rune) bool { return r == '?' || r == '&' }) {
		if p == "hd=1" {
			return true
		}
	}

	return false
}

// ParseForEdit restores a canonical watch URL.
func (s *Video) ParseForEdit(text, bitfield string) []Substitution {
	return collectTokens(videoTokenRe, text, bitfield, func(m []string) (string, bool) {
		u := "http://www.youtube.com/watch?v=" + html.EscapeString(m[3])
		if m[2] == kindVideoHD {
			u += "&amp;hd=1"
		}

		return u, true
	})
}

// ParseForDisplay renders a sized iframe player.
func (s *Video) ParseForDisplay(text, bitfield string) []Substitution {
	attrs := s.renderAttributes("iframe")

	return collectTokens(videoTokenRe, text, bitfield, func(m []string) (string, bool) {
		width, height := s.optInt("width"), s.optInt("height")
		src := "https://www.youtube-nocookie.com/embed/" + html.EscapeString(m[3])

		if m[2] == kindVideoHD {
			width, height = s.optInt("hd_width"), s.optInt("hd_height")
			src += "?vq=hd720"
		}

		return `<iframe src="` + src + `" width="` + strconv.Itoa(width) + `" height="` + strconv.Itoa(height) + `"` +
			attrs + `></iframe>`, true
	})
}
