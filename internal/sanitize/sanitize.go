// Package sanitize filters rendered display HTML down to the elements the
// built-in stacks produce.
package sanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	spoilerIDRe = regexp.MustCompile(`^tungsten-id_[a-f0-9]{5}-[0-9]+$`)
	embedSrcRe  = regexp.MustCompile(`^https://www\.youtube-nocookie\.com/embed/[\w\-]+(\?vq=hd720)?$`)
	classRe     = regexp.MustCompile(`^[\w\- ]*$`)
	dimensionRe = regexp.MustCompile(`^[0-9]{1,4}$`)
)

// Policy returns the policy used by HTML. Every call builds a new policy.
func Policy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowStandardURLs()
	p.AllowURLSchemes("http", "https")
	p.RequireParseableURLs(true)

	p.AllowElements("br")
	p.AllowAttrs("class").Matching(classRe).OnElements("a", "img", "div", "iframe")

	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowAttrs("id").Matching(spoilerIDRe).OnElements("div")
	p.AllowElements("div")

	p.AllowAttrs("src").Matching(embedSrcRe).OnElements("iframe")
	p.AllowAttrs("width", "height", "frameborder").Matching(dimensionRe).OnElements("iframe")
	p.AllowAttrs("allowfullscreen").OnElements("iframe")

	return p
}

// HTML returns s with everything outside Policy removed.
func HTML(s string) string {
	return Policy().Sanitize(s)
}
