package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// HighlightHTML returns s with terminal syntax colors. It returns s
// unchanged when color is off or highlighting fails.
func HighlightHTML(s string, color bool) string {
	if !color || s == "" {
		return s
	}

	var b strings.Builder
	if err := quick.Highlight(&b, s, "html", "terminal256", "monokai"); err != nil {
		return s
	}

	return b.String()
}
