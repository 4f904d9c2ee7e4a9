package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLKeepsStackOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		keep  []string
	}{
		{
			"link",
			`<a href="http://example.com/x" title="user-supplied link" class="tungsten_link">http://example.com/x</a>`,
			[]string{`href="http://example.com/x"`, `class="tungsten_link"`, `>http://example.com/x</a>`},
		},
		{
			"image",
			`<img src="http://example.com/a.png" alt="user-supplied image" class="tungsten_img" />`,
			[]string{`src="http://example.com/a.png"`, `alt="user-supplied image"`},
		},
		{
			"spoiler",
			`<div id="tungsten-id_abcde-12" class="tungsten-uniqueid">hidden</div>`,
			[]string{`id="tungsten-id_abcde-12"`, `>hidden</div>`},
		},
		{
			"video",
			`<iframe src="https://www.youtube-nocookie.com/embed/abc123?vq=hd720" width="853" height="510" class="tungsten_youtube" frameborder="0" allowfullscreen="allowfullscreen"></iframe>`,
			[]string{`src="https://www.youtube-nocookie.com/embed/abc123?vq=hd720"`, `width="853"`},
		},
		{
			"line break",
			"a<br />\nb",
			[]string{"<br/>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HTML(tt.input)
			for _, k := range tt.keep {
				assert.Contains(t, got, k)
			}
		})
	}
}

func TestHTMLStripsUnsafe(t *testing.T) {
	tests := []struct {
		name  string
		input string
		drop  string
	}{
		{"script", `ok<script>alert(1)</script>`, "<script"},
		{"javascript href", `<a href="javascript:alert(1)">x</a>`, "javascript:"},
		{"event handler", `<img src="http://example.com/a.png" onerror="alert(1)" />`, "onerror"},
		{"foreign iframe", `<iframe src="https://evil.example/embed"></iframe>`, "evil.example"},
		{"style", `<div style="position:fixed">x</div>`, "style"},
		{"spoofed id", `<div id="main">x</div>`, "main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotContains(t, HTML(tt.input), tt.drop)
		})
	}
}

func TestHTMLKeepsEscapedText(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;hi&lt;/b&gt;", HTML("&lt;b&gt;hi&lt;/b&gt;"))
}
