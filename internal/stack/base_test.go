package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOption(t *testing.T) {
	b := newBase("test", map[string]any{
		"prefix": "!",
		"width":  640,
		"hd":     true,
	})

	require.NoError(t, b.SetOption("prefix", "@"))
	require.NoError(t, b.SetOption("width", 800))
	require.NoError(t, b.SetOption("hd", false))

	assert.Equal(t, "@", b.optString("prefix"))
	assert.Equal(t, 800, b.optInt("width"))
	assert.False(t, b.optBool("hd"))
}

func TestSetOptionJSONNumber(t *testing.T) {
	b := newBase("test", map[string]any{"width": 640})

	require.NoError(t, b.SetOption("width", float64(1024)))
	assert.Equal(t, 1024, b.optInt("width"))

	err := b.SetOption("width", 10.5)
	require.ErrorIs(t, err, ErrOptionType)
	assert.Equal(t, 1024, b.optInt("width"))
}

func TestSetOptionErrors(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  any
		target error
		msg    string
	}{
		{"unknown key", "colour", "red", ErrUnknownOption, "valid options: hd, prefix"},
		{"string for bool", "hd", "yes", ErrOptionType, "want bool, got string"},
		{"int for string", "prefix", 3, ErrOptionType, "want string, got int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBase("test", map[string]any{"prefix": "!", "hd": true})

			err := b.SetOption(tt.key, tt.value)
			require.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSetOptionNoOptions(t *testing.T) {
	b := newBase("bare", nil)

	err := b.SetOption("x", 1)
	require.ErrorIs(t, err, ErrUnknownOption)
	assert.Contains(t, err.Error(), "has no options")
}

func TestOptionsIsCopy(t *testing.T) {
	b := newBase("test", map[string]any{"prefix": "!"})

	opts := b.Options()
	opts["prefix"] = "changed"

	v, ok := b.Option("prefix")
	require.True(t, ok)
	assert.Equal(t, "!", v)
}

func TestDefaultsAreNotShared(t *testing.T) {
	defaults := map[string]any{"prefix": "!"}
	a := newBase("a", defaults)
	b := newBase("b", defaults)

	require.NoError(t, a.SetOption("prefix", "#"))
	assert.Equal(t, "!", b.optString("prefix"))
	assert.Equal(t, "!", defaults["prefix"])
}

func TestEnabled(t *testing.T) {
	b := newBase("test", nil)
	assert.True(t, b.Enabled())

	b.SetEnabled(false)
	assert.False(t, b.Enabled())
}

func TestAttributesOrderAndOverwrite(t *testing.T) {
	b := newBase("test", nil)
	b.SetAttribute("img", "alt", "a")
	b.SetAttribute("img", "class", "c")
	b.SetAttribute("img", "alt", "b")

	assert.Equal(t, [][2]string{{"alt", "b"}, {"class", "c"}}, b.Attributes("img"))
	assert.Equal(t, ` alt="b" class="c"`, b.renderAttributes("img"))

	v, ok := b.Attribute("img", "class")
	require.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = b.Attribute("div", "class")
	assert.False(t, ok)
	assert.Empty(t, b.renderAttributes("div"))
	assert.Nil(t, b.Attributes("div"))
}

func TestRenderAttributesEscapes(t *testing.T) {
	b := newBase("test", nil)
	b.SetAttribute("a", "title", `"><script>alert(1)</script>`)
	b.SetAttribute("a", `on"x`, "1")

	assert.Equal(t, ` title="&#34;&gt;&lt;script&gt;alert(1)&lt;/script&gt;" on&#34;x="1"`, b.renderAttributes("a"))
}
