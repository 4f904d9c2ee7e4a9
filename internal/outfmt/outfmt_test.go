package outfmt_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedene/tungsten-cli/internal/outfmt"
)

func TestWithMode_IsJSON_RoundTrip(t *testing.T) {
	ctx := outfmt.WithMode(context.Background(), outfmt.Mode{JSON: true})
	assert.True(t, outfmt.IsJSON(ctx))

	ctx = outfmt.WithMode(context.Background(), outfmt.Mode{JSON: false})
	assert.False(t, outfmt.IsJSON(ctx))
}

func TestIsJSON_BareContext(t *testing.T) {
	assert.False(t, outfmt.IsJSON(context.Background()))
}

func TestWriteJSON_Result(t *testing.T) {
	var buf bytes.Buffer
	err := outfmt.WriteJSON(&buf, outfmt.Result{
		Phase:    "display",
		Text:     `<a href="http://example.com/x?a=1&amp;b=2">x</a>`,
		Bitfield: "abc123",
		Count:    1,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "\n  \"phase\": \"display\",\n")
	assert.Contains(t, out, `<a href=\"http://example.com/x?a=1&amp;b=2\">x</a>`)
	assert.NotContains(t, out, "\\u003c")
	assert.NotContains(t, out, "\\u0026")
	assert.NotContains(t, out, `"id"`)
}

func TestWrite(t *testing.T) {
	human := func(w io.Writer) error {
		_, err := io.WriteString(w, "plain\n")

		return err
	}

	var buf bytes.Buffer
	require.NoError(t, outfmt.Write(context.Background(), &buf, map[string]int{"count": 2}, human))
	assert.Equal(t, "plain\n", buf.String())

	buf.Reset()
	ctx := outfmt.WithMode(context.Background(), outfmt.Mode{JSON: true})
	require.NoError(t, outfmt.Write(ctx, &buf, map[string]int{"count": 2}, human))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", buf.String())
}
