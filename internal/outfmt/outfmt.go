// Package outfmt provides context-based output mode selection (JSON vs human).
package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Mode controls output formatting.
type Mode struct {
	JSON bool
}

type ctxKey struct{}

// WithMode stores the output mode in the context.
func WithMode(ctx context.Context, mode Mode) context.Context {
	return context.WithValue(ctx, ctxKey{}, mode)
}

// IsJSON returns true if the context has JSON output mode enabled.
func IsJSON(ctx context.Context) bool {
	if v := ctx.Value(ctxKey{}); v != nil {
		if m, ok := v.(Mode); ok {
			return m.JSON
		}
	}

	return false
}

// WriteJSON writes v as pretty-printed JSON to w. HTML is not escaped, so
// rendered fragments stay readable.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// Write sends v to w as JSON in JSON mode and calls human otherwise.
func Write(ctx context.Context, w io.Writer, v any, human func(io.Writer) error) error {
	if IsJSON(ctx) {
		return WriteJSON(w, v)
	}

	return human(w)
}

// Result is the JSON shape of one parser phase.
type Result struct {
	Phase    string `json:"phase"`
	Text     string `json:"text"`
	Bitfield string `json:"bitfield"`
	Count    int    `json:"count"`
	ID       string `json:"id,omitempty"`
}
