package cmd

import (
	"context"
	"html"
	"io"
	"os"

	"github.com/dedene/tungsten-cli/internal/actions"
	"github.com/dedene/tungsten-cli/internal/outfmt"
	"github.com/dedene/tungsten-cli/internal/parser"
)

// EditCmd runs the edit phase: tokens become the text the user typed and
// everything is HTML-escaped for an editing form.
type EditCmd struct {
	sourceFlags `embed:""`

	Unescape bool `help:"Undo HTML escaping to get plain text back (ready to store again)" short:"u"`
	Copy     bool `help:"Copy the result to the clipboard" short:"c"`
}

// Run executes the edit command.
func (c *EditCmd) Run(ctx context.Context) error {
	src, err := c.load(ctx)
	if err != nil {
		return err
	}

	p, err := newParser(configFrom(ctx))
	if err != nil {
		return err
	}

	res := p.ParseForEdit(src.Text, src.Bitfield)

	text := res.Text
	if c.Unescape {
		text = html.UnescapeString(text)
	}

	out := outfmt.Result{Phase: string(parser.PhaseEdit), Text: text, Bitfield: res.Bitfield, Count: res.Count, ID: src.ID}
	if err := outfmt.Write(ctx, os.Stdout, out, func(w io.Writer) error {
		_, err := io.WriteString(w, text)

		return err
	}); err != nil {
		return err
	}

	if c.Copy {
		if err := actions.CopyToClipboard(text); err != nil {
			warnf(ctx, "clipboard: %v", err)
		}
	}

	return nil
}
