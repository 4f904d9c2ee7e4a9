package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/dedene/tungsten-cli/internal/bitfield"
	"github.com/dedene/tungsten-cli/internal/outfmt"
	"github.com/dedene/tungsten-cli/internal/parser"
	"github.com/dedene/tungsten-cli/internal/store"
)

var bitfieldRe = regexp.MustCompile(`^\w+$`)

// newBitfield is swappable in tests.
var newBitfield bitfield.Source = bitfield.UUIDSource{}

// StoreCmd runs the storage phase over raw text.
type StoreCmd struct {
	File     string `arg:"" optional:"" help:"File with raw text (default: stdin)" type:"path"`
	Save     string `help:"Save the result as a document with this ID" short:"s"`
	Bitfield string `help:"Use this bitfield instead of a random one" short:"b"`
}

// Run executes the store command.
func (c *StoreCmd) Run(ctx context.Context, root *RootFlags) error {
	bf := c.Bitfield
	if bf == "" {
		bf = newBitfield.Generate()
	} else if !bitfieldRe.MatchString(bf) {
		return usageErrorf("invalid --bitfield %q: use letters, digits or '_'", bf)
	}

	var st *store.Store

	if c.Save != "" {
		if err := store.ValidateID(c.Save); err != nil {
			return usageErrorf("%v", err)
		}

		var err error
		if st, err = openStore(configFrom(ctx)); err != nil {
			return err
		}

		if !root.Force {
			if _, err := st.Load(c.Save); err == nil {
				return usageErrorf("document %q exists; pass --force to overwrite", c.Save)
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
	}

	text, err := readInput(c.File)
	if err != nil {
		return err
	}

	p, err := newParser(configFrom(ctx))
	if err != nil {
		return err
	}

	res := p.ParseForStorage(text, bf)

	if st != nil {
		doc := store.Document{ID: c.Save, Text: res.Text, Bitfield: res.Bitfield, Count: res.Count}
		if err := st.Save(doc); err != nil {
			return fmt.Errorf("saving document: %w", err)
		}
	}

	out := outfmt.Result{Phase: string(parser.PhaseStorage), Text: res.Text, Bitfield: res.Bitfield, Count: res.Count, ID: c.Save}

	return outfmt.Write(ctx, os.Stdout, out, func(w io.Writer) error {
		if _, err := io.WriteString(w, res.Text); err != nil {
			return err
		}

		switch {
		case c.Save != "":
			savedf(ctx, c.Save, res.Count, res.Bitfield)
		case res.Count > 0:
			tokensf(ctx, string(parser.PhaseStorage), res.Count, res.Bitfield)
		default:
			infof(ctx, "no tokens; store with an empty bitfield")
		}

		return nil
	})
}
