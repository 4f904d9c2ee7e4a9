package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dedene/tungsten-cli/internal/outfmt"
	"github.com/dedene/tungsten-cli/internal/store"
	"github.com/dedene/tungsten-cli/internal/ui"
)

// DocsCmd groups document store subcommands.
type DocsCmd struct {
	List DocsListCmd `cmd:"" default:"1" help:"List saved documents"`
	Path DocsPathCmd `cmd:"" help:"Show the document directory"`
	Rm   DocsRmCmd   `cmd:"" aliases:"delete" help:"Delete saved documents"`
}

// DocsListCmd lists saved documents.
type DocsListCmd struct{}

type docRow struct {
	ID       string    `json:"id"`
	Count    int       `json:"count"`
	Bitfield string    `json:"bitfield"`
	StoredAt time.Time `json:"stored_at"`
}

// Run lists documents with their token counts.
func (c *DocsListCmd) Run(ctx context.Context) error {
	st, err := openStore(configFrom(ctx))
	if err != nil {
		return err
	}

	ids, err := st.List()
	if err != nil {
		return err
	}

	rows := make([]docRow, 0, len(ids))

	for _, id := range ids {
		doc, err := st.Load(id)
		if err != nil {
			warnf(ctx, "skipping %s: %v", id, err)
			continue
		}

		rows = append(rows, docRow{ID: doc.ID, Count: doc.Count, Bitfield: doc.Bitfield, StoredAt: doc.StoredAt})
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "No saved documents.")

		return nil
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{r.ID, strconv.Itoa(r.Count), r.Bitfield, r.StoredAt.Local().Format(time.DateTime)})
	}

	fmt.Fprint(os.Stdout, ui.RenderTable([]string{"ID", "Tokens", "Bitfield", "Stored"}, cells, colorEnabled(ctx)))
	fmt.Fprintf(os.Stdout, "\n%d documents\n", len(rows))

	return nil
}

// DocsPathCmd prints the document directory.
type DocsPathCmd struct{}

// Run prints the store directory.
func (c *DocsPathCmd) Run(ctx context.Context) error {
	st, err := openStore(configFrom(ctx))
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, st.Dir())

	return nil
}

// DocsRmCmd deletes documents.
type DocsRmCmd struct {
	IDs []string `arg:"" name:"id" help:"Document IDs to delete"`
}

// Run deletes each document, failing with a missing-exit code when any
// ID was not found.
func (c *DocsRmCmd) Run(ctx context.Context) error {
	st, err := openStore(configFrom(ctx))
	if err != nil {
		return err
	}

	var missing error

	for _, id := range c.IDs {
		err := st.Delete(id)

		switch {
		case err == nil:
			successf(ctx, "Deleted %s", id)
		case errors.Is(err, store.ErrNotFound):
			warnf(ctx, "%v", err)
			missing = &ExitError{Code: exitMissing, Err: err}
		default:
			return err
		}
	}

	return missing
}
