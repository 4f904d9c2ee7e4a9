package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dedene/tungsten-cli/internal/outfmt"
	"github.com/dedene/tungsten-cli/internal/token"
	"github.com/dedene/tungsten-cli/internal/ui"
)

// InspectCmd lists the tokens found in stored text.
type InspectCmd struct {
	sourceFlags `embed:""`
}

type inspectRow struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Bitfield string `json:"bitfield"`
	Kind     string `json:"kind"`
	Payload  string `json:"payload"`
	URL      string `json:"url,omitempty"`
	Match    bool   `json:"match"`
}

// urlKinds carry a base64 URL payload.
var urlKinds = map[string]bool{"image": true, "link": true, "linkedimage": true}

func inspectRows(text, bitfield string) []inspectRow {
	matches := token.Scan(text)
	rows := make([]inspectRow, 0, len(matches))

	for _, m := range matches {
		row := inspectRow{
			Start:    m.Start,
			End:      m.End,
			Bitfield: m.Bitfield,
			Kind:     m.Kind,
			Payload:  m.Payload,
			Match:    bitfield != "" && m.Bitfield == bitfield,
		}

		if urlKinds[m.Kind] {
			if u, ok := token.DecodeURL(m.Payload); ok {
				row.URL = u
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// Run executes the inspect command.
func (c *InspectCmd) Run(ctx context.Context) error {
	src, err := c.load(ctx)
	if err != nil {
		return err
	}

	rows := inspectRows(src.Text, src.Bitfield)

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "No tokens.")

		return nil
	}

	color := colorEnabled(ctx)
	cells := make([][]string, 0, len(rows))
	matched := 0

	for _, r := range rows {
		if r.Match {
			matched++
		}

		payload := r.Payload
		if r.URL != "" {
			payload = r.URL
		}

		cells = append(cells, []string{
			strconv.Itoa(r.Start),
			r.Kind,
			payload,
			ui.StatusCell(r.Match, color),
		})
	}

	fmt.Fprint(os.Stdout, ui.RenderTable([]string{"Offset", "Kind", "Payload", "Bitfield"}, cells, color))
	fmt.Fprintf(os.Stdout, "\n%d found; %s\n", len(rows), ui.TokenSummary(matched, src.Bitfield))

	return nil
}

// colorEnabled reports whether stdout output may be styled.
func colorEnabled(ctx context.Context) bool {
	if u := ui.FromContext(ctx); u != nil {
		return u.Out().ColorEnabled()
	}

	return false
}
