package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/dedene/tungsten-cli/internal/actions"
	"github.com/dedene/tungsten-cli/internal/config"
	"github.com/dedene/tungsten-cli/internal/fetch"
	"github.com/dedene/tungsten-cli/internal/outfmt"
	"github.com/dedene/tungsten-cli/internal/parser"
	"github.com/dedene/tungsten-cli/internal/preview"
	"github.com/dedene/tungsten-cli/internal/sanitize"
	"github.com/dedene/tungsten-cli/internal/ui"
	"github.com/dedene/tungsten-cli/internal/watch"
)

// DisplayCmd runs the display phase and renders stored text as HTML.
type DisplayCmd struct {
	sourceFlags `embed:""`

	Sanitize *bool  `help:"Filter the HTML through the sanitizer" negatable:""`
	Page     bool   `help:"Wrap the fragment in a standalone HTML document"`
	Copy     bool   `help:"Copy the HTML to the clipboard" short:"c"`
	Open     bool   `help:"Open the rendered page in a browser" short:"o"`
	Output   string `help:"Write the HTML to a file" type:"path"`
	Preview  *bool  `help:"Show inline previews of embedded images" negatable:""`
	Watch    bool   `help:"Re-render whenever FILE changes (until interrupted)" short:"w"`
}

// shouldPreview determines if inline previews should be shown.
// Cascade: explicit flag > config preview > true (default ON for TTY).
// Always false when stderr is not a TTY or --no-input is set.
func shouldPreview(flag *bool, cfg *config.Config, root *RootFlags) bool {
	if !stderrIsTTY() {
		return false
	}

	if root != nil && root.NoInput {
		return false
	}

	if flag != nil {
		return *flag
	}

	return cfg.PreviewEnabled(true)
}

func (c *DisplayCmd) sanitizeEnabled(cfg *config.Config) bool {
	if c.Sanitize != nil {
		return *c.Sanitize
	}

	return cfg.SanitizeEnabled()
}

// rendered is one display pass over a source.
type rendered struct {
	src      source
	res      parser.Result
	fragment string
	page     string
}

// text is what gets printed, copied or written.
func (r rendered) text(page bool) string {
	if page {
		return r.page
	}

	return r.fragment
}

func (c *DisplayCmd) render(ctx context.Context, p *parser.Parser, cfg *config.Config) (rendered, error) {
	src, err := c.load(ctx)
	if err != nil {
		return rendered{}, err
	}

	res := p.ParseForDisplay(src.Text, src.Bitfield)

	fragment := res.Text
	if c.sanitizeEnabled(cfg) {
		fragment = sanitize.HTML(fragment)
	}

	return rendered{
		src:      src,
		res:      res,
		fragment: fragment,
		page:     actions.HTMLPage(src.title(), fragment),
	}, nil
}

func (c *DisplayCmd) emit(ctx context.Context, r rendered) error {
	text := r.text(c.Page)

	out := outfmt.Result{Phase: string(parser.PhaseDisplay), Text: text, Bitfield: r.res.Bitfield, Count: r.res.Count, ID: r.src.ID}

	return outfmt.Write(ctx, os.Stdout, out, func(w io.Writer) error {
		if c.Output != "" {
			return nil
		}

		_, err := io.WriteString(w, ui.HighlightHTML(text, stdoutIsTTY() && colorEnabled(ctx)))

		return err
	})
}

// Run executes the display command.
func (c *DisplayCmd) Run(ctx context.Context, root *RootFlags) error {
	cfg := configFrom(ctx)

	if c.Watch && (c.File == "" || c.File == "-" || c.Doc != "") {
		return usageErrorf("--watch needs a FILE argument")
	}

	p, err := newParser(cfg)
	if err != nil {
		return err
	}

	r, err := c.render(ctx, p, cfg)
	if err != nil {
		return err
	}

	if err := c.deliver(ctx, r); err != nil {
		return err
	}

	if c.Copy {
		if err := actions.CopyToClipboard(r.text(c.Page)); err != nil {
			warnf(ctx, "clipboard: %v", err)
		}
	}

	if c.Open {
		if path, err := actions.OpenHTML(r.page); err != nil {
			warnf(ctx, "browser: %v", err)
		} else {
			infof(ctx, "opened %s", path)
		}
	}

	if shouldPreview(c.Preview, cfg, root) {
		preview.ShowAll(ctx, preview.ImageURLs(r.src.Text, r.src.Bitfield), preview.Options{Writer: os.Stderr, Client: fetch.FromContext(ctx)})
	}

	if !c.Watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	infof(ctx, "watching %s (Ctrl+C to stop)", c.File)

	return watch.File(ctx, c.File, watch.DefaultDebounce, func() error {
		r, err := c.render(ctx, p, cfg)
		if err != nil {
			return err
		}

		tokensf(ctx, "re-rendered "+c.File, r.res.Count, r.res.Bitfield)

		return c.deliver(ctx, r)
	})
}

// deliver prints a pass and writes it to --output when set.
func (c *DisplayCmd) deliver(ctx context.Context, r rendered) error {
	if err := c.emit(ctx, r); err != nil {
		return err
	}

	if c.Output != "" {
		return actions.WriteFile(c.Output, r.text(c.Page))
	}

	return nil
}
