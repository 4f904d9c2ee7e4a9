package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/dedene/tungsten-cli/internal/store"
	"github.com/dedene/tungsten-cli/internal/ui"
)

// Swappable in tests.
var (
	stdin      io.Reader = os.Stdin
	stdinIsTTY           = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	stderrIsTTY = func() bool { return isatty.IsTerminal(os.Stderr.Fd()) }
	stdoutIsTTY = func() bool { return isatty.IsTerminal(os.Stdout.Fd()) }
)

// readInput returns the contents of path, or of stdin when path is empty
// or "-". An interactive stdin is refused rather than waited on.
func readInput(path string) (string, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path) //nolint:gosec // user-supplied input file
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}

		return string(data), nil
	}

	if stdinIsTTY() {
		return "", usageErrorf("no input: pass a FILE or pipe text on stdin")
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	return string(data), nil
}

// sourceFlags select stored text either from a saved document or from a
// file/stdin plus the bitfield it was stored with.
type sourceFlags struct {
	File     string `arg:"" optional:"" help:"File with stored text (default: stdin)" type:"path"`
	Doc      string `help:"Saved document ID" short:"d"`
	Bitfield string `help:"Bitfield the text was stored with (empty: no tokens)" short:"b"`
}

// source is resolved stored text.
type source struct {
	ID       string
	Text     string
	Bitfield string
}

func (s source) title() string {
	if s.ID != "" {
		return s.ID
	}

	return "tungsten"
}

func (f sourceFlags) load(ctx context.Context) (source, error) {
	if f.Doc == "" {
		text, err := readInput(f.File)
		if err != nil {
			return source{}, err
		}

		src := source{Text: text, Bitfield: f.Bitfield}
		if f.File != "" && f.File != "-" {
			src.ID = filepath.Base(f.File)
		}

		return src, nil
	}

	if f.File != "" || f.Bitfield != "" {
		return source{}, usageErrorf("--doc cannot be combined with FILE or --bitfield")
	}

	st, err := openStore(configFrom(ctx))
	if err != nil {
		return source{}, err
	}

	doc, err := st.Load(f.Doc)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return source{}, &ExitError{Code: exitMissing, Err: err}
		}

		return source{}, err
	}

	return source{ID: doc.ID, Text: doc.Text, Bitfield: doc.Bitfield}, nil
}

// warnf reports a non-fatal problem on stderr.
func warnf(ctx context.Context, format string, args ...any) {
	if u := ui.FromContext(ctx); u != nil {
		u.Err().Warnf(format, args...)

		return
	}

	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// infof prints a status line on stderr, keeping stdout for the result.
func infof(ctx context.Context, format string, args ...any) {
	if u := ui.FromContext(ctx); u != nil {
		u.Err().Printf(format, args...)

		return
	}

	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// successf prints a confirmation line on stderr.
func successf(ctx context.Context, format string, args ...any) {
	if u := ui.FromContext(ctx); u != nil {
		u.Err().Successf(format, args...)

		return
	}

	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// tokensf reports a phase result on stderr as "<subject>: <summary>".
func tokensf(ctx context.Context, subject string, count int, bitfield string) {
	if u := ui.FromContext(ctx); u != nil {
		u.Err().Tokens(subject, count, bitfield)

		return
	}

	fmt.Fprintf(os.Stderr, "%s: %s\n", subject, ui.TokenSummary(count, bitfield))
}

// savedf confirms a saved document on stderr.
func savedf(ctx context.Context, id string, count int, bitfield string) {
	if u := ui.FromContext(ctx); u != nil {
		u.Err().Saved(id, count, bitfield)

		return
	}

	fmt.Fprintf(os.Stderr, "Saved %s: %s\n", id, ui.TokenSummary(count, bitfield))
}
