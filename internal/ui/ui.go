// Package ui provides the terminal printers shared by the commands: colored
// status lines on stderr, token summaries, tables and HTML highlighting.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// ErrInvalidColor is returned when an unsupported --color value is given.
var ErrInvalidColor = errors.New("invalid --color value")

// Values accepted by --color.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// Options configures the UI.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Color  string // auto, always, never
}

// UI wraps stdout and stderr printers with color profile support.
type UI struct {
	out *Printer
	err *Printer
}

// New creates a UI with the given options.
func New(opts Options) (*UI, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	colorMode := strings.ToLower(strings.TrimSpace(opts.Color))
	if colorMode == "" {
		colorMode = colorAuto
	}

	if colorMode != colorAuto && colorMode != colorAlways && colorMode != colorNever {
		return nil, fmt.Errorf("%w: %q (expected auto|always|never)", ErrInvalidColor, colorMode)
	}

	out := termenv.NewOutput(opts.Stdout, termenv.WithProfile(termenv.EnvColorProfile()))
	errOut := termenv.NewOutput(opts.Stderr, termenv.WithProfile(termenv.EnvColorProfile()))

	outProfile := chooseProfile(out.Profile, colorMode)
	errProfile := chooseProfile(errOut.Profile, colorMode)

	return &UI{
		out: newPrinter(out, outProfile),
		err: newPrinter(errOut, errProfile),
	}, nil
}

// chooseProfile resolves the effective color profile from detected capability and user preference.
func chooseProfile(detected termenv.Profile, mode string) termenv.Profile {
	if termenv.EnvNoColor() {
		return termenv.Ascii
	}

	switch mode {
	case colorNever:
		return termenv.Ascii
	case colorAlways:
		return termenv.TrueColor
	default:
		return detected
	}
}

// Out returns the stdout printer.
func (u *UI) Out() *Printer { return u.out }

// Err returns the stderr printer.
func (u *UI) Err() *Printer { return u.err }

// Palette used across commands.
const (
	colorError    = "#ef4444"
	colorWarn     = "#f59e0b"
	colorOK       = "#22c55e"
	colorCount    = "#38bdf8"
	colorBitfield = "#a78bfa"
)

// Printer wraps a termenv.Output with a resolved color profile.
type Printer struct {
	o       *termenv.Output
	profile termenv.Profile
}

func newPrinter(o *termenv.Output, profile termenv.Profile) *Printer {
	return &Printer{o: o, profile: profile}
}

// ColorEnabled returns true when color output is active.
func (p *Printer) ColorEnabled() bool { return p.profile != termenv.Ascii }

// paint colors s when color is on.
func (p *Printer) paint(s, hex string) string {
	if !p.ColorEnabled() {
		return s
	}

	return termenv.String(s).Foreground(p.profile.Color(hex)).String()
}

func (p *Printer) line(s string) {
	_, _ = io.WriteString(p.o, s+"\n")
}

// Print writes a string without a trailing newline.
func (p *Printer) Print(msg string) {
	_, _ = io.WriteString(p.o, msg)
}

// Println writes a line to the output.
func (p *Printer) Println(msg string) { p.line(msg) }

// Printf writes a formatted line to the output.
func (p *Printer) Printf(format string, args ...any) { p.line(fmt.Sprintf(format, args...)) }

// Errorf writes a red line prefixed with "Error: ".
func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.paint(fmt.Sprintf("Error: "+format, args...), colorError))
}

// Warnf writes an amber line prefixed with "Warning: ".
func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.paint(fmt.Sprintf("Warning: "+format, args...), colorWarn))
}

// Successf writes a green line.
func (p *Printer) Successf(format string, args ...any) {
	p.line(p.paint(fmt.Sprintf(format, args...), colorOK))
}

// Bitfield returns bf styled for display, or "(none)" when empty.
func (p *Printer) Bitfield(bf string) string {
	if bf == "" {
		return "(none)"
	}

	return p.paint(bf, colorBitfield)
}

// TokenSummary describes a phase result: "3 tokens, bitfield abc123",
// "1 token, bitfield abc123" or "no tokens".
func TokenSummary(count int, bitfield string) string {
	return (&Printer{profile: termenv.Ascii}).tokenSummary(count, bitfield)
}

func (p *Printer) tokenSummary(count int, bitfield string) string {
	if count == 0 {
		return "no tokens"
	}

	noun := "tokens"
	if count == 1 {
		noun = "token"
	}

	return fmt.Sprintf("%s %s, bitfield %s", p.paint(strconv.Itoa(count), colorCount), noun, p.Bitfield(bitfield))
}

// Tokens writes "<subject>: <summary>" for a phase result.
func (p *Printer) Tokens(subject string, count int, bitfield string) {
	p.line(subject + ": " + p.tokenSummary(count, bitfield))
}

// Saved confirms a stored document in green, keeping the count and
// bitfield legible.
func (p *Printer) Saved(id string, count int, bitfield string) {
	p.line(p.paint("Saved "+id+":", colorOK) + " " + p.tokenSummary(count, bitfield))
}

type uiCtxKey struct{}

// WithUI stores the UI in the context.
func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, uiCtxKey{}, u)
}

// FromContext retrieves the UI from the context.
func FromContext(ctx context.Context) *UI {
	if v := ctx.Value(uiCtxKey{}); v != nil {
		if u, ok := v.(*UI); ok {
			return u
		}
	}

	return nil
}
