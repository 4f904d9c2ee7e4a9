// Package parser runs an ordered set of stacks over a text buffer for the
// storage, edit and display phases.
//
// Storage replaces recognized raw content with tokens tagged by a per-text
// bitfield. Edit and display HTML-escape the buffer first and only then
// swap tokens for their edit or HTML forms, so user markup is neutralized
// and generated markup is never escaped twice.
//
// An empty bitfield means the text holds no tokens. Display of such text
// adds no stack markup and reports a count of zero, but it still escapes,
// so feeding displayed output back into ParseForDisplay escapes it again.
// Always render from the stored text.
package parser

import (
	"cmp"
	"html"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/dedene/tungsten-cli/internal/stack"
)

// Phase names one of the three text transformations.
type Phase string

// Phases.
const (
	PhaseStorage Phase = "storage"
	PhaseEdit    Phase = "edit"
	PhaseDisplay Phase = "display"
)

// Result is the outcome of one phase.
type Result struct {
	Text     string
	Bitfield string
	Count    int
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for per-stack debug output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithLineBreaks makes the display phase turn newlines into <br /> tags.
func WithLineBreaks(on bool) Option {
	return func(p *Parser) { p.lineBreaks = on }
}

// Parser holds the ordered stacks. It is not safe for concurrent use while
// stacks are being loaded or configured.
type Parser struct {
	registry   *stack.Registry
	stacks     []stack.Stack
	loaded     map[string]stack.Stack
	logger     *slog.Logger
	lineBreaks bool
}

// New returns a Parser that builds stacks from reg.
func New(reg *stack.Registry, opts ...Option) *Parser {
	if reg == nil {
		reg = stack.NewRegistry()
	}

	p := &Parser{
		registry: reg,
		loaded:   make(map[string]stack.Stack),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// LoadStack creates the named stack and appends it to the pipeline.
// Loading a name that is already loaded does nothing.
func (p *Parser) LoadStack(name string) error {
	if _, ok := p.loaded[name]; ok {
		return nil
	}

	s, err := p.registry.Create(name)
	if err != nil {
		return err
	}

	p.AddStack(s)

	return nil
}

// AddStack appends a constructed stack unless one with the same name is
// already loaded. It reports whether the stack was added.
func (p *Parser) AddStack(s stack.Stack) bool {
	if _, ok := p.loaded[s.Name()]; ok {
		return false
	}

	p.stacks = append(p.stacks, s)
	p.loaded[s.Name()] = s

	return true
}

// GetStack returns a loaded stack by name.
func (p *Parser) GetStack(name string) (stack.Stack, bool) {
	s, ok := p.loaded[name]

	return s, ok
}

// Stacks returns the loaded stacks in pipeline order.
func (p *Parser) Stacks() []stack.Stack {
	return slices.Clone(p.stacks)
}

// ParseForStorage tokenizes raw text. The returned bitfield is empty when
// nothing was tokenized, which lets later phases skip the stacks. The text
// is not escaped.
func (p *Parser) ParseForStorage(text, bitfield string) Result {
	if bitfield == "" {
		p.logger.Debug("storage skipped: empty bitfield")

		return Result{Text: text}
	}

	text, count := p.run(PhaseStorage, text, bitfield)
	if count == 0 {
		bitfield = ""
	}

	return Result{Text: text, Bitfield: bitfield, Count: count}
}

// ParseForEdit escapes stored text and turns tokens back into an
// approximation of what the user typed.
func (p *Parser) ParseForEdit(text, bitfield string) Result {
	text = html.EscapeString(text)
	if bitfield == "" {
		return Result{Text: text}
	}

	text, count := p.run(PhaseEdit, text, bitfield)

	return Result{Text: text, Bitfield: bitfield, Count: count}
}

// ParseForDisplay escapes stored text and renders tokens as HTML.
func (p *Parser) ParseForDisplay(text, bitfield string) Result {
	text = html.EscapeString(text)
	if p.lineBreaks {
		text = newlineRe.ReplaceAllString(text, "<br />$0")
	}

	if bitfield == "" {
		return Result{Text: text}
	}

	text, count := p.run(PhaseDisplay, text, bitfield)

	return Result{Text: text, Bitfield: bitfield, Count: count}
}

var newlineRe = regexp.MustCompile(`\r\n|\n\r|\n|\r`)

func (p *Parser) run(phase Phase, text, bitfield string) (string, int) {
	total := 0

	for _, s := range p.stacks {
		if !s.Enabled() {
			continue
		}

		var subs []stack.Substitution

		switch phase {
		case PhaseStorage:
			subs = s.ParseForStorage(text, bitfield)
		case PhaseEdit:
			subs = s.ParseForEdit(text, bitfield)
		case PhaseDisplay:
			subs = s.ParseForDisplay(text, bitfield)
		}

		var n int
		text, n = apply(text, subs)
		total += n

		if len(subs) > 0 {
			p.logger.Debug("stack pass",
				"phase", phase,
				"stack", s.Name(),
				"found", len(subs),
				"applied", n,
			)
		}
	}

	return text, total
}

// apply performs each substitution once at its recorded offset. A
// substitution that overlaps an earlier one or no longer matches the text
// at its offset is dropped.
func apply(text string, subs []stack.Substitution) (string, int) {
	if len(subs) == 0 {
		return text, 0
	}

	ordered := slices.Clone(subs)
	slices.SortStableFunc(ordered, func(a, b stack.Substitution) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	var sb strings.Builder

	pos, applied := 0, 0

	for _, s := range ordered {
		end := s.Offset + len(s.Search)
		if s.Search == "" || s.Offset < pos || end > len(text) || text[s.Offset:end] != s.Search {
			continue
		}

		sb.WriteString(text[pos:s.Offset])
		sb.WriteString(s.Replace)
		pos = end
		applied++
	}

	if applied == 0 {
		return text, 0
	}

	sb.WriteString(text[pos:])

	return sb.String(), applied
}
