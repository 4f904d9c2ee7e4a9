// Package stack provides the pluggable text transformers run by the parser.
//
// Each stack recognizes one kind of embeddable content and converts between
// its raw form, its token form, and its rendered form. Stacks never modify
// text themselves; they report substitutions for the parser to apply.
package stack

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// ErrUnknownStack is returned when a registry has no factory for a name.
var ErrUnknownStack = errors.New("unknown stack")

// Substitution replaces one match found by a stack. Offset is the byte
// position of Search in the text the stack scanned.
type Substitution struct {
	Offset  int
	Search  string
	Replace string
}

// Stack is implemented by every transformer variant.
type Stack interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)

	Option(key string) (any, bool)
	SetOption(key string, value any) error
	Options() map[string]any
	Attribute(element, name string) (string, bool)
	SetAttribute(element, name, value string)

	// ParseForStorage finds raw content and reports token replacements.
	ParseForStorage(text, bitfield string) []Substitution
	// ParseForEdit finds this stack's tokens for bitfield and reports an
	// escaped approximation of the original input for each.
	ParseForEdit(text, bitfield string) []Substitution
	// ParseForDisplay finds this stack's tokens for bitfield and reports
	// HTML for each.
	ParseForDisplay(text, bitfield string) []Substitution
}

// Factory constructs a stack with its default configuration.
type Factory func() Stack

// Registry maps stack names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding every built-in stack.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ImageName, func() Stack { return NewImage() })
	r.Register(LinkName, func() Stack { return NewLink() })
	r.Register(LinkedImageName, func() Stack { return NewLinkedImage() })
	r.Register(VideoName, func() Stack { return NewVideo() })
	r.Register(SimpleVideoName, func() Stack { return NewSimpleVideo() })
	r.Register(SpoilerName, func() Stack { return NewSpoiler() })
	r.Register(ScrubberName, func() Stack { return NewScrubber() })

	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Create builds a new stack instance by name.
func (r *Registry) Create(name string) (Stack, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known stacks: %s)", ErrUnknownStack, name, strings.Join(r.Names(), ", "))
	}

	return f(), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]

	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// collect runs re over text and builds one substitution per match.
// group selects the submatch that becomes Search; build returns the
// replacement and false to skip the match.
func collect(re *regexp.Regexp, text string, group int, build func(m []string) (string, bool)) []Substitution {
	var subs []Substitution

	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if loc[2*group] < 0 {
			continue
		}

		m := submatches(text, loc)

		repl, ok := build(m)
		if !ok {
			continue
		}

		subs = append(subs, Substitution{
			Offset:  loc[2*group],
			Search:  text[loc[2*group]:loc[2*group+1]],
			Replace: repl,
		})
	}

	return subs
}

// collectTokens is collect for token patterns: matches whose first
// submatch is not bitfield are skipped before build is called.
func collectTokens(re *regexp.Regexp, text, bitfield string, build func(m []string) (string, bool)) []Substitution {
	if bitfield == "" {
		return nil
	}

	return collect(re, text, 0, func(m []string) (string, bool) {
		if m[1] != bitfield {
			return "", false
		}

		return build(m)
	})
}

func submatches(text string, loc []int) []string {
	m := make([]string, len(loc)/2)
	for i := range m {
		if loc[2*i] >= 0 {
			m[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}

	return m
}
