package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/dedene/tungsten-cli/internal/config"
	"github.com/dedene/tungsten-cli/internal/parser"
	"github.com/dedene/tungsten-cli/internal/stack"
	"github.com/dedene/tungsten-cli/internal/store"
)

// configFrom returns the context config or an empty one.
func configFrom(ctx context.Context) *config.Config {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg
	}

	return &config.Config{}
}

// newParser builds the configured pipeline: stacks in order, per-stack
// options and attributes applied, disabled stacks switched off.
func newParser(cfg *config.Config) (*parser.Parser, error) {
	p := parser.New(stack.DefaultRegistry(),
		parser.WithLogger(slog.Default()),
		parser.WithLineBreaks(cfg.LineBreaksEnabled()),
	)

	for _, name := range cfg.StackNames() {
		if err := p.LoadStack(name); err != nil {
			return nil, fmt.Errorf("config stacks: %w", err)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(cfg.Options)) {
		s, ok := p.GetStack(name)
		if !ok {
			slog.Debug("options for stack not in pipeline", "stack", name)
			continue
		}

		opts := cfg.Options[name]
		for _, key := range slices.Sorted(maps.Keys(opts)) {
			if err := s.SetOption(key, opts[key]); err != nil {
				return nil, fmt.Errorf("config options: %w", err)
			}
		}
	}

	for name, elems := range cfg.Attributes {
		s, ok := p.GetStack(name)
		if !ok {
			slog.Debug("attributes for stack not in pipeline", "stack", name)
			continue
		}

		for _, elem := range slices.Sorted(maps.Keys(elems)) {
			attrs := elems[elem]
			for _, attr := range slices.Sorted(maps.Keys(attrs)) {
				s.SetAttribute(elem, attr, attrs[attr])
			}
		}
	}

	for _, name := range cfg.Disabled {
		if s, ok := p.GetStack(name); ok {
			s.SetEnabled(false)
		}
	}

	return p, nil
}

// openStore returns the document store for the configured directory.
func openStore(cfg *config.Config) (*store.Store, error) {
	dir, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}

	return store.New(dir), nil
}

// optionSummary renders a stack's options as sorted key=value pairs.
func optionSummary(s stack.Stack) string {
	opts := s.Options()
	parts := make([]string, 0, len(opts))

	for _, k := range slices.Sorted(maps.Keys(opts)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, opts[k]))
	}

	return strings.Join(parts, " ")
}
