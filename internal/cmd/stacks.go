package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dedene/tungsten-cli/internal/config"
	"github.com/dedene/tungsten-cli/internal/outfmt"
	"github.com/dedene/tungsten-cli/internal/parser"
	"github.com/dedene/tungsten-cli/internal/stack"
	"github.com/dedene/tungsten-cli/internal/tui"
	"github.com/dedene/tungsten-cli/internal/ui"
)

// StacksCmd shows the stack pipeline or edits it interactively.
type StacksCmd struct {
	List bool `help:"Print the pipeline table even on a terminal" short:"l"`
}

type stackRow struct {
	Name    string         `json:"name"`
	Loaded  bool           `json:"loaded"`
	Enabled bool           `json:"enabled"`
	Options map[string]any `json:"options,omitempty"`
}

// runTeaProgram is swappable in tests.
var runTeaProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithInputTTY()).Run()
}

// Run executes the stacks command.
func (c *StacksCmd) Run(ctx context.Context, root *RootFlags) error {
	cfg := configFrom(ctx)

	p, err := newParser(cfg)
	if err != nil {
		return err
	}

	if stdoutIsTTY() && !outfmt.IsJSON(ctx) && !root.NoInput && !c.List {
		return c.runInteractive(ctx, p)
	}

	return c.runList(ctx, p)
}

// pipelineRows lists loaded stacks in order, then registered stacks that
// are not part of the pipeline.
func pipelineRows(p *parser.Parser, reg *stack.Registry) []stackRow {
	loaded := p.Stacks()
	rows := make([]stackRow, 0, len(reg.Names()))

	for _, s := range loaded {
		rows = append(rows, stackRow{Name: s.Name(), Loaded: true, Enabled: s.Enabled(), Options: s.Options()})
	}

	for _, name := range reg.Names() {
		if _, ok := p.GetStack(name); ok {
			continue
		}

		rows = append(rows, stackRow{Name: name})
	}

	return rows
}

func (c *StacksCmd) runList(ctx context.Context, p *parser.Parser) error {
	rows := pipelineRows(p, stack.DefaultRegistry())

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, rows)
	}

	color := colorEnabled(ctx)
	cells := make([][]string, 0, len(rows))

	for i, r := range rows {
		pos, status, opts := "-", "unloaded", ""
		if r.Loaded {
			pos = strconv.Itoa(i + 1)
			status = ui.StatusCell(r.Enabled, color)

			s, _ := p.GetStack(r.Name)
			opts = optionSummary(s)
		}

		cells = append(cells, []string{pos, r.Name, status, opts})
	}

	fmt.Fprint(os.Stdout, ui.RenderTable([]string{"#", "Stack", "Status", "Options"}, cells, color))
	fmt.Fprintln(os.Stdout)

	return nil
}

func (c *StacksCmd) runInteractive(ctx context.Context, p *parser.Parser) error {
	rows := pipelineRows(p, stack.DefaultRegistry())

	items := make([]tui.StackItem, len(rows))
	for i, r := range rows {
		summary := "not loaded"
		if s, ok := p.GetStack(r.Name); ok {
			summary = optionSummary(s)
		}

		items[i] = tui.NewStackItem(r.Name, r.Loaded && r.Enabled, summary)
	}

	result, err := runTeaProgram(tui.NewToggler(items))
	if err != nil {
		return fmt.Errorf("interactive picker: %w", err)
	}

	picker, ok := result.(tui.Model)
	if !ok {
		return errors.New("unexpected picker result type")
	}

	if picker.Cancelled() || !picker.Confirmed() {
		return nil
	}

	return savePipeline(ctx, picker.Order(), picker.Disabled())
}

// savePipeline persists a stack order and disabled set to the config file.
func savePipeline(ctx context.Context, order, disabled []string) error {
	cfgPath, err := config.Path()
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	cfg.Stacks = slices.Clone(order)
	cfg.Disabled = slices.Clone(disabled)

	if len(cfg.Disabled) == 0 {
		cfg.Disabled = nil
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	successf(ctx, "Saved pipeline: %d stacks, %d disabled", len(order), len(disabled))

	return nil
}
