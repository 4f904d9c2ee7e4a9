// Package tui provides the interactive Bubbletea stack toggler.
package tui

// StackItem is one row of the toggler. It implements the bubbles
// list.DefaultItem interface.
type StackItem struct {
	name    string
	enabled bool
	summary string
}

// NewStackItem creates a row for a registered stack. summary is shown
// under the name, typically its options.
func NewStackItem(name string, enabled bool, summary string) StackItem {
	return StackItem{name: name, enabled: enabled, summary: summary}
}

// Title returns the name with a checkbox.
func (i StackItem) Title() string {
	if i.enabled {
		return "[x] " + i.name
	}

	return "[ ] " + i.name
}

// Description returns the option summary.
func (i StackItem) Description() string { return i.summary }

// FilterValue returns the stack name.
func (i StackItem) FilterValue() string { return i.name }

// Name returns the stack name.
func (i StackItem) Name() string { return i.name }

// Enabled reports whether the stack is switched on.
func (i StackItem) Enabled() bool { return i.enabled }

func (i StackItem) toggled() StackItem {
	i.enabled = !i.enabled

	return i
}
