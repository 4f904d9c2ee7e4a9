package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the bubbletea model for the stack toggler. Space toggles the
// selected stack, K/J (or shift+up/down) move it, enter saves and esc
// discards.
type Model struct {
	list      list.Model
	cancelled bool
	confirmed bool
	width     int
	height    int
	ready     bool
}

var helpKeys = []key.Binding{
	key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
	key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
	key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
}

// NewToggler creates a toggler over items in pipeline order.
func NewToggler(items []StackItem) Model {
	li := make([]list.Item, len(items))
	for i, it := range items {
		li[i] = it
	}

	l := list.New(li, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Stacks (pipeline order)"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.AdditionalShortHelpKeys = func() []key.Binding { return helpKeys }

	return Model{list: l}
}

// Init returns the initial command. The list handles its own init internally.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		m.ready = true

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancelled = true

			return m, tea.Quit

		case "enter":
			m.confirmed = true

			return m, tea.Quit

		case " ", "x":
			return m.toggle()

		case "K", "shift+up":
			return m.move(-1)

		case "J", "shift+down":
			return m.move(1)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m Model) toggle() (tea.Model, tea.Cmd) {
	idx := m.list.Index()

	item, ok := m.list.SelectedItem().(StackItem)
	if !ok {
		return m, nil
	}

	return m, m.list.SetItem(idx, item.toggled())
}

func (m Model) move(delta int) (tea.Model, tea.Cmd) {
	idx := m.list.Index()
	to := idx + delta

	items := m.list.Items()
	if to < 0 || to >= len(items) {
		return m, nil
	}

	items[idx], items[to] = items[to], items[idx]
	cmd := m.list.SetItems(items)
	m.list.Select(to)

	return m, cmd
}

// View renders the list.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	return m.list.View()
}

// Cancelled returns true if the user discarded their changes.
func (m Model) Cancelled() bool { return m.cancelled }

// Confirmed returns true if the user saved.
func (m Model) Confirmed() bool { return m.confirmed }

// Items returns the rows in their current order.
func (m Model) Items() []StackItem {
	out := make([]StackItem, 0, len(m.list.Items()))

	for _, li := range m.list.Items() {
		if it, ok := li.(StackItem); ok {
			out = append(out, it)
		}
	}

	return out
}

// Order returns the stack names in their current order.
func (m Model) Order() []string {
	items := m.Items()
	names := make([]string, len(items))

	for i, it := range items {
		names[i] = it.Name()
	}

	return names
}

// Disabled returns the names of stacks that are switched off.
func (m Model) Disabled() []string {
	var names []string

	for _, it := range m.Items() {
		if !it.Enabled() {
			names = append(names, it.Name())
		}
	}

	return names
}
