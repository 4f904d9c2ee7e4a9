package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7c3aed"))
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// RenderTable builds a formatted table string using lipgloss.
// When color is true, headers are styled; otherwise a plain table is produced.
func RenderTable(headers []string, rows [][]string, color bool) string {
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		BorderColumn(true).
		BorderHeader(true)

	if color {
		cellStyle := lipgloss.NewStyle()

		t.StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})
	}

	return t.Render()
}

// StatusCell renders an on/off flag for a table cell.
func StatusCell(on, color bool) string {
	label, style := "off", disabledStyle
	if on {
		label, style = "on", enabledStyle
	}

	if !color {
		return label
	}

	return style.Render(label)
}
