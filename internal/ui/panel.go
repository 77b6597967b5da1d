package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Row is one label/value line of a Panel.
type Row struct {
	Label string
	Value string
}

// Panel renders rows as an aligned key/value block inside a rounded border
// with title on top. Without colors the border is kept and no escape
// sequence is emitted.
func Panel(title string, rows []Row) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.Label))
	}

	colored := GetCurrentTheme().Name != NoColorTheme.Name
	label := lipgloss.NewStyle().Width(width + 2)
	head := lipgloss.NewStyle()
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if colored {
		label = label.Foreground(lipgloss.Color("245"))
		head = head.Bold(true).Foreground(lipgloss.Color("39"))
		box = box.BorderForeground(lipgloss.Color("39"))
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, head.Render(title))
	for _, r := range rows {
		lines = append(lines, label.Render(r.Label)+r.Value)
	}
	return box.Render(strings.Join(lines, "\n"))
}
