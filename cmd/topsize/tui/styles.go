package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/topsize/pkg/topsize/output"
)

// tableStyles is used while browsing: bold underlined headings and a
// highlighted cursor row.
func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(output.ColorBorder).
		BorderBottom(true).
		Foreground(output.ColorHeading).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.NoColor{}).
		Background(output.ColorSelect).
		Bold(false)
	return styles
}

// scanningStyles matches tableStyles without a cursor highlight, since the
// live ranking is not navigable.
func scanningStyles() table.Styles {
	styles := tableStyles()
	styles.Selected = lipgloss.NewStyle()
	return styles
}
