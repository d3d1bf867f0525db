package output

import "github.com/charmbracelet/lipgloss"

// ANSI 256-color palette shared by the pretty formatter and the live view.
const (
	ColorBorder  = lipgloss.Color("240")
	ColorHeading = lipgloss.Color("214")
	ColorSize    = lipgloss.Color("39")
	ColorMuted   = lipgloss.Color("245")
	ColorWarning = lipgloss.Color("196")
	ColorSelect  = lipgloss.Color("57")
)

var (
	// TitleStyle renders the table title.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSize)

	// HeadingStyle renders column headings.
	HeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHeading).Padding(0, 1)

	// CellStyle renders ordinary cells.
	CellStyle = lipgloss.NewStyle().Padding(0, 1)

	// SizeStyle renders the size column.
	SizeStyle = CellStyle.Foreground(ColorSize).Align(lipgloss.Right)

	// MutedStyle renders secondary text such as dates and the disk line.
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// StatusStyle renders the summary line.
	StatusStyle = lipgloss.NewStyle().Bold(true)

	// WarningStyle highlights permission and read failures.
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
)
