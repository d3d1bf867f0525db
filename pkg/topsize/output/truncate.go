package output

import "github.com/charmbracelet/lipgloss"

// minPathWidth is the narrowest a path column is ever made.
const minPathWidth = 10

// TruncatePath shortens path to at most width cells by replacing its start
// with an ellipsis, keeping the file name visible.
func TruncatePath(path string, width int) string {
	if width <= 0 || lipgloss.Width(path) <= width {
		return path
	}
	if width == 1 {
		return "…"
	}

	runes := []rune(path)
	keep := min(width-1, len(runes))
	for keep > 0 && lipgloss.Width(string(runes[len(runes)-keep:])) > width-1 {
		keep--
	}
	return "…" + string(runes[len(runes)-keep:])
}
