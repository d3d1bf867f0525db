package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/topsize/pkg/topsize/output"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// browseTitle heads the table in browse mode.
const browseTitle = "Scan Results (Press 'q' to quit)"

// minPathWidth keeps the path column usable on narrow terminals.
const minPathWidth = 10

// cellPadding is the horizontal padding bubbles/table puts around a cell.
const cellPadding = 2

// View renders the model.
func (m Model) View() string {
	switch m.state {
	case stateScanning:
		return m.scanningView()
	case stateBrowsing:
		return m.browsingView()
	default:
		return ""
	}
}

func (m Model) scanningView() string {
	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(output.Progress(m.snapshot.Totals))
	b.WriteString("\n")
	if len(m.rows) > 0 {
		b.WriteString("\n")
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) browsingView() string {
	lines := []string{
		output.TitleStyle.Render(browseTitle),
		m.table.View(),
	}

	summary := output.Summary(m.snapshot.Totals, m.snapshot.Elapsed)
	if m.snapshot.Totals.Errors > 0 || m.snapshot.Totals.PermissionDenied > 0 {
		lines = append(lines, output.WarningStyle.Render(summary))
	} else {
		lines = append(lines, output.StatusStyle.Render(summary))
	}
	if m.report != nil && m.report.Disk != nil {
		lines = append(lines, output.MutedStyle.Render(output.DiskLine(*m.report.Disk, m.opts.Output.Unit)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// setEntries replaces the ranking shown in the table.
func (m *Model) setEntries(entries []types.Candidate) {
	m.rows = output.Rows(entries, m.opts.Output)
	m.layout()
}

// layout sizes the columns and the table to the terminal.
func (m *Model) layout() {
	cols := columns(output.Columns(m.opts.Output), m.rows, m.width)
	pathWidth := cols[len(cols)-1].Width

	rows := make([]table.Row, len(m.rows))
	for i, row := range m.rows {
		r := make(table.Row, len(row))
		copy(r, row)
		if m.width > 0 {
			r[len(r)-1] = output.TruncatePath(r[len(r)-1], pathWidth)
		}
		rows[i] = r
	}

	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.width > 0 {
		m.table.SetWidth(m.width)
	}

	switch m.state {
	case stateBrowsing:
		// Title, summary and disk line sit around the table.
		m.table.SetHeight(max(m.height-4, 3))
	default:
		height := len(rows) + 2
		if m.height > 0 {
			height = min(height, max(m.height-3, 3))
		}
		m.table.SetHeight(height)
	}
}

// columns sizes every column to its widest cell. The path column, always
// last, takes whatever width remains when width is known.
func columns(headings []string, rows [][]string, width int) []table.Column {
	cols := make([]table.Column, len(headings))
	for i, heading := range headings {
		w := lipgloss.Width(heading)
		for _, row := range rows {
			w = max(w, lipgloss.Width(row[i]))
		}
		cols[i] = table.Column{Title: heading, Width: w}
	}

	if width > 0 && len(cols) > 0 {
		used := 0
		for _, c := range cols[:len(cols)-1] {
			used += c.Width + cellPadding
		}
		cols[len(cols)-1].Width = max(width-used-cellPadding, minPathWidth)
	}
	return cols
}
