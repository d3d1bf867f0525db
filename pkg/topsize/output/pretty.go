package output

import (
	"bytes"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// PrettyFormatter renders a bordered, colored table for terminals.
type PrettyFormatter struct {
	opts Options
}

// NewPrettyFormatter creates a PrettyFormatter.
func NewPrettyFormatter(opts Options) *PrettyFormatter {
	return &PrettyFormatter{opts: opts}
}

// Format writes the title, the table, the summary and the disk line.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *types.Report) error {
	w.WriteString(TitleStyle.Render("Scan Results"))
	w.WriteString(" ")
	w.WriteString(MutedStyle.Render(r.Root))
	w.WriteString("\n")

	if len(r.Entries) == 0 {
		w.WriteString(MutedStyle.Render("No files found matching criteria"))
		w.WriteString("\n")
	} else {
		w.WriteString(f.table(r.Entries).Render())
		w.WriteString("\n")
	}

	summary := Summary(r.Totals, r.Elapsed)
	if r.Totals.Errors > 0 || r.Totals.PermissionDenied > 0 {
		w.WriteString(WarningStyle.Render(summary))
	} else {
		w.WriteString(StatusStyle.Render(summary))
	}
	w.WriteString("\n")

	if r.Disk != nil {
		w.WriteString(MutedStyle.Render(DiskLine(*r.Disk, f.opts.Unit)))
		w.WriteString("\n")
	}
	return nil
}

func (f *PrettyFormatter) table(entries []types.Candidate) *table.Table {
	rows := Rows(entries, f.opts)
	sizeCol := sizeColumn(f.opts)
	pathCol := len(Columns(f.opts)) - 1

	if f.opts.Width > 0 {
		limit := pathWidth(rows, f.opts, f.opts.Width)
		for _, row := range rows {
			row[pathCol] = TruncatePath(row[pathCol], limit)
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(Columns(f.opts)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				if col == sizeCol {
					return HeadingStyle.Align(lipgloss.Right)
				}
				return HeadingStyle
			case col == sizeCol:
				return SizeStyle
			case col == pathCol:
				return CellStyle
			default:
				return CellStyle.Foreground(ColorMuted)
			}
		})
}

// pathWidth returns how many cells the path column may use so that the
// table fits in width. Each column costs its content plus two cells of
// padding and one border.
func pathWidth(rows [][]string, opts Options, width int) int {
	cols := Columns(opts)
	used := 1 // left border
	for i, heading := range cols[:len(cols)-1] {
		w := lipgloss.Width(heading)
		for _, row := range rows {
			w = max(w, lipgloss.Width(row[i]))
		}
		used += w + 3
	}
	used += 3 // path padding and right border
	return max(width-used, minPathWidth)
}

func init() {
	Register("pretty", func(opts Options) Formatter {
		return NewPrettyFormatter(opts)
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
