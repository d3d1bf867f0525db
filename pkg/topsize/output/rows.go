package output

import (
	"strconv"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// Columns returns the table headings for opts.
func Columns(opts Options) []string {
	cols := make([]string, 0, 6)
	if opts.Index {
		cols = append(cols, "#")
	}
	return append(cols, opts.Unit.Heading(), "Created", "Modified", "Used", "Path")
}

// Rows renders entries as table cells matching Columns.
func Rows(entries []types.Candidate, opts Options) [][]string {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		row := make([]string, 0, 6)
		if opts.Index {
			row = append(row, strconv.Itoa(i+1))
		}
		rows = append(rows, append(row,
			opts.Unit.Format(e.Size),
			FormatDate(e.CreateTime),
			FormatDate(e.ModTime),
			FormatDate(e.AccessTime),
			e.Path,
		))
	}
	return rows
}

// sizeColumn is the index of the size column.
func sizeColumn(opts Options) int {
	if opts.Index {
		return 1
	}
	return 0
}
