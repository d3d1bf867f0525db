package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"text/tabwriter"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// PlainFormatter writes an aligned table without color, followed by the
// summary and disk lines. It suits piping into pagers and logs.
type PlainFormatter struct {
	opts Options
}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *types.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := tw.Write([]byte(strings.Join(Columns(f.opts), "\t") + "\n")); err != nil {
		return err
	}
	for _, row := range Rows(r.Entries, f.opts) {
		if _, err := tw.Write([]byte(strings.Join(row, "\t") + "\n")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	w.WriteString(Summary(r.Totals, r.Elapsed))
	w.WriteString("\n")
	if r.Disk != nil {
		w.WriteString(DiskLine(*r.Disk, f.opts.Unit))
		w.WriteString("\n")
	}
	return nil
}

// CSVFormatter writes entries as RFC 4180 CSV with a header row. Sizes are
// always exact byte counts.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *types.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"size", "created", "modified", "accessed", "path"}); err != nil {
		return err
	}
	for _, e := range r.Entries {
		record := []string{
			UnitBytesRaw(e.Size),
			FormatDate(e.CreateTime),
			FormatDate(e.ModTime),
			FormatDate(e.AccessTime),
			e.Path,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PathsFormatter writes one path per line, largest first, for use with
// xargs and similar tools.
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *types.Report) error {
	for _, e := range r.Entries {
		w.WriteString(e.Path)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("plain", func(opts Options) Formatter { return &PlainFormatter{opts: opts} })
	Register("csv", func(Options) Formatter { return &CSVFormatter{} })
	Register("paths", func(Options) Formatter { return &PathsFormatter{} })
}

var (
	_ Formatter = (*PlainFormatter)(nil)
	_ Formatter = (*CSVFormatter)(nil)
	_ Formatter = (*PathsFormatter)(nil)
)
