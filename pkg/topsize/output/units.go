package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// Unit is the unit the size column is shown in.
type Unit int

const (
	// UnitBytes shows exact byte counts with thousands separators.
	UnitBytes Unit = iota
	// UnitMiB shows mebibytes with three decimals.
	UnitMiB
	// UnitGiB shows gibibytes with three decimals.
	UnitGiB
)

// Heading returns the size column title.
func (u Unit) Heading() string {
	switch u {
	case UnitMiB:
		return "Size (MiB)"
	case UnitGiB:
		return "Size (GiB)"
	default:
		return "Size"
	}
}

// Suffix names the unit after a number.
func (u Unit) Suffix() string {
	switch u {
	case UnitMiB:
		return "MiB"
	case UnitGiB:
		return "GiB"
	default:
		return "bytes"
	}
}

// Format renders size in u, e.g. "1,234,567" or "1,177.375".
func (u Unit) Format(size uint64) string {
	var factor uint64
	switch u {
	case UnitMiB:
		factor = types.MiB
	case UnitGiB:
		factor = types.GiB
	default:
		return humanize.Comma(int64(size))
	}

	s := strconv.FormatFloat(float64(size)/float64(factor), 'f', 3, 64)
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return s
	}
	return humanize.Comma(n) + "." + frac
}

// FormatDate renders t as YYYY-MM-DD in UTC, or "-" when t is unknown.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.DateOnly)
}

// errorText renders the error count with the permission share when there
// is one, e.g. "4 (3 permission blocked)".
func errorText(r types.ScanResult) string {
	s := humanize.Comma(r.Errors)
	if r.PermissionDenied > 0 {
		s += fmt.Sprintf(" (%s permission blocked)", humanize.Comma(r.PermissionDenied))
	}
	return s
}

// Progress is the status line shown while a scan runs.
func Progress(r types.ScanResult) string {
	return fmt.Sprintf("Scanning... Files: %s, Dirs: %s, Errors: %s",
		humanize.Comma(r.Files), humanize.Comma(r.Directories), errorText(r))
}

// Summary is the status line shown once a scan completes.
func Summary(r types.ScanResult, elapsed time.Duration) string {
	return fmt.Sprintf("Done. Scanned: %s files, %s dirs, %s errors in %.3fs.",
		humanize.Comma(r.Files), humanize.Comma(r.Directories), errorText(r), elapsed.Seconds())
}

// DiskLine describes the filesystem holding the scan root.
func DiskLine(d types.DiskUsage, u Unit) string {
	return fmt.Sprintf("Total Disk Size: %s %s, Used: %.2f%%", u.Format(d.Total), u.Suffix(), d.UsedPercent())
}

// UnitBytesRaw renders size as a bare decimal byte count.
func UnitBytesRaw(size uint64) string {
	return strconv.FormatUint(size, 10)
}
