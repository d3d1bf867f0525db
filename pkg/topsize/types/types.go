// Package types provides the core data types shared by the topsize scanner,
// the aggregator and the reporters, along with helpers for parsing and
// formatting file sizes.
package types

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB uint64 = 1024
	MiB uint64 = 1024 * KiB
	GiB uint64 = 1024 * MiB
	TiB uint64 = 1024 * GiB
)

// Candidate is a file discovered during a scan whose size met the floor the
// walker observed at discovery time. A Candidate is never mutated after the
// walker creates it.
type Candidate struct {
	// Path is the absolute path to the file.
	Path string `json:"path" yaml:"path"`

	// Size is the file size in bytes.
	Size uint64 `json:"size" yaml:"size"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`

	// CreateTime is the birth time of the file. Zero when the platform or
	// filesystem does not record it.
	CreateTime time.Time `json:"create_time,omitempty" yaml:"create_time,omitempty"`

	// AccessTime is the last access time of the file. Zero when unavailable.
	AccessTime time.Time `json:"access_time,omitempty" yaml:"access_time,omitempty"`
}

// HumanSize returns the candidate size formatted with IEC units.
func (c *Candidate) HumanSize() string {
	return FormatSize(c.Size)
}

// ScanResult accumulates the file, directory and error counts of a scan.
// Merging is a field-wise sum, so partial results can be combined in any
// order.
type ScanResult struct {
	// Files is the number of non-directory entries seen, symlinks included.
	Files int64 `json:"files" yaml:"files"`

	// Directories is the number of directories successfully read.
	Directories int64 `json:"directories" yaml:"directories"`

	// Errors is the number of entries or directories that failed for a
	// reason other than missing permissions.
	Errors int64 `json:"errors" yaml:"errors"`

	// PermissionDenied is the number of entries or directories that could
	// not be read because access was denied.
	PermissionDenied int64 `json:"permission_denied" yaml:"permission_denied"`
}

// Add merges other into r.
func (r *ScanResult) Add(other ScanResult) {
	r.Files += other.Files
	r.Directories += other.Directories
	r.Errors += other.Errors
	r.PermissionDenied += other.PermissionDenied
}

// Snapshot is the view handed to a reporter while the scan runs and once
// more when it completes.
type Snapshot struct {
	// Entries is the current ranking, largest first.
	Entries []Candidate `json:"entries" yaml:"entries"`

	// Totals is the running scan total at the time of the snapshot.
	Totals ScanResult `json:"totals" yaml:"totals"`

	// Floor is the pruning threshold in effect when the snapshot was taken.
	Floor uint64 `json:"floor" yaml:"floor"`

	// Final marks the last snapshot of a scan.
	Final bool `json:"final" yaml:"final"`

	// Elapsed is the wall-clock duration of the scan. It is set on every
	// snapshot; on the final one it is the total scan time.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// DiskUsage describes the filesystem that holds the scan root.
type DiskUsage struct {
	// MountPoint is where the filesystem is mounted, when known.
	MountPoint string `json:"mount_point,omitempty" yaml:"mount_point,omitempty"`

	// Total is the filesystem size in bytes.
	Total uint64 `json:"total" yaml:"total"`

	// Available is the space available to unprivileged users in bytes.
	Available uint64 `json:"available" yaml:"available"`
}

// Used returns the number of bytes not available.
func (d DiskUsage) Used() uint64 {
	if d.Available > d.Total {
		return 0
	}
	return d.Total - d.Available
}

// UsedPercent returns the used share of the filesystem as a percentage.
func (d DiskUsage) UsedPercent() float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Used()) / float64(d.Total) * 100
}

// Report is the outcome of a completed scan.
type Report struct {
	// ID uniquely identifies the scan.
	ID string `json:"id" yaml:"id"`

	// Root is the absolute path that was scanned.
	Root string `json:"root" yaml:"root"`

	// MinSize is the configured minimum size.
	MinSize uint64 `json:"min_size" yaml:"min_size"`

	// Count is the configured number of entries to keep.
	Count int `json:"count" yaml:"count"`

	// Entries is the final ranking, largest first.
	Entries []Candidate `json:"entries" yaml:"entries"`

	// Totals is the final scan total.
	Totals ScanResult `json:"totals" yaml:"totals"`

	// StartedAt is when the scan began.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Elapsed is the total wall-clock duration of the scan.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`

	// Disk describes the filesystem holding Root. Nil when unavailable.
	Disk *DiskUsage `json:"disk,omitempty" yaml:"disk,omitempty"`
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// It accepts plain byte counts ("1024") and K, M, G and T suffixes with
// optional "B" or "iB" ("100K", "50MB", "2GiB"), all interpreted as binary
// units. Decimal values are truncated to the nearest byte.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	// Plain integers are parsed exactly to avoid float rounding on huge values.
	if matches[2] == "" && !strings.Contains(matches[1], ".") {
		value, err := strconv.ParseUint(matches[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
		}
		return value, nil
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier uint64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	product := value * float64(multiplier)
	// float64(math.MaxUint64) rounds up to 2^64, which does not fit.
	if product >= float64(math.MaxUint64) {
		return 0, fmt.Errorf("%w: %q exceeds the largest representable size", ErrInvalidSize, s)
	}
	return uint64(product), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units, e.g. FormatSize(1536*1024) returns "1.5 MiB".
func FormatSize(bytes uint64) string {
	return humanize.IBytes(bytes)
}
