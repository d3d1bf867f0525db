package output

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// document is the structure the json and yaml formatters serialise.
type document struct {
	ID             string           `json:"id,omitempty" yaml:"id,omitempty"`
	Root           string           `json:"root" yaml:"root"`
	MinSize        uint64           `json:"min_size" yaml:"min_size"`
	Count          int              `json:"count" yaml:"count"`
	StartedAt      time.Time        `json:"started_at" yaml:"started_at"`
	ElapsedSeconds float64          `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	Entries        []documentEntry  `json:"entries" yaml:"entries"`
	Totals         types.ScanResult `json:"totals" yaml:"totals"`
	Disk           *documentDisk    `json:"disk,omitempty" yaml:"disk,omitempty"`
}

type documentEntry struct {
	Rank      int        `json:"rank" yaml:"rank"`
	Path      string     `json:"path" yaml:"path"`
	Size      uint64     `json:"size" yaml:"size"`
	SizeHuman string     `json:"size_human" yaml:"size_human"`
	Modified  time.Time  `json:"modified" yaml:"modified"`
	Created   *time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	Accessed  *time.Time `json:"accessed,omitempty" yaml:"accessed,omitempty"`
}

type documentDisk struct {
	MountPoint  string  `json:"mount_point,omitempty" yaml:"mount_point,omitempty"`
	Total       uint64  `json:"total" yaml:"total"`
	Available   uint64  `json:"available" yaml:"available"`
	UsedPercent float64 `json:"used_percent" yaml:"used_percent"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func newDocument(r *types.Report) document {
	entries := make([]documentEntry, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = documentEntry{
			Rank:      i + 1,
			Path:      e.Path,
			Size:      e.Size,
			SizeHuman: e.HumanSize(),
			Modified:  e.ModTime,
			Created:   optionalTime(e.CreateTime),
			Accessed:  optionalTime(e.AccessTime),
		}
	}

	doc := document{
		ID:             r.ID,
		Root:           r.Root,
		MinSize:        r.MinSize,
		Count:          r.Count,
		StartedAt:      r.StartedAt,
		ElapsedSeconds: r.Elapsed.Seconds(),
		Entries:        entries,
		Totals:         r.Totals,
	}
	if r.Disk != nil {
		doc.Disk = &documentDisk{
			MountPoint:  r.Disk.MountPoint,
			Total:       r.Disk.Total,
			Available:   r.Disk.Available,
			UsedPercent: r.Disk.UsedPercent(),
		}
	}
	return doc
}

// JSONFormatter writes the report as one indented JSON document.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *types.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(r))
}

func init() {
	Register("json", func(Options) Formatter { return &JSONFormatter{} })
}

var _ Formatter = (*JSONFormatter)(nil)
