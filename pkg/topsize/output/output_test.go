package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

var modTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func sampleReport() *types.Report {
	return &types.Report{
		ID:      "7f1c1c9e-2c1b-4c43-9d55-3f0a5a1c2b10",
		Root:    "/home/user",
		MinSize: 0,
		Count:   3,
		Entries: []types.Candidate{
			{Path: "/home/user/iso/big.iso", Size: 5 * types.GiB, ModTime: modTime, CreateTime: modTime.AddDate(0, -1, 0)},
			{Path: "/home/user/video.mp4", Size: 1234567890, ModTime: modTime, AccessTime: modTime.AddDate(0, 0, 2)},
			{Path: "/home/user/notes.txt", Size: 2048, ModTime: modTime},
		},
		Totals:    types.ScanResult{Files: 1234, Directories: 56, Errors: 4, PermissionDenied: 3},
		StartedAt: modTime,
		Elapsed:   1234 * time.Millisecond,
		Disk:      &types.DiskUsage{MountPoint: "/home", Total: 100 * types.GiB, Available: 25 * types.GiB},
	}
}

func format(t *testing.T, name string, opts Options, r *types.Report) string {
	t.Helper()

	f, err := Get(name, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, r))
	return buf.String()
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "paths", "plain", "pretty", "yaml"}, Available())

	_, err := Get("xml", Options{})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	r := NewRegistry()
	assert.Empty(t, r.Available())
	r.Register("paths", func(Options) Formatter { return &PathsFormatter{} })
	f, err := r.Get("paths", Options{})
	require.NoError(t, err)
	assert.IsType(t, &PathsFormatter{}, f)
}

func TestUnitFormat(t *testing.T) {
	tests := []struct {
		name string
		unit Unit
		size uint64
		want string
	}{
		{"bytes small", UnitBytes, 999, "999"},
		{"bytes separators", UnitBytes, 1234567, "1,234,567"},
		{"bytes zero", UnitBytes, 0, "0"},
		{"mib", UnitMiB, 1234567890, "1,177.376"},
		{"mib exact", UnitMiB, 3 * types.MiB, "3.000"},
		{"gib", UnitGiB, 5 * types.GiB, "5.000"},
		{"gib large", UnitGiB, 2048 * types.GiB, "2,048.000"},
		{"gib fraction", UnitGiB, types.GiB / 2, "0.500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.unit.Format(tt.size))
		})
	}
}

func TestUnitHeading(t *testing.T) {
	assert.Equal(t, "Size", UnitBytes.Heading())
	assert.Equal(t, "Size (MiB)", UnitMiB.Heading())
	assert.Equal(t, "Size (GiB)", UnitGiB.Heading())
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2025-03-14", FormatDate(modTime))
	assert.Equal(t, "-", FormatDate(time.Time{}))

	east := time.FixedZone("east", 10*3600)
	assert.Equal(t, "2025-03-13", FormatDate(time.Date(2025, 3, 14, 5, 0, 0, 0, east)))
}

func TestStatusLines(t *testing.T) {
	totals := types.ScanResult{Files: 1234, Directories: 56, Errors: 4, PermissionDenied: 3}

	assert.Equal(t, "Done. Scanned: 1,234 files, 56 dirs, 4 (3 permission blocked) errors in 1.234s.",
		Summary(totals, 1234*time.Millisecond))
	assert.Equal(t, "Done. Scanned: 0 files, 1 dirs, 0 errors in 0.000s.",
		Summary(types.ScanResult{Directories: 1}, 0))
	assert.Equal(t, "Scanning... Files: 1,234, Dirs: 56, Errors: 4 (3 permission blocked)", Progress(totals))
}

func TestDiskLine(t *testing.T) {
	d := types.DiskUsage{Total: 100 * types.GiB, Available: 25 * types.GiB}

	assert.Equal(t, "Total Disk Size: 100.000 GiB, Used: 75.00%", DiskLine(d, UnitGiB))
	assert.Equal(t, "Total Disk Size: 107,374,182,400 bytes, Used: 75.00%", DiskLine(d, UnitBytes))
}

func TestRows(t *testing.T) {
	r := sampleReport()

	assert.Equal(t, []string{"Size", "Created", "Modified", "Used", "Path"}, Columns(Options{}))
	assert.Equal(t, []string{"#", "Size (GiB)", "Created", "Modified", "Used", "Path"}, Columns(Options{Index: true, Unit: UnitGiB}))

	rows := Rows(r.Entries, Options{Index: true, Unit: UnitGiB})
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "5.000", "2025-02-14", "2025-03-14", "-", "/home/user/iso/big.iso"}, rows[0])
	assert.Equal(t, "2025-03-16", rows[1][4])
	assert.Equal(t, "3", rows[2][0])
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		width int
		want  string
	}{
		{"fits", "/a/b.txt", 20, "/a/b.txt"},
		{"unlimited", "/a/b.txt", 0, "/a/b.txt"},
		{"keeps tail", "/very/long/directory/file.bin", 12, "…ry/file.bin"},
		{"one cell", "/a/b.txt", 1, "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePath(tt.path, tt.width)
			assert.Equal(t, tt.want, got)
			if tt.width > 0 {
				assert.LessOrEqual(t, len([]rune(got)), tt.width)
			}
		})
	}
}

func TestPrettyFormatter(t *testing.T) {
	out := format(t, "pretty", Options{Unit: UnitMiB, Index: true}, sampleReport())

	assert.Contains(t, out, "Scan Results")
	assert.Contains(t, out, "/home/user/iso/big.iso")
	assert.Contains(t, out, "Size (MiB)")
	assert.Contains(t, out, "5,120.000")
	assert.Contains(t, out, "2025-03-14")
	assert.Contains(t, out, "Done. Scanned: 1,234 files")
	assert.Contains(t, out, "Total Disk Size: 102,400.000 MiB, Used: 75.00%")

	assert.Less(t, strings.Index(out, "big.iso"), strings.Index(out, "video.mp4"), "entries out of order")
}

func TestPrettyFormatterEmpty(t *testing.T) {
	r := sampleReport()
	r.Entries = nil
	r.Disk = nil

	out := format(t, "pretty", Options{}, r)

	assert.Contains(t, out, "No files found")
	assert.NotContains(t, out, "Total Disk Size")
}

func TestPrettyFormatterWidth(t *testing.T) {
	r := sampleReport()
	r.Entries[0].Path = "/home/user/" + strings.Repeat("deep/", 40) + "big.iso"

	out := format(t, "pretty", Options{Width: 100}, r)

	assert.Contains(t, out, "…")
	assert.Contains(t, out, "deep/big.iso")
	assert.NotContains(t, out, r.Entries[0].Path)
}

func TestPlainFormatter(t *testing.T) {
	out := format(t, "plain", Options{}, sampleReport())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 6)
	assert.Equal(t, []string{"Size", "Created", "Modified", "Used", "Path"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"5,368,709,120", "2025-02-14", "2025-03-14", "-", "/home/user/iso/big.iso"}, strings.Fields(lines[1]))
	assert.True(t, strings.HasPrefix(lines[4], "Done. Scanned:"))
	assert.True(t, strings.HasPrefix(lines[5], "Total Disk Size:"))
	assert.NotContains(t, out, "\x1b[", "plain output must not contain escape codes")
}

func TestCSVFormatter(t *testing.T) {
	out := format(t, "csv", Options{Unit: UnitGiB}, sampleReport())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "size,created,modified,accessed,path", lines[0])
	assert.Equal(t, "5368709120,2025-02-14,2025-03-14,-,/home/user/iso/big.iso", lines[1])
}

func TestPathsFormatter(t *testing.T) {
	out := format(t, "paths", Options{}, sampleReport())

	assert.Equal(t, "/home/user/iso/big.iso\n/home/user/video.mp4\n/home/user/notes.txt\n", out)
}

func TestJSONFormatter(t *testing.T) {
	out := format(t, "json", Options{}, sampleReport())

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "/home/user", doc["root"])
	assert.InDelta(t, 1.234, doc["elapsed_seconds"], 1e-9)

	entries := doc["entries"].([]any)
	require.Len(t, entries, 3)
	first := entries[0].(map[string]any)
	assert.InDelta(t, 1, first["rank"], 0)
	assert.InDelta(t, float64(5*types.GiB), first["size"], 0)
	assert.Equal(t, "5.0 GiB", first["size_human"])
	assert.Contains(t, first, "created")
	assert.NotContains(t, first, "accessed")

	totals := doc["totals"].(map[string]any)
	assert.InDelta(t, 3, totals["permission_denied"], 0)

	disk := doc["disk"].(map[string]any)
	assert.InDelta(t, 75.0, disk["used_percent"], 1e-9)
}

func TestYAMLFormatter(t *testing.T) {
	out := format(t, "yaml", Options{}, sampleReport())

	var doc struct {
		Root    string `yaml:"root"`
		Entries []struct {
			Rank int    `yaml:"rank"`
			Path string `yaml:"path"`
			Size uint64 `yaml:"size"`
		} `yaml:"entries"`
		Totals types.ScanResult `yaml:"totals"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "/home/user", doc.Root)
	require.Len(t, doc.Entries, 3)
	assert.Equal(t, 2, doc.Entries[1].Rank)
	assert.Equal(t, uint64(1234567890), doc.Entries[1].Size)
	assert.Equal(t, int64(56), doc.Totals.Directories)
}
