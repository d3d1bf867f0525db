package types

import (
	"errors"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr bool
	}{
		// Basic byte values
		{name: "plain bytes", input: "1024", want: 1024},
		{name: "zero bytes", input: "0", want: 0},
		{name: "bytes with B suffix", input: "512B", want: 512},
		{name: "bytes with lowercase b", input: "512b", want: 512},
		{name: "huge plain value", input: "18446744073709551615", want: 18446744073709551615},

		// Units
		{name: "kilobytes uppercase", input: "100K", want: 100 * 1024},
		{name: "kilobytes with iB", input: "100KiB", want: 100 * 1024},
		{name: "megabytes lowercase", input: "50m", want: 50 * 1024 * 1024},
		{name: "megabytes with B", input: "50MB", want: 50 * 1024 * 1024},
		{name: "gigabytes with iB", input: "2GiB", want: 2 * 1024 * 1024 * 1024},
		{name: "terabytes", input: "1T", want: 1024 * 1024 * 1024 * 1024},

		// Whitespace handling
		{name: "both whitespace", input: "  100M  ", want: 100 * 1024 * 1024},

		// Edge cases
		{name: "decimal values truncated", input: "1.5G", want: 1610612736},
		{name: "largest whole terabyte count", input: "16777215T", want: 18446742974197923840},

		// Error cases
		{name: "empty string", input: "", wantErr: true},
		{name: "only whitespace", input: "   ", wantErr: true},
		{name: "invalid suffix", input: "100X", wantErr: true},
		{name: "negative value", input: "-100M", wantErr: true},
		{name: "letters only", input: "abc", wantErr: true},
		{name: "suffix only", input: "M", wantErr: true},
		{name: "invalid format", input: "100M100", wantErr: true},
		{name: "overflowing plain value", input: "18446744073709551616", wantErr: true},
		{name: "overflowing suffixed value", input: "20000000T", wantErr: true},
		{name: "suffixed value at 2^64", input: "16777216T", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSizeNegativeSentinel(t *testing.T) {
	_, err := ParseSize("-1")
	if !errors.Is(err, ErrNegativeSize) {
		t.Errorf("expected ErrNegativeSize, got %v", err)
	}

	_, err = ParseSize("ten")
	if !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}

	_, err = ParseSize("20000000T")
	if !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize for an overflowing size, got %v", err)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		input uint64
		want  string
	}{
		{0, "0 B"},
		{1024, "1.0 KiB"},
		{1536 * 1024, "1.5 MiB"},
		{GiB, "1.0 GiB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.input); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestScanResultAdd(t *testing.T) {
	parts := []ScanResult{
		{Files: 3, Directories: 1},
		{Files: 2, Directories: 1, Errors: 1},
		{PermissionDenied: 1},
		{},
	}

	var forward, backward ScanResult
	for _, p := range parts {
		forward.Add(p)
	}
	for i := len(parts) - 1; i >= 0; i-- {
		backward.Add(parts[i])
	}

	want := ScanResult{Files: 5, Directories: 2, Errors: 1, PermissionDenied: 1}
	if forward != want {
		t.Errorf("forward merge = %+v, want %+v", forward, want)
	}
	if backward != forward {
		t.Errorf("merge is order dependent: %+v vs %+v", backward, forward)
	}
}

func TestDiskUsage(t *testing.T) {
	d := DiskUsage{Total: 200, Available: 50}
	if d.Used() != 150 {
		t.Errorf("Used() = %d, want 150", d.Used())
	}
	if d.UsedPercent() != 75 {
		t.Errorf("UsedPercent() = %v, want 75", d.UsedPercent())
	}

	empty := DiskUsage{}
	if empty.UsedPercent() != 0 {
		t.Errorf("UsedPercent() on empty = %v, want 0", empty.UsedPercent())
	}

	odd := DiskUsage{Total: 10, Available: 20}
	if odd.Used() != 0 {
		t.Errorf("Used() with Available > Total = %d, want 0", odd.Used())
	}
}
