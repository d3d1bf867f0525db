//go:build linux

package mounts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const mountTable = "/proc/self/mounts"

// Enumerate reads the mount table of the current process.
func Enumerate() ([]Mount, error) {
	f, err := os.Open(mountTable)
	if err != nil {
		return nil, fmt.Errorf("reading mount table: %w", err)
	}
	defer f.Close()

	return parseMounts(f)
}

// parseMounts parses fstab-formatted lines: source, mount point and type,
// whitespace separated, with spaces and tabs octal-escaped.
func parseMounts(r io.Reader) ([]Mount, error) {
	var mounts []Mount
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		mounts = append(mounts, Mount{
			Source:     unescape(fields[0]),
			MountPoint: unescape(fields[1]),
			FSType:     fields[2],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading mount table: %w", err)
	}
	return mounts, nil
}

// unescape decodes the \NNN octal escapes the kernel writes for space, tab,
// newline and backslash.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
