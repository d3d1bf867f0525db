//go:build darwin

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reads CPU count from the runtime and total memory from sysctl
// hw.memsize. macOS keeps most memory in its file cache, so half of the
// total is assumed free. On error the returned Resources still hold usable
// defaults.
func Detect() (Resources, error) {
	r := Resources{
		CPUs:     runtime.NumCPU(),
		TotalRAM: defaultTotalRAM,
		FreeRAM:  defaultTotalRAM / 2,
	}

	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return r, fmt.Errorf("sysctl hw.memsize: %w", err)
	}
	r.TotalRAM = memsize
	r.FreeRAM = memsize / 2
	return r, nil
}
