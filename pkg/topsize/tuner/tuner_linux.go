//go:build linux

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reads CPU count from the runtime and memory from sysinfo(2). Free
// memory includes buffers, which the kernel reclaims on demand. On error the
// returned Resources still hold usable defaults.
func Detect() (Resources, error) {
	r := Resources{
		CPUs:     runtime.NumCPU(),
		TotalRAM: defaultTotalRAM,
		FreeRAM:  defaultTotalRAM / 2,
	}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return r, fmt.Errorf("sysinfo: %w", err)
	}

	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	r.TotalRAM = uint64(info.Totalram) * unit
	r.FreeRAM = (uint64(info.Freeram) + uint64(info.Bufferram)) * unit
	return r, nil
}
