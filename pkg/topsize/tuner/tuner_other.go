//go:build !linux && !darwin

package tuner

import "runtime"

// Detect reads CPU count from the runtime and assumes defaultTotalRAM.
func Detect() (Resources, error) {
	return Resources{
		CPUs:     runtime.NumCPU(),
		TotalRAM: defaultTotalRAM,
		FreeRAM:  defaultTotalRAM / 2,
	}, nil
}
