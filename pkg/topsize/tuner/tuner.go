// Package tuner derives scan concurrency and buffering from the host's CPU
// count and memory.
package tuner

import "github.com/jamesainslie/topsize/pkg/topsize/types"

// Resources describes the host.
type Resources struct {
	// CPUs is the number of logical CPUs usable by the process.
	CPUs int

	// TotalRAM is physical memory in bytes.
	TotalRAM uint64

	// FreeRAM is memory in bytes that can be used without pressure. It
	// may be an estimate.
	FreeRAM uint64
}

// Settings are the values a scan is tuned with.
type Settings struct {
	// Workers bounds concurrent directory reads.
	Workers int

	// EventBuffer is the capacity of the walker to aggregator channel.
	EventBuffer int
}

// Concurrency limits.
const (
	// Directory reads block on the disk far more than on the CPU, so the
	// walk runs several reads per core.
	readsPerCPU = 4
	minWorkers  = 8
	maxWorkers  = 128

	minEventBuffer = 256
	maxEventBuffer = 64 * 1024
)

// Memory-based buffer sizing.
const (
	// bytesPerEvent approximates one queued event: a path plus metadata.
	bytesPerEvent = 512

	// bufferMemoryFraction is the share of free memory the event buffer
	// may occupy when full.
	bufferMemoryFraction = 0.001
)

// defaultTotalRAM is assumed when memory cannot be detected.
const defaultTotalRAM = 8 * types.GiB

// Calculate returns settings suited to r.
//
//   - Workers: CPUs * 4, clamped to [8, 128].
//   - EventBuffer: 0.1% of free RAM in 512-byte events, clamped to
//     [256, 65536].
func Calculate(r Resources) Settings {
	workers := min(max(r.CPUs*readsPerCPU, minWorkers), maxWorkers)

	events := int(float64(r.FreeRAM) * bufferMemoryFraction / bytesPerEvent)
	events = min(max(events, minEventBuffer), maxEventBuffer)

	return Settings{Workers: workers, EventBuffer: events}
}

// CalculateWithOverrides is Calculate with a user-requested worker count.
// A workers value of 0 or less keeps the calculated count; larger values are
// capped at the maximum.
func CalculateWithOverrides(r Resources, workers int) Settings {
	s := Calculate(r)
	if workers > 0 {
		s.Workers = min(workers, maxWorkers)
	}
	return s
}

// Auto detects the host and returns settings for it, falling back to
// defaults for anything that cannot be detected.
func Auto(workers int) Settings {
	r, _ := Detect()
	return CalculateWithOverrides(r, workers)
}
