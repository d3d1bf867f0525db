// Package scanner walks a directory tree concurrently and keeps the N largest
// files it finds. Walkers forward candidate files and per-directory counts
// over a channel to a single aggregator, which owns the ranking and raises a
// shared size floor as the ranking fills so that walkers can prune early.
package scanner

import (
	"errors"
	"fmt"
	"time"

	"github.com/jamesainslie/topsize/pkg/topsize/config"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// Engine selects the traversal strategy.
type Engine string

const (
	// EngineWalk reads every directory on its own goroutine, bounding
	// concurrent reads with a semaphore. It sends one count delta per
	// directory.
	EngineWalk Engine = "walk"

	// EngineFastwalk delegates traversal to fastwalk's worker pool and
	// sends one count delta per entry.
	EngineFastwalk Engine = "fastwalk"
)

// DeviceFilter decides which filesystems a scan may descend into.
type DeviceFilter interface {
	// Allowed reports whether directories on device dev may be scanned.
	Allowed(dev uint64) bool
}

// ErrInvalidCount is returned when the requested result count is negative.
var ErrInvalidCount = errors.New("result count must be at least 1")

// ErrUnknownEngine is returned for an unrecognised Engine value.
var ErrUnknownEngine = errors.New("unknown scan engine")

// Options configures a scan.
type Options struct {
	// Root is the directory to scan.
	Root string

	// MinSize is the smallest file size, in bytes, that may be ranked.
	MinSize uint64

	// Count is the number of files to keep. Zero means the default.
	Count int

	// Engine is the traversal strategy. Empty means EngineWalk.
	Engine Engine

	// Workers bounds the number of directories read concurrently.
	Workers int

	// EventBuffer is the capacity of the channel between walkers and
	// the aggregator.
	EventBuffer int

	// RefreshEvery emits a snapshot each time this many more directories
	// have been completed.
	RefreshEvery int64

	// MinRefreshInterval rate-limits snapshots triggered by ranking
	// changes.
	MinRefreshInterval time.Duration

	// Devices restricts descent into other filesystems. Nil scans across
	// every device.
	Devices DeviceFilter

	// OnSnapshot receives in-progress snapshots and, last, the final one.
	// It is called from the aggregator goroutine only.
	OnSnapshot func(types.Snapshot)
}

// DefaultOptions returns options with sensible defaults for most systems.
func DefaultOptions() Options {
	return Options{
		Root:               config.DefaultPath,
		Count:              config.DefaultCount,
		Engine:             EngineWalk,
		Workers:            config.DefaultWorkers,
		EventBuffer:        config.DefaultEventBuffer,
		RefreshEvery:       config.DefaultRefreshEvery,
		MinRefreshInterval: config.DefaultRefreshInterval,
	}
}

// Validate applies defaults to unset fields and rejects invalid values.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = config.DefaultPath
	}
	if o.Count < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, o.Count)
	}
	if o.Count == 0 {
		o.Count = config.DefaultCount
	}
	switch o.Engine {
	case "":
		o.Engine = EngineWalk
	case EngineWalk, EngineFastwalk:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, o.Engine)
	}
	if o.Workers < 1 {
		o.Workers = config.DefaultWorkers
	}
	if o.EventBuffer < 1 {
		o.EventBuffer = config.DefaultEventBuffer
	}
	if o.RefreshEvery < 1 {
		o.RefreshEvery = config.DefaultRefreshEvery
	}
	if o.MinRefreshInterval <= 0 {
		o.MinRefreshInterval = config.DefaultRefreshInterval
	}
	return nil
}

// ParseEngine converts a configuration string to an Engine.
func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case "", EngineWalk:
		return EngineWalk, nil
	case EngineFastwalk:
		return EngineFastwalk, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}
