// Package config provides configuration management for topsize.
package config

import "time"

// Default configuration values for topsize.
const (
	// DefaultMinSize is the smallest file size that may be ranked.
	DefaultMinSize = "0"

	// DefaultCount is the number of largest files to report.
	DefaultCount = 10

	// DefaultPath is the default path to scan when none is specified.
	DefaultPath = "."

	// DefaultEngine is the traversal engine used when none is configured.
	DefaultEngine = "walk"

	// DefaultOutput is the output format for non-interactive runs.
	DefaultOutput = "pretty"

	// DefaultWorkers bounds concurrent directory reads when the tuner is
	// not consulted.
	DefaultWorkers = 8

	// DefaultEventBuffer is the capacity of the walker to aggregator channel.
	DefaultEventBuffer = 1024

	// DefaultRefreshEvery is the number of completed directories between
	// progress snapshots.
	DefaultRefreshEvery = 10

	// DefaultRefreshInterval rate-limits snapshots caused by ranking changes.
	DefaultRefreshInterval = 50 * time.Millisecond

	// DefaultRetentionDays is the number of days scan history is kept.
	DefaultRetentionDays = 30

	// DefaultHistoryLimit is the number of history entries listed by default.
	DefaultHistoryLimit = 20
)
