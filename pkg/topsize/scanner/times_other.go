//go:build !darwin && !linux

package scanner

import (
	"io/fs"
	"time"
)

// accessTime is not reported on this platform.
func accessTime(fs.FileInfo) time.Time {
	return time.Time{}
}

// createTime is not reported on this platform.
func createTime(string, fs.FileInfo) time.Time {
	return time.Time{}
}
