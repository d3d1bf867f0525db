//go:build !unix

package scanner

import "io/fs"

// deviceID is unavailable on this platform; device filtering is disabled.
func deviceID(fs.FileInfo) (uint64, bool) {
	return 0, false
}

// checkReadable always succeeds; unreadable directories surface as walk
// errors instead.
func checkReadable(string) error {
	return nil
}
