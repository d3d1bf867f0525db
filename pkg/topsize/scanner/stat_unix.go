//go:build unix

package scanner

import (
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

// deviceID returns the id of the device holding info's file.
func deviceID(info fs.FileInfo) (uint64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Dev), true //nolint:unconvert // Dev is int32 on darwin.
}

// checkReadable reports why dir cannot be listed, or nil when it can.
func checkReadable(dir string) error {
	return unix.Access(dir, unix.R_OK|unix.X_OK)
}
