//go:build darwin

package mounts

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Enumerate lists mounted filesystems with getfsstat(2).
func Enumerate() ([]Mount, error) {
	n, err := unix.Getfsstat(nil, unix.MNT_NOWAIT)
	if err != nil {
		return nil, fmt.Errorf("getfsstat: %w", err)
	}

	buf := make([]unix.Statfs_t, n)
	n, err = unix.Getfsstat(buf, unix.MNT_NOWAIT)
	if err != nil {
		return nil, fmt.Errorf("getfsstat: %w", err)
	}

	mounts := make([]Mount, 0, n)
	for _, st := range buf[:n] {
		mounts = append(mounts, Mount{
			Source:     unix.ByteSliceToString(st.Mntfromname[:]),
			MountPoint: unix.ByteSliceToString(st.Mntonname[:]),
			FSType:     unix.ByteSliceToString(st.Fstypename[:]),
		})
	}
	return mounts, nil
}
