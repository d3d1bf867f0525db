//go:build unix

package mounts

import (
	"fmt"
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

func deviceID(info fs.FileInfo) (uint64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Dev), true //nolint:unconvert // Dev is int32 on darwin
}

func statfs(path string) (*types.DiskUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", path, err)
	}
	bsize := uint64(st.Bsize) //nolint:unconvert // Bsize is uint32 on darwin
	return &types.DiskUsage{
		Total:     uint64(st.Blocks) * bsize,
		Available: uint64(st.Bavail) * bsize,
	}, nil
}
