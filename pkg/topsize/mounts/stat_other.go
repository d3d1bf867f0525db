//go:build !unix

package mounts

import (
	"io/fs"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

func deviceID(fs.FileInfo) (uint64, bool) { return 0, false }

func statfs(string) (*types.DiskUsage, error) { return nil, ErrUnsupported }
