// Package mounts answers questions about the filesystems a scan may cross:
// which are mounted, which devices hold real data, and how full the
// filesystem under a path is.
package mounts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// ErrUnsupported is returned where the platform offers no mount table.
var ErrUnsupported = errors.New("mount enumeration not supported on this platform")

// Mount is one entry of the mount table.
type Mount struct {
	Source     string
	MountPoint string
	FSType     string
}

// virtualTypes are filesystems that expose kernel state rather than stored
// files.
var virtualTypes = map[string]bool{
	"autofs":      true,
	"binfmt_misc": true,
	"bpf":         true,
	"cgroup":      true,
	"cgroup2":     true,
	"configfs":    true,
	"debugfs":     true,
	"devfs":       true,
	"devpts":      true,
	"devtmpfs":    true,
	"efivarfs":    true,
	"fusectl":     true,
	"hugetlbfs":   true,
	"mqueue":      true,
	"nsfs":        true,
	"proc":        true,
	"pstore":      true,
	"rpc_pipefs":  true,
	"securityfs":  true,
	"selinuxfs":   true,
	"sysfs":       true,
	"tracefs":     true,
}

// Virtual reports whether m is a pseudo filesystem such as /proc or /sys.
func (m Mount) Virtual() bool {
	return virtualTypes[m.FSType]
}

// DeviceSet is a set of device ids. It satisfies scanner.DeviceFilter.
type DeviceSet map[uint64]struct{}

// Allowed reports whether dev is in the set.
func (s DeviceSet) Allowed(dev uint64) bool {
	_, ok := s[dev]
	return ok
}

// AllowedDevices returns the devices of every mounted filesystem that is not
// virtual. Mount points that cannot be stat'ed are left out.
func AllowedDevices() (DeviceSet, error) {
	mounts, err := Enumerate()
	if err != nil {
		return nil, err
	}
	return devicesOf(mounts), nil
}

func devicesOf(mounts []Mount) DeviceSet {
	set := make(DeviceSet, len(mounts))
	for _, m := range mounts {
		if m.Virtual() {
			continue
		}
		info, err := os.Stat(m.MountPoint)
		if err != nil {
			continue
		}
		if dev, ok := deviceID(info); ok {
			set[dev] = struct{}{}
		}
	}
	return set
}

// MountPointOf returns the mount point of the longest entry in mounts that
// contains path, or "" when none does. path must be absolute and clean.
func MountPointOf(mounts []Mount, path string) string {
	best := ""
	for _, m := range mounts {
		if within(path, m.MountPoint) && len(m.MountPoint) > len(best) {
			best = m.MountPoint
		}
	}
	return best
}

func within(path, dir string) bool {
	if dir == "/" || path == dir {
		return true
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}

// Usage returns the size and free space of the filesystem holding path.
// MountPoint is filled in when the mount table is available.
func Usage(path string) (*types.DiskUsage, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	usage, err := statfs(abs)
	if err != nil {
		return nil, err
	}
	if mounts, err := Enumerate(); err == nil {
		usage.MountPoint = MountPointOf(mounts, abs)
	}
	return usage, nil
}
