//go:build linux

package mounts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMounts = `sysfs /sys sysfs rw,nosuid,nodev,noexec,relatime 0 0
proc /proc proc rw,nosuid,nodev,noexec,relatime 0 0
/dev/nvme0n1p2 / ext4 rw,relatime 0 0
/dev/nvme0n1p1 /boot/efi vfat rw,relatime,fmask=0077 0 0
tmpfs /run tmpfs rw,nosuid,nodev,size=3264672k,mode=755 0 0
//server/share /mnt/my\040share cifs rw,relatime 0 0
broken-line
`

func TestParseMounts(t *testing.T) {
	mounts, err := parseMounts(strings.NewReader(sampleMounts))
	require.NoError(t, err)
	require.Len(t, mounts, 6)

	assert.Equal(t, Mount{Source: "/dev/nvme0n1p2", MountPoint: "/", FSType: "ext4"}, mounts[2])
	assert.Equal(t, "/mnt/my share", mounts[5].MountPoint)
	assert.True(t, mounts[0].Virtual())
	assert.True(t, mounts[1].Virtual())
	assert.False(t, mounts[2].Virtual())
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/plain", "/plain"},
		{`/a\040b`, "/a b"},
		{`/tab\011here`, "/tab\there"},
		{`/back\134slash`, `/back\slash`},
		{`/short\04`, `/short\04`},
		{`/bad\999`, `/bad\999`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, unescape(tt.in))
		})
	}
}

func TestEnumerate(t *testing.T) {
	mounts, err := Enumerate()
	require.NoError(t, err)
	require.NotEmpty(t, mounts)

	var hasRoot bool
	for _, m := range mounts {
		if m.MountPoint == "/" {
			hasRoot = true
		}
	}
	assert.True(t, hasRoot, "mount table has no root entry")
}

func TestAllowedDevicesIncludesRoot(t *testing.T) {
	set, err := AllowedDevices()
	require.NoError(t, err)
	assert.NotEmpty(t, set)
}
