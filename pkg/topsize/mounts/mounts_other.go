//go:build !linux && !darwin

package mounts

// Enumerate is not available on this platform.
func Enumerate() ([]Mount, error) {
	return nil, ErrUnsupported
}
