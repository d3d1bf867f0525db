package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/topsize/pkg/topsize/threshold"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// fastWalker adapts fastwalk's callback model to the event protocol.
//
// fastwalk gives no signal when a directory is finished, so counts are sent
// as one delta per entry. Directories are checked for readability before
// fastwalk descends, which keeps the counting convention identical to the
// walk engine: an unreadable directory is a failure, not a directory.
type fastWalker struct {
	floor   *threshold.Threshold
	out     chan<- event
	devices DeviceFilter
	workers int
}

func newFastWalker(opts Options, floor *threshold.Threshold, out chan<- event) *fastWalker {
	return &fastWalker{
		floor:   floor,
		out:     out,
		devices: opts.Devices,
		workers: opts.Workers,
	}
}

// run scans root and returns once fastwalk has visited every entry.
func (w *fastWalker) run(root string) error {
	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: w.workers,
	}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		var delta types.ScanResult
		defer func() { w.out <- deltaEvent(delta) }()

		if err != nil {
			logger.Debug("walk error", "path", path, "err", err)
			countFailure(&delta, err)
			return nil
		}

		typ := d.Type()
		switch {
		case typ&fs.ModeSymlink != 0:
			delta.Files++

		case d.IsDir():
			if path != root {
				if skip := w.skipDir(path, d, &delta); skip {
					return fastwalk.SkipDir
				}
			}
			delta.Directories++

		default:
			info, err := d.Info()
			if err != nil {
				logger.Debug("cannot stat file", "path", path, "err", err)
				countFailure(&delta, err)
				return nil
			}
			delta.Files++
			if info.Mode().IsRegular() && uint64(info.Size()) >= w.floor.Load() {
				w.out <- candidateEvent(newCandidate(path, info))
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
		return err
	}
	return nil
}

// skipDir reports whether fastwalk must not descend into the directory at
// path, counting the reason in delta when it is a failure.
func (w *fastWalker) skipDir(path string, d fs.DirEntry, delta *types.ScanResult) bool {
	if w.devices != nil {
		info, err := d.Info()
		if err != nil {
			countFailure(delta, err)
			return true
		}
		if dev, ok := deviceID(info); ok && !w.devices.Allowed(dev) {
			parent, err := os.Lstat(filepath.Dir(path))
			if err != nil {
				countFailure(delta, err)
				return true
			}
			parentDev, _ := deviceID(parent)
			if skipDevice(w.devices, dev, parentDev) {
				logger.Debug("not crossing into device", "path", path, "dev", dev)
				return true
			}
		}
	}

	if err := checkReadable(path); err != nil {
		logger.Debug("cannot open directory", "path", path, "err", err)
		countFailure(delta, err)
		return true
	}
	return false
}
