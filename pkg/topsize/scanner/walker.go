package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/jamesainslie/topsize/pkg/topsize/threshold"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// walker reads one directory per goroutine. Descent never recurses on the
// native stack: each subdirectory becomes a new goroutine, and sem bounds how
// many of them touch the filesystem at once.
type walker struct {
	floor   *threshold.Threshold
	out     chan<- event
	devices DeviceFilter
	sem     *semaphore.Weighted
	group   errgroup.Group
}

func newWalker(opts Options, floor *threshold.Threshold, out chan<- event) *walker {
	return &walker{
		floor:   floor,
		out:     out,
		devices: opts.Devices,
		sem:     semaphore.NewWeighted(int64(opts.Workers)),
	}
}

// run scans root and returns once every spawned directory task is done.
func (w *walker) run(root string, rootDev uint64) {
	w.spawn(root, rootDev)
	_ = w.group.Wait() // tasks never fail; failures are counted instead
}

func (w *walker) spawn(dir string, dev uint64) {
	w.group.Go(func() error {
		for _, sub := range w.visit(dir, dev) {
			w.spawn(sub.path, sub.dev)
		}
		return nil
	})
}

type subdir struct {
	path string
	dev  uint64
}

// visit lists dir, forwards candidates and exactly one count delta, and
// returns the subdirectories to descend into.
func (w *walker) visit(dir string, dev uint64) []subdir {
	// Acquire cannot fail with a background context.
	_ = w.sem.Acquire(context.Background(), 1)
	defer w.sem.Release(1)

	var delta types.ScanResult
	defer func() { w.out <- deltaEvent(delta) }()

	f, err := os.Open(dir)
	if err != nil {
		logger.Debug("cannot open directory", "path", dir, "err", err)
		countFailure(&delta, err)
		return nil
	}
	entries, err := f.ReadDir(-1)
	_ = f.Close()

	delta.Directories++
	if err != nil {
		// Entries read before the failure are still processed.
		logger.Debug("directory listing incomplete", "path", dir, "err", err)
		countFailure(&delta, err)
	}

	var subdirs []subdir
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		typ := entry.Type()

		switch {
		case typ&fs.ModeSymlink != 0:
			delta.Files++

		case typ.IsDir():
			subDev, ok := w.descend(path, entry, dev, &delta)
			if ok {
				subdirs = append(subdirs, subdir{path: path, dev: subDev})
			}

		default:
			info, err := entry.Info()
			if err != nil {
				logger.Debug("cannot stat file", "path", path, "err", err)
				countFailure(&delta, err)
				continue
			}
			delta.Files++
			if !info.Mode().IsRegular() {
				continue
			}
			if uint64(info.Size()) >= w.floor.Load() {
				w.out <- candidateEvent(newCandidate(path, info))
			}
		}
	}
	return subdirs
}

// descend decides whether the walker enters the subdirectory at path and
// returns its device id.
func (w *walker) descend(path string, entry fs.DirEntry, parentDev uint64, delta *types.ScanResult) (uint64, bool) {
	if w.devices == nil {
		return parentDev, true
	}

	info, err := entry.Info()
	if err != nil {
		logger.Debug("cannot stat directory", "path", path, "err", err)
		countFailure(delta, err)
		return 0, false
	}
	dev, ok := deviceID(info)
	if !ok {
		return parentDev, true
	}
	if skipDevice(w.devices, dev, parentDev) {
		logger.Debug("not crossing into device", "path", path, "dev", dev)
		return 0, false
	}
	return dev, true
}

// skipDevice reports whether a directory on dev, inside a directory on
// parentDev, lies on a filesystem the scan must not enter.
func skipDevice(devices DeviceFilter, dev, parentDev uint64) bool {
	return devices != nil && dev != parentDev && !devices.Allowed(dev)
}

// newCandidate builds a Candidate from a regular file's metadata.
func newCandidate(path string, info fs.FileInfo) types.Candidate {
	return types.Candidate{
		Path:       path,
		Size:       uint64(info.Size()),
		ModTime:    info.ModTime(),
		CreateTime: createTime(path, info),
		AccessTime: accessTime(info),
	}
}
