package scanner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/topsize/pkg/topsize/logging"
	"github.com/jamesainslie/topsize/pkg/topsize/threshold"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// logger is the package-level logger for scan operations.
var logger = logging.Get("scanner")

// ErrInvalidRoot is returned when the scan root is missing, unreadable or
// not a directory. It is the only error that stops a scan.
var ErrInvalidRoot = errors.New("invalid scan root")

// Scanner runs one scan. A Scanner is not reusable; create a new one for
// every scan.
type Scanner struct {
	opts  Options
	floor *threshold.Threshold
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts, floor: threshold.New(opts.MinSize)}
}

// Floor returns the current pruning floor. It is safe to call while Scan
// runs.
func (s *Scanner) Floor() uint64 {
	return s.floor.Load()
}

// Scan walks the tree and blocks until every directory has been visited.
// There is no way to stop a scan early; only invalid options or an invalid
// root produce an error.
func (s *Scanner) Scan() (*types.Report, error) {
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}

	root, err := validateRoot(s.opts.Root)
	if err != nil {
		return nil, err
	}
	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	rootDev, _ := deviceID(rootInfo)

	startedAt := time.Now()

	logger.Info("scan started",
		"root", root,
		"min_size", s.opts.MinSize,
		"count", s.opts.Count,
		"engine", s.opts.Engine,
		"workers", s.opts.Workers)

	events := make(chan event, s.opts.EventBuffer)
	agg := newAggregator(s.opts, s.floor, startedAt)

	finalCh := make(chan types.Snapshot, 1)
	go func() {
		finalCh <- agg.run(events)
	}()

	switch s.opts.Engine {
	case EngineFastwalk:
		if err := newFastWalker(s.opts, s.floor, events).run(root); err != nil {
			// fastwalk only fails on errors our callback never returns.
			logger.Error("fastwalk stopped early", "root", root, "err", err)
		}
	default:
		newWalker(s.opts, s.floor, events).run(root, rootDev)
	}

	close(events)
	final := <-finalCh

	logger.Info("scan finished",
		"root", root,
		"files", final.Totals.Files,
		"dirs", final.Totals.Directories,
		"errors", final.Totals.Errors,
		"permission_denied", final.Totals.PermissionDenied,
		"floor", final.Floor,
		"elapsed", final.Elapsed)

	return &types.Report{
		ID:        uuid.NewString(),
		Root:      root,
		MinSize:   s.opts.MinSize,
		Count:     s.opts.Count,
		Entries:   final.Entries,
		Totals:    final.Totals,
		StartedAt: startedAt,
		Elapsed:   final.Elapsed,
	}, nil
}

// validateRoot resolves root to an absolute path and verifies that it is a
// directory that can be listed.
func validateRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, abs)
	}

	f, err := os.Open(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return "", fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	_ = f.Close()

	return abs, nil
}
