// Package history persists completed scan reports in a Badger database so
// earlier results can be listed and compared.
package history

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/jamesainslie/topsize/pkg/topsize/logging"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

var logger = logging.Get("history")

// ErrNotFound is returned when no report matches an id.
var ErrNotFound = errors.New("report not found")

// ErrAmbiguousID is returned when an id prefix matches several reports.
var ErrAmbiguousID = errors.New("report id prefix is ambiguous")

// keyPrefix namespaces report keys. A key is the prefix, the big-endian
// start time in nanoseconds and the report id, so byte order is
// chronological.
var keyPrefix = []byte("report/")

func reportKey(r *types.Report) []byte {
	key := make([]byte, 0, len(keyPrefix)+8+len(r.ID))
	key = append(key, keyPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(r.StartedAt.UnixNano()))
	return append(key, r.ID...)
}

func keyTime(key []byte) time.Time {
	ts := key[len(keyPrefix) : len(keyPrefix)+8]
	return time.Unix(0, int64(binary.BigEndian.Uint64(ts)))
}

// Store is a scan history database.
type Store struct {
	db        *badger.DB
	retention time.Duration

	// now is replaced in tests.
	now func() time.Time
}

// Open opens or creates the history database in dir. Reports older than
// retention are dropped; zero keeps them forever.
func Open(dir string, retention time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening history at %s: %w", dir, err)
	}
	return &Store{db: db, retention: retention, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores r and prunes reports that fell out of the retention window.
func (s *Store) Save(r *types.Report) error {
	if r.ID == "" {
		return errors.New("report has no id")
	}
	value, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(reportKey(r), value)
		if s.retention > 0 {
			entry = entry.WithTTL(s.retention)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	logger.Debug("report saved", "id", r.ID, "root", r.Root)

	if s.retention > 0 {
		if n, err := s.Prune(s.now().Add(-s.retention)); err != nil {
			logger.Warn("pruning history failed", "err", err)
		} else if n > 0 {
			logger.Info("pruned history", "removed", n)
		}
	}
	return nil
}

// List returns up to limit reports, newest first. A limit of 0 or less
// returns all of them.
func (s *Store) List(limit int) ([]types.Report, error) {
	var reports []types.Report

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, keyPrefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(keyPrefix); it.Next() {
			var r types.Report
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &r)
			}); err != nil {
				return fmt.Errorf("decoding report: %w", err)
			}
			reports = append(reports, r)
			if limit > 0 && len(reports) == limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Get returns the report whose id starts with idPrefix.
func (s *Store) Get(idPrefix string) (*types.Report, error) {
	if idPrefix == "" {
		return nil, ErrNotFound
	}

	var found *types.Report
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			if !strings.HasPrefix(string(key[len(keyPrefix)+8:]), idPrefix) {
				continue
			}
			if found != nil {
				return fmt.Errorf("%w: %q", ErrAmbiguousID, idPrefix)
			}
			var r types.Report
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &r)
			}); err != nil {
				return fmt.Errorf("decoding report: %w", err)
			}
			found = &r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, idPrefix)
	}
	return found, nil
}

// Prune deletes reports that started before cutoff and returns how many
// were removed.
func (s *Store) Prune(cutoff time.Time) (int, error) {
	return s.deleteWhere(func(key []byte) bool {
		return keyTime(key).Before(cutoff)
	})
}

// Clear deletes every report and returns how many were removed.
func (s *Store) Clear() (int, error) {
	return s.deleteWhere(func([]byte) bool { return true })
}

func (s *Store) deleteWhere(match func(key []byte) bool) (int, error) {
	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if !match(key) {
				continue
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("deleting reports: %w", err)
	}
	return removed, nil
}
