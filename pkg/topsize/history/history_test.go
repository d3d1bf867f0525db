package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

func openTestStore(t *testing.T, retention time.Duration) *Store {
	t.Helper()

	store, err := Open(t.TempDir(), retention)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testReport(id string, started time.Time) *types.Report {
	return &types.Report{
		ID:        id,
		Root:      "/data",
		MinSize:   1024,
		Count:     2,
		StartedAt: started,
		Elapsed:   1500 * time.Millisecond,
		Entries: []types.Candidate{
			{Path: "/data/big.iso", Size: 4096, ModTime: started.Add(-time.Hour)},
			{Path: "/data/small.log", Size: 2048, ModTime: started.Add(-2 * time.Hour)},
		},
		Totals: types.ScanResult{Files: 10, Directories: 3},
	}
}

func ids(reports []types.Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.ID
	}
	return out
}

func TestSaveAndList(t *testing.T) {
	store := openTestStore(t, 0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(testReport("bbb", base.Add(time.Hour))))
	require.NoError(t, store.Save(testReport("aaa", base)))
	require.NoError(t, store.Save(testReport("ccc", base.Add(2*time.Hour))))

	reports, err := store.List(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"ccc", "bbb", "aaa"}, ids(reports))

	got := reports[0]
	assert.Equal(t, "/data", got.Root)
	assert.Equal(t, types.ScanResult{Files: 10, Directories: 3}, got.Totals)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, uint64(4096), got.Entries[0].Size)
	assert.True(t, got.StartedAt.Equal(base.Add(2*time.Hour)))
}

func TestListLimit(t *testing.T) {
	store := openTestStore(t, 0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.Save(testReport(id, base.Add(time.Duration(i)*time.Minute))))
	}

	reports, err := store.List(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, ids(reports))
}

func TestListEmpty(t *testing.T) {
	store := openTestStore(t, 0)

	reports, err := store.List(10)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestSaveRequiresID(t *testing.T) {
	store := openTestStore(t, 0)

	err := store.Save(testReport("", time.Now()))
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	store := openTestStore(t, 0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(testReport("4f1c-one", base)))
	require.NoError(t, store.Save(testReport("4f2d-two", base.Add(time.Minute))))

	t.Run("full id", func(t *testing.T) {
		r, err := store.Get("4f2d-two")
		require.NoError(t, err)
		assert.Equal(t, "4f2d-two", r.ID)
	})

	t.Run("unique prefix", func(t *testing.T) {
		r, err := store.Get("4f1")
		require.NoError(t, err)
		assert.Equal(t, "4f1c-one", r.ID)
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		_, err := store.Get("4f")
		assert.ErrorIs(t, err, ErrAmbiguousID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := store.Get("zzz")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := store.Get("")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPrune(t *testing.T) {
	store := openTestStore(t, 0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(testReport("old", base.Add(-48*time.Hour))))
	require.NoError(t, store.Save(testReport("older", base.Add(-72*time.Hour))))
	require.NoError(t, store.Save(testReport("new", base)))

	removed, err := store.Prune(base.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	reports, err := store.List(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, ids(reports))
}

func TestSavePrunesExpired(t *testing.T) {
	store := openTestStore(t, 24*time.Hour)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(testReport("stale", now.Add(-30*24*time.Hour))))
	require.NoError(t, store.Save(testReport("fresh", now.Add(-time.Hour))))

	reports, err := store.List(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids(reports))
}

func TestClear(t *testing.T) {
	store := openTestStore(t, 0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(testReport("a", base)))
	require.NoError(t, store.Save(testReport("b", base.Add(time.Second))))

	removed, err := store.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	reports, err := store.List(0)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store, err := Open(dir, 0)
	require.NoError(t, err)
	require.NoError(t, store.Save(testReport("kept", base)))
	require.NoError(t, store.Close())

	store, err = Open(dir, 0)
	require.NoError(t, err)
	defer store.Close()

	r, err := store.Get("kept")
	require.NoError(t, err)
	assert.Equal(t, "/data", r.Root)
}
