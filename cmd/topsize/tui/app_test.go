package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/topsize/pkg/topsize/output"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

func entries(n int) []types.Candidate {
	out := make([]types.Candidate, n)
	for i := range out {
		out[i] = types.Candidate{
			Path:    fmt.Sprintf("/data/file-%02d.bin", i),
			Size:    uint64(1000 - i),
			ModTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}
	}
	return out
}

func report(n int) *types.Report {
	return &types.Report{
		ID:      "test",
		Root:    "/data",
		Count:   n,
		Entries: entries(n),
		Totals:  types.ScanResult{Files: int64(n), Directories: 1},
		Elapsed: 1250 * time.Millisecond,
		Disk:    &types.DiskUsage{Total: 1000, Available: 250},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func sized(t *testing.T, width, height int) Model {
	t.Helper()

	m, _ := update(t, NewModel(Options{}), tea.WindowSizeMsg{Width: width, Height: height})
	return m
}

func TestNewModel(t *testing.T) {
	m := NewModel(Options{Output: output.Options{Width: 120}})

	assert.Equal(t, stateScanning, m.state)
	assert.Equal(t, 120, m.width)
	assert.Empty(t, m.rows)
	assert.NotNil(t, m.Init())
}

func TestSnapshotUpdatesRanking(t *testing.T) {
	m := sized(t, 120, 40)

	m, cmd := update(t, m, SnapshotMsg{
		Entries: entries(3),
		Totals:  types.ScanResult{Files: 42, Directories: 7, PermissionDenied: 1},
	})

	assert.NotNil(t, cmd, "listener must be re-armed")
	assert.Len(t, m.rows, 3)
	assert.Len(t, m.table.Rows(), 3)

	view := m.View()
	assert.Contains(t, view, "Scanning... Files: 42, Dirs: 7, Errors: 0 (1 permission blocked)")
	assert.Contains(t, view, "/data/file-00.bin")
}

func TestScanCompleteFitsQuits(t *testing.T) {
	m := sized(t, 120, 40)

	m, cmd := update(t, m, ScanCompleteMsg{Report: report(5)})

	assert.Equal(t, stateDone, m.state)
	assert.False(t, m.browsed)
	assert.True(t, isQuit(cmd))
	assert.Empty(t, m.View())
}

func TestScanCompleteUnknownHeightQuits(t *testing.T) {
	m, cmd := update(t, NewModel(Options{}), ScanCompleteMsg{Report: report(50)})

	assert.Equal(t, stateDone, m.state)
	assert.True(t, isQuit(cmd))
}

func TestScanCompleteTooTallBrowses(t *testing.T) {
	m := sized(t, 120, 20)

	// 13 rows + 8 lines of margin exceed 20 lines.
	m, cmd := update(t, m, ScanCompleteMsg{Report: report(13)})

	assert.Equal(t, stateBrowsing, m.state)
	assert.True(t, m.browsed)
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.table.Cursor())

	view := m.View()
	assert.Contains(t, view, browseTitle)
	assert.Contains(t, view, "Done. Scanned: 13 files, 1 dirs, 0 errors in 1.250s.")
	assert.Contains(t, view, "Total Disk Size: 1,000 bytes, Used: 75.00%")
}

func TestScanCompleteBoundary(t *testing.T) {
	m := sized(t, 120, 20)

	// 12 rows + 8 lines of margin fit exactly.
	m, cmd := update(t, m, ScanCompleteMsg{Report: report(12)})

	assert.Equal(t, stateDone, m.state)
	assert.True(t, isQuit(cmd))
}

func TestScanCompleteError(t *testing.T) {
	boom := errors.New("boom")

	m, cmd := update(t, sized(t, 80, 24), ScanCompleteMsg{Err: boom})

	assert.Equal(t, stateDone, m.state)
	assert.ErrorIs(t, m.err, boom)
	assert.True(t, isQuit(cmd))
}

func TestBrowseNavigationWraps(t *testing.T) {
	m := sized(t, 120, 12)
	m, _ = update(t, m, ScanCompleteMsg{Report: report(6)})
	require.Equal(t, stateBrowsing, m.state)

	m, _ = update(t, m, key("k"))
	assert.Equal(t, 5, m.table.Cursor(), "up from the first row wraps to the last")

	m, _ = update(t, m, key("j"))
	assert.Equal(t, 0, m.table.Cursor(), "down from the last row wraps to the first")

	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("down"))
	assert.Equal(t, 2, m.table.Cursor())

	m, _ = update(t, m, key("up"))
	assert.Equal(t, 1, m.table.Cursor())

	m, _ = update(t, m, key("G"))
	assert.Equal(t, 5, m.table.Cursor())

	m, _ = update(t, m, key("g"))
	assert.Equal(t, 0, m.table.Cursor())
}

func TestBrowseQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		t.Run(k, func(t *testing.T) {
			m := sized(t, 120, 12)
			m, _ = update(t, m, ScanCompleteMsg{Report: report(6)})

			m, cmd := update(t, m, key(k))

			assert.Equal(t, stateDone, m.state)
			assert.True(t, isQuit(cmd))
			assert.False(t, m.interrupted)
		})
	}
}

func TestKeysIgnoredWhileScanning(t *testing.T) {
	m := sized(t, 120, 40)

	m, cmd := update(t, m, key("q"))

	assert.Equal(t, stateScanning, m.state)
	assert.Nil(t, cmd)
}

func TestCtrlCInterruptsScan(t *testing.T) {
	m := sized(t, 120, 40)

	m, cmd := update(t, m, key("ctrl+c"))

	assert.True(t, m.interrupted)
	assert.True(t, isQuit(cmd))
}

func TestCtrlCWhileBrowsingIsNotInterrupt(t *testing.T) {
	m := sized(t, 120, 12)
	m, _ = update(t, m, ScanCompleteMsg{Report: report(6)})

	m, cmd := update(t, m, key("ctrl+c"))

	assert.False(t, m.interrupted)
	assert.True(t, isQuit(cmd))
}

func TestLateSnapshotIgnored(t *testing.T) {
	m := sized(t, 120, 12)
	m, _ = update(t, m, ScanCompleteMsg{Report: report(6)})

	m, cmd := update(t, m, SnapshotMsg{Entries: entries(1)})

	assert.Nil(t, cmd)
	assert.Len(t, m.rows, 6)
}

func TestStartScanReportsCompletion(t *testing.T) {
	var completed *types.Report
	m := NewModel(Options{Complete: func(r *types.Report) { completed = r }})
	m.opts.Scan.Root = t.TempDir()

	msg := m.startScan()()

	done, ok := msg.(ScanCompleteMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
	require.NotNil(t, done.Report)
	assert.Same(t, done.Report, completed)
	assert.Equal(t, int64(1), done.Report.Totals.Directories)

	// The listener stops once the scan closes the channel.
	assert.Nil(t, m.listenForSnapshots()())
}

func TestStartScanError(t *testing.T) {
	m := NewModel(Options{})
	m.opts.Scan.Root = strings.Repeat("/missing", 3)

	done, ok := m.startScan()().(ScanCompleteMsg)
	require.True(t, ok)
	assert.Error(t, done.Err)
	assert.Nil(t, done.Report)
}

func TestColumns(t *testing.T) {
	headings := []string{"Size", "Path"}
	rows := [][]string{{"1,234,567", "/a/very/long/path/to/a/file.bin"}}

	t.Run("unknown width", func(t *testing.T) {
		cols := columns(headings, rows, 0)
		assert.Equal(t, 9, cols[0].Width)
		assert.Equal(t, len(rows[0][1]), cols[1].Width)
	})

	t.Run("path takes the rest", func(t *testing.T) {
		cols := columns(headings, rows, 40)
		assert.Equal(t, 9, cols[0].Width)
		assert.Equal(t, 40-(9+cellPadding)-cellPadding, cols[1].Width)
	})

	t.Run("narrow terminal", func(t *testing.T) {
		cols := columns(headings, rows, 12)
		assert.Equal(t, minPathWidth, cols[1].Width)
	})
}

func TestLayoutTruncatesPaths(t *testing.T) {
	m := sized(t, 60, 40)
	long := "/" + strings.Repeat("deep/", 30) + "file.bin"

	m, _ = update(t, m, SnapshotMsg{Entries: []types.Candidate{{Path: long, Size: 10}}})

	cell := m.table.Rows()[0][len(m.table.Rows()[0])-1]
	assert.True(t, strings.HasPrefix(cell, "…"))
	assert.True(t, strings.HasSuffix(cell, "file.bin"))
}
