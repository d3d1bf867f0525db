// Package tui shows a live, ranked view of a running scan and lets the user
// browse the final ranking when it does not fit on one screen.
package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/topsize/pkg/topsize/logging"
	"github.com/jamesainslie/topsize/pkg/topsize/output"
	"github.com/jamesainslie/topsize/pkg/topsize/scanner"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

var logger = logging.Get("tui")

// ErrInterrupted is returned when the user quits before the scan finishes.
var ErrInterrupted = errors.New("scan interrupted")

// browseMargin is the number of terminal lines reserved around the final
// table. A ranking that needs more lines than the terminal has is browsed
// interactively instead of printed.
const browseMargin = 8

// snapshotBuffer holds in-progress snapshots the view has not drawn yet.
// Snapshots that do not fit are dropped; a later one supersedes them.
const snapshotBuffer = 16

type viewState int

const (
	stateScanning viewState = iota
	stateBrowsing
	stateDone
)

// Options configures the live view.
type Options struct {
	// Scan configures the scan. OnSnapshot is replaced by the view.
	Scan scanner.Options

	// Output controls units, the rank column and the table width.
	Output output.Options

	// Complete, when set, runs on the scan goroutine once the report is
	// ready and before it is shown, e.g. to attach disk usage.
	Complete func(*types.Report)
}

// Result is what the view leaves behind once it exits.
type Result struct {
	Report *types.Report

	// Browsed is set when the final ranking was shown in browse mode and
	// has not been printed to the terminal.
	Browsed bool
}

// SnapshotMsg carries an in-progress snapshot to the view.
type SnapshotMsg types.Snapshot

// ScanCompleteMsg is sent once the scan returns.
type ScanCompleteMsg struct {
	Report *types.Report
	Err    error
}

// Model is the Bubble Tea model for the live view.
type Model struct {
	state   viewState
	opts    Options
	spinner spinner.Model
	table   table.Model
	rows    [][]string

	snapshot    types.Snapshot
	report      *types.Report
	err         error
	interrupted bool
	browsed     bool

	width  int
	height int

	snapshots chan types.Snapshot
}

// NewModel creates a Model that starts scanning when the program starts.
func NewModel(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = output.TitleStyle

	t := table.New(table.WithColumns(columns(output.Columns(opts.Output), nil, opts.Output.Width)))
	t.SetStyles(scanningStyles())

	return Model{
		state:     stateScanning,
		opts:      opts,
		spinner:   sp,
		table:     t,
		width:     opts.Output.Width,
		snapshots: make(chan types.Snapshot, snapshotBuffer),
	}
}

// Init starts the spinner, the scan and the snapshot listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startScan(),
		m.listenForSnapshots(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != stateScanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SnapshotMsg:
		if m.state != stateScanning {
			return m, nil
		}
		m.snapshot = types.Snapshot(msg)
		m.setEntries(m.snapshot.Entries)
		return m, m.listenForSnapshots()

	case ScanCompleteMsg:
		return m.complete(msg)
	}

	return m, nil
}

func (m Model) complete(msg ScanCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.err = msg.Err
		m.state = stateDone
		return m, tea.Quit
	}

	m.report = msg.Report
	m.snapshot = types.Snapshot{
		Entries: msg.Report.Entries,
		Totals:  msg.Report.Totals,
		Final:   true,
		Elapsed: msg.Report.Elapsed,
	}
	m.setEntries(msg.Report.Entries)

	if m.fits() {
		m.state = stateDone
		return m, tea.Quit
	}

	logger.Debug("ranking exceeds terminal, browsing", "rows", len(m.rows), "height", m.height)
	m.state = stateBrowsing
	m.browsed = true
	m.table.SetStyles(tableStyles())
	m.table.Focus()
	m.table.SetCursor(0)
	m.layout()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.interrupted = m.state == stateScanning
		m.state = stateDone
		return m, tea.Quit
	}

	if m.state != stateBrowsing {
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateDone
		return m, tea.Quit
	case "j", "down":
		m.moveDown()
	case "k", "up":
		m.moveUp()
	case "g", "home":
		m.table.GotoTop()
	case "G", "end":
		m.table.GotoBottom()
	}
	return m, nil
}

// moveDown moves the cursor one row down, wrapping to the first row.
func (m *Model) moveDown() {
	n := len(m.table.Rows())
	if n == 0 {
		return
	}
	if m.table.Cursor() >= n-1 {
		m.table.GotoTop()
		return
	}
	m.table.MoveDown(1)
}

// moveUp moves the cursor one row up, wrapping to the last row.
func (m *Model) moveUp() {
	n := len(m.table.Rows())
	if n == 0 {
		return
	}
	if m.table.Cursor() <= 0 {
		m.table.GotoBottom()
		return
	}
	m.table.MoveUp(1)
}

// fits reports whether the final ranking can be printed without scrolling.
// An unknown terminal height always fits.
func (m Model) fits() bool {
	return m.height <= 0 || len(m.rows)+browseMargin <= m.height
}

// startScan runs the scan on its own goroutine and reports completion.
func (m Model) startScan() tea.Cmd {
	opts := m.opts
	snapshots := m.snapshots
	return func() tea.Msg {
		scanOpts := opts.Scan
		scanOpts.OnSnapshot = func(s types.Snapshot) {
			if s.Final {
				return
			}
			select {
			case snapshots <- s:
			default:
			}
		}

		report, err := scanner.New(scanOpts).Scan()
		close(snapshots)
		if err != nil {
			return ScanCompleteMsg{Err: err}
		}
		if opts.Complete != nil {
			opts.Complete(report)
		}
		return ScanCompleteMsg{Report: report}
	}
}

// listenForSnapshots waits for the next in-progress snapshot.
func (m Model) listenForSnapshots() tea.Cmd {
	snapshots := m.snapshots
	return func() tea.Msg {
		s, ok := <-snapshots
		if !ok {
			return nil
		}
		return SnapshotMsg(s)
	}
}

// Run shows the live view until the scan completes and, when the ranking is
// too long for the terminal, until the user quits browsing.
func Run(opts Options) (Result, error) {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("running live view: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Result{}, fmt.Errorf("unexpected model type %T", final)
	}
	if m.interrupted {
		return Result{}, ErrInterrupted
	}
	if m.err != nil {
		return Result{}, m.err
	}
	return Result{Report: m.report, Browsed: m.browsed}, nil
}
