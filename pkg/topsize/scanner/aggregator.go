package scanner

import (
	"time"

	"github.com/jamesainslie/topsize/pkg/topsize/threshold"
	"github.com/jamesainslie/topsize/pkg/topsize/topk"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// aggregator is the single consumer of walker events. It owns the ranking
// and the running totals; nothing else reads or writes them until run
// returns.
type aggregator struct {
	set     *topk.Set
	floor   *threshold.Threshold
	minSize uint64
	totals  types.ScanResult

	refreshEvery int64
	minInterval  time.Duration
	onSnapshot   func(types.Snapshot)

	start        time.Time
	lastSnapshot time.Time
	nextRefresh  int64

	// now is replaced in tests.
	now func() time.Time
}

func newAggregator(opts Options, floor *threshold.Threshold, start time.Time) *aggregator {
	return &aggregator{
		set:          topk.New(opts.Count),
		floor:        floor,
		minSize:      opts.MinSize,
		refreshEvery: opts.RefreshEvery,
		minInterval:  opts.MinRefreshInterval,
		onSnapshot:   opts.OnSnapshot,
		start:        start,
		nextRefresh:  opts.RefreshEvery,
		now:          time.Now,
	}
}

// run drains events until the channel is closed, then emits the final
// snapshot and returns it.
func (a *aggregator) run(events <-chan event) types.Snapshot {
	for ev := range events {
		a.handle(ev)
	}

	final := a.snapshot(true)
	if a.onSnapshot != nil {
		a.onSnapshot(final)
	}
	return final
}

func (a *aggregator) handle(ev event) {
	switch ev.kind {
	case eventCandidate:
		if a.offer(ev.candidate) {
			a.maybeRefresh(false)
		}
	case eventDelta:
		a.merge(ev.delta)
	}
}

// offer applies the insertion rule to c and reports whether the ranking
// changed.
//
// While the ranking has room, c must reach the configured minimum. Once it is
// full, c must be strictly larger than the smallest member: an equal size
// would rank below it by arrival order and be evicted immediately.
func (a *aggregator) offer(c types.Candidate) bool {
	if a.set.Full() {
		smallest, _ := a.set.Smallest()
		if c.Size <= smallest.Size {
			return false
		}
	} else if c.Size < a.minSize {
		return false
	}

	a.set.Insert(c)

	if a.set.Full() {
		smallest, _ := a.set.Smallest()
		a.floor.Raise(smallest.Size)
	}
	return true
}

// merge folds a count delta into the totals and refreshes the reporter each
// time another refreshEvery directories have completed.
func (a *aggregator) merge(delta types.ScanResult) {
	a.totals.Add(delta)
	if a.totals.Directories >= a.nextRefresh {
		a.nextRefresh = (a.totals.Directories/a.refreshEvery + 1) * a.refreshEvery
		a.maybeRefresh(true)
	}
}

// maybeRefresh emits an in-progress snapshot. Ranking changes are throttled
// to one snapshot per minInterval; directory cadence refreshes are not.
func (a *aggregator) maybeRefresh(force bool) {
	if a.onSnapshot == nil {
		return
	}
	now := a.now()
	if !force && now.Sub(a.lastSnapshot) < a.minInterval {
		return
	}
	a.lastSnapshot = now
	a.onSnapshot(a.snapshot(false))
}

func (a *aggregator) snapshot(final bool) types.Snapshot {
	return types.Snapshot{
		Entries: a.set.Entries(),
		Totals:  a.totals,
		Floor:   a.floor.Load(),
		Final:   final,
		Elapsed: a.now().Sub(a.start),
	}
}
