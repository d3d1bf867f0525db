package scanner

import (
	"errors"
	"io/fs"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

type eventKind uint8

const (
	eventCandidate eventKind = iota
	eventDelta
)

// event is the unit sent from walkers to the aggregator.
//
// The channel carrying events is closed only after every walker has
// returned, so a send can never race a closed channel.
type event struct {
	kind      eventKind
	candidate types.Candidate
	delta     types.ScanResult
}

func candidateEvent(c types.Candidate) event {
	return event{kind: eventCandidate, candidate: c}
}

func deltaEvent(r types.ScanResult) event {
	return event{kind: eventDelta, delta: r}
}

// countFailure records err in r as a permission failure or a generic error.
func countFailure(r *types.ScanResult, err error) {
	if errors.Is(err, fs.ErrPermission) {
		r.PermissionDenied++
		return
	}
	r.Errors++
}
