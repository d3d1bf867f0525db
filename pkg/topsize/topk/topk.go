// Package topk provides a bounded, ordered set of the largest candidates seen
// during a scan.
//
// Members are ordered by size, largest first. Members of equal size are
// ordered by arrival: the one inserted first ranks higher. A Set is not safe
// for concurrent use; the aggregator owns it exclusively.
package topk

import (
	"github.com/google/btree"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// degree is the btree node degree.
const degree = 32

// item is a member of the set tagged with its arrival sequence.
type item struct {
	c   types.Candidate
	seq uint64
}

// ranksBefore orders items by descending size, then ascending arrival.
func ranksBefore(a, b item) bool {
	if a.c.Size != b.c.Size {
		return a.c.Size > b.c.Size
	}
	return a.seq < b.seq
}

// Set holds at most the number of candidates given to New.
type Set struct {
	tree  *btree.BTreeG[item]
	limit int
	seq   uint64
}

// New returns an empty set bounded to n members. n must be at least 1.
func New(n int) *Set {
	if n < 1 {
		panic("topk: capacity must be at least 1")
	}
	return &Set{
		tree:  btree.NewG(degree, ranksBefore),
		limit: n,
	}
}

// Len returns the number of members.
func (s *Set) Len() int {
	return s.tree.Len()
}

// Full reports whether the set is at capacity.
func (s *Set) Full() bool {
	return s.tree.Len() >= s.limit
}

// Smallest returns the lowest-ranked member.
func (s *Set) Smallest() (types.Candidate, bool) {
	it, ok := s.tree.Max()
	return it.c, ok
}

// Insert adds c at its ranked position. If the set then exceeds its
// capacity, the lowest-ranked member is evicted and returned.
func (s *Set) Insert(c types.Candidate) (evicted types.Candidate, didEvict bool) {
	s.seq++
	s.tree.ReplaceOrInsert(item{c: c, seq: s.seq})

	if s.tree.Len() <= s.limit {
		return types.Candidate{}, false
	}
	it, _ := s.tree.DeleteMax()
	return it.c, true
}

// Entries returns the members, highest rank first. The returned slice is a
// copy and may be retained by the caller.
func (s *Set) Entries() []types.Candidate {
	out := make([]types.Candidate, 0, s.tree.Len())
	s.tree.Ascend(func(it item) bool {
		out = append(out, it.c)
		return true
	})
	return out
}
