package bjkst

import (
	"math"
	"slices"
)

// sample is the bounded fingerprint set at the heart of the sketch. Every member satisfies
// retained(f, level) and len(set) <= capacity between calls.
type sample struct {
	level    uint8
	capacity int
	set      map[uint64]struct{}
}

func newSample(capacity int) *sample {
	return &sample{
		capacity: capacity,
		set:      make(map[uint64]struct{}),
	}
}

func (s *sample) Copy() *sample {
	set := make(map[uint64]struct{}, len(s.set))
	for f := range s.set {
		set[f] = struct{}{}
	}
	return &sample{
		level:    s.level,
		capacity: s.capacity,
		set:      set,
	}
}

func (s *sample) Len() int {
	return len(s.set)
}

// insert adds f if the current level retains it, and thins when the sample overflows. It
// reports whether the level went up.
func (s *sample) insert(f uint64) bool {
	if !retained(f, s.level) {
		return false
	}
	s.set[f] = struct{}{}
	return s.thin()
}

// thin raises the level one step at a time, evicting the fingerprints the new level no longer
// retains, until the sample fits in capacity.
func (s *sample) thin() bool {
	raised := false
	for len(s.set) > s.capacity && s.level < maxLevel {
		s.level++
		s.evict()
		raised = true
	}
	return raised
}

// raiseTo lifts the level to at least level without checking capacity.
func (s *sample) raiseTo(level uint8) {
	if level <= s.level {
		return
	}
	s.level = level
	s.evict()
}

func (s *sample) evict() {
	mask := levelMask(s.level)
	for f := range s.set {
		if f&mask != 0 {
			delete(s.set, f)
		}
	}
}

// union folds other into s: both samples are filtered at the higher of the two levels, then
// the result is thinned. The outcome depends only on the union of retained fingerprints, so
// union is commutative and associative. other is not modified.
func (s *sample) union(other *sample) bool {
	before := s.level
	s.raiseTo(other.level)
	for f := range other.set {
		if retained(f, s.level) {
			s.set[f] = struct{}{}
		}
	}
	s.thin()
	return s.level != before
}

func (s *sample) clear() {
	s.level = 0
	clear(s.set)
}

// estimate is |sample| * 2^level, saturating at math.MaxUint64. It is exact while level is 0.
func (s *sample) estimate() uint64 {
	n := uint64(len(s.set))
	if n == 0 {
		return 0
	}
	if s.level >= maxLevel || n > math.MaxUint64>>s.level {
		return math.MaxUint64
	}
	return n << s.level
}

// sorted returns the fingerprints in ascending order.
func (s *sample) sorted() []uint64 {
	out := make([]uint64, 0, len(s.set))
	for f := range s.set {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

func (s *sample) equal(other *sample) bool {
	if s.level != other.level || len(s.set) != len(other.set) {
		return false
	}
	for f := range s.set {
		if _, ok := other.set[f]; !ok {
			return false
		}
	}
	return true
}
