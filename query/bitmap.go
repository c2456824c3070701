package query

import (
	"iter"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// PositionSet is a set of store positions backed by a 32-bit roaring bitmap.
type PositionSet struct {
	rb *roaring.Bitmap
}

var positionSetPool = sync.Pool{
	New: func() any {
		return &PositionSet{rb: roaring.New()}
	},
}

// NewPositionSet creates a set holding positions.
func NewPositionSet(positions ...int) *PositionSet {
	s := &PositionSet{rb: roaring.New()}
	s.AddMany(positions)
	return s
}

// GetPositionSet gets an empty set from the pool. Call PutPositionSet when done.
func GetPositionSet() *PositionSet {
	s := positionSetPool.Get().(*PositionSet)
	s.rb.Clear()
	return s
}

// PutPositionSet returns a set to the pool.
func PutPositionSet(s *PositionSet) {
	if s == nil {
		return
	}
	s.rb.Clear()
	positionSetPool.Put(s)
}

// Add adds a position.
func (s *PositionSet) Add(pos int) {
	s.rb.Add(uint32(pos))
}

// AddMany adds several positions.
func (s *PositionSet) AddMany(positions []int) {
	for _, p := range positions {
		s.rb.Add(uint32(p))
	}
}

// AddRange adds the positions [lo, hi).
func (s *PositionSet) AddRange(lo, hi int) {
	if lo < hi {
		s.rb.AddRange(uint64(lo), uint64(hi))
	}
}

// Contains reports whether pos is in the set.
func (s *PositionSet) Contains(pos int) bool {
	return s.rb.Contains(uint32(pos))
}

// Len returns the number of positions.
func (s *PositionSet) Len() int {
	return int(s.rb.GetCardinality())
}

// IsEmpty returns true if the set is empty.
func (s *PositionSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// And intersects s with other.
func (s *PositionSet) And(other *PositionSet) {
	s.rb.And(other.rb)
}

// Or unions other into s.
func (s *PositionSet) Or(other *PositionSet) {
	s.rb.Or(other.rb)
}

// All iterates the positions in ascending order.
func (s *PositionSet) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// ToSlice returns the positions in ascending order.
func (s *PositionSet) ToSlice() []int {
	out := make([]int, 0, s.Len())
	for p := range s.All() {
		out = append(out, p)
	}
	return out
}
