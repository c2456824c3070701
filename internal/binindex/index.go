package binindex

import (
	"slices"
	"sort"

	"github.com/hupe1980/docstore/document"
)

// Source is the document store an index is built over.
type Source interface {
	Len() int
	At(pos int) *document.Record
}

// Index is a sorted sequence of store positions for one field.
//
// Invariant when clean: positions is a permutation of [0, src.Len()) ordered
// by document.Compare on the field value; equal values keep their relative
// order of appearance.
type Index struct {
	field     string
	src       Source
	positions []int
	dirty     bool
	adaptive  bool
	unique    bool
}

// New creates an index over src. The index starts dirty and is populated on
// first use.
func New(src Source, field string, adaptive, unique bool) *Index {
	return &Index{
		field:    field,
		src:      src,
		dirty:    true,
		adaptive: adaptive,
		unique:   unique,
	}
}

// Field returns the indexed field path.
func (ix *Index) Field() string { return ix.field }

// Adaptive reports whether mutations are maintained incrementally.
func (ix *Index) Adaptive() bool { return ix.adaptive }

// Unique reports whether the index enforces one document per value.
func (ix *Index) Unique() bool { return ix.unique }

// Dirty reports whether the index must be rebuilt before use.
func (ix *Index) Dirty() bool { return ix.dirty }

// MarkDirty flags the index as stale relative to the store.
func (ix *Index) MarkDirty() { ix.dirty = true }

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.positions) }

// Positions returns the live position slice. Callers must not modify it
// except through SetPositions.
func (ix *Index) Positions() []int { return ix.positions }

// SetPositions replaces the position sequence and marks the index clean.
// It voids the ordering invariant until the next Check or Rebuild; it exists
// for restore and for tools that tamper with indices deliberately.
func (ix *Index) SetPositions(positions []int) {
	ix.positions = positions
	ix.dirty = false
}

// Reset empties the index and marks it clean (the store is empty too).
func (ix *Index) Reset() {
	ix.positions = ix.positions[:0]
	ix.dirty = false
}

// Value returns the field value of the record at store position pos.
func (ix *Index) Value(pos int) document.Value {
	return ix.src.At(pos).Get(ix.field)
}

// Rebuild re-derives the index from a stable sort of all live positions.
func (ix *Index) Rebuild() {
	n := ix.src.Len()
	vals := make([]document.Value, n)
	positions := make([]int, n)
	for i := 0; i < n; i++ {
		vals[i] = ix.Value(i)
		positions[i] = i
	}
	slices.SortStableFunc(positions, func(a, b int) int {
		return document.Compare(vals[a], vals[b])
	})
	ix.positions = positions
	ix.dirty = false
}

// Ensure rebuilds the index when it is dirty, or unconditionally when force
// is set. It reports whether a rebuild happened.
func (ix *Index) Ensure(force bool) bool {
	if !ix.dirty && !force {
		return false
	}
	ix.Rebuild()
	return true
}

// RangeStart returns the first slot whose value is >= v (lower bound).
// When no entry equals v the result is the insertion point for v.
func (ix *Index) RangeStart(v document.Value) int {
	return sort.Search(len(ix.positions), func(i int) bool {
		return document.Compare(ix.Value(ix.positions[i]), v) >= 0
	})
}

// RangeEnd returns the first slot whose value is > v (upper bound).
func (ix *Index) RangeEnd(v document.Value) int {
	return sort.Search(len(ix.positions), func(i int) bool {
		return document.Compare(ix.Value(ix.positions[i]), v) > 0
	})
}

// classStart returns the first slot whose value kind ranks >= rank.
func (ix *Index) classStart(rank int) int {
	return sort.Search(len(ix.positions), func(i int) bool {
		return document.KindRank(ix.Value(ix.positions[i]).Kind) >= rank
	})
}

// classEnd returns the first slot whose value kind ranks > rank.
func (ix *Index) classEnd(rank int) int {
	return sort.Search(len(ix.positions), func(i int) bool {
		return document.KindRank(ix.Value(ix.positions[i]).Kind) > rank
	})
}

// Op is a comparison resolved through an index span.
type Op uint8

const (
	// OpEq matches values equal to the operand.
	OpEq Op = iota
	// OpGt matches values greater than the operand, within its kind class.
	OpGt
	// OpGte matches values greater than or equal to the operand, within its kind class.
	OpGte
	// OpLt matches values less than the operand, within its kind class.
	OpLt
	// OpLte matches values less than or equal to the operand, within its kind class.
	OpLte
)

// Span returns the half-open slot range [lo, hi) matching op against v.
//
// Range operators only match values of the same kind class as v (numbers
// with numbers, strings with strings, ...), mirroring query.Filter.
func (ix *Index) Span(op Op, v document.Value) (lo, hi int) {
	switch op {
	case OpEq:
		return ix.RangeStart(v), ix.RangeEnd(v)
	case OpGt:
		return ix.RangeEnd(v), ix.classEnd(document.KindRank(v.Kind))
	case OpGte:
		return ix.RangeStart(v), ix.classEnd(document.KindRank(v.Kind))
	case OpLt:
		return ix.classStart(document.KindRank(v.Kind)), ix.RangeStart(v)
	case OpLte:
		return ix.classStart(document.KindRank(v.Kind)), ix.RangeEnd(v)
	default:
		return 0, 0
	}
}

// SpanBetween returns the slot range of values within [lo, hi] inclusive.
func (ix *Index) SpanBetween(lo, hi document.Value) (int, int) {
	start, end := ix.RangeStart(lo), ix.RangeEnd(hi)
	if end < start {
		end = start
	}
	return start, end
}

// PositionsIn returns a copy of the store positions in slots [lo, hi).
func (ix *Index) PositionsIn(lo, hi int) []int {
	if lo >= hi {
		return nil
	}
	return slices.Clone(ix.positions[lo:hi])
}

// SlotOf returns the slot holding store position pos, or -1.
//
// The equal-value run of pos is located by binary search and scanned; a
// linear scan is the fallback when the run does not contain pos.
func (ix *Index) SlotOf(pos int) int {
	if pos < 0 || pos >= ix.src.Len() {
		return -1
	}
	v := ix.Value(pos)
	for i, end := ix.RangeStart(v), ix.RangeEnd(v); i < end; i++ {
		if ix.positions[i] == pos {
			return i
		}
	}
	return slices.Index(ix.positions, pos)
}

// Lookup returns the first store position whose value equals v.
func (ix *Index) Lookup(v document.Value) (int, bool) {
	lo, hi := ix.Span(OpEq, v)
	if lo >= hi {
		return -1, false
	}
	return ix.positions[lo], true
}

// Conflicts reports whether a unique index already holds v at a position
// other than exclude. Null and undefined values never conflict.
func (ix *Index) Conflicts(v document.Value, exclude int) bool {
	if v.IsNull() {
		return false
	}
	lo, hi := ix.Span(OpEq, v)
	for i := lo; i < hi; i++ {
		if ix.positions[i] != exclude {
			return true
		}
	}
	return false
}
