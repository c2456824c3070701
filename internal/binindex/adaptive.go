package binindex

import (
	"slices"
	"sort"

	"github.com/hupe1980/docstore/document"
)

// Insert splices a freshly appended store position into its sorted slot.
//
// The slot is the end of the value's equal run, which is RangeStart when the
// value is new; ties therefore keep insertion order. The store insert must
// have been a pure append.
func (ix *Index) Insert(pos int) {
	slot := ix.RangeEnd(ix.Value(pos))
	ix.positions = slices.Insert(ix.positions, slot, pos)
}

// Remove drops store position pos from the index and decrements every entry
// greater than pos, as if the store had compacted the row away.
//
// The slot is located through the record's current value, so Remove must be
// called before the store compacts. Use RemoveSlot when the slot was located
// up front.
func (ix *Index) Remove(pos int) bool {
	slot := ix.SlotOf(pos)
	if slot < 0 {
		return false
	}
	ix.RemoveSlot(slot, pos)
	return true
}

// RemoveSlot deletes slot (which must hold pos) and shifts the entries
// greater than pos down by one.
func (ix *Index) RemoveSlot(slot, pos int) {
	if slot >= 0 && slot < len(ix.positions) {
		ix.positions = slices.Delete(ix.positions, slot, slot+1)
	}
	ix.ShiftAfter(pos)
}

// ShiftAfter decrements every entry greater than pos. This is the correction
// every index needs after the store removed the row at pos.
func (ix *Index) ShiftAfter(pos int) {
	for i, p := range ix.positions {
		if p > pos {
			ix.positions[i] = p - 1
		}
	}
}

// Update repositions pos after its field value changed from old to the value
// now held by the store. It does nothing when the value is unchanged.
func (ix *Index) Update(pos int, old document.Value) {
	if document.Equal(old, ix.Value(pos)) {
		return
	}
	slot := ix.slotWithValue(pos, old)
	if slot < 0 {
		slot = slices.Index(ix.positions, pos)
	}
	if slot >= 0 {
		ix.positions = slices.Delete(ix.positions, slot, slot+1)
	}
	ix.Insert(pos)
}

// Reposition is Update for callers that no longer know the previous value.
// The slot of pos is found by a linear scan. An entry that still sits in
// order between its neighbours keeps its slot, so ties are not reordered.
func (ix *Index) Reposition(pos int) {
	slot := slices.Index(ix.positions, pos)
	if slot >= 0 {
		if ix.fits(slot) {
			return
		}
		ix.positions = slices.Delete(ix.positions, slot, slot+1)
	}
	ix.Insert(pos)
}

// fits reports whether the entry at slot is ordered against both neighbours.
func (ix *Index) fits(slot int) bool {
	v := ix.Value(ix.positions[slot])
	if slot > 0 && document.Compare(ix.Value(ix.positions[slot-1]), v) > 0 {
		return false
	}
	if slot+1 < len(ix.positions) && document.Compare(v, ix.Value(ix.positions[slot+1])) > 0 {
		return false
	}
	return true
}

// Reconcile prepares the index for a batch update whose new values the store
// already holds. changed (ascending) holds positions known to carry a new
// value; suspect (ascending) holds positions modified in place whose previous
// value is unknown. Every other entry must be unchanged.
//
// Changed entries are detached. A suspect entry keeps its slot when it is
// ordered against the last kept entry and the next unchanged entry; otherwise
// it is detached too. The detached positions are returned in slot order and
// must be re-added with Insert.
func (ix *Index) Reconcile(changed, suspect []int) []int {
	if len(changed) == 0 && len(suspect) == 0 {
		return nil
	}
	in := func(set []int, p int) bool {
		k := sort.SearchInts(set, p)
		return k < len(set) && set[k] == p
	}

	n := len(ix.positions)
	nextStable := make([]int, n)
	next := -1
	for i := n - 1; i >= 0; i-- {
		nextStable[i] = next
		if p := ix.positions[i]; !in(changed, p) && !in(suspect, p) {
			next = i
		}
	}

	var (
		moved    []int
		prev     document.Value
		havePrev bool
	)
	out := ix.positions[:0]
	for i := 0; i < n; i++ {
		p := ix.positions[i]
		v := ix.Value(p)
		switch {
		case in(changed, p):
			moved = append(moved, p)
			continue
		case in(suspect, p):
			if (havePrev && document.Compare(prev, v) > 0) ||
				(nextStable[i] >= 0 && document.Compare(v, ix.Value(ix.positions[nextStable[i]])) > 0) {
				moved = append(moved, p)
				continue
			}
		}
		// out never grows past i, so slots after i are still unread.
		out = append(out, p)
		prev, havePrev = v, true
	}
	ix.positions = out
	return moved
}

// slotWithValue locates pos assuming its indexed value is still old. The
// store already holds the new value for pos, so it is substituted during the
// search.
func (ix *Index) slotWithValue(pos int, old document.Value) int {
	valueAt := func(p int) document.Value {
		if p == pos {
			return old
		}
		return ix.Value(p)
	}
	lo := sort.Search(len(ix.positions), func(i int) bool {
		return document.Compare(valueAt(ix.positions[i]), old) >= 0
	})
	for i := lo; i < len(ix.positions); i++ {
		p := ix.positions[i]
		if p == pos {
			return i
		}
		if !document.Equal(valueAt(p), old) {
			break
		}
	}
	return -1
}

// RemoveBatch applies the removal of several store positions at once.
// removed holds the pre-removal positions in ascending order. Each surviving
// entry is shifted down by the number of removed positions below it, so the
// result does not depend on the order the removals happened in.
func (ix *Index) RemoveBatch(removed []int) {
	if len(removed) == 0 {
		return
	}
	out := ix.positions[:0]
	for _, p := range ix.positions {
		k := sort.SearchInts(removed, p)
		if k < len(removed) && removed[k] == p {
			continue
		}
		out = append(out, p-k)
	}
	ix.positions = out
}
