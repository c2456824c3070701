package docstore

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/hupe1980/docstore/document"
	"github.com/hupe1980/docstore/internal/binindex"
)

// IndexInfo describes a declared index.
type IndexInfo struct {
	Field    string `json:"field"`
	Unique   bool   `json:"unique"`
	Adaptive bool   `json:"adaptive"`
	Dirty    bool   `json:"dirty"`
	Entries  int    `json:"entries"`
}

// Indexes describes the declared indices in declaration order.
func (c *Collection) Indexes() []IndexInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]IndexInfo, 0, len(c.order))
	for _, f := range c.order {
		ix := c.indices[f]
		out = append(out, IndexInfo{
			Field:    f,
			Unique:   ix.Unique(),
			Adaptive: ix.Adaptive(),
			Dirty:    ix.Dirty(),
			Entries:  ix.Len(),
		})
	}
	return out
}

// EnsureIndex declares a binary index on field and builds it. An existing
// index is rebuilt only when it is dirty or force is set.
func (c *Collection) EnsureIndex(field string, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.declare(field, false); err != nil {
		return err
	}
	c.ensure(c.indices[field], force)
	return nil
}

// EnsureUniqueIndex declares a unique index on field. It fails with a
// ConstraintError, leaving the declarations unchanged, when existing
// documents already share a value.
func (c *Collection) EnsureUniqueIndex(field string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ix, ok := c.indices[field]; ok && ix.Unique() {
		c.ensure(ix, false)
		return nil
	}
	ix := binindex.New(c.store, field, c.cfg.AdaptiveBinaryIndices, true)
	c.ensure(ix, false)
	if v, dup := firstDuplicate(ix); dup {
		return &ConstraintError{Field: field, Value: v}
	}
	c.install(ix)
	return nil
}

// DropIndex removes the index on field.
func (c *Collection) DropIndex(field string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.indices[field]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIndex, field)
	}
	delete(c.indices, field)
	c.order = slices.DeleteFunc(c.order, func(f string) bool { return f == field })
	return nil
}

// EnsureAllIndexes builds every dirty index, or every index when force is set.
func (c *Collection) EnsureAllIndexes(force bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.order {
		c.ensure(c.indices[f], force)
	}
}

// IndexPositions returns a copy of the store positions held by the index on
// field, in index order. A dirty index is rebuilt first.
func (c *Collection) IndexPositions(field string) ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ix, err := c.index(field)
	if err != nil {
		return nil, err
	}
	c.ensure(ix, false)
	return slices.Clone(ix.Positions()), nil
}

// declare registers an index without building it. Declaring a unique index
// over an existing plain one replaces it in place.
func (c *Collection) declare(field string, unique bool) error {
	if field == "" {
		return fmt.Errorf("%w: empty index field", ErrMalformedInput)
	}
	if ix, ok := c.indices[field]; ok && (ix.Unique() || !unique) {
		return nil
	}
	ix := binindex.New(c.store, field, c.cfg.AdaptiveBinaryIndices, unique)
	if unique && c.store.Len() > 0 {
		c.ensure(ix, false)
		if v, dup := firstDuplicate(ix); dup {
			return &ConstraintError{Field: field, Value: v}
		}
	}
	c.install(ix)
	return nil
}

func (c *Collection) install(ix *binindex.Index) {
	if _, ok := c.indices[ix.Field()]; !ok {
		c.order = append(c.order, ix.Field())
	}
	c.indices[ix.Field()] = ix
}

func (c *Collection) index(field string) (*binindex.Index, error) {
	ix, ok := c.indices[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, field)
	}
	return ix, nil
}

// ensure rebuilds ix when dirty (or forced), with logging and metrics.
func (c *Collection) ensure(ix *binindex.Index, force bool) {
	if !ix.Dirty() && !force {
		return
	}
	start := time.Now()
	ix.Rebuild()
	took := time.Since(start)
	c.logger.LogRebuild(ix.Field(), ix.Len(), took)
	c.metrics.RecordRebuild(ix.Field(), took)
}

// firstDuplicate scans a clean index for adjacent equal non-null values.
func firstDuplicate(ix *binindex.Index) (document.Value, bool) {
	positions := ix.Positions()
	for i := 1; i < len(positions); i++ {
		v := ix.Value(positions[i])
		if !v.IsNull() && document.Equal(v, ix.Value(positions[i-1])) {
			return v, true
		}
	}
	return document.Value{}, false
}

// CalculateRangeStart returns the first slot of the index on field whose
// value is >= v. When no entry equals v this is where v would be inserted.
func (c *Collection) CalculateRangeStart(field string, v document.Value) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ix, err := c.index(field)
	if err != nil {
		return -1, err
	}
	c.ensure(ix, false)
	return ix.RangeStart(v), nil
}

// CalculateRangeEnd returns the first slot of the index on field whose value
// is > v.
func (c *Collection) CalculateRangeEnd(field string, v document.Value) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ix, err := c.index(field)
	if err != nil {
		return -1, err
	}
	c.ensure(ix, false)
	return ix.RangeEnd(v), nil
}

// BinaryIndexPosition returns the slot holding store position pos in the
// index on field.
func (c *Collection) BinaryIndexPosition(pos int, field string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ix, err := c.index(field)
	if err != nil {
		return -1, err
	}
	c.ensure(ix, false)
	slot := ix.SlotOf(pos)
	if slot < 0 {
		return -1, fmt.Errorf("%w: position %d in index %q", ErrNotFound, pos, field)
	}
	return slot, nil
}

// AdaptiveIndexInsert splices store position pos into the index on field.
// It is a maintenance primitive for tools: the collection already does this
// on Insert, and misuse voids the index invariant until a repair.
func (c *Collection) AdaptiveIndexInsert(pos int, field string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ix, err := c.toolIndex(pos, field)
	if err != nil {
		return err
	}
	ix.Insert(pos)
	return nil
}

// AdaptiveIndexUpdate repositions store position pos in the index on field
// after its value changed. Maintenance primitive, see AdaptiveIndexInsert.
func (c *Collection) AdaptiveIndexUpdate(pos int, field string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ix, err := c.toolIndex(pos, field)
	if err != nil {
		return err
	}
	ix.Reposition(pos)
	return nil
}

// AdaptiveIndexRemove drops store position pos from the index on field and
// shifts every greater entry down, as if the store had removed the row.
// Maintenance primitive, see AdaptiveIndexInsert.
func (c *Collection) AdaptiveIndexRemove(pos int, field string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ix, err := c.toolIndex(pos, field)
	if err != nil {
		return err
	}
	if !ix.Remove(pos) {
		return fmt.Errorf("%w: position %d in index %q", ErrNotFound, pos, field)
	}
	return nil
}

func (c *Collection) toolIndex(pos int, field string) (*binindex.Index, error) {
	ix, err := c.index(field)
	if err != nil {
		return nil, err
	}
	if pos < 0 || pos >= c.store.Len() {
		return nil, fmt.Errorf("%w: position %d out of range", ErrNotFound, pos)
	}
	return ix, nil
}

// CheckOptions controls CheckIndex and CheckAllIndexes.
type CheckOptions struct {
	// Repair rebuilds an index that fails the check.
	Repair bool
	// RandomSampling checks a random share of adjacent pairs only. A sampled
	// check may pass a corrupted index.
	RandomSampling bool
	// SampleFactor is the share of pairs to sample, in (0, 1]. Zero selects
	// binindex.DefaultSampleFactor.
	SampleFactor float64
	// Rand overrides the sampling source.
	Rand *rand.Rand
}

// CheckIndex verifies the index on field: its length matches the document
// count and its values are non-decreasing. With Repair, an invalid index is
// rebuilt and the verdict from before the repair is returned. A dirty index
// is rebuilt before it is checked.
func (c *Collection) CheckIndex(field string, opts CheckOptions) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ix, err := c.index(field)
	if err != nil {
		return false, err
	}
	return c.checkLocked(ix, opts), nil
}

// CheckAllIndexes checks every index and returns the fields that failed, in
// declaration order.
func (c *Collection) CheckAllIndexes(opts CheckOptions) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var invalid []string
	for _, f := range c.order {
		if !c.checkLocked(c.indices[f], opts) {
			invalid = append(invalid, f)
		}
	}
	return invalid
}

// VerifyIndexes runs a full check of every index and reports failures as an
// *IndexCorruptionError matching ErrIndexCorruption. It never repairs.
func (c *Collection) VerifyIndexes() error {
	if invalid := c.CheckAllIndexes(CheckOptions{}); len(invalid) > 0 {
		return &IndexCorruptionError{Fields: invalid}
	}
	return nil
}

func (c *Collection) checkLocked(ix *binindex.Index, opts CheckOptions) bool {
	c.ensure(ix, false)
	valid := ix.Check(binindex.CheckOptions{
		RandomSampling: opts.RandomSampling,
		SampleFactor:   opts.SampleFactor,
		Rand:           opts.Rand,
	})
	repaired := false
	if !valid && opts.Repair {
		c.ensure(ix, true)
		repaired = true
	}
	c.logger.LogCheck(ix.Field(), valid, repaired)
	c.metrics.RecordCheck(ix.Field(), valid)
	return valid
}
