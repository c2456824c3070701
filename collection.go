package docstore

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/docstore/codec"
	"github.com/hupe1980/docstore/document"
	"github.com/hupe1980/docstore/internal/binindex"
	"github.com/hupe1980/docstore/internal/store"
	"github.com/hupe1980/docstore/query"
)

// Collection is a set of documents with binary indices over selected fields.
//
// All methods are safe for concurrent use. A single mutex serialises public
// calls; reads take it as well because they may rebuild dirty indices.
type Collection struct {
	name    string
	cfg     Config
	codec   codec.Codec
	logger  *Logger
	metrics MetricsCollector

	mu      sync.Mutex
	store   *store.Store
	indices map[string]*binindex.Index
	order   []string // declaration order

	lmu       sync.RWMutex
	listeners map[EventType][]Listener
}

// New creates an empty collection.
//
// Indices named in Config.Indices and Config.Unique are declared in that
// order; a field listed in both becomes a unique index.
func New(name string, optFns ...Option) (*Collection, error) {
	o, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	c := newCollection(name, o)

	for _, f := range o.config.Indices {
		if err := c.declare(f, false); err != nil {
			return nil, err
		}
	}
	for _, f := range o.config.Unique {
		if err := c.declare(f, true); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func newCollection(name string, o options) *Collection {
	cfg := o.config
	cfg.Indices = nil
	cfg.Unique = nil
	return &Collection{
		name:      name,
		cfg:       cfg,
		codec:     o.codec,
		logger:    o.logger.WithCollection(name),
		metrics:   o.metricsCollector,
		store:     store.New(),
		indices:   make(map[string]*binindex.Index),
		listeners: make(map[EventType][]Listener),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Config returns the effective configuration, including the current index
// declarations.
func (c *Collection) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configLocked()
}

func (c *Collection) configLocked() Config {
	cfg := c.cfg
	cfg.Indices = nil
	cfg.Unique = nil
	for _, f := range c.order {
		if c.indices[f].Unique() {
			cfg.Unique = append(cfg.Unique, f)
		} else {
			cfg.Indices = append(cfg.Indices, f)
		}
	}
	return cfg
}

// Insert stores doc and returns the stored record.
//
// With cloning enabled the collection keeps a copy of doc and returns
// another copy; otherwise doc itself is stored and the live record is
// returned.
func (c *Collection) Insert(doc document.Document) (*document.Record, error) {
	start := time.Now()

	c.mu.Lock()
	recs, events, err := c.insertLocked([]document.Document{doc})
	c.mu.Unlock()

	c.metrics.RecordInsert(1, time.Since(start), err)
	if err != nil {
		c.logger.LogInsert(0, 1, err)
		return nil, err
	}
	c.logger.LogInsert(recs[0].ID, 1, nil)
	c.emit(events...)
	return recs[0], nil
}

// InsertMany stores docs as one unit. Every document is validated and
// checked against unique indices before the first one is stored.
func (c *Collection) InsertMany(docs []document.Document) ([]*document.Record, error) {
	start := time.Now()

	c.mu.Lock()
	recs, events, err := c.insertLocked(docs)
	c.mu.Unlock()

	c.metrics.RecordInsert(len(docs), time.Since(start), err)
	if err != nil {
		c.logger.LogInsert(0, len(docs), err)
		return nil, err
	}
	if len(recs) > 0 {
		c.logger.LogInsert(recs[0].ID, len(recs), nil)
	}
	c.emit(events...)
	return recs, nil
}

func (c *Collection) insertLocked(docs []document.Document) ([]*document.Record, []Event, error) {
	staged := make([]document.Document, len(docs))
	for i, doc := range docs {
		if err := doc.Validate(); err != nil {
			return nil, nil, translateError(err)
		}
		if c.cfg.Clone {
			doc = c.cloneDoc(doc, c.cfg.CloneMethod)
		}
		staged[i] = doc
	}
	if err := c.checkUniqueInsert(staged); err != nil {
		return nil, nil, err
	}

	bulk := len(staged) > 1 && c.exceedsBatchRatio(len(staged), c.store.Len()+len(staged))
	recs := make([]*document.Record, len(staged))
	events := make([]Event, len(staged))
	for i, doc := range staged {
		rec, pos := c.store.Insert(doc)
		if !bulk {
			c.indexInsert(pos)
		}
		recs[i] = c.out(rec, readOptions{})
		events[i] = c.event(EventInsert, rec, nil)
	}
	if bulk {
		c.markAllDirty()
	}
	return recs, events, nil
}

func (c *Collection) indexInsert(pos int) {
	for _, f := range c.order {
		ix := c.indices[f]
		if ix.Adaptive() && !ix.Dirty() {
			ix.Insert(pos)
		} else {
			ix.MarkDirty()
		}
	}
}

func (c *Collection) markAllDirty() {
	for _, ix := range c.indices {
		ix.MarkDirty()
	}
}

// exceedsBatchRatio reports whether a batch of n documents over a collection
// of total documents should fall back to lazy rebuilds.
func (c *Collection) exceedsBatchRatio(n, total int) bool {
	ratio := c.cfg.BatchRebuildRatio
	return ratio > 0 && float64(n) > ratio*float64(total)
}

func (c *Collection) checkUniqueInsert(docs []document.Document) error {
	for _, f := range c.order {
		ix := c.indices[f]
		if !ix.Unique() {
			continue
		}
		c.ensure(ix, false)
		seen := make(map[string]struct{}, len(docs))
		for _, doc := range docs {
			v := doc.Get(f)
			if v.IsNull() {
				continue
			}
			k := v.Key()
			if _, dup := seen[k]; dup || ix.Conflicts(v, -1) {
				return &ConstraintError{Field: f, Value: v}
			}
			seen[k] = struct{}{}
		}
	}
	return nil
}

// Update replaces the stored document with the same identifier as rec.
//
// The identifier must still be present, else an error matching ErrNotFound
// is returned. With cloning enabled a copy of rec is stored; otherwise rec
// itself becomes the stored record. rec may be the live record returned by an
// uncloned read and modified in place.
//
// A rejected in-place edit cannot be rolled back: the store keeps the edited
// values and every index is marked dirty, to be rebuilt on next use.
func (c *Collection) Update(rec *document.Record) error {
	start := time.Now()

	c.mu.Lock()
	events, dirty, err := c.updateLocked([]*document.Record{rec})
	c.mu.Unlock()

	c.metrics.RecordUpdate(1, time.Since(start), err)
	c.logger.LogUpdate(1, dirty, err)
	if err != nil {
		return err
	}
	c.emit(events...)
	return nil
}

// UpdateMany updates recs as one unit. All records are resolved, validated
// and checked against unique indices before the first one is stored. When
// the batch touches more than Config.BatchRebuildRatio of the collection the
// indices are marked dirty instead of maintained per document.
func (c *Collection) UpdateMany(recs []*document.Record) error {
	start := time.Now()

	c.mu.Lock()
	events, dirty, err := c.updateLocked(recs)
	c.mu.Unlock()

	c.metrics.RecordUpdate(len(recs), time.Since(start), err)
	c.logger.LogUpdate(len(recs), dirty, err)
	if err != nil {
		return err
	}
	c.emit(events...)
	return nil
}

// UpdateWhere applies fn to a private copy of every document matching p and
// stores the results as one batch. It returns the number of documents
// updated. fn runs under the collection lock and must not call back into the
// collection.
func (c *Collection) UpdateWhere(p query.Predicate, fn func(rec *document.Record)) (int, error) {
	start := time.Now()

	c.mu.Lock()
	positions := query.Select(c.source(), p, 0)
	recs := make([]*document.Record, len(positions))
	for i, pos := range positions {
		recs[i] = c.store.At(pos).Clone(document.CloneDeep)
		fn(recs[i])
	}
	events, dirty, err := c.updateLocked(recs)
	c.mu.Unlock()

	c.metrics.RecordUpdate(len(recs), time.Since(start), err)
	c.logger.LogUpdate(len(recs), dirty, err)
	if err != nil {
		return 0, err
	}
	c.emit(events...)
	return len(recs), nil
}

type pendingUpdate struct {
	pos     int
	prev    *document.Record
	next    *document.Record
	inPlace bool
	old     []document.Value // per declared index, unused when inPlace
}

func (c *Collection) updateLocked(recs []*document.Record) ([]Event, bool, error) {
	events, dirty, err := c.applyUpdates(recs)
	if err != nil && c.editedInPlace(recs) {
		// The store already holds the rejected values; positions cannot be
		// trusted until the next rebuild.
		c.markAllDirty()
		dirty = true
	}
	return events, dirty, err
}

// editedInPlace reports whether any of recs shares its document map with the
// stored record of the same identifier.
func (c *Collection) editedInPlace(recs []*document.Record) bool {
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		if pos, ok := c.store.PositionOf(rec.ID); ok && sameDocument(c.store.At(pos).Doc, rec.Doc) {
			return true
		}
	}
	return false
}

func (c *Collection) applyUpdates(recs []*document.Record) ([]Event, bool, error) {
	plan := make([]pendingUpdate, 0, len(recs))
	seen := make(map[document.ID]struct{}, len(recs))
	for _, rec := range recs {
		if rec == nil {
			return nil, false, fmt.Errorf("%w: nil record", ErrMalformedInput)
		}
		if err := rec.Doc.Validate(); err != nil {
			return nil, false, translateError(err)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, false, fmt.Errorf("%w: document %d appears twice in batch", ErrMalformedInput, rec.ID)
		}
		seen[rec.ID] = struct{}{}

		pos, ok := c.store.PositionOf(rec.ID)
		if !ok {
			return nil, false, &NotFoundError{ID: rec.ID}
		}
		u := pendingUpdate{
			pos:     pos,
			prev:    c.store.At(pos),
			next:    rec,
			inPlace: sameDocument(c.store.At(pos).Doc, rec.Doc),
		}
		if c.cfg.Clone {
			u.next = c.cloneRecord(rec, c.cfg.CloneMethod)
		}
		if !u.inPlace {
			u.old = make([]document.Value, len(c.order))
			for i, f := range c.order {
				u.old[i] = u.prev.Get(f)
			}
		}
		plan = append(plan, u)
	}
	if err := c.checkUniqueUpdate(plan); err != nil {
		return nil, false, err
	}

	bulk := len(plan) > 1 && c.exceedsBatchRatio(len(plan), c.store.Len())
	switch {
	case bulk:
		c.swapAll(plan)
		c.markAllDirty()
	case len(plan) == 1:
		c.swapAll(plan)
		c.indexUpdate(plan[0])
	default:
		c.indexUpdateBatch(plan)
	}

	events := make([]Event, len(plan))
	for i, u := range plan {
		var old *document.Record
		if !u.inPlace {
			old = u.prev
		}
		events[i] = c.event(EventUpdate, u.next, old)
	}
	return events, bulk, nil
}

func (c *Collection) swapAll(plan []pendingUpdate) {
	for _, u := range plan {
		// IDs were resolved above, Swap cannot fail.
		_, _ = c.store.Swap(u.pos, u.next)
	}
}

func (c *Collection) indexUpdate(u pendingUpdate) {
	for i, f := range c.order {
		ix := c.indices[f]
		switch {
		case !ix.Adaptive() || ix.Dirty():
			ix.MarkDirty()
		case u.inPlace:
			ix.Reposition(u.pos)
		default:
			ix.Update(u.pos, u.old[i])
		}
	}
}

// indexUpdateBatch lets the store take every new value, then moves only the
// entries that no longer fit. Entries whose value did not change keep their
// slot, so equal runs keep their order.
func (c *Collection) indexUpdateBatch(plan []pendingUpdate) {
	changed := make([][]int, len(c.order))
	var suspect []int
	for _, u := range plan {
		if u.inPlace {
			suspect = append(suspect, u.pos)
			continue
		}
		for i, f := range c.order {
			if !document.Equal(u.old[i], u.next.Get(f)) {
				changed[i] = append(changed[i], u.pos)
			}
		}
	}
	slices.Sort(suspect)

	c.swapAll(plan)

	for i, f := range c.order {
		ix := c.indices[f]
		if !ix.Adaptive() || ix.Dirty() {
			ix.MarkDirty()
			continue
		}
		slices.Sort(changed[i])
		moved := ix.Reconcile(changed[i], suspect)
		if len(moved) == 0 {
			continue
		}
		// Re-add in batch order so ties among moved entries follow the caller.
		slices.Sort(moved)
		for _, u := range plan {
			if _, ok := slices.BinarySearch(moved, u.pos); ok {
				ix.Insert(u.pos)
			}
		}
	}
}

func (c *Collection) checkUniqueUpdate(plan []pendingUpdate) error {
	for _, f := range c.order {
		ix := c.indices[f]
		if !ix.Unique() {
			continue
		}
		if len(plan) == 1 && !plan[0].inPlace {
			c.ensure(ix, false)
			v := plan[0].next.Get(f)
			if ix.Conflicts(v, plan[0].pos) {
				return &ConstraintError{Field: f, Value: v}
			}
			continue
		}

		// Batches and in-place edits: check the post-update state by scan.
		final := make(map[int]document.Value, len(plan))
		for _, u := range plan {
			final[u.pos] = u.next.Get(f)
		}
		seen := make(map[string]struct{}, c.store.Len())
		for pos, rec := range c.store.All() {
			v, ok := final[pos]
			if !ok {
				v = rec.Get(f)
			}
			if v.IsNull() {
				continue
			}
			k := v.Key()
			if _, dup := seen[k]; dup {
				return &ConstraintError{Field: f, Value: v}
			}
			seen[k] = struct{}{}
		}
	}
	return nil
}

// Remove removes the stored document with rec's identifier.
func (c *Collection) Remove(rec *document.Record) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", ErrMalformedInput)
	}
	return c.RemoveByID(rec.ID)
}

// RemoveByID removes the document with identifier id.
func (c *Collection) RemoveByID(id document.ID) error {
	return c.RemoveMany([]document.ID{id})
}

// RemoveMany removes the documents with the given identifiers as one unit.
// If any identifier is missing nothing is removed.
func (c *Collection) RemoveMany(ids []document.ID) error {
	start := time.Now()

	c.mu.Lock()
	events, err := c.removeIDsLocked(ids)
	c.mu.Unlock()

	c.metrics.RecordRemove(len(ids), time.Since(start), err)
	c.logger.LogRemove(len(ids), err)
	if err != nil {
		return err
	}
	c.emit(events...)
	return nil
}

// RemoveWhere removes every document matching p and returns how many were
// removed.
func (c *Collection) RemoveWhere(p query.Predicate) (int, error) {
	start := time.Now()

	c.mu.Lock()
	positions := query.Select(c.source(), p, 0)
	events := c.removePositionsLocked(positions)
	c.mu.Unlock()

	c.metrics.RecordRemove(len(positions), time.Since(start), nil)
	c.logger.LogRemove(len(positions), nil)
	c.emit(events...)
	return len(positions), nil
}

func (c *Collection) removeIDsLocked(ids []document.ID) ([]Event, error) {
	positions := make([]int, 0, len(ids))
	seen := make(map[document.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		pos, ok := c.store.PositionOf(id)
		if !ok {
			return nil, &NotFoundError{ID: id}
		}
		positions = append(positions, pos)
	}
	slices.Sort(positions)
	return c.removePositionsLocked(positions), nil
}

// removePositionsLocked removes the rows at positions (ascending, distinct)
// and corrects every index. Slots of a single removal are located before the
// store compacts; batches shift by rank and need no values.
func (c *Collection) removePositionsLocked(positions []int) []Event {
	var removed []*document.Record
	switch len(positions) {
	case 0:
		return nil
	case 1:
		pos := positions[0]
		slots := make([]int, len(c.order))
		for i, f := range c.order {
			slots[i] = -1
			if ix := c.indices[f]; ix.Adaptive() && !ix.Dirty() {
				slots[i] = ix.SlotOf(pos)
			}
		}
		rec, err := c.store.RemoveAt(pos)
		if err != nil {
			return nil
		}
		for i, f := range c.order {
			ix := c.indices[f]
			if ix.Adaptive() && !ix.Dirty() {
				ix.RemoveSlot(slots[i], pos)
			} else {
				ix.MarkDirty()
			}
		}
		removed = []*document.Record{rec}
	default:
		recs, err := c.store.RemoveBatch(positions)
		if err != nil {
			return nil
		}
		for _, ix := range c.indices {
			if ix.Adaptive() && !ix.Dirty() {
				ix.RemoveBatch(positions)
			} else {
				ix.MarkDirty()
			}
		}
		removed = recs
	}

	events := make([]Event, len(removed))
	for i, rec := range removed {
		events[i] = c.event(EventRemove, rec, nil)
	}
	return events
}

// Count returns the number of documents.
func (c *Collection) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Clear removes every document without emitting events. Index declarations
// survive (emptied) unless removeIndices is set. Identifiers are not reused
// after a clear.
func (c *Collection) Clear(removeIndices bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Clear()
	if removeIndices {
		c.indices = make(map[string]*binindex.Index)
		c.order = nil
		return
	}
	for _, ix := range c.indices {
		ix.Reset()
	}
}
