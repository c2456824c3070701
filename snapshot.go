package docstore

import (
	"fmt"
	"slices"

	"github.com/hupe1980/docstore/document"
	"github.com/hupe1980/docstore/internal/binindex"
)

// Snapshot is the structural view of a collection: its documents, the
// identifier counter, index metadata and configuration. It is what the
// persistence package encodes.
type Snapshot struct {
	Name    string             `json:"name"`
	NextID  document.ID        `json:"nextId"`
	Records []*document.Record `json:"records"`
	Indices []IndexSnapshot    `json:"indices"`
	Config  Config             `json:"config"`
}

// IndexSnapshot is the persisted state of one index.
type IndexSnapshot struct {
	Field    string `json:"field"`
	Unique   bool   `json:"unique"`
	Adaptive bool   `json:"adaptive"`
	Dirty    bool   `json:"dirty"`
	// Positions is omitted for dirty indices; they are rebuilt on first use.
	Positions []int `json:"positions,omitempty"`
}

// Snapshot captures the collection. Records are deep copies.
func (c *Collection) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := &Snapshot{
		Name:    c.name,
		NextID:  c.store.NextID(),
		Records: make([]*document.Record, 0, c.store.Len()),
		Config:  c.configLocked(),
	}
	for _, rec := range c.store.All() {
		snap.Records = append(snap.Records, rec.Clone(document.CloneDeep))
	}
	for _, f := range c.order {
		ix := c.indices[f]
		is := IndexSnapshot{
			Field:    f,
			Unique:   ix.Unique(),
			Adaptive: ix.Adaptive(),
			Dirty:    ix.Dirty(),
		}
		if !ix.Dirty() {
			is.Positions = slices.Clone(ix.Positions())
		}
		snap.Indices = append(snap.Indices, is)
	}
	c.logger.LogSnapshot("snapshot", len(snap.Records), nil)
	return snap
}

// Restore rehydrates a collection from snap without re-running insert side
// effects: identifiers are preserved and no events are emitted.
//
// The snapshot configuration is applied first; optFns may override it (for
// example to attach a logger). Saved index positions are reused when they
// pass a full check, otherwise the index is rebuilt on first use. Unique
// indices are rebuilt eagerly and a duplicate value fails the restore with a
// ConstraintError.
func Restore(snap *Snapshot, optFns ...Option) (*Collection, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrMalformedInput)
	}

	cfg := snap.Config
	cfg.Indices = nil
	cfg.Unique = nil
	o, err := applyOptions(append([]Option{WithConfig(cfg)}, optFns...))
	if err != nil {
		return nil, err
	}
	c := newCollection(snap.Name, o)

	recs := make([]*document.Record, len(snap.Records))
	for i, rec := range snap.Records {
		if rec == nil {
			return nil, fmt.Errorf("%w: nil record at %d", ErrMalformedInput, i)
		}
		if err := rec.Doc.Validate(); err != nil {
			return nil, translateError(err)
		}
		recs[i] = rec.Clone(document.CloneDeep)
	}
	if err := c.store.Restore(recs, snap.NextID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	for _, is := range snap.Indices {
		if is.Field == "" {
			return nil, fmt.Errorf("%w: empty index field", ErrMalformedInput)
		}
		ix := binindex.New(c.store, is.Field, is.Adaptive, is.Unique)
		if !is.Dirty && len(is.Positions) == c.store.Len() {
			ix.SetPositions(slices.Clone(is.Positions))
			if err := ix.Validate(); err != nil {
				c.logger.Warn("discarding saved index positions", "field", is.Field, "error", err)
				ix.MarkDirty()
			}
		}
		if is.Unique {
			c.ensure(ix, false)
			if v, dup := firstDuplicate(ix); dup {
				return nil, &ConstraintError{Field: is.Field, Value: v}
			}
		}
		c.install(ix)
	}

	c.logger.LogSnapshot("restore", c.store.Len(), nil)
	return c, nil
}
