package docstore

import (
	"time"

	"github.com/hupe1980/docstore/document"
	"github.com/hupe1980/docstore/internal/binindex"
	"github.com/hupe1980/docstore/query"
)

// Get returns the document with identifier id.
func (c *Collection) Get(id document.ID, opts ...ReadOption) (*document.Record, error) {
	rec, _, err := c.GetWithPosition(id, opts...)
	return rec, err
}

// GetWithPosition returns the document with identifier id together with its
// current store position, the input the AdaptiveIndex* primitives expect.
func (c *Collection) GetWithPosition(id document.ID, opts ...ReadOption) (*document.Record, int, error) {
	ro := applyReadOptions(opts)

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, pos, err := c.store.Get(id)
	if err != nil {
		return nil, -1, &NotFoundError{ID: id, cause: err}
	}
	return c.out(rec, ro), pos, nil
}

// FindOne returns the first document matching p in store order.
func (c *Collection) FindOne(p query.Predicate, opts ...ReadOption) (*document.Record, bool) {
	recs := c.find(p, 1, opts)
	if len(recs) == 0 {
		return nil, false
	}
	return recs[0], true
}

// Find returns every document matching p in store order. Filters on indexed
// fields are resolved through their binary index; a nil predicate matches
// everything.
func (c *Collection) Find(p query.Predicate, opts ...ReadOption) []*document.Record {
	return c.find(p, 0, opts)
}

// Where returns every document for which fn reports true. It always scans.
func (c *Collection) Where(fn func(doc document.Document) bool, opts ...ReadOption) []*document.Record {
	return c.find(query.Func(fn), 0, opts)
}

// By returns the first document whose field equals v, typically on a unique
// index.
func (c *Collection) By(field string, v document.Value, opts ...ReadOption) (*document.Record, bool) {
	return c.FindOne(query.Eq(field, v), opts...)
}

// All returns every document in store order.
func (c *Collection) All(opts ...ReadOption) []*document.Record {
	return c.find(nil, 0, opts)
}

func (c *Collection) find(p query.Predicate, limit int, opts []ReadOption) []*document.Record {
	start := time.Now()
	ro := applyReadOptions(opts)

	c.mu.Lock()
	positions := query.Select(c.source(), p, limit)
	out := make([]*document.Record, len(positions))
	for i, pos := range positions {
		out[i] = c.out(c.store.At(pos), ro)
	}
	c.mu.Unlock()

	c.metrics.RecordFind(len(out), time.Since(start))
	return out
}

// source exposes the store and indices to query.Select. Callers hold c.mu.
func (c *Collection) source() query.Source { return collectionSource{c: c} }

type collectionSource struct {
	c *Collection
}

func (s collectionSource) Len() int { return s.c.store.Len() }

func (s collectionSource) At(pos int) *document.Record { return s.c.store.At(pos) }

func (s collectionSource) Resolve(f query.Filter) (*query.PositionSet, bool) {
	ix, ok := s.c.indices[f.Field]
	if !ok {
		return nil, false
	}

	var spans [][2]int
	switch f.Op {
	case query.OpEqual, query.OpGreaterThan, query.OpGreaterEqual, query.OpLessThan, query.OpLessEqual:
		s.c.ensure(ix, false)
		lo, hi := ix.Span(spanOp(f.Op), f.Value)
		spans = append(spans, [2]int{lo, hi})
	case query.OpBetween:
		lo, hi, _ := f.Bounds()
		s.c.ensure(ix, false)
		a, b := ix.SpanBetween(lo, hi)
		spans = append(spans, [2]int{a, b})
	case query.OpIn:
		s.c.ensure(ix, false)
		for _, v := range f.Value.A {
			lo, hi := ix.Span(binindex.OpEq, v)
			spans = append(spans, [2]int{lo, hi})
		}
	default:
		return nil, false
	}

	set := query.GetPositionSet()
	positions := ix.Positions()
	for _, sp := range spans {
		if sp[0] < sp[1] {
			set.AddMany(positions[sp[0]:sp[1]])
		}
	}
	return set, true
}

func spanOp(op query.Operator) binindex.Op {
	switch op {
	case query.OpGreaterThan:
		return binindex.OpGt
	case query.OpGreaterEqual:
		return binindex.OpGte
	case query.OpLessThan:
		return binindex.OpLt
	case query.OpLessEqual:
		return binindex.OpLte
	default:
		return binindex.OpEq
	}
}
