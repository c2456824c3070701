package query

import "github.com/hupe1980/docstore/document"

// Source is the view of a collection Select evaluates against.
type Source interface {
	// Len returns the number of live records.
	Len() int
	// At returns the record at store position pos.
	At(pos int) *document.Record
	// Resolve returns the positions matching f through a binary index. ok is
	// false when no index can answer f; the filter is then evaluated per
	// record. The returned set is owned by the caller.
	Resolve(f Filter) (set *PositionSet, ok bool)
}

// Select returns the store positions of the records matching p in ascending
// order. A positive limit stops the evaluation after that many matches.
//
// Filters on indexed fields are resolved to position sets and intersected;
// remaining filters are checked against the candidates only. An invalid
// filter matches nothing.
func Select(src Source, p Predicate, limit int) []int {
	var filters []Filter
	switch q := p.(type) {
	case nil:
		return scan(src, All, limit)
	case Filter:
		filters = []Filter{q}
	case *Filter:
		filters = []Filter{*q}
	case *FilterSet:
		filters = q.Filters
	default:
		return scan(src, p, limit)
	}

	var (
		candidates *PositionSet
		residual   []Filter
	)
	defer func() { PutPositionSet(candidates) }()

	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil
		}
		set, ok := src.Resolve(f)
		if !ok {
			residual = append(residual, f)
			continue
		}
		if candidates == nil {
			candidates = set
			continue
		}
		candidates.And(set)
		PutPositionSet(set)
	}

	rest := &FilterSet{Filters: residual}
	if candidates == nil {
		return scan(src, rest, limit)
	}

	var out []int
	for pos := range candidates.All() {
		if len(residual) > 0 && !rest.Matches(src.At(pos).Doc) {
			continue
		}
		out = append(out, pos)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func scan(src Source, p Predicate, limit int) []int {
	var out []int
	for pos := 0; pos < src.Len(); pos++ {
		if !p.Matches(src.At(pos).Doc) {
			continue
		}
		out = append(out, pos)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
