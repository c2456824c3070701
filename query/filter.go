package query

import (
	"strings"

	"github.com/hupe1980/docstore/document"
)

// Matches checks if doc matches this filter.
//
// A missing field holds Undefined, so equality against Undefined matches
// documents that lack the field. Range operators only match values of the
// operand's kind class, the same spans a binary index resolves.
func (f Filter) Matches(doc document.Document) bool {
	value := doc.Get(f.Field)

	switch f.Op {
	case OpEqual:
		return document.Equal(value, f.Value)
	case OpNotEqual:
		return !document.Equal(value, f.Value)
	case OpGreaterThan:
		return document.Comparable(value, f.Value) && document.Compare(value, f.Value) > 0
	case OpGreaterEqual:
		return document.Comparable(value, f.Value) && document.Compare(value, f.Value) >= 0
	case OpLessThan:
		return document.Comparable(value, f.Value) && document.Compare(value, f.Value) < 0
	case OpLessEqual:
		return document.Comparable(value, f.Value) && document.Compare(value, f.Value) <= 0
	case OpBetween:
		lo, hi, ok := f.Bounds()
		return ok && document.Compare(value, lo) >= 0 && document.Compare(value, hi) <= 0
	case OpIn:
		return compareIn(value, f.Value)
	case OpContains:
		return compareContains(value, f.Value)
	default:
		return false
	}
}

// Matches checks if doc matches all filters in the set.
func (fs *FilterSet) Matches(doc document.Document) bool {
	for _, filter := range fs.Filters {
		if !filter.Matches(doc) {
			return false
		}
	}
	return true
}

func compareIn(v, list document.Value) bool {
	if list.Kind != document.KindArray {
		return false
	}
	for _, item := range list.A {
		if document.Equal(v, item) {
			return true
		}
	}
	return false
}

func compareContains(v, needle document.Value) bool {
	switch v.Kind {
	case document.KindArray:
		return compareIn(needle, v)
	case document.KindString:
		return needle.Kind == document.KindString && strings.Contains(v.S, needle.S)
	default:
		return false
	}
}
