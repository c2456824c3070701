package query

import (
	"errors"
	"fmt"

	"github.com/hupe1980/docstore/document"
)

// ErrInvalidFilter is returned by Validate for a filter that can never be
// evaluated.
var ErrInvalidFilter = errors.New("invalid filter")

// Operator represents a comparison operator for filtering.
type Operator string

const (
	// OpEqual matches values equal to the operand.
	OpEqual Operator = "eq"
	// OpNotEqual matches values not equal to the operand.
	OpNotEqual Operator = "ne"
	// OpGreaterThan matches values greater than the operand of the same kind class.
	OpGreaterThan Operator = "gt"
	// OpGreaterEqual matches values greater than or equal to the operand of the same kind class.
	OpGreaterEqual Operator = "gte"
	// OpLessThan matches values less than the operand of the same kind class.
	OpLessThan Operator = "lt"
	// OpLessEqual matches values less than or equal to the operand of the same kind class.
	OpLessEqual Operator = "lte"
	// OpBetween matches values within [lo, hi]; the operand is a two element array.
	OpBetween Operator = "between"
	// OpIn matches values equal to any element of the array operand.
	OpIn Operator = "in"
	// OpContains matches arrays holding the operand and strings containing it.
	OpContains Operator = "contains"
)

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterEqual, OpLessThan,
		OpLessEqual, OpBetween, OpIn, OpContains:
		return true
	default:
		return false
	}
}

// Predicate decides whether a record belongs to a result set.
type Predicate interface {
	Matches(doc document.Document) bool
}

// Filter represents a single field condition.
type Filter struct {
	Field string         `json:"field"`
	Op    Operator       `json:"op"`
	Value document.Value `json:"value"`
}

// Eq is shorthand for an equality filter.
func Eq(field string, v document.Value) Filter {
	return Filter{Field: field, Op: OpEqual, Value: v}
}

// Between is shorthand for an inclusive range filter.
func Between(field string, lo, hi document.Value) Filter {
	return Filter{Field: field, Op: OpBetween, Value: document.Array([]document.Value{lo, hi})}
}

// In is shorthand for a membership filter.
func In(field string, vs ...document.Value) Filter {
	return Filter{Field: field, Op: OpIn, Value: document.Array(vs)}
}

// Bounds returns the operands of a between filter.
func (f Filter) Bounds() (lo, hi document.Value, ok bool) {
	if f.Op != OpBetween || f.Value.Kind != document.KindArray || len(f.Value.A) != 2 {
		return document.Value{}, document.Value{}, false
	}
	return f.Value.A[0], f.Value.A[1], true
}

// Validate checks the operator and the operand shape.
func (f Filter) Validate() error {
	if f.Field == "" {
		return fmt.Errorf("%w: empty field", ErrInvalidFilter)
	}
	if !f.Op.Valid() {
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
	}
	switch f.Op {
	case OpBetween:
		if _, _, ok := f.Bounds(); !ok {
			return fmt.Errorf("%w: between on %s needs a [lo, hi] array", ErrInvalidFilter, f.Field)
		}
	case OpIn:
		if f.Value.Kind != document.KindArray {
			return fmt.Errorf("%w: in on %s needs an array", ErrInvalidFilter, f.Field)
		}
	}
	return nil
}

// FilterSet represents a set of filters that must all match (AND logic).
type FilterSet struct {
	Filters []Filter `json:"filters"`
}

// And creates a filter set.
func And(filters ...Filter) *FilterSet {
	return &FilterSet{Filters: filters}
}

// Validate validates every filter of the set.
func (fs *FilterSet) Validate() error {
	for _, f := range fs.Filters {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Func adapts a plain function to a Predicate.
type Func func(doc document.Document) bool

// Matches calls fn.
func (fn Func) Matches(doc document.Document) bool { return fn(doc) }

// All matches every record.
var All Predicate = Func(func(document.Document) bool { return true })
