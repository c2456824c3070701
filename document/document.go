package document

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrMalformed is returned when a document cannot be stored.
var ErrMalformed = errors.New("malformed document")

// ReservedPrefix marks field names managed by the store.
const ReservedPrefix = "$"

// Document is a schema-less record: an open field/value mapping.
type Document map[string]Value

// ID is the store-assigned document identifier. IDs are strictly increasing
// and never reused within a collection.
type ID uint64

// Record is a stored document together with its store-managed fields.
type Record struct {
	// ID is assigned on insert and never changes.
	ID ID `json:"$id"`
	// Rev is bumped by the store on every update.
	Rev uint64 `json:"$rev"`
	// Doc holds the user fields.
	Doc Document `json:"doc"`
}

// Get returns the value at path. Missing fields yield Undefined.
func (r *Record) Get(path string) Value {
	if r == nil {
		return Undefined()
	}
	return r.Doc.Get(path)
}

// Keys returns the field names of d in sorted order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Get returns the value stored under path.
//
// A path that is not a direct key is resolved as a dotted path through
// nested objects ("owner.name"). Missing fields yield Undefined.
func (d Document) Get(path string) Value {
	if v, ok := d[path]; ok {
		return v
	}
	if !strings.Contains(path, ".") {
		return Undefined()
	}

	cur := d
	parts := strings.Split(path, ".")
	for i, p := range parts {
		v, ok := cur[p]
		if !ok {
			return Undefined()
		}
		if i == len(parts)-1 {
			return v
		}
		obj, ok := v.AsObject()
		if !ok {
			return Undefined()
		}
		cur = obj
	}
	return Undefined()
}

// Set stores v under key.
func (d Document) Set(key string, v Value) { d[key] = v }

// Validate reports whether d can be stored.
func (d Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil document", ErrMalformed)
	}
	for k, v := range d {
		if k == "" {
			return fmt.Errorf("%w: empty field name", ErrMalformed)
		}
		if strings.HasPrefix(k, ReservedPrefix) {
			return fmt.Errorf("%w: field %q uses reserved prefix %q", ErrMalformed, k, ReservedPrefix)
		}
		if err := v.validate(); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrMalformed, k, err)
		}
	}
	return nil
}

func (v Value) validate() error {
	if !v.Kind.Valid() {
		return fmt.Errorf("unknown kind %s", v.Kind)
	}
	switch v.Kind {
	case KindArray:
		for i := range v.A {
			if err := v.A[i].validate(); err != nil {
				return err
			}
		}
	case KindObject:
		if v.O == nil {
			return errors.New("nil object")
		}
		for _, nested := range v.O {
			if err := nested.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// ToAny converts d into a plain map (the inverse of FromMap).
func (d Document) ToAny() map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v.Any()
	}
	return out
}
