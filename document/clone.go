package document

import "fmt"

// CloneMethod selects how documents are copied at the store boundary.
type CloneMethod string

const (
	// CloneShallow copies the top-level field map only. Nested arrays and
	// objects are shared with the source.
	CloneShallow CloneMethod = "shallow"
	// CloneDeep duplicates the full structure.
	CloneDeep CloneMethod = "deep"
	// CloneCodec round-trips the record through the configured codec.
	CloneCodec CloneMethod = "codec"
)

// ParseCloneMethod validates a clone method name. The empty string maps to
// CloneDeep.
func ParseCloneMethod(s string) (CloneMethod, error) {
	switch CloneMethod(s) {
	case "":
		return CloneDeep, nil
	case CloneShallow, CloneDeep, CloneCodec:
		return CloneMethod(s), nil
	default:
		return "", fmt.Errorf("unknown clone method %q", s)
	}
}

// Clone creates a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	clone := make(Document, len(d))
	for k, v := range d {
		clone[k] = v.Clone()
	}
	return clone
}

// ShallowClone copies the top-level fields of d.
func (d Document) ShallowClone() Document {
	if d == nil {
		return nil
	}
	clone := make(Document, len(d))
	for k, v := range d {
		clone[k] = v
	}
	return clone
}

// Clone creates a deep copy of a Value, including nested arrays and objects.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindArray:
		if v.A == nil {
			return v
		}
		arrayCopy := make([]Value, len(v.A))
		for i := range v.A {
			arrayCopy[i] = v.A[i].Clone()
		}
		return Value{Kind: KindArray, A: arrayCopy}
	case KindObject:
		return Value{Kind: KindObject, O: v.O.Clone()}
	default:
		return v
	}
}

// Clone copies the record with a structural method. CloneCodec is not handled
// here because it needs a codec; callers fall back to CloneDeep.
func (r *Record) Clone(method CloneMethod) *Record {
	if r == nil {
		return nil
	}
	out := &Record{ID: r.ID, Rev: r.Rev}
	if method == CloneShallow {
		out.Doc = r.Doc.ShallowClone()
	} else {
		out.Doc = r.Doc.Clone()
	}
	return out
}
