package document

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindUndefined is the kind of a missing field. It is also the zero Kind.
	KindUndefined Kind = iota
	// KindNull represents a null value.
	KindNull
	// KindBool represents a boolean value.
	KindBool
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindTime represents a timestamp value.
	KindTime
	// KindArray represents an array value.
	KindArray
	// KindObject represents a nested document.
	KindObject
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid(" + strconv.Itoa(int(k)) + ")"
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k <= KindObject }

// Value is a small typed value used for document fields and filters.
//
// The representation keeps comparisons fast and predictable:
// no reflection and no fmt-based stringification.
//
// NOTE: This is also used for persistence; keep the JSON shape stable.
type Value struct {
	Kind Kind     `json:"k"`
	I64  int64    `json:"i,omitempty"`
	F64  float64  `json:"f,omitempty"`
	S    string   `json:"s,omitempty"`
	B    bool     `json:"b,omitempty"`
	A    []Value  `json:"a,omitempty"`
	O    Document `json:"o,omitempty"`
	t    time.Time
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	type Alias Value
	aux := &struct {
		T string `json:"t,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(&v),
	}
	if v.Kind == KindTime {
		aux.T = v.t.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	type Alias Value
	aux := &struct {
		T string `json:"t,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(v),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if v.Kind == KindTime {
		ts, err := time.Parse(time.RFC3339Nano, aux.T)
		if err != nil {
			return err
		}
		v.t = ts
	}
	return nil
}

// Undefined returns the value of a missing field.
func Undefined() Value { return Value{} }

// Null returns a null Value.
func Null() Value { return Value{Kind: KindNull} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Int returns an int64 Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a float64 Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, S: v} }

// Time returns a timestamp Value.
func Time(v time.Time) Value { return Value{Kind: KindTime, t: v} }

// Array returns an array Value.
func Array(v []Value) Value { return Value{Kind: KindArray, A: v} }

// Object returns a nested document Value.
func Object(v Document) Value { return Value{Kind: KindObject, O: v} }

// IsUndefined reports whether v is the value of a missing field.
func (v Value) IsUndefined() bool { return v.Kind == KindUndefined }

// IsNull reports whether v is null or undefined.
func (v Value) IsNull() bool { return v.Kind == KindNull || v.Kind == KindUndefined }

// AsInt64 returns the int64 value if Kind is KindInt.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.I64, true
}

// AsFloat64 returns the numeric value for KindInt and KindFloat.
func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.I64), true
	case KindFloat:
		return v.F64, true
	default:
		return 0, false
	}
}

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.S, true
}

// AsBool returns the boolean value if Kind is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.B, true
}

// AsTime returns the timestamp if Kind is KindTime.
func (v Value) AsTime() (time.Time, bool) {
	if v.Kind != KindTime {
		return time.Time{}, false
	}
	return v.t, true
}

// AsArray returns the array value if Kind is KindArray.
func (v Value) AsArray() ([]Value, bool) {
	if v.Kind != KindArray {
		return nil, false
	}
	return v.A, true
}

// AsObject returns the nested document if Kind is KindObject.
func (v Value) AsObject() (Document, bool) {
	if v.Kind != KindObject {
		return nil, false
	}
	return v.O, true
}

// Key returns a stable string representation for use in maps.
//
// Numerically equal Int and Float values share a key so that the key agrees
// with Compare.
func (v Value) Key() string {
	switch v.Kind {
	case KindUndefined:
		return "u"
	case KindNull:
		return "null"
	case KindBool:
		if v.B {
			return "b:1"
		}
		return "b:0"
	case KindInt:
		return "n:" + strconv.FormatFloat(float64(v.I64), 'g', -1, 64) + ":" + strconv.FormatInt(v.I64, 10)
	case KindFloat:
		if v.F64 == math.Trunc(v.F64) && math.Abs(v.F64) < 1<<63 {
			return "n:" + strconv.FormatFloat(v.F64, 'g', -1, 64) + ":" + strconv.FormatInt(int64(v.F64), 10)
		}
		return "n:" + strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindString:
		return "s:" + v.S
	case KindTime:
		return "t:" + strconv.FormatInt(v.t.UnixNano(), 10)
	case KindArray:
		parts := make([]string, len(v.A))
		for i := range v.A {
			parts[i] = v.A[i].Key()
		}
		return "a:" + strings.Join(parts, "\x1f")
	case KindObject:
		keys := v.O.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "\x1e" + v.O[k].Key()
		}
		return "o:" + strings.Join(parts, "\x1f")
	default:
		return "invalid"
	}
}

// Any converts v back into a plain Go value (the inverse of FromAny).
func (v Value) Any() any {
	switch v.Kind {
	case KindNull, KindUndefined:
		return nil
	case KindBool:
		return v.B
	case KindInt:
		return v.I64
	case KindFloat:
		return v.F64
	case KindString:
		return v.S
	case KindTime:
		return v.t
	case KindArray:
		out := make([]any, len(v.A))
		for i := range v.A {
			out[i] = v.A[i].Any()
		}
		return out
	case KindObject:
		return v.O.ToAny()
	default:
		return nil
	}
}
