// Package codec centralizes snapshot and document encoding.
//
// Codec selection is a breaking-change boundary: persisted snapshots record
// the codec name in their frame header and are decoded with the codec of that
// name, so renaming a codec orphans existing snapshots.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
//
// Snapshot frames store the codec name in their header; Decode uses this
// lookup to pick the matching codec.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// RoundTrip marshals src with c and unmarshals the bytes into dst. It backs
// the codec clone method.
func RoundTrip(c Codec, src, dst any) error {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(src)
	if err != nil {
		return fmt.Errorf("codec %s marshal failed: %w", c.Name(), err)
	}
	if err := c.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("codec %s unmarshal failed: %w", c.Name(), err)
	}
	return nil
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
