package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Notes:
// - Documents encode through document.Value's JSON methods, so every kind
//   (including Time and nested objects) survives a round trip.
// - Integers beyond 2^53 stay exact because values carry their kind.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
//
// NOTE: This affects newly written snapshots only. Existing frames store the
// codec name in their header and are decoded with that codec.
var Default Codec = GoJSON{}
