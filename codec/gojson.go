package codec

import (
	"bytes"
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/docstore/document"
)

// GoJSON is a JSON codec backed by github.com/goccy/go-json.
//
// It is the default snapshot codec. Frames written with it decode with JSON
// as well; the name in the header only selects the faster implementation.
type GoJSON struct{}

// Marshal encodes the value to JSON.
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns the unique name of the codec ("go-json").
func (GoJSON) Name() string { return "go-json" }

// Append encodes the value to JSON and appends it to dst.
func (GoJSON) Append(dst []byte, v any) ([]byte, error) {
	b, err := gojson.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}

// DecodeDocument decodes one JSON object into a document. Numbers without a
// fraction or exponent become Int values, so identifiers beyond 2^53 stay
// exact; all other numbers become Float.
func DecodeDocument(data []byte) (document.Document, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", document.ErrMalformed)
	}
	return document.FromMap(m)
}
