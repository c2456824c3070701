// Package document defines the record model stored by docstore collections.
//
// # Values
//
// Field values are typed:
//
//   - Null(), Bool(true), Int(2024), Float(3.14), String("tech")
//   - Time(ts), Array([]Value{...}), Object(Document{...})
//
// A missing field reads as Undefined().
//
// # Ordering
//
// Compare defines one total order across all kinds so that a field holding
// mixed datatypes can still be indexed:
//
//	undefined < null < bool < number < string < time < array < object
//
// Int and Float compare numerically.
//
// # Cloning
//
// Document.Clone and Value.Clone copy the full structure; ShallowClone copies
// the top-level map only. Collections choose between them with CloneMethod.
package document
