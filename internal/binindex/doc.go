// Package binindex implements binary indices: per-field sorted sequences of
// document store positions.
//
// An index holds positions, not identifiers. Lookups dereference each
// position through the store, so the index must be corrected whenever the
// store compacts. The adaptive operations (Insert, Remove, Update,
// RemoveBatch) apply those corrections incrementally; when a collection
// disables adaptive maintenance the index is marked dirty instead and rebuilt
// by the next reader.
//
// Validate and Check verify the ordering invariant; Rebuild repairs it.
package binindex
