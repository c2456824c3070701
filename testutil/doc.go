// Package testutil provides testing utilities for docstore.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and generators for random documents
// of mixed value kinds, with skewed or sparse fields.
//
// # Random Documents
//
//	rng := testutil.NewRNG(seed)
//	docs := rng.Documents(1000, "a", "b") // mixed kinds per field
//	v := rng.Value()                       // any kind except Undefined
//
// # Skewed Keys
//
//	keys := rng.ZipfInts(n, distinct, 1.5) // ~20% of keys carry ~80% of values
package testutil
