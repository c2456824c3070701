package binindex

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/hupe1980/docstore/document"
)

// ErrCorrupt is returned by Validate when an index violates its invariant.
var ErrCorrupt = errors.New("index corrupt")

// DefaultSampleFactor is the share of adjacent pairs inspected by a sampled
// check when CheckOptions.SampleFactor is unset.
const DefaultSampleFactor = 0.1

// CheckOptions controls an integrity check.
type CheckOptions struct {
	// RandomSampling checks a random subset of adjacent pairs instead of all
	// of them. A sampled check may pass a corrupted index.
	RandomSampling bool
	// SampleFactor is the share of adjacent pairs to sample, in (0, 1].
	SampleFactor float64
	// Rand overrides the sampling source (tests).
	Rand *rand.Rand
}

// Validate performs a full check: the entry count matches the store, every
// entry is an in-range, distinct position, and values are non-decreasing.
func (ix *Index) Validate() error {
	n := ix.src.Len()
	if len(ix.positions) != n {
		return fmt.Errorf("%w: %s has %d entries, store has %d", ErrCorrupt, ix.field, len(ix.positions), n)
	}

	seen := make([]bool, n)
	for slot, p := range ix.positions {
		if p < 0 || p >= n {
			return fmt.Errorf("%w: %s slot %d holds out-of-range position %d", ErrCorrupt, ix.field, slot, p)
		}
		if seen[p] {
			return fmt.Errorf("%w: %s holds position %d twice", ErrCorrupt, ix.field, p)
		}
		seen[p] = true
	}

	for i := 1; i < n; i++ {
		if document.Compare(ix.Value(ix.positions[i-1]), ix.Value(ix.positions[i])) > 0 {
			return fmt.Errorf("%w: %s out of order at slot %d", ErrCorrupt, ix.field, i)
		}
	}
	return nil
}

// Check reports whether the index is valid. With RandomSampling only the
// length, the first and last pair, and a random share of adjacent pairs are
// inspected.
func (ix *Index) Check(opts CheckOptions) bool {
	if !opts.RandomSampling {
		return ix.Validate() == nil
	}

	n := ix.src.Len()
	if len(ix.positions) != n {
		return false
	}
	if n < 2 {
		return n == 0 || ix.inRange(0)
	}

	factor := opts.SampleFactor
	if factor <= 0 || factor > 1 {
		factor = DefaultSampleFactor
	}
	intn := rand.IntN
	if opts.Rand != nil {
		intn = opts.Rand.IntN
	}

	pairs := n - 1
	samples := int(math.Ceil(float64(pairs) * factor))
	if !ix.pairOrdered(0) || !ix.pairOrdered(pairs-1) {
		return false
	}
	for i := 0; i < samples; i++ {
		if !ix.pairOrdered(intn(pairs)) {
			return false
		}
	}
	return true
}

func (ix *Index) inRange(slot int) bool {
	p := ix.positions[slot]
	return p >= 0 && p < ix.src.Len()
}

// pairOrdered checks slots i and i+1.
func (ix *Index) pairOrdered(i int) bool {
	if !ix.inRange(i) || !ix.inRange(i+1) {
		return false
	}
	return document.Compare(ix.Value(ix.positions[i]), ix.Value(ix.positions[i+1])) <= 0
}
