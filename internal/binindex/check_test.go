package binindex

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/hupe1980/docstore/document"
	"github.com/hupe1980/docstore/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbersIndex(t *testing.T, vals ...int64) *Index {
	t.Helper()
	s := store.New()
	for _, v := range vals {
		s.Insert(document.Document{"a": document.Int(v)})
	}
	ix := New(s, "a", true, false)
	ix.Rebuild()
	return ix
}

func TestCheck_DetectsReversal(t *testing.T) {
	ix := numbersIndex(t, 9, 3, 7, 0, 1)
	assert.True(t, ix.Check(CheckOptions{}))

	slices.Reverse(ix.Positions())
	assert.False(t, ix.Check(CheckOptions{}))
	require.ErrorIs(t, ix.Validate(), ErrCorrupt)

	// first/last pairs are always sampled
	assert.False(t, ix.Check(CheckOptions{RandomSampling: true, SampleFactor: 0.5}))

	ix.Rebuild()
	assert.True(t, ix.Check(CheckOptions{}))
}

func TestCheck_DetectsMissingEntry(t *testing.T) {
	ix := numbersIndex(t, 9, 3, 7, 0, 1)
	p := ix.Positions()
	ix.SetPositions(p[:len(p)-1])

	assert.False(t, ix.Check(CheckOptions{}))
	assert.False(t, ix.Check(CheckOptions{RandomSampling: true}))
}

func TestCheck_DetectsBadPositions(t *testing.T) {
	ix := numbersIndex(t, 1, 2, 3)
	ix.SetPositions([]int{0, 0, 1})
	require.ErrorIs(t, ix.Validate(), ErrCorrupt)

	ix.SetPositions([]int{0, 1, 7})
	require.ErrorIs(t, ix.Validate(), ErrCorrupt)
	assert.False(t, ix.Check(CheckOptions{RandomSampling: true, SampleFactor: 1}))
}

func TestCheck_SamplingPassesValidIndex(t *testing.T) {
	vals := make([]int64, 1000)
	rng := rand.New(rand.NewPCG(7, 7))
	for i := range vals {
		vals[i] = rng.Int64N(100)
	}
	ix := numbersIndex(t, vals...)

	for _, f := range []float64{0, 0.01, 0.5, 1, 3} {
		assert.True(t, ix.Check(CheckOptions{RandomSampling: true, SampleFactor: f, Rand: rng}), "factor %v", f)
	}
}

func TestCheck_EmptyAndSingle(t *testing.T) {
	assert.True(t, numbersIndex(t).Check(CheckOptions{RandomSampling: true}))
	assert.True(t, numbersIndex(t, 4).Check(CheckOptions{RandomSampling: true}))
	assert.True(t, numbersIndex(t, 4).Check(CheckOptions{}))
}
