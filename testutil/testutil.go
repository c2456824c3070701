package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/hupe1980/docstore/document"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Value returns a random value of any kind except Undefined. Arrays and
// objects nest one level deep.
func (r *RNG) Value() document.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.valueLocked(1)
}

// Scalar returns a random Int, Float or String value.
func (r *RNG) Scalar() document.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scalarLocked()
}

func (r *RNG) scalarLocked() document.Value {
	switch r.rand.Intn(3) {
	case 0:
		return document.Int(int64(r.rand.Intn(100) - 50))
	case 1:
		// Halves collide with integers often enough to exercise mixed ties.
		return document.Float(float64(r.rand.Intn(200)-100) / 2)
	default:
		return document.String(fmt.Sprintf("s%02d", r.rand.Intn(50)))
	}
}

func (r *RNG) valueLocked(depth int) document.Value {
	k := r.rand.Intn(8)
	if depth <= 0 && k >= 6 {
		k = r.rand.Intn(6)
	}
	switch k {
	case 0:
		return document.Null()
	case 1:
		return document.Bool(r.rand.Intn(2) == 1)
	case 2, 3:
		return r.scalarLocked()
	case 4:
		return document.String(fmt.Sprintf("k%03d", r.rand.Intn(1000)))
	case 5:
		base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		return document.Time(base.Add(time.Duration(r.rand.Intn(1000)) * time.Hour))
	case 6:
		arr := make([]document.Value, r.rand.Intn(3))
		for i := range arr {
			arr[i] = r.valueLocked(depth - 1)
		}
		return document.Array(arr)
	default:
		obj := document.Document{}
		for i := range r.rand.Intn(3) {
			obj[fmt.Sprintf("f%d", i)] = r.valueLocked(depth - 1)
		}
		return document.Object(obj)
	}
}

// Document returns a document with a random value for every field.
func (r *RNG) Document(fields ...string) document.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := make(document.Document, len(fields))
	for _, f := range fields {
		d[f] = r.valueLocked(1)
	}
	return d
}

// Documents returns n documents with random values for fields.
func (r *RNG) Documents(n int, fields ...string) []document.Document {
	docs := make([]document.Document, n)
	for i := range docs {
		docs[i] = r.Document(fields...)
	}
	return docs
}

// SparseDocuments is like Documents but leaves each field missing with
// probability missingRate, so indexed values are Undefined.
func (r *RNG) SparseDocuments(n int, missingRate float64, fields ...string) []document.Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := make([]document.Document, n)
	for i := range docs {
		d := document.Document{}
		for _, f := range fields {
			if r.rand.Float64() >= missingRate {
				d[f] = r.valueLocked(1)
			}
		}
		docs[i] = d
	}
	return docs
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Inverse transform over the generalized harmonic number.
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// ZipfInts returns n Zipfian keys in [0, distinct) as Int values. Skewed
// keys produce long runs of equal values in an index.
func (r *RNG) ZipfInts(n, distinct int, s float64) []document.Value {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]document.Value, n)
	for i := range n {
		out[i] = document.Int(int64(r.zipfLocked(distinct, s)))
	}
	return out
}
