package document

import (
	"math"
	"strings"
)

// KindRank orders kinds relative to each other. Int and Float share a rank
// so they compare numerically.
func KindRank(k Kind) int {
	switch k {
	case KindUndefined:
		return 0
	case KindNull:
		return 1
	case KindBool:
		return 2
	case KindInt, KindFloat:
		return 3
	case KindString:
		return 4
	case KindTime:
		return 5
	case KindArray:
		return 6
	case KindObject:
		return 7
	default:
		return 8
	}
}

// Compare defines the total order used by binary indices.
//
// undefined < null < bool < number < string < time < array < object.
// Numbers compare by value regardless of Int/Float kind; NaN sorts before
// every other number. Arrays compare lexicographically, objects by their
// sorted (key, value) pairs.
func Compare(a, b Value) int {
	ra, rb := KindRank(a.Kind), KindRank(b.Kind)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch a.Kind {
	case KindUndefined, KindNull:
		return 0
	case KindBool:
		switch {
		case a.B == b.B:
			return 0
		case !a.B:
			return -1
		default:
			return 1
		}
	case KindInt, KindFloat:
		return compareNumbers(a, b)
	case KindString:
		return strings.Compare(a.S, b.S)
	case KindTime:
		return a.t.Compare(b.t)
	case KindArray:
		return compareArrays(a.A, b.A)
	case KindObject:
		return compareObjects(a.O, b.O)
	default:
		return 0
	}
}

// Equal reports whether a and b are equal under Compare.
func Equal(a, b Value) bool { return Compare(a, b) == 0 }

// Comparable reports whether a and b belong to the same kind class, which is
// what range operators require.
func Comparable(a, b Value) bool { return KindRank(a.Kind) == KindRank(b.Kind) }

// Less reports whether a sorts before b.
func Less(a, b Value) bool { return Compare(a, b) < 0 }

func compareNumbers(a, b Value) int {
	if a.Kind == KindInt && b.Kind == KindInt {
		switch {
		case a.I64 < b.I64:
			return -1
		case a.I64 > b.I64:
			return 1
		default:
			return 0
		}
	}

	fa, _ := a.AsFloat64()
	fb, _ := b.AsFloat64()
	naA, naB := math.IsNaN(fa), math.IsNaN(fb)
	switch {
	case naA && naB:
		return 0
	case naA:
		return -1
	case naB:
		return 1
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

func compareArrays(a, b []Value) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func compareObjects(a, b Document) int {
	ka, kb := a.Keys(), b.Keys()
	n := min(len(ka), len(kb))
	for i := 0; i < n; i++ {
		if c := strings.Compare(ka[i], kb[i]); c != 0 {
			return c
		}
		if c := Compare(a[ka[i]], b[kb[i]]); c != 0 {
			return c
		}
	}
	switch {
	case len(ka) < len(kb):
		return -1
	case len(ka) > len(kb):
		return 1
	default:
		return 0
	}
}
