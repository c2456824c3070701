package document

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompare_KindOrder(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ordered := []Value{
		Undefined(),
		Null(),
		Bool(false),
		Bool(true),
		Float(math.NaN()),
		Int(-5),
		Float(0.5),
		Int(3),
		String("0"),
		String("3"),
		String("a"),
		Time(ts),
		Array([]Value{Int(1)}),
		Array([]Value{Int(1), Int(2)}),
		Object(Document{"a": Int(1)}),
	}

	for i := 0; i < len(ordered); i++ {
		for j := 0; j < len(ordered); j++ {
			got := Compare(ordered[i], ordered[j])
			switch {
			case i < j:
				assert.Equal(t, -1, got, "Compare(%d,%d)", i, j)
			case i > j:
				assert.Equal(t, 1, got, "Compare(%d,%d)", i, j)
			default:
				assert.Equal(t, 0, got, "Compare(%d,%d)", i, j)
			}
		}
	}
}

func TestCompare_NumbersAcrossKinds(t *testing.T) {
	assert.True(t, Equal(Int(3), Float(3.0)))
	assert.True(t, Less(Int(3), Float(3.14)))
	assert.True(t, Less(Float(-0.5), Int(0)))
	assert.Equal(t, Int(3).Key(), Float(3).Key())
	assert.NotEqual(t, Int(3).Key(), Float(3.5).Key())
}

func TestCompare_SortsMixedData(t *testing.T) {
	vals := []Value{String("4"), Int(0), Null(), Bool(true), Float(3.14), Undefined(), String("0"), Bool(false), Int(4)}
	slices.SortStableFunc(vals, Compare)

	for i := 1; i < len(vals); i++ {
		assert.LessOrEqual(t, Compare(vals[i-1], vals[i]), 0)
	}
	assert.Equal(t, KindUndefined, vals[0].Kind)
	assert.Equal(t, KindString, vals[len(vals)-1].Kind)
}

func TestCompare_Objects(t *testing.T) {
	a := Object(Document{"a": Int(1), "b": Int(2)})
	b := Object(Document{"a": Int(1), "b": Int(3)})
	c := Object(Document{"a": Int(1)})

	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(a, c))
	assert.Equal(t, 0, Compare(a, Object(Document{"b": Int(2), "a": Float(1)})))
}
