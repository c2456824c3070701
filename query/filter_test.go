package query

import (
	"testing"

	"github.com/hupe1980/docstore/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Matches(t *testing.T) {
	doc := document.Document{
		"name":  document.String("gungnir"),
		"age":   document.Int(30),
		"score": document.Float(9.5),
		"tags":  document.Array([]document.Value{document.String("spear"), document.String("odin")}),
		"owner": document.Object(document.Document{"name": document.String("odin")}),
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"eq string", Eq("name", document.String("gungnir")), true},
		{"eq int vs float", Eq("age", document.Float(30)), true},
		{"eq missing is undefined", Eq("nope", document.Undefined()), true},
		{"eq missing vs null", Eq("nope", document.Null()), false},
		{"ne", Filter{Field: "name", Op: OpNotEqual, Value: document.String("x")}, true},
		{"gt", Filter{Field: "age", Op: OpGreaterThan, Value: document.Int(29)}, true},
		{"gt other kind", Filter{Field: "age", Op: OpGreaterThan, Value: document.String("a")}, false},
		{"gte equal", Filter{Field: "score", Op: OpGreaterEqual, Value: document.Float(9.5)}, true},
		{"lt", Filter{Field: "score", Op: OpLessThan, Value: document.Int(10)}, true},
		{"lte", Filter{Field: "age", Op: OpLessEqual, Value: document.Int(29)}, false},
		{"lt string", Filter{Field: "name", Op: OpLessThan, Value: document.String("h")}, true},
		{"between", Between("age", document.Int(30), document.Int(40)), true},
		{"between outside", Between("age", document.Int(31), document.Int(40)), false},
		{"in", In("name", document.String("a"), document.String("gungnir")), true},
		{"in none", In("name", document.String("a")), false},
		{"contains array", Filter{Field: "tags", Op: OpContains, Value: document.String("odin")}, true},
		{"contains substring", Filter{Field: "name", Op: OpContains, Value: document.String("ngn")}, true},
		{"contains wrong kind", Filter{Field: "age", Op: OpContains, Value: document.Int(3)}, false},
		{"dotted path", Eq("owner.name", document.String("odin")), true},
		{"unknown op", Filter{Field: "age", Op: "like", Value: document.Int(30)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(doc))
		})
	}
}

func TestFilterSet_Matches(t *testing.T) {
	doc := document.Document{"a": document.Int(1), "b": document.String("x")}

	assert.True(t, And().Matches(doc))
	assert.True(t, And(Eq("a", document.Int(1)), Eq("b", document.String("x"))).Matches(doc))
	assert.False(t, And(Eq("a", document.Int(1)), Eq("b", document.String("y"))).Matches(doc))
}

func TestFilter_Validate(t *testing.T) {
	require.NoError(t, Eq("a", document.Int(1)).Validate())
	require.NoError(t, Between("a", document.Int(1), document.Int(2)).Validate())

	bad := []Filter{
		{Op: OpEqual},
		{Field: "a", Op: "like"},
		{Field: "a", Op: OpBetween, Value: document.Int(1)},
		{Field: "a", Op: OpIn, Value: document.Int(1)},
	}
	for _, f := range bad {
		require.ErrorIs(t, f.Validate(), ErrInvalidFilter)
	}
	require.ErrorIs(t, And(Eq("a", document.Int(1)), bad[1]).Validate(), ErrInvalidFilter)
}

func TestFunc(t *testing.T) {
	even := Func(func(doc document.Document) bool {
		n, _ := doc.Get("n").AsInt64()
		return n%2 == 0
	})
	assert.True(t, even.Matches(document.Document{"n": document.Int(4)}))
	assert.False(t, even.Matches(document.Document{"n": document.Int(3)}))
	assert.True(t, All.Matches(nil))
}
