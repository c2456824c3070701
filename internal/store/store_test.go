package store

import (
	"testing"

	"github.com/hupe1980/docstore/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, names ...string) *Store {
	t.Helper()
	s := New()
	for _, n := range names {
		s.Insert(document.Document{"name": document.String(n)})
	}
	return s
}

func names(s *Store) []string {
	out := make([]string, 0, s.Len())
	for _, rec := range s.All() {
		out = append(out, rec.Doc["name"].S)
	}
	return out
}

func TestStore_InsertAssignsIncreasingIDs(t *testing.T) {
	s := New()
	r1, p1 := s.Insert(document.Document{"a": document.Int(1)})
	r2, p2 := s.Insert(document.Document{"a": document.Int(2)})

	assert.Equal(t, document.ID(1), r1.ID)
	assert.Equal(t, document.ID(2), r2.ID)
	assert.Equal(t, 0, p1)
	assert.Equal(t, 1, p2)
	assert.Equal(t, document.ID(3), s.NextID())
	assert.True(t, s.CheckIDMap())
}

func TestStore_RemoveAtCompacts(t *testing.T) {
	s := seed(t, "mjolnir", "gungnir", "tyrfing", "draupnir")

	rec, err := s.RemoveAt(2)
	require.NoError(t, err)
	assert.Equal(t, "tyrfing", rec.Doc["name"].S)
	assert.Equal(t, []string{"mjolnir", "gungnir", "draupnir"}, names(s))

	pos, ok := s.PositionOf(4)
	require.True(t, ok)
	assert.Equal(t, 2, pos)
	_, ok = s.PositionOf(3)
	assert.False(t, ok)
	assert.True(t, s.CheckIDMap())

	_, err = s.RemoveAt(10)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_IDsNeverReused(t *testing.T) {
	s := seed(t, "a", "b")
	_, err := s.RemoveAt(1)
	require.NoError(t, err)
	rec, _ := s.Insert(document.Document{"name": document.String("c")})
	assert.Equal(t, document.ID(3), rec.ID)

	s.Clear()
	rec, _ = s.Insert(document.Document{"name": document.String("d")})
	assert.Equal(t, document.ID(4), rec.ID)
}

func TestStore_RemoveBatch(t *testing.T) {
	s := seed(t, "a", "b", "c", "d", "e", "f")

	removed, err := s.RemoveBatch([]int{0, 2, 5})
	require.NoError(t, err)
	require.Len(t, removed, 3)
	assert.Equal(t, []string{"b", "d", "e"}, names(s))
	assert.True(t, s.CheckIDMap())

	_, err = s.RemoveBatch([]int{1, 1})
	require.Error(t, err)
	_, err = s.RemoveBatch([]int{7})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, s.Len())
}

func TestStore_ReplacePreservesIdentity(t *testing.T) {
	s := seed(t, "a", "b")
	rec, pos, err := s.Get(2)
	require.NoError(t, err)

	old, err := s.Replace(pos, document.Document{"name": document.String("z")})
	require.NoError(t, err)
	assert.Equal(t, "b", old["name"].S)
	assert.Equal(t, document.ID(2), rec.ID)
	assert.Equal(t, uint64(1), rec.Rev)
	assert.Equal(t, []string{"a", "z"}, names(s))

	repl := &document.Record{ID: 2, Doc: document.Document{"name": document.String("y")}}
	prev, err := s.Swap(pos, repl)
	require.NoError(t, err)
	assert.Same(t, rec, prev)
	assert.Equal(t, uint64(2), repl.Rev)
	assert.Same(t, repl, s.At(pos))

	_, err = s.Swap(pos, &document.Record{ID: 99})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Restore(t *testing.T) {
	s := New()
	recs := []*document.Record{
		{ID: 5, Doc: document.Document{"name": document.String("x")}},
		{ID: 9, Doc: document.Document{"name": document.String("y")}},
	}
	require.NoError(t, s.Restore(recs, 3))
	assert.Equal(t, document.ID(10), s.NextID())
	pos, ok := s.PositionOf(9)
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	require.Error(t, s.Restore([]*document.Record{{ID: 1}, {ID: 1}}, 0))
	require.Error(t, s.Restore([]*document.Record{nil}, 0))
}
