package docstore

import (
	"testing"

	"github.com/hupe1980/docstore/codec"
	"github.com/hupe1980/docstore/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip encodes snap the way persistence does and restores it.
func roundTrip(t *testing.T, snap *Snapshot, opts ...Option) *Collection {
	t.Helper()
	data, err := codec.GoJSON{}.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, codec.GoJSON{}.Unmarshal(data, &decoded))

	c, err := Restore(&decoded, opts...)
	require.NoError(t, err)
	return c
}

func TestSnapshot_PreservesAdaptiveSetting(t *testing.T) {
	for _, adaptive := range []bool{true, false} {
		c, err := New("users", WithIndices("customIdx"), WithAdaptiveIndices(adaptive))
		require.NoError(t, err)
		_, err = c.Insert(document.Document{"customIdx": document.Int(1)})
		require.NoError(t, err)

		restored := roundTrip(t, c.Snapshot())
		assert.Equal(t, adaptive, restored.Config().AdaptiveBinaryIndices)
		require.Len(t, restored.Indexes(), 1)
		assert.Equal(t, adaptive, restored.Indexes()[0].Adaptive)
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	c := newArtifacts(t, WithUnique("owner2"), WithClone(document.CloneShallow))
	rec, err := c.Get(3)
	require.NoError(t, err)
	require.NoError(t, c.Remove(rec))

	snap := c.Snapshot()
	assert.Equal(t, "users", snap.Name)
	assert.Equal(t, document.ID(5), snap.NextID)
	require.Len(t, snap.Records, 3)
	require.Len(t, snap.Indices, 2)
	assert.Equal(t, []int{2, 1, 0}, snap.Indices[0].Positions)

	restored := roundTrip(t, snap)
	assert.Equal(t, "users", restored.Name())
	assert.Equal(t, c.Config(), restored.Config())
	assert.Equal(t, 3, restored.Count())

	for _, want := range c.All() {
		got, err := restored.Get(want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.Doc, got.Doc)
	}
	_, err = restored.Get(3)
	assert.ErrorIs(t, err, ErrNotFound)

	positions, err := restored.IndexPositions("name")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, positions)
	require.NoError(t, restored.VerifyIndexes())

	next, err := restored.Insert(document.Document{"name": document.String("skofnung")})
	require.NoError(t, err)
	assert.Equal(t, document.ID(5), next.ID)
}

func TestSnapshot_IsDetached(t *testing.T) {
	c := newArtifacts(t)
	snap := c.Snapshot()
	snap.Records[0].Doc["name"] = document.String("zzz")

	rec, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, document.String("mjolnir"), rec.Get("name"))
}

func TestSnapshot_RestoreDiscardsCorruptPositions(t *testing.T) {
	c := newArtifacts(t)
	snap := c.Snapshot()
	snap.Indices[0].Positions = []int{0, 1, 2, 3}

	restored, err := Restore(snap)
	require.NoError(t, err)
	assert.True(t, restored.Indexes()[0].Dirty)

	positions, err := restored.IndexPositions("name")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 0, 2}, positions)
}

func TestSnapshot_RestoreAcceptsOptions(t *testing.T) {
	c := newArtifacts(t)
	mc := &BasicMetricsCollector{}
	restored, err := Restore(c.Snapshot(), WithMetricsCollector(mc), WithLogger(NoopLogger()))
	require.NoError(t, err)

	assert.Len(t, restored.Find(name("gungnir")), 1)
	assert.Equal(t, int64(1), mc.GetStats().FindCount)
	assert.Zero(t, mc.GetStats().InsertCount)
}

func TestSnapshot_RestoreRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		snap *Snapshot
	}{
		{"nil", nil},
		{"nil record", &Snapshot{Records: []*document.Record{nil}}},
		{"reserved field", &Snapshot{Records: []*document.Record{{ID: 1, Doc: document.Document{"$x": document.Int(1)}}}}},
		{"duplicate id", &Snapshot{Records: []*document.Record{
			{ID: 1, Doc: document.Document{}},
			{ID: 1, Doc: document.Document{}},
		}}},
		{"empty index field", &Snapshot{Indices: []IndexSnapshot{{Field: ""}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore(tt.snap)
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestSnapshot_RestoreRejectsInvalidConfig(t *testing.T) {
	_, err := Restore(&Snapshot{Config: Config{BatchRebuildRatio: 2}})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSnapshot_RestoreRejectsUniqueDuplicates(t *testing.T) {
	c := newArtifacts(t)
	snap := c.Snapshot()
	snap.Indices = append(snap.Indices, IndexSnapshot{Field: "owner", Unique: true, Adaptive: true, Dirty: true})

	_, err := Restore(snap)
	require.ErrorIs(t, err, ErrConstraintViolation)
	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "owner", ce.Field)

	snap = c.Snapshot()
	snap.Indices[0].Unique = true
	restored, err := Restore(snap)
	require.NoError(t, err)
	assert.True(t, restored.Indexes()[0].Unique)
	require.NoError(t, restored.VerifyIndexes())
}
