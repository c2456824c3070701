package docstore

import (
	"testing"
	"time"

	"github.com/hupe1980/docstore/codec"
	"github.com/hupe1980/docstore/document"
	"github.com/hupe1980/docstore/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cloneMethods = []document.CloneMethod{document.CloneShallow, document.CloneDeep, document.CloneCodec}

func thor() query.Filter { return query.Eq("owner", document.String("thor")) }

func newCloning(t *testing.T, method document.CloneMethod, opts ...Option) *Collection {
	t.Helper()
	c, err := New("items", append([]Option{WithClone(method)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestClone_Disabled(t *testing.T) {
	c := newArtifacts(t)

	mj, ok := c.FindOne(name("mjolnir"))
	require.True(t, ok)
	mj.Doc["maker"] = document.String("the dwarves")

	mj2, ok := c.FindOne(name("mjolnir"))
	require.True(t, ok)
	assert.Equal(t, document.String("the dwarves"), mj2.Get("maker"))
	assert.Same(t, mj, mj2)
}

func TestClone_InsertsAreImmutable(t *testing.T) {
	for _, method := range cloneMethods {
		t.Run(string(method), func(t *testing.T) {
			c := newCloning(t, method)
			original := document.Document{
				"name":  document.String("mjolnir"),
				"owner": document.String("thor"),
				"maker": document.String("dwarves"),
			}
			inserted, err := c.Insert(original)
			require.NoError(t, err)

			original["name"] = document.String("mewmew")
			inserted.Doc["name"] = document.String("mewmew")

			got, ok := c.FindOne(thor())
			require.True(t, ok)
			assert.Equal(t, document.String("mjolnir"), got.Get("name"))
		})
	}
}

func TestClone_InsertEventsCarryCopies(t *testing.T) {
	c := newCloning(t, document.CloneDeep)
	c.On(EventInsert, func(e Event) {
		e.Record.Doc["name"] = document.String("zzz")
	})

	_, err := c.InsertMany(artifacts())
	require.NoError(t, err)

	results := c.Find(nil)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.NotEqual(t, document.String("zzz"), r.Get("name"))
	}
}

func TestClone_UpdatesAreImmutable(t *testing.T) {
	for _, method := range cloneMethods {
		t.Run(string(method), func(t *testing.T) {
			c := newCloning(t, method)
			_, err := c.Insert(document.Document{
				"name":  document.String("mjolnir"),
				"owner": document.String("thor"),
			})
			require.NoError(t, err)

			rec, ok := c.FindOne(thor())
			require.True(t, ok)
			require.NoError(t, c.Update(rec))

			rec.Doc["name"] = document.String("mewmew")

			got, ok := c.FindOne(thor())
			require.True(t, ok)
			assert.Equal(t, document.String("mjolnir"), got.Get("name"))
			assert.Equal(t, uint64(1), got.Rev)
		})
	}
}

func TestClone_UpdateEventsCarryCopies(t *testing.T) {
	c := newCloning(t, document.CloneDeep)
	docs := artifacts()
	for _, d := range docs {
		d["count"] = document.Int(0)
	}
	_, err := c.InsertMany(docs)
	require.NoError(t, err)

	c.On(EventUpdate, func(e Event) {
		e.Record.Doc["name"] = document.String("zzz")
	})

	n, err := c.UpdateWhere(name("mjolnir"), func(rec *document.Record) {
		count, _ := rec.Get("count").AsInt64()
		rec.Doc["count"] = document.Int(count + 1)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results := c.Find(nil)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.NotEqual(t, document.String("zzz"), r.Get("name"))
	}

	mj, ok := c.FindOne(name("mjolnir"))
	require.True(t, ok)
	assert.Equal(t, document.Int(1), mj.Get("count"))
}

func TestClone_UpdateWhereWithoutCloning(t *testing.T) {
	c := newArtifacts(t, WithIndices("count"))
	n, err := c.UpdateWhere(query.Eq("maker", document.String("elves")), func(rec *document.Record) {
		rec.Doc["count"] = document.Int(7)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, c.Find(query.Eq("count", document.Int(7))), 2)
	require.NoError(t, c.VerifyIndexes())
}

func TestClone_ShallowSharesNestedValues(t *testing.T) {
	c := newCloning(t, document.CloneShallow)
	tags := []document.Value{document.String("hammer")}
	inserted, err := c.Insert(document.Document{
		"owner": document.String("thor"),
		"tags":  document.Array(tags),
	})
	require.NoError(t, err)

	inserted.Doc["owner"] = document.String("loki")
	tags[0] = document.String("stolen")

	got, ok := c.FindOne(query.Eq("owner", document.String("thor")))
	require.True(t, ok)
	assert.Equal(t, document.String("stolen"), got.Get("tags").A[0])
}

func TestClone_DeepCopiesNestedValues(t *testing.T) {
	for _, method := range []document.CloneMethod{document.CloneDeep, document.CloneCodec} {
		t.Run(string(method), func(t *testing.T) {
			c := newCloning(t, method)
			tags := []document.Value{document.String("hammer")}
			_, err := c.Insert(document.Document{
				"owner": document.String("thor"),
				"tags":  document.Array(tags),
				"meta":  document.Object(document.Document{"forged": document.Time(time.Date(900, 1, 2, 3, 4, 5, 0, time.UTC))}),
			})
			require.NoError(t, err)
			tags[0] = document.String("stolen")

			got, ok := c.FindOne(thor())
			require.True(t, ok)
			assert.Equal(t, document.String("hammer"), got.Get("tags").A[0])
			ts, ok := got.Get("meta.forged").AsTime()
			require.True(t, ok)
			assert.True(t, ts.Equal(time.Date(900, 1, 2, 3, 4, 5, 0, time.UTC)))
		})
	}
}

func TestClone_ReadIsolation(t *testing.T) {
	c := newCloning(t, document.CloneDeep, WithUnique("name"))
	_, err := c.InsertMany(artifacts())
	require.NoError(t, err)

	tamper := func(rec *document.Record) { rec.Doc["maker"] = document.String("the dwarves") }
	check := func() {
		t.Helper()
		rec, ok := c.By("name", document.String("mjolnir"))
		require.True(t, ok)
		assert.Equal(t, document.String("dwarves"), rec.Get("maker"))
	}

	t.Run("find", func(t *testing.T) {
		for _, r := range c.Find(query.Eq("owner", document.String("thor"))) {
			tamper(r)
		}
		check()
	})
	t.Run("find one", func(t *testing.T) {
		r, ok := c.FindOne(thor())
		require.True(t, ok)
		tamper(r)
		check()
	})
	t.Run("where", func(t *testing.T) {
		for _, r := range c.Where(func(d document.Document) bool { return d.Get("owner").S == "thor" }) {
			tamper(r)
		}
		check()
	})
	t.Run("by", func(t *testing.T) {
		r, ok := c.By("name", document.String("mjolnir"))
		require.True(t, ok)
		tamper(r)
		check()
	})
	t.Run("get", func(t *testing.T) {
		r, err := c.Get(1)
		require.NoError(t, err)
		tamper(r)
		check()
	})
	t.Run("by without match", func(t *testing.T) {
		r, ok := c.By("name", document.String("gjallarhorn"))
		assert.False(t, ok)
		assert.Nil(t, r)
	})
}

func TestClone_ForcedOnRead(t *testing.T) {
	c := newArtifacts(t)

	for _, method := range cloneMethods {
		t.Run(string(method), func(t *testing.T) {
			r, ok := c.FindOne(name("mjolnir"), WithForceClone(method))
			require.True(t, ok)
			r.Doc["maker"] = document.String("the dwarves")

			got, ok := c.FindOne(name("mjolnir"))
			require.True(t, ok)
			assert.Equal(t, document.String("dwarves"), got.Get("maker"))
		})
	}
}

func TestClone_CodecMethodUsesCollectionCodec(t *testing.T) {
	c := newCloning(t, document.CloneCodec, WithCodec(codec.JSON{}))
	rec, err := c.Insert(document.Document{"n": document.Float(1.5)})
	require.NoError(t, err)
	assert.Equal(t, document.Float(1.5), rec.Get("n"))
	assert.Equal(t, document.CloneCodec, c.Config().CloneMethod)
}

func TestSameDocument(t *testing.T) {
	a := document.Document{"x": document.Int(1)}
	b := document.Document{"x": document.Int(1)}
	assert.True(t, sameDocument(a, a))
	assert.False(t, sameDocument(a, b))
	assert.False(t, sameDocument(nil, a))
}
