package docstore

import (
	"reflect"

	"github.com/hupe1980/docstore/codec"
	"github.com/hupe1980/docstore/document"
)

// cloneRecord copies rec with method. The codec method round-trips through
// the collection codec and falls back to a deep copy if encoding fails.
func (c *Collection) cloneRecord(rec *document.Record, method document.CloneMethod) *document.Record {
	if rec == nil {
		return nil
	}
	if method == document.CloneCodec {
		out := new(document.Record)
		err := codec.RoundTrip(c.codec, rec, out)
		if err == nil {
			return out
		}
		c.logger.Warn("codec clone failed, using deep copy", "id", uint64(rec.ID), "error", err)
	}
	return rec.Clone(method)
}

func (c *Collection) cloneDoc(doc document.Document, method document.CloneMethod) document.Document {
	switch method {
	case document.CloneShallow:
		return doc.ShallowClone()
	case document.CloneCodec:
		var out document.Document
		if err := codec.RoundTrip(c.codec, doc, &out); err == nil {
			return out
		}
		return doc.Clone()
	default:
		return doc.Clone()
	}
}

// out applies the read-path clone contract to a stored record.
func (c *Collection) out(rec *document.Record, ro readOptions) *document.Record {
	switch {
	case ro.forceClone:
		return c.cloneRecord(rec, ro.cloneMethod)
	case c.cfg.Clone:
		return c.cloneRecord(rec, c.cfg.CloneMethod)
	default:
		return rec
	}
}

// sameDocument reports whether a and b are the same map, which is the case
// when a caller modified a live record returned by an uncloned read.
func sameDocument(a, b document.Document) bool {
	if a == nil || b == nil {
		return false
	}
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}
