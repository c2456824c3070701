// Package docstore provides an embeddable in-memory document store.
//
// A Collection holds schema-less documents (document.Document) and keeps
// binary indices over selected fields. An index is a sorted sequence of store
// positions; because removing a document compacts the store, every index is
// corrected on each mutation, either incrementally (adaptive mode, the
// default) or by marking it dirty for a lazy rebuild.
//
// # Quick Start
//
//	users, _ := docstore.New("users",
//	    docstore.WithIndices("name"),
//	    docstore.WithUnique("email"),
//	)
//	rec, _ := users.Insert(document.Document{
//	    "name":  document.String("odin"),
//	    "email": document.String("odin@asgard"),
//	})
//	found, ok := users.FindOne(query.Eq("name", document.String("odin")))
//
// # Clone Isolation
//
// By default reads return the live stored records. WithClone copies
// documents on insert, on every read and for event payloads, so callers can
// never alias the store. WithForceClone does the same for a single read.
//
// # Integrity
//
// CheckIndex and CheckAllIndexes verify index ordering, optionally by random
// sampling, and can repair an index by rebuilding it.
//
// # Persistence
//
// Snapshot and Restore convert a collection to and from a structural
// snapshot; the persistence package frames, compresses and stores snapshots
// in a blobstore.BlobStore.
package docstore
