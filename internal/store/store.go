// Package store implements the document store behind a collection: an
// ordered, compacting data array plus an identifier -> position map.
//
// Positions are NOT stable across removals. Removing the row at position p
// shifts every later row down by one; binary indices that hold positions must
// be corrected by the caller in the same logical operation.
//
// Store is not safe for concurrent use; the owning collection serialises
// access.
package store

import (
	"errors"
	"iter"
	"slices"

	"github.com/hupe1980/docstore/document"
)

// ErrNotFound is returned when an identifier or position is not present.
//
// This is a store-layer sentinel; the docstore package translates it into its
// public error contract.
var ErrNotFound = errors.New("not found")

// Store holds the live records of one collection.
type Store struct {
	data   []*document.Record
	idMap  map[document.ID]int
	nextID document.ID
}

// New creates an empty store. The first assigned identifier is 1.
func New() *Store {
	return &Store{
		idMap:  make(map[document.ID]int),
		nextID: 1,
	}
}

// Insert appends doc as a new record and returns it with its position.
// The caller owns validation; doc is stored as given.
func (s *Store) Insert(doc document.Document) (*document.Record, int) {
	rec := &document.Record{ID: s.nextID, Doc: doc}
	s.nextID++

	pos := len(s.data)
	s.data = append(s.data, rec)
	s.idMap[rec.ID] = pos
	return rec, pos
}

// Restore replaces the contents with recs without assigning identifiers.
// nextID is raised above the largest restored identifier if needed.
func (s *Store) Restore(recs []*document.Record, nextID document.ID) error {
	idMap := make(map[document.ID]int, len(recs))
	maxID := document.ID(0)
	for pos, rec := range recs {
		if rec == nil {
			return errors.New("nil record")
		}
		if _, dup := idMap[rec.ID]; dup {
			return errors.New("duplicate record id")
		}
		idMap[rec.ID] = pos
		maxID = max(maxID, rec.ID)
	}
	if nextID <= maxID {
		nextID = maxID + 1
	}

	s.data = slices.Clone(recs)
	s.idMap = idMap
	s.nextID = nextID
	return nil
}

// Len returns the number of live records.
func (s *Store) Len() int { return len(s.data) }

// NextID returns the identifier the next insert will receive.
func (s *Store) NextID() document.ID { return s.nextID }

// At returns the record at pos, or nil when pos is out of range.
func (s *Store) At(pos int) *document.Record {
	if pos < 0 || pos >= len(s.data) {
		return nil
	}
	return s.data[pos]
}

// PositionOf returns the current position of id.
func (s *Store) PositionOf(id document.ID) (int, bool) {
	pos, ok := s.idMap[id]
	return pos, ok
}

// Get returns the record for id together with its position.
func (s *Store) Get(id document.ID) (*document.Record, int, error) {
	pos, ok := s.idMap[id]
	if !ok {
		return nil, -1, ErrNotFound
	}
	return s.data[pos], pos, nil
}

// Replace overwrites the fields of the record at pos and bumps its revision.
// Identifier and position are preserved. It returns the previous document.
func (s *Store) Replace(pos int, doc document.Document) (document.Document, error) {
	rec := s.At(pos)
	if rec == nil {
		return nil, ErrNotFound
	}
	old := rec.Doc
	rec.Doc = doc
	rec.Rev++
	return old, nil
}

// Swap installs rec at pos in place of the stored record, keeping the stored
// identifier and bumping the revision. It is used when the collection stores
// a private copy of the caller's record.
func (s *Store) Swap(pos int, rec *document.Record) (*document.Record, error) {
	prev := s.At(pos)
	if prev == nil {
		return nil, ErrNotFound
	}
	if rec.ID != prev.ID {
		return nil, ErrNotFound
	}
	rec.Rev = prev.Rev + 1
	s.data[pos] = rec
	return prev, nil
}

// RemoveAt deletes the record at pos and compacts the data array. Every
// record after pos moves down by one and the identifier map is updated.
func (s *Store) RemoveAt(pos int) (*document.Record, error) {
	rec := s.At(pos)
	if rec == nil {
		return nil, ErrNotFound
	}

	s.data = slices.Delete(s.data, pos, pos+1)
	delete(s.idMap, rec.ID)
	for i := pos; i < len(s.data); i++ {
		s.idMap[s.data[i].ID] = i
	}
	return rec, nil
}

// RemoveBatch deletes the records at the given positions in one compaction
// pass. positions must be sorted ascending and free of duplicates.
func (s *Store) RemoveBatch(positions []int) ([]*document.Record, error) {
	if len(positions) == 0 {
		return nil, nil
	}
	for i, p := range positions {
		if p < 0 || p >= len(s.data) {
			return nil, ErrNotFound
		}
		if i > 0 && positions[i-1] >= p {
			return nil, errors.New("positions must be strictly ascending")
		}
	}

	removed := make([]*document.Record, 0, len(positions))
	write := positions[0]
	next := 0
	for read := positions[0]; read < len(s.data); read++ {
		if next < len(positions) && positions[next] == read {
			rec := s.data[read]
			removed = append(removed, rec)
			delete(s.idMap, rec.ID)
			next++
			continue
		}
		s.data[write] = s.data[read]
		s.idMap[s.data[write].ID] = write
		write++
	}
	clear(s.data[write:])
	s.data = s.data[:write]
	return removed, nil
}

// Clear removes all records. Identifiers keep increasing afterwards.
func (s *Store) Clear() {
	s.data = nil
	s.idMap = make(map[document.ID]int)
}

// All iterates over records in data-array order.
func (s *Store) All() iter.Seq2[int, *document.Record] {
	return func(yield func(int, *document.Record) bool) {
		for i, rec := range s.data {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Records returns the live data array. The slice must not be modified.
func (s *Store) Records() []*document.Record { return s.data }

// CheckIDMap verifies idMap[rec.ID] == position for every record.
func (s *Store) CheckIDMap() bool {
	if len(s.idMap) != len(s.data) {
		return false
	}
	for pos, rec := range s.data {
		if p, ok := s.idMap[rec.ID]; !ok || p != pos {
			return false
		}
	}
	return true
}
