// Package selection holds the committed and draft selections of a campaign
// editor: ordered sets of catalog references paired with the records needed
// to render them.
package selection

import (
	"brandconsole/internal/catalog"
)

// Set is an ordered collection of references of one item type. Each id maps
// to exactly one display record, so the id list and the record cache cannot
// drift apart.
type Set struct {
	typ     catalog.ItemType
	ids     []string
	records map[string]catalog.DisplayRecord
}

// NewSet returns an empty set for items of type t.
func NewSet(t catalog.ItemType) *Set {
	return &Set{typ: t, records: make(map[string]catalog.DisplayRecord)}
}

// SetOf builds a set from records. Records of another type and repeated ids
// are skipped.
func SetOf(t catalog.ItemType, records ...catalog.DisplayRecord) *Set {
	s := NewSet(t)
	for _, rec := range records {
		s.Put(rec)
	}
	return s
}

// Type returns the item type held by the set.
func (s *Set) Type() catalog.ItemType { return s.typ }

// Len returns the number of selected items.
func (s *Set) Len() int { return len(s.ids) }

// Has reports whether id is selected.
func (s *Set) Has(id string) bool {
	_, ok := s.records[id]
	return ok
}

// Get returns the cached record for id.
func (s *Set) Get(id string) (catalog.DisplayRecord, bool) {
	rec, ok := s.records[id]
	return rec, ok
}

// Put appends rec unless its id is already present. It reports whether the
// set changed.
func (s *Set) Put(rec catalog.DisplayRecord) bool {
	if rec.ID == "" || (rec.Type != "" && rec.Type != s.typ) {
		return false
	}
	if _, ok := s.records[rec.ID]; ok {
		return false
	}
	rec.Type = s.typ
	s.ids = append(s.ids, rec.ID)
	s.records[rec.ID] = rec
	return true
}

// Drop removes id and its record. It reports whether the set changed.
func (s *Set) Drop(id string) bool {
	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns the selected ids in insertion order.
func (s *Set) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Refs returns the selection as campaign references in insertion order.
func (s *Set) Refs() []catalog.ItemRef {
	refs := make([]catalog.ItemRef, 0, len(s.ids))
	for _, id := range s.ids {
		refs = append(refs, catalog.ItemRef{ID: id, Type: s.typ})
	}
	return refs
}

// Records returns the display records in insertion order.
func (s *Set) Records() []catalog.DisplayRecord {
	out := make([]catalog.DisplayRecord, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.records[id])
	}
	return out
}

// Snapshot returns a copy of the id to record mapping.
func (s *Set) Snapshot() map[string]catalog.DisplayRecord {
	out := make(map[string]catalog.DisplayRecord, len(s.records))
	for id, rec := range s.records {
		out[id] = rec
	}
	return out
}

// Clone returns a structural copy that shares no storage with s.
func (s *Set) Clone() *Set {
	c := &Set{
		typ:     s.typ,
		ids:     append([]string(nil), s.ids...),
		records: make(map[string]catalog.DisplayRecord, len(s.records)),
	}
	for id, rec := range s.records {
		c.records[id] = rec
	}
	return c
}

// SameIDs reports whether o holds the same ids in the same order.
func (s *Set) SameIDs(o *Set) bool {
	if o == nil || s.typ != o.typ || len(s.ids) != len(o.ids) {
		return false
	}
	for i := range s.ids {
		if s.ids[i] != o.ids[i] {
			return false
		}
	}
	return true
}
