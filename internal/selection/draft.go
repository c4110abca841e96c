package selection

import (
	"brandconsole/internal/catalog"
)

// DefaultMaxItems is the combined product and category cap of a campaign.
const DefaultMaxItems = 10

// AddResult tells the caller what Add did. A rejected add is not an error:
// the UI relabels the row instead.
type AddResult int

const (
	Added AddResult = iota
	AlreadyPresent
	CapReached
	WrongType
	Discarded
)

func (r AddResult) String() string {
	switch r {
	case Added:
		return "added"
	case AlreadyPresent:
		return "already_present"
	case CapReached:
		return "cap_reached"
	case WrongType:
		return "wrong_type"
	case Discarded:
		return "discarded"
	}
	return "unknown"
}

// Draft is a modal-local staging copy of the committed selection of every
// item type. The cap applies to the sum of all types.
type Draft struct {
	max       int
	sets      map[catalog.ItemType]*Set
	seeds     map[catalog.ItemType]*Set
	discarded bool
}

// OpenWith starts a draft seeded from copies of committed. The committed sets
// are never aliased, so nothing done to the draft is visible in them.
func OpenWith(maxItems int, committed ...*Set) *Draft {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	d := &Draft{
		max:   maxItems,
		sets:  make(map[catalog.ItemType]*Set, len(catalog.Types)),
		seeds: make(map[catalog.ItemType]*Set, len(catalog.Types)),
	}
	for _, set := range committed {
		if set == nil {
			continue
		}
		d.sets[set.Type()] = set.Clone()
		d.seeds[set.Type()] = set.Clone()
	}
	for _, t := range catalog.Types {
		if _, ok := d.sets[t]; !ok {
			d.sets[t] = NewSet(t)
			d.seeds[t] = NewSet(t)
		}
	}
	return d
}

// Max returns the combined cap.
func (d *Draft) Max() int { return d.max }

// Total returns the number of items across every type.
func (d *Draft) Total() int {
	n := 0
	for _, set := range d.sets {
		n += set.Len()
	}
	return n
}

// Remaining returns how many more items fit under the cap.
func (d *Draft) Remaining() int {
	if r := d.max - d.Total(); r > 0 {
		return r
	}
	return 0
}

// Add stages rec. Adding an id that is already staged is a no-op, and so is
// an add that would take the draft past the cap.
func (d *Draft) Add(rec catalog.DisplayRecord) AddResult {
	if d.discarded {
		return Discarded
	}
	set, ok := d.sets[rec.Type]
	if !ok {
		return WrongType
	}
	if set.Has(rec.ID) {
		return AlreadyPresent
	}
	if d.Total()+1 > d.max {
		return CapReached
	}
	if !set.Put(rec) {
		return WrongType
	}
	return Added
}

// Remove unstages id of type t. It reports whether anything was removed.
func (d *Draft) Remove(t catalog.ItemType, id string) bool {
	if d.discarded {
		return false
	}
	set, ok := d.sets[t]
	if !ok {
		return false
	}
	return set.Drop(id)
}

// IsSelected reports whether id of type t is staged.
func (d *Draft) IsSelected(t catalog.ItemType, id string) bool {
	set, ok := d.sets[t]
	return ok && set.Has(id)
}

// Set returns a copy of the staged selection for t.
func (d *Draft) Set(t catalog.ItemType) *Set {
	if set, ok := d.sets[t]; ok {
		return set.Clone()
	}
	return NewSet(t)
}

// Dirty reports whether the staged selection of t differs from its seed.
func (d *Draft) Dirty(t catalog.ItemType) bool {
	set, ok := d.sets[t]
	if !ok {
		return false
	}
	return !set.SameIDs(d.seeds[t])
}

// Discard drops every staged change. The draft rejects further edits.
func (d *Draft) Discard() {
	d.discarded = true
	for t := range d.sets {
		d.sets[t] = NewSet(t)
	}
}

// Discarded reports whether Discard was called.
func (d *Draft) Discarded() bool { return d.discarded }
