package dispatch

import (
	"fmt"
	"sort"

	"github.com/chazu/dtab/hierarchy"
)

// ---------------------------------------------------------------------------
// Table packer: row displacement
// ---------------------------------------------------------------------------

// Table is the packed dispatch table: a contiguous sequence of empty or
// occupied slots. For every selector s with an offset and every class id c
// in s.ClassIDs(), Slot(s.offset+c) is s's target for c; no other selector
// occupies that slot.
type Table struct {
	slots []hierarchy.Ref
}

// Len returns the table length.
func (t *Table) Len() int {
	return len(t.slots)
}

// Slot returns the reference at index i; the zero Ref marks an empty slot.
func (t *Table) Slot(i int) hierarchy.Ref {
	if i < 0 || i >= len(t.slots) {
		return hierarchy.Ref{}
	}
	return t.slots[i]
}

// Filled returns the number of occupied slots.
func (t *Table) Filled() int {
	n := 0
	for _, r := range t.slots {
		if !r.IsZero() {
			n++
		}
	}
	return n
}

// packer assigns base offsets to live selectors by row displacement.
//
// Offsets may be negative when the first available gap precedes a
// selector's smallest class id; the enforced invariant is that every
// written slot index offset+c is non-negative. Tests must not assume a
// specific sign.
type packer struct {
	table          []hierarchy.Ref
	firstAvailable int
}

// pack places all live selectors and returns the finished table. Selectors
// are ordered by weight (row width dominating call count) so wide rows land
// while the table is still sparse.
func pack(selectors []*Selector) (*Table, error) {
	live := make([]*Selector, 0, len(selectors))
	for _, s := range selectors {
		if s.live() {
			live = append(live, s)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		wi, wj := live[i].weight(), live[j].weight()
		if wi != wj {
			return wi > wj
		}
		return live[i].id < live[j].id
	})

	p := &packer{}
	for i, s := range live {
		if err := p.place(s, i == 0); err != nil {
			return nil, err
		}
	}
	return &Table{slots: p.table}, nil
}

// place finds the first fitting offset at or above the selector's candidate
// offset and writes the row into the table.
func (p *packer) place(s *Selector, first bool) error {
	ids := s.classIDs
	if len(ids) == 0 {
		// A live selector with no concrete classes occupies no slots;
		// any offset satisfies the placement contract.
		s.offset = 0
		s.hasOffset = true
		return nil
	}
	min := int(ids[0])

	var offset int
	if !first {
		offset = p.firstAvailable - min
	}
	if offset+min < 0 {
		offset = -min
	}
	for !p.fits(ids, offset) {
		offset++
	}

	for _, c := range ids {
		i := offset + int(c)
		for len(p.table) <= i {
			p.table = append(p.table, hierarchy.Ref{})
		}
		if !p.table[i].IsZero() {
			return fmt.Errorf("selector %d collides at slot %d: %w", s.id, i, ErrInternalInvariant)
		}
		p.table[i] = s.targets[c]
	}
	s.offset = offset
	s.hasOffset = true

	for p.firstAvailable < len(p.table) && !p.table[p.firstAvailable].IsZero() {
		p.firstAvailable++
	}
	return nil
}

// fits reports whether every slot of the row is empty or beyond the
// current table end. Termination of the caller's retry loop is guaranteed:
// once offset+min reaches the table length, every slot is beyond the end.
func (p *packer) fits(ids []hierarchy.ClassID, offset int) bool {
	for _, c := range ids {
		i := offset + int(c)
		if i >= len(p.table) {
			continue
		}
		if !p.table[i].IsZero() {
			return false
		}
	}
	return true
}
