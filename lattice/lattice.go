// Package lattice computes upper bounds over the class hierarchy and maps
// classes to table value types.
package lattice

import (
	"github.com/chazu/dtab/hierarchy"
)

// ValueType is the machine-level type of one signature slot: an
// upper-bound class, a nullability bit, and a boxed bit. The boxed bit
// forces the uniform heap representation even for classes with a natural
// unboxed form.
type ValueType struct {
	Class    hierarchy.ClassID
	Nullable bool
	Boxed    bool
}

// Lattice answers least-upper-bound queries over a fixed hierarchy.
type Lattice struct {
	h   *hierarchy.Hierarchy
	top hierarchy.ClassID
}

// New creates a lattice over h with the given top descriptor.
func New(h *hierarchy.Hierarchy, top hierarchy.ClassID) *Lattice {
	return &Lattice{h: h, top: top}
}

// Top returns the designated top descriptor.
func (l *Lattice) Top() hierarchy.ClassID {
	return l.top
}

// UpperBound returns the least common ancestor of the given classes, the
// top descriptor for classes from unrelated hierarchies, and the top
// descriptor for the empty set. Under single inheritance the least common
// ancestor of two related classes is unique; folding over the set in any
// order yields the same result because the top descriptor is absorbing.
func (l *Lattice) UpperBound(ids []hierarchy.ClassID) hierarchy.ClassID {
	if len(ids) == 0 {
		return l.top
	}
	bound := ids[0]
	for _, id := range ids[1:] {
		if bound == l.top {
			break
		}
		bound = l.lca(bound, id)
	}
	return bound
}

// lca returns the least common ancestor of two classes, or top when their
// chains never meet.
func (l *Lattice) lca(a, b hierarchy.ClassID) hierarchy.ClassID {
	if a == b {
		return a
	}
	ancestors := make(map[hierarchy.ClassID]struct{})
	for id := a; id != hierarchy.NoClass; id = l.h.Class(id).Super {
		ancestors[id] = struct{}{}
	}
	for id := b; id != hierarchy.NoClass; id = l.h.Class(id).Super {
		if _, ok := ancestors[id]; ok {
			return id
		}
	}
	return l.top
}

// ClassForType maps a source type reference to its table class. The void
// descriptor maps to the top descriptor; it never reaches a table slot.
func (l *Lattice) ClassForType(t hierarchy.TypeRef) hierarchy.ClassID {
	if t.IsVoid() {
		return l.top
	}
	return t.Class
}

// ValueTypeFor materializes the value type for a signature slot. It is a
// pure function: ensureBoxed forces the heap representation when a slot
// may hold a dynamically checked covariant argument or a default-value
// sentinel incompatible with the unboxed form.
func (l *Lattice) ValueTypeFor(class hierarchy.ClassID, nullable, ensureBoxed bool) ValueType {
	return ValueType{Class: class, Nullable: nullable, Boxed: ensureBoxed}
}
