package hierarchy

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Class descriptors and the hierarchy container
// ---------------------------------------------------------------------------

// ClassID is a dense integer identifying a class. IDs are assigned by the
// front end; NoClass marks the absence of a class reference.
type ClassID int

// SelectorID is a dense integer identifying a selector, assigned by the
// front end's attribute metadata. Two members share a SelectorID iff they
// are override-related.
type SelectorID int

// NoClass and NoSelector mark absent references. Integer ids are the only
// cross-entity references in this package, so there are no pointer cycles
// between classes, members, and selectors.
const (
	NoClass    ClassID    = -1
	NoSelector SelectorID = -1
)

// Class describes one class in the program's hierarchy.
//
// Synthetic marks a class with no source declaration (the synthetic top of
// the hierarchy); the walker substitutes the designated object class's
// members for it.
type Class struct {
	ID        ClassID
	Name      string
	Super     ClassID // NoClass for roots
	Abstract  bool
	Synthetic bool
	Members   []*Member
}

// ErrMalformed indicates the class list violates the dense-id or
// superclass-first ordering contract. It is fatal; the build aborts.
var ErrMalformed = errors.New("hierarchy: malformed class order")

// Hierarchy holds all classes of a program, indexed by ClassID.
//
// The slice order is the traversal order: construction fails unless every
// class's superclass appears strictly before the class itself, so walking
// by index is always superclass-first.
type Hierarchy struct {
	classes []*Class
}

// New validates the class list and wraps it in a Hierarchy.
// Classes must be listed in ClassID order with every Super preceding its
// subclasses.
func New(classes []*Class) (*Hierarchy, error) {
	for i, c := range classes {
		if c.ID != ClassID(i) {
			return nil, fmt.Errorf("class %q has id %d at position %d: %w", c.Name, c.ID, i, ErrMalformed)
		}
		if c.Super != NoClass && (c.Super < 0 || c.Super >= c.ID) {
			return nil, fmt.Errorf("class %q (id %d) claims super %d not yet processed: %w", c.Name, c.ID, c.Super, ErrMalformed)
		}
	}
	return &Hierarchy{classes: classes}, nil
}

// Class returns the class with the given id, or nil if out of range.
func (h *Hierarchy) Class(id ClassID) *Class {
	if id < 0 || int(id) >= len(h.classes) {
		return nil
	}
	return h.classes[id]
}

// NumClasses returns the number of classes in the hierarchy.
func (h *Hierarchy) NumClasses() int {
	return len(h.classes)
}

// IsSubclassOf returns true if a is b or a transitive subclass of b.
func (h *Hierarchy) IsSubclassOf(a, b ClassID) bool {
	for id := a; id != NoClass; id = h.classes[id].Super {
		if id == b {
			return true
		}
	}
	return false
}

// Superclasses returns all superclass ids from immediate parent to root.
func (h *Hierarchy) Superclasses(id ClassID) []ClassID {
	var result []ClassID
	for cur := h.classes[id].Super; cur != NoClass; cur = h.classes[cur].Super {
		result = append(result, cur)
	}
	return result
}

// Depth returns the inheritance depth (0 for a root class).
func (h *Hierarchy) Depth(id ClassID) int {
	depth := 0
	for cur := h.classes[id].Super; cur != NoClass; cur = h.classes[cur].Super {
		depth++
	}
	return depth
}
