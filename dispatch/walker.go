package dispatch

import (
	"fmt"

	"github.com/chazu/dtab/hierarchy"
)

// ---------------------------------------------------------------------------
// Hierarchy walker: populate selector target maps
// ---------------------------------------------------------------------------

// walker traverses the hierarchy superclass-first, populating each
// selector's class-to-implementation map with inheritance and override
// semantics.
type walker struct {
	h    *hierarchy.Hierarchy
	des  hierarchy.Designations
	meta hierarchy.MetadataSource
	reg  *Registry

	// perClass[c] is the set of selectors class c participates in.
	perClass []map[hierarchy.SelectorID]struct{}
}

func newWalker(h *hierarchy.Hierarchy, des hierarchy.Designations, meta hierarchy.MetadataSource, reg *Registry) *walker {
	return &walker{
		h:        h,
		des:      des,
		meta:     meta,
		reg:      reg,
		perClass: make([]map[hierarchy.SelectorID]struct{}, h.NumClasses()),
	}
}

// walk processes every class. The Hierarchy guarantees index order is
// superclass-first, so each class's superclass is fully processed first.
func (w *walker) walk() error {
	for id := 0; id < w.h.NumClasses(); id++ {
		if err := w.walkClass(w.h.Class(hierarchy.ClassID(id))); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkClass(c *hierarchy.Class) error {
	working := make(map[hierarchy.SelectorID]struct{})

	// Inherit from the superclass: each inherited selector carries over
	// the implementation the superclass would have used. The machine-
	// primitive base is logically outside the root hierarchy and
	// inherits nothing.
	if c.Super != hierarchy.NoClass && c.ID != w.des.WasmTypesBase {
		for sid := range w.perClass[c.Super] {
			sel := w.reg.selectors[sid]
			target, ok := sel.targets[c.Super]
			if !ok {
				return fmt.Errorf("class %d inherits selector %d with no super target: %w",
					c.ID, sid, ErrInternalInvariant)
			}
			sel.targets[c.ID] = target
			working[sid] = struct{}{}
		}
	}

	// The synthetic top has no source declaration; it stands in for the
	// designated object class's members.
	members := c.Members
	if c.Synthetic {
		members = w.h.Class(w.des.ObjectClass).Members
	}

	for _, m := range members {
		if m.Static {
			continue
		}
		md, ok := w.meta.MemberMetadata(m)
		if !ok {
			return fmt.Errorf("member %q on class %d: %w", m.Name, c.ID, ErrSelectorMetadataMissing)
		}
		for _, ref := range m.Refs(md.HasTearOffUses) {
			sel, err := w.reg.intern(ref)
			if err != nil {
				return err
			}
			if m.Abstract {
				// Abstract declarations never clobber an inherited
				// concrete target.
				if _, exists := sel.targets[c.ID]; !exists {
					sel.targets[c.ID] = ref
				}
			} else {
				sel.targets[c.ID] = ref
			}
			working[sel.id] = struct{}{}
		}
	}

	w.perClass[c.ID] = working
	return nil
}

// finalizeSelectors freezes every selector after the walk.
func (w *walker) finalizeSelectors() {
	for _, sel := range w.reg.selectors {
		sel.finalize(w.h)
	}
}
