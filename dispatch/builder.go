package dispatch

import (
	"fmt"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/chazu/dtab/hierarchy"
	"github.com/chazu/dtab/lattice"
)

// ---------------------------------------------------------------------------
// Builder: orchestration
// ---------------------------------------------------------------------------

var log = commonlog.GetLogger("dispatch")

// Builder owns all state for one table build: the selector registry, the
// per-selector target maps, and the pack table. It is single-threaded; a
// build runs to completion or fails fast. The finalized structures may be
// read concurrently only after Build returns.
type Builder struct {
	h    *hierarchy.Hierarchy
	des  hierarchy.Designations
	meta hierarchy.MetadataSource
	lat  *lattice.Lattice
	reg  *Registry

	out *Output
}

// NewBuilder creates a builder over the given hierarchy, designations, and
// metadata.
func NewBuilder(h *hierarchy.Hierarchy, des hierarchy.Designations, meta hierarchy.MetadataSource) *Builder {
	lat := lattice.New(h, des.TopClass)
	return &Builder{
		h:    h,
		des:  des,
		meta: meta,
		lat:  lat,
		reg:  newRegistry(h, des, meta),
	}
}

// Build walks the hierarchy, finalizes every selector, and packs the live
// selectors into the table. It must be called exactly once.
func (b *Builder) Build() (*Output, error) {
	if b.out != nil {
		return nil, fmt.Errorf("builder already built: %w", ErrInternalInvariant)
	}

	w := newWalker(b.h, b.des, b.meta, b.reg)
	if err := w.walk(); err != nil {
		return nil, err
	}
	w.finalizeSelectors()
	log.Debugf("walked %d classes, %d selectors", b.h.NumClasses(), len(b.reg.selectors))

	sy := &synthesizer{h: b.h, lat: b.lat, des: b.des}
	selectors := make([]*Selector, 0, len(b.reg.selectors))
	for _, s := range b.reg.selectors {
		s.synth = sy.synthesize
		selectors = append(selectors, s)
	}
	sort.Slice(selectors, func(i, j int) bool { return selectors[i].id < selectors[j].id })

	table, err := pack(selectors)
	if err != nil {
		return nil, err
	}

	b.out = &Output{
		Table:     table,
		Selectors: selectors,
	}
	st := b.out.Stats()
	log.Infof("packed table: %d slots, %d live selectors, %.1f%% filled",
		table.Len(), st.Live, st.FillRate*100)
	return b.out, nil
}

// SelectorFor returns the selector a reference dispatches through.
// Valid only after Build.
func (b *Builder) SelectorFor(ref hierarchy.Ref) (*Selector, error) {
	return b.reg.SelectorFor(ref)
}

// DynamicGetterSelectors returns selectors reachable by a name-only getter
// call. Valid only after Build.
func (b *Builder) DynamicGetterSelectors(name string) []*Selector {
	return b.reg.DynamicGetterSelectors(name)
}

// DynamicSetterSelectors returns selectors reachable by a name-only setter
// call. Valid only after Build.
func (b *Builder) DynamicSetterSelectors(name string) []*Selector {
	return b.reg.DynamicSetterSelectors(name)
}

// DynamicMethodSelectors returns selectors reachable by a name-only method
// call. Valid only after Build.
func (b *Builder) DynamicMethodSelectors(name string) []*Selector {
	return b.reg.DynamicMethodSelectors(name)
}

// ---------------------------------------------------------------------------
// Output
// ---------------------------------------------------------------------------

// Output is the finalized result of a build: the packed table and every
// selector, frozen. Read-only.
type Output struct {
	Table     *Table
	Selectors []*Selector // all selectors, by id
}

// Live returns the selectors that received a table offset, in id order.
func (o *Output) Live() []*Selector {
	var live []*Selector
	for _, s := range o.Selectors {
		if _, ok := s.Offset(); ok {
			live = append(live, s)
		}
	}
	return live
}

// NullFunc marks an empty (null function reference) element in a table
// resource.
const NullFunc int64 = -1

// TableResource is the emitted table: sized to the packed length, element
// type nullable function reference. Elements hold resolved function
// indices, or NullFunc for empty slots and slots whose member was never
// compiled.
type TableResource struct {
	Size  int
	Elems []int64
}

// Resource resolves the table's occupied slots through the function
// registry and emits the table resource.
func (o *Output) Resource(funcs hierarchy.FunctionRegistry) *TableResource {
	res := &TableResource{
		Size:  o.Table.Len(),
		Elems: make([]int64, o.Table.Len()),
	}
	for i := range res.Elems {
		res.Elems[i] = NullFunc
		if r := o.Table.Slot(i); !r.IsZero() {
			if idx, ok := funcs.ExistingFunction(r); ok {
				res.Elems[i] = int64(idx)
			}
		}
	}
	return res
}
