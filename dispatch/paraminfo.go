package dispatch

import (
	"fmt"

	"github.com/chazu/dtab/hierarchy"
)

// ---------------------------------------------------------------------------
// ParameterInfo: least upper bound of parameter shapes
// ---------------------------------------------------------------------------

// ParameterInfo holds the accumulated upper bound of the parameter shapes
// of a selector's implementations: positional arity, the ordered named-
// parameter set, type-parameter arity, and which positions admit a
// default-value sentinel.
type ParameterInfo struct {
	// Positional is the maximum positional-parameter count.
	Positional int

	// Names is the union of named-parameter names in stable insertion
	// order. The index of a name in this slice is its signature slot
	// order.
	Names []string

	// TypeParams is the type-parameter count. All implementations of a
	// selector must agree on it.
	TypeParams int

	nameIndex         map[string]int
	positionalDefault []bool // len == Positional
	namedDefault      map[string]bool
}

// ParameterInfoFromRef builds the shape of a single implementation view.
// Getter and tear-off views take no parameters; setter views take exactly
// one positional parameter; method views take their declared shape.
func ParameterInfoFromRef(r hierarchy.Ref) ParameterInfo {
	p := ParameterInfo{
		nameIndex:    make(map[string]int),
		namedDefault: make(map[string]bool),
	}
	switch r.Kind {
	case hierarchy.GetterRef, hierarchy.TearOffRef:
		// No parameters beyond the receiver.
	case hierarchy.SetterRef:
		p.Positional = 1
		p.positionalDefault = []bool{false}
	case hierarchy.MethodRef:
		m := r.Member
		p.TypeParams = m.TypeParams
		p.Positional = len(m.Positional)
		p.positionalDefault = make([]bool, p.Positional)
		for i, param := range m.Positional {
			p.positionalDefault[i] = param.HasDefault
		}
		for _, named := range m.Named {
			p.nameIndex[named.Name] = len(p.Names)
			p.Names = append(p.Names, named.Name)
			p.namedDefault[named.Name] = named.HasDefault
		}
	}
	return p
}

// NameIndex returns the slot order of a named parameter, or -1.
func (p *ParameterInfo) NameIndex(name string) int {
	if i, ok := p.nameIndex[name]; ok {
		return i
	}
	return -1
}

// AdmitsDefault returns true if the positional position admits a
// default-value sentinel.
func (p *ParameterInfo) AdmitsDefault(pos int) bool {
	return pos < len(p.positionalDefault) && p.positionalDefault[pos]
}

// NamedAdmitsDefault returns true if the named parameter admits a
// default-value sentinel.
func (p *ParameterInfo) NamedAdmitsDefault(name string) bool {
	return p.namedDefault[name]
}

// Merge folds another implementation's shape into p, computing the least
// upper bound: positional count is the max, the name set is the union in
// stable insertion order, sentinel marks are OR'd, and diverging
// type-parameter counts fail.
//
// A position present in one implementation but not the other must receive
// the sentinel when dispatched to the narrower one, so positions outside
// either arity are marked, as are names missing from either side.
func (p *ParameterInfo) Merge(o ParameterInfo) error {
	if p.TypeParams != o.TypeParams {
		return fmt.Errorf("type parameter counts diverge (%d vs %d): %w",
			p.TypeParams, o.TypeParams, ErrParameterShapeConflict)
	}

	minPositional := p.Positional
	if o.Positional < minPositional {
		minPositional = o.Positional
	}
	maxPositional := p.Positional
	if o.Positional > maxPositional {
		maxPositional = o.Positional
	}
	defaults := make([]bool, maxPositional)
	for i := range defaults {
		defaults[i] = (i < len(p.positionalDefault) && p.positionalDefault[i]) ||
			(i < len(o.positionalDefault) && o.positionalDefault[i]) ||
			i >= minPositional
	}
	p.Positional = maxPositional
	p.positionalDefault = defaults

	for _, name := range o.Names {
		if _, ok := p.nameIndex[name]; !ok {
			p.nameIndex[name] = len(p.Names)
			p.Names = append(p.Names, name)
			// Previous implementations lacked this name.
			p.namedDefault[name] = true
		} else if o.namedDefault[name] {
			p.namedDefault[name] = true
		}
	}
	for _, name := range p.Names {
		if o.NameIndex(name) < 0 {
			// The incoming implementation lacks this name.
			p.namedDefault[name] = true
		}
	}
	return nil
}

// InputCount returns the number of signature input slots the shape
// produces: receiver, type parameters, positionals, then named.
func (p *ParameterInfo) InputCount() int {
	return 1 + p.TypeParams + p.Positional + len(p.Names)
}
