package dispatch

import (
	"fmt"

	"github.com/chazu/dtab/hierarchy"
	"github.com/chazu/dtab/lattice"
)

// ---------------------------------------------------------------------------
// Signature synthesis: one callable signature per selector
// ---------------------------------------------------------------------------

// Signature is the unified callable signature of a selector: it accepts
// every implementation's inputs (contravariant widening) and produces a
// supertype of every implementation's outputs (covariant widening).
//
// Input slot order: receiver, type parameters, positionals, then named
// parameters in name-index order.
type Signature struct {
	Inputs  []lattice.ValueType
	Outputs []lattice.ValueType
}

// synthesizer folds every target of a selector into one signature.
type synthesizer struct {
	h   *hierarchy.Hierarchy
	lat *lattice.Lattice
	des hierarchy.Designations
}

// slotAcc accumulates one signature slot across targets.
type slotAcc struct {
	classes  []hierarchy.ClassID
	nullable bool
	boxed    bool
}

func (a *slotAcc) addType(l *lattice.Lattice, t hierarchy.TypeRef) {
	a.classes = append(a.classes, l.ClassForType(t))
	if t.Nullable {
		a.nullable = true
	}
}

// synthesize folds all implementations in the selector's target map into a
// single callable signature. The selector must be finalized.
func (sy *synthesizer) synthesize(s *Selector) (*Signature, error) {
	if s.returnCount > 1 {
		return nil, fmt.Errorf("selector %d (%q) has return count %d: %w",
			s.id, s.name, s.returnCount, ErrInternalInvariant)
	}

	pi := &s.paramInfo
	nInputs := pi.InputCount()
	inputs := make([]slotAcc, nInputs)
	outputs := make([]slotAcc, s.returnCount)

	// The receiver always needs the uniform heap representation: the
	// dispatched value's static type is the upper bound, not the
	// implementation's class.
	inputs[0].boxed = true

	posBase := 1 + pi.TypeParams
	namedBase := posBase + pi.Positional
	for i := 0; i < pi.Positional; i++ {
		if pi.AdmitsDefault(i) {
			inputs[posBase+i].boxed = true
		}
	}
	for j, name := range pi.Names {
		if pi.NamedAdmitsDefault(name) {
			inputs[namedBase+j].boxed = true
		}
	}

	for classID, ref := range s.targets {
		inputs[0].classes = append(inputs[0].classes, classID)
		n, err := sy.addTarget(inputs, outputs, posBase, namedBase, pi, ref)
		if err != nil {
			return nil, err
		}
		if n < s.returnCount {
			// Missing outputs are absent values.
			outputs[0].nullable = true
		}
	}

	sig := &Signature{
		Inputs:  make([]lattice.ValueType, nInputs),
		Outputs: make([]lattice.ValueType, s.returnCount),
	}
	sig.Inputs[0] = sy.lat.ValueTypeFor(sy.lat.UpperBound(inputs[0].classes), false, true)
	for i := 0; i < pi.TypeParams; i++ {
		sig.Inputs[1+i] = sy.lat.ValueTypeFor(sy.des.TypeClass, false, false)
	}
	for i := posBase; i < nInputs; i++ {
		acc := &inputs[i]
		sig.Inputs[i] = sy.lat.ValueTypeFor(sy.lat.UpperBound(acc.classes), acc.nullable, acc.boxed)
	}
	for i := range outputs {
		acc := &outputs[i]
		sig.Outputs[i] = sy.lat.ValueTypeFor(sy.lat.UpperBound(acc.classes), acc.nullable, false)
	}

	// The runtime guarantees the equality operator's call sites never
	// pass a null counterpart.
	if s.name == sy.des.Equals() && nInputs > 1 {
		sig.Inputs[1].Nullable = false
	}
	return sig, nil
}

// addTarget accumulates one implementation view's inputs and outputs.
// Returns the number of outputs the view produced.
func (sy *synthesizer) addTarget(inputs, outputs []slotAcc, posBase, namedBase int, pi *ParameterInfo, ref hierarchy.Ref) (int, error) {
	m := ref.Member
	switch ref.Kind {
	case hierarchy.GetterRef:
		t := m.Type
		if m.Kind != hierarchy.FieldMember {
			t = m.Return
		}
		outputs[0].addType(sy.lat, t)
		return 1, nil

	case hierarchy.TearOffRef:
		outputs[0].addType(sy.lat, hierarchy.TypeRef{Class: sy.des.FunctionClass})
		return 1, nil

	case hierarchy.SetterRef:
		slot := &inputs[posBase]
		if m.Kind == hierarchy.FieldMember {
			slot.addType(sy.lat, m.Type)
			if m.Covariant {
				slot.boxed = true
			}
		} else {
			p := m.Positional[0]
			slot.addType(sy.lat, p.Type)
			if p.Covariant || p.CovariantByDecl {
				slot.boxed = true
			}
		}
		return 0, nil

	case hierarchy.MethodRef:
		for i, p := range m.Positional {
			slot := &inputs[posBase+i]
			slot.addType(sy.lat, p.Type)
			if p.Covariant || p.CovariantByDecl {
				slot.boxed = true
			}
		}
		for _, named := range m.Named {
			idx := pi.NameIndex(named.Name)
			if idx < 0 {
				return 0, fmt.Errorf("named parameter %q of %q missing from merged shape: %w",
					named.Name, m.Name, ErrInternalInvariant)
			}
			slot := &inputs[namedBase+idx]
			slot.addType(sy.lat, named.Type)
			if named.Covariant || named.CovariantByDecl {
				slot.boxed = true
			}
		}
		if m.Return.IsVoid() {
			return 0, nil
		}
		outputs[0].addType(sy.lat, m.Return)
		return 1, nil
	}
	return 0, fmt.Errorf("unknown ref kind %d: %w", ref.Kind, ErrInternalInvariant)
}
