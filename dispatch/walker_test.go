package dispatch

import (
	"errors"
	"testing"

	"github.com/chazu/dtab/hierarchy"
)

// ---------------------------------------------------------------------------
// Hierarchy walk
// ---------------------------------------------------------------------------

func TestOverrideMonotonicity(t *testing.T) {
	// D inherits C's override; B keeps A's implementation.
	w := newWorld()
	a := w.class("A", hierarchy.NoClass, false)
	b := w.class("B", a.ID, false)
	c := w.class("C", a.ID, false)
	d := w.class("D", c.ID, false)
	am := w.method(a, "m", false, 0, nil, typ(0))
	cm := w.method(c, "m", false, 0, nil, typ(0))
	w.calls(0, 1)

	builder, _ := w.build(t)
	h := builder.h

	sel, err := builder.SelectorFor(hierarchy.Ref{Member: am, Kind: hierarchy.MethodRef})
	if err != nil {
		t.Fatalf("SelectorFor: %v", err)
	}
	if got, _ := sel.Target(b.ID); got.Member != am {
		t.Errorf("B's target = %v, want inherited A.m", got)
	}
	if got, _ := sel.Target(d.ID); got.Member != cm {
		t.Errorf("D's target = %v, want inherited C.m override", got)
	}

	// Every subclass target is either the superclass's target or an
	// override declared below it.
	targets := sel.Targets()
	for classID, ref := range targets {
		superID := h.Class(classID).Super
		if superID == hierarchy.NoClass {
			continue
		}
		superRef, ok := targets[superID]
		if !ok {
			continue
		}
		if ref != superRef && !h.IsSubclassOf(ref.Member.Class, superID) {
			t.Errorf("class %d target declared on %d, outside its ancestry below %d",
				classID, ref.Member.Class, superID)
		}
	}
}

func TestWasmTypesBaseSkipsInheritance(t *testing.T) {
	w := newWorld()
	obj := w.class("Object", hierarchy.NoClass, false)
	om := w.method(obj, "toString", false, 0, nil, typ(0))
	wasmBase := w.class("WasmTypes", obj.ID, true)
	w.des.WasmTypesBase = wasmBase.ID

	builder, _ := w.build(t)

	sel, err := builder.SelectorFor(hierarchy.Ref{Member: om, Kind: hierarchy.MethodRef})
	if err != nil {
		t.Fatalf("SelectorFor: %v", err)
	}
	if _, ok := sel.Target(wasmBase.ID); ok {
		t.Error("machine-primitive base should not inherit selectors")
	}
}

func TestPerClassSelectorAccumulation(t *testing.T) {
	w := newWorld()
	a := w.class("A", hierarchy.NoClass, false)
	b := w.class("B", a.ID, false)
	am := w.method(a, "m", false, 0, nil, typ(0))
	bn := w.method(b, "n", false, 1, nil, typ(0))

	builder, _ := w.build(t)

	mSel, err := builder.SelectorFor(hierarchy.Ref{Member: am, Kind: hierarchy.MethodRef})
	if err != nil {
		t.Fatalf("SelectorFor(m): %v", err)
	}
	nSel, err := builder.SelectorFor(hierarchy.Ref{Member: bn, Kind: hierarchy.MethodRef})
	if err != nil {
		t.Fatalf("SelectorFor(n): %v", err)
	}
	if _, ok := mSel.Target(b.ID); !ok {
		t.Error("B should participate in m's selector")
	}
	if _, ok := nSel.Target(a.ID); ok {
		t.Error("A should not participate in n's selector")
	}
}

func TestHierarchyOrderViolationIsFatal(t *testing.T) {
	classes := []*hierarchy.Class{
		{ID: 0, Name: "B", Super: 1},
		{ID: 1, Name: "A", Super: hierarchy.NoClass},
	}
	if _, err := hierarchy.New(classes); !errors.Is(err, hierarchy.ErrMalformed) {
		t.Errorf("New = %v, want ErrMalformed", err)
	}
}

func TestParameterShapeConflictIsFatal(t *testing.T) {
	w := newWorld()
	a := w.class("A", hierarchy.NoClass, false)
	b := w.class("B", a.ID, false)
	am := w.method(a, "m", false, 0, nil, typ(0))
	am.TypeParams = 1
	w.method(b, "m", false, 0, nil, typ(0)) // no type params

	builder := NewBuilder(w.hierarchy(t), w.des, w.meta)
	if _, err := builder.Build(); !errors.Is(err, ErrParameterShapeConflict) {
		t.Errorf("Build = %v, want ErrParameterShapeConflict", err)
	}
}
