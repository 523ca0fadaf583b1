package dispatch

import (
	"testing"

	"github.com/chazu/dtab/hierarchy"
)

// testWorld accumulates classes and metadata for one test scenario.
// Class 0 doubles as the object, top, function and type class, and there is
// no machine-primitive base, unless a test overrides the designations.
type testWorld struct {
	classes []*hierarchy.Class
	meta    *hierarchy.StaticMetadata
	des     hierarchy.Designations
}

func newWorld() *testWorld {
	return &testWorld{
		meta: hierarchy.NewStaticMetadata(),
		des: hierarchy.Designations{
			ObjectClass:   0,
			TopClass:      0,
			WasmTypesBase: hierarchy.NoClass,
			FunctionClass: 0,
			TypeClass:     0,
		},
	}
}

func (w *testWorld) class(name string, super hierarchy.ClassID, abstract bool) *hierarchy.Class {
	c := &hierarchy.Class{
		ID:       hierarchy.ClassID(len(w.classes)),
		Name:     name,
		Super:    super,
		Abstract: abstract,
	}
	w.classes = append(w.classes, c)
	return c
}

// method declares an instance method and registers its metadata.
func (w *testWorld) method(c *hierarchy.Class, name string, abstract bool, sel hierarchy.SelectorID, params []hierarchy.Param, ret hierarchy.TypeRef) *hierarchy.Member {
	m := &hierarchy.Member{
		Kind:       hierarchy.MethodMember,
		Name:       name,
		Class:      c.ID,
		Abstract:   abstract,
		Positional: params,
		Return:     ret,
	}
	c.Members = append(c.Members, m)
	w.meta.SetMember(m, hierarchy.MemberMetadata{
		GetterSelector:         hierarchy.NoSelector,
		MethodOrSetterSelector: sel,
	})
	return m
}

// field declares a stored field and registers its metadata.
func (w *testWorld) field(c *hierarchy.Class, name string, typ hierarchy.TypeRef, hasSetter bool, getterSel, setterSel hierarchy.SelectorID) *hierarchy.Member {
	m := &hierarchy.Member{
		Kind:      hierarchy.FieldMember,
		Name:      name,
		Class:     c.ID,
		Type:      typ,
		HasSetter: hasSetter,
	}
	c.Members = append(c.Members, m)
	w.meta.SetMember(m, hierarchy.MemberMetadata{
		GetterSelector:         getterSel,
		MethodOrSetterSelector: setterSel,
	})
	return m
}

// metaFor replaces the registered metadata for a member.
func (w *testWorld) metaFor(m *hierarchy.Member, md hierarchy.MemberMetadata) {
	w.meta.SetMember(m, md)
}

func (w *testWorld) calls(sel hierarchy.SelectorID, count int) {
	w.meta.SetCallCount(sel, count)
}

func (w *testWorld) hierarchy(t *testing.T) *hierarchy.Hierarchy {
	t.Helper()
	h, err := hierarchy.New(w.classes)
	if err != nil {
		t.Fatalf("hierarchy.New: %v", err)
	}
	return h
}

func (w *testWorld) build(t *testing.T) (*Builder, *Output) {
	t.Helper()
	b := NewBuilder(w.hierarchy(t), w.des, w.meta)
	out, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b, out
}

func typ(c hierarchy.ClassID) hierarchy.TypeRef {
	return hierarchy.TypeRef{Class: c}
}

func nullableTyp(c hierarchy.ClassID) hierarchy.TypeRef {
	return hierarchy.TypeRef{Class: c, Nullable: true}
}

// checkPlacement asserts the packing-correctness invariant: every live
// selector's row reads back its own targets.
func checkPlacement(t *testing.T, out *Output) {
	t.Helper()
	for _, s := range out.Live() {
		offset, _ := s.Offset()
		for _, c := range s.ClassIDs() {
			want, _ := s.Target(c)
			got := out.Table.Slot(offset + int(c))
			if got != want {
				t.Errorf("selector %d: slot %d = %v, want target of class %d", s.ID(), offset+int(c), got, c)
			}
		}
	}
}
