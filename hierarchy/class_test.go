package hierarchy

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// Hierarchy validation tests
// ---------------------------------------------------------------------------

func TestNewValidatesDenseIDs(t *testing.T) {
	_, err := New([]*Class{
		{ID: 0, Name: "Object", Super: NoClass},
		{ID: 2, Name: "A", Super: 0},
	})
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("New = %v, want ErrMalformed", err)
	}
}

func TestNewValidatesSuperFirst(t *testing.T) {
	_, err := New([]*Class{
		{ID: 0, Name: "A", Super: 1},
		{ID: 1, Name: "Object", Super: NoClass},
	})
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("New = %v, want ErrMalformed", err)
	}
}

func TestNewAcceptsForest(t *testing.T) {
	h, err := New([]*Class{
		{ID: 0, Name: "Object", Super: NoClass},
		{ID: 1, Name: "WasmTypes", Super: NoClass},
		{ID: 2, Name: "I64", Super: 1},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if h.NumClasses() != 3 {
		t.Errorf("NumClasses = %d, want 3", h.NumClasses())
	}
}

func TestIsSubclassOf(t *testing.T) {
	h, err := New([]*Class{
		{ID: 0, Name: "Object", Super: NoClass},
		{ID: 1, Name: "A", Super: 0},
		{ID: 2, Name: "B", Super: 1},
		{ID: 3, Name: "D", Super: 0},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !h.IsSubclassOf(2, 0) {
		t.Error("B should be a subclass of Object")
	}
	if !h.IsSubclassOf(2, 2) {
		t.Error("a class is a subclass of itself")
	}
	if h.IsSubclassOf(2, 3) {
		t.Error("B is not a subclass of D")
	}
	if h.IsSubclassOf(0, 2) {
		t.Error("Object is not a subclass of B")
	}
}

func TestSuperclassesAndDepth(t *testing.T) {
	h, err := New([]*Class{
		{ID: 0, Name: "Object", Super: NoClass},
		{ID: 1, Name: "A", Super: 0},
		{ID: 2, Name: "B", Super: 1},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	supers := h.Superclasses(2)
	if len(supers) != 2 || supers[0] != 1 || supers[1] != 0 {
		t.Errorf("Superclasses(B) = %v, want [1 0]", supers)
	}
	if h.Depth(0) != 0 {
		t.Errorf("Depth(Object) = %d, want 0", h.Depth(0))
	}
	if h.Depth(2) != 2 {
		t.Errorf("Depth(B) = %d, want 2", h.Depth(2))
	}
}

// ---------------------------------------------------------------------------
// Member reference tests
// ---------------------------------------------------------------------------

func TestFieldRefs(t *testing.T) {
	f := &Member{Kind: FieldMember, Name: "x", HasSetter: true}
	refs := f.Refs(false)
	if len(refs) != 2 {
		t.Fatalf("refs = %d, want getter and setter", len(refs))
	}
	if refs[0].Kind != GetterRef || refs[1].Kind != SetterRef {
		t.Errorf("refs = %v, %v, want getter then setter", refs[0].Kind, refs[1].Kind)
	}

	readOnly := &Member{Kind: FieldMember, Name: "y"}
	if refs := readOnly.Refs(false); len(refs) != 1 || refs[0].Kind != GetterRef {
		t.Errorf("read-only field refs = %v, want getter only", refs)
	}
}

func TestMethodRefsWithTearOff(t *testing.T) {
	m := &Member{Kind: MethodMember, Name: "m"}
	if refs := m.Refs(false); len(refs) != 1 || refs[0].Kind != MethodRef {
		t.Errorf("refs = %v, want method only", refs)
	}
	refs := m.Refs(true)
	if len(refs) != 2 || refs[1].Kind != TearOffRef {
		t.Errorf("refs with tear-off = %v, want method then tear-off", refs)
	}
}

func TestVoidTypeRef(t *testing.T) {
	if !Void.IsVoid() {
		t.Error("Void should be void")
	}
	if (TypeRef{Class: 0}).IsVoid() {
		t.Error("class 0 is not void")
	}
}
