package hierarchy

// Designations names the distinguished classes and members the builder
// needs. They are injected as configuration; nothing in this module keeps
// process-wide state.
type Designations struct {
	// ObjectClass is the root class whose members the synthetic top
	// stands in for during the walk.
	ObjectClass ClassID

	// TopClass is the designated top descriptor: the upper bound of
	// classes from unrelated hierarchies and of the empty class set.
	TopClass ClassID

	// WasmTypesBase is the machine-primitive base class. It sits outside
	// the normal root hierarchy: the walker skips selector inheritance
	// into it, and its subclasses are excluded from the dynamic-name
	// indexes. NoClass when the program has none.
	WasmTypesBase ClassID

	// FunctionClass represents tear-off results (bound function objects).
	FunctionClass ClassID

	// TypeClass represents reified type arguments in unified signatures.
	TypeClass ClassID

	// NoSuchMethod is the fallback member invoked on dynamic dispatch
	// misses. Its selector stays live in the table unconditionally.
	NoSuchMethod *Member

	// EqualsName is the source token of the equality operator. The
	// synthesized signature of its selector forces the first real
	// argument non-nullable; the surrounding runtime never passes a
	// null counterpart. Defaults to "==".
	EqualsName string
}

// DefaultEqualsName is the equality operator token assumed when
// Designations.EqualsName is empty.
const DefaultEqualsName = "=="

// Equals returns the configured equality operator token.
func (d Designations) Equals() string {
	if d.EqualsName == "" {
		return DefaultEqualsName
	}
	return d.EqualsName
}

// IsWasmType returns true if the class is a machine-primitive type, i.e.
// a subclass of the designated machine-primitive base.
func (d Designations) IsWasmType(h *Hierarchy, id ClassID) bool {
	if d.WasmTypesBase == NoClass {
		return false
	}
	return h.IsSubclassOf(id, d.WasmTypesBase)
}
