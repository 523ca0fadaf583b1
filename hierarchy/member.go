package hierarchy

// ---------------------------------------------------------------------------
// Members and member references
// ---------------------------------------------------------------------------

// MemberKind identifies the declared form of a member. It is a closed set;
// dispatch code switches over it exhaustively.
type MemberKind uint8

const (
	// FieldMember is a stored field with an implicit getter and, when
	// HasSetter is set, an implicit setter.
	FieldMember MemberKind = iota
	// MethodMember is an instance method.
	MethodMember
	// GetterMember is an explicit getter procedure.
	GetterMember
	// SetterMember is an explicit setter procedure.
	SetterMember
)

func (k MemberKind) String() string {
	switch k {
	case FieldMember:
		return "field"
	case MethodMember:
		return "method"
	case GetterMember:
		return "getter"
	case SetterMember:
		return "setter"
	}
	return "unknown"
}

// TypeRef names a class together with a nullability bit. NoClass marks the
// void/unit descriptor; the zero value names class 0.
type TypeRef struct {
	Class    ClassID
	Nullable bool
}

// Void is the unit/void type descriptor.
var Void = TypeRef{Class: NoClass}

// IsVoid returns true for the void/unit descriptor.
func (t TypeRef) IsVoid() bool {
	return t.Class == NoClass
}

// Param describes one declared parameter position.
type Param struct {
	Type TypeRef

	// Covariant marks covariant-by-class positions, CovariantByDecl
	// positions declared covariant; either forces a dynamic type check
	// on entry and thus a boxed representation.
	Covariant       bool
	CovariantByDecl bool

	// HasDefault marks positions that admit a default-value sentinel.
	HasDefault bool
}

// NamedParam is a named parameter. Name order in the member's Named list is
// the declaration order.
type NamedParam struct {
	Name string
	Param
}

// Member describes one declared member of a class. Fields use Type,
// HasSetter, and Covariant; procedures use TypeParams, Positional, Named,
// and Return.
type Member struct {
	Kind     MemberKind
	Name     string
	Class    ClassID
	Abstract bool
	Static   bool

	// Field members
	Type      TypeRef
	HasSetter bool
	Covariant bool // field setter parameter is covariant-by-class

	// Procedure members
	TypeParams int
	Positional []Param
	Named      []NamedParam
	Return     TypeRef
}

// RefKind identifies which callable view of a member a Ref denotes.
type RefKind uint8

const (
	// GetterRef reads a field or invokes a getter.
	GetterRef RefKind = iota
	// SetterRef writes a field or invokes a setter.
	SetterRef
	// MethodRef invokes a method.
	MethodRef
	// TearOffRef reads a method as a bound function object.
	TearOffRef
)

func (k RefKind) String() string {
	switch k {
	case GetterRef:
		return "getter"
	case SetterRef:
		return "setter"
	case MethodRef:
		return "method"
	case TearOffRef:
		return "tear-off"
	}
	return "unknown"
}

// Ref is a callable view of a member: the pair (member, view kind). It is
// the unit stored in selector target maps and dispatch table slots.
// The zero Ref marks an empty table slot.
type Ref struct {
	Member *Member
	Kind   RefKind
}

// IsZero returns true for the empty Ref.
func (r Ref) IsZero() bool {
	return r.Member == nil
}

// Name returns the referenced member's name, or "" for the empty Ref.
func (r Ref) Name() string {
	if r.Member == nil {
		return ""
	}
	return r.Member.Name
}

// Refs returns the callable views a member contributes during the hierarchy
// walk. Fields contribute a getter and, if mutable, a setter; methods
// contribute the method itself plus a tear-off when hasTearOffUses is set;
// explicit accessors contribute their single view.
func (m *Member) Refs(hasTearOffUses bool) []Ref {
	switch m.Kind {
	case FieldMember:
		refs := []Ref{{Member: m, Kind: GetterRef}}
		if m.HasSetter {
			refs = append(refs, Ref{Member: m, Kind: SetterRef})
		}
		return refs
	case MethodMember:
		refs := []Ref{{Member: m, Kind: MethodRef}}
		if hasTearOffUses {
			refs = append(refs, Ref{Member: m, Kind: TearOffRef})
		}
		return refs
	case GetterMember:
		return []Ref{{Member: m, Kind: GetterRef}}
	case SetterMember:
		return []Ref{{Member: m, Kind: SetterRef}}
	}
	return nil
}
