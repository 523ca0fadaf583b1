package dispatch

import (
	"fmt"

	"github.com/chazu/dtab/hierarchy"
)

// ---------------------------------------------------------------------------
// Registry: selector interning and dynamic-name indexes
// ---------------------------------------------------------------------------

// callName is always treated as dynamically callable; it is how function
// objects are invoked.
const callName = "call"

// Registry interns selectors by their stable selector id and maintains the
// per-name indexes used to resolve dynamic (name-only) call sites.
type Registry struct {
	h    *hierarchy.Hierarchy
	des  hierarchy.Designations
	meta hierarchy.MetadataSource

	selectors map[hierarchy.SelectorID]*Selector

	dynGetters map[string][]*Selector
	dynSetters map[string][]*Selector
	dynMethods map[string][]*Selector
	dynSeen    map[dynKey]struct{}
}

type dynKey struct {
	kind hierarchy.RefKind
	id   hierarchy.SelectorID
}

func newRegistry(h *hierarchy.Hierarchy, des hierarchy.Designations, meta hierarchy.MetadataSource) *Registry {
	return &Registry{
		h:          h,
		des:        des,
		meta:       meta,
		selectors:  make(map[hierarchy.SelectorID]*Selector),
		dynGetters: make(map[string][]*Selector),
		dynSetters: make(map[string][]*Selector),
		dynMethods: make(map[string][]*Selector),
		dynSeen:    make(map[dynKey]struct{}),
	}
}

// selectorID resolves the selector id for a reference: getter and tear-off
// views dispatch through the getter selector id, method and setter views
// through the method-or-setter selector id.
func selectorID(md hierarchy.MemberMetadata, kind hierarchy.RefKind) hierarchy.SelectorID {
	switch kind {
	case hierarchy.GetterRef, hierarchy.TearOffRef:
		return md.GetterSelector
	default:
		return md.MethodOrSetterSelector
	}
}

// intern returns the selector for a member reference, creating it on first
// use with its metadata-supplied call count, then merges the reference's
// parameter shape and lifts the return count to the maximum.
func (r *Registry) intern(ref hierarchy.Ref) (*Selector, error) {
	md, ok := r.meta.MemberMetadata(ref.Member)
	if !ok {
		return nil, fmt.Errorf("member %q (%s) on class %d: %w",
			ref.Member.Name, ref.Kind, ref.Member.Class, ErrSelectorMetadataMissing)
	}
	id := selectorID(md, ref.Kind)
	if id == hierarchy.NoSelector {
		return nil, fmt.Errorf("member %q (%s) on class %d resolves to no selector id: %w",
			ref.Member.Name, ref.Kind, ref.Member.Class, ErrSelectorMetadataMissing)
	}

	sel := r.selectors[id]
	if sel == nil {
		sel = &Selector{
			id:        id,
			name:      ref.Member.Name,
			callCount: r.meta.CallCount(id),
			paramInfo: ParameterInfoFromRef(ref),
			targets:   make(map[hierarchy.ClassID]hierarchy.Ref),
		}
		r.selectors[id] = sel
	} else {
		if err := sel.paramInfo.Merge(ParameterInfoFromRef(ref)); err != nil {
			return nil, fmt.Errorf("selector %d (%q): %w", id, sel.name, err)
		}
	}
	if rc := refReturnCount(ref); rc > sel.returnCount {
		sel.returnCount = rc
	}
	if ref.Member == r.des.NoSuchMethod && ref.Kind == hierarchy.MethodRef {
		sel.forceLive = true
	}
	r.indexDynamic(sel, ref, md)
	return sel, nil
}

// refReturnCount returns the number of outputs one implementation view
// produces: getters and tear-offs always one, setters none, methods one
// unless void.
func refReturnCount(ref hierarchy.Ref) int {
	switch ref.Kind {
	case hierarchy.GetterRef, hierarchy.TearOffRef:
		return 1
	case hierarchy.SetterRef:
		return 0
	default:
		if ref.Member.Return.IsVoid() {
			return 0
		}
		return 1
	}
}

// indexDynamic adds the selector to the per-name dynamic indexes when the
// reference is dynamically callable. Members of machine-primitive classes
// are excluded; the member name "call" is always dynamically callable.
func (r *Registry) indexDynamic(sel *Selector, ref hierarchy.Ref, md hierarchy.MemberMetadata) {
	if r.des.IsWasmType(r.h, ref.Member.Class) {
		return
	}
	name := ref.Member.Name
	always := name == callName

	var index map[string][]*Selector
	switch ref.Kind {
	case hierarchy.GetterRef, hierarchy.TearOffRef:
		if !md.GetterCalledDynamically && !always {
			return
		}
		index = r.dynGetters
	case hierarchy.SetterRef:
		if !md.MethodOrSetterCalledDynamically && !always {
			return
		}
		index = r.dynSetters
	case hierarchy.MethodRef:
		if !md.MethodOrSetterCalledDynamically && !always {
			return
		}
		index = r.dynMethods
	}

	key := dynKey{kind: ref.Kind, id: sel.id}
	if ref.Kind == hierarchy.TearOffRef {
		key.kind = hierarchy.GetterRef
	}
	if _, dup := r.dynSeen[key]; dup {
		return
	}
	r.dynSeen[key] = struct{}{}
	index[name] = append(index[name], sel)
}

// SelectorFor returns the selector a reference dispatches through.
// Read-only lookup; it never creates selectors.
func (r *Registry) SelectorFor(ref hierarchy.Ref) (*Selector, error) {
	md, ok := r.meta.MemberMetadata(ref.Member)
	if !ok {
		return nil, fmt.Errorf("member %q (%s): %w", ref.Member.Name, ref.Kind, ErrSelectorMetadataMissing)
	}
	sel := r.selectors[selectorID(md, ref.Kind)]
	if sel == nil {
		return nil, fmt.Errorf("member %q (%s): %w", ref.Member.Name, ref.Kind, ErrSelectorMetadataMissing)
	}
	return sel, nil
}

// DynamicGetterSelectors returns the selectors reachable through a
// name-only getter call site.
func (r *Registry) DynamicGetterSelectors(name string) []*Selector {
	return r.dynGetters[name]
}

// DynamicSetterSelectors returns the selectors reachable through a
// name-only setter call site.
func (r *Registry) DynamicSetterSelectors(name string) []*Selector {
	return r.dynSetters[name]
}

// DynamicMethodSelectors returns the selectors reachable through a
// name-only method call site.
func (r *Registry) DynamicMethodSelectors(name string) []*Selector {
	return r.dynMethods[name]
}
