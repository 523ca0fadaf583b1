package dispatch

import (
	"fmt"
	"sort"

	"github.com/chazu/dtab/hierarchy"
)

// ---------------------------------------------------------------------------
// Selector: the unit of dispatch
// ---------------------------------------------------------------------------

// Selector is an equivalence class of polymorphic call sites sharing one
// override graph.
//
// A Selector has a two-phase lifecycle: its target map grows monotonically
// during the hierarchy walk, and everything else is frozen when the walk
// finalizes it. The builder only hands out selectors after finalization;
// the finalized accessors panic if reached earlier, which is a builder bug
// rather than an input error.
type Selector struct {
	id          hierarchy.SelectorID
	name        string
	callCount   int
	paramInfo   ParameterInfo
	returnCount int
	targets     map[hierarchy.ClassID]hierarchy.Ref

	// forceLive keeps the selector in the table regardless of call
	// counts; set for the no-such-method fallback selector.
	forceLive bool

	finalized   bool
	classIDs    []hierarchy.ClassID
	targetCount int
	singular    hierarchy.Ref

	hasOffset bool
	offset    int

	sig    *Signature
	sigErr error
	synth  func(*Selector) (*Signature, error)
}

// ID returns the selector id.
func (s *Selector) ID() hierarchy.SelectorID { return s.id }

// Name returns the member name the selector dispatches.
func (s *Selector) Name() string { return s.name }

// CallCount returns the external estimate of polymorphic call sites using
// this selector.
func (s *Selector) CallCount() int { return s.callCount }

// ReturnCount returns 1 if any implementation returns a value, else 0.
func (s *Selector) ReturnCount() int { return s.returnCount }

// ParamInfo returns the accumulated parameter-shape upper bound.
func (s *Selector) ParamInfo() *ParameterInfo { return &s.paramInfo }

// Target returns the implementation the given class uses, if the class
// participates in this selector.
func (s *Selector) Target(c hierarchy.ClassID) (hierarchy.Ref, bool) {
	r, ok := s.targets[c]
	return r, ok
}

// Targets returns a copy of the class-to-implementation map.
func (s *Selector) Targets() map[hierarchy.ClassID]hierarchy.Ref {
	result := make(map[hierarchy.ClassID]hierarchy.Ref, len(s.targets))
	for c, r := range s.targets {
		result[c] = r
	}
	return result
}

// ClassIDs returns the sorted ids of the non-abstract classes in the
// target map. Callers must not mutate the returned slice.
func (s *Selector) ClassIDs() []hierarchy.ClassID {
	s.mustBeFinalized("ClassIDs")
	return s.classIDs
}

// TargetCount returns the number of distinct non-abstract implementations.
func (s *Selector) TargetCount() int {
	s.mustBeFinalized("TargetCount")
	return s.targetCount
}

// SingularTarget returns the unique non-abstract implementation when
// TargetCount is 1. Such selectors are inlinable at the call site and
// receive no table offset, except the no-such-method fallback selector,
// which is always live.
func (s *Selector) SingularTarget() (hierarchy.Ref, bool) {
	s.mustBeFinalized("SingularTarget")
	return s.singular, s.targetCount == 1
}

// Offset returns the packed base offset, present iff the selector needed a
// table row. The machine-level dispatch is table[offset + class id].
func (s *Selector) Offset() (int, bool) {
	s.mustBeFinalized("Offset")
	return s.offset, s.hasOffset
}

// Signature returns the unified callable signature accepting every
// implementation. It is synthesized on first demand after the walk and
// memoized.
func (s *Selector) Signature() (*Signature, error) {
	s.mustBeFinalized("Signature")
	if s.sig == nil && s.sigErr == nil {
		s.sig, s.sigErr = s.synth(s)
	}
	return s.sig, s.sigErr
}

func (s *Selector) mustBeFinalized(op string) {
	if !s.finalized {
		panic(fmt.Sprintf("dispatch: Selector.%s before finalization: %v", op, ErrInternalInvariant))
	}
}

// finalize freezes the selector after the walk: sorted non-abstract class
// ids, the distinct non-abstract implementation count, and the singular
// target when there is exactly one.
func (s *Selector) finalize(h *hierarchy.Hierarchy) {
	distinct := make(map[hierarchy.Ref]struct{})
	for c, r := range s.targets {
		if !h.Class(c).Abstract {
			s.classIDs = append(s.classIDs, c)
		}
		if !r.Member.Abstract {
			distinct[r] = struct{}{}
		}
	}
	sort.Slice(s.classIDs, func(i, j int) bool { return s.classIDs[i] < s.classIDs[j] })
	s.targetCount = len(distinct)
	if s.targetCount == 1 {
		for r := range distinct {
			s.singular = r
		}
	}
	s.finalized = true
}

// live reports whether the selector needs a table row: polymorphic call
// sites exist and more than one implementation is reachable, or the
// selector is the no-such-method fallback.
func (s *Selector) live() bool {
	if s.forceLive {
		return true
	}
	return s.callCount > 0 && s.targetCount > 1
}

// weight orders selectors for packing. Wide selectors go first while the
// table is still sparse; among similar widths, hotter selectors get
// smaller offsets and thus smaller call-site encodings.
func (s *Selector) weight() int {
	return len(s.classIDs)*10 + s.callCount
}
