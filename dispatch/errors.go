package dispatch

import (
	"errors"

	"github.com/chazu/dtab/hierarchy"
)

// ---------------------------------------------------------------------------
// Failure kinds
// ---------------------------------------------------------------------------

// The builder is total on well-formed inputs. Each failure kind below is
// fatal: there is no local recovery and no retry. User-visible diagnostics
// are rendered by the driver, not here.
var (
	// ErrHierarchyMalformed reports a violated superclass-first order or
	// a class claiming an unprocessed super.
	ErrHierarchyMalformed = hierarchy.ErrMalformed

	// ErrParameterShapeConflict reports override-related members with
	// diverging type-parameter arities.
	ErrParameterShapeConflict = errors.New("dispatch: parameter shape conflict")

	// ErrSelectorMetadataMissing reports a member reference that resolves
	// to no selector id.
	ErrSelectorMetadataMissing = errors.New("dispatch: selector metadata missing")

	// ErrInternalInvariant reports a builder bug, not an input error: a
	// pack collision into an occupied slot, a target with more than one
	// output, or use of a selector before finalization.
	ErrInternalInvariant = errors.New("dispatch: internal invariant violated")
)
