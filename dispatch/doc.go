// Package dispatch builds the virtual dispatch table for a linear-memory
// bytecode target whose call instructions index a single flat function
// table.
//
// This package contains:
//   - Selector interning and dynamic-name indexes
//   - Parameter-shape and signature unification across override graphs
//   - The superclass-first hierarchy walk that closes each selector's
//     class-to-implementation map
//   - Row-displacement packing of per-selector rows into one table
//
// The builder is single-threaded and sequential: it runs to completion or
// fails fast, and its outputs are safe for concurrent reads only after
// Build returns.
package dispatch
