package dispatch

import "fmt"

// ---------------------------------------------------------------------------
// Build statistics
// ---------------------------------------------------------------------------

// Stats summarizes a build: how the selector population split between
// inlinable and table-dispatched, and how densely the displacement packing
// filled the table.
type Stats struct {
	Selectors int // total selectors interned
	Live      int // selectors with a table offset
	Inlinable int // selectors without an offset and with at most one concrete implementation
	Unused    int // selectors without an offset that have several implementations but no polymorphic call sites

	TableSize int     // packed table length
	Filled    int     // occupied slots
	FillRate  float64 // Filled / TableSize
	MaxWidth  int     // widest selector row
}

// Stats computes build statistics from the output.
func (o *Output) Stats() Stats {
	var st Stats
	st.Selectors = len(o.Selectors)
	for _, s := range o.Selectors {
		if _, ok := s.Offset(); ok {
			st.Live++
			if w := len(s.ClassIDs()); w > st.MaxWidth {
				st.MaxWidth = w
			}
		} else if s.TargetCount() <= 1 {
			st.Inlinable++
		} else {
			st.Unused++
		}
	}
	st.TableSize = o.Table.Len()
	st.Filled = o.Table.Filled()
	if st.TableSize > 0 {
		st.FillRate = float64(st.Filled) / float64(st.TableSize)
	}
	return st
}

// String renders a one-line summary.
func (st Stats) String() string {
	return fmt.Sprintf("selectors=%d live=%d inlinable=%d unused=%d table=%d filled=%d (%.1f%%) maxwidth=%d",
		st.Selectors, st.Live, st.Inlinable, st.Unused,
		st.TableSize, st.Filled, st.FillRate*100, st.MaxWidth)
}
