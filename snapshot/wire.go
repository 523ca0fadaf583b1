// Package snapshot serializes a finalized dispatch table for driver
// handoff and golden testing.
package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/chazu/dtab/dispatch"
	"github.com/chazu/dtab/hierarchy"
)

// cborEncMode uses canonical mode for deterministic encoding: the same
// Snapshot value always encodes to identical bytes. Separate captures of
// one build differ in their build id.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ValueTypeRecord is the wire form of one signature slot.
type ValueTypeRecord struct {
	Class    int  `cbor:"class"`
	Nullable bool `cbor:"nullable,omitempty"`
	Boxed    bool `cbor:"boxed,omitempty"`
}

// SelectorRecord is the wire form of one live selector.
type SelectorRecord struct {
	ID        int               `cbor:"id"`
	Name      string            `cbor:"name"`
	Offset    int               `cbor:"offset"`
	CallCount int               `cbor:"call_count"`
	ClassIDs  []int             `cbor:"class_ids"`
	Inputs    []ValueTypeRecord `cbor:"inputs"`
	Outputs   []ValueTypeRecord `cbor:"outputs,omitempty"`
}

// Snapshot is the wire form of a finished build: the table resource plus
// per-selector placement and signature records.
type Snapshot struct {
	BuildID   string           `cbor:"build_id"`
	Classes   int              `cbor:"classes"`
	TableSize int              `cbor:"table_size"`
	Elems     []int64          `cbor:"elems"` // dispatch.NullFunc marks null funcrefs
	Selectors []SelectorRecord `cbor:"selectors"`
}

// Capture builds a snapshot of an output, resolving slots through the
// function registry. Each capture gets a fresh build id.
func Capture(h *hierarchy.Hierarchy, out *dispatch.Output, funcs hierarchy.FunctionRegistry) (*Snapshot, error) {
	res := out.Resource(funcs)
	snap := &Snapshot{
		BuildID:   uuid.New().String(),
		Classes:   h.NumClasses(),
		TableSize: res.Size,
		Elems:     res.Elems,
	}
	for _, s := range out.Live() {
		offset, _ := s.Offset()
		sig, err := s.Signature()
		if err != nil {
			return nil, fmt.Errorf("snapshot: selector %d: %w", s.ID(), err)
		}
		rec := SelectorRecord{
			ID:        int(s.ID()),
			Name:      s.Name(),
			Offset:    offset,
			CallCount: s.CallCount(),
		}
		for _, c := range s.ClassIDs() {
			rec.ClassIDs = append(rec.ClassIDs, int(c))
		}
		for _, in := range sig.Inputs {
			rec.Inputs = append(rec.Inputs, ValueTypeRecord{Class: int(in.Class), Nullable: in.Nullable, Boxed: in.Boxed})
		}
		for _, o := range sig.Outputs {
			rec.Outputs = append(rec.Outputs, ValueTypeRecord{Class: int(o.Class), Nullable: o.Nullable, Boxed: o.Boxed})
		}
		snap.Selectors = append(snap.Selectors, rec)
	}
	return snap, nil
}

// Marshal serializes a Snapshot to CBOR bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Unmarshal deserializes a Snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &s, nil
}
