// Package ir implements the tagged-union intermediate representation of
// tape-machine programs: the node model, its dataflow facts, and the
// cursor and cleanup primitives optimization passes share. Expressions
// and conditions embedded in nodes come from package expr and package
// cond and are immutable; nodes themselves are mutated in place by
// passes.
package ir

import (
	"bfopt/internal/cond"
	"bfopt/internal/expr"
)

// Node is the sealed interface implemented by every IR variant: Program,
// Nop, SetMemory, AdjustMemory, MovePointer, Input, Output, OutputConst,
// SeekMemory, If, Repeat, While.
type Node interface {
	isNode()

	// Offsets reports the net pointer change this node causes. known is
	// false when the change cannot be determined statically (e.g. inside
	// a SeekMemory or an unrecognized loop).
	Offsets() (delta int, known bool)

	// Pure reports whether neither this node nor any transitive child
	// performs I/O.
	Pure() bool

	// Returns reports whether this node can fall through; false marks an
	// infinite loop.
	Returns() bool

	// MovePointer mutates every inner reference by delta. A no-op for
	// MovePointer itself.
	MovePointer(delta int)

	// WithMemory propagates known cell values into inner expressions and
	// conditions, mutating in place. While only updates its condition
	// when the substitution collapses it to False.
	WithMemory(mem expr.Memory)

	PreReferences() CellSet
	PreUpdates() CellSet
	PostReferences() CellSet
	PostUpdates() CellSet

	// Falsy reports whether this node is a guaranteed no-op (Nop, a
	// zero-delta AdjustMemory or MovePointer, an empty OutputConst) and
	// can be deleted outright by cleanup.
	Falsy() bool

	String() string
}

// ComplexNode is a Node that owns a child sequence: Program, If, Repeat,
// While.
type ComplexNode interface {
	Node
	Children() []Node
	SetChildren(children []Node)

	// Stride reports the net pointer change of one pass through the
	// body. known is false when it varies or cannot be determined.
	Stride() (delta int, known bool)
}

// bottom is the designated "and possibly other cells" element of a
// CellSet.
//
// CellSet is the dataflow fact carried by every node: a pair of cell-offset
// sets, sure and unsure, each of which may additionally contain the
// bottom element. sure ⊆ unsure is maintained by every constructor and
// mutator in this file.
type CellSet struct {
	Sure        map[int]struct{}
	SureBottom  bool
	Unsure      map[int]struct{}
	UnsureBottom bool
}

// EmptyCellSet is the fact asserting no references or updates whatsoever.
func EmptyCellSet() CellSet {
	return CellSet{Sure: map[int]struct{}{}, Unsure: map[int]struct{}{}}
}

// SureCells builds a CellSet whose sure and unsure sets both equal the
// given concrete offsets (a node that definitely touches exactly these
// cells and nothing else).
func SureCells(offsets ...int) CellSet {
	cs := EmptyCellSet()
	for _, o := range offsets {
		cs.Sure[o] = struct{}{}
		cs.Unsure[o] = struct{}{}
	}
	return cs
}

// BottomCellSet is the fact "possibly touches anything," sure and unsure
// alike.
func BottomCellSet() CellSet {
	cs := EmptyCellSet()
	cs.SureBottom = true
	cs.UnsureBottom = true
	return cs
}

// FromRefs builds a CellSet, sure and unsure alike, from an
// expr/cond References() result.
func FromRefs(refs map[int]struct{}) CellSet {
	cs := EmptyCellSet()
	for o := range refs {
		cs.Sure[o] = struct{}{}
		cs.Unsure[o] = struct{}{}
	}
	return cs
}

func cloneIntSet(s map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Union returns the pointwise union of a and b.
func (a CellSet) Union(b CellSet) CellSet {
	out := CellSet{
		Sure:         cloneIntSet(a.Sure),
		Unsure:       cloneIntSet(a.Unsure),
		SureBottom:   a.SureBottom || b.SureBottom,
		UnsureBottom: a.UnsureBottom || b.UnsureBottom,
	}
	for k := range b.Sure {
		out.Sure[k] = struct{}{}
	}
	for k := range b.Unsure {
		out.Unsure[k] = struct{}{}
	}
	return out
}

// Intersect returns the pointwise intersection of a and b.
func (a CellSet) Intersect(b CellSet) CellSet {
	out := CellSet{
		Sure:         map[int]struct{}{},
		Unsure:       map[int]struct{}{},
		SureBottom:   a.SureBottom && b.SureBottom,
		UnsureBottom: a.UnsureBottom && b.UnsureBottom,
	}
	for k := range a.Sure {
		if _, ok := b.Sure[k]; ok {
			out.Sure[k] = struct{}{}
		}
	}
	for k := range a.Unsure {
		if _, ok := b.Unsure[k]; ok {
			out.Unsure[k] = struct{}{}
		}
	}
	return out
}

// Diff returns a with every cell present in b's unsure set (the
// conservative "might still be set" view) removed.
func (a CellSet) Diff(b CellSet) CellSet {
	out := CellSet{Sure: map[int]struct{}{}, Unsure: map[int]struct{}{}}
	if !b.UnsureBottom {
		for k := range a.Sure {
			if _, ok := b.Unsure[k]; !ok {
				out.Sure[k] = struct{}{}
			}
		}
		for k := range a.Unsure {
			if _, ok := b.Unsure[k]; !ok {
				out.Unsure[k] = struct{}{}
			}
		}
	}
	out.SureBottom = a.SureBottom && !b.UnsureBottom
	out.UnsureBottom = a.UnsureBottom && !b.UnsureBottom
	return out
}

// MovePointer returns a with every concrete offset shifted by delta; the
// bottom flags are preserved as-is.
func (a CellSet) MovePointer(delta int) CellSet {
	out := CellSet{
		Sure:         map[int]struct{}{},
		Unsure:       map[int]struct{}{},
		SureBottom:   a.SureBottom,
		UnsureBottom: a.UnsureBottom,
	}
	for k := range a.Sure {
		out.Sure[k+delta] = struct{}{}
	}
	for k := range a.Unsure {
		out.Unsure[k+delta] = struct{}{}
	}
	return out
}

// Has reports whether offset is present in the unsure set (the
// conservative membership test most passes want).
func (a CellSet) Has(offset int) bool {
	if a.UnsureBottom {
		return true
	}
	_, ok := a.Unsure[offset]
	return ok
}

// HasSure reports whether offset is definitely touched.
func (a CellSet) HasSure(offset int) bool {
	if a.SureBottom {
		return true
	}
	_, ok := a.Sure[offset]
	return ok
}

// Equal reports whether a and b are the same fact.
func (a CellSet) Equal(b CellSet) bool {
	if a.SureBottom != b.SureBottom || a.UnsureBottom != b.UnsureBottom {
		return false
	}
	if len(a.Sure) != len(b.Sure) || len(a.Unsure) != len(b.Unsure) {
		return false
	}
	for k := range a.Sure {
		if _, ok := b.Sure[k]; !ok {
			return false
		}
	}
	for k := range a.Unsure {
		if _, ok := b.Unsure[k]; !ok {
			return false
		}
	}
	return true
}

// references/movepointer/withmemory helpers shared by several node
// kinds, parameterized over expr.Expr and cond.Cond.
func refsOf(e expr.Expr) map[int]struct{} { return e.References() }
func refsOfCond(c cond.Cond) map[int]struct{} { return c.References() }
