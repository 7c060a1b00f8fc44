// Package expr implements the canonical arithmetic term algebra used
// throughout the IR: constants, tape-cell references, and the composite
// forms produced by combining them. Every constructor in this package
// returns an already-canonical term; there is no separate normalization
// step callers must remember to invoke.
package expr

import "fmt"

// Expr is an immutable, canonical arithmetic term. Concrete variants are
// Const, Ref, Linear, Product, FloorDiv, ExactDiv and Mod. The interface
// is sealed: only types in this package implement isExpr.
type Expr interface {
	isExpr()

	// Simple reports whether the term reduces to a single integer constant.
	Simple() bool

	// References returns the set of cell offsets this term depends on,
	// transitively through nested references.
	References() map[int]struct{}

	// MovePointer returns the term with every cell reference shifted by delta.
	MovePointer(delta int) Expr

	// WithMemory returns the term with every reference to a cell present in
	// mem replaced by its mapped value, re-canonicalized.
	WithMemory(mem Memory) Expr

	// Key returns a canonical string identity: two expressions are equal
	// iff their keys are equal. Used for hashing and as a map key.
	Key() string

	String() string
}

// Memory is a snapshot of cells known to currently hold a given expression,
// keyed by concrete cell offset.
type Memory map[int]Expr

// Equal reports whether two expressions have the same canonical form.
func Equal(a, b Expr) bool {
	return a.Key() == b.Key()
}

// Const is an integer constant.
type Const int

func (Const) isExpr() {}

func (c Const) Simple() bool                 { return true }
func (c Const) References() map[int]struct{} { return nil }
func (c Const) MovePointer(delta int) Expr   { return c }
func (c Const) WithMemory(mem Memory) Expr   { return c }
func (c Const) Key() string                  { return fmt.Sprintf("c%d", int(c)) }
func (c Const) String() string               { return fmt.Sprintf("%d", int(c)) }

// Ref is the value of the tape cell at a relative offset. The tape
// machine has no indirect addressing, so by construction every reachable
// Ref carries a concrete integer offset (see DESIGN.md, OQ-1).
type Ref struct {
	Offset int
}

func (Ref) isExpr() {}

func (r Ref) Simple() bool { return false }

func (r Ref) References() map[int]struct{} {
	return map[int]struct{}{r.Offset: {}}
}

func (r Ref) MovePointer(delta int) Expr {
	return Ref{Offset: r.Offset + delta}
}

func (r Ref) WithMemory(mem Memory) Expr {
	if v, ok := mem[r.Offset]; ok {
		return v
	}
	return r
}

func (r Ref) Key() string    { return fmt.Sprintf("r%d", r.Offset) }
func (r Ref) String() string { return fmt.Sprintf("{%d}", r.Offset) }

// CellRef constructs a reference to the cell at offset.
func CellRef(offset int) Expr { return Ref{Offset: offset} }
