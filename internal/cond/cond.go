// Package cond implements the boolean predicate algebra layered on top of
// package expr: equality/inequality to an integer, interval unions, and
// their conjunctions/disjunctions. As with expr, every constructor in
// this package returns an already-canonical value.
package cond

import (
	"sort"
	"strconv"
	"strings"

	"bfopt/internal/expr"
)

// Cond is an immutable, canonical boolean predicate over tape-cell state.
// Concrete variants are True, False, EqualExpr, NotEqualExpr, CellEqual,
// CellNotEqual, Range, Conjunction and Disjunction. The interface is
// sealed: only types in this package implement isCond.
type Cond interface {
	isCond()

	References() map[int]struct{}
	MovePointer(delta int) Cond
	WithMemory(mem expr.Memory) Cond
	Negate() Cond
	Key() string
	String() string
}

// Equal reports whether two conditions have the same canonical form.
func Equal(a, b Cond) bool { return a.Key() == b.Key() }

// True is the always-satisfied predicate.
type True struct{}

func (True) isCond()                           {}
func (True) References() map[int]struct{}      { return nil }
func (True) MovePointer(delta int) Cond        { return True{} }
func (True) WithMemory(mem expr.Memory) Cond   { return True{} }
func (True) Negate() Cond                      { return False{} }
func (True) Key() string                       { return "T" }
func (True) String() string                    { return "true" }

// False is the never-satisfied predicate.
type False struct{}

func (False) isCond()                         {}
func (False) References() map[int]struct{}    { return nil }
func (False) MovePointer(delta int) Cond      { return False{} }
func (False) WithMemory(mem expr.Memory) Cond { return False{} }
func (False) Negate() Cond                    { return True{} }
func (False) Key() string                     { return "F" }
func (False) String() string                  { return "false" }

// EqualExpr asserts Expr == Value. Constructed only via NewEqual, which
// folds additive constants into Value and specializes to CellEqual when
// Expr reduces to a single cell reference.
type EqualExpr struct {
	Expr  expr.Expr
	Value int
}

func (EqualExpr) isCond() {}

func (e EqualExpr) References() map[int]struct{} { return e.Expr.References() }
func (e EqualExpr) MovePointer(delta int) Cond {
	return NewEqual(e.Expr.MovePointer(delta), e.Value)
}
func (e EqualExpr) WithMemory(mem expr.Memory) Cond {
	return NewEqual(e.Expr.WithMemory(mem), e.Value)
}
func (e EqualExpr) Negate() Cond { return NewNotEqual(e.Expr, e.Value) }
func (e EqualExpr) Key() string  { return "Eq(" + e.Expr.Key() + ";" + itoa(e.Value) + ")" }
func (e EqualExpr) String() string {
	return e.Expr.String() + " == " + itoa(e.Value)
}

// NotEqualExpr asserts Expr != Value.
type NotEqualExpr struct {
	Expr  expr.Expr
	Value int
}

func (NotEqualExpr) isCond() {}

func (e NotEqualExpr) References() map[int]struct{} { return e.Expr.References() }
func (e NotEqualExpr) MovePointer(delta int) Cond {
	return NewNotEqual(e.Expr.MovePointer(delta), e.Value)
}
func (e NotEqualExpr) WithMemory(mem expr.Memory) Cond {
	return NewNotEqual(e.Expr.WithMemory(mem), e.Value)
}
func (e NotEqualExpr) Negate() Cond { return NewEqual(e.Expr, e.Value) }
func (e NotEqualExpr) Key() string  { return "Ne(" + e.Expr.Key() + ";" + itoa(e.Value) + ")" }
func (e NotEqualExpr) String() string {
	return e.Expr.String() + " != " + itoa(e.Value)
}

// CellEqual asserts the cell at Offset currently holds Value. The
// specialization of EqualExpr used whenever the underlying expression is
// a bare cell reference, since the loop-recognizing passes match on it
// directly.
type CellEqual struct {
	Offset int
	Value  int
}

func (CellEqual) isCond() {}

func (c CellEqual) References() map[int]struct{} { return map[int]struct{}{c.Offset: {}} }
func (c CellEqual) MovePointer(delta int) Cond {
	return CellEqual{Offset: c.Offset + delta, Value: c.Value}
}
func (c CellEqual) WithMemory(mem expr.Memory) Cond {
	return NewEqual(expr.CellRef(c.Offset).WithMemory(mem), c.Value)
}
func (c CellEqual) Negate() Cond { return CellNotEqual{Offset: c.Offset, Value: c.Value} }
func (c CellEqual) Key() string  { return "CEq(" + itoa(c.Offset) + ";" + itoa(c.Value) + ")" }
func (c CellEqual) String() string {
	return "{" + itoa(c.Offset) + "} == " + itoa(c.Value)
}

// CellNotEqual asserts the cell at Offset currently differs from Value.
type CellNotEqual struct {
	Offset int
	Value  int
}

func (CellNotEqual) isCond() {}

func (c CellNotEqual) References() map[int]struct{} { return map[int]struct{}{c.Offset: {}} }
func (c CellNotEqual) MovePointer(delta int) Cond {
	return CellNotEqual{Offset: c.Offset + delta, Value: c.Value}
}
func (c CellNotEqual) WithMemory(mem expr.Memory) Cond {
	return NewNotEqual(expr.CellRef(c.Offset).WithMemory(mem), c.Value)
}
func (c CellNotEqual) Negate() Cond { return CellEqual{Offset: c.Offset, Value: c.Value} }
func (c CellNotEqual) Key() string  { return "CNe(" + itoa(c.Offset) + ";" + itoa(c.Value) + ")" }
func (c CellNotEqual) String() string {
	return "{" + itoa(c.Offset) + "} != " + itoa(c.Value)
}

func itoa(v int) string { return strconv.Itoa(v) }

// Conjunction is the flattened, deduplicated logical AND of two or more
// operands, none of which is itself a Conjunction, True, or False.
type Conjunction struct {
	Clauses []Cond
}

func (Conjunction) isCond() {}

func (c Conjunction) References() map[int]struct{} {
	refs := map[int]struct{}{}
	for _, cl := range c.Clauses {
		for o := range cl.References() {
			refs[o] = struct{}{}
		}
	}
	return refs
}

func (c Conjunction) MovePointer(delta int) Cond {
	clauses := make([]Cond, len(c.Clauses))
	for i, cl := range c.Clauses {
		clauses[i] = cl.MovePointer(delta)
	}
	return And(clauses...)
}

func (c Conjunction) WithMemory(mem expr.Memory) Cond {
	clauses := make([]Cond, len(c.Clauses))
	for i, cl := range c.Clauses {
		clauses[i] = cl.WithMemory(mem)
	}
	return And(clauses...)
}

func (c Conjunction) Negate() Cond {
	clauses := make([]Cond, len(c.Clauses))
	for i, cl := range c.Clauses {
		clauses[i] = cl.Negate()
	}
	return Or(clauses...)
}

func (c Conjunction) Key() string {
	parts := make([]string, len(c.Clauses))
	for i, cl := range c.Clauses {
		parts[i] = cl.Key()
	}
	sort.Strings(parts)
	return "And(" + strings.Join(parts, ";") + ")"
}

func (c Conjunction) String() string {
	parts := make([]string, len(c.Clauses))
	for i, cl := range c.Clauses {
		parts[i] = cl.String()
	}
	return "(" + strings.Join(parts, " && ") + ")"
}

// Disjunction is the flattened, deduplicated logical OR of two or more
// operands, none of which is itself a Disjunction, True, or False.
type Disjunction struct {
	Clauses []Cond
}

func (Disjunction) isCond() {}

func (d Disjunction) References() map[int]struct{} {
	refs := map[int]struct{}{}
	for _, cl := range d.Clauses {
		for o := range cl.References() {
			refs[o] = struct{}{}
		}
	}
	return refs
}

func (d Disjunction) MovePointer(delta int) Cond {
	clauses := make([]Cond, len(d.Clauses))
	for i, cl := range d.Clauses {
		clauses[i] = cl.MovePointer(delta)
	}
	return Or(clauses...)
}

func (d Disjunction) WithMemory(mem expr.Memory) Cond {
	clauses := make([]Cond, len(d.Clauses))
	for i, cl := range d.Clauses {
		clauses[i] = cl.WithMemory(mem)
	}
	return Or(clauses...)
}

func (d Disjunction) Negate() Cond {
	clauses := make([]Cond, len(d.Clauses))
	for i, cl := range d.Clauses {
		clauses[i] = cl.Negate()
	}
	return And(clauses...)
}

func (d Disjunction) Key() string {
	parts := make([]string, len(d.Clauses))
	for i, cl := range d.Clauses {
		parts[i] = cl.Key()
	}
	sort.Strings(parts)
	return "Or(" + strings.Join(parts, ";") + ")"
}

func (d Disjunction) String() string {
	parts := make([]string, len(d.Clauses))
	for i, cl := range d.Clauses {
		parts[i] = cl.String()
	}
	return "(" + strings.Join(parts, " || ") + ")"
}
