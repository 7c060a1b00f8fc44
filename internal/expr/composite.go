package expr

import (
	"sort"
	"strings"
)

// LinearTerm pairs a non-constant term with its integer coefficient inside
// a Linear.
type LinearTerm struct {
	Coeff int
	Term  Expr
}

// Linear is a degree-1 polynomial: a constant offset plus a sum of
// coefficient-scaled non-constant terms. Canonical Linear values never
// nest another Linear inside a term, carry a zero coefficient, or repeat
// the same term twice; construction always goes through Add/Mul/Sub/Neg,
// which maintain these invariants.
type Linear struct {
	ConstPart int
	Terms     []LinearTerm
}

func (Linear) isExpr() {}

func (l Linear) Simple() bool { return len(l.Terms) == 0 }

func (l Linear) References() map[int]struct{} {
	refs := map[int]struct{}{}
	for _, t := range l.Terms {
		for o := range t.Term.References() {
			refs[o] = struct{}{}
		}
	}
	return refs
}

func (l Linear) MovePointer(delta int) Expr {
	terms := make([]LinearTerm, len(l.Terms))
	for i, t := range l.Terms {
		terms[i] = LinearTerm{Coeff: t.Coeff, Term: t.Term.MovePointer(delta)}
	}
	sortTerms(terms)
	return Linear{ConstPart: l.ConstPart, Terms: terms}
}

func (l Linear) WithMemory(mem Memory) Expr {
	var acc Expr = Const(l.ConstPart)
	for _, t := range l.Terms {
		acc = Add(acc, Mul(Const(t.Coeff), t.Term.WithMemory(mem)))
	}
	return acc
}

func (l Linear) Key() string {
	var b strings.Builder
	b.WriteString("L(")
	b.WriteString(Const(l.ConstPart).Key())
	for _, t := range l.Terms {
		b.WriteByte(';')
		b.WriteString(Const(t.Coeff).Key())
		b.WriteByte('*')
		b.WriteString(t.Term.Key())
	}
	b.WriteByte(')')
	return b.String()
}

func (l Linear) String() string {
	var b strings.Builder
	b.WriteString(Const(l.ConstPart).String())
	for _, t := range l.Terms {
		b.WriteString(" + ")
		if t.Coeff != 1 {
			b.WriteString(Const(t.Coeff).String())
			b.WriteByte('*')
		}
		b.WriteString(t.Term.String())
	}
	return b.String()
}

// Product is the multiplication of two or more complex, non-constant
// terms. Any integer factor discovered during construction is lifted out
// into an enclosing Linear rather than stored here, so Product.Factors
// never contains a Const.
type Product struct {
	Factors []Expr
}

func (Product) isExpr() {}

func (p Product) Simple() bool { return false }

func (p Product) References() map[int]struct{} {
	refs := map[int]struct{}{}
	for _, f := range p.Factors {
		for o := range f.References() {
			refs[o] = struct{}{}
		}
	}
	return refs
}

func (p Product) MovePointer(delta int) Expr {
	factors := make([]Expr, len(p.Factors))
	for i, f := range p.Factors {
		factors[i] = f.MovePointer(delta)
	}
	sort.Slice(factors, func(i, j int) bool { return factors[i].Key() < factors[j].Key() })
	return Product{Factors: factors}
}

func (p Product) WithMemory(mem Memory) Expr {
	var acc Expr = Const(1)
	for _, f := range p.Factors {
		acc = Mul(acc, f.WithMemory(mem))
	}
	return acc
}

func (p Product) Key() string {
	var b strings.Builder
	b.WriteString("P(")
	for i, f := range p.Factors {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(f.Key())
	}
	b.WriteByte(')')
	return b.String()
}

func (p Product) String() string {
	parts := make([]string, len(p.Factors))
	for i, f := range p.Factors {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, " * ") + ")"
}

// FloorDiv is floor (round-toward-negative-infinity) integer division.
type FloorDiv struct {
	LHS, RHS Expr
}

func (FloorDiv) isExpr() {}

func (d FloorDiv) Simple() bool { return false }

func (d FloorDiv) References() map[int]struct{} { return unionRefs(d.LHS, d.RHS) }

func (d FloorDiv) MovePointer(delta int) Expr {
	return FloorDiv{LHS: d.LHS.MovePointer(delta), RHS: d.RHS.MovePointer(delta)}
}

func (d FloorDiv) WithMemory(mem Memory) Expr {
	return Div(d.LHS.WithMemory(mem), d.RHS.WithMemory(mem))
}

func (d FloorDiv) Key() string    { return "D(" + d.LHS.Key() + ";" + d.RHS.Key() + ")" }
func (d FloorDiv) String() string { return "(" + d.LHS.String() + " / " + d.RHS.String() + ")" }

// ExactDiv is division known, at construction time, to divide evenly.
// Constructed only via ExactDivide.
type ExactDiv struct {
	LHS, RHS Expr
}

func (ExactDiv) isExpr() {}

func (d ExactDiv) Simple() bool { return false }

func (d ExactDiv) References() map[int]struct{} { return unionRefs(d.LHS, d.RHS) }

func (d ExactDiv) MovePointer(delta int) Expr {
	return ExactDiv{LHS: d.LHS.MovePointer(delta), RHS: d.RHS.MovePointer(delta)}
}

func (d ExactDiv) WithMemory(mem Memory) Expr {
	return mustExactDivide(d.LHS.WithMemory(mem), d.RHS.WithMemory(mem))
}

func (d ExactDiv) Key() string    { return "X(" + d.LHS.Key() + ";" + d.RHS.Key() + ")" }
func (d ExactDiv) String() string { return "(" + d.LHS.String() + " ÷ " + d.RHS.String() + ")" }

// Mod is floor-consistent modulo: the remainder has the same sign as RHS,
// matching FloorDiv (a == Div(a,b)*b + Mod(a,b)).
type Mod struct {
	LHS, RHS Expr
}

func (Mod) isExpr() {}

func (m Mod) Simple() bool { return false }

func (m Mod) References() map[int]struct{} { return unionRefs(m.LHS, m.RHS) }

func (m Mod) MovePointer(delta int) Expr {
	return Mod{LHS: m.LHS.MovePointer(delta), RHS: m.RHS.MovePointer(delta)}
}

func (m Mod) WithMemory(mem Memory) Expr {
	return ModOf(m.LHS.WithMemory(mem), m.RHS.WithMemory(mem))
}

func (m Mod) Key() string    { return "M(" + m.LHS.Key() + ";" + m.RHS.Key() + ")" }
func (m Mod) String() string { return "(" + m.LHS.String() + " % " + m.RHS.String() + ")" }

func unionRefs(a, b Expr) map[int]struct{} {
	refs := map[int]struct{}{}
	for o := range a.References() {
		refs[o] = struct{}{}
	}
	for o := range b.References() {
		refs[o] = struct{}{}
	}
	return refs
}

func sortTerms(terms []LinearTerm) {
	sort.Slice(terms, func(i, j int) bool { return terms[i].Term.Key() < terms[j].Term.Key() })
}
