package expr

import (
	"sort"

	"bfopt/internal/diag"
)

// asLinearView decomposes e into a constant part and a coefficient map
// keyed by each non-constant term's canonical Key, for use by Add.
func asLinearView(e Expr) (constPart int, terms map[string]LinearTerm) {
	switch v := e.(type) {
	case Const:
		return int(v), map[string]LinearTerm{}
	case Linear:
		terms = make(map[string]LinearTerm, len(v.Terms))
		for _, t := range v.Terms {
			terms[t.Term.Key()] = t
		}
		return v.ConstPart, terms
	default:
		return 0, map[string]LinearTerm{e.Key(): {Coeff: 1, Term: e}}
	}
}

func buildLinear(constPart int, terms map[string]LinearTerm) Expr {
	flat := make([]LinearTerm, 0, len(terms))
	for _, t := range terms {
		if t.Coeff != 0 {
			flat = append(flat, t)
		}
	}
	if len(flat) == 0 {
		return Const(constPart)
	}
	sortTerms(flat)
	if len(flat) == 1 && constPart == 0 && flat[0].Coeff == 1 {
		return flat[0].Term
	}
	return Linear{ConstPart: constPart, Terms: flat}
}

// Add returns the canonical sum a + b.
func Add(a, b Expr) Expr {
	ac, at := asLinearView(a)
	bc, bt := asLinearView(b)
	merged := make(map[string]LinearTerm, len(at)+len(bt))
	for k, t := range at {
		merged[k] = t
	}
	for k, t := range bt {
		if existing, ok := merged[k]; ok {
			merged[k] = LinearTerm{Coeff: existing.Coeff + t.Coeff, Term: t.Term}
		} else {
			merged[k] = t
		}
	}
	return buildLinear(ac+bc, merged)
}

// Neg returns the canonical negation of a.
func Neg(a Expr) Expr {
	switch v := a.(type) {
	case Const:
		return Const(-int(v))
	case Linear:
		terms := make([]LinearTerm, len(v.Terms))
		for i, t := range v.Terms {
			terms[i] = LinearTerm{Coeff: -t.Coeff, Term: t.Term}
		}
		return buildLinear(-v.ConstPart, termMap(terms))
	default:
		return Linear{ConstPart: 0, Terms: []LinearTerm{{Coeff: -1, Term: a}}}
	}
}

// Sub returns the canonical difference a - b.
func Sub(a, b Expr) Expr {
	return Add(a, Neg(b))
}

func flattenFactors(e Expr) []Expr {
	if p, ok := e.(Product); ok {
		return p.Factors
	}
	return []Expr{e}
}

func scaleLinear(l Linear, by int) Expr {
	terms := make([]LinearTerm, len(l.Terms))
	for i, t := range l.Terms {
		terms[i] = LinearTerm{Coeff: t.Coeff * by, Term: t.Term}
	}
	return buildLinear(l.ConstPart*by, termMap(terms))
}

func termMap(terms []LinearTerm) map[string]LinearTerm {
	m := make(map[string]LinearTerm, len(terms))
	for _, t := range terms {
		m[t.Term.Key()] = t
	}
	return m
}

// Mul returns the canonical product a * b.
func Mul(a, b Expr) Expr {
	if ac, ok := a.(Const); ok {
		return scaleByConst(int(ac), b)
	}
	if bc, ok := b.(Const); ok {
		return scaleByConst(int(bc), a)
	}
	factors := append(append([]Expr{}, flattenFactors(a)...), flattenFactors(b)...)
	sort.SliceStable(factors, func(i, j int) bool { return factors[i].Key() < factors[j].Key() })
	return Product{Factors: factors}
}

func scaleByConst(v int, e Expr) Expr {
	switch v {
	case 0:
		return Const(0)
	case 1:
		return e
	case -1:
		return Neg(e)
	}
	if c, ok := e.(Const); ok {
		return Const(v * int(c))
	}
	if l, ok := e.(Linear); ok {
		return scaleLinear(l, v)
	}
	return Linear{ConstPart: 0, Terms: []LinearTerm{{Coeff: v, Term: e}}}
}

func floorDivInt(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorModInt(a, b int) int {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}

// Div returns the canonical floor division a / b.
func Div(a, b Expr) Expr {
	if bc, ok := b.(Const); ok {
		switch int(bc) {
		case 1:
			return a
		case -1:
			return Neg(a)
		}
	}
	if ac, ok := a.(Const); ok && int(ac) == 0 {
		return Const(0)
	}
	if ac, ok := a.(Const); ok {
		if bc, ok := b.(Const); ok {
			return Const(floorDivInt(int(ac), int(bc)))
		}
	}
	return FloorDiv{LHS: a, RHS: b}
}

// ExactDivide returns a / b when the division is known to be even,
// failing with a DivisibilityViolation when both operands are constants
// that do not divide evenly. Division against a non-constant RHS is
// deferred to an ExactDiv term and cannot be checked until substitution.
func ExactDivide(a, b Expr) (Expr, error) {
	if bc, ok := b.(Const); ok {
		switch int(bc) {
		case 1:
			return a, nil
		case -1:
			return Neg(a), nil
		}
	}
	if ac, ok := a.(Const); ok {
		if bc, ok := b.(Const); ok {
			av, bv := int(ac), int(bc)
			if bv == 0 || av%bv != 0 {
				return nil, &diag.DivisibilityViolation{LHS: av, RHS: bv}
			}
			return Const(av / bv), nil
		}
	}
	return ExactDiv{LHS: a, RHS: b}, nil
}

func mustExactDivide(a, b Expr) Expr {
	v, err := ExactDivide(a, b)
	if err != nil {
		panic(err)
	}
	return v
}

// ModOf returns the canonical floor-consistent modulo a % b.
func ModOf(a, b Expr) Expr {
	if ac, ok := a.(Const); ok {
		if bc, ok := b.(Const); ok {
			return Const(floorModInt(int(ac), int(bc)))
		}
	}
	return Mod{LHS: a, RHS: b}
}

// Inverse rewrites e, the new value assigned to cell by a self-referential
// update cell ← f(cell), into f⁻¹ applied to cell's new value: an
// expression for cell's prior value, written using a reference to cell
// itself to stand for whatever it now holds (the same reuse-by-offset
// convention WithMemory relies on elsewhere). Implements spec.md §3.1(v):
// g(k) is invertible; a·g(k)+b inverts to g⁻¹((k−b)/a) when g(k) appears
// exactly once; g(k)·y, g(k)/y and y/g(k), with y free of k, invert by
// the analogous rewrite. Fails whenever cell's self-reference doesn't
// appear in exactly one of these recognized shapes, or an intermediate
// division can be proven uneven.
func Inverse(e Expr, cell int) (Expr, bool) {
	if !refsCell(e, cell) {
		return nil, false
	}
	return invertTerm(e, cell, CellRef(cell))
}

// invertTerm solves "term == target" for cell, where term is known to
// reference cell in exactly one recognized invertible shape (possibly
// nested through Product/FloorDiv/ExactDiv), returning an expression for
// cell's prior value.
func invertTerm(term Expr, cell int, target Expr) (Expr, bool) {
	if r, ok := term.(Ref); ok && r.Offset == cell {
		return target, true
	}
	switch v := term.(type) {
	case Linear:
		return invertLinear(v, cell, target)
	case Product:
		inner, y, ok := splitSingleFactor(v, cell)
		if !ok {
			return nil, false
		}
		quotient, err := ExactDivide(target, y)
		if err != nil {
			return nil, false
		}
		return invertTerm(inner, cell, quotient)
	case FloorDiv:
		return invertQuotient(v.LHS, v.RHS, cell, target)
	case ExactDiv:
		return invertQuotient(v.LHS, v.RHS, cell, target)
	default:
		return nil, false
	}
}

// invertLinear handles the a·g(k)+b shape: exactly one term may
// reference cell; the rest, plus the constant part, form b.
func invertLinear(l Linear, cell int, target Expr) (Expr, bool) {
	found := -1
	var foundTerm LinearTerm
	rest := map[string]LinearTerm{}
	for i, t := range l.Terms {
		if refsCell(t.Term, cell) {
			if found != -1 {
				return nil, false
			}
			found = i
			foundTerm = t
			continue
		}
		rest[t.Term.Key()] = t
	}
	if found == -1 {
		return nil, false
	}
	residual := buildLinear(l.ConstPart, rest)
	quotient, err := ExactDivide(Sub(target, residual), Const(foundTerm.Coeff))
	if err != nil {
		return nil, false
	}
	return invertTerm(foundTerm.Term, cell, quotient)
}

// invertQuotient handles both g(k)/y and y/g(k): exactly one side may
// reference cell, the other must be free of it.
func invertQuotient(lhs, rhs Expr, cell int, target Expr) (Expr, bool) {
	lhsRefs, rhsRefs := refsCell(lhs, cell), refsCell(rhs, cell)
	switch {
	case lhsRefs && !rhsRefs:
		// term = lhs/rhs = target  =>  lhs = target*rhs
		return invertTerm(lhs, cell, Mul(target, rhs))
	case rhsRefs && !lhsRefs:
		// term = lhs/rhs = target  =>  rhs = lhs/target
		quotient, err := ExactDivide(lhs, target)
		if err != nil {
			return nil, false
		}
		return invertTerm(rhs, cell, quotient)
	default:
		return nil, false
	}
}

// splitSingleFactor finds the one factor of p referencing cell and
// returns it alongside the product of every other factor.
func splitSingleFactor(p Product, cell int) (inner, others Expr, ok bool) {
	idx := -1
	for i, f := range p.Factors {
		if refsCell(f, cell) {
			if idx != -1 {
				return nil, nil, false
			}
			idx = i
		}
	}
	if idx == -1 {
		return nil, nil, false
	}
	others = Const(1)
	for i, f := range p.Factors {
		if i != idx {
			others = Mul(others, f)
		}
	}
	return p.Factors[idx], others, true
}

func refsCell(e Expr, cell int) bool {
	_, ok := e.References()[cell]
	return ok
}
