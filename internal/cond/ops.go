package cond

import "bfopt/internal/expr"

func gcdInt(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// asAffine decomposes e into (constPart, singleTermCoeff, singleTerm) when
// e is a plain Ref, Const, or single-term Linear, with ok=false otherwise
// (Product, FloorDiv, ExactDiv, Mod, or a multi-term Linear, none of which
// NewEqual/NewNotEqual specialize further).
func asAffine(e expr.Expr) (constPart, coeff int, term expr.Expr, ok bool) {
	switch v := e.(type) {
	case expr.Const:
		return int(v), 0, nil, true
	case expr.Ref:
		return 0, 1, v, true
	case expr.Linear:
		if len(v.Terms) != 1 {
			return 0, 0, nil, false
		}
		return v.ConstPart, v.Terms[0].Coeff, v.Terms[0].Term, true
	default:
		return 0, 0, nil, false
	}
}

// NewEqual constructs the canonical predicate Expr == Value.
func NewEqual(e expr.Expr, value int) Cond {
	constPart, coeff, term, ok := asAffine(e)
	if !ok {
		return EqualExpr{Expr: e, Value: value}
	}
	if term == nil {
		if constPart == value {
			return True{}
		}
		return False{}
	}
	target := value - constPart
	if coeff == 1 {
		if r, ok := term.(expr.Ref); ok {
			return CellEqual{Offset: r.Offset, Value: target}
		}
		return EqualExpr{Expr: term, Value: target}
	}
	g := gcdInt(coeff, target)
	if g == 0 {
		g = 1
	}
	// Only descale when it divides the target evenly: cell values wrap
	// modulo 2^cellwidth, so an uneven remainder does not prove the
	// equation unsatisfiable and must be kept in its coarser form.
	if target%coeff == 0 {
		simplified := target / coeff
		if r, ok := term.(expr.Ref); ok {
			return CellEqual{Offset: r.Offset, Value: simplified}
		}
	}
	return EqualExpr{Expr: e, Value: value}
}

// NewNotEqual constructs the canonical predicate Expr != Value.
func NewNotEqual(e expr.Expr, value int) Cond {
	constPart, coeff, term, ok := asAffine(e)
	if !ok {
		return NotEqualExpr{Expr: e, Value: value}
	}
	if term == nil {
		if constPart != value {
			return True{}
		}
		return False{}
	}
	target := value - constPart
	if coeff == 1 {
		if r, ok := term.(expr.Ref); ok {
			return CellNotEqual{Offset: r.Offset, Value: target}
		}
		return NotEqualExpr{Expr: term, Value: target}
	}
	if target%coeff == 0 {
		simplified := target / coeff
		if r, ok := term.(expr.Ref); ok {
			return CellNotEqual{Offset: r.Offset, Value: simplified}
		}
	}
	return NotEqualExpr{Expr: e, Value: value}
}

func isFalse(c Cond) bool { _, ok := c.(False); return ok }
func isTrue(c Cond) bool  { _, ok := c.(True); return ok }

// And returns the canonical conjunction of clauses: flattened, with True
// absorbed and any False collapsing the whole conjunction to False.
// Range clauses sharing the same underlying expression are intersected
// rather than kept as separate conjuncts, and a clause together with its
// own negation collapses the conjunction to False.
func And(clauses ...Cond) Cond {
	flat := make([]Cond, 0, len(clauses))
	for _, c := range clauses {
		if isTrue(c) {
			continue
		}
		if isFalse(c) {
			return False{}
		}
		if sub, ok := c.(Conjunction); ok {
			flat = append(flat, sub.Clauses...)
			continue
		}
		flat = append(flat, c)
	}
	flat = mergeRanges(flat, true)
	flat = dedupe(flat)
	keys := make(map[string]bool, len(flat))
	for _, c := range flat {
		keys[c.Key()] = true
	}
	for _, c := range flat {
		if keys[c.Negate().Key()] {
			return False{}
		}
	}
	switch len(flat) {
	case 0:
		return True{}
	case 1:
		return flat[0]
	default:
		return Conjunction{Clauses: flat}
	}
}

// Or returns the canonical disjunction of clauses: flattened, with False
// absorbed and any True collapsing the whole disjunction to True. Range
// clauses sharing the same underlying expression are unioned rather than
// kept as separate disjuncts, and a clause together with its own negation
// collapses the disjunction to True.
func Or(clauses ...Cond) Cond {
	flat := make([]Cond, 0, len(clauses))
	for _, c := range clauses {
		if isFalse(c) {
			continue
		}
		if isTrue(c) {
			return True{}
		}
		if sub, ok := c.(Disjunction); ok {
			flat = append(flat, sub.Clauses...)
			continue
		}
		flat = append(flat, c)
	}
	flat = mergeRanges(flat, false)
	flat = dedupe(flat)
	keys := make(map[string]bool, len(flat))
	for _, c := range flat {
		keys[c.Key()] = true
	}
	for _, c := range flat {
		if keys[c.Negate().Key()] {
			return True{}
		}
	}
	switch len(flat) {
	case 0:
		return False{}
	case 1:
		return flat[0]
	default:
		return Disjunction{Clauses: flat}
	}
}

func dedupe(clauses []Cond) []Cond {
	seen := map[string]bool{}
	out := make([]Cond, 0, len(clauses))
	for _, c := range clauses {
		k := c.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

// mergeRanges combines Range clauses over the same expression key by
// intersection (intersect=true, for And) or union (intersect=false, for
// Or), leaving every other clause untouched.
func mergeRanges(clauses []Cond, intersect bool) []Cond {
	byExpr := map[string]Range{}
	order := []string{}
	rest := make([]Cond, 0, len(clauses))
	for _, c := range clauses {
		r, ok := c.(Range)
		if !ok {
			rest = append(rest, c)
			continue
		}
		k := r.Expr.Key()
		if existing, ok := byExpr[k]; ok {
			if intersect {
				existing.Intervals = intersectIntervals(existing.Intervals, r.Intervals)
			} else {
				existing.Intervals = unionIntervals(existing.Intervals, r.Intervals)
			}
			byExpr[k] = existing
		} else {
			byExpr[k] = r
			order = append(order, k)
		}
	}
	for _, k := range order {
		rest = append(rest, NewRange(byExpr[k].Expr, byExpr[k].Intervals))
	}
	return rest
}
