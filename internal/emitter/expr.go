package emitter

import (
	"fmt"
	"strings"

	"bfopt/internal/cond"
	"bfopt/internal/expr"
)

// compileExpr renders e as a C expression of type unsigned long long.
// Division and modulo route through the floor-semantics helpers in the
// preamble since C's native / and % truncate toward zero.
func compileExpr(e expr.Expr) string {
	switch v := e.(type) {
	case expr.Const:
		return fmt.Sprintf("((unsigned long long)(%d))", int(v))

	case expr.Ref:
		return fmt.Sprintf("((unsigned long long)tape[p + (%d)])", v.Offset)

	case expr.Linear:
		var b strings.Builder
		b.WriteString("(")
		fmt.Fprintf(&b, "((unsigned long long)(%d))", v.ConstPart)
		for _, term := range v.Terms {
			fmt.Fprintf(&b, " + (((unsigned long long)(%d)) * %s)", term.Coeff, compileExpr(term.Term))
		}
		b.WriteString(")")
		return b.String()

	case expr.Product:
		parts := make([]string, len(v.Factors))
		for i, f := range v.Factors {
			parts[i] = compileExpr(f)
		}
		return "(" + strings.Join(parts, " * ") + ")"

	case expr.FloorDiv:
		return fmt.Sprintf("((unsigned long long)bf_floordiv((int64_t)(%s), (int64_t)(%s)))",
			compileExpr(v.LHS), compileExpr(v.RHS))

	case expr.ExactDiv:
		return fmt.Sprintf("((unsigned long long)((int64_t)(%s) / (int64_t)(%s)))",
			compileExpr(v.LHS), compileExpr(v.RHS))

	case expr.Mod:
		return fmt.Sprintf("((unsigned long long)bf_floormod((int64_t)(%s), (int64_t)(%s)))",
			compileExpr(v.LHS), compileExpr(v.RHS))

	default:
		return fmt.Sprintf("/* unrecognized expr %T */ 0", e)
	}
}

// compileCond renders c as a C boolean expression. CellEqual/CellNotEqual
// compare directly against the tape (whose values are already reduced
// mod 2^cellwidth by C's own unsigned wraparound), so their literal is
// normalized into that same range first.
func compileCond(c cond.Cond, mod int64) string {
	switch v := c.(type) {
	case cond.True:
		return "1"
	case cond.False:
		return "0"

	case cond.CellEqual:
		return fmt.Sprintf("(tape[p + (%d)] == %d)", v.Offset, normalizeMod(int64(v.Value), mod))
	case cond.CellNotEqual:
		return fmt.Sprintf("(tape[p + (%d)] != %d)", v.Offset, normalizeMod(int64(v.Value), mod))

	case cond.EqualExpr:
		return fmt.Sprintf("((int64_t)(%s) == %d)", compileExpr(v.Expr), v.Value)
	case cond.NotEqualExpr:
		return fmt.Sprintf("((int64_t)(%s) != %d)", compileExpr(v.Expr), v.Value)

	case cond.Range:
		return compileRange(v)

	case cond.Conjunction:
		parts := make([]string, len(v.Clauses))
		for i, cl := range v.Clauses {
			parts[i] = compileCond(cl, mod)
		}
		return "(" + strings.Join(parts, " && ") + ")"

	case cond.Disjunction:
		parts := make([]string, len(v.Clauses))
		for i, cl := range v.Clauses {
			parts[i] = compileCond(cl, mod)
		}
		return "(" + strings.Join(parts, " || ") + ")"

	default:
		return fmt.Sprintf("/* unrecognized cond %T */ 0", c)
	}
}

func compileRange(r cond.Range) string {
	val := fmt.Sprintf("((int64_t)(%s))", compileExpr(r.Expr))
	parts := make([]string, len(r.Intervals))
	for i, iv := range r.Intervals {
		var clauses []string
		if iv.Min != nil {
			clauses = append(clauses, fmt.Sprintf("(%s >= %d)", val, *iv.Min))
		}
		if iv.Max != nil {
			clauses = append(clauses, fmt.Sprintf("(%s <= %d)", val, *iv.Max))
		}
		if len(clauses) == 0 {
			parts[i] = "1"
		} else {
			parts[i] = "(" + strings.Join(clauses, " && ") + ")"
		}
	}
	return "(" + strings.Join(parts, " || ") + ")"
}
