package opt

import (
	"bfopt/internal/cond"
	"bfopt/internal/ir"
)

// MoreLoopPass coalesces an If that is the only statement of another If
// into one If guarded by the conjunction of
// both conditions. The pass is disabled by default: §9 records MoreLoop
// as work-in-progress in the source this was learned from, with its
// full contract left open, so this implements only the one coalescing
// shape the outline names (deep-If nesting) rather than guessing at the
// rest.
type MoreLoopPass struct{}

func (MoreLoopPass) Name() string { return "MoreLoop" }
func (MoreLoopPass) Description() string {
	return "coalesces nested single-statement If guards into one conjunction (experimental)"
}

func (MoreLoopPass) Apply(prog *ir.Program, cfg Config) {
	walkPostOrder(prog, moreLoopBlock)
}

func moreLoopBlock(children []ir.Node) []ir.Node {
	out := make([]ir.Node, 0, len(children))
	for _, n := range children {
		out = append(out, coalesceNestedIf(n))
	}
	return out
}

func coalesceNestedIf(n ir.Node) ir.Node {
	outer, ok := n.(*ir.If)
	if !ok || len(outer.Body) != 1 {
		return n
	}
	inner, ok := outer.Body[0].(*ir.If)
	if !ok {
		return n
	}
	return &ir.If{Cond: cond.And(outer.Cond, inner.Cond), Body: inner.Body}
}
