package opt

import (
	"bfopt/internal/expr"
	"bfopt/internal/ir"
)

// FlattenPass collapses adjacent SetMemory/AdjustMemory/MovePointer
// siblings into a compact per-cell map plus a single trailing
// MovePointer, grounded on §4.6.1.
type FlattenPass struct{}

func (FlattenPass) Name() string { return "Flatten" }
func (FlattenPass) Description() string {
	return "merges adjacent memory writes and pointer moves into a single map per block"
}

func (FlattenPass) Apply(prog *ir.Program, cfg Config) {
	walkPostOrder(prog, flattenBlock)
}

type cellWrite struct {
	isSet bool
	value expr.Expr
}

func flattenBlock(children []ir.Node) []ir.Node {
	out := make([]ir.Node, 0, len(children))
	cellMap := map[int]cellWrite{}
	order := make([]int, 0, 4)
	cum := 0

	ensureOrder := func(off int) {
		for _, o := range order {
			if o == off {
				return
			}
		}
		order = append(order, off)
	}

	flush := func() {
		for _, off := range order {
			w := cellMap[off]
			if w.isSet {
				out = append(out, &ir.SetMemory{Offset: off, Value: w.value})
			} else {
				out = append(out, &ir.AdjustMemory{Offset: off, Delta: w.value})
			}
		}
		cellMap = map[int]cellWrite{}
		order = order[:0]
	}

	for _, n := range children {
		switch v := n.(type) {
		case *ir.MovePointer:
			cum += v.Delta
		case *ir.SetMemory:
			off := v.Offset + cum
			ensureOrder(off)
			cellMap[off] = cellWrite{isSet: true, value: v.Value.MovePointer(cum)}
		case *ir.AdjustMemory:
			off := v.Offset + cum
			delta := v.Delta.MovePointer(cum)
			if existing, ok := cellMap[off]; ok {
				existing.value = expr.Add(existing.value, delta)
				cellMap[off] = existing
			} else {
				ensureOrder(off)
				cellMap[off] = cellWrite{isSet: false, value: delta}
			}
		default:
			flush()
			n.MovePointer(cum)
			out = append(out, n)
		}
	}
	flush()
	if cum != 0 {
		out = append(out, &ir.MovePointer{Delta: cum})
	}
	return out
}
