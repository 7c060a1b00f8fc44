package opt

import "bfopt/internal/ir"

// RemoveDeadPass deletes a write to a cell when nothing reads it before
// the next write overwrites it. It tracks unusedcells, a map from cell
// to the index of the most recent statement whose only visible effect
// was writing that cell, and unusednodes, the set of indices proven
// dead so far. A barrier with unknown pointer offset invalidates the
// whole map, since a later statement at an unresolvable offset might
// read any cell. A write still pending when a block ends is kept, at the
// program root too, so the final tape state is left unchanged. Grounded
// on §4.6.5.
type RemoveDeadPass struct{}

func (RemoveDeadPass) Name() string { return "RemoveDead" }
func (RemoveDeadPass) Description() string {
	return "deletes writes to a cell that nothing reads before the next write"
}

func (RemoveDeadPass) Apply(prog *ir.Program, cfg Config) {
	walkPostOrder(prog, func(children []ir.Node) []ir.Node {
		return removeDeadBlock(children, false)
	})
	prog.Body = removeDeadBlock(prog.Body, true)
}

func removeDeadBlock(children []ir.Node, isRoot bool) []ir.Node {
	unusedcells := map[int]int{}
	unusednodes := map[int]bool{}
	out := append([]ir.Node(nil), children...)

	for i, n := range children {
		refs := n.PreReferences().Union(n.PostReferences())
		for o := range refs.Unsure {
			delete(unusedcells, o)
		}

		switch v := n.(type) {
		case *ir.SetMemory:
			if prev, ok := unusedcells[v.Offset]; ok {
				unusednodes[prev] = true
			}
			unusedcells[v.Offset] = i
		case *ir.AdjustMemory:
			if prev, ok := unusedcells[v.Offset]; ok {
				unusednodes[prev] = true
			}
			unusedcells[v.Offset] = i
		case *ir.Input:
			if prev, ok := unusedcells[v.Offset]; ok {
				unusednodes[prev] = true
			}
			delete(unusedcells, v.Offset)
		case *ir.Output, *ir.OutputConst, *ir.Nop:
			// inert: no write, references already accounted for above
		default:
			// barrier: MovePointer, While, If, SeekMemory
			unusedcells = map[int]int{}
		}
	}

	for i := range out {
		if unusednodes[i] {
			out[i] = &ir.Nop{}
		}
	}
	return ir.Cleanup(out)
}
