package opt

import (
	"bfopt/internal/cond"
	"bfopt/internal/expr"
	"bfopt/internal/ir"
)

// PropagatePass forward-propagates known cell values through a sibling
// sequence and folds a mergeable statement into the most recent earlier
// write to the same cell whenever nothing has observed or overwritten
// the cells involved in between, per §4.6.4.
type PropagatePass struct{}

func (PropagatePass) Name() string { return "Propagate" }
func (PropagatePass) Description() string {
	return "propagates known cell values forward and merges redundant writes to the same cell"
}

func (PropagatePass) Apply(prog *ir.Program, cfg Config) {
	walkPostOrder(prog, propagateBlock)
}

func propagateBlock(children []ir.Node) []ir.Node {
	substs := expr.Memory{}
	backrefs := map[int]int{}  // cell -> index in out of the most recent mergeable write
	usedrefs := map[int]int{}  // cell -> index of the most recent statement that referenced it
	writeIdx := map[int]int{}  // cell -> index of the most recent statement that wrote it, merged or not
	out := make([]ir.Node, 0, len(children))

	mark := func(idx int, n ir.Node) {
		for o := range n.PostReferences().Unsure {
			usedrefs[o] = idx
		}
		for o := range n.PostUpdates().Unsure {
			writeIdx[o] = idx
		}
	}

	for _, n := range children {
		n.WithMemory(substs)

		off, isMergeable, valueRefs := mergeableInfo(n)
		if isMergeable {
			if idx, ok := backrefs[off]; ok && mergeIsValid(idx, off, valueRefs, usedrefs, writeIdx) {
				out[idx] = mergeStatements(out[idx], n)
				mark(idx, out[idx])
				backrefs[off] = idx
				updateSubstsForWrite(substs, out[idx])
				continue
			}
			out = append(out, n)
			idx := len(out) - 1
			mark(idx, n)
			backrefs[off] = idx
			updateSubstsForWrite(substs, n)
			continue
		}

		switch v := n.(type) {
		case *ir.Input:
			out = append(out, n)
			idx := len(out) - 1
			mark(idx, n)
			delete(backrefs, v.Offset)
			delete(substs, v.Offset)
		case *ir.Output, *ir.Nop:
			out = append(out, n)
			mark(len(out)-1, n)
		default:
			out = append(out, n)
			substs = expr.Memory{}
			backrefs = map[int]int{}
			usedrefs = map[int]int{}
			writeIdx = map[int]int{}
			seedFromBarrier(n, substs)
			mark(len(out)-1, n)
		}
	}
	return ir.Cleanup(out)
}

// mergeableInfo reports whether n is a SetMemory/AdjustMemory, the cell
// it writes, and the cells its written value depends on.
func mergeableInfo(n ir.Node) (offset int, ok bool, valueRefs map[int]struct{}) {
	switch v := n.(type) {
	case *ir.SetMemory:
		return v.Offset, true, v.Value.References()
	case *ir.AdjustMemory:
		return v.Offset, true, v.Delta.References()
	default:
		return 0, false, nil
	}
}

// mergeIsValid reports whether the earlier mergeable statement at idx
// writing offset can still absorb a new write: nothing has referenced
// offset since (backrefs ≥ usedrefs), and nothing has written any cell
// the new value depends on since.
func mergeIsValid(idx, offset int, valueRefs map[int]struct{}, usedrefs, writeIdx map[int]int) bool {
	if last, ok := usedrefs[offset]; ok && last > idx {
		return false
	}
	for r := range valueRefs {
		if last, ok := writeIdx[r]; ok && last > idx {
			return false
		}
	}
	return true
}

// mergeStatements combines an earlier SetMemory/AdjustMemory with a new
// one on the same cell. A new SetMemory always wins outright (it
// overwrites unconditionally); a new AdjustMemory adds its delta onto
// whatever the earlier statement produced.
func mergeStatements(earlier, latest ir.Node) ir.Node {
	switch lv := latest.(type) {
	case *ir.SetMemory:
		return &ir.SetMemory{Offset: lv.Offset, Value: lv.Value}
	case *ir.AdjustMemory:
		switch ev := earlier.(type) {
		case *ir.SetMemory:
			return &ir.SetMemory{Offset: ev.Offset, Value: expr.Add(ev.Value, lv.Delta)}
		case *ir.AdjustMemory:
			return &ir.AdjustMemory{Offset: ev.Offset, Delta: expr.Add(ev.Delta, lv.Delta)}
		}
	}
	return latest
}

// updateSubstsForWrite keeps substs current after a mergeable write: a
// SetMemory pins its literal value regardless of what came before, an
// AdjustMemory advances a known prior value by its delta, and an
// AdjustMemory on a cell with no known prior value leaves the cell
// unknown rather than asserting one.
func updateSubstsForWrite(substs expr.Memory, n ir.Node) {
	switch v := n.(type) {
	case *ir.SetMemory:
		substs[v.Offset] = v.Value
	case *ir.AdjustMemory:
		if old, ok := substs[v.Offset]; ok {
			substs[v.Offset] = expr.Add(old, v.Delta)
		} else {
			delete(substs, v.Offset)
		}
	}
}

// seedFromBarrier records the one new fact a barrier statement can leave
// behind for the statements that follow it: a While loop's exit
// condition is known false once the loop is left behind, and a
// SeekMemory's target cell holds Value once the seek stops.
func seedFromBarrier(n ir.Node, substs expr.Memory) {
	switch v := n.(type) {
	case *ir.While:
		if cne, ok := v.Cond.(cond.CellNotEqual); ok {
			substs[cne.Offset] = expr.Const(cne.Value)
		}
	case *ir.SeekMemory:
		substs[v.Target] = expr.Const(v.Value)
	}
}
