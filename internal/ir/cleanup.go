package ir

import (
	"bfopt/internal/cond"
	"bfopt/internal/expr"
)

// Cleanup runs the single forward simplification pass nearly every
// optimization pass performs in tail position: dropping falsy nodes,
// folding adjacent MovePointer nodes into the nodes that follow them,
// splicing always-true Ifs and Repeats whose bodies hold only simple
// SetMemory/AdjustMemory statements in place, and truncating any
// statements after one that never returns.
func Cleanup(body []Node) []Node {
	cur := NewCursor(body)
	runningOffset := 0

	for {
		n, ok := cur.Next()
		if !ok {
			break
		}

		if runningOffset != 0 {
			n.MovePointer(runningOffset)
		}

		if mp, isMove := n.(*MovePointer); isMove {
			runningOffset += mp.Delta
			cur.Replace()
			continue
		}

		if n.Falsy() {
			cur.Replace()
			continue
		}

		if ifNode, isIf := n.(*If); isIf {
			if _, condIsTrue := ifNode.Cond.(cond.True); condIsTrue {
				cur.Replace(ifNode.Body...)
				continue
			}
		}

		if rep, isRepeat := n.(*Repeat); isRepeat {
			if spliced, ok := spliceConstantRepeat(rep); ok {
				cur.Replace(spliced...)
				continue
			}
		}

		if !n.Returns() {
			// n itself stays; only the statements after it are unreachable.
			cur.Truncate()
			cur.Append(n)
			break
		}
	}

	result := cur.Result()
	if runningOffset != 0 {
		result = append(result, &MovePointer{Delta: runningOffset})
	}
	return result
}

// spliceConstantRepeat implements cleanup rule 4: a Repeat whose body is
// entirely simple SetMemory/AdjustMemory statements can be unrolled.
// Every AdjustMemory's delta is scaled by Count first, regardless of
// what else is in the body — a SetMemory sibling doesn't change how
// many times the other statements' deltas actually accumulate. A
// pure-AdjustMemory body is then spliced directly; a body containing a
// SetMemory is instead guarded by If(count != 0, body) since repeating
// it any positive number of times has the same final effect as running
// it once.
func spliceConstantRepeat(rep *Repeat) ([]Node, bool) {
	if len(rep.Body) == 0 {
		return nil, false
	}
	hasSet := false
	for _, c := range rep.Body {
		switch v := c.(type) {
		case *SetMemory:
			if !v.Value.Simple() {
				return nil, false
			}
			hasSet = true
		case *AdjustMemory:
			if !v.Delta.Simple() {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	scaled := make([]Node, len(rep.Body))
	for i, c := range rep.Body {
		if am, ok := c.(*AdjustMemory); ok {
			scaled[i] = &AdjustMemory{Offset: am.Offset, Delta: expr.Mul(rep.Count, am.Delta)}
		} else {
			scaled[i] = c
		}
	}
	if hasSet {
		return []Node{&If{Cond: cond.NewNotEqual(rep.Count, 0), Body: scaled}}, true
	}
	return scaled, true
}
