package ir

// bodyStride sums a child sequence's per-node offsets; known is false as
// soon as any child's offset is unknown.
func bodyStride(body []Node) (delta int, known bool) {
	for _, n := range body {
		d, ok := n.Offsets()
		if !ok {
			return 0, false
		}
		delta += d
	}
	return delta, true
}

func bodyPure(body []Node) bool {
	for _, n := range body {
		if !n.Pure() {
			return false
		}
	}
	return true
}

func bodyReturns(body []Node) bool {
	for _, n := range body {
		if !n.Returns() {
			return false
		}
	}
	return true
}

// bodyPreReferences walks body forward, accumulating the cumulative
// pointer offset from each child's Offsets(); each child's pre-set is
// shifted by that cumulative offset and unioned in. Unknown offsets stop
// the walk and contribute bottom.
func bodyPreReferences(body []Node) CellSet {
	return bodyPreFold(body, Node.PreReferences)
}

func bodyPreUpdates(body []Node) CellSet {
	return bodyPreFold(body, Node.PreUpdates)
}

func bodyPreFold(body []Node, fact func(Node) CellSet) CellSet {
	cs := EmptyCellSet()
	cum := 0
	for _, n := range body {
		cs = cs.Union(fact(n).MovePointer(cum))
		d, known := n.Offsets()
		if !known {
			cs.UnsureBottom = true
			break
		}
		cum += d
	}
	return cs
}

// bodyPostReferences is the mirror image of bodyPreReferences: it walks
// body in reverse, accumulating a negative cumulative offset.
func bodyPostReferences(body []Node) CellSet {
	return bodyPostFold(body, Node.PostReferences)
}

func bodyPostUpdates(body []Node) CellSet {
	return bodyPostFold(body, Node.PostUpdates)
}

func bodyPostFold(body []Node, fact func(Node) CellSet) CellSet {
	cs := EmptyCellSet()
	cum := 0
	for i := len(body) - 1; i >= 0; i-- {
		n := body[i]
		cs = cs.Union(fact(n).MovePointer(cum))
		d, known := n.Offsets()
		if !known {
			cs.UnsureBottom = true
			break
		}
		cum -= d
	}
	return cs
}

// promoteToUnsure demotes every sure and unsure member of cs into the
// unsure set of the result, used by If/Repeat/While whose body might not
// execute at all.
func promoteToUnsure(cs CellSet) CellSet {
	out := EmptyCellSet()
	for o := range cs.Sure {
		out.Unsure[o] = struct{}{}
	}
	for o := range cs.Unsure {
		out.Unsure[o] = struct{}{}
	}
	out.UnsureBottom = cs.SureBottom || cs.UnsureBottom
	return out
}

// shiftedSureOrBottom builds the "cond.refs shifted by the loop's exit
// offset" half of If/Repeat's postreferences: sure (and unsure) when
// stride is known, bottom when it is not.
func shiftedSureOrBottom(refs map[int]struct{}, strideKnown bool, stride int) CellSet {
	cs := EmptyCellSet()
	if !strideKnown {
		cs.SureBottom = true
		cs.UnsureBottom = true
		return cs
	}
	for o := range refs {
		shifted := o - stride
		cs.Sure[shifted] = struct{}{}
		cs.Unsure[shifted] = struct{}{}
	}
	return cs
}
