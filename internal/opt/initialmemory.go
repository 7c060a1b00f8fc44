package opt

import (
	"bfopt/internal/expr"
	"bfopt/internal/ir"
)

// InitialMemoryPass prepends SetMemory(c, 0) for every cell a program
// reads before anything could have written to it, exploiting the tape
// machine's all-zero initial state. Unlike every other pass it only
// looks at the Program root, per §4.6.2.
type InitialMemoryPass struct{}

func (InitialMemoryPass) Name() string { return "InitialMemory" }
func (InitialMemoryPass) Description() string {
	return "seeds SetMemory(c, 0) for cells read before any write, using the tape's zeroed start state"
}

func (InitialMemoryPass) Apply(prog *ir.Program, cfg Config) {
	updated := map[int]struct{}{}
	var prepends []ir.Node
	cum := 0

	for _, child := range prog.Body {
		preRefs := child.PreReferences().MovePointer(cum)
		for o := range preRefs.Unsure {
			if _, already := updated[o]; already {
				continue
			}
			prepends = append(prepends, &ir.SetMemory{Offset: o, Value: expr.Const(0)})
			updated[o] = struct{}{}
		}

		touched := child.PreUpdates().Union(child.PostUpdates()).MovePointer(cum)
		for o := range touched.Unsure {
			updated[o] = struct{}{}
		}

		d, known := child.Offsets()
		if !known {
			break
		}
		cum += d
	}

	if len(prepends) > 0 {
		prog.Body = append(prepends, prog.Body...)
	}
}
