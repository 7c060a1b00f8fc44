package opt

import (
	"bfopt/internal/expr"
	"bfopt/internal/ir"
)

// StdlibPass fuses runs of constant output into a single OutputConst.
// A run may skip over pure statements (they have no observable effect
// and commute freely with output, so the merge does not disturb what
// gets printed or when a later pure computation happens); only an
// impure non-output statement (Input, or Output of a non-constant
// value) ends the run. Grounded on §4.6.6.
type StdlibPass struct{}

func (StdlibPass) Name() string { return "Stdlib" }
func (StdlibPass) Description() string {
	return "fuses consecutive constant output statements into a single OutputConst"
}

func (StdlibPass) Apply(prog *ir.Program, cfg Config) {
	walkPostOrder(prog, stdlibBlock)
}

func stdlibBlock(children []ir.Node) []ir.Node {
	out := make([]ir.Node, 0, len(children))
	var pending []byte

	flush := func() {
		if len(pending) > 0 {
			out = append(out, &ir.OutputConst{Bytes: append([]byte(nil), pending...)})
			pending = nil
		}
	}

	for _, n := range children {
		if oc, ok := n.(*ir.OutputConst); ok {
			pending = append(pending, oc.Bytes...)
			continue
		}
		if o, ok := n.(*ir.Output); ok {
			if c, ok := o.Value.(expr.Const); ok {
				pending = append(pending, outputByte(int(c)))
				continue
			}
		}
		if n.Pure() {
			out = append(out, n)
			continue
		}
		flush()
		out = append(out, n)
	}
	flush()
	return out
}

func outputByte(v int) byte {
	const m = 256
	return byte(((v % m) + m) % m)
}
