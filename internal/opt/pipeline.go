// Package opt implements the fixed pipeline of middle-end optimization
// passes: Flatten, SimpleLoop, InitialMemory, Propagate, RemoveDead and
// Stdlib, plus the disabled-by-default MoreLoop peephole. Each pass
// mutates an *ir.Program in place.
package opt

import "bfopt/internal/ir"

// Config carries the only cross-pass state the pipeline needs: the tape
// cell width (which bounds loop-count arithmetic in SimpleLoop) and
// whether to enable the experimental MoreLoop pass.
type Config struct {
	CellWidth      uint
	EnableMoreLoop bool
}

// Modulus returns 2^CellWidth, the wraparound modulus for cell values.
func (c Config) Modulus() int {
	return 1 << c.CellWidth
}

// Pass is one stage of the optimization pipeline.
type Pass interface {
	Name() string
	Description() string
	Apply(prog *ir.Program, cfg Config)
}

// Pipeline runs an ordered sequence of passes to completion, one after
// another, against a single Program.
type Pipeline struct {
	Passes []Pass
	Config Config
}

// NewPipeline builds the fixed pass sequence from §4.6.7: Flatten,
// SimpleLoop, InitialMemory, Propagate, SimpleLoop, Propagate,
// RemoveDead, Stdlib. MoreLoop is never part of the fixed sequence; Run
// runs it after the sequence only when Config.EnableMoreLoop is set.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{
		Config: cfg,
		Passes: []Pass{
			FlattenPass{},
			SimpleLoopPass{},
			InitialMemoryPass{},
			PropagatePass{},
			SimpleLoopPass{},
			PropagatePass{},
			RemoveDeadPass{},
			StdlibPass{},
		},
	}
}

// Run executes every pass in order against prog.
func (p *Pipeline) Run(prog *ir.Program) {
	for _, pass := range p.Passes {
		pass.Apply(prog, p.Config)
	}
	if p.Config.EnableMoreLoop {
		MoreLoopPass{}.Apply(prog, p.Config)
	}
}

// walkPostOrder applies fn to the child list of every complex node in
// the tree rooted at n, children before parents, then to n's own
// children (n itself, if it is Program, has no parent to revisit).
func walkPostOrder(n ir.Node, fn func([]ir.Node) []ir.Node) {
	cn, ok := n.(ir.ComplexNode)
	if !ok {
		return
	}
	for _, c := range cn.Children() {
		walkPostOrder(c, fn)
	}
	cn.SetChildren(fn(cn.Children()))
}
