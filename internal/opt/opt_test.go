package opt

import (
	"testing"

	"bfopt/internal/cond"
	"bfopt/internal/expr"
	"bfopt/internal/ir"
)

func defaultConfig() Config {
	return Config{CellWidth: 8}
}

// ++++++[->++<] compiles (before optimization) to a counted loop: six
// increments to cell 0, then while cell 0 != 0 { cell 1 += 2; cell 0 -= 1 }.
// The pipeline should reduce this to Program[{1}=12, {0}=0].
func TestPipelineCountedLoop(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.AdjustMemory{Offset: 0, Delta: expr.Const(6)},
		&ir.While{
			Cond: cond.NewNotEqual(expr.CellRef(0), 0),
			Body: []ir.Node{
				&ir.AdjustMemory{Offset: 1, Delta: expr.Const(2)},
				&ir.AdjustMemory{Offset: 0, Delta: expr.Const(-1)},
			},
		},
	}}

	NewPipeline(defaultConfig()).Run(prog)

	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d: %s", len(prog.Body), prog.String())
	}
	var sawCell1, sawCell0 bool
	for _, n := range prog.Body {
		sm, ok := n.(*ir.SetMemory)
		if !ok {
			t.Fatalf("expected only SetMemory statements to survive, got %T", n)
		}
		c, ok := sm.Value.(expr.Const)
		if !ok {
			t.Fatalf("expected constant-valued SetMemory, got %s", sm.Value)
		}
		switch sm.Offset {
		case 1:
			sawCell1 = true
			if int(c) != 12 {
				t.Fatalf("expected cell 1 = 12, got %d", int(c))
			}
		case 0:
			sawCell0 = true
			if int(c) != 0 {
				t.Fatalf("expected cell 0 = 0, got %d", int(c))
			}
		}
	}
	if !sawCell1 || !sawCell0 {
		t.Fatalf("missing expected cell assignments: %s", prog.String())
	}
}

// [-] clears the current cell outright: while cell 0 != 0 { cell 0 -= 1 }.
func TestPipelineClearCell(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.While{
			Cond: cond.NewNotEqual(expr.CellRef(0), 0),
			Body: []ir.Node{
				&ir.AdjustMemory{Offset: 0, Delta: expr.Const(-1)},
			},
		},
	}}

	NewPipeline(defaultConfig()).Run(prog)

	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d: %s", len(prog.Body), prog.String())
	}
	sm, ok := prog.Body[0].(*ir.SetMemory)
	if !ok || sm.Offset != 0 {
		t.Fatalf("expected SetMemory(0, _), got %s", prog.String())
	}
	if c, ok := sm.Value.(expr.Const); !ok || int(c) != 0 {
		t.Fatalf("expected cell 0 = 0, got %s", prog.String())
	}
}

// [>] is a bare pointer seek: while cell 0 != 0 { pointer += 1 }.
func TestPipelineSeek(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.While{
			Cond: cond.NewNotEqual(expr.CellRef(0), 0),
			Body: []ir.Node{&ir.MovePointer{Delta: 1}},
		},
	}}

	NewPipeline(defaultConfig()).Run(prog)

	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d: %s", len(prog.Body), prog.String())
	}
	seek, ok := prog.Body[0].(*ir.SeekMemory)
	if !ok {
		t.Fatalf("expected SeekMemory, got %T: %s", prog.Body[0], prog.String())
	}
	if seek.Target != 0 || seek.Stride != 1 || seek.Value != 0 {
		t.Fatalf("unexpected seek shape: %+v", seek)
	}
}

// +[] loops forever: the body never touches the counter cell, so no
// finite iteration count can be derived and the loop is irreducible.
func TestPipelineInfiniteLoopTruncates(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.AdjustMemory{Offset: 0, Delta: expr.Const(1)},
		&ir.While{Cond: cond.True{}, Body: nil},
		&ir.Output{Value: expr.CellRef(0)},
	}}

	NewPipeline(defaultConfig()).Run(prog)

	for _, n := range prog.Body {
		if _, ok := n.(*ir.Output); ok {
			t.Fatalf("statement after an infinite loop should be unreachable: %s", prog.String())
		}
	}
	found := false
	for _, n := range prog.Body {
		if w, ok := n.(*ir.While); ok {
			if _, isTrue := w.Cond.(cond.True); isTrue {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected the infinite loop to survive as the terminal statement: %s", prog.String())
	}
}

// ++++++++[>++++++++<-]>. multiplies 8*8=64 into cell 1 and prints it;
// the Stdlib pass should fold the print into an OutputConst and the
// tail SetMemory(0, 0) should remain from the counted loop.
func TestPipelineMultiplyAndPrintConstant(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.AdjustMemory{Offset: 0, Delta: expr.Const(8)},
		&ir.While{
			Cond: cond.NewNotEqual(expr.CellRef(0), 0),
			Body: []ir.Node{
				&ir.MovePointer{Delta: 1},
				&ir.AdjustMemory{Offset: 0, Delta: expr.Const(8)},
				&ir.MovePointer{Delta: -1},
				&ir.AdjustMemory{Offset: 0, Delta: expr.Const(-1)},
			},
		},
		&ir.MovePointer{Delta: 1},
		&ir.Output{Value: expr.CellRef(0)},
	}}

	NewPipeline(defaultConfig()).Run(prog)

	var sawOutputConst, sawZeroCell0 bool
	for _, n := range prog.Body {
		switch v := n.(type) {
		case *ir.OutputConst:
			sawOutputConst = true
			if len(v.Bytes) != 1 || v.Bytes[0] != 64 {
				t.Fatalf("expected a single byte 64, got %v", v.Bytes)
			}
		case *ir.SetMemory:
			if v.Offset == 0 {
				if c, ok := v.Value.(expr.Const); ok && int(c) == 0 {
					sawZeroCell0 = true
				}
			}
		}
	}
	if !sawOutputConst {
		t.Fatalf("expected the print to fold into a constant output: %s", prog.String())
	}
	if !sawZeroCell0 {
		t.Fatalf("expected the counted loop's counter to settle at 0: %s", prog.String())
	}
}

func TestFlattenMergesAdjacentWrites(t *testing.T) {
	children := []ir.Node{
		&ir.AdjustMemory{Offset: 0, Delta: expr.Const(1)},
		&ir.MovePointer{Delta: 1},
		&ir.AdjustMemory{Offset: -1, Delta: expr.Const(2)},
	}
	got := flattenBlock(children)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements (write + trailing move), got %d: %v", len(got), got)
	}
}

func TestInitialMemorySeedsReadBeforeWrite(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.Output{Value: expr.CellRef(0)},
	}}
	InitialMemoryPass{}.Apply(prog, defaultConfig())
	if len(prog.Body) != 2 {
		t.Fatalf("expected a seeded SetMemory prepended, got %d: %s", len(prog.Body), prog.String())
	}
	sm, ok := prog.Body[0].(*ir.SetMemory)
	if !ok || sm.Offset != 0 {
		t.Fatalf("expected SetMemory(0, 0) first, got %s", prog.String())
	}
}

func TestPropagateMergesConsecutiveAdjusts(t *testing.T) {
	children := []ir.Node{
		&ir.AdjustMemory{Offset: 0, Delta: expr.Const(1)},
		&ir.AdjustMemory{Offset: 0, Delta: expr.Const(2)},
	}
	got := propagateBlock(children)
	if len(got) != 1 {
		t.Fatalf("expected the two adjusts to merge, got %d: %v", len(got), got)
	}
	am, ok := got[0].(*ir.AdjustMemory)
	if !ok {
		t.Fatalf("expected AdjustMemory, got %T", got[0])
	}
	if c, ok := am.Delta.(expr.Const); !ok || int(c) != 3 {
		t.Fatalf("expected combined delta 3, got %s", am.Delta)
	}
}

func TestPropagateDoesNotMergeAcrossAReference(t *testing.T) {
	children := []ir.Node{
		&ir.AdjustMemory{Offset: 0, Delta: expr.Const(1)},
		&ir.Output{Value: expr.CellRef(0)},
		&ir.AdjustMemory{Offset: 0, Delta: expr.Const(2)},
	}
	got := propagateBlock(children)
	count := 0
	for _, n := range got {
		if _, ok := n.(*ir.AdjustMemory); ok {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected both adjusts to survive separately across the read, got %d: %v", count, got)
	}
}

func TestPropagateSubstitutesKnownValue(t *testing.T) {
	children := []ir.Node{
		&ir.SetMemory{Offset: 0, Value: expr.Const(5)},
		&ir.Output{Value: expr.CellRef(0)},
	}
	got := propagateBlock(children)
	var out *ir.Output
	for _, n := range got {
		if o, ok := n.(*ir.Output); ok {
			out = o
		}
	}
	if out == nil {
		t.Fatalf("expected an Output to survive: %v", got)
	}
	if c, ok := out.Value.(expr.Const); !ok || int(c) != 5 {
		t.Fatalf("expected the output value to be substituted to 5, got %s", out.Value)
	}
}

func TestRemoveDeadDropsUnreadWriteAtRoot(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.SetMemory{Offset: 0, Value: expr.Const(1)},
		&ir.SetMemory{Offset: 0, Value: expr.Const(2)},
	}}
	RemoveDeadPass{}.Apply(prog, defaultConfig())
	if len(prog.Body) != 1 {
		t.Fatalf("expected the shadowed write dropped, got %d: %s", len(prog.Body), prog.String())
	}
	sm, ok := prog.Body[0].(*ir.SetMemory)
	if !ok {
		t.Fatalf("expected SetMemory, got %T", prog.Body[0])
	}
	if c, ok := sm.Value.(expr.Const); !ok || int(c) != 2 {
		t.Fatalf("expected the surviving write to be 2, got %s", sm.Value)
	}
}

func TestRemoveDeadKeepsWriteThatIsLaterRead(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.SetMemory{Offset: 0, Value: expr.Const(1)},
		&ir.Output{Value: expr.CellRef(0)},
		&ir.SetMemory{Offset: 0, Value: expr.Const(2)},
	}}
	RemoveDeadPass{}.Apply(prog, defaultConfig())
	count := 0
	for _, n := range prog.Body {
		if _, ok := n.(*ir.SetMemory); ok {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected both writes to survive since one is read in between, got %d: %s", count, prog.String())
	}
}

func TestStdlibFusesConstantOutputRun(t *testing.T) {
	children := []ir.Node{
		&ir.Output{Value: expr.Const('A')},
		&ir.Output{Value: expr.Const('B')},
		&ir.OutputConst{Bytes: []byte("C")},
	}
	got := stdlibBlock(children)
	if len(got) != 1 {
		t.Fatalf("expected a single fused OutputConst, got %d: %v", len(got), got)
	}
	oc, ok := got[0].(*ir.OutputConst)
	if !ok {
		t.Fatalf("expected OutputConst, got %T", got[0])
	}
	if string(oc.Bytes) != "ABC" {
		t.Fatalf("expected fused bytes ABC, got %q", oc.Bytes)
	}
}

func TestStdlibBreaksOnInput(t *testing.T) {
	children := []ir.Node{
		&ir.Output{Value: expr.Const('A')},
		&ir.Input{Offset: 0},
		&ir.Output{Value: expr.Const('B')},
	}
	got := stdlibBlock(children)
	var outputConsts int
	for _, n := range got {
		if _, ok := n.(*ir.OutputConst); ok {
			outputConsts++
		}
	}
	if outputConsts != 2 {
		t.Fatalf("expected Input to split the run into two OutputConsts, got %d: %v", outputConsts, got)
	}
}

func TestMoreLoopCoalescesNestedIf(t *testing.T) {
	inner := &ir.If{Cond: cond.NewEqual(expr.CellRef(1), 0), Body: []ir.Node{&ir.AdjustMemory{Offset: 2, Delta: expr.Const(1)}}}
	outer := &ir.If{Cond: cond.NewEqual(expr.CellRef(0), 0), Body: []ir.Node{inner}}

	got := coalesceNestedIf(outer)
	merged, ok := got.(*ir.If)
	if !ok {
		t.Fatalf("expected a coalesced If, got %T", got)
	}
	if _, ok := merged.Cond.(cond.Conjunction); !ok {
		t.Fatalf("expected a conjunction of both guards, got %s", merged.Cond)
	}
	if len(merged.Body) != 1 {
		t.Fatalf("expected the innermost body to survive, got %v", merged.Body)
	}
}

func TestGcdexSatisfiesBezoutIdentity(t *testing.T) {
	cases := [][2]int{{6, 256}, {1, 256}, {255, 256}, {17, 100}}
	for _, c := range cases {
		a, b := c[0], c[1]
		g, u, v := gcdex(a, b)
		if u*a+v*b != g {
			t.Fatalf("gcdex(%d,%d): %d*%d+%d*%d = %d, want %d", a, b, u, a, v, b, u*a+v*b, g)
		}
	}
}
