package bfparser

import (
	"testing"

	"bfopt/internal/cond"
	"bfopt/internal/diag"
	"bfopt/internal/ir"
)

func TestParseBasicInstructions(t *testing.T) {
	prog, err := Parse("+->.,")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Body) != 5 {
		t.Fatalf("expected 5 nodes, got %d: %s", len(prog.Body), prog.String())
	}
	if _, ok := prog.Body[0].(*ir.AdjustMemory); !ok {
		t.Fatalf("expected AdjustMemory, got %T", prog.Body[0])
	}
	if _, ok := prog.Body[2].(*ir.MovePointer); !ok {
		t.Fatalf("expected MovePointer, got %T", prog.Body[2])
	}
	if _, ok := prog.Body[3].(*ir.Output); !ok {
		t.Fatalf("expected Output, got %T", prog.Body[3])
	}
	if _, ok := prog.Body[4].(*ir.Input); !ok {
		t.Fatalf("expected Input, got %T", prog.Body[4])
	}
}

func TestParseSkipsNonInstructionBytes(t *testing.T) {
	prog, err := Parse("+ this is a comment - \n > ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Body) != 3 {
		t.Fatalf("expected 3 nodes after skipping comment text, got %d", len(prog.Body))
	}
}

func TestParseLoopShape(t *testing.T) {
	prog, err := Parse("[-]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 node, got %d", len(prog.Body))
	}
	w, ok := prog.Body[0].(*ir.While)
	if !ok {
		t.Fatalf("expected While, got %T", prog.Body[0])
	}
	if _, ok := w.Cond.(cond.CellNotEqual); !ok {
		t.Fatalf("expected CellNotEqual condition, got %s", w.Cond)
	}
	if len(w.Body) != 1 {
		t.Fatalf("expected 1 body node, got %d", len(w.Body))
	}
}

func TestParseUnmatchedClosingBracket(t *testing.T) {
	_, err := Parse("]")
	pe, ok := err.(*diag.ParseError)
	if !ok {
		t.Fatalf("expected *diag.ParseError, got %v", err)
	}
	if pe.Code != diag.CodeUnmatchedBracket {
		t.Fatalf("expected %s, got %s", diag.CodeUnmatchedBracket, pe.Code)
	}
}

func TestParsePrematureEndOfLoop(t *testing.T) {
	_, err := Parse("[+")
	pe, ok := err.(*diag.ParseError)
	if !ok {
		t.Fatalf("expected *diag.ParseError, got %v", err)
	}
	if pe.Code != diag.CodePrematureEndOfLoop {
		t.Fatalf("expected %s, got %s", diag.CodePrematureEndOfLoop, pe.Code)
	}
}

func TestParseNestedLoops(t *testing.T) {
	prog, err := Parse("[[-]>]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outer, ok := prog.Body[0].(*ir.While)
	if !ok {
		t.Fatalf("expected outer While, got %T", prog.Body[0])
	}
	if len(outer.Body) != 2 {
		t.Fatalf("expected 2 statements in outer body, got %d", len(outer.Body))
	}
	if _, ok := outer.Body[0].(*ir.While); !ok {
		t.Fatalf("expected inner While first, got %T", outer.Body[0])
	}
}
