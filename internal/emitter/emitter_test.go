package emitter

import (
	"strings"
	"testing"

	"bfopt/internal/expr"
	"bfopt/internal/ir"
)

func TestEmitProducesCompilableShape(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.SetMemory{Offset: 1, Value: expr.Const(12)},
		&ir.SetMemory{Offset: 0, Value: expr.Const(0)},
	}}

	out, err := Emit(prog, Options{CellWidth: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"#include <stdint.h>", "int main(void)", "uint8_t", "tape[p + (1)] = (TAPE_T)", "return 0;"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected generated C to contain %q:\n%s", want, out)
		}
	}
}

func TestEmitOutputConstEscapesBytes(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.OutputConst{Bytes: []byte("@\n")},
	}}
	out, err := Emit(prog, Options{CellWidth: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `\x40\x0a`) {
		t.Fatalf("expected escaped byte literal, got:\n%s", out)
	}
}

func TestEmitDebugAnnotatesComplexNodes(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.Repeat{Count: expr.Const(3), Body: []ir.Node{&ir.AdjustMemory{Offset: 0, Delta: expr.Const(1)}}},
	}}
	out, err := Emit(prog, Options{CellWidth: 8, Debug: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "/* Repeat: stride=") {
		t.Fatalf("expected a debug comment for the Repeat node, got:\n%s", out)
	}
}

func TestEmitSelectsTapeTypeByCellWidth(t *testing.T) {
	prog := &ir.Program{}
	out, err := Emit(prog, Options{CellWidth: 16})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "typedef uint16_t TAPE_T;") {
		t.Fatalf("expected uint16_t tape type, got:\n%s", out)
	}
}
