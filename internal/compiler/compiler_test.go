package compiler

import (
	"strings"
	"testing"
)

func TestCompileClearCellProgram(t *testing.T) {
	out, err := Compile("[-]", DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "int main(void)") {
		t.Fatalf("expected compilable C output, got:\n%s", out)
	}
	if !strings.Contains(out, "tape[p + (0)] = (TAPE_T)") {
		t.Fatalf("expected the clear-cell loop folded to a direct assignment, got:\n%s", out)
	}
}

func TestCompileReportsUnmatchedBracket(t *testing.T) {
	_, err := Compile("]", DefaultConfig())
	if err == nil {
		t.Fatalf("expected an error for an unmatched bracket")
	}
}

func TestCompileRespectsCellWidth(t *testing.T) {
	out, err := Compile("+", Config{CellWidth: 16})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "uint16_t") {
		t.Fatalf("expected a uint16_t tape, got:\n%s", out)
	}
}
