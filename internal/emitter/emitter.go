// Package emitter renders an optimized ir.Program as self-contained C
// source: a fixed-size tape of cellwidth-bit cells, a data pointer, and
// a straight translation of each IR node into the equivalent C
// statement, per §6.
package emitter

import (
	"fmt"
	"strings"

	"bfopt/internal/ir"
)

// Options configures code generation. CellWidth selects the tape's
// element type and the modulus for condition literals (output is always
// masked to a byte); Debug annotates complex nodes with their stride
// and, for While, purity.
type Options struct {
	CellWidth uint
	Debug     bool
}

func (o Options) modulus() int64 { return int64(1) << o.CellWidth }

func (o Options) tapeType() string {
	switch o.CellWidth {
	case 8:
		return "uint8_t"
	case 16:
		return "uint16_t"
	case 32:
		return "uint32_t"
	default:
		return "uint8_t"
	}
}

const tapeSize = 30000

type emitter struct {
	opts    Options
	counter int
}

// Emit renders prog as a complete, compilable C source file.
func Emit(prog *ir.Program, opts Options) (string, error) {
	e := &emitter{opts: opts}

	var body strings.Builder
	for _, n := range prog.Body {
		e.emitNode(&body, n, "    ")
	}

	var out strings.Builder
	out.WriteString(preamble)
	fmt.Fprintf(&out, "typedef %s TAPE_T;\n\n", opts.tapeType())
	out.WriteString("int main(void) {\n")
	fmt.Fprintf(&out, "    static TAPE_T tape[%d];\n", tapeSize)
	out.WriteString("    long p = 0;\n\n")
	out.WriteString(body.String())
	out.WriteString("\n    return 0;\n}\n")

	return out.String(), nil
}

const preamble = `#include <stdint.h>
#include <stdio.h>

static int64_t bf_floordiv(int64_t a, int64_t b) {
    int64_t q = a / b;
    int64_t r = a % b;
    if (r != 0 && ((r < 0) != (b < 0))) q--;
    return q;
}

static int64_t bf_floormod(int64_t a, int64_t b) {
    int64_t r = a % b;
    if (r != 0 && ((r < 0) != (b < 0))) r += b;
    return r;
}

`

func (e *emitter) next() int {
	e.counter++
	return e.counter
}

func (e *emitter) emitNode(w *strings.Builder, n ir.Node, indent string) {
	switch v := n.(type) {
	case *ir.Nop:
		return

	case *ir.SetMemory:
		fmt.Fprintf(w, "%stape[p + (%d)] = (TAPE_T)(%s);\n", indent, v.Offset, compileExpr(v.Value))

	case *ir.AdjustMemory:
		fmt.Fprintf(w, "%stape[p + (%d)] += (TAPE_T)(%s);\n", indent, v.Offset, compileExpr(v.Delta))

	case *ir.MovePointer:
		fmt.Fprintf(w, "%sp += %d;\n", indent, v.Delta)

	case *ir.Input:
		fmt.Fprintf(w, "%s{ int c = getchar(); tape[p + (%d)] = (TAPE_T)(c == EOF ? 0 : c); }\n", indent, v.Offset)

	case *ir.Output:
		fmt.Fprintf(w, "%sputchar((int)((%s) & 0xFFu));\n", indent, compileExpr(v.Value))

	case *ir.OutputConst:
		e.emitOutputConst(w, v, indent)

	case *ir.SeekMemory:
		target := normalizeMod(int64(v.Value), e.opts.modulus())
		fmt.Fprintf(w, "%swhile (tape[p + (%d)] != %d) { p += %d; }\n", indent, v.Target, target, v.Stride)

	case *ir.If:
		if e.opts.Debug {
			fmt.Fprintf(w, "%s/* If: stride=%s */\n", indent, debugStride(v))
		}
		fmt.Fprintf(w, "%sif (%s) {\n", indent, compileCond(v.Cond, e.opts.modulus()))
		for _, c := range v.Body {
			e.emitNode(w, c, indent+"    ")
		}
		fmt.Fprintf(w, "%s}\n", indent)

	case *ir.Repeat:
		i := e.next()
		if e.opts.Debug {
			fmt.Fprintf(w, "%s/* Repeat: stride=%s */\n", indent, debugStride(v))
		}
		fmt.Fprintf(w, "%sfor (unsigned long long bf_i%d = 0; bf_i%d < (unsigned long long)(%s); bf_i%d++) {\n",
			indent, i, i, compileExpr(v.Count), i)
		for _, c := range v.Body {
			e.emitNode(w, c, indent+"    ")
		}
		fmt.Fprintf(w, "%s}\n", indent)

	case *ir.While:
		if e.opts.Debug {
			fmt.Fprintf(w, "%s/* While: stride=%s pure=%v */\n", indent, debugStride(v), v.Pure())
		}
		fmt.Fprintf(w, "%swhile (%s) {\n", indent, compileCond(v.Cond, e.opts.modulus()))
		for _, c := range v.Body {
			e.emitNode(w, c, indent+"    ")
		}
		fmt.Fprintf(w, "%s}\n", indent)

	default:
		fmt.Fprintf(w, "%s/* unrecognized node %T */\n", indent, n)
	}
}

func (e *emitter) emitOutputConst(w *strings.Builder, oc *ir.OutputConst, indent string) {
	if len(oc.Bytes) == 0 {
		return
	}
	var lit strings.Builder
	lit.WriteByte('"')
	for _, b := range oc.Bytes {
		fmt.Fprintf(&lit, "\\x%02x", b)
	}
	lit.WriteByte('"')
	fmt.Fprintf(w, "%sfputs(%s, stdout);\n", indent, lit.String())
}

func debugStride(n interface{ Stride() (int, bool) }) string {
	d, known := n.Stride()
	if !known {
		return "unknown"
	}
	return fmt.Sprintf("%d", d)
}

func normalizeMod(v, mod int64) int64 {
	return ((v % mod) + mod) % mod
}
