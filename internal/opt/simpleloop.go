package opt

import (
	"bfopt/internal/cond"
	"bfopt/internal/expr"
	"bfopt/internal/ir"
)

// SimpleLoopPass recognizes three canonical While shapes the tape
// machine's "[...]" construct compiles into: pointer seeks, counted
// loops with a linear counter, and loops whose body runs at most once
// before forcing the exit condition. Grounded on §4.6.3 and the extended
// Euclidean loop-count derivation from the Python original's
// optimize_simpleloop/_gcdex.
type SimpleLoopPass struct{}

func (SimpleLoopPass) Name() string { return "SimpleLoop" }
func (SimpleLoopPass) Description() string {
	return "recognizes seek, counted, and single-trip While loops and replaces them with closed forms"
}

func (p SimpleLoopPass) Apply(prog *ir.Program, cfg Config) {
	walkPostOrder(prog, func(children []ir.Node) []ir.Node {
		return simpleLoopBlock(children, cfg)
	})
}

func simpleLoopBlock(children []ir.Node, cfg Config) []ir.Node {
	out := make([]ir.Node, 0, len(children))
	for _, n := range children {
		w, ok := n.(*ir.While)
		if !ok {
			out = append(out, n)
			continue
		}
		if replacement, ok := recognizeSeek(w); ok {
			out = append(out, replacement...)
			continue
		}
		if replacement, ok := recognizeCountedLoop(w, cfg); ok {
			out = append(out, replacement...)
			continue
		}
		out = append(out, n)
	}
	return ir.Cleanup(out)
}

// recognizeSeek matches While(CellNotEqual(0, v), [MovePointer(s)]).
func recognizeSeek(w *ir.While) ([]ir.Node, bool) {
	cne, ok := w.Cond.(cond.CellNotEqual)
	if !ok || cne.Offset != 0 {
		return nil, false
	}
	if len(w.Body) != 1 {
		return nil, false
	}
	mp, ok := w.Body[0].(*ir.MovePointer)
	if !ok {
		return nil, false
	}
	return []ir.Node{&ir.SeekMemory{Target: 0, Stride: mp.Delta, Value: cne.Value}}, true
}

// recognizeCountedLoop matches While(CellNotEqual(t, v), body) where the
// body touches cell t in exactly one statement, a simple constant
// AdjustMemory (mode "adjust") or SetMemory (mode "set"), and is
// otherwise pure and stride-0.
func recognizeCountedLoop(w *ir.While, cfg Config) ([]ir.Node, bool) {
	cne, ok := w.Cond.(cond.CellNotEqual)
	if !ok {
		return nil, false
	}
	t, v := cne.Offset, cne.Value

	stride, known := w.Stride()
	if !known || stride != 0 {
		return nil, false
	}
	if !w.Pure() {
		return nil, false
	}

	const (
		modeNone = iota
		modeAdjust
		modeSet
	)
	mode := modeNone
	delta, finalVal := 0, 0
	counterIdx := -1

	for i, n := range w.Body {
		touches := n.PreReferences().Has(t) || n.PreUpdates().Has(t) ||
			n.PostReferences().Has(t) || n.PostUpdates().Has(t)
		if !touches {
			continue
		}
		if counterIdx != -1 {
			return nil, false
		}
		switch v2 := n.(type) {
		case *ir.AdjustMemory:
			if v2.Offset != t {
				return nil, false
			}
			c, okc := v2.Delta.(expr.Const)
			if !okc {
				return nil, false
			}
			mode, delta = modeAdjust, int(c)
		case *ir.SetMemory:
			if v2.Offset != t {
				return nil, false
			}
			c, okc := v2.Value.(expr.Const)
			if !okc {
				return nil, false
			}
			mode, finalVal = modeSet, int(c)
		default:
			return nil, false
		}
		counterIdx = i
	}
	if counterIdx == -1 {
		return nil, false
	}

	otherBody := make([]ir.Node, 0, len(w.Body)-1)
	for i, n := range w.Body {
		if i != counterIdx {
			otherBody = append(otherBody, n)
		}
	}

	if mode == modeSet {
		if finalVal == v {
			return []ir.Node{
				&ir.If{Cond: w.Cond, Body: w.Body},
				&ir.SetMemory{Offset: t, Value: expr.Const(v)},
			}, true
		}
		return []ir.Node{&ir.While{Cond: cond.True{}, Body: nil}}, true
	}

	// mode == modeAdjust
	if delta == 0 {
		return []ir.Node{&ir.While{Cond: cond.True{}, Body: nil}}, true
	}

	w32 := int(cfg.Modulus())
	// count solves {t} + count*delta == v (mod 2^cellwidth):
	// count = -u * ({t} - v) / g, with u*delta + _*2^cellwidth == g.
	g, u, _ := gcdex(delta, w32)
	uModW := ((-u % w32) + w32) % w32

	diff := expr.Sub(expr.CellRef(t), expr.Const(v))
	count := expr.Mul(expr.Const(uModW), expr.Div(diff, expr.Const(g)))

	var result []ir.Node
	if g > 1 {
		guardCond := cond.NewNotEqual(expr.ModOf(diff, expr.Const(g)), 0)
		result = append(result, &ir.If{Cond: guardCond, Body: []ir.Node{&ir.While{Cond: cond.True{}, Body: nil}}})
	}
	if len(otherBody) > 0 {
		result = append(result, &ir.Repeat{Count: count, Body: otherBody})
	}
	result = append(result, &ir.SetMemory{Offset: t, Value: expr.Const(v)})
	return result, true
}

// gcdex is the extended Euclidean algorithm: it returns g = gcd(a, b)
// along with u, v such that u*a + v*b = g.
func gcdex(a, b int) (g, u, v int) {
	oldR, r := a, b
	oldS, s := 1, 0
	oldT, t := 0, 1
	for r != 0 {
		q := floorDivOpt(oldR, r)
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
		oldT, t = t, oldT-q*t
	}
	return oldR, oldS, oldT
}

func floorDivOpt(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
