package cond

import (
	"testing"

	"bfopt/internal/expr"
)

func TestNewEqualSpecializesToCellEqual(t *testing.T) {
	got := NewEqual(expr.CellRef(3), 5)
	ce, ok := got.(CellEqual)
	if !ok {
		t.Fatalf("expected CellEqual, got %T (%s)", got, got)
	}
	if ce.Offset != 3 || ce.Value != 5 {
		t.Fatalf("got %+v", ce)
	}
}

func TestNewEqualFoldsAdditiveConstant(t *testing.T) {
	// {0} + 2 == 5  =>  {0} == 3
	got := NewEqual(expr.Add(expr.CellRef(0), expr.Const(2)), 5)
	want := CellEqual{Offset: 0, Value: 3}
	if got.Key() != want.Key() {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestDoubleNegationIsIdentity(t *testing.T) {
	c := NewEqual(expr.CellRef(0), 1)
	if Equal(c, c.Negate().Negate()) == false {
		t.Fatalf("!!c should equal c: %s vs %s", c, c.Negate().Negate())
	}
}

func TestConjunctionWithNegationIsFalse(t *testing.T) {
	c := NewEqual(expr.CellRef(0), 1)
	got := And(c, c.Negate())
	if !isFalse(got) {
		t.Fatalf("c && !c should be False, got %s", got)
	}
}

func TestDisjunctionWithNegationIsTrue(t *testing.T) {
	c := NewEqual(expr.CellRef(0), 1)
	got := Or(c, c.Negate())
	if !isTrue(got) {
		t.Fatalf("c || !c should be True, got %s", got)
	}
}

func TestAndAbsorbsTrue(t *testing.T) {
	c := NewEqual(expr.CellRef(0), 1)
	got := And(True{}, c)
	if got.Key() != c.Key() {
		t.Fatalf("True && c should equal c, got %s", got)
	}
}

func TestOrAbsorbsFalse(t *testing.T) {
	c := NewEqual(expr.CellRef(0), 1)
	got := Or(False{}, c)
	if got.Key() != c.Key() {
		t.Fatalf("False || c should equal c, got %s", got)
	}
}

func TestRangeSinglePointCollapsesToEqual(t *testing.T) {
	got := NewRange(expr.CellRef(0), []Interval{{Min: boundOf(4), Max: boundOf(4)}})
	want := NewEqual(expr.CellRef(0), 4)
	if got.Key() != want.Key() {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRangeFullLineCollapsesToTrue(t *testing.T) {
	got := NewRange(expr.CellRef(0), []Interval{{}})
	if !isTrue(got) {
		t.Fatalf("expected True, got %s", got)
	}
}

func TestRangeEmptyCollapsesToFalse(t *testing.T) {
	got := NewRange(expr.CellRef(0), nil)
	if !isFalse(got) {
		t.Fatalf("expected False, got %s", got)
	}
}

func TestRangeMergesOverlappingIntervals(t *testing.T) {
	got := NewRange(expr.CellRef(0), []Interval{
		{Min: boundOf(0), Max: boundOf(5)},
		{Min: boundOf(4), Max: boundOf(10)},
	})
	r, ok := got.(Range)
	if !ok {
		t.Fatalf("expected Range, got %T (%s)", got, got)
	}
	if len(r.Intervals) != 1 || *r.Intervals[0].Min != 0 || *r.Intervals[0].Max != 10 {
		t.Fatalf("expected merged [0,10], got %v", r.Intervals)
	}
}

func TestRangePointComplementCollapsesToNotEqual(t *testing.T) {
	got := NewRange(expr.CellRef(0), []Interval{
		{Min: nil, Max: boundOf(3)},
		{Min: boundOf(5), Max: nil},
	})
	want := NewNotEqual(expr.CellRef(0), 4)
	if got.Key() != want.Key() {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRangeFoldsAffineTransform(t *testing.T) {
	// 2*{0}+1 in [1,7]  =>  {0} in [0,3]
	e := expr.Add(expr.Mul(expr.Const(2), expr.CellRef(0)), expr.Const(1))
	got := NewRange(e, []Interval{{Min: boundOf(1), Max: boundOf(7)}})
	r, ok := got.(Range)
	if !ok {
		t.Fatalf("expected Range, got %T (%s)", got, got)
	}
	if r.Expr.Key() != expr.CellRef(0).Key() {
		t.Fatalf("expected folded expr to be bare {0}, got %s", r.Expr)
	}
	if len(r.Intervals) != 1 || *r.Intervals[0].Min != 0 || *r.Intervals[0].Max != 3 {
		t.Fatalf("expected [0,3], got %v", r.Intervals)
	}
}

func TestConjunctionIntersectsRangesOnSameExpr(t *testing.T) {
	a := NewRange(expr.CellRef(0), []Interval{{Min: boundOf(0), Max: boundOf(10)}})
	b := NewRange(expr.CellRef(0), []Interval{{Min: boundOf(5), Max: boundOf(20)}})
	got := And(a, b)
	r, ok := got.(Range)
	if !ok {
		t.Fatalf("expected Range, got %T (%s)", got, got)
	}
	if len(r.Intervals) != 1 || *r.Intervals[0].Min != 5 || *r.Intervals[0].Max != 10 {
		t.Fatalf("expected [5,10], got %v", r.Intervals)
	}
}

func TestWithMemorySubstitutesIntoCellEqual(t *testing.T) {
	c := CellEqual{Offset: 0, Value: 3}
	got := c.WithMemory(expr.Memory{0: expr.Const(3)})
	if !isTrue(got) {
		t.Fatalf("expected True after substituting the matching constant, got %s", got)
	}
}

func TestMovePointerShiftsCellOffset(t *testing.T) {
	c := CellEqual{Offset: 2, Value: 5}
	got := c.MovePointer(3)
	ce := got.(CellEqual)
	if ce.Offset != 5 {
		t.Fatalf("expected offset 5, got %d", ce.Offset)
	}
}
