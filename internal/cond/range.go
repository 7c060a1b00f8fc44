package cond

import (
	"sort"
	"strconv"
	"strings"

	"bfopt/internal/expr"
)

// Interval is an inclusive integer interval; a nil Min means −∞ and a nil
// Max means +∞.
type Interval struct {
	Min, Max *int
}

func boundOf(v int) *int { return &v }

// Range asserts that Expr's value lies in the union of Intervals, a
// normalized (sorted, merged, non-overlapping) list of intervals. A
// single-point interval and the complement of a single point collapse to
// an equality or inequality at construction and never appear as a Range;
// a single interval spanning more than one value stays a Range.
type Range struct {
	Expr      expr.Expr
	Intervals []Interval
}

func (Range) isCond() {}

func (r Range) References() map[int]struct{} { return r.Expr.References() }

func (r Range) MovePointer(delta int) Cond {
	return NewRange(r.Expr.MovePointer(delta), r.Intervals)
}

func (r Range) WithMemory(mem expr.Memory) Cond {
	return NewRange(r.Expr.WithMemory(mem), r.Intervals)
}

func (r Range) Negate() Cond {
	return NewRange(r.Expr, complementIntervals(r.Intervals))
}

func (r Range) Key() string {
	parts := make([]string, len(r.Intervals))
	for i, iv := range r.Intervals {
		parts[i] = intervalKey(iv)
	}
	return "Rg(" + r.Expr.Key() + ";" + strings.Join(parts, ",") + ")"
}

func (r Range) String() string {
	parts := make([]string, len(r.Intervals))
	for i, iv := range r.Intervals {
		parts[i] = intervalKey(iv)
	}
	return r.Expr.String() + " in " + strings.Join(parts, " | ")
}

func intervalKey(iv Interval) string {
	lo, hi := "-inf", "+inf"
	if iv.Min != nil {
		lo = strconv.Itoa(*iv.Min)
	}
	if iv.Max != nil {
		hi = strconv.Itoa(*iv.Max)
	}
	return "[" + lo + "," + hi + "]"
}

// NewRange constructs the canonical predicate Expr-in-Intervals, folding
// any affine transform of Expr into the interval endpoints and collapsing
// degenerate cases (empty, full line, single point, point complement).
func NewRange(e expr.Expr, intervals []Interval) Cond {
	norm := normalizeIntervals(intervals)

	if constPart, coeff, term, ok := asAffine(e); ok && term != nil && !(coeff == 1 && constPart == 0) {
		return NewRange(term, transformIntervals(norm, constPart, coeff))
	}
	if c, ok := e.(expr.Const); ok {
		v := int(c)
		for _, iv := range norm {
			if within(iv, v) {
				return True{}
			}
		}
		return False{}
	}

	switch len(norm) {
	case 0:
		return False{}
	case 1:
		iv := norm[0]
		if iv.Min == nil && iv.Max == nil {
			return True{}
		}
		if iv.Min != nil && iv.Max != nil && *iv.Min == *iv.Max {
			return NewEqual(e, *iv.Min)
		}
	case 2:
		if v, ok := isPointComplement(norm); ok {
			return NewNotEqual(e, v)
		}
	}
	return Range{Expr: e, Intervals: norm}
}

func within(iv Interval, v int) bool {
	if iv.Min != nil && v < *iv.Min {
		return false
	}
	if iv.Max != nil && v > *iv.Max {
		return false
	}
	return true
}

func isPointComplement(ivs []Interval) (int, bool) {
	if len(ivs) != 2 {
		return 0, false
	}
	a, b := ivs[0], ivs[1]
	if a.Min == nil && a.Max != nil && b.Max == nil && b.Min != nil && *b.Min == *a.Max+2 {
		return *a.Max + 1, true
	}
	return 0, false
}

func cmpLower(a, b *int) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if *a < *b {
		return -1
	}
	if *a > *b {
		return 1
	}
	return 0
}

func cmpUpper(a, b *int) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}
	if *a < *b {
		return -1
	}
	if *a > *b {
		return 1
	}
	return 0
}

func maxLower(a, b *int) *int {
	if cmpLower(a, b) >= 0 {
		return a
	}
	return b
}

func minUpper(a, b *int) *int {
	if cmpUpper(a, b) <= 0 {
		return a
	}
	return b
}

func maxUpper(a, b *int) *int {
	if cmpUpper(a, b) >= 0 {
		return a
	}
	return b
}

// normalizeIntervals sorts by lower bound and merges touching or
// overlapping intervals, dropping any that end up empty.
func normalizeIntervals(ivs []Interval) []Interval {
	valid := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if iv.Min != nil && iv.Max != nil && *iv.Min > *iv.Max {
			continue
		}
		valid = append(valid, iv)
	}
	if len(valid) == 0 {
		return valid
	}
	sort.Slice(valid, func(i, j int) bool {
		if c := cmpLower(valid[i].Min, valid[j].Min); c != 0 {
			return c < 0
		}
		return cmpUpper(valid[i].Max, valid[j].Max) < 0
	})
	out := []Interval{valid[0]}
	for _, iv := range valid[1:] {
		last := &out[len(out)-1]
		touching := last.Max == nil || iv.Min == nil || *iv.Min <= *last.Max+1
		if touching {
			last.Max = maxUpper(last.Max, iv.Max)
			continue
		}
		out = append(out, iv)
	}
	return out
}

func intersectIntervals(a, b []Interval) []Interval {
	a = normalizeIntervals(a)
	b = normalizeIntervals(b)
	out := make([]Interval, 0, len(a)+len(b))
	for _, x := range a {
		for _, y := range b {
			lo := maxLower(x.Min, y.Min)
			hi := minUpper(x.Max, y.Max)
			if lo != nil && hi != nil && *lo > *hi {
				continue
			}
			out = append(out, Interval{Min: lo, Max: hi})
		}
	}
	return normalizeIntervals(out)
}

func unionIntervals(a, b []Interval) []Interval {
	out := append(append([]Interval{}, a...), b...)
	return normalizeIntervals(out)
}

// complementIntervals returns the complement, over all integers, of a
// normalized interval list.
func complementIntervals(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return []Interval{{}}
	}
	out := make([]Interval, 0, len(ivs)+1)
	if ivs[0].Min != nil {
		out = append(out, Interval{Min: nil, Max: boundOf(*ivs[0].Min - 1)})
	}
	for i := 0; i+1 < len(ivs); i++ {
		out = append(out, Interval{Min: boundOf(*ivs[i].Max + 1), Max: boundOf(*ivs[i+1].Min - 1)})
	}
	if last := ivs[len(ivs)-1]; last.Max != nil {
		out = append(out, Interval{Min: boundOf(*last.Max + 1), Max: nil})
	}
	return normalizeIntervals(out)
}

func floorDivI(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDivI(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}

// transformIntervals rewrites intervals on coeff*term+constPart into
// intervals on term, rounding inward so the new bound is the tightest
// integer bound implying the original.
func transformIntervals(ivs []Interval, constPart, coeff int) []Interval {
	out := make([]Interval, len(ivs))
	for i, iv := range ivs {
		if coeff > 0 {
			var lo, hi *int
			if iv.Min != nil {
				lo = boundOf(ceilDivI(*iv.Min-constPart, coeff))
			}
			if iv.Max != nil {
				hi = boundOf(floorDivI(*iv.Max-constPart, coeff))
			}
			out[i] = Interval{Min: lo, Max: hi}
		} else {
			c2 := -coeff
			var loPrime, hiPrime *int
			if iv.Min != nil {
				loPrime = boundOf(ceilDivI(*iv.Min-constPart, c2))
			}
			if iv.Max != nil {
				hiPrime = boundOf(floorDivI(*iv.Max-constPart, c2))
			}
			// term = -term', bounds swap and negate.
			var lo, hi *int
			if hiPrime != nil {
				lo = boundOf(-*hiPrime)
			}
			if loPrime != nil {
				hi = boundOf(-*loPrime)
			}
			out[i] = Interval{Min: lo, Max: hi}
		}
	}
	return normalizeIntervals(out)
}
