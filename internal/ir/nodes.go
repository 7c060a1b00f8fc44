package ir

import (
	"fmt"
	"strings"

	"bfopt/internal/cond"
	"bfopt/internal/expr"
)

// Program is the IR root: an ordered list of top-level statements.
type Program struct {
	Body []Node
}

func (*Program) isNode() {}

func (p *Program) Children() []Node          { return p.Body }
func (p *Program) SetChildren(body []Node)   { p.Body = body }
func (p *Program) Stride() (int, bool)       { return bodyStride(p.Body) }
func (p *Program) Offsets() (int, bool)      { return bodyStride(p.Body) }
func (p *Program) Pure() bool                { return bodyPure(p.Body) }
func (p *Program) Returns() bool             { return bodyReturns(p.Body) }
func (p *Program) Falsy() bool               { return false }
func (p *Program) MovePointer(delta int) {
	for _, n := range p.Body {
		n.MovePointer(delta)
	}
}
func (p *Program) WithMemory(mem expr.Memory) {
	for _, n := range p.Body {
		n.WithMemory(mem)
	}
}
func (p *Program) PreReferences() CellSet  { return bodyPreReferences(p.Body) }
func (p *Program) PreUpdates() CellSet     { return bodyPreUpdates(p.Body) }
func (p *Program) PostReferences() CellSet { return bodyPostReferences(p.Body) }
func (p *Program) PostUpdates() CellSet    { return bodyPostUpdates(p.Body) }

func (p *Program) String() string {
	parts := make([]string, len(p.Body))
	for i, n := range p.Body {
		parts[i] = n.String()
	}
	return "Program[" + strings.Join(parts, ", ") + "]"
}

// Nop is a placeholder inserted by passes in place of a deleted node; it
// is removed by cleanup.
type Nop struct{}

func (Nop) isNode()                         {}
func (Nop) Offsets() (int, bool)            { return 0, true }
func (Nop) Pure() bool                      { return true }
func (Nop) Returns() bool                   { return true }
func (Nop) Falsy() bool                     { return true }
func (*Nop) MovePointer(delta int)          {}
func (*Nop) WithMemory(mem expr.Memory)     {}
func (Nop) PreReferences() CellSet          { return EmptyCellSet() }
func (Nop) PreUpdates() CellSet             { return EmptyCellSet() }
func (Nop) PostReferences() CellSet         { return EmptyCellSet() }
func (Nop) PostUpdates() CellSet            { return EmptyCellSet() }
func (Nop) String() string                  { return "Nop" }

// SetMemory writes Value to the cell at Offset relative to the current
// pointer.
type SetMemory struct {
	Offset int
	Value  expr.Expr
}

func (*SetMemory) isNode()              {}
func (s *SetMemory) Offsets() (int, bool) { return 0, true }
func (s *SetMemory) Pure() bool           { return true }
func (s *SetMemory) Returns() bool        { return true }
func (s *SetMemory) Falsy() bool          { return false }

func (s *SetMemory) MovePointer(delta int) {
	s.Offset += delta
	s.Value = s.Value.MovePointer(delta)
}

func (s *SetMemory) WithMemory(mem expr.Memory) {
	s.Value = s.Value.WithMemory(mem)
}

func (s *SetMemory) PreReferences() CellSet  { return FromRefs(s.Value.References()) }
func (s *SetMemory) PostReferences() CellSet { return FromRefs(s.Value.References()) }
func (s *SetMemory) PreUpdates() CellSet     { return SureCells(s.Offset) }
func (s *SetMemory) PostUpdates() CellSet    { return SureCells(s.Offset) }

func (s *SetMemory) String() string {
	return fmt.Sprintf("{%d}=%s", s.Offset, s.Value)
}

// AdjustMemory adds Delta to the cell at Offset.
type AdjustMemory struct {
	Offset int
	Delta  expr.Expr
}

func (*AdjustMemory) isNode()                { }
func (a *AdjustMemory) Offsets() (int, bool) { return 0, true }
func (a *AdjustMemory) Pure() bool           { return true }
func (a *AdjustMemory) Returns() bool        { return true }

func (a *AdjustMemory) Falsy() bool {
	c, ok := a.Delta.(expr.Const)
	return ok && int(c) == 0
}

func (a *AdjustMemory) MovePointer(delta int) {
	a.Offset += delta
	a.Delta = a.Delta.MovePointer(delta)
}

func (a *AdjustMemory) WithMemory(mem expr.Memory) {
	a.Delta = a.Delta.WithMemory(mem)
}

func (a *AdjustMemory) refs() CellSet {
	cs := FromRefs(a.Delta.References())
	cs.Sure[a.Offset] = struct{}{}
	cs.Unsure[a.Offset] = struct{}{}
	return cs
}

func (a *AdjustMemory) PreReferences() CellSet  { return a.refs() }
func (a *AdjustMemory) PostReferences() CellSet { return a.refs() }
func (a *AdjustMemory) PreUpdates() CellSet     { return SureCells(a.Offset) }
func (a *AdjustMemory) PostUpdates() CellSet    { return SureCells(a.Offset) }

func (a *AdjustMemory) String() string {
	return fmt.Sprintf("{%d}+=%s", a.Offset, a.Delta)
}

// MovePointer relocates the pointer by Delta.
type MovePointer struct {
	Delta int
}

func (*MovePointer) isNode()                { }
func (m *MovePointer) Offsets() (int, bool) { return m.Delta, true }
func (m *MovePointer) Pure() bool           { return true }
func (m *MovePointer) Returns() bool        { return true }
func (m *MovePointer) Falsy() bool          { return m.Delta == 0 }

// MovePointer's own movepointer is a no-op: shifting the surrounding
// pointer context does not change what "move by Delta" means.
func (m *MovePointer) MovePointer(delta int) {}
func (m *MovePointer) WithMemory(mem expr.Memory) {}

func (m *MovePointer) PreReferences() CellSet  { return EmptyCellSet() }
func (m *MovePointer) PostReferences() CellSet { return EmptyCellSet() }
func (m *MovePointer) PreUpdates() CellSet     { return EmptyCellSet() }
func (m *MovePointer) PostUpdates() CellSet    { return EmptyCellSet() }

func (m *MovePointer) String() string { return fmt.Sprintf("MovePointer(%d)", m.Delta) }

// Input reads one byte into the cell at Offset.
type Input struct {
	Offset int
}

func (*Input) isNode()                { }
func (i *Input) Offsets() (int, bool) { return 0, true }
func (i *Input) Pure() bool           { return false }
func (i *Input) Returns() bool        { return true }
func (i *Input) Falsy() bool          { return false }
func (i *Input) MovePointer(delta int) { i.Offset += delta }
func (i *Input) WithMemory(mem expr.Memory) {}

func (i *Input) PreReferences() CellSet  { return EmptyCellSet() }
func (i *Input) PostReferences() CellSet { return EmptyCellSet() }
func (i *Input) PreUpdates() CellSet     { return SureCells(i.Offset) }
func (i *Input) PostUpdates() CellSet    { return SureCells(i.Offset) }

func (i *Input) String() string { return fmt.Sprintf("Input(%d)", i.Offset) }

// Output writes Value mod 2^cellwidth to the output stream.
type Output struct {
	Value expr.Expr
}

func (*Output) isNode()                { }
func (o *Output) Offsets() (int, bool) { return 0, true }
func (o *Output) Pure() bool           { return false }
func (o *Output) Returns() bool        { return true }
func (o *Output) Falsy() bool          { return false }

func (o *Output) MovePointer(delta int) { o.Value = o.Value.MovePointer(delta) }
func (o *Output) WithMemory(mem expr.Memory) { o.Value = o.Value.WithMemory(mem) }

func (o *Output) PreReferences() CellSet  { return FromRefs(o.Value.References()) }
func (o *Output) PostReferences() CellSet { return FromRefs(o.Value.References()) }
func (o *Output) PreUpdates() CellSet     { return EmptyCellSet() }
func (o *Output) PostUpdates() CellSet    { return EmptyCellSet() }

func (o *Output) String() string { return fmt.Sprintf("Output(%s)", o.Value) }

// OutputConst writes a literal byte string, the fused form Stdlib
// produces from runs of constant Output/OutputConst nodes.
type OutputConst struct {
	Bytes []byte
}

func (*OutputConst) isNode()                { }
func (o *OutputConst) Offsets() (int, bool) { return 0, true }
func (o *OutputConst) Pure() bool           { return false }
func (o *OutputConst) Returns() bool        { return true }
func (o *OutputConst) Falsy() bool          { return len(o.Bytes) == 0 }
func (o *OutputConst) MovePointer(delta int) {}
func (o *OutputConst) WithMemory(mem expr.Memory) {}

func (o *OutputConst) PreReferences() CellSet  { return EmptyCellSet() }
func (o *OutputConst) PostReferences() CellSet { return EmptyCellSet() }
func (o *OutputConst) PreUpdates() CellSet     { return EmptyCellSet() }
func (o *OutputConst) PostUpdates() CellSet    { return EmptyCellSet() }

func (o *OutputConst) String() string { return fmt.Sprintf("OutputConst(%q)", o.Bytes) }

// SeekMemory advances the pointer by multiples of Stride from Target
// until the cell at Target equals Value.
type SeekMemory struct {
	Target int
	Stride int
	Value  int
}

func (*SeekMemory) isNode()                { }
func (s *SeekMemory) Offsets() (int, bool) { return 0, false }
func (s *SeekMemory) Pure() bool           { return true }
func (s *SeekMemory) Returns() bool        { return true }
func (s *SeekMemory) Falsy() bool          { return false }
func (s *SeekMemory) MovePointer(delta int) { s.Target += delta }
func (s *SeekMemory) WithMemory(mem expr.Memory) {}

// seekRefs implements the OQ-2 resolution: sure = {target}, unsure =
// sure ∪ {⊥}.
func (s *SeekMemory) seekRefs() CellSet {
	cs := SureCells(s.Target)
	cs.UnsureBottom = true
	return cs
}

func (s *SeekMemory) PreReferences() CellSet  { return s.seekRefs() }
func (s *SeekMemory) PostReferences() CellSet { return s.seekRefs() }
func (s *SeekMemory) PreUpdates() CellSet     { return EmptyCellSet() }
func (s *SeekMemory) PostUpdates() CellSet    { return EmptyCellSet() }

func (s *SeekMemory) String() string {
	return fmt.Sprintf("SeekMemory(target=%d, stride=%d, value=%d)", s.Target, s.Stride, s.Value)
}

// If runs Body when Cond holds.
type If struct {
	Cond cond.Cond
	Body []Node
}

func (*If) isNode()              { }
func (n *If) Children() []Node        { return n.Body }
func (n *If) SetChildren(body []Node) { n.Body = body }
func (n *If) Stride() (int, bool)     { return bodyStride(n.Body) }

func (n *If) Offsets() (int, bool) {
	stride, known := n.Stride()
	if known && stride == 0 {
		return 0, true
	}
	return 0, false
}

func (n *If) Pure() bool    { return bodyPure(n.Body) }
func (n *If) Returns() bool { return true }
func (n *If) Falsy() bool   { return false }

func (n *If) MovePointer(delta int) {
	n.Cond = n.Cond.MovePointer(delta)
	for _, c := range n.Body {
		c.MovePointer(delta)
	}
}

func (n *If) WithMemory(mem expr.Memory) {
	n.Cond = n.Cond.WithMemory(mem)
	for _, c := range n.Body {
		c.WithMemory(mem)
	}
}

func (n *If) PreReferences() CellSet {
	condRefs := FromRefs(n.Cond.References())
	bodyPre := bodyPreReferences(n.Body)
	cs := CellSet{
		Sure:         cloneIntSet(condRefs.Sure),
		Unsure:       cloneIntSet(condRefs.Unsure),
		UnsureBottom: bodyPre.UnsureBottom,
	}
	for o := range bodyPre.Unsure {
		cs.Unsure[o] = struct{}{}
	}
	return cs
}

func (n *If) PostReferences() CellSet {
	stride, known := n.Stride()
	bodyPost := bodyPostReferences(n.Body)
	cs := shiftedSureOrBottom(n.Cond.References(), known, stride)
	for o := range bodyPost.Unsure {
		cs.Unsure[o] = struct{}{}
	}
	if bodyPost.UnsureBottom {
		cs.UnsureBottom = true
	}
	return cs
}

func (n *If) PreUpdates() CellSet  { return promoteToUnsure(bodyPreUpdates(n.Body)) }
func (n *If) PostUpdates() CellSet { return promoteToUnsure(bodyPostUpdates(n.Body)) }

func (n *If) String() string {
	parts := make([]string, len(n.Body))
	for i, c := range n.Body {
		parts[i] = c.String()
	}
	return fmt.Sprintf("If(%s; %s)", n.Cond, strings.Join(parts, ", "))
}

// Repeat runs Body exactly Count times.
type Repeat struct {
	Count expr.Expr
	Body  []Node
}

func (*Repeat) isNode()              { }
func (n *Repeat) Children() []Node        { return n.Body }
func (n *Repeat) SetChildren(body []Node) { n.Body = body }
func (n *Repeat) Stride() (int, bool)     { return bodyStride(n.Body) }

func (n *Repeat) Offsets() (int, bool) {
	stride, known := n.Stride()
	if known && stride == 0 {
		return 0, true
	}
	return 0, false
}

func (n *Repeat) Pure() bool    { return bodyPure(n.Body) }
func (n *Repeat) Returns() bool { return true }
func (n *Repeat) Falsy() bool   { return false }

func (n *Repeat) MovePointer(delta int) {
	n.Count = n.Count.MovePointer(delta)
	for _, c := range n.Body {
		c.MovePointer(delta)
	}
}

func (n *Repeat) WithMemory(mem expr.Memory) {
	n.Count = n.Count.WithMemory(mem)
	for _, c := range n.Body {
		c.WithMemory(mem)
	}
}

func (n *Repeat) PreReferences() CellSet {
	countRefs := FromRefs(n.Count.References())
	bodyPre := bodyPreReferences(n.Body)
	stride, known := n.Stride()
	cs := CellSet{
		Sure:         cloneIntSet(countRefs.Sure),
		Unsure:       cloneIntSet(countRefs.Unsure),
		UnsureBottom: bodyPre.UnsureBottom || (known && stride != 0),
	}
	for o := range bodyPre.Unsure {
		cs.Unsure[o] = struct{}{}
	}
	return cs
}

func (n *Repeat) PostReferences() CellSet {
	stride, known := n.Stride()
	bodyPost := bodyPostReferences(n.Body)
	cs := shiftedSureOrBottom(n.Count.References(), known, stride)
	for o := range bodyPost.Unsure {
		cs.Unsure[o] = struct{}{}
	}
	if bodyPost.UnsureBottom || (known && stride != 0) {
		cs.UnsureBottom = true
	}
	return cs
}

func (n *Repeat) PreUpdates() CellSet  { return promoteToUnsure(bodyPreUpdates(n.Body)) }
func (n *Repeat) PostUpdates() CellSet { return promoteToUnsure(bodyPostUpdates(n.Body)) }

func (n *Repeat) String() string {
	parts := make([]string, len(n.Body))
	for i, c := range n.Body {
		parts[i] = c.String()
	}
	return fmt.Sprintf("Repeat(%s; %s)", n.Count, strings.Join(parts, ", "))
}

// While runs Body for as long as Cond holds.
type While struct {
	Cond cond.Cond
	Body []Node
}

func (*While) isNode()              { }
func (n *While) Children() []Node        { return n.Body }
func (n *While) SetChildren(body []Node) { n.Body = body }
func (n *While) Stride() (int, bool)     { return bodyStride(n.Body) }

func (n *While) Offsets() (int, bool) {
	stride, known := n.Stride()
	if known && stride == 0 {
		return 0, true
	}
	return 0, false
}

func (n *While) Pure() bool { return bodyPure(n.Body) }

func (n *While) Returns() bool {
	_, isTrue := n.Cond.(cond.True)
	return !isTrue
}

func (n *While) Falsy() bool { return false }

func (n *While) MovePointer(delta int) {
	n.Cond = n.Cond.MovePointer(delta)
	for _, c := range n.Body {
		c.MovePointer(delta)
	}
}

func (n *While) WithMemory(mem expr.Memory) {
	// A While only adopts a substitution into its own condition when
	// doing so proves the loop never runs; otherwise the condition must
	// keep evaluating the live cell, not a snapshot of it.
	newCond := n.Cond.WithMemory(mem)
	if _, isFalse := newCond.(cond.False); isFalse {
		n.Cond = newCond
	}
	for _, c := range n.Body {
		c.WithMemory(mem)
	}
}

func (n *While) PreReferences() CellSet {
	condRefs := FromRefs(n.Cond.References())
	bodyPre := bodyPreReferences(n.Body)
	cs := CellSet{
		Sure:         cloneIntSet(condRefs.Sure),
		Unsure:       cloneIntSet(condRefs.Unsure),
		UnsureBottom: bodyPre.UnsureBottom,
	}
	for o := range bodyPre.Unsure {
		cs.Unsure[o] = struct{}{}
	}
	return cs
}

func (n *While) PostReferences() CellSet {
	condRefs := FromRefs(n.Cond.References())
	bodyPost := bodyPostReferences(n.Body)
	cs := CellSet{
		Sure:         cloneIntSet(condRefs.Sure),
		Unsure:       cloneIntSet(condRefs.Unsure),
		UnsureBottom: bodyPost.UnsureBottom,
	}
	for o := range bodyPost.Unsure {
		cs.Unsure[o] = struct{}{}
	}
	return cs
}

func (n *While) PreUpdates() CellSet  { return promoteToUnsure(bodyPreUpdates(n.Body)) }
func (n *While) PostUpdates() CellSet { return promoteToUnsure(bodyPostUpdates(n.Body)) }

func (n *While) String() string {
	parts := make([]string, len(n.Body))
	for i, c := range n.Body {
		parts[i] = c.String()
	}
	return fmt.Sprintf("While(%s; %s)", n.Cond, strings.Join(parts, ", "))
}
