package ir

// Cursor walks a child sequence in order while allowing the pass driving
// it to edit the sequence as it goes: insert siblings, replace the node
// just visited with zero or more nodes, or truncate the remainder.
// Rather than splicing an index-addressed slice in place, Cursor builds
// its result incrementally, which keeps insertion/replacement O(1)
// amortized and makes "never revisit an inserted predecessor" automatic:
// replacements are appended to the result but never fed back through
// Next.
type Cursor struct {
	input      []Node
	idx        int
	output     []Node
	hasCurrent bool
}

// NewCursor begins a walk over nodes.
func NewCursor(nodes []Node) *Cursor {
	return &Cursor{input: nodes, output: make([]Node, 0, len(nodes))}
}

// Next advances to the next input node, appending it to the result
// provisionally. A following Replace/Truncate call edits that
// provisional entry.
func (c *Cursor) Next() (Node, bool) {
	if c.idx >= len(c.input) {
		c.hasCurrent = false
		return nil, false
	}
	n := c.input[c.idx]
	c.idx++
	c.output = append(c.output, n)
	c.hasCurrent = true
	return n, true
}

// Prepend inserts nodes immediately before the node currently visited.
func (c *Cursor) Prepend(nodes ...Node) {
	if len(nodes) == 0 {
		return
	}
	if !c.hasCurrent {
		c.output = append(c.output, nodes...)
		return
	}
	last := len(c.output) - 1
	cur := c.output[last]
	c.output = append(c.output[:last], nodes...)
	c.output = append(c.output, cur)
}

// Append inserts nodes immediately after the node currently visited.
func (c *Cursor) Append(nodes ...Node) {
	c.output = append(c.output, nodes...)
}

// Replace replaces the node currently visited with zero or more nodes.
// Called with no arguments, it deletes the current node. The
// replacement nodes are not revisited by this walk.
func (c *Cursor) Replace(nodes ...Node) {
	if c.hasCurrent {
		c.output = c.output[:len(c.output)-1]
		c.hasCurrent = false
	}
	c.output = append(c.output, nodes...)
}

// Truncate deletes the node currently visited and every remaining input
// node, ending the walk.
func (c *Cursor) Truncate() {
	if c.hasCurrent {
		c.output = c.output[:len(c.output)-1]
		c.hasCurrent = false
	}
	c.idx = len(c.input)
}

// Result returns the accumulated child sequence.
func (c *Cursor) Result() []Node { return c.output }
