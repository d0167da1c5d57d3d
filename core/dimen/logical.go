package dimen

import "fmt"

// LogicalPoint is a point in flow-relative coordinates. Inline runs along the
// line direction, Block along the stacking direction of the current formatting
// context. Conversion to physical coordinates happens after layout.
type LogicalPoint struct {
	Inline, Block Dimen
}

// Add returns the vector sum of p and q.
func (p LogicalPoint) Add(q LogicalPoint) LogicalPoint {
	return LogicalPoint{Inline: p.Inline + q.Inline, Block: p.Block + q.Block}
}

func (p LogicalPoint) String() string {
	return fmt.Sprintf("(%s, %s)", p.Inline.PxString(), p.Block.PxString())
}

// LogicalSize is an extent in flow-relative coordinates.
type LogicalSize struct {
	Inline, Block Dimen
}

func (s LogicalSize) String() string {
	return fmt.Sprintf("%s×%s", s.Inline.PxString(), s.Block.PxString())
}

// LogicalSides holds a value per flow-relative box side.
type LogicalSides struct {
	BlockStart, InlineEnd, BlockEnd, InlineStart Dimen
}

// InlineSum is the sum of inline-start and inline-end.
func (s LogicalSides) InlineSum() Dimen {
	return s.InlineStart + s.InlineEnd
}

// BlockSum is the sum of block-start and block-end.
func (s LogicalSides) BlockSum() Dimen {
	return s.BlockStart + s.BlockEnd
}

// Plus adds two sets of sides, side by side.
func (s LogicalSides) Plus(o LogicalSides) LogicalSides {
	return LogicalSides{
		BlockStart:  s.BlockStart + o.BlockStart,
		InlineEnd:   s.InlineEnd + o.InlineEnd,
		BlockEnd:    s.BlockEnd + o.BlockEnd,
		InlineStart: s.InlineStart + o.InlineStart,
	}
}

// StartCorner is the offset of the content origin relative to the outer edge.
func (s LogicalSides) StartCorner() LogicalPoint {
	return LogicalPoint{Inline: s.InlineStart, Block: s.BlockStart}
}
