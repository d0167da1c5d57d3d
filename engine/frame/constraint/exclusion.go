package constraint

import (
	"fmt"
	"sort"

	"github.com/npillmayer/boxflow/core/dimen"
)

// Side is the side a float is attached to.
type Side uint8

// Floats attach to the inline-start or to the inline-end side of their
// formatting context.
const (
	InlineStartSide Side = iota
	InlineEndSide
)

func (s Side) String() string {
	if s == InlineEndSide {
		return "end"
	}
	return "start"
}

// Exclusion is the margin box of a placed float, in BFC coordinates.
type Exclusion struct {
	BlockStart, BlockEnd   dimen.Dimen
	InlineStart, InlineEnd dimen.Dimen
	Side                   Side
}

func (e Exclusion) String() string {
	return fmt.Sprintf("exclusion{%s, inline %s…%s, block %s…%s}", e.Side,
		e.InlineStart.PxString(), e.InlineEnd.PxString(),
		e.BlockStart.PxString(), e.BlockEnd.PxString())
}

// overlaps checks if e covers the block range [from…from+height). A height of
// zero queries a single block offset.
func (e Exclusion) overlaps(from, height dimen.Dimen) bool {
	if height <= 0 {
		return e.BlockStart <= from && from < e.BlockEnd
	}
	return e.BlockStart < from+height && from < e.BlockEnd
}

// ClearSides selects the floats a box clears.
type ClearSides uint8

// Sides to clear.
const (
	ClearNone  ClearSides = 0
	ClearStart ClearSides = 1
	ClearEnd   ClearSides = 2
	ClearBoth  ClearSides = ClearStart | ClearEnd
)

// ExclusionSpace is the list of floats placed within one block formatting
// context, in the order of placement. Exclusion spaces are values; Place
// returns a new space and leaves the receiver untouched.
type ExclusionSpace struct {
	exclusions []Exclusion
}

// Len returns the number of exclusions.
func (es ExclusionSpace) Len() int {
	return len(es.exclusions)
}

// IsEmpty is true if no float has been placed.
func (es ExclusionSpace) IsEmpty() bool {
	return len(es.exclusions) == 0
}

// Exclusions returns all exclusions in placement order. The result must not
// be modified.
func (es ExclusionSpace) Exclusions() []Exclusion {
	return es.exclusions
}

// Since returns the exclusions placed after the first n.
func (es ExclusionSpace) Since(n int) []Exclusion {
	if n >= len(es.exclusions) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	return es.exclusions[n:]
}

// Place adds an exclusion. The block-start of a float may not be above the
// block-start of any earlier float; if it is, e is moved down, keeping its
// height.
func (es ExclusionSpace) Place(e Exclusion) ExclusionSpace {
	if n := len(es.exclusions); n > 0 {
		if last := es.exclusions[n-1]; e.BlockStart < last.BlockStart {
			d := last.BlockStart - e.BlockStart
			e.BlockStart += d
			e.BlockEnd += d
		}
	}
	tracer().Debugf("placing %s", e)
	excl := es.exclusions[:len(es.exclusions):len(es.exclusions)]
	return ExclusionSpace{exclusions: append(excl, e)}
}

// Append places a list of exclusions, in order.
func (es ExclusionSpace) Append(excl []Exclusion) ExclusionSpace {
	for _, e := range excl {
		es = es.Place(e)
	}
	return es
}

// LastFloatBlockEnd returns the lowest block-end of all floats, or 0.
func (es ExclusionSpace) LastFloatBlockEnd() dimen.Dimen {
	var end dimen.Dimen
	for _, e := range es.exclusions {
		if e.BlockEnd > end {
			end = e.BlockEnd
		}
	}
	return end
}

// LastFloatBlockStart returns the block-start of the most recently placed
// float, or 0.
func (es ExclusionSpace) LastFloatBlockStart() dimen.Dimen {
	if len(es.exclusions) == 0 {
		return 0
	}
	return es.exclusions[len(es.exclusions)-1].BlockStart
}

// ClearanceOffset returns the block offset below all floats on the cleared
// sides. It returns 0 if there is nothing to clear.
func (es ExclusionSpace) ClearanceOffset(clear ClearSides) dimen.Dimen {
	var offset dimen.Dimen
	for _, e := range es.exclusions {
		if (e.Side == InlineStartSide && clear&ClearStart != 0) ||
			(e.Side == InlineEndSide && clear&ClearEnd != 0) {
			offset = dimen.Max(offset, e.BlockEnd)
		}
	}
	return offset
}

// LayoutOpportunity is a band of inline space free of floats. InlineOffset
// is relative to the start of the query's containing box.
type LayoutOpportunity struct {
	BlockOffset  dimen.Dimen
	BlockEnd     dimen.Dimen // end of the band, or dimen.Infinity
	InlineOffset dimen.Dimen
	InlineSize   dimen.Dimen
	Overflow     bool // nothing fits; the full available size is offered
}

func (o LayoutOpportunity) String() string {
	s := fmt.Sprintf("opportunity{@%s, %s…+%s}", o.BlockOffset.PxString(),
		o.InlineOffset.PxString(), o.InlineSize.PxString())
	if o.Overflow {
		s += "!"
	}
	return s
}

// Query describes a search for a layout opportunity. ContainerStart is the
// inline offset of the containing box's content edge within the BFC,
// Available its inline size.
type Query struct {
	BlockOffset    dimen.Dimen
	ContainerStart dimen.Dimen
	Available      dimen.Dimen
	InlineSize     dimen.Dimen // minimum inline size needed
	BlockSize      dimen.Dimen // block size which has to stay free of floats
}

// FindLayoutOpportunity finds the first band at or below blockOffset which
// is at least inlineSize wide.
func (es ExclusionSpace) FindLayoutOpportunity(blockOffset, inlineSize, available dimen.Dimen) LayoutOpportunity {
	return es.Find(Query{BlockOffset: blockOffset, Available: available, InlineSize: inlineSize})
}

// FindLayoutOpportunityWithHeight finds the first band at or below
// blockOffset which is at least inlineSize wide and stays so for blockSize.
func (es ExclusionSpace) FindLayoutOpportunityWithHeight(blockOffset, inlineSize, blockSize,
	available dimen.Dimen) LayoutOpportunity {
	//
	return es.Find(Query{
		BlockOffset: blockOffset,
		Available:   available,
		InlineSize:  inlineSize,
		BlockSize:   blockSize,
	})
}

// Find performs a shelf search for a layout opportunity. Candidate block
// offsets are the query's offset and every float block-end below it. Floats
// at the inline-start side narrow the band from the start, floats at the
// inline-end side from the end. If no band is wide enough, the full available
// size below all floats is returned, flagged as overflowing if it is still too
// narrow.
func (es ExclusionSpace) Find(q Query) LayoutOpportunity {
	if q.Available < 0 {
		q.Available = 0
	}
	if len(es.exclusions) == 0 {
		return LayoutOpportunity{
			BlockOffset: q.BlockOffset,
			BlockEnd:    dimen.Infinity,
			InlineSize:  q.Available,
			Overflow:    q.Available < q.InlineSize,
		}
	}
	for _, offset := range es.shelves(q.BlockOffset) {
		start, end := q.ContainerStart, q.ContainerStart+q.Available
		bandEnd := dimen.Infinity
		for _, e := range es.exclusions {
			if e.overlaps(offset, q.BlockSize) {
				if e.Side == InlineStartSide {
					start = dimen.Max(start, e.InlineEnd)
				} else {
					end = dimen.Min(end, e.InlineStart)
				}
				if e.BlockEnd > offset {
					bandEnd = dimen.Min(bandEnd, e.BlockEnd)
				}
			} else if e.BlockStart > offset {
				bandEnd = dimen.Min(bandEnd, e.BlockStart)
			}
		}
		if w := end - start; w >= 0 && w >= q.InlineSize {
			return LayoutOpportunity{
				BlockOffset:  offset,
				BlockEnd:     bandEnd,
				InlineOffset: start - q.ContainerStart,
				InlineSize:   w,
			}
		}
	}
	below := dimen.Max(q.BlockOffset, es.LastFloatBlockEnd())
	tracer().Debugf("no layout opportunity for %s, overflowing at %s",
		q.InlineSize.PxString(), below.PxString())
	return LayoutOpportunity{
		BlockOffset: below,
		BlockEnd:    dimen.Infinity,
		InlineSize:  q.Available,
		Overflow:    q.Available < q.InlineSize,
	}
}

// shelves returns candidate block offsets at or below from, ascending.
func (es ExclusionSpace) shelves(from dimen.Dimen) []dimen.Dimen {
	offsets := []dimen.Dimen{from}
	for _, e := range es.exclusions {
		if e.BlockEnd > from {
			offsets = append(offsets, e.BlockEnd)
		}
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return offsets
}

// PlaceFloat positions a float with a margin box of the given size at the
// first opportunity at or below q.BlockOffset, and places it. A float is
// never placed above an earlier float.
func (es ExclusionSpace) PlaceFloat(q Query, size dimen.LogicalSize, side Side) (ExclusionSpace, Exclusion) {
	q.BlockOffset = dimen.Max(q.BlockOffset, es.LastFloatBlockStart())
	q.InlineSize, q.BlockSize = size.Inline, size.Block
	opp := es.Find(q)
	e := Exclusion{BlockStart: opp.BlockOffset, BlockEnd: opp.BlockOffset + size.Block, Side: side}
	if side == InlineStartSide {
		e.InlineStart = q.ContainerStart + opp.InlineOffset
		e.InlineEnd = e.InlineStart + size.Inline
	} else {
		e.InlineEnd = q.ContainerStart + opp.InlineOffset + opp.InlineSize
		e.InlineStart = e.InlineEnd - size.Inline
	}
	return es.Place(e), e
}
