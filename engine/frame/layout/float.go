package layout

import (
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/boxflow/engine/frame/constraint"
)

// float lays out a floated child shrink-to-fit and places it into the
// exclusion space, at the current position or below.
func (bl *blockLayout) float(ch boxtree.NodeID) error {
	sty := bl.lt.tree.Style(ch)
	ci := bl.bm.contentInline()
	a, err := bl.lt.LayoutAtomic(bl.ctx, ch, ci)
	if err != nil {
		return err
	}
	top := bl.floatTop()
	top = dimen.Max(top, bl.es.ClearanceOffset(constraint.ClearSidesFor(sty.Clear, bl.sty.Direction)))
	q := constraint.Query{BlockOffset: top, ContainerStart: bl.contentStart(), Available: ci}
	var e constraint.Exclusion
	bl.es, e = bl.es.PlaceFloat(q, a.MarginSize(), constraint.FloatSide(sty))
	tracer().Debugf("float #%d placed at %s", ch, e)
	bl.place(a.Fragment,
		e.InlineStart-bl.inlineStart+a.Margins.InlineStart,
		e.BlockStart+a.Margins.BlockStart,
		bl.relative(sty))
	return nil
}

// formattingRoot lays out a child establishing a new formatting context, or
// replaced content. The pending strut is resolved first; the child's own
// margins do not collapse. The child's border box avoids floats.
func (bl *blockLayout) formattingRoot(i int, ch boxtree.NodeID) error {
	sty := bl.lt.tree.Style(ch)
	bl.resolve()
	top := bl.cursor + bl.strut.Resolve()
	bl.strut = constraint.MarginStrut{}
	r, ok := bl.pre[i]
	if !ok {
		var err error
		if r, err = bl.lt.layout(bl.ctx, ch, bl.rootSpace(bl.bm.contentInline())); err != nil {
			return err
		}
	}
	if clear := constraint.ClearSidesFor(sty.Clear, bl.sty.Direction); clear != constraint.ClearNone {
		if c := bl.es.ClearanceOffset(clear); c > top+r.Margins.BlockStart {
			top = c - r.Margins.BlockStart
		}
	}
	opp, r, err := bl.avoidFloats(ch, r, top)
	if err != nil {
		return err
	}
	border := opp.BlockOffset + r.Margins.BlockStart
	inl := bl.bm.bp().InlineStart + opp.InlineOffset + r.Margins.InlineStart
	bl.place(r.Fragment, inl, border, bl.relative(sty))
	bl.cursor = border + r.Fragment.Size.Block + r.Margins.BlockEnd
	return nil
}

// rootSpace derives the space for a child establishing a new formatting
// context, with an available inline size of avail.
func (bl *blockLayout) rootSpace(avail dimen.Dimen) constraint.Space {
	pb, indefinite := bl.percentBlock()
	return bl.childSpace().
		WithAvailableSize(avail, pb, indefinite).
		WithPercentageBase(bl.bm.contentInline(), pb).
		WithNewFormattingContext()
}

func marginSize(r Result) dimen.LogicalSize {
	return dimen.LogicalSize{
		Inline: r.Fragment.Size.Inline + r.Margins.InlineSum(),
		Block:  r.Fragment.Size.Block + r.Margins.BlockSum(),
	}
}

// avoidFloats finds the layout opportunity for the margin box of a
// formatting root at or below top. A root with an automatic inline size is
// laid out again to fit next to the floats of the band at top; if it does
// not fit there, it is moved below.
func (bl *blockLayout) avoidFloats(ch boxtree.NodeID, r Result, top dimen.Dimen) (constraint.LayoutOpportunity, Result, error) {
	ci := bl.bm.contentInline()
	size := marginSize(r)
	q := constraint.Query{
		BlockOffset:    top,
		ContainerStart: bl.contentStart(),
		Available:      ci,
		InlineSize:     size.Inline,
		BlockSize:      size.Block,
	}
	opp := bl.es.Find(q)
	if bl.es.IsEmpty() || opp.BlockOffset == top || !bl.narrowable(ch) {
		return opp, r, nil
	}
	band := bl.es.Find(constraint.Query{BlockOffset: top, ContainerStart: bl.contentStart(), Available: ci})
	if band.BlockOffset >= opp.BlockOffset || band.InlineSize <= 0 {
		return opp, r, nil
	}
	narrow, err := bl.lt.layout(bl.ctx, ch, bl.rootSpace(band.InlineSize))
	if err != nil {
		return opp, r, err
	}
	nsize := marginSize(narrow)
	if nsize.Inline > band.InlineSize {
		return opp, r, nil
	}
	q.InlineSize, q.BlockSize = nsize.Inline, nsize.Block
	if nopp := bl.es.Find(q); nopp.BlockOffset < opp.BlockOffset {
		tracer().Debugf("formatting root #%d narrowed to %s next to floats", ch, nsize.Inline.PxString())
		return nopp, narrow, nil
	}
	return opp, r, nil
}

// narrowable is true for formatting roots whose inline size depends on the
// available size.
func (bl *blockLayout) narrowable(ch boxtree.NodeID) bool {
	if bl.lt.tree.Node(ch).Kind == boxtree.KindReplaced {
		return false
	}
	sty := bl.lt.tree.Style(ch)
	size, _, _ := sty.InlineSize()
	return !size.IsDefinite(bl.bm.contentInline())
}
