package layout

import (
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/boxflow/engine/frame/constraint"
)

// boxModel holds the used margins, borders and padding of a box, together
// with its used sizes. Sizes are border-box sizes.
type boxModel struct {
	margins   dimen.LogicalSides
	borders   dimen.LogicalSides
	padding   dimen.LogicalSides
	inline    dimen.Dimen
	block     dimen.Dimen // valid unless blockAuto
	blockAuto bool
	minBlock  dimen.Dimen
	maxBlock  dimen.Dimen
}

func (bm boxModel) bp() dimen.LogicalSides {
	return bm.borders.Plus(bm.padding)
}

// contentInline is the inline size of the content box.
func (bm boxModel) contentInline() dimen.Dimen {
	return dimen.Max(0, bm.inline-bm.bp().InlineSum())
}

// usedBlock returns the border-box block size for a given content block
// size.
func (bm boxModel) usedBlock(content dimen.Dimen) dimen.Dimen {
	if !bm.blockAuto {
		return bm.block
	}
	return dimen.Clamp(content+bm.bp().BlockSum(), bm.minBlock, bm.maxBlock)
}

// collapsesThroughBottom is true if the bottom margin of the box's last
// child may collapse with the box's own bottom margin.
func (bm boxModel) collapsesThroughBottom() bool {
	return bm.blockAuto && bm.bp().BlockEnd == 0 && bm.minBlock <= bm.bp().BlockSum()
}

// contentSizer returns the min-content and max-content inline sizes of a
// box's content box.
type contentSizer func() (min, max dimen.Dimen, err error)

// resolveSides resolves margin or padding lengths, given in flow-relative
// order, against the inline size of the containing block. Auto resolves to
// 0.
func resolveSides(l [4]style.Length, base dimen.Dimen) dimen.LogicalSides {
	return dimen.LogicalSides{
		BlockStart:  l[0].Resolve(base),
		InlineEnd:   l[1].Resolve(base),
		BlockEnd:    l[2].Resolve(base),
		InlineStart: l[3].Resolve(base),
	}
}

// toBorderBox converts a size given for property width or height into a
// border-box size.
func toBorderBox(sty *style.ComputedStyle, d, bp dimen.Dimen) dimen.Dimen {
	if d == dimen.Infinity {
		return d
	}
	if sty.BoxSizing == style.BorderBox {
		return dimen.Max(d, bp)
	}
	return d + bp
}

// resolveBoxModel computes the used box model of a box with style sty in
// space. If shrink is not nil, an auto inline size shrinks to fit the
// content; otherwise it fills the available size.
func resolveBoxModel(sty *style.ComputedStyle, space constraint.Space, shrink contentSizer) (boxModel, error) {
	var bm boxModel
	cb := space.PercentInline
	margins := sty.LogicalLengths(sty.Margin)
	bm.margins = resolveSides(margins, cb)
	bm.padding = resolveSides(sty.LogicalLengths(sty.Padding), cb)
	bm.borders = sty.LogicalBorders()
	bp := bm.bp()
	//
	size, minL, maxL := sty.InlineSize()
	lo := toBorderBox(sty, minL.Resolve(cb), bp.InlineSum())
	hi := toBorderBox(sty, maxL.ResolveOr(cb, dimen.Infinity), bp.InlineSum())
	switch {
	case space.FixedInlineSize:
		bm.inline = space.AvailableInline
	case size.IsDefinite(cb):
		bm.inline = toBorderBox(sty, size.Resolve(cb), bp.InlineSum())
	case shrink != nil:
		minC, maxC, err := shrink()
		if err != nil {
			return bm, err
		}
		avail := space.AvailableInline - bm.margins.InlineSum() - bp.InlineSum()
		bm.inline = dimen.Min(dimen.Max(minC, avail), maxC) + bp.InlineSum()
	default:
		bm.inline = space.AvailableInline - bm.margins.InlineSum()
	}
	if !space.FixedInlineSize {
		bm.inline = dimen.Clamp(bm.inline, lo, hi)
	}
	bm.inline = dimen.Max(bm.inline, bp.InlineSum())
	if !space.FixedInlineSize && !sty.IsOutOfFlow() && sty.Display.IsBlockLevel() {
		bm.margins = autoMargins(bm.margins, margins, space.AvailableInline-bm.inline)
	}
	//
	bsize, minB, maxB := sty.BlockSize()
	pb := space.PercentBlock
	if space.IndefiniteBlock {
		pb = dimen.Infinity
	}
	bm.minBlock = toBorderBox(sty, minB.Resolve(pb), bp.BlockSum())
	bm.maxBlock = toBorderBox(sty, maxB.ResolveOr(pb, dimen.Infinity), bp.BlockSum())
	switch {
	case space.FixedBlockSize:
		bm.block = space.AvailableBlock
	case bsize.IsDefinite(pb):
		bm.block = dimen.Clamp(toBorderBox(sty, bsize.Resolve(pb), bp.BlockSum()), bm.minBlock, bm.maxBlock)
	default:
		bm.blockAuto = true
	}
	return bm, nil
}

// autoMargins distributes free inline space to auto inline margins. With
// both margins auto, the box is centered.
func autoMargins(used dimen.LogicalSides, l [4]style.Length, free dimen.Dimen) dimen.LogicalSides {
	startAuto, endAuto := l[3].IsAuto(), l[1].IsAuto()
	switch {
	case startAuto && endAuto:
		if free < 0 {
			free = 0
		}
		used.InlineStart = free / 2
		used.InlineEnd = free - used.InlineStart
	case startAuto:
		used.InlineStart = dimen.Max(0, free-used.InlineEnd)
	case endAuto:
		used.InlineEnd = free - used.InlineStart
	}
	return used
}

// shrinksToFit is true for boxes whose auto inline size is their
// shrink-to-fit size.
func shrinksToFit(sty *style.ComputedStyle) bool {
	return sty.IsFloating() || sty.Position.IsOutOfFlow() || sty.Display == style.DisplayInlineBlock
}

// relativeOffset returns the offset of a relatively positioned box.
func relativeOffset(sty *style.ComputedStyle, cbInline, cbBlock dimen.Dimen) dimen.LogicalPoint {
	var p dimen.LogicalPoint
	if sty.Position != style.PositionRelative {
		return p
	}
	off := sty.LogicalLengths(sty.Offset)
	switch {
	case isSet(off[3]):
		p.Inline = off[3].Resolve(cbInline)
	case isSet(off[1]):
		p.Inline = -off[1].Resolve(cbInline)
	}
	switch {
	case isSet(off[0]):
		p.Block = off[0].Resolve(cbBlock)
	case isSet(off[2]):
		p.Block = -off[2].Resolve(cbBlock)
	}
	return p
}

func isSet(l style.Length) bool {
	return !l.IsAuto() && !l.IsNone()
}
