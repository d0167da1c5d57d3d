package layout

import (
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/boxflow/engine/frame/fragment"
)

// staticPosition is the position an absolutely positioned box would have
// had in normal flow.
type staticPosition struct {
	id     boxtree.NodeID
	inline dimen.Dimen // relative to the border box
	block  dimen.Dimen // BFC block offset
	atTop  bool
}

func (bl *blockLayout) recordStatic(ch boxtree.NodeID) {
	sp := staticPosition{id: ch, inline: bl.bm.bp().InlineStart}
	if bl.resolved {
		sp.block = bl.cursor + bl.strut.Resolve()
	} else {
		sp.atTop = true
	}
	bl.statics = append(bl.statics, sp)
}

// positionAbsolutes lays out the absolutely positioned children of the
// box. The box is their containing block: insets are resolved against its
// padding box. An axis with both insets auto keeps the static position.
// Static positions are positions of the margin box.
func (bl *blockLayout) positionAbsolutes() error {
	if len(bl.statics) == 0 {
		return nil
	}
	borders := bl.bm.borders
	pad := dimen.LogicalSize{
		Inline: bl.bm.inline - borders.InlineSum(),
		Block:  bl.blockSize - borders.BlockSum(),
	}
	for _, sp := range bl.statics {
		a, err := bl.lt.LayoutAtomic(bl.ctx, sp.id, pad.Inline)
		if err != nil {
			return err
		}
		sty := bl.lt.tree.Style(sp.id)
		off := sty.LogicalLengths(sty.Offset)
		size := a.Fragment.Size
		m := a.Margins
		p := dimen.LogicalPoint{Inline: sp.inline + m.InlineStart}
		switch {
		case isSet(off[3]):
			p.Inline = borders.InlineStart + off[3].Resolve(pad.Inline) + m.InlineStart
		case isSet(off[1]):
			p.Inline = bl.bm.inline - borders.InlineEnd - off[1].Resolve(pad.Inline) - size.Inline - m.InlineEnd
		}
		switch {
		case isSet(off[0]):
			p.Block = borders.BlockStart + off[0].Resolve(pad.Block) + m.BlockStart
		case isSet(off[2]):
			p.Block = bl.blockSize - borders.BlockEnd - off[2].Resolve(pad.Block) - size.Block - m.BlockEnd
		case sp.atTop || !bl.resolved:
			p.Block = bl.bm.bp().BlockStart + m.BlockStart
		default:
			p.Block = sp.block - bl.bfcBlock + m.BlockStart
		}
		tracer().Debugf("positioned box #%d at %s", sp.id, p)
		bl.absolutes = append(bl.absolutes, fragment.ChildFragment{Offset: p, Fragment: a.Fragment})
	}
	return nil
}
