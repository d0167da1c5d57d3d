package layout

import (
	"context"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/boxflow/engine/frame/constraint"
	"github.com/npillmayer/boxflow/engine/frame/fragment"
	"github.com/npillmayer/boxflow/engine/frame/inline"
)

// IntrinsicSizes returns the min-content and max-content contributions of
// box id, margins included. Percentages count as 0.
func (lt *layouter) IntrinsicSizes(ctx context.Context, id boxtree.NodeID) (min, max dimen.Dimen, err error) {
	sty := lt.tree.Style(id)
	margins := resolveSides(sty.LogicalLengths(sty.Margin), 0)
	bp := resolveSides(sty.LogicalLengths(sty.Padding), 0).Plus(sty.LogicalBorders())
	size, minL, maxL := sty.InlineSize()
	if size.IsAbsolute() {
		w := toBorderBox(sty, size.Resolve(0), bp.InlineSum()) + margins.InlineSum()
		return w, w, nil
	}
	if min, max, err = lt.contentSizes(ctx, id); err != nil {
		return 0, 0, err
	}
	extra := margins.InlineSum() + bp.InlineSum()
	min, max = min+extra, max+extra
	if maxL.IsAbsolute() {
		hi := toBorderBox(sty, maxL.Resolve(0), bp.InlineSum()) + margins.InlineSum()
		min, max = dimen.Min(min, hi), dimen.Min(max, hi)
	}
	if minL.IsAbsolute() {
		lo := toBorderBox(sty, minL.Resolve(0), bp.InlineSum()) + margins.InlineSum()
		min, max = dimen.Max(min, lo), dimen.Max(max, lo)
	}
	return min, max, nil
}

// contentSizes returns the min-content and max-content inline sizes of the
// content box of id. Results are cached per box.
func (lt *layouter) contentSizes(ctx context.Context, id boxtree.NodeID) (min, max dimen.Dimen, err error) {
	if v, ok := lt.intrinsic.Load(id); ok {
		s := v.([2]dimen.Dimen)
		return s[0], s[1], nil
	}
	if err = core.Canceled(ctx); err != nil {
		return 0, 0, err
	}
	n := lt.tree.Node(id)
	switch {
	case n.Kind == boxtree.KindReplaced:
		min, max = n.Intrinsic.Inline, n.Intrinsic.Inline
	case lt.tree.EstablishesIFC(id):
		p, err := inline.Collect(lt.env, id)
		if err != nil {
			return 0, 0, err
		}
		if min, max, err = inline.IntrinsicSizes(ctx, lt.env, p); err != nil {
			return 0, 0, err
		}
	default:
		for _, ch := range lt.tree.Children(id) {
			if lt.tree.Style(ch).Position.IsOutOfFlow() {
				continue
			}
			cmin, cmax, err := lt.IntrinsicSizes(ctx, ch)
			if err != nil {
				return 0, 0, err
			}
			min, max = dimen.Max(min, cmin), dimen.Max(max, cmax)
		}
	}
	tracer().Debugf("content sizes of #%d: %s…%s", id, min.PxString(), max.PxString())
	lt.intrinsic.Store(id, [2]dimen.Dimen{min, max})
	return min, max, nil
}

// shrinkToFit returns a content sizer for box id.
func (lt *layouter) shrinkToFit(ctx context.Context, id boxtree.NodeID) contentSizer {
	return func() (dimen.Dimen, dimen.Dimen, error) {
		return lt.contentSizes(ctx, id)
	}
}

// layoutReplaced sizes replaced content. An auto size is taken from the
// intrinsic size, keeping the intrinsic aspect ratio if only the inline
// size is given.
func (lt *layouter) layoutReplaced(ctx context.Context, id boxtree.NodeID, space constraint.Space) (Result, error) {
	n := lt.tree.Node(id)
	intrinsic := n.Intrinsic
	bm, err := resolveBoxModel(n.Style, space, func() (dimen.Dimen, dimen.Dimen, error) {
		return intrinsic.Inline, intrinsic.Inline, nil
	})
	if err != nil {
		return Result{}, err
	}
	block := bm.block
	if bm.blockAuto {
		content := intrinsic.Block
		if intrinsic.Inline > 0 {
			content = dimen.Dimen(int64(intrinsic.Block) * int64(bm.contentInline()) / int64(intrinsic.Inline))
		}
		block = bm.usedBlock(content)
	}
	frag := fragment.NewReplaced(dimen.LogicalSize{Inline: bm.inline, Block: block}, n.Style)
	tracer().Debugf("replaced #%d: %s", id, frag.Size)
	return Result{
		Fragment:       frag,
		Exclusions:     space.Exclusions,
		BFCBlockOffset: space.BFCOffset.Block,
		Resolved:       true,
		Margins:        bm.margins,
	}, nil
}
