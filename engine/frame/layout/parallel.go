package layout

import (
	"context"

	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/boxflow/engine/frame/constraint"
	"golang.org/x/sync/errgroup"
)

// prelayout lays out the in-flow children of box id which establish a new
// formatting context, concurrently. It does so only if no float from
// outside the box may affect them. The layout of a formatting root does not
// depend on its position, so block layout may use the results in place of
// a sequential layout.
func (lt *layouter) prelayout(ctx context.Context, id boxtree.NodeID, sty *style.ComputedStyle,
	bm boxModel, space constraint.Space) (map[int]Result, error) {
	//
	if lt.parallelism < 2 || !(space.NewFormattingContext || space.Exclusions.IsEmpty()) {
		return nil, nil
	}
	children := lt.tree.Children(id)
	var roots []int
	for i, ch := range children {
		if lt.tree.IsOutOfFlow(ch) || !lt.tree.IsBlockLevel(ch) {
			continue
		}
		if lt.tree.Node(ch).Kind == boxtree.KindReplaced || lt.tree.EstablishesBFC(ch) {
			roots = append(roots, i)
		}
	}
	if len(roots) < 2 {
		return nil, nil
	}
	bl := &blockLayout{lt: lt, id: id, sty: sty, space: space, bm: bm}
	s := bl.rootSpace(bm.contentInline())
	results := make([]Result, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lt.parallelism)
	for k, i := range roots {
		k, ch := k, children[i]
		g.Go(func() error {
			r, err := lt.layout(gctx, ch, s)
			if err != nil {
				return err
			}
			results[k] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	tracer().Debugf("box #%d: laid out %d formatting roots concurrently", id, len(roots))
	pre := make(map[int]Result, len(roots))
	for k, i := range roots {
		pre[i] = results[k]
	}
	return pre, nil
}
