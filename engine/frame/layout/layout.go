package layout

import (
	"context"
	"fmt"
	"sync"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/boxflow/engine/frame/constraint"
	"github.com/npillmayer/boxflow/engine/frame/fragment"
	"github.com/npillmayer/boxflow/engine/frame/inline"
)

// Result is the outcome of laying out a box.
type Result struct {
	Fragment   *fragment.Fragment        // the border box
	Exclusions constraint.ExclusionSpace // input exclusions plus the floats of the box
	Delta      []constraint.Exclusion    // floats placed by the box
	EndStrut   constraint.MarginStrut    // margins pending at the block-end edge
	// BFCBlockOffset is the block offset of the border box within its block
	// formatting context. It is valid if Resolved is true. A box which is
	// not resolved collapses through: its margins adjoin each other.
	BFCBlockOffset dimen.Dimen
	Resolved       bool
	// SpeculativeFloats is set if floats have been placed while the BFC
	// block offset was still unknown.
	SpeculativeFloats bool
	Margins           dimen.LogicalSides // used margins
	speculated        dimen.Dimen        // offset floats have been placed relative to
}

func (r Result) String() string {
	offset := "pending"
	if r.Resolved {
		offset = r.BFCBlockOffset.PxString()
	}
	return fmt.Sprintf("result{%s, bfc=%s, %s, %d floats}", r.Fragment, offset, r.EndStrut, len(r.Delta))
}

// Layout lays out a finished box tree within a viewport space. The root of
// the tree establishes a new block formatting context. It returns the root
// fragment, which is positioned at the origin.
//
// Layout returns an error with code EINVALID if the tree or the space is
// invalid, and ECONNECTION if ctx is canceled.
func (c *Context) Layout(ctx context.Context, tree *boxtree.Tree, viewport constraint.Space) (fragment.ChildFragment, error) {
	if tree == nil {
		return fragment.ChildFragment{}, core.Error(core.EINVALID, "layout needs a box tree")
	}
	if !tree.Finished() {
		return fragment.ChildFragment{}, core.Error(core.EINVALID, "box tree has not been finished")
	}
	if err := viewport.Validate(); err != nil {
		return fragment.ChildFragment{}, err
	}
	viewport = viewport.WithNewFormattingContext()
	res, err := c.LayoutNode(ctx, tree, tree.Root(), viewport)
	if err != nil {
		return fragment.ChildFragment{}, err
	}
	tracer().Infof("layout of %d boxes done: %s", tree.Len(), res.Fragment.Size)
	return fragment.Root(res.Fragment), nil
}

// LayoutNode lays out the subtree of box id in space. The box has to be
// a block container or replaced content.
func (c *Context) LayoutNode(ctx context.Context, tree *boxtree.Tree, id boxtree.NodeID, space constraint.Space) (Result, error) {
	if tree == nil || tree.Node(id) == nil {
		return Result{}, core.Error(core.EINVALID, "no box #%d to lay out", id)
	}
	if err := space.Validate(); err != nil {
		return Result{}, err
	}
	return c.newLayouter(tree).layout(ctx, id, space)
}

// layouter lays out the boxes of one tree. It may be used concurrently.
type layouter struct {
	*Context
	tree      *boxtree.Tree
	env       *inline.Env
	intrinsic sync.Map // NodeID -> [2]dimen.Dimen, content-box sizes
}

func (c *Context) newLayouter(tree *boxtree.Tree) *layouter {
	lt := &layouter{Context: c, tree: tree}
	lt.env = &inline.Env{
		Tree:      tree,
		Fonts:     c.fonts,
		Shaping:   c.shaping,
		Registers: c.registers,
		Breaker:   c.breaker,
		Atomics:   lt,
	}
	return lt
}

func (lt *layouter) layout(ctx context.Context, id boxtree.NodeID, space constraint.Space) (Result, error) {
	if err := core.Canceled(ctx); err != nil {
		return Result{}, err
	}
	n := lt.tree.Node(id)
	switch n.Kind {
	case boxtree.KindReplaced:
		return lt.layoutReplaced(ctx, id, space)
	case boxtree.KindViewport, boxtree.KindBlock:
		return lt.layoutBlock(ctx, id, space)
	}
	return Result{}, core.Error(core.EINTERNAL, "box #%d of kind %s is not a block container", id, n.Kind)
}

var _ inline.Atomics = (*layouter)(nil)

// LayoutAtomic lays out a box as a whole, in a new formatting context.
// It is called by inline layout for inline-blocks, replaced content, floats
// and absolutely positioned boxes.
func (lt *layouter) LayoutAtomic(ctx context.Context, id boxtree.NodeID, available dimen.Dimen) (inline.Atomic, error) {
	r, err := lt.layout(ctx, id, constraint.NewSpace(dimen.Max(0, available), -1))
	if err != nil {
		return inline.Atomic{}, err
	}
	return inline.Atomic{Fragment: r.Fragment, Margins: r.Margins}, nil
}
