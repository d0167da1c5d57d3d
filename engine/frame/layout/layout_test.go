package layout

import (
	"context"
	"testing"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/core/font"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/boxflow/engine/frame/constraint"
	"github.com/npillmayer/boxflow/engine/frame/fragment"
	"github.com/npillmayer/boxflow/engine/glyphing"
	"github.com/npillmayer/boxflow/engine/glyphing/monospace"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const px = dimen.PX

const emptyViewport = `ChildFragment {
    offset: (0, 0),
    fragment: Fragment {
        size: 800×0,
        style: viewport,
        kind: Container {
            kind: Line,
            children: []
        }
    }
}
`

// Text is set in a synthetic 16px font with a monospace shaper: every
// character is 8px wide and lines are 16px high.
func testContext(opts ...Option) *Context {
	opts = append([]Option{
		WithFonts(font.NewSyntheticRegistry()),
		WithShapingCache(glyphing.NewCache(monospace.New())),
		WithParallelism(1),
	}, opts...)
	return NewContext(opts...)
}

func viewport() constraint.Space {
	return constraint.NewSpace(800*px, 600*px)
}

func block(name string) *style.Builder {
	return style.NewBuilder(name).Display(style.DisplayBlock)
}

func layoutTree(t *testing.T, c *Context, tree *boxtree.Tree) *fragment.Fragment {
	require.NoError(t, tree.Finish())
	root, err := c.Layout(context.Background(), tree, viewport())
	require.NoError(t, err)
	return root.Fragment
}

func childAt(t *testing.T, f *fragment.Fragment, path ...int) fragment.ChildFragment {
	var cf fragment.ChildFragment
	for _, i := range path {
		children := f.Children()
		require.Greater(t, len(children), i, "fragment %s has too few children", f)
		cf = children[i]
		f = cf.Fragment
	}
	return cf
}

func TestEmptyViewport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	require.NoError(t, tree.Finish())
	root, err := testContext().Layout(context.Background(), tree, viewport())
	require.NoError(t, err)
	assert.Equal(t, emptyViewport, fragment.DumpString(root))
}

func TestLayoutRejectsBadInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	c := testContext()
	_, err := c.Layout(context.Background(), nil, viewport())
	assert.Equal(t, core.EINVALID, core.Code(err))
	tree := boxtree.NewTree(nil)
	_, err = c.Layout(context.Background(), tree, viewport())
	assert.Equal(t, core.EINVALID, core.Code(err), "tree is not finished")
	require.NoError(t, tree.Finish())
	_, err = c.Layout(context.Background(), tree, constraint.NewSpace(-10*px, 600*px))
	assert.Equal(t, core.EINVALID, core.Code(err), "negative available inline size")
	negative := viewport()
	negative.AvailableBlock = -10 * px
	_, err = c.Layout(context.Background(), tree, negative)
	assert.Equal(t, core.EINVALID, core.Code(err), "negative available block size")
	_, err = c.LayoutNode(context.Background(), tree, tree.Root(), constraint.NewSpace(-1*px, -1))
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestLayoutCanceled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	p := tree.AppendBlock(tree.Root(), block("p").Build())
	tree.AppendText(p, "never laid out")
	require.NoError(t, tree.Finish())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testContext().Layout(ctx, tree, viewport())
	require.Error(t, err)
	assert.Equal(t, core.ECONNECTION, core.Code(err))
}

func TestSiblingMarginsCollapse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	tree.AppendBlock(tree.Root(), block("a").Height(style.Px(50*px)).
		Margin(style.Bottom, style.Px(20*px)).Build())
	tree.AppendBlock(tree.Root(), block("b").Height(style.Px(50*px)).
		Margin(style.Top, style.Px(10*px)).Build())
	root := layoutTree(t, testContext(), tree)
	assert.Equal(t, fragment.Box, root.Container().Kind)
	assert.Equal(t, dimen.Dimen(0), childAt(t, root, 0).Offset.Block)
	assert.Equal(t, 70*px, childAt(t, root, 1).Offset.Block, "20px and 10px collapse to 20px")
	assert.Equal(t, 120*px, root.Size.Block)
	assert.Equal(t, 800*px, childAt(t, root, 1).Fragment.Size.Inline)
}

func TestParentChildMarginsCollapse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	outer := tree.AppendBlock(tree.Root(), block("outer").Margin(style.Top, style.Px(30*px)).Build())
	tree.AppendBlock(outer, block("inner").Height(style.Px(40*px)).
		Margin(style.Top, style.Px(20*px)).Build())
	root := layoutTree(t, testContext(), tree)
	assert.Equal(t, 30*px, childAt(t, root, 0).Offset.Block)
	assert.Equal(t, dimen.Dimen(0), childAt(t, root, 0, 0).Offset.Block)
	assert.Equal(t, 40*px, childAt(t, root, 0).Fragment.Size.Block)
	assert.Equal(t, 70*px, root.Size.Block)
}

func TestBorderSeparatesMargins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	outer := tree.AppendBlock(tree.Root(), block("outer").Margin(style.Top, style.Px(30*px)).
		Border(style.Top, 1*px).Build())
	tree.AppendBlock(outer, block("inner").Height(style.Px(40*px)).
		Margin(style.Top, style.Px(20*px)).Build())
	root := layoutTree(t, testContext(), tree)
	assert.Equal(t, 30*px, childAt(t, root, 0).Offset.Block)
	assert.Equal(t, 21*px, childAt(t, root, 0, 0).Offset.Block)
	assert.Equal(t, 61*px, childAt(t, root, 0).Fragment.Size.Block)
}

func TestBoxSizing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	padded := func(name string, bs style.BoxSizing) *style.ComputedStyle {
		return block(name).Width(style.Px(400*px)).BoxSizing(bs).
			Padding(style.Left, style.Px(10*px)).Padding(style.Right, style.Px(10*px)).Build()
	}
	tree := boxtree.NewTree(nil)
	tree.AppendBlock(tree.Root(), padded("content", style.ContentBox))
	tree.AppendBlock(tree.Root(), padded("border", style.BorderBox))
	root := layoutTree(t, testContext(), tree)
	assert.Equal(t, 420*px, childAt(t, root, 0).Fragment.Size.Inline)
	assert.Equal(t, 400*px, childAt(t, root, 1).Fragment.Size.Inline)
}

func TestAutoMarginsCenter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	tree.AppendBlock(tree.Root(), block("centered").Width(style.Px(400*px)).
		Margin(style.Left, style.AutoLength).Margin(style.Right, style.AutoLength).Build())
	root := layoutTree(t, testContext(), tree)
	assert.Equal(t, 200*px, childAt(t, root, 0).Offset.Inline)
}

func TestPaddingOffsetsLines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	p := tree.AppendBlock(tree.Root(), block("p").Padding(style.Left, style.Px(12*px)).
		Padding(style.Top, style.Px(4*px)).Build())
	tree.AppendText(p, "Hello")
	root := layoutTree(t, testContext(), tree)
	para := childAt(t, root, 0).Fragment
	assert.Equal(t, fragment.Line, para.Container().Kind)
	line := childAt(t, para, 0)
	assert.Equal(t, dimen.LogicalPoint{Inline: 12 * px, Block: 4 * px}, line.Offset)
	assert.Equal(t, 788*px, line.Fragment.Size.Inline)
	assert.Equal(t, 20*px, para.Size.Block)
}

func TestLinesBesideFloat(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	tree.AppendBlock(tree.Root(), block("float").Float(style.FloatLeft).
		Width(style.Px(100*px)).Height(style.Px(16*px)).Build())
	sty := block("p").Build()
	p := tree.AppendBlock(tree.Root(), sty)
	tree.AppendText(p, "Hello")
	tree.AppendLineBreak(p, style.Inherit(sty, "br").Build())
	tree.AppendText(p, "World")
	root := layoutTree(t, testContext(), tree)
	float := childAt(t, root, 0)
	assert.Equal(t, dimen.LogicalPoint{}, float.Offset)
	assert.Equal(t, dimen.LogicalSize{Inline: 100 * px, Block: 16 * px}, float.Fragment.Size)
	para := childAt(t, root, 1).Fragment
	first, second := childAt(t, para, 0), childAt(t, para, 1)
	assert.Equal(t, 100*px, first.Offset.Inline)
	assert.Equal(t, 700*px, first.Fragment.Size.Inline)
	assert.Equal(t, dimen.LogicalPoint{Block: 16 * px}, second.Offset)
	assert.Equal(t, 800*px, second.Fragment.Size.Inline, "second line is below the float")
}

func TestClearance(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	tree.AppendBlock(tree.Root(), block("float").Float(style.FloatLeft).
		Width(style.Px(100*px)).Height(style.Px(50*px)).Build())
	p := tree.AppendBlock(tree.Root(), block("p").Clear(style.ClearBoth).Build())
	tree.AppendText(p, "x")
	root := layoutTree(t, testContext(), tree)
	cleared := childAt(t, root, 1)
	assert.Equal(t, 50*px, cleared.Offset.Block)
	assert.Equal(t, dimen.Dimen(0), childAt(t, cleared.Fragment, 0).Offset.Inline)
	assert.Equal(t, 66*px, root.Size.Block)
}

func TestRootContainsFloats(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	tree.AppendBlock(tree.Root(), block("float").Float(style.FloatRight).
		Width(style.Px(100*px)).Height(style.Px(80*px)).Build())
	tree.AppendBlock(tree.Root(), block("short").Height(style.Px(10*px)).Build())
	root := layoutTree(t, testContext(), tree)
	assert.Equal(t, 700*px, childAt(t, root, 0).Offset.Inline)
	assert.Equal(t, 80*px, root.Size.Block, "formatting root grows to contain floats")
}

func TestShrinkToFitFloat(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	f := tree.AppendBlock(tree.Root(), block("float").Float(style.FloatLeft).Build())
	tree.AppendText(f, "abc def")
	root := layoutTree(t, testContext(), tree)
	var float *fragment.Fragment
	for _, cf := range root.Children() {
		if cf.Fragment.Style.Name == "float" {
			float = cf.Fragment
		}
	}
	require.NotNil(t, float)
	assert.Equal(t, dimen.LogicalSize{Inline: 56 * px, Block: 16 * px}, float.Size)
}

func TestFloatsInCollapsedThroughBox(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	wrapper := tree.AppendBlock(tree.Root(), block("wrapper").Build())
	tree.AppendBlock(wrapper, block("float").Float(style.FloatLeft).
		Width(style.Px(50*px)).Height(style.Px(20*px)).Build())
	p := tree.AppendBlock(wrapper, block("p").Margin(style.Top, style.Px(30*px)).Build())
	tree.AppendText(p, "hi")
	root := layoutTree(t, testContext(), tree)
	w := childAt(t, root, 0)
	assert.Equal(t, 30*px, w.Offset.Block, "margin of p collapses through the wrapper")
	assert.Equal(t, dimen.LogicalPoint{}, childAt(t, w.Fragment, 0).Offset, "float follows the wrapper")
	assert.Equal(t, dimen.LogicalPoint{}, childAt(t, w.Fragment, 1).Offset)
	assert.Equal(t, 50*px, childAt(t, w.Fragment, 1, 0).Offset.Inline, "line avoids the moved float")
	assert.Equal(t, 50*px, root.Size.Block)
}

func TestRelativeOffset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	tree.AppendBlock(tree.Root(), block("rel").Height(style.Px(20*px)).Position(style.PositionRelative).
		Offset(style.Left, style.Px(10*px)).Offset(style.Top, style.Px(5*px)).Build())
	tree.AppendBlock(tree.Root(), block("next").Height(style.Px(20*px)).Build())
	root := layoutTree(t, testContext(), tree)
	assert.Equal(t, dimen.LogicalPoint{Inline: 10 * px, Block: 5 * px}, childAt(t, root, 0).Offset)
	assert.Equal(t, 20*px, childAt(t, root, 1).Offset.Block, "relative offset does not move siblings")
}

func TestAbsolutePosition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	tree.AppendBlock(tree.Root(), block("content").Height(style.Px(100*px)).Build())
	tree.AppendBlock(tree.Root(), block("abs").Position(style.PositionAbsolute).
		Width(style.Px(20*px)).Height(style.Px(20*px)).
		Offset(style.Left, style.Px(10*px)).Offset(style.Top, style.Px(5*px)).Build())
	tree.AppendBlock(tree.Root(), block("corner").Position(style.PositionAbsolute).
		Width(style.Px(20*px)).Height(style.Px(20*px)).
		Offset(style.Right, style.Px(0)).Offset(style.Bottom, style.Px(0)).Build())
	root := layoutTree(t, testContext(), tree)
	assert.Equal(t, 100*px, root.Size.Block, "absolute boxes do not take space")
	require.Len(t, root.Children(), 3)
	assert.Equal(t, dimen.LogicalPoint{Inline: 10 * px, Block: 5 * px}, childAt(t, root, 1).Offset)
	assert.Equal(t, dimen.LogicalPoint{Inline: 780 * px, Block: 80 * px}, childAt(t, root, 2).Offset)
}

func TestReplacedKeepsAspectRatio(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := boxtree.NewTree(nil)
	tree.AppendReplaced(tree.Root(), block("img").Width(style.Px(300*px)).Build(),
		dimen.LogicalSize{Inline: 150 * px, Block: 100 * px})
	root := layoutTree(t, testContext(), tree)
	assert.Equal(t, dimen.LogicalSize{Inline: 300 * px, Block: 200 * px}, childAt(t, root, 0).Fragment.Size)
}

func TestParallelLayoutMatchesSequential(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	build := func() *boxtree.Tree {
		tree := boxtree.NewTree(nil)
		texts := []string{"one two three", "four", "five six seven eight nine ten", "eleven"}
		for i, s := range texts {
			b := tree.AppendBlock(tree.Root(), block("section").Overflow(style.OverflowHidden, style.OverflowHidden).
				Margin(style.Bottom, style.Px(dimen.Dimen(i)*4*px)).Width(style.Px(120*px)).Build())
			tree.AppendText(b, s)
		}
		return tree
	}
	sequential := layoutTree(t, testContext(), build())
	parallel := layoutTree(t, testContext(WithParallelism(4)), build())
	assert.Equal(t, fragment.DumpString(fragment.Root(sequential)), fragment.DumpString(fragment.Root(parallel)))
	assert.Len(t, parallel.Children(), 4)
}
