package boxtree

import (
	"bytes"
	"testing"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyViewport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := NewTree(nil)
	require.NoError(t, tree.Finish())
	assert.True(t, tree.EstablishesIFC(tree.Root()), "empty block container establishes an IFC")
	assert.True(t, tree.EstablishesBFC(tree.Root()))
}

func TestAnonymousBlockWrapping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := NewTree(nil)
	vp := tree.Style(tree.Root())
	body := tree.AppendElement(tree.Root(), style.Inherit(vp, "body").Display(style.DisplayBlock).Build())
	tree.AppendText(body, "Hello ")
	span := tree.AppendElement(body, style.Inherit(vp, "span").Build())
	tree.AppendText(span, "world")
	tree.AppendText(body, "\n  ")
	p := tree.AppendElement(body, style.Inherit(vp, "p").Display(style.DisplayBlock).Build())
	tree.AppendText(p, "Second")
	tree.AppendText(body, "\n")
	require.NoError(t, tree.Finish())
	//
	children := tree.Children(body)
	require.Len(t, children, 2, "inline run is wrapped, trailing whitespace dropped")
	anon := tree.Node(children[0])
	assert.True(t, anon.Anonymous)
	assert.Equal(t, KindBlock, anon.Kind)
	assert.Len(t, anon.Children, 3)
	assert.Equal(t, children[0], tree.Node(span).Parent)
	assert.True(t, tree.EstablishesIFC(children[0]))
	assert.False(t, tree.EstablishesIFC(body))
	assert.True(t, tree.EstablishesIFC(p))
	//
	var buf bytes.Buffer
	tree.Print(&buf)
	t.Logf("\n%s", buf.String())
	assert.Contains(t, buf.String(), "└── Block (p) [ifc]")
	assert.Contains(t, buf.String(), "├── Block (anonymous) [anonymous,ifc]")
}

func TestDisplayNoneAndContents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := NewTree(nil)
	vp := tree.Style(tree.Root())
	none := tree.AppendElement(tree.Root(), style.Inherit(vp, "script").Display(style.DisplayNone).Build())
	assert.Equal(t, NoNode, none)
	contents := tree.AppendElement(tree.Root(), style.Inherit(vp, "div").Display(style.DisplayContents).Build())
	assert.Equal(t, tree.Root(), contents)
	img := tree.AppendReplaced(contents, style.Inherit(vp, "img").Build(),
		dimen.LogicalSize{Inline: 150 * dimen.PX, Block: 150 * dimen.PX})
	assert.True(t, tree.IsInlineLevel(img))
	fl := tree.AppendElement(tree.Root(), style.Inherit(vp, "aside").Float(style.FloatLeft).Build())
	assert.True(t, tree.IsOutOfFlow(fl))
	assert.False(t, tree.IsInlineLevel(fl))
	assert.False(t, tree.IsBlockLevel(fl))
	require.NoError(t, tree.Finish())
	assert.True(t, tree.EstablishesIFC(tree.Root()), "floats do not disturb an IFC")
}

func TestMalformedTree(t *testing.T) {
	tree := NewTree(nil)
	b := tree.AppendElement(tree.Root(), style.Viewport())
	tree.nodes[b].Children = append(tree.nodes[b].Children, tree.Root())
	err := tree.Finish()
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestFloatsBetweenBlocksStayUnwrapped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := NewTree(nil)
	vp := tree.Style(tree.Root())
	tree.AppendText(tree.Root(), "\n")
	fl := tree.AppendBlock(tree.Root(), style.Inherit(vp, "aside").Display(style.DisplayBlock).
		Float(style.FloatLeft).Build())
	tree.AppendText(tree.Root(), "\n")
	div := tree.AppendBlock(tree.Root(), style.Inherit(vp, "div").Display(style.DisplayBlock).Build())
	tree.AppendText(div, "text")
	require.NoError(t, tree.Finish())
	assert.Equal(t, []NodeID{fl, div}, tree.Children(tree.Root()))
	assert.Equal(t, tree.Root(), tree.Node(fl).Parent)
	assert.True(t, tree.EstablishesBFC(fl))
}

func TestFinishRejectsCycles(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	tree := NewTree(nil)
	a := tree.AppendBlock(tree.Root(), style.NewBuilder("div").Display(style.DisplayBlock).Build())
	b := tree.AppendBlock(a, style.NewBuilder("div").Display(style.DisplayBlock).Build())
	tree.nodes[b].Children = append(tree.nodes[b].Children, a)
	err := tree.Finish()
	require.Error(t, err)
	assert.Equal(t, core.EINVALID, core.Code(err))
	assert.False(t, tree.Finished(), "a tree with a cycle is never laid out")
	//
	tree = NewTree(nil)
	a = tree.AppendBlock(tree.Root(), style.NewBuilder("div").Display(style.DisplayBlock).Build())
	b = tree.AppendBlock(tree.Root(), style.NewBuilder("div").Display(style.DisplayBlock).Build())
	tree.nodes[b].Children = append(tree.nodes[b].Children, a)
	err = tree.Finish()
	assert.Equal(t, core.EINVALID, core.Code(err), "node #%d has two parents", a)
}
