package html

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var minihtml = `
<html><head>
<style>
  .note { float: left; width: 100px; }
  #world { margin-top: 20px; }
</style>
</head><body>
  <p>The quick brown fox jumps over the lazy</p><b>dog.</b>
  <p id="world">Hello <b>World</b>!<br>again</p>
  <p style="padding-left: 5px; position: absolute;">This is a test.</p>
  <div class="note">A note</div>
  <img src="fox.png"><img src="dog.png" width="40" height="30">
  <script>var x = 1;</script>
</body>
`

func parse(t *testing.T, doc string) *boxtree.Tree {
	tree, err := Parse(strings.NewReader(doc), nil)
	require.NoError(t, err)
	require.True(t, tree.Finished())
	return tree
}

// find returns the boxes with a style name in document order.
func find(tree *boxtree.Tree, name string) []boxtree.NodeID {
	var found []boxtree.NodeID
	var walk func(id boxtree.NodeID)
	walk = func(id boxtree.NodeID) {
		n := tree.Node(id)
		if n.Kind != boxtree.KindText && n.Style.Name == name {
			found = append(found, id)
		}
		for _, ch := range tree.Children(id) {
			walk(ch)
		}
	}
	walk(tree.Root())
	return found
}

func TestDocumentStructure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.dom")
	defer teardown()
	//
	tree := parse(t, minihtml)
	html := tree.Children(tree.Root())
	require.Len(t, html, 1)
	body := find(tree, "body")
	require.Len(t, body, 1)
	assert.Equal(t, style.Px(8*dimen.PX), tree.Style(body[0]).Margin[style.Top])
	assert.Empty(t, find(tree, "head"), "display: none generates no boxes")
	assert.Empty(t, find(tree, "script"))
	ps := find(tree, "p")
	require.Len(t, ps, 3)
	assert.True(t, tree.EstablishesIFC(ps[0]))
	assert.False(t, tree.EstablishesIFC(body[0]))
}

func TestStyleSources(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.dom")
	defer teardown()
	//
	tree := parse(t, minihtml)
	ps := find(tree, "p")
	require.Len(t, ps, 3)
	assert.Equal(t, style.Px(20*dimen.PX), tree.Style(ps[1]).Margin[style.Top], "id selector overrides user-agent margin")
	assert.Equal(t, style.Px(16*dimen.PX), tree.Style(ps[0]).Margin[style.Top], "1em from the user-agent stylesheet")
	third := tree.Style(ps[2])
	assert.Equal(t, style.Px(5*dimen.PX), third.Padding[style.Left])
	assert.Equal(t, style.PositionAbsolute, third.Position)
	assert.True(t, tree.IsOutOfFlow(ps[2]))
	notes := find(tree, "div")
	require.Len(t, notes, 1)
	assert.Equal(t, style.FloatLeft, tree.Style(notes[0]).Float)
	assert.Equal(t, style.Px(100*dimen.PX), tree.Style(notes[0]).Width)
}

func TestImagesAndBreaks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.dom")
	defer teardown()
	//
	tree := parse(t, minihtml)
	imgs := find(tree, "img")
	require.Len(t, imgs, 2)
	assert.Equal(t, boxtree.KindReplaced, tree.Node(imgs[0]).Kind)
	assert.Equal(t, DefaultImageSize, tree.Node(imgs[0]).Intrinsic)
	assert.Equal(t, dimen.LogicalSize{Inline: 40 * dimen.PX, Block: 30 * dimen.PX}, tree.Node(imgs[1]).Intrinsic)
	assert.True(t, tree.IsInlineLevel(imgs[0]))
	brs := find(tree, "br")
	require.Len(t, brs, 1)
	assert.Equal(t, boxtree.KindLineBreak, tree.Node(brs[0]).Kind)
	assert.Equal(t, find(tree, "p")[1], tree.Node(brs[0]).Parent)
}

func TestInlineRunsAreWrapped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.dom")
	defer teardown()
	//
	tree := parse(t, minihtml)
	b := find(tree, "b")
	require.Len(t, b, 2)
	parent := tree.Node(b[0]).Parent
	assert.True(t, tree.Node(parent).Anonymous, "<b> between blocks is wrapped")
}

func TestDisplayContents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.dom")
	defer teardown()
	//
	tree := parse(t, `<body><section style="display: contents"><p>one</p></section></body>`)
	assert.Empty(t, find(tree, "section"))
	ps := find(tree, "p")
	require.Len(t, ps, 1)
	assert.Equal(t, find(tree, "body")[0], tree.Node(ps[0]).Parent)
}

func TestCustomUserAgent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.dom")
	defer teardown()
	//
	tree, err := Parse(strings.NewReader(`<p>text</p>`), &Options{UserAgent: "p { display: block; }"})
	require.NoError(t, err)
	ps := find(tree, "p")
	require.Len(t, ps, 1)
	assert.True(t, tree.IsBlockLevel(ps[0]))
	assert.Equal(t, style.DisplayInline, tree.Style(find(tree, "body")[0]).Display)
}

func TestNilDocument(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.dom")
	defer teardown()
	//
	_, err := FromDocument(nil, nil)
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestImageSizeFromFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.dom")
	defer teardown()
	//
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 60, 20))))
	fsys := fstest.MapFS{"fox.png": &fstest.MapFile{Data: buf.Bytes()}}
	doc := `<body><img src="fox.png"><img src="fox.png" width="30"><img src="gone.png"></body>`
	tree, err := Parse(strings.NewReader(doc), &Options{Images: fsys})
	require.NoError(t, err)
	imgs := find(tree, "img")
	require.Len(t, imgs, 3)
	assert.Equal(t, dimen.LogicalSize{Inline: 60 * dimen.PX, Block: 20 * dimen.PX}, tree.Node(imgs[0]).Intrinsic)
	assert.Equal(t, dimen.LogicalSize{Inline: 30 * dimen.PX, Block: 10 * dimen.PX}, tree.Node(imgs[1]).Intrinsic,
		"aspect ratio is kept")
	assert.Equal(t, DefaultImageSize, tree.Node(imgs[2]).Intrinsic)
}
