package fragment

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestDumpEmptyViewport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.frame")
	defer teardown()
	//
	f := NewContainer(Line, dimen.LogicalSize{Inline: 800 * dimen.PX}, style.Viewport(), nil)
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, Root(f)))
	assert.Equal(t, emptyViewport, buf.String())
}

const nested = `ChildFragment {
    offset: (0, 0),
    fragment: Fragment {
        size: 800×40,
        style: body,
        kind: Container {
            kind: Box,
            children: [
                ChildFragment {
                    offset: (0, 0),
                    fragment: Fragment {
                        size: 800×20,
                        style: p,
                        kind: Container {
                            kind: Line,
                            children: [
                                ChildFragment {
                                    offset: (0, 0),
                                    fragment: Fragment {
                                        size: 40×20,
                                        style: p,
                                        kind: Container {
                                            kind: Line,
                                            children: [
                                                ChildFragment {
                                                    offset: (0, 0),
                                                    fragment: Fragment {
                                                        size: 40×20,
                                                        style: p,
                                                        kind: Text {
                                                            content: "Hello",
                                                            level: 0
                                                        }
                                                    }
                                                }
                                            ]
                                        }
                                    }
                                }
                            ]
                        }
                    }
                },
                ChildFragment {
                    offset: (10, 20),
                    fragment: Fragment {
                        size: 150×150,
                        style: img,
                        kind: Replaced
                    }
                }
            ]
        }
    }
}
`

func sampleTree() *Fragment {
	body := style.NewBuilder("body").Display(style.DisplayBlock).Build()
	p := style.NewBuilder("p").Display(style.DisplayBlock).Build()
	img := style.NewBuilder("img").Build()
	px := func(x, y int) dimen.LogicalSize {
		return dimen.LogicalSize{Inline: dimen.Dimen(x) * dimen.PX, Block: dimen.Dimen(y) * dimen.PX}
	}
	text := NewText(px(40, 20), p, Text{Content: "Hello", End: 5})
	line := NewContainer(Line, px(40, 20), p, []ChildFragment{{Fragment: text}})
	para := NewContainer(Line, px(800, 20), p, []ChildFragment{{Fragment: line}})
	image := NewReplaced(px(150, 150), img)
	return NewContainer(Box, px(800, 40), body, []ChildFragment{
		{Fragment: para},
		{Offset: dimen.LogicalPoint{Inline: 10 * dimen.PX, Block: 20 * dimen.PX}, Fragment: image},
	})
}

func TestDumpNested(t *testing.T) {
	assert.Equal(t, nested, DumpString(Root(sampleTree())))
}

func TestWalk(t *testing.T) {
	var kinds []string
	var imageAt dimen.LogicalPoint
	root := ChildFragment{Offset: dimen.LogicalPoint{Inline: 5 * dimen.PX}, Fragment: sampleTree()}
	err := Walk(root, func(cf ChildFragment, origin dimen.LogicalPoint, depth int) error {
		kinds = append(kinds, strings.Repeat(".", depth)+cf.Fragment.Kind.kind())
		if _, ok := cf.Fragment.Kind.(*Replaced); ok {
			imageAt = origin
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Container", ".Container", "..Container", "...Text", ".Replaced"}, kinds)
	assert.Equal(t, "(15, 20)", imageAt.String())
}

func TestWalkSkipAndStop(t *testing.T) {
	count := 0
	err := Walk(Root(sampleTree()), func(cf ChildFragment, origin dimen.LogicalPoint, depth int) error {
		count++
		if cf.Fragment.IsLine() {
			return SkipChildren
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, count) // body, paragraph, image
	stop := errors.New("stop")
	err = Walk(Root(sampleTree()), func(cf ChildFragment, origin dimen.LogicalPoint, depth int) error {
		return stop
	})
	assert.Equal(t, stop, err)
}

func TestAccessors(t *testing.T) {
	f := sampleTree()
	assert.False(t, f.IsLine())
	assert.Len(t, f.Children(), 2)
	assert.Nil(t, f.Text())
	assert.True(t, f.Children()[0].Fragment.IsLine())
	assert.Nil(t, f.Children()[1].Fragment.Children())
	var nilFragment *Fragment
	assert.Nil(t, nilFragment.Container())
}

func TestGraphViz(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToGraphViz(&buf, Root(sampleTree())))
	dot := buf.String()
	assert.True(t, strings.HasPrefix(dot, "digraph g {"))
	assert.Contains(t, dot, "node00001 -> node00002")
	assert.Contains(t, dot, "node00001 -> node00005")
	assert.Contains(t, dot, `Hello`)
	assert.True(t, strings.HasSuffix(dot, "}\n"))
}
