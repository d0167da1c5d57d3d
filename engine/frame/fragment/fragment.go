/*
Package fragment holds the output of layout: a tree of positioned, sized
fragments ready for painting.

Fragments are immutable once layout has returned them. Each fragment owns its
children exclusively. Positions are stored with the parent, in a ChildFragment,
as an offset in logical coordinates relative to the parent's origin.

A fragment is of one of three kinds: a container (either a box or a line),
a piece of shaped text, or replaced content (images and other atomic
content whose inside is opaque to layout).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fragment

import (
	"errors"
	"fmt"

	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/boxflow/engine/glyphing"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'boxflow.frame'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.frame")
}

// Fragment is a sized output box.
type Fragment struct {
	Size  dimen.LogicalSize
	Style *style.ComputedStyle
	Kind  Kind
}

// ChildFragment places a fragment within its parent.
type ChildFragment struct {
	Offset   dimen.LogicalPoint
	Fragment *Fragment
}

// Kind is the variant part of a fragment. It is one of *Container, *Text
// and *Replaced.
type Kind interface {
	kind() string
}

// ContainerKind tells boxes from lines.
type ContainerKind int

// Containers hold either block-level content (Box) or line fragments of an
// inline formatting context (Line). Line fragments themselves are Line
// containers of text and atomic inline content.
const (
	Box ContainerKind = iota
	Line
)

func (k ContainerKind) String() string {
	if k == Line {
		return "Line"
	}
	return "Box"
}

// Container is the kind of fragments with children.
type Container struct {
	Kind     ContainerKind
	Children []ChildFragment
}

// Text is the kind of fragments holding shaped text. Level is the bidi
// embedding level of the text. Start and End are the byte range of the text
// within its paragraph.
type Text struct {
	Content    string
	Run        *glyphing.ShapedRun
	Level      uint8
	Start, End int
}

// Replaced is the kind of fragments for replaced content.
type Replaced struct{}

func (c *Container) kind() string { return "Container" }
func (t *Text) kind() string      { return "Text" }
func (r *Replaced) kind() string  { return "Replaced" }

// NewContainer creates a container fragment.
func NewContainer(k ContainerKind, size dimen.LogicalSize, sty *style.ComputedStyle,
	children []ChildFragment) *Fragment {
	//
	if children == nil {
		children = []ChildFragment{}
	}
	return &Fragment{
		Size:  size,
		Style: sty,
		Kind:  &Container{Kind: k, Children: children},
	}
}

// NewText creates a text fragment.
func NewText(size dimen.LogicalSize, sty *style.ComputedStyle, t Text) *Fragment {
	return &Fragment{Size: size, Style: sty, Kind: &t}
}

// NewReplaced creates a fragment for replaced content.
func NewReplaced(size dimen.LogicalSize, sty *style.ComputedStyle) *Fragment {
	return &Fragment{Size: size, Style: sty, Kind: &Replaced{}}
}

// Container returns the container variant of f, or nil.
func (f *Fragment) Container() *Container {
	if f == nil {
		return nil
	}
	c, _ := f.Kind.(*Container)
	return c
}

// Text returns the text variant of f, or nil.
func (f *Fragment) Text() *Text {
	if f == nil {
		return nil
	}
	t, _ := f.Kind.(*Text)
	return t
}

// IsLine is true for line containers.
func (f *Fragment) IsLine() bool {
	c := f.Container()
	return c != nil && c.Kind == Line
}

// Children returns the children of a container, or nil for other kinds.
func (f *Fragment) Children() []ChildFragment {
	if c := f.Container(); c != nil {
		return c.Children
	}
	return nil
}

func (f *Fragment) String() string {
	if f == nil {
		return "<nil fragment>"
	}
	return fmt.Sprintf("%s[%s %s]", f.Kind.kind(), styleName(f.Style), f.Size)
}

func styleName(sty *style.ComputedStyle) string {
	if sty == nil {
		return "none"
	}
	return sty.String()
}

// Root wraps a fragment as a child at the origin.
func Root(f *Fragment) ChildFragment {
	return ChildFragment{Fragment: f}
}

// --- Walking ---------------------------------------------------------------

// SkipChildren may be returned by a visitor to leave out the children of the
// current fragment.
var SkipChildren = errors.New("skip children")

// Visitor is called for each fragment of a tree. origin is the position of
// the fragment relative to the root of the walk.
type Visitor func(cf ChildFragment, origin dimen.LogicalPoint, depth int) error

// Walk visits a fragment tree depth-first, parents before children.
// Walk stops at the first error returned by visit, except for SkipChildren.
func Walk(root ChildFragment, visit Visitor) error {
	err := walk(root, dimen.LogicalPoint{}, 0, visit)
	if err == SkipChildren {
		return nil
	}
	return err
}

func walk(cf ChildFragment, base dimen.LogicalPoint, depth int, visit Visitor) error {
	origin := base.Add(cf.Offset)
	if err := visit(cf, origin, depth); err != nil {
		return err
	}
	for _, ch := range cf.Fragment.Children() {
		if err := walk(ch, origin, depth+1, visit); err != nil && err != SkipChildren {
			return err
		}
	}
	return nil
}
