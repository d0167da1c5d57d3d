package boxtree

import (
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/dom/style"
)

// NodeID addresses a node of a box tree.
type NodeID int32

// NoNode is the null value of NodeID.
const NoNode NodeID = -1

// Kind is the kind of a box tree node.
type Kind uint8

// Kinds of nodes
const (
	KindViewport Kind = iota
	KindBlock         // block container, including inline-blocks
	KindInline        // inline box, display: inline
	KindText          // text run
	KindReplaced      // atomic replaced content, e.g. an image
	KindLineBreak     // forced line break
)

var kindNames = [...]string{"Viewport", "Block", "Inline", "Text", "Replaced", "LineBreak"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// Node is a node of the box tree.
type Node struct {
	Kind      Kind
	Style     *style.ComputedStyle
	Parent    NodeID
	Children  []NodeID
	Text      string            // for text nodes
	Intrinsic dimen.LogicalSize // for replaced content
	Anonymous bool
}

// Tree is a box tree. Trees are built single-threaded; after Finish() a
// tree may be read concurrently.
type Tree struct {
	nodes    []Node
	finished bool
}

// NewTree creates a box tree with a viewport root. A nil style is replaced
// by style.Viewport().
func NewTree(viewport *style.ComputedStyle) *Tree {
	if viewport == nil {
		viewport = style.Viewport()
	}
	t := &Tree{}
	t.nodes = append(t.nodes, Node{Kind: KindViewport, Style: viewport, Parent: NoNode})
	return t
}

// Root returns the viewport node.
func (t *Tree) Root() NodeID {
	return 0
}

// Len returns the number of nodes, including detached ones.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a node. Clients must not modify the node.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Children returns the child IDs of a node.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.Children
	}
	return nil
}

// Style returns the style of a node.
func (t *Tree) Style(id NodeID) *style.ComputedStyle {
	if n := t.Node(id); n != nil {
		return n.Style
	}
	return nil
}

// Finished is true if Finish() has been called.
func (t *Tree) Finished() bool {
	return t.finished
}

func (t *Tree) add(parent NodeID, n Node) NodeID {
	if t.finished {
		panic("box tree is finished, cannot append nodes")
	}
	if t.Node(parent) == nil {
		panic(fmt.Sprintf("box tree has no node #%d", parent))
	}
	id := NodeID(len(t.nodes))
	n.Parent = parent
	t.nodes = append(t.nodes, n)
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}

// AppendElement appends a box for an element with style s and returns its ID.
// Elements with display "none" generate no box and NoNode is returned.
// Elements with display "contents" generate no box either; parent is
// returned, so the element's children attach to it.
func (t *Tree) AppendElement(parent NodeID, s *style.ComputedStyle) NodeID {
	switch s.Display {
	case style.DisplayNone:
		return NoNode
	case style.DisplayContents:
		return parent
	case style.DisplayInline:
		return t.add(parent, Node{Kind: KindInline, Style: s})
	}
	return t.add(parent, Node{Kind: KindBlock, Style: s})
}

// AppendBlock appends a block container. Inline-level display values of s
// are treated as block.
func (t *Tree) AppendBlock(parent NodeID, s *style.ComputedStyle) NodeID {
	return t.add(parent, Node{Kind: KindBlock, Style: s})
}

// AppendInline appends an inline box.
func (t *Tree) AppendInline(parent NodeID, s *style.ComputedStyle) NodeID {
	return t.add(parent, Node{Kind: KindInline, Style: s})
}

// AppendText appends a text run with the style of its parent.
func (t *Tree) AppendText(parent NodeID, text string) NodeID {
	if text == "" {
		return NoNode
	}
	return t.add(parent, Node{Kind: KindText, Style: t.nodes[parent].Style, Text: text})
}

// AppendReplaced appends replaced content with an intrinsic size.
func (t *Tree) AppendReplaced(parent NodeID, s *style.ComputedStyle, intrinsic dimen.LogicalSize) NodeID {
	if s.Display == style.DisplayNone {
		return NoNode
	}
	return t.add(parent, Node{Kind: KindReplaced, Style: s, Intrinsic: intrinsic})
}

// AppendLineBreak appends a forced line break.
func (t *Tree) AppendLineBreak(parent NodeID, s *style.ComputedStyle) NodeID {
	return t.add(parent, Node{Kind: KindLineBreak, Style: s})
}

// --- Queries ---------------------------------------------------------------

// IsOutOfFlow is true for floated and absolutely positioned boxes.
func (t *Tree) IsOutOfFlow(id NodeID) bool {
	n := t.Node(id)
	if n.Kind == KindText || n.Kind == KindLineBreak || n.Kind == KindViewport {
		return false
	}
	return n.Style.IsOutOfFlow()
}

// IsInlineLevel is true for nodes participating in an inline formatting
// context: inline boxes, text, line breaks, inline replaced content and
// inline-blocks. Out-of-flow boxes are neither inline-level nor block-level.
func (t *Tree) IsInlineLevel(id NodeID) bool {
	n := t.Node(id)
	switch n.Kind {
	case KindText, KindLineBreak, KindInline:
		return true
	case KindViewport:
		return false
	}
	if n.Style.IsOutOfFlow() {
		return false
	}
	return n.Style.Display.IsInlineLevel()
}

// IsBlockLevel is true for in-flow block-level boxes.
func (t *Tree) IsBlockLevel(id NodeID) bool {
	n := t.Node(id)
	if n.Kind != KindBlock && n.Kind != KindReplaced {
		return false
	}
	return !n.Style.IsOutOfFlow() && n.Style.Display.IsBlockLevel()
}

// IsBlockContainer is true for the viewport and block boxes.
func (t *Tree) IsBlockContainer(id NodeID) bool {
	k := t.Node(id).Kind
	return k == KindViewport || k == KindBlock
}

// EstablishesIFC is true for a block container whose in-flow children are
// all inline-level. This holds for a block container without children.
func (t *Tree) EstablishesIFC(id NodeID) bool {
	if !t.IsBlockContainer(id) {
		return false
	}
	for _, ch := range t.nodes[id].Children {
		if t.IsBlockLevel(ch) {
			return false
		}
	}
	return true
}

// EstablishesBFC is true for block containers establishing a new block
// formatting context: the root, floats, absolutely positioned boxes,
// inline-blocks, flow-roots, and boxes with overflow other than visible.
func (t *Tree) EstablishesBFC(id NodeID) bool {
	n := t.Node(id)
	if n.Kind == KindViewport {
		return true
	}
	return n.Kind == KindBlock && n.Style.EstablishesBFC()
}

// --- Finishing -------------------------------------------------------------

// Finish wraps inline-level runs among block-level siblings into anonymous
// block boxes and drops whitespace-only runs between blocks. It checks the
// parent chain of every node and returns an error with code EINVALID if the
// tree is not well-formed.
func (t *Tree) Finish() error {
	if t.finished {
		return nil
	}
	if err := t.check(); err != nil {
		return err
	}
	count := len(t.nodes)
	for id := 0; id < count; id++ {
		if t.IsBlockContainer(NodeID(id)) {
			t.wrapInlineRuns(NodeID(id))
		}
	}
	t.finished = true
	tracer().Debugf("box tree finished with %d nodes", len(t.nodes))
	return nil
}

func (t *Tree) check() error {
	seen := make([]bool, len(t.nodes))
	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		if seen[id] {
			return core.Error(core.EINVALID, "box tree node #%d is reachable twice", id)
		}
		seen[id] = true
		for _, ch := range t.nodes[id].Children {
			if t.nodes[ch].Parent != id {
				return core.Error(core.EINVALID, "box tree node #%d has inconsistent parent", ch)
			}
			if err := visit(ch); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(t.Root())
}

func (t *Tree) wrapInlineRuns(id NodeID) {
	children := t.nodes[id].Children
	hasBlock := false
	for _, ch := range children {
		if t.IsBlockLevel(ch) {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		return
	}
	var wrapped []NodeID
	var run []NodeID
	flush := func() {
		if len(run) == 0 {
			return
		}
		if t.isCollapsibleRun(run) {
			tracer().Debugf("dropping whitespace run in #%d", id)
			for _, r := range run {
				if t.IsOutOfFlow(r) {
					wrapped = append(wrapped, r)
				} else {
					t.nodes[r].Parent = NoNode
				}
			}
			run = run[:0]
			return
		}
		anon := NodeID(len(t.nodes))
		t.nodes = append(t.nodes, Node{
			Kind:      KindBlock,
			Style:     style.Anonymous(t.nodes[id].Style),
			Parent:    id,
			Anonymous: true,
			Children:  append([]NodeID(nil), run...),
		})
		for _, r := range run {
			t.nodes[r].Parent = anon
		}
		wrapped = append(wrapped, anon)
		run = run[:0]
	}
	for _, ch := range children {
		if t.IsBlockLevel(ch) {
			flush()
			wrapped = append(wrapped, ch)
		} else {
			run = append(run, ch)
		}
	}
	flush()
	t.nodes[id].Children = wrapped
}

// isCollapsibleRun is true if a run consists of whitespace-only text
// with collapsing white-space and out-of-flow boxes. Out-of-flow boxes of
// such a run stay children of the block container.
func (t *Tree) isCollapsibleRun(run []NodeID) bool {
	for _, id := range run {
		n := t.nodes[id]
		if t.IsOutOfFlow(id) {
			continue
		}
		if n.Kind != KindText || !n.Style.WhiteSpace.CollapsesSpaces() {
			return false
		}
		if strings.Trim(n.Text, " \t\n\r\f") != "" {
			return false
		}
	}
	return true
}

// --- Debugging -------------------------------------------------------------

// Print writes a human readable rendition of the tree to w.
func (t *Tree) Print(w io.Writer) {
	t.print(w, t.Root(), "", "", "")
}

func (t *Tree) print(w io.Writer, id NodeID, prefix, first, rest string) {
	n := t.nodes[id]
	fmt.Fprintf(w, "%s%s%s\n", prefix, first, t.label(id))
	for i, ch := range n.Children {
		if i == len(n.Children)-1 {
			t.print(w, ch, prefix+rest, "└── ", "    ")
		} else {
			t.print(w, ch, prefix+rest, "├── ", "│   ")
		}
	}
}

func (t *Tree) label(id NodeID) string {
	n := t.nodes[id]
	switch n.Kind {
	case KindText:
		return fmt.Sprintf("Text %q", n.Text)
	case KindReplaced:
		return fmt.Sprintf("Replaced %s (%s)", n.Intrinsic, n.Style)
	case KindLineBreak:
		return "LineBreak"
	}
	var flags []string
	if n.Anonymous {
		flags = append(flags, "anonymous")
	}
	if n.Kind == KindBlock && t.EstablishesBFC(id) {
		flags = append(flags, "bfc")
	}
	if n.Kind != KindInline && t.EstablishesIFC(id) {
		flags = append(flags, "ifc")
	}
	label := fmt.Sprintf("%s (%s)", n.Kind, n.Style)
	if len(flags) > 0 {
		label += " [" + strings.Join(flags, ",") + "]"
	}
	return label
}
