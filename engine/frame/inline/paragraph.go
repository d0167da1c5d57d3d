package inline

import (
	"context"
	"fmt"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/core/font"
	"github.com/npillmayer/boxflow/core/parameters"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/boxflow/engine/frame/fragment"
	"github.com/npillmayer/boxflow/engine/glyphing"
	"github.com/npillmayer/boxflow/engine/text/bidi"
	"github.com/npillmayer/boxflow/engine/text/linebreak"
	"github.com/npillmayer/cords"
	"golang.org/x/text/language"
	xbidi "golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

// Env holds the services an inline layout draws on.
type Env struct {
	Tree      *boxtree.Tree
	Fonts     *font.Registry
	Shaping   *glyphing.Cache
	Registers *parameters.Registers // base values, cloned per paragraph
	Breaker   linebreak.Breaker
	Atomics   Atomics
}

// Atomics lays out boxes which take part in an inline formatting context as
// a whole: inline-blocks, replaced content, floats and absolutely positioned
// boxes. Block layout implements it.
type Atomics interface {
	// LayoutAtomic lays out a box in a new formatting context, with an
	// available inline size of the containing block's content box.
	LayoutAtomic(ctx context.Context, id boxtree.NodeID, available dimen.Dimen) (Atomic, error)
	// IntrinsicSizes returns the min-content and max-content contributions
	// of a box, margins included.
	IntrinsicSizes(ctx context.Context, id boxtree.NodeID) (min, max dimen.Dimen, err error)
}

// Atomic is a box laid out as a unit. Fragment is its border box.
type Atomic struct {
	Fragment *fragment.Fragment
	Margins  dimen.LogicalSides
}

// MarginSize is the size of an atomic's margin box.
func (a Atomic) MarginSize() dimen.LogicalSize {
	if a.Fragment == nil {
		return dimen.LogicalSize{Inline: a.Margins.InlineSum(), Block: a.Margins.BlockSum()}
	}
	return dimen.LogicalSize{
		Inline: a.Fragment.Size.Inline + a.Margins.InlineSum(),
		Block:  a.Fragment.Size.Block + a.Margins.BlockSum(),
	}
}

// ItemKind tells the items of a paragraph apart.
type ItemKind uint8

// Text and atomic items cover text. Atomic inlines are represented by an
// object replacement character, forced breaks by a newline. Floats and
// absolutely positioned boxes are anchored at a text position and cover
// no text.
const (
	TextItem ItemKind = iota
	AtomicItem
	BreakItem
	ControlItem // bidi control codes for unicode-bidi
	FloatItem
	OutOfFlowItem
)

func (k ItemKind) String() string {
	switch k {
	case TextItem:
		return "text"
	case AtomicItem:
		return "atomic"
	case BreakItem:
		return "break"
	case ControlItem:
		return "control"
	case FloatItem:
		return "float"
	case OutOfFlowItem:
		return "out-of-flow"
	}
	return "?"
}

// Item is a byte range of a paragraph's text with uniform source node and
// embedding level.
type Item struct {
	Kind       ItemKind
	Node       boxtree.NodeID
	Style      *style.ComputedStyle
	Start, End int
	Level      uint8
	Lang       language.Tag
}

// IsAnchor is true for items which cover no text.
func (it Item) IsAnchor() bool {
	return it.Kind == FloatItem || it.Kind == OutOfFlowItem
}

func (it Item) String() string {
	return fmt.Sprintf("%s#%d[%d…%d]@%d", it.Kind, it.Node, it.Start, it.End, it.Level)
}

// ObjectReplacement stands in for atomic inlines within paragraph text.
const ObjectReplacement = '\ufffc'

// Paragraph is the collected content of an inline formatting context.
type Paragraph struct {
	Root        boxtree.NodeID
	Style       *style.ComputedStyle // style of the block container
	Text        string
	Items       []Item // in logical order
	Levels      bidi.Levels
	Base        bidi.Direction
	Conformance bidi.Conformance
	cord        cords.Cord
	// paragraph-wide typesetting parameters
	hyphenate       bool
	hyphenChar      string
	minHyphenLength int
	ellipsis        string
	lang            language.Tag
}

// HasContent is false for paragraphs consisting of collapsed white-space,
// bidi controls and out-of-flow boxes only.
func (p *Paragraph) HasContent() bool {
	for _, it := range p.Items {
		switch it.Kind {
		case AtomicItem, BreakItem:
			return true
		case TextItem:
			if it.End > it.Start {
				return true
			}
		}
	}
	return false
}

// ItemAt returns the index of the first non-anchor item covering byte
// position pos, or -1.
func (p *Paragraph) ItemAt(pos int) int {
	for i, it := range p.Items {
		if !it.IsAnchor() && it.Start <= pos && pos < it.End {
			return i
		}
	}
	return -1
}

func (p *Paragraph) String() string {
	return fmt.Sprintf("paragraph#%d %q %v", p.Root, p.Text, p.Items)
}

// --- Leaves ----------------------------------------------------------------

// pLeaf is a cord leaf attributing a piece of text to its source node.
type pLeaf struct {
	kind    ItemKind
	node    boxtree.NodeID
	style   *style.ComputedStyle
	lang    language.Tag
	content string
}

// Weight is part of interface cords.Leaf.
func (l *pLeaf) Weight() uint64 {
	return uint64(len(l.content))
}

// String is part of interface cords.Leaf.
func (l *pLeaf) String() string {
	return l.content
}

// Split is part of interface cords.Leaf.
func (l *pLeaf) Split(i uint64) (cords.Leaf, cords.Leaf) {
	left, right := *l, *l
	left.content, right.content = l.content[:i], l.content[i:]
	return &left, &right
}

// Substring is part of interface cords.Leaf.
func (l *pLeaf) Substring(i, j uint64) []byte {
	return []byte(l.content)[i:j]
}

var _ cords.Leaf = &pLeaf{}

// --- Collecting ------------------------------------------------------------

// openBox is a frame of the depth-first walk over an inline subtree.
type openBox struct {
	id      boxtree.NodeID
	next    int
	closing string
}

type collector struct {
	env     *Env
	p       *Paragraph
	regs    *parameters.Registers
	b       *cords.Builder
	ws      collapser
	pos     int
	anchors []Item
}

// Collect gathers the inline content of block container id into a
// paragraph. It applies white-space processing, inserts bidi controls for
// inline boxes, and splits the text into items by source node and bidi
// embedding level.
func Collect(env *Env, id boxtree.NodeID) (*Paragraph, error) {
	if env == nil || env.Tree == nil {
		return nil, core.Error(core.EINVALID, "inline layout needs a box tree")
	}
	root := env.Tree.Node(id)
	if root == nil {
		return nil, core.Error(core.EINVALID, "no box #%d", id)
	}
	p := &Paragraph{Root: id, Style: root.Style}
	c := &collector{env: env, p: p, b: cords.NewBuilder()}
	if env.Registers != nil {
		c.regs = env.Registers.Clone()
	} else {
		c.regs = parameters.NewRegisters()
	}
	c.regs.Begingroup()
	c.pushStyleParameters(root.Style)
	c.paragraphParameters(root.Style)
	c.ws.reset()
	c.walk(id)
	c.regs.Endgroup()
	p.cord = c.b.Cord()
	c.items()
	tracer().Debugf("collected %s", p)
	return p, nil
}

func (c *collector) pushStyleParameters(sty *style.ComputedStyle) {
	if sty == nil {
		return
	}
	if sty.Lang != "" {
		if tag, err := language.Parse(sty.Lang); err == nil {
			c.regs.Push(parameters.Language, tag)
		} else {
			tracer().Infof("ignoring language %q: %v", sty.Lang, err)
		}
	}
	if sty.Direction == style.RTL {
		c.regs.Push(parameters.TextDirection, xbidi.RightToLeft)
	} else {
		c.regs.Push(parameters.TextDirection, xbidi.LeftToRight)
	}
}

func (c *collector) paragraphParameters(sty *style.ComputedStyle) {
	p := c.p
	p.lang = c.regs.Language()
	hy := c.regs.Hyphenation()
	p.hyphenate = hy.Enabled
	p.hyphenChar = string(hy.Char)
	p.minHyphenLength = hy.MinLength
	p.ellipsis = c.regs.Ellipsis()
	if conf, err := bidi.ParseConformance(c.regs.Conformance()); err == nil {
		p.Conformance = conf
	}
	p.Base = bidi.LeftToRight
	if c.regs.Direction() == xbidi.RightToLeft {
		p.Base = bidi.RightToLeft
	}
	if sty != nil && sty.UnicodeBidi == style.BidiPlaintext {
		p.Base = bidi.Auto
	}
}

func (c *collector) append(kind ItemKind, node boxtree.NodeID, sty *style.ComputedStyle, s string) {
	if s == "" {
		return
	}
	c.b.Append(&pLeaf{kind: kind, node: node, style: sty, lang: c.regs.Language(), content: s})
	c.pos += len(s)
}

func (c *collector) anchor(kind ItemKind, node boxtree.NodeID, sty *style.ComputedStyle) {
	c.anchors = append(c.anchors, Item{
		Kind: kind, Node: node, Style: sty, Start: c.pos, End: c.pos, Lang: c.regs.Language(),
	})
}

// walk visits the inline descendants of root depth-first.
func (c *collector) walk(root boxtree.NodeID) {
	tree := c.env.Tree
	stack := arraystack.New()
	stack.Push(&openBox{id: root})
	for !stack.Empty() {
		top, _ := stack.Peek()
		ob := top.(*openBox)
		children := tree.Children(ob.id)
		if ob.next >= len(children) {
			stack.Pop()
			if ob.id != root {
				c.close(ob)
			}
			continue
		}
		ch := children[ob.next]
		ob.next++
		n := tree.Node(ch)
		switch {
		case n.Kind == boxtree.KindText:
			c.text(ch, n)
		case n.Kind == boxtree.KindLineBreak:
			c.append(BreakItem, ch, n.Style, "\n")
			c.ws.reset()
		case tree.IsOutOfFlow(ch):
			if n.Style.IsFloating() {
				c.anchor(FloatItem, ch, n.Style)
			} else {
				c.anchor(OutOfFlowItem, ch, n.Style)
			}
		case n.Kind == boxtree.KindInline:
			stack.Push(c.open(ch, n))
		default:
			// inline-blocks, replaced content, and blocks nested in inline boxes
			c.append(AtomicItem, ch, n.Style, string(ObjectReplacement))
			c.ws.atomic()
		}
	}
}

func (c *collector) text(id boxtree.NodeID, n *boxtree.Node) {
	sty := n.Style
	if sty == nil && n.Parent >= 0 {
		sty = c.env.Tree.Style(n.Parent)
	}
	ws := style.WhiteSpaceNormal
	if sty != nil {
		ws = sty.WhiteSpace
	}
	s := c.ws.process(norm.NFC.String(n.Text), ws)
	c.append(TextItem, id, sty, s)
}

// open starts an inline box, emitting bidi controls for its unicode-bidi
// value.
func (c *collector) open(id boxtree.NodeID, n *boxtree.Node) *openBox {
	c.regs.Begingroup()
	c.pushStyleParameters(n.Style)
	ob := &openBox{id: id}
	if n.Style == nil || c.p.Conformance == bidi.None {
		return ob
	}
	rtl := n.Style.Direction == style.RTL
	pick := func(ltr, rtlCode string) string {
		if rtl {
			return rtlCode
		}
		return ltr
	}
	var opening string
	switch n.Style.UnicodeBidi {
	case style.BidiEmbed:
		opening, ob.closing = pick("\u202a", "\u202b"), "\u202c"
	case style.BidiOverride:
		opening, ob.closing = pick("\u202d", "\u202e"), "\u202c"
	case style.BidiIsolate:
		opening, ob.closing = pick("\u2066", "\u2067"), "\u2069"
	case style.BidiIsolateOverride:
		opening = pick("\u2066\u202d", "\u2067\u202e")
		ob.closing = "\u202c\u2069"
	case style.BidiPlaintext:
		opening, ob.closing = "\u2068", "\u2069"
	}
	c.append(ControlItem, id, n.Style, opening)
	return ob
}

func (c *collector) close(ob *openBox) {
	c.append(ControlItem, ob.id, c.env.Tree.Style(ob.id), ob.closing)
	c.regs.Endgroup()
}

// items derives the paragraph text and items from the cord's leaves, and
// splits them at embedding level changes.
func (c *collector) items() {
	p := c.p
	var leaves []Item
	var sb strings.Builder
	if !p.cord.IsVoid() {
		p.cord.EachLeaf(func(l cords.Leaf, pos uint64) error {
			leaf := l.(*pLeaf)
			leaves = append(leaves, Item{
				Kind: leaf.kind, Node: leaf.node, Style: leaf.style, Lang: leaf.lang,
				Start: int(pos), End: int(pos) + len(leaf.content),
			})
			sb.WriteString(leaf.content)
			return nil
		})
	}
	p.Text = sb.String()
	p.Levels = bidi.Resolve(p.Text, p.Base, p.Conformance)
	plevel := bidi.ParagraphLevel(p.Text, p.Base)
	a := 0
	for _, it := range leaves {
		for a < len(c.anchors) && c.anchors[a].Start <= it.Start {
			p.Items = append(p.Items, c.levelled(c.anchors[a], plevel))
			a++
		}
		for _, run := range p.Levels.Slice(it.Start, it.End) {
			sub := it
			sub.Start, sub.End, sub.Level = run.Start, run.End, run.Level
			p.Items = append(p.Items, sub)
		}
	}
	for ; a < len(c.anchors); a++ {
		p.Items = append(p.Items, c.levelled(c.anchors[a], plevel))
	}
}

func (c *collector) levelled(anchor Item, plevel uint8) Item {
	anchor.Level = plevel
	return anchor
}

// Level returns the paragraph embedding level.
func (p *Paragraph) Level() uint8 {
	return bidi.ParagraphLevel(p.Text, p.Base)
}
