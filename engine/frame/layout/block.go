package layout

import (
	"context"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/boxflow/engine/frame/constraint"
	"github.com/npillmayer/boxflow/engine/frame/fragment"
	"github.com/npillmayer/boxflow/engine/frame/inline"
)

// placed is a child fragment with its block offset still in BFC coordinates.
type placed struct {
	frag   *fragment.Fragment
	inline dimen.Dimen // relative to the parent's border box
	block  dimen.Dimen // BFC block offset of the border box
	atTop  bool        // at the content top of a parent without known offset
	rel    dimen.LogicalPoint
}

// speculation records a child which collapsed through and placed floats
// at a guessed offset.
type speculation struct {
	child int
	at    dimen.Dimen
}

// blockLayout is the state of laying out a single block container.
type blockLayout struct {
	lt    *layouter
	ctx   context.Context
	id    boxtree.NodeID
	sty   *style.ComputedStyle
	space constraint.Space
	bm    boxModel
	kind  fragment.ContainerKind

	resolved    bool
	bfcBlock    dimen.Dimen // block offset of the border box, if resolved
	inlineStart dimen.Dimen // BFC inline offset of the border box
	root        dimen.Dimen // root of the strut, if not resolved
	strut       constraint.MarginStrut
	cursor      dimen.Dimen // block-end of the last in-flow child, if resolved
	es          constraint.ExclusionSpace
	blockSize   dimen.Dimen

	speculative bool
	speculated  dimen.Dimen
	forced      map[int]dimen.Dimen // BFC offsets for children, found in earlier passes
	pending     []speculation
	changed     bool
	pre         map[int]Result // formatting roots laid out in advance

	children  []placed
	absolutes []fragment.ChildFragment
	statics   []staticPosition
}

// layoutBlock lays out a block container. Layout is repeated if a child
// turns out to have placed floats at a wrong offset.
func (lt *layouter) layoutBlock(ctx context.Context, id boxtree.NodeID, space constraint.Space) (Result, error) {
	sty := lt.tree.Style(id)
	var shrink contentSizer
	if id != lt.tree.Root() && shrinksToFit(sty) {
		shrink = lt.shrinkToFit(ctx, id)
	}
	bm, err := resolveBoxModel(sty, space, shrink)
	if err != nil {
		return Result{}, err
	}
	var pre map[int]Result
	if !lt.tree.EstablishesIFC(id) {
		if pre, err = lt.prelayout(ctx, id, sty, bm, space); err != nil {
			return Result{}, err
		}
	}
	forced := make(map[int]dimen.Dimen)
	var bl *blockLayout
	for pass := 1; ; pass++ {
		bl = &blockLayout{
			lt:     lt,
			ctx:    ctx,
			id:     id,
			sty:    sty,
			space:  space,
			bm:     bm,
			forced: forced,
			pre:    pre,
		}
		if err := bl.run(); err != nil {
			return Result{}, err
		}
		if !bl.changed || pass >= lt.maxPasses {
			break
		}
		tracer().Debugf("box #%d: BFC offsets of children changed, pass %d", id, pass+1)
	}
	return bl.result(), nil
}

func (bl *blockLayout) run() error {
	bl.start()
	var err error
	if bl.lt.tree.EstablishesIFC(bl.id) {
		err = bl.inlineContent()
	} else {
		err = bl.blockChildren()
	}
	if err != nil {
		return err
	}
	return bl.finish()
}

func (bl *blockLayout) start() {
	bl.kind = fragment.Box
	if bl.space.NewFormattingContext {
		bl.resolveAt(0)
		return
	}
	bl.inlineStart = bl.space.BFCOffset.Inline + bl.bm.margins.InlineStart
	bl.es = bl.space.Exclusions
	if bl.space.BFCOffsetKnown {
		bl.resolveAt(bl.space.BFCOffset.Block)
		return
	}
	bl.root, bl.strut = bl.space.BFCOffset.Block, bl.space.Strut
	if bl.bm.bp().BlockStart != 0 {
		bl.resolve()
	}
}

// --- BFC offset ------------------------------------------------------------

// resolve fixes the BFC block offset of the box by collapsing the pending
// margins.
func (bl *blockLayout) resolve() {
	if bl.resolved {
		return
	}
	pos := bl.root + bl.strut.Resolve()
	if t := bl.space.ClearanceTarget; t > pos {
		pos = t
	}
	bl.resolveAt(pos)
}

func (bl *blockLayout) resolveAt(pos dimen.Dimen) {
	tracer().Debugf("box #%d resolved at %s", bl.id, pos.PxString())
	bl.bfcBlock, bl.resolved = pos, true
	bl.strut = constraint.MarginStrut{}
	bl.cursor = pos + bl.bm.bp().BlockStart
	bl.settle(pos)
}

// settle checks pending speculations against the now known offset.
func (bl *blockLayout) settle(pos dimen.Dimen) {
	for _, s := range bl.pending {
		if s.at != pos {
			bl.force(s.child, pos)
		}
	}
	bl.pending = nil
}

// force records the BFC offset for the next layout pass of a child.
func (bl *blockLayout) force(child int, pos dimen.Dimen) {
	if f, ok := bl.forced[child]; ok && f == pos {
		return
	}
	bl.forced[child] = pos
	bl.changed = true
}

// position returns the block offset a child with pending strut would start
// at.
func (bl *blockLayout) position(strut constraint.MarginStrut) dimen.Dimen {
	if bl.resolved {
		return bl.cursor + strut.Resolve()
	}
	if bl.space.HasForcedOffset {
		return bl.space.ForcedBFCBlockOffset
	}
	return bl.root + strut.Resolve()
}

// floatTop returns the block offset for a float at the current position.
// Without a known BFC offset, the offset is guessed.
func (bl *blockLayout) floatTop() dimen.Dimen {
	top := bl.position(bl.strut)
	if !bl.resolved && !bl.speculative {
		bl.speculative, bl.speculated = true, top
		tracer().Debugf("box #%d places floats at guessed offset %s", bl.id, top.PxString())
	}
	return top
}

// --- Children --------------------------------------------------------------

// contentStart is the BFC inline offset of the content box.
func (bl *blockLayout) contentStart() dimen.Dimen {
	return bl.inlineStart + bl.bm.bp().InlineStart
}

// percentBlock returns the base for block percentages of children.
func (bl *blockLayout) percentBlock() (dimen.Dimen, bool) {
	switch {
	case !bl.bm.blockAuto:
		return dimen.Max(0, bl.bm.block-bl.bm.bp().BlockSum()), false
	case bl.id == bl.lt.tree.Root():
		return bl.space.AvailableBlock, bl.space.IndefiniteBlock
	}
	return 0, true
}

// childSpace derives the space for children participating in the block
// formatting context of the box.
func (bl *blockLayout) childSpace() constraint.Space {
	pb, indefinite := bl.percentBlock()
	return bl.space.WithAvailableSize(bl.bm.contentInline(), pb, indefinite).
		WithinFormattingContext().
		WithExclusions(bl.es).
		WithoutForcedBFCBlockOffset().
		WithClearance(0).
		WithFlow(bl.sty.WritingMode, bl.sty.Direction)
}

func (bl *blockLayout) relative(sty *style.ComputedStyle) dimen.LogicalPoint {
	pb, _ := bl.percentBlock()
	return relativeOffset(sty, bl.bm.contentInline(), pb)
}

func (bl *blockLayout) place(f *fragment.Fragment, inline, block dimen.Dimen, rel dimen.LogicalPoint) {
	bl.children = append(bl.children, placed{frag: f, inline: inline, block: block, rel: rel})
}

func (bl *blockLayout) placeAtTop(f *fragment.Fragment, inline dimen.Dimen, rel dimen.LogicalPoint) {
	bl.children = append(bl.children, placed{frag: f, inline: inline, atTop: true, rel: rel})
}

func (bl *blockLayout) blockChildren() error {
	tree := bl.lt.tree
	for i, ch := range tree.Children(bl.id) {
		if err := core.Canceled(bl.ctx); err != nil {
			return err
		}
		sty := tree.Style(ch)
		var err error
		switch {
		case sty.Position.IsOutOfFlow():
			bl.recordStatic(ch)
		case sty.IsFloating():
			err = bl.float(ch)
		case !tree.IsBlockLevel(ch):
			tracer().Errorf("box #%d: skipping inline-level child #%d among blocks", bl.id, ch)
		case tree.Node(ch).Kind == boxtree.KindReplaced || tree.EstablishesBFC(ch):
			err = bl.formattingRoot(i, ch)
		default:
			err = bl.inFlow(i, ch)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// inFlow lays out a child participating in the formatting context of the
// box. The child's block-start margin joins the pending strut, and the
// child resolves the strut once it has content.
func (bl *blockLayout) inFlow(i int, ch boxtree.NodeID) error {
	sty := bl.lt.tree.Style(ch)
	ci := bl.bm.contentInline()
	childStrut := bl.strut.Append(sty.LogicalLengths(sty.Margin)[0].Resolve(ci))
	origin := dimen.LogicalPoint{Inline: bl.contentStart()}
	s := bl.childSpace()
	cleared := false
	if clear := constraint.ClearSidesFor(sty.Clear, bl.sty.Direction); clear != constraint.ClearNone {
		if c := bl.es.ClearanceOffset(clear); c > bl.position(childStrut) {
			bl.resolve()
			origin.Block = c
			s = s.WithBFCOffset(origin)
			bl.strut = constraint.MarginStrut{}
			cleared = true
			tracer().Debugf("box #%d clears floats at %s", ch, c.PxString())
		}
	}
	if !cleared {
		if bl.resolved {
			origin.Block = bl.cursor
		} else {
			origin.Block = bl.root
			if bl.space.HasForcedOffset {
				s = s.WithForcedBFCBlockOffset(bl.space.ForcedBFCBlockOffset)
			}
		}
		s = s.WithPendingBFCOffset(origin, childStrut)
		if f, ok := bl.forced[i]; ok {
			s = s.WithForcedBFCBlockOffset(f)
		}
	}
	r, err := bl.lt.layout(bl.ctx, ch, s)
	if err != nil {
		return err
	}
	bl.es = r.Exclusions
	inl := bl.bm.bp().InlineStart + r.Margins.InlineStart
	if r.Resolved {
		if bl.resolved {
			bl.settle(r.BFCBlockOffset)
		} else {
			bl.resolveAt(r.BFCBlockOffset)
		}
		if r.SpeculativeFloats && r.speculated != r.BFCBlockOffset {
			bl.force(i, r.BFCBlockOffset)
		}
		bl.place(r.Fragment, inl, r.BFCBlockOffset, bl.relative(sty))
		bl.cursor = r.BFCBlockOffset + r.Fragment.Size.Block
		bl.strut = r.EndStrut.Append(r.Margins.BlockEnd)
		return nil
	}
	// the child collapses through
	switch {
	case bl.resolved && r.SpeculativeFloats:
		bl.place(r.Fragment, inl, r.speculated, bl.relative(sty))
	case bl.resolved:
		bl.place(r.Fragment, inl, bl.cursor+childStrut.Resolve(), bl.relative(sty))
	default:
		bl.placeAtTop(r.Fragment, inl, bl.relative(sty))
		if r.SpeculativeFloats {
			bl.pending = append(bl.pending, speculation{child: i, at: r.speculated})
		}
	}
	bl.strut = r.EndStrut.Append(r.Margins.BlockEnd)
	return nil
}

// inlineContent lays out the paragraph of a block container establishing
// an inline formatting context.
func (bl *blockLayout) inlineContent() error {
	lt := bl.lt
	bl.kind = fragment.Line
	p, err := inline.Collect(lt.env, bl.id)
	if err != nil {
		return err
	}
	anchors := false
	for _, it := range p.Items {
		if it.IsAnchor() {
			anchors = true
			break
		}
	}
	content := p.HasContent()
	if !content && !anchors {
		return nil
	}
	var top dimen.Dimen
	if content {
		bl.resolve()
		top = bl.cursor
	} else {
		top = bl.floatTop()
	}
	s := bl.childSpace().WithBFCOffset(dimen.LogicalPoint{Inline: bl.contentStart(), Block: top})
	res, err := inline.Layout(bl.ctx, lt.env, p, s)
	if err != nil {
		return err
	}
	bl.es = res.Exclusions
	start := bl.bm.bp().InlineStart
	for _, cf := range res.Fragments() {
		bl.place(cf.Fragment, start+cf.Offset.Inline, top+cf.Offset.Block, dimen.LogicalPoint{})
	}
	for _, cf := range res.Floats {
		bl.place(cf.Fragment, start+cf.Offset.Inline, top+cf.Offset.Block, bl.relative(cf.Fragment.Style))
	}
	for _, pos := range res.OutOfFlow {
		cf := pos.Fragment
		bl.statics = append(bl.statics, staticPosition{
			id:     pos.Node,
			inline: start + cf.Offset.Inline - pos.Margins.InlineStart,
			block:  top + cf.Offset.Block - pos.Margins.BlockStart,
			atTop:  !bl.resolved,
		})
	}
	if content {
		bl.cursor = top + res.BlockSize
	}
	return nil
}

// finish resolves the block size of the box.
func (bl *blockLayout) finish() error {
	bp := bl.bm.bp()
	if bl.space.NewFormattingContext || !bl.bm.collapsesThroughBottom() {
		bl.resolve()
		bl.cursor += bl.strut.Resolve()
		bl.strut = constraint.MarginStrut{}
	}
	var content dimen.Dimen
	if bl.resolved {
		content = bl.cursor - bl.bfcBlock - bp.BlockStart
		if bl.space.NewFormattingContext && bl.bm.blockAuto {
			content = dimen.Max(content, bl.es.LastFloatBlockEnd()-bp.BlockStart)
		}
	} else if len(bl.pending) > 0 && !bl.speculative {
		bl.speculative, bl.speculated = true, bl.pending[0].at
	}
	bl.blockSize = bl.bm.usedBlock(dimen.Max(0, content))
	return bl.positionAbsolutes()
}

// result creates the fragment of the box. Block offsets of children are
// made relative to the border box.
func (bl *blockLayout) result() Result {
	top := bl.bfcBlock
	if !bl.resolved {
		top = bl.speculated
	}
	children := make([]fragment.ChildFragment, 0, len(bl.children)+len(bl.absolutes))
	for _, pc := range bl.children {
		offset := dimen.LogicalPoint{Inline: pc.inline, Block: pc.block - top}
		if pc.atTop {
			offset.Block = bl.bm.bp().BlockStart
		}
		children = append(children, fragment.ChildFragment{Offset: offset.Add(pc.rel), Fragment: pc.frag})
	}
	children = append(children, bl.absolutes...)
	size := dimen.LogicalSize{Inline: bl.bm.inline, Block: bl.blockSize}
	r := Result{
		Fragment:          fragment.NewContainer(bl.kind, size, bl.sty, children),
		Exclusions:        bl.es,
		EndStrut:          bl.strut,
		BFCBlockOffset:    bl.bfcBlock,
		Resolved:          bl.resolved,
		SpeculativeFloats: bl.speculative,
		Margins:           bl.bm.margins,
		speculated:        bl.speculated,
	}
	if bl.space.NewFormattingContext {
		r.Delta = bl.es.Exclusions()
	} else {
		r.Delta = bl.es.Since(bl.space.Exclusions.Len())
	}
	tracer().Debugf("box #%d: %s", bl.id, r)
	return r
}
