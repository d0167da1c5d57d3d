package inline

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/boxflow/engine/frame/constraint"
	"github.com/npillmayer/boxflow/engine/frame/fragment"
	"github.com/npillmayer/boxflow/engine/text/hyphen"
	"github.com/npillmayer/boxflow/engine/text/linebreak"
)

// Line is a line of a laid out paragraph. Top and the fragment's offset are
// relative to the content box of the block container.
type Line struct {
	Start, End  int // byte range of the paragraph text
	Top         dimen.Dimen
	Opportunity constraint.LayoutOpportunity
	Width       dimen.Dimen // advance of the line's content
	Height      dimen.Dimen
	Hyphenated  bool
	Ellipsized  bool
	Fragment    fragment.ChildFragment
}

func (l Line) String() string {
	return fmt.Sprintf("line[%d…%d] @%s w=%s h=%s", l.Start, l.End, l.Top.PxString(),
		l.Width.PxString(), l.Height.PxString())
}

// Positioned is an absolutely positioned box at its static position.
type Positioned struct {
	Node     boxtree.NodeID
	Fragment fragment.ChildFragment
	Margins  dimen.LogicalSides
}

// Result is the outcome of laying out a paragraph. All offsets are relative
// to the content box of the block container.
type Result struct {
	Lines      []Line
	BlockSize  dimen.Dimen
	Exclusions constraint.ExclusionSpace // input exclusions plus floats of the paragraph
	Floats     []fragment.ChildFragment
	OutOfFlow  []Positioned
}

// Fragments returns the line fragments of a result.
func (r *Result) Fragments() []fragment.ChildFragment {
	frags := make([]fragment.ChildFragment, len(r.Lines))
	for i, l := range r.Lines {
		frags[i] = l.Fragment
	}
	return frags
}

// openLine is the line currently being filled.
type openLine struct {
	start, end int
	top        dimen.Dimen // BFC coordinates
	opp        constraint.LayoutOpportunity
	width      dimen.Dimen // including the trailing spaces of the last segment
	hang       dimen.Dimen // width of the trailing spaces
	hyphen     bool
	pending    []int // floats to place below this line
}

func (ol *openLine) empty() bool {
	return ol.end == ol.start
}

func (ol *openLine) fits(w, hang dimen.Dimen) bool {
	return ol.width+w-hang <= ol.opp.InlineSize
}

// lineBreaker fills lines first-fit.
type lineBreaker struct {
	*measurer
	space     constraint.Space
	es        constraint.ExclusionSpace
	origin    dimen.LogicalPoint // content box origin in BFC coordinates
	strut     dimen.Dimen
	ellipsize bool
	segs      []linebreak.Segment
	anchors   []int
	next      int // next anchor to handle
	pos       int
	line      *openLine
	res       *Result
}

// Layout breaks a paragraph into lines. The space's BFC offset is the origin
// of the container's content box and has to be known. Floats of the paragraph
// are placed into the space's exclusions; the grown exclusion space is part
// of the result.
func Layout(ctx context.Context, env *Env, p *Paragraph, space constraint.Space) (*Result, error) {
	if p == nil || env == nil {
		return nil, core.Error(core.EINVALID, "inline layout needs a paragraph")
	}
	if err := space.Validate(); err != nil {
		return nil, err
	}
	lb := &lineBreaker{
		measurer: newMeasurer(ctx, env, p),
		space:    space,
		es:       space.Exclusions,
		origin:   space.BFCOffset,
		res:      &Result{},
	}
	lb.avail = space.AvailableInline
	lb.strut = lb.lineHeight(p.Style)
	lb.ellipsize = p.Style != nil && p.Style.TextOverflow == style.TextOverflowEllipsis &&
		p.Style.ClipsInline()
	for i, it := range p.Items {
		if it.IsAnchor() {
			lb.anchors = append(lb.anchors, i)
		}
	}
	if err := lb.run(); err != nil {
		return nil, err
	}
	lb.res.Exclusions = lb.es
	if n := len(lb.res.Lines); n > 0 {
		last := lb.res.Lines[n-1]
		lb.res.BlockSize = last.Top + last.Height
	}
	tracer().Debugf("paragraph #%d broken into %d lines", p.Root, len(lb.res.Lines))
	return lb.res, nil
}

func (lb *lineBreaker) run() error {
	lb.segs = lb.segments()
	lb.line = lb.newLine(lb.origin.Block)
	for i := 0; i < len(lb.segs); i++ {
		if err := core.Canceled(lb.ctx); err != nil {
			return err
		}
		seg := lb.segs[i]
		lb.anchorsBefore(seg.End)
		w, hang := lb.segmentWidth(seg.Start, seg.End)
		if !lb.line.empty() && !lb.line.fits(w, hang) {
			if head, tail, ok := lb.hyphenate(seg); ok {
				lb.split(i, head, tail)
				i--
				continue
			}
			lb.commit()
		}
		if lb.line.empty() && !lb.line.fits(w, hang) {
			lb.moveDown(w - hang)
			if !lb.line.fits(w, hang) {
				if head, tail, ok := lb.hyphenate(seg); ok {
					lb.split(i, head, tail)
					i--
					continue
				}
			}
		}
		lb.add(seg, w, hang)
		if seg.Mandatory {
			lb.commit()
		}
		if lb.err != nil {
			return lb.err
		}
	}
	lb.anchorsBefore(len(lb.p.Text) + 1)
	if !lb.line.empty() {
		lb.commit()
	}
	for _, i := range lb.line.pending {
		lb.placeFloat(i, lb.line.top)
	}
	return lb.err
}

// split puts the head of a hyphenated segment onto the current line, which
// is then finished, and queues the tail.
func (lb *lineBreaker) split(i int, head, tail linebreak.Segment) {
	w, hang := lb.segmentWidth(head.Start, head.End)
	lb.add(head, w, hang)
	lb.line.hyphen = true
	lb.segs[i] = tail
	lb.commit()
}

func (lb *lineBreaker) add(seg linebreak.Segment, w, hang dimen.Dimen) {
	lb.line.end = seg.End
	lb.line.width += w
	lb.line.hang = hang
}

func (lb *lineBreaker) query(top, inlineSize dimen.Dimen) constraint.Query {
	return constraint.Query{
		BlockOffset:    top,
		ContainerStart: lb.origin.Inline,
		Available:      lb.space.AvailableInline,
		InlineSize:     inlineSize,
		BlockSize:      lb.strut,
	}
}

func (lb *lineBreaker) newLine(top dimen.Dimen) *openLine {
	opp := lb.es.Find(lb.query(top, 0))
	return &openLine{start: lb.pos, end: lb.pos, top: opp.BlockOffset, opp: opp}
}

// moveDown moves an empty line below floats until content of width w fits.
func (lb *lineBreaker) moveDown(w dimen.Dimen) {
	opp := lb.es.Find(lb.query(lb.line.top, w))
	lb.line.top, lb.line.opp = opp.BlockOffset, opp
}

// commit finishes the current line and opens the next one.
func (lb *lineBreaker) commit() {
	ol := lb.line
	line := lb.compose(ol)
	lb.res.Lines = append(lb.res.Lines, line)
	tracer().Debugf("%s", line)
	next := ol.top + line.Height
	lb.pos = ol.end
	for _, i := range ol.pending {
		lb.placeFloat(i, next)
	}
	lb.line = lb.newLine(next)
}

// --- Floats and positioned boxes -------------------------------------------

func (lb *lineBreaker) anchorsBefore(limit int) {
	for lb.next < len(lb.anchors) && lb.p.Items[lb.anchors[lb.next]].Start < limit {
		i := lb.anchors[lb.next]
		lb.next++
		if lb.p.Items[i].Kind == FloatItem {
			lb.float(i)
		} else {
			lb.positioned(i)
		}
	}
}

// float places a float on the current line if it fits next to the line's
// content, and below the line otherwise.
func (lb *lineBreaker) float(i int) {
	size := lb.atomic(i).MarginSize()
	ol := lb.line
	if !ol.empty() && ol.width-ol.hang+size.Inline > ol.opp.InlineSize {
		ol.pending = append(ol.pending, i)
		return
	}
	lb.placeFloat(i, ol.top)
	opp := lb.es.Find(lb.query(ol.top, ol.width-ol.hang))
	ol.top, ol.opp = opp.BlockOffset, opp
}

func (lb *lineBreaker) placeFloat(i int, top dimen.Dimen) {
	a := lb.atomic(i)
	sty := lb.p.Items[i].Style
	dir := style.LTR
	if lb.p.Style != nil {
		dir = lb.p.Style.Direction
	}
	top = dimen.Max(top, lb.es.ClearanceOffset(constraint.ClearSidesFor(sty.Clear, dir)))
	var e constraint.Exclusion
	lb.es, e = lb.es.PlaceFloat(lb.query(top, 0), a.MarginSize(), constraint.FloatSide(sty))
	tracer().Debugf("float #%d placed at %s", lb.p.Items[i].Node, e)
	if a.Fragment == nil {
		return
	}
	lb.res.Floats = append(lb.res.Floats, fragment.ChildFragment{
		Offset: dimen.LogicalPoint{
			Inline: e.InlineStart - lb.origin.Inline + a.Margins.InlineStart,
			Block:  e.BlockStart - lb.origin.Block + a.Margins.BlockStart,
		},
		Fragment: a.Fragment,
	})
}

// positioned records the static position of an absolutely positioned box.
func (lb *lineBreaker) positioned(i int) {
	a := lb.atomic(i)
	if a.Fragment == nil {
		return
	}
	ol := lb.line
	lb.res.OutOfFlow = append(lb.res.OutOfFlow, Positioned{
		Node: lb.p.Items[i].Node,
		Fragment: fragment.ChildFragment{
			Offset: dimen.LogicalPoint{
				Inline: ol.opp.InlineOffset + ol.width + a.Margins.InlineStart,
				Block:  ol.top - lb.origin.Block + a.Margins.BlockStart,
			},
			Fragment: a.Fragment,
		},
		Margins: a.Margins,
	})
}

// --- Hyphenation -----------------------------------------------------------

// hyphenate splits the word of a segment at the last hyphenation point for
// which the head and a hyphen fit onto the current line.
func (lb *lineBreaker) hyphenate(seg linebreak.Segment) (head, tail linebreak.Segment, ok bool) {
	p := lb.p
	txt := p.Text[seg.Start:seg.End]
	word := txt[:len(txt)-linebreak.TrailingSpace(txt)]
	i := p.ItemAt(seg.Start)
	if i < 0 || word == "" {
		return
	}
	it := p.Items[i]
	if it.Kind != TextItem || it.End < seg.Start+len(word) || it.Style == nil {
		return
	}
	if it.Style.Hyphens == style.HyphensNone || !it.Style.WhiteSpace.Wraps() {
		return
	}
	if utf8.RuneCountInString(word) < p.minHyphenLength {
		return
	}
	var dict *hyphen.Dictionary
	if it.Style.Hyphens == style.HyphensAuto && p.hyphenate {
		dict = hyphen.ForLanguage(it.Lang)
	}
	points := dict.Points(word)
	if len(points) == 0 {
		return
	}
	hw := lb.shaping().Measure(lb.typeCase(it.Style), p.hyphenChar, shapingDirection(it.Level))
	ol := lb.line
	for k := len(points) - 1; k >= 0; k-- {
		at := seg.Start + points[k]
		if ol.width+lb.measure(seg.Start, at)+hw <= ol.opp.InlineSize {
			tracer().Debugf("hyphenating %q at %d", word, points[k])
			return linebreak.Segment{Start: seg.Start, End: at},
				linebreak.Segment{Start: at, End: seg.End, Mandatory: seg.Mandatory}, true
		}
	}
	return
}
