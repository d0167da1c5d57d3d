package inline

import (
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/boxflow/engine/frame/fragment"
	"github.com/npillmayer/boxflow/engine/glyphing"
	"github.com/npillmayer/boxflow/engine/text/bidi"
	"github.com/npillmayer/boxflow/engine/text/hyphen"
)

// piece is a part of a line in logical order.
type piece struct {
	frag    *fragment.Fragment
	level   uint8
	advance dimen.Dimen
	height  dimen.Dimen // contribution to the line height
	margins dimen.LogicalSides
	atomic  bool
}

// compose shapes, reorders and aligns the content of a line.
func (lb *lineBreaker) compose(ol *openLine) Line {
	p := lb.p
	line := Line{Start: ol.start, End: ol.end, Top: ol.top - lb.origin.Block, Opportunity: ol.opp}
	end := lb.trimmedEnd(ol.start, ol.end)
	var suffix string
	var suffixStyle = p.Style
	if lb.ellipsize && ol.width-ol.hang > ol.opp.InlineSize {
		ew := lb.shaping().Measure(lb.typeCase(p.Style), p.ellipsis, shapingDirection(p.Level()))
		end = lb.truncate(ol.start, end, ol.opp.InlineSize-ew)
		suffix, line.Ellipsized = p.ellipsis, true
	} else if ol.hyphen || strings.HasSuffix(p.Text[ol.start:end], string(hyphen.SoftHyphen)) {
		suffix, line.Hyphenated = p.hyphenChar, true
		if i := p.ItemAt(end - 1); i >= 0 {
			suffixStyle = p.Items[i].Style
		}
	}
	pieces := lb.pieces(ol.start, end)
	if suffix != "" {
		level := p.Level()
		if n := len(pieces); n > 0 && !line.Ellipsized {
			level = pieces[n-1].level
		}
		pieces = append(pieces, lb.textPiece(suffix, suffixStyle, level, end, end))
	}
	height := lb.strut
	levels := make([]uint8, len(pieces))
	for k, pc := range pieces {
		height = dimen.Max(height, pc.height)
		line.Width += pc.advance
		levels[k] = pc.level
	}
	line.Height = height
	order := bidi.Reorder(levels)
	if p.Level()&1 == 1 {
		// inline-start is on the right: place from the visually last piece
		for a, b := 0, len(order)-1; a < b; a, b = a+1, b-1 {
			order[a], order[b] = order[b], order[a]
		}
	}
	x := lb.alignment(ol.opp.InlineSize - line.Width)
	children := make([]fragment.ChildFragment, 0, len(pieces))
	for _, k := range order {
		pc := pieces[k]
		offset := dimen.LogicalPoint{Inline: x, Block: (height - pc.frag.Size.Block) / 2}
		if pc.atomic {
			offset = dimen.LogicalPoint{
				Inline: x + pc.margins.InlineStart,
				Block:  height - pc.height + pc.margins.BlockStart,
			}
		}
		children = append(children, fragment.ChildFragment{Offset: offset, Fragment: pc.frag})
		x += pc.advance
	}
	frag := fragment.NewContainer(fragment.Line,
		dimen.LogicalSize{Inline: ol.opp.InlineSize, Block: height}, p.Style, children)
	line.Fragment = fragment.ChildFragment{
		Offset:   dimen.LogicalPoint{Inline: ol.opp.InlineOffset, Block: line.Top},
		Fragment: frag,
	}
	return line
}

// pieces creates the fragments of byte range [from…to) in logical order.
// Bidi controls and forced breaks produce no fragments.
func (lb *lineBreaker) pieces(from, to int) []piece {
	var pieces []piece
	for i, it := range lb.p.Items {
		if it.End <= from || it.Start >= to || it.IsAnchor() {
			continue
		}
		switch it.Kind {
		case TextItem:
			a, b := maxInt(it.Start, from), minInt(it.End, to)
			txt := visible(lb.p.Text[a:b])
			if txt != "" {
				pieces = append(pieces, lb.textPiece(txt, it.Style, it.Level, a, a+len(txt)))
			}
		case AtomicItem:
			atom := lb.atomic(i)
			if atom.Fragment == nil {
				continue
			}
			size := atom.MarginSize()
			pieces = append(pieces, piece{
				frag:    atom.Fragment,
				level:   it.Level,
				advance: size.Inline,
				height:  size.Block,
				margins: atom.Margins,
				atomic:  true,
			})
		}
	}
	return pieces
}

func (lb *lineBreaker) textPiece(txt string, sty *style.ComputedStyle, level uint8, start, end int) piece {
	tc := lb.typeCase(sty)
	run := glyphing.JoinRuns(lb.shaping().ShapeWords(tc, txt, shapingDirection(level)))
	var adv dimen.Dimen
	if run != nil {
		adv = run.Advance
	}
	m := tc.Metrics()
	frag := fragment.NewText(dimen.LogicalSize{Inline: adv, Block: m.Ascent + m.Descent}, sty,
		fragment.Text{Content: txt, Run: run, Level: level, Start: start, End: end})
	return piece{frag: frag, level: level, advance: adv, height: lb.lineHeight(sty)}
}

// trimmedEnd strips forced breaks and collapsible trailing spaces from the
// end of a line.
func (lb *lineBreaker) trimmedEnd(start, end int) int {
	p := lb.p
	for end > start {
		r, sz := utf8.DecodeLastRuneInString(p.Text[start:end])
		i := p.ItemAt(end - sz)
		switch {
		case r == '\n' || r == '\r':
		case r == ' ' || r == '\t':
			if i >= 0 && p.Items[i].Style != nil && !p.Items[i].Style.WhiteSpace.CollapsesSpaces() {
				return end
			}
		default:
			return end
		}
		end -= sz
	}
	return end
}

// truncate shortens [start…end) until it fits into room.
func (lb *lineBreaker) truncate(start, end int, room dimen.Dimen) int {
	for end > start && lb.measure(start, end) > room {
		_, sz := utf8.DecodeLastRuneInString(lb.p.Text[start:end])
		end -= sz
	}
	return end
}

// alignment returns the inline offset of a line's content for text-align.
func (lb *lineBreaker) alignment(free dimen.Dimen) dimen.Dimen {
	sty := lb.p.Style
	if free <= 0 || sty == nil {
		return 0
	}
	ltr := sty.Direction != style.RTL
	switch sty.TextAlign {
	case style.TextAlignEnd:
		return free
	case style.TextAlignCenter:
		return free / 2
	case style.TextAlignLeft:
		if ltr {
			return 0
		}
		return free
	case style.TextAlignRight:
		if ltr {
			return free
		}
		return 0
	}
	return 0
}
