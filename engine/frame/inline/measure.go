package inline

import (
	"context"
	"strings"

	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/core/font"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/boxflow/engine/glyphing"
	"github.com/npillmayer/boxflow/engine/text/linebreak"
)

// measurer measures byte ranges of a paragraph. Atomic inlines are measured
// by their laid out margin box, or by an intrinsic contribution when sizing
// intrinsically.
type measurer struct {
	ctx     context.Context
	env     *Env
	p       *Paragraph
	cases   map[*style.ComputedStyle]*font.TypeCase
	atomics map[int]Atomic // by item index
	avail   dimen.Dimen    // available inline size for atomics
	// intrinsic sizing measures atomics by their min or max contribution
	intrinsic   bool
	minContent  bool
	intrinsicOf map[int][2]dimen.Dimen
	cache       *glyphing.Cache
	itemRuns    map[int]*glyphing.ShapedRun // whole text items, for space-contextual fonts
	err         error
}

func newMeasurer(ctx context.Context, env *Env, p *Paragraph) *measurer {
	return &measurer{
		ctx:         ctx,
		env:         env,
		p:           p,
		cases:       make(map[*style.ComputedStyle]*font.TypeCase),
		atomics:     make(map[int]Atomic),
		intrinsicOf: make(map[int][2]dimen.Dimen),
		itemRuns:    make(map[int]*glyphing.ShapedRun),
		cache:       env.Shaping,
	}
}

// typeCase returns the font of a style. A missing font family falls back to
// the registry's fallback font.
func (m *measurer) typeCase(sty *style.ComputedStyle) *font.TypeCase {
	if sty == nil {
		sty = m.p.Style
	}
	if tc, ok := m.cases[sty]; ok {
		return tc
	}
	var tc *font.TypeCase
	if m.env.Fonts != nil {
		var err error
		if tc, err = m.env.Fonts.TypeCase(sty.Font.Family, sty.Font.Size); err != nil {
			tracer().Debugf("using fallback font for %s: %v", sty, err)
		}
	}
	if tc == nil {
		tc = font.SyntheticTypeCase(sty.Font.Family, sty.Font.Size)
	}
	m.cases[sty] = tc
	return tc
}

// lineHeight is the used line height of a style: its line-height, or the
// font's ascent plus descent for "normal".
func (m *measurer) lineHeight(sty *style.ComputedStyle) dimen.Dimen {
	if sty == nil {
		sty = m.p.Style
	}
	if lh, ok := sty.LineHeightValue(); ok {
		return lh
	}
	metrics := m.typeCase(sty).Metrics()
	return metrics.Ascent + metrics.Descent
}

func shapingDirection(level uint8) glyphing.Direction {
	if level&1 == 1 {
		return glyphing.RightToLeft
	}
	return glyphing.LeftToRight
}

// visible strips mandatory break characters from the end of a text piece.
func visible(s string) string {
	return strings.TrimRightFunc(s, linebreak.IsMandatoryBreak)
}

func (m *measurer) shaping() *glyphing.Cache {
	if m.cache == nil {
		m.cache = glyphing.NewCache(estimator{})
	}
	return m.cache
}

// measure returns the advance of byte range [from…to) of the paragraph.
func (m *measurer) measure(from, to int) dimen.Dimen {
	var w dimen.Dimen
	for i, it := range m.p.Items {
		if it.End <= from || it.Start >= to || it.IsAnchor() {
			continue
		}
		switch it.Kind {
		case TextItem:
			a, b := maxInt(it.Start, from), minInt(it.End, to)
			txt := visible(m.p.Text[a:b])
			if txt == "" {
				continue
			}
			tc := m.typeCase(it.Style)
			if m.shaping().SpaceContextual(tc) {
				w += m.clusterAdvance(i, a, a+len(txt))
				continue
			}
			w += m.shaping().Measure(tc, txt, shapingDirection(it.Level))
		case AtomicItem:
			w += m.atomicWidth(i)
		}
	}
	return w
}

// clusterAdvance sums the advances of the glyphs of text item i which stem
// from byte range [from…to) of the paragraph. The item is shaped as a whole,
// as shaping in a space-contextual font may differ across word boundaries.
func (m *measurer) clusterAdvance(i, from, to int) dimen.Dimen {
	it := m.p.Items[i]
	run, ok := m.itemRuns[i]
	if !ok {
		tc, dir := m.typeCase(it.Style), shapingDirection(it.Level)
		txt := visible(m.p.Text[it.Start:it.End])
		var err error
		if run, err = m.shaping().Shape(tc, txt, dir); err != nil {
			tracer().Errorf("shaping text item %d: %v", i, err)
			run = glyphing.Estimate(txt, tc, dir)
		}
		m.itemRuns[i] = run
	}
	var w dimen.Dimen
	for _, g := range run.Glyphs {
		if pos := it.Start + g.Cluster; pos >= from && pos < to {
			w += g.XAdvance
		}
	}
	return w
}

// segments returns the break opportunities of the paragraph. Opportunities
// within text which does not wrap are dropped.
func (m *measurer) segments() []linebreak.Segment {
	breaker := m.env.Breaker
	if breaker == nil {
		breaker = linebreak.NewUAX14Breaker()
	}
	var segs []linebreak.Segment
	for _, s := range breaker.Segments(m.p.Text) {
		if n := len(segs); n > 0 && !segs[n-1].Mandatory && !m.wrapsAt(segs[n-1].End) {
			segs[n-1].End, segs[n-1].Mandatory = s.End, s.Mandatory
			continue
		}
		segs = append(segs, s)
	}
	return segs
}

// wrapsAt checks the white-space property of the text before pos.
func (m *measurer) wrapsAt(pos int) bool {
	i := m.p.ItemAt(pos - 1)
	if i < 0 || m.p.Items[i].Style == nil {
		return true
	}
	return m.p.Items[i].Style.WhiteSpace.Wraps()
}

// segmentWidth measures a segment and the width of its trailing spaces.
func (m *measurer) segmentWidth(from, to int) (w, hang dimen.Dimen) {
	w = m.measure(from, to)
	if ts := linebreak.TrailingSpace(m.p.Text[from:to]); ts > 0 {
		hang = m.measure(to-ts, to)
	}
	return
}

func (m *measurer) atomicWidth(i int) dimen.Dimen {
	if m.intrinsic {
		sz, ok := m.intrinsicOf[i]
		if !ok && m.env.Atomics != nil {
			min, max, err := m.env.Atomics.IntrinsicSizes(m.ctx, m.p.Items[i].Node)
			if err != nil && m.err == nil {
				m.err = err
			}
			sz = [2]dimen.Dimen{min, max}
			m.intrinsicOf[i] = sz
		}
		if m.minContent {
			return sz[0]
		}
		return sz[1]
	}
	return m.atomic(i).MarginSize().Inline
}

// atomic lays out the box of item i once.
func (m *measurer) atomic(i int) Atomic {
	if a, ok := m.atomics[i]; ok {
		return a
	}
	var a Atomic
	if m.env.Atomics != nil {
		var err error
		a, err = m.env.Atomics.LayoutAtomic(m.ctx, m.p.Items[i].Node, m.avail)
		if err != nil && m.err == nil {
			m.err = err
		}
	}
	m.atomics[i] = a
	return a
}

// estimator is the shaper used when an environment brings no shaping cache.
type estimator struct{}

func (estimator) Shape(text string, tc *font.TypeCase, dir glyphing.Direction) (*glyphing.ShapedRun, error) {
	return glyphing.Estimate(text, tc, dir), nil
}

func (estimator) SpaceContextual(*font.TypeCase) bool { return false }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
