/*
Package harfbuzz shapes text with a Go port of HarfBuzz.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package harfbuzz

import (
	"bytes"
	"encoding/binary"
	"sync"
	"unicode"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	hblang "github.com/benoitkugler/textlayout/language"
	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/core/font"
	"github.com/npillmayer/boxflow/engine/glyphing"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/language"
)

// tracer traces with key 'boxflow.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.glyphs")
}

// --- Type conversion -------------------------------------------------------

// Lang4HB returns a language tag as a HarfBuzz language.
func Lang4HB(l language.Tag) hblang.Language {
	return hblang.NewLanguage(l.String())
}

// Script4HB returns a script as a HarfBuzz script.
func Script4HB(s language.Script) hblang.Script {
	b := []byte(s.String())
	b[0] = byte(unicode.ToLower(rune(b[0])))
	h := binary.BigEndian.Uint32(b)
	return hblang.Script(h)
}

// Direction4HB translates a direction to a HarfBuzz direction.
func Direction4HB(d glyphing.Direction) hb.Direction {
	switch d {
	case glyphing.LeftToRight:
		return hb.LeftToRight
	case glyphing.RightToLeft:
		return hb.RightToLeft
	case glyphing.TopToBottom:
		return hb.TopToBottom
	case glyphing.BottomToTop:
		return hb.BottomToTop
	}
	return hb.LeftToRight
}

// --- Shaper ----------------------------------------------------------------

// Shaper shapes text with HarfBuzz. Parsed font faces are kept per font
// binary. A Shaper is safe for concurrent use; shaping with the same font is
// serialized.
type Shaper struct {
	lang   language.Tag
	script language.Script
	mu     sync.Mutex
	faces  map[*font.ScalableFont]*hbface
	probes sync.Map // typecase ID -> bool
}

type hbface struct {
	sync.Mutex
	font *hb.Font
	upem dimen.Dimen
}

// New creates a HarfBuzz shaper. Language and script may be left
// undetermined, in which case HarfBuzz guesses them from the text.
func New(lang language.Tag, script language.Script) *Shaper {
	return &Shaper{
		lang:   lang,
		script: script,
		faces:  make(map[*font.ScalableFont]*hbface),
	}
}

var _ glyphing.Shaper = (*Shaper)(nil)

func (s *Shaper) face(tc *font.TypeCase) (*hbface, error) {
	sf := tc.ScalableFontParent()
	if sf == nil {
		return nil, core.Error(core.EINVALID, "HarfBuzz cannot shape with synthetic font %s", tc.ID())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.faces[sf]; ok {
		return f, nil
	}
	hb_face, err := hbtt.Parse(bytes.NewReader(sf.Binary), true)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "HarfBuzz cannot parse font %s", sf.Fontname)
	}
	f := &hbface{font: hb.NewFont(hb_face), upem: 1000}
	if sf.SFNT != nil {
		f.upem = dimen.Dimen(sf.SFNT.UnitsPerEm())
	}
	tracer().Debugf("HarfBuzz prepared face for %s", sf.Fontname)
	s.faces[sf] = f
	return f, nil
}

// Shape calls the HarfBuzz shaper.
//
// Shape turns the Unicode characters of text into positioned glyphs of
// typecase tc. Glyph positions are returned in layout units, scaled from
// font design units to the typecase's size. Cluster values are byte positions
// into text.
func (s *Shaper) Shape(text string, tc *font.TypeCase, dir glyphing.Direction) (*glyphing.ShapedRun, error) {
	run := &glyphing.ShapedRun{Font: tc.ID(), Text: text, Direction: dir}
	if text == "" {
		return run, nil
	}
	face, err := s.face(tc)
	if err != nil {
		return nil, err
	}
	var props hb.SegmentProperties
	if s.lang != language.Und {
		props.Language = Lang4HB(s.lang)
	}
	var none language.Script
	if s.script != none {
		props.Script = Script4HB(s.script)
	}
	props.Direction = Direction4HB(dir)
	runes := []rune(text)
	offsets := make([]int, len(runes)+1) // rune index -> byte position
	pos := 0
	for i, r := range runes {
		offsets[i] = pos
		pos += len(string(r))
	}
	offsets[len(runes)] = pos
	//
	face.Lock()
	face.font.Ptem = float32(tc.Size().Px())
	buf := hb.NewBuffer()
	buf.Props = props
	buf.AddRunes(runes, 0, len(runes))
	buf.Shape(face.font, nil)
	face.Unlock()
	//
	size := tc.Size()
	scale := func(u int64) dimen.Dimen {
		return dimen.Dimen(u * int64(size) / int64(face.upem))
	}
	run.Glyphs = make([]glyphing.Glyph, len(buf.Info))
	for i, ginfo := range buf.Info {
		gpos := &buf.Pos[i]
		g := &run.Glyphs[i]
		g.GID = uint32(ginfo.Glyph)
		if c := ginfo.Cluster; c >= 0 && c < len(runes) {
			g.Cluster = offsets[c]
		}
		g.XAdvance = scale(int64(gpos.XAdvance))
		g.YAdvance = scale(int64(gpos.YAdvance))
		g.XOffset = scale(int64(gpos.XOffset))
		g.YOffset = scale(int64(gpos.YOffset))
		run.Advance += g.XAdvance
	}
	tracer().Debugf("HarfBuzz shaped %q into %d glyphs", text, len(run.Glyphs))
	return run, nil
}

// probeTexts are short texts where fonts commonly kern or substitute across
// a space.
var probeTexts = []string{"a b", "A V", "T. T", "1 2", "f i"}

// SpaceContextual tests whether tc shapes words differently when they are
// shaped together with neighbouring words. The test shapes a set of probe
// texts as a whole and word by word and compares the advances. The result
// is remembered per typecase.
func (s *Shaper) SpaceContextual(tc *font.TypeCase) bool {
	if v, ok := s.probes.Load(tc.ID()); ok {
		return v.(bool)
	}
	contextual := false
	for _, probe := range probeTexts {
		if s.shapesAcrossSpace(probe, tc) {
			contextual = true
			break
		}
	}
	v, _ := s.probes.LoadOrStore(tc.ID(), contextual)
	tracer().Debugf("font %s is space-contextual: %v", tc.ID(), v)
	return v.(bool)
}

func (s *Shaper) shapesAcrossSpace(probe string, tc *font.TypeCase) bool {
	whole, err := s.Shape(probe, tc, glyphing.LeftToRight)
	if err != nil {
		return false
	}
	var sum dimen.Dimen
	for _, w := range glyphing.SplitWords(probe) {
		part, err := s.Shape(w, tc, glyphing.LeftToRight)
		if err != nil {
			return false
		}
		sum += part.Advance
	}
	return sum != whole.Advance
}
