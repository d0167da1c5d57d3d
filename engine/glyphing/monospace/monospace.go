package monospace

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/core/font"
	"github.com/npillmayer/boxflow/engine/glyphing"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax11"
)

// Shaper is a shaper for monospace typesetting.
type Shaper struct {
	context    *uax11.Context
	contextual bool
}

var _ glyphing.Shaper = &Shaper{}

var setupClasses sync.Once

// New creates a shaper for monospace typesetting, with East Asian width
// resolved for a Latin context.
func New() *Shaper {
	setupClasses.Do(grapheme.SetupGraphemeClasses)
	return &Shaper{context: uax11.LatinContext}
}

// NewSpaceContextual creates a monospace shaper which claims that every
// font is space-contextual. Glyph output is identical to New().
func NewSpaceContextual() *Shaper {
	sh := New()
	sh.contextual = true
	return sh
}

// SpaceContextual is part of interface glyphing.Shaper.
func (ms *Shaper) SpaceContextual(*font.TypeCase) bool {
	return ms.contextual
}

// Shape creates a glyph sequence from a text.
func (ms *Shaper) Shape(text string, tc *font.TypeCase, dir glyphing.Direction) (*glyphing.ShapedRun, error) {
	run := &glyphing.ShapedRun{
		Font:      tc.ID(),
		Text:      text,
		Direction: dir,
	}
	if text == "" {
		return run, nil
	}
	half := tc.Size() / 2
	splitter := segment.NewSegmenter(grapheme.NewBreaker(1))
	splitter.Init(strings.NewReader(text))
	pos := 0
	for splitter.Next() {
		grphm := splitter.Bytes()
		codepoint, _ := utf8.DecodeRune(grphm)
		g := glyphing.Glyph{
			GID:     uint32(codepoint),
			Cluster: pos,
		}
		if !unicode.Is(unicode.Cf, codepoint) {
			w := uax11.Width(grphm, ms.context)
			g.XAdvance = half * cells(w)
		}
		run.Glyphs = append(run.Glyphs, g)
		run.Advance += g.XAdvance
		pos += len(grphm)
	}
	if dir == glyphing.RightToLeft {
		for i, j := 0, len(run.Glyphs)-1; i < j; i, j = i+1, j-1 {
			run.Glyphs[i], run.Glyphs[j] = run.Glyphs[j], run.Glyphs[i]
		}
	}
	tracer().Debugf("monospace shaped %q to %d glyphs", text, len(run.Glyphs))
	return run, nil
}

// cells clamps a UAX #11 cell width to 1 or 2 cells.
func cells(w int) dimen.Dimen {
	if w >= 2 {
		return 2
	}
	return 1
}
