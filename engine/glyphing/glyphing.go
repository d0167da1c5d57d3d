package glyphing

import (
	"fmt"
	"unicode/utf8"

	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/core/font"
)

// Direction is the direction to typeset text in.
type Direction int

// Direction to typeset text in.
const (
	LeftToRight Direction = iota
	RightToLeft
	TopToBottom
	BottomToTop
)

func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "ltr"
	case RightToLeft:
		return "rtl"
	case TopToBottom:
		return "ttb"
	case BottomToTop:
		return "btt"
	}
	return "?"
}

// A Glyph is a positioned glyph, in layout units.
type Glyph struct {
	GID      uint32      // glyph index within font
	Cluster  int         // byte position of the code-point(s) for this glyph in the run's text
	XAdvance dimen.Dimen // advance after glyph has been set
	YAdvance dimen.Dimen
	XOffset  dimen.Dimen // position of anchor dot for glyph
	YOffset  dimen.Dimen
}

func (g Glyph) String() string {
	return fmt.Sprintf("(GID=%d, advance=%s)", g.GID, g.XAdvance.PxString())
}

// ShapedRun is the result of shaping one (font, text, direction) tuple.
// Runs are shared between lines and must not be modified.
type ShapedRun struct {
	Font      string // typecase ID
	Text      string
	Direction Direction
	Glyphs    []Glyph
	Advance   dimen.Dimen // sum of glyph advances in the inline direction
}

// Equal is true if two runs hold identical glyph data.
func (r *ShapedRun) Equal(other *ShapedRun) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil || r.Advance != other.Advance || len(r.Glyphs) != len(other.Glyphs) {
		return false
	}
	for i := range r.Glyphs {
		if r.Glyphs[i] != other.Glyphs[i] {
			return false
		}
	}
	return true
}

func (r *ShapedRun) String() string {
	if r == nil {
		return "<no run>"
	}
	return fmt.Sprintf("run[%s %q %s %d glyphs, w=%s]", r.Font, r.Text, r.Direction,
		len(r.Glyphs), r.Advance.PxString())
}

// A Shaper creates a sequence of glyphs from a sequence of
// Unicode code-points. Glyphs are taken from a font, given in a specific size.
//
// Shapers must be safe for concurrent use.
type Shaper interface {
	Shape(text string, tc *font.TypeCase, dir Direction) (*ShapedRun, error)

	// SpaceContextual is true if shaping of a word in font tc may depend on
	// neighbouring words, e.g. by contextual substitutions or kerning
	// involving the space glyph. Text in such fonts must not be shaped word
	// by word.
	SpaceContextual(tc *font.TypeCase) bool
}

// Estimate creates a run without shaping, with an advance of half an em per
// code-point. It is used when a shaper fails, as layout has to go on.
func Estimate(text string, tc *font.TypeCase, dir Direction) *ShapedRun {
	run := &ShapedRun{Font: tc.ID(), Text: text, Direction: dir}
	adv := tc.Size() / 2
	for i := range text {
		run.Glyphs = append(run.Glyphs, Glyph{Cluster: i, XAdvance: adv})
		run.Advance += adv
	}
	if dir == RightToLeft {
		reverse(run.Glyphs)
	}
	return run
}

func reverse(glyphs []Glyph) {
	for i, j := 0, len(glyphs)-1; i < j; i, j = i+1, j-1 {
		glyphs[i], glyphs[j] = glyphs[j], glyphs[i]
	}
}

// RuneCount is a helper returning the number of code-points of a run's text.
func (r *ShapedRun) RuneCount() int {
	return utf8.RuneCountInString(r.Text)
}
