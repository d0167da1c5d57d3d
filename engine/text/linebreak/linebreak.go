/*
Package linebreak finds line break opportunities in paragraph text.

The default breaker follows UAX #14 (Unicode line breaking algorithm), using
the segmenter of package github.com/npillmayer/uax. A simpler breaker, which
breaks after runs of spaces only, is provided for tests and for text where
UAX #14 is not wanted.

Breakers split a text into segments. Each segment ends at a break
opportunity, with trailing spaces belonging to the segment before the break.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package linebreak

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/uax"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax14"
)

// tracer traces with key 'boxflow.text'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.text")
}

// Segment is a byte range of a text, ending at a break opportunity.
type Segment struct {
	Start, End int
	Mandatory  bool // a line must end after this segment
}

// Text returns the content of s within text.
func (s Segment) Text(text string) string {
	return text[s.Start:s.End]
}

func (s Segment) String() string {
	if s.Mandatory {
		return fmt.Sprintf("[%d…%d]!", s.Start, s.End)
	}
	return fmt.Sprintf("[%d…%d]", s.Start, s.End)
}

// Breaker splits text at break opportunities. Concatenating all segments
// yields the text.
//
// Breakers must be safe for concurrent use.
type Breaker interface {
	Segments(text string) []Segment
}

// IsMandatoryBreak is true for code-points which force a line break
// (UAX #14 classes BK, CR, LF and NL).
func IsMandatoryBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// endsMandatory checks if a segment ends with a mandatory break character.
func endsMandatory(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return IsMandatoryBreak(r)
}

// IsSpace is true for breaking space characters.
func IsSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// TrailingSpace returns the byte length of the spaces at the end of s.
// Trailing spaces hang at the end of a line and do not count for fitting.
func TrailingSpace(s string) int {
	n := 0
	for len(s) > 0 {
		r, sz := utf8.DecodeLastRuneInString(s)
		if !IsSpace(r) && !IsMandatoryBreak(r) {
			break
		}
		n += sz
		s = s[:len(s)-sz]
	}
	return n
}

// --- UAX #14 ---------------------------------------------------------------

// UAX14Breaker breaks text according to UAX #14.
type UAX14Breaker struct{}

// NewUAX14Breaker creates a breaker following UAX #14.
func NewUAX14Breaker() *UAX14Breaker {
	return &UAX14Breaker{}
}

// Segments is part of interface Breaker.
func (b *UAX14Breaker) Segments(text string) []Segment {
	if text == "" {
		return nil
	}
	// segmenters keep state, so we create one per call
	seg := segment.NewSegmenter(uax14.NewLineWrap())
	seg.Init(strings.NewReader(text))
	var segments []Segment
	start, pos := 0, 0
	for seg.Next() {
		pos += len(seg.Bytes())
		p1, _ := seg.Penalties()
		fragment := text[start:pos]
		mandatory := endsMandatory(fragment)
		if p1 < uax.InfinitePenalty || mandatory {
			segments = append(segments, Segment{Start: start, End: pos, Mandatory: mandatory})
			start = pos
		}
	}
	if start < len(text) {
		segments = append(segments, Segment{Start: start, End: len(text), Mandatory: endsMandatory(text)})
	}
	tracer().Debugf("line break segments for %q: %v", text, segments)
	return segments
}

// --- Spaces ----------------------------------------------------------------

// SpaceBreaker breaks text after runs of spaces and at mandatory breaks.
type SpaceBreaker struct{}

// Segments is part of interface Breaker.
func (SpaceBreaker) Segments(text string) []Segment {
	var segments []Segment
	start := 0
	inSpace := false
	for i, r := range text {
		if IsMandatoryBreak(r) {
			end := i + utf8.RuneLen(r)
			if r == '\r' && strings.HasPrefix(text[end:], "\n") {
				continue
			}
			segments = append(segments, Segment{Start: start, End: end, Mandatory: true})
			start, inSpace = end, false
			continue
		}
		sp := IsSpace(r)
		if inSpace && !sp && i > start {
			segments = append(segments, Segment{Start: start, End: i})
			start = i
		}
		inSpace = sp
	}
	if start < len(text) {
		segments = append(segments, Segment{Start: start, End: len(text)})
	}
	return segments
}

var _ Breaker = SpaceBreaker{}
var _ Breaker = (*UAX14Breaker)(nil)
