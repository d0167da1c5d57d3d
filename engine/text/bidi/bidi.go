package bidi

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/boxflow/core"
	ubidi "github.com/npillmayer/uax/bidi"
	"golang.org/x/text/unicode/bidi"
)

// Direction is the base direction of a paragraph.
type Direction int

// Base directions. Auto takes the direction of the first strong character
// (rules P2 and P3) and defaults to left-to-right.
const (
	LeftToRight Direction = iota
	RightToLeft
	Auto
)

func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "ltr"
	case RightToLeft:
		return "rtl"
	}
	return "auto"
}

// Conformance selects how much of the bidi algorithm is applied.
type Conformance int

// With None, every character takes the paragraph level.
const (
	Full Conformance = iota
	None
)

func (c Conformance) String() string {
	if c == None {
		return "none"
	}
	return "full"
}

// ParseConformance reads a conformance level from a configuration value.
func ParseConformance(s string) (Conformance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return Full, nil
	case "none", "off":
		return None, nil
	}
	return Full, core.Error(core.EINVALID, "unknown bidi conformance level %q", s)
}

// MaxDepth is the maximum explicit embedding level.
const MaxDepth = 125

// Levels holds a resolved embedding level for every byte of a text.
type Levels []uint8

// At returns the level at byte position pos.
func (l Levels) At(pos int) uint8 {
	if pos < 0 || pos >= len(l) {
		return 0
	}
	return l[pos]
}

// Run is a maximal byte range of equal embedding level.
type Run struct {
	Start, End int
	Level      uint8
}

// IsRTL is true for odd levels.
func (r Run) IsRTL() bool {
	return r.Level&1 == 1
}

func (r Run) String() string {
	return fmt.Sprintf("[%d…%d]@%d", r.Start, r.End, r.Level)
}

// Runs returns the level runs of l in logical order. Concatenating the
// runs' ranges always yields [0…len(l)).
func (l Levels) Runs() []Run {
	var runs []Run
	start := 0
	for i := 1; i <= len(l); i++ {
		if i == len(l) || l[i] != l[start] {
			runs = append(runs, Run{Start: start, End: i, Level: l[start]})
			start = i
		}
	}
	return runs
}

// Slice returns the runs intersecting byte range [from…to), clipped to it.
func (l Levels) Slice(from, to int) []Run {
	if from < 0 {
		from = 0
	}
	if to > len(l) {
		to = len(l)
	}
	if from >= to {
		return nil
	}
	runs := Levels(l[from:to]).Runs()
	for i := range runs {
		runs[i].Start += from
		runs[i].End += from
	}
	return runs
}

// ParagraphLevel returns the paragraph embedding level of text for a base
// direction.
func ParagraphLevel(text string, base Direction) uint8 {
	switch base {
	case LeftToRight:
		return 0
	case RightToLeft:
		return 1
	}
	if firstStrongRTL(text, 0) {
		return 1
	}
	return 0
}

// firstStrongRTL finds the first strong character of text at or after
// byte position from, skipping isolates, and reports whether it is
// right-to-left. It stops at an unmatched PDI.
func firstStrongRTL(text string, from int) bool {
	depth := 0
	for _, r := range text[from:] {
		switch c := class(r); {
		case isIsolateInitiator(c):
			depth++
		case c == bidi.PDI:
			if depth == 0 {
				return false
			}
			depth--
		case depth > 0:
		case c == bidi.L:
			return false
		case c == bidi.R || c == bidi.AL:
			return true
		}
	}
	return false
}

func class(r rune) bidi.Class {
	props, _ := bidi.LookupRune(r)
	return props.Class()
}

func isIsolateInitiator(c bidi.Class) bool {
	return c == bidi.LRI || c == bidi.RLI || c == bidi.FSI
}

// isRemoved is true for the classes rule X9 removes.
func isRemoved(c bidi.Class) bool {
	switch c {
	case bidi.LRE, bidi.RLE, bidi.LRO, bidi.RLO, bidi.PDF, bidi.BN:
		return true
	}
	return false
}

// --- Resolving --------------------------------------------------------------

// Resolve computes the embedding levels of text.
//
// Directional runs are resolved by the UAX #9 resolver of package
// github.com/npillmayer/uax/bidi, which handles isolates (LRI, RLI, FSI,
// PDI) and paired brackets. Explicit embeddings and overrides are applied
// here, as is rule L1.
func Resolve(text string, base Direction, conformance Conformance) Levels {
	levels := make(Levels, len(text))
	if len(text) == 0 {
		return levels
	}
	plevel := ParagraphLevel(text, base)
	if conformance == None {
		for i := range levels {
			levels[i] = plevel
		}
		return levels
	}
	input := resolverInput(text)
	dirs, err := directions(input, plevel)
	if err != nil {
		tracer().Errorf("%s", core.UserMessage(err))
	}
	x := &explicitLevels{text: text, dirs: dirs, levels: levels, plevel: plevel}
	x.resolve()
	trailingWhitespace(text, levels, plevel)
	tracer().Debugf("bidi levels of %q: %v", text, levels.Runs())
	return levels
}

// neutral replaces control codes the resolver must not see. It has the
// byte length of all explicit formatting characters.
const neutral = "\u2003"

// resolverInput prepares text for the resolver, keeping all byte
// positions. First-strong isolates become LRI or RLI. Embeddings,
// overrides and unmatched PDIs become neutral spaces, as do invalid bytes.
func resolverInput(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	open := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(' ')
			i++
			continue
		}
		switch c := class(r); {
		case c == bidi.FSI:
			open++
			if firstStrongRTL(text, i+size) {
				b.WriteString("\u2067")
			} else {
				b.WriteString("\u2066")
			}
		case c == bidi.LRI || c == bidi.RLI:
			open++
			b.WriteRune(r)
		case c == bidi.PDI && open > 0:
			open--
			b.WriteRune(r)
		case c == bidi.PDI || (isRemoved(c) && c != bidi.BN):
			b.WriteString(neutral)
		default:
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

// Direction values per byte.
const (
	dirUnknown int8 = iota
	dirLTR
	dirRTL
)

// directions runs the resolver and reports the direction of every byte of
// input. A failing resolver leaves directions unknown.
func directions(input string, plevel uint8) (dirs []int8, err error) {
	dirs = make([]int8, len(input))
	defer func() {
		if r := recover(); r != nil {
			err = core.Error(core.EINTERNAL, "bidi resolver failed: %v", r)
			for i := range dirs {
				dirs[i] = dirUnknown
			}
		}
	}()
	opts := []ubidi.Option{ubidi.IgnoreParagraphSeparators(true)}
	if plevel&1 == 1 {
		opts = append(opts, ubidi.DefaultDirection(ubidi.RightToLeft))
	}
	resolved := ubidi.ResolveParagraph(strings.NewReader(input), nil, opts...)
	for _, run := range resolved.Reorder().Runs {
		d := dirLTR
		if run.Dir == ubidi.RightToLeft {
			d = dirRTL
		}
		it := run.SegmentIterator(false)
		for it.Next() {
			_, from, to := it.Segment()
			for i := from; i < to && i < uint64(len(dirs)); i++ {
				dirs[i] = d
			}
		}
	}
	return dirs, nil
}

// status is an entry of the directional status stack.
type status struct {
	level     uint8
	override  int8 // dirUnknown, dirLTR or dirRTL
	isolate   bool
	strongRTL bool // last strong character seen at this level
}

type explicitLevels struct {
	text   string
	dirs   []int8
	levels Levels
	plevel uint8
	stack  *arraystack.Stack
}

func (x *explicitLevels) top() *status {
	s, _ := x.stack.Peek()
	return s.(*status)
}

func nextOdd(l uint8) uint8 {
	if l&1 == 1 {
		return l + 2
	}
	return l + 1
}

func nextEven(l uint8) uint8 {
	if l&1 == 1 {
		return l + 1
	}
	return l + 2
}

// push opens an embedding or isolate. Levels beyond MaxDepth are not
// raised.
func (x *explicitLevels) push(rtl bool, override int8, isolate bool) {
	cur := x.top()
	level := nextEven(cur.level)
	if rtl {
		level = nextOdd(cur.level)
	}
	if level > MaxDepth {
		level = cur.level
	}
	x.stack.Push(&status{level: level, override: override, isolate: isolate, strongRTL: level&1 == 1})
}

// resolve assigns every byte the level of its character (rules X1 to X8
// and I1/I2 on top of the resolved directions).
func (x *explicitLevels) resolve() {
	x.stack = arraystack.New()
	x.stack.Push(&status{level: x.plevel, strongRTL: x.plevel&1 == 1})
	isolates := 0
	for i := 0; i < len(x.text); {
		r, size := utf8.DecodeRuneInString(x.text[i:])
		c := class(r)
		level := x.top().level
		switch {
		case c == bidi.LRI || c == bidi.RLI || c == bidi.FSI:
			rtl := c == bidi.RLI || (c == bidi.FSI && firstStrongRTL(x.text, i+size))
			x.push(rtl, dirUnknown, true)
			isolates++
		case c == bidi.PDI && isolates > 0:
			for !x.top().isolate {
				x.stack.Pop()
			}
			x.stack.Pop()
			isolates--
			level = x.top().level
		case c == bidi.LRE || c == bidi.RLE:
			x.push(c == bidi.RLE, dirUnknown, false)
		case c == bidi.LRO:
			x.push(false, dirLTR, false)
		case c == bidi.RLO:
			x.push(true, dirRTL, false)
		case c == bidi.PDF:
			if x.stack.Size() > 1 && !x.top().isolate {
				x.stack.Pop()
			}
		case c == bidi.B:
			level = x.plevel
		case c == bidi.BN || c == bidi.PDI:
		default:
			level = x.implicit(i, c)
		}
		for j := i; j < i+size; j++ {
			x.levels[j] = level
		}
		i += size
	}
}

// implicit resolves the level of a character at position pos with bidi
// class c.
func (x *explicitLevels) implicit(pos int, c bidi.Class) uint8 {
	st := x.top()
	e := st.level
	dir := st.override
	if dir == dirUnknown && x.dirs != nil {
		dir = x.dirs[pos]
	}
	if dir == dirUnknown {
		switch c {
		case bidi.L:
			dir = dirLTR
		case bidi.R, bidi.AL:
			dir = dirRTL
		default:
			dir = dirLTR
			if e&1 == 1 {
				dir = dirRTL
			}
		}
	}
	switch c {
	case bidi.L:
		st.strongRTL = false
	case bidi.R, bidi.AL:
		st.strongRTL = true
	}
	if dir == dirRTL {
		if e&1 == 1 {
			return e
		}
		return e + 1
	}
	if st.override == dirUnknown && e&1 == 0 &&
		(c == bidi.AN || (c == bidi.EN && st.strongRTL)) {
		return e + 2 // numbers after right-to-left text
	}
	if e&1 == 1 {
		return e + 1
	}
	return e
}

// trailingWhitespace implements rule L1.
func trailingWhitespace(text string, levels Levels, plevel uint8) {
	resetting := true // at end of paragraph
	for i := len(text); i > 0; {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		i -= size
		switch c := class(r); {
		case c == bidi.S || c == bidi.B:
			resetting = true
		case c == bidi.WS || isIsolateInitiator(c) || c == bidi.PDI || isRemoved(c):
			if !resetting {
				continue
			}
		default:
			resetting = false
			continue
		}
		for j := i; j < i+size; j++ {
			levels[j] = plevel
		}
	}
}

// --- Reordering ------------------------------------------------------------

// Reorder returns the visual order of a sequence of items with the given
// embedding levels (rule L2). The result maps visual positions to logical
// indices.
func Reorder(levels []uint8) []int {
	order := make([]int, len(levels))
	for i := range order {
		order[i] = i
	}
	if len(levels) == 0 {
		return order
	}
	hi, lo := levels[0], levels[0]
	for _, l := range levels {
		if l > hi {
			hi = l
		}
		if l < lo {
			lo = l
		}
	}
	if lo&1 == 0 {
		lo++
	}
	for lvl := int(hi); lvl >= int(lo); lvl-- {
		for i := 0; i < len(order); {
			if int(levels[order[i]]) < lvl {
				i++
				continue
			}
			j := i
			for j < len(order) && int(levels[order[j]]) >= lvl {
				j++
			}
			for a, b := i, j-1; a < b; a, b = a+1, b-1 {
				order[a], order[b] = order[b], order[a]
			}
			i = j
		}
	}
	return order
}
