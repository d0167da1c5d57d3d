package style

import (
	"sync/atomic"

	"github.com/npillmayer/boxflow/core/dimen"
)

// Display is a type for CSS property "display".
type Display uint8

// Values for Display. Table, flex and grid layout are not supported.
const (
	DisplayNone Display = iota
	DisplayContents
	DisplayBlock
	DisplayFlowRoot
	DisplayListItem
	DisplayInline
	DisplayInlineBlock
)

// IsBlockLevel is true for display modes generating block-level boxes.
func (d Display) IsBlockLevel() bool {
	return d == DisplayBlock || d == DisplayFlowRoot || d == DisplayListItem
}

// IsInlineLevel is true for display modes generating inline-level boxes.
func (d Display) IsInlineLevel() bool {
	return d == DisplayInline || d == DisplayInlineBlock
}

// Position is a type for CSS property "position".
type Position uint8

// Values for Position
const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

// IsOutOfFlow is true for absolute and fixed positioning.
func (p Position) IsOutOfFlow() bool {
	return p == PositionAbsolute || p == PositionFixed
}

// Float is a type for CSS property "float". Left and right are interpreted
// as inline-start and inline-end for horizontal left-to-right text.
type Float uint8

// Values for Float
const (
	FloatNone Float = iota
	FloatLeft
	FloatRight
	FloatInlineStart
	FloatInlineEnd
)

// Clear is a type for CSS property "clear".
type Clear uint8

// Values for Clear
const (
	ClearNone Clear = iota
	ClearLeft
	ClearRight
	ClearBoth
	ClearInlineStart
	ClearInlineEnd
)

// Overflow is a type for CSS properties "overflow-x" and "overflow-y".
type Overflow uint8

// Values for Overflow
const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowClip
	OverflowScroll
	OverflowAuto
)

// Direction is a type for CSS property "direction".
type Direction uint8

// Values for Direction
const (
	LTR Direction = iota
	RTL
)

// WritingMode is a type for CSS property "writing-mode".
type WritingMode uint8

// Values for WritingMode
const (
	HorizontalTB WritingMode = iota
	VerticalRL
	VerticalLR
)

// IsVertical is true for vertical writing modes.
func (wm WritingMode) IsVertical() bool {
	return wm != HorizontalTB
}

// BoxSizing is a type for CSS property "box-sizing".
type BoxSizing uint8

// Values for BoxSizing
const (
	ContentBox BoxSizing = iota
	BorderBox
)

// WhiteSpace is a type for CSS property "white-space".
type WhiteSpace uint8

// Values for WhiteSpace
const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpaceNowrap
	WhiteSpacePre
	WhiteSpacePreWrap
	WhiteSpacePreLine
)

// CollapsesSpaces is true if sequences of spaces collapse.
func (ws WhiteSpace) CollapsesSpaces() bool {
	return ws == WhiteSpaceNormal || ws == WhiteSpaceNowrap || ws == WhiteSpacePreLine
}

// PreservesNewlines is true if segment breaks are forced line breaks.
func (ws WhiteSpace) PreservesNewlines() bool {
	return ws == WhiteSpacePre || ws == WhiteSpacePreWrap || ws == WhiteSpacePreLine
}

// Wraps is true if lines may be broken at soft wrap opportunities.
func (ws WhiteSpace) Wraps() bool {
	return ws != WhiteSpaceNowrap && ws != WhiteSpacePre
}

// TextAlign is a type for CSS property "text-align".
type TextAlign uint8

// Values for TextAlign. Justify is laid out as start.
const (
	TextAlignStart TextAlign = iota
	TextAlignEnd
	TextAlignLeft
	TextAlignRight
	TextAlignCenter
	TextAlignJustify
)

// TextOverflow is a type for CSS property "text-overflow".
type TextOverflow uint8

// Values for TextOverflow
const (
	TextOverflowClip TextOverflow = iota
	TextOverflowEllipsis
)

// Hyphens is a type for CSS property "hyphens".
type Hyphens uint8

// Values for Hyphens
const (
	HyphensManual Hyphens = iota
	HyphensNone
	HyphensAuto
)

// UnicodeBidi is a type for CSS property "unicode-bidi".
type UnicodeBidi uint8

// Values for UnicodeBidi
const (
	BidiNormal UnicodeBidi = iota
	BidiEmbed
	BidiIsolate
	BidiOverride
	BidiIsolateOverride
	BidiPlaintext
)

// Side is a physical box side, in CSS shorthand order.
type Side int

// Physical sides
const (
	Top Side = iota
	Right
	Bottom
	Left
)

// Font holds the font properties of a style.
type Font struct {
	Family string
	Size   dimen.Dimen
}

// --- ComputedStyle ---------------------------------------------------------

// ComputedStyle is an immutable style snapshot. Boxes sharing a style
// identity share a *ComputedStyle. Fields must not be modified after
// the style has been built.
type ComputedStyle struct {
	id   uint64
	Name string // for debugging, usually the element name

	Display      Display
	Position     Position
	Float        Float
	Clear        Clear
	OverflowX    Overflow
	OverflowY    Overflow
	Direction    Direction
	WritingMode  WritingMode
	BoxSizing    BoxSizing
	WhiteSpace   WhiteSpace
	TextAlign    TextAlign
	TextOverflow TextOverflow
	Hyphens      Hyphens
	UnicodeBidi  UnicodeBidi

	Width, Height       Length
	MinWidth, MinHeight Length
	MaxWidth, MaxHeight Length
	Margin              [4]Length      // indexed by Side
	Padding             [4]Length      // indexed by Side
	Border              [4]dimen.Dimen // border widths, indexed by Side
	Offset              [4]Length      // top, right, bottom, left

	Font       Font
	LineHeight Length // unset means "normal"
	Lang       string
}

var styleCounter uint64

// ID returns the identity of a style.
func (s *ComputedStyle) ID() uint64 {
	return s.id
}

func (s *ComputedStyle) String() string {
	if s == nil {
		return "<no style>"
	}
	return s.Name
}

// IsFloating is true for floated boxes.
func (s *ComputedStyle) IsFloating() bool {
	return s.Float != FloatNone
}

// IsOutOfFlow is true for floated and absolutely positioned boxes.
func (s *ComputedStyle) IsOutOfFlow() bool {
	return s.IsFloating() || s.Position.IsOutOfFlow()
}

// EstablishesBFC returns true if a block container with this style
// establishes a new block formatting context.
func (s *ComputedStyle) EstablishesBFC() bool {
	switch {
	case s.IsFloating(), s.Position.IsOutOfFlow():
		return true
	case s.Display == DisplayFlowRoot, s.Display == DisplayInlineBlock:
		return true
	case s.OverflowX != OverflowVisible && s.OverflowX != OverflowClip:
		return true
	case s.OverflowY != OverflowVisible && s.OverflowY != OverflowClip:
		return true
	}
	return false
}

// ClipsInline is true if inline overflow is hidden.
func (s *ComputedStyle) ClipsInline() bool {
	if s.WritingMode.IsVertical() {
		return s.OverflowY != OverflowVisible
	}
	return s.OverflowX != OverflowVisible
}

// LogicalSide maps a flow-relative side to a physical one for the
// writing mode and direction of s. Flow-relative sides are numbered
// block-start, inline-end, block-end, inline-start.
func (s *ComputedStyle) LogicalSide(i int) Side {
	var m [4]Side
	switch s.WritingMode {
	case VerticalRL:
		m = [4]Side{Right, Bottom, Left, Top}
	case VerticalLR:
		m = [4]Side{Left, Bottom, Right, Top}
	default:
		m = [4]Side{Top, Right, Bottom, Left}
	}
	if s.Direction == RTL {
		m[1], m[3] = m[3], m[1]
	}
	return m[i]
}

// LogicalLengths reorders physical side values into flow-relative order.
func (s *ComputedStyle) LogicalLengths(phys [4]Length) [4]Length {
	var l [4]Length
	for i := range l {
		l[i] = phys[s.LogicalSide(i)]
	}
	return l
}

// LogicalBorders returns the border widths in flow-relative order.
func (s *ComputedStyle) LogicalBorders() dimen.LogicalSides {
	return dimen.LogicalSides{
		BlockStart:  s.Border[s.LogicalSide(0)],
		InlineEnd:   s.Border[s.LogicalSide(1)],
		BlockEnd:    s.Border[s.LogicalSide(2)],
		InlineStart: s.Border[s.LogicalSide(3)],
	}
}

// InlineSize returns the width or height property, depending on writing mode.
// Min and max sizes are returned as well.
func (s *ComputedStyle) InlineSize() (size, min, max Length) {
	if s.WritingMode.IsVertical() {
		return s.Height, s.MinHeight, s.MaxHeight
	}
	return s.Width, s.MinWidth, s.MaxWidth
}

// BlockSize returns the height or width property, depending on writing mode.
// Min and max sizes are returned as well.
func (s *ComputedStyle) BlockSize() (size, min, max Length) {
	if s.WritingMode.IsVertical() {
		return s.Width, s.MinWidth, s.MaxWidth
	}
	return s.Height, s.MinHeight, s.MaxHeight
}

// FloatsToInlineStart is true if a float is placed at the inline-start side.
func (s *ComputedStyle) FloatsToInlineStart() bool {
	switch s.Float {
	case FloatInlineStart:
		return true
	case FloatLeft:
		return s.Direction == LTR || s.WritingMode.IsVertical()
	case FloatRight:
		return s.Direction == RTL && !s.WritingMode.IsVertical()
	}
	return false
}

// LineHeightValue returns the used line height. Unset ("normal") returns false.
func (s *ComputedStyle) LineHeightValue() (dimen.Dimen, bool) {
	if s.LineHeight.IsNone() || s.LineHeight.IsAuto() {
		return 0, false
	}
	return s.LineHeight.Resolve(s.Font.Size), true
}

// --- Builder ---------------------------------------------------------------

// Builder creates computed styles.
type Builder struct {
	s ComputedStyle
}

// NewBuilder starts a style with initial values for all properties.
func NewBuilder(name string) *Builder {
	b := &Builder{}
	b.s = initialStyle(name)
	return b
}

func initialStyle(name string) ComputedStyle {
	s := ComputedStyle{
		Name:    name,
		Display: DisplayInline,
		Width:   AutoLength,
		Height:  AutoLength,
		Font:    Font{Family: "serif", Size: 16 * dimen.PX},
	}
	for i := range s.Margin {
		s.Margin[i] = Px(0)
		s.Padding[i] = Px(0)
		s.Offset[i] = AutoLength
	}
	return s
}

// Inherit starts a style which inherits inherited properties from parent.
// All other properties have their initial values.
func Inherit(parent *ComputedStyle, name string) *Builder {
	b := NewBuilder(name)
	if parent == nil {
		return b
	}
	b.s.Direction = parent.Direction
	b.s.WritingMode = parent.WritingMode
	b.s.WhiteSpace = parent.WhiteSpace
	b.s.TextAlign = parent.TextAlign
	b.s.Hyphens = parent.Hyphens
	b.s.Font = parent.Font
	b.s.LineHeight = parent.LineHeight
	b.s.Lang = parent.Lang
	return b
}

// Viewport returns the style of the initial containing block: a block with
// no margins, borders, or padding.
func Viewport() *ComputedStyle {
	return NewBuilder("viewport").Display(DisplayBlock).Build()
}

// Anonymous returns the style of an anonymous block box wrapping inline
// content of parent.
func Anonymous(parent *ComputedStyle) *ComputedStyle {
	return Inherit(parent, "anonymous").Display(DisplayBlock).Build()
}

// Current returns the style under construction, e.g. for resolving font
// relative units against its font size.
func (b *Builder) Current() *ComputedStyle {
	return &b.s
}

// Build returns the finished style. Floated and absolutely positioned boxes
// are blockified.
func (b *Builder) Build() *ComputedStyle {
	s := b.s
	if s.Position.IsOutOfFlow() {
		s.Float = FloatNone
	}
	if s.IsOutOfFlow() && s.Display.IsInlineLevel() {
		s.Display = DisplayBlock
	}
	if s.Display == DisplayNone {
		s.Float = FloatNone
	}
	s.id = atomic.AddUint64(&styleCounter, 1)
	tracer().Debugf("built style %s #%d", s.Name, s.id)
	return &s
}

// Display sets property "display".
func (b *Builder) Display(d Display) *Builder { b.s.Display = d; return b }

// Position sets property "position".
func (b *Builder) Position(p Position) *Builder { b.s.Position = p; return b }

// Float sets property "float".
func (b *Builder) Float(f Float) *Builder { b.s.Float = f; return b }

// Clear sets property "clear".
func (b *Builder) Clear(c Clear) *Builder { b.s.Clear = c; return b }

// Overflow sets properties "overflow-x" and "overflow-y".
func (b *Builder) Overflow(x, y Overflow) *Builder {
	b.s.OverflowX, b.s.OverflowY = x, y
	return b
}

// Direction sets property "direction".
func (b *Builder) Direction(d Direction) *Builder { b.s.Direction = d; return b }

// WritingMode sets property "writing-mode".
func (b *Builder) WritingMode(wm WritingMode) *Builder { b.s.WritingMode = wm; return b }

// BoxSizing sets property "box-sizing".
func (b *Builder) BoxSizing(bs BoxSizing) *Builder { b.s.BoxSizing = bs; return b }

// WhiteSpace sets property "white-space".
func (b *Builder) WhiteSpace(ws WhiteSpace) *Builder { b.s.WhiteSpace = ws; return b }

// TextAlign sets property "text-align".
func (b *Builder) TextAlign(ta TextAlign) *Builder { b.s.TextAlign = ta; return b }

// TextOverflow sets property "text-overflow".
func (b *Builder) TextOverflow(to TextOverflow) *Builder { b.s.TextOverflow = to; return b }

// Hyphens sets property "hyphens".
func (b *Builder) Hyphens(h Hyphens) *Builder { b.s.Hyphens = h; return b }

// UnicodeBidi sets property "unicode-bidi".
func (b *Builder) UnicodeBidi(ub UnicodeBidi) *Builder { b.s.UnicodeBidi = ub; return b }

// Width sets property "width".
func (b *Builder) Width(l Length) *Builder { b.s.Width = l; return b }

// Height sets property "height".
func (b *Builder) Height(l Length) *Builder { b.s.Height = l; return b }

// MinWidth sets property "min-width".
func (b *Builder) MinWidth(l Length) *Builder { b.s.MinWidth = l; return b }

// MaxWidth sets property "max-width".
func (b *Builder) MaxWidth(l Length) *Builder { b.s.MaxWidth = l; return b }

// MinHeight sets property "min-height".
func (b *Builder) MinHeight(l Length) *Builder { b.s.MinHeight = l; return b }

// MaxHeight sets property "max-height".
func (b *Builder) MaxHeight(l Length) *Builder { b.s.MaxHeight = l; return b }

// Margin sets the margin of one side.
func (b *Builder) Margin(side Side, l Length) *Builder { b.s.Margin[side] = l; return b }

// Margins sets the margins of all sides.
func (b *Builder) Margins(l Length) *Builder {
	for i := range b.s.Margin {
		b.s.Margin[i] = l
	}
	return b
}

// Padding sets the padding of one side.
func (b *Builder) Padding(side Side, l Length) *Builder { b.s.Padding[side] = l; return b }

// Border sets the border width of one side.
func (b *Builder) Border(side Side, w dimen.Dimen) *Builder { b.s.Border[side] = w; return b }

// Offset sets one of the properties "top", "right", "bottom", "left".
func (b *Builder) Offset(side Side, l Length) *Builder { b.s.Offset[side] = l; return b }

// Font sets the font family and size. An empty family or zero size keeps the
// current value.
func (b *Builder) Font(family string, size dimen.Dimen) *Builder {
	if family != "" {
		b.s.Font.Family = family
	}
	if size > 0 {
		b.s.Font.Size = size
	}
	return b
}

// LineHeight sets property "line-height".
func (b *Builder) LineHeight(l Length) *Builder { b.s.LineHeight = l; return b }

// Lang sets the content language.
func (b *Builder) Lang(lang string) *Builder { b.s.Lang = lang; return b }
