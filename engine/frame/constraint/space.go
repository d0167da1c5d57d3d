package constraint

import (
	"fmt"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/dom/style"
)

// Space is the input of a single layout call. Spaces are values and are
// never modified after creation; derive new spaces with the With… methods.
type Space struct {
	AvailableInline dimen.Dimen
	AvailableBlock  dimen.Dimen
	IndefiniteBlock bool // block size is not known in advance

	PercentInline dimen.Dimen // base for resolving inline percentages
	PercentBlock  dimen.Dimen // base for resolving block percentages

	// BFCOffset is the position of the box within its block formatting
	// context. The inline component is the inline-start of the containing
	// block's content box. If BFCOffsetKnown is true, the block component is
	// the block-start of the box's border box and Strut is empty. Otherwise
	// the block component is the root of the pending Strut, and the box's
	// block offset is known only after adjoining margins are resolved.
	// For a box establishing a new formatting context, BFCOffset is the
	// origin and the box's border box starts there.
	BFCOffset      dimen.LogicalPoint
	BFCOffsetKnown bool

	// ForcedBFCBlockOffset is set for a repeated layout of a box whose BFC
	// block offset has been discovered by an earlier pass. Floats preceding
	// the resolution of the BFC offset are placed there.
	ForcedBFCBlockOffset dimen.Dimen
	HasForcedOffset      bool

	Exclusions      ExclusionSpace
	Strut           MarginStrut
	ClearanceTarget dimen.Dimen // box has to start at or below this BFC offset; 0 for none

	WritingMode style.WritingMode
	Direction   style.Direction

	NewFormattingContext bool // box establishes a new BFC
	FixedInlineSize      bool // available inline size is the box's border-box size
	FixedBlockSize       bool // available block size is the box's border-box size
}

// NewSpace creates a space for the root of a layout, with a definite inline
// size. A negative block size denotes an indefinite block size.
func NewSpace(inline, block dimen.Dimen) Space {
	s := Space{
		AvailableInline:      inline,
		AvailableBlock:       block,
		PercentInline:        inline,
		PercentBlock:         block,
		BFCOffsetKnown:       true,
		NewFormattingContext: true,
	}
	if block < 0 {
		s.AvailableBlock, s.PercentBlock = 0, 0
		s.IndefiniteBlock = true
	}
	return s
}

// Validate checks the preconditions of a layout call.
func (s Space) Validate() error {
	if s.AvailableInline < 0 {
		return core.Error(core.EINVALID, "available inline size is negative: %s", s.AvailableInline.PxString())
	}
	if s.AvailableBlock < 0 {
		return core.Error(core.EINVALID, "available block size is negative: %s", s.AvailableBlock.PxString())
	}
	return nil
}

func (s Space) String() string {
	bsize := s.AvailableBlock.PxString()
	if s.IndefiniteBlock {
		bsize = "indefinite"
	}
	return fmt.Sprintf("space{%s×%s, bfc@%s known=%v, %s, %d floats}",
		s.AvailableInline.PxString(), bsize, s.BFCOffset, s.BFCOffsetKnown,
		s.Strut, s.Exclusions.Len())
}

// WithAvailableSize derives a space with different available sizes. The
// sizes are also used for resolving percentages.
func (s Space) WithAvailableSize(inline, block dimen.Dimen, indefinite bool) Space {
	s.AvailableInline, s.AvailableBlock, s.IndefiniteBlock = inline, block, indefinite
	s.PercentInline, s.PercentBlock = inline, block
	s.FixedInlineSize, s.FixedBlockSize = false, false
	return s
}

// WithPercentageBase derives a space with different bases for percentages.
func (s Space) WithPercentageBase(inline, block dimen.Dimen) Space {
	s.PercentInline, s.PercentBlock = inline, block
	return s
}

// WithBFCOffset derives a space with a known BFC offset and an empty strut.
func (s Space) WithBFCOffset(p dimen.LogicalPoint) Space {
	s.BFCOffset, s.BFCOffsetKnown = p, true
	s.Strut = MarginStrut{}
	return s
}

// WithPendingBFCOffset derives a space for a box whose block offset depends
// on the resolution of strut, rooted at p.
func (s Space) WithPendingBFCOffset(p dimen.LogicalPoint, strut MarginStrut) Space {
	s.BFCOffset, s.BFCOffsetKnown, s.Strut = p, false, strut
	return s
}

// WithForcedBFCBlockOffset derives a space for a repeated layout pass.
func (s Space) WithForcedBFCBlockOffset(d dimen.Dimen) Space {
	s.ForcedBFCBlockOffset, s.HasForcedOffset = d, true
	return s
}

// WithoutForcedBFCBlockOffset derives a space without a forced offset.
func (s Space) WithoutForcedBFCBlockOffset() Space {
	s.ForcedBFCBlockOffset, s.HasForcedOffset = 0, false
	return s
}

// WithExclusions derives a space with a different exclusion space.
func (s Space) WithExclusions(es ExclusionSpace) Space {
	s.Exclusions = es
	return s
}

// WithStrut derives a space with a different margin strut.
func (s Space) WithStrut(strut MarginStrut) Space {
	s.Strut = strut
	return s
}

// WithClearance derives a space with a clearance offset.
func (s Space) WithClearance(offset dimen.Dimen) Space {
	s.ClearanceTarget = offset
	return s
}

// WithNewFormattingContext derives a space for a box establishing a new
// BFC. The new context starts with an empty exclusion space and an empty
// strut, at BFC offset (0, 0).
func (s Space) WithNewFormattingContext() Space {
	s.NewFormattingContext = true
	s.Exclusions = ExclusionSpace{}
	s.Strut = MarginStrut{}
	s.ClearanceTarget = 0
	s.BFCOffset, s.BFCOffsetKnown = dimen.LogicalPoint{}, true
	s.ForcedBFCBlockOffset, s.HasForcedOffset = 0, false
	return s
}

// WithinFormattingContext derives a space for a box participating in the
// formatting context of its parent.
func (s Space) WithinFormattingContext() Space {
	s.NewFormattingContext = false
	return s
}

// WithFixedInlineSize derives a space where the box's border-box inline
// size is given by the parent.
func (s Space) WithFixedInlineSize(w dimen.Dimen) Space {
	s.AvailableInline, s.FixedInlineSize = w, true
	return s
}

// WithFixedBlockSize derives a space where the box's border-box block size
// is given by the parent.
func (s Space) WithFixedBlockSize(h dimen.Dimen) Space {
	s.AvailableBlock, s.FixedBlockSize, s.IndefiniteBlock = h, true, false
	return s
}

// WithFlow derives a space with a different writing mode and direction.
func (s Space) WithFlow(wm style.WritingMode, dir style.Direction) Space {
	s.WritingMode, s.Direction = wm, dir
	return s
}

// ClearSidesFor maps property "clear" to the float sides to clear, given
// the direction of the formatting context.
func ClearSidesFor(c style.Clear, dir style.Direction) ClearSides {
	switch c {
	case style.ClearBoth:
		return ClearBoth
	case style.ClearInlineStart:
		return ClearStart
	case style.ClearInlineEnd:
		return ClearEnd
	case style.ClearLeft:
		if dir == style.RTL {
			return ClearEnd
		}
		return ClearStart
	case style.ClearRight:
		if dir == style.RTL {
			return ClearStart
		}
		return ClearEnd
	}
	return ClearNone
}

// FloatSide returns the side a floated box with style sty attaches to.
func FloatSide(sty *style.ComputedStyle) Side {
	if sty.FloatsToInlineStart() {
		return InlineStartSide
	}
	return InlineEndSide
}
