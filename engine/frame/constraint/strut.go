package constraint

import (
	"fmt"

	"github.com/npillmayer/boxflow/core/dimen"
)

// MarginStrut collects adjoining margins. It keeps the largest positive and
// the smallest negative margin seen. A MarginStrut is a value; the zero value
// is an empty strut.
type MarginStrut struct {
	Positive dimen.Dimen // >= 0
	Negative dimen.Dimen // <= 0
}

// Append folds a margin into the strut.
func (s MarginStrut) Append(m dimen.Dimen) MarginStrut {
	if m > s.Positive {
		s.Positive = m
	} else if m < s.Negative {
		s.Negative = m
	}
	return s
}

// AppendStrut folds all margins of another strut into s.
func (s MarginStrut) AppendStrut(other MarginStrut) MarginStrut {
	return s.Append(other.Positive).Append(other.Negative)
}

// Resolve returns the collapsed margin: the largest positive margin plus the
// smallest negative margin.
func (s MarginStrut) Resolve() dimen.Dimen {
	return s.Positive + s.Negative
}

// IsEmpty is true if no non-zero margin has been appended.
func (s MarginStrut) IsEmpty() bool {
	return s.Positive == 0 && s.Negative == 0
}

func (s MarginStrut) String() string {
	return fmt.Sprintf("strut{+%s, %s}", s.Positive.PxString(), s.Negative.PxString())
}
