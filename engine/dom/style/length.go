package style

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/core/option"
)

// PropertyType is a helper type for special values of properties, e.g.:
//
//     auto
//     initial
//
type PropertyType int

// Auto and Percentage are constant values for options-matching.
// Use with
//     option.Of{
//          style.Auto: …   // will match a Length with value "auto"
//     }
const (
	Auto       PropertyType = 1 // for option matching
	Percentage PropertyType = 2 // for option matching: length is relative to the containing block
)

const (
	lengthNone     uint32 = 0
	lengthAbsolute uint32 = 0x0001
	lengthAuto     uint32 = 0x0002
	lengthPercent  uint32 = 0x0010
)

// --- Length ----------------------------------------------------------------

// Length is an option type for CSS length-percentage-or-auto values.
// Percentages are held in hundredths of a percent.
type Length struct {
	d     dimen.Dimen
	flags uint32
}

// Px creates an absolute length.
func Px(x dimen.Dimen) Length {
	return Length{d: x, flags: lengthAbsolute}
}

// Percent creates a percentage length.
func Percent(p float64) Length {
	return Length{d: dimen.Dimen(math.Round(p * 100)), flags: lengthPercent}
}

// AutoLength is the length with value "auto".
var AutoLength = Length{flags: lengthAuto}

// NoLength creates a length without a value.
func NoLength() Length {
	return Length{}
}

// Match is part of interface option.Type.
func (l Length) Match(choices interface{}) (value interface{}, err error) {
	return option.Match(l, choices)
}

// Equals is part of interface option.Type.
func (l Length) Equals(other interface{}) bool {
	switch i := other.(type) {
	case dimen.Dimen:
		return l.IsAbsolute() && l.d == i
	case int:
		return l.IsAbsolute() && l.d == dimen.Dimen(i)
	case PropertyType:
		switch i {
		case Auto:
			return l.flags&lengthAuto > 0
		case Percentage:
			return l.flags&lengthPercent > 0
		}
	case Length:
		return l == i
	}
	return false
}

// Unwrap returns the underlying value of l.
func (l Length) Unwrap() dimen.Dimen {
	return l.d
}

// IsNone returns true if l is unset.
func (l Length) IsNone() bool {
	return l.flags == lengthNone
}

// IsAuto returns true if l is "auto".
func (l Length) IsAuto() bool {
	return l.flags&lengthAuto > 0
}

// IsPercent returns true if l is a percentage.
func (l Length) IsPercent() bool {
	return l.flags&lengthPercent > 0
}

// IsAbsolute returns true if l is a fixed length.
func (l Length) IsAbsolute() bool {
	return l.flags&lengthAbsolute > 0
}

// IsDefinite returns true if l may be resolved against base without
// falling back to an automatic value.
func (l Length) IsDefinite(base dimen.Dimen) bool {
	return l.IsAbsolute() || (l.IsPercent() && base != dimen.Infinity)
}

// Resolve resolves l against a base size. Unset lengths, auto and percentages
// of an indefinite base resolve to 0.
func (l Length) Resolve(base dimen.Dimen) dimen.Dimen {
	switch {
	case l.IsAbsolute():
		return l.d
	case l.IsPercent() && base != dimen.Infinity:
		return dimen.Dimen(int64(base) * int64(l.d) / 10000)
	}
	return 0
}

// ResolveOr resolves l against a base size, returning auto for unset lengths,
// "auto", and percentages of an indefinite base.
func (l Length) ResolveOr(base, auto dimen.Dimen) dimen.Dimen {
	v, err := l.Match(option.Of{
		option.None: auto,
		Auto:        auto,
		option.Some: func(x interface{}) (interface{}, error) {
			if x.(Length).IsDefinite(base) {
				return x.(Length).Resolve(base), nil
			}
			return auto, nil
		},
	})
	if err != nil {
		return auto
	}
	return v.(dimen.Dimen)
}

func (l Length) String() string {
	switch {
	case l.IsNone():
		return "Length.None"
	case l.IsAuto():
		return "auto"
	case l.IsPercent():
		return strconv.FormatFloat(float64(l.d)/100, 'f', -1, 64) + "%"
	}
	return fmt.Sprintf("%spx", l.d.PxString())
}

var lengthPattern = regexp.MustCompile(`^([+\-]?[0-9]*\.?[0-9]+)(%|[a-z]{2,3})?$`)

// ErrLengthFormat is returned for unparsable length strings.
var ErrLengthFormat = errors.New("format error parsing length")

// ParseLength parses a CSS length-percentage-or-auto. Font relative units are
// resolved against em, the font size in effect.
//
//     15px
//     80%
//     1.5em
//     auto
//
func ParseLength(s string, em dimen.Dimen) (Length, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "auto" {
		return AutoLength, nil
	}
	m := lengthPattern.FindStringSubmatch(s)
	if len(m) < 2 {
		return NoLength(), ErrLengthFormat
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return NoLength(), ErrLengthFormat
	}
	switch m[2] {
	case "%":
		return Percent(n), nil
	case "em":
		return Px(em.Scale(n)), nil
	case "rem":
		return Px(dimen.Dimen(16 * dimen.PX).Scale(n)), nil
	}
	d, _, err := dimen.ParseDimen(s)
	if err != nil {
		return NoLength(), ErrLengthFormat
	}
	if m[2] == "" && n != 0 {
		return NoLength(), ErrLengthFormat // CSS requires a unit
	}
	return Px(d), nil
}
