package option

import (
	"errors"
)

// Errors returned from matching.
var (
	ErrNoSuchMatchPattern    = errors.New("option: no such match pattern")
	ErrCannotMatchUnsetValue = errors.New("option: no case for unset value")
	ErrCannotMatchValue      = errors.New("option: no case for value")
)

// Label is a case label which does not stand for a concrete value.
type Label int

// Case labels. None matches unset values, Some matches every set value
// without a more specific case, and Error catches a failed match.
const (
	None Label = iota
	Some
	Error
)

// Type is implemented by values which may be unset, such as CSS lengths.
type Type interface {
	Match(choices interface{}) (interface{}, error)
	Equals(other interface{}) bool
	IsNone() bool
}

// Maybe holds cases for the labels None, Some and Error.
type Maybe map[Label]interface{}

// Of holds cases for concrete values, which are compared with Type.Equals,
// and for the labels.
type Of map[interface{}]interface{}

// A Case is a function case. It is called with the matched value and its
// result becomes the result of the match.
type Case func(o interface{}) (interface{}, error)

// Match selects a case from choices, which must be of type Of or Maybe, and
// returns its value. Cases which are functions of type Case (or of the
// underlying signature) are called with o.
//
// Types implementing Type will usually delegate their Match method to this
// function.
func Match(o Type, choices interface{}) (interface{}, error) {
	var c cases
	switch x := choices.(type) {
	case Of:
		c = ofCases(x)
	case Maybe:
		c = maybeCases(x)
	default:
		return nil, ErrNoSuchMatchPattern
	}
	expr, err := c.pick(o)
	var value interface{}
	if err == nil {
		value, err = eval(expr, o)
	}
	if err != nil {
		tracer().Debugf("option match: %v", err)
		if handler, ok := c.label(Error); ok {
			return eval(handler, o)
		}
	}
	return value, err
}

// cases unifies Of and Maybe.
type cases interface {
	label(l Label) (interface{}, bool)
	pick(o Type) (interface{}, error)
}

type ofCases Of

func (c ofCases) label(l Label) (interface{}, bool) {
	expr, ok := c[l]
	return expr, ok
}

func (c ofCases) pick(o Type) (interface{}, error) {
	if o.IsNone() {
		return pickLabel(c, None, ErrCannotMatchUnsetValue)
	}
	for k, expr := range c {
		if _, isLabel := k.(Label); !isLabel && o.Equals(k) {
			return expr, nil
		}
	}
	return pickLabel(c, Some, ErrCannotMatchValue)
}

type maybeCases Maybe

func (c maybeCases) label(l Label) (interface{}, bool) {
	expr, ok := c[l]
	return expr, ok
}

func (c maybeCases) pick(o Type) (interface{}, error) {
	if o.IsNone() {
		return pickLabel(c, None, ErrCannotMatchUnsetValue)
	}
	return pickLabel(c, Some, ErrCannotMatchValue)
}

func pickLabel(c cases, l Label, missing error) (interface{}, error) {
	if expr, ok := c.label(l); ok {
		return expr, nil
	}
	return nil, missing
}

func eval(expr interface{}, o interface{}) (interface{}, error) {
	switch f := expr.(type) {
	case Case:
		return f(o)
	case func(interface{}) (interface{}, error):
		return f(o)
	}
	return expr, nil
}

// Fail is a case which makes a match fail with err, unless an Error case
// catches it:
//
//     _, err := length.Match(option.Of{
//          option.None: …,
//          0:           option.Fail(errors.New("zero width")),
//          option.Some: …,
//     })
//
func Fail(err error) Case {
	return func(interface{}) (interface{}, error) {
		return nil, err
	}
}
