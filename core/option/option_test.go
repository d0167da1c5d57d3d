package option_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/npillmayer/boxflow/core/option"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// width is a minimal option type: negative widths are unset.
type width int

func (w width) Match(choices interface{}) (interface{}, error) { return option.Match(w, choices) }
func (w width) IsNone() bool                                   { return w < 0 }
func (w width) Equals(other interface{}) bool {
	i, ok := other.(int)
	return ok && int(w) == i
}

func TestMaybe(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.core")
	defer teardown()
	//
	y, err := width(42).Match(option.Maybe{
		option.None: 7,
		option.Some: func(x interface{}) (interface{}, error) { return int(x.(width)) + 1, nil },
	})
	require.NoError(t, err)
	assert.Equal(t, 43, y)
	y, _ = width(-1).Match(option.Maybe{
		option.None: "auto",
		option.Some: option.Case(describe),
	})
	assert.Equal(t, "auto", y, "unset value matches None")
	y, err = width(42).Match(option.Maybe{
		option.None:  "auto",
		option.Some:  option.Fail(errors.New("too wide")),
		option.Error: option.Case(describe),
	})
	require.NoError(t, err)
	assert.Equal(t, "width 42", y, "error is caught")
}

func TestOf(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.core")
	defer teardown()
	//
	cases := option.Of{
		option.None: 7,
		1:           99,
		option.Some: 0,
	}
	y, _ := width(1).Match(cases)
	assert.Equal(t, 99, y, "concrete value takes precedence")
	y, _ = width(2).Match(cases)
	assert.Equal(t, 0, y)
	y, _ = width(-5).Match(cases)
	assert.Equal(t, 7, y)
	_, err := width(3).Match(option.Of{1: 99})
	assert.Equal(t, option.ErrCannotMatchValue, err)
}

func TestFail(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.core")
	defer teardown()
	//
	_, err := width(1).Match(option.Of{
		option.None:  7,
		1:            option.Fail(errors.New("fail")),
		option.Error: option.Fail(errors.New("caught")),
	})
	require.Error(t, err)
	assert.Equal(t, "caught", err.Error())
	_, err = width(-1).Match(option.Maybe{option.Some: 1})
	assert.Equal(t, option.ErrCannotMatchUnsetValue, err)
	_, err = option.Match(width(1), map[string]int{})
	assert.Equal(t, option.ErrNoSuchMatchPattern, err)
}

func describe(x interface{}) (interface{}, error) {
	return fmt.Sprintf("width %v", x), nil
}
