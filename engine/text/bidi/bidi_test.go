package bidi

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLTRText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.text")
	defer teardown()
	//
	levels := Resolve("Hello World", LeftToRight, Full)
	require.Len(t, levels, 11)
	assert.Equal(t, []Run{{Start: 0, End: 11, Level: 0}}, levels.Runs())
}

func TestHebrewInLTR(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.text")
	defer teardown()
	//
	text := "abc שלום def"
	levels := Resolve(text, LeftToRight, Full)
	runs := levels.Runs()
	require.Len(t, runs, 3)
	assert.Equal(t, uint8(0), runs[0].Level)
	assert.Equal(t, "abc ", text[runs[0].Start:runs[0].End])
	assert.Equal(t, uint8(1), runs[1].Level)
	assert.Equal(t, "שלום", text[runs[1].Start:runs[1].End])
	assert.True(t, runs[1].IsRTL())
	assert.Equal(t, " def", text[runs[2].Start:runs[2].End])
}

func TestNumbersInRTL(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.text")
	defer teardown()
	//
	text := "שלום 123"
	levels := Resolve(text, RightToLeft, Full)
	pos := strings.Index(text, "123")
	assert.Equal(t, uint8(2), levels.At(pos))
	assert.Equal(t, uint8(1), levels.At(0))
}

func TestAutoDirection(t *testing.T) {
	assert.Equal(t, uint8(1), ParagraphLevel("  שלום abc", Auto))
	assert.Equal(t, uint8(0), ParagraphLevel("123 abc שלום", Auto))
	assert.Equal(t, uint8(0), ParagraphLevel("", Auto))
	// strong characters within isolates are skipped
	assert.Equal(t, uint8(1), ParagraphLevel("\u2066abc\u2069שלום", Auto))
}

func TestConformanceNone(t *testing.T) {
	text := "abc שלום"
	levels := Resolve(text, RightToLeft, None)
	for i := range text {
		assert.Equal(t, uint8(1), levels.At(i))
	}
}

func TestEmbedding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.text")
	defer teardown()
	//
	text := "a\u202bb\u202cc" // a RLE b PDF c
	levels := Resolve(text, LeftToRight, Full)
	assert.Equal(t, uint8(0), levels.At(0))
	assert.Equal(t, uint8(2), levels.At(strings.Index(text, "b")))
	assert.Equal(t, uint8(0), levels.At(strings.Index(text, "c")))
}

func TestOverride(t *testing.T) {
	text := "\u202eabc\u202c" // RLO abc PDF
	levels := Resolve(text, LeftToRight, Full)
	assert.Equal(t, uint8(1), levels.At(strings.Index(text, "b")))
}

func TestIsolate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.text")
	defer teardown()
	//
	text := "a\u2067b\u2069c" // a RLI b PDI c
	levels := Resolve(text, LeftToRight, Full)
	assert.Equal(t, uint8(0), levels.At(strings.Index(text, "\u2067")))
	assert.Equal(t, uint8(2), levels.At(strings.Index(text, "b")))
	assert.Equal(t, uint8(0), levels.At(strings.Index(text, "\u2069")))
	assert.Equal(t, uint8(0), levels.At(strings.Index(text, "c")))
}

func TestTrailingWhitespaceTakesParagraphLevel(t *testing.T) {
	text := "abc   "
	levels := Resolve(text, RightToLeft, Full)
	assert.Equal(t, uint8(2), levels.At(0))
	assert.Equal(t, uint8(1), levels.At(len(text)-1))
}

func TestRunsCoverText(t *testing.T) {
	texts := []string{
		"",
		"plain",
		"abc שלום 12 def",
		"مرحبا 123 world",
		"a\u2067b\u2069c\u202bd\u202c",
	}
	for _, text := range texts {
		for _, conf := range []Conformance{Full, None} {
			runs := Resolve(text, Auto, conf).Runs()
			var b strings.Builder
			next := 0
			for _, r := range runs {
				assert.Equal(t, next, r.Start, "gap in runs of %q", text)
				b.WriteString(text[r.Start:r.End])
				next = r.End
			}
			assert.Equal(t, text, b.String())
		}
	}
}

func TestSlice(t *testing.T) {
	text := "abc שלום"
	levels := Resolve(text, LeftToRight, Full)
	runs := levels.Slice(2, len(text))
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].Start)
	assert.Equal(t, len(text), runs[1].End)
}

func TestReorder(t *testing.T) {
	cases := []struct {
		levels []uint8
		want   []int
	}{
		{[]uint8{0, 0, 0}, []int{0, 1, 2}},
		{[]uint8{1, 1, 1}, []int{2, 1, 0}},
		{[]uint8{0, 1, 1, 0}, []int{0, 2, 1, 3}},
		{[]uint8{0, 2, 2, 1}, []int{0, 3, 1, 2}},
		{[]uint8{1, 2, 1}, []int{2, 1, 0}},
		{nil, []int{}},
	}
	for i, c := range cases {
		assert.Equal(t, c.want, Reorder(c.levels), "case %d", i)
	}
}

func TestParseConformance(t *testing.T) {
	c, err := ParseConformance("none")
	assert.NoError(t, err)
	assert.Equal(t, None, c)
	c, err = ParseConformance("Full")
	assert.NoError(t, err)
	assert.Equal(t, Full, c)
	_, err = ParseConformance("partial")
	assert.Error(t, err)
}

func TestBracketPairs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.text")
	defer teardown()
	//
	text := "a ב(ג) d"
	levels := Resolve(text, LeftToRight, Full)
	opening, closing := strings.Index(text, "("), strings.Index(text, ")")
	assert.Equal(t, uint8(1), levels.At(opening))
	assert.Equal(t, levels.At(opening), levels.At(closing), "paired brackets share a level")
	assert.Equal(t, uint8(0), levels.At(strings.Index(text, "d")))
}

func TestFirstStrongIsolate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.text")
	defer teardown()
	//
	text := "a\u2068שלום\u2069 b" // a FSI shalom PDI b
	levels := Resolve(text, LeftToRight, Full)
	assert.Equal(t, uint8(1), levels.At(strings.Index(text, "ש")))
	assert.Equal(t, uint8(0), levels.At(strings.Index(text, "b")))
}

func TestResolverInputKeepsPositions(t *testing.T) {
	texts := []string{
		"a\u2068b\u2069",
		"\u202bx\u202c\u2069",
		"x\xffy",
	}
	for _, text := range texts {
		input := resolverInput(text)
		assert.Equal(t, len(text), len(input), "%q", text)
		assert.NotContains(t, input, "\u2068")
		assert.NotContains(t, input, "\u202b")
	}
	assert.Equal(t, "a\u2066b\u2069", resolverInput("a\u2068b\u2069"))
	assert.Equal(t, "\u2003x\u2003\u2003", resolverInput("\u202bx\u202c\u2069"))
}
