package glyphing_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/core/font"
	"github.com/npillmayer/boxflow/engine/glyphing"
	"github.com/npillmayer/boxflow/engine/glyphing/monospace"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheHit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.glyphs")
	defer teardown()
	//
	cache := glyphing.NewCache(monospace.New())
	tc := font.SyntheticTypeCase("mono", 16*dimen.PX)
	r1, err := cache.Shape(tc, "word", glyphing.LeftToRight)
	require.NoError(t, err)
	r2, err := cache.Shape(tc, "word", glyphing.LeftToRight)
	require.NoError(t, err)
	assert.True(t, r1.Equal(r2))
	assert.Same(t, r1, r2)
	hits, misses := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	r3, _ := cache.Shape(tc, "word", glyphing.RightToLeft)
	assert.NotSame(t, r1, r3, "direction is part of the key")
}

func TestGranularityPolicy(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.glyphs")
	defer teardown()
	//
	tc := font.SyntheticTypeCase("mono", 16*dimen.PX)
	text := "two words"
	//
	perWord := glyphing.NewCache(monospace.New())
	runs := perWord.ShapeWords(tc, text, glyphing.LeftToRight)
	assert.Len(t, runs, 3)
	assert.True(t, perWord.Contains(glyphing.Key{Font: tc.ID(), Text: "words", Direction: glyphing.LeftToRight}))
	//
	perRun := glyphing.NewCache(monospace.NewSpaceContextual())
	runs = perRun.ShapeWords(tc, text, glyphing.LeftToRight)
	assert.Len(t, runs, 1)
	assert.False(t, perRun.Contains(glyphing.Key{Font: tc.ID(), Text: "words", Direction: glyphing.LeftToRight}),
		"no per-word keys for space-contextual fonts")
	assert.True(t, perRun.Contains(glyphing.Key{Font: tc.ID(), Text: text, Direction: glyphing.LeftToRight}))
	assert.Equal(t, perWord.Measure(tc, text, glyphing.LeftToRight), perRun.Measure(tc, text, glyphing.LeftToRight))
}

func TestConcurrentShaping(t *testing.T) {
	cache := glyphing.NewCache(monospace.New())
	tc := font.SyntheticTypeCase("mono", 12*dimen.PX)
	var wg sync.WaitGroup
	results := make([]*glyphing.ShapedRun, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cache.Shape(tc, "race", glyphing.LeftToRight)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Same(t, results[0], r, "first stored run wins")
	}
	assert.Equal(t, 1, cache.Len())
}

func TestSplitAndJoin(t *testing.T) {
	text := "a  quick\tfox "
	parts := glyphing.SplitWords(text)
	assert.Equal(t, []string{"a", "  ", "quick", "\t", "fox", " "}, parts)
	assert.Equal(t, text, strings.Join(parts, ""))
	//
	cache := glyphing.NewCache(monospace.New())
	tc := font.SyntheticTypeCase("mono", 10*dimen.PX)
	joined := glyphing.JoinRuns(cache.ShapeWords(tc, "ab cd", glyphing.LeftToRight))
	assert.Equal(t, "ab cd", joined.Text)
	assert.Equal(t, 25*dimen.PX, joined.Advance)
	assert.Equal(t, 3, joined.Glyphs[3].Cluster)
	rtl := glyphing.JoinRuns(cache.ShapeWords(tc, "ab cd", glyphing.RightToLeft))
	assert.Equal(t, 4, rtl.Glyphs[0].Cluster, "right-to-left runs join in visual order")
}

func TestSeededCache(t *testing.T) {
	cache := glyphing.NewCache(monospace.New())
	tc := font.SyntheticTypeCase("mono", 10*dimen.PX)
	seeded := &glyphing.ShapedRun{Font: tc.ID(), Text: "x", Advance: 99 * dimen.PX}
	cache.Seed(seeded)
	run, err := cache.Shape(tc, "x", glyphing.LeftToRight)
	require.NoError(t, err)
	assert.Same(t, seeded, run)
}
