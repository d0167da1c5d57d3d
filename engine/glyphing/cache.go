package glyphing

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/core/font"
)

// Key is the key of a shaped run in a cache.
type Key struct {
	Font      string // typecase ID
	Text      string
	Direction Direction
}

// Cache memoizes shaped runs. The cache has no eviction; it grows with the
// number of distinct runs seen.
//
// A Cache is safe for concurrent use. Concurrent requests for the same key
// may both call the shaper; the first result stored wins and is returned to
// all later callers.
type Cache struct {
	shaper     Shaper
	mu         sync.RWMutex
	runs       map[Key]*ShapedRun
	contextual map[string]bool
	hits       uint64
	misses     uint64
}

// NewCache creates an empty cache for a shaper.
func NewCache(shaper Shaper) *Cache {
	return &Cache{
		shaper:     shaper,
		runs:       make(map[Key]*ShapedRun),
		contextual: make(map[string]bool),
	}
}

// Shaper returns the shaper of this cache.
func (c *Cache) Shaper() Shaper {
	return c.shaper
}

// Shape returns the shaped run for text in font tc and direction dir.
func (c *Cache) Shape(tc *font.TypeCase, text string, dir Direction) (*ShapedRun, error) {
	key := Key{Font: tc.ID(), Text: text, Direction: dir}
	c.mu.RLock()
	run, ok := c.runs[key]
	c.mu.RUnlock()
	if ok {
		atomic.AddUint64(&c.hits, 1)
		return run, nil
	}
	atomic.AddUint64(&c.misses, 1)
	run, err := c.shaper.Shape(text, tc, dir)
	if err != nil {
		tracer().Errorf("shaping %q failed: %v", text, err)
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if stored, ok := c.runs[key]; ok {
		return stored, nil
	}
	c.runs[key] = run
	return run, nil
}

// Seed stores a run for a key. Existing entries are kept.
func (c *Cache) Seed(run *ShapedRun) {
	key := Key{Font: run.Font, Text: run.Text, Direction: run.Direction}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.runs[key]; !ok {
		c.runs[key] = run
	}
}

// SpaceContextual asks the shaper whether a font requires shaping at run
// granularity. The answer is memoized per font.
func (c *Cache) SpaceContextual(tc *font.TypeCase) bool {
	id := tc.ID()
	c.mu.RLock()
	ctx, ok := c.contextual[id]
	c.mu.RUnlock()
	if ok {
		return ctx
	}
	ctx = c.shaper.SpaceContextual(tc)
	c.mu.Lock()
	defer c.mu.Unlock()
	if stored, ok := c.contextual[id]; ok {
		return stored
	}
	c.contextual[id] = ctx
	tracer().Debugf("font %s is space-contextual: %v", id, ctx)
	return ctx
}

// ShapeWords shapes a run of text, choosing the caching granularity by font:
// if shaping in font tc does not depend on the space glyph, words and spaces
// are shaped and cached separately and a run per word is returned. Otherwise
// the text is shaped and cached as a whole.
//
// If shaping fails, an estimated run is returned in place of the failed one.
func (c *Cache) ShapeWords(tc *font.TypeCase, text string, dir Direction) []*ShapedRun {
	if text == "" {
		return nil
	}
	if c.SpaceContextual(tc) {
		return []*ShapedRun{c.mustShape(tc, text, dir)}
	}
	words := SplitWords(text)
	runs := make([]*ShapedRun, len(words))
	for i, w := range words {
		runs[i] = c.mustShape(tc, w, dir)
	}
	return runs
}

// Measure returns the advance of text, shaped with the granularity rules of
// ShapeWords.
func (c *Cache) Measure(tc *font.TypeCase, text string, dir Direction) dimen.Dimen {
	var w dimen.Dimen
	for _, run := range c.ShapeWords(tc, text, dir) {
		w += run.Advance
	}
	return w
}

func (c *Cache) mustShape(tc *font.TypeCase, text string, dir Direction) *ShapedRun {
	run, err := c.Shape(tc, text, dir)
	if err != nil {
		return Estimate(text, tc, dir)
	}
	return run
}

// Contains is true if a run for key is cached.
func (c *Cache) Contains(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.runs[key]
	return ok
}

// Len returns the number of cached runs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.runs)
}

// Stats returns the number of cache hits and misses.
func (c *Cache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// SplitWords splits text into alternating words and space runs. Joining the
// parts reproduces text.
func SplitWords(text string) []string {
	var parts []string
	start := 0
	inSpace := false
	for i, r := range text {
		sp := r == ' ' || r == '\t'
		if i > start && sp != inSpace {
			parts = append(parts, text[start:i])
			start = i
		}
		inSpace = sp
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// JoinRuns concatenates runs shaped separately into one run. Runs are
// given in logical order; for right-to-left runs the glyphs are joined in
// visual order. Clusters are rebased to positions within the joined text.
func JoinRuns(runs []*ShapedRun) *ShapedRun {
	if len(runs) == 1 {
		return runs[0]
	}
	joined := &ShapedRun{}
	if len(runs) == 0 {
		return joined
	}
	joined.Font, joined.Direction = runs[0].Font, runs[0].Direction
	bases := make([]int, len(runs))
	var b strings.Builder
	for i, r := range runs {
		bases[i] = b.Len()
		b.WriteString(r.Text)
		joined.Advance += r.Advance
	}
	joined.Text = b.String()
	for k := range runs {
		i := k
		if joined.Direction == RightToLeft {
			i = len(runs) - 1 - k
		}
		for _, g := range runs[i].Glyphs {
			g.Cluster += bases[i]
			joined.Glyphs = append(joined.Glyphs, g)
		}
	}
	return joined
}
