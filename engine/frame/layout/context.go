package layout

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/npillmayer/boxflow/core/font"
	"github.com/npillmayer/boxflow/core/parameters"
	"github.com/npillmayer/boxflow/engine/glyphing"
	"github.com/npillmayer/boxflow/engine/glyphing/harfbuzz"
	"github.com/npillmayer/boxflow/engine/text/linebreak"
	"github.com/npillmayer/schuko/gconf"
	"golang.org/x/text/language"
)

// Context holds the services and settings shared by all layouts run with
// it. A Context is safe for concurrent use.
type Context struct {
	parallelism int
	maxPasses   int
	conformance string
	hyphenate   bool
	fonts       *font.Registry
	shaping     *glyphing.Cache
	registers   *parameters.Registers
	breaker     linebreak.Breaker
}

// Option configures a Context.
type Option func(*Context)

// WithParallelism limits the number of concurrent subtree layouts.
// A value of 1 switches concurrency off.
func WithParallelism(n int) Option {
	return func(c *Context) { c.parallelism = n }
}

// WithMaxPasses bounds the number of layout passes for a box whose BFC
// offset had to be guessed.
func WithMaxPasses(n int) Option {
	return func(c *Context) { c.maxPasses = n }
}

// WithBidiConformance sets the level of bidi support, "full" or "none".
func WithBidiConformance(level string) Option {
	return func(c *Context) { c.conformance = level }
}

// WithHyphenation switches automatic hyphenation on or off.
func WithHyphenation(on bool) Option {
	return func(c *Context) { c.hyphenate = on }
}

// WithFonts sets the font registry.
func WithFonts(r *font.Registry) Option {
	return func(c *Context) { c.fonts = r }
}

// WithShapingCache sets the shaping cache, and thereby the shaper.
func WithShapingCache(cache *glyphing.Cache) Option {
	return func(c *Context) { c.shaping = cache }
}

// WithRegisters sets the base typesetting registers. The registers are
// cloned.
func WithRegisters(regs *parameters.Registers) Option {
	return func(c *Context) { c.registers = regs }
}

// WithBreaker sets the line breaker.
func WithBreaker(b linebreak.Breaker) Option {
	return func(c *Context) { c.breaker = b }
}

// NewContext creates a layout context. Settings are read from the global
// configuration first and may then be overridden by options. Services not
// given as options default to system fonts, HarfBuzz shaping and UAX #14
// line breaking.
func NewContext(opts ...Option) *Context {
	c := &Context{
		parallelism: configInt("layout.parallelism", runtime.GOMAXPROCS(0)),
		maxPasses:   configInt("layout.maxpasses", 2),
		conformance: configString("layout.bidi", "full"),
		hyphenate:   configBool("layout.hyphenate", true),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.parallelism < 1 {
		c.parallelism = 1
	}
	if c.maxPasses < 1 {
		c.maxPasses = 1
	}
	if c.fonts == nil {
		c.fonts = font.NewRegistry()
	}
	if c.shaping == nil {
		c.shaping = glyphing.NewCache(harfbuzz.New(language.Und, language.Script{}))
	}
	if c.registers == nil {
		c.registers = parameters.NewRegisters()
	} else {
		c.registers = c.registers.Clone()
	}
	c.registers.Push(parameters.BidiConformance, c.conformance)
	c.registers.Push(parameters.Hyphenate, c.hyphenate)
	if c.breaker == nil {
		c.breaker = linebreak.NewUAX14Breaker()
	}
	tracer().Debugf("layout context: parallelism=%d, passes=%d, bidi=%s, hyphenate=%v",
		c.parallelism, c.maxPasses, c.conformance, c.hyphenate)
	return c
}

// ShapingCache returns the shaping cache of c.
func (c *Context) ShapingCache() *glyphing.Cache {
	return c.shaping
}

// --- Configuration ---------------------------------------------------------

// configString reads a global configuration value. Without an initialized
// configuration, def is returned.
func configString(key, def string) (value string) {
	defer func() {
		if r := recover(); r != nil {
			value = def
		}
	}()
	if value = strings.TrimSpace(gconf.GetString(key)); value == "" {
		value = def
	}
	return value
}

func configInt(key string, def int) int {
	s := configString(key, "")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		tracer().Errorf("configuration %s: %v", key, err)
		return def
	}
	return n
}

func configBool(key string, def bool) bool {
	s := configString(key, "")
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		tracer().Errorf("configuration %s: %v", key, err)
		return def
	}
	return b
}
