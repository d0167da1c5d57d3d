/*
Package glyphing turns text into glyphs.

Shaping backends implement the Shaper interface; sub-package harfbuzz shapes
OpenType fonts, sub-package monospace produces fixed-pitch glyphs. Layout does
not call shapers directly but goes through a Cache, which memoizes shaped runs
keyed by font identity, text, and direction.

A Cache is explicitly created and handed to layout. It may be shared between
layout requests running concurrently.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyphing

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'boxflow.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.glyphs")
}
