/*
Package monospace implements a simple shaper for monospace output.

Every grapheme cluster is set as one glyph. Its advance is half an em for
narrow characters and a full em for wide characters, as classified by
UAX #11 (East Asian Width). Format characters have no advance.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package monospace

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'boxflow.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.glyphs")
}
