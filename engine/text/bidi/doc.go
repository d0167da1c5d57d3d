/*
Package bidi resolves embedding levels for paragraphs of mixed-direction text
and reorders resolved runs for display.

Directional runs are resolved by package github.com/npillmayer/uax/bidi,
which implements the Unicode Bidirectional Algorithm (UAX #9) for isolates
and paired brackets. It does not support the legacy embedding and override
codes (LRE, RLE, LRO, RLO, PDF); this package applies them on top of the
resolved runs, turns directions into numeric embedding levels and applies
the whitespace rule L1. Bidi classes are taken from
golang.org/x/text/unicode/bidi.

Numbers in left-to-right embeddings are raised two levels if they follow
right-to-left text, which covers the common cases of rules W2 and W7.

Levels are reported per byte of the input text, so that clients may split
byte ranges of a paragraph at level boundaries.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package bidi

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'boxflow.text'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.text")
}
