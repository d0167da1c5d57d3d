/*
Package inline lays out inline formatting contexts.

A block container whose in-flow children are all inline-level establishes an
inline formatting context. Its content is collected into a paragraph: the
text of all descendant text nodes, concatenated, with bidi control codes
inserted for inline boxes carrying unicode-bidi. The paragraph is split into
items, one per source node and embedding level, and broken into lines by a
greedy first-fit algorithm. Lines avoid the floats of the enclosing block
formatting context. Floats met inside the paragraph are placed as soon as
they are encountered.

After a line's items are fixed, every item is shaped through a shaping cache,
reordered visually and aligned. Runs are not re-shaped at line ends: a break
inside a ligature or kerning pair is a known limitation.

Inline boxes do not generate fragments of their own; text fragments carry
the style of the nearest inline box.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package inline

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'boxflow.inline'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.inline")
}
