/*
Package layout computes the fragment tree for a box tree.

Overview

Layout is a pure function of a box tree and a constraint space. Block
containers are laid out by block layout, which stacks block-level children
in the block direction, collapses adjoining margins, places floats into the
exclusion space of the current block formatting context, and hands block
containers with inline-level content over to package inline.

The BFC block offset of a box is often unknown while the box is laid out:
adjoining margins may still collapse with margins further down. Floats met
before the offset is resolved are placed at a speculative offset. When the
offset is resolved differently, the parent repeats the layout of the child
with the resolved offset forced upon it. The number of passes is bounded.

Offsets of child fragments are relative to the border-box origin of the
parent fragment.

Configuration

A Context is built once from global configuration (package gconf) and
functional options. Recognized keys are

	layout.parallelism   maximum number of concurrent subtree layouts
	layout.bidi          bidi conformance, "full" or "none"
	layout.maxpasses     passes for re-layout after offset resolution
	layout.hyphenate     automatic hyphenation for hyphens:auto

Concurrency

Sibling boxes which establish a new block formatting context and are not
affected by floats are laid out concurrently. Their results are positioned
sequentially, in document order. Everything within one block formatting
context is sequential.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package layout

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'boxflow.frame'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.frame")
}
