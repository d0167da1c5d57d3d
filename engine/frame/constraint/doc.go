/*
Package constraint holds the input side of a layout call: the constraint
space, with its margin strut and exclusion space.

A constraint space is an immutable snapshot, created by a parent for each
child it lays out. Spaces for children are derived with copy-on-write With…
methods.

Margin struts collect adjoining margins until they are resolved at a
non-collapsing boundary. Exclusion spaces record floats within a block
formatting context and answer queries for layout opportunities, i.e. for
bands of inline space not covered by floats.

All coordinates are logical and relative to the block formatting context the
space belongs to.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package constraint

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'boxflow.frame'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.frame")
}
