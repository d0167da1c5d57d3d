/*
Package boxtree holds the layout tree: the box tree which layout operates on.

The tree is an arena of nodes addressed by NodeID. Nodes are appended in
document order by an input adapter (see package input/html) or by clients
directly. Finish() fixes up the tree to the shape layout expects: inline-level
runs next to block-level siblings are wrapped into anonymous block boxes, and
collapsible whitespace between blocks is dropped.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package boxtree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'boxflow.frame'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.frame")
}
