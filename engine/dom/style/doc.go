/*
Package style holds computed styles, the immutable style snapshots layout
consumes.

A ComputedStyle is created by a Builder, either from initial values or by
inheriting from a parent style. After Build() a style must not be modified;
boxes sharing a style identity share the pointer.

Sub-package css maps CSS declarations onto a Builder.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package style

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'boxflow.dom'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.dom")
}
