/*
Package option implements matching of optional values.

Layout deals with many values which may be unset or symbolic, e.g. CSS
lengths with value "auto". Types implementing option.Type may be matched
against a map of cases, much like a switch statement over the presence of
a value:

    w, err := length.Match(option.Maybe{
        option.None: containingBlockWidth,
        option.Some: func(l interface{}) (interface{}, error) { … },
    })

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package option

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'boxflow.core'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.core")
}
