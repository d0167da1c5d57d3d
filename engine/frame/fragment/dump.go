package fragment

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a plain-text serialization of a fragment tree to w. The
// format is stable and used for comparing layout results against fixtures:
//
//     ChildFragment {
//         offset: (0, 0),
//         fragment: Fragment {
//             size: 800×0,
//             style: viewport,
//             kind: Container {
//                 kind: Line,
//                 children: []
//             }
//         }
//     }
//
// Styles are printed by name.
func Dump(w io.Writer, root ChildFragment) error {
	d := &dumper{w: w}
	d.child(root, 0, "")
	return d.err
}

// DumpString returns the serialization of Dump as a string.
func DumpString(root ChildFragment) string {
	var b strings.Builder
	Dump(&b, root)
	return b.String()
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) line(indent int, format string, v ...interface{}) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("    ", indent), fmt.Sprintf(format, v...))
}

func (d *dumper) child(cf ChildFragment, indent int, trailer string) {
	d.line(indent, "ChildFragment {")
	d.line(indent+1, "offset: %s,", cf.Offset)
	d.line(indent+1, "fragment: Fragment {")
	f := cf.Fragment
	if f == nil {
		d.line(indent+2, "nil")
	} else {
		d.line(indent+2, "size: %s,", f.Size)
		d.line(indent+2, "style: %s,", styleName(f.Style))
		d.kind(f.Kind, indent+2)
	}
	d.line(indent+1, "}")
	d.line(indent, "}%s", trailer)
}

func (d *dumper) kind(k Kind, indent int) {
	switch k := k.(type) {
	case *Container:
		d.line(indent, "kind: Container {")
		d.line(indent+1, "kind: %s,", k.Kind)
		if len(k.Children) == 0 {
			d.line(indent+1, "children: []")
		} else {
			d.line(indent+1, "children: [")
			for i, ch := range k.Children {
				trailer := ","
				if i == len(k.Children)-1 {
					trailer = ""
				}
				d.child(ch, indent+2, trailer)
			}
			d.line(indent+1, "]")
		}
		d.line(indent, "}")
	case *Text:
		d.line(indent, "kind: Text {")
		d.line(indent+1, "content: %q,", k.Content)
		d.line(indent+1, "level: %d", k.Level)
		d.line(indent, "}")
	case *Replaced:
		d.line(indent, "kind: Replaced")
	default:
		d.line(indent, "kind: ?")
	}
}
