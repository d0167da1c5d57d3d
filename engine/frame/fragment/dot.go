package fragment

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/npillmayer/boxflow/core/dimen"
)

// Parameters for GraphViz drawing.
type graphParams struct {
	Fontname string
	BoxTmpl  *template.Template
	EdgeTmpl *template.Template
}

type dotNode struct {
	F    *Fragment
	At   string
	Name string
}

type dotEdge struct {
	N1, N2 string
}

// ToGraphViz creates a graphical representation of a fragment tree.
// It produces a DOT file format suitable as input for Graphviz, given a Writer.
func ToGraphViz(w io.Writer, root ChildFragment) error {
	header, err := template.New("fragmentTree").Parse(graphHeadTmpl)
	if err != nil {
		return err
	}
	gparams := graphParams{Fontname: "Helvetica"}
	gparams.BoxTmpl = template.Must(template.New("box").Funcs(
		template.FuncMap{
			"label": dotLabel,
			"fill":  dotFill,
		}).Parse(boxTmpl))
	gparams.EdgeTmpl = template.Must(template.New("edge").Parse(edgeTmpl))
	if err = header.Execute(w, gparams); err != nil {
		return err
	}
	names := make(map[*Fragment]string)
	var parents []string
	err = Walk(root, func(cf ChildFragment, origin dimen.LogicalPoint, depth int) error {
		name := fmt.Sprintf("node%05d", len(names)+1)
		names[cf.Fragment] = name
		node := dotNode{F: cf.Fragment, At: cf.Offset.String(), Name: name}
		if err := gparams.BoxTmpl.Execute(w, node); err != nil {
			return err
		}
		parents = append(parents[:depth], name)
		if depth > 0 {
			return gparams.EdgeTmpl.Execute(w, dotEdge{parents[depth-1], name})
		}
		return nil
	})
	if err != nil {
		return err
	}
	_, err = w.Write([]byte("}\n"))
	return err
}

func dotLabel(n dotNode) string {
	f := n.F
	var s string
	switch k := f.Kind.(type) {
	case *Container:
		s = fmt.Sprintf("%s %s\\n%s @ %s", k.Kind, styleName(f.Style), f.Size, n.At)
	case *Text:
		txt := k.Content
		if r := []rune(txt); len(r) > 10 {
			txt = string(r[:10]) + "…"
		}
		txt = strings.ReplaceAll(txt, `"`, `\"`)
		txt = strings.ReplaceAll(txt, " ", "␣")
		s = fmt.Sprintf("T \\\"%s\\\" %d\\n%s @ %s", txt, k.Level, f.Size, n.At)
	default:
		s = fmt.Sprintf("Replaced %s\\n%s @ %s", styleName(f.Style), f.Size, n.At)
	}
	return "\"" + s + "\""
}

func dotFill(n dotNode) string {
	switch k := n.F.Kind.(type) {
	case *Container:
		if k.Kind == Line {
			return "lightyellow"
		}
		return "lightblue3"
	case *Text:
		return "grey95"
	}
	return "grey80"
}

// --- Templates --------------------------------------------------------

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  graph [fontname = "{{ .Fontname }}" fontsize=12] ;
   node [fontname = "{{ .Fontname }}" fontsize=12] ;
   edge [fontname = "{{ .Fontname }}" fontsize=12] ;
`

const boxTmpl = `{{ .Name }}	[ label={{ label . }} shape=box style=filled fillcolor={{ fill . }} ] ;
`

const edgeTmpl = `{{ .N1 }} -> {{ .N2 }} [weight=1] ;
`
