/*
Command layoutdump lays out HTML documents and prints the results as text.

	layoutdump [flags] <command> [file.html]

Commands are

	layout       dump the fragment tree
	layout-tree  print the box tree
	dom          print the HTML parse tree
	dot          write the fragment tree in GraphViz DOT format
	repl         read HTML snippets interactively and dump their layout

Input is read from stdin if no file is given. The viewport is 800×600 pixels
unless set with flags -width and -height.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/core/font"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/boxflow/engine/frame/constraint"
	"github.com/npillmayer/boxflow/engine/frame/fragment"
	"github.com/npillmayer/boxflow/engine/frame/layout"
	"github.com/npillmayer/boxflow/engine/glyphing"
	"github.com/npillmayer/boxflow/engine/glyphing/monospace"
	input "github.com/npillmayer/boxflow/input/html"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"golang.org/x/net/html"
)

// tracer traces with key 'boxflow.frame'
func tracer() tracing.Trace {
	return tracing.Select("boxflow.frame")
}

var traceKeys = []string{"boxflow.core", "boxflow.frame", "boxflow.inline", "boxflow.glyphs",
	"boxflow.text", "boxflow.dom"}

func main() {
	initDisplay()
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	width := flag.Int("width", 800, "Viewport width in pixels")
	height := flag.Int("height", 600, "Viewport height in pixels")
	parallel := flag.Int("parallel", 0, "Maximum number of concurrent layout tasks, 0 for default")
	mono := flag.Bool("mono", false, "Use a monospace shaper instead of OpenType shaping")
	images := flag.String("images", "", "Directory to resolve image sources against")
	flag.Usage = usage
	flag.Parse()
	//
	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{"tracing.adapter": "go"}
	for _, key := range traceKeys {
		conf["trace."+key] = *tlevel
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		pterm.Error.Println("cannot configure tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	//
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	var opts []layout.Option
	if *parallel > 0 {
		opts = append(opts, layout.WithParallelism(*parallel))
	}
	if *mono {
		opts = append(opts, layout.WithFonts(font.NewSyntheticRegistry()),
			layout.WithShapingCache(glyphing.NewCache(monospace.New())))
	}
	d := &dumper{
		lc:       layout.NewContext(opts...),
		viewport: constraint.NewSpace(dimen.Dimen(*width)*dimen.PX, dimen.Dimen(*height)*dimen.PX),
		out:      os.Stdout,
	}
	if *images != "" {
		d.opts = &input.Options{Images: os.DirFS(*images)}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd := flag.Arg(0)
	if cmd == "repl" {
		if err := d.repl(ctx); err != nil {
			pterm.Error.Println(core.UserMessage(err))
			os.Exit(3)
		}
		return
	}
	src, err := readInput(flag.Arg(1))
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	if err = d.run(ctx, cmd, src); err != nil {
		pterm.Error.Println(core.UserMessage(err))
		os.Exit(4)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: layoutdump [flags] layout|layout-tree|dom|dot|repl [file.html]\n")
	flag.PrintDefaults()
}

func readInput(name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

type dumper struct {
	lc       *layout.Context
	viewport constraint.Space
	opts     *input.Options
	out      io.Writer
}

func (d *dumper) run(ctx context.Context, cmd string, src []byte) error {
	switch cmd {
	case "dom":
		doc, err := html.Parse(bytes.NewReader(src))
		if err != nil {
			return core.WrapError(err, core.EINVALID, "cannot parse HTML document")
		}
		printDOM(d.out, doc, 0)
		return nil
	case "layout-tree":
		tree, err := input.Parse(bytes.NewReader(src), d.opts)
		if err != nil {
			return err
		}
		pterm.DefaultSection.Println("Box tree")
		tree.Print(d.out)
		return nil
	case "layout", "dot":
		root, err := d.layout(ctx, src)
		if err != nil {
			return err
		}
		if cmd == "dot" {
			return fragment.ToGraphViz(d.out, root)
		}
		pterm.DefaultSection.Println("Fragment tree")
		return fragment.Dump(d.out, root)
	}
	return core.Error(core.EINVALID, "unknown command %q", cmd)
}

func (d *dumper) layout(ctx context.Context, src []byte) (fragment.ChildFragment, error) {
	tree, err := input.Parse(bytes.NewReader(src), d.opts)
	if err != nil {
		return fragment.ChildFragment{}, err
	}
	tracer().Infof("laying out %d boxes in %s", tree.Len(), d.viewport)
	return d.lc.Layout(ctx, tree, d.viewport)
}

// repl reads lines of HTML and dumps the layout of each. An empty line
// prints the box tree of the previous input.
func (d *dumper) repl(ctx context.Context) error {
	rl, err := readline.New("html > ")
	if err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot start interactive mode")
	}
	defer rl.Close()
	pterm.Info.Println("Quit with <ctrl>D")
	var last *boxtree.Tree
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			if last != nil {
				last.Print(d.out)
			}
			continue
		}
		tree, err := input.Parse(strings.NewReader(line), d.opts)
		if err != nil {
			pterm.Error.Println(core.UserMessage(err))
			continue
		}
		root, err := d.lc.Layout(ctx, tree, d.viewport)
		if err != nil {
			pterm.Error.Println(core.UserMessage(err))
			continue
		}
		last = tree
		if err := fragment.Dump(d.out, root); err != nil {
			return err
		}
	}
	pterm.Info.Println("Good bye!")
	return nil
}

func printDOM(w io.Writer, n *html.Node, indent int) {
	pad := strings.Repeat("  ", indent)
	switch n.Type {
	case html.DocumentNode:
		fmt.Fprintf(w, "%s#document\n", pad)
	case html.ElementNode:
		var attrs []string
		for _, a := range n.Attr {
			attrs = append(attrs, fmt.Sprintf("%s=%q", a.Key, a.Val))
		}
		fmt.Fprintf(w, "%s<%s>", pad, n.Data)
		if len(attrs) > 0 {
			fmt.Fprintf(w, " %s", strings.Join(attrs, " "))
		}
		fmt.Fprintln(w)
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return
		}
		fmt.Fprintf(w, "%s%q\n", pad, n.Data)
	default:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		printDOM(w, c, indent+1)
	}
}
