/*
Package html reads HTML documents into box trees.

The document is parsed with golang.org/x/net/html. Styles are taken from a
user-agent stylesheet, from <style> elements and from style attributes, in
this order. Stylesheets are parsed by douceur and selectors are matched by
cascadia. Rules are applied in document order; specificity is not taken
into account.

	tree, err := html.Parse(r, nil)

<img> elements become replaced content, sized by their width and height
attributes. Without attributes, the size is read from the image file if
Options.Images is set, and DefaultImageSize is used otherwise. <br> elements
become forced line breaks.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package html

import (
	"context"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	douceur "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/core/locate/resources"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/boxflow/engine/dom/style/css"
	"github.com/npillmayer/boxflow/engine/frame/boxtree"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tracer traces with key 'boxflow.dom'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.dom")
}

// DefaultImageSize is the size of images without width and height
// attributes.
var DefaultImageSize = dimen.LogicalSize{Inline: 150 * dimen.PX, Block: 150 * dimen.PX}

// UserAgentCSS is the default user-agent stylesheet.
const UserAgentCSS = `
html, body, div, p, section, article, header, footer, nav, aside, main,
blockquote, pre, ul, ol, li, h1, h2, h3, h4, h5, h6, figure, hr, address { display: block; }
head, script, style, title, meta, link, template { display: none; }
li { display: list-item; }
body { margin: 8px; }
p, blockquote, ul, ol, figure, pre { margin: 1em 0; }
ul, ol { padding-left: 40px; }
blockquote, figure { margin-left: 40px; margin-right: 40px; }
h1 { font-size: 2em; margin: 0.67em 0; }
h2 { font-size: 1.5em; margin: 0.83em 0; }
h3 { font-size: 1.17em; margin: 1em 0; }
h4 { margin: 1.33em 0; }
pre { white-space: pre; font-family: monospace; }
hr { border-width: 1px; margin: 0.5em 0; }
img { display: inline; }
`

// Options control how a document is styled.
type Options struct {
	UserAgent string               // replaces UserAgentCSS if not empty
	Viewport  *style.ComputedStyle // style of the viewport; nil for style.Viewport()
	Images    fs.FS                // image files, referenced by src attributes
}

// rule is a style rule with a compiled selector.
type rule struct {
	selector cascadia.Selector
	decls    []*douceur.Declaration
}

// Parse reads an HTML document and builds a finished box tree from it.
// opts may be nil.
func Parse(r io.Reader, opts *Options) (*boxtree.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse HTML document")
	}
	return FromDocument(doc, opts)
}

// FromDocument builds a finished box tree from an HTML parse tree.
func FromDocument(doc *html.Node, opts *Options) (*boxtree.Tree, error) {
	if doc == nil {
		return nil, core.Error(core.EINVALID, "HTML document is nil")
	}
	if opts == nil {
		opts = &Options{}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = UserAgentCSS
	}
	rules, err := parseStylesheet(ua)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse user-agent stylesheet")
	}
	for _, text := range styleElements(doc) {
		sheet, err := parseStylesheet(text)
		if err != nil {
			return nil, core.WrapError(err, core.EINVALID, "cannot parse <style> element")
		}
		rules = append(rules, sheet...)
	}
	tracer().Debugf("HTML document has %d style rules", len(rules))
	b := &builder{tree: boxtree.NewTree(opts.Viewport), rules: rules}
	if opts.Images != nil {
		b.images = resolveImages(doc, opts.Images)
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		b.node(c, b.tree.Root())
	}
	if err := b.tree.Finish(); err != nil {
		return nil, err
	}
	return b.tree, nil
}

// parseStylesheet parses CSS text into rules. Rules with selectors cascadia
// does not understand are skipped, as are at-rules.
func parseStylesheet(text string) ([]rule, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	var rules []rule
	for _, r := range sheet.Rules {
		if r.Kind != douceur.QualifiedRule {
			tracer().Debugf("skipping CSS at-rule %s", r.Name)
			continue
		}
		sel, err := cascadia.Compile(strings.Join(r.Selectors, ", "))
		if err != nil {
			tracer().Infof("skipping CSS rule with selector %q: %v", r.Prelude, err)
			continue
		}
		rules = append(rules, rule{selector: sel, decls: r.Declarations})
	}
	return rules, nil
}

// styleElements returns the text of all <style> elements in document order.
func styleElements(doc *html.Node) []string {
	var sheets []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Style {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			sheets = append(sheets, sb.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sheets
}

type builder struct {
	tree   *boxtree.Tree
	rules  []rule
	images map[string]*imageRef
}

// imageRef is an image file referenced by a document. Files are read
// concurrently while the box tree is built.
type imageRef struct {
	promise resources.ImagePromise
	done    bool
	size    dimen.LogicalSize
	err     error
}

func (img *imageRef) await() (dimen.LogicalSize, error) {
	if !img.done {
		img.size, img.err = img.promise.Size(context.Background())
		img.done = true
	}
	return img.size, img.err
}

// resolveImages starts resolving the images of all <img> elements.
func resolveImages(doc *html.Node, fsys fs.FS) map[string]*imageRef {
	images := make(map[string]*imageRef)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			if src, ok := attr(n, "src"); ok && images[src] == nil {
				images[src] = &imageRef{promise: resources.ResolveImage(fsys, src)}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return images
}

// node appends the boxes for HTML node n to box parent.
func (b *builder) node(n *html.Node, parent boxtree.NodeID) {
	switch n.Type {
	case html.TextNode:
		if b.tree.Node(parent).Kind != boxtree.KindViewport {
			b.tree.AppendText(parent, n.Data)
		}
		return
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.node(c, parent)
		}
		return
	case html.ElementNode:
	default:
		return
	}
	sty := b.style(n, b.tree.Style(parent))
	var id boxtree.NodeID
	switch n.DataAtom {
	case atom.Img:
		b.tree.AppendReplaced(parent, sty, b.imageSize(n))
		return
	case atom.Br:
		if sty.Display != style.DisplayNone {
			b.tree.AppendLineBreak(parent, sty)
		}
		return
	default:
		id = b.tree.AppendElement(parent, sty)
	}
	if id == boxtree.NoNode {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.node(c, id)
	}
}

// style computes the style of element n, inheriting from parent.
func (b *builder) style(n *html.Node, parent *style.ComputedStyle) *style.ComputedStyle {
	sb := style.Inherit(parent, n.Data)
	for _, r := range b.rules {
		if r.selector.Match(n) {
			css.Apply(sb, r.decls)
		}
	}
	if text, ok := attr(n, "style"); ok {
		if err := css.ParseInline(sb, text); err != nil {
			tracer().Infof("<%s>: %s", n.Data, core.UserMessage(err))
		}
	}
	return sb.Build()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// imageSize reads the width and height attributes of an <img> element. If
// only one is given, the other follows the aspect ratio of the image.
func (b *builder) imageSize(n *html.Node) dimen.LogicalSize {
	size := DefaultImageSize
	if src, ok := attr(n, "src"); ok && b.images[src] != nil {
		if s, err := b.images[src].await(); err != nil {
			tracer().Infof("<img>: %s", core.UserMessage(err))
		} else if s.Inline > 0 && s.Block > 0 {
			size = s
		}
	}
	w, okw := pixelAttr(n, "width")
	h, okh := pixelAttr(n, "height")
	switch {
	case okw && okh:
		size = dimen.LogicalSize{Inline: w, Block: h}
	case okw:
		size = dimen.LogicalSize{Inline: w, Block: scale(size.Block, w, size.Inline)}
	case okh:
		size = dimen.LogicalSize{Inline: scale(size.Inline, h, size.Block), Block: h}
	}
	return size
}

// scale returns x*num/den.
func scale(x, num, den dimen.Dimen) dimen.Dimen {
	if den == 0 {
		return num
	}
	return dimen.Dimen(int64(x) * int64(num) / int64(den))
}

func pixelAttr(n *html.Node, key string) (dimen.Dimen, bool) {
	v, ok := attr(n, key)
	if !ok {
		return 0, false
	}
	x, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil || x < 0 {
		tracer().Debugf("<img>: ignoring %s=%q", key, v)
		return 0, false
	}
	return dimen.Dimen(x * float64(dimen.PX)), true
}
