/*
Package css maps CSS declarations onto computed styles.

Parsing of CSS text is done by douceur; this package interprets the
declarations for the properties layout knows about. Unknown properties
and invalid values are ignored, as CSS demands.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package css

import (
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/boxflow/engine/dom/style"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'boxflow.dom'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.dom")
}

// ParseInline parses the content of a style attribute and applies it to b.
func ParseInline(b *style.Builder, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	// douceur drops the value of a last declaration without terminator
	if !strings.HasSuffix(text, ";") {
		text += ";"
	}
	decls, err := parser.ParseDeclarations(text)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot parse style attribute")
	}
	Apply(b, decls)
	return nil
}

// Apply applies a list of declarations to a style builder, in order.
// Font size is applied first, as font relative units of other
// properties depend on it.
func Apply(b *style.Builder, decls []*css.Declaration) {
	for _, d := range decls {
		if strings.ToLower(d.Property) == "font-size" {
			applyFontSize(b, d.Value)
		}
	}
	for _, d := range decls {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		if prop == "font-size" {
			continue
		}
		if !applyDeclaration(b, prop, strings.TrimSpace(d.Value)) {
			tracer().Debugf("ignoring CSS property %s: %s", prop, d.Value)
		}
	}
}

func applyFontSize(b *style.Builder, value string) {
	em := b.Current().Font.Size
	switch strings.TrimSpace(value) {
	case "small":
		b.Font("", 13*dimen.PX)
		return
	case "medium":
		b.Font("", 16*dimen.PX)
		return
	case "large":
		b.Font("", 18*dimen.PX)
		return
	}
	l, err := style.ParseLength(value, em)
	if err != nil || l.IsAuto() {
		return
	}
	b.Font("", dimen.Max(1, l.Resolve(em)))
}

var keywords = map[string]map[string]func(*style.Builder){
	"display": {
		"none":         func(b *style.Builder) { b.Display(style.DisplayNone) },
		"contents":     func(b *style.Builder) { b.Display(style.DisplayContents) },
		"block":        func(b *style.Builder) { b.Display(style.DisplayBlock) },
		"flow-root":    func(b *style.Builder) { b.Display(style.DisplayFlowRoot) },
		"list-item":    func(b *style.Builder) { b.Display(style.DisplayListItem) },
		"inline":       func(b *style.Builder) { b.Display(style.DisplayInline) },
		"inline-block": func(b *style.Builder) { b.Display(style.DisplayInlineBlock) },
	},
	"position": {
		"static":   func(b *style.Builder) { b.Position(style.PositionStatic) },
		"relative": func(b *style.Builder) { b.Position(style.PositionRelative) },
		"absolute": func(b *style.Builder) { b.Position(style.PositionAbsolute) },
		"fixed":    func(b *style.Builder) { b.Position(style.PositionFixed) },
	},
	"float": {
		"none":         func(b *style.Builder) { b.Float(style.FloatNone) },
		"left":         func(b *style.Builder) { b.Float(style.FloatLeft) },
		"right":        func(b *style.Builder) { b.Float(style.FloatRight) },
		"inline-start": func(b *style.Builder) { b.Float(style.FloatInlineStart) },
		"inline-end":   func(b *style.Builder) { b.Float(style.FloatInlineEnd) },
	},
	"clear": {
		"none":         func(b *style.Builder) { b.Clear(style.ClearNone) },
		"left":         func(b *style.Builder) { b.Clear(style.ClearLeft) },
		"right":        func(b *style.Builder) { b.Clear(style.ClearRight) },
		"both":         func(b *style.Builder) { b.Clear(style.ClearBoth) },
		"inline-start": func(b *style.Builder) { b.Clear(style.ClearInlineStart) },
		"inline-end":   func(b *style.Builder) { b.Clear(style.ClearInlineEnd) },
	},
	"direction": {
		"ltr": func(b *style.Builder) { b.Direction(style.LTR) },
		"rtl": func(b *style.Builder) { b.Direction(style.RTL) },
	},
	"writing-mode": {
		"horizontal-tb": func(b *style.Builder) { b.WritingMode(style.HorizontalTB) },
		"vertical-rl":   func(b *style.Builder) { b.WritingMode(style.VerticalRL) },
		"vertical-lr":   func(b *style.Builder) { b.WritingMode(style.VerticalLR) },
	},
	"box-sizing": {
		"content-box": func(b *style.Builder) { b.BoxSizing(style.ContentBox) },
		"border-box":  func(b *style.Builder) { b.BoxSizing(style.BorderBox) },
	},
	"white-space": {
		"normal":   func(b *style.Builder) { b.WhiteSpace(style.WhiteSpaceNormal) },
		"nowrap":   func(b *style.Builder) { b.WhiteSpace(style.WhiteSpaceNowrap) },
		"pre":      func(b *style.Builder) { b.WhiteSpace(style.WhiteSpacePre) },
		"pre-wrap": func(b *style.Builder) { b.WhiteSpace(style.WhiteSpacePreWrap) },
		"pre-line": func(b *style.Builder) { b.WhiteSpace(style.WhiteSpacePreLine) },
	},
	"text-align": {
		"start":   func(b *style.Builder) { b.TextAlign(style.TextAlignStart) },
		"end":     func(b *style.Builder) { b.TextAlign(style.TextAlignEnd) },
		"left":    func(b *style.Builder) { b.TextAlign(style.TextAlignLeft) },
		"right":   func(b *style.Builder) { b.TextAlign(style.TextAlignRight) },
		"center":  func(b *style.Builder) { b.TextAlign(style.TextAlignCenter) },
		"justify": func(b *style.Builder) { b.TextAlign(style.TextAlignJustify) },
	},
	"text-overflow": {
		"clip":     func(b *style.Builder) { b.TextOverflow(style.TextOverflowClip) },
		"ellipsis": func(b *style.Builder) { b.TextOverflow(style.TextOverflowEllipsis) },
	},
	"hyphens": {
		"none":   func(b *style.Builder) { b.Hyphens(style.HyphensNone) },
		"manual": func(b *style.Builder) { b.Hyphens(style.HyphensManual) },
		"auto":   func(b *style.Builder) { b.Hyphens(style.HyphensAuto) },
	},
	"unicode-bidi": {
		"normal":           func(b *style.Builder) { b.UnicodeBidi(style.BidiNormal) },
		"embed":            func(b *style.Builder) { b.UnicodeBidi(style.BidiEmbed) },
		"isolate":          func(b *style.Builder) { b.UnicodeBidi(style.BidiIsolate) },
		"bidi-override":    func(b *style.Builder) { b.UnicodeBidi(style.BidiOverride) },
		"isolate-override": func(b *style.Builder) { b.UnicodeBidi(style.BidiIsolateOverride) },
		"plaintext":        func(b *style.Builder) { b.UnicodeBidi(style.BidiPlaintext) },
	},
}

var overflows = map[string]style.Overflow{
	"visible": style.OverflowVisible,
	"hidden":  style.OverflowHidden,
	"clip":    style.OverflowClip,
	"scroll":  style.OverflowScroll,
	"auto":    style.OverflowAuto,
}

var sides = map[string]style.Side{
	"top":    style.Top,
	"right":  style.Right,
	"bottom": style.Bottom,
	"left":   style.Left,
}

func applyDeclaration(b *style.Builder, prop, value string) bool {
	value = strings.TrimSuffix(strings.TrimSpace(strings.TrimSuffix(value, "!important")), ";")
	if prop == "font-family" {
		b.Font(strings.TrimSpace(value), 0)
		return value != ""
	}
	value = strings.ToLower(strings.TrimSpace(value))
	if kw, ok := keywords[prop]; ok {
		if set, ok := kw[value]; ok {
			set(b)
			return true
		}
		return false
	}
	em := b.Current().Font.Size
	length := func(v string) (style.Length, bool) {
		l, err := style.ParseLength(v, em)
		return l, err == nil
	}
	switch prop {
	case "overflow", "overflow-x", "overflow-y":
		vals := strings.Fields(value)
		if len(vals) == 0 {
			return false
		}
		x, okx := overflows[vals[0]]
		y, oky := x, okx
		if len(vals) > 1 {
			y, oky = overflows[vals[1]]
		}
		if !okx || !oky {
			return false
		}
		cur := b.Current()
		switch prop {
		case "overflow-x":
			b.Overflow(x, cur.OverflowY)
		case "overflow-y":
			b.Overflow(cur.OverflowX, x)
		default:
			b.Overflow(x, y)
		}
		return true
	case "width", "height", "min-width", "min-height", "max-width", "max-height":
		if value == "none" && strings.HasPrefix(prop, "max") {
			value = "auto"
		}
		l, ok := length(value)
		if !ok {
			return false
		}
		switch prop {
		case "width":
			b.Width(l)
		case "height":
			b.Height(l)
		case "min-width":
			b.MinWidth(l)
		case "min-height":
			b.MinHeight(l)
		case "max-width":
			b.MaxWidth(l)
		case "max-height":
			b.MaxHeight(l)
		}
		return true
	case "margin", "padding", "border-width":
		ls, ok := shorthand(value, length)
		if !ok {
			return false
		}
		for side, l := range ls {
			switch prop {
			case "margin":
				b.Margin(style.Side(side), l)
			case "padding":
				b.Padding(style.Side(side), l)
			default:
				b.Border(style.Side(side), l.Resolve(0))
			}
		}
		return true
	case "border":
		for _, tok := range strings.Fields(value) {
			if l, ok := borderWidth(tok, length); ok {
				for side := style.Top; side <= style.Left; side++ {
					b.Border(side, l)
				}
				return true
			}
		}
		return false
	case "top", "right", "bottom", "left":
		l, ok := length(value)
		if !ok {
			return false
		}
		b.Offset(sides[prop], l)
		return true
	case "line-height":
		if value == "normal" {
			b.LineHeight(style.NoLength())
			return true
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			b.LineHeight(style.Px(em.Scale(f)))
			return true
		}
		l, ok := length(value)
		if !ok {
			return false
		}
		if l.IsPercent() {
			l = style.Px(l.Resolve(em))
		}
		b.LineHeight(l)
		return true
	}
	for name, side := range sides {
		switch prop {
		case "margin-" + name:
			if l, ok := length(value); ok {
				b.Margin(side, l)
				return true
			}
			return false
		case "padding-" + name:
			if l, ok := length(value); ok {
				b.Padding(side, l)
				return true
			}
			return false
		case "border-" + name + "-width", "border-" + name:
			for _, tok := range strings.Fields(value) {
				if w, ok := borderWidth(tok, length); ok {
					b.Border(side, w)
					return true
				}
			}
			return false
		}
	}
	return false
}

func borderWidth(tok string, length func(string) (style.Length, bool)) (dimen.Dimen, bool) {
	switch tok {
	case "thin":
		return 1 * dimen.PX, true
	case "medium":
		return 3 * dimen.PX, true
	case "thick":
		return 5 * dimen.PX, true
	case "none", "hidden":
		return 0, true
	}
	if l, ok := length(tok); ok && l.IsAbsolute() {
		return l.Unwrap(), true
	}
	return 0, false
}

// shorthand expands 1 to 4 values to top, right, bottom, left.
func shorthand(value string, length func(string) (style.Length, bool)) ([4]style.Length, bool) {
	var ls [4]style.Length
	vals := strings.Fields(value)
	if len(vals) == 0 || len(vals) > 4 {
		return ls, false
	}
	parsed := make([]style.Length, len(vals))
	for i, v := range vals {
		l, ok := length(v)
		if !ok {
			return ls, false
		}
		parsed[i] = l
	}
	switch len(parsed) {
	case 1:
		ls = [4]style.Length{parsed[0], parsed[0], parsed[0], parsed[0]}
	case 2:
		ls = [4]style.Length{parsed[0], parsed[1], parsed[0], parsed[1]}
	case 3:
		ls = [4]style.Length{parsed[0], parsed[1], parsed[2], parsed[1]}
	case 4:
		ls = [4]style.Length{parsed[0], parsed[1], parsed[2], parsed[3]}
	}
	return ls, true
}
