/*
Package font is for typeface and font handling.

We stick to the following definitions:

* A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Go Sans regular".

* A "typecase" is a scaled font, i.e. a font in a certain size.
The name is reminiscent of the wooden boxes of typesetters in the era
of metal type. Layout measures text with typecases, and the shaping cache
uses a typecase's ID as part of its key.

Please note that Go (Golang) does use the terms "font" and "face"
differently, more or less in an opposite manner.

Typecases may be synthetic, i.e. have no font binary. Synthetic typecases
carry metrics derived from their size only and are used with the monospace
shaper, mostly for tests and for terminal-style output.

----------------------------------------------------------------------

BSD License

Copyright (c) 2017-21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package font

import (
	"fmt"
	"io/ioutil"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// tracer traces with key 'boxflow.core'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.core")
}

// ScalableFont is a font loaded from a font binary.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
}

// Metrics are vertical font metrics of a typecase, in layout units.
type Metrics struct {
	Ascent  dimen.Dimen
	Descent dimen.Dimen // positive value below the baseline
	LineGap dimen.Dimen
}

// TypeCase is a font at a given size.
type TypeCase struct {
	scalableFontParent *ScalableFont
	face               xfont.Face // Go uses 'face' and 'font' in an inverse manner
	size               dimen.Dimen
	name               string
	metrics            Metrics
}

// LoadOpenTypeFont loads a font from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := ioutil.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err == nil {
		f.Filepath = fontfile
	}
	return f, err
}

// ParseOpenTypeFont parses a font binary.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse font")
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	return
}

// PrepareCase creates a typecase for a font size given in layout units
// (CSS font-size).
func (sf *ScalableFont) PrepareCase(size dimen.Dimen) (*TypeCase, error) {
	if size <= 0 {
		size = 16 * dimen.PX
	}
	options := &opentype.FaceOptions{
		Size: size.Px(),
		DPI:  72, // one point per CSS pixel
	}
	f, err := opentype.NewFace(sf.SFNT, options)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot create face for %s", sf.Fontname)
	}
	m := f.Metrics()
	typecase := &TypeCase{
		scalableFontParent: sf,
		face:               f,
		size:               size,
		name:               sf.Fontname,
		metrics: Metrics{
			Ascent:  fromFixed(m.Ascent),
			Descent: fromFixed(m.Descent),
			LineGap: dimen.Max(0, fromFixed(m.Height-m.Ascent-m.Descent)),
		},
	}
	return typecase, nil
}

func fromFixed(x fixed.Int26_6) dimen.Dimen {
	return dimen.Dimen(x) * (dimen.PX / 64)
}

// SyntheticTypeCase creates a typecase without a font binary. Ascent is 4/5
// and descent is 1/5 of the size.
func SyntheticTypeCase(name string, size dimen.Dimen) *TypeCase {
	if size <= 0 {
		size = 16 * dimen.PX
	}
	return &TypeCase{
		size: size,
		name: name,
		metrics: Metrics{
			Ascent:  size * 4 / 5,
			Descent: size - size*4/5,
		},
	}
}

// ScalableFontParent returns the font this typecase was created from.
// Synthetic typecases return nil.
func (tc *TypeCase) ScalableFontParent() *ScalableFont {
	return tc.scalableFontParent
}

// Face returns the Go font face of this typecase, or nil for synthetic typecases.
func (tc *TypeCase) Face() xfont.Face {
	return tc.face
}

// Size returns the em size of this typecase.
func (tc *TypeCase) Size() dimen.Dimen {
	return tc.size
}

// Metrics returns the vertical metrics.
func (tc *TypeCase) Metrics() Metrics {
	return tc.metrics
}

// IsSynthetic is true for typecases without a font binary.
func (tc *TypeCase) IsSynthetic() bool {
	return tc.scalableFontParent == nil
}

// ID identifies a typecase. Two typecases with equal IDs produce identical
// shaping results.
func (tc *TypeCase) ID() string {
	return NormalizeTypeCaseName(tc.name, tc.size)
}

func (tc *TypeCase) String() string {
	return tc.ID()
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else fails. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

// fallbackFont is a font that is used if everything else fails.
var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	var err error
	gofont := &ScalableFont{
		Fontname: "Go Sans",
		Filepath: "internal",
		Binary:   goregular.TTF,
	}
	gofont.SFNT, err = sfnt.Parse(gofont.Binary)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	return gofont
}

// --- Font Registry ---------------------------------------------------------

// Registry caches fonts and typecases. It is safe for concurrent use.
type Registry struct {
	sync.Mutex
	fonts     map[string]*ScalableFont
	typecases map[string]*TypeCase
	synthetic bool
	finder    func(string) (string, error)
}

// NewRegistry creates a registry which locates fonts by family name among
// the system fonts.
func NewRegistry() *Registry {
	fr := &Registry{
		fonts:     make(map[string]*ScalableFont),
		typecases: make(map[string]*TypeCase),
		finder:    findfont.Find,
	}
	return fr
}

// NewSyntheticRegistry creates a registry which hands out synthetic
// typecases only.
func NewSyntheticRegistry() *Registry {
	fr := NewRegistry()
	fr.synthetic = true
	return fr
}

// StoreFont stores a font under its name.
func (fr *Registry) StoreFont(f *ScalableFont) {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	fr.Lock()
	defer fr.Unlock()
	fname := NormalizeFontname(f.Fontname)
	tracer().Debugf("registry stores font %s as %s", f.Fontname, fname)
	fr.fonts[fname] = f
}

// TypeCase returns a typecase for a font family at a given size.
// Families may be given as a CSS font-family list ("Gentium, serif"); the first
// family found wins. If no family is found, the fallback font is returned
// together with an error with code EMISSING. The typecase is usable in either
// case.
func (fr *Registry) TypeCase(family string, size dimen.Dimen) (*TypeCase, error) {
	fr.Lock()
	defer fr.Unlock()
	families := strings.Split(family, ",")
	for _, fam := range families {
		fam = strings.Trim(strings.TrimSpace(fam), `"'`)
		if fam == "" {
			continue
		}
		if fr.synthetic {
			return fr.cached(NormalizeTypeCaseName(fam, size), func() (*TypeCase, error) {
				return SyntheticTypeCase(NormalizeFontname(fam), size), nil
			})
		}
		if tc, ok := fr.lookup(fam, size); ok {
			return tc, nil
		}
	}
	tracer().Infof("registry does not contain font %s", family)
	err := core.Error(core.EMISSING, "font %q not found", family)
	if fr.synthetic {
		tc, _ := fr.cached(NormalizeTypeCaseName("fallback", size), func() (*TypeCase, error) {
			return SyntheticTypeCase("fallback", size), nil
		})
		return tc, err
	}
	f := FallbackFont()
	tc, ferr := fr.cached(NormalizeTypeCaseName("fallback", size), func() (*TypeCase, error) {
		return f.PrepareCase(size)
	})
	if ferr != nil {
		return SyntheticTypeCase("fallback", size), err
	}
	return tc, err
}

// lookup is called with the lock held.
func (fr *Registry) lookup(family string, size dimen.Dimen) (*TypeCase, bool) {
	fname := NormalizeFontname(family)
	tname := NormalizeTypeCaseName(family, size)
	if tc, ok := fr.typecases[tname]; ok {
		return tc, true
	}
	f, ok := fr.fonts[fname]
	if !ok && fr.finder != nil {
		fpath, err := fr.finder(family + ".ttf") // try to find as system font
		if err != nil {
			return nil, false
		}
		if f, err = LoadOpenTypeFont(fpath); err != nil {
			tracer().Errorf("cannot load system font %s: %v", fpath, err)
			return nil, false
		}
		fr.fonts[fname] = f
	} else if !ok {
		return nil, false
	}
	tc, err := f.PrepareCase(size)
	if err != nil {
		tracer().Errorf("font %s: %v", fname, err)
		return nil, false
	}
	tracer().Infof("font registry has font %s, caches at %s", fname, size.PxString())
	fr.typecases[tname] = tc
	return tc, true
}

// cached is called with the lock held.
func (fr *Registry) cached(tname string, create func() (*TypeCase, error)) (*TypeCase, error) {
	if tc, ok := fr.typecases[tname]; ok {
		return tc, nil
	}
	tc, err := create()
	if err != nil {
		return nil, err
	}
	fr.typecases[tname] = tc
	return tc, nil
}

// NormalizeFontname creates a canonical name from a font name or file name.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(fname)
	return fname
}

// NormalizeTypeCaseName appends a size to a canonical font name.
func NormalizeTypeCaseName(fname string, size dimen.Dimen) string {
	fname = NormalizeFontname(fname)
	return fmt.Sprintf("%s@%s", fname, size.PxString())
}
