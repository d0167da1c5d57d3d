/*
Package parameters holds the paragraph parameters of a layout run: language,
base direction, hyphenation and truncation settings. Values are set for the
whole run and may be overridden for the extent of an inline box, e.g. by a
"lang" attribute.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parameters

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

// Key selects a paragraph parameter.
type Key int

// Parameters and the type of their values.
const (
	Language        Key = iota // language.Tag
	TextDirection              // bidi.Direction
	Hyphenate                  // bool
	HyphenChar                 // rune
	MinHyphenLength            // int, in code-points
	Ellipsis                   // string
	BidiConformance            // string, "full" or "none"
	keyCount
)

var keyNames = [keyCount]string{"language", "text-direction", "hyphenate",
	"hyphen-char", "min-hyphen-length", "ellipsis", "bidi-conformance"}

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

func defaults() [keyCount]interface{} {
	return [keyCount]interface{}{
		Language:        language.English,
		TextDirection:   bidi.LeftToRight,
		Hyphenate:       true,
		HyphenChar:      '-',
		MinHyphenLength: 5,
		Ellipsis:        "…",
		BidiConformance: "full",
	}
}

// Registers hold the current values of the paragraph parameters. Scopes
// nest: values pushed within a scope are dropped when the scope ends.
//
// Registers are not safe for concurrent use. Layout clones the registers of
// a layout context for every paragraph.
type Registers struct {
	base   [keyCount]interface{}
	scopes []map[Key]interface{} // innermost last, nil if nothing pushed
}

// NewRegisters creates registers holding default values.
func NewRegisters() *Registers {
	return &Registers{base: defaults()}
}

// Clone returns registers with the values of regs, flattened into a single
// outermost scope.
func (regs *Registers) Clone() *Registers {
	c := &Registers{base: regs.base}
	for _, scope := range regs.scopes {
		for k, v := range scope {
			c.base[k] = v
		}
	}
	return c
}

// Begingroup opens a new scope.
func (regs *Registers) Begingroup() {
	regs.scopes = append(regs.scopes, nil)
}

// Endgroup closes the innermost scope. Unbalanced calls are ignored.
func (regs *Registers) Endgroup() {
	if n := len(regs.scopes); n > 0 {
		regs.scopes = regs.scopes[:n-1]
	}
}

// Push sets a parameter within the innermost scope. Push panics if value is
// not of the type of parameter key.
func (regs *Registers) Push(key Key, value interface{}) {
	if !hasType(key, value) {
		panic(fmt.Sprintf("parameter %s cannot hold value of type %T", key, value))
	}
	n := len(regs.scopes)
	if n == 0 {
		regs.base[key] = value
		return
	}
	if regs.scopes[n-1] == nil {
		regs.scopes[n-1] = make(map[Key]interface{})
	}
	regs.scopes[n-1][key] = value
}

func hasType(key Key, value interface{}) bool {
	switch key {
	case Language:
		_, ok := value.(language.Tag)
		return ok
	case TextDirection:
		_, ok := value.(bidi.Direction)
		return ok
	case Hyphenate:
		_, ok := value.(bool)
		return ok
	case HyphenChar:
		_, ok := value.(rune)
		return ok
	case MinHyphenLength:
		_, ok := value.(int)
		return ok
	case Ellipsis, BidiConformance:
		_, ok := value.(string)
		return ok
	}
	return false
}

// Get returns the current value of a parameter.
func (regs *Registers) Get(key Key) interface{} {
	if key < 0 || key >= keyCount {
		panic(fmt.Sprintf("no paragraph parameter %s", key))
	}
	for i := len(regs.scopes) - 1; i >= 0; i-- {
		if v, ok := regs.scopes[i][key]; ok {
			return v
		}
	}
	return regs.base[key]
}

// Language returns the current language tag.
func (regs *Registers) Language() language.Tag {
	return regs.Get(Language).(language.Tag)
}

// Direction returns the current paragraph base direction.
func (regs *Registers) Direction() bidi.Direction {
	return regs.Get(TextDirection).(bidi.Direction)
}

// Hyphenation groups the hyphenation parameters.
type Hyphenation struct {
	Enabled   bool
	Char      rune
	MinLength int // words shorter than this are never hyphenated
}

// Hyphenation returns the current hyphenation parameters.
func (regs *Registers) Hyphenation() Hyphenation {
	return Hyphenation{
		Enabled:   regs.Get(Hyphenate).(bool),
		Char:      regs.Get(HyphenChar).(rune),
		MinLength: regs.Get(MinHyphenLength).(int),
	}
}

// Ellipsis returns the string which marks truncated lines.
func (regs *Registers) Ellipsis() string {
	return regs.Get(Ellipsis).(string)
}

// Conformance returns the bidi conformance level.
func (regs *Registers) Conformance() string {
	return regs.Get(BidiConformance).(string)
}
