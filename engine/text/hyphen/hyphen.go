/*
Package hyphen hyphenates words with Liang-style patterns, as used by TeX.

Patterns are kept in a trie. Words containing soft hyphens (U+00AD) are
split at the soft hyphens only. Dictionaries may carry a list of exceptions,
given as pre-hyphenated words ("ta-ble").

A small English dictionary is built in. More complete pattern sets may be
loaded from files in TeX format (\patterns{…} and \hyphenation{…}).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package hyphen

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/derekparker/trie"
	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/language"
)

// tracer traces with key 'boxflow.text'.
func tracer() tracing.Trace {
	return tracing.Select("boxflow.text")
}

// SoftHyphen is U+00AD, marking a manual hyphenation point.
const SoftHyphen = '\u00AD'

// Dictionary holds hyphenation patterns and exceptions for a language.
// A dictionary must not be modified after it has been shared between
// goroutines.
type Dictionary struct {
	patterns   *trie.Trie
	exceptions map[string][]int // word -> rune positions
	maxlen     int              // length of longest pattern, in runes
	MinLeft    int              // minimum number of runes before a hyphen
	MinRight   int              // minimum number of runes after a hyphen
}

// NewDictionary creates an empty dictionary. Minimum lengths default to
// 2 at the start and 3 at the end of a word.
func NewDictionary() *Dictionary {
	return &Dictionary{
		patterns:   trie.New(),
		exceptions: make(map[string][]int),
		MinLeft:    2,
		MinRight:   3,
	}
}

// AddPattern adds a pattern like "hen5at" to the dictionary.
func (d *Dictionary) AddPattern(pattern string) {
	var letters strings.Builder
	levels := []int{0}
	for _, r := range pattern {
		if r >= '0' && r <= '9' {
			levels[len(levels)-1] = int(r - '0')
			continue
		}
		letters.WriteRune(unicode.ToLower(r))
		levels = append(levels, 0)
	}
	key := letters.String()
	if key == "" {
		return
	}
	d.patterns.Add(key, levels)
	if n := len(levels) - 1; n > d.maxlen {
		d.maxlen = n
	}
}

// AddException adds a pre-hyphenated word, like "as-so-ciate".
func (d *Dictionary) AddException(hyphenated string) {
	var word strings.Builder
	var points []int
	n := 0
	for _, r := range hyphenated {
		if r == '-' {
			points = append(points, n)
			continue
		}
		word.WriteRune(unicode.ToLower(r))
		n++
	}
	d.exceptions[word.String()] = points
}

// LoadPatterns reads patterns and exceptions in TeX format. Comments start
// with '%'.
func LoadPatterns(r io.Reader) (*Dictionary, error) {
	d := NewDictionary()
	scanner := bufio.NewScanner(r)
	mode := 0 // 1 = patterns, 2 = exceptions
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '%'); i >= 0 {
			line = line[:i]
		}
		for _, field := range strings.Fields(line) {
			switch {
			case strings.HasPrefix(field, `\patterns{`):
				mode, field = 1, strings.TrimPrefix(field, `\patterns{`)
			case strings.HasPrefix(field, `\hyphenation{`):
				mode, field = 2, strings.TrimPrefix(field, `\hyphenation{`)
			}
			closing := strings.HasSuffix(field, "}")
			field = strings.TrimSuffix(field, "}")
			if field != "" {
				switch mode {
				case 1:
					d.AddPattern(field)
				case 2:
					d.AddException(field)
				}
			}
			if closing {
				mode = 0
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read hyphenation patterns")
	}
	tracer().Debugf("loaded hyphenation dictionary with %d exceptions", len(d.exceptions))
	return d, nil
}

// Points returns the byte positions within word where a hyphen may be
// inserted. If word contains soft hyphens, the positions after each soft
// hyphen are returned and patterns are not consulted.
func (d *Dictionary) Points(word string) []int {
	if soft := SoftHyphens(word); len(soft) > 0 {
		return soft
	}
	if d == nil {
		return nil
	}
	runes := []rune(strings.ToLower(word))
	n := len(runes)
	if n < d.MinLeft+d.MinRight {
		return nil
	}
	var runePoints []int
	if exc, ok := d.exceptions[string(runes)]; ok {
		runePoints = exc
	} else {
		runePoints = d.patternPoints(runes)
	}
	if len(runePoints) == 0 {
		return nil
	}
	offsets := make([]int, 0, n+1)
	for i := range word {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(word))
	points := make([]int, 0, len(runePoints))
	for _, p := range runePoints {
		if p < len(offsets) {
			points = append(points, offsets[p])
		}
	}
	return points
}

func (d *Dictionary) patternPoints(runes []rune) []int {
	w := make([]rune, 0, len(runes)+2)
	w = append(w, '.')
	w = append(w, runes...)
	w = append(w, '.')
	values := make([]int, len(w)+1)
	for i := range w {
		for j := i + 1; j <= len(w) && j-i <= d.maxlen; j++ {
			node, ok := d.patterns.Find(string(w[i:j]))
			if !ok {
				continue
			}
			levels := node.Meta().([]int)
			for k, l := range levels {
				if l > values[i+k] {
					values[i+k] = l
				}
			}
		}
	}
	var points []int
	n := len(runes)
	for k := d.MinLeft; k <= n-d.MinRight; k++ {
		if values[k+1]%2 == 1 {
			points = append(points, k)
		}
	}
	return points
}

// Hyphenate splits a word into its syllables. Soft hyphens are removed from
// the syllables.
func (d *Dictionary) Hyphenate(word string) []string {
	points := d.Points(word)
	parts := make([]string, 0, len(points)+1)
	last := 0
	for _, p := range points {
		parts = append(parts, strings.ReplaceAll(word[last:p], string(SoftHyphen), ""))
		last = p
	}
	parts = append(parts, strings.ReplaceAll(word[last:], string(SoftHyphen), ""))
	return parts
}

// SoftHyphens returns the byte positions directly after each soft hyphen in
// word, excluding a soft hyphen at the very end.
func SoftHyphens(word string) []int {
	var points []int
	for i, r := range word {
		if r == SoftHyphen {
			if p := i + utf8.RuneLen(r); p < len(word) {
				points = append(points, p)
			}
		}
	}
	return points
}

// --- Built-in dictionaries -------------------------------------------------

var englishPatterns = []string{
	"hy3ph", "he2n", "hena4", "hen5at", "1na", "n2at", "1tio", "2io", "o2n",
	"1ter", "4terc", "1ment", "4ments.", "3ble.", "1bil", "i2bl",
	"1ly.", "2l1l", "2m1m", "2n1n", "2p1p", "2t1t", "2s1s", "1ful", "1ness",
	"1less", "3tive", "1sion", "1cial", "1tial", "1ogy",
}

var englishExceptions = []string{
	"as-so-ciate", "as-so-ciates", "dec-li-na-tion", "oblig-a-tory",
	"phil-an-thropic", "present", "presents", "project", "projects",
	"reci-procity", "re-cog-ni-zance", "ref-or-ma-tion", "ret-ri-bu-tion",
	"ta-ble",
}

var (
	englishOnce sync.Once
	english     *Dictionary
)

// English returns the built-in English dictionary.
func English() *Dictionary {
	englishOnce.Do(func() {
		english = NewDictionary()
		for _, p := range englishPatterns {
			english.AddPattern(p)
		}
		for _, e := range englishExceptions {
			english.AddException(e)
		}
	})
	return english
}

var (
	dictMutex sync.RWMutex
	dicts     = map[language.Base]*Dictionary{}
)

// Register makes a dictionary available for a language.
func Register(lang language.Tag, d *Dictionary) {
	base, _ := lang.Base()
	dictMutex.Lock()
	defer dictMutex.Unlock()
	dicts[base] = d
}

// ForLanguage returns the dictionary for a language, or nil if there is
// none. English is always present.
func ForLanguage(lang language.Tag) *Dictionary {
	base, _ := lang.Base()
	dictMutex.RLock()
	d, ok := dicts[base]
	dictMutex.RUnlock()
	if ok {
		return d
	}
	if en, _ := language.English.Base(); base == en {
		return English()
	}
	return nil
}
