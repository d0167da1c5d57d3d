package inline

import (
	"strings"
	"unicode"

	"github.com/npillmayer/boxflow/engine/dom/style"
	"golang.org/x/text/width"
)

const zwsp = '\u200b'

// collapser performs CSS white-space processing across the text nodes of a
// paragraph. Collapsible spaces collapse with spaces of preceding nodes, and
// are dropped at the start of a line.
type collapser struct {
	afterSpace bool // previous output ends in a collapsible space, or a line starts
	last       rune // previous output rune, 0 at line start
}

func (c *collapser) reset() {
	c.afterSpace, c.last = true, 0
}

// atomic is called after an atomic inline, which is not white-space.
func (c *collapser) atomic() {
	c.afterSpace, c.last = false, ObjectReplacement
}

func (c *collapser) process(s string, ws style.WhiteSpace) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !ws.CollapsesSpaces() {
		if s != "" {
			r := []rune(s)
			c.last = r[len(r)-1]
			c.afterSpace = c.last == '\n'
		}
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case ' ', '\t':
			j := skipSpaces(runes, i)
			if j < len(runes) && runes[j] == '\n' {
				// spaces before a segment break are removed
				i = j - 1
				continue
			}
			if !c.afterSpace {
				b.WriteByte(' ')
				c.afterSpace, c.last = true, ' '
			}
			i = j - 1
		case '\n':
			j := skipSpaces(runes, i+1)
			if ws == style.WhiteSpacePreLine {
				b.WriteByte('\n')
				c.reset()
				i = j - 1
				continue
			}
			for j < len(runes) && runes[j] == '\n' {
				j = skipSpaces(runes, j+1)
			}
			var next rune
			if j < len(runes) {
				next = runes[j]
			}
			if !removesSegmentBreak(c.last, next) && !c.afterSpace {
				b.WriteByte(' ')
				c.afterSpace, c.last = true, ' '
			}
			i = j - 1
		default:
			b.WriteRune(r)
			c.afterSpace, c.last = false, r
		}
	}
	return b.String()
}

func skipSpaces(runes []rune, i int) int {
	for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t') {
		i++
	}
	return i
}

// removesSegmentBreak is true if a segment break between prev and next is
// removed instead of turned into a space: next to a zero width space, and
// between two East Asian wide characters which are not Hangul.
func removesSegmentBreak(prev, next rune) bool {
	if prev == zwsp || next == zwsp {
		return true
	}
	if prev == 0 || next == 0 {
		return false
	}
	return isWideNonHangul(prev) && isWideNonHangul(next)
}

func isWideNonHangul(r rune) bool {
	if unicode.Is(unicode.Hangul, r) {
		return false
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}
