// Package keywords classifies OCR'd page text with an ordered list of fuzzy
// keyword rules. The first matching rule wins.
package keywords

import (
	"strings"
)

// Normalize lowercases text, keeps only [a-z0-9 ], collapses whitespace and
// rewrites OCR variants of "100%" ("100 %", "100o", "1OO%" after lowercasing
// "100o") to the bare token "100". Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	lowered := strings.ToLower(text)

	// Punctuation other than '%' becomes a separator before the 100% rewrite so
	// the rewrite sees the same token layout on every pass.
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case isWordByte(r), r == '%':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	rewritten := rewriteHundredPercent(collapseSpaces(b.String()))
	rewritten = strings.ReplaceAll(rewritten, "%", " ")
	return collapseSpaces(rewritten)
}

// rewriteHundredPercent replaces "100" followed by a run of '%' or 'o' marks
// with " 100 ". Every 'o' in the run is a mark, even one that begins a word.
func rewriteHundredPercent(s string) string {
	if !strings.Contains(s, "100") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	i := 0
	for i < len(s) {
		if !strings.HasPrefix(s[i:], "100") {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := consumePercentMarks(s, i+3)
		if end < 0 {
			b.WriteString("100")
			i += 3
			continue
		}
		b.WriteString(" 100 ")
		i = end
	}
	return b.String()
}

// consumePercentMarks returns the index just past the last mark following pos,
// or -1 when no mark follows.
func consumePercentMarks(s string, pos int) int {
	last := -1
	j := pos
	for {
		for j < len(s) && s[j] == ' ' {
			j++
		}
		if j >= len(s) {
			return last
		}
		switch {
		case s[j] == '%':
			j++
			last = j
		case s[j] == 'o':
			j++
			last = j
		default:
			return last
		}
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isWordByte(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
