package keywords

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the similarity a keyword must reach when its rule does
// not set one.
const DefaultThreshold = 85.0

// Ratio is the Indel similarity of a and b in [0,100]:
// 100 * 2*LCS / (len(a)+len(b)), where insertions and deletions cost one and a
// substitution costs two.
func Ratio(a, b string) float64 {
	return indelRatio([]rune(a), []rune(b))
}

func indelRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return 100 * float64(2*lcsLength(a, b)) / float64(total)
}

// ratioUpperBound caps the Indel ratio from the Levenshtein distance, which
// never exceeds the Indel distance.
func ratioUpperBound(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(string(a), string(b))
	return 100 * (1 - float64(dist)/float64(total))
}

func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// PartialRatio scores the best alignment of the shorter string against the
// longer one: every full-length window plus the prefixes and suffixes that
// overhang either border.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}
	if strings.Contains(string(long), string(short)) {
		return 100
	}

	m, n := len(short), len(long)
	windows := make([][]rune, 0, n+m)
	for i := 1; i < m; i++ {
		windows = append(windows, long[:i])
	}
	for start := 0; start+m <= n; start++ {
		windows = append(windows, long[start:start+m])
	}
	for start := max(n-m+1, 1); start < n; start++ {
		windows = append(windows, long[start:])
	}

	best := 0.0
	for _, w := range windows {
		if ratioUpperBound(short, w) <= best {
			continue
		}
		if score := indelRatio(short, w); score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSetRatio compares the word sets of a and b, ignoring order and
// repetition. A fully contained set scores 100.
func TokenSetRatio(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var inter, onlyA, onlyB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter = append(inter, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	if len(inter) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(inter, " ")
	combinedA := joinNonEmpty(sect, strings.Join(onlyA, " "))
	combinedB := joinNonEmpty(sect, strings.Join(onlyB, " "))

	best := Ratio(combinedA, combinedB)
	if sect != "" {
		best = max(best, Ratio(sect, combinedA), Ratio(sect, combinedB))
	}
	return best
}

// FuzzyContains reports whether keyword occurs in text with at least the
// given similarity. Keywords of one or two words are matched as substrings,
// longer ones as word sets. Both inputs are expected to be normalized.
func FuzzyContains(text, keyword string, threshold float64) bool {
	if keyword == "" || text == "" {
		return false
	}
	if len(strings.Fields(keyword)) <= 2 {
		return PartialRatio(keyword, text) >= threshold
	}
	return TokenSetRatio(keyword, text) >= threshold
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
