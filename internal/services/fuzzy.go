package services

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Weighted-ratio string similarity in the style of fuzzywuzzy/RapidFuzz
// WRatio: blends full-string, partial-window, and token sort/set ratios with
// the standard scaling factors. Scores are 0-100; tolerant of word
// reordering, filler words ("credit card"), and partial substrings.

// processFuzzy lowercases, strips non-alphanumeric runes, and collapses
// whitespace so punctuation and casing never affect scores.
func processFuzzy(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// simRatio is the base similarity: edit distance normalized over the longer
// string, scaled to 0-100.
func simRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	if dist >= longest {
		return 0
	}
	return 100 * (1 - float64(dist)/float64(longest))
}

// partialRatio slides the shorter string over the longer one and returns the
// best window similarity. A proper substring always scores 100.
func partialRatio(a, b string) float64 {
	sa, sb := []rune(a), []rune(b)
	if len(sa) > len(sb) {
		sa, sb = sb, sa
	}
	if len(sa) == 0 {
		return 0
	}
	if len(sa) == len(sb) {
		return simRatio(string(sa), string(sb))
	}

	best := 0.0
	window := len(sa)
	for i := 0; i+window <= len(sb); i++ {
		score := simRatio(string(sa), string(sb[i:i+window]))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

func sortedTokens(s string) []string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return tokens
}

func tokenSortRatio(a, b string, partial bool) float64 {
	sa := strings.Join(sortedTokens(a), " ")
	sb := strings.Join(sortedTokens(b), " ")
	if partial {
		return partialRatio(sa, sb)
	}
	return simRatio(sa, sb)
}

// tokenSetRatio compares the sorted token intersection against each side's
// intersection-plus-remainder string and takes the best pairwise score.
func tokenSetRatio(a, b string, partial bool) float64 {
	setA := make(map[string]struct{})
	for _, tok := range strings.Fields(a) {
		setA[tok] = struct{}{}
	}
	setB := make(map[string]struct{})
	for _, tok := range strings.Fields(b) {
		setB[tok] = struct{}{}
	}

	var inter, diffA, diffB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter = append(inter, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			diffB = append(diffB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffA)
	sort.Strings(diffB)

	s0 := strings.Join(inter, " ")
	s1 := strings.TrimSpace(s0 + " " + strings.Join(diffA, " "))
	s2 := strings.TrimSpace(s0 + " " + strings.Join(diffB, " "))

	cmp := simRatio
	if partial {
		cmp = partialRatio
	}

	best := cmp(s0, s1)
	if score := cmp(s0, s2); score > best {
		best = score
	}
	if score := cmp(s1, s2); score > best {
		best = score
	}
	return best
}

// wratio is the combined weighted ratio on a 0-100 scale.
func wratio(a, b string) float64 {
	pa := processFuzzy(a)
	pb := processFuzzy(b)
	if pa == "" || pb == "" {
		return 0
	}

	best := simRatio(pa, pb)

	la := len([]rune(pa))
	lb := len([]rune(pb))
	shorter, longer := la, lb
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	lenRatio := float64(longer) / float64(shorter)

	const unbaseScale = 0.95
	if lenRatio < 1.5 {
		if score := tokenSortRatio(pa, pb, false) * unbaseScale; score > best {
			best = score
		}
		if score := tokenSetRatio(pa, pb, false) * unbaseScale; score > best {
			best = score
		}
		return best
	}

	partialScale := 0.90
	if lenRatio > 8 {
		partialScale = 0.60
	}
	if score := partialRatio(pa, pb) * partialScale; score > best {
		best = score
	}
	if score := tokenSortRatio(pa, pb, true) * unbaseScale * partialScale; score > best {
		best = score
	}
	if score := tokenSetRatio(pa, pb, true) * unbaseScale * partialScale; score > best {
		best = score
	}
	return best
}
