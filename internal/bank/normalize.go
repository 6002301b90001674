package bank

import (
	"sort"
	"strings"
	"unicode"
)

// CollapseSpace trims s and collapses internal whitespace runs to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeLabels extracts choice labels A-H from s, uppercases, dedupes
// and sorts them. Accepts forms like "b", "AC", "A,C", "A C", "a、c".
func NormalizeLabels(s string) []string {
	seen := make(map[rune]bool)
	var labels []string
	for _, r := range s {
		r = unicode.ToUpper(r)
		if r >= 'A' && r <= 'H' && !seen[r] {
			seen[r] = true
			labels = append(labels, string(r))
		}
	}
	sort.Strings(labels)
	return labels
}

// trueWords and falseWords fold true/false synonyms, English and Chinese.
var trueWords = map[string]bool{
	"true": true, "correct": true, "t": true, "yes": true,
	"对": true, "正确": true, "√": true, "是": true,
}

var falseWords = map[string]bool{
	"false": true, "incorrect": true, "f": true, "no": true,
	"错": true, "错误": true, "×": true, "x": true, "否": true,
}

// FoldTrueFalse maps a true/false synonym to the canonical token "true" or
// "false". ok is false when s is not a recognized synonym.
func FoldTrueFalse(s string) (canon string, ok bool) {
	w := strings.ToLower(CollapseSpace(s))
	if trueWords[w] {
		return "true", true
	}
	if falseWords[w] {
		return "false", true
	}
	return "", false
}

// IsTrueFalsePair reports whether the two texts form a recognized
// true/false option pair, in either order.
func IsTrueFalsePair(a, b string) bool {
	ca, okA := FoldTrueFalse(a)
	cb, okB := FoldTrueFalse(b)
	return okA && okB && ca != cb
}

// EqualAnswerText compares free-text answers: case-insensitive after
// whitespace collapse.
func EqualAnswerText(a, b string) bool {
	return strings.EqualFold(CollapseSpace(a), CollapseSpace(b))
}

// EqualLabelSets reports whether two normalized label slices are equal.
func EqualLabelSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
