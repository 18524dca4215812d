package textutil

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// comparablePattern strips everything outside lowercase alphanumerics before
// titles are compared.
var comparablePattern = regexp.MustCompile(`[^a-z0-9]+`)

// Comparable reduces a title to the lowercase alphanumeric form used for
// similarity scoring.
func Comparable(text string) string {
	return comparablePattern.ReplaceAllString(strings.ToLower(text), "")
}

// TitleSimilarity scores how closely two titles match, in [0, 1].
// Both inputs are normalized with Comparable first; the score is the
// longest-matching-blocks ratio over the normalized characters. Block
// discovery is greedy and order-dependent, so both orders are scored and
// the larger ratio wins, keeping the result symmetric in its arguments.
// Returns 0 when either input normalizes to the empty string.
func TitleSimilarity(a, b string) float64 {
	na := Comparable(a)
	nb := Comparable(b)
	if na == "" || nb == "" {
		return 0
	}
	forward := blockRatio(na, nb)
	if reverse := blockRatio(nb, na); reverse > forward {
		return reverse
	}
	return forward
}

func blockRatio(a, b string) float64 {
	matcher := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return matcher.Ratio()
}
