// Package similarity scores how alike two recognized lines are.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio returns 1 - editDistance/maxLen over runes. Identical strings
// (including two empty strings) score 1.0; the score is symmetric.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}

	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// Contains reports whether either string is a substring of the other.
func Contains(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
