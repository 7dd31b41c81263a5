package common

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var relatedPrefixPattern = regexp.MustCompile(`.*-related\s*`)

// CleanDiseaseName normalises a disease name or synonym for comparison.
// It strips any leading "<gene>-related" prefix, lowercases the name, removes
// diacritics and punctuation, and collapses runs of whitespace.
func CleanDiseaseName(name string) string {
	name = relatedPrefixPattern.ReplaceAllString(strings.ToLower(name), "")

	stripper := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, name)
	if err == nil {
		name = stripped
	}

	var sb strings.Builder
	lastWasSpace := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastWasSpace = false
		case unicode.IsSpace(r) || unicode.IsPunct(r):
			if !lastWasSpace && sb.Len() > 0 {
				sb.WriteRune(' ')
			}
			lastWasSpace = true
		}
	}

	return strings.TrimSpace(sb.String())
}

// SimilarityRatio computes a similarity score between two strings in the
// range [0, 1]. The score is 2*M / (len(a)+len(b)) where M is the total size
// of all matching blocks, the measure difflib.SequenceMatcher uses.
func SimilarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	matched := matchingBlockSize([]rune(a), []rune(b))

	return 2 * float64(matched) / float64(len([]rune(a))+len([]rune(b)))
}

// matchingBlockSize finds the longest common block of two rune slices, then
// recurses on the pieces to its left and right.
func matchingBlockSize(a, b []rune) int {
	bestA, bestB, bestLen := longestMatch(a, b)
	if bestLen == 0 {
		return 0
	}

	total := bestLen
	total += matchingBlockSize(a[:bestA], b[:bestB])
	total += matchingBlockSize(a[bestA+bestLen:], b[bestB+bestLen:])

	return total
}

func longestMatch(a, b []rune) (int, int, int) {
	bestA, bestB, bestLen := 0, 0, 0

	// lengths[j] holds the length of the match ending at a[i-1] and b[j-1]
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestLen {
					bestLen = lengths[j]
					bestA = i - bestLen
					bestB = j - bestLen
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}

	return bestA, bestB, bestLen
}
