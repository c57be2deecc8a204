// Package fuzzy resolves messy spreadsheet headers against canonical
// column labels. Source files name the same column "Case No.", "CASE",
// "carton #" depending on who exported them; exact matching would
// reject most of them.
package fuzzy

import "strings"

// Resolver matches field names to candidate labels, first by substring
// containment and then by character similarity.
type Resolver struct{}

// Resolve returns the field whose name best matches one of the
// candidate labels, and whether any field scored at least threshold.
// Comparison is case-insensitive. A candidate appearing verbatim inside
// a field name is a perfect match regardless of extra decoration.
func (Resolver) Resolve(fields []string, candidates []string, threshold float64) (string, bool) {
	best, bestScore := "", 0.0
	for _, field := range fields {
		score := Score(field, candidates)
		if score > bestScore {
			best, bestScore = field, score
		}
	}
	if bestScore >= threshold {
		return best, true
	}
	return "", false
}

// Score rates a field name against a set of candidate labels, keeping
// the best candidate's score. Substring containment scores 1.
func Score(field string, candidates []string) float64 {
	f := normalize(field)
	best := 0.0
	for _, cand := range candidates {
		c := normalize(cand)
		if c != "" && strings.Contains(f, c) {
			return 1
		}
		if r := Ratio(f, c); r > best {
			best = r
		}
	}
	return best
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Ratio is the classic sequence similarity measure 2*M/T, where M is
// the number of characters in common (longest common substring, applied
// recursively to the pieces on either side) and T the total length of
// both strings. 1 means identical, 0 means nothing in common.
func Ratio(a, b string) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	m := matching([]rune(a), []rune(b))
	return 2 * float64(m) / float64(len([]rune(a))+len([]rune(b)))
}

// matching counts common characters by locating the longest common
// substring and recursing into the unmatched prefixes and suffixes.
func matching(a, b []rune) int {
	ai, bi, size := longestCommon(a, b)
	if size == 0 {
		return 0
	}
	n := size
	n += matching(a[:ai], b[:bi])
	n += matching(a[ai+size:], b[bi+size:])
	return n
}

func longestCommon(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// prev[j] is the length of the common suffix ending at a[i-1], b[j-1].
	prev := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai, bi = i-size, j-size
				}
			}
		}
		prev = cur
	}
	return ai, bi, size
}
