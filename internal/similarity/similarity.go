// Package similarity scores how close two short utterances are using a
// normalized Levenshtein edit distance.
package similarity

import "strings"

// Similarity returns a score in [0,1] for a and b, compared case-insensitively.
// 1.0 means identical; two empty strings are identical.
func Similarity(a, b string) float64 {
	longer := []rune(strings.ToLower(a))
	shorter := []rune(strings.ToLower(b))
	if len(longer) < len(shorter) {
		longer, shorter = shorter, longer
	}
	if len(longer) == 0 {
		return 1.0
	}
	d := distance(longer, shorter)
	return float64(len(longer)-d) / float64(len(longer))
}

// Distance is the Levenshtein distance between a and b, counted in runes.
// Unlike Similarity it is case-sensitive.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	return distance(ra, rb)
}

// distance keeps a single row of len(shorter)+1 costs.
func distance(longer, shorter []rune) int {
	costs := make([]int, len(shorter)+1)
	for j := range costs {
		costs[j] = j
	}
	for i := 1; i <= len(longer); i++ {
		prev := costs[0] // cost[i-1][j-1]
		costs[0] = i
		for j := 1; j <= len(shorter); j++ {
			cur := costs[j]
			if longer[i-1] == shorter[j-1] {
				costs[j] = prev
			} else {
				costs[j] = 1 + min(prev, cur, costs[j-1])
			}
			prev = cur
		}
	}
	return costs[len(shorter)]
}
