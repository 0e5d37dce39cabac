package match

import (
	"regexp"
	"strings"
)

var digitRuns = regexp.MustCompile(`\d+`)

// Score returns a 0-100 confidence that two model names denote the same
// model. Numeric designators are the strongest disambiguator: when both
// names carry number tokens and the sets are disjoint (ZX6R vs ZX9R) the
// score is 0 regardless of textual similarity. After normalization, exact
// equality scores 100, substring containment 90, and anything else falls
// back to a Levenshtein ratio.
func Score(target, candidate string) float64 {
	a := strings.ToLower(strings.TrimSpace(target))
	b := strings.ToLower(strings.TrimSpace(candidate))

	numsA := digitRuns.FindAllString(a, -1)
	numsB := digitRuns.FindAllString(b, -1)
	if len(numsA) > 0 && len(numsB) > 0 && !intersects(numsA, numsB) {
		return 0
	}

	a = stripSeparators(a)
	b = stripSeparators(b)

	if a == b {
		if a == "" {
			return 0
		}
		return 100
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 90
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}

	score := (1 - float64(levenshtein(a, b))/float64(maxLen)) * 100
	if score < 0 {
		return 0
	}
	return score
}

func intersects(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return true
		}
	}
	return false
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '-' {
			return -1
		}
		return r
	}, s)
}

// levenshtein computes the edit distance between two strings using a
// single-row dynamic programming table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(a); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min3(row[j]+1, row[j-1]+1, prev+cost)
			prev = cur
		}
	}

	return row[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
