package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_IdenticalStrings(t *testing.T) {
	assert.Equal(t, 100.0, Score("CB650R", "CB650R"))
	assert.Equal(t, 100.0, Score("Z1000", "Z1000"))
}

func TestScore_IdenticalAfterNormalization(t *testing.T) {
	// Case, whitespace and hyphens are not significant.
	assert.Equal(t, 100.0, Score("CB 650 R", "cb650r"))
	assert.Equal(t, 100.0, Score("low-rider", "Low Rider"))
}

func TestScore_NumericMismatchScoresZero(t *testing.T) {
	// Distinct numeric designators override any textual similarity.
	assert.Equal(t, 0.0, Score("ZX6R", "ZX9R"))
	assert.Equal(t, 0.0, Score("CB650R", "CB1000R"))
}

func TestScore_SharedNumberAllowsMatch(t *testing.T) {
	assert.Equal(t, 90.0, Score("CB650R", "CB650R ABS"))
}

func TestScore_SubstringContainmentScoresNinety(t *testing.T) {
	assert.Equal(t, 90.0, Score("Low Rider", "Low Rider S"))
	// Containment check runs in both directions.
	assert.Equal(t, 90.0, Score("Low Rider S", "Low Rider"))
}

func TestScore_LevenshteinFallback(t *testing.T) {
	// "sportster" vs "sportstar": distance 1 over length 9.
	score := Score("Sportster", "Sportstar")
	assert.InDelta(t, (1-1.0/9.0)*100, score, 0.001)
}

func TestScore_EmptyStrings(t *testing.T) {
	assert.Equal(t, 0.0, Score("", ""))
	assert.Equal(t, 0.0, Score("   ", " - "))
}

func TestScore_NeverNegative(t *testing.T) {
	assert.GreaterOrEqual(t, Score("abc", "xyzxyzxyz"), 0.0)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("kitten", "kitten"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 5, levenshtein("", "abcde"))
	assert.Equal(t, 5, levenshtein("abcde", ""))
}
