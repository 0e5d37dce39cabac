// Package match provides the pure text-matching helpers used by the
// specification source adapters: candidate name variation generation and
// model-name similarity scoring.
package match

import (
	"regexp"
	"strings"
)

// modelCodePattern matches a leading all-caps/digit model code of 3-5
// characters followed by the rest of the name, e.g. "FXLR Low Rider".
var modelCodePattern = regexp.MustCompile(`^[A-Z0-9]{3,5}\s+(.+)$`)

// trimSuffixes are trim/body-style tokens that upstream sources frequently
// omit from model names, e.g. "6 SkyActiv Estate" is listed as "6 SkyActiv".
var trimSuffixes = []string{"Estate", "Saloon", "Sport", "Touring", "Hatchback", "Sedan"}

// ModelVariations returns candidate spellings of a model name to try against
// an upstream source, the original always first, de-duplicated, derived forms
// in first-seen order. Callers try them in order and stop at the first hit.
func ModelVariations(model string) []string {
	set := newOrderedSet()
	set.add(model)

	words := strings.Fields(model)
	if len(words) >= 2 {
		// "Z1000 JHF R" -> "Z1000"
		set.add(words[0])
	}
	if len(words) >= 3 {
		// "Z1000 JHF R" -> "Z1000 JHF", and the trailing trim code pair
		set.add(strings.Join(words[:2], " "))
		set.add(strings.Join(words[len(words)-2:], " "))
	}

	// "FXLR Low Rider" -> "Low Rider"
	if m := modelCodePattern.FindStringSubmatch(model); m != nil {
		set.add(m[1])
	}

	for _, suffix := range trimSuffixes {
		if containsFold(model, suffix) {
			set.add(strings.TrimSpace(removeFold(model, suffix)))
		}
	}

	return set.values
}

// MakeVariations returns candidate spellings of a manufacturer name:
// hyphen/space swaps ("Harley Davidson" <-> "Harley-Davidson") plus the
// lowercase form of every variant.
func MakeVariations(make string) []string {
	set := newOrderedSet()
	set.add(make)

	if strings.Contains(make, " ") {
		set.add(strings.ReplaceAll(make, " ", "-"))
	}
	if strings.Contains(make, "-") {
		set.add(strings.ReplaceAll(make, "-", " "))
	}

	for _, v := range append([]string(nil), set.values...) {
		set.add(strings.ToLower(v))
	}

	return set.values
}

// orderedSet keeps insertion order and drops duplicates and empty strings.
type orderedSet struct {
	seen   map[string]bool
	values []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: map[string]bool{}}
}

func (s *orderedSet) add(v string) {
	if v == "" || s.seen[v] {
		return
	}
	s.seen[v] = true
	s.values = append(s.values, v)
}

// containsFold reports whether s contains substr case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// removeFold removes every case-insensitive occurrence of substr from s.
func removeFold(s, substr string) string {
	lower := strings.ToLower(s)
	sub := strings.ToLower(substr)
	var b strings.Builder
	for {
		i := strings.Index(lower, sub)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len(sub):]
		lower = lower[i+len(sub):]
	}
}
