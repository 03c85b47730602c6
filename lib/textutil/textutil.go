package textutil

import (
	"regexp"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a name and strips all whitespace from it.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// Similarity scores two names between 0 and 1 using Jaro-Winkler over their
// normalized forms.
func Similarity(a, b string) float64 {
	return matchr.JaroWinkler(NormalizeName(a), NormalizeName(b), false)
}

// MostSimilar returns the candidate most similar to name whose score is
// strictly greater than threshold. Ties go to the lexically smaller candidate.
func MostSimilar(name string, candidates []string, threshold float64) (string, bool) {
	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.Strings(sorted)

	best := ""
	bestScore := threshold
	found := false
	for _, c := range sorted {
		score := Similarity(name, c)
		if score > bestScore {
			best = c
			bestScore = score
			found = true
		}
	}
	return best, found
}
