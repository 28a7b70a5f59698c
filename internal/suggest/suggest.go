// Package suggest adds "did you mean" hints to fatal resolution errors.
// The resolver uses it for subpath-not-exposed (spec §7), which names an
// exports subpath a human may have mistyped, so a close match among the
// package's own declared subpaths is worth surfacing. Entry-resolution
// failures carry no hint.
package suggest

import "github.com/hbollon/go-edlib"

// A candidate must score above this Jaro-Winkler similarity to count as a
// plausible typo of the query (the 0.7 cutoff of the pack's fuzzy matcher).
const similarityThreshold = 0.7

// Closest returns the candidate most similar to query by Jaro-Winkler
// similarity, or "" if none clears similarityThreshold.
func Closest(query string, candidates []string) string {
	best := ""
	bestScore := similarityThreshold
	for _, candidate := range candidates {
		score, err := edlib.StringsSimilarity(query, candidate, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if float64(score) > bestScore {
			bestScore = float64(score)
			best = candidate
		}
	}
	return best
}

// Note formats a suggestion as an error-note string, or "" when nothing
// was close enough to mention.
func Note(query string, candidates []string) string {
	match := Closest(query, candidates)
	if match == "" {
		return ""
	}
	return "Did you mean \"" + match + "\"?"
}
