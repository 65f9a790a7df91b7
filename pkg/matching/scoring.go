package matching

import (
	"github.com/Ramsey-B/clover/pkg/fingerprint"
)

// Scorer provides the string comparison algorithms used by the fuzzy tier
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Similarity is the ensemble score used for fuzzy name matching: a weighted
// average of Jaro-Winkler (primary) and normalized Levenshtein similarity
// (secondary). The blend dampens either metric's pathological cases: very
// short strings inflate edit-distance scores on their own. Symmetric, 1.0 for
// identical non-empty strings, 0.0 when either input is empty.
func (s *Scorer) Similarity(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	jw := s.JaroWinkler(a, b)
	lev := s.Levenshtein(a, b)

	return 0.7*jw + 0.3*lev
}

// JaroWinkler calculates the Jaro-Winkler similarity between two strings
// Returns a value between 0.0 (no similarity) and 1.0 (exact match)
func (s *Scorer) JaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}

	jaro := s.Jaro(a, b)

	// Winkler modification: boost for common prefix
	ra, rb := []rune(a), []rune(b)
	prefixLen := 0
	maxPrefix := 4
	for i := 0; i < len(ra) && i < len(rb) && i < maxPrefix; i++ {
		if ra[i] == rb[i] {
			prefixLen++
		} else {
			break
		}
	}

	// Winkler scaling factor is typically 0.1
	scalingFactor := 0.1
	return jaro + float64(prefixLen)*scalingFactor*(1.0-jaro)
}

// Jaro calculates the Jaro similarity between two strings
func (s *Scorer) Jaro(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	// Maximum distance for character matching
	matchDist := max(len(ra), len(rb))/2 - 1
	if matchDist < 0 {
		matchDist = 0
	}

	aMatches := make([]bool, len(ra))
	bMatches := make([]bool, len(rb))

	matches := 0
	transpositions := 0

	// Find matches
	for i := 0; i < len(ra); i++ {
		start := max(0, i-matchDist)
		end := min(len(rb), i+matchDist+1)

		for j := start; j < end; j++ {
			if bMatches[j] || ra[i] != rb[j] {
				continue
			}
			aMatches[i] = true
			bMatches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	// Count transpositions
	k := 0
	for i := 0; i < len(ra); i++ {
		if !aMatches[i] {
			continue
		}
		for !bMatches[k] {
			k++
		}
		if ra[i] != rb[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2

	return (m/float64(len(ra)) + m/float64(len(rb)) + (m-t)/m) / 3
}

// Levenshtein calculates the Levenshtein distance between two strings
// Returns a similarity score between 0.0 and 1.0
func (s *Scorer) Levenshtein(a, b string) float64 {
	distance := s.LevenshteinDistance(a, b)
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// LevenshteinDistance calculates the edit distance between two strings
func (s *Scorer) LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rows for dynamic programming
	row := make([]int, len(rb)+1)
	prevRow := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(rb)]
}

// MetaphoneMatch returns 1.0 if Metaphone codes match, 0.0 otherwise
func (s *Scorer) MetaphoneMatch(a, b string) float64 {
	if fingerprint.Metaphone(a) == fingerprint.Metaphone(b) {
		return 1.0
	}
	return 0.0
}
