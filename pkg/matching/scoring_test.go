package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorerSimilarity(t *testing.T) {
	s := NewScorer()

	t.Run("should return 1.0 for identical strings", func(t *testing.T) {
		assert.Equal(t, 1.0, s.Similarity("jose garcia", "jose garcia"))
	})

	t.Run("should return 0.0 when either side is empty", func(t *testing.T) {
		assert.Equal(t, 0.0, s.Similarity("", "jose garcia"))
		assert.Equal(t, 0.0, s.Similarity("jose garcia", ""))
		assert.Equal(t, 0.0, s.Similarity("", ""))
	})

	t.Run("should be symmetric", func(t *testing.T) {
		pairs := [][2]string{
			{"jonathan smith", "jonathon smith"},
			{"j garcia", "jose garcia"},
			{"anne", "anna"},
		}
		for _, p := range pairs {
			assert.InDelta(t, s.Similarity(p[0], p[1]), s.Similarity(p[1], p[0]), 1e-12)
		}
	})

	t.Run("should score near-identical names highly", func(t *testing.T) {
		assert.Greater(t, s.Similarity("jonathan smith", "jonathon smith"), 0.9)
	})

	t.Run("should score unrelated names low", func(t *testing.T) {
		assert.Less(t, s.Similarity("jose garcia", "wanda maximoff"), 0.6)
	})

	t.Run("should score initials below near-identical spellings", func(t *testing.T) {
		initial := s.Similarity("j garcia", "jose garcia")
		full := s.Similarity("jose garcia", "jose garcia jr")
		assert.Less(t, initial, full)
		assert.Less(t, initial, 0.9)
	})

	t.Run("should stay within [0, 1]", func(t *testing.T) {
		pairs := [][2]string{
			{"a", "b"},
			{"ab", "ba"},
			{"martha", "marhta"},
			{"dwayne", "duane"},
		}
		for _, p := range pairs {
			score := s.Similarity(p[0], p[1])
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	})
}

func TestScorerJaroWinkler(t *testing.T) {
	s := NewScorer()

	t.Run("should boost shared prefixes over plain jaro", func(t *testing.T) {
		assert.GreaterOrEqual(t, s.JaroWinkler("martha", "marhta"), s.Jaro("martha", "marhta"))
	})

	t.Run("should return 0 for disjoint strings", func(t *testing.T) {
		assert.Equal(t, 0.0, s.JaroWinkler("abc", "xyz"))
	})
}

func TestScorerLevenshtein(t *testing.T) {
	s := NewScorer()

	t.Run("should count single-character edits", func(t *testing.T) {
		assert.Equal(t, 1, s.LevenshteinDistance("jonathan", "jonathon"))
		assert.Equal(t, 3, s.LevenshteinDistance("kitten", "sitting"))
	})

	t.Run("should handle unicode runes as single edits", func(t *testing.T) {
		assert.Equal(t, 1, s.LevenshteinDistance("garcía", "garcia"))
	})

	t.Run("should normalize by the longer string", func(t *testing.T) {
		// distance 1 over length 8
		assert.InDelta(t, 0.875, s.Levenshtein("jonathan", "jonathon"), 1e-9)
	})
}

func TestScorerMetaphoneMatch(t *testing.T) {
	s := NewScorer()

	t.Run("should return 1.0 for phonetically identical names", func(t *testing.T) {
		assert.Equal(t, 1.0, s.MetaphoneMatch("Smith", "Smyth"))
	})

	t.Run("should return 0.0 for phonetically distinct names", func(t *testing.T) {
		assert.Equal(t, 0.0, s.MetaphoneMatch("Smith", "Garcia"))
	})
}
