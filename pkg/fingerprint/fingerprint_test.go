package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	t.Run("should be invariant under token order", func(t *testing.T) {
		assert.Equal(t, Key("Tom Cruise"), Key("Cruise Tom"))
		assert.Equal(t, Key("Cruise, Tom"), Key("Tom Cruise"))
	})

	t.Run("should drop duplicate tokens", func(t *testing.T) {
		assert.Equal(t, Key("bob bob smith"), Key("Bob Smith"))
	})

	t.Run("should fold accented characters", func(t *testing.T) {
		assert.Equal(t, Key("Jose Garcia"), Key("José García"))
	})

	t.Run("should strip punctuation", func(t *testing.T) {
		assert.Equal(t, "mary obuilder", Key("Mary O'Builder"))
	})

	t.Run("should return empty for empty or symbol-only input", func(t *testing.T) {
		assert.Equal(t, "", Key(""))
		assert.Equal(t, "", Key("!!! ---"))
	})
}

func TestNGramKey(t *testing.T) {
	t.Run("should build sorted unique ngrams", func(t *testing.T) {
		// "abab" normalizes to itself; bigrams are ab, ba, ab -> ab, ba
		assert.Equal(t, "abba", NGramKey("abab", 2))
	})

	t.Run("should return normalized text when shorter than n", func(t *testing.T) {
		assert.Equal(t, "ab", NGramKey("A-B", 3))
	})

	t.Run("should agree for reordered names", func(t *testing.T) {
		assert.Equal(t, NGramKey("tomcruise", 2), NGramKey("tomcruise", 2))
	})
}

func TestPhoneticKey(t *testing.T) {
	t.Run("should use metaphone for alphabetic names", func(t *testing.T) {
		key := PhoneticKey("Smith", 2)
		assert.NotEmpty(t, key)
		assert.Equal(t, key, PhoneticKey("smith", 2))
	})

	t.Run("should group metaphone-equivalent spellings", func(t *testing.T) {
		assert.Equal(t, PhoneticKey("Smith", 2), PhoneticKey("Smyth", 2))
	})

	t.Run("should fall back to uppercased prefix for non-alphabetic values", func(t *testing.T) {
		assert.Equal(t, "12", PhoneticKey("12345", 2))
		assert.Equal(t, "123", PhoneticKey("12345", 3))
	})

	t.Run("should return empty for empty input", func(t *testing.T) {
		assert.Equal(t, "", PhoneticKey("", 2))
		assert.Equal(t, "", PhoneticKey("   ", 2))
	})
}

func TestMetaphone(t *testing.T) {
	t.Run("should match common spelling variants", func(t *testing.T) {
		assert.Equal(t, Metaphone("Catherine"), Metaphone("Katherine"))
		assert.Equal(t, Metaphone("Smith"), Metaphone("Smyth"))
	})

	t.Run("should ignore case and accents", func(t *testing.T) {
		assert.Equal(t, Metaphone("GARCIA"), Metaphone("garcía"))
	})

	t.Run("should return empty for non-alphabetic input", func(t *testing.T) {
		assert.Equal(t, "", Metaphone("12345"))
		assert.Equal(t, "", Metaphone(""))
	})
}

func TestSoundex(t *testing.T) {
	t.Run("should produce standard codes", func(t *testing.T) {
		assert.Equal(t, "R163", Soundex("Robert"))
		assert.Equal(t, "R163", Soundex("Rupert"))
	})

	t.Run("should return empty when first character is not a letter", func(t *testing.T) {
		assert.Equal(t, "", Soundex("123"))
	})
}
