package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	t.Run("should lowercase and trim", func(t *testing.T) {
		assert.Equal(t, "john.doe@example.com", NormalizeEmail("  John.Doe@Example.COM "))
	})

	t.Run("should treat case variants as equal", func(t *testing.T) {
		assert.Equal(t, NormalizeEmail("JOHN@EXAMPLE.COM"), NormalizeEmail("john@example.com"))
	})
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "parenthesized", input: "(555) 123-4567", expected: "5551234567"},
		{name: "dashed", input: "555-123-4567", expected: "5551234567"},
		{name: "country prefix", input: "+1 555-123-4567", expected: "5551234567"},
		{name: "dotted", input: "555.123.4567", expected: "5551234567"},
		{name: "empty", input: "", expected: ""},
		{name: "letters only", input: "call me", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestNormalizePhoneE164(t *testing.T) {
	t.Run("should format valid numbers to E.164", func(t *testing.T) {
		assert.Equal(t, "+12025550123", NormalizePhoneE164("(202) 555-0123", "US", false))
		assert.Equal(t, "+12025550123", NormalizePhoneE164("202-555-0123", "US", false))
	})

	t.Run("should fall back to digits when lenient", func(t *testing.T) {
		// 555 area code numbers are not valid per numbering rules
		assert.Equal(t, "5551234567", NormalizePhoneE164("(555) 123-4567", "US", false))
	})

	t.Run("should return empty when strict and unparsable", func(t *testing.T) {
		assert.Equal(t, "", NormalizePhoneE164("(555) 123-4567", "US", true))
		assert.Equal(t, "", NormalizePhoneE164("not a number", "US", true))
	})

	t.Run("should return empty for empty input", func(t *testing.T) {
		assert.Equal(t, "", NormalizePhoneE164("", "US", false))
	})
}

func TestNormalizeSocial(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "full url", input: "https://linkedin.com/in/johndoe", expected: "johndoe"},
		{name: "www host", input: "http://www.linkedin.com/in/JohnDoe/", expected: "johndoe"},
		{name: "locale subdomain", input: "https://uk.linkedin.com/in/johndoe", expected: "johndoe"},
		{name: "no scheme", input: "linkedin.com/in/johndoe", expected: "johndoe"},
		{name: "query string", input: "https://linkedin.com/in/johndoe?trk=profile", expected: "johndoe"},
		{name: "fragment", input: "linkedin.com/in/johndoe#about", expected: "johndoe"},
		{name: "pub prefix", input: "linkedin.com/pub/johndoe", expected: "johndoe"},
		{name: "bare handle", input: "@JohnDoe", expected: "johndoe"},
		{name: "plain handle", input: "johndoe", expected: "johndoe"},
		{name: "bare host", input: "https://linkedin.com", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSocial(tt.input))
		})
	}
}

func TestNormalizeName(t *testing.T) {
	t.Run("should lowercase and fold accents", func(t *testing.T) {
		assert.Equal(t, "jose garcia", NormalizeName("José García"))
	})

	t.Run("should strip generational suffixes", func(t *testing.T) {
		assert.Equal(t, "john smith", NormalizeName("John Smith Jr."))
		assert.Equal(t, "john smith", NormalizeName("John Smith III"))
	})

	t.Run("should collapse whitespace and drop punctuation", func(t *testing.T) {
		assert.Equal(t, "maryjane watson", NormalizeName("  Mary-Jane   Watson "))
	})
}

func TestRegistry(t *testing.T) {
	t.Run("should apply registered normalizers by name", func(t *testing.T) {
		assert.Equal(t, "abc", Apply("  ABC ", "nemail"))
	})

	t.Run("should return value unchanged for unknown normalizer", func(t *testing.T) {
		assert.Equal(t, "ABC", Apply("ABC", "nope"))
	})

	t.Run("should chain normalizers in order", func(t *testing.T) {
		assert.Equal(t, "abc", ApplyChain(" A B C ", "lowercase", "remove_whitespace"))
	})
}
