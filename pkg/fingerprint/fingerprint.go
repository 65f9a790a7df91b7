// Package fingerprint derives normalized, comparison-ready keys from text
// fields. Keys are pure functions of their input, recomputed on demand, and
// degrade to empty strings on malformed input rather than failing. Callers
// must treat an empty key as "no signal", never as a match.
package fingerprint

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var asciiFold = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// Fold converts text to its closest ASCII equivalent by decomposing,
// stripping combining marks, and dropping anything left outside ASCII.
func Fold(s string) string {
	out, _, err := transform.String(asciiFold, s)
	if err != nil {
		return s
	}
	return out
}

// Key builds the canonical fingerprint of a text field: lowercase, fold to
// ASCII, strip punctuation, split on whitespace, dedupe and sort the tokens,
// rejoin with single spaces. Token-order and diacritic variants of the same
// name produce identical keys ("Cruise, Tom" == "Tom Cruise").
func Key(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	value = Fold(value)

	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	tokens := strings.Fields(b.String())
	if len(tokens) == 0 {
		return ""
	}

	seen := make(map[string]bool, len(tokens))
	unique := tokens[:0]
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}
	sort.Strings(unique)

	return strings.Join(unique, " ")
}

// NGramKey builds the n-gram fingerprint used for typo tolerance: the same
// normalization as Key, spaces removed, then the sorted, deduplicated set of
// overlapping n-character windows concatenated. Input shorter than n returns
// the normalized text itself as its single window.
func NGramKey(value string, n int) string {
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, " ", "")
	if value == "" || n < 1 {
		return ""
	}
	value = Fold(value)

	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	rs := []rune(b.String())
	if len(rs) == 0 {
		return ""
	}
	if len(rs) < n {
		return string(rs)
	}

	grams := make([]string, 0, len(rs)-n+1)
	seen := make(map[string]bool)
	for i := 0; i+n <= len(rs); i++ {
		g := string(rs[i : i+n])
		if !seen[g] {
			seen[g] = true
			grams = append(grams, g)
		}
	}
	sort.Strings(grams)

	return strings.Join(grams, "")
}

// PhoneticKey returns the blocking key for a name: its Metaphone encoding,
// or the uppercased first fallbackWidth characters when the name cannot be
// encoded (non-alphabetic content). Empty input yields an empty key.
func PhoneticKey(value string, fallbackWidth int) string {
	value = strings.TrimSpace(Fold(value))
	if value == "" {
		return ""
	}

	if key := Metaphone(value); key != "" {
		return key
	}

	if fallbackWidth < 1 {
		fallbackWidth = 1
	}
	rs := []rune(strings.ToUpper(value))
	if len(rs) > fallbackWidth {
		rs = rs[:fallbackWidth]
	}
	return string(rs)
}
