package fingerprint

import (
	"strings"
	"unicode"
)

// Metaphone calculates a simplified Metaphone encoding of a word. Returns ""
// when the input has no alphabetic content; callers fall back to a prefix key.
func Metaphone(str string) string {
	if len(str) == 0 {
		return ""
	}

	str = strings.ToUpper(Fold(str))

	var letters strings.Builder
	for _, char := range str {
		if char >= 'A' && char <= 'Z' {
			letters.WriteRune(char)
		}
	}
	str = letters.String()

	if len(str) == 0 {
		return ""
	}

	var metaphone strings.Builder
	prevCode := byte(0)

	for i := 0; i < len(str) && metaphone.Len() < 6; i++ {
		code := metaphoneCode(str[i], i, str)
		if code != 0 && code != prevCode {
			metaphone.WriteByte(code)
			prevCode = code
		}
	}

	return metaphone.String()
}

// metaphoneCode returns the Metaphone code for a character
func metaphoneCode(char byte, pos int, word string) byte {
	switch char {
	case 'A', 'E', 'I', 'O', 'U':
		if pos == 0 {
			return char
		}
		return 0
	case 'B':
		return 'B'
	case 'C':
		if pos+1 < len(word) && (word[pos+1] == 'I' || word[pos+1] == 'E' || word[pos+1] == 'Y') {
			return 'S'
		}
		return 'K'
	case 'D':
		return 'T'
	case 'F':
		return 'F'
	case 'G':
		return 'J'
	case 'H':
		return 0 // Usually silent
	case 'J':
		return 'J'
	case 'K':
		return 'K'
	case 'L':
		return 'L'
	case 'M':
		return 'M'
	case 'N':
		return 'N'
	case 'P':
		if pos+1 < len(word) && word[pos+1] == 'H' {
			return 'F'
		}
		return 'P'
	case 'Q':
		return 'K'
	case 'R':
		return 'R'
	case 'S':
		return 'S'
	case 'T':
		return 'T'
	case 'V':
		return 'F'
	case 'W':
		return 0
	case 'X':
		return 'S'
	case 'Y':
		return 0
	case 'Z':
		return 'S'
	default:
		return 0
	}
}

// Soundex calculates the Soundex encoding of a string
func Soundex(str string) string {
	str = strings.ToUpper(Fold(strings.TrimSpace(str)))
	if len(str) == 0 || str[0] < 'A' || str[0] > 'Z' {
		return ""
	}

	result := string(str[0])
	prevCode := soundexCode(rune(str[0]))

	for i := 1; i < len(str) && len(result) < 4; i++ {
		char := rune(str[i])
		if !unicode.IsLetter(char) {
			continue
		}

		code := soundexCode(char)
		if code != "0" && code != prevCode {
			result += code
		}
		prevCode = code
	}

	for len(result) < 4 {
		result += "0"
	}

	return result
}

// soundexCode returns the Soundex code for a character
func soundexCode(char rune) string {
	switch char {
	case 'B', 'F', 'P', 'V':
		return "1"
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return "2"
	case 'D', 'T':
		return "3"
	case 'L':
		return "4"
	case 'M', 'N':
		return "5"
	case 'R':
		return "6"
	default:
		return "0"
	}
}
