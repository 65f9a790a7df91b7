package normalizers

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone is the lenient phone normalizer: strips a leading +1 country
// prefix and all non-digit characters, so "(555) 123-4567", "555-123-4567",
// and "+1 555-123-4567" all normalize to "5551234567".
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+1")
	return DigitsOnly(s)
}

// NormalizePhoneE164 normalizes a phone number to E.164 using international
// numbering rules with the given region hint. When the number cannot be
// parsed as a valid number, strict mode returns empty (no signal is safer
// than a partial string that could collide) and lenient mode falls back to
// the digits-only form.
func NormalizePhoneE164(s, region string, strict bool) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if region == "" {
		region = "US"
	}

	num, err := phonenumbers.Parse(s, region)
	if err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164)
	}

	if strict {
		return ""
	}
	return NormalizePhone(s)
}
