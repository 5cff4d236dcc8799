package validators

import "strings"

// NormalizeEmail lowercases and trims an address. Emails are compared and
// stored in this form everywhere, so lookups stay case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CleanText trims whitespace and caps free-form input at maxLen bytes.
func CleanText(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
