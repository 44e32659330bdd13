// Package email derives presentable names from email addresses. Completion
// events sometimes arrive without a student name; rendering the local part of
// the address beats printing nothing on the certificate.
package email

import (
	"strings"
	"unicode"
)

// DisplayName builds a "First Last" style name from the local part of an
// email address. Separator runes split the local part into words; a single
// word yields just that word, capitalized.
func DisplayName(address string) string {
	localPart := address
	if at := strings.IndexByte(address, '@'); at > 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return ""
	}

	words := make([]string, 0, len(parts))
	for _, part := range parts {
		// Skip trailing digits used for address uniqueness (jane.doe.42).
		if isAllDigits(part) {
			continue
		}
		words = append(words, capitalize(part))
	}
	if len(words) == 0 {
		return capitalize(parts[0])
	}
	return strings.Join(words, " ")
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
