package domain

import (
	"strings"
)

// NormalizeText prepares a word for case- and spacing-insensitive comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - collapses any run of whitespace into a single space
//
// Diacritics, hyphens, and apostrophes are preserved. Unicode normalization
// for request URLs is done by the provider, not here.
func NormalizeText(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(fields, " "))
}

// DeduplicateStrings returns ss without duplicates and empty strings,
// preserving the order of first occurrence.
func DeduplicateStrings(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	result := make([]string, 0, len(ss))
	for _, s := range ss {
		if s == "" {
			continue
		}
		if _, exists := seen[s]; exists {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}
