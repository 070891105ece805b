// Package sanitizer normalizes client-supplied text before validation and
// storage. All functions are idempotent and never return errors: invalid
// input collapses to the empty string.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace runs
// to single spaces. Control characters are dropped.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		case unicode.IsControl(r):
			// skip
		default:
			result.WriteRune(r)
			lastWasSpace = false
		}
	}
	return strings.TrimSpace(result.String())
}

// NormalizeName normalizes a person's display name.
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeFreeText normalizes multi-word free text such as special requests,
// capping it at maxLen runes.
func NormalizeFreeText(s string, maxLen int) string {
	s = TrimAndNormalize(s)
	runes := []rune(s)
	if maxLen > 0 && len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return s
}
