// Package sanitizer normalizes caller-supplied strings before validation and
// storage. Identity tokens in particular must normalize to a canonical form
// so the one-live-reservation-per-identity rule cannot be dodged with casing
// or whitespace variants.
package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeIdentity canonicalizes an identity token (an email address):
// surrounding whitespace is dropped and the whole token is lowercased.
func NormalizeIdentity(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// NormalizeLabel canonicalizes admin-edited prize metadata labels.
func NormalizeLabel(label string) string {
	return TrimAndNormalize(label)
}
