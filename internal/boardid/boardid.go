// Package boardid canonicalizes user-typed board codes.
package boardid

import (
	"strings"
	"unicode"
)

// Normalize trims, uppercases, turns whitespace runs into a single dash and drops anything
// outside [A-Z0-9-_]. An empty result means "no board selected".
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if allowed(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allowed(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	default:
		return false
	}
}
