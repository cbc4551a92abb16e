// Package team canonicalizes team identifiers so the same team is
// recognized across differently-prefixed representations.
package team

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize strips the league prefix from a raw team identifier:
// "NFL_KC" with league "NFL" becomes "KC". An identifier already in
// canonical form is returned unchanged, as is empty input - returning
// the input unchanged is the "cannot normalize" signal and the caller
// decides whether to skip the record. Pure and total.
func Normalize(raw, league string) string {
	if raw == "" || league == "" {
		return raw
	}
	prefix := strings.ToUpper(league) + "_"
	if rest, ok := strings.CutPrefix(raw, prefix); ok && rest != "" {
		return rest
	}
	return raw
}

// Fold lowercases, strips diacritics, collapses whitespace, then
// resolves through the alias map. Used for free-text team names coming
// from feeds, not for identifiers.
func Fold(s string, aliases map[string]string) string {
	if s == "" {
		return ""
	}
	s = stripDiacritics(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // Mn = Mark, Nonspacing (combining accents)
			b.WriteRune(r)
		}
	}
	return b.String()
}
