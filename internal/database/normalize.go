package database

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeProfileName normalizes a profile name for lookup (lowercase,
// no diacritics, collapsed whitespace).
func NormalizeProfileName(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(name)
	name = strings.Join(strings.Fields(name), " ")
	return name
}
