package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a game name to its comparison key: diacritics are stripped,
// letters lower-cased, and every run of characters outside [a-z0-9] becomes a
// single space. The result is trimmed; an input with no letters or digits
// yields "".
func Normalize(s string) string {
	folded := foldDiacritics(s)
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// BaseName returns the part of name before the first colon, trimmed. ok is
// false when name carries no colon.
func BaseName(name string) (base string, ok bool) {
	before, _, found := strings.Cut(name, ":")
	if !found {
		return strings.TrimSpace(name), false
	}
	return strings.TrimSpace(before), true
}

// Suffix returns the part of name after the first colon, trimmed.
func Suffix(name string) string {
	_, after, found := strings.Cut(name, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(after)
}
