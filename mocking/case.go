package mocking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsLetter reports whether r belongs to the fixed Latin letter class used
// for mocking case: ASCII letters and the Latin-1 letters, matched
// case-insensitively. Letters of other scripts are not letters here.
func IsLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= 'À' && r <= 'Ö') ||
		(r >= 'Ø' && r <= 'ö') ||
		(r >= 'ø' && r <= 'ÿ') ||
		r == 'Ÿ' // upper case of ÿ
}

// Alternate returns s in mocking case. Letters alternate between lower and
// upper case starting with lower case; every other rune is copied as is and
// does not advance the alternation.
func Alternate(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	upper := false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			b.WriteString(s[i : i+size])
			i += size
			continue
		}
		i += size

		if IsLetter(r) {
			if upper {
				r = unicode.ToUpper(r)
			} else {
				r = unicode.ToLower(r)
			}
			upper = !upper
		}
		b.WriteRune(r)
	}

	return b.String()
}
