package form

import (
	"strings"
	"unicode"
)

type SearchForm struct {
	Term string `form:"search"`
}

// Normalize leaves the term untouched; City does the only normalization.
func (f *SearchForm) Normalize() {}

// City title-cases the term the way locations are stored: a letter is upper
// case when it follows a non-letter and lower case otherwise. This is
// locale-naive ("de la Vega" becomes "De La Vega").
func (f SearchForm) City() string {
	return TitleCase(f.Term)
}

func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(unicode.ToTitle(r))
		case isLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
