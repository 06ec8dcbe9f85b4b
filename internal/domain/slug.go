package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugLength keeps slugs URL-friendly and indexable.
const maxSlugLength = 80

// deaccent strips combining marks so accented letters fold to ASCII
// (Café -> Cafe) instead of disappearing from the slug.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a URL slug from a title: lowercase ASCII letters and
// digits, runs of anything else collapse to a single hyphen. Uniqueness is
// the store's job (it appends a numeric suffix on conflict).
func Slugify(title string) string {
	if folded, _, err := transform.String(deaccent, title); err == nil {
		title = folded
	}

	var b strings.Builder
	b.Grow(len(title))

	lastHyphen := true // suppress leading hyphen
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}
