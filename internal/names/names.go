// Package names normalizes person names so that directory search and
// duplicate detection are insensitive to case, accents, and spacing.
// "garcía  lópez" and "GARCIA LOPEZ" must refer to the same person.
package names

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes to NFD, drops combining marks, and recomposes,
// turning "GARCÍA" into "GARCIA".
var foldDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Normalize returns the canonical form of a person name: trimmed,
// whitespace-collapsed, diacritics folded, and upper-cased. It is used for
// stored names, search terms, and registration dedup keys.
func Normalize(s string) string {
	s = whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	return strings.ToUpper(s)
}
