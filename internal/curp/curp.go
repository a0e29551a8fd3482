// Package curp validates the 18-character CURP national identifier used to
// look people up in the authorization directory. The functions here are pure
// and total: they normalize, match a fixed pattern, and never fail.
package curp

import (
	"regexp"
	"strings"
)

// pattern is the structural CURP layout: four letters, six digits of birth
// date, the sex marker (H or M), five letters for state and consonants, and
// two alphanumeric disambiguation characters.
var pattern = regexp.MustCompile(`^[A-Z]{4}\d{6}[HM][A-Z]{5}[A-Z0-9]{2}$`)

// Normalize trims surrounding whitespace and upper-cases s. All storage and
// comparisons use the normalized form.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsValid reports whether s is a structurally valid CURP. Matching is
// case-insensitive: the input is normalized before the pattern check.
// It does not verify the check digit or that the person exists.
func IsValid(s string) bool {
	return pattern.MatchString(Normalize(s))
}

// NonEmptyTrimmed reports whether s contains any non-whitespace characters.
func NonEmptyTrimmed(s string) bool {
	return strings.TrimSpace(s) != ""
}
