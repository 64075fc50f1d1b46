package validation

import (
	"regexp"
	"strings"
)

var postcodePattern = regexp.MustCompile(`^[A-Z]{1,2}\d[A-Z\d]? ?\d[A-Z]{2}$`)

// NormalizePostcode removes all whitespace and upper-cases the postcode.
func NormalizePostcode(postcode string) string {
	return strings.ToUpper(strings.Join(strings.Fields(postcode), ""))
}

// IsValidUKPostcode reports whether the normalised postcode has the UK shape.
func IsValidUKPostcode(postcode string) bool {
	return postcodePattern.MatchString(NormalizePostcode(postcode))
}

// Postcode normalises and validates in one go.
func Postcode(raw string) (string, error) {
	pc := NormalizePostcode(raw)
	if pc == "" {
		return "", Invalid("postcode", "please enter a postcode")
	}
	if !postcodePattern.MatchString(pc) {
		return "", Invalid("postcode", "%q is not a valid UK postcode", raw)
	}
	return pc, nil
}
