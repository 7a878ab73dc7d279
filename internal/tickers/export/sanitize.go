package export

import (
	"strings"
	"unicode"
)

// SanitizeIndustry turns an industry name into a filename stem:
// "Consumer Discretionary" becomes "consumer_discretionary".
func SanitizeIndustry(industry string) string {
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(industry))
	return strings.Join(strings.Fields(kept), "_")
}
