package slug

import (
	"regexp"
	"strings"
)

var whitespaceRegexp = regexp.MustCompile(`\s+`)

// Generate builds a lowercase key from the given parts. Each part is trimmed,
// the parts are joined with "-", and every run of whitespace inside the result
// is replaced by a single "-". Other punctuation is kept as is so that keys
// stay stable for existing stored data.
//
// Examples:
//   - ("Robarts Library", "4033") → "robarts-library-4033"
//   - ("Robarts   Library ", " 4033") → "robarts-library-4033"
//   - ("E.J. Pratt", "B-12") → "e.j.-pratt-b-12"
func Generate(parts ...string) string {
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed = append(trimmed, strings.TrimSpace(p))
	}
	joined := strings.Join(trimmed, "-")
	return strings.ToLower(whitespaceRegexp.ReplaceAllString(joined, "-"))
}
