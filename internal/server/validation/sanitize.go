package validation

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()

	jsScheme = regexp.MustCompile(`(?i)javascript:`)
	onEvent  = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// maxSanitizePasses bounds how many layers of entity encoding are peeled off.
const maxSanitizePasses = 4

// Sanitize strips markup from a free-text label and trims it. It is applied
// to site and account labels, never to secrets.
func Sanitize(s string) string {
	out := s
	stable := false
	// labels are stored as plain text, so unescape and sanitize again until
	// entity-encoded markup has nothing left to reveal
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(strict.Sanitize(out))
		if next == out {
			stable = true
			break
		}
		out = next
	}
	if !stable {
		out = strict.Sanitize(out)
	}
	out = jsScheme.ReplaceAllString(out, "")
	out = onEvent.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
