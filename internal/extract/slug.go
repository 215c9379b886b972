package extract

import (
	"regexp"
	"strings"
)

var (
	slugUnsafe  = regexp.MustCompile(`[^a-z0-9\-_.:/]+`)
	slugHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify renders arbitrary text as a filesystem-safe slug: lower
// case, unsafe runs collapsed to single hyphens, truncated to maxLen
// with trailing separators trimmed. Empty results become "untitled".
func Slugify(text string, maxLen int) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugUnsafe.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	if maxLen > 0 && len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-_.:")
	}
	if s == "" {
		return "untitled"
	}
	return s
}
