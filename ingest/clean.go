package ingest

import (
	"regexp"
	"strings"
)

var (
	urlPattern   = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Clean normalizes a raw review text for clustering: lowercases, strips
// URLs, email addresses and non-ASCII runes, and collapses whitespace.
// Clean is idempotent.
func Clean(text string) string {
	s := strings.ToLower(text)
	s = urlPattern.ReplaceAllString(s, " ")
	s = emailPattern.ReplaceAllString(s, " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	s = spacePattern.ReplaceAllString(b.String(), " ")
	return strings.TrimSpace(s)
}
