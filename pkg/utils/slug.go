package utils

import (
	"regexp"
	"strings"
)

var (
	whitespace   = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{feff}]+`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify lower-cases s, turns each run of whitespace into one hyphen and
// drops everything outside [a-z0-9-]. Whitespace includes Unicode spaces such
// as NBSP. Hyphens left next to each other by the stripping are kept, so
// "Kerstland & Vrienden!" becomes "kerstland--vrienden".
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = whitespace.ReplaceAllString(s, "-")
	return nonSlugChars.ReplaceAllString(s, "")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
