// Package naming turns model display names into filesystem-safe tokens.
package naming

import (
	"regexp"
	"strings"
)

var (
	bracketRe    = regexp.MustCompile(`[\[\]{}()]`)
	unsafeRe     = regexp.MustCompile(`[^\w\-.]`)
	underscoreRe = regexp.MustCompile(`_+`)
	hyphenRe     = regexp.MustCompile(`-+`)
)

// Sanitize lowercases name and reduces it to word characters, hyphens,
// underscores, and dots. An empty result means the name is unusable.
func Sanitize(name string) string {
	s := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	s = bracketRe.ReplaceAllString(s, "")
	s = unsafeRe.ReplaceAllString(s, "_")
	s = underscoreRe.ReplaceAllString(s, "_")
	s = hyphenRe.ReplaceAllString(s, "-")
	return strings.TrimRight(s, "-_")
}

// Filename returns the block filename for a display name, or "" when the
// name sanitizes to nothing.
func Filename(displayName string) string {
	token := Sanitize(displayName)
	if token == "" {
		return ""
	}
	return token + ".yaml"
}
