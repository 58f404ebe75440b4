package transcript

import (
	"regexp"
	"strings"
)

var (
	// Bracketed annotations like [Music] or [applause] that caption tracks
	// and speech recognizers emit alongside spoken text.
	bracketedRe = regexp.MustCompile(`\[[^\]]*\]`)
	spacesRe    = regexp.MustCompile(`\s+`)
)

// Normalize strips bracketed annotations and collapses runs of whitespace
// into single spaces.
func Normalize(text string) string {
	text = bracketedRe.ReplaceAllString(text, " ")
	text = spacesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
