package textutil

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// NormalizeWhitespace collapses runs of whitespace into single spaces.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateRunes cuts s to at most max runes without splitting a character.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// TruncateWidth cuts s to the given display width, appending "..." when shortened.
// CJK characters count as two columns.
func TruncateWidth(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

// Width is the display width of s.
func Width(s string) int {
	return runewidth.StringWidth(s)
}
