// Package helpers provides small utilities shared by the CLI, the reports
// and the terminal UI.
package helpers

import (
	"strings"
	"unicode/utf8"
)

// TruncateText trims text and shortens it to at most maxLen runes, ending
// with "..." when it was cut. Whitespace-only text becomes "".
func TruncateText(text string, maxLen int) string {
	return Truncate(strings.TrimSpace(text), maxLen)
}

// Truncate shortens s to at most maxLen runes, ending with "..." when it
// was cut. It never splits a multi-byte rune.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", max(maxLen, 0))
	}
	n := 0
	for i := range s {
		if n == maxLen-3 {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// CountUniqueStrings returns the number of distinct strings in items.
func CountUniqueStrings(items []string) int {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		seen[item] = struct{}{}
	}
	return len(seen)
}

// Plural returns word with an "s" appended unless n is 1.
func Plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
