package textutil

import (
	"strings"
	"unicode/utf8"
)

// Len returns the rune count of s.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate returns at most limit runes of s. A non-positive limit returns s
// unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// Excerpt collapses whitespace runs and truncates to at most limit runes,
// the trailing ellipsis included.
func Excerpt(s string, limit int) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	if limit <= 0 || utf8.RuneCountInString(collapsed) <= limit {
		return collapsed
	}
	if limit == 1 {
		return "…"
	}
	return strings.TrimSpace(Truncate(collapsed, limit-1)) + "…"
}

const snippetLimit = 160

// Snippet renders a payload for error messages: whitespace collapsed, clipped
// to 160 runes, "<empty>" for blank input.
func Snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	if utf8.RuneCountInString(clean) > snippetLimit {
		clean = Truncate(clean, snippetLimit) + "..."
	}
	return clean
}

// JoinBudget joins items with sep and truncates the result to budget runes.
func JoinBudget(items []string, sep string, budget int) string {
	return Truncate(strings.Join(items, sep), budget)
}
