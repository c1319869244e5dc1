package formatter

import (
	"strings"
	"unicode/utf8"
)

// Truncate cuts s to keep runes followed by suffix when s is longer than limit runes.
// Example: Truncate("abcdef", 5, 3, "…") -> "abc…"
func Truncate(s string, limit, keep int, suffix string) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	var sb strings.Builder
	n := 0
	for _, r := range s {
		if n == keep {
			break
		}
		sb.WriteRune(r)
		n++
	}
	sb.WriteString(suffix)
	return sb.String()
}

// Preview shortens long text for log lines.
func Preview(s string, limit int) string {
	return Truncate(s, limit, limit, "...")
}
