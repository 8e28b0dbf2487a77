package watch

import "strings"

// snippetLimit caps evidence snippets so alert bodies stay readable.
const snippetLimit = 160

// SnippetFor extracts the evidence line for a matched pattern from the raw
// (non-normalized) pane text: the most recent non-blank line whose lowercased
// form matches. Falls back to the most recent non-blank line, or "" when the
// capture is empty.
func SnippetFor(raw string, p Pattern) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	for i := len(lines) - 1; i >= 0; i-- {
		if p.Matches(strings.ToLower(lines[i])) {
			return truncateSnippet(lines[i])
		}
	}
	if len(lines) > 0 {
		return truncateSnippet(lines[len(lines)-1])
	}
	return ""
}

// truncateSnippet collapses whitespace runs and caps the result at
// snippetLimit characters (157 + "..." when cut). The cut counts runes so a
// multi-byte character at the boundary is never split.
func truncateSnippet(text string) string {
	compact := strings.Join(strings.Fields(text), " ")
	runes := []rune(compact)
	if len(runes) <= snippetLimit {
		return compact
	}
	return string(runes[:snippetLimit-3]) + "..."
}
