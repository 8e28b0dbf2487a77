package watch

import "regexp"

// Pattern pairs a label (the raw expression, used in alert details and watch
// output) with its compiled matcher. Patterns are matched against lowercased
// text, so the expressions themselves are written in lowercase.
type Pattern struct {
	Label string
	re    *regexp.Regexp
}

// Matches reports whether the pattern occurs anywhere in the (already
// case-normalized) text.
func (p Pattern) Matches(text string) bool {
	return p.re.MatchString(text)
}

func compilePatterns(exprs []string) []Pattern {
	out := make([]Pattern, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, Pattern{Label: expr, re: regexp.MustCompile(expr)})
	}
	return out
}

// DefaultWaitPatterns are prompts that mean the agent is blocked on a human.
// Ordered: the first match wins, so more specific prompts come first.
// A visible prompt is trusted regardless of idle time.
var DefaultWaitPatterns = compilePatterns([]string{
	`press enter`,
	`awaiting input`,
	`continue\?`,
	`\bcontinue\b`,
	`\(y/n\)`,
	`user input required`,
	`confirm\?`,
})

// DefaultStallPatterns are phrases that often precede an agent wedging itself
// in a planning loop. A match alone is not trusted (the same text appears
// during legitimate work); it must be corroborated by idle time.
var DefaultStallPatterns = compilePatterns([]string{
	`thinking:\s+planning`,
	`planning phase\s+\d+`,
	`spawning planner\.{0,3}`,
})
