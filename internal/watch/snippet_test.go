package watch

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func waitPattern(t *testing.T, label string) Pattern {
	t.Helper()
	for _, p := range DefaultWaitPatterns {
		if p.Label == label {
			return p
		}
	}
	t.Fatalf("no such wait pattern: %s", label)
	return Pattern{}
}

func TestSnippetPicksMostRecentMatch(t *testing.T) {
	p := waitPattern(t, `\(y/n\)`)
	raw := "overwrite? (y/n)\nsome build output\nDelete all? (y/n):"

	got := SnippetFor(raw, p)
	if got != "Delete all? (y/n):" {
		t.Errorf("snippet = %q, want most recent matching line", got)
	}
}

func TestSnippetPreservesOriginalCase(t *testing.T) {
	p := waitPattern(t, `press enter`)
	raw := "Press ENTER to continue"

	if got := SnippetFor(raw, p); got != "Press ENTER to continue" {
		t.Errorf("snippet = %q", got)
	}
}

func TestSnippetSkipsBlankLines(t *testing.T) {
	p := waitPattern(t, `confirm\?`)
	raw := "Confirm? [y/N]\n\n   \n\t\n"

	if got := SnippetFor(raw, p); got != "Confirm? [y/N]" {
		t.Errorf("snippet = %q", got)
	}
}

func TestSnippetCollapsesWhitespace(t *testing.T) {
	p := waitPattern(t, `awaiting input`)
	raw := "  awaiting    input\t\tfrom   user  "

	if got := SnippetFor(raw, p); got != "awaiting input from user" {
		t.Errorf("snippet = %q", got)
	}
}

func TestSnippetTruncatesAt160(t *testing.T) {
	p := waitPattern(t, `press enter`)
	long := "press enter " + strings.Repeat("x", 300)

	got := SnippetFor(long, p)
	if len(got) != 160 {
		t.Fatalf("len = %d, want 160", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ... suffix, got %q", got[150:])
	}
	compact := "press enter " + strings.Repeat("x", 300)
	if got[:157] != compact[:157] {
		t.Error("expected first 157 characters to be preserved")
	}
}

func TestSnippetExactly160NotTruncated(t *testing.T) {
	p := waitPattern(t, `press enter`)
	line := "press enter " + strings.Repeat("x", 148) // 160 chars total

	got := SnippetFor(line, p)
	if len(got) != 160 {
		t.Errorf("len = %d, want 160", len(got))
	}
	if strings.HasSuffix(got, "...") {
		t.Error("line of exactly 160 chars must not be truncated")
	}
}

func TestSnippetTruncatesOnRuneBoundary(t *testing.T) {
	p := waitPattern(t, `press enter`)
	long := "press enter " + strings.Repeat("é", 300)

	got := SnippetFor(long, p)
	if !utf8.ValidString(got) {
		t.Fatalf("snippet is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 160 {
		t.Errorf("rune count = %d, want 160", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ... suffix, got %q", got)
	}
}

func TestSnippetFallbackToLastLine(t *testing.T) {
	// Pattern matched on the joined text but on no individual line
	// (wrapped prompt): fall back to the most recent non-blank line.
	p := waitPattern(t, `user input required`)
	raw := "user input\nrequired now"

	if got := SnippetFor(raw, p); got != "required now" {
		t.Errorf("snippet = %q, want last non-blank line", got)
	}
}

func TestSnippetEmptyText(t *testing.T) {
	p := waitPattern(t, `press enter`)
	if got := SnippetFor("", p); got != "" {
		t.Errorf("snippet = %q, want empty", got)
	}
	if got := SnippetFor("\n  \n\t\n", p); got != "" {
		t.Errorf("snippet = %q, want empty for all-blank text", got)
	}
}

func TestSnippetDeterministic(t *testing.T) {
	p := waitPattern(t, `\(y/n\)`)
	raw := "one (y/n)\ntwo (y/n)"

	first := SnippetFor(raw, p)
	second := SnippetFor(raw, p)
	if first != second {
		t.Errorf("snippet not deterministic: %q vs %q", first, second)
	}
}
